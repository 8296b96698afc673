package aggregate

import (
	"log/slog"

	"github.com/indigo-web/h1codec/http"
	"github.com/indigo-web/h1codec/stream"
)

// Sink receives aggregated messages of a single connection. OnError and OnComplete are
// terminal, at most one of them is called, exactly once.
type Sink interface {
	OnRequest(conn *Conn, request *http.FullRequest)
	OnFrame(conn *Conn, frame *http.Frame)
	OnError(conn *Conn, err error)
	OnComplete(conn *Conn)
}

// Stage subscribes to the events of a connection and passes complete messages to the sink.
type Stage struct {
	aggregator Aggregator
	conn       *Conn
	sink       Sink
	upstream   stream.Subscription
	done       bool
}

var _ stream.Subscriber[http.Event] = new(Stage)

func NewStage(conn *Conn, sink Sink) *Stage {
	return &Stage{
		conn: conn,
		sink: sink,
	}
}

func (s *Stage) OnSubscribe(sub stream.Subscription) {
	s.upstream = sub
	sub.Request(stream.Unbounded)
}

func (s *Stage) OnNext(ev http.Event) {
	if s.done {
		return
	}

	result, err := s.aggregator.Aggregate(s.conn, ev)
	if err != nil {
		s.done = true
		s.upstream.Cancel()
		slog.Debug("aggregation failed",
			"conn", s.conn.ID, "event", ev.Kind().String(), "err", err,
		)
		s.sink.OnError(s.conn, err)
		return
	}

	switch {
	case result.Request != nil:
		s.sink.OnRequest(s.conn, result.Request)
	case result.Frame != nil:
		s.sink.OnFrame(s.conn, result.Frame)
	}
}

func (s *Stage) OnError(err error) {
	if s.done {
		return
	}

	s.done = true
	s.conn.Reset()
	s.sink.OnError(s.conn, err)
}

func (s *Stage) OnComplete() {
	if s.done {
		return
	}

	s.done = true
	s.sink.OnComplete(s.conn)
}
