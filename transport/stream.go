package transport

import (
	"errors"
	"io"
	"net"

	"github.com/indigo-web/h1codec/stream"
)

// NewPublisher turns the client into a publisher of raw bytes. Reading happens on the
// goroutine requesting the demand and blocks it until the demand is satisfied, the
// client is exhausted or the subscription is cancelled. Since every piece of data
// references the reused read buffer, subscribers must not retain it after OnNext.
//
// io.EOF and a closed connection complete the stream, any other error fails it.
func NewPublisher(client Client) stream.Publisher[[]byte] {
	return publisher{client: client}
}

type publisher struct {
	client Client
}

func (p publisher) Subscribe(s stream.Subscriber[[]byte]) {
	s.OnSubscribe(&subscription{
		client:     p.client,
		subscriber: s,
	})
}

type subscription struct {
	client     Client
	subscriber stream.Subscriber[[]byte]
	demand     int64
	reading    bool
	done       bool
}

func (s *subscription) Request(n int64) {
	if n <= 0 || s.done {
		return
	}

	s.demand = stream.AddDemand(s.demand, n)
	if s.reading {
		return
	}

	s.reading = true
	defer func() { s.reading = false }()

	for s.demand > 0 && !s.done {
		data, err := s.client.Read()
		if len(data) > 0 {
			if s.demand != stream.Unbounded {
				s.demand--
			}

			s.subscriber.OnNext(data)
		}

		if err != nil && !s.done {
			s.done = true
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
				s.subscriber.OnComplete()
			} else {
				s.subscriber.OnError(err)
			}
		}
	}
}

func (s *subscription) Cancel() {
	s.done = true
}

// Sink writes every received buffer into the client. A failed write cancels the
// upstream. The client is never closed by the sink.
type Sink struct {
	client    Client
	upstream  stream.Subscription
	err       error
	completed bool
}

var _ stream.Subscriber[[]byte] = new(Sink)

func NewSink(client Client) *Sink {
	return &Sink{client: client}
}

func (s *Sink) OnSubscribe(sub stream.Subscription) {
	s.upstream = sub
	sub.Request(stream.Unbounded)
}

func (s *Sink) OnNext(data []byte) {
	if s.err != nil {
		return
	}

	if _, err := s.client.Write(data); err != nil {
		s.err = err
		s.upstream.Cancel()
	}
}

func (s *Sink) OnError(err error) {
	if s.err == nil {
		s.err = err
	}
}

func (s *Sink) OnComplete() {
	s.completed = true
}

// Err returns the first error either received from the upstream or met while writing.
func (s *Sink) Err() error {
	return s.err
}

// Completed reports whether the upstream has completed.
func (s *Sink) Completed() bool {
	return s.completed
}
