package http1

import (
	"log/slog"

	"github.com/indigo-web/h1codec/config"
	"github.com/indigo-web/h1codec/http"
	"github.com/indigo-web/h1codec/http/status"
	"github.com/indigo-web/h1codec/stream"
)

// DecodeStage plugs the Decoder between a publisher of raw bytes and a subscriber of
// events. It always wants more bytes, so requests an unbounded demand upstream; the
// downstream demand isn't tracked, the stage is a pure transform.
//
// Emitted body fragments are valid only during the OnNext call delivering them.
type DecodeStage struct {
	decoder    *Decoder
	downstream stream.Subscriber[http.Event]
	upstream   stream.Subscription
	done       bool
}

var _ stream.Subscriber[[]byte] = new(DecodeStage)

func NewDecodeStage(decoder *Decoder, downstream stream.Subscriber[http.Event]) *DecodeStage {
	return &DecodeStage{
		decoder:    decoder,
		downstream: downstream,
	}
}

func (s *DecodeStage) OnSubscribe(sub stream.Subscription) {
	s.upstream = sub
	s.downstream.OnSubscribe(stageSubscription{cancel: s.cancel})
	sub.Request(stream.Unbounded)
}

func (s *DecodeStage) OnNext(data []byte) {
	if s.done {
		return
	}

	if err := s.decoder.Parse(data, s.emit); err != nil {
		s.fail(err)
	}
}

func (s *DecodeStage) OnError(err error) {
	if s.done {
		return
	}

	s.done = true
	s.downstream.OnError(err)
}

// OnComplete reports an error if the input ended in the middle of a request.
func (s *DecodeStage) OnComplete() {
	if s.done {
		return
	}

	if s.decoder.Pending() {
		s.fail(status.ErrUnexpectedEOF)
		return
	}

	s.done = true
	s.downstream.OnComplete()
}

func (s *DecodeStage) emit(ev http.Event) {
	if !s.done {
		s.downstream.OnNext(ev)
	}
}

func (s *DecodeStage) fail(err error) {
	s.done = true
	s.upstream.Cancel()
	slog.Debug("decoding failed", "err", err, "code", status.CodeOf(err))
	s.downstream.OnError(err)
}

func (s *DecodeStage) cancel() {
	if s.done {
		return
	}

	s.done = true
	s.upstream.Cancel()
}

// EncodeStage plugs a ResponseWriter between a publisher of response events and a
// subscriber of raw bytes. Every event producing any output is delivered as a freshly
// allocated buffer, so the subscriber may retain it.
type EncodeStage struct {
	writer     *ResponseWriter
	prealloc   int
	downstream stream.Subscriber[[]byte]
	upstream   stream.Subscription
	done       bool
}

var _ stream.Subscriber[http.ResponseEvent] = new(EncodeStage)

func NewEncodeStage(cfg config.Encoder, downstream stream.Subscriber[[]byte]) *EncodeStage {
	return &EncodeStage{
		writer:     NewResponseWriter(),
		prealloc:   cfg.BufferPrealloc,
		downstream: downstream,
	}
}

// OnSubscribe passes the subscription through. An event producing no output is
// compensated in OnNext by requesting one more event upstream, so every unit of demand
// still yields a buffer.
func (s *EncodeStage) OnSubscribe(sub stream.Subscription) {
	s.upstream = sub
	s.downstream.OnSubscribe(stageSubscription{
		request: sub.Request,
		cancel:  s.cancel,
	})
}

func (s *EncodeStage) OnNext(ev http.ResponseEvent) {
	if s.done {
		return
	}

	buff, err := s.writer.Write(make([]byte, 0, s.prealloc), ev)
	if err != nil {
		s.fail(err)
		return
	}

	if len(buff) == 0 {
		s.upstream.Request(1)
		return
	}

	s.downstream.OnNext(buff)
}

func (s *EncodeStage) OnError(err error) {
	if s.done {
		return
	}

	s.done = true
	s.downstream.OnError(err)
}

// OnComplete reports an error if a streamed response was left unfinished.
func (s *EncodeStage) OnComplete() {
	if s.done {
		return
	}

	if s.writer.InProgress() {
		s.fail(status.ErrInternalServerError)
		return
	}

	s.done = true
	s.downstream.OnComplete()
}

func (s *EncodeStage) fail(err error) {
	s.done = true
	s.upstream.Cancel()
	slog.Debug("encoding failed", "err", err)
	s.downstream.OnError(err)
}

func (s *EncodeStage) cancel() {
	if s.done {
		return
	}

	s.done = true
	s.upstream.Cancel()
}

// stageSubscription is what stages hand over to their downstream. A nil request
// ignores the demand.
type stageSubscription struct {
	request func(n int64)
	cancel  func()
}

func (s stageSubscription) Request(n int64) {
	if s.request != nil {
		s.request(n)
	}
}

func (s stageSubscription) Cancel() {
	s.cancel()
}
