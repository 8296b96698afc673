package http1

import (
	"github.com/indigo-web/h1codec/http"
	"github.com/indigo-web/h1codec/http/status"
)

type writerPhase uint8

const (
	// eIdle means no response is in progress
	eIdle writerPhase = iota
	eHeaderBlock
	eStreamedBody
)

// ResponseWriter encodes a sequence of response events belonging to one connection.
// Unlike the Encoder, it knows whether the header block of the current response is
// still open, so it's able to close it before the first body fragment and to keep the
// framing headers under its own control.
//
// Responses are either streamed (StatusLine, Header..., Body... with the last one having
// Last set) or full (a single *http.FullResponse). They can't interleave.
type ResponseWriter struct {
	encoder Encoder
	phase   writerPhase
	buff    []byte
}

func NewResponseWriter() *ResponseWriter {
	return new(ResponseWriter)
}

// Write appends the encoded event to dst. Events arriving out of order are refused with
// status.ErrInternalServerError, as this is a bug of the producer.
func (w *ResponseWriter) Write(dst []byte, ev http.ResponseEvent) ([]byte, error) {
	w.buff = dst
	err := http.DispatchResponse(ev, w)
	dst, w.buff = w.buff, nil

	return dst, err
}

// InProgress reports whether a streamed response was started but not finished yet.
func (w *ResponseWriter) InProgress() bool {
	return w.phase != eIdle
}

func (w *ResponseWriter) OnStatusLine(line http.StatusLine) error {
	if w.phase != eIdle {
		return status.ErrInternalServerError
	}

	w.buff = w.encoder.StatusLine(w.buff, line)
	w.phase = eHeaderBlock

	return nil
}

func (w *ResponseWriter) OnHeader(hdr http.Header) error {
	if w.phase != eHeaderBlock {
		return status.ErrInternalServerError
	}

	if !isFramingHeader(hdr.Name) {
		w.buff = w.encoder.Header(w.buff, hdr)
	}

	return nil
}

func (w *ResponseWriter) OnBody(body http.Body) error {
	switch w.phase {
	case eIdle:
		return status.ErrInternalServerError
	case eHeaderBlock:
		w.buff = w.encoder.HeadersEnd(w.buff)
		w.phase = eStreamedBody
	}

	w.buff = w.encoder.Chunk(w.buff, body)
	if body.Last {
		w.phase = eIdle
	}

	return nil
}

func (w *ResponseWriter) OnFullResponse(response *http.FullResponse) (err error) {
	if w.phase != eIdle {
		return status.ErrInternalServerError
	}

	w.buff, err = w.encoder.Full(w.buff, response)
	return err
}
