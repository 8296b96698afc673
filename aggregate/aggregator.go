// Package aggregate folds the event stream of a connection into complete messages, for
// consumers which don't need streamed bodies.
package aggregate

import (
	"github.com/indigo-web/h1codec/http"
	"github.com/indigo-web/h1codec/http/headers"
	"github.com/indigo-web/h1codec/http/status"
)

// headersPrealloc is the number of header fields a fresh request reserves space for.
const headersPrealloc = 8

// Result holds what the aggregation of a single event completed. At most one of the
// fields is set.
type Result struct {
	Request *http.FullRequest
	Frame   *http.Frame
}

// Empty reports whether nothing was completed.
func (r Result) Empty() bool {
	return r.Request == nil && r.Frame == nil
}

// Aggregator is stateless, everything belonging to a connection is kept in its Conn.
// The zero value is ready to use.
type Aggregator struct{}

// Aggregate folds the event into the connection state. The data of body and payload
// fragments is copied, so the event may be released right after the call returns.
//
// Events must arrive in the order the decoder emits them, otherwise
// status.ErrInternalServerError is returned and the connection state is left unchanged.
func (Aggregator) Aggregate(conn *Conn, ev http.Event) (Result, error) {
	f := folder{conn: conn}
	err := http.Dispatch(ev, &f)

	return f.result, err
}

// folder handles a single event on behalf of the Aggregator.
type folder struct {
	conn   *Conn
	result Result
}

func (f *folder) OnRequestLine(line http.RequestLine) error {
	req := &f.conn.request
	if req.started {
		return status.ErrInternalServerError
	}

	req.started = true
	req.line = line
	req.headers = headers.NewPrealloc(headersPrealloc)

	return nil
}

func (f *folder) OnHeader(hdr http.Header) error {
	req := &f.conn.request
	if !req.started {
		return status.ErrInternalServerError
	}

	req.headers.Add(hdr.Name, hdr.Value)

	return nil
}

func (f *folder) OnBody(body http.Body) error {
	req := &f.conn.request
	if !req.started {
		return status.ErrInternalServerError
	}

	req.body.add(body.Data)
	if body.Last {
		f.result.Request = http.NewFullRequest(req.line, req.headers, req.body.join())
		req.reset()
	}

	return nil
}

func (f *folder) OnFrameHeader(header http.FrameHeader) error {
	frame := &f.conn.frame
	if frame.started {
		return status.ErrInternalServerError
	}

	frame.started = true
	frame.header = header

	return nil
}

func (f *folder) OnPayload(payload http.Payload) error {
	frame := &f.conn.frame
	if !frame.started {
		return status.ErrInternalServerError
	}

	frame.payload.add(payload.Data)
	if payload.Last {
		f.result.Frame = &http.Frame{
			Header:  frame.header,
			Payload: frame.payload.join(),
		}
		frame.reset()
	}

	return nil
}
