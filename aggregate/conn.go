package aggregate

import (
	"github.com/google/uuid"
	"github.com/indigo-web/h1codec/http"
	"github.com/indigo-web/h1codec/http/headers"
)

// Conn is the aggregation context of a single connection. It must be used by one
// aggregator at a time and never shared between connections.
type Conn struct {
	// ID identifies the connection in logs.
	ID      uuid.UUID
	request requestState
	frame   frameState
}

func NewConn() *Conn {
	return &Conn{ID: uuid.New()}
}

// InProgress reports whether a request or a frame is partially aggregated.
func (c *Conn) InProgress() bool {
	return c.request.started || c.frame.started
}

// Reset drops everything partially aggregated.
func (c *Conn) Reset() {
	c.request.reset()
	c.frame.reset()
}

type requestState struct {
	started bool
	line    http.RequestLine
	headers *headers.Headers
	body    fragments
}

func (r *requestState) reset() {
	*r = requestState{}
}

type frameState struct {
	started bool
	header  http.FrameHeader
	payload fragments
}

func (f *frameState) reset() {
	*f = frameState{}
}

// fragments stores copies of body or payload fragments until the last one arrives.
type fragments struct {
	parts [][]byte
	size  int
}

func (f *fragments) add(data []byte) {
	if len(data) == 0 {
		return
	}

	f.parts = append(f.parts, append([]byte(nil), data...))
	f.size += len(data)
}

// join concatenates all the stored fragments. Copies are owned already, so a single
// fragment is returned as is.
func (f *fragments) join() []byte {
	switch len(f.parts) {
	case 0:
		return nil
	case 1:
		return f.parts[0]
	}

	buff := make([]byte, 0, f.size)
	for _, part := range f.parts {
		buff = append(buff, part...)
	}

	return buff
}
