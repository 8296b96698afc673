package http

import (
	"io"

	"github.com/indigo-web/h1codec/http/headers"
	"github.com/indigo-web/h1codec/http/status"
	"github.com/indigo-web/utils/uf"
)

// DefaultVersion is the protocol version responses are rendered with unless set explicitly.
const DefaultVersion = "HTTP/1.1"

// StatusLine opens every response. An empty Reason is replaced by the registered
// reason phrase of the Code when rendered.
type StatusLine struct {
	Version string
	Code    status.Code
	Reason  string
}

func (StatusLine) Kind() EventKind { return KindStatusLine }

func (s StatusLine) dispatchResponse(h ResponseHandler) error { return h.OnStatusLine(s) }

func (s StatusLine) AppendTo(dst []byte) []byte {
	version := s.Version
	if len(version) == 0 {
		version = DefaultVersion
	}

	reason := s.Reason
	if len(reason) == 0 {
		reason = status.Text(s.Code)
	}

	dst = append(dst, version...)
	dst = append(dst, ' ')
	dst = append(dst, status.StringCode(s.Code)...)
	dst = append(dst, ' ')
	dst = append(dst, reason...)

	return append(dst, crlf...)
}

// FullResponse is a response with the body known in advance, either as a buffer
// or as a reader. It is mutable until handed over to the encoder.
type FullResponse struct {
	Status  StatusLine
	Headers *headers.Headers
	body    []byte
	stream  io.Reader
}

// NewResponse returns a 200 OK response with no headers and an empty body.
func NewResponse() *FullResponse {
	return &FullResponse{
		Status: StatusLine{
			Version: DefaultVersion,
			Code:    status.OK,
		},
		Headers: headers.New(),
	}
}

func (*FullResponse) Kind() EventKind { return KindFullResponse }

func (r *FullResponse) dispatchResponse(h ResponseHandler) error { return h.OnFullResponse(r) }

// Code sets the status code. The reason phrase is reset to the default one.
func (r *FullResponse) Code(code status.Code) *FullResponse {
	r.Status.Code = code
	r.Status.Reason = ""
	return r
}

// Reason overrides the reason phrase.
func (r *FullResponse) Reason(reason string) *FullResponse {
	r.Status.Reason = reason
	return r
}

// Header sets the header, overriding all its previous values. Content-Length and
// Transfer-Encoding are always computed by the encoder and therefore ignored.
func (r *FullResponse) Header(key string, values ...string) *FullResponse {
	r.Headers.Set(key, values...)
	return r
}

// AddHeader appends a value to the header, keeping the previous values.
func (r *FullResponse) AddHeader(key, value string) *FullResponse {
	r.Headers.Add(key, value)
	return r
}

// Bytes sets the body. The slice must not be modified until the response is encoded.
func (r *FullResponse) Bytes(body []byte) *FullResponse {
	r.body, r.stream = body, nil
	return r
}

// String sets the body without copying it.
func (r *FullResponse) String(body string) *FullResponse {
	return r.Bytes(uf.S2B(body))
}

// Stream sets the body source. The reader is drained completely by the encoder, and
// closed if it implements io.Closer.
func (r *FullResponse) Stream(reader io.Reader) *FullResponse {
	r.body, r.stream = nil, reader
	return r
}

// Body exposes the body source. At most one of the values is non-nil.
func (r *FullResponse) Body() ([]byte, io.Reader) {
	return r.body, r.stream
}
