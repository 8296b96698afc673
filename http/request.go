package http

import (
	"iter"
	"strings"

	"github.com/indigo-web/h1codec/http/headers"
	"github.com/indigo-web/h1codec/http/status"
	"github.com/indigo-web/utils/strcomp"
	"github.com/indigo-web/utils/uf"
	json "github.com/json-iterator/go"
)

// Appender is implemented by every element able to stand alone on the wire.
type Appender interface {
	// AppendTo renders the element, including its terminating CRLF, into dst.
	AppendTo(dst []byte) []byte
}

var crlf = []byte("\r\n")

// RequestLine is always the first event of a request.
type RequestLine struct {
	Method, Target, Version string
}

func (RequestLine) Kind() EventKind { return KindRequestLine }

func (r RequestLine) dispatch(h EventHandler) error { return h.OnRequestLine(r) }

func (r RequestLine) AppendTo(dst []byte) []byte {
	dst = append(dst, r.Method...)
	dst = append(dst, ' ')
	dst = append(dst, r.Target...)
	dst = append(dst, ' ')
	dst = append(dst, r.Version...)

	return append(dst, crlf...)
}

// Header is a single field line. It belongs to both request and response streams.
type Header struct {
	Name, Value string
}

func (Header) Kind() EventKind { return KindHeader }

func (hdr Header) dispatch(h EventHandler) error { return h.OnHeader(hdr) }

func (hdr Header) dispatchResponse(h ResponseHandler) error { return h.OnHeader(hdr) }

// Is reports whether the header name matches, ignoring the case.
func (hdr Header) Is(name string) bool {
	return strcomp.EqualFold(hdr.Name, name)
}

// AppendTo renders the header as is, without normalizing spaces around the value.
func (hdr Header) AppendTo(dst []byte) []byte {
	dst = append(dst, hdr.Name...)
	dst = append(dst, ':')
	dst = append(dst, hdr.Value...)

	return append(dst, crlf...)
}

// Body is a fragment of a message body. Every message body ends with exactly one
// fragment having Last set, even if the body is empty.
//
// Data produced by the decoder references the buffer passed into the call that produced
// it and must be copied to be retained after the event handler returns.
type Body struct {
	Data []byte
	Last bool
}

func (Body) Kind() EventKind { return KindBody }

func (b Body) dispatch(h EventHandler) error { return h.OnBody(b) }

func (b Body) dispatchResponse(h ResponseHandler) error { return h.OnBody(b) }

// FullRequest is a request with its body fully read. It is built by the aggregator
// and must not be modified afterward.
type FullRequest struct {
	line    RequestLine
	headers *headers.Headers
	body    []byte
}

// NewFullRequest takes ownership over all the passed values.
func NewFullRequest(line RequestLine, hdrs *headers.Headers, body []byte) *FullRequest {
	if hdrs == nil {
		hdrs = headers.New()
	}

	return &FullRequest{
		line:    line,
		headers: hdrs,
		body:    body,
	}
}

func (f *FullRequest) Line() RequestLine {
	return f.line
}

func (f *FullRequest) Method() string {
	return f.line.Method
}

func (f *FullRequest) Target() string {
	return f.line.Target
}

func (f *FullRequest) Version() string {
	return f.line.Version
}

// Header returns the first value of the header, or an empty string.
func (f *FullRequest) Header(name string) string {
	return f.headers.Value(name)
}

// HeaderValues returns all the values of the header in arrival order.
func (f *FullRequest) HeaderValues(name string) []string {
	return f.headers.Values(name)
}

// Headers walks over all the header fields in arrival order.
func (f *FullRequest) Headers() iter.Seq2[string, string] {
	return f.headers.Iter()
}

// Body returns the whole request body. The returned slice must not be modified.
func (f *FullRequest) Body() []byte {
	return f.body
}

// String returns the body as a string without copying it.
func (f *FullRequest) String() string {
	return uf.B2S(f.body)
}

// JSON unmarshalls the body into the model. Requests explicitly declaring a Content-Type
// other than application/json are refused with status.ErrUnsupportedMediaType.
func (f *FullRequest) JSON(model any) error {
	if contentType, found := f.headers.Get("Content-Type"); found && !isJSON(contentType) {
		return status.ErrUnsupportedMediaType
	}

	iterator := json.ConfigDefault.BorrowIterator(f.body)
	iterator.ReadVal(model)
	err := iterator.Error
	json.ConfigDefault.ReturnIterator(iterator)

	return err
}

func isJSON(contentType string) bool {
	if semicolon := strings.IndexByte(contentType, ';'); semicolon != -1 {
		contentType = contentType[:semicolon]
	}

	return strcomp.EqualFold(strings.TrimSpace(contentType), "application/json")
}
