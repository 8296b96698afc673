package http1

import (
	"fmt"
	"io"
	"strconv"

	"github.com/indigo-web/h1codec/http"
	"github.com/indigo-web/h1codec/http/status"
	"github.com/indigo-web/utils/strcomp"
)

var (
	crlf              = []byte("\r\n")
	chunkedFinalizer  = []byte("0\r\n\r\n")
	chunkedHeadersEnd = []byte("Transfer-Encoding:chunked\r\n\r\n")
)

const contentLength = "Content-Length:"

// Encoder renders response events into their wire representation. It holds no state,
// so the zero value is ready to use and may be shared freely. Every method appends to
// the passed buffer and returns the result, just like the strconv.Append* family.
type Encoder struct{}

func (Encoder) StatusLine(dst []byte, line http.StatusLine) []byte {
	return line.AppendTo(dst)
}

// Header renders the header as is. The caller is responsible for not passing the
// framing headers, which are always computed by the encoder.
func (Encoder) Header(dst []byte, hdr http.Header) []byte {
	return hdr.AppendTo(dst)
}

// HeadersEnd closes the header block of a response, whose body is going to be streamed.
// Such a body is always chunked, no matter how it's produced.
func (Encoder) HeadersEnd(dst []byte) []byte {
	return append(dst, chunkedHeadersEnd...)
}

// Chunk renders a body fragment as a chunk. A fragment with Last set is additionally
// followed by the terminal chunk. An empty non-last fragment produces nothing, as it
// otherwise would be treated as the terminal chunk by the peer.
func (Encoder) Chunk(dst []byte, body http.Body) []byte {
	if len(body.Data) > 0 {
		dst = strconv.AppendUint(dst, uint64(len(body.Data)), 16)
		dst = append(dst, crlf...)
		dst = append(dst, body.Data...)
		dst = append(dst, crlf...)
	}

	if body.Last {
		dst = append(dst, chunkedFinalizer...)
	}

	return dst
}

// Full renders the whole response with the body length known in advance. The framing
// headers set by the caller are dropped and the Content-Length is computed instead.
// A streamed body is read until io.EOF and closed if it implements io.Closer, therefore
// the output doesn't depend on whether the body was supplied as a buffer or a reader.
func (e Encoder) Full(dst []byte, response *http.FullResponse) ([]byte, error) {
	if response == nil || response.Status.Code == 0 {
		return dst, status.ErrInternalServerError
	}

	body, reader := response.Body()
	if reader != nil {
		var err error
		body, err = drain(reader)
		if err != nil {
			return dst, err
		}
	}

	dst = e.StatusLine(dst, response.Status)

	if response.Headers != nil {
		for _, pair := range response.Headers.Expose() {
			if isFramingHeader(pair.Key) {
				continue
			}

			dst = e.Header(dst, http.Header{Name: pair.Key, Value: pair.Value})
		}
	}

	dst = append(dst, contentLength...)
	dst = strconv.AppendInt(dst, int64(len(body)), 10)
	dst = append(dst, crlf...)
	dst = append(dst, crlf...)

	return append(dst, body...), nil
}

// Encode renders a single event on its own. Headers aren't filtered and the header
// block is never closed implicitly, use ResponseWriter for that.
func (e Encoder) Encode(dst []byte, ev http.ResponseEvent) ([]byte, error) {
	r := renderer{encoder: e, buff: dst}
	err := http.DispatchResponse(ev, &r)

	return r.buff, err
}

type renderer struct {
	encoder Encoder
	buff    []byte
}

func (r *renderer) OnStatusLine(line http.StatusLine) error {
	r.buff = r.encoder.StatusLine(r.buff, line)
	return nil
}

func (r *renderer) OnHeader(hdr http.Header) error {
	r.buff = r.encoder.Header(r.buff, hdr)
	return nil
}

func (r *renderer) OnBody(body http.Body) error {
	r.buff = r.encoder.Chunk(r.buff, body)
	return nil
}

func (r *renderer) OnFullResponse(response *http.FullResponse) (err error) {
	r.buff, err = r.encoder.Full(r.buff, response)
	return err
}

func drain(reader io.Reader) ([]byte, error) {
	body, err := io.ReadAll(reader)
	if closer, ok := reader.(io.Closer); ok {
		if closeErr := closer.Close(); err == nil {
			err = closeErr
		}
	}

	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	return body, nil
}

func isFramingHeader(name string) bool {
	return strcomp.EqualFold(name, "Content-Length") || strcomp.EqualFold(name, "Transfer-Encoding")
}
