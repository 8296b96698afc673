package http1

import (
	"bytes"

	"github.com/indigo-web/h1codec/config"
	"github.com/indigo-web/h1codec/http"
	"github.com/indigo-web/h1codec/http/status"
	"github.com/indigo-web/h1codec/internal/buffer"
	"github.com/indigo-web/utils/strcomp"
)

type decoderState uint8

const (
	eRequestLine decoderState = iota + 1
	eHeaders
	eBodyFixed
	eChunkSize
	eChunk
	eChunkEOL
	eChunkFooter
	eCorrupt
)

// maxChunkSizeDigits limits the chunk size to 2^60-1 bytes, which leaves no room for
// an overflow when summing it up with the body size limit.
const maxChunkSizeDigits = 15

// Decoder is a stream-based HTTP/1.1 requests decoder. It's fed with arbitrarily split
// byte buffers and emits the events of every request in their wire order: a RequestLine,
// zero or more Header and finally Body fragments, the last one of which has Last set.
// Afterward it's ready to decode the next request from the same connection.
//
// A Decoder belongs to exactly one connection and must never be shared.
type Decoder struct {
	line        *buffer.Line
	maxBodySize int64
	state       decoderState
	err         error

	// framing of the current message, as declared by its headers
	contentLength    int64
	hasContentLength bool
	chunked          bool

	// remaining is the number of bytes left of either the fixed-length body or the
	// current chunk.
	remaining int64
	// received is the sum of all the chunk sizes of the current message.
	received int64
	crSeen   bool
}

func NewDecoder(cfg config.Decoder) *Decoder {
	return &Decoder{
		line:        buffer.NewLine(cfg.LinePrealloc, cfg.MaxLineLength),
		maxBodySize: cfg.MaxBodySize,
		state:       eRequestLine,
	}
}

// Parse consumes the whole data, emitting every event it completes. Nothing is emitted
// for partially received lines and the decoding resumes on the next call exactly where
// it stopped. Body fragments reference the data and are valid only during the emit call.
//
// The first error is returned as is, and it's fatal: the decoder sinks everything it
// gets afterward, until Reset is called.
func (d *Decoder) Parse(data []byte, emit http.EmitFunc) (err error) {
	for len(data) > 0 {
		switch d.state {
		case eRequestLine:
			data, err = d.requestLine(data, emit)
		case eHeaders:
			data, err = d.header(data, emit)
		case eBodyFixed:
			data = d.bodyFixed(data, emit)
		case eChunkSize:
			data, err = d.chunkSize(data)
		case eChunk:
			data = d.chunk(data, emit)
		case eChunkEOL:
			data, err = d.chunkEOL(data)
		case eChunkFooter:
			data, err = d.chunkFooter(data, emit)
		case eCorrupt:
			return nil
		default:
			err = status.ErrInternalServerError
		}

		if err != nil {
			d.corrupt(err)
			return err
		}
	}

	return nil
}

// Pending reports whether a request is partially received.
func (d *Decoder) Pending() bool {
	switch d.state {
	case eRequestLine:
		return d.line.Len() > 0
	case eCorrupt:
		return false
	default:
		return true
	}
}

// Err returns the error the decoder failed with, if any.
func (d *Decoder) Err() error {
	return d.err
}

// Reset brings the decoder into its initial state, dropping everything it knows, including
// a previously met error.
func (d *Decoder) Reset() {
	d.err = nil
	d.done()
}

func (d *Decoder) requestLine(data []byte, emit http.EmitFunc) ([]byte, error) {
	line, rest, complete, ok := d.line.Read(data)
	if !ok {
		return nil, status.ErrHeaderFieldsTooLarge
	}

	if !complete {
		return nil, nil
	}

	if len(line) == 0 {
		// empty lines preceding the request line must be ignored. This is usually a CRLF
		// sent after the body by some clients.
		return rest, nil
	}

	method, target, version, err := splitRequestLine(line)
	if err != nil {
		return nil, err
	}

	emit(http.RequestLine{
		Method:  string(method),
		Target:  string(target),
		Version: string(version),
	})
	d.state = eHeaders

	return rest, nil
}

func (d *Decoder) header(data []byte, emit http.EmitFunc) ([]byte, error) {
	line, rest, complete, ok := d.line.Read(data)
	if !ok {
		return nil, status.ErrHeaderFieldsTooLarge
	}

	if !complete {
		return nil, nil
	}

	if len(line) == 0 {
		return rest, d.headersCompleted(emit)
	}

	colon := bytes.IndexByte(line, ':')
	if colon == -1 {
		return nil, status.ErrBadHeader
	}

	// no whitespace is allowed between the field name and the colon
	name := bytes.TrimLeft(line[:colon], " \t")
	if len(name) == 0 || isSpace(name[len(name)-1]) {
		return nil, status.ErrBadHeader
	}

	hdr := http.Header{
		Name:  string(name),
		Value: string(bytes.TrimSpace(line[colon+1:])),
	}

	switch {
	case hdr.Is("Content-Length"):
		length, err := parseContentLength(hdr.Value)
		if err != nil {
			return nil, err
		}

		if d.hasContentLength && d.contentLength != length {
			return nil, status.ErrConflictingLength
		}

		d.contentLength, d.hasContentLength = length, true
	case hdr.Is("Transfer-Encoding"):
		// the only supported coding is a single chunked. Everything else may not be
		// delimited reliably, so must be refused.
		if d.chunked || !strcomp.EqualFold(hdr.Value, "chunked") {
			return nil, status.ErrUnsupportedEncoding
		}

		d.chunked = true
	}

	emit(hdr)

	return rest, nil
}

// headersCompleted decides how the body is delimited. Chunked always takes precedence
// over the Content-Length.
func (d *Decoder) headersCompleted(emit http.EmitFunc) error {
	switch {
	case d.chunked:
		d.received = 0
		d.state = eChunkSize
	case d.contentLength > 0:
		if d.contentLength > d.maxBodySize {
			return status.ErrBodyTooLarge
		}

		d.remaining = d.contentLength
		d.state = eBodyFixed
	default:
		emit(http.Body{Last: true})
		d.done()
	}

	return nil
}

func (d *Decoder) bodyFixed(data []byte, emit http.EmitFunc) []byte {
	n := min(int64(len(data)), d.remaining)
	d.remaining -= n
	last := d.remaining == 0
	emit(http.Body{Data: data[:n], Last: last})

	if last {
		d.done()
	}

	return data[n:]
}

func (d *Decoder) chunkSize(data []byte) ([]byte, error) {
	line, rest, complete, ok := d.line.Read(data)
	if !ok {
		return nil, status.ErrHeaderFieldsTooLarge
	}

	if !complete {
		return nil, nil
	}

	size, err := parseChunkSize(line)
	if err != nil {
		return nil, err
	}

	if size > d.maxBodySize-d.received {
		return nil, status.ErrBodyTooLarge
	}

	d.received += size

	if size == 0 {
		d.state = eChunkFooter
	} else {
		d.remaining = size
		d.state = eChunk
	}

	return rest, nil
}

func (d *Decoder) chunk(data []byte, emit http.EmitFunc) []byte {
	n := min(int64(len(data)), d.remaining)
	d.remaining -= n
	emit(http.Body{Data: data[:n]})

	if d.remaining == 0 {
		d.state = eChunkEOL
	}

	return data[n:]
}

// chunkEOL consumes the CRLF (or just LF) following the chunk data.
func (d *Decoder) chunkEOL(data []byte) ([]byte, error) {
	switch data[0] {
	case '\r':
		if d.crSeen {
			return nil, status.ErrBadChunk
		}

		d.crSeen = true
	case '\n':
		d.crSeen = false
		d.state = eChunkSize
	default:
		return nil, status.ErrBadChunk
	}

	return data[1:], nil
}

// chunkFooter waits for the empty line terminating the chunked body. Trailer fields
// aren't supported, therefore silently discarded.
func (d *Decoder) chunkFooter(data []byte, emit http.EmitFunc) ([]byte, error) {
	line, rest, complete, ok := d.line.Read(data)
	if !ok {
		return nil, status.ErrHeaderFieldsTooLarge
	}

	if !complete {
		return nil, nil
	}

	if len(line) == 0 {
		emit(http.Body{Last: true})
		d.done()
	}

	return rest, nil
}

// done resets the per-message state, making the decoder ready for the next request.
func (d *Decoder) done() {
	d.line.Clear()
	d.state = eRequestLine
	d.contentLength = 0
	d.hasContentLength = false
	d.chunked = false
	d.remaining = 0
	d.received = 0
	d.crSeen = false
}

func (d *Decoder) corrupt(err error) {
	d.line.Clear()
	d.state = eCorrupt
	d.err = err
}

func splitRequestLine(line []byte) (method, target, version []byte, err error) {
	sp := bytes.IndexByte(line, ' ')
	lastSp := bytes.LastIndexByte(line, ' ')
	if sp <= 0 || lastSp == sp {
		return nil, nil, nil, status.ErrBadRequestLine
	}

	method, target, version = line[:sp], line[sp+1:lastSp], line[lastSp+1:]
	if len(target) == 0 || len(version) == 0 || bytes.IndexByte(target, ' ') != -1 {
		return nil, nil, nil, status.ErrBadRequestLine
	}

	for _, char := range line {
		if isControlChar(char) {
			return nil, nil, nil, status.ErrBadRequestLine
		}
	}

	return method, target, version, checkVersion(version)
}

// checkVersion accepts HTTP/1.x only. Other well-formed versions are refused as
// unsupported rather than malformed.
func checkVersion(version []byte) error {
	const prefix = "HTTP/"

	if len(version) != len(prefix)+3 || string(version[:len(prefix)]) != prefix ||
		!isDigit(version[5]) || version[6] != '.' || !isDigit(version[7]) {
		return status.ErrBadRequestLine
	}

	if version[5] != '1' {
		return status.ErrHTTPVersionNotSupported
	}

	return nil
}

func parseContentLength(value string) (length int64, err error) {
	if len(value) == 0 {
		return 0, status.ErrBadContentLength
	}

	for i := 0; i < len(value); i++ {
		char := value[i]
		if !isDigit(char) {
			return 0, status.ErrBadContentLength
		}

		if length > (1<<63-1-int64(char-'0'))/10 {
			return 0, status.ErrBadContentLength
		}

		length = length*10 + int64(char-'0')
	}

	return length, nil
}

// parseChunkSize parses the hexadecimal chunk size, ignoring chunk extensions.
func parseChunkSize(line []byte) (size int64, err error) {
	if semicolon := bytes.IndexByte(line, ';'); semicolon != -1 {
		line = line[:semicolon]
	}

	line = bytes.TrimRight(line, " \t")
	if len(line) == 0 || len(line) > maxChunkSizeDigits {
		return 0, status.ErrBadChunk
	}

	for _, char := range line {
		value := unhex(char)
		if value == 0xFF {
			return 0, status.ErrBadChunk
		}

		size = size<<4 | int64(value)
	}

	return size, nil
}

func unhex(c byte) byte {
	switch {
	case '0' <= c && c <= '9':
		return c - '0'
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10
	default:
		return 0xFF
	}
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

func isControlChar(c byte) bool {
	return c < 0x20 || c == 0x7f
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t'
}
