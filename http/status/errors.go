package status

import "errors"

// HTTPError is the only error representation the decoder ever reports. It carries
// the status code the connection should be answered with, if it still can be.
type HTTPError struct {
	Message string
	Code    Code
}

func NewError(code Code, message string) error {
	return HTTPError{
		Code:    code,
		Message: message,
	}
}

func (h HTTPError) Error() string {
	return h.Message
}

// CodeOf extracts the status code from an HTTPError anywhere in the chain. Any other
// error results in InternalServerError.
func CodeOf(err error) Code {
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Code
	}

	return InternalServerError
}

var (
	ErrBadRequest              = NewError(BadRequest, "bad request")
	ErrBadRequestLine          = NewError(BadRequest, "malformed request line")
	ErrBadHeader               = NewError(BadRequest, "malformed header field")
	ErrBadContentLength        = NewError(BadRequest, "malformed content length")
	ErrConflictingLength       = NewError(BadRequest, "conflicting content length values")
	ErrUnsupportedEncoding     = NewError(BadRequest, "transfer encoding is not supported")
	ErrBadChunk                = NewError(BadRequest, "malformed chunk-encoded data")
	ErrUnexpectedEOF           = NewError(BadRequest, "connection closed in the middle of a request")
	ErrUnsupportedMediaType    = NewError(UnsupportedMediaType, "unsupported media type")
	ErrBodyTooLarge            = NewError(RequestEntityTooLarge, "request body is too large")
	ErrHeaderFieldsTooLarge    = NewError(RequestHeaderFieldsTooLarge, "request header fields too large")
	ErrHTTPVersionNotSupported = NewError(HTTPVersionNotSupported, "HTTP version not supported")
	ErrInternalServerError     = NewError(InternalServerError, "internal server error")
)
