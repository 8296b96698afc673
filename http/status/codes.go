package status

import "strconv"

// Code is an HTTP status code.
type Code uint16

// Status codes registered with IANA, as far as the codec may need to report or
// render them.
const (
	Continue           Code = 100
	SwitchingProtocols Code = 101
	Processing         Code = 102
	EarlyHints         Code = 103

	OK                   Code = 200
	Created              Code = 201
	Accepted             Code = 202
	NonAuthoritativeInfo Code = 203
	NoContent            Code = 204
	ResetContent         Code = 205
	PartialContent       Code = 206
	MultiStatus          Code = 207
	AlreadyReported      Code = 208
	IMUsed               Code = 226

	MultipleChoices   Code = 300
	MovedPermanently  Code = 301
	Found             Code = 302
	SeeOther          Code = 303
	NotModified       Code = 304
	UseProxy          Code = 305
	TemporaryRedirect Code = 307
	PermanentRedirect Code = 308

	BadRequest                   Code = 400
	Unauthorized                 Code = 401
	PaymentRequired              Code = 402
	Forbidden                    Code = 403
	NotFound                     Code = 404
	MethodNotAllowed             Code = 405
	NotAcceptable                Code = 406
	ProxyAuthRequired            Code = 407
	RequestTimeout               Code = 408
	Conflict                     Code = 409
	Gone                         Code = 410
	LengthRequired               Code = 411
	PreconditionFailed           Code = 412
	RequestEntityTooLarge        Code = 413
	RequestURITooLong            Code = 414
	UnsupportedMediaType         Code = 415
	RequestedRangeNotSatisfiable Code = 416
	ExpectationFailed            Code = 417
	Teapot                       Code = 418
	MisdirectedRequest           Code = 421
	UnprocessableEntity          Code = 422
	Locked                       Code = 423
	FailedDependency             Code = 424
	TooEarly                     Code = 425
	UpgradeRequired              Code = 426
	PreconditionRequired         Code = 428
	TooManyRequests              Code = 429
	RequestHeaderFieldsTooLarge  Code = 431
	UnavailableForLegalReasons   Code = 451

	InternalServerError           Code = 500
	NotImplemented                Code = 501
	BadGateway                    Code = 502
	ServiceUnavailable            Code = 503
	GatewayTimeout                Code = 504
	HTTPVersionNotSupported       Code = 505
	VariantAlsoNegotiates         Code = 506
	InsufficientStorage           Code = 507
	LoopDetected                  Code = 508
	NotExtended                   Code = 510
	NetworkAuthenticationRequired Code = 511
)

var texts = map[Code]string{
	Continue:                      "Continue",
	SwitchingProtocols:            "Switching Protocols",
	Processing:                    "Processing",
	EarlyHints:                    "Early Hints",
	OK:                            "OK",
	Created:                       "Created",
	Accepted:                      "Accepted",
	NonAuthoritativeInfo:          "Non-Authoritative Information",
	NoContent:                     "No Content",
	ResetContent:                  "Reset Content",
	PartialContent:                "Partial Content",
	MultiStatus:                   "Multi-Status",
	AlreadyReported:               "Already Reported",
	IMUsed:                        "IM Used",
	MultipleChoices:               "Multiple Choices",
	MovedPermanently:              "Moved Permanently",
	Found:                         "Found",
	SeeOther:                      "See Other",
	NotModified:                   "Not Modified",
	UseProxy:                      "Use Proxy",
	TemporaryRedirect:             "Temporary Redirect",
	PermanentRedirect:             "Permanent Redirect",
	BadRequest:                    "Bad Request",
	Unauthorized:                  "Unauthorized",
	PaymentRequired:               "Payment Required",
	Forbidden:                     "Forbidden",
	NotFound:                      "Not Found",
	MethodNotAllowed:              "Method Not Allowed",
	NotAcceptable:                 "Not Acceptable",
	ProxyAuthRequired:             "Proxy Authentication Required",
	RequestTimeout:                "Request Timeout",
	Conflict:                      "Conflict",
	Gone:                          "Gone",
	LengthRequired:                "Length Required",
	PreconditionFailed:            "Precondition Failed",
	RequestEntityTooLarge:         "Request Entity Too Large",
	RequestURITooLong:             "Request URI Too Long",
	UnsupportedMediaType:          "Unsupported Media Type",
	RequestedRangeNotSatisfiable:  "Requested Range Not Satisfiable",
	ExpectationFailed:             "Expectation Failed",
	Teapot:                        "I'm a teapot",
	MisdirectedRequest:            "Misdirected Request",
	UnprocessableEntity:           "Unprocessable Entity",
	Locked:                        "Locked",
	FailedDependency:              "Failed Dependency",
	TooEarly:                      "Too Early",
	UpgradeRequired:               "Upgrade Required",
	PreconditionRequired:          "Precondition Required",
	TooManyRequests:               "Too Many Requests",
	RequestHeaderFieldsTooLarge:   "Request Header Fields Too Large",
	UnavailableForLegalReasons:    "Unavailable For Legal Reasons",
	InternalServerError:           "Internal Server Error",
	NotImplemented:                "Not Implemented",
	BadGateway:                    "Bad Gateway",
	ServiceUnavailable:            "Service Unavailable",
	GatewayTimeout:                "Gateway Timeout",
	HTTPVersionNotSupported:       "HTTP Version Not Supported",
	VariantAlsoNegotiates:         "Variant Also Negotiates",
	InsufficientStorage:           "Insufficient Storage",
	LoopDetected:                  "Loop Detected",
	NotExtended:                   "Not Extended",
	NetworkAuthenticationRequired: "Network Authentication Required",
}

// KnownCodes lists every code having a registered reason phrase.
var KnownCodes = func() []Code {
	codes := make([]Code, 0, len(texts))
	for code := range texts {
		codes = append(codes, code)
	}

	return codes
}()

// Text returns the reason phrase of the code, or an empty string if the code
// isn't known.
func Text(code Code) string {
	return texts[code]
}

// StringCode returns the 3-digit decimal representation of the code.
func StringCode(code Code) string {
	return strconv.FormatUint(uint64(code), 10)
}
