package http

// EventKind names the kind of an event. It exists for logging and diagnostics only,
// consumers must use Dispatch rather than switching over kinds.
type EventKind uint8

const (
	KindRequestLine EventKind = iota + 1
	KindHeader
	KindBody
	KindFrameHeader
	KindPayload
	KindStatusLine
	KindFullResponse
)

func (k EventKind) String() string {
	switch k {
	case KindRequestLine:
		return "RequestLine"
	case KindHeader:
		return "Header"
	case KindBody:
		return "Body"
	case KindFrameHeader:
		return "FrameHeader"
	case KindPayload:
		return "Payload"
	case KindStatusLine:
		return "StatusLine"
	case KindFullResponse:
		return "FullResponse"
	default:
		return "Unknown"
	}
}

// Event is the closed set of events flowing out of the request decoder: RequestLine,
// Header, Body, FrameHeader and Payload. The set is sealed by an unexported method.
type Event interface {
	Kind() EventKind
	dispatch(h EventHandler) error
}

// EventHandler must be implemented by every consumer of Event. Introducing a new event
// kind introduces a new method here, so consumers don't compile until they handle it.
type EventHandler interface {
	OnRequestLine(RequestLine) error
	OnHeader(Header) error
	OnBody(Body) error
	OnFrameHeader(FrameHeader) error
	OnPayload(Payload) error
}

// Dispatch calls the handler method matching the event kind.
func Dispatch(e Event, h EventHandler) error {
	return e.dispatch(h)
}

// EmitFunc receives decoded events in their wire order.
type EmitFunc func(Event)

// ResponseEvent is the closed set of events accepted by the response encoder:
// StatusLine, Header, Body and *FullResponse.
type ResponseEvent interface {
	Kind() EventKind
	dispatchResponse(h ResponseHandler) error
}

// ResponseHandler is the ResponseEvent counterpart of EventHandler.
type ResponseHandler interface {
	OnStatusLine(StatusLine) error
	OnHeader(Header) error
	OnBody(Body) error
	OnFullResponse(*FullResponse) error
}

// DispatchResponse calls the handler method matching the event kind.
func DispatchResponse(e ResponseEvent, h ResponseHandler) error {
	return e.dispatchResponse(h)
}

var (
	_ Event         = RequestLine{}
	_ Event         = Header{}
	_ Event         = Body{}
	_ Event         = FrameHeader{}
	_ Event         = Payload{}
	_ ResponseEvent = StatusLine{}
	_ ResponseEvent = Header{}
	_ ResponseEvent = Body{}
	_ ResponseEvent = new(FullResponse)
)
