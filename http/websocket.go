package http

// Opcode is a websocket frame opcode.
type Opcode uint8

const (
	OpContinuation Opcode = 0x0
	OpText         Opcode = 0x1
	OpBinary       Opcode = 0x2
	OpClose        Opcode = 0x8
	OpPing         Opcode = 0x9
	OpPong         Opcode = 0xA
)

// FrameHeader opens a websocket frame on the request event stream. The frame payload
// follows as one or more Payload events, the final one having Last set.
type FrameHeader struct {
	Fin    bool
	Opcode Opcode
	Masked bool
	Length uint64
}

func (FrameHeader) Kind() EventKind { return KindFrameHeader }

func (f FrameHeader) dispatch(h EventHandler) error { return h.OnFrameHeader(f) }

// Payload is a fragment of a websocket frame payload. The same ownership rules as
// for Body apply.
type Payload struct {
	Data []byte
	Last bool
}

func (Payload) Kind() EventKind { return KindPayload }

func (p Payload) dispatch(h EventHandler) error { return h.OnPayload(p) }

// Frame is a websocket frame with its payload fully read.
type Frame struct {
	Header  FrameHeader
	Payload []byte
}
