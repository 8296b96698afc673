package dummy

import (
	"io"
	"net"
	"time"
)

// Conn is an in-memory net.Conn. Reads return the pieces of Input one by one and io.EOF
// afterward, writes are accumulated in Output.
type Conn struct {
	Input    [][]byte
	Output   []byte
	Deadline time.Time
	closed   bool
}

func NewConn(input ...[]byte) *Conn {
	return &Conn{Input: input}
}

func (c *Conn) Read(b []byte) (n int, err error) {
	if c.closed {
		return 0, net.ErrClosed
	}

	if len(c.Input) == 0 {
		return 0, io.EOF
	}

	n = copy(b, c.Input[0])
	if c.Input[0] = c.Input[0][n:]; len(c.Input[0]) == 0 {
		c.Input = c.Input[1:]
	}

	return n, nil
}

func (c *Conn) Write(b []byte) (n int, err error) {
	if c.closed {
		return 0, net.ErrClosed
	}

	c.Output = append(c.Output, b...)
	return len(b), nil
}

func (c *Conn) Close() error {
	c.closed = true
	return nil
}

func (c *Conn) LocalAddr() net.Addr {
	return nil
}

func (c *Conn) RemoteAddr() net.Addr {
	return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 54321}
}

func (c *Conn) SetDeadline(t time.Time) error {
	c.Deadline = t
	return nil
}

func (c *Conn) SetReadDeadline(t time.Time) error {
	c.Deadline = t
	return nil
}

func (c *Conn) SetWriteDeadline(time.Time) error {
	return nil
}
