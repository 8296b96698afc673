package dummy

import (
	"io"
	"net"

	"github.com/indigo-web/h1codec/transport"
)

var _ transport.Client = new(Client)

// Client replays the data it was initialised with, one piece per read, and returns
// io.EOF afterward unless looped. It also journals all the written data, making it
// thereby a universal mock suitable for most of the tests.
type Client struct {
	data     [][]byte
	pointer  int
	loop     bool
	closed   bool
	written  []byte
	writeErr error
}

func NewMockClient(data ...[]byte) *Client {
	return &Client{
		data: data,
	}
}

func (c *Client) Read() ([]byte, error) {
	if c.closed {
		return nil, net.ErrClosed
	}

	if c.pointer >= len(c.data) {
		if !c.loop || len(c.data) == 0 {
			return nil, io.EOF
		}

		c.pointer = 0
	}

	piece := c.data[c.pointer]
	c.pointer++

	return piece, nil
}

func (c *Client) Write(p []byte) (int, error) {
	if c.writeErr != nil {
		return 0, c.writeErr
	}

	c.written = append(c.written, p...)
	return len(p), nil
}

func (*Client) Remote() net.Addr {
	return nil
}

func (c *Client) Close() error {
	c.closed = true
	return nil
}

// LoopReads makes the client start over once the data is exhausted.
func (c *Client) LoopReads() *Client {
	c.loop = true
	return c
}

// FailWrites makes every write fail with the error.
func (c *Client) FailWrites(err error) *Client {
	c.writeErr = err
	return c
}

func (c *Client) Written() string {
	return string(c.written)
}

func (c *Client) Closed() bool {
	return c.closed
}
