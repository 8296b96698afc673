package transport

import (
	"net"
	"time"
)

// Client is a byte-level view of a connection.
type Client interface {
	// Read returns the next piece of data. The returned slice is valid only until the
	// next Read, as the buffer is reused.
	Read() ([]byte, error)
	Write([]byte) (int, error)
	Remote() net.Addr
	Close() error
}

type client struct {
	conn    net.Conn
	buff    []byte
	timeout time.Duration
}

// NewClient wraps the connection. Every read extends the read deadline by the timeout,
// zero disables it.
func NewClient(conn net.Conn, timeout time.Duration, buff []byte) Client {
	return &client{
		conn:    conn,
		buff:    buff,
		timeout: timeout,
	}
}

func (c *client) Read() ([]byte, error) {
	if c.timeout > 0 {
		if err := c.conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
			return nil, err
		}
	}

	n, err := c.conn.Read(c.buff)
	return c.buff[:n], err
}

func (c *client) Write(b []byte) (int, error) {
	return c.conn.Write(b)
}

func (c *client) Remote() net.Addr {
	return c.conn.RemoteAddr()
}

func (c *client) Close() error {
	return c.conn.Close()
}
