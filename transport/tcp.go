package transport

import (
	"errors"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// acceptInterruptPeriod is how often the accept loop wakes up to check whether it
// was stopped.
const acceptInterruptPeriod = 500 * time.Millisecond

type listener interface {
	net.Listener
	SetDeadline(t time.Time) error
}

// TCP accepts connections and serves each of them on a separate goroutine.
type TCP struct {
	l    listener
	wg   *sync.WaitGroup
	stop *atomic.Bool
}

func NewTCP() *TCP {
	return &TCP{
		wg:   new(sync.WaitGroup),
		stop: new(atomic.Bool),
	}
}

func (t *TCP) Bind(addr string) error {
	tcpaddr, err := net.ResolveTCPAddr("tcp", addr)
	if err != nil {
		return err
	}

	t.l, err = net.ListenTCP("tcp", tcpaddr)
	return err
}

// Addr returns the bound address. Useful when bound to the port 0.
func (t *TCP) Addr() net.Addr {
	return t.l.Addr()
}

// Listen blocks until Stop is called or accepting fails. The connection is closed
// as soon as the callback returns.
func (t *TCP) Listen(cb func(conn net.Conn)) error {
	for !t.stop.Load() {
		if err := t.l.SetDeadline(time.Now().Add(acceptInterruptPeriod)); err != nil {
			return err
		}

		conn, err := t.l.Accept()
		if err != nil {
			if errors.Is(err, os.ErrDeadlineExceeded) {
				continue
			}

			return err
		}

		t.wg.Add(1)
		go func(conn net.Conn) {
			defer t.wg.Done()
			cb(conn)
			_ = conn.Close()
		}(conn)
	}

	return nil
}

func (t *TCP) Stop() {
	t.stop.Store(true)
}

func (t *TCP) Close() error {
	return t.l.Close()
}

// Wait blocks until all the connections are served.
func (t *TCP) Wait() {
	t.wg.Wait()
}
