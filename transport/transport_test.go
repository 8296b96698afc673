package transport_test

import (
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"github.com/indigo-web/h1codec/stream"
	"github.com/indigo-web/h1codec/transport"
	"github.com/indigo-web/h1codec/transport/dummy"
	"github.com/stretchr/testify/require"
)

type failingConn struct {
	dummy.Conn
	err error
}

func (f *failingConn) Read([]byte) (int, error) {
	return 0, f.err
}

// stepper requests a single item at a time, only when told to.
type stepper struct {
	sub   stream.Subscription
	items []string
	done  bool
}

func (s *stepper) OnSubscribe(sub stream.Subscription) { s.sub = sub }
func (s *stepper) OnNext(item []byte)                  { s.items = append(s.items, string(item)) }
func (s *stepper) OnError(error)                       {}
func (s *stepper) OnComplete()                         { s.done = true }

func TestClient(t *testing.T) {
	t.Run("read", func(t *testing.T) {
		conn := dummy.NewConn([]byte("Hello, "), []byte("world!"))
		client := transport.NewClient(conn, time.Second, make([]byte, 4))

		data, err := client.Read()
		require.NoError(t, err)
		require.Equal(t, "Hell", string(data))
		require.False(t, conn.Deadline.IsZero())

		data, err = client.Read()
		require.NoError(t, err)
		require.Equal(t, "o, ", string(data))
	})

	t.Run("write and close", func(t *testing.T) {
		conn := dummy.NewConn()
		client := transport.NewClient(conn, 0, make([]byte, 16))
		_, err := client.Write([]byte("hello"))
		require.NoError(t, err)
		require.Equal(t, "hello", string(conn.Output))
		require.Equal(t, "127.0.0.1:54321", client.Remote().String())
		require.True(t, conn.Deadline.IsZero())

		require.NoError(t, client.Close())
		_, err = client.Read()
		require.ErrorIs(t, err, net.ErrClosed)
	})
}

func TestPublisher(t *testing.T) {
	t.Run("until EOF", func(t *testing.T) {
		collector := new(stream.Collector[[]byte])
		transport.NewPublisher(dummy.NewMockClient([]byte("Hello"), []byte("world"))).Subscribe(collector)
		require.True(t, collector.Completed)
		require.NoError(t, collector.Err)
		require.Equal(t, [][]byte{[]byte("Hello"), []byte("world")}, collector.Items)
	})

	t.Run("closed connection", func(t *testing.T) {
		client := transport.NewClient(dummy.NewConn([]byte("data")), 0, make([]byte, 16))
		require.NoError(t, client.Close())
		collector := new(stream.Collector[[]byte])
		transport.NewPublisher(client).Subscribe(collector)
		require.True(t, collector.Completed)
		require.Empty(t, collector.Items)
	})

	t.Run("error", func(t *testing.T) {
		failure := errors.New("connection reset")
		client := transport.NewClient(&failingConn{err: failure}, 0, make([]byte, 16))
		collector := new(stream.Collector[[]byte])
		transport.NewPublisher(client).Subscribe(collector)
		require.ErrorIs(t, collector.Err, failure)
		require.False(t, collector.Completed)
	})

	t.Run("honors demand", func(t *testing.T) {
		client := dummy.NewMockClient([]byte("a"), []byte("b"), []byte("c"))
		subscriber := new(stepper)
		transport.NewPublisher(client).Subscribe(subscriber)
		require.Empty(t, subscriber.items)

		subscriber.sub.Request(2)
		require.Equal(t, []string{"a", "b"}, subscriber.items)

		subscriber.sub.Request(5)
		require.Equal(t, []string{"a", "b", "c"}, subscriber.items)
		require.True(t, subscriber.done)
	})

	t.Run("cancel", func(t *testing.T) {
		client := dummy.NewMockClient([]byte("a")).LoopReads()
		subscriber := new(stepper)
		transport.NewPublisher(client).Subscribe(subscriber)
		subscriber.sub.Request(3)
		subscriber.sub.Cancel()
		subscriber.sub.Request(3)
		require.Len(t, subscriber.items, 3)
		require.False(t, subscriber.done)
	})
}

func TestSink(t *testing.T) {
	t.Run("writes", func(t *testing.T) {
		client := dummy.NewMockClient()
		sink := transport.NewSink(client)
		stream.Slice([]byte("Hello, "), []byte("world!")).Subscribe(sink)
		require.Equal(t, "Hello, world!", client.Written())
		require.True(t, sink.Completed())
		require.NoError(t, sink.Err())
	})

	t.Run("failed write", func(t *testing.T) {
		failure := errors.New("broken pipe")
		client := dummy.NewMockClient().FailWrites(failure)
		sink := transport.NewSink(client)
		stream.Slice([]byte("a"), []byte("b")).Subscribe(sink)
		require.ErrorIs(t, sink.Err(), failure)
		// cancelled, so never completed
		require.False(t, sink.Completed())
		require.False(t, client.Closed())
	})
}

func TestTCP(t *testing.T) {
	tcp := transport.NewTCP()
	require.NoError(t, tcp.Bind("localhost:0"))

	listenErr := make(chan error, 1)
	go func() {
		listenErr <- tcp.Listen(func(conn net.Conn) {
			client := transport.NewClient(conn, time.Second, make([]byte, 64))
			transport.NewPublisher(client).Subscribe(transport.NewSink(client))
		})
	}()

	conn, err := net.Dial("tcp", tcp.Addr().String())
	require.NoError(t, err)
	_, err = conn.Write([]byte("echo"))
	require.NoError(t, err)

	buff := make([]byte, 4)
	_, err = io.ReadFull(conn, buff)
	require.NoError(t, err)
	require.Equal(t, "echo", string(buff))
	require.NoError(t, conn.Close())

	tcp.Stop()
	require.NoError(t, <-listenErr)
	tcp.Wait()
	require.NoError(t, tcp.Close())
}
