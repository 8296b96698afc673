package http1

import (
	"bytes"
	"testing"

	"github.com/indigo-web/h1codec/config"
	"github.com/indigo-web/h1codec/http"
	"github.com/indigo-web/h1codec/http/status"
	"github.com/indigo-web/h1codec/stream"
	"github.com/stretchr/testify/require"
)

func parts(req string, n int) [][]byte {
	var result [][]byte
	for _, part := range splitIntoParts(req, n) {
		result = append(result, []byte(part))
	}

	return result
}

func runDecodeStage(input ...[]byte) *stream.Collector[http.Event] {
	collector := new(stream.Collector[http.Event])
	stream.Slice(input...).Subscribe(NewDecodeStage(getDecoder(), collector))
	return collector
}

// cancelling subscriber cancels its subscription after receiving the first event.
type cancelling struct {
	stream.Collector[http.Event]
}

func (c *cancelling) OnNext(ev http.Event) {
	c.Collector.OnNext(ev)
	c.Subscription.Cancel()
}

// stepper requests buffers only when told to.
type stepper struct {
	stream.Collector[[]byte]
}

func (s *stepper) OnSubscribe(sub stream.Subscription) {
	s.Subscription = sub
}

func (s *stepper) step(t *testing.T, want string) {
	s.Subscription.Request(1)
	require.NotEmpty(t, s.Items)
	require.Equal(t, want, string(s.Items[len(s.Items)-1]))
}

func TestDecodeStage(t *testing.T) {
	t.Run("completes", func(t *testing.T) {
		collector := runDecodeStage([]byte(fixedPOST + simpleGET))
		require.NoError(t, collector.Err)
		require.True(t, collector.Completed)
		require.Len(t, collector.Items, 6)
	})

	t.Run("split input", func(t *testing.T) {
		collector := runDecodeStage(parts(chunkedPOST, 5)...)
		require.NoError(t, collector.Err)
		require.True(t, collector.Completed)

		var body []byte
		for _, ev := range collector.Items {
			if fragment, ok := ev.(http.Body); ok {
				body = append(body, fragment.Data...)
			}
		}

		require.Equal(t, chunkedWords, string(body))
	})

	t.Run("decoding error", func(t *testing.T) {
		collector := runDecodeStage([]byte("GET / HTTP/1.1\r\nbroken\r\n\r\n"), []byte(simpleGET))
		require.False(t, collector.Completed)
		require.Equal(t, status.BadRequest, status.CodeOf(collector.Err))
		// nothing after the error is delivered
		require.Len(t, collector.Items, 1)
	})

	t.Run("unexpected EOF", func(t *testing.T) {
		collector := runDecodeStage([]byte(simpleGET), []byte("POST / HTTP/1.1\r\nContent-Length: 5\r\n\r\nhe"))
		require.False(t, collector.Completed)
		require.ErrorIs(t, collector.Err, status.ErrUnexpectedEOF)
	})

	t.Run("upstream error", func(t *testing.T) {
		collector := new(stream.Collector[http.Event])
		stage := NewDecodeStage(getDecoder(), collector)
		stage.OnSubscribe(stageSubscription{cancel: func() {}})
		stage.OnError(status.ErrInternalServerError)
		stage.OnComplete()
		require.ErrorIs(t, collector.Err, status.ErrInternalServerError)
		require.False(t, collector.Completed)
	})

	t.Run("downstream cancel", func(t *testing.T) {
		subscriber := new(cancelling)
		stream.Slice([]byte(fixedPOST), []byte(simpleGET)).Subscribe(NewDecodeStage(getDecoder(), subscriber))
		require.Len(t, subscriber.Items, 1)
		require.False(t, subscriber.Completed)
		require.NoError(t, subscriber.Err)
	})
}

func TestEncodeStage(t *testing.T) {
	run := func(events ...http.ResponseEvent) *stream.Collector[[]byte] {
		collector := new(stream.Collector[[]byte])
		stream.Slice(events...).Subscribe(NewEncodeStage(config.Default().Encoder, collector))
		return collector
	}

	t.Run("buffers", func(t *testing.T) {
		collector := run(
			http.StatusLine{Code: status.OK},
			http.Header{Name: "Content-Length", Value: "3"},
			http.Body{Data: []byte("abc"), Last: true},
			http.NewResponse().String("ok"),
		)
		require.NoError(t, collector.Err)
		require.True(t, collector.Completed)
		// the dropped header produces no buffer
		require.Len(t, collector.Items, 3)

		want := "HTTP/1.1 200 OK\r\nTransfer-Encoding:chunked\r\n\r\n3\r\nabc\r\n0\r\n\r\n" +
			"HTTP/1.1 200 OK\r\nContent-Length:2\r\n\r\nok"
		require.Equal(t, want, string(bytes.Join(collector.Items, nil)))
	})

	t.Run("out of order", func(t *testing.T) {
		collector := run(http.Body{Last: true}, http.NewResponse())
		require.ErrorIs(t, collector.Err, status.ErrInternalServerError)
		require.Empty(t, collector.Items)
	})

	t.Run("unfinished response", func(t *testing.T) {
		collector := run(http.StatusLine{Code: status.OK}, http.Body{Data: []byte("a")})
		require.ErrorIs(t, collector.Err, status.ErrInternalServerError)
		require.False(t, collector.Completed)
	})

	t.Run("bounded demand", func(t *testing.T) {
		subscriber := new(stepper)
		stream.Slice[http.ResponseEvent](
			http.StatusLine{Code: status.OK},
			http.Header{Name: "X", Value: "y"},
			http.Header{Name: "Content-Length", Value: "3"},
			http.Body{Data: []byte("ab")},
			http.Body{},
			http.Body{Data: []byte("c"), Last: true},
		).Subscribe(NewEncodeStage(config.Default().Encoder, subscriber))
		require.Empty(t, subscriber.Items)

		subscriber.step(t, "HTTP/1.1 200 OK\r\n")
		subscriber.step(t, "X:y\r\n")
		// the dropped header must not eat the demand
		subscriber.step(t, "Transfer-Encoding:chunked\r\n\r\n2\r\nab\r\n")
		// neither must the empty fragment
		subscriber.step(t, "1\r\nc\r\n0\r\n\r\n")
		require.Len(t, subscriber.Items, 4)
		require.True(t, subscriber.Completed)
		require.NoError(t, subscriber.Err)
	})
}
