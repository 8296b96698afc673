package main

import (
	"bufio"
	"bytes"
	"io"
	stdhttp "net/http"
	"strings"
	"testing"

	"github.com/indigo-web/h1codec/config"
	"github.com/indigo-web/h1codec/http/status"
	"github.com/indigo-web/h1codec/transport/dummy"
	json "github.com/json-iterator/go"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const fixedRequest = "GET /x HTTP/1.1\r\nHost: a\r\nContent-Length: 5\r\n\r\nhello"

func execute(stdin string, args ...string) (string, error) {
	out := new(bytes.Buffer)
	rootCmd.SetArgs(args)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(out)
	rootCmd.SetErr(io.Discard)
	err := rootCmd.Execute()

	return out.String(), err
}

func TestDecode(t *testing.T) {
	t.Run("events", func(t *testing.T) {
		out, err := execute(fixedRequest, "decode", "--chunk=0", "--aggregate=false", "-o", "json")
		require.NoError(t, err)

		want := `{"kind":"RequestLine","method":"GET","target":"/x","version":"HTTP/1.1"}
{"kind":"Header","name":"Host","value":"a"}
{"kind":"Header","name":"Content-Length","value":"5"}
{"kind":"Body","data":"hello","last":true}
`
		require.Equal(t, want, out)
	})

	t.Run("aggregated", func(t *testing.T) {
		out, err := execute(fixedRequest+fixedRequest, "decode", "--chunk=7", "--aggregate", "-o", "yaml")
		require.NoError(t, err)

		decoder := yaml.NewDecoder(strings.NewReader(out))
		for i := 0; i < 2; i++ {
			var record requestRecord
			require.NoError(t, decoder.Decode(&record))
			require.Equal(t, "GET", record.Method)
			require.Equal(t, "/x", record.Target)
			require.Equal(t, "hello", record.Body)
			require.Equal(t, []headerRecord{
				{Name: "Host", Value: "a"},
				{Name: "Content-Length", Value: "5"},
			}, record.Headers)
		}

		require.ErrorIs(t, decoder.Decode(new(requestRecord)), io.EOF)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := execute("GET / HTTP/1.1\r\nbroken\r\n\r\n", "decode", "--chunk=0", "--aggregate=false", "-o", "json")
		require.Error(t, err)
		require.Equal(t, status.BadRequest, status.CodeOf(err))
	})

	t.Run("line limit", func(t *testing.T) {
		_, err := execute(fixedRequest, "decode", "--chunk=0", "--aggregate=false", "-o", "json", "--max-line-length=16")
		require.Equal(t, status.RequestHeaderFieldsTooLarge, status.CodeOf(err))
		// flags persist between executions
		_, err = execute(fixedRequest, "decode", "--chunk=0", "--aggregate=false", "-o", "json",
			"--max-line-length=8192")
		require.NoError(t, err)
	})
}

func TestEncode(t *testing.T) {
	t.Run("full", func(t *testing.T) {
		description := "code: 201\nheaders:\n  - name: Content-Type\n    value: text/plain\nbody: created\n"
		out, err := execute(description, "encode")
		require.NoError(t, err)
		require.Equal(t, "HTTP/1.1 201 Created\r\nContent-Type:text/plain\r\nContent-Length:7\r\n\r\ncreated", out)
	})

	t.Run("chunked", func(t *testing.T) {
		description := "code: 200\nreason: Fine\nchunks: [Hello, \", world!\"]\n"
		out, err := execute(description, "encode")
		require.NoError(t, err)
		want := "HTTP/1.1 200 Fine\r\nTransfer-Encoding:chunked\r\n\r\n5\r\nHello\r\n8\r\n, world!\r\n0\r\n\r\n"
		require.Equal(t, want, out)
	})

	t.Run("invalid description", func(t *testing.T) {
		for _, description := range []string{
			"code: 42\n",
			"headers: [{value: x}]\ncode: 200\n",
			"code: 200\nbody: x\nchunks: [y]\n",
			"code: [",
		} {
			_, err := execute(description, "encode")
			require.Errorf(t, err, "description: %q", description)
		}
	})
}

func TestServeConn(t *testing.T) {
	read := func(t *testing.T, reader *bufio.Reader) (*stdhttp.Response, []byte) {
		resp, err := stdhttp.ReadResponse(reader, nil)
		require.NoError(t, err)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp, body
	}

	t.Run("echo", func(t *testing.T) {
		conn := dummy.NewConn(
			[]byte(fixedRequest[:10]),
			[]byte(fixedRequest[10:]+"POST /y HTTP/1.1\r\nTransfer-Encoding: chunked\r\n\r\n"),
			[]byte("2\r\nhi\r\n0\r\n\r\n"),
		)
		serveConn(config.Default(), conn)

		reader := bufio.NewReader(bytes.NewReader(conn.Output))
		for _, want := range []struct{ target, body string }{{"/x", "hello"}, {"/y", "hi"}} {
			resp, body := read(t, reader)
			require.Equal(t, stdhttp.StatusOK, resp.StatusCode)
			require.Equal(t, "application/json", resp.Header.Get("Content-Type"))

			var record requestRecord
			require.NoError(t, json.Unmarshal(body, &record))
			require.Equal(t, want.target, record.Target)
			require.Equal(t, want.body, record.Body)
		}

		_, err := reader.Peek(1)
		require.ErrorIs(t, err, io.EOF)
	})

	t.Run("bad request", func(t *testing.T) {
		conn := dummy.NewConn([]byte(fixedRequest + "GET / HTTP/2.0\r\n\r\n" + fixedRequest))
		serveConn(config.Default(), conn)

		reader := bufio.NewReader(bytes.NewReader(conn.Output))
		resp, _ := read(t, reader)
		require.Equal(t, stdhttp.StatusOK, resp.StatusCode)

		resp, body := read(t, reader)
		require.Equal(t, stdhttp.StatusHTTPVersionNotSupported, resp.StatusCode)
		require.Equal(t, "close", resp.Header.Get("Connection"))
		require.Equal(t, status.ErrHTTPVersionNotSupported.Error(), string(body))

		// nothing is answered after the error
		_, err := reader.Peek(1)
		require.ErrorIs(t, err, io.EOF)
	})
}
