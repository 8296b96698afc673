package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os/signal"
	"syscall"

	"github.com/indigo-web/h1codec/aggregate"
	"github.com/indigo-web/h1codec/config"
	"github.com/indigo-web/h1codec/http"
	"github.com/indigo-web/h1codec/http/status"
	"github.com/indigo-web/h1codec/protocol/http1"
	"github.com/indigo-web/h1codec/transport"
	json "github.com/json-iterator/go"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run an echo server",
	Long: `Run a server answering every request with its JSON description. Malformed
requests are answered with the matching error status and the connection is closed.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	defaults := config.Default()
	serveCmd.Flags().String("addr", defaults.NET.Addr, "address to listen at")
	serveCmd.Flags().Duration("read-timeout", defaults.NET.ReadTimeout, "idle connection timeout")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := configFromContext(cmd.Context())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tcp := transport.NewTCP()
	if err = tcp.Bind(cfg.NET.Addr); err != nil {
		return fmt.Errorf("bind %s: %w", cfg.NET.Addr, err)
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutting down")
		tcp.Stop()
	}()

	slog.Info("listening", "addr", tcp.Addr().String())

	err = tcp.Listen(func(conn net.Conn) {
		serveConn(cfg, conn)
	})
	tcp.Wait()

	if closeErr := tcp.Close(); err == nil {
		err = closeErr
	}

	return err
}

// serveConn blocks until the connection is exhausted or broken.
func serveConn(cfg *config.Config, conn net.Conn) {
	client := transport.NewClient(conn, cfg.NET.ReadTimeout, make([]byte, cfg.NET.ReadBufferSize))
	handler := &echoHandler{
		client: client,
		writer: http1.NewResponseWriter(),
		buff:   make([]byte, 0, cfg.Encoder.BufferPrealloc),
	}

	aggregation := aggregate.NewConn()
	slog.Debug("connection accepted", "conn", aggregation.ID, "remote", client.Remote())

	decoder := http1.NewDecoder(cfg.Decoder)
	transport.NewPublisher(client).Subscribe(
		http1.NewDecodeStage(decoder, aggregate.NewStage(aggregation, handler)),
	)
}

// echoHandler answers every request with its description.
type echoHandler struct {
	client transport.Client
	writer *http1.ResponseWriter
	buff   []byte
	broken bool
}

func (e *echoHandler) OnRequest(conn *aggregate.Conn, request *http.FullRequest) {
	if e.broken {
		return
	}

	body, err := json.ConfigCompatibleWithStandardLibrary.Marshal(newRequestRecord(request))
	if err != nil {
		e.respond(conn, errorResponse(status.ErrInternalServerError))
		return
	}

	e.respond(conn, http.NewResponse().
		Header("Content-Type", "application/json").
		Bytes(body),
	)
}

func (e *echoHandler) OnFrame(conn *aggregate.Conn, _ *http.Frame) {
	slog.Debug("websocket frames aren't supported", "conn", conn.ID)
}

// OnError answers with the error status, if the error came from the protocol. Errors
// of the connection itself leave nothing to answer to.
func (e *echoHandler) OnError(conn *aggregate.Conn, err error) {
	var httpErr status.HTTPError
	if !errors.As(err, &httpErr) {
		slog.Debug("connection failed", "conn", conn.ID, "err", err)
		return
	}

	slog.Debug("bad request", "conn", conn.ID, "code", httpErr.Code, "err", err)

	// a response can only be sent if nothing of the current one was written yet
	if !e.writer.InProgress() {
		e.respond(conn, errorResponse(err))
	}

	_ = e.client.Close()
}

func (e *echoHandler) OnComplete(conn *aggregate.Conn) {
	slog.Debug("connection closed by peer", "conn", conn.ID)
}

func (e *echoHandler) respond(conn *aggregate.Conn, response *http.FullResponse) {
	data, err := e.writer.Write(e.buff[:0], response)
	if err != nil {
		slog.Error("encoding response", "conn", conn.ID, "err", err)
		e.broken = true
		return
	}

	e.buff = data
	if _, err = e.client.Write(data); err != nil {
		slog.Debug("writing response", "conn", conn.ID, "err", err)
		e.broken = true
	}
}

func errorResponse(err error) *http.FullResponse {
	return http.NewResponse().
		Code(status.CodeOf(err)).
		Header("Connection", "close").
		Header("Content-Type", "text/plain").
		String(err.Error())
}
