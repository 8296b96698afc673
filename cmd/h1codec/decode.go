package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/indigo-web/h1codec/aggregate"
	"github.com/indigo-web/h1codec/http"
	"github.com/indigo-web/h1codec/http/status"
	"github.com/indigo-web/h1codec/protocol/http1"
	"github.com/indigo-web/h1codec/stream"
	"github.com/spf13/cobra"
)

var decodeCmd = &cobra.Command{
	Use:   "decode [file]",
	Short: "Decode raw HTTP/1.1 requests",
	Long: `Decode raw HTTP/1.1 requests read from the file (or stdin, if omitted or -)
and print either every event or, with --aggregate, every complete request.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDecode,
}

func init() {
	decodeCmd.Flags().Int("chunk", 0, "feed the decoder by pieces of this size (0: all at once)")
	decodeCmd.Flags().Bool("aggregate", false, "print complete requests instead of events")
	decodeCmd.Flags().StringP("output", "o", "json", "output format: json, yaml")

	rootCmd.AddCommand(decodeCmd)
}

func runDecode(cmd *cobra.Command, args []string) error {
	cfg, err := configFromContext(cmd.Context())
	if err != nil {
		return err
	}

	chunk, _ := cmd.Flags().GetInt("chunk")
	aggregated, _ := cmd.Flags().GetBool("aggregate")
	format, _ := cmd.Flags().GetString("output")

	if chunk < 0 {
		return fmt.Errorf("chunk size must not be negative, got %d", chunk)
	}

	input, err := readInput(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	out, err := newPrinter(format, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	decoder := http1.NewDecoder(cfg.Decoder)
	parts := stream.Slice(split(input, chunk)...)

	if aggregated {
		sink := &printingSink{printer: out}
		parts.Subscribe(http1.NewDecodeStage(decoder, aggregate.NewStage(aggregate.NewConn(), sink)))
		err = sink.err
	} else {
		subscriber := &eventPrinter{printer: out}
		parts.Subscribe(http1.NewDecodeStage(decoder, subscriber))
		err = subscriber.err
	}

	if closeErr := out.Close(); err == nil {
		err = closeErr
	}

	var httpErr status.HTTPError
	if errors.As(err, &httpErr) {
		return fmt.Errorf("decode: %d %s: %w", httpErr.Code, status.Text(httpErr.Code), err)
	}

	return err
}

func readInput(stdin io.Reader, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(stdin)
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	return data, nil
}

func split(data []byte, n int) [][]byte {
	if n == 0 || n >= len(data) {
		return [][]byte{data}
	}

	parts := make([][]byte, 0, len(data)/n+1)
	for i := 0; i < len(data); i += n {
		parts = append(parts, data[i:min(i+n, len(data))])
	}

	return parts
}

// eventPrinter prints every event as soon as it's decoded.
type eventPrinter struct {
	printer printer
	sub     stream.Subscription
	err     error
}

func (e *eventPrinter) OnSubscribe(sub stream.Subscription) {
	e.sub = sub
	sub.Request(stream.Unbounded)
}

func (e *eventPrinter) OnNext(ev http.Event) {
	if err := e.printer.Print(newEventRecord(ev)); err != nil {
		e.err = err
		e.sub.Cancel()
	}
}

func (e *eventPrinter) OnError(err error) {
	e.err = err
}

func (e *eventPrinter) OnComplete() {}

// printingSink prints every aggregated request.
type printingSink struct {
	printer printer
	err     error
}

func (p *printingSink) OnRequest(_ *aggregate.Conn, request *http.FullRequest) {
	if p.err == nil {
		p.err = p.printer.Print(newRequestRecord(request))
	}
}

func (p *printingSink) OnFrame(conn *aggregate.Conn, _ *http.Frame) {
	if p.err == nil {
		p.err = fmt.Errorf("conn %s: unexpected websocket frame", conn.ID)
	}
}

func (p *printingSink) OnError(_ *aggregate.Conn, err error) {
	if p.err == nil {
		p.err = err
	}
}

func (p *printingSink) OnComplete(*aggregate.Conn) {}
