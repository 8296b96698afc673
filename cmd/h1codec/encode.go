package main

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/indigo-web/h1codec/http"
	"github.com/indigo-web/h1codec/http/status"
	"github.com/indigo-web/h1codec/protocol/http1"
	"github.com/indigo-web/h1codec/stream"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var encodeCmd = &cobra.Command{
	Use:   "encode [file]",
	Short: "Encode a response described in YAML",
	Long: `Encode a response described in YAML (read from the file or stdin) into its
wire form. A response with chunks is streamed, one with a body is sent whole:

  code: 200
  headers:
    - name: Content-Type
      value: text/plain
  body: Hello, world!
  # or, instead of body:
  # chunks: [Hello, ", world!"]`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEncode,
}

func init() {
	rootCmd.AddCommand(encodeCmd)
}

type responseDescription struct {
	Version string         `yaml:"version" validate:"omitempty,startswith=HTTP/"`
	Code    int            `yaml:"code" validate:"required,min=100,max=999"`
	Reason  string         `yaml:"reason"`
	Headers []headerRecord `yaml:"headers" validate:"dive"`
	Body    string         `yaml:"body" validate:"excluded_with=Chunks"`
	Chunks  []string       `yaml:"chunks"`
}

func (r responseDescription) events() []http.ResponseEvent {
	line := http.StatusLine{
		Version: r.Version,
		Code:    status.Code(r.Code),
		Reason:  r.Reason,
	}

	if len(r.Chunks) == 0 {
		response := http.NewResponse().String(r.Body)
		response.Status = line
		for _, hdr := range r.Headers {
			response.AddHeader(hdr.Name, hdr.Value)
		}

		return []http.ResponseEvent{response}
	}

	events := []http.ResponseEvent{line}
	for _, hdr := range r.Headers {
		events = append(events, http.Header{Name: hdr.Name, Value: hdr.Value})
	}

	for _, chunk := range r.Chunks {
		events = append(events, http.Body{Data: []byte(chunk)})
	}

	return append(events, http.Body{Last: true})
}

func parseDescription(data []byte) (description responseDescription, err error) {
	if err = yaml.Unmarshal(data, &description); err != nil {
		return description, fmt.Errorf("parse response description: %w", err)
	}

	if err = validator.New().Struct(description); err != nil {
		return description, fmt.Errorf("invalid response description: %w", err)
	}

	return description, nil
}

func runEncode(cmd *cobra.Command, args []string) error {
	cfg, err := configFromContext(cmd.Context())
	if err != nil {
		return err
	}

	input, err := readInput(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	description, err := parseDescription(input)
	if err != nil {
		return err
	}

	collector := new(stream.Collector[[]byte])
	stream.Slice(description.events()...).Subscribe(http1.NewEncodeStage(cfg.Encoder, collector))
	if collector.Err != nil {
		return fmt.Errorf("encode: %w", collector.Err)
	}

	for _, buff := range collector.Items {
		if _, err = cmd.OutOrStdout().Write(buff); err != nil {
			return err
		}
	}

	return nil
}
