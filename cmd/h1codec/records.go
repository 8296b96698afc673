package main

import (
	"fmt"
	"io"

	"github.com/indigo-web/h1codec/http"
	json "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"
)

type eventRecord struct {
	Kind    string `json:"kind" yaml:"kind"`
	Method  string `json:"method,omitempty" yaml:"method,omitempty"`
	Target  string `json:"target,omitempty" yaml:"target,omitempty"`
	Version string `json:"version,omitempty" yaml:"version,omitempty"`
	Name    string `json:"name,omitempty" yaml:"name,omitempty"`
	Value   string `json:"value,omitempty" yaml:"value,omitempty"`
	Data    string `json:"data,omitempty" yaml:"data,omitempty"`
	Opcode  uint8  `json:"opcode,omitempty" yaml:"opcode,omitempty"`
	Length  uint64 `json:"length,omitempty" yaml:"length,omitempty"`
	Last    bool   `json:"last,omitempty" yaml:"last,omitempty"`
	Fin     bool   `json:"fin,omitempty" yaml:"fin,omitempty"`
}

// recordBuilder turns events into records. Being an http.EventHandler, it stops
// compiling as soon as a new event kind appears.
type recordBuilder struct {
	record eventRecord
}

func newEventRecord(ev http.Event) eventRecord {
	b := recordBuilder{record: eventRecord{Kind: ev.Kind().String()}}
	_ = http.Dispatch(ev, &b)
	return b.record
}

func (b *recordBuilder) OnRequestLine(line http.RequestLine) error {
	b.record.Method, b.record.Target, b.record.Version = line.Method, line.Target, line.Version
	return nil
}

func (b *recordBuilder) OnHeader(hdr http.Header) error {
	b.record.Name, b.record.Value = hdr.Name, hdr.Value
	return nil
}

func (b *recordBuilder) OnBody(body http.Body) error {
	b.record.Data, b.record.Last = string(body.Data), body.Last
	return nil
}

func (b *recordBuilder) OnFrameHeader(header http.FrameHeader) error {
	b.record.Fin, b.record.Opcode, b.record.Length = header.Fin, uint8(header.Opcode), header.Length
	return nil
}

func (b *recordBuilder) OnPayload(payload http.Payload) error {
	b.record.Data, b.record.Last = string(payload.Data), payload.Last
	return nil
}

type headerRecord struct {
	Name  string `json:"name" yaml:"name" validate:"required"`
	Value string `json:"value" yaml:"value"`
}

type requestRecord struct {
	Method  string         `json:"method" yaml:"method"`
	Target  string         `json:"target" yaml:"target"`
	Version string         `json:"version" yaml:"version"`
	Headers []headerRecord `json:"headers" yaml:"headers"`
	Body    string         `json:"body" yaml:"body"`
}

func newRequestRecord(request *http.FullRequest) requestRecord {
	record := requestRecord{
		Method:  request.Method(),
		Target:  request.Target(),
		Version: request.Version(),
		Headers: []headerRecord{},
		Body:    request.String(),
	}

	for name, value := range request.Headers() {
		record.Headers = append(record.Headers, headerRecord{Name: name, Value: value})
	}

	return record
}

// printer writes records one after another. JSON records are newline-delimited, YAML
// ones are separate documents.
type printer interface {
	Print(record any) error
	Close() error
}

func newPrinter(format string, w io.Writer) (printer, error) {
	switch format {
	case "json":
		return jsonPrinter{encoder: json.ConfigCompatibleWithStandardLibrary.NewEncoder(w)}, nil
	case "yaml":
		return yamlPrinter{encoder: yaml.NewEncoder(w)}, nil
	default:
		return nil, fmt.Errorf("unknown output format: %s", format)
	}
}

type jsonPrinter struct {
	encoder *json.Encoder
}

func (j jsonPrinter) Print(record any) error {
	return j.encoder.Encode(record)
}

func (jsonPrinter) Close() error {
	return nil
}

type yamlPrinter struct {
	encoder *yaml.Encoder
}

func (y yamlPrinter) Print(record any) error {
	return y.encoder.Encode(record)
}

func (y yamlPrinter) Close() error {
	return y.encoder.Close()
}
