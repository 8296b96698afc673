package config

import "time"

type (
	// Decoder limits what a single connection is allowed to send. Both limits are
	// enforced while decoding, before anything gets buffered past them.
	Decoder struct {
		// MaxLineLength limits the request line and every header line, as well as chunk-size
		// and trailer lines of chunked bodies. The line terminator isn't counted.
		MaxLineLength int `mapstructure:"max_line_length" validate:"min=16"`
		// LinePrealloc is the initial capacity of the buffer accumulating lines split
		// across multiple reads.
		LinePrealloc int `mapstructure:"line_prealloc" validate:"min=1"`
		// MaxBodySize limits both Content-Length and the total size of a chunked body.
		MaxBodySize int64 `mapstructure:"max_body_size" validate:"min=0"`
	}

	Encoder struct {
		// BufferPrealloc is the initial capacity of response output buffers.
		BufferPrealloc int `mapstructure:"buffer_prealloc" validate:"min=1"`
	}

	NET struct {
		// Addr is the address the serve command listens at.
		Addr string `mapstructure:"addr" validate:"required,hostname_port"`
		// ReadBufferSize is the size of the buffer the socket is read into. It is reused
		// between reads, therefore nothing emitted by the decoder may outlive a read.
		ReadBufferSize int `mapstructure:"read_buffer_size" validate:"min=1"`
		// ReadTimeout closes connections being idle for longer.
		ReadTimeout time.Duration `mapstructure:"read_timeout" validate:"min=0"`
	}

	Log struct {
		Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
		// Format is either text (colored, human-readable) or json.
		Format string `mapstructure:"format" validate:"required,oneof=text json"`
	}
)

// Config holds every setting of the codec and the tooling around it.
//
// Always start from Default() and modify what's needed: zero values aren't meaningful
// defaults.
type Config struct {
	Decoder Decoder `mapstructure:"decoder"`
	Encoder Encoder `mapstructure:"encoder"`
	NET     NET     `mapstructure:"net"`
	Log     Log     `mapstructure:"log"`
}

// Default returns the default config.
func Default() *Config {
	return &Config{
		Decoder: Decoder{
			// most of the web limits a single line to 4-8kb, extremely long cookies
			// are the usual reason to go beyond.
			MaxLineLength: 8 * 1024,
			LinePrealloc:  256,
			MaxBodySize:   512 * 1024 * 1024,
		},
		Encoder: Encoder{
			BufferPrealloc: 2 * 1024,
		},
		NET: NET{
			Addr:           "localhost:8080",
			ReadBufferSize: 4 * 1024,
			ReadTimeout:    90 * time.Second,
		},
		Log: Log{
			Level:  "info",
			Format: "text",
		},
	}
}
