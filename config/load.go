package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. H1CODEC_DECODER_MAX_LINE_LENGTH.
const EnvPrefix = "H1CODEC"

// flagKeys maps CLI flag names onto configuration keys. Flags not listed here
// aren't configuration.
var flagKeys = map[string]string{
	"max-line-length": "decoder.max_line_length",
	"max-body-size":   "decoder.max_body_size",
	"addr":            "net.addr",
	"read-timeout":    "net.read_timeout",
	"log-level":       "log.level",
	"log-format":      "log.format",
}

// Load builds the config with the following precedence (highest first): explicitly set
// flags, environment, the config file, defaults. An empty path looks for an optional
// config.yaml in the working directory. The result is validated.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	if len(path) > 0 {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				slog.Warn("error reading config file", "err", err)
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		bindFlags(v, flags)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the config against its constraints.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	return nil
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("decoder.max_line_length", cfg.Decoder.MaxLineLength)
	v.SetDefault("decoder.line_prealloc", cfg.Decoder.LinePrealloc)
	v.SetDefault("decoder.max_body_size", cfg.Decoder.MaxBodySize)
	v.SetDefault("encoder.buffer_prealloc", cfg.Encoder.BufferPrealloc)
	v.SetDefault("net.addr", cfg.NET.Addr)
	v.SetDefault("net.read_buffer_size", cfg.NET.ReadBufferSize)
	v.SetDefault("net.read_timeout", cfg.NET.ReadTimeout)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		key, isConfig := flagKeys[f.Name]
		if !isConfig || !f.Changed {
			return
		}

		_ = v.BindPFlag(key, f)
	})
}
