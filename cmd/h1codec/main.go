package main

import (
	"os"

	"github.com/indigo-web/h1codec/config"
	"github.com/spf13/cobra"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Version: version,
	Use:     "h1codec",
	Short:   "Streaming HTTP/1.1 codec toolbox",
	Long: `h1codec decodes raw HTTP/1.1 requests into events or complete requests,
encodes responses described in YAML into their wire form and runs a tiny
echo server on top of the codec.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(path, cmd.Flags())
		if err != nil {
			return err
		}

		setupLogging(cfg.Log)
		cmd.SetContext(withConfig(cmd.Context(), cfg))

		return nil
	},
}

func init() {
	defaults := config.Default()
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file path (default: ./config.yaml)")
	flags.Int("max-line-length", defaults.Decoder.MaxLineLength, "maximal length of a request, header or chunk-size line")
	flags.Int64("max-body-size", defaults.Decoder.MaxBodySize, "maximal request body size")
	flags.String("log-level", defaults.Log.Level, "log level: debug, info, warn, error")
	flags.String("log-format", defaults.Log.Format, "log format: text, json")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
