package cli

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var configPath string

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	envConfig := os.Getenv("CONFIG_PATH")

	cmd := &cobra.Command{
		Use:          "steuerllm-benchmark",
		Short:        "Client for the GerTaxLaw benchmark: generate predictions, submit them, and track the evaluation",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", envConfig, "path to YAML config (optional)")
	cmd.AddCommand(NewGenerateCmd(&configPath))
	cmd.AddCommand(NewSubmitCmd(&configPath))
	return cmd
}

// newLogger builds the console logger shared by all subcommands. Structured
// output goes to stderr; human-facing summaries print to stdout.
func newLogger() zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
}
