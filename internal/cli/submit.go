package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/windprak/steuerllm-benchmark/internal/config"
	"github.com/windprak/steuerllm-benchmark/internal/domain"
	"github.com/windprak/steuerllm-benchmark/internal/infra/benchmark"
)

// NewSubmitCmd builds the CLI subcommand to submit a predictions file.
func NewSubmitCmd(configPath *string) *cobra.Command {
	var (
		modelName string
		key       string
		server    string
		monitor   bool
	)

	cmd := &cobra.Command{
		Use:   "submit <predictions-file>",
		Short: "Submit a predictions file to the benchmark server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubmit(cmd.Context(), *configPath, args[0], modelName, key, server, monitor)
		},
	}

	cmd.Flags().StringVarP(&modelName, "model", "m", "", "model name shown on the leaderboard")
	cmd.Flags().StringVarP(&key, "key", "k", "", "submission key")
	cmd.Flags().StringVarP(&server, "server", "s", "", "benchmark server URL")
	cmd.Flags().BoolVar(&monitor, "monitor", true, "follow the evaluation after a successful submission")
	_ = cmd.MarkFlagRequired("model")
	return cmd
}

func runSubmit(ctx context.Context, configPath, predictionsFile, modelName, key, server string, monitor bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if key == "" {
		key = cfg.Submission.Key
	}
	if server == "" {
		server = cfg.Submission.Server
	}

	logger := newLogger()
	client := benchmark.NewClient(benchmark.Config{
		ServerURL:     server,
		SubmitTimeout: cfg.SubmitTimeout(),
		StatusTimeout: cfg.StatusTimeout(),
		Out:           os.Stdout,
		Logger:        logger,
	})

	fmt.Printf("Submitting predictions to %s\n", server)
	fmt.Printf("  model: %s\n", modelName)

	outcome, err := client.Submit(ctx, predictionsFile, modelName, key)
	if err != nil {
		// Local failure: bad file or structural validation, nothing was sent.
		return err
	}
	if !outcome.Accepted() {
		reportFailure(outcome)
		return fmt.Errorf("submission failed (%s)", outcome.Kind)
	}

	fmt.Println("\nSubmission successful!")
	fmt.Printf("  submission ID: %s\n", outcome.SubmissionID)
	fmt.Printf("  queue position: %d\n", outcome.QueuePosition)
	fmt.Printf("  status URL: %s\n", client.StatusURL(outcome.SubmissionID))

	if !monitor {
		return nil
	}

	// Ctrl+C stops the local polling loop only; the remote job keeps going.
	// The submission already succeeded, so monitoring never changes the exit
	// code.
	watchCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mon := benchmark.NewMonitor(client, benchmark.MonitorConfig{
		PollInterval:  cfg.PollInterval(),
		RetryInterval: cfg.RetryInterval(),
	}, os.Stdout, logger)

	if _, err := mon.Watch(watchCtx, outcome.SubmissionID); err != nil {
		if errors.Is(err, domain.ErrEvaluationFailed) {
			logger.Error().Err(err).Msg("evaluation failed on the server")
		}
		return nil
	}
	fmt.Println("Done! Check the leaderboard for results.")
	return nil
}

// reportFailure prints a distinct human-readable message per outcome kind;
// raw server bodies appear only when no structured message exists.
func reportFailure(outcome domain.SubmissionOutcome) {
	switch outcome.Kind {
	case domain.OutcomeRejected:
		fmt.Printf("\nSubmission rejected: %s\n", outcome.Message)
		for _, detail := range outcome.Details {
			fmt.Printf("  - %s\n", detail)
		}
	case domain.OutcomeUnauthorized:
		fmt.Println("\nInvalid submission key")
	case domain.OutcomeRateLimited:
		fmt.Println("\nToo many submissions from your network; try again later")
	case domain.OutcomeConnFailed:
		fmt.Printf("\n%s\n", outcome.Message)
		fmt.Println("  Make sure the server is running and the URL is correct")
	case domain.OutcomeTimedOut:
		fmt.Println("\nRequest timed out")
	default:
		fmt.Printf("\n%s\n", outcome.Message)
	}
}
