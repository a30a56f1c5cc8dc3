package benchmark

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/windprak/steuerllm-benchmark/internal/domain"
)

const (
	defaultPollInterval  = 2 * time.Second
	defaultRetryInterval = 5 * time.Second

	progressBarWidth = 30
)

// Monitor follows an evaluation job until it reaches a terminal state or
// the context is canceled. Polling never gives up on its own: non-200
// responses and transport errors are transient, only the server saying
// completed or failed ends the loop.
type Monitor struct {
	client        *Client
	pollInterval  time.Duration
	retryInterval time.Duration
	sleep         func(ctx context.Context, d time.Duration)
	out           io.Writer
	logger        zerolog.Logger
}

// MonitorConfig tunes the polling cadence; zero values use the protocol
// defaults (2s between polls, 5s after a transport error). Sleep overrides
// the wait between polls, for tests.
type MonitorConfig struct {
	PollInterval  time.Duration
	RetryInterval time.Duration
	Sleep         func(ctx context.Context, d time.Duration)
}

func NewMonitor(client *Client, cfg MonitorConfig, out io.Writer, logger zerolog.Logger) *Monitor {
	if cfg.PollInterval == 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.RetryInterval == 0 {
		cfg.RetryInterval = defaultRetryInterval
	}
	if cfg.Sleep == nil {
		cfg.Sleep = sleepCtx
	}
	return &Monitor{
		client:        client,
		pollInterval:  cfg.PollInterval,
		retryInterval: cfg.RetryInterval,
		sleep:         cfg.Sleep,
		out:           out,
		logger:        logger,
	}
}

// Watch polls the status endpoint until the job completes or fails. On a
// failed job it returns the snapshot together with ErrEvaluationFailed.
// Cancellation stops the local loop only; the remote evaluation keeps
// running, and Watch says so before returning ctx.Err().
func (m *Monitor) Watch(ctx context.Context, submissionID string) (domain.JobSnapshot, error) {
	fmt.Fprintln(m.out, "Monitoring evaluation progress (press Ctrl+C to stop monitoring)")

	var lastStatus domain.JobStatus
	for {
		if ctx.Err() != nil {
			return domain.JobSnapshot{}, m.stopped(ctx)
		}

		snapshot, err := m.client.FetchStatus(ctx, submissionID)
		if err != nil {
			if ctx.Err() != nil {
				return domain.JobSnapshot{}, m.stopped(ctx)
			}
			interval := m.pollInterval
			var statusErr *HTTPStatusError
			if errors.As(err, &statusErr) {
				m.logger.Warn().
					Int("status_code", statusErr.StatusCode).
					Msg("could not fetch evaluation status")
			} else {
				// Transport-level failure: back off once, then resume.
				m.logger.Warn().Err(err).Msg("error fetching evaluation status")
				interval = m.retryInterval
			}
			m.sleep(ctx, interval)
			continue
		}

		if snapshot.Status != lastStatus {
			if lastStatus == domain.StatusEvaluating {
				fmt.Fprintln(m.out)
			}
			fmt.Fprintf(m.out, "Status: %s\n", snapshot.Status)
			lastStatus = snapshot.Status
		}

		switch snapshot.Status {
		case domain.StatusQueued:
			if snapshot.QueuePosition != nil {
				fmt.Fprintf(m.out, "  position in queue: %d\n", *snapshot.QueuePosition)
			}
		case domain.StatusEvaluating:
			fmt.Fprintf(m.out, "\r  [%s] %d%%", renderProgressBar(snapshot.Progress), snapshot.Progress)
		case domain.StatusCompleted:
			fmt.Fprintf(m.out, "Evaluation completed at %s\n", snapshot.CompletedAt)
			return snapshot, nil
		case domain.StatusFailed:
			fmt.Fprintf(m.out, "Evaluation failed: %s\n", snapshot.Error)
			return snapshot, fmt.Errorf("%w: %s", domain.ErrEvaluationFailed, snapshot.Error)
		default:
			m.logger.Warn().Str("status", string(snapshot.Status)).Msg("unknown evaluation status")
		}

		m.sleep(ctx, m.pollInterval)
	}
}

func (m *Monitor) stopped(ctx context.Context) error {
	fmt.Fprintln(m.out, "\nMonitoring stopped. The evaluation continues on the server.")
	return ctx.Err()
}

// renderProgressBar tolerates any reported integer; values are clamped for
// rendering only, never validated.
func renderProgressBar(progress int) string {
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}
	filled := progressBarWidth * progress / 100
	return strings.Repeat("█", filled) + strings.Repeat("░", progressBarWidth-filled)
}

func sleepCtx(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
