// Package benchmark speaks the evaluation server's HTTP protocol: one
// multipart submit call and a polled status endpoint.
package benchmark

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/windprak/steuerllm-benchmark/internal/domain"
)

const (
	defaultSubmitTimeout = 30 * time.Second
	defaultStatusTimeout = 10 * time.Second
)

// Config defines client options. Timeouts default to the protocol ceilings
// (30s submit, 10s status). Out receives the human-readable validation
// summary; nil discards it.
type Config struct {
	ServerURL     string
	SubmitTimeout time.Duration
	StatusTimeout time.Duration
	Out           io.Writer
	Logger        zerolog.Logger
}

// Client submits prediction sets and fetches evaluation status.
type Client struct {
	serverURL     string
	httpClient    *http.Client
	statusTimeout time.Duration
	out           io.Writer
	logger        zerolog.Logger
}

func NewClient(cfg Config) *Client {
	if cfg.SubmitTimeout == 0 {
		cfg.SubmitTimeout = defaultSubmitTimeout
	}
	if cfg.StatusTimeout == 0 {
		cfg.StatusTimeout = defaultStatusTimeout
	}
	if cfg.Out == nil {
		cfg.Out = io.Discard
	}
	return &Client{
		serverURL:     strings.TrimRight(cfg.ServerURL, "/"),
		httpClient:    &http.Client{Timeout: cfg.SubmitTimeout},
		statusTimeout: cfg.StatusTimeout,
		out:           cfg.Out,
		logger:        cfg.Logger,
	}
}

// StatusURL returns the human-visitable status page for a submission.
func (c *Client) StatusURL(submissionID string) string {
	return fmt.Sprintf("%s/status/%s", c.serverURL, submissionID)
}

// submitResponse is the server's 200 body for /submit.
type submitResponse struct {
	Success       bool     `json:"success"`
	SubmissionID  string   `json:"submission_id"`
	QueuePosition int      `json:"queue_position"`
	Error         string   `json:"error"`
	Details       []string `json:"details"`
}

// Submit validates the predictions file and uploads it in a single attempt.
// Structural validation failures are returned as errors before any request
// is sent. Everything that happens after the request leaves is expressed as
// an outcome, never an error: the mapping from server behavior to outcome
// kinds is total, and retrying is the operator's decision.
func (c *Client) Submit(ctx context.Context, predictionsPath, modelName, key string) (domain.SubmissionOutcome, error) {
	raw, err := os.ReadFile(predictionsPath)
	if err != nil {
		return domain.SubmissionOutcome{}, fmt.Errorf("read predictions file: %w", err)
	}

	_, report, err := domain.ParsePredictions(raw)
	if err != nil {
		return domain.SubmissionOutcome{}, err
	}
	fmt.Fprintln(c.out, report.Summary())
	c.logger.Info().
		Int("answers", report.Total).
		Int("empty_answers", report.Empty).
		Str("model", modelName).
		Msg("predictions file validated")

	req, err := c.buildSubmitRequest(ctx, predictionsPath, raw, modelName, key)
	if err != nil {
		return domain.SubmissionOutcome{}, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return domain.SubmissionOutcome{}, ctx.Err()
		}
		if isTimeout(err) {
			return domain.SubmissionOutcome{
				Kind:    domain.OutcomeTimedOut,
				Message: "request timed out",
			}, nil
		}
		return domain.SubmissionOutcome{
			Kind:    domain.OutcomeConnFailed,
			Message: fmt.Sprintf("could not connect to server at %s", c.serverURL),
		}, nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.SubmissionOutcome{
			Kind:    domain.OutcomeConnFailed,
			Message: fmt.Sprintf("reading server response: %v", err),
		}, nil
	}
	return c.interpretSubmitResponse(resp.StatusCode, body), nil
}

func (c *Client) buildSubmitRequest(ctx context.Context, predictionsPath string, raw []byte, modelName, key string) (*http.Request, error) {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename=%q`, filepath.Base(predictionsPath)))
	header.Set("Content-Type", "application/json")
	part, err := form.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("build multipart request: %w", err)
	}
	if _, err := part.Write(raw); err != nil {
		return nil, fmt.Errorf("build multipart request: %w", err)
	}
	if err := form.WriteField("model_name", modelName); err != nil {
		return nil, fmt.Errorf("build multipart request: %w", err)
	}
	if err := form.WriteField("key", key); err != nil {
		return nil, fmt.Errorf("build multipart request: %w", err)
	}
	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("build multipart request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.serverURL+"/submit", &buf)
	if err != nil {
		return nil, fmt.Errorf("build submit request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	return req, nil
}

func (c *Client) interpretSubmitResponse(statusCode int, body []byte) domain.SubmissionOutcome {
	switch statusCode {
	case http.StatusOK:
		var payload submitResponse
		if err := json.Unmarshal(body, &payload); err != nil {
			return domain.SubmissionOutcome{
				Kind:    domain.OutcomeServerError,
				Message: strings.TrimSpace(string(body)),
			}
		}
		if payload.Success {
			return domain.SubmissionOutcome{
				Kind:          domain.OutcomeAccepted,
				SubmissionID:  payload.SubmissionID,
				QueuePosition: payload.QueuePosition,
			}
		}
		return domain.SubmissionOutcome{
			Kind:    domain.OutcomeRejected,
			Message: payload.Error,
			Details: payload.Details,
		}
	case http.StatusForbidden:
		return domain.SubmissionOutcome{
			Kind:    domain.OutcomeUnauthorized,
			Message: "invalid submission key",
		}
	case http.StatusTooManyRequests:
		return domain.SubmissionOutcome{
			Kind:    domain.OutcomeRateLimited,
			Message: "too many submissions from your network",
		}
	default:
		message := strings.TrimSpace(string(body))
		var payload struct {
			Error string `json:"error"`
		}
		if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
			message = payload.Error
		}
		return domain.SubmissionOutcome{
			Kind:    domain.OutcomeServerError,
			Message: fmt.Sprintf("server error %d: %s", statusCode, message),
		}
	}
}

// HTTPStatusError reports a non-200 poll response. The monitor treats it as
// transient, unlike transport errors which widen the retry interval.
type HTTPStatusError struct {
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("status endpoint returned HTTP %d", e.StatusCode)
}

// FetchStatus retrieves one fresh snapshot of the evaluation job.
func (c *Client) FetchStatus(ctx context.Context, submissionID string) (domain.JobSnapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, c.statusTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.StatusURL(submissionID), nil)
	if err != nil {
		return domain.JobSnapshot{}, fmt.Errorf("build status request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.JobSnapshot{}, fmt.Errorf("fetch status: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return domain.JobSnapshot{}, &HTTPStatusError{StatusCode: resp.StatusCode}
	}

	var snapshot domain.JobSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&snapshot); err != nil {
		return domain.JobSnapshot{}, fmt.Errorf("parse status response: %w", err)
	}
	return snapshot, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
