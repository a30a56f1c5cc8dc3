package benchmark_test

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/windprak/steuerllm-benchmark/internal/domain"
	"github.com/windprak/steuerllm-benchmark/internal/infra/benchmark"
)

func writePredictions(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "predictions.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestClient(serverURL string) *benchmark.Client {
	return benchmark.NewClient(benchmark.Config{
		ServerURL: serverURL,
		Logger:    zerolog.Nop(),
	})
}

func TestSubmitAccepted(t *testing.T) {
	var (
		gotModel    string
		gotKey      string
		gotFilename string
		gotFileType string
		gotFileBody string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/submit", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		gotModel = r.FormValue("model_name")
		gotKey = r.FormValue("key")

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		body, err := io.ReadAll(file)
		require.NoError(t, err)
		gotFilename = header.Filename
		gotFileType = header.Header.Get("Content-Type")
		gotFileBody = string(body)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success": true, "submission_id": "S1", "queue_position": 0}`))
	}))
	defer server.Close()

	path := writePredictions(t, `{"1001":"a","1002":""}`)
	outcome, err := newTestClient(server.URL).Submit(context.Background(), path, "TestModel", "GerTaxLaw2025")
	require.NoError(t, err)

	require.Equal(t, domain.OutcomeAccepted, outcome.Kind)
	require.Equal(t, "S1", outcome.SubmissionID)
	require.Equal(t, 0, outcome.QueuePosition)

	require.Equal(t, "TestModel", gotModel)
	require.Equal(t, "GerTaxLaw2025", gotKey)
	require.Equal(t, "predictions.json", gotFilename)
	require.Equal(t, "application/json", gotFileType)
	require.Equal(t, `{"1001":"a","1002":""}`, gotFileBody, "raw bytes uploaded unchanged")
}

func TestSubmitWritesValidationSummary(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success": true, "submission_id": "S1", "queue_position": 0}`))
	}))
	defer server.Close()

	var out bytes.Buffer
	client := benchmark.NewClient(benchmark.Config{
		ServerURL: server.URL,
		Out:       &out,
		Logger:    zerolog.Nop(),
	})

	path := writePredictions(t, `{"1001":"a","1002":""}`)
	_, err := client.Submit(context.Background(), path, "TestModel", "GerTaxLaw2025")
	require.NoError(t, err)

	require.Contains(t, out.String(), "Predictions file validated: 2 answers")
	require.Contains(t, out.String(), "Warning: 1 empty answers (question IDs: 1002)")
}

func TestSubmitRejectedWithDetails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success": false, "error": "unknown question ids", "details": ["9999 is not a benchmark question", "0 is not a benchmark question"]}`))
	}))
	defer server.Close()

	path := writePredictions(t, `{"9999":"a"}`)
	outcome, err := newTestClient(server.URL).Submit(context.Background(), path, "TestModel", "k")
	require.NoError(t, err)

	require.Equal(t, domain.OutcomeRejected, outcome.Kind)
	require.Equal(t, "unknown question ids", outcome.Message)
	require.Len(t, outcome.Details, 2)
}

func TestSubmitStatusCodeMapping(t *testing.T) {
	cases := []struct {
		name     string
		status   int
		body     string
		wantKind domain.OutcomeKind
		wantMsg  string
	}{
		{"forbidden", http.StatusForbidden, ``, domain.OutcomeUnauthorized, "invalid submission key"},
		{"rate limited", http.StatusTooManyRequests, ``, domain.OutcomeRateLimited, "too many submissions from your network"},
		{"server error with json", http.StatusInternalServerError, `{"error": "queue storage unavailable"}`, domain.OutcomeServerError, "server error 500: queue storage unavailable"},
		{"server error raw body", http.StatusBadGateway, `upstream exploded`, domain.OutcomeServerError, "server error 502: upstream exploded"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer server.Close()

			path := writePredictions(t, `{"1001":"a"}`)
			outcome, err := newTestClient(server.URL).Submit(context.Background(), path, "m", "k")
			require.NoError(t, err)
			require.Equal(t, tc.wantKind, outcome.Kind)
			require.Equal(t, tc.wantMsg, outcome.Message)
		})
	}
}

func TestSubmitValidationFailureSendsNoRequest(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	cases := map[string]error{
		`{"1001": 5}`:   domain.ErrNonStringAnswer,
		`["not a map"]`: domain.ErrNotObject,
		`{"broken`:      domain.ErrMalformedJSON,
	}
	for content, wantErr := range cases {
		path := writePredictions(t, content)
		_, err := client.Submit(context.Background(), path, "m", "k")
		require.ErrorIs(t, err, wantErr)
	}
	require.Zero(t, calls.Load(), "no HTTP request may leave on structural validation failure")
}

func TestSubmitMissingFile(t *testing.T) {
	_, err := newTestClient("http://127.0.0.1:0").Submit(context.Background(), filepath.Join(t.TempDir(), "nope.json"), "m", "k")
	require.Error(t, err)
}

func TestSubmitConnectionFailed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // immediately, so the address refuses connections

	path := writePredictions(t, `{"1001":"a"}`)
	outcome, err := newTestClient(server.URL).Submit(context.Background(), path, "m", "k")
	require.NoError(t, err)
	require.Equal(t, domain.OutcomeConnFailed, outcome.Kind)
	require.Contains(t, outcome.Message, "could not connect")
}

func TestSubmitTimedOut(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer func() {
		close(release)
		server.Close()
	}()

	client := benchmark.NewClient(benchmark.Config{
		ServerURL:     server.URL,
		SubmitTimeout: 50 * time.Millisecond,
		Logger:        zerolog.Nop(),
	})

	path := writePredictions(t, `{"1001":"a"}`)
	outcome, err := client.Submit(context.Background(), path, "m", "k")
	require.NoError(t, err)
	require.Equal(t, domain.OutcomeTimedOut, outcome.Kind)
}

func TestSubmitUnparseable200Body(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>proxy error page</html>`))
	}))
	defer server.Close()

	path := writePredictions(t, `{"1001":"a"}`)
	outcome, err := newTestClient(server.URL).Submit(context.Background(), path, "m", "k")
	require.NoError(t, err)
	require.Equal(t, domain.OutcomeServerError, outcome.Kind)
	require.Contains(t, outcome.Message, "proxy error page")
}

func TestFetchStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/status/S1", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status": "evaluating", "progress": 40}`))
	}))
	defer server.Close()

	snapshot, err := newTestClient(server.URL).FetchStatus(context.Background(), "S1")
	require.NoError(t, err)
	require.Equal(t, domain.StatusEvaluating, snapshot.Status)
	require.Equal(t, 40, snapshot.Progress)
}

func TestFetchStatusNon200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).FetchStatus(context.Background(), "S1")
	var statusErr *benchmark.HTTPStatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode)
}

func TestStatusURL(t *testing.T) {
	client := benchmark.NewClient(benchmark.Config{ServerURL: "http://example.test/benchmark/", Logger: zerolog.Nop()})
	require.Equal(t, "http://example.test/benchmark/status/S1", client.StatusURL("S1"))
}
