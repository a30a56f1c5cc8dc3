package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/windprak/steuerllm-benchmark/internal/domain"
)

// Generator produces one answer per question. Implementations may call a
// remote model, run local inference, or return canned answers (for tests).
// Generate must return exactly one answer string per call.
type Generator interface {
	Generate(ctx context.Context, q domain.Question) (string, error)
}

// Builder walks the question catalog and assembles a prediction set.
type Builder struct {
	gen    Generator
	logger zerolog.Logger
}

func NewBuilder(gen Generator, logger zerolog.Logger) *Builder {
	return &Builder{gen: gen, logger: logger}
}

// Build invokes the generator once per question, strictly in catalog order.
// Calls are sequential because the backing generator may be rate limited or
// stateful. The first generator error aborts the whole run; retry and
// backoff policy belong to the generator, not here.
func (b *Builder) Build(ctx context.Context, questions []domain.Question) (domain.PredictionSet, error) {
	set := make(domain.PredictionSet, len(questions))
	for i, q := range questions {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		b.logger.Info().
			Int("index", i+1).
			Int("total", len(questions)).
			Str("question_id", q.ID).
			Str("category", q.Category).
			Msg("generating answer")

		answer, err := b.gen.Generate(ctx, q)
		if err != nil {
			return nil, fmt.Errorf("generate answer for question %s: %w", q.ID, err)
		}
		set[q.ID] = answer
	}
	return set, nil
}

// BuildReport compares a prediction set against the catalog it was built from.
type BuildReport struct {
	Questions   int
	Predictions int
	MissingIDs  []string // catalog IDs with no prediction; a generator contract violation
	*domain.ValidationReport
}

// Complete reports whether every catalog question received an answer.
func (r BuildReport) Complete() bool {
	return len(r.MissingIDs) == 0 && r.Predictions == r.Questions
}

// Report cross-checks the set against the catalog. Missing IDs should never
// occur given the one-to-one iteration in Build, but the check catches
// generators that violate their contract.
func Report(questions []domain.Question, set domain.PredictionSet) BuildReport {
	report := BuildReport{
		Questions:        len(questions),
		Predictions:      len(set),
		ValidationReport: set.Report(),
	}
	for _, q := range questions {
		if _, ok := set[q.ID]; !ok {
			report.MissingIDs = append(report.MissingIDs, q.ID)
		}
	}
	return report
}

// SavePredictions writes the set as a single indented JSON object. HTML
// escaping is disabled so answers keep literal &, < and > characters.
func SavePredictions(path string, set domain.PredictionSet) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create predictions file: %w", err)
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(set); err != nil {
		f.Close()
		return fmt.Errorf("write predictions file: %w", err)
	}
	return f.Close()
}
