// Package catalog loads the benchmark question catalog from its JSON form.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/windprak/steuerllm-benchmark/internal/domain"
)

// record tolerates the catalog's loosely typed id and year fields, which
// appear both as JSON numbers and as strings depending on the export.
type record struct {
	ID       any     `json:"id"`
	Question string  `json:"question"`
	MaxScore float64 `json:"max_score"`
	Title    string  `json:"title"`
	Category string  `json:"category"`
	Exam     string  `json:"exam"`
	Year     any     `json:"year"`
}

// Load reads a question catalog file: a JSON array of question records.
// Every record is validated and IDs must be unique; catalog order is
// preserved because it is the generation order.
func Load(path string) ([]domain.Question, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read question catalog: %w", err)
	}

	var records []record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse question catalog: %w", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	questions := make([]domain.Question, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	for i, rec := range records {
		q := domain.Question{
			ID:       asString(rec.ID),
			Question: rec.Question,
			MaxScore: rec.MaxScore,
			Title:    rec.Title,
			Category: rec.Category,
			Exam:     rec.Exam,
			Year:     asString(rec.Year),
		}
		if err := validate.Struct(q); err != nil {
			return nil, fmt.Errorf("invalid question at index %d: %w", i, err)
		}
		if _, dup := seen[q.ID]; dup {
			return nil, fmt.Errorf("%w: %s", domain.ErrDuplicateQuestion, q.ID)
		}
		seen[q.ID] = struct{}{}
		questions = append(questions, q)
	}
	return questions, nil
}

// TotalPoints sums the maximum achievable score across the catalog.
func TotalPoints(questions []domain.Question) float64 {
	var total float64
	for _, q := range questions {
		total += q.MaxScore
	}
	return total
}

func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}
