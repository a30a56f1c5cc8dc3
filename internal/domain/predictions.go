package domain

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// maxEmptyExamples bounds how many empty-answer IDs a report lists verbatim.
const maxEmptyExamples = 5

// ValidationReport summarizes a structurally valid prediction set.
type ValidationReport struct {
	Total     int
	Empty     int      // answers that are empty or whitespace-only
	EmptyIDs  []string // up to maxEmptyExamples example IDs, sorted
	MoreEmpty bool     // true when Empty exceeds len(EmptyIDs)
}

// Summary renders the report for the console.
func (r *ValidationReport) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Predictions file validated: %d answers", r.Total)
	if r.Empty > 0 {
		fmt.Fprintf(&b, "\nWarning: %d empty answers (question IDs: %s", r.Empty, strings.Join(r.EmptyIDs, ", "))
		if r.MoreEmpty {
			b.WriteString(", ...")
		}
		b.WriteString(")")
	}
	return b.String()
}

// ParsePredictions validates raw predictions-file bytes and returns the set
// plus a content report. It never mutates or re-serializes its input: the
// raw bytes are what gets uploaded, validation only gates the upload.
//
// Failure kinds are distinct: ErrMalformedJSON for unparseable input,
// ErrNotObject for the wrong JSON shape, and NonStringAnswerError when any
// value is not a string. Empty answers are a warning, not a failure.
func ParsePredictions(raw []byte) (PredictionSet, *ValidationReport, error) {
	var probe any
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}

	obj, ok := probe.(map[string]any)
	if !ok {
		return nil, nil, ErrNotObject
	}

	set := make(PredictionSet, len(obj))
	var bad []string
	for id, value := range obj {
		answer, ok := value.(string)
		if !ok {
			bad = append(bad, id)
			continue
		}
		set[id] = answer
	}
	if len(bad) > 0 {
		sort.Strings(bad)
		return nil, nil, &NonStringAnswerError{Keys: bad}
	}

	return set, set.Report(), nil
}

// Report scans the set for empty or whitespace-only answers.
func (s PredictionSet) Report() *ValidationReport {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	report := &ValidationReport{Total: len(s)}
	for _, id := range ids {
		if strings.TrimSpace(s[id]) != "" {
			continue
		}
		report.Empty++
		if len(report.EmptyIDs) < maxEmptyExamples {
			report.EmptyIDs = append(report.EmptyIDs, id)
		}
	}
	report.MoreEmpty = report.Empty > len(report.EmptyIDs)
	return report
}
