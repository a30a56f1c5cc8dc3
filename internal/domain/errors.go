package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedJSON is returned when a predictions file cannot be parsed at all.
	ErrMalformedJSON = errors.New("predictions file is not valid JSON")
	// ErrNotObject is returned when the predictions file parses but is not a JSON object.
	ErrNotObject = errors.New("predictions file must be a JSON object")
	// ErrNonStringAnswer indicates at least one answer value is not a string.
	ErrNonStringAnswer = errors.New("answer must be a string")
	// ErrDuplicateQuestion indicates the catalog contains the same question ID twice.
	ErrDuplicateQuestion = errors.New("duplicate question id in catalog")
	// ErrEvaluationFailed is returned by the monitor when the server reports a failed job.
	ErrEvaluationFailed = errors.New("evaluation failed")
)

// NonStringAnswerError carries every offending key of a structural validation
// failure. It unwraps to ErrNonStringAnswer.
type NonStringAnswerError struct {
	Keys []string // sorted, at least one
}

func (e *NonStringAnswerError) Error() string {
	if len(e.Keys) == 1 {
		return fmt.Sprintf("answer for question %s must be a string", e.Keys[0])
	}
	return fmt.Sprintf("answer for question %s must be a string (%d non-string answers in total)", e.Keys[0], len(e.Keys))
}

func (e *NonStringAnswerError) Unwrap() error { return ErrNonStringAnswer }
