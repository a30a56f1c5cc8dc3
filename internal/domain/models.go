package domain

// Question is one record of the benchmark question catalog.
type Question struct {
	ID       string  `json:"id" validate:"required"`
	Question string  `json:"question" validate:"required"`
	MaxScore float64 `json:"max_score" validate:"gte=0"` // points awarded for a perfect answer
	Title    string  `json:"title"`
	Category string  `json:"category"`
	Exam     string  `json:"exam"`
	Year     string  `json:"year"`
}

// PredictionSet maps question IDs to free-text answers. It is the sole
// artifact handed from the generation step to the submission step.
type PredictionSet map[string]string

// OutcomeKind classifies the result of a single submission attempt.
type OutcomeKind string

const (
	OutcomeAccepted     OutcomeKind = "accepted"
	OutcomeRejected     OutcomeKind = "rejected"
	OutcomeUnauthorized OutcomeKind = "unauthorized"
	OutcomeRateLimited  OutcomeKind = "rate_limited"
	OutcomeServerError  OutcomeKind = "server_error"
	OutcomeConnFailed   OutcomeKind = "connection_failed"
	OutcomeTimedOut     OutcomeKind = "timed_out"
)

// SubmissionOutcome is the typed interpretation of one submit attempt.
// Exactly one outcome is produced per attempt; the client never retries.
type SubmissionOutcome struct {
	Kind          OutcomeKind
	SubmissionID  string
	QueuePosition int // informational only, may go stale immediately
	Message       string
	Details       []string
}

// Accepted reports whether the server accepted the submission.
func (o SubmissionOutcome) Accepted() bool {
	return o.Kind == OutcomeAccepted
}

// JobStatus is the server-reported state of an evaluation job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusEvaluating JobStatus = "evaluating"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
)

// Terminal reports whether polling should stop at this status.
func (s JobStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// JobSnapshot is one poll of the server's status endpoint. The client keeps
// no copy beyond the previously seen status value.
type JobSnapshot struct {
	Status        JobStatus `json:"status"`
	QueuePosition *int      `json:"queue_position,omitempty"`
	Progress      int       `json:"progress"`
	CompletedAt   string    `json:"completed_at,omitempty"`
	Error         string    `json:"error,omitempty"`
}
