package types

import (
	"time"

	"github.com/google/uuid"
)

// Outcome is the result of one field fill attempt
type Outcome string

const (
	OutcomeFilled  Outcome = "filled"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

// FillResult records what happened to a single field
type FillResult struct {
	Field    ClassifiedField `json:"field"`
	Value    string          `json:"value,omitempty"`
	Rule     string          `json:"rule,omitempty"`
	Outcome  Outcome         `json:"outcome"`
	Err      error           `json:"-"`
	Duration time.Duration   `json:"duration"`
}

// FillReport summarizes one fill pass over a form
type FillReport struct {
	RunID      uuid.UUID    `json:"run_id"`
	URL        string       `json:"url"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Results    []FillResult `json:"results"`
}

// Count returns the number of results with the given outcome.
func (r *FillReport) Count(o Outcome) int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome == o {
			n++
		}
	}
	return n
}
