package db

import (
	"time"

	"github.com/google/uuid"
)

// Run status values
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusPartial   = "partial" // completed with at least one failed field
)

// Run is one recorded fill pass
type Run struct {
	ID          uuid.UUID  `json:"id"`
	FormURL     string     `json:"form_url"`
	Status      string     `json:"status"`
	Filled      int        `json:"filled"`
	Skipped     int        `json:"skipped"`
	Failed      int        `json:"failed"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// ResultRow is one field outcome as stored in fill_results
type ResultRow struct {
	Position     int     `json:"position"`
	QuestionText string  `json:"question_text"`
	Modality     string  `json:"modality"`
	Rule         *string `json:"rule,omitempty"`
	Value        *string `json:"value,omitempty"`
	Outcome      string  `json:"outcome"`
	ErrorMessage *string `json:"error_message,omitempty"`
	DurationMs   int64   `json:"duration_ms"`
}
