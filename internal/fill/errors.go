package fill

import (
	"errors"
	"fmt"

	"github.com/jonathan/formfill/internal/types"
)

// ErrNotFillable is returned by Fill for file, fileButton and unknown fields.
var ErrNotFillable = errors.New("field is not fillable")

// StrategyError represents a failure inside a per-modality fill strategy
type StrategyError struct {
	Question string
	Modality types.Modality
	Message  string
	Cause    error
}

func (e *StrategyError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fill %s %q: %s: %v", e.Modality, e.Question, e.Message, e.Cause)
	}
	return fmt.Sprintf("fill %s %q: %s", e.Modality, e.Question, e.Message)
}

func (e *StrategyError) Unwrap() error {
	return e.Cause
}

func strategyErr(f types.ClassifiedField, msg string, cause error) error {
	return &StrategyError{Question: f.QuestionText, Modality: f.Modality, Message: msg, Cause: cause}
}
