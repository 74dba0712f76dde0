package types

import "github.com/jonathan/formfill/internal/page"

// Modality is the input style a question expects
type Modality string

const (
	ModalityText       Modality = "text"
	ModalityEmail      Modality = "email"
	ModalityParagraph  Modality = "paragraph"
	ModalityDate       Modality = "date"
	ModalityRadio      Modality = "radio"
	ModalityCheckbox   Modality = "checkbox"
	ModalityDropdown   Modality = "dropdown"
	ModalityFile       Modality = "file"
	ModalityFileButton Modality = "fileButton"
	ModalityUnknown    Modality = "unknown"
)

// Fillable reports whether the filler may act on fields of this modality.
// File uploads and unknown controls are never touched.
func (m Modality) Fillable() bool {
	switch m {
	case ModalityFile, ModalityFileButton, ModalityUnknown:
		return false
	}
	return true
}

// IsGroup reports whether the modality is backed by several choice controls.
func (m Modality) IsGroup() bool {
	return m == ModalityRadio || m == ModalityCheckbox
}

// Source names the classifier pass that produced a field
type Source string

const (
	SourceContainer Source = "container"
	SourceDirect    Source = "direct"
	SourceAttribute Source = "attribute"
	SourceVendor    Source = "vendor"
)

// ClassifiedField is one question discovered during a page scan.
// It lives for a single fill pass and is never persisted.
type ClassifiedField struct {
	Position     int           `json:"position"`
	QuestionText string        `json:"question_text"`
	Modality     Modality      `json:"modality"`
	Target       page.Handle   `json:"-"` // single control for text, paragraph, date, email, dropdown, file
	Choices      []page.Handle `json:"-"` // ordered controls for radio and checkbox groups
	Source       Source        `json:"source"`
}

// Handles returns every control handle backing the field.
func (f ClassifiedField) Handles() []page.Handle {
	if f.Modality.IsGroup() {
		return f.Choices
	}
	if f.Target == "" {
		return nil
	}
	return []page.Handle{f.Target}
}

// Bound reports whether the field has at least one control to act on.
func (f ClassifiedField) Bound() bool {
	return len(f.Handles()) > 0
}
