package classify

import (
	"context"
	"errors"
	"regexp"

	"github.com/jonathan/formfill/internal/page"
	"github.com/jonathan/formfill/internal/types"
)

// Selectors for the controls Google Forms and plain HTML forms render.
const (
	selContainer      = `div[role="listitem"]`
	selHeading        = `div[role="heading"]`
	selInput          = `input`
	selTextInput      = `input[type="text"]`
	selTextarea       = `textarea`
	selRadio          = `div[role="radio"]`
	selRadioGroup     = `div[role="radiogroup"]`
	selCheckbox       = `div[role="checkbox"]`
	selCheckboxGroup  = `div[role="group"]`
	selListbox        = `div[role="listbox"]`
	selDateInput      = `input[type="date"]`
	selEmailInput     = `input[type="email"]`
	selFileInput      = `input[type="file"]`
	selFileButton     = `div[role="button"][data-id="fileUploadButton"]`
	selCalendarMarker = `i[class*="calendar"], svg[class*="calendar"], span[class*="calendar"], button[aria-label*="calendar"]`
	selNearestLabel   = `label, div[role="heading"]`

	selVendorRoot   = `.freebirdFormviewerComponentsQuestionBaseRoot`
	selVendorHeader = `.freebirdFormviewerComponentsQuestionBaseHeader`
)

var datePlaceholderPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)dd[-/]mm[-/]yyyy`),
	regexp.MustCompile(`(?i)mm[-/]dd[-/]yyyy`),
	regexp.MustCompile(`\d{1,2}[-/]\d{1,2}[-/]\d{4}`),
}

// looksLikeDatePlaceholder reports whether a placeholder spells out a date format.
func looksLikeDatePlaceholder(placeholder string) bool {
	for _, re := range datePlaceholderPatterns {
		if re.MatchString(placeholder) {
			return true
		}
	}
	return false
}

// inference is the modality and controls found under one scope
type inference struct {
	modality types.Modality
	target   page.Handle
	choices  []page.Handle
}

func (in inference) bound() bool {
	return in.target != "" || len(in.choices) > 0
}

var unknown = inference{modality: types.ModalityUnknown}

// infer applies the fixed modality precedence to the controls under scope.
// The first matching rule wins.
func infer(ctx context.Context, p page.Page, scope page.Handle) (inference, error) {
	inputs, err := p.QueryAll(ctx, scope, selInput)
	if err != nil {
		return unknown, err
	}
	for _, in := range inputs {
		isDate, err := dateLike(ctx, p, in)
		if err != nil {
			return unknown, err
		}
		if isDate {
			return inference{modality: types.ModalityDate, target: in}, nil
		}
	}

	singles := []struct {
		selector string
		modality types.Modality
	}{
		{selTextInput, types.ModalityText},
		{selTextarea, types.ModalityParagraph},
	}
	for _, s := range singles {
		h, ok, err := page.Find(ctx, p, scope, s.selector)
		if err != nil {
			return unknown, err
		}
		if ok {
			return inference{modality: s.modality, target: h}, nil
		}
	}

	groups := []struct {
		selector string
		modality types.Modality
	}{
		{selRadio, types.ModalityRadio},
		{selCheckbox, types.ModalityCheckbox},
	}
	for _, g := range groups {
		hs, err := p.QueryAll(ctx, scope, g.selector)
		if err != nil {
			return unknown, err
		}
		if len(hs) > 0 {
			return inference{modality: g.modality, choices: hs}, nil
		}
	}

	trailing := []struct {
		selector string
		modality types.Modality
	}{
		{selListbox, types.ModalityDropdown},
		{selDateInput, types.ModalityDate},
		{selEmailInput, types.ModalityEmail},
		{selFileInput, types.ModalityFile},
		{selFileButton, types.ModalityFileButton},
	}
	for _, s := range trailing {
		h, ok, err := page.Find(ctx, p, scope, s.selector)
		if err != nil {
			return unknown, err
		}
		if ok {
			return inference{modality: s.modality, target: h}, nil
		}
	}

	return unknown, nil
}

// dateLike reports whether an input is a date field by placeholder or by a
// calendar icon next to it.
func dateLike(ctx context.Context, p page.Page, in page.Handle) (bool, error) {
	placeholder, _, err := p.Attribute(ctx, in, "placeholder")
	if err != nil {
		return false, err
	}
	if looksLikeDatePlaceholder(placeholder) {
		return true, nil
	}
	parent, err := p.Parent(ctx, in)
	if errors.Is(err, page.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	_, found, err := page.Find(ctx, p, parent, selCalendarMarker)
	return found, err
}
