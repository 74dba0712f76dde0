package fill

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/formfill/internal/page"
	"github.com/jonathan/formfill/internal/types"
)

var agreementKeywords = []string{"undertaking", "agreement", "confirm", "acknowledge", "terms", "consent"}

// fillRadio picks the profile's gender on gender questions and the first
// choice everywhere else. The current selection is never trusted.
func (d *Dispatcher) fillRadio(ctx context.Context, f types.ClassifiedField) error {
	labels := d.choiceLabels(ctx, f.Choices)

	if strings.Contains(strings.ToLower(f.QuestionText), "gender") {
		if i := matchGender(labels, d.profileGender()); i >= 0 {
			if err := d.page.Click(ctx, f.Choices[i]); err != nil {
				return strategyErr(f, "click gender choice", err)
			}
			d.logger.Debug("selected gender choice", zap.String("question", f.QuestionText), zap.String("choice", labels[i]))
			return nil
		}
	}

	d.logger.Info("no matching choice, selecting first",
		zap.String("question", f.QuestionText),
		zap.Strings("choices", labels),
	)
	if err := d.page.Click(ctx, f.Choices[0]); err != nil {
		return strategyErr(f, "click first choice", err)
	}
	return nil
}

func (d *Dispatcher) profileGender() string {
	if d.resolver == nil {
		return ""
	}
	return d.resolver.Profile().Gender
}

func (d *Dispatcher) choiceLabels(ctx context.Context, choices []page.Handle) []string {
	labels := make([]string, len(choices))
	for i, h := range choices {
		l, err := page.Label(ctx, d.page, h)
		if l = strings.TrimSpace(l); err != nil || l == "" {
			l = fmt.Sprintf("Option %d", i+1)
		}
		labels[i] = l
	}
	return labels
}

// matchGender returns the index of the label naming gender, preferring an
// exact match so "Male" never selects "Female".
func matchGender(labels []string, gender string) int {
	g := strings.ToLower(strings.TrimSpace(gender))
	if g == "" {
		return -1
	}
	for i, l := range labels {
		if strings.ToLower(l) == g {
			return i
		}
	}
	for i, l := range labels {
		if strings.Contains(strings.ToLower(l), g) {
			return i
		}
	}
	return -1
}

func isAgreement(question string) bool {
	q := strings.ToLower(question)
	for _, k := range agreementKeywords {
		if strings.Contains(q, k) {
			return true
		}
	}
	return false
}

func (d *Dispatcher) fillCheckbox(ctx context.Context, f types.ClassifiedField) error {
	if isAgreement(f.QuestionText) {
		return d.checkAgreement(ctx, f)
	}
	return d.checkStandard(ctx, f)
}

// checkAgreement ticks every box of an undertaking or consent question.
func (d *Dispatcher) checkAgreement(ctx context.Context, f types.ClassifiedField) error {
	n, err := d.checkAll(ctx, f)
	if err != nil {
		return err
	}
	d.logger.Debug("accepted agreement", zap.String("question", f.QuestionText), zap.Int("clicked", n))
	return nil
}

// checkStandard ticks every box of a multi-select question.
func (d *Dispatcher) checkStandard(ctx context.Context, f types.ClassifiedField) error {
	n, err := d.checkAll(ctx, f)
	if err != nil {
		return err
	}
	d.logger.Debug("selected all choices", zap.String("question", f.QuestionText), zap.Int("clicked", n), zap.Int("choices", len(f.Choices)))
	return nil
}

// checkAll clicks each unchecked choice and returns how many it clicked.
func (d *Dispatcher) checkAll(ctx context.Context, f types.ClassifiedField) (int, error) {
	clicked := 0
	for i, h := range f.Choices {
		checked, _, err := d.page.Attribute(ctx, h, "aria-checked")
		if err != nil {
			return clicked, strategyErr(f, fmt.Sprintf("read choice %d", i+1), err)
		}
		if checked == "true" {
			continue
		}
		if err := d.page.Click(ctx, h); err != nil {
			return clicked, strategyErr(f, fmt.Sprintf("click choice %d", i+1), err)
		}
		clicked++
	}
	return clicked, nil
}
