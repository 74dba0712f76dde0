package fill

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/formfill/internal/page"
	"github.com/jonathan/formfill/internal/resolve"
	"github.com/jonathan/formfill/internal/types"
)

// fillText types value into a single-line input and then writes it directly,
// so frameworks listening to either channel see the answer.
func (d *Dispatcher) fillText(ctx context.Context, f types.ClassifiedField, value string) error {
	value = d.withCollegeDomain(f, value)

	if err := d.page.Click(ctx, f.Target); err != nil {
		return strategyErr(f, "focus input", err)
	}
	if err := d.clearFocused(ctx); err != nil {
		return strategyErr(f, "clear input", err)
	}
	if err := d.page.Type(ctx, value); err != nil {
		return strategyErr(f, "type value", err)
	}
	if err := d.setDirect(ctx, f.Target, value, "input", "change", "blur"); err != nil {
		return strategyErr(f, "set value", err)
	}
	return nil
}

// withCollegeDomain completes a bare college email user name with the
// institutional domain.
func (d *Dispatcher) withCollegeDomain(f types.ClassifiedField, value string) string {
	if !strings.Contains(strings.ToLower(f.QuestionText), "college domain email") {
		return value
	}
	if value == "" || value == resolve.NotApplicable || strings.Contains(value, "@") {
		return value
	}
	full := value + "@" + d.opts.CollegeEmailDomain
	d.logger.Debug("appended college domain", zap.String("question", f.QuestionText), zap.String("value", full))
	return full
}

// fillParagraph writes multi-line answers in one operation.
func (d *Dispatcher) fillParagraph(ctx context.Context, f types.ClassifiedField, value string) error {
	if err := d.page.SetValue(ctx, f.Target, ""); err != nil {
		return strategyErr(f, "clear textarea", err)
	}
	if err := d.setDirect(ctx, f.Target, value, "input", "change"); err != nil {
		return strategyErr(f, "set value", err)
	}
	return nil
}

func (d *Dispatcher) clearFocused(ctx context.Context) error {
	if err := d.page.Press(ctx, page.KeySelectAll); err != nil {
		return err
	}
	return d.page.Press(ctx, page.KeyBackspace)
}

func (d *Dispatcher) setDirect(ctx context.Context, h page.Handle, value string, events ...string) error {
	if err := d.page.SetValue(ctx, h, value); err != nil {
		return err
	}
	return d.page.DispatchEvents(ctx, h, events...)
}
