package fill

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/formfill/internal/page"
	"github.com/jonathan/formfill/internal/types"
)

const (
	selListItem      = `[role="listitem"]`
	selAlert         = `[role="alert"]`
	selDialogButtons = `button, div[role="button"]`
)

// DateAttempt is one way of entering a date. Keystrokes are sent only when
// CharDelay is positive; SetDirect then writes the value property and fires
// input, change and blur.
type DateAttempt struct {
	Value          string
	CharDelay      time.Duration
	SeparatorDelay time.Duration
	SetDirect      bool
	// Confirm clicks an OK, Apply or Done button after entry.
	Confirm bool
}

// alternateLayouts are tried when the dd-mm-yyyy literal is rejected.
var alternateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"02/01/2006",
	"02.01.2006",
	"2006/01/02",
}

// isDOBQuestion reports whether the question asks for a date of birth.
func isDOBQuestion(question string) bool {
	q := strings.ToLower(question)
	return strings.Contains(q, "dob") || strings.Contains(q, "date of birth")
}

// DOBAttempts lists the ways a date-of-birth literal is entered, in order: the
// literal at normal then slow typing speed, the same date in other layouts set
// directly, and finally the literal set directly.
func DOBAttempts(literal string, opts Options) []DateAttempt {
	opts = opts.withDefaults()
	attempts := []DateAttempt{
		{Value: literal, CharDelay: opts.KeyDelay, SeparatorDelay: opts.SeparatorDelay, SetDirect: true},
		{Value: literal, CharDelay: opts.SlowKeyDelay, SeparatorDelay: opts.SeparatorDelay, SetDirect: true, Confirm: true},
	}
	if t, err := time.Parse("02-01-2006", literal); err == nil {
		for _, layout := range alternateLayouts {
			attempts = append(attempts, DateAttempt{Value: t.Format(layout), SetDirect: true})
		}
	}
	return append(attempts, DateAttempt{Value: literal, SetDirect: true})
}

func (d *Dispatcher) fillDate(ctx context.Context, f types.ClassifiedField, value string) error {
	if isDOBQuestion(f.QuestionText) {
		return d.fillDOB(ctx, f)
	}
	return d.fillStandardDate(ctx, f, value)
}

// fillDOB works through DOBAttempts until the form stops flagging the field.
func (d *Dispatcher) fillDOB(ctx context.Context, f types.ClassifiedField) error {
	attempts := DOBAttempts(d.opts.DOBLiteral, d.opts)
	var lastMsg string
	for i, a := range attempts {
		if err := d.enterDate(ctx, f.Target, a); err != nil {
			if ctx.Err() != nil {
				return strategyErr(f, "date entry interrupted", ctx.Err())
			}
			d.logger.Debug("date attempt failed", zap.Int("attempt", i), zap.String("value", a.Value), zap.Error(err))
			continue
		}
		msg, rejected, err := d.dateRejected(ctx, f.Target)
		if err != nil {
			d.logger.Debug("could not read date validation", zap.Int("attempt", i), zap.Error(err))
		}
		if !rejected {
			d.logger.Debug("date accepted",
				zap.String("question", f.QuestionText),
				zap.Int("attempt", i),
				zap.String("value", a.Value),
			)
			return nil
		}
		lastMsg = msg
		d.logger.Info("date rejected, trying next format",
			zap.String("question", f.QuestionText),
			zap.String("value", a.Value),
			zap.String("alert", msg),
		)
	}
	return strategyErr(f, "date still rejected after all attempts: "+lastMsg, nil)
}

// fillStandardDate types the resolved date at a steady pace and moves focus on.
func (d *Dispatcher) fillStandardDate(ctx context.Context, f types.ClassifiedField, value string) error {
	a := DateAttempt{Value: value, CharDelay: d.opts.KeyDelay, SeparatorDelay: d.opts.KeyDelay}
	if err := d.enterDate(ctx, f.Target, a); err != nil {
		return strategyErr(f, "type date", err)
	}
	return nil
}

func (d *Dispatcher) enterDate(ctx context.Context, h page.Handle, a DateAttempt) error {
	if a.CharDelay > 0 {
		if err := d.page.Click(ctx, h); err != nil {
			return err
		}
		if err := d.clearFocused(ctx); err != nil {
			return err
		}
		if err := d.pause(ctx, d.opts.SettleDelay); err != nil {
			return err
		}
		for _, r := range a.Value {
			if err := d.page.Type(ctx, string(r)); err != nil {
				return err
			}
			delay := a.CharDelay
			if r == '-' || r == '/' || r == '.' {
				delay = a.SeparatorDelay
			}
			if err := d.pause(ctx, delay); err != nil {
				return err
			}
		}
		if err := d.page.Press(ctx, page.KeyTab); err != nil {
			return err
		}
	}
	if a.SetDirect {
		if err := d.setDirect(ctx, h, a.Value, "input", "change", "blur"); err != nil {
			return err
		}
	}
	if a.Confirm {
		d.confirmDialog(ctx)
	}
	return nil
}

// dateRejected reports whether the question container around h shows a
// validation alert, returning its text.
func (d *Dispatcher) dateRejected(ctx context.Context, h page.Handle) (string, bool, error) {
	item, err := d.page.Closest(ctx, h, selListItem)
	if errors.Is(err, page.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	alert, ok, err := page.Find(ctx, d.page, item, selAlert)
	if err != nil || !ok {
		return "", false, err
	}
	text, err := d.page.Text(ctx, alert)
	if err != nil {
		return "", false, err
	}
	text = strings.TrimSpace(text)
	return text, text != "", nil
}

// confirmDialog clicks the first date-picker confirmation button, if any.
func (d *Dispatcher) confirmDialog(ctx context.Context) {
	buttons, err := d.page.QueryAll(ctx, page.Document, selDialogButtons)
	if err != nil {
		return
	}
	for _, b := range buttons {
		text, err := d.page.Text(ctx, b)
		if err != nil {
			continue
		}
		if strings.Contains(text, "OK") || strings.Contains(text, "Apply") || strings.Contains(text, "Done") {
			if err := d.page.Click(ctx, b); err == nil {
				d.logger.Debug("clicked date dialog button", zap.String("button", strings.TrimSpace(text)))
				_ = d.pause(ctx, d.opts.SettleDelay)
			}
			return
		}
	}
}

// RecheckDOB re-runs the date-of-birth routine on every DOB field whose
// container still shows a validation alert. It returns how many fields were
// retried and how many remain rejected.
func (d *Dispatcher) RecheckDOB(ctx context.Context, fields []types.ClassifiedField) (retried, rejected int) {
	for _, f := range fields {
		if f.Modality != types.ModalityDate || !f.Bound() || !isDOBQuestion(f.QuestionText) {
			continue
		}
		if _, bad, err := d.dateRejected(ctx, f.Target); err != nil || !bad {
			continue
		}
		retried++
		if err := d.fillDOB(ctx, f); err != nil {
			rejected++
			d.logger.Warn("date of birth still rejected", zap.String("question", f.QuestionText), zap.Error(err))
		}
	}
	return retried, rejected
}
