// Package fill enters answers into classified form fields, one strategy per modality.
package fill

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/formfill/internal/page"
	"github.com/jonathan/formfill/internal/resolve"
	"github.com/jonathan/formfill/internal/types"
)

// Dispatcher routes each field to the strategy for its modality. It owns the
// page for the duration of a pass and fills strictly one field at a time.
type Dispatcher struct {
	page     page.Page
	resolver *resolve.Resolver
	logger   *zap.Logger
	opts     Options
}

// New creates a Dispatcher. Zero Options fields take their defaults.
func New(p page.Page, r *resolve.Resolver, logger *zap.Logger, opts Options) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		page:     p,
		resolver: r,
		logger:   logger.Named("filler"),
		opts:     opts.withDefaults(),
	}
}

// Fill enters value into f. A nil error means the strategy completed.
func (d *Dispatcher) Fill(ctx context.Context, f types.ClassifiedField, value string) error {
	if !f.Modality.Fillable() {
		return ErrNotFillable
	}
	if !f.Bound() {
		return strategyErr(f, "no control bound to field", page.ErrNotFound)
	}

	switch f.Modality {
	case types.ModalityText, types.ModalityEmail:
		return d.fillText(ctx, f, value)
	case types.ModalityParagraph:
		return d.fillParagraph(ctx, f, value)
	case types.ModalityDate:
		return d.fillDate(ctx, f, value)
	case types.ModalityRadio:
		return d.fillRadio(ctx, f)
	case types.ModalityCheckbox:
		return d.fillCheckbox(ctx, f)
	case types.ModalityDropdown:
		return d.fillDropdown(ctx, f, value)
	}
	return strategyErr(f, "unsupported modality", nil)
}

// FillAll resolves and fills every field in order, pausing between fields. A
// failed field is recorded and the pass moves on; only a finished context stops it.
func (d *Dispatcher) FillAll(ctx context.Context, fields []types.ClassifiedField) []types.FillResult {
	results := make([]types.FillResult, 0, len(fields))
	for i, f := range fields {
		if ctx.Err() != nil {
			for _, rest := range fields[i:] {
				results = append(results, types.FillResult{Field: rest, Outcome: types.OutcomeSkipped, Err: ctx.Err()})
			}
			break
		}

		if !f.Modality.Fillable() || !f.Bound() {
			d.logger.Info("skipping field",
				zap.String("question", f.QuestionText),
				zap.String("modality", string(f.Modality)),
				zap.Bool("bound", f.Bound()),
			)
			results = append(results, types.FillResult{Field: f, Outcome: types.OutcomeSkipped})
			continue
		}

		results = append(results, d.fillOne(ctx, f))

		if i < len(fields)-1 {
			// an interrupted pause surfaces through ctx on the next iteration
			_ = d.pause(ctx, d.opts.pacing())
		}
	}
	return results
}

func (d *Dispatcher) fillOne(ctx context.Context, f types.ClassifiedField) types.FillResult {
	start := time.Now()
	value, rule := d.resolver.Explain(f.QuestionText)
	err := d.Fill(ctx, f, value)

	res := types.FillResult{
		Field:    f,
		Value:    value,
		Rule:     rule,
		Outcome:  types.OutcomeFilled,
		Err:      err,
		Duration: time.Since(start),
	}
	fields := []zap.Field{
		zap.Int("position", f.Position),
		zap.String("question", f.QuestionText),
		zap.String("modality", string(f.Modality)),
		zap.String("rule", rule),
		zap.String("value", value),
		zap.Duration("duration", res.Duration),
	}
	if err != nil {
		res.Outcome = types.OutcomeFailed
		d.logger.Warn("field fill failed", append(fields, zap.String("outcome", string(res.Outcome)), zap.Error(err))...)
		return res
	}
	d.logger.Info("field filled", append(fields, zap.String("outcome", string(res.Outcome)))...)
	return res
}

// pause sleeps for d, returning early when ctx ends.
func (d *Dispatcher) pause(ctx context.Context, dur time.Duration) error {
	return d.opts.Sleep(ctx, dur)
}
