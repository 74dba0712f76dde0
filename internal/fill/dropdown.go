package fill

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/formfill/internal/page"
	"github.com/jonathan/formfill/internal/resolve"
	"github.com/jonathan/formfill/internal/types"
)

const selOption = `div[role="option"]`

var errNoOptions = errors.New("dropdown rendered no options")

// fillDropdown opens the list and picks the first option containing value,
// or the first option when nothing matches. A failure gets one retry that
// simply takes the first option.
func (d *Dispatcher) fillDropdown(ctx context.Context, f types.ClassifiedField, value string) error {
	err := d.pickOption(ctx, f, value)
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return strategyErr(f, "select option", ctx.Err())
	}
	d.logger.Warn("dropdown selection failed, retrying with first option",
		zap.String("question", f.QuestionText),
		zap.Error(err),
	)

	if retryErr := d.pickFirst(ctx, f); retryErr != nil {
		return strategyErr(f, "select option", errors.Join(err, retryErr))
	}
	return nil
}

func (d *Dispatcher) pickOption(ctx context.Context, f types.ClassifiedField, value string) error {
	options, err := d.openOptions(ctx, f.Target, d.opts.DropdownTimeout)
	if err != nil {
		return err
	}

	if value != "" && value != resolve.NotApplicable {
		want := strings.ToLower(value)
		for _, o := range options {
			text, err := d.page.Text(ctx, o)
			if err != nil {
				return err
			}
			if strings.Contains(strings.ToLower(text), want) {
				d.logger.Debug("selected matching option", zap.String("question", f.QuestionText), zap.String("option", strings.TrimSpace(text)))
				return d.page.Click(ctx, o)
			}
		}
	}

	d.logger.Debug("selected first option", zap.String("question", f.QuestionText), zap.String("value", value))
	return d.page.Click(ctx, options[0])
}

func (d *Dispatcher) pickFirst(ctx context.Context, f types.ClassifiedField) error {
	options, err := d.openOptions(ctx, f.Target, d.opts.RetryTimeout)
	if err != nil {
		return err
	}
	return d.page.Click(ctx, options[0])
}

// openOptions clicks the list open and returns its options, looking inside the
// list first and then anywhere on the page for popups rendered elsewhere.
func (d *Dispatcher) openOptions(ctx context.Context, list page.Handle, timeout time.Duration) ([]page.Handle, error) {
	if err := d.page.Click(ctx, list); err != nil {
		return nil, err
	}
	if err := d.page.WaitFor(ctx, selOption, timeout); err != nil {
		return nil, err
	}
	options, err := d.page.QueryAll(ctx, list, selOption)
	if err != nil {
		return nil, err
	}
	if len(options) == 0 {
		if options, err = d.page.QueryAll(ctx, page.Document, selOption); err != nil {
			return nil, err
		}
	}
	if len(options) == 0 {
		return nil, errNoOptions
	}
	return options, nil
}
