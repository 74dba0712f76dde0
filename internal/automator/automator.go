// Package automator runs one form-fill pass end to end: open the form,
// classify its questions, resolve and fill every answer, then hand the page
// over for manual review. It never submits the form.
package automator

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/formfill/internal/classify"
	"github.com/jonathan/formfill/internal/fill"
	"github.com/jonathan/formfill/internal/observability"
	"github.com/jonathan/formfill/internal/page"
	"github.com/jonathan/formfill/internal/resolve"
	"github.com/jonathan/formfill/internal/review"
	"github.com/jonathan/formfill/internal/types"
)

// Progress steps reported through Options.OnProgress.
const (
	StepOpened     = "opened"
	StepClassified = "classified"
	StepFilled     = "filled"
	StepRechecked  = "rechecked"
)

// DefaultSettle is the pause after load before the form is scanned.
const DefaultSettle = 2 * time.Second

// formSelector is waited for after navigation.
const formSelector = "form"

// ProgressEvent represents a progress update during a fill pass
type ProgressEvent struct {
	Step    string `json:"step"`
	Message string `json:"message"`
	RunID   string `json:"run_id,omitempty"`
	Content any    `json:"content,omitempty"`
}

// ProgressCallback is called when a fill pass advances
type ProgressCallback func(event ProgressEvent)

// Options holds configuration for a fill pass
type Options struct {
	NavigationTimeout time.Duration
	// Settle is the pause after load; zero means DefaultSettle, negative disables it.
	Settle time.Duration
	// AutoSubmit is reported and ignored.
	AutoSubmit bool
	Verbose    bool
	Fill       fill.Options
	Out        io.Writer
	OnProgress ProgressCallback
}

// Automator drives the classifier, resolver and dispatcher over one page.
type Automator struct {
	page       page.Page
	logger     *zap.Logger
	opts       Options
	printer    *observability.Printer
	classifier *classify.Classifier
	dispatcher *fill.Dispatcher
}

// New wires an Automator for page p answering from profile.
func New(p page.Page, profile *types.Profile, logger *zap.Logger, opts Options) *Automator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Settle == 0 {
		opts.Settle = DefaultSettle
	}
	if opts.Fill.Sleep == nil {
		opts.Fill.Sleep = fill.DefaultOptions().Sleep
	}
	return &Automator{
		page:       p,
		logger:     logger,
		opts:       opts,
		printer:    observability.NewPrinter(opts.Out),
		classifier: classify.New(logger),
		dispatcher: fill.New(p, resolve.New(profile, logger), logger, opts.Fill),
	}
}

func (a *Automator) emit(runID uuid.UUID, step, message string, content any) {
	if a.opts.OnProgress != nil {
		a.opts.OnProgress(ProgressEvent{
			Step:    step,
			Message: message,
			RunID:   runID.String(),
			Content: content,
		})
	}
}

// Run fills the form at url. Only an unusable page is an error; individual
// field failures are recorded in the report.
func (a *Automator) Run(ctx context.Context, url string) (*types.FillReport, error) {
	report := &types.FillReport{
		RunID:     uuid.New(),
		URL:       url,
		StartedAt: time.Now(),
	}
	logger := a.logger.With(zap.String("run_id", report.RunID.String()))

	if a.opts.AutoSubmit {
		logger.Warn("auto_submit is set but forms are never submitted automatically")
	}

	if err := a.open(ctx, url, logger); err != nil {
		return nil, err
	}
	a.emit(report.RunID, StepOpened, "Opened "+url, nil)

	fields, err := a.classifier.Classify(ctx, a.page)
	if err != nil {
		return nil, fmt.Errorf("failed to scan form: %w", err)
	}
	logger.Info("form scanned", zap.Int("fields", len(fields)))
	if a.opts.Verbose {
		a.printer.PrintFields(fields)
	}
	a.emit(report.RunID, StepClassified, fmt.Sprintf("Found %d questions", len(fields)), fields)

	report.Results = a.dispatcher.FillAll(ctx, fields)
	a.emit(report.RunID, StepFilled, fmt.Sprintf("Filled %d of %d questions",
		report.Count(types.OutcomeFilled), len(report.Results)), report.Results)

	if ctx.Err() == nil {
		retried, rejected := a.dispatcher.RecheckDOB(ctx, fields)
		if retried > 0 {
			logger.Info("rechecked date of birth fields", zap.Int("retried", retried), zap.Int("still_rejected", rejected))
		}
		a.emit(report.RunID, StepRechecked, fmt.Sprintf("Rechecked %d date fields", retried), nil)
	}

	report.FinishedAt = time.Now()
	logger.Info("fill pass complete",
		zap.Int("filled", report.Count(types.OutcomeFilled)),
		zap.Int("skipped", report.Count(types.OutcomeSkipped)),
		zap.Int("failed", report.Count(types.OutcomeFailed)),
		zap.Duration("elapsed", report.FinishedAt.Sub(report.StartedAt)),
	)
	a.printer.PrintSummary(report)

	return report, nil
}

// open navigates and waits for the form to render. A missing form element is
// logged and tolerated; the classifier has fallbacks for bare controls.
func (a *Automator) open(ctx context.Context, url string, logger *zap.Logger) error {
	navCtx := ctx
	if a.opts.NavigationTimeout > 0 {
		var cancel context.CancelFunc
		navCtx, cancel = context.WithTimeout(ctx, a.opts.NavigationTimeout)
		defer cancel()
	}

	logger.Info("opening form", zap.String("url", url))
	if err := a.page.Navigate(navCtx, url); err != nil {
		return fmt.Errorf("failed to open form %s: %w", url, err)
	}

	if err := a.page.WaitFor(ctx, formSelector, a.opts.NavigationTimeout); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logger.Warn("form element did not appear, scanning anyway", zap.Error(err))
	}

	if a.opts.Settle > 0 {
		if err := a.opts.Fill.Sleep(ctx, a.opts.Settle); err != nil {
			return err
		}
	}
	return nil
}

// AwaitReview prints the review banner and blocks until the user is done.
func (a *Automator) AwaitReview(ctx context.Context, closed <-chan struct{}, timeout time.Duration) review.Reason {
	a.printer.PrintReviewBanner(a.opts.AutoSubmit)
	reason := review.Wait(ctx, closed, timeout)
	a.logger.Info("review ended", zap.String("reason", string(reason)))
	return reason
}
