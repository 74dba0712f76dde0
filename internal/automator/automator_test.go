package automator

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/jonathan/formfill/internal/fill"
	"github.com/jonathan/formfill/internal/page"
	"github.com/jonathan/formfill/internal/review"
	"github.com/jonathan/formfill/internal/types"
)

const placementForm = `<form>
  <div role="list">
    <div role="listitem">
      <div role="heading">Full Name *</div>
      <input type="text">
    </div>
    <div role="listitem">
      <div role="heading">Gender</div>
      <div role="radiogroup">
        <div role="radio" aria-label="Female" aria-checked="false"></div>
        <div role="radio" aria-label="Male" aria-checked="false"></div>
      </div>
    </div>
    <div role="listitem">
      <div role="heading">Upload Resume</div>
      <input type="file">
    </div>
  </div>
</form>`

func instant(ctx context.Context, _ time.Duration) error {
	return ctx.Err()
}

func newTestAutomator(t *testing.T, markup string, opts Options) (*Automator, *page.Static, *bytes.Buffer) {
	t.Helper()
	p, err := page.NewStatic(markup)
	require.NoError(t, err)

	var out bytes.Buffer
	opts.Out = &out
	opts.Fill = fill.Options{Sleep: instant}
	profile := &types.Profile{UID: "22dba184", Name: "Asta", Email: "m@gmail.com", Gender: "Male"}
	return New(p, profile, zaptest.NewLogger(t), opts), p, &out
}

func TestRun_FillsFormAndReports(t *testing.T) {
	var events []ProgressEvent
	a, p, out := newTestAutomator(t, placementForm, Options{
		OnProgress: func(e ProgressEvent) { events = append(events, e) },
	})

	report, err := a.Run(context.Background(), "https://docs.google.com/forms/d/e/abc/viewform")
	require.NoError(t, err)

	assert.Equal(t, "https://docs.google.com/forms/d/e/abc/viewform", p.URL)
	assert.NotEmpty(t, report.RunID.String())
	assert.False(t, report.FinishedAt.Before(report.StartedAt))

	require.Len(t, report.Results, 3)
	assert.Equal(t, types.OutcomeFilled, report.Results[0].Outcome)
	assert.Equal(t, "Asta", report.Results[0].Value)
	assert.Equal(t, types.OutcomeFilled, report.Results[1].Outcome)
	assert.Equal(t, types.OutcomeSkipped, report.Results[2].Outcome)

	input, err := p.Query(context.Background(), page.Document, `input[type="text"]`)
	require.NoError(t, err)
	v, err := p.Value(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, "Asta", v)

	male, err := p.Query(context.Background(), page.Document, `[aria-label="Male"]`)
	require.NoError(t, err)
	checked, _, err := p.Attribute(context.Background(), male, "aria-checked")
	require.NoError(t, err)
	assert.Equal(t, "true", checked)

	var steps []string
	for _, e := range events {
		steps = append(steps, e.Step)
		assert.Equal(t, report.RunID.String(), e.RunID)
	}
	assert.Equal(t, []string{StepOpened, StepClassified, StepFilled, StepRechecked}, steps)

	assert.Contains(t, out.String(), "FILL SUMMARY")
	assert.Contains(t, out.String(), "Filled:   2")
}

func TestRun_MissingFormElementIsTolerated(t *testing.T) {
	a, _, _ := newTestAutomator(t, `<div role="listitem"><div role="heading">Email</div><input type="email"></div>`, Options{})

	report, err := a.Run(context.Background(), "https://example.com/form")
	require.NoError(t, err)
	require.Len(t, report.Results, 1)
	assert.Equal(t, types.ModalityEmail, report.Results[0].Field.Modality)
	assert.Equal(t, "m@gmail.com", report.Results[0].Value)
}

func TestRun_CancelledContext(t *testing.T) {
	a, _, _ := newTestAutomator(t, placementForm, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.Run(ctx, "https://example.com/form")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_VerbosePrintsFields(t *testing.T) {
	a, _, out := newTestAutomator(t, placementForm, Options{Verbose: true, AutoSubmit: true})

	_, err := a.Run(context.Background(), "https://example.com/form")
	require.NoError(t, err)
	assert.Contains(t, out.String(), "CLASSIFIED FIELDS (3)")
}

func TestAwaitReview(t *testing.T) {
	a, _, out := newTestAutomator(t, placementForm, Options{AutoSubmit: true})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Equal(t, review.ReasonCancelled, a.AwaitReview(ctx, nil, 0))
	assert.Contains(t, out.String(), "NOT submitted")
	assert.Contains(t, out.String(), "auto_submit")
}
