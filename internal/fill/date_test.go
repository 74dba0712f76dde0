package fill

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/formfill/internal/page"
	"github.com/jonathan/formfill/internal/types"
)

const dobForm = `<div role="listitem">
  <div role="heading">Student DOB</div>
  <input type="text" placeholder="dd-mm-yyyy">
  <div role="alert">Invalid date</div>
</div>`

// acceptOnly removes the alert once the input holds want at a change event.
func acceptOnly(want string) func(s *page.Static, target page.Handle, name string) {
	return func(s *page.Static, target page.Handle, name string) {
		if name != "change" {
			return
		}
		ctx := context.Background()
		v, _ := s.Value(ctx, target)
		if v != want {
			return
		}
		if alert, ok, _ := page.Find(ctx, s, page.Document, `[role="alert"]`); ok {
			_ = s.Remove(alert)
		}
	}
}

func TestDOBAttempts(t *testing.T) {
	attempts := DOBAttempts("12-03-2003", Options{})

	var values []string
	for _, a := range attempts {
		values = append(values, a.Value)
	}
	assert.Equal(t, []string{
		"12-03-2003",
		"12-03-2003",
		"2003-03-12",
		"03/12/2003",
		"12/03/2003",
		"12.03.2003",
		"2003/03/12",
		"12-03-2003",
	}, values)

	assert.Equal(t, 100*time.Millisecond, attempts[0].CharDelay)
	assert.Equal(t, 300*time.Millisecond, attempts[0].SeparatorDelay)
	assert.Greater(t, attempts[1].CharDelay, attempts[0].CharDelay)
	assert.True(t, attempts[1].Confirm)
	last := attempts[len(attempts)-1]
	assert.Zero(t, last.CharDelay)
	assert.True(t, last.SetDirect)
}

func TestDOBAttempts_UnparseableLiteral(t *testing.T) {
	attempts := DOBAttempts("March 12", Options{})
	require.Len(t, attempts, 3)
	for _, a := range attempts {
		assert.Equal(t, "March 12", a.Value)
	}
}

func TestFill_DOBAcceptedFirstTry(t *testing.T) {
	d, p, rec := newTestDispatcher(t, dobForm)
	p.OnEvent = acceptOnly("12-03-2003")
	f := single(t, p, "input", types.ModalityDate, "Student DOB")

	require.NoError(t, d.Fill(context.Background(), f, "ignored"))

	assert.Equal(t, "12-03-2003", value(t, p, f.Target))
	assert.Equal(t, "12-03-2003", strings.Join(p.Typed, ""))
	assert.Contains(t, p.Keys, "Tab")
	assert.Contains(t, rec.calls, 300*time.Millisecond, "separators pause longer")
	assert.Contains(t, rec.calls, 100*time.Millisecond)
}

func TestFill_DOBFallsThroughFormats(t *testing.T) {
	d, p, _ := newTestDispatcher(t, dobForm+`<button>Cancel</button><button>OK</button>`)
	p.OnEvent = acceptOnly("2003-03-12")
	f := single(t, p, "input", types.ModalityDate, "Date of Birth")

	require.NoError(t, d.Fill(context.Background(), f, "ignored"))

	assert.Equal(t, "2003-03-12", value(t, p, f.Target))
	assert.Equal(t, strings.Repeat("12-03-2003", 2), strings.Join(p.Typed, ""), "both typed attempts ran")

	ok, err := p.Query(context.Background(), page.Document, "button:nth-of-type(2)")
	require.NoError(t, err)
	assert.Contains(t, p.Clicks, ok, "slow attempt confirms the picker dialog")
}

func TestFill_DOBStillRejected(t *testing.T) {
	d, p, _ := newTestDispatcher(t, dobForm)
	f := single(t, p, "input", types.ModalityDate, "Student DOB")

	err := d.Fill(context.Background(), f, "ignored")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid date")
	assert.Equal(t, "12-03-2003", value(t, p, f.Target), "last resort leaves the literal in place")
}

func TestFill_StandardDateTypesResolvedValue(t *testing.T) {
	d, p, rec := newTestDispatcher(t, `<div role="listitem"><input type="date"></div>`)
	f := single(t, p, "input", types.ModalityDate, "Joining date")

	require.NoError(t, d.Fill(context.Background(), f, "01-07-2024"))

	assert.Equal(t, "01-07-2024", value(t, p, f.Target))
	assert.Len(t, p.Typed, len("01-07-2024"))
	assert.Equal(t, []string{"SelectAll", "Backspace", "Tab"}, p.Keys)
	for _, c := range rec.calls[1:] {
		assert.Equal(t, 100*time.Millisecond, c)
	}
}

func TestRecheckDOB(t *testing.T) {
	d, p, _ := newTestDispatcher(t, dobForm+`<div role="listitem"><div role="heading">Joining date</div><input id="join" type="date"></div>`)
	fields := []types.ClassifiedField{
		single(t, p, "input[placeholder]", types.ModalityDate, "Student DOB"),
		single(t, p, "#join", types.ModalityDate, "Joining date"),
	}

	p.OnEvent = acceptOnly("12-03-2003")
	retried, rejected := d.RecheckDOB(context.Background(), fields)
	assert.Equal(t, 1, retried)
	assert.Equal(t, 0, rejected)

	retried, rejected = d.RecheckDOB(context.Background(), fields)
	assert.Zero(t, retried, "accepted fields are left alone")
	assert.Zero(t, rejected)
}
