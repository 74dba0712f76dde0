package page

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const widgetHTML = `<html><body>
<div role="listitem" id="q1">
  <div role="heading">Gender</div>
  <div role="radiogroup">
    <div role="radio" aria-label="Male" aria-checked="false"></div>
    <div role="radio" aria-label="Female" aria-checked="true"></div>
  </div>
</div>
<div role="listitem" id="q2">
  <div role="heading">Skills</div>
  <div role="group">
    <div role="checkbox" aria-checked="false">Go</div>
    <div role="checkbox" aria-checked="true">SQL</div>
  </div>
</div>
<div role="listitem" id="q3">
  <div role="heading">City</div>
  <input type="text" value="old">
</div>
<div role="listbox">
  <div role="option" data-value="">Choose</div>
  <div role="option" data-value="Delhi">Delhi</div>
</div>
</body></html>`

func newWidgetPage(t *testing.T) *Static {
	t.Helper()
	p, err := NewStatic(widgetHTML)
	require.NoError(t, err)
	return p
}

func TestStatic_QueryAllInDocumentOrder(t *testing.T) {
	ctx := context.Background()
	p := newWidgetPage(t)

	items, err := p.QueryAll(ctx, Document, `div[role="listitem"]`)
	require.NoError(t, err)
	require.Len(t, items, 3)

	heading, err := p.Query(ctx, items[0], `div[role="heading"]`)
	require.NoError(t, err)
	text, err := p.Text(ctx, heading)
	require.NoError(t, err)
	assert.Equal(t, "Gender", text)

	again, err := p.QueryAll(ctx, Document, `div[role="listitem"]`)
	require.NoError(t, err)
	assert.Equal(t, items, again, "handles are stable for the same node")
}

func TestStatic_QueryMissing(t *testing.T) {
	p := newWidgetPage(t)
	_, err := p.Query(context.Background(), Document, "textarea")
	assert.ErrorIs(t, err, ErrNotFound)

	_, found, err := Find(context.Background(), p, Document, "textarea")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStatic_RadioClickIsExclusive(t *testing.T) {
	ctx := context.Background()
	p := newWidgetPage(t)

	radios, err := p.QueryAll(ctx, Document, `div[role="radio"]`)
	require.NoError(t, err)
	require.NoError(t, p.Click(ctx, radios[0]))

	v, _, _ := p.Attribute(ctx, radios[0], "aria-checked")
	assert.Equal(t, "true", v)
	v, _, _ = p.Attribute(ctx, radios[1], "aria-checked")
	assert.Equal(t, "false", v)
}

func TestStatic_CheckboxToggles(t *testing.T) {
	ctx := context.Background()
	p := newWidgetPage(t)

	boxes, err := p.QueryAll(ctx, Document, `div[role="checkbox"]`)
	require.NoError(t, err)
	require.NoError(t, p.Click(ctx, boxes[1]))

	v, _, _ := p.Attribute(ctx, boxes[1], "aria-checked")
	assert.Equal(t, "false", v)
}

func TestStatic_TypingHonoursSelectAll(t *testing.T) {
	ctx := context.Background()
	p := newWidgetPage(t)

	in, err := p.Query(ctx, Document, `input[type="text"]`)
	require.NoError(t, err)
	require.NoError(t, p.Click(ctx, in))
	require.NoError(t, p.Press(ctx, KeySelectAll))
	require.NoError(t, p.Press(ctx, KeyBackspace))
	require.NoError(t, p.Type(ctx, "Pune"))

	v, err := p.Value(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "Pune", v)

	require.NoError(t, p.Press(ctx, KeyBackspace))
	v, _ = p.Value(ctx, in)
	assert.Equal(t, "Pun", v)
}

func TestStatic_TypeWithoutFocus(t *testing.T) {
	p := newWidgetPage(t)
	assert.ErrorIs(t, p.Type(context.Background(), "x"), ErrNotFound)
}

func TestStatic_OptionSelection(t *testing.T) {
	ctx := context.Background()
	p := newWidgetPage(t)

	opts, err := p.QueryAll(ctx, Document, `div[role="option"]`)
	require.NoError(t, err)
	require.NoError(t, p.Click(ctx, opts[1]))

	box, err := p.Closest(ctx, opts[1], `div[role="listbox"]`)
	require.NoError(t, err)
	v, ok, err := p.Attribute(ctx, box, "data-value")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Delhi", v)
}

func TestStatic_RemoveDetachesHandle(t *testing.T) {
	ctx := context.Background()
	p := newWidgetPage(t)

	in, err := p.Query(ctx, Document, `input`)
	require.NoError(t, err)
	require.NoError(t, p.Remove(in))

	_, err = p.Text(ctx, in)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStatic_DispatchRunsHook(t *testing.T) {
	ctx := context.Background()
	p := newWidgetPage(t)
	var seen []string
	p.OnEvent = func(_ *Static, _ Handle, name string) { seen = append(seen, name) }

	in, err := p.Query(ctx, Document, `input`)
	require.NoError(t, err)
	require.NoError(t, p.DispatchEvents(ctx, in, "input", "change"))

	assert.Equal(t, []string{"input", "change"}, seen)
	assert.Len(t, p.Events, 2)
}

func TestStatic_WaitFor(t *testing.T) {
	p := newWidgetPage(t)
	assert.NoError(t, p.WaitFor(context.Background(), `div[role="option"]`, 0))
	assert.ErrorIs(t, p.WaitFor(context.Background(), `div[role="dialog"]`, 0), ErrTimeout)
}

func TestLabel_PrefersAriaLabel(t *testing.T) {
	ctx := context.Background()
	p := newWidgetPage(t)

	radios, err := p.QueryAll(ctx, Document, `div[role="radio"]`)
	require.NoError(t, err)
	l, err := Label(ctx, p, radios[1])
	require.NoError(t, err)
	assert.Equal(t, "Female", l)

	boxes, err := p.QueryAll(ctx, Document, `div[role="checkbox"]`)
	require.NoError(t, err)
	l, err = Label(ctx, p, boxes[0])
	require.NoError(t, err)
	assert.Equal(t, "Go", l)
}
