package fill

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/jonathan/formfill/internal/page"
	"github.com/jonathan/formfill/internal/resolve"
	"github.com/jonathan/formfill/internal/types"
)

type sleepRecorder struct {
	calls []time.Duration
}

func (s *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	s.calls = append(s.calls, d)
	return ctx.Err()
}

func testProfile() *types.Profile {
	return &types.Profile{
		UID:                "22dba184",
		Name:               "Asta",
		Email:              "m@gmail.com",
		CollegeDomainEmail: "22dba70184",
		Gender:             "Male",
		Address:            types.Addresses{Current: types.Address{City: "Delhi"}},
	}
}

func newTestDispatcher(t *testing.T, markup string) (*Dispatcher, *page.Static, *sleepRecorder) {
	t.Helper()
	p, err := page.NewStatic(markup)
	require.NoError(t, err)
	rec := &sleepRecorder{}
	opts := Options{
		DelayMin: 500 * time.Millisecond,
		DelayMax: 1500 * time.Millisecond,
		Sleep:    rec.sleep,
	}
	logger := zaptest.NewLogger(t)
	d := New(p, resolve.New(testProfile(), logger), logger, opts)
	return d, p, rec
}

func single(t *testing.T, p *page.Static, selector string, m types.Modality, question string) types.ClassifiedField {
	t.Helper()
	h, err := p.Query(context.Background(), page.Document, selector)
	require.NoError(t, err)
	return types.ClassifiedField{QuestionText: question, Modality: m, Target: h}
}

func group(t *testing.T, p *page.Static, selector string, m types.Modality, question string) types.ClassifiedField {
	t.Helper()
	hs, err := p.QueryAll(context.Background(), page.Document, selector)
	require.NoError(t, err)
	require.NotEmpty(t, hs)
	return types.ClassifiedField{QuestionText: question, Modality: m, Choices: hs}
}

func value(t *testing.T, p *page.Static, h page.Handle) string {
	t.Helper()
	v, err := p.Value(context.Background(), h)
	require.NoError(t, err)
	return v
}

func attr(t *testing.T, p *page.Static, h page.Handle, name string) string {
	t.Helper()
	v, _, err := p.Attribute(context.Background(), h, name)
	require.NoError(t, err)
	return v
}

func TestFill_TextReplacesExistingValue(t *testing.T) {
	d, p, _ := newTestDispatcher(t, `<div role="listitem"><input type="text" value="stale"></div>`)
	f := single(t, p, "input", types.ModalityText, "Favorite color")

	require.NoError(t, d.Fill(context.Background(), f, resolve.NotApplicable))

	assert.Equal(t, []string{resolve.NotApplicable}, p.Typed)
	assert.Equal(t, resolve.NotApplicable, value(t, p, f.Target))
	assert.Equal(t, []string{"SelectAll", "Backspace"}, p.Keys)

	var events []string
	for _, e := range p.Events {
		events = append(events, e.Name)
	}
	assert.Equal(t, []string{"input", "change", "blur"}, events)
}

func TestFill_CollegeDomainEmailGetsSuffix(t *testing.T) {
	d, p, _ := newTestDispatcher(t, `<div role="listitem"><input type="email"></div>`)
	f := single(t, p, "input", types.ModalityEmail, "College Domain Email ID")

	require.NoError(t, d.Fill(context.Background(), f, "22dba70184"))

	assert.Equal(t, []string{"22dba70184@cuchd.in"}, p.Typed)
	assert.Equal(t, "22dba70184@cuchd.in", value(t, p, f.Target))
}

func TestFill_CollegeDomainEmailKeepsFullAddress(t *testing.T) {
	d, p, _ := newTestDispatcher(t, `<input type="email">`)
	f := single(t, p, "input", types.ModalityEmail, "College Domain Email ID")

	require.NoError(t, d.Fill(context.Background(), f, "a@uni.edu"))
	assert.Equal(t, "a@uni.edu", value(t, p, f.Target))

	require.NoError(t, d.Fill(context.Background(), f, resolve.NotApplicable))
	assert.Equal(t, resolve.NotApplicable, value(t, p, f.Target))
}

func TestFill_ParagraphSetsValueWithoutTyping(t *testing.T) {
	d, p, _ := newTestDispatcher(t, `<textarea>old</textarea>`)
	f := single(t, p, "textarea", types.ModalityParagraph, "About you")

	require.NoError(t, d.Fill(context.Background(), f, "line one\nline two"))

	assert.Empty(t, p.Typed)
	assert.Equal(t, "line one\nline two", value(t, p, f.Target))
}

const genderForm = `<div role="listitem">
  <div role="heading">Gender</div>
  <div role="radiogroup">
    <div role="radio" aria-label="Female" aria-checked="false"></div>
    <div role="radio" aria-label="Male" aria-checked="false"></div>
    <div role="radio" aria-label="Other" aria-checked="true"></div>
  </div>
</div>`

func TestFill_GenderRadioClicksMatchingChoiceOnly(t *testing.T) {
	d, p, _ := newTestDispatcher(t, genderForm)
	f := group(t, p, `div[role="radio"]`, types.ModalityRadio, "Gender *")

	require.NoError(t, d.Fill(context.Background(), f, "Male"))

	assert.Equal(t, []page.Handle{f.Choices[1]}, p.Clicks)
	assert.Equal(t, "false", attr(t, p, f.Choices[0], "aria-checked"))
	assert.Equal(t, "true", attr(t, p, f.Choices[1], "aria-checked"))
	assert.Equal(t, "false", attr(t, p, f.Choices[2], "aria-checked"))
}

func TestFill_RadioDefaultsToFirstChoice(t *testing.T) {
	d, p, _ := newTestDispatcher(t, genderForm)
	f := group(t, p, `div[role="radio"]`, types.ModalityRadio, "Are you a returning applicant?")

	require.NoError(t, d.Fill(context.Background(), f, resolve.NotApplicable))

	assert.Equal(t, []page.Handle{f.Choices[0]}, p.Clicks)
}

func TestMatchGender(t *testing.T) {
	labels := []string{"Female", "Male", "Prefer not to say"}
	assert.Equal(t, 1, matchGender(labels, "male"))
	assert.Equal(t, 0, matchGender(labels, "Female"))
	assert.Equal(t, -1, matchGender(labels, ""))
	assert.Equal(t, 2, matchGender(labels, "not to say"))
}

func TestFill_CheckboxSelectsEveryChoice(t *testing.T) {
	markup := `<div role="group">
  <div role="checkbox" aria-checked="false">A</div>
  <div role="checkbox" aria-checked="true">B</div>
  <div role="checkbox">C</div>
</div>`

	for _, question := range []string{"Declaration and undertaking", "Which tools do you use?"} {
		t.Run(question, func(t *testing.T) {
			d, p, _ := newTestDispatcher(t, markup)
			f := group(t, p, `div[role="checkbox"]`, types.ModalityCheckbox, question)

			require.NoError(t, d.Fill(context.Background(), f, resolve.NotApplicable))
			for _, h := range f.Choices {
				assert.Equal(t, "true", attr(t, p, h, "aria-checked"))
			}
			assert.Equal(t, []page.Handle{f.Choices[0], f.Choices[2]}, p.Clicks)

			require.NoError(t, d.Fill(context.Background(), f, resolve.NotApplicable))
			assert.Len(t, p.Clicks, 2, "a second pass clicks nothing")
		})
	}
}

func TestIsAgreement(t *testing.T) {
	assert.True(t, isAgreement("I acknowledge the policy"))
	assert.True(t, isAgreement("Terms and Conditions"))
	assert.False(t, isAgreement("Preferred languages"))
}

const dropdownForm = `<div role="listitem">
  <div role="listbox">
    <div role="option" data-value="Mumbai">Mumbai</div>
    <div role="option" data-value="Delhi">New Delhi</div>
  </div>
</div>`

func TestFill_DropdownSelectsMatchingOption(t *testing.T) {
	d, p, _ := newTestDispatcher(t, dropdownForm)
	f := single(t, p, `div[role="listbox"]`, types.ModalityDropdown, "City")

	require.NoError(t, d.Fill(context.Background(), f, "delhi"))
	assert.Equal(t, "Delhi", attr(t, p, f.Target, "data-value"))
}

func TestFill_DropdownNotApplicableTakesFirstOption(t *testing.T) {
	d, p, _ := newTestDispatcher(t, dropdownForm)
	f := single(t, p, `div[role="listbox"]`, types.ModalityDropdown, "Hostel block")

	require.NoError(t, d.Fill(context.Background(), f, resolve.NotApplicable))
	assert.Equal(t, "Mumbai", attr(t, p, f.Target, "data-value"))
}

func TestFill_DropdownWithoutOptionsFails(t *testing.T) {
	d, p, _ := newTestDispatcher(t, `<div role="listbox"></div>`)
	f := single(t, p, `div[role="listbox"]`, types.ModalityDropdown, "City")

	err := d.Fill(context.Background(), f, "Delhi")
	require.Error(t, err)

	var se *StrategyError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, types.ModalityDropdown, se.Modality)
	assert.ErrorIs(t, err, page.ErrTimeout)
	assert.Len(t, p.Clicks, 2, "opened once and once more on retry")
}

func TestFill_NotFillable(t *testing.T) {
	d, p, _ := newTestDispatcher(t, `<input type="file">`)
	f := single(t, p, "input", types.ModalityFile, "Resume")

	assert.ErrorIs(t, d.Fill(context.Background(), f, "x"), ErrNotFillable)
	assert.Empty(t, p.Clicks)
}

func TestFill_UnboundField(t *testing.T) {
	d, _, _ := newTestDispatcher(t, `<p></p>`)
	err := d.Fill(context.Background(), types.ClassifiedField{QuestionText: "Name", Modality: types.ModalityText}, "Asta")
	assert.ErrorIs(t, err, page.ErrNotFound)
}

func TestFillAll_SkipsAndPaces(t *testing.T) {
	d, p, rec := newTestDispatcher(t, `<form>
<input id="name" type="text">
<input id="resume" type="file">
<textarea></textarea>
</form>`)
	fields := []types.ClassifiedField{
		single(t, p, "#name", types.ModalityText, "Full Name"),
		single(t, p, "#resume", types.ModalityFile, "Resume"),
		{QuestionText: "Section", Modality: types.ModalityUnknown},
		single(t, p, "textarea", types.ModalityParagraph, "City"),
	}

	results := d.FillAll(context.Background(), fields)
	require.Len(t, results, 4)

	assert.Equal(t, types.OutcomeFilled, results[0].Outcome)
	assert.Equal(t, "Asta", results[0].Value)
	assert.Equal(t, "identity.name", results[0].Rule)
	assert.Equal(t, types.OutcomeSkipped, results[1].Outcome)
	assert.Equal(t, types.OutcomeSkipped, results[2].Outcome)
	assert.Equal(t, types.OutcomeFilled, results[3].Outcome)
	assert.Equal(t, "Delhi", value(t, p, fields[3].Target))

	require.Len(t, rec.calls, 1, "one pause after each attempted field but the last")
	for _, c := range rec.calls {
		assert.GreaterOrEqual(t, c, 500*time.Millisecond)
		assert.LessOrEqual(t, c, 1500*time.Millisecond)
	}
}

func TestFillAll_NoPauseAfterLastField(t *testing.T) {
	d, p, rec := newTestDispatcher(t, `<input id="name" type="text"><input id="email" type="text">`)
	fields := []types.ClassifiedField{
		single(t, p, "#name", types.ModalityText, "Full Name"),
		single(t, p, "#email", types.ModalityText, "Email"),
	}

	results := d.FillAll(context.Background(), fields)
	require.Len(t, results, 2)
	assert.Equal(t, types.OutcomeFilled, results[1].Outcome)
	assert.Len(t, rec.calls, 1)

	rec.calls = nil
	d.FillAll(context.Background(), fields[:1])
	assert.Empty(t, rec.calls, "a single field needs no pacing")
}

func TestFillAll_ContinuesAfterFailure(t *testing.T) {
	d, p, _ := newTestDispatcher(t, `<div role="listbox"></div><input type="text">`)
	fields := []types.ClassifiedField{
		single(t, p, `div[role="listbox"]`, types.ModalityDropdown, "City"),
		single(t, p, "input", types.ModalityText, "Full Name"),
	}

	results := d.FillAll(context.Background(), fields)
	require.Len(t, results, 2)
	assert.Equal(t, types.OutcomeFailed, results[0].Outcome)
	assert.Error(t, results[0].Err)
	assert.Equal(t, types.OutcomeFilled, results[1].Outcome)
}

func TestFillAll_StopsWhenCancelled(t *testing.T) {
	d, p, _ := newTestDispatcher(t, `<input type="text">`)
	fields := []types.ClassifiedField{single(t, p, "input", types.ModalityText, "Full Name")}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := d.FillAll(ctx, fields)
	require.Len(t, results, 1)
	assert.Equal(t, types.OutcomeSkipped, results[0].Outcome)
	assert.ErrorIs(t, results[0].Err, context.Canceled)
	assert.Empty(t, p.Typed)
}

func TestOptions_Pacing(t *testing.T) {
	o := Options{DelayMin: 10 * time.Millisecond, DelayMax: 20 * time.Millisecond}
	for i := 0; i < 100; i++ {
		got := o.pacing()
		assert.GreaterOrEqual(t, got, o.DelayMin)
		assert.LessOrEqual(t, got, o.DelayMax)
	}

	fixed := Options{DelayMin: 7 * time.Millisecond, DelayMax: 7 * time.Millisecond}
	assert.Equal(t, 7*time.Millisecond, fixed.pacing())

	def := Options{}.withDefaults()
	assert.Equal(t, 500*time.Millisecond, def.DelayMin)
	assert.Equal(t, 1500*time.Millisecond, def.DelayMax)
	assert.Equal(t, "cuchd.in", def.CollegeEmailDomain)
}
