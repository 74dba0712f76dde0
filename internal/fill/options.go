package fill

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/jonathan/formfill/internal/resolve"
)

// Options tunes pacing and the timing of the individual strategies.
type Options struct {
	// DelayMin and DelayMax bound the pause between two fields.
	DelayMin time.Duration
	DelayMax time.Duration

	DropdownTimeout time.Duration
	// RetryTimeout bounds the option wait on the dropdown fallback path.
	RetryTimeout time.Duration

	// CollegeEmailDomain is appended to college domain email answers without an "@".
	CollegeEmailDomain string
	// DOBLiteral is typed into date-of-birth fields in dd-mm-yyyy form.
	DOBLiteral string

	KeyDelay       time.Duration
	SlowKeyDelay   time.Duration
	SeparatorDelay time.Duration
	// SettleDelay is the pause after focus changes and dialog clicks.
	SettleDelay time.Duration

	// Sleep waits for d or until ctx ends. Tests replace it to run instantly.
	Sleep func(ctx context.Context, d time.Duration) error
}

// DefaultOptions returns the timings used against live Google Forms.
func DefaultOptions() Options {
	return Options{
		DelayMin:           500 * time.Millisecond,
		DelayMax:           1500 * time.Millisecond,
		DropdownTimeout:    5 * time.Second,
		RetryTimeout:       2 * time.Second,
		CollegeEmailDomain: "cuchd.in",
		DOBLiteral:         resolve.StudentDOB,
		KeyDelay:           100 * time.Millisecond,
		SlowKeyDelay:       200 * time.Millisecond,
		SeparatorDelay:     300 * time.Millisecond,
		SettleDelay:        300 * time.Millisecond,
		Sleep:              sleep,
	}
}

// withDefaults fills zero fields from DefaultOptions.
func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.DelayMin == 0 && o.DelayMax == 0 {
		o.DelayMin, o.DelayMax = def.DelayMin, def.DelayMax
	}
	if o.DelayMax < o.DelayMin {
		o.DelayMax = o.DelayMin
	}
	if o.DropdownTimeout == 0 {
		o.DropdownTimeout = def.DropdownTimeout
	}
	if o.RetryTimeout == 0 {
		o.RetryTimeout = def.RetryTimeout
	}
	if o.CollegeEmailDomain == "" {
		o.CollegeEmailDomain = def.CollegeEmailDomain
	}
	if o.DOBLiteral == "" {
		o.DOBLiteral = def.DOBLiteral
	}
	if o.KeyDelay == 0 {
		o.KeyDelay = def.KeyDelay
	}
	if o.SlowKeyDelay == 0 {
		o.SlowKeyDelay = def.SlowKeyDelay
	}
	if o.SeparatorDelay == 0 {
		o.SeparatorDelay = def.SeparatorDelay
	}
	if o.SettleDelay == 0 {
		o.SettleDelay = def.SettleDelay
	}
	if o.Sleep == nil {
		o.Sleep = def.Sleep
	}
	return o
}

// pacing returns a delay drawn uniformly from [DelayMin, DelayMax].
func (o Options) pacing() time.Duration {
	span := o.DelayMax - o.DelayMin
	if span <= 0 {
		return o.DelayMin
	}
	return o.DelayMin + rand.N(span+1)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
