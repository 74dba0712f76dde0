// Package resolve maps question labels to answers drawn from the applicant profile.
package resolve

import (
	"go.uber.org/zap"

	"github.com/jonathan/formfill/internal/types"
)

// NotApplicable is the answer when no rule produces a value.
const NotApplicable = "Not applicable"

// Rule names reported for answers that did not come from a Rule.
const (
	RuleFallbackEmail = "fallback.email"
	RuleNoMatch       = "fallback.none"
)

// Resolver answers questions from a profile by walking an ordered rule list.
// It never performs I/O and always returns an answer.
type Resolver struct {
	profile *types.Profile
	rules   []Rule
	logger  *zap.Logger
}

// New creates a Resolver over profile using DefaultRules.
func New(profile *types.Profile, logger *zap.Logger) *Resolver {
	return NewWithRules(profile, DefaultRules(), logger)
}

// NewWithRules creates a Resolver with a custom rule list.
func NewWithRules(profile *types.Profile, rules []Rule, logger *zap.Logger) *Resolver {
	if profile == nil {
		profile = &types.Profile{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{profile: profile, rules: rules, logger: logger.Named("resolver")}
}

// Profile returns the profile answers are drawn from. Callers must not modify it.
func (r *Resolver) Profile() *types.Profile {
	return r.profile
}

// Resolve returns the answer for question.
func (r *Resolver) Resolve(question string) string {
	value, _ := r.Explain(question)
	return value
}

// Explain returns the answer for question together with the name of the rule
// that produced it.
func (r *Resolver) Explain(question string) (string, string) {
	q := NewQuestion(question)
	value, rule := r.match(q)
	r.logger.Debug("resolved question",
		zap.String("question", q.Text),
		zap.String("rule", rule),
		zap.String("value", value),
	)
	return value, rule
}

func (r *Resolver) match(q Question) (string, string) {
	for _, rule := range r.rules {
		if !rule.Match(q) {
			continue
		}
		if v := rule.Value(r.profile); v != "" {
			return v, rule.Name
		}
		r.logger.Debug("matched rule has no profile value", zap.String("question", q.Text), zap.String("rule", rule.Name))
		return NotApplicable, rule.Name
	}

	r.logger.Info("no rule matched question", zap.String("question", q.Text))
	if q.Has("email") && r.profile.Email != "" {
		return r.profile.Email, RuleFallbackEmail
	}
	return NotApplicable, RuleNoMatch
}
