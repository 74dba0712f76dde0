package resolve

import (
	"strings"
	"unicode"
)

// wholeWord lists keywords that only match as a separate word. As substrings
// they appear inside too many unrelated words ("candidate", "percentage",
// "message", "practice", "programming").
var wholeWord = map[string]bool{
	"id":      true,
	"age":     true,
	"sex":     true,
	"sem":     true,
	"sec":     true,
	"x":       true,
	"ug":      true,
	"pg":      true,
	"race":    true,
	"state":   true,
	"program": true,
}

// Question is a question label prepared for keyword matching.
type Question struct {
	Text  string
	lower string
	words map[string]bool
}

// NewQuestion collapses whitespace and lower-cases text.
func NewQuestion(text string) Question {
	text = strings.Join(strings.Fields(text), " ")
	lower := strings.ToLower(text)
	words := make(map[string]bool)
	for _, w := range strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		words[w] = true
	}
	return Question{Text: text, lower: lower, words: words}
}

// Has reports whether the question mentions keyword.
func (q Question) Has(keyword string) bool {
	if wholeWord[keyword] {
		return q.words[keyword]
	}
	return strings.Contains(q.lower, keyword)
}

// Any reports whether the question mentions at least one keyword.
func (q Question) Any(keywords ...string) bool {
	for _, k := range keywords {
		if q.Has(k) {
			return true
		}
	}
	return false
}

// All reports whether the question mentions every keyword.
func (q Question) All(keywords ...string) bool {
	for _, k := range keywords {
		if !q.Has(k) {
			return false
		}
	}
	return true
}

// Is reports whether the question equals one of texts, ignoring case and an
// optional trailing required marker with or without a space before it.
func (q Question) Is(texts ...string) bool {
	bare := strings.TrimRight(q.lower, "* ")
	for _, t := range texts {
		if bare == t {
			return true
		}
	}
	return false
}
