// Package classify decides whether a complaint description looks like a
// genuine sanitation report. The result only sets the aiVerified flag; it
// never blocks a submission.
package classify

import "strings"

// Classifier reports whether text is verified.
type Classifier interface {
	Classify(text string) bool
}

// ClassifierFunc adapts a function to Classifier.
type ClassifierFunc func(text string) bool

func (f ClassifierFunc) Classify(text string) bool { return f(text) }

// DefaultKeywords are the sanitation terms the lexical classifier looks for.
var DefaultKeywords = []string{"garbage", "waste", "sewage", "drain"}

// Keywords is a deterministic lexical classifier: text is verified when it
// contains any keyword, ignoring case.
type Keywords struct {
	terms []string
}

// NewKeywords builds a classifier over terms. Blank terms are ignored; with
// no terms left, DefaultKeywords are used.
func NewKeywords(terms ...string) *Keywords {
	k := &Keywords{}
	for _, t := range terms {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			k.terms = append(k.terms, t)
		}
	}
	if len(k.terms) == 0 {
		k.terms = append(k.terms, DefaultKeywords...)
	}
	return k
}

func (k *Keywords) Classify(text string) bool {
	lower := strings.ToLower(text)
	for _, t := range k.terms {
		if strings.Contains(lower, t) {
			return true
		}
	}
	return false
}

// Terms returns a copy of the configured keywords.
func (k *Keywords) Terms() []string {
	return append([]string(nil), k.terms...)
}
