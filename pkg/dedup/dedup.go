package dedup

import (
	"strings"
	"unicode"

	"github.com/AlexOliinyk1/careerintel/pkg/question"
	"github.com/AlexOliinyk1/careerintel/pkg/taxonomy"
)

// DefaultThreshold is the Jaccard similarity at or above which two
// questions count as duplicates. Chosen to catch rephrasings without
// collapsing distinct questions that merely share common words.
const DefaultThreshold = 0.6

// Tokenize lowercases text, splits it on runs of non-alphanumeric
// characters, and returns the words of length two or more as a set.
func Tokenize(text string) map[string]struct{} {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		if len(w) <= 1 {
			continue
		}
		set[w] = struct{}{}
	}
	return set
}

// Jaccard returns the Jaccard index of two token sets, 0 when the union is
// empty. Symmetric in its arguments.
func Jaccard(a, b map[string]struct{}) float64 {
	intersection := 0
	for t := range a {
		if _, ok := b[t]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// Detector decides whether a question is a near-duplicate of a comparison
// corpus. Stateless and safe for concurrent use.
type Detector struct {
	threshold float64
}

// New creates a Detector. A threshold of zero or less selects
// DefaultThreshold.
func New(threshold float64) *Detector {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Detector{threshold: threshold}
}

// Threshold returns the similarity cutoff in use.
func (d *Detector) Threshold() float64 { return d.threshold }

// IsDuplicateOfBank reports whether text duplicates any curated question
// in the bank.
func (d *Detector) IsDuplicateOfBank(text string, bank *taxonomy.Bank) bool {
	tokens := Tokenize(text)
	for _, existing := range bank.QuestionTexts() {
		if Jaccard(tokens, Tokenize(existing)) >= d.threshold {
			return true
		}
	}
	return false
}

// IsDuplicateOfStored reports whether text duplicates any already-ingested
// record. Both variants short-circuit on the first match rather than
// computing a maximum over the whole corpus.
func (d *Detector) IsDuplicateOfStored(text string, stored []question.Classified) bool {
	tokens := Tokenize(text)
	for i := range stored {
		if Jaccard(tokens, Tokenize(stored[i].Question)) >= d.threshold {
			return true
		}
	}
	return false
}
