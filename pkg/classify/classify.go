package classify

import (
	"errors"
	"log/slog"
	"sort"
	"strings"
	"unicode"

	"github.com/AlexOliinyk1/careerintel/pkg/question"
	"github.com/AlexOliinyk1/careerintel/pkg/taxonomy"
)

// ErrEmptyQuestion is returned when a raw record carries no question text.
var ErrEmptyQuestion = errors.New("empty question text")

// wholeWordMax is the keyword length at or below which a whole-word match
// is required. Short keywords like "gc" or "sql" would otherwise fire
// inside unrelated words.
const wholeWordMax = 3

// Options configures a Classifier.
type Options struct {
	Logger *slog.Logger
}

func (o *Options) defaults() {
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
}

// Classifier assigns a topic, confidence, difficulty, and tag set to raw
// scraped questions using the bank's keyword tables. It holds no mutable
// state and is safe for concurrent use.
type Classifier struct {
	bank   *taxonomy.Bank
	logger *slog.Logger
}

// New creates a Classifier over the given bank.
func New(bank *taxonomy.Bank, opts Options) *Classifier {
	opts.defaults()
	return &Classifier{bank: bank, logger: opts.Logger}
}

// Classify assigns a topic to one raw question. The only failure mode is a
// record with blank question text; every other input classifies, possibly
// as the unknown topic with confidence 0.
func (c *Classifier) Classify(raw question.Raw) (question.Classified, error) {
	if strings.TrimSpace(raw.Question) == "" {
		return question.Classified{}, ErrEmptyQuestion
	}

	corpus := searchCorpus(raw)
	words := wordSet(corpus)

	bestID := taxonomy.TopicUnknown
	bestHits := 0
	var bestMatched []string

	// Topics are scanned in id order, so an equal hit count keeps the
	// lexicographically smaller topic.
	for _, topic := range c.bank.Topics() {
		hits := 0
		var matched []string
		for _, kw := range topic.Keywords {
			if keywordMatches(kw, corpus, words) {
				hits++
				matched = append(matched, kw)
			}
		}
		if hits > bestHits {
			bestHits = hits
			bestID = topic.ID
			bestMatched = matched
		}
	}

	return question.Classified{
		Raw:        raw,
		TopicID:    bestID,
		TopicName:  c.bank.TopicName(bestID),
		Confidence: confidence(bestHits),
		Difficulty: inferDifficulty(corpus),
		Tags:       mergeTags(bestMatched, raw.Tags),
	}, nil
}

// ClassifyBatch classifies each item independently. A record that fails to
// classify is logged and dropped; the batch continues. Outcome counting
// belongs to the ingest pipeline, not here.
func (c *Classifier) ClassifyBatch(raws []question.Raw) []question.Classified {
	out := make([]question.Classified, 0, len(raws))
	for _, raw := range raws {
		cq, err := c.Classify(raw)
		if err != nil {
			c.logger.Warn("skipping unclassifiable question", "id", raw.ID, "source", raw.Source, "error", err)
			continue
		}
		out = append(out, cq)
	}
	return out
}

// searchCorpus concatenates every text field of the raw record into one
// lowercased string for keyword matching.
func searchCorpus(raw question.Raw) string {
	parts := []string{
		raw.Question,
		raw.TopicHint,
		raw.BestAnswer,
		strings.Join(raw.Tags, " "),
		raw.SeniorityContext,
		raw.Company,
	}
	return strings.ToLower(strings.Join(parts, " "))
}

// wordSet splits the corpus on non-alphanumeric runs into a set of words,
// used for whole-word matching of short keywords.
func wordSet(corpus string) map[string]struct{} {
	words := strings.FieldsFunc(corpus, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

func keywordMatches(kw, corpus string, words map[string]struct{}) bool {
	kw = strings.ToLower(kw)
	if len(kw) <= wholeWordMax {
		_, ok := words[kw]
		return ok
	}
	return strings.Contains(corpus, kw)
}

// confidence maps a keyword hit count to a 0-100 score: 0 for no matches,
// rising steeply for the first few hits and saturating once the count
// approaches 8.
func confidence(hits int) float64 {
	if hits == 0 {
		return 0
	}
	denom := hits + 2
	if denom > 8 {
		denom = 8
	}
	score := float64(hits) / float64(denom) * 100
	if score > 100 {
		score = 100
	}
	return score
}

var seniorMarkers = []string{
	"senior", "lead", "principal", "architect", "staff", "advanced", "expert",
}

var juniorMarkers = []string{
	"junior", "entry level", "entry-level", "graduate", "beginner",
	"basics", "fresher",
}

// inferDifficulty scans the corpus (which already carries the seniority
// context) for level markers. The senior check always runs first.
func inferDifficulty(corpus string) question.Difficulty {
	for _, kw := range seniorMarkers {
		if strings.Contains(corpus, kw) {
			return question.Senior
		}
	}
	for _, kw := range juniorMarkers {
		if strings.Contains(corpus, kw) {
			return question.Junior
		}
	}
	return question.Mid
}

// mergeTags unions the matched keywords with the record's own tags,
// lowercased, deduplicated, and sorted for determinism.
func mergeTags(matched, raw []string) []string {
	set := make(map[string]struct{}, len(matched)+len(raw))
	for _, t := range matched {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			set[t] = struct{}{}
		}
	}
	for _, t := range raw {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			set[t] = struct{}{}
		}
	}
	tags := make([]string, 0, len(set))
	for t := range set {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}
