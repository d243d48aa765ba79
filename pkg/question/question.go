package question

import (
	"strings"
	"time"
)

// Difficulty is the seniority level a question targets.
type Difficulty string

const (
	Junior Difficulty = "junior"
	Mid    Difficulty = "mid"
	Senior Difficulty = "senior"
)

// ParseDifficulty maps a free-form label to a Difficulty. Unrecognized
// labels default to Mid.
func ParseDifficulty(s string) Difficulty {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "junior", "entry", "graduate", "intern", "beginner":
		return Junior
	case "senior", "lead", "principal", "staff", "expert":
		return Senior
	default:
		return Mid
	}
}

// Valid reports whether d is one of the three known levels.
func (d Difficulty) Valid() bool {
	return d == Junior || d == Mid || d == Senior
}

// Raw is one externally scraped question, exactly as the scraper handed it
// over. Immutable once received; the pipeline never edits it in place.
type Raw struct {
	ID               string    `json:"id,omitempty"`
	Question         string    `json:"question"`
	TopicHint        string    `json:"topicHint,omitempty"`
	BestAnswer       string    `json:"bestAnswer,omitempty"`
	Tags             []string  `json:"tags,omitempty"`
	SeniorityContext string    `json:"seniorityContext,omitempty"`
	Company          string    `json:"company,omitempty"`
	ScrapedAt        time.Time `json:"scrapedAt,omitzero"`
	Upvotes          int       `json:"upvotes,omitempty"`
	Source           string    `json:"source,omitempty"`
	SourceURL        string    `json:"sourceUrl,omitempty"`
}

// Classified is an accepted question after topic assignment. It embeds the
// original raw record; Tags shadows the raw tags with the merged, sorted
// set. Records are append-only: once stored they are never edited.
type Classified struct {
	Raw
	TopicID    string     `json:"topicId"`
	TopicName  string     `json:"topicName"`
	Confidence float64    `json:"confidence"`
	Difficulty Difficulty `json:"difficulty"`
	Tags       []string   `json:"tags,omitempty"`
	IsNew      bool       `json:"isNew"`
}
