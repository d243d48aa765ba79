package taxonomy

import (
	"fmt"
	"sort"

	"github.com/AlexOliinyk1/careerintel/pkg/question"
)

// TopicUnknown is the sentinel topic for questions no keyword table matched.
// It never appears in the static taxonomy and never reaches the store.
const TopicUnknown = "unknown"

// Topic is one row of the keyword table: a topic identifier with its
// display name and the keywords that vote for it during classification.
type Topic struct {
	ID       string
	Name     string
	Keywords []string
}

// BankQuestion is one curated question in the static bank.
type BankQuestion struct {
	Question   string
	Answer     string
	Difficulty question.Difficulty
	Tags       []string
}

// TopicArea is the static bank entry for one topic: its curated questions
// and the key concepts a candidate is expected to cover.
type TopicArea struct {
	ID          string
	Name        string
	KeyConcepts []string
	Questions   []BankQuestion
}

// Bank bundles the keyword tables and the curated question areas. It is
// built once at startup and read-only afterwards; every component receives
// it by reference. A topic may exist in the keyword table without a curated
// area; scraped questions classified there form a dynamic-only topic.
type Bank struct {
	topics  []Topic
	byTopic map[string]int
	areas   []TopicArea
	byArea  map[string]int
}

// NewBank builds a Bank from keyword topics and curated areas. Topics and
// areas are sorted by identifier so iteration order is deterministic.
func NewBank(topics []Topic, areas []TopicArea) (*Bank, error) {
	b := &Bank{
		byTopic: make(map[string]int, len(topics)),
		byArea:  make(map[string]int, len(areas)),
	}

	b.topics = make([]Topic, len(topics))
	copy(b.topics, topics)
	sort.Slice(b.topics, func(i, j int) bool { return b.topics[i].ID < b.topics[j].ID })
	for i, t := range b.topics {
		if t.ID == "" {
			return nil, fmt.Errorf("keyword topic %d: empty id", i)
		}
		if t.ID == TopicUnknown {
			return nil, fmt.Errorf("keyword topic %q: reserved id", t.ID)
		}
		if _, dup := b.byTopic[t.ID]; dup {
			return nil, fmt.Errorf("keyword topic %q: duplicate id", t.ID)
		}
		b.byTopic[t.ID] = i
	}

	b.areas = make([]TopicArea, len(areas))
	copy(b.areas, areas)
	sort.Slice(b.areas, func(i, j int) bool { return b.areas[i].ID < b.areas[j].ID })
	for i, a := range b.areas {
		if a.ID == "" {
			return nil, fmt.Errorf("topic area %d: empty id", i)
		}
		if _, dup := b.byArea[a.ID]; dup {
			return nil, fmt.Errorf("topic area %q: duplicate id", a.ID)
		}
		b.byArea[a.ID] = i
	}

	return b, nil
}

// Topics returns the keyword table sorted by topic id.
func (b *Bank) Topics() []Topic { return b.topics }

// Topic returns the keyword entry for id.
func (b *Bank) Topic(id string) (Topic, bool) {
	i, ok := b.byTopic[id]
	if !ok {
		return Topic{}, false
	}
	return b.topics[i], true
}

// Areas returns the curated bank sorted by topic id.
func (b *Bank) Areas() []TopicArea { return b.areas }

// Area returns the curated entry for id.
func (b *Bank) Area(id string) (TopicArea, bool) {
	i, ok := b.byArea[id]
	if !ok {
		return TopicArea{}, false
	}
	return b.areas[i], true
}

// TopicName resolves a display name for id, looking at the keyword table
// first, then the curated areas, falling back to the id itself.
func (b *Bank) TopicName(id string) string {
	if t, ok := b.Topic(id); ok && t.Name != "" {
		return t.Name
	}
	if a, ok := b.Area(id); ok && a.Name != "" {
		return a.Name
	}
	return id
}

// QuestionTexts returns the text of every curated question, in area order.
// The duplicate detector compares scraped questions against this corpus.
func (b *Bank) QuestionTexts() []string {
	var texts []string
	for _, a := range b.areas {
		for _, q := range a.Questions {
			texts = append(texts, q.Question)
		}
	}
	return texts
}

// QuestionCount returns the number of curated questions across all areas.
func (b *Bank) QuestionCount() int {
	n := 0
	for _, a := range b.areas {
		n += len(a.Questions)
	}
	return n
}
