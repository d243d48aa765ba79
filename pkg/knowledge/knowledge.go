// Package knowledge merges the curated question bank with the dynamic
// store into unified per-topic views, statistics, and a trending report.
// Every read reloads the store, so results always reflect the file on disk.
package knowledge

import (
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/AlexOliinyk1/careerintel/internal/dynstore"
	"github.com/AlexOliinyk1/careerintel/pkg/question"
	"github.com/AlexOliinyk1/careerintel/pkg/taxonomy"
)

// SourceStatic labels questions that come from the curated bank.
const SourceStatic = "static"

// Question is the common shape curated and scraped questions are merged
// into.
type Question struct {
	Question   string              `json:"question"`
	Answer     string              `json:"answer,omitempty"`
	Difficulty question.Difficulty `json:"difficulty"`
	Tags       []string            `json:"tags,omitempty"`
	Source     string              `json:"source"`
	Company    string              `json:"company,omitempty"`
	ScrapedAt  time.Time           `json:"scrapedAt,omitzero"`
	IsNew      bool                `json:"isNew,omitempty"`
}

// Topic is one merged knowledge-base entry: the curated questions for a
// topic followed by the scraped ones, with per-source counts.
type Topic struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Questions    []Question `json:"questions"`
	StaticCount  int        `json:"staticCount"`
	DynamicCount int        `json:"dynamicCount"`
	KeyConcepts  []string   `json:"keyConcepts,omitempty"`
}

// TrendingTopic reports recent scrape activity for one topic.
type TrendingTopic struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	RecentCount    int     `json:"recentCount"`
	TotalQuestions int     `json:"totalQuestions"`
	GrowthRate     float64 `json:"growthRate"`
}

// TopicCount pairs a topic with its merged question count.
type TopicCount struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Stats summarizes the merged knowledge base. LastScrapedAt is nil when
// nothing has ever been scraped.
type Stats struct {
	TotalTopics    int          `json:"totalTopics"`
	TotalQuestions int          `json:"totalQuestions"`
	StaticCount    int          `json:"staticCount"`
	DynamicCount   int          `json:"dynamicCount"`
	TopicCounts    []TopicCount `json:"topicCounts"`
	LastScrapedAt  *time.Time   `json:"lastScrapedAt,omitempty"`
	Sources        []string     `json:"sources"`
}

// Options configures a Service.
type Options struct {
	Logger *slog.Logger
}

func (o *Options) defaults() {
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
}

// Service derives read-side views over the bank and one data directory.
type Service struct {
	bank   *taxonomy.Bank
	store  *dynstore.Store
	logger *slog.Logger
}

// New creates a Service.
func New(bank *taxonomy.Bank, store *dynstore.Store, opts Options) *Service {
	opts.defaults()
	return &Service{bank: bank, store: store, logger: opts.Logger}
}

// loadDynamic reads the store fresh. Reports must not hard-fail on a
// damaged store file, so any load error degrades to static-only data
// after logging. An absent file is simply empty.
func (s *Service) loadDynamic() []question.Classified {
	records, err := s.store.Load()
	if err != nil {
		s.logger.Error("loading dynamic store, continuing with static data only", "error", err)
		return nil
	}
	return records
}

// KnowledgeBase merges every curated topic area with its scraped questions
// and appends dynamic-only topics for scraped questions whose topic has no
// curated entry. Curated questions are never dropped, whatever the store
// holds.
func (s *Service) KnowledgeBase() []Topic {
	byTopic := groupByTopic(s.loadDynamic())

	var topics []Topic
	curated := make(map[string]struct{})

	for _, area := range s.bank.Areas() {
		curated[area.ID] = struct{}{}
		topic := Topic{
			ID:          area.ID,
			Name:        area.Name,
			StaticCount: len(area.Questions),
			KeyConcepts: area.KeyConcepts,
		}
		for _, q := range area.Questions {
			topic.Questions = append(topic.Questions, Question{
				Question:   q.Question,
				Answer:     q.Answer,
				Difficulty: q.Difficulty,
				Tags:       q.Tags,
				Source:     SourceStatic,
			})
		}
		for _, rec := range byTopic[area.ID] {
			topic.Questions = append(topic.Questions, scrapedQuestion(rec))
			topic.DynamicCount++
		}
		topics = append(topics, topic)
	}

	var extra []string
	for id := range byTopic {
		if _, ok := curated[id]; !ok {
			extra = append(extra, id)
		}
	}
	sort.Strings(extra)

	for _, id := range extra {
		recs := byTopic[id]
		topic := Topic{
			ID:           id,
			Name:         s.displayName(id, byTopic),
			DynamicCount: len(recs),
			KeyConcepts:  s.derivedConcepts(id, recs),
		}
		for _, rec := range recs {
			topic.Questions = append(topic.Questions, scrapedQuestion(rec))
		}
		topics = append(topics, topic)
	}

	return topics
}

// TrendingTopics reports scrape activity per topic over the lookback
// window. Every topic with at least one scraped question appears; sorting
// is recent count, then growth rate, then topic id.
func (s *Service) TrendingTopics(windowDays int) []TrendingTopic {
	if windowDays <= 0 {
		windowDays = 30
	}
	byTopic := groupByTopic(s.loadDynamic())
	cutoff := time.Now().UTC().AddDate(0, 0, -windowDays)

	var out []TrendingTopic
	for id, recs := range byTopic {
		recent := 0
		for _, rec := range recs {
			if !rec.ScrapedAt.IsZero() && !rec.ScrapedAt.Before(cutoff) {
				recent++
			}
		}

		staticCount := 0
		if area, ok := s.bank.Area(id); ok {
			staticCount = len(area.Questions)
		}
		total := staticCount + len(recs)

		out = append(out, TrendingTopic{
			ID:             id,
			Name:           s.displayName(id, byTopic),
			RecentCount:    recent,
			TotalQuestions: total,
			GrowthRate:     growthRate(recent, total),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].RecentCount != out[j].RecentCount {
			return out[i].RecentCount > out[j].RecentCount
		}
		if out[i].GrowthRate != out[j].GrowthRate {
			return out[i].GrowthRate > out[j].GrowthRate
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Stats summarizes the merged knowledge base.
func (s *Service) Stats() Stats {
	dynamic := s.loadDynamic()
	byTopic := groupByTopic(dynamic)

	stats := Stats{
		StaticCount:  s.bank.QuestionCount(),
		DynamicCount: len(dynamic),
	}
	stats.TotalQuestions = stats.StaticCount + stats.DynamicCount

	counts := make(map[string]int)
	for _, area := range s.bank.Areas() {
		counts[area.ID] += len(area.Questions)
	}
	sources := map[string]struct{}{SourceStatic: {}}
	var last time.Time
	for _, rec := range dynamic {
		counts[rec.TopicID]++
		if rec.Source != "" {
			sources[rec.Source] = struct{}{}
		}
		if rec.ScrapedAt.After(last) {
			last = rec.ScrapedAt
		}
	}

	stats.TotalTopics = len(counts)
	if !last.IsZero() {
		stats.LastScrapedAt = &last
	}

	for id, n := range counts {
		stats.TopicCounts = append(stats.TopicCounts, TopicCount{
			ID:    id,
			Name:  s.displayName(id, byTopic),
			Count: n,
		})
	}
	sort.Slice(stats.TopicCounts, func(i, j int) bool {
		if stats.TopicCounts[i].Count != stats.TopicCounts[j].Count {
			return stats.TopicCounts[i].Count > stats.TopicCounts[j].Count
		}
		return stats.TopicCounts[i].ID < stats.TopicCounts[j].ID
	})

	for src := range sources {
		stats.Sources = append(stats.Sources, src)
	}
	sort.Strings(stats.Sources)

	return stats
}

// growthRate is recent activity relative to the pre-window base. A topic
// whose questions are all inside the window grows 100%; no recent activity
// is 0.
func growthRate(recent, total int) float64 {
	base := total - recent
	switch {
	case base > 0:
		return float64(recent) / float64(base) * 100
	case recent > 0:
		return 100
	default:
		return 0
	}
}

func groupByTopic(records []question.Classified) map[string][]question.Classified {
	byTopic := make(map[string][]question.Classified)
	for _, rec := range records {
		byTopic[rec.TopicID] = append(byTopic[rec.TopicID], rec)
	}
	return byTopic
}

func scrapedQuestion(rec question.Classified) Question {
	return Question{
		Question:   rec.Question,
		Answer:     rec.BestAnswer,
		Difficulty: rec.Difficulty,
		Tags:       rec.Tags,
		Source:     rec.Source,
		Company:    rec.Company,
		ScrapedAt:  rec.ScrapedAt,
		IsNew:      rec.IsNew,
	}
}

// displayName resolves a topic name from the bank, falling back to
// whatever name the stored records carry, then to the id itself.
func (s *Service) displayName(id string, byTopic map[string][]question.Classified) string {
	if name := s.bank.TopicName(id); name != id {
		return name
	}
	for _, rec := range byTopic[id] {
		if rec.TopicName != "" {
			return rec.TopicName
		}
	}
	return id
}

// derivedConcepts recovers key concepts for a topic with no curated area:
// the stored tags that are also keywords of the topic were matched during
// classification, so their union stands in for a concept list.
func (s *Service) derivedConcepts(id string, recs []question.Classified) []string {
	keywordTopic, ok := s.bank.Topic(id)
	if !ok {
		return nil
	}
	keywords := make(map[string]struct{}, len(keywordTopic.Keywords))
	for _, kw := range keywordTopic.Keywords {
		keywords[strings.ToLower(kw)] = struct{}{}
	}

	set := make(map[string]struct{})
	for _, rec := range recs {
		for _, tag := range rec.Tags {
			tag = strings.ToLower(tag)
			if _, ok := keywords[tag]; ok {
				set[tag] = struct{}{}
			}
		}
	}

	concepts := make([]string, 0, len(set))
	for c := range set {
		concepts = append(concepts, c)
	}
	sort.Strings(concepts)
	return concepts
}
