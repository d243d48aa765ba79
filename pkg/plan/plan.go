// Package plan turns the merged knowledge base and trending report into a
// day-by-day interview preparation plan.
package plan

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"text/template"
	"time"

	"github.com/AlexOliinyk1/careerintel/pkg/knowledge"
	"github.com/AlexOliinyk1/careerintel/pkg/question"
)

// DefaultDays is the plan length when none is requested.
const DefaultDays = 14

// trendWindowDays is the lookback used for scoring topic momentum.
const trendWindowDays = 30

// Options shapes a plan.
type Options struct {
	// Days is the total study budget. Defaults to DefaultDays.
	Days int
	// Level picks which curated questions to drill. Defaults to mid.
	Level question.Difficulty
	// Focus lists topic ids that get a scoring boost regardless of trend.
	Focus []string
}

func (o *Options) defaults() {
	if o.Days <= 0 {
		o.Days = DefaultDays
	}
	if !o.Level.Valid() {
		o.Level = question.Mid
	}
}

// Entry is one topic in the plan with its allocated study days.
type Entry struct {
	TopicID     string   `json:"topicId"`
	TopicName   string   `json:"topicName"`
	Days        int      `json:"days"`
	Score       float64  `json:"score"`
	Reason      string   `json:"reason"`
	KeyConcepts []string `json:"keyConcepts,omitempty"`
	Questions   []string `json:"questions,omitempty"`
}

// Plan is a complete preparation schedule.
type Plan struct {
	Days      int                 `json:"days"`
	Level     question.Difficulty `json:"level"`
	Generated time.Time           `json:"generated"`
	Entries   []Entry             `json:"entries"`
}

const planTemplate = `Interview prep plan: {{.Days}} days, {{.Level}} level (generated {{formatDate .Generated}})

{{range .Entries -}}
{{.Days}} day{{if ne .Days 1}}s{{end}}: {{.TopicName}} (score {{printf "%.1f" .Score}})
  why: {{.Reason}}
{{- if .KeyConcepts}}
  concepts: {{join .KeyConcepts ", "}}
{{- end}}
{{- range .Questions}}
  drill: {{.}}
{{- end}}

{{end -}}`

// Builder scores topics and renders plans.
type Builder struct {
	knowledge *knowledge.Service
	template  *template.Template
}

// New creates a Builder over the knowledge service.
func New(svc *knowledge.Service) (*Builder, error) {
	tmpl, err := template.New("plan").Funcs(template.FuncMap{
		"formatDate": func(t time.Time) string { return t.Format("2006-01-02") },
		"join":       strings.Join,
	}).Parse(planTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse plan template: %w", err)
	}
	return &Builder{knowledge: svc, template: tmpl}, nil
}

// Build assembles a plan: topics are scored by recent scrape momentum,
// material volume, and requested focus, then the day budget is split
// proportionally across the highest scorers.
func (b *Builder) Build(ctx context.Context, opts Options) (Plan, error) {
	opts.defaults()

	topics := b.knowledge.KnowledgeBase()
	if len(topics) == 0 {
		return Plan{}, errors.New("no topics to plan")
	}

	trendByID := make(map[string]knowledge.TrendingTopic)
	for _, tr := range b.knowledge.TrendingTopics(trendWindowDays) {
		trendByID[tr.ID] = tr
	}
	focus := make(map[string]struct{}, len(opts.Focus))
	for _, id := range opts.Focus {
		focus[strings.ToLower(strings.TrimSpace(id))] = struct{}{}
	}

	type scored struct {
		topic knowledge.Topic
		trend knowledge.TrendingTopic
		score float64
	}
	ranked := make([]scored, 0, len(topics))
	for _, topic := range topics {
		_, focused := focus[topic.ID]
		trend := trendByID[topic.ID]
		ranked = append(ranked, scored{topic, trend, score(topic, trend, focused)})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].topic.ID < ranked[j].topic.ID
	})

	keep := max(3, opts.Days/2)
	if keep > len(ranked) {
		keep = len(ranked)
	}
	ranked = ranked[:keep]

	scores := make([]float64, len(ranked))
	for i, r := range ranked {
		scores[i] = r.score
	}
	days := allocateDays(scores, opts.Days)

	plan := Plan{
		Days:      opts.Days,
		Level:     opts.Level,
		Generated: time.Now().UTC(),
	}
	for i, r := range ranked {
		if days[i] == 0 {
			continue
		}
		_, focused := focus[r.topic.ID]
		plan.Entries = append(plan.Entries, Entry{
			TopicID:     r.topic.ID,
			TopicName:   r.topic.Name,
			Days:        days[i],
			Score:       r.score,
			Reason:      reason(r.trend, focused),
			KeyConcepts: r.topic.KeyConcepts,
			Questions:   pickQuestions(r.topic, opts.Level, 3),
		})
	}
	return plan, nil
}

// Render returns the printable form of a plan.
func (b *Builder) Render(p Plan) (string, error) {
	var buf bytes.Buffer
	if err := b.template.Execute(&buf, p); err != nil {
		return "", fmt.Errorf("render plan: %w", err)
	}
	return buf.String(), nil
}

// score weighs how urgently a topic needs study time. Recent scrape
// activity dominates, growth rewards momentum, scraped volume adds a
// little, and curated coverage damps topics the bank already prepares
// well. The floor keeps every topic eligible for leftover days.
func score(topic knowledge.Topic, trend knowledge.TrendingTopic, focused bool) float64 {
	s := 3*float64(trend.RecentCount) + trend.GrowthRate/10 + float64(topic.DynamicCount)
	s -= float64(topic.StaticCount) / 2
	if focused {
		s += 25
	}
	if s < 1 {
		s = 1
	}
	return s
}

func reason(trend knowledge.TrendingTopic, focused bool) string {
	switch {
	case focused && trend.RecentCount > 0:
		return fmt.Sprintf("requested focus, %d recent questions", trend.RecentCount)
	case focused:
		return "requested focus"
	case trend.RecentCount > 0:
		return fmt.Sprintf("%d recent questions, %.0f%% growth", trend.RecentCount, trend.GrowthRate)
	default:
		return "core topic"
	}
}

// pickQuestions selects up to n drill questions, preferring the requested
// level and filling with whatever else the topic has.
func pickQuestions(topic knowledge.Topic, level question.Difficulty, n int) []string {
	var picked []string
	for _, q := range topic.Questions {
		if len(picked) == n {
			return picked
		}
		if q.Difficulty == level {
			picked = append(picked, q.Question)
		}
	}
	for _, q := range topic.Questions {
		if len(picked) == n {
			break
		}
		if q.Difficulty != level {
			picked = append(picked, q.Question)
		}
	}
	return picked
}

// allocateDays splits a day budget proportionally to scores using largest
// remainders, so the total always adds up exactly.
func allocateDays(scores []float64, days int) []int {
	out := make([]int, len(scores))
	total := 0.0
	for _, s := range scores {
		total += s
	}
	if total <= 0 || days <= 0 || len(scores) == 0 {
		return out
	}

	type frac struct {
		idx int
		rem float64
	}
	used := 0
	fracs := make([]frac, 0, len(scores))
	for i, s := range scores {
		share := float64(days) * s / total
		out[i] = int(share)
		used += out[i]
		fracs = append(fracs, frac{i, share - float64(out[i])})
	}
	sort.SliceStable(fracs, func(a, b int) bool { return fracs[a].rem > fracs[b].rem })
	for i := 0; i < days-used; i++ {
		out[fracs[i%len(fracs)].idx]++
	}
	return out
}
