// Package notify delivers pipeline digests to chat and webhook
// destinations.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/AlexOliinyk1/careerintel/pkg/ingest"
	"github.com/AlexOliinyk1/careerintel/pkg/knowledge"
)

// Notification is the data sent to notification destinations.
type Notification struct {
	Title    string                    `json:"title"`
	Body     string                    `json:"body"`
	Result   *ingest.Result            `json:"result,omitempty"`
	Trending []knowledge.TrendingTopic `json:"trending,omitempty"`
}

// Notifier delivers notifications to a specific destination.
type Notifier interface {
	Name() string
	Send(ctx context.Context, n *Notification) error
}

// Manager broadcasts notifications to all registered notifiers.
type Manager struct {
	notifiers []Notifier
}

// NewManager creates a notification manager.
func NewManager(notifiers []Notifier) *Manager {
	return &Manager{notifiers: notifiers}
}

// HasNotifiers returns true if at least one notifier is configured.
func (m *Manager) HasNotifiers() bool {
	return len(m.notifiers) > 0
}

// Broadcast sends a notification to all registered notifiers. Failures are
// collected so one dead destination does not mask the others.
func (m *Manager) Broadcast(ctx context.Context, n *Notification) error {
	var errs []error
	for _, notifier := range m.notifiers {
		if err := notifier.Send(ctx, n); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", notifier.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// IngestDigest summarizes one ingestion run.
func IngestDigest(res ingest.Result) *Notification {
	body := fmt.Sprintf("%d questions processed: %d new, %d duplicates, %d unclassified.",
		res.TotalProcessed, res.NewQuestionsAdded, res.DuplicatesSkipped, res.UnclassifiedSkipped)
	if len(res.TopicsEnriched) > 0 {
		body += " Topics enriched: " + strings.Join(res.TopicsEnriched, ", ")
	}
	return &Notification{
		Title:  "Question ingestion finished",
		Body:   body,
		Result: &res,
	}
}

// TrendingDigest summarizes the current trending topics.
func TrendingDigest(topics []knowledge.TrendingTopic, windowDays int) *Notification {
	var lines []string
	for _, t := range topics {
		if t.RecentCount == 0 {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %d recent questions (%.0f%% growth)",
			t.Name, t.RecentCount, t.GrowthRate))
	}

	body := "No new interview questions in the window."
	if len(lines) > 0 {
		body = strings.Join(lines, "\n")
	}
	return &Notification{
		Title:    fmt.Sprintf("Trending interview topics, last %d days", windowDays),
		Body:     body,
		Trending: topics,
	}
}

// topicLines renders up to limit trending entries for chat payloads.
func topicLines(topics []knowledge.TrendingTopic, limit int) []string {
	if len(topics) < limit {
		limit = len(topics)
	}
	var lines []string
	for _, t := range topics[:limit] {
		lines = append(lines, fmt.Sprintf("%s: %d recent, %.0f%% growth", t.Name, t.RecentCount, t.GrowthRate))
	}
	return lines
}
