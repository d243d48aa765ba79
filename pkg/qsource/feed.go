package qsource

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/AlexOliinyk1/careerintel/pkg/question"
)

// FeedSpec is a named RSS/Atom feed URL.
type FeedSpec struct {
	Name string
	URL  string
}

// FeedOptions configures a Feed source.
type FeedOptions struct {
	// Lookback drops entries older than this. Defaults to 7 days.
	Lookback time.Duration
	Client   *http.Client
	Logger   *slog.Logger
}

func (o *FeedOptions) defaults() {
	if o.Lookback <= 0 {
		o.Lookback = 7 * 24 * time.Hour
	}
	if o.Client == nil {
		o.Client = &http.Client{Timeout: 30 * time.Second}
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
}

// Feed collects question candidates from RSS/Atom feeds. Entry titles
// become the question text, the entry description is kept as an answer
// hint, and categories carry over as tags. The classifier downstream weeds
// out entries that are not really interview questions.
type Feed struct {
	client   *http.Client
	parser   *gofeed.Parser
	feeds    []FeedSpec
	lookback time.Duration
	logger   *slog.Logger
}

// NewFeed creates a feed source over the given feeds.
func NewFeed(feeds []FeedSpec, opts FeedOptions) *Feed {
	opts.defaults()
	return &Feed{
		client:   opts.Client,
		parser:   gofeed.NewParser(),
		feeds:    feeds,
		lookback: opts.Lookback,
		logger:   opts.Logger,
	}
}

func (f *Feed) Name() string { return "feed" }

// Fetch pulls every configured feed. A feed that fails is logged and
// skipped so one dead URL does not starve the rest.
func (f *Feed) Fetch(ctx context.Context) ([]question.Raw, error) {
	var all []question.Raw
	for _, feed := range f.feeds {
		raws, err := f.fetchFeed(ctx, feed)
		if err != nil {
			f.logger.Warn("fetching feed", "feed", feed.Name, "error", err)
			continue
		}
		all = append(all, raws...)
	}
	return all, nil
}

func (f *Feed) fetchFeed(ctx context.Context, feed FeedSpec) ([]question.Raw, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feed.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("create feed request %s: %w", feed.Name, err)
	}
	req.Header.Set("User-Agent", "careerintel/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed %s: %w", feed.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed %s status %d", feed.Name, resp.StatusCode)
	}

	parsed, err := f.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", feed.Name, err)
	}

	cutoff := time.Now().UTC().Add(-f.lookback)

	var raws []question.Raw
	for _, entry := range parsed.Items {
		published := time.Now().UTC()
		if entry.PublishedParsed != nil {
			published = entry.PublishedParsed.UTC()
		} else if entry.UpdatedParsed != nil {
			published = entry.UpdatedParsed.UTC()
		}
		if published.Before(cutoff) {
			continue
		}

		title := strings.TrimSpace(entry.Title)
		if title == "" {
			continue
		}

		link := entry.Link
		if link == "" && len(entry.Links) > 0 {
			link = entry.Links[0]
		}

		id := ""
		if entry.GUID != "" {
			id = fmt.Sprintf("feed:%s:%s", feed.Name, entry.GUID)
		}

		raws = append(raws, question.Raw{
			ID:         id,
			Question:   title,
			BestAnswer: truncate(strings.TrimSpace(entry.Description), 500),
			Tags:       entry.Categories,
			Source:     feed.Name,
			SourceURL:  link,
		})
	}
	return raws, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
