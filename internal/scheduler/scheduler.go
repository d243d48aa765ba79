// Package scheduler drives the daemon: periodic source collection feeding
// the ingestion pipeline, plus periodic trending digests.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/AlexOliinyk1/careerintel/pkg/ingest"
	"github.com/AlexOliinyk1/careerintel/pkg/knowledge"
	"github.com/AlexOliinyk1/careerintel/pkg/notify"
	"github.com/AlexOliinyk1/careerintel/pkg/qsource"
	"github.com/AlexOliinyk1/careerintel/pkg/question"
)

// Options configures a Scheduler.
type Options struct {
	// CollectInterval is the gap between source collection runs.
	// Defaults to 6 hours.
	CollectInterval time.Duration
	// DigestInterval is the gap between trending digests. Defaults to 24
	// hours.
	DigestInterval time.Duration
	// WindowDays is the trending lookback. Defaults to 30.
	WindowDays int
	Logger     *slog.Logger
}

func (o *Options) defaults() {
	if o.CollectInterval <= 0 {
		o.CollectInterval = 6 * time.Hour
	}
	if o.DigestInterval <= 0 {
		o.DigestInterval = 24 * time.Hour
	}
	if o.WindowDays <= 0 {
		o.WindowDays = 30
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
}

// Scheduler runs periodic collection and digest reporting.
type Scheduler struct {
	sources    []qsource.Source
	pipeline   *ingest.Pipeline
	knowledge  *knowledge.Service
	notifier   *notify.Manager
	collectInt time.Duration
	digestInt  time.Duration
	windowDays int
	logger     *slog.Logger
}

// New creates a scheduler over the given sources and pipeline.
func New(
	sources []qsource.Source,
	pipeline *ingest.Pipeline,
	svc *knowledge.Service,
	notifier *notify.Manager,
	opts Options,
) *Scheduler {
	opts.defaults()
	return &Scheduler{
		sources:    sources,
		pipeline:   pipeline,
		knowledge:  svc,
		notifier:   notifier,
		collectInt: opts.CollectInterval,
		digestInt:  opts.DigestInterval,
		windowDays: opts.WindowDays,
		logger:     opts.Logger,
	}
}

// Run starts the scheduler loop and blocks until ctx is cancelled. Both
// jobs run once immediately so a fresh daemon is useful from the start.
func (s *Scheduler) Run(ctx context.Context) error {
	collectTicker := time.NewTicker(s.collectInt)
	digestTicker := time.NewTicker(s.digestInt)
	defer collectTicker.Stop()
	defer digestTicker.Stop()

	s.collectAndIngest(ctx)
	s.sendTrendingDigest(ctx)

	s.logger.Info("scheduler running",
		"collectEvery", s.collectInt,
		"digestEvery", s.digestInt)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return ctx.Err()
		case <-collectTicker.C:
			s.collectAndIngest(ctx)
		case <-digestTicker.C:
			s.sendTrendingDigest(ctx)
		}
	}
}

// collectAndIngest fetches every source and pushes the combined batch
// through the pipeline. A failing source is skipped; the batch still runs
// for the sources that worked.
func (s *Scheduler) collectAndIngest(ctx context.Context) {
	var batch []question.Raw
	for _, src := range s.sources {
		raws, err := src.Fetch(ctx)
		if err != nil {
			s.logger.Warn("fetching source", "source", src.Name(), "error", err)
			continue
		}
		s.logger.Info("fetched source", "source", src.Name(), "questions", len(raws))
		batch = append(batch, raws...)
	}
	if len(batch) == 0 {
		return
	}

	result, err := s.pipeline.Ingest(ctx, batch)
	if err != nil {
		s.logger.Error("ingesting batch", "error", err)
		return
	}
	s.logger.Info("ingested batch",
		"processed", result.TotalProcessed,
		"new", result.NewQuestionsAdded,
		"duplicates", result.DuplicatesSkipped,
		"unclassified", result.UnclassifiedSkipped)

	if s.notifier.HasNotifiers() && result.NewQuestionsAdded > 0 {
		if err := s.notifier.Broadcast(ctx, notify.IngestDigest(result)); err != nil {
			s.logger.Warn("broadcasting ingest digest", "error", err)
		}
	}
}

func (s *Scheduler) sendTrendingDigest(ctx context.Context) {
	if !s.notifier.HasNotifiers() {
		return
	}
	trending := s.knowledge.TrendingTopics(s.windowDays)
	if err := s.notifier.Broadcast(ctx, notify.TrendingDigest(trending, s.windowDays)); err != nil {
		s.logger.Warn("broadcasting trending digest", "error", err)
	}
}
