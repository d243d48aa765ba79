// Package ingest sequences the question pipeline: classify, filter on
// confidence, reject duplicates against the curated bank and the dynamic
// store, then append and persist.
package ingest

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/AlexOliinyk1/careerintel/internal/dynstore"
	"github.com/AlexOliinyk1/careerintel/pkg/classify"
	"github.com/AlexOliinyk1/careerintel/pkg/dedup"
	"github.com/AlexOliinyk1/careerintel/pkg/question"
	"github.com/AlexOliinyk1/careerintel/pkg/taxonomy"
)

// DefaultMinConfidence is the classification confidence below which a
// question is rejected as unclassified.
const DefaultMinConfidence = 30

// Result reports the outcome of one ingestion call. The counts always
// satisfy NewQuestionsAdded + DuplicatesSkipped + UnclassifiedSkipped ==
// TotalProcessed.
type Result struct {
	TotalProcessed      int      `json:"totalProcessed"`
	NewQuestionsAdded   int      `json:"newQuestionsAdded"`
	DuplicatesSkipped   int      `json:"duplicatesSkipped"`
	UnclassifiedSkipped int      `json:"unclassifiedSkipped"`
	TopicsEnriched      []string `json:"topicsEnriched"`
}

// Options configures a Pipeline.
type Options struct {
	MinConfidence      float64
	DuplicateThreshold float64
	Logger             *slog.Logger
}

func (o *Options) defaults() {
	if o.MinConfidence <= 0 {
		o.MinConfidence = DefaultMinConfidence
	}
	if o.DuplicateThreshold <= 0 {
		o.DuplicateThreshold = dedup.DefaultThreshold
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
}

// Pipeline ingests batches of raw questions into one data directory. It
// assumes a single logical writer per directory and takes the store's
// advisory lock for the duration of each call.
type Pipeline struct {
	bank       *taxonomy.Bank
	classifier *classify.Classifier
	detector   *dedup.Detector
	store      *dynstore.Store
	minConf    float64
	logger     *slog.Logger
	entropy    *ulid.MonotonicEntropy
}

// New creates a Pipeline over the given bank and store.
func New(bank *taxonomy.Bank, store *dynstore.Store, opts Options) *Pipeline {
	opts.defaults()
	return &Pipeline{
		bank:       bank,
		classifier: classify.New(bank, classify.Options{Logger: opts.Logger}),
		detector:   dedup.New(opts.DuplicateThreshold),
		store:      store,
		minConf:    opts.MinConfidence,
		logger:     opts.Logger,
		entropy:    ulid.Monotonic(rand.Reader, 0),
	}
}

// Ingest runs the pipeline over one ordered batch and persists the grown
// store once at the end. When persistence fails, the computed Result is
// returned together with the error: the counts then describe work that was
// NOT durably saved, so callers must check the error before trusting them.
func (p *Pipeline) Ingest(ctx context.Context, raws []question.Raw) (Result, error) {
	unlock, err := p.store.Lock()
	if err != nil {
		return Result{}, fmt.Errorf("lock store: %w", err)
	}
	defer unlock()

	// A corrupted store fails the whole call: appending to an empty view
	// and persisting would overwrite whatever the file still holds.
	stored, err := p.store.Load()
	if err != nil {
		return Result{}, fmt.Errorf("load store: %w", err)
	}

	result := Result{TotalProcessed: len(raws), TopicsEnriched: []string{}}
	enriched := make(map[string]struct{})

	for _, raw := range raws {
		cq, err := p.classifier.Classify(raw)
		if err != nil {
			p.logger.Warn("classification failed", "id", raw.ID, "source", raw.Source, "error", err)
			result.UnclassifiedSkipped++
			continue
		}
		if cq.Confidence < p.minConf {
			result.UnclassifiedSkipped++
			continue
		}
		if p.detector.IsDuplicateOfBank(raw.Question, p.bank) {
			result.DuplicatesSkipped++
			continue
		}
		// Compare against the store as grown so far in this call, so a
		// batch cannot smuggle in two copies of the same question.
		if p.detector.IsDuplicateOfStored(raw.Question, stored) {
			result.DuplicatesSkipped++
			continue
		}

		cq.IsNew = true
		if cq.ID == "" {
			cq.ID = ulid.MustNew(ulid.Now(), p.entropy).String()
		}
		if cq.ScrapedAt.IsZero() {
			cq.ScrapedAt = time.Now().UTC()
		}

		stored = append(stored, cq)
		enriched[cq.TopicID] = struct{}{}
		result.NewQuestionsAdded++
	}

	for id := range enriched {
		result.TopicsEnriched = append(result.TopicsEnriched, id)
	}
	sort.Strings(result.TopicsEnriched)

	if err := p.store.Persist(stored); err != nil {
		return result, fmt.Errorf("persist store: %w", err)
	}

	p.logger.Info("ingest complete",
		"total", result.TotalProcessed,
		"added", result.NewQuestionsAdded,
		"duplicates", result.DuplicatesSkipped,
		"unclassified", result.UnclassifiedSkipped,
		"topics", result.TopicsEnriched)
	return result, nil
}
