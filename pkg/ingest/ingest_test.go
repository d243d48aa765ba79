package ingest

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/AlexOliinyk1/careerintel/internal/dynstore"
	"github.com/AlexOliinyk1/careerintel/pkg/question"
	"github.com/AlexOliinyk1/careerintel/pkg/taxonomy"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testBank(t *testing.T) *taxonomy.Bank {
	t.Helper()
	bank, err := taxonomy.NewBank(
		[]taxonomy.Topic{
			{ID: "concurrency", Name: "Concurrency & Async", Keywords: []string{"async", "await", "task", "deadlock", "lock", "thread"}},
			{ID: "databases", Name: "Databases & Data Access", Keywords: []string{"sql", "index", "transaction", "query", "database"}},
		},
		[]taxonomy.TopicArea{
			{
				ID:          "concurrency",
				Name:        "Concurrency & Async",
				KeyConcepts: []string{"locking", "async"},
				Questions: []taxonomy.BankQuestion{
					{Question: "What is a deadlock and how do you prevent one?", Answer: "Circular waits on locks; prevent with ordering.", Difficulty: question.Mid, Tags: []string{"deadlock"}},
				},
			},
		},
	)
	if err != nil {
		t.Fatalf("NewBank: %v", err)
	}
	return bank
}

func testPipeline(t *testing.T, dir string) *Pipeline {
	t.Helper()
	store := dynstore.Open(dir, dynstore.Options{Logger: testLogger()})
	return New(testBank(t), store, Options{Logger: testLogger()})
}

// mixedBatch is 10 questions: 5 acceptable, 3 duplicates (two of the
// curated bank, one of an earlier batch item), 2 unclassifiable.
func mixedBatch() []question.Raw {
	return []question.Raw{
		{Question: "How do async and await work together in C#?"},
		{Question: ""},
		{Question: "Tell me about your hobbies and travels"},
		{Question: "What is a deadlock and how do you prevent one"},
		{Question: "What is a deadlock and how do you prevent one, exactly?"},
		{Question: "When would you use a semaphore instead of a lock?"},
		{Question: "How do async and await work together in C#, really?"},
		{Question: "How do you tune a slow SQL query with an index?"},
		{Question: "Why do database transactions need isolation?"},
		{Question: "What thread safety issues arise with shared task state?"},
	}
}

func TestIngestBatchCounts(t *testing.T) {
	p := testPipeline(t, t.TempDir())

	got, err := p.Ingest(context.Background(), mixedBatch())
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	if got.TotalProcessed != 10 {
		t.Errorf("TotalProcessed = %d, want 10", got.TotalProcessed)
	}
	if got.NewQuestionsAdded != 5 {
		t.Errorf("NewQuestionsAdded = %d, want 5", got.NewQuestionsAdded)
	}
	if got.DuplicatesSkipped != 3 {
		t.Errorf("DuplicatesSkipped = %d, want 3", got.DuplicatesSkipped)
	}
	if got.UnclassifiedSkipped != 2 {
		t.Errorf("UnclassifiedSkipped = %d, want 2", got.UnclassifiedSkipped)
	}
	if sum := got.NewQuestionsAdded + got.DuplicatesSkipped + got.UnclassifiedSkipped; sum != got.TotalProcessed {
		t.Errorf("count sum = %d, want TotalProcessed %d", sum, got.TotalProcessed)
	}
	if want := []string{"concurrency", "databases"}; !reflect.DeepEqual(got.TopicsEnriched, want) {
		t.Errorf("TopicsEnriched = %v, want %v", got.TopicsEnriched, want)
	}
}

func TestIngestIdempotent(t *testing.T) {
	dir := t.TempDir()
	p := testPipeline(t, dir)

	if _, err := p.Ingest(context.Background(), mixedBatch()); err != nil {
		t.Fatalf("first Ingest: %v", err)
	}

	got, err := p.Ingest(context.Background(), mixedBatch())
	if err != nil {
		t.Fatalf("second Ingest: %v", err)
	}

	if got.NewQuestionsAdded != 0 {
		t.Errorf("second run NewQuestionsAdded = %d, want 0", got.NewQuestionsAdded)
	}
	if got.DuplicatesSkipped != 8 {
		t.Errorf("second run DuplicatesSkipped = %d, want 8", got.DuplicatesSkipped)
	}
	if got.UnclassifiedSkipped != 2 {
		t.Errorf("second run UnclassifiedSkipped = %d, want 2", got.UnclassifiedSkipped)
	}
	if len(got.TopicsEnriched) != 0 {
		t.Errorf("second run TopicsEnriched = %v, want empty", got.TopicsEnriched)
	}

	// The store did not grow.
	store := dynstore.Open(dir, dynstore.Options{Logger: testLogger()})
	records, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(records) != 5 {
		t.Errorf("store holds %d records after re-ingest, want 5", len(records))
	}
}

func TestIngestFillsIDAndScrapeTime(t *testing.T) {
	dir := t.TempDir()
	p := testPipeline(t, dir)

	before := time.Now().UTC()
	_, err := p.Ingest(context.Background(), []question.Raw{
		{Question: "How do async and await work together in C#?"},
		{ID: "ext-42", Question: "Why do database transactions need isolation?", ScrapedAt: time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)},
	})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	after := time.Now().UTC()

	records, err := dynstore.Open(dir, dynstore.Options{Logger: testLogger()}).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("store holds %d records, want 2", len(records))
	}

	for _, rec := range records {
		if !rec.IsNew {
			t.Errorf("record %s IsNew = false, want true", rec.ID)
		}
		switch rec.TopicID {
		case "concurrency":
			if len(rec.ID) != 26 {
				t.Errorf("generated id = %q, want 26-char ULID", rec.ID)
			}
			if rec.ScrapedAt.Before(before) || rec.ScrapedAt.After(after) {
				t.Errorf("stamped ScrapedAt = %v, want within [%v, %v]", rec.ScrapedAt, before, after)
			}
		case "databases":
			if rec.ID != "ext-42" {
				t.Errorf("caller-supplied id overwritten: got %q", rec.ID)
			}
			if want := time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC); !rec.ScrapedAt.Equal(want) {
				t.Errorf("caller-supplied ScrapedAt overwritten: got %v", rec.ScrapedAt)
			}
		default:
			t.Errorf("unexpected topic %q", rec.TopicID)
		}
	}
}

func TestIngestPersistFailureStillReportsCounts(t *testing.T) {
	dir := t.TempDir()
	p := testPipeline(t, dir)

	// Block the snapshot's temp file with a directory so the final persist
	// fails after all counting is done.
	if err := os.Mkdir(filepath.Join(dir, dynstore.FileName+".tmp"), 0755); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}

	got, err := p.Ingest(context.Background(), mixedBatch())
	if err == nil {
		t.Fatal("Ingest with blocked persist returned nil error")
	}

	// The counts describe work that was never durably saved.
	if got.TotalProcessed != 10 || got.NewQuestionsAdded != 5 {
		t.Errorf("Result = %+v, want counts for the full batch alongside the error", got)
	}
	if _, statErr := os.Stat(filepath.Join(dir, dynstore.FileName)); !errors.Is(statErr, os.ErrNotExist) {
		t.Errorf("store file exists despite failed persist: %v", statErr)
	}
}

func TestIngestCorruptStoreFailsFast(t *testing.T) {
	dir := t.TempDir()
	p := testPipeline(t, dir)

	if err := os.WriteFile(filepath.Join(dir, dynstore.FileName), []byte("not json"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	got, err := p.Ingest(context.Background(), mixedBatch())
	if !errors.Is(err, dynstore.ErrCorrupted) {
		t.Fatalf("Ingest over corrupt store error = %v, want ErrCorrupted", err)
	}
	if got.TotalProcessed != 0 {
		t.Errorf("Result = %+v, want zero result before any processing", got)
	}

	// The corrupt file is left untouched for manual recovery.
	data, err := os.ReadFile(filepath.Join(dir, dynstore.FileName))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "not json" {
		t.Errorf("corrupt store file was rewritten to %q", data)
	}
}

func TestIngestRefusesWhenLocked(t *testing.T) {
	dir := t.TempDir()
	store := dynstore.Open(dir, dynstore.Options{Logger: testLogger()})

	release, err := store.Lock()
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}
	defer release()

	p := testPipeline(t, dir)
	if _, err := p.Ingest(context.Background(), mixedBatch()); !errors.Is(err, dynstore.ErrLocked) {
		t.Errorf("Ingest under held lock error = %v, want ErrLocked", err)
	}
}

func TestIngestMinConfidenceOption(t *testing.T) {
	store := dynstore.Open(t.TempDir(), dynstore.Options{Logger: testLogger()})
	p := New(testBank(t), store, Options{MinConfidence: 60, Logger: testLogger()})

	// Two keyword hits score 50, below the raised bar.
	got, err := p.Ingest(context.Background(), []question.Raw{
		{Question: "How do async and await work together in C#?"},
	})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if got.NewQuestionsAdded != 0 || got.UnclassifiedSkipped != 1 {
		t.Errorf("Result = %+v, want the 50-confidence question rejected", got)
	}
}
