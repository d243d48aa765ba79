package dynstore

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/AlexOliinyk1/careerintel/pkg/question"
)

func sampleRecords() []question.Classified {
	scraped := time.Date(2025, 11, 3, 10, 0, 0, 0, time.UTC)
	return []question.Classified{
		{
			Raw:        question.Raw{ID: "q-1", Question: "Explain async and await in C#", Source: "devforum", ScrapedAt: scraped},
			TopicID:    "concurrency",
			TopicName:  "Concurrency & Async",
			Confidence: 50,
			Difficulty: question.Mid,
			Tags:       []string{"async", "await"},
			IsNew:      true,
		},
		{
			Raw:        question.Raw{ID: "q-2", Question: "How does the GC decide when to run?", Source: "devforum"},
			TopicID:    "dotnet-runtime",
			TopicName:  ".NET Runtime & Memory",
			Confidence: 100.0 / 3,
			Difficulty: question.Senior,
			Tags:       []string{"gc"},
			IsNew:      true,
		},
	}
}

func TestLoadMissingFile(t *testing.T) {
	s := Open(t.TempDir(), Options{})

	records, err := s.Load()
	if err != nil {
		t.Fatalf("Load on missing file returned error: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("Load on missing file returned %d records, want 0", len(records))
	}
}

func TestPersistLoadRoundTrip(t *testing.T) {
	s := Open(t.TempDir(), Options{})
	want := sampleRecords()

	if err := s.Persist(want); err != nil {
		t.Fatalf("Persist: %v", err)
	}

	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("Load returned %d records, want %d", len(got), len(want))
	}

	byID := make(map[string]question.Classified, len(got))
	for _, rec := range got {
		byID[rec.ID] = rec
	}
	for _, rec := range want {
		loaded, ok := byID[rec.ID]
		if !ok {
			t.Errorf("record %s missing after round trip", rec.ID)
			continue
		}
		if loaded.TopicID != rec.TopicID || loaded.Confidence != rec.Confidence ||
			loaded.Difficulty != rec.Difficulty || loaded.Question != rec.Question {
			t.Errorf("record %s changed in round trip: got %+v", rec.ID, loaded)
		}
		if !loaded.ScrapedAt.Equal(rec.ScrapedAt) {
			t.Errorf("record %s ScrapedAt = %v, want %v", rec.ID, loaded.ScrapedAt, rec.ScrapedAt)
		}
	}
}

func TestPersistCreatesDataDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	s := Open(dir, Options{})

	if err := s.Persist(sampleRecords()); err != nil {
		t.Fatalf("Persist into missing dir: %v", err)
	}
	if _, err := os.Stat(s.Path()); err != nil {
		t.Errorf("store file not created: %v", err)
	}
}

func TestPersistLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	s := Open(dir, Options{})

	if err := s.Persist(sampleRecords()); err != nil {
		t.Fatalf("Persist: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("temp file %s left behind after Persist", e.Name())
		}
	}
}

func TestPersistNilWritesEmptyArray(t *testing.T) {
	s := Open(t.TempDir(), Options{})

	if err := s.Persist(nil); err != nil {
		t.Fatalf("Persist(nil): %v", err)
	}

	data, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if got := strings.TrimSpace(string(data)); got != "[]" {
		t.Errorf("empty store file = %q, want %q", got, "[]")
	}
}

func TestLoadCorruptedFile(t *testing.T) {
	dir := t.TempDir()
	s := Open(dir, Options{})

	if err := os.WriteFile(s.Path(), []byte("{not json"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	_, err := s.Load()
	if !errors.Is(err, ErrCorrupted) {
		t.Errorf("Load on corrupted file error = %v, want ErrCorrupted", err)
	}
}

func TestLockBlocksSecondWriter(t *testing.T) {
	s := Open(t.TempDir(), Options{})

	release, err := s.Lock()
	if err != nil {
		t.Fatalf("first Lock: %v", err)
	}

	if _, err := s.Lock(); !errors.Is(err, ErrLocked) {
		t.Errorf("second Lock error = %v, want ErrLocked", err)
	}

	release()
	release2, err := s.Lock()
	if err != nil {
		t.Fatalf("Lock after release: %v", err)
	}
	release2()
}

func TestLockReclaimsStaleLock(t *testing.T) {
	s := Open(t.TempDir(), Options{})

	hostname, err := os.Hostname()
	if err != nil {
		t.Fatalf("Hostname: %v", err)
	}
	// A PID near the int32 limit is never a live process here.
	stale := lockInfo{Holder: "careerintel", PID: 1<<31 - 2, Hostname: hostname, StartedAt: time.Now().UTC()}
	data, err := json.MarshalIndent(stale, "", "  ")
	if err != nil {
		t.Fatalf("marshal stale lock: %v", err)
	}
	if err := os.WriteFile(s.Path()+".lock", data, 0644); err != nil {
		t.Fatalf("write stale lock: %v", err)
	}

	release, err := s.Lock()
	if err != nil {
		t.Fatalf("Lock over stale lock: %v", err)
	}
	release()
}

func TestLockAssumesRemoteHolderAlive(t *testing.T) {
	s := Open(t.TempDir(), Options{})

	remote := lockInfo{Holder: "careerintel", PID: 1, Hostname: "some-other-host", StartedAt: time.Now().UTC()}
	data, err := json.MarshalIndent(remote, "", "  ")
	if err != nil {
		t.Fatalf("marshal remote lock: %v", err)
	}
	if err := os.WriteFile(s.Path()+".lock", data, 0644); err != nil {
		t.Fatalf("write remote lock: %v", err)
	}

	if _, err := s.Lock(); !errors.Is(err, ErrLocked) {
		t.Errorf("Lock with remote holder error = %v, want ErrLocked", err)
	}
}
