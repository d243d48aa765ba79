package plan

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/AlexOliinyk1/careerintel/internal/dynstore"
	"github.com/AlexOliinyk1/careerintel/pkg/knowledge"
	"github.com/AlexOliinyk1/careerintel/pkg/question"
	"github.com/AlexOliinyk1/careerintel/pkg/taxonomy"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testBank(t *testing.T) *taxonomy.Bank {
	t.Helper()
	topics := []taxonomy.Topic{
		{ID: "concurrency", Name: "Concurrency & Parallelism", Keywords: []string{"async", "await", "deadlock"}},
		{ID: "databases", Name: "Databases & Data Access", Keywords: []string{"sql", "index"}},
		{ID: "messaging", Name: "Messaging & Integration", Keywords: []string{"kafka", "queue"}},
	}
	areas := []taxonomy.TopicArea{
		{
			ID:          "concurrency",
			Name:        "Concurrency & Parallelism",
			KeyConcepts: []string{"async/await", "locking"},
			Questions: []taxonomy.BankQuestion{
				{Question: "What is a deadlock and how do you prevent one?", Answer: "Circular waits.", Difficulty: question.Mid},
				{Question: "How do async and await work in C#?", Answer: "State machines.", Difficulty: question.Mid},
				{Question: "When would you use SemaphoreSlim instead of a lock statement?", Answer: "Async waiting.", Difficulty: question.Senior},
				{Question: "What is the difference between a Task and a Thread?", Answer: "Scheduling.", Difficulty: question.Junior},
				{Question: "How do you detect and fix a race condition?", Answer: "Synchronize.", Difficulty: question.Senior},
			},
		},
		{
			ID:   "databases",
			Name: "Databases & Data Access",
			Questions: []taxonomy.BankQuestion{
				{Question: "What is a database index?", Answer: "A lookup structure.", Difficulty: question.Junior},
				{Question: "Explain isolation levels.", Answer: "Consistency tiers.", Difficulty: question.Senior},
				{Question: "What causes N+1 queries?", Answer: "Lazy loading in loops.", Difficulty: question.Mid},
			},
		},
	}
	bank, err := taxonomy.NewBank(topics, areas)
	if err != nil {
		t.Fatalf("NewBank: %v", err)
	}
	return bank
}

func rec(topicID, topicName, text string, scrapedAt time.Time) question.Classified {
	return question.Classified{
		Raw:        question.Raw{Question: text, Source: "devto", ScrapedAt: scrapedAt},
		TopicID:    topicID,
		TopicName:  topicName,
		Confidence: 50,
		Difficulty: question.Mid,
	}
}

// testBuilder seeds concurrency with 4 recent scraped questions and
// messaging with 2, leaving databases quiet.
func testBuilder(t *testing.T) *Builder {
	t.Helper()
	recent := time.Now().UTC().Add(-24 * time.Hour)

	var records []question.Classified
	for i := 0; i < 4; i++ {
		records = append(records, rec("concurrency", "Concurrency & Parallelism", "scraped concurrency question", recent))
	}
	for i := 0; i < 2; i++ {
		records = append(records, rec("messaging", "Messaging & Integration", "scraped messaging question", recent))
	}

	dir := t.TempDir()
	store := dynstore.Open(dir, dynstore.Options{Logger: testLogger()})
	if err := store.Persist(records); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	svc := knowledge.New(testBank(t), store, knowledge.Options{Logger: testLogger()})
	b, err := New(svc)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return b
}

func TestBuildAllocatesBudget(t *testing.T) {
	b := testBuilder(t)

	p, err := b.Build(context.Background(), Options{Days: 6})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	total := 0
	for _, e := range p.Entries {
		if e.Days == 0 {
			t.Errorf("entry %s allocated zero days", e.TopicID)
		}
		total += e.Days
	}
	if total != 6 {
		t.Errorf("allocated %d days, want the full budget of 6", total)
	}

	if len(p.Entries) != 2 {
		t.Fatalf("got %d entries, want 2 (quiet databases topic drops out): %+v", len(p.Entries), p.Entries)
	}
	if p.Entries[0].TopicID != "concurrency" || p.Entries[1].TopicID != "messaging" {
		t.Errorf("order = [%s %s], want activity-ranked [concurrency messaging]",
			p.Entries[0].TopicID, p.Entries[1].TopicID)
	}
	if !strings.Contains(p.Entries[0].Reason, "4 recent questions") {
		t.Errorf("reason = %q", p.Entries[0].Reason)
	}
}

func TestBuildFocusBoost(t *testing.T) {
	b := testBuilder(t)

	p, err := b.Build(context.Background(), Options{Days: 6, Focus: []string{"databases"}})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(p.Entries) == 0 || p.Entries[0].TopicID != "databases" {
		t.Fatalf("focused topic not ranked first: %+v", p.Entries)
	}
	if !strings.Contains(p.Entries[0].Reason, "focus") {
		t.Errorf("reason = %q, want a focus reason", p.Entries[0].Reason)
	}
}

func TestBuildPicksLevelQuestions(t *testing.T) {
	b := testBuilder(t)

	p, err := b.Build(context.Background(), Options{Days: 6, Level: question.Senior})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	var conc *Entry
	for i := range p.Entries {
		if p.Entries[i].TopicID == "concurrency" {
			conc = &p.Entries[i]
		}
	}
	if conc == nil {
		t.Fatal("concurrency entry missing")
	}
	if len(conc.Questions) != 3 {
		t.Fatalf("picked %d questions, want 3", len(conc.Questions))
	}
	// Senior questions come first, then the list fills with others.
	if conc.Questions[0] != "When would you use SemaphoreSlim instead of a lock statement?" {
		t.Errorf("first drill question = %q, want the senior one", conc.Questions[0])
	}
	if conc.Questions[1] != "How do you detect and fix a race condition?" {
		t.Errorf("second drill question = %q", conc.Questions[1])
	}
}

func TestBuildDefaults(t *testing.T) {
	b := testBuilder(t)

	p, err := b.Build(context.Background(), Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if p.Days != DefaultDays {
		t.Errorf("days = %d, want %d", p.Days, DefaultDays)
	}
	if p.Level != question.Mid {
		t.Errorf("level = %q, want mid", p.Level)
	}
}

func TestRender(t *testing.T) {
	b := testBuilder(t)

	p, err := b.Build(context.Background(), Options{Days: 6})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	out, err := b.Render(p)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	for _, want := range []string{
		"Interview prep plan: 6 days, mid level",
		"Concurrency & Parallelism",
		"why:",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered plan missing %q:\n%s", want, out)
		}
	}
}

func TestAllocateDays(t *testing.T) {
	tests := []struct {
		scores []float64
		days   int
		want   []int
	}{
		{[]float64{3, 1}, 3, []int{2, 1}},
		{[]float64{1, 1, 1}, 4, []int{2, 1, 1}},
		{[]float64{2, 2}, 0, []int{0, 0}},
		{nil, 5, []int{}},
	}
	for _, tt := range tests {
		got := allocateDays(tt.scores, tt.days)
		if len(got) != len(tt.want) {
			t.Errorf("allocateDays(%v, %d) = %v, want %v", tt.scores, tt.days, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("allocateDays(%v, %d) = %v, want %v", tt.scores, tt.days, got, tt.want)
				break
			}
		}
	}
}
