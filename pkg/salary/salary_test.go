package salary

import (
	"math"
	"strings"
	"testing"

	"github.com/AlexOliinyk1/careerintel/pkg/question"
)

func TestImportCSVHeaderAliases(t *testing.T) {
	const doc = `position,level,location,employer,compensation,currency,date
Backend Developer,Senior,Ukraine,Acme,"85,000",usd,2025-06-01
Frontend Developer,mid,Poland,Globex,$72k,USD,2025-05-15
,senior,Ukraine,Hooli,90000,USD,2025-04-01
DevOps Engineer,lead,Remote,Initech,not-a-number,USD,2025-01-10
Data Engineer,entry,,,64000,,bad-date
`
	reports, err := ImportCSV(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("ImportCSV: %v", err)
	}
	if len(reports) != 3 {
		t.Fatalf("imported %d reports, want 3 (blank role and bad amount skipped)", len(reports))
	}

	first := reports[0]
	if first.Role != "Backend Developer" || first.Seniority != question.Senior {
		t.Errorf("first = %s/%s", first.Role, first.Seniority)
	}
	if first.Amount != 85000 {
		t.Errorf("first amount = %v, want 85000", first.Amount)
	}
	if first.Currency != "USD" {
		t.Errorf("currency = %q, want USD", first.Currency)
	}
	if first.ReportedAt.IsZero() {
		t.Error("first report date not parsed")
	}

	if reports[1].Amount != 72000 {
		t.Errorf("72k parsed as %v", reports[1].Amount)
	}

	last := reports[2]
	if last.Seniority != question.Junior {
		t.Errorf("entry level = %s, want junior", last.Seniority)
	}
	if !last.ReportedAt.IsZero() {
		t.Errorf("unparsable date = %v, want zero", last.ReportedAt)
	}
}

func TestImportCSVMissingColumns(t *testing.T) {
	tests := []struct {
		name, doc, want string
	}{
		{"no role", "salary,currency\n90000,USD\n", "role column"},
		{"no salary", "role,currency\nBackend Developer,USD\n", "salary column"},
		{"empty file", "", "header"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ImportCSV(strings.NewReader(tt.doc))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func report(role string, sen question.Difficulty, amount float64) Report {
	return Report{Role: role, Seniority: sen, Amount: amount, Currency: "USD"}
}

func TestAggregate(t *testing.T) {
	stats := Aggregate([]Report{
		report("Backend Developer", question.Senior, 100000),
		report("Backend Developer", question.Senior, 120000),
		report("Backend Developer", question.Senior, 110000),
		report("Backend Developer", question.Junior, 50000),
		report("Backend Developer", question.Junior, 70000),
		report("Data Engineer", question.Mid, 80000),
	})

	if len(stats) != 3 {
		t.Fatalf("got %d groups, want 3", len(stats))
	}

	top := stats[0]
	if top.Role != "Backend Developer" || top.Seniority != question.Senior {
		t.Fatalf("top group = %s/%s, want the best covered one", top.Role, top.Seniority)
	}
	if top.Count != 3 || top.Min != 100000 || top.Max != 120000 {
		t.Errorf("top = %+v", top)
	}
	if math.Abs(top.Mean-110000) > 1e-9 || top.Median != 110000 {
		t.Errorf("top mean/median = %v/%v, want 110000/110000", top.Mean, top.Median)
	}

	second := stats[1]
	if second.Seniority != question.Junior || second.Count != 2 {
		t.Fatalf("second group = %+v", second)
	}
	// Even group: median averages the two middle values.
	if second.Median != 60000 {
		t.Errorf("junior median = %v, want 60000", second.Median)
	}

	if stats[2].Role != "Data Engineer" || stats[2].Count != 1 {
		t.Errorf("third group = %+v", stats[2])
	}
}

func TestMedian(t *testing.T) {
	tests := []struct {
		sorted []float64
		want   float64
	}{
		{nil, 0},
		{[]float64{5}, 5},
		{[]float64{1, 3}, 2},
		{[]float64{1, 2, 3}, 2},
		{[]float64{1, 2, 3, 4}, 2.5},
	}
	for _, tt := range tests {
		if got := Median(tt.sorted); got != tt.want {
			t.Errorf("Median(%v) = %v, want %v", tt.sorted, got, tt.want)
		}
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"85,000", 85000, false},
		{"$95000", 95000, false},
		{"72k", 72000, false},
		{"60.5k", 60500, false},
		{"  120000 ", 120000, false},
		{"n/a", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := parseAmount(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseAmount(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("parseAmount(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
