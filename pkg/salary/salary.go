// Package salary parses and aggregates crowd-sourced salary reports.
package salary

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/AlexOliinyk1/careerintel/pkg/question"
)

// Report is one salary data point from an import.
type Report struct {
	ID         int64               `json:"id,omitempty" db:"id"`
	Role       string              `json:"role" db:"role"`
	Seniority  question.Difficulty `json:"seniority" db:"seniority"`
	Country    string              `json:"country,omitempty" db:"country"`
	Company    string              `json:"company,omitempty" db:"company"`
	Amount     float64             `json:"amount" db:"amount"`
	Currency   string              `json:"currency,omitempty" db:"currency"`
	ReportedAt time.Time           `json:"reportedAt,omitzero" db:"reported_at"`
}

// RoleStats aggregates reports for one role and seniority.
type RoleStats struct {
	Role      string              `json:"role" db:"role"`
	Seniority question.Difficulty `json:"seniority" db:"seniority"`
	Count     int                 `json:"count" db:"cnt"`
	Min       float64             `json:"min" db:"min_amount"`
	Max       float64             `json:"max" db:"max_amount"`
	Mean      float64             `json:"mean" db:"mean_amount"`
	Median    float64             `json:"median" db:"-"`
}

// ImportCSV parses salary exports. Column mapping is header-driven so the
// exact export layout does not matter; rows without a usable role or amount
// are skipped rather than failing the whole import.
func ImportCSV(r io.Reader) ([]Report, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("csv has no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[normalizeHeader(name)] = i
	}

	roleIdx, ok := findColumn(cols, "role", "position", "title", "job title")
	if !ok {
		return nil, errors.New("csv has no role column")
	}
	amountIdx, ok := findColumn(cols, "salary", "amount", "annual salary", "compensation", "base salary")
	if !ok {
		return nil, errors.New("csv has no salary column")
	}
	seniorityIdx, _ := findColumn(cols, "seniority", "level", "grade")
	countryIdx, _ := findColumn(cols, "country", "location")
	companyIdx, _ := findColumn(cols, "company", "employer")
	currencyIdx, _ := findColumn(cols, "currency")
	dateIdx, _ := findColumn(cols, "date", "reported", "reported at")

	var reports []Report
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}

		role := strings.TrimSpace(field(row, roleIdx))
		amount, amountErr := parseAmount(field(row, amountIdx))
		if role == "" || amountErr != nil || amount <= 0 {
			continue
		}

		reports = append(reports, Report{
			Role:       role,
			Seniority:  question.ParseDifficulty(field(row, seniorityIdx)),
			Country:    strings.TrimSpace(field(row, countryIdx)),
			Company:    strings.TrimSpace(field(row, companyIdx)),
			Amount:     amount,
			Currency:   strings.ToUpper(strings.TrimSpace(field(row, currencyIdx))),
			ReportedAt: parseDate(field(row, dateIdx)),
		})
	}
	return reports, nil
}

// Aggregate computes per-role statistics, sorted by report count so the
// best-covered roles come first.
func Aggregate(reports []Report) []RoleStats {
	type key struct {
		role      string
		seniority question.Difficulty
	}
	groups := make(map[key][]float64)
	for _, r := range reports {
		k := key{strings.TrimSpace(r.Role), r.Seniority}
		if k.role == "" {
			continue
		}
		groups[k] = append(groups[k], r.Amount)
	}

	stats := make([]RoleStats, 0, len(groups))
	for k, amounts := range groups {
		sort.Float64s(amounts)
		sum := 0.0
		for _, a := range amounts {
			sum += a
		}
		stats = append(stats, RoleStats{
			Role:      k.role,
			Seniority: k.seniority,
			Count:     len(amounts),
			Min:       amounts[0],
			Max:       amounts[len(amounts)-1],
			Mean:      sum / float64(len(amounts)),
			Median:    Median(amounts),
		})
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Count != stats[j].Count {
			return stats[i].Count > stats[j].Count
		}
		if stats[i].Role != stats[j].Role {
			return stats[i].Role < stats[j].Role
		}
		return stats[i].Seniority < stats[j].Seniority
	})
	return stats
}

// Median returns the middle value of an ascending slice, averaging the two
// middle values for even lengths.
func Median(sorted []float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func normalizeHeader(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, "_", " ")
	return strings.ReplaceAll(name, "-", " ")
}

func findColumn(cols map[string]int, names ...string) (int, bool) {
	for _, name := range names {
		if i, ok := cols[name]; ok {
			return i, true
		}
	}
	return 0, false
}

func field(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// parseAmount accepts formatted amounts like "85,000", "$85000" or "85k".
func parseAmount(s string) (float64, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	mult := 1.0
	if strings.HasSuffix(s, "k") {
		mult = 1000
		s = strings.TrimSuffix(s, "k")
	}

	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' || r == '.' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0, fmt.Errorf("no numeric amount in %q", s)
	}
	v, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return v * mult, nil
}

func parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.RFC3339, "2006-01-02", "01/02/2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
