// Package salarystore persists salary reports in SQLite.
package salarystore

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/AlexOliinyk1/careerintel/pkg/question"
	"github.com/AlexOliinyk1/careerintel/pkg/salary"
)

// ListOpts controls report listing.
type ListOpts struct {
	Role      string
	Seniority question.Difficulty
	Since     time.Time
	Limit     int
}

// Store is a SQLite-backed salary report store.
type Store struct {
	db *sqlx.DB
}

// New opens the database at path and runs migrations.
func New(path string) (*Store, error) {
	db, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// InsertReport stores one report and fills in its assigned id.
func (s *Store) InsertReport(ctx context.Context, r *salary.Report) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO salary_reports (role, seniority, country, company, amount, currency, reported_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, r.Role, r.Seniority, r.Country, r.Company, r.Amount, r.Currency, r.ReportedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert salary report %s: %w", r.Role, err)
	}
	r.ID, _ = res.LastInsertId()
	return nil
}

// InsertReports stores a batch, stopping at the first failure.
func (s *Store) InsertReports(ctx context.Context, reports []salary.Report) error {
	for i := range reports {
		if err := s.InsertReport(ctx, &reports[i]); err != nil {
			return err
		}
	}
	return nil
}

// ListReports returns reports newest first.
func (s *Store) ListReports(ctx context.Context, opts ListOpts) ([]salary.Report, error) {
	query := "SELECT * FROM salary_reports WHERE 1=1"
	var args []any

	if opts.Role != "" {
		query += " AND role = ?"
		args = append(args, opts.Role)
	}
	if opts.Seniority != "" {
		query += " AND seniority = ?"
		args = append(args, opts.Seniority)
	}
	if !opts.Since.IsZero() {
		query += " AND reported_at >= ?"
		args = append(args, opts.Since.UTC())
	}

	query += " ORDER BY reported_at DESC, id DESC"

	limit := opts.Limit
	if limit <= 0 {
		limit = 100
	}
	query += " LIMIT ?"
	args = append(args, limit)

	var reports []salary.Report
	if err := s.db.SelectContext(ctx, &reports, query, args...); err != nil {
		return nil, fmt.Errorf("list salary reports: %w", err)
	}
	return reports, nil
}

// RoleAggregates computes per-role statistics over everything stored. The
// median needs the full per-group distribution, so it is filled in with a
// second query per group.
func (s *Store) RoleAggregates(ctx context.Context) ([]salary.RoleStats, error) {
	var stats []salary.RoleStats
	err := s.db.SelectContext(ctx, &stats, `
		SELECT role, seniority, COUNT(*) AS cnt, MIN(amount) AS min_amount,
		       MAX(amount) AS max_amount, AVG(amount) AS mean_amount
		FROM salary_reports
		GROUP BY role, seniority
		ORDER BY cnt DESC, role, seniority
	`)
	if err != nil {
		return nil, fmt.Errorf("aggregate salary reports: %w", err)
	}

	for i := range stats {
		var amounts []float64
		err := s.db.SelectContext(ctx, &amounts,
			"SELECT amount FROM salary_reports WHERE role = ? AND seniority = ? ORDER BY amount",
			stats[i].Role, stats[i].Seniority)
		if err != nil {
			return nil, fmt.Errorf("load amounts for %s: %w", stats[i].Role, err)
		}
		stats[i].Median = salary.Median(amounts)
	}
	return stats, nil
}

// Count returns the total number of stored reports.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM salary_reports"); err != nil {
		return 0, fmt.Errorf("count salary reports: %w", err)
	}
	return n, nil
}
