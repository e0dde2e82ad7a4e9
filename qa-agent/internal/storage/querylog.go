package storage

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

// CategoryCount is the number of questions logged under one category.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// MonthlyCount is the number of questions for one category in one month.
type MonthlyCount struct {
	YearMonth string `json:"year_month"`
	Category  string `json:"category"`
	Count     int    `json:"count"`
}

// MonthlyTotal is the number of questions asked in one month.
type MonthlyTotal struct {
	YearMonth string `json:"year_month"`
	Count     int    `json:"count"`
}

// QueryLogStore records question categories in Postgres.
type QueryLogStore struct {
	db  *sql.DB
	now func() time.Time
}

// OpenQueryLog connects with lib/pq and pings the server.
func OpenQueryLog(ctx context.Context, url string) (*QueryLogStore, error) {
	if url == "" {
		url = DefaultDatabaseURL
	}
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return NewQueryLogStore(db), nil
}

func NewQueryLogStore(db *sql.DB) *QueryLogStore {
	return &QueryLogStore{db: db, now: time.Now}
}

func (s *QueryLogStore) Close() error { return s.db.Close() }

func (s *QueryLogStore) Migrate(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS categories (
		id SERIAL PRIMARY KEY,
		question TEXT NOT NULL,
		category VARCHAR(64) NOT NULL,
		year_month CHAR(7) NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS categories_year_month_idx ON categories (year_month);
	`
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("migrate categories: %w", err)
	}
	return nil
}

// Record implements graph.QueryLog.
func (s *QueryLogStore) Record(ctx context.Context, question, category string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO categories (question, category, year_month) VALUES ($1, $2, $3)",
		question, category, yearMonth(s.now()))
	if err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

// CategoryCounts returns per-category totals, largest first.
func (s *QueryLogStore) CategoryCounts(ctx context.Context) ([]CategoryCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT category, COUNT(*) AS n
		FROM categories
		GROUP BY category
		ORDER BY n DESC, category`)
	if err != nil {
		return nil, fmt.Errorf("query category counts: %w", err)
	}
	defer rows.Close()

	out := []CategoryCount{}
	for rows.Next() {
		var c CategoryCount
		if err := rows.Scan(&c.Category, &c.Count); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// MonthlyCounts returns per-month, per-category totals in month order.
func (s *QueryLogStore) MonthlyCounts(ctx context.Context) ([]MonthlyCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT year_month, category, COUNT(*)
		FROM categories
		GROUP BY year_month, category
		ORDER BY year_month, category`)
	if err != nil {
		return nil, fmt.Errorf("query monthly counts: %w", err)
	}
	defer rows.Close()

	out := []MonthlyCount{}
	for rows.Next() {
		var c MonthlyCount
		if err := rows.Scan(&c.YearMonth, &c.Category, &c.Count); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// MonthlyTotals returns question counts per month across all categories,
// newest month first.
func (s *QueryLogStore) MonthlyTotals(ctx context.Context) ([]MonthlyTotal, error) {
	counts, err := s.MonthlyCounts(ctx)
	if err != nil {
		return nil, err
	}
	return monthTotals(counts), nil
}

// monthTotals folds per-category monthly counts into per-month totals,
// newest first.
func monthTotals(counts []MonthlyCount) []MonthlyTotal {
	byMonth := make(map[string]int)
	for _, c := range counts {
		byMonth[c.YearMonth] += c.Count
	}
	out := make([]MonthlyTotal, 0, len(byMonth))
	for ym, n := range byMonth {
		out = append(out, MonthlyTotal{YearMonth: ym, Count: n})
	}
	slices.SortFunc(out, func(a, b MonthlyTotal) int {
		return strings.Compare(b.YearMonth, a.YearMonth)
	})
	return out
}

func yearMonth(t time.Time) string {
	return t.UTC().Format("2006-01")
}
