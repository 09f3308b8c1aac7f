// Package catalog keeps a local SQLite history of extraction runs, backing
// the stats command.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

type DB struct {
	pool *sql.DB
}

func Open(path string) (*DB, error) {
	// modernc sqlite DSN: file:foo.db?_pragma=busy_timeout(5000)
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path)

	pool, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	pool.SetMaxOpenConns(1) // sqlite wants a single writer
	pool.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := pool.PingContext(ctx); err != nil {
		_ = pool.Close()
		return nil, err
	}

	d := &DB{pool: pool}
	if err := d.migrate(); err != nil {
		_ = pool.Close()
		return nil, err
	}
	return d, nil
}

func (d *DB) Close() error {
	if d == nil || d.pool == nil {
		return nil
	}
	return d.pool.Close()
}

func (d *DB) migrate() error {
	tx, err := d.pool.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var v int
	if err := tx.QueryRow(`PRAGMA user_version;`).Scan(&v); err != nil {
		return err
	}
	if v >= 1 {
		return tx.Commit()
	}

	if _, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  source TEXT NOT NULL,
  career TEXT NOT NULL,
  query TEXT NOT NULL,
  run_date TEXT NOT NULL,
  start_page INTEGER NOT NULL DEFAULT 0,
  last_page INTEGER NOT NULL DEFAULT 0,
  rows_added INTEGER NOT NULL DEFAULT 0,
  recorded_at TEXT NOT NULL
);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`
CREATE INDEX IF NOT EXISTS idx_runs_source_date
ON runs(source, run_date);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`PRAGMA user_version = 1;`); err != nil {
		return err
	}
	return tx.Commit()
}

// Run is one completed extraction run for a (source, career, query, day).
type Run struct {
	Source     string
	Career     string
	Query      string
	RunDate    string
	StartPage  int
	LastPage   int
	RowsAdded  int
	RecordedAt string
}

func (d *DB) RecordRun(ctx context.Context, r Run) error {
	if r.RecordedAt == "" {
		r.RecordedAt = time.Now().UTC().Format(time.RFC3339)
	}
	_, err := d.pool.ExecContext(ctx, `
INSERT INTO runs (source, career, query, run_date, start_page, last_page, rows_added, recorded_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?);`,
		r.Source, r.Career, r.Query, r.RunDate, r.StartPage, r.LastPage, r.RowsAdded, r.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

func (d *DB) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := d.pool.QueryContext(ctx, `
SELECT source, career, query, run_date, start_page, last_page, rows_added, recorded_at
FROM runs
ORDER BY id DESC
LIMIT ?;`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.Source, &r.Career, &r.Query, &r.RunDate,
			&r.StartPage, &r.LastPage, &r.RowsAdded, &r.RecordedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// SourceTotal aggregates run history for one source.
type SourceTotal struct {
	Source    string
	Runs      int
	RowsAdded int
}

func (d *DB) SourceTotals(ctx context.Context) ([]SourceTotal, error) {
	rows, err := d.pool.QueryContext(ctx, `
SELECT source, COUNT(*), SUM(rows_added)
FROM runs
GROUP BY source
ORDER BY source;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SourceTotal
	for rows.Next() {
		var t SourceTotal
		if err := rows.Scan(&t.Source, &t.Runs, &t.RowsAdded); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
