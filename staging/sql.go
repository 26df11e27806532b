package staging

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// SQLLedger is a Ledger backed by a relational database, using the
// staged_assets table. It is the production implementation; any
// database/sql driver works, PostgreSQL via pgx being the default.
type SQLLedger struct {
	db *sql.DB
}

// NewSQLLedger wraps an open database handle.
func NewSQLLedger(db *sql.DB) *SQLLedger {
	return &SQLLedger{db: db}
}

// OpenSQLLedger opens a PostgreSQL connection with the pgx driver and
// verifies it.
func OpenSQLLedger(ctx context.Context, dsn string) (*SQLLedger, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("staging: opening database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("staging: pinging database: %w", err)
	}
	return &SQLLedger{db: db}, nil
}

// EnsureSchema creates the staged_assets table if it does not exist.
func (l *SQLLedger) EnsureSchema(ctx context.Context) error {
	_, err := l.db.ExecContext(ctx, `
		create table if not exists staged_assets (
			url        text primary key,
			created_at timestamptz not null
		)
	`)
	return err
}

// Insert records a staged asset. Re-inserting a known URL keeps the
// original entry.
func (l *SQLLedger) Insert(ctx context.Context, url string, createdAt time.Time) error {
	_, err := l.db.ExecContext(ctx, `
		insert into staged_assets (url, created_at)
		values ($1, $2)
		on conflict (url) do nothing
	`, url, createdAt)
	return err
}

// DeleteByURL removes the entry for a URL. Unknown URLs are a no-op.
func (l *SQLLedger) DeleteByURL(ctx context.Context, url string) error {
	_, err := l.db.ExecContext(ctx, `
		delete from staged_assets where url = $1
	`, url)
	return err
}

// ListOlderThan returns URLs staged before the cutoff.
func (l *SQLLedger) ListOlderThan(ctx context.Context, cutoff time.Time) ([]string, error) {
	rows, err := l.db.QueryContext(ctx, `
		select url from staged_assets where created_at < $1
	`, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, rows.Err()
}

// Close closes the underlying database handle.
func (l *SQLLedger) Close() error {
	return l.db.Close()
}
