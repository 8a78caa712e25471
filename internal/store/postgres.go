package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tinifier/tinifier/internal/shortener"
)

// PostgresStore is a PostgreSQL implementation of shortener.Store.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgreSQL-backed entry store and ensures the
// schema exists.
func NewPostgresStore(ctx context.Context, pool *pgxpool.Pool) (*PostgresStore, error) {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS url_entries (
			short_url  TEXT PRIMARY KEY,
			long_url   TEXT NOT NULL,
			expires_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL,
			author     TEXT NOT NULL
		)
	`)
	if err != nil {
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

func (p *PostgresStore) Insert(ctx context.Context, code string, e shortener.Entry) (*shortener.Entry, error) {
	query := `
		INSERT INTO url_entries (short_url, long_url, expires_at, created_at, author)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (short_url) DO NOTHING
	`

	tag, err := p.pool.Exec(ctx, query,
		code,
		e.LongURL,
		e.ExpiresAt,
		e.CreatedAt,
		e.Author,
	)
	if err != nil {
		return nil, err
	}

	if tag.RowsAffected() == 0 {
		return nil, shortener.ErrExists
	}

	return &e, nil
}

func (p *PostgresStore) Get(ctx context.Context, code string) (*shortener.Entry, error) {
	query := `
		SELECT short_url, long_url, expires_at, created_at, author
		FROM url_entries
		WHERE short_url = $1
	`

	return p.scanEntry(p.pool.QueryRow(ctx, query, code))
}

func (p *PostgresStore) Remove(ctx context.Context, code string) (*shortener.Entry, error) {
	query := `
		DELETE FROM url_entries
		WHERE short_url = $1
		RETURNING short_url, long_url, expires_at, created_at, author
	`

	return p.scanEntry(p.pool.QueryRow(ctx, query, code))
}

func (p *PostgresStore) Contains(ctx context.Context, code string) (bool, error) {
	var exists bool

	query := `SELECT EXISTS (SELECT 1 FROM url_entries WHERE short_url = $1)`

	if err := p.pool.QueryRow(ctx, query, code).Scan(&exists); err != nil {
		return false, err
	}

	return exists, nil
}

func (p *PostgresStore) scanEntry(row pgx.Row) (*shortener.Entry, error) {
	var e shortener.Entry

	err := row.Scan(
		&e.ShortURL,
		&e.LongURL,
		&e.ExpiresAt,
		&e.CreatedAt,
		&e.Author,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shortener.ErrNotFound
		}

		return nil, err
	}

	return &e, nil
}

// Compile-time check.
var _ shortener.Store = (*PostgresStore)(nil)
