package baseline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vivirisk/quotewatch/internal/domain"
)

// PostgresStore persists the baseline as a single upserted row, one per
// environment. Useful when several monitor hosts share one baseline or when
// the cron runner has no persistent disk.
type PostgresStore struct {
	pool *pgxpool.Pool
	env  string
}

// NewPostgresStore connects a pool and ensures the baseline table exists.
// env keys the row, so testnet and prod monitors do not clobber each other.
func NewPostgresStore(ctx context.Context, dsn, env string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("baseline: connect postgres: %w", err)
	}

	const ddl = `
		CREATE TABLE IF NOT EXISTS quote_baseline (
			env         TEXT PRIMARY KEY,
			captured_at TIMESTAMPTZ NOT NULL,
			payload     JSONB NOT NULL
		)`
	if _, err := pool.Exec(ctx, ddl); err != nil {
		pool.Close()
		return nil, fmt.Errorf("baseline: ensure table: %w", err)
	}

	return &PostgresStore{pool: pool, env: env}, nil
}

// Load reads the baseline row for this environment.
func (s *PostgresStore) Load(ctx context.Context) (*domain.Baseline, error) {
	const query = `SELECT payload FROM quote_baseline WHERE env = $1`

	var payload []byte
	err := s.pool.QueryRow(ctx, query, s.env).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrBaselineMissing
	}
	if err != nil {
		return nil, fmt.Errorf("baseline: select row for %s: %w", s.env, err)
	}

	var bl domain.Baseline
	if err := json.Unmarshal(payload, &bl); err != nil {
		return nil, fmt.Errorf("%w: env %s: %v", domain.ErrBaselineCorrupt, s.env, err)
	}
	return &bl, nil
}

// Save upserts the baseline row for this environment.
func (s *PostgresStore) Save(ctx context.Context, bl *domain.Baseline) error {
	payload, err := json.Marshal(bl)
	if err != nil {
		return fmt.Errorf("baseline: encode: %w", err)
	}

	const query = `
		INSERT INTO quote_baseline (env, captured_at, payload)
		VALUES ($1, $2, $3)
		ON CONFLICT (env) DO UPDATE SET
			captured_at = EXCLUDED.captured_at,
			payload     = EXCLUDED.payload`

	if _, err := s.pool.Exec(ctx, query, s.env, bl.Timestamp, payload); err != nil {
		return fmt.Errorf("baseline: upsert row for %s: %w", s.env, err)
	}
	return nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}
