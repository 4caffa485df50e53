package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonathan/video-publisher/internal/browser"
)

// PostgresStore keeps snapshots in an account_sessions table, for deployments
// where several worker hosts share one session store.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// ConnectPostgres establishes a connection pool and ensures the table exists.
func ConnectPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	_, err = pool.Exec(ctx,
		`CREATE TABLE IF NOT EXISTS account_sessions (
			platform   TEXT NOT NULL,
			account    TEXT NOT NULL,
			state      JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (platform, account)
		)`)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ensure account_sessions table: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Load fetches the snapshot for the pair.
func (s *PostgresStore) Load(platform, account string) (*browser.StorageState, bool, error) {
	var raw []byte
	err := s.pool.QueryRow(context.Background(),
		`SELECT state FROM account_sessions WHERE platform = $1 AND account = $2`,
		platform, account,
	).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to load session: %w", err)
	}

	var state browser.StorageState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, false, fmt.Errorf("failed to parse stored session: %w", err)
	}
	return &state, true, nil
}

// Save upserts the snapshot for the pair.
func (s *PostgresStore) Save(platform, account string, state *browser.StorageState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to serialize session: %w", err)
	}

	_, err = s.pool.Exec(context.Background(),
		`INSERT INTO account_sessions (platform, account, state, updated_at)
		 VALUES ($1, $2, $3, NOW())
		 ON CONFLICT (platform, account)
		 DO UPDATE SET state = EXCLUDED.state, updated_at = NOW()`,
		platform, account, raw,
	)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}
