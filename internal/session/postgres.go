package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"fitroom-server/internal/domain"
)

const createSessionsTable = `
CREATE TABLE IF NOT EXISTS chat_sessions (
	id         TEXT PRIMARY KEY,
	turns      JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresStore persists chat histories in a single JSONB-backed table so
// sessions survive restarts and can be shared between replicas.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore ensures the backing table exists and returns the store.
func NewPostgresStore(ctx context.Context, pool *pgxpool.Pool) (*PostgresStore, error) {
	if _, err := pool.Exec(ctx, createSessionsTable); err != nil {
		return nil, fmt.Errorf("session: ensure table: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (p *PostgresStore) Get(ctx context.Context, key string) ([]domain.Turn, bool, error) {
	var raw []byte
	err := p.pool.QueryRow(ctx, `SELECT turns FROM chat_sessions WHERE id = $1`, key).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("session: select: %w", err)
	}
	var turns []domain.Turn
	if err := json.Unmarshal(raw, &turns); err != nil {
		return nil, false, fmt.Errorf("session: decode history: %w", err)
	}
	return turns, true, nil
}

func (p *PostgresStore) Put(ctx context.Context, key string, turns []domain.Turn) error {
	raw, err := json.Marshal(turns)
	if err != nil {
		return fmt.Errorf("session: encode history: %w", err)
	}
	_, err = p.pool.Exec(ctx, `
		INSERT INTO chat_sessions (id, turns) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET turns = EXCLUDED.turns, updated_at = now()`,
		key, raw)
	if err != nil {
		return fmt.Errorf("session: upsert: %w", err)
	}
	return nil
}

func (p *PostgresStore) Delete(ctx context.Context, key string) error {
	if _, err := p.pool.Exec(ctx, `DELETE FROM chat_sessions WHERE id = $1`, key); err != nil {
		return fmt.Errorf("session: delete: %w", err)
	}
	return nil
}

var _ domain.SessionStore = (*PostgresStore)(nil)
