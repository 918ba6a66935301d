// Package settings provides the CRM settings bounded context: a small
// set of named boolean toggles consulted by other modules.
package settings

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a toggle has no persisted row yet.
var ErrNotFound = errors.New("setting not found")

// Setting is one persisted toggle.
type Setting struct {
	Key       string
	Enabled   bool
	UpdatedAt time.Time
}

// Store is the settings persistence contract.
type Store interface {
	Get(ctx context.Context, key string) (Setting, error)
	Upsert(ctx context.Context, key string, enabled bool) (Setting, error)
	List(ctx context.Context) ([]Setting, error)
}

// PostgresStore is the production settings store.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a Postgres-backed settings store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (r *PostgresStore) Get(ctx context.Context, key string) (Setting, error) {
	var s Setting
	err := r.pool.QueryRow(ctx, `
		SELECT key, enabled, updated_at FROM settings WHERE key = $1
	`, key).Scan(&s.Key, &s.Enabled, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Setting{}, ErrNotFound
		}
		return Setting{}, err
	}
	return s, nil
}

func (r *PostgresStore) Upsert(ctx context.Context, key string, enabled bool) (Setting, error) {
	var s Setting
	err := r.pool.QueryRow(ctx, `
		INSERT INTO settings (key, enabled)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET enabled = EXCLUDED.enabled, updated_at = now()
		RETURNING key, enabled, updated_at
	`, key, enabled).Scan(&s.Key, &s.Enabled, &s.UpdatedAt)
	if err != nil {
		return Setting{}, err
	}
	return s, nil
}

func (r *PostgresStore) List(ctx context.Context) ([]Setting, error) {
	rows, err := r.pool.Query(ctx, `SELECT key, enabled, updated_at FROM settings ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Setting, 0)
	for rows.Next() {
		var s Setting
		if err := rows.Scan(&s.Key, &s.Enabled, &s.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, s)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return items, nil
}

// MemoryStore is an in-process settings store for demo mode and tests.
type MemoryStore struct {
	mu   sync.Mutex
	rows map[string]Setting
}

// NewMemoryStore creates an empty in-memory settings store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rows: make(map[string]Setting)}
}

func (r *MemoryStore) Get(_ context.Context, key string) (Setting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.rows[key]
	if !ok {
		return Setting{}, ErrNotFound
	}
	return s, nil
}

func (r *MemoryStore) Upsert(_ context.Context, key string, enabled bool) (Setting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := Setting{Key: key, Enabled: enabled, UpdatedAt: time.Now()}
	r.rows[key] = s
	return s, nil
}

func (r *MemoryStore) List(_ context.Context) ([]Setting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Setting, 0, len(r.rows))
	for _, s := range r.rows {
		out = append(out, s)
	}
	return out, nil
}

var (
	_ Store = (*PostgresStore)(nil)
	_ Store = (*MemoryStore)(nil)
)
