// Package webhook provides the form-capture bounded context: API key
// management and inbound contact-form submissions from the agency's
// marketing sites.
package webhook

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrAPIKeyNotFound is returned when no active key matches a hash.
var ErrAPIKeyNotFound = errors.New("webhook API key not found")

// APIKey is a stored webhook credential. Only the hash is persisted;
// the plaintext is shown once at creation time.
type APIKey struct {
	ID             uuid.UUID
	Name           string
	KeyHash        string
	KeyPrefix      string
	AllowedDomains []string
	IsActive       bool
	CreatedAt      time.Time
}

// Store is the API key persistence contract.
type Store interface {
	Create(ctx context.Context, key APIKey) (APIKey, error)
	GetByHash(ctx context.Context, hash string) (APIKey, error)
	List(ctx context.Context) ([]APIKey, error)
}

// GenerateAPIKey creates a random key, returning the plaintext, its
// hash, and a display prefix.
func GenerateAPIKey() (plaintext string, hash string, prefix string, err error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", "", "", err
	}
	plaintext = "whk_" + hex.EncodeToString(bytes)
	prefix = plaintext[:12]
	return plaintext, HashKey(plaintext), prefix, nil
}

// HashKey hashes a plaintext API key for storage and lookup.
func HashKey(plaintext string) string {
	h := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(h[:])
}

// PostgresStore is the production API key store.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a Postgres-backed API key store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (r *PostgresStore) Create(ctx context.Context, key APIKey) (APIKey, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO webhook_api_keys (name, key_hash, key_prefix, allowed_domains, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, key.Name, key.KeyHash, key.KeyPrefix, key.AllowedDomains, key.IsActive).Scan(&key.ID, &key.CreatedAt)
	if err != nil {
		return APIKey{}, err
	}
	return key, nil
}

func (r *PostgresStore) GetByHash(ctx context.Context, hash string) (APIKey, error) {
	var key APIKey
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, key_hash, key_prefix, allowed_domains, is_active, created_at
		FROM webhook_api_keys
		WHERE key_hash = $1 AND is_active = true
	`, hash).Scan(&key.ID, &key.Name, &key.KeyHash, &key.KeyPrefix, &key.AllowedDomains, &key.IsActive, &key.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return APIKey{}, ErrAPIKeyNotFound
		}
		return APIKey{}, err
	}
	return key, nil
}

func (r *PostgresStore) List(ctx context.Context) ([]APIKey, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, key_hash, key_prefix, allowed_domains, is_active, created_at
		FROM webhook_api_keys
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	keys := make([]APIKey, 0)
	for rows.Next() {
		var key APIKey
		if err := rows.Scan(&key.ID, &key.Name, &key.KeyHash, &key.KeyPrefix, &key.AllowedDomains, &key.IsActive, &key.CreatedAt); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return keys, nil
}

// MemoryStore is an in-process API key store for demo mode and tests.
type MemoryStore struct {
	mu   sync.Mutex
	keys []APIKey
}

// NewMemoryStore creates an empty in-memory API key store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (r *MemoryStore) Create(_ context.Context, key APIKey) (APIKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key.ID = uuid.New()
	key.CreatedAt = time.Now()
	r.keys = append(r.keys, key)
	return key, nil
}

func (r *MemoryStore) GetByHash(_ context.Context, hash string) (APIKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, key := range r.keys {
		if key.KeyHash == hash && key.IsActive {
			return key, nil
		}
	}
	return APIKey{}, ErrAPIKeyNotFound
}

func (r *MemoryStore) List(_ context.Context) ([]APIKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]APIKey, len(r.keys))
	copy(out, r.keys)
	return out, nil
}

var (
	_ Store = (*PostgresStore)(nil)
	_ Store = (*MemoryStore)(nil)
)
