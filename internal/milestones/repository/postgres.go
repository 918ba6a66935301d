package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

// Postgres is the production Store backed by the lead_milestones table.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a Postgres-backed milestone store.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (r *Postgres) Create(ctx context.Context, params CreateParams) (Milestone, error) {
	var m Milestone
	err := r.pool.QueryRow(ctx, `
		INSERT INTO lead_milestones (
			lead_id, stage_id, title, description, completed, completed_at
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, lead_id, stage_id, title, description, completed, completed_at, created_at
	`, params.LeadID, params.StageID, params.Title, params.Description, params.Completed, params.CompletedAt).Scan(
		&m.ID,
		&m.LeadID,
		&m.StageID,
		&m.Title,
		&m.Description,
		&m.Completed,
		&m.CompletedAt,
		&m.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return Milestone{}, ErrDuplicateStage
		}
		return Milestone{}, err
	}
	return m, nil
}

func (r *Postgres) UpdateCompletion(ctx context.Context, id uuid.UUID, completed bool, completedAt *time.Time) (Milestone, error) {
	var m Milestone
	err := r.pool.QueryRow(ctx, `
		UPDATE lead_milestones
		SET completed = $2, completed_at = $3
		WHERE id = $1
		RETURNING id, lead_id, stage_id, title, description, completed, completed_at, created_at
	`, id, completed, completedAt).Scan(
		&m.ID,
		&m.LeadID,
		&m.StageID,
		&m.Title,
		&m.Description,
		&m.Completed,
		&m.CompletedAt,
		&m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Milestone{}, ErrNotFound
		}
		return Milestone{}, err
	}
	return m, nil
}

func (r *Postgres) GetByID(ctx context.Context, id uuid.UUID) (Milestone, error) {
	return r.get(ctx, `
		SELECT id, lead_id, stage_id, title, description, completed, completed_at, created_at
		FROM lead_milestones
		WHERE id = $1
	`, id)
}

func (r *Postgres) GetByLeadAndStage(ctx context.Context, leadID uuid.UUID, stageID string) (Milestone, error) {
	return r.get(ctx, `
		SELECT id, lead_id, stage_id, title, description, completed, completed_at, created_at
		FROM lead_milestones
		WHERE lead_id = $1 AND stage_id = $2
	`, leadID, stageID)
}

func (r *Postgres) ListByLead(ctx context.Context, leadID uuid.UUID) ([]Milestone, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, lead_id, stage_id, title, description, completed, completed_at, created_at
		FROM lead_milestones
		WHERE lead_id = $1
		ORDER BY created_at ASC, id ASC
	`, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Milestone, 0)
	for rows.Next() {
		var m Milestone
		if err := rows.Scan(&m.ID, &m.LeadID, &m.StageID, &m.Title, &m.Description, &m.Completed, &m.CompletedAt, &m.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, m)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return items, nil
}

func (r *Postgres) get(ctx context.Context, query string, args ...any) (Milestone, error) {
	var m Milestone
	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&m.ID,
		&m.LeadID,
		&m.StageID,
		&m.Title,
		&m.Description,
		&m.Completed,
		&m.CompletedAt,
		&m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Milestone{}, ErrNotFound
		}
		return Milestone{}, err
	}
	return m, nil
}

var _ Store = (*Postgres)(nil)
