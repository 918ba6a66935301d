// Package repository provides durable storage for milestone records.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a milestone id does not exist.
	ErrNotFound = errors.New("milestone not found")
	// ErrDuplicateStage is returned when a row already exists for the
	// (lead, stage) pair. Callers recover by re-reading and updating.
	ErrDuplicateStage = errors.New("milestone already exists for stage")
)

// Milestone is one persisted lifecycle record for a lead. Title and
// description are copied from the canonical stage at creation time so
// history survives later copy changes.
type Milestone struct {
	ID          uuid.UUID
	LeadID      uuid.UUID
	StageID     string
	Title       string
	Description string
	Completed   bool
	CompletedAt *time.Time
	CreatedAt   time.Time
}

// CreateParams are the caller-supplied fields for a new milestone row.
type CreateParams struct {
	LeadID      uuid.UUID
	StageID     string
	Title       string
	Description string
	Completed   bool
	CompletedAt *time.Time
}

// Store is the milestone persistence contract. The Postgres
// implementation backs normal operation; the memory implementation
// backs demo mode and tests.
type Store interface {
	// Create inserts a milestone row, assigning id and created_at.
	// A second row for the same (lead, stage) pair fails with
	// ErrDuplicateStage.
	Create(ctx context.Context, params CreateParams) (Milestone, error)
	// UpdateCompletion sets only the completion state of a row.
	// completedAt must be non-nil exactly when completed is true.
	UpdateCompletion(ctx context.Context, id uuid.UUID, completed bool, completedAt *time.Time) (Milestone, error)
	// GetByID fetches a single row.
	GetByID(ctx context.Context, id uuid.UUID) (Milestone, error)
	// GetByLeadAndStage fetches the row for one lead and stage, or
	// ErrNotFound.
	GetByLeadAndStage(ctx context.Context, leadID uuid.UUID, stageID string) (Milestone, error)
	// ListByLead returns all rows for a lead in insertion order.
	ListByLead(ctx context.Context, leadID uuid.UUID) ([]Milestone, error)
}
