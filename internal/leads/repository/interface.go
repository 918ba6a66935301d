// Package repository provides durable storage for leads.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a lead id does not exist.
var ErrNotFound = errors.New("lead not found")

// Lead is a captured prospect in the agency pipeline.
type Lead struct {
	ID        uuid.UUID
	Name      string
	Email     *string
	Phone     *string
	Company   *string
	Message   *string
	Source    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateLeadParams are the caller-supplied fields for a new lead.
type CreateLeadParams struct {
	Name    string
	Email   *string
	Phone   *string
	Company *string
	Message *string
	Source  string
}

// UpdateLeadParams are the optional fields of a lead update; nil
// fields are left untouched.
type UpdateLeadParams struct {
	Name    *string
	Email   *string
	Phone   *string
	Company *string
	Message *string
}

// Store is the lead persistence contract.
type Store interface {
	Create(ctx context.Context, params CreateLeadParams) (Lead, error)
	GetByID(ctx context.Context, id uuid.UUID) (Lead, error)
	List(ctx context.Context) ([]Lead, error)
	Update(ctx context.Context, id uuid.UUID, params UpdateLeadParams) (Lead, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
