// Package service implements lead management for the agency pipeline.
package service

import (
	"context"
	"errors"
	"strings"

	"agency_portal_backend/internal/events"
	"agency_portal_backend/internal/leads/repository"
	"agency_portal_backend/platform/apperr"
	"agency_portal_backend/platform/phone"

	"github.com/google/uuid"
)

// Service owns lead CRUD. The lifecycle subsystem treats lead ids as
// opaque foreign keys; only this service creates and deletes leads.
type Service struct {
	store repository.Store
	bus   events.Bus
}

// New creates the lead management service.
func New(store repository.Store, bus events.Bus) *Service {
	return &Service{store: store, bus: bus}
}

// CaptureParams describe an inbound lead from any capture channel.
type CaptureParams struct {
	Name    string
	Email   string
	Phone   string
	Company string
	Message string
	Source  string
}

// Capture creates a lead and announces it on the event bus. The phone
// number is normalized to E.164 where possible before persisting.
func (s *Service) Capture(ctx context.Context, params CaptureParams) (repository.Lead, error) {
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return repository.Lead{}, apperr.Validation("lead name is required")
	}

	source := params.Source
	if source == "" {
		source = "manual"
	}

	lead, err := s.store.Create(ctx, repository.CreateLeadParams{
		Name:    name,
		Email:   optional(params.Email),
		Phone:   optional(phone.NormalizeE164(params.Phone)),
		Company: optional(params.Company),
		Message: optional(params.Message),
		Source:  source,
	})
	if err != nil {
		return repository.Lead{}, storageErr("leads.Capture", err)
	}

	if s.bus != nil {
		s.bus.Publish(ctx, events.LeadCaptured{
			BaseEvent: events.NewBaseEvent(),
			LeadID:    lead.ID,
			Name:      lead.Name,
			Email:     deref(lead.Email),
			Phone:     deref(lead.Phone),
			Source:    lead.Source,
		})
	}

	return lead, nil
}

// GetByID fetches a single lead.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (repository.Lead, error) {
	lead, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return repository.Lead{}, apperr.NotFound("lead not found")
		}
		return repository.Lead{}, storageErr("leads.GetByID", err)
	}
	return lead, nil
}

// List returns all leads, newest first.
func (s *Service) List(ctx context.Context) ([]repository.Lead, error) {
	leads, err := s.store.List(ctx)
	if err != nil {
		return nil, storageErr("leads.List", err)
	}
	return leads, nil
}

// Update applies a partial lead update.
func (s *Service) Update(ctx context.Context, id uuid.UUID, params repository.UpdateLeadParams) (repository.Lead, error) {
	if params.Phone != nil {
		normalized := phone.NormalizeE164(*params.Phone)
		params.Phone = &normalized
	}

	lead, err := s.store.Update(ctx, id, params)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return repository.Lead{}, apperr.NotFound("lead not found")
		}
		return repository.Lead{}, storageErr("leads.Update", err)
	}
	return lead, nil
}

// Delete removes a lead. Its milestone rows are removed by the
// database cascade; the lifecycle subsystem itself never deletes.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("lead not found")
		}
		return storageErr("leads.Delete", err)
	}
	return nil
}

func optional(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func storageErr(op string, err error) error {
	return apperr.Wrap(apperr.KindInternal, "storage failure", err).WithOp(op)
}
