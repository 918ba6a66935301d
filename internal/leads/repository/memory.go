package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory is an in-process lead store used in demo mode and tests.
type Memory struct {
	mu    sync.Mutex
	leads map[uuid.UUID]Lead
}

// NewMemory creates an empty in-memory lead store.
func NewMemory() *Memory {
	return &Memory{leads: make(map[uuid.UUID]Lead)}
}

func (r *Memory) Create(_ context.Context, params CreateLeadParams) (Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	lead := Lead{
		ID:        uuid.New(),
		Name:      params.Name,
		Email:     params.Email,
		Phone:     params.Phone,
		Company:   params.Company,
		Message:   params.Message,
		Source:    params.Source,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.leads[lead.ID] = lead
	return lead, nil
}

func (r *Memory) GetByID(_ context.Context, id uuid.UUID) (Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	lead, ok := r.leads[id]
	if !ok {
		return Lead{}, ErrNotFound
	}
	return lead, nil
}

func (r *Memory) List(_ context.Context) ([]Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Lead, 0, len(r.leads))
	for _, lead := range r.leads {
		out = append(out, lead)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *Memory) Update(_ context.Context, id uuid.UUID, params UpdateLeadParams) (Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	lead, ok := r.leads[id]
	if !ok {
		return Lead{}, ErrNotFound
	}

	if params.Name != nil {
		lead.Name = *params.Name
	}
	if params.Email != nil {
		lead.Email = params.Email
	}
	if params.Phone != nil {
		lead.Phone = params.Phone
	}
	if params.Company != nil {
		lead.Company = params.Company
	}
	if params.Message != nil {
		lead.Message = params.Message
	}
	lead.UpdatedAt = time.Now()

	r.leads[id] = lead
	return lead, nil
}

func (r *Memory) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.leads[id]; !ok {
		return ErrNotFound
	}
	delete(r.leads, id)
	return nil
}

var _ Store = (*Memory)(nil)
