package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory is an in-process Store used in demo mode and tests. It keeps
// the same uniqueness and not-found semantics as the Postgres store.
type Memory struct {
	mu   sync.Mutex
	rows []Milestone
	now  func() time.Time
}

// NewMemory creates an empty in-memory milestone store.
func NewMemory() *Memory {
	return &Memory{now: time.Now}
}

// SetClock overrides the creation timestamp source. Test hook.
func (r *Memory) SetClock(now func() time.Time) {
	r.now = now
}

func (r *Memory) Create(_ context.Context, params CreateParams) (Milestone, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, row := range r.rows {
		if row.LeadID == params.LeadID && row.StageID == params.StageID {
			return Milestone{}, ErrDuplicateStage
		}
	}

	m := Milestone{
		ID:          uuid.New(),
		LeadID:      params.LeadID,
		StageID:     params.StageID,
		Title:       params.Title,
		Description: params.Description,
		Completed:   params.Completed,
		CompletedAt: copyTime(params.CompletedAt),
		CreatedAt:   r.now(),
	}
	r.rows = append(r.rows, m)
	return m, nil
}

func (r *Memory) UpdateCompletion(_ context.Context, id uuid.UUID, completed bool, completedAt *time.Time) (Milestone, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.rows {
		if r.rows[i].ID == id {
			r.rows[i].Completed = completed
			r.rows[i].CompletedAt = copyTime(completedAt)
			return r.rows[i], nil
		}
	}
	return Milestone{}, ErrNotFound
}

func (r *Memory) GetByID(_ context.Context, id uuid.UUID) (Milestone, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, row := range r.rows {
		if row.ID == id {
			return row, nil
		}
	}
	return Milestone{}, ErrNotFound
}

func (r *Memory) GetByLeadAndStage(_ context.Context, leadID uuid.UUID, stageID string) (Milestone, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, row := range r.rows {
		if row.LeadID == leadID && row.StageID == stageID {
			return row, nil
		}
	}
	return Milestone{}, ErrNotFound
}

func (r *Memory) ListByLead(_ context.Context, leadID uuid.UUID) ([]Milestone, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// rows is append-only, so slice order is insertion order
	out := make([]Milestone, 0)
	for _, row := range r.rows {
		if row.LeadID == leadID {
			out = append(out, row)
		}
	}
	return out, nil
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

var _ Store = (*Memory)(nil)
