// Package transport defines the request and response DTOs for the
// milestones HTTP surface.
package transport

import (
	"time"

	"agency_portal_backend/internal/milestones/repository"
	"agency_portal_backend/internal/milestones/service"

	"github.com/google/uuid"
)

// CreateMilestoneRequest explicitly creates a milestone row for a
// canonical stage. Title and description are optional; blank values
// fall back to the canonical text.
type CreateMilestoneRequest struct {
	StageID     string `json:"stageId" validate:"required,min=1,max=64"`
	Title       string `json:"title,omitempty" validate:"omitempty,max=200"`
	Description string `json:"description,omitempty" validate:"omitempty,max=1000"`
	Completed   bool   `json:"completed"`
}

// UpdateMilestoneRequest sets the completion state of a milestone row.
type UpdateMilestoneRequest struct {
	Completed *bool `json:"completed" validate:"required"`
}

// MilestoneResponse is the persisted-record view.
type MilestoneResponse struct {
	ID          uuid.UUID  `json:"id"`
	LeadID      uuid.UUID  `json:"leadId"`
	StageID     string     `json:"stageId"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// ProgressResponse wraps the merged lifecycle view.
type ProgressResponse struct {
	LeadID uuid.UUID               `json:"leadId"`
	Stages []service.StageProgress `json:"stages"`
}

// AdvanceResponse reports the outcome of an advance call. Done is true
// and Stage nil once the lifecycle is fully complete.
type AdvanceResponse struct {
	Done  bool                   `json:"done"`
	Stage *service.StageProgress `json:"stage,omitempty"`
}

// FromMilestone maps a repository row to its response shape.
func FromMilestone(m repository.Milestone) MilestoneResponse {
	return MilestoneResponse{
		ID:          m.ID,
		LeadID:      m.LeadID,
		StageID:     m.StageID,
		Title:       m.Title,
		Description: m.Description,
		Completed:   m.Completed,
		CompletedAt: m.CompletedAt,
		CreatedAt:   m.CreatedAt,
	}
}

// FromMilestones maps a row slice preserving order.
func FromMilestones(rows []repository.Milestone) []MilestoneResponse {
	out := make([]MilestoneResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromMilestone(row))
	}
	return out
}
