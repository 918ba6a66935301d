// Package transport defines the request and response DTOs for the
// leads HTTP surface.
package transport

import (
	"time"

	"agency_portal_backend/internal/leads/repository"

	"github.com/google/uuid"
)

// CreateLeadRequest captures a new lead through the authenticated API.
type CreateLeadRequest struct {
	Name    string `json:"name" validate:"required,min=1,max=200"`
	Email   string `json:"email,omitempty" validate:"omitempty,email"`
	Phone   string `json:"phone,omitempty" validate:"omitempty,min=5,max=32"`
	Company string `json:"company,omitempty" validate:"omitempty,max=200"`
	Message string `json:"message,omitempty" validate:"omitempty,max=2000"`
	Source  string `json:"source,omitempty" validate:"omitempty,max=64"`
}

// UpdateLeadRequest applies a partial lead update.
type UpdateLeadRequest struct {
	Name    *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Email   *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone   *string `json:"phone,omitempty" validate:"omitempty,min=5,max=32"`
	Company *string `json:"company,omitempty" validate:"omitempty,max=200"`
	Message *string `json:"message,omitempty" validate:"omitempty,max=2000"`
}

// LeadResponse is the lead's wire representation.
type LeadResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     *string   `json:"email,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	Company   *string   `json:"company,omitempty"`
	Message   *string   `json:"message,omitempty"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FromLead maps a repository row to its response shape.
func FromLead(lead repository.Lead) LeadResponse {
	return LeadResponse{
		ID:        lead.ID,
		Name:      lead.Name,
		Email:     lead.Email,
		Phone:     lead.Phone,
		Company:   lead.Company,
		Message:   lead.Message,
		Source:    lead.Source,
		CreatedAt: lead.CreatedAt,
		UpdatedAt: lead.UpdatedAt,
	}
}

// FromLeads maps a lead slice preserving order.
func FromLeads(leads []repository.Lead) []LeadResponse {
	out := make([]LeadResponse, 0, len(leads))
	for _, lead := range leads {
		out = append(out, FromLead(lead))
	}
	return out
}
