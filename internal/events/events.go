// Package events defines the domain events exchanged between modules.
// Bus infrastructure lives in platform/events.
package events

import (
	"agency_portal_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types so modules import a single events package.
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform constructors.
var (
	NewBaseEvent   = events.NewBaseEvent
	NewInMemoryBus = events.NewInMemoryBus
)

// LeadCaptured is published when a new lead enters the system, whether
// through the API or the form-capture webhook.
type LeadCaptured struct {
	BaseEvent
	LeadID uuid.UUID `json:"leadId"`
	Name   string    `json:"name"`
	Email  string    `json:"email,omitempty"`
	Phone  string    `json:"phone,omitempty"`
	Source string    `json:"source,omitempty"`
}

func (e LeadCaptured) EventName() string { return "leads.captured" }

// MilestoneCompleted is published when a lifecycle stage is completed
// for a lead.
type MilestoneCompleted struct {
	BaseEvent
	LeadID      uuid.UUID `json:"leadId"`
	MilestoneID uuid.UUID `json:"milestoneId"`
	StageID     string    `json:"stageId"`
	StageTitle  string    `json:"stageTitle"`
}

func (e MilestoneCompleted) EventName() string { return "milestones.completed" }

// LifecycleCompleted is published when the final canonical stage closes
// and the lead's lifecycle reaches its terminal state.
type LifecycleCompleted struct {
	BaseEvent
	LeadID uuid.UUID `json:"leadId"`
}

func (e LifecycleCompleted) EventName() string { return "milestones.lifecycle.completed" }

// LifecycleReset is published when a lead's lifecycle is reverted to
// its initial stage.
type LifecycleReset struct {
	BaseEvent
	LeadID uuid.UUID `json:"leadId"`
}

func (e LifecycleReset) EventName() string { return "milestones.lifecycle.reset" }

// LeadFollowUpDue is published by the worker when a captured lead has
// made no lifecycle progress past the first stage within the follow-up
// window.
type LeadFollowUpDue struct {
	BaseEvent
	LeadID       uuid.UUID `json:"leadId"`
	CurrentStage string    `json:"currentStage"`
}

func (e LeadFollowUpDue) EventName() string { return "leads.followup.due" }
