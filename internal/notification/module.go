// Package notification turns domain events into emails for the agency
// team. It subscribes to the event bus and never exposes HTTP routes.
package notification

import (
	"context"
	"time"

	"github.com/google/uuid"

	"agency_portal_backend/internal/email"
	"agency_portal_backend/internal/events"
	leadrepo "agency_portal_backend/internal/leads/repository"
	"agency_portal_backend/internal/milestones/domain"
	"agency_portal_backend/platform/logger"
)

// Toggles exposes the settings switches this module honors.
type Toggles interface {
	NotificationsEnabled(ctx context.Context) bool
	FollowUpReminders(ctx context.Context) bool
}

// LeadReader resolves lead details for reminder emails.
type LeadReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (leadrepo.Lead, error)
}

// Module wires event subscriptions to the email sender.
type Module struct {
	sender  email.Sender
	toggles Toggles
	leads   LeadReader
	notify  string
	log     *logger.Logger
	now     func() time.Time
}

// NewModule subscribes notification handlers on the bus. notifyAddress
// is the team inbox that receives every pipeline email.
func NewModule(bus events.Bus, sender email.Sender, toggles Toggles, leads LeadReader, notifyAddress string, log *logger.Logger) *Module {
	m := &Module{
		sender:  sender,
		toggles: toggles,
		leads:   leads,
		notify:  notifyAddress,
		log:     log,
		now:     time.Now,
	}

	bus.Subscribe(events.LeadCaptured{}.EventName(), events.HandlerFunc(m.onLeadCaptured))
	bus.Subscribe(events.MilestoneCompleted{}.EventName(), events.HandlerFunc(m.onMilestoneCompleted))
	bus.Subscribe(events.LeadFollowUpDue{}.EventName(), events.HandlerFunc(m.onFollowUpDue))

	return m
}

func (m *Module) onLeadCaptured(ctx context.Context, event events.Event) error {
	e, ok := event.(events.LeadCaptured)
	if !ok {
		return nil
	}
	if !m.enabled(ctx) {
		return nil
	}

	lead, err := m.leads.GetByID(ctx, e.LeadID)
	message := ""
	if err == nil && lead.Message != nil {
		message = *lead.Message
	}

	if err := m.sender.SendLeadCapturedEmail(ctx, m.notify, e.Name, e.Source, message); err != nil {
		m.log.Error("lead captured email failed", "error", err, "leadId", e.LeadID)
		return err
	}
	return nil
}

func (m *Module) onMilestoneCompleted(ctx context.Context, event events.Event) error {
	e, ok := event.(events.MilestoneCompleted)
	if !ok {
		return nil
	}
	// Only the deal-closing stage triggers an email; the rest would be
	// noise for the team inbox.
	if e.StageID != domain.StageClosedWon {
		return nil
	}
	if !m.enabled(ctx) {
		return nil
	}

	lead, err := m.leads.GetByID(ctx, e.LeadID)
	if err != nil {
		m.log.Error("deal won lead lookup failed", "error", err, "leadId", e.LeadID)
		return err
	}

	company := ""
	if lead.Company != nil {
		company = *lead.Company
	}

	if err := m.sender.SendDealWonEmail(ctx, m.notify, lead.Name, company); err != nil {
		m.log.Error("deal won email failed", "error", err, "leadId", e.LeadID)
		return err
	}
	return nil
}

func (m *Module) onFollowUpDue(ctx context.Context, event events.Event) error {
	e, ok := event.(events.LeadFollowUpDue)
	if !ok {
		return nil
	}
	if !m.enabled(ctx) || !m.toggles.FollowUpReminders(ctx) {
		return nil
	}

	lead, err := m.leads.GetByID(ctx, e.LeadID)
	if err != nil {
		m.log.Error("follow-up lead lookup failed", "error", err, "leadId", e.LeadID)
		return err
	}

	stageTitle := e.CurrentStage
	if stage, ok := domain.StageByID(e.CurrentStage); ok {
		stageTitle = stage.Title
	}

	days := int(m.now().Sub(lead.CreatedAt).Hours() / 24)
	if days < 1 {
		days = 1
	}

	if err := m.sender.SendFollowUpReminderEmail(ctx, m.notify, lead.Name, stageTitle, days); err != nil {
		m.log.Error("follow-up email failed", "error", err, "leadId", e.LeadID)
		return err
	}
	return nil
}

func (m *Module) enabled(ctx context.Context) bool {
	return m.toggles == nil || m.toggles.NotificationsEnabled(ctx)
}
