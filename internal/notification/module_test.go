package notification

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"agency_portal_backend/internal/events"
	leadrepo "agency_portal_backend/internal/leads/repository"
	"agency_portal_backend/internal/milestones/domain"
	"agency_portal_backend/platform/logger"
)

type sentMail struct {
	kind  string
	to    string
	name  string
	extra string
	days  int
}

type testSender struct {
	sent []sentMail
}

func (s *testSender) SendLeadCapturedEmail(_ context.Context, to, name, source, _ string) error {
	s.sent = append(s.sent, sentMail{kind: "lead_captured", to: to, name: name, extra: source})
	return nil
}

func (s *testSender) SendDealWonEmail(_ context.Context, to, name, company string) error {
	s.sent = append(s.sent, sentMail{kind: "deal_won", to: to, name: name, extra: company})
	return nil
}

func (s *testSender) SendFollowUpReminderEmail(_ context.Context, to, name, stage string, days int) error {
	s.sent = append(s.sent, sentMail{kind: "follow_up", to: to, name: name, extra: stage, days: days})
	return nil
}

type fakeToggles struct {
	notifications bool
	followUps     bool
}

func (f fakeToggles) NotificationsEnabled(context.Context) bool { return f.notifications }
func (f fakeToggles) FollowUpReminders(context.Context) bool    { return f.followUps }

type fakeLeads struct {
	lead leadrepo.Lead
}

func (f fakeLeads) GetByID(context.Context, uuid.UUID) (leadrepo.Lead, error) {
	return f.lead, nil
}

func newTestModule(t *testing.T, toggles fakeToggles, lead leadrepo.Lead) (*testSender, events.Bus) {
	t.Helper()
	log := logger.New("test")
	bus := events.NewInMemoryBus(log)
	sender := &testSender{}
	NewModule(bus, sender, toggles, fakeLeads{lead: lead}, "team@agency.test", log)
	return sender, bus
}

func TestLeadCapturedSendsEmail(t *testing.T) {
	sender, bus := newTestModule(t, fakeToggles{notifications: true, followUps: true}, leadrepo.Lead{Name: "Ana Lima"})

	err := bus.PublishSync(context.Background(), events.LeadCaptured{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    uuid.New(),
		Name:      "Ana Lima",
		Source:    "website_form",
	})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}

	if len(sender.sent) != 1 {
		t.Fatalf("got %d emails, want 1", len(sender.sent))
	}
	got := sender.sent[0]
	if got.kind != "lead_captured" || got.to != "team@agency.test" || got.name != "Ana Lima" || got.extra != "website_form" {
		t.Fatalf("unexpected email: %+v", got)
	}
}

func TestNotificationsDisabledSuppressesAll(t *testing.T) {
	sender, bus := newTestModule(t, fakeToggles{notifications: false, followUps: true}, leadrepo.Lead{Name: "Ana Lima"})

	ctx := context.Background()
	_ = bus.PublishSync(ctx, events.LeadCaptured{BaseEvent: events.NewBaseEvent(), LeadID: uuid.New(), Name: "Ana"})
	_ = bus.PublishSync(ctx, events.MilestoneCompleted{BaseEvent: events.NewBaseEvent(), LeadID: uuid.New(), StageID: domain.StageClosedWon})
	_ = bus.PublishSync(ctx, events.LeadFollowUpDue{BaseEvent: events.NewBaseEvent(), LeadID: uuid.New(), CurrentStage: domain.StageQualification})

	if len(sender.sent) != 0 {
		t.Fatalf("expected no emails while disabled, got %+v", sender.sent)
	}
}

func TestOnlyClosedWonTriggersDealEmail(t *testing.T) {
	company := "Lima & Co"
	sender, bus := newTestModule(t, fakeToggles{notifications: true, followUps: true}, leadrepo.Lead{Name: "Ana Lima", Company: &company})

	ctx := context.Background()
	for _, stage := range []string{domain.StageQualification, domain.StageProposal, domain.StageClosedWon, domain.StageOnboarding} {
		err := bus.PublishSync(ctx, events.MilestoneCompleted{
			BaseEvent: events.NewBaseEvent(),
			LeadID:    uuid.New(),
			StageID:   stage,
		})
		if err != nil {
			t.Fatalf("publish %s: %v", stage, err)
		}
	}

	if len(sender.sent) != 1 {
		t.Fatalf("got %d emails, want 1", len(sender.sent))
	}
	if sender.sent[0].kind != "deal_won" || sender.sent[0].extra != "Lima & Co" {
		t.Fatalf("unexpected email: %+v", sender.sent[0])
	}
}

func TestFollowUpHonorsReminderToggle(t *testing.T) {
	lead := leadrepo.Lead{Name: "Ana Lima", CreatedAt: time.Now().Add(-96 * time.Hour)}

	sender, bus := newTestModule(t, fakeToggles{notifications: true, followUps: false}, lead)
	_ = bus.PublishSync(context.Background(), events.LeadFollowUpDue{
		BaseEvent: events.NewBaseEvent(), LeadID: uuid.New(), CurrentStage: domain.StageQualification,
	})
	if len(sender.sent) != 0 {
		t.Fatalf("reminder toggle off should suppress email, got %+v", sender.sent)
	}

	sender, bus = newTestModule(t, fakeToggles{notifications: true, followUps: true}, lead)
	err := bus.PublishSync(context.Background(), events.LeadFollowUpDue{
		BaseEvent: events.NewBaseEvent(), LeadID: uuid.New(), CurrentStage: domain.StageQualification,
	})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("got %d emails, want 1", len(sender.sent))
	}
	got := sender.sent[0]
	if got.kind != "follow_up" || got.extra != "Qualification" || got.days != 4 {
		t.Fatalf("unexpected email: %+v", got)
	}
}
