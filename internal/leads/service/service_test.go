package service

import (
	"context"
	"sync"
	"testing"

	"agency_portal_backend/internal/events"
	"agency_portal_backend/internal/leads/repository"
	"agency_portal_backend/platform/apperr"

	"github.com/google/uuid"
)

type recordingBus struct {
	mu     sync.Mutex
	events []events.Event
}

func (b *recordingBus) Publish(_ context.Context, e events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, e)
}

func (b *recordingBus) PublishSync(ctx context.Context, e events.Event) error {
	b.Publish(ctx, e)
	return nil
}

func (b *recordingBus) Subscribe(string, events.Handler) {}

func TestCapture_NormalizesPhoneAndPublishesEvent(t *testing.T) {
	bus := &recordingBus{}
	svc := New(repository.NewMemory(), bus)

	lead, err := svc.Capture(context.Background(), CaptureParams{
		Name:   "Dana Whitfield",
		Email:  "dana@example.com",
		Phone:  "(212) 555-0134",
		Source: "contact_form",
	})
	if err != nil {
		t.Fatalf("capture failed: %v", err)
	}

	if lead.Phone == nil || *lead.Phone != "+12125550134" {
		t.Fatalf("expected normalized phone, got %v", lead.Phone)
	}
	if lead.Company != nil {
		t.Fatalf("blank company must persist as null, got %v", lead.Company)
	}

	bus.mu.Lock()
	defer bus.mu.Unlock()
	if len(bus.events) != 1 {
		t.Fatalf("expected 1 published event, got %d", len(bus.events))
	}
	captured, ok := bus.events[0].(events.LeadCaptured)
	if !ok {
		t.Fatalf("expected LeadCaptured event, got %T", bus.events[0])
	}
	if captured.LeadID != lead.ID || captured.Phone != "+12125550134" {
		t.Fatalf("event payload mismatch: %+v", captured)
	}
}

func TestCapture_RequiresName(t *testing.T) {
	svc := New(repository.NewMemory(), &recordingBus{})

	_, err := svc.Capture(context.Background(), CaptureParams{Name: "   "})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCapture_DefaultsSource(t *testing.T) {
	svc := New(repository.NewMemory(), &recordingBus{})

	lead, err := svc.Capture(context.Background(), CaptureParams{Name: "Ash Vance"})
	if err != nil {
		t.Fatalf("capture failed: %v", err)
	}
	if lead.Source != "manual" {
		t.Fatalf("expected default source 'manual', got %q", lead.Source)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	svc := New(repository.NewMemory(), &recordingBus{})

	_, err := svc.GetByID(context.Background(), uuid.New())
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestUpdate_NormalizesPhone(t *testing.T) {
	store := repository.NewMemory()
	svc := New(store, &recordingBus{})

	lead, err := svc.Capture(context.Background(), CaptureParams{Name: "Ash Vance"})
	if err != nil {
		t.Fatalf("capture failed: %v", err)
	}

	newPhone := "212 555 0178"
	updated, err := svc.Update(context.Background(), lead.ID, repository.UpdateLeadParams{Phone: &newPhone})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Phone == nil || *updated.Phone != "+12125550178" {
		t.Fatalf("expected normalized phone on update, got %v", updated.Phone)
	}
}
