package settings

import (
	"context"
	"testing"

	"agency_portal_backend/platform/apperr"
)

func TestEnabled_FallsBackToDefault(t *testing.T) {
	svc := NewService(NewMemoryStore())

	enabled, err := svc.Enabled(context.Background(), KeyNotificationsEnabled)
	if err != nil {
		t.Fatalf("Enabled failed: %v", err)
	}
	if !enabled {
		t.Fatalf("notifications_enabled must default to true")
	}
}

func TestSet_RoundTrip(t *testing.T) {
	svc := NewService(NewMemoryStore())

	if _, err := svc.Set(context.Background(), KeyAutoAdvanceOnCapture, false); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	enabled, err := svc.Enabled(context.Background(), KeyAutoAdvanceOnCapture)
	if err != nil {
		t.Fatalf("Enabled failed: %v", err)
	}
	if enabled {
		t.Fatalf("expected auto_advance_on_capture to be off after Set(false)")
	}
	if svc.AutoAdvanceOnCapture(context.Background()) {
		t.Fatalf("capture policy must reflect the stored toggle")
	}
}

func TestSet_RejectsUnknownKey(t *testing.T) {
	svc := NewService(NewMemoryStore())

	_, err := svc.Set(context.Background(), "dark_mode", true)
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	if _, err := svc.Enabled(context.Background(), "dark_mode"); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error on read, got %v", err)
	}
}

func TestAll_OverlaysPersistedValues(t *testing.T) {
	svc := NewService(NewMemoryStore())

	if _, err := svc.Set(context.Background(), KeyFollowUpReminders, false); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	rows, err := svc.All(context.Background())
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if len(rows) != len(defaults) {
		t.Fatalf("expected %d settings, got %d", len(defaults), len(rows))
	}

	found := map[string]bool{}
	for _, row := range rows {
		found[row.Key] = row.Enabled
	}
	if found[KeyFollowUpReminders] {
		t.Fatalf("persisted false must overlay the default")
	}
	if !found[KeyNotificationsEnabled] {
		t.Fatalf("unwritten toggles must keep their defaults")
	}
}
