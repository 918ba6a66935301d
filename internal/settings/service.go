package settings

import (
	"context"
	"errors"
	"sort"

	"agency_portal_backend/platform/apperr"
)

// Known toggle keys. Unknown keys are rejected on write and read.
const (
	KeyNotificationsEnabled = "notifications_enabled"
	KeyAutoAdvanceOnCapture = "auto_advance_on_capture"
	KeyFollowUpReminders    = "follow_up_reminders"
)

// defaults apply until a toggle is explicitly written.
var defaults = map[string]bool{
	KeyNotificationsEnabled: true,
	KeyAutoAdvanceOnCapture: true,
	KeyFollowUpReminders:    true,
}

// Service resolves toggles against their defaults.
type Service struct {
	store Store
}

// NewService creates the settings service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Enabled resolves one toggle, falling back to its default when no row
// exists. A storage failure also yields the default so a settings
// lookup can never take down the calling feature.
func (s *Service) Enabled(ctx context.Context, key string) (bool, error) {
	fallback, known := defaults[key]
	if !known {
		return false, apperr.Validation("unknown setting key")
	}

	row, err := s.store.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return fallback, nil
	}
	if err != nil {
		return fallback, nil
	}
	return row.Enabled, nil
}

// Set writes one toggle.
func (s *Service) Set(ctx context.Context, key string, enabled bool) (Setting, error) {
	if _, known := defaults[key]; !known {
		return Setting{}, apperr.Validation("unknown setting key")
	}

	row, err := s.store.Upsert(ctx, key, enabled)
	if err != nil {
		return Setting{}, apperr.Wrap(apperr.KindInternal, "storage failure", err).WithOp("settings.Set")
	}
	return row, nil
}

// All returns every known toggle with persisted values overlaying the
// defaults, sorted by key.
func (s *Service) All(ctx context.Context) ([]Setting, error) {
	rows, err := s.store.List(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "storage failure", err).WithOp("settings.All")
	}

	byKey := make(map[string]Setting, len(rows))
	for _, row := range rows {
		byKey[row.Key] = row
	}

	out := make([]Setting, 0, len(defaults))
	for key, fallback := range defaults {
		if row, ok := byKey[key]; ok {
			out = append(out, row)
			continue
		}
		out = append(out, Setting{Key: key, Enabled: fallback})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// AutoAdvanceOnCapture satisfies the milestones capture policy.
func (s *Service) AutoAdvanceOnCapture(ctx context.Context) bool {
	enabled, err := s.Enabled(ctx, KeyAutoAdvanceOnCapture)
	if err != nil {
		return true
	}
	return enabled
}

// NotificationsEnabled reports whether outbound notifications are on.
func (s *Service) NotificationsEnabled(ctx context.Context) bool {
	enabled, err := s.Enabled(ctx, KeyNotificationsEnabled)
	if err != nil {
		return true
	}
	return enabled
}

// FollowUpReminders reports whether stale-lead reminders are on.
func (s *Service) FollowUpReminders(ctx context.Context) bool {
	enabled, err := s.Enabled(ctx, KeyFollowUpReminders)
	if err != nil {
		return true
	}
	return enabled
}
