package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"agency_portal_backend/internal/events"
	"agency_portal_backend/internal/milestones/domain"
	"agency_portal_backend/internal/milestones/repository"
	"agency_portal_backend/platform/apperr"

	"github.com/google/uuid"
)

// recordingBus captures published events synchronously.
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

func (b *recordingBus) named(name string) []events.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []events.Event
	for _, e := range b.events {
		if e.EventName() == name {
			out = append(out, e)
		}
	}
	return out
}

// tickingClock hands out strictly increasing timestamps.
type tickingClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTickingClock() *tickingClock {
	return &tickingClock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *tickingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Minute)
	return c.t
}

func newTestService(t *testing.T) (*Service, *repository.Memory, *recordingBus) {
	t.Helper()
	store := repository.NewMemory()
	bus := &recordingBus{}
	svc := New(store, bus)
	svc.SetClock(newTickingClock().Now)
	return svc, store, bus
}

func TestGetProgress_FreshLeadReturnsAllStagesIncomplete(t *testing.T) {
	svc, _, _ := newTestService(t)
	leadID := uuid.New()

	progress, err := svc.GetProgress(context.Background(), leadID)
	if err != nil {
		t.Fatalf("GetProgress failed: %v", err)
	}
	if len(progress) != 7 {
		t.Fatalf("expected 7 stages, got %d", len(progress))
	}

	stages := domain.Stages()
	for i, entry := range progress {
		if entry.StageID != stages[i].ID {
			t.Fatalf("stage %d: expected %s, got %s", i, stages[i].ID, entry.StageID)
		}
		if entry.Completed || entry.CompletedAt != nil || entry.MilestoneID != nil {
			t.Fatalf("fresh lead stage %s must be untouched: %+v", entry.StageID, entry)
		}
	}
}

func TestGetProgress_IsIdempotent(t *testing.T) {
	svc, _, _ := newTestService(t)
	leadID := uuid.New()

	if _, err := svc.Advance(context.Background(), leadID); err != nil {
		t.Fatalf("advance failed: %v", err)
	}

	first, err := svc.GetProgress(context.Background(), leadID)
	if err != nil {
		t.Fatalf("first GetProgress failed: %v", err)
	}
	second, err := svc.GetProgress(context.Background(), leadID)
	if err != nil {
		t.Fatalf("second GetProgress failed: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("length changed between reads: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].StageID != second[i].StageID || first[i].Completed != second[i].Completed {
			t.Fatalf("stage %d differs between reads: %+v vs %+v", i, first[i], second[i])
		}
		a, b := first[i].CompletedAt, second[i].CompletedAt
		if (a == nil) != (b == nil) || (a != nil && !a.Equal(*b)) {
			t.Fatalf("stage %d completedAt differs between reads", i)
		}
	}
}

func TestAdvance_CompletesStagesInCanonicalOrder(t *testing.T) {
	svc, _, _ := newTestService(t)
	leadID := uuid.New()
	stages := domain.Stages()

	var last time.Time
	for i, stage := range stages {
		got, err := svc.Advance(context.Background(), leadID)
		if err != nil {
			t.Fatalf("advance %d failed: %v", i, err)
		}
		if got == nil {
			t.Fatalf("advance %d returned nil before lifecycle completed", i)
		}
		if got.StageID != stage.ID {
			t.Fatalf("advance %d: expected stage %s, got %s", i, stage.ID, got.StageID)
		}
		if !got.Completed || got.CompletedAt == nil {
			t.Fatalf("advance %d: stage not marked complete: %+v", i, got)
		}
		if !got.CompletedAt.After(last) {
			t.Fatalf("advance %d: completion timestamps must increase", i)
		}
		last = *got.CompletedAt
	}

	done, err := svc.Advance(context.Background(), leadID)
	if err != nil {
		t.Fatalf("terminal advance failed: %v", err)
	}
	if done != nil {
		t.Fatalf("expected nil after all stages complete, got %+v", done)
	}
}

func TestAdvance_CreateThenDirectFetchAgrees(t *testing.T) {
	svc, store, _ := newTestService(t)
	leadID := uuid.New()

	got, err := svc.Advance(context.Background(), leadID)
	if err != nil {
		t.Fatalf("advance failed: %v", err)
	}

	row, err := store.GetByLeadAndStage(context.Background(), leadID, got.StageID)
	if err != nil {
		t.Fatalf("direct fetch failed: %v", err)
	}
	if !row.Completed || row.CompletedAt == nil {
		t.Fatalf("persisted row must be complete with timestamp: %+v", row)
	}
	if row.Title == "" || row.Description == "" {
		t.Fatalf("canonical text must be denormalized onto the row: %+v", row)
	}
}

func TestAdvance_PublishesCompletionEvents(t *testing.T) {
	svc, _, bus := newTestService(t)
	leadID := uuid.New()

	for i := 0; i < domain.StageCount(); i++ {
		if _, err := svc.Advance(context.Background(), leadID); err != nil {
			t.Fatalf("advance %d failed: %v", i, err)
		}
	}

	completed := bus.named(events.MilestoneCompleted{}.EventName())
	if len(completed) != 7 {
		t.Fatalf("expected 7 MilestoneCompleted events, got %d", len(completed))
	}
	terminal := bus.named(events.LifecycleCompleted{}.EventName())
	if len(terminal) != 1 {
		t.Fatalf("expected 1 LifecycleCompleted event, got %d", len(terminal))
	}
}

func TestReset_KeepsFirstStageAndRowCount(t *testing.T) {
	svc, store, _ := newTestService(t)
	leadID := uuid.New()

	// complete the first three stages
	for i := 0; i < 3; i++ {
		if _, err := svc.Advance(context.Background(), leadID); err != nil {
			t.Fatalf("advance %d failed: %v", i, err)
		}
	}

	before, _ := store.ListByLead(context.Background(), leadID)
	if err := svc.Reset(context.Background(), leadID); err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	after, err := store.ListByLead(context.Background(), leadID)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	if len(after) != len(before) {
		t.Fatalf("reset must not delete rows: %d before, %d after", len(before), len(after))
	}

	progress, err := svc.GetProgress(context.Background(), leadID)
	if err != nil {
		t.Fatalf("GetProgress failed: %v", err)
	}
	for _, entry := range progress {
		if entry.StageID == domain.FirstStageID() {
			if !entry.Completed || entry.CompletedAt == nil {
				t.Fatalf("first stage must survive reset: %+v", entry)
			}
			continue
		}
		if entry.Completed || entry.CompletedAt != nil {
			t.Fatalf("stage %s must be reverted by reset: %+v", entry.StageID, entry)
		}
	}

	// advancing after reset resumes from the second stage
	next, err := svc.Advance(context.Background(), leadID)
	if err != nil {
		t.Fatalf("advance after reset failed: %v", err)
	}
	if next.StageID != domain.StageQualification {
		t.Fatalf("expected advance to resume at qualification, got %s", next.StageID)
	}
}

// raceStore simulates a concurrent Advance: the insert fails with a
// uniqueness violation because another writer created the row (still
// incomplete) between our read and write.
type raceStore struct {
	repository.Store
	raced bool
}

func (s *raceStore) Create(ctx context.Context, params repository.CreateParams) (repository.Milestone, error) {
	if !s.raced {
		s.raced = true
		shadow := params
		shadow.Completed = false
		shadow.CompletedAt = nil
		if _, err := s.Store.Create(ctx, shadow); err != nil {
			return repository.Milestone{}, err
		}
		return repository.Milestone{}, repository.ErrDuplicateStage
	}
	return s.Store.Create(ctx, params)
}

func TestAdvance_RecoversFromDuplicateCreateRace(t *testing.T) {
	mem := repository.NewMemory()
	store := &raceStore{Store: mem}
	svc := New(store, &recordingBus{})
	svc.SetClock(newTickingClock().Now)
	leadID := uuid.New()

	got, err := svc.Advance(context.Background(), leadID)
	if err != nil {
		t.Fatalf("advance should recover from the insert race: %v", err)
	}
	if got.StageID != domain.StageLeadCapture || !got.Completed || got.CompletedAt == nil {
		t.Fatalf("expected completed lead_capture after recovery, got %+v", got)
	}

	rows, _ := mem.ListByLead(context.Background(), leadID)
	if len(rows) != 1 {
		t.Fatalf("expected a single row for the raced stage, got %d", len(rows))
	}
}

func TestComplete_RejectsSkippingAhead(t *testing.T) {
	svc, store, _ := newTestService(t)
	leadID := uuid.New()

	// only lead_capture is complete; a proposal row exists but its
	// predecessor (discovery_call) does not
	if _, err := svc.Advance(context.Background(), leadID); err != nil {
		t.Fatalf("advance failed: %v", err)
	}
	row, err := store.Create(context.Background(), repository.CreateParams{
		LeadID:  leadID,
		StageID: domain.StageProposal,
		Title:   "Proposal sent",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	_, err = svc.Complete(context.Background(), row.ID, true)
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for out-of-order completion, got %v", err)
	}
}

func TestComplete_AllowsNextStageAndKeepsTimestampSemantics(t *testing.T) {
	svc, store, _ := newTestService(t)
	leadID := uuid.New()

	if _, err := svc.Advance(context.Background(), leadID); err != nil {
		t.Fatalf("advance failed: %v", err)
	}
	row, err := store.Create(context.Background(), repository.CreateParams{
		LeadID:  leadID,
		StageID: domain.StageQualification,
		Title:   "Qualification",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	updated, err := svc.Complete(context.Background(), row.ID, true)
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if !updated.Completed || updated.CompletedAt == nil {
		t.Fatalf("expected completed row with timestamp: %+v", updated)
	}

	// completing an already-complete row is a no-op keeping the timestamp
	again, err := svc.Complete(context.Background(), row.ID, true)
	if err != nil {
		t.Fatalf("repeat complete failed: %v", err)
	}
	if !again.CompletedAt.Equal(*updated.CompletedAt) {
		t.Fatalf("repeat completion must not move completed_at")
	}

	// clearing drops the timestamp with the flag
	cleared, err := svc.Complete(context.Background(), row.ID, false)
	if err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if cleared.Completed || cleared.CompletedAt != nil {
		t.Fatalf("expected cleared completion: %+v", cleared)
	}
}

func TestComplete_UnknownMilestone(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Complete(context.Background(), uuid.New(), true)
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestCreateRecord_ValidatesStageAndDuplicates(t *testing.T) {
	svc, _, _ := newTestService(t)
	leadID := uuid.New()

	if _, err := svc.CreateRecord(context.Background(), repository.CreateParams{LeadID: leadID, StageID: "retention"}); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for unknown stage, got %v", err)
	}

	created, err := svc.CreateRecord(context.Background(), repository.CreateParams{LeadID: leadID, StageID: domain.StageLeadCapture, Completed: true})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.Title != "Lead captured" {
		t.Fatalf("expected canonical title fallback, got %q", created.Title)
	}
	if created.CompletedAt == nil {
		t.Fatalf("completed record must carry a timestamp")
	}

	_, err = svc.CreateRecord(context.Background(), repository.CreateParams{LeadID: leadID, StageID: domain.StageLeadCapture})
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict for duplicate stage, got %v", err)
	}
}

func TestStorageFailuresSurfaceAsInternal(t *testing.T) {
	svc := New(failingStore{}, &recordingBus{})

	_, err := svc.GetProgress(context.Background(), uuid.New())
	if !apperr.Is(err, apperr.KindInternal) {
		t.Fatalf("expected internal error, got %v", err)
	}
}

type failingStore struct{}

var errConnLost = errors.New("connection reset")

func (failingStore) Create(context.Context, repository.CreateParams) (repository.Milestone, error) {
	return repository.Milestone{}, errConnLost
}

func (failingStore) UpdateCompletion(context.Context, uuid.UUID, bool, *time.Time) (repository.Milestone, error) {
	return repository.Milestone{}, errConnLost
}

func (failingStore) GetByID(context.Context, uuid.UUID) (repository.Milestone, error) {
	return repository.Milestone{}, errConnLost
}

func (failingStore) GetByLeadAndStage(context.Context, uuid.UUID, string) (repository.Milestone, error) {
	return repository.Milestone{}, errConnLost
}

func (failingStore) ListByLead(context.Context, uuid.UUID) ([]repository.Milestone, error) {
	return nil, errConnLost
}
