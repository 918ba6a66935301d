// Package service implements the lifecycle controller: it reconciles
// the canonical stage list with persisted milestone rows and drives
// forward-only progression.
package service

import (
	"context"
	"errors"
	"time"

	"agency_portal_backend/internal/events"
	"agency_portal_backend/internal/milestones/domain"
	"agency_portal_backend/internal/milestones/repository"
	"agency_portal_backend/platform/apperr"

	"github.com/google/uuid"
)

// StageProgress is one entry of a lead's merged lifecycle view. For
// stages without a persisted row, MilestoneID is nil and the stage is
// reported as not started.
type StageProgress struct {
	StageID     string     `json:"stageId"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	MilestoneID *uuid.UUID `json:"milestoneId,omitempty"`
}

// Service is the lifecycle controller. The store handle is injected so
// demo mode and tests can substitute the in-memory implementation.
type Service struct {
	store repository.Store
	bus   events.Bus
	now   func() time.Time
}

// New creates a lifecycle controller over the given store.
func New(store repository.Store, bus events.Bus) *Service {
	return &Service{
		store: store,
		bus:   bus,
		now:   time.Now,
	}
}

// SetClock overrides the completion timestamp source. Test hook.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// GetProgress returns the lead's full lifecycle view: every canonical
// stage in order, overlaid with the persisted row where one exists.
// This is a pure merge and performs no writes.
func (s *Service) GetProgress(ctx context.Context, leadID uuid.UUID) ([]StageProgress, error) {
	rows, err := s.store.ListByLead(ctx, leadID)
	if err != nil {
		return nil, storageErr("milestones.GetProgress", err)
	}

	byStage := make(map[string]repository.Milestone, len(rows))
	for _, row := range rows {
		byStage[row.StageID] = row
	}

	stages := domain.Stages()
	progress := make([]StageProgress, 0, len(stages))
	for _, stage := range stages {
		entry := StageProgress{
			StageID:     stage.ID,
			Title:       stage.Title,
			Description: stage.Description,
		}
		if row, ok := byStage[stage.ID]; ok {
			// denormalized text is authoritative once a row exists
			id := row.ID
			entry.MilestoneID = &id
			entry.Title = row.Title
			entry.Description = row.Description
			entry.Completed = row.Completed
			entry.CompletedAt = row.CompletedAt
		}
		progress = append(progress, entry)
	}

	return progress, nil
}

// ListRecords returns the lead's persisted milestone rows in insertion
// order, without the canonical merge.
func (s *Service) ListRecords(ctx context.Context, leadID uuid.UUID) ([]repository.Milestone, error) {
	rows, err := s.store.ListByLead(ctx, leadID)
	if err != nil {
		return nil, storageErr("milestones.ListRecords", err)
	}
	return rows, nil
}

// Advance completes the first incomplete canonical stage for the lead
// and returns its updated view. It returns nil when every stage is
// already complete.
//
// A concurrent Advance for the same lead can race on the lazy row
// creation; the unique index makes the insert fail, and the losing
// caller recovers by re-reading the row and updating it.
func (s *Service) Advance(ctx context.Context, leadID uuid.UUID) (*StageProgress, error) {
	progress, err := s.GetProgress(ctx, leadID)
	if err != nil {
		return nil, err
	}

	var target *StageProgress
	for i := range progress {
		if !progress[i].Completed {
			target = &progress[i]
			break
		}
	}
	if target == nil {
		return nil, nil
	}

	completedAt := s.now()
	var row repository.Milestone
	if target.MilestoneID != nil {
		row, err = s.store.UpdateCompletion(ctx, *target.MilestoneID, true, &completedAt)
	} else {
		row, err = s.createCompleted(ctx, leadID, target.StageID, completedAt)
	}
	if err != nil {
		return nil, err
	}

	s.publishCompleted(ctx, row)
	return s.toProgress(row), nil
}

func (s *Service) createCompleted(ctx context.Context, leadID uuid.UUID, stageID string, completedAt time.Time) (repository.Milestone, error) {
	stage, _ := domain.StageByID(stageID)
	row, err := s.store.Create(ctx, repository.CreateParams{
		LeadID:      leadID,
		StageID:     stage.ID,
		Title:       stage.Title,
		Description: stage.Description,
		Completed:   true,
		CompletedAt: &completedAt,
	})
	if err == nil {
		return row, nil
	}
	if !errors.Is(err, repository.ErrDuplicateStage) {
		return repository.Milestone{}, storageErr("milestones.Advance", err)
	}

	// Lost the insert race: someone else created the row between our
	// read and write. Re-read and complete it in place.
	existing, err := s.store.GetByLeadAndStage(ctx, leadID, stageID)
	if err != nil {
		return repository.Milestone{}, storageErr("milestones.Advance", err)
	}
	if existing.Completed {
		return existing, nil
	}
	row, err = s.store.UpdateCompletion(ctx, existing.ID, true, &completedAt)
	if err != nil {
		return repository.Milestone{}, storageErr("milestones.Advance", err)
	}
	return row, nil
}

// Reset reverts every stage after the first back to incomplete. The
// first stage records the lead's creation event and stays completed.
// Rows are never deleted; only the completion flags change.
func (s *Service) Reset(ctx context.Context, leadID uuid.UUID) error {
	rows, err := s.store.ListByLead(ctx, leadID)
	if err != nil {
		return storageErr("milestones.Reset", err)
	}

	firstStage := domain.FirstStageID()
	for _, row := range rows {
		if row.StageID == firstStage || !row.Completed {
			continue
		}
		if _, err := s.store.UpdateCompletion(ctx, row.ID, false, nil); err != nil {
			return storageErr("milestones.Reset", err)
		}
	}

	if s.bus != nil {
		s.bus.Publish(ctx, events.LifecycleReset{BaseEvent: events.NewBaseEvent(), LeadID: leadID})
	}
	return nil
}

// Complete sets the completion state of a single milestone row. It
// refuses to complete a stage whose canonical predecessor is still
// incomplete, so direct updates cannot skip ahead of Advance.
func (s *Service) Complete(ctx context.Context, milestoneID uuid.UUID, completed bool) (repository.Milestone, error) {
	row, err := s.store.GetByID(ctx, milestoneID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return repository.Milestone{}, apperr.NotFound("milestone not found")
		}
		return repository.Milestone{}, storageErr("milestones.Complete", err)
	}

	if row.Completed == completed {
		return row, nil
	}

	var completedAt *time.Time
	if completed {
		if err := s.checkPredecessor(ctx, row); err != nil {
			return repository.Milestone{}, err
		}
		now := s.now()
		completedAt = &now
	}

	updated, err := s.store.UpdateCompletion(ctx, row.ID, completed, completedAt)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return repository.Milestone{}, apperr.NotFound("milestone not found")
		}
		return repository.Milestone{}, storageErr("milestones.Complete", err)
	}

	if completed {
		s.publishCompleted(ctx, updated)
	}
	return updated, nil
}

// CreateRecord explicitly creates a milestone row for a known canonical
// stage. Blank title or description fall back to the canonical text.
func (s *Service) CreateRecord(ctx context.Context, params repository.CreateParams) (repository.Milestone, error) {
	stage, ok := domain.StageByID(params.StageID)
	if !ok {
		return repository.Milestone{}, apperr.Validation("unknown stage id")
	}
	if params.Title == "" {
		params.Title = stage.Title
	}
	if params.Description == "" {
		params.Description = stage.Description
	}
	if params.Completed && params.CompletedAt == nil {
		now := s.now()
		params.CompletedAt = &now
	}
	if !params.Completed {
		params.CompletedAt = nil
	}

	row, err := s.store.Create(ctx, params)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateStage) {
			return repository.Milestone{}, apperr.Conflict("milestone already exists for this stage")
		}
		return repository.Milestone{}, storageErr("milestones.CreateRecord", err)
	}

	if row.Completed {
		s.publishCompleted(ctx, row)
	}
	return row, nil
}

func (s *Service) checkPredecessor(ctx context.Context, row repository.Milestone) error {
	prevID, ok := domain.PredecessorID(row.StageID)
	if !ok {
		return nil
	}
	prev, err := s.store.GetByLeadAndStage(ctx, row.LeadID, prevID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.Validation("previous stage is not completed")
	}
	if err != nil {
		return storageErr("milestones.Complete", err)
	}
	if !prev.Completed {
		return apperr.Validation("previous stage is not completed")
	}
	return nil
}

func (s *Service) publishCompleted(ctx context.Context, row repository.Milestone) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(ctx, events.MilestoneCompleted{
		BaseEvent:   events.NewBaseEvent(),
		LeadID:      row.LeadID,
		MilestoneID: row.ID,
		StageID:     row.StageID,
		StageTitle:  row.Title,
	})
	if domain.StagePosition(row.StageID) == domain.StageCount()-1 {
		s.bus.Publish(ctx, events.LifecycleCompleted{BaseEvent: events.NewBaseEvent(), LeadID: row.LeadID})
	}
}

func (s *Service) toProgress(row repository.Milestone) *StageProgress {
	id := row.ID
	return &StageProgress{
		StageID:     row.StageID,
		Title:       row.Title,
		Description: row.Description,
		Completed:   row.Completed,
		CompletedAt: row.CompletedAt,
		MilestoneID: &id,
	}
}

func storageErr(op string, err error) error {
	return apperr.Wrap(apperr.KindInternal, "storage failure", err).WithOp(op)
}
