package scheduler

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"

	"agency_portal_backend/internal/milestones/service"
)

type fakeSchedulerConfig struct {
	redisURL string
}

func (f fakeSchedulerConfig) GetRedisURL() string             { return f.redisURL }
func (f fakeSchedulerConfig) GetRedisTLSInsecure() bool       { return false }
func (f fakeSchedulerConfig) GetAsynqQueueName() string       { return "default" }
func (f fakeSchedulerConfig) GetAsynqConcurrency() int        { return 1 }
func (f fakeSchedulerConfig) GetFollowUpDelay() time.Duration { return 72 * time.Hour }

type fakeProgress struct {
	entries []service.StageProgress
}

func (f fakeProgress) GetProgress(context.Context, uuid.UUID) ([]service.StageProgress, error) {
	return f.entries, nil
}

func progressWith(completed int) fakeProgress {
	ids := []string{"lead_capture", "qualification", "discovery_call", "proposal", "negotiation", "closed_won", "onboarding"}
	entries := make([]service.StageProgress, 0, len(ids))
	for i, id := range ids {
		entries = append(entries, service.StageProgress{StageID: id, Completed: i < completed})
	}
	return fakeProgress{entries: entries}
}

func TestFollowUpState(t *testing.T) {
	ctx := context.Background()
	leadID := uuid.New()

	stage, stalled, err := FollowUpState(ctx, progressWith(1), leadID)
	if err != nil {
		t.Fatalf("FollowUpState: %v", err)
	}
	if !stalled || stage != "qualification" {
		t.Fatalf("captured-only lead: got stage=%s stalled=%v, want qualification/true", stage, stalled)
	}

	stage, stalled, err = FollowUpState(ctx, progressWith(3), leadID)
	if err != nil {
		t.Fatalf("FollowUpState: %v", err)
	}
	if stalled {
		t.Fatalf("progressed lead should not be stalled, got stage=%s", stage)
	}

	_, stalled, err = FollowUpState(ctx, progressWith(7), leadID)
	if err != nil {
		t.Fatalf("FollowUpState: %v", err)
	}
	if stalled {
		t.Fatal("completed lifecycle should not be stalled")
	}
}

func TestScheduleLeadFollowUp(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewClient(fakeSchedulerConfig{redisURL: "redis://" + mr.Addr()})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer client.Close()

	err = client.ScheduleLeadFollowUp(context.Background(), LeadFollowUpPayload{
		LeadID: uuid.NewString(),
	}, time.Now().Add(72*time.Hour))
	if err != nil {
		t.Fatalf("ScheduleLeadFollowUp: %v", err)
	}

	found := false
	for _, key := range mr.Keys() {
		if strings.Contains(key, "scheduled") {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("no scheduled task key in redis, keys: %v", mr.Keys())
	}
}

func TestNewClientRequiresRedisURL(t *testing.T) {
	if _, err := NewClient(fakeSchedulerConfig{redisURL: ""}); err == nil {
		t.Fatal("expected error for missing redis url")
	}
}
