package scheduler

import (
	"context"
	"fmt"
	"time"

	"agency_portal_backend/internal/events"
	"agency_portal_backend/internal/milestones/service"
	"agency_portal_backend/platform/config"
	"agency_portal_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// ProgressReader resolves a lead's lifecycle view for stall detection.
type ProgressReader interface {
	GetProgress(ctx context.Context, leadID uuid.UUID) ([]service.StageProgress, error)
}

// Worker consumes scheduled tasks and turns due follow-ups into domain
// events for the notification module.
type Worker struct {
	server   *asynq.Server
	mux      *asynq.ServeMux
	progress ProgressReader
	bus      events.Bus
	log      *logger.Logger
}

// NewWorker creates the asynq consumer.
func NewWorker(cfg config.SchedulerConfig, progress ProgressReader, bus events.Bus, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:   server,
		mux:      mux,
		progress: progress,
		bus:      bus,
		log:      log,
	}

	mux.HandleFunc(TaskLeadFollowUp, w.handleLeadFollowUp)

	return w, nil
}

// handleLeadFollowUp re-reads the lead's lifecycle at execution time.
// Leads that progressed past the initial stage in the meantime are
// skipped without an event.
func (w *Worker) handleLeadFollowUp(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseLeadFollowUpPayload(task)
	if err != nil {
		return err
	}

	leadID, err := uuid.Parse(payload.LeadID)
	if err != nil {
		return err
	}

	stage, stalled, err := FollowUpState(ctx, w.progress, leadID)
	if err != nil {
		return err
	}
	if !stalled {
		return nil
	}

	if w.bus == nil {
		return nil
	}

	return w.bus.PublishSync(ctx, events.LeadFollowUpDue{
		BaseEvent:    events.NewBaseEvent(),
		LeadID:       leadID,
		CurrentStage: stage,
	})
}

// FollowUpState reports the lead's first incomplete stage and whether
// the lead counts as stalled: nothing beyond the initial capture stage
// has been completed.
func FollowUpState(ctx context.Context, progress ProgressReader, leadID uuid.UUID) (string, bool, error) {
	entries, err := progress.GetProgress(ctx, leadID)
	if err != nil {
		return "", false, err
	}

	completed := 0
	current := ""
	for _, entry := range entries {
		if entry.Completed {
			completed++
			continue
		}
		if current == "" {
			current = entry.StageID
		}
	}

	return current, completed <= 1 && current != "", nil
}

// Run serves tasks until the context is canceled.
func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

// RegisterCaptureFollowUps subscribes the scheduler to lead capture so
// every new lead gets a follow-up check after the configured delay.
func RegisterCaptureFollowUps(bus events.Bus, client FollowUpScheduler, delay time.Duration, log *logger.Logger) {
	bus.Subscribe(events.LeadCaptured{}.EventName(), events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		e, ok := event.(events.LeadCaptured)
		if !ok {
			return nil
		}
		err := client.ScheduleLeadFollowUp(ctx, LeadFollowUpPayload{LeadID: e.LeadID.String()}, time.Now().Add(delay))
		if err != nil {
			log.Error("follow-up scheduling failed", "error", err, "leadId", e.LeadID)
			return err
		}
		return nil
	}))
}
