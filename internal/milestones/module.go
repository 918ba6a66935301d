// Package milestones provides the lead lifecycle bounded context:
// canonical stage definitions, the milestone store, and the lifecycle
// controller that drives forward progression.
package milestones

import (
	"context"

	"agency_portal_backend/internal/events"
	apphttp "agency_portal_backend/internal/http"
	"agency_portal_backend/internal/milestones/handler"
	"agency_portal_backend/internal/milestones/repository"
	"agency_portal_backend/internal/milestones/service"
	"agency_portal_backend/platform/logger"
	"agency_portal_backend/platform/validator"
)

// CapturePolicy decides whether a freshly captured lead should have
// its first stage completed automatically. Backed by the settings
// module; nil means always advance.
type CapturePolicy interface {
	AutoAdvanceOnCapture(ctx context.Context) bool
}

// Module is the milestones bounded context implementing http.Module.
type Module struct {
	handler *handler.Handler
	svc     *service.Service
	policy  CapturePolicy
}

// NewModule wires the lifecycle controller over the given store. The
// store is injected rather than constructed here so demo mode can run
// on the in-memory implementation.
func NewModule(store repository.Store, bus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	svc := service.New(store, bus)
	m := &Module{
		handler: handler.New(svc, val),
		svc:     svc,
	}

	// The first canonical stage records the lead's creation event, so
	// each captured lead starts its lifecycle immediately.
	bus.Subscribe(events.LeadCaptured{}.EventName(), events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		e, ok := event.(events.LeadCaptured)
		if !ok {
			return nil
		}
		if m.policy != nil && !m.policy.AutoAdvanceOnCapture(ctx) {
			return nil
		}
		stage, err := svc.Advance(ctx, e.LeadID)
		if err != nil {
			log.Error("auto-advance on capture failed", "error", err, "leadId", e.LeadID)
			return err
		}
		if stage != nil {
			log.MilestoneEvent("auto_advanced", e.LeadID.String(), stage.StageID)
		}
		return nil
	}))

	return m
}

// SetCapturePolicy installs the settings-backed capture policy.
func (m *Module) SetCapturePolicy(policy CapturePolicy) {
	m.policy = policy
}

// Service returns the lifecycle controller for other modules.
func (m *Module) Service() *service.Service {
	return m.svc
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "milestones"
}

// RegisterRoutes mounts milestone routes on the protected API group.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterLeadRoutes(ctx.Protected.Group("/leads"))
	m.handler.RegisterMilestoneRoutes(ctx.Protected.Group("/milestones"))
}

var _ apphttp.Module = (*Module)(nil)
