// Package leads provides the lead management bounded context.
package leads

import (
	"agency_portal_backend/internal/events"
	apphttp "agency_portal_backend/internal/http"
	"agency_portal_backend/internal/leads/handler"
	"agency_portal_backend/internal/leads/repository"
	"agency_portal_backend/internal/leads/service"
	"agency_portal_backend/platform/validator"
)

// Module is the leads bounded context implementing http.Module.
type Module struct {
	handler *handler.Handler
	svc     *service.Service
}

// NewModule wires the lead management service over the given store.
func NewModule(store repository.Store, bus events.Bus, val *validator.Validator) *Module {
	svc := service.New(store, bus)
	return &Module{
		handler: handler.New(svc, val),
		svc:     svc,
	}
}

// Service returns the lead management service for other modules.
func (m *Module) Service() *service.Service {
	return m.svc
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// RegisterRoutes mounts lead routes on the protected API group.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/leads"))
}

var _ apphttp.Module = (*Module)(nil)
