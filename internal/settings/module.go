package settings

import (
	apphttp "agency_portal_backend/internal/http"
	"agency_portal_backend/platform/validator"
)

// Module is the settings bounded context implementing http.Module.
type Module struct {
	handler *Handler
	svc     *Service
}

// NewModule wires the settings service over the given store.
func NewModule(store Store, val *validator.Validator) *Module {
	svc := NewService(store)
	return &Module{
		handler: NewHandler(svc, val),
		svc:     svc,
	}
}

// Service returns the settings service for other modules.
func (m *Module) Service() *Service {
	return m.svc
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "settings"
}

// RegisterRoutes mounts settings routes on the protected API group.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/settings"))
}

var _ apphttp.Module = (*Module)(nil)
