package webhook

import (
	apphttp "agency_portal_backend/internal/http"
	"agency_portal_backend/internal/leads/service"
	"agency_portal_backend/platform/logger"
	"agency_portal_backend/platform/validator"
)

// Module is the webhook bounded context implementing http.Module.
type Module struct {
	handler *Handler
	store   Store
	log     *logger.Logger
}

// NewModule wires the form-capture endpoint and API key management
// over the given key store.
func NewModule(leads *service.Service, store Store, val *validator.Validator, log *logger.Logger) *Module {
	return &Module{
		handler: NewHandler(leads, store, val, log),
		store:   store,
		log:     log,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "webhook"
}

// RegisterRoutes mounts the public capture endpoint (API key + rate
// limited) and the protected key management endpoints.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	public := ctx.V1.Group("/webhooks")
	public.Use(ctx.PublicRateLimiter.Middleware())
	public.Use(APIKeyAuthMiddleware(m.store, m.log))
	public.POST("/forms", m.handler.SubmitForm)

	admin := ctx.Protected.Group("/webhook-keys")
	admin.POST("", m.handler.CreateAPIKey)
	admin.GET("", m.handler.ListAPIKeys)
}

var _ apphttp.Module = (*Module)(nil)
