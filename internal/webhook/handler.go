package webhook

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"agency_portal_backend/internal/leads/service"
	"agency_portal_backend/platform/apperr"
	"agency_portal_backend/platform/httpkit"
	"agency_portal_backend/platform/logger"
	"agency_portal_backend/platform/validator"
)

// SubmitFormRequest is the contact-form payload posted by the agency's
// marketing sites.
type SubmitFormRequest struct {
	Name    string `json:"name" validate:"required,min=1,max=200"`
	Email   string `json:"email" validate:"omitempty,email"`
	Phone   string `json:"phone" validate:"omitempty,max=32"`
	Company string `json:"company" validate:"omitempty,max=200"`
	Message string `json:"message" validate:"omitempty,max=5000"`
	// Honeypot field. Bots fill it in, humans never see it.
	Website string `json:"website"`
}

// CreateAPIKeyRequest provisions a new webhook credential.
type CreateAPIKeyRequest struct {
	Name           string   `json:"name" validate:"required,min=1,max=100"`
	AllowedDomains []string `json:"allowedDomains" validate:"omitempty,dive,hostname|startswith=*."`
}

// APIKeyResponse describes a stored key. Key is only populated on
// creation.
type APIKeyResponse struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Key            string    `json:"key,omitempty"`
	KeyPrefix      string    `json:"keyPrefix"`
	AllowedDomains []string  `json:"allowedDomains"`
	IsActive       bool      `json:"isActive"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Handler serves public form capture and protected key management.
type Handler struct {
	leads *service.Service
	store Store
	val   *validator.Validator
	log   *logger.Logger
}

// NewHandler creates the webhook handler.
func NewHandler(leads *service.Service, store Store, val *validator.Validator, log *logger.Logger) *Handler {
	return &Handler{leads: leads, store: store, val: val, log: log}
}

// SubmitForm ingests a contact-form submission as a new lead.
func (h *Handler) SubmitForm(c *gin.Context) {
	var req SubmitFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	// Silently accept honeypot hits so bots learn nothing.
	if req.Website != "" {
		h.log.Warn("webhook honeypot triggered", "remote_ip", c.ClientIP())
		httpkit.JSON(c, http.StatusCreated, gin.H{"status": "received"})
		return
	}

	lead, err := h.leads.Capture(c.Request.Context(), service.CaptureParams{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Company: req.Company,
		Message: req.Message,
		Source:  "website_form",
	})
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.JSON(c, http.StatusCreated, gin.H{
		"status": "received",
		"leadId": lead.ID.String(),
	})
}

// CreateAPIKey provisions a webhook credential and returns the
// plaintext key once.
func (h *Handler) CreateAPIKey(c *gin.Context) {
	var req CreateAPIKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	plaintext, hash, prefix, err := GenerateAPIKey()
	if err != nil {
		httpkit.HandleError(c, apperr.Wrap(apperr.KindInternal, "key generation failed", err))
		return
	}

	key, err := h.store.Create(c.Request.Context(), APIKey{
		Name:           req.Name,
		KeyHash:        hash,
		KeyPrefix:      prefix,
		AllowedDomains: req.AllowedDomains,
		IsActive:       true,
	})
	if err != nil {
		httpkit.HandleError(c, apperr.Wrap(apperr.KindInternal, "storage failure", err))
		return
	}

	resp := toAPIKeyResponse(key)
	resp.Key = plaintext
	httpkit.JSON(c, http.StatusCreated, resp)
}

// ListAPIKeys returns all stored keys without plaintext material.
func (h *Handler) ListAPIKeys(c *gin.Context) {
	keys, err := h.store.List(c.Request.Context())
	if err != nil {
		httpkit.HandleError(c, apperr.Wrap(apperr.KindInternal, "storage failure", err))
		return
	}

	out := make([]APIKeyResponse, 0, len(keys))
	for _, key := range keys {
		out = append(out, toAPIKeyResponse(key))
	}
	httpkit.OK(c, out)
}

func toAPIKeyResponse(key APIKey) APIKeyResponse {
	domains := key.AllowedDomains
	if domains == nil {
		domains = []string{}
	}
	return APIKeyResponse{
		ID:             key.ID.String(),
		Name:           key.Name,
		KeyPrefix:      key.KeyPrefix,
		AllowedDomains: domains,
		IsActive:       key.IsActive,
		CreatedAt:      key.CreatedAt,
	}
}
