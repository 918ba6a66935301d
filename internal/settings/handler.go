package settings

import (
	"net/http"
	"time"

	"agency_portal_backend/platform/httpkit"
	"agency_portal_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

// Handler exposes the settings toggles over HTTP.
type Handler struct {
	svc *Service
	val *validator.Validator
}

// NewHandler creates the settings handler.
func NewHandler(svc *Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes mounts the settings routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.PUT("/:key", h.Set)
}

// SettingResponse is the toggle's wire representation.
type SettingResponse struct {
	Key       string     `json:"key"`
	Enabled   bool       `json:"enabled"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// UpdateSettingRequest sets one toggle.
type UpdateSettingRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

func (h *Handler) List(c *gin.Context) {
	rows, err := h.svc.All(c.Request.Context())
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	out := make([]SettingResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, toResponse(row))
	}
	httpkit.OK(c, out)
}

func (h *Handler) Set(c *gin.Context) {
	var req UpdateSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	row, err := h.svc.Set(c.Request.Context(), c.Param("key"), *req.Enabled)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.OK(c, toResponse(row))
}

func toResponse(row Setting) SettingResponse {
	resp := SettingResponse{Key: row.Key, Enabled: row.Enabled}
	if !row.UpdatedAt.IsZero() {
		t := row.UpdatedAt
		resp.UpdatedAt = &t
	}
	return resp
}
