package handler

import (
	"net/http"

	"agency_portal_backend/internal/milestones/repository"
	"agency_portal_backend/internal/milestones/service"
	"agency_portal_backend/internal/milestones/transport"
	"agency_portal_backend/platform/httpkit"
	"agency_portal_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterLeadRoutes mounts the per-lead lifecycle routes.
func (h *Handler) RegisterLeadRoutes(rg *gin.RouterGroup) {
	rg.GET("/:id/milestones", h.GetProgress)
	rg.GET("/:id/milestones/records", h.ListRecords)
	rg.POST("/:id/milestones", h.Create)
	rg.POST("/:id/milestones/advance", h.Advance)
	rg.POST("/:id/milestones/reset", h.Reset)
}

// RegisterMilestoneRoutes mounts the routes addressing a milestone row
// by its own id.
func (h *Handler) RegisterMilestoneRoutes(rg *gin.RouterGroup) {
	rg.PATCH("/:id", h.Update)
}

func (h *Handler) GetProgress(c *gin.Context) {
	leadID, ok := h.leadID(c)
	if !ok {
		return
	}

	progress, err := h.svc.GetProgress(c.Request.Context(), leadID)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.OK(c, transport.ProgressResponse{LeadID: leadID, Stages: progress})
}

func (h *Handler) ListRecords(c *gin.Context) {
	leadID, ok := h.leadID(c)
	if !ok {
		return
	}

	rows, err := h.svc.ListRecords(c.Request.Context(), leadID)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.OK(c, transport.FromMilestones(rows))
}

func (h *Handler) Create(c *gin.Context) {
	leadID, ok := h.leadID(c)
	if !ok {
		return
	}

	var req transport.CreateMilestoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	row, err := h.svc.CreateRecord(c.Request.Context(), repository.CreateParams{
		LeadID:      leadID,
		StageID:     req.StageID,
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
	})
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.JSON(c, http.StatusCreated, transport.FromMilestone(row))
}

func (h *Handler) Advance(c *gin.Context) {
	leadID, ok := h.leadID(c)
	if !ok {
		return
	}

	stage, err := h.svc.Advance(c.Request.Context(), leadID)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.OK(c, transport.AdvanceResponse{Done: stage == nil, Stage: stage})
}

func (h *Handler) Reset(c *gin.Context) {
	leadID, ok := h.leadID(c)
	if !ok {
		return
	}

	if err := h.svc.Reset(c.Request.Context(), leadID); err != nil {
		httpkit.HandleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) Update(c *gin.Context) {
	milestoneID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req transport.UpdateMilestoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	row, err := h.svc.Complete(c.Request.Context(), milestoneID, *req.Completed)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.OK(c, transport.FromMilestone(row))
}

func (h *Handler) leadID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return uuid.Nil, false
	}
	return id, true
}
