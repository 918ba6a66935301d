// Package exports streams pipeline data as CSV for spreadsheet
// handoff to account managers.
package exports

import (
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apphttp "agency_portal_backend/internal/http"
	leadrepo "agency_portal_backend/internal/leads/repository"
	"agency_portal_backend/internal/milestones/service"
	"agency_portal_backend/platform/httpkit"
	"agency_portal_backend/platform/logger"
)

// LeadLister is the slice of the lead store the exporter needs.
type LeadLister interface {
	List(ctx context.Context) ([]leadrepo.Lead, error)
}

// ProgressReader resolves a lead's lifecycle view.
type ProgressReader interface {
	GetProgress(ctx context.Context, leadID uuid.UUID) ([]service.StageProgress, error)
}

// Service assembles the export rows.
type Service struct {
	leads    LeadLister
	progress ProgressReader
}

// NewService creates the export service.
func NewService(leads LeadLister, progress ProgressReader) *Service {
	return &Service{leads: leads, progress: progress}
}

var csvHeader = []string{
	"id", "name", "email", "phone", "company", "source",
	"current_stage", "stages_completed", "created_at",
}

// LeadRows produces one CSV row per lead, newest first, with its
// current lifecycle stage resolved from the milestone records.
func (s *Service) LeadRows(ctx context.Context) ([][]string, error) {
	leads, err := s.leads.List(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(leads)+1)
	rows = append(rows, csvHeader)

	for _, lead := range leads {
		stage, completed, err := s.currentStage(ctx, lead.ID)
		if err != nil {
			return nil, err
		}
		rows = append(rows, []string{
			lead.ID.String(),
			lead.Name,
			deref(lead.Email),
			deref(lead.Phone),
			deref(lead.Company),
			lead.Source,
			stage,
			fmt.Sprintf("%d", completed),
			lead.CreatedAt.Format(time.RFC3339),
		})
	}

	return rows, nil
}

// currentStage returns the first incomplete stage id (or the last
// stage when the lifecycle is fully complete) and the completed count.
func (s *Service) currentStage(ctx context.Context, leadID uuid.UUID) (string, int, error) {
	progress, err := s.progress.GetProgress(ctx, leadID)
	if err != nil {
		return "", 0, err
	}

	completed := 0
	current := ""
	for _, entry := range progress {
		if entry.Completed {
			completed++
			continue
		}
		if current == "" {
			current = entry.StageID
		}
	}
	if current == "" && len(progress) > 0 {
		current = progress[len(progress)-1].StageID
	}

	return current, completed, nil
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

// Module is the exports bounded context implementing http.Module.
type Module struct {
	svc *Service
	log *logger.Logger
}

// NewModule wires the CSV export endpoints.
func NewModule(leads LeadLister, progress ProgressReader, log *logger.Logger) *Module {
	return &Module{svc: NewService(leads, progress), log: log}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "exports"
}

// RegisterRoutes mounts export routes on the protected API group.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/exports/leads.csv", m.exportLeads)
}

func (m *Module) exportLeads(c *gin.Context) {
	rows, err := m.svc.LeadRows(c.Request.Context())
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	filename := fmt.Sprintf("leads-%s.csv", time.Now().Format("2006-01-02"))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Status(http.StatusOK)

	w := csv.NewWriter(c.Writer)
	if err := w.WriteAll(rows); err != nil {
		m.log.Error("csv export write failed", "error", err)
	}
}

var _ apphttp.Module = (*Module)(nil)
