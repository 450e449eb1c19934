package handler

import (
	"context"
	"fmt"
	"net/http"
	"path"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/gym-ops-api/internal/models"
	"github.com/noah-isme/gym-ops-api/internal/service"
	"github.com/noah-isme/gym-ops-api/pkg/export"
	"github.com/noah-isme/gym-ops-api/pkg/response"
)

type reportService interface {
	NegativeBalanceMembers(ctx context.Context) ([]models.NegativeBalanceMember, error)
	TrainerMonthlyHours(ctx context.Context, year int, month time.Month) (*models.TrainerHoursReport, error)
	MemberSchedule(ctx context.Context, memberID string, year int, month time.Month) ([]models.ScheduleSlot, error)
}

type exportService interface {
	Request(ctx context.Context, req service.ExportRequest) (*models.ExportJob, error)
	Get(ctx context.Context, id string) (*models.ExportJob, error)
	Download(ctx context.Context, id string) ([]byte, *models.ExportJob, error)
}

// ReportHandler exposes read-only reports and their exports.
type ReportHandler struct {
	reports reportService
	exports exportService
}

// NewReportHandler constructs ReportHandler.
func NewReportHandler(reports reportService, exports exportService) *ReportHandler {
	return &ReportHandler{reports: reports, exports: exports}
}

// NegativeBalances godoc
// @Summary Members with a negative balance
// @Tags Reports
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /reports/negative-balances [get]
func (h *ReportHandler) NegativeBalances(c *gin.Context) {
	rows, err := h.reports.NegativeBalanceMembers(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// TrainerHours godoc
// @Summary Monthly hours per trainer
// @Tags Reports
// @Produce json
// @Param year query int false "Year (defaults to current)"
// @Param month query int true "Month 1-12"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /reports/trainer-hours [get]
func (h *ReportHandler) TrainerHours(c *gin.Context) {
	year, month, err := reportPeriod(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	report, err := h.reports.TrainerMonthlyHours(c.Request.Context(), year, month)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// MemberSchedule godoc
// @Summary Weekly sessions of a member in a month
// @Tags Members
// @Produce json
// @Param id path string true "Member ID"
// @Param year query int false "Year (defaults to current)"
// @Param month query int true "Month 1-12"
// @Success 200 {object} response.Envelope
// @Router /members/{id}/schedule [get]
func (h *ReportHandler) MemberSchedule(c *gin.Context) {
	year, month, err := reportPeriod(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	slots, err := h.reports.MemberSchedule(c.Request.Context(), c.Param("id"), year, month)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots, nil)
}

// RequestExport godoc
// @Summary Queue a report export
// @Tags Reports
// @Accept json
// @Produce json
// @Param payload body service.ExportRequest true "Report and format"
// @Success 202 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /reports/exports [post]
func (h *ReportHandler) RequestExport(c *gin.Context) {
	var req service.ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid export payload"))
		return
	}
	job, err := h.exports.Request(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, job)
}

// ExportStatus godoc
// @Summary Export status, or the rendered file with ?download=true
// @Tags Reports
// @Produce json
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Export ID"
// @Param download query bool false "Stream the file"
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /reports/exports/{id} [get]
func (h *ReportHandler) ExportStatus(c *gin.Context) {
	id := c.Param("id")
	if c.Query("download") != "true" {
		job, err := h.exports.Get(c.Request.Context(), id)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, job, nil)
		return
	}

	payload, job, err := h.exports.Download(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", path.Base(job.File)))
	c.Data(http.StatusOK, export.Format(job.Format).ContentType(), payload)
}
