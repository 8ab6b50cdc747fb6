package handler

import (
	"bytes"
	"context"
	"errors"
	"net/http"

	"workerscope/internal/attribution"
	"workerscope/internal/service"
	"workerscope/pkg/logger"
	"workerscope/pkg/render"

	"github.com/gin-gonic/gin"
)

// ReportHandler serves worker reports over HTTP
type ReportHandler struct {
	reportService *service.ReportService
	deployment    string
	target        string
}

// NewReportHandler creates a new report handler. deployment and target are
// used when a request does not name them.
func NewReportHandler(reportService *service.ReportService, deployment, target string) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		deployment:    deployment,
		target:        target,
	}
}

// Health reports liveness
// @Summary Health check
// @Tags system
// @Produce json
// @Success 200 {object} map[string]string
// @Router /healthz [get]
func (h *ReportHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GetReport generates a full report
// @Summary Busiest workers and their builds
// @Tags report
// @Produce json,plain,yaml
// @Param deployment query string false "BOSH deployment (default server.deployment)"
// @Param target query string false "fly target (default server.target)"
// @Param format query string false "json, text or yaml" default(json)
// @Success 200 {object} model.Report
// @Failure 400 {object} map[string]string
// @Router /v1/report [get]
func (h *ReportHandler) GetReport(c *gin.Context) {
	deployment := c.DefaultQuery("deployment", h.deployment)
	target := c.DefaultQuery("target", h.target)
	if deployment == "" || target == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "deployment and target are required"})
		return
	}

	format, err := render.ParseFormat(c.DefaultQuery("format", string(render.FormatJSON)))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := h.reportService.Generate(c.Request.Context(), deployment, target)
	if err != nil {
		h.fail(c, err)
		return
	}

	var buf bytes.Buffer
	if err := render.Write(&buf, report, format); err != nil {
		logger.ErrorCtx(c.Request.Context(), "failed to render report %s: %v", report.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to render report"})
		return
	}
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}

// GetTopWorkers ranks workers without the fly inventory
// @Summary Busiest workers
// @Tags report
// @Produce json
// @Param deployment query string false "BOSH deployment (default server.deployment)"
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]string
// @Router /v1/workers/top [get]
func (h *ReportHandler) GetTopWorkers(c *gin.Context) {
	deployment := c.DefaultQuery("deployment", h.deployment)
	if deployment == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "deployment is required"})
		return
	}

	workers, err := h.reportService.TopWorkers(c.Request.Context(), deployment)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"deployment": deployment,
		"workers":    workers,
	})
}

func (h *ReportHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrMissingIdentifier):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, attribution.ErrDataUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "request cancelled"})
	default:
		logger.ErrorCtx(c.Request.Context(), "report request failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
