package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"homeval/server/internal/database"
	"homeval/server/internal/engine"
	"homeval/server/internal/metrics"
	"homeval/server/internal/models"
	"homeval/server/internal/rollup"
	"homeval/server/internal/spec"
)

type Handler struct {
	engine *engine.Engine
	db     *database.Database
	runner *rollup.Runner
	logger *logrus.Logger
}

// EstimateRequest is the payload for the estimate and comparables endpoints.
type EstimateRequest struct {
	Subject          spec.RawSubject `json:"subject" binding:"required"`
	Direction        string          `json:"direction" binding:"required"`
	TenantID         string          `json:"tenant_id" binding:"required"`
	IncludeNarrative bool            `json:"include_narrative"`
	// IncludeRepeatCloses is honored by the comparables endpoint only.
	IncludeRepeatCloses bool `json:"include_repeat_closes"`
}

func NewHandler(eng *engine.Engine, db *database.Database, runner *rollup.Runner, logger *logrus.Logger) *Handler {
	return &Handler{
		engine: eng,
		db:     db,
		runner: runner,
		logger: logger,
	}
}

func (h *Handler) Estimate(c *gin.Context) {
	started := time.Now()
	defer func() {
		metrics.EstimateLatency.WithLabelValues("estimate").Observe(time.Since(started).Seconds())
	}()

	var req EstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Error("Failed to parse estimate request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request parameters"})
		return
	}

	result, err := h.engine.Estimate(c.Request.Context(), req.Subject, models.Direction(req.Direction), req.TenantID, req.IncludeNarrative)
	if err != nil {
		h.renderEngineError(c, "estimate", err)
		return
	}

	if !result.ShowPrice {
		metrics.SuppressedEstimates.Inc()
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) MatchComparables(c *gin.Context) {
	started := time.Now()
	defer func() {
		metrics.EstimateLatency.WithLabelValues("comparables").Observe(time.Since(started).Seconds())
	}()

	var req EstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Error("Failed to parse comparables request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request parameters"})
		return
	}

	result, err := h.engine.MatchComparables(c.Request.Context(), req.Subject, models.Direction(req.Direction), req.TenantID, req.IncludeRepeatCloses)
	if err != nil {
		h.renderEngineError(c, "comparables", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetAreaSummary returns the latest rollup snapshot for one geography id.
func (h *Handler) GetAreaSummary(c *gin.Context) {
	geoID := c.Param("geo_id")

	summaries, err := h.db.GetAggregateSummaries(c.Request.Context(), geoID)
	if err != nil {
		h.renderEngineError(c, "summary", err)
		return
	}

	if len(summaries) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No summary for geography"})
		return
	}

	c.JSON(http.StatusOK, summaries)
}

// RunRollup triggers a full recomputation of the aggregate summaries.
func (h *Handler) RunRollup(c *gin.Context) {
	err := h.runner.TryRun(c.Request.Context())
	if errors.Is(err, rollup.ErrRollupInProgress) {
		c.JSON(http.StatusConflict, gin.H{"error": "Rollup already in progress"})
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to run rollup")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to run rollup"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "Rollup completed successfully"})
}

// renderEngineError maps the engine's error taxonomy onto HTTP statuses:
// malformed subjects are the caller's fault, store faults are retryable by
// the caller with backoff.
func (h *Handler) renderEngineError(c *gin.Context, endpoint string, err error) {
	var invalidSpec *spec.InvalidSpecError
	if errors.As(err, &invalidSpec) {
		metrics.EstimateErrors.WithLabelValues(endpoint, "invalid_spec").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": invalidSpec.Error()})
		return
	}

	var dataAccess *database.DataAccessError
	if errors.As(err, &dataAccess) {
		metrics.EstimateErrors.WithLabelValues(endpoint, "data_access").Inc()
		h.logger.WithError(err).Error("Historical store query failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "Historical store unavailable, retry later"})
		return
	}

	metrics.EstimateErrors.WithLabelValues(endpoint, "internal").Inc()
	h.logger.WithError(err).Error("Estimate failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Estimate failed"})
}
