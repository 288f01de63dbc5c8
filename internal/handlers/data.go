package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"neuroinsights/internal/config"
	"neuroinsights/internal/models"
	"neuroinsights/internal/services"
)

// DataHandler serves the analysis query endpoints
type DataHandler struct {
	brain   *services.BrainDataService
	cfg     *config.Config
	metrics *services.Metrics
}

// NewDataHandler creates a new data handler
func NewDataHandler(brain *services.BrainDataService, cfg *config.Config, metrics *services.Metrics) *DataHandler {
	return &DataHandler{brain: brain, cfg: cfg, metrics: metrics}
}

// GetBrainWaves handles GET /api/data/brain-waves
func (h *DataHandler) GetBrainWaves(c *fiber.Ctx) error {
	started := time.Now()
	userID, err := userIDParam(c, mustDefaultUser(h.cfg))
	if err != nil {
		return err
	}
	start, end, err := periodParams(c)
	if err != nil {
		return err
	}

	points, err := h.brain.GetBrainData(c.Context(), userID, start, end, c.Query("granularity", "minute"))
	if err != nil {
		h.recordError("brain_waves")
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	h.recordQuery(started)
	return c.JSON(fiber.Map{
		"user_id": userID,
		"start":   start,
		"end":     end,
		"count":   len(points),
		"points":  points,
	})
}

// GetStateDistribution handles GET /api/data/state-distribution
func (h *DataHandler) GetStateDistribution(c *fiber.Ctx) error {
	started := time.Now()
	userID, err := userIDParam(c, mustDefaultUser(h.cfg))
	if err != nil {
		return err
	}
	start, end, err := periodParams(c)
	if err != nil {
		return err
	}

	dist, count, err := h.brain.GetStateDistribution(c.Context(), userID, start, end)
	if err != nil {
		h.recordError("state_distribution")
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	h.recordQuery(started)
	return c.JSON(fiber.Map{
		"user_id":      userID,
		"start":        start,
		"end":          end,
		"sample_count": count,
		"distribution": dist,
	})
}

// GetCognitiveScore handles GET /api/data/cognitive-score
func (h *DataHandler) GetCognitiveScore(c *fiber.Ctx) error {
	started := time.Now()
	userID, err := userIDParam(c, mustDefaultUser(h.cfg))
	if err != nil {
		return err
	}
	start, end, err := periodParams(c)
	if err != nil {
		return err
	}

	result, err := h.brain.GetCognitiveScore(c.Context(), userID, start, end)
	if err != nil {
		h.recordError("cognitive_score")
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	h.recordQuery(started)
	return c.JSON(result)
}

// GetPatterns handles GET /api/data/patterns
func (h *DataHandler) GetPatterns(c *fiber.Ctx) error {
	started := time.Now()
	userID, err := userIDParam(c, mustDefaultUser(h.cfg))
	if err != nil {
		return err
	}

	kind := c.Query("type", "activity_correlation")
	target := models.CognitiveState(c.Query("target_state", string(models.StateDeepFocus)))

	patterns, err := h.brain.FindPatterns(c.Context(), userID, kind, time.Now().UTC(), target)
	if err != nil {
		h.recordError("patterns")
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	h.recordQuery(started)
	return c.JSON(fiber.Map{
		"user_id":      userID,
		"pattern_type": kind,
		"count":        len(patterns),
		"patterns":     patterns,
	})
}

// ComparePeriods handles GET /api/data/compare
func (h *DataHandler) ComparePeriods(c *fiber.Ctx) error {
	started := time.Now()
	userID, err := userIDParam(c, mustDefaultUser(h.cfg))
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	period1 := c.Query("period1", "this_week")
	period2 := c.Query("period2", "last_week")

	start1, end1, err := parseNamedPeriod(period1, now)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "period1: "+err.Error())
	}
	start2, end2, err := parseNamedPeriod(period2, now)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "period2: "+err.Error())
	}

	cmp, err := h.brain.ComparePeriods(c.Context(), userID, start1, end1, start2, end2)
	if err != nil {
		h.recordError("compare")
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	h.recordQuery(started)
	return c.JSON(cmp)
}

func (h *DataHandler) recordQuery(started time.Time) {
	if h.metrics != nil {
		h.metrics.RecordQuery(time.Since(started).Seconds())
	}
}

func (h *DataHandler) recordError(endpoint string) {
	if h.metrics != nil {
		h.metrics.RecordQueryError(endpoint)
	}
}
