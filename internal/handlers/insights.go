package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"neuroinsights/internal/config"
	"neuroinsights/internal/services"
)

// InsightsHandler serves insight listing, generation and dismissal
type InsightsHandler struct {
	insights *services.InsightService
	cfg      *config.Config
}

// NewInsightsHandler creates a new insights handler
func NewInsightsHandler(insights *services.InsightService, cfg *config.Config) *InsightsHandler {
	return &InsightsHandler{insights: insights, cfg: cfg}
}

// List handles GET /api/insights
func (h *InsightsHandler) List(c *fiber.Ctx) error {
	userID, err := userIDParam(c, mustDefaultUser(h.cfg))
	if err != nil {
		return err
	}

	includeDismissed := c.QueryBool("include_dismissed", false)
	limit := c.QueryInt("limit", 50)

	insights, err := h.insights.List(c.Context(), userID, includeDismissed, limit)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.JSON(fiber.Map{
		"user_id":  userID,
		"count":    len(insights),
		"insights": insights,
	})
}

// Generate handles POST /api/insights/generate: on-demand generation for a
// day (defaults to yesterday, the most recent closed day).
func (h *InsightsHandler) Generate(c *fiber.Ctx) error {
	userID, err := userIDParam(c, mustDefaultUser(h.cfg))
	if err != nil {
		return err
	}

	day := time.Now().UTC().AddDate(0, 0, -1)
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "date must be YYYY-MM-DD")
		}
		day = parsed
	}

	insights, err := h.insights.GenerateDaily(c.Context(), userID, day)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.JSON(fiber.Map{
		"user_id":  userID,
		"date":     day.Format("2006-01-02"),
		"count":    len(insights),
		"insights": insights,
	})
}

// Dismiss handles PATCH /api/insights/:id/dismiss
func (h *InsightsHandler) Dismiss(c *fiber.Ctx) error {
	userID, err := userIDParam(c, mustDefaultUser(h.cfg))
	if err != nil {
		return err
	}

	insightID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid insight id")
	}

	if err := h.insights.Dismiss(c.Context(), userID, insightID); err != nil {
		if errors.Is(err, services.ErrInsightNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "insight not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.JSON(fiber.Map{"dismissed": true, "id": insightID})
}
