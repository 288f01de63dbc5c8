package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"neuroinsights/internal/config"
	"neuroinsights/internal/models"
	"neuroinsights/internal/services"
)

// ActivitiesHandler serves the activity timeline and recording endpoints
type ActivitiesHandler struct {
	brain      *services.BrainDataService
	activities *services.ActivityService
	cfg        *config.Config
}

// NewActivitiesHandler creates a new activities handler
func NewActivitiesHandler(brain *services.BrainDataService, activities *services.ActivityService, cfg *config.Config) *ActivitiesHandler {
	return &ActivitiesHandler{brain: brain, activities: activities, cfg: cfg}
}

// List handles GET /api/activities: the derived timeline with per-segment
// state breakdowns.
func (h *ActivitiesHandler) List(c *fiber.Ctx) error {
	userID, err := userIDParam(c, mustDefaultUser(h.cfg))
	if err != nil {
		return err
	}
	start, end, err := periodParams(c)
	if err != nil {
		return err
	}

	segments, err := h.brain.GetActivities(c.Context(), userID, start, end)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.JSON(fiber.Map{
		"user_id":  userID,
		"start":    start,
		"end":      end,
		"count":    len(segments),
		"segments": segments,
	})
}

// createActivityRequest is the POST /api/activities body
type createActivityRequest struct {
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

// Create handles POST /api/activities: record a manual activity interval.
func (h *ActivitiesHandler) Create(c *fiber.Ctx) error {
	userID, err := userIDParam(c, mustDefaultUser(h.cfg))
	if err != nil {
		return err
	}

	var req createActivityRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	activity, err := h.activities.Record(c.Context(), models.Activity{
		UserID:    userID,
		Name:      req.Name,
		Category:  req.Category,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Source:    "recorded",
	})
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	return c.Status(fiber.StatusCreated).JSON(activity)
}
