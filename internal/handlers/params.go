package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"neuroinsights/internal/config"
	"neuroinsights/internal/utils"
)

// mustDefaultUser parses the configured default user id. The config default
// is a valid UUID, so a parse failure means a bad override; uuid.Nil then
// surfaces as an invalid user downstream rather than a panic.
func mustDefaultUser(cfg *config.Config) uuid.UUID {
	id, err := uuid.Parse(cfg.DefaultUserID)
	if err != nil {
		return uuid.Nil
	}
	return id
}

// parseNamedPeriod resolves a named period only (no explicit bounds).
func parseNamedPeriod(period string, now time.Time) (time.Time, time.Time, error) {
	return utils.ParsePeriod(period, "", "", now)
}

// userIDParam resolves the user_id query parameter, falling back to the
// configured default user.
func userIDParam(c *fiber.Ctx, fallback uuid.UUID) (uuid.UUID, error) {
	raw := c.Query("user_id")
	if raw == "" {
		return fallback, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "invalid user_id")
	}
	return id, nil
}

// periodParams resolves period / start / end query parameters into a
// half-open interval. Defaults to today when nothing is given.
func periodParams(c *fiber.Ctx) (time.Time, time.Time, error) {
	period := c.Query("period")
	start := c.Query("start")
	end := c.Query("end")
	if period == "" && start == "" && end == "" {
		period = "today"
	}
	s, e, err := utils.ParsePeriod(period, start, end, time.Now().UTC())
	if err != nil {
		return time.Time{}, time.Time{}, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return s, e, nil
}
