package jobs

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"neuroinsights/internal/config"
	"neuroinsights/internal/services"
)

// BaselineCloseJob closes out the previous day for every known user: it
// persists the daily summary, refolds the rolling baseline, and generates the
// day's insights. Both steps are rerun-safe, so an overlapping manual trigger
// cannot corrupt anything.
type BaselineCloseJob struct {
	baseline    *services.BaselineService
	insights    *services.InsightService
	defaultUser uuid.UUID
	spec        string
}

// NewBaselineCloseJob creates a new baseline close job
func NewBaselineCloseJob(baseline *services.BaselineService, insights *services.InsightService, cfg *config.Config) *BaselineCloseJob {
	defaultUser, err := uuid.Parse(cfg.DefaultUserID)
	if err != nil {
		defaultUser = uuid.Nil
	}

	return &BaselineCloseJob{
		baseline:    baseline,
		insights:    insights,
		defaultUser: defaultUser,
		spec:        cfg.BaselineCloseCron,
	}
}

func (j *BaselineCloseJob) Name() string { return "baseline_close" }

func (j *BaselineCloseJob) CronSpec() string { return j.spec }

// Run closes yesterday for all known users plus the default user.
func (j *BaselineCloseJob) Run(ctx context.Context) error {
	yesterday := time.Now().UTC().AddDate(0, 0, -1).Truncate(24 * time.Hour)

	users, err := j.baseline.KnownUsers(ctx)
	if err != nil {
		return err
	}
	users = j.withDefaultUser(users)

	log.Printf("[BASELINE] Closing %s for %d users", yesterday.Format("2006-01-02"), len(users))

	closed, failed := 0, 0
	for _, userID := range users {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if _, err := j.baseline.CloseDay(ctx, userID, yesterday); err != nil {
			log.Printf("[BASELINE] Failed to close day for user %s: %v", userID, err)
			failed++
			continue
		}

		if _, err := j.insights.GenerateDaily(ctx, userID, yesterday); err != nil {
			log.Printf("[BASELINE] Failed to generate insights for user %s: %v", userID, err)
			failed++
			continue
		}
		closed++
	}

	log.Printf("[BASELINE] Day close complete: %d closed, %d failed", closed, failed)
	return nil
}

func (j *BaselineCloseJob) withDefaultUser(users []uuid.UUID) []uuid.UUID {
	if j.defaultUser == uuid.Nil {
		return users
	}
	for _, id := range users {
		if id == j.defaultUser {
			return users
		}
	}
	return append(users, j.defaultUser)
}
