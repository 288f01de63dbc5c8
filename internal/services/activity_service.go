package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"neuroinsights/internal/database"
	"neuroinsights/internal/models"
)

// ActivityService stores user-recorded activity intervals and merges them
// with scenario-derived ones when queried. It is the ActivitySource the
// analysis pipeline sees.
type ActivityService struct {
	db       *database.DB
	scenario ActivitySource // synthetic activities, may be nil
}

// NewActivityService creates the activity service. scenario provides the
// synthetic timeline behind recorded entries; pass nil to serve recorded
// activities only.
func NewActivityService(db *database.DB, scenario ActivitySource) *ActivityService {
	return &ActivityService{db: db, scenario: scenario}
}

// Record stores a user-entered activity interval.
func (s *ActivityService) Record(ctx context.Context, a models.Activity) (models.Activity, error) {
	if a.Name == "" {
		return models.Activity{}, fmt.Errorf("activity name is required")
	}
	if !a.EndTime.After(a.StartTime) {
		return models.Activity{}, fmt.Errorf("activity end must be after start")
	}
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.Source == "" {
		a.Source = "recorded"
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO activities (id, user_id, name, category, start_time, end_time, source)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID.String(), a.UserID.String(), a.Name, a.Category,
		a.StartTime.UTC().Format(time.RFC3339), a.EndTime.UTC().Format(time.RFC3339), a.Source)
	if err != nil {
		return models.Activity{}, fmt.Errorf("failed to store activity: %w", err)
	}
	return a, nil
}

// Activities returns recorded and scenario activities overlapping
// [start, end), ordered by start time. Recorded entries come first among
// equals so downstream precedence is stable.
func (s *ActivityService) Activities(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]models.Activity, error) {
	recorded, err := s.recorded(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}

	all := recorded
	if s.scenario != nil {
		synthetic, err := s.scenario.Activities(ctx, userID, start, end)
		if err != nil {
			return nil, err
		}
		all = append(all, synthetic...)
	}

	sort.SliceStable(all, func(i, j int) bool {
		if !all[i].StartTime.Equal(all[j].StartTime) {
			return all[i].StartTime.Before(all[j].StartTime)
		}
		return all[i].Source == "recorded" && all[j].Source != "recorded"
	})
	return all, nil
}

func (s *ActivityService) recorded(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]models.Activity, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, category, start_time, end_time, source
		FROM activities
		WHERE user_id = ? AND start_time < ? AND end_time > ?
		ORDER BY start_time`,
		userID.String(), end.UTC().Format(time.RFC3339), start.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("failed to read activities: %w", err)
	}
	defer rows.Close()

	var activities []models.Activity
	for rows.Next() {
		var a models.Activity
		var id, startRaw, endRaw string
		if err := rows.Scan(&id, &a.Name, &a.Category, &startRaw, &endRaw, &a.Source); err != nil {
			return nil, err
		}
		a.UserID = userID
		if parsed, err := uuid.Parse(id); err == nil {
			a.ID = parsed
		}
		if t, err := time.Parse(time.RFC3339, startRaw); err == nil {
			a.StartTime = t
		}
		if t, err := time.Parse(time.RFC3339, endRaw); err == nil {
			a.EndTime = t
		}
		activities = append(activities, a)
	}
	return activities, rows.Err()
}
