package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"neuroinsights/internal/analysis"
	"neuroinsights/internal/config"
	"neuroinsights/internal/database"
	"neuroinsights/internal/logging"
	"neuroinsights/internal/models"
)

// ErrInsightNotFound is returned when dismissing an unknown insight.
var ErrInsightNotFound = errors.New("insight not found")

// InsightService derives daily insights by comparing a day against the
// user's baseline and surfacing newly discovered patterns. Every insight
// carries the numbers it was derived from in its evidence map.
type InsightService struct {
	db       *database.DB
	brain    *BrainDataService
	baseline *BaselineService
	cfg      *config.Config
	metrics  *Metrics
}

// NewInsightService creates the insight service.
func NewInsightService(db *database.DB, brain *BrainDataService, baseline *BaselineService, cfg *config.Config, metrics *Metrics) *InsightService {
	return &InsightService{
		db:       db,
		brain:    brain,
		baseline: baseline,
		cfg:      cfg,
		metrics:  metrics,
	}
}

// GenerateDaily produces and persists the insights for one user-day. With
// fewer baseline days than MinBaselineDays it emits a single
// insufficient_data insight instead of comparative ones.
func (s *InsightService) GenerateDaily(ctx context.Context, userID uuid.UUID, date time.Time) ([]models.Insight, error) {
	day := date.UTC().Truncate(24 * time.Hour)
	now := time.Now().UTC()

	baseline, err := s.baseline.Baseline(ctx, userID)
	if err != nil && !errors.Is(err, ErrNoBaseline) {
		return nil, err
	}
	if errors.Is(err, ErrNoBaseline) || baseline.Days < s.cfg.MinBaselineDays {
		insight := models.Insight{
			ID:      uuid.New(),
			UserID:  userID,
			Type:    models.InsightInsufficientData,
			Content: fmt.Sprintf("Not enough history yet: %d of %d baseline days recorded. Comparative insights unlock once your baseline is established.", baseline.Days, s.cfg.MinBaselineDays),
			Evidence: map[string]float64{
				"baseline_days": float64(baseline.Days),
				"required_days": float64(s.cfg.MinBaselineDays),
			},
			GeneratedAt: now,
		}
		if err := s.store(ctx, insight); err != nil {
			return nil, err
		}
		return []models.Insight{insight}, nil
	}

	points, err := s.brain.Points(ctx, userID, day, day.Add(24*time.Hour))
	if err != nil {
		return nil, err
	}
	summary := analysis.SummarizeDay(userID, day, points,
		time.Duration(s.cfg.MinStressPeriodMinutes)*time.Minute)

	var insights []models.Insight
	if insight := s.focusInsight(summary, baseline, now); insight != nil {
		insights = append(insights, *insight)
	}
	if insight := s.stressInsight(summary, now); insight != nil {
		insights = append(insights, *insight)
	}

	patternInsights, err := s.patternInsights(ctx, userID, day.Add(24*time.Hour), now)
	if err != nil {
		return nil, err
	}
	insights = append(insights, patternInsights...)

	for _, insight := range insights {
		if err := s.store(ctx, insight); err != nil {
			return nil, err
		}
	}
	logging.WithUser(userID.String()).Info("generated insights", "date", day.Format("2006-01-02"), "count", len(insights))
	return insights, nil
}

func (s *InsightService) focusInsight(summary models.DailySummary, baseline models.Baseline, now time.Time) *models.Insight {
	if baseline.AvgFocusMinutes <= 0 {
		return nil
	}
	threshold := baseline.AvgFocusMinutes * s.cfg.FocusLowRatio
	if summary.FocusMinutes >= threshold {
		return nil
	}
	drop := (1 - summary.FocusMinutes/baseline.AvgFocusMinutes) * 100
	return &models.Insight{
		ID:             uuid.New(),
		UserID:         summary.UserID,
		Type:           models.InsightFocusLow,
		Content:        fmt.Sprintf("Focus time was %.0f minutes, %.0f%% below your %.0f-minute baseline.", summary.FocusMinutes, drop, baseline.AvgFocusMinutes),
		Recommendation: "Try protecting your strongest focus window tomorrow and deferring meetings out of it.",
		Evidence: map[string]float64{
			"focus_minutes":    summary.FocusMinutes,
			"baseline_minutes": baseline.AvgFocusMinutes,
			"ratio_threshold":  s.cfg.FocusLowRatio,
		},
		GeneratedAt: now,
	}
}

func (s *InsightService) stressInsight(summary models.DailySummary, now time.Time) *models.Insight {
	if summary.StressPeriods <= s.cfg.StressHighThreshold {
		return nil
	}
	return &models.Insight{
		ID:             uuid.New(),
		UserID:         summary.UserID,
		Type:           models.InsightStressHigh,
		Content:        fmt.Sprintf("You had %d sustained stress periods today, above the usual %d.", summary.StressPeriods, s.cfg.StressHighThreshold),
		Recommendation: "Short breaks after high-pressure blocks tend to cut the following period's stress carry-over.",
		Evidence: map[string]float64{
			"stress_periods": float64(summary.StressPeriods),
			"threshold":      float64(s.cfg.StressHighThreshold),
		},
		GeneratedAt: now,
	}
}

// patternInsights surfaces patterns above the strength threshold that have
// not been shown to the user before. Surfaced keys are remembered so the
// same pattern does not reappear every day.
func (s *InsightService) patternInsights(ctx context.Context, userID uuid.UUID, end, now time.Time) ([]models.Insight, error) {
	var insights []models.Insight
	for _, kind := range []string{"activity_correlation", "time_of_day"} {
		patterns, err := s.brain.FindPatterns(ctx, userID, kind, end, models.StateDeepFocus)
		if err != nil {
			return nil, err
		}
		for _, p := range patterns {
			if p.Strength < s.cfg.PatternStrengthThreshold {
				continue
			}
			key := fmt.Sprintf("%s/%s", p.Kind, p.Description)
			fresh, err := s.markSurfaced(ctx, userID, key, now)
			if err != nil {
				return nil, err
			}
			if !fresh {
				continue
			}
			insights = append(insights, models.Insight{
				ID:          uuid.New(),
				UserID:      userID,
				Type:        models.InsightPattern,
				Content:     p.Description,
				Evidence:    p.Evidence,
				GeneratedAt: now,
			})
		}
	}
	return insights, nil
}

// markSurfaced records a pattern key and reports whether it was new.
func (s *InsightService) markSurfaced(ctx context.Context, userID uuid.UUID, key string, now time.Time) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO surfaced_patterns (user_id, pattern_key, surfaced_at)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id, pattern_key) DO NOTHING`,
		userID.String(), key, now.Format(time.RFC3339))
	if err != nil {
		return false, fmt.Errorf("failed to record pattern: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// List returns a user's insights, newest first. Dismissed ones are excluded
// unless includeDismissed is set.
func (s *InsightService) List(ctx context.Context, userID uuid.UUID, includeDismissed bool, limit int) ([]models.Insight, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, type, content, recommendation, evidence, generated_at, dismissed
		FROM insights WHERE user_id = ?`
	if !includeDismissed {
		query += ` AND dismissed = 0`
	}
	query += ` ORDER BY generated_at DESC LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, userID.String(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to read insights: %w", err)
	}
	defer rows.Close()

	var insights []models.Insight
	for rows.Next() {
		var insight models.Insight
		var id, evidence, generated string
		var dismissed int
		if err := rows.Scan(&id, &insight.Type, &insight.Content, &insight.Recommendation, &evidence, &generated, &dismissed); err != nil {
			return nil, err
		}
		insight.UserID = userID
		insight.Dismissed = dismissed != 0
		if parsed, err := uuid.Parse(id); err == nil {
			insight.ID = parsed
		}
		if t, err := time.Parse(time.RFC3339, generated); err == nil {
			insight.GeneratedAt = t
		}
		if err := json.Unmarshal([]byte(evidence), &insight.Evidence); err != nil {
			return nil, fmt.Errorf("failed to decode evidence: %w", err)
		}
		insights = append(insights, insight)
	}
	return insights, rows.Err()
}

// Dismiss marks an insight as dismissed for its owner.
func (s *InsightService) Dismiss(ctx context.Context, userID, insightID uuid.UUID) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE insights SET dismissed = 1 WHERE id = ? AND user_id = ?`,
		insightID.String(), userID.String())
	if err != nil {
		return fmt.Errorf("failed to dismiss insight: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrInsightNotFound
	}
	return nil
}

func (s *InsightService) store(ctx context.Context, insight models.Insight) error {
	evidence, err := json.Marshal(insight.Evidence)
	if err != nil {
		return fmt.Errorf("failed to encode evidence: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO insights (id, user_id, type, content, recommendation, evidence, generated_at, dismissed)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0)`,
		insight.ID.String(), insight.UserID.String(), string(insight.Type),
		insight.Content, insight.Recommendation, string(evidence),
		insight.GeneratedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to store insight: %w", err)
	}
	if s.metrics != nil {
		s.metrics.RecordInsight(string(insight.Type))
	}
	return nil
}
