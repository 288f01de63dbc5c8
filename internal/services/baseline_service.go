package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"neuroinsights/internal/analysis"
	"neuroinsights/internal/config"
	"neuroinsights/internal/database"
	"neuroinsights/internal/logging"
	"neuroinsights/internal/models"
)

// ErrNoBaseline is returned when a user has no closed days yet.
var ErrNoBaseline = errors.New("no baseline recorded for user")

// BaselineService owns daily summaries and per-user baselines. A baseline is
// recomputed from the lookback window's summaries on every close, so it never
// drifts from its own history.
type BaselineService struct {
	db      *database.DB
	brain   *BrainDataService
	cfg     *config.Config
	metrics *Metrics

	// Per-user locks serialize closes: two concurrent closes for the same
	// user must not interleave their read-fold-write cycles.
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

// NewBaselineService creates the baseline service.
func NewBaselineService(db *database.DB, brain *BrainDataService, cfg *config.Config, metrics *Metrics) *BaselineService {
	return &BaselineService{
		db:      db,
		brain:   brain,
		cfg:     cfg,
		metrics: metrics,
		locks:   make(map[uuid.UUID]*sync.Mutex),
	}
}

func (s *BaselineService) userLock(userID uuid.UUID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[userID] = lock
	}
	return lock
}

// CloseDay summarizes one user-day, persists the summary, and refolds the
// user's baseline over the lookback window. Re-closing the same day replaces
// the summary, so the job is safe to rerun.
func (s *BaselineService) CloseDay(ctx context.Context, userID uuid.UUID, date time.Time) (models.DailySummary, error) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	day := date.UTC().Truncate(24 * time.Hour)
	points, err := s.brain.Points(ctx, userID, day, day.Add(24*time.Hour))
	if err != nil {
		return models.DailySummary{}, fmt.Errorf("failed to read day: %w", err)
	}

	summary := analysis.SummarizeDay(userID, day, points,
		time.Duration(s.cfg.MinStressPeriodMinutes)*time.Minute)

	if err := s.upsertSummary(ctx, summary); err != nil {
		return models.DailySummary{}, err
	}

	dailies, err := s.summariesSince(ctx, userID, day.AddDate(0, 0, -s.cfg.BaselineLookbackDays+1))
	if err != nil {
		return models.DailySummary{}, err
	}

	baseline := analysis.FoldBaseline(userID, dailies, time.Now().UTC())
	if err := s.upsertBaseline(ctx, baseline); err != nil {
		return models.DailySummary{}, err
	}

	if s.metrics != nil {
		s.metrics.RecordBaselineClose()
	}
	logger := logging.WithPeriod(logging.WithUser(userID.String()), day, day.AddDate(0, 0, 1))
	logger.Info("closed day",
		"focus_minutes", summary.FocusMinutes,
		"baseline_days", baseline.Days)
	return summary, nil
}

// Baseline returns the user's current baseline.
func (s *BaselineService) Baseline(ctx context.Context, userID uuid.UUID) (models.Baseline, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT days, avg_focus_minutes, avg_stress_periods, avg_distribution, updated_at
		FROM baselines WHERE user_id = ?`, userID.String())

	var b models.Baseline
	var distJSON string
	var updated string
	if err := row.Scan(&b.Days, &b.AvgFocusMinutes, &b.AvgStressPeriods, &distJSON, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Baseline{}, ErrNoBaseline
		}
		return models.Baseline{}, fmt.Errorf("failed to read baseline: %w", err)
	}
	b.UserID = userID
	if err := json.Unmarshal([]byte(distJSON), &b.AvgDistribution); err != nil {
		return models.Baseline{}, fmt.Errorf("failed to decode baseline distribution: %w", err)
	}
	if t, err := time.Parse(time.RFC3339, updated); err == nil {
		b.UpdatedAt = t
	}
	return b, nil
}

// Summaries returns the user's daily summaries since the given date,
// oldest first.
func (s *BaselineService) Summaries(ctx context.Context, userID uuid.UUID, since time.Time) ([]models.DailySummary, error) {
	return s.summariesSince(ctx, userID, since)
}

// KnownUsers lists users with at least one closed day, for jobs that sweep
// all users.
func (s *BaselineService) KnownUsers(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT user_id FROM daily_summaries ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []uuid.UUID
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			continue
		}
		users = append(users, id)
	}
	return users, rows.Err()
}

func (s *BaselineService) upsertSummary(ctx context.Context, summary models.DailySummary) error {
	distJSON, err := json.Marshal(summary.Distribution)
	if err != nil {
		return fmt.Errorf("failed to encode distribution: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO daily_summaries
			(user_id, date, focus_minutes, stress_periods, cognitive_score, sample_count, distribution)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, date) DO UPDATE SET
			focus_minutes=excluded.focus_minutes,
			stress_periods=excluded.stress_periods,
			cognitive_score=excluded.cognitive_score,
			sample_count=excluded.sample_count,
			distribution=excluded.distribution`,
		summary.UserID.String(), summary.Date.Format("2006-01-02"),
		summary.FocusMinutes, summary.StressPeriods, summary.CognitiveScore,
		summary.SampleCount, string(distJSON))
	if err != nil {
		return fmt.Errorf("failed to store daily summary: %w", err)
	}
	return nil
}

func (s *BaselineService) upsertBaseline(ctx context.Context, b models.Baseline) error {
	distJSON, err := json.Marshal(b.AvgDistribution)
	if err != nil {
		return fmt.Errorf("failed to encode distribution: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO baselines
			(user_id, days, avg_focus_minutes, avg_stress_periods, avg_distribution, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			days=excluded.days,
			avg_focus_minutes=excluded.avg_focus_minutes,
			avg_stress_periods=excluded.avg_stress_periods,
			avg_distribution=excluded.avg_distribution,
			updated_at=excluded.updated_at`,
		b.UserID.String(), b.Days, b.AvgFocusMinutes, b.AvgStressPeriods,
		string(distJSON), b.UpdatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to store baseline: %w", err)
	}
	return nil
}

func (s *BaselineService) summariesSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]models.DailySummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT date, focus_minutes, stress_periods, cognitive_score, sample_count, distribution
		FROM daily_summaries
		WHERE user_id = ? AND date >= ?
		ORDER BY date`,
		userID.String(), since.UTC().Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("failed to read summaries: %w", err)
	}
	defer rows.Close()

	var dailies []models.DailySummary
	for rows.Next() {
		var d models.DailySummary
		var date, distJSON string
		if err := rows.Scan(&date, &d.FocusMinutes, &d.StressPeriods, &d.CognitiveScore, &d.SampleCount, &distJSON); err != nil {
			return nil, err
		}
		d.UserID = userID
		if t, err := time.Parse("2006-01-02", date); err == nil {
			d.Date = t.UTC()
		}
		if err := json.Unmarshal([]byte(distJSON), &d.Distribution); err != nil {
			return nil, fmt.Errorf("failed to decode distribution: %w", err)
		}
		dailies = append(dailies, d)
	}
	return dailies, rows.Err()
}
