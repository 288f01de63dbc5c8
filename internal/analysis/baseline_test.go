package analysis

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"

	"neuroinsights/internal/models"
)

func TestSummarizeDay(t *testing.T) {
	userID := uuid.New()
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	states := make([]models.CognitiveState, 0, 60)
	for i := 0; i < 30; i++ {
		states = append(states, models.StateDeepFocus)
	}
	for i := 0; i < 10; i++ {
		states = append(states, models.StateStressed)
	}
	for i := 0; i < 20; i++ {
		states = append(states, models.StateNeutral)
	}
	points := labeledPoints(day.Add(9*time.Hour), states...)

	summary := SummarizeDay(userID, day, points, 5*time.Minute)
	if summary.FocusMinutes != 30 {
		t.Errorf("Expected 30 focus minutes, got %.0f", summary.FocusMinutes)
	}
	if summary.StressPeriods != 1 {
		t.Errorf("Expected 1 stress period, got %d", summary.StressPeriods)
	}
	if summary.SampleCount != 60 {
		t.Errorf("Expected 60 samples, got %d", summary.SampleCount)
	}
	if math.Abs(summary.Distribution.Total()-100) > 0.5 {
		t.Errorf("Summary distribution should close to 100, got %.1f", summary.Distribution.Total())
	}
}

// TestFoldBaselineFixedPoint checks baseline monotonicity under stable input:
// if every day's metrics equal the current baseline, folding changes nothing.
func TestFoldBaselineFixedPoint(t *testing.T) {
	userID := uuid.New()
	now := time.Date(2026, 3, 2, 0, 10, 0, 0, time.UTC)

	dist := models.StateDistribution{DeepFocus: 40, Relaxed: 20, Stressed: 10, Neutral: 30}
	dailies := make([]models.DailySummary, 0, 10)
	for i := 0; i < 10; i++ {
		dailies = append(dailies, models.DailySummary{
			UserID:        userID,
			Date:          now.AddDate(0, 0, -i),
			FocusMinutes:  120,
			StressPeriods: 2,
			Distribution:  dist,
		})
	}

	baseline := FoldBaseline(userID, dailies, now)
	if baseline.AvgFocusMinutes != 120 {
		t.Errorf("Expected avg focus 120, got %.1f", baseline.AvgFocusMinutes)
	}
	if baseline.AvgStressPeriods != 2 {
		t.Errorf("Expected avg stress periods 2, got %.1f", baseline.AvgStressPeriods)
	}
	if baseline.AvgDistribution != dist {
		t.Errorf("Expected unchanged distribution, got %+v", baseline.AvgDistribution)
	}
	if baseline.Days != 10 {
		t.Errorf("Expected 10 backing days, got %d", baseline.Days)
	}

	// Fold again with the baseline's own averages as a new day: still fixed.
	dailies = append(dailies[1:], models.DailySummary{
		UserID:        userID,
		Date:          now.AddDate(0, 0, 1),
		FocusMinutes:  baseline.AvgFocusMinutes,
		StressPeriods: 2,
		Distribution:  baseline.AvgDistribution,
	})
	refolded := FoldBaseline(userID, dailies, now)
	if refolded.AvgFocusMinutes != baseline.AvgFocusMinutes {
		t.Errorf("Fixed point violated: %.2f -> %.2f", baseline.AvgFocusMinutes, refolded.AvgFocusMinutes)
	}
}

func TestFoldBaselineMixedDays(t *testing.T) {
	userID := uuid.New()
	now := time.Now()
	dailies := []models.DailySummary{
		{UserID: userID, FocusMinutes: 100, StressPeriods: 1},
		{UserID: userID, FocusMinutes: 200, StressPeriods: 3},
	}
	baseline := FoldBaseline(userID, dailies, now)
	if baseline.AvgFocusMinutes != 150 {
		t.Errorf("Expected mean focus 150, got %.1f", baseline.AvgFocusMinutes)
	}
	if baseline.AvgStressPeriods != 2 {
		t.Errorf("Expected mean stress 2, got %.1f", baseline.AvgStressPeriods)
	}
}

func TestFoldBaselineEmpty(t *testing.T) {
	baseline := FoldBaseline(uuid.New(), nil, time.Now())
	if baseline.Days != 0 || baseline.AvgFocusMinutes != 0 {
		t.Errorf("Empty fold should produce a zero baseline, got %+v", baseline)
	}
}
