package analysis

import (
	"time"

	"github.com/google/uuid"

	"neuroinsights/internal/models"
)

// SummarizeDay folds one day's labeled points into a daily summary.
// minStressPeriod is the minimum duration for a contiguous stressed interval
// to count as a stress period.
func SummarizeDay(userID uuid.UUID, date time.Time, points []models.BrainDataPoint, minStressPeriod time.Duration) models.DailySummary {
	dist := Distribution(points)
	return models.DailySummary{
		UserID:         userID,
		Date:           date.UTC().Truncate(24 * time.Hour),
		FocusMinutes:   FocusMinutes(points),
		StressPeriods:  len(StressPeriods(points, minStressPeriod)),
		CognitiveScore: CognitiveScore(dist),
		SampleCount:    len(points),
		Distribution:   dist,
	}
}

// FoldBaseline recomputes a user's baseline from the daily summaries of the
// lookback window: a simple moving average over the window, not an
// exponential decay. If every day's metrics equal the current baseline the
// fold is a fixed point.
func FoldBaseline(userID uuid.UUID, dailies []models.DailySummary, now time.Time) models.Baseline {
	baseline := models.Baseline{UserID: userID, Days: len(dailies), UpdatedAt: now}
	if len(dailies) == 0 {
		return baseline
	}

	n := float64(len(dailies))
	var focus, stress float64
	var dist models.StateDistribution
	for _, d := range dailies {
		focus += d.FocusMinutes
		stress += float64(d.StressPeriods)
		for _, s := range models.AllStates {
			dist.Set(s, dist.Get(s)+d.Distribution.Get(s))
		}
	}

	baseline.AvgFocusMinutes = focus / n
	baseline.AvgStressPeriods = stress / n
	for _, s := range models.AllStates {
		dist.Set(s, round1(dist.Get(s)/n))
	}
	baseline.AvgDistribution = dist
	return baseline
}
