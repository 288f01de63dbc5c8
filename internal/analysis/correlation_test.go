package analysis

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"neuroinsights/internal/models"
)

func activity(name string, start time.Time, minutes int) models.Activity {
	return models.Activity{
		ID:        uuid.New(),
		Name:      name,
		StartTime: start,
		EndTime:   start.Add(time.Duration(minutes) * time.Minute),
	}
}

// TestCorrelationRanking reproduces the reference scenario: activity A with
// 80% deep_focus samples must rank above activity B with 40%, against a
// global deep_focus rate of 50%.
func TestCorrelationRanking(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	var points []models.BrainDataPoint

	// Activity A: 10 samples, 8 deep_focus. Activity B: 10 samples, 4.
	// Filler outside both activities brings the global rate to 20/40 = 50%.
	aStart := start
	for i := 0; i < 10; i++ {
		state := models.StateDeepFocus
		if i >= 8 {
			state = models.StateNeutral
		}
		points = append(points, models.BrainDataPoint{Time: aStart.Add(time.Duration(i) * time.Minute), State: state})
	}
	bStart := start.Add(time.Hour)
	for i := 0; i < 10; i++ {
		state := models.StateDeepFocus
		if i >= 4 {
			state = models.StateNeutral
		}
		points = append(points, models.BrainDataPoint{Time: bStart.Add(time.Duration(i) * time.Minute), State: state})
	}
	fillerStart := start.Add(2 * time.Hour)
	for i := 0; i < 20; i++ {
		state := models.StateDeepFocus
		if i >= 8 {
			state = models.StateNeutral
		}
		points = append(points, models.BrainDataPoint{Time: fillerStart.Add(time.Duration(i) * time.Minute), State: state})
	}
	activities := []models.Activity{
		activity("coding", aStart, 10),
		activity("email", bStart, 10),
	}

	ranked := CorrelateActivities(points, activities, models.StateDeepFocus)
	if len(ranked) != 2 {
		t.Fatalf("Expected 2 ranked activities, got %d", len(ranked))
	}
	if ranked[0].Activity != "coding" {
		t.Errorf("Expected coding ranked first, got %s", ranked[0].Activity)
	}
	if ranked[0].Strength <= ranked[1].Strength {
		t.Errorf("Expected strictly stronger association for coding: %.2f vs %.2f",
			ranked[0].Strength, ranked[1].Strength)
	}
	if ranked[0].ActivityRate != 0.8 {
		t.Errorf("Expected coding rate 0.80, got %.2f", ranked[0].ActivityRate)
	}
	if ranked[0].GlobalRate != 0.5 {
		t.Errorf("Expected global rate 0.50, got %.2f", ranked[0].GlobalRate)
	}
}

// TestCorrelationTieBreaks checks equal strengths break by evidence then name.
func TestCorrelationTieBreaks(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	var points []models.BrainDataPoint
	add := func(at time.Time, n int, state models.CognitiveState) {
		for i := 0; i < n; i++ {
			points = append(points, models.BrainDataPoint{Time: at.Add(time.Duration(i) * time.Minute), State: state})
		}
	}
	// Both activities are 100% deep_focus; "writing" has more samples.
	add(start, 4, models.StateDeepFocus)
	add(start.Add(time.Hour), 8, models.StateDeepFocus)

	activities := []models.Activity{
		activity("reading", start, 4),
		activity("writing", start.Add(time.Hour), 8),
	}
	ranked := CorrelateActivities(points, activities, models.StateDeepFocus)
	if len(ranked) != 2 {
		t.Fatalf("Expected 2 activities, got %d", len(ranked))
	}
	if ranked[0].Activity != "writing" {
		t.Errorf("Expected writing first on sample count, got %s", ranked[0].Activity)
	}
}

func TestCorrelationNoData(t *testing.T) {
	if got := CorrelateActivities(nil, nil, models.StateDeepFocus); got != nil {
		t.Errorf("Expected nil for empty stream, got %v", got)
	}
}

func TestOptimalWindows(t *testing.T) {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	var points []models.BrainDataPoint
	addHour := func(hour int, days int, focusPerDay, totalPerDay int) {
		for d := 0; d < days; d++ {
			base := day.AddDate(0, 0, d).Add(time.Duration(hour) * time.Hour)
			for i := 0; i < totalPerDay; i++ {
				state := models.StateNeutral
				if i < focusPerDay {
					state = models.StateDeepFocus
				}
				points = append(points, models.BrainDataPoint{Time: base.Add(time.Duration(i) * time.Minute), State: state})
			}
		}
	}

	addHour(9, 5, 8, 10)  // 80% focus, well-populated
	addHour(10, 5, 7, 10) // 70%, adjacent: should merge with 9:00
	addHour(14, 5, 2, 10) // 20%, below threshold
	addHour(20, 1, 3, 3)  // 100% but sparse: must be excluded

	cfg := WindowConfig{BucketMinutes: 60, MinSamples: 20, MergeThreshold: 0.5, TopK: 3}
	windows := OptimalWindows(points, models.StateDeepFocus, cfg)
	if len(windows) != 1 {
		t.Fatalf("Expected exactly 1 merged window, got %d (%v)", len(windows), windows)
	}
	w := windows[0]
	if w.Start != 9*60 || w.End != 11*60 {
		t.Errorf("Expected window 09:00-11:00, got %s", w.Label())
	}
	if w.Probability < 0.7 || w.Probability > 0.8 {
		t.Errorf("Expected merged probability ~0.75, got %.2f", w.Probability)
	}
	if w.Samples != 100 {
		t.Errorf("Expected 100 samples across merged bins, got %d", w.Samples)
	}
}

func TestStateTransitions(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	points := labeledPoints(start,
		models.StateNeutral, models.StateDeepFocus, models.StateDeepFocus,
		models.StateDistracted, models.StateDeepFocus, models.StateDistracted,
	)

	transitions := StateTransitions(points)
	if len(transitions) != 3 {
		t.Fatalf("Expected 3 distinct transitions, got %d", len(transitions))
	}
	if transitions[0].From != models.StateDeepFocus || transitions[0].To != models.StateDistracted || transitions[0].Count != 2 {
		t.Errorf("Expected deep_focus->distracted x2 ranked first, got %+v", transitions[0])
	}
}

func TestHourlyScores(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	points := labeledPoints(start, models.StateDeepFocus, models.StateDeepFocus)
	scores := HourlyScores(points)
	if len(scores) != 1 {
		t.Fatalf("Expected scores for 1 hour, got %d", len(scores))
	}
	if scores[9] != 100 {
		t.Errorf("Expected score 100 for a pure focus hour, got %d", scores[9])
	}
}
