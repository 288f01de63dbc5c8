package models

import (
	"time"

	"github.com/google/uuid"
)

// Activity is a named interval of user activity. Intervals for the same user
// are assumed non-overlapping; that is the caller's responsibility.
type Activity struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Name      string    `json:"name"`
	Category  string    `json:"category,omitempty"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Source    string    `json:"source,omitempty"` // "recorded" or "scenario"
}

// Contains reports whether t falls within the activity interval [start, end).
func (a Activity) Contains(t time.Time) bool {
	return !t.Before(a.StartTime) && t.Before(a.EndTime)
}

// Minutes is the activity duration in whole minutes (at least 1).
func (a Activity) Minutes() int {
	m := int(a.EndTime.Sub(a.StartTime).Minutes())
	if m < 1 {
		m = 1
	}
	return m
}

// ActivitySegment is one entry of the derived activity timeline: a contiguous
// run of samples sharing the same activity label, with its state breakdown.
type ActivitySegment struct {
	Activity          string            `json:"activity"`
	StartTime         time.Time         `json:"start_time"`
	EndTime           time.Time         `json:"end_time"`
	DurationMinutes   int               `json:"duration_minutes"`
	StateDistribution StateDistribution `json:"state_distribution"`
	DominantState     CognitiveState    `json:"dominant_state"`
	FocusPercentage   float64           `json:"focus_percentage"`
	AverageConfidence float64           `json:"average_confidence"`
	Source            string            `json:"source"`
}
