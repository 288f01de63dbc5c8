package models

import (
	"time"

	"github.com/google/uuid"
)

// DailySummary holds one closed day's metrics for a user.
type DailySummary struct {
	UserID         uuid.UUID         `json:"user_id"`
	Date           time.Time         `json:"date"` // midnight UTC of the summarized day
	FocusMinutes   float64           `json:"focus_minutes"`
	StressPeriods  int               `json:"stress_periods"`
	CognitiveScore int               `json:"cognitive_score"`
	SampleCount    int               `json:"sample_count"`
	Distribution   StateDistribution `json:"state_distribution"`
}

// Baseline is a user's rolling aggregate over the lookback window. It is
// recomputed from the window's daily summaries so it stays interpretable as
// "your last N days", rather than an exponential decay.
type Baseline struct {
	UserID           uuid.UUID         `json:"user_id"`
	Days             int               `json:"days"` // daily summaries backing this baseline
	AvgFocusMinutes  float64           `json:"avg_focus_minutes"`
	AvgStressPeriods float64           `json:"avg_stress_periods"`
	AvgDistribution  StateDistribution `json:"avg_state_distribution"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// PeriodComparison is the structured diff between two time periods.
type PeriodComparison struct {
	Period1 PeriodMetrics     `json:"period1"`
	Period2 PeriodMetrics     `json:"period2"`
	Changes ComparisonChanges `json:"changes"`
}

// PeriodMetrics summarizes one compared period.
type PeriodMetrics struct {
	Start          time.Time          `json:"start"`
	End            time.Time          `json:"end"`
	CognitiveScore int                `json:"cognitive_score"`
	FocusMinutes   float64            `json:"focus_minutes,omitempty"`
	StressPercent  float64            `json:"stress_percent,omitempty"`
	Distribution   *StateDistribution `json:"state_distribution,omitempty"`
}

// ComparisonChanges holds period1 minus period2 deltas.
type ComparisonChanges struct {
	CognitiveScoreChange int     `json:"cognitive_score_change"`
	FocusChange          float64 `json:"focus_change"`
	StressChange         float64 `json:"stress_change"`
}
