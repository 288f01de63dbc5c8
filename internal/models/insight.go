package models

import (
	"time"

	"github.com/google/uuid"
)

// InsightType tags the kind of observation an insight carries.
type InsightType string

const (
	InsightFocusLow         InsightType = "focus_low"
	InsightStressHigh       InsightType = "stress_high"
	InsightPattern          InsightType = "pattern"
	InsightInsufficientData InsightType = "insufficient_data"
)

// Insight is a generated, evidence-cited observation. Immutable once created
// except for the Dismissed flag, which is flipped by the API layer, never by
// the generator.
type Insight struct {
	ID             uuid.UUID          `json:"id"`
	UserID         uuid.UUID          `json:"user_id"`
	Type           InsightType        `json:"insight_type"`
	Content        string             `json:"content"`
	Recommendation string             `json:"recommendation,omitempty"`
	Evidence       map[string]float64 `json:"evidence,omitempty"`
	GeneratedAt    time.Time          `json:"generated_at"`
	Dismissed      bool               `json:"dismissed"`
}
