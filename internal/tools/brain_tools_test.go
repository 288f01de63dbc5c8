package tools

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"neuroinsights/internal/config"
	"neuroinsights/internal/database"
	"neuroinsights/internal/services"
	"neuroinsights/internal/synth"
)

var toolTestNow = time.Date(2026, 3, 4, 18, 0, 0, 0, time.UTC)

func newTestRegistry(t *testing.T) (*Registry, Deps) {
	t.Helper()

	db, err := database.New(filepath.Join(t.TempDir(), "tools.db"))
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Initialize(); err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}

	cfg := &config.Config{
		DeviceCeiling:            100,
		TrailWindow:              3,
		InstabilityThreshold:     0.5,
		MinStressPeriodMinutes:   5,
		MinFocusWindowMinutes:    15,
		MinActivityMinutes:       5,
		StressHighThreshold:      2,
		FocusLowRatio:            0.8,
		MinBaselineDays:          7,
		BaselineLookbackDays:     30,
		PatternLookbackDays:      7,
		PatternStrengthThreshold: 0.15,
		BucketMinutes:            30,
		MinBucketSamples:         10,
		WindowMergeThreshold:     0.5,
		TopWindows:               3,
	}

	source := services.NewMockSource(synth.Scenarios, synth.DefaultConfig(), time.Minute)
	activities := services.NewActivityService(db, source)
	brain := services.NewBrainDataService(source, activities, cfg, nil)
	baseline := services.NewBaselineService(db, brain, cfg, nil)

	deps := Deps{
		Brain:         brain,
		Baseline:      baseline,
		DefaultUserID: uuid.MustParse("a2f1c7de-93b4-4f5e-8a01-55c4e9b21d6f"),
		Now:           func() time.Time { return toolTestNow },
	}
	r := NewRegistry()
	if err := RegisterBrainTools(r, deps); err != nil {
		t.Fatalf("RegisterBrainTools failed: %v", err)
	}
	return r, deps
}

func TestRegistersAllBrainTools(t *testing.T) {
	r, _ := newTestRegistry(t)

	want := []string{
		"get_brain_data",
		"get_state_distribution",
		"get_cognitive_score",
		"compare_time_periods",
		"find_patterns",
		"get_activities",
		"get_baseline",
	}
	if r.Count() != len(want) {
		t.Fatalf("registered %d tools, want %d", r.Count(), len(want))
	}
	for _, name := range want {
		if _, ok := r.Get(name); !ok {
			t.Errorf("tool %s not registered", name)
		}
	}
}

func TestGetCognitiveScoreTool(t *testing.T) {
	r, _ := newTestRegistry(t)

	out, err := r.Execute("get_cognitive_score", map[string]interface{}{"period": "today"})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	var result struct {
		Score int `json:"score"`
	}
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("result not valid JSON: %v", err)
	}
	if result.Score < 0 || result.Score > 100 {
		t.Fatalf("score %d out of range", result.Score)
	}
}

func TestGetBrainDataToolGranularity(t *testing.T) {
	r, _ := newTestRegistry(t)

	out, err := r.Execute("get_brain_data", map[string]interface{}{
		"period":      "today",
		"granularity": "hour",
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	var result struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("result not valid JSON: %v", err)
	}
	if result.Count == 0 {
		t.Fatal("expected hourly points for a session day")
	}

	if _, err := r.Execute("get_brain_data", map[string]interface{}{
		"period":      "today",
		"granularity": "decade",
	}); err == nil {
		t.Fatal("expected error for unknown granularity")
	}
}

func TestCompareTimePeriodsTool(t *testing.T) {
	r, _ := newTestRegistry(t)

	out, err := r.Execute("compare_time_periods", map[string]interface{}{
		"period1": "this_week",
		"period2": "last_week",
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	var result struct {
		Changes struct {
			CognitiveScoreChange int `json:"cognitive_score_change"`
		} `json:"changes"`
	}
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("result not valid JSON: %v", err)
	}

	if _, err := r.Execute("compare_time_periods", map[string]interface{}{"period1": "this_week"}); err == nil {
		t.Fatal("expected error for missing period2")
	}
}

func TestCompareTimePeriodsToolMetricScope(t *testing.T) {
	r, _ := newTestRegistry(t)

	out, err := r.Execute("compare_time_periods", map[string]interface{}{
		"period1": "this_week",
		"period2": "last_week",
		"metric":  "focus_time",
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	var result struct {
		Metric  string `json:"metric"`
		Period1 struct {
			StressPercent float64 `json:"stress_percent"`
		} `json:"period1"`
		Changes struct {
			StressChange float64 `json:"stress_change"`
		} `json:"changes"`
	}
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("result not valid JSON: %v", err)
	}
	if result.Metric != "focus_time" {
		t.Fatalf("metric %q, want focus_time", result.Metric)
	}
	if result.Period1.StressPercent != 0 || result.Changes.StressChange != 0 {
		t.Fatal("focus_time comparison should not carry stress metrics")
	}

	if _, err := r.Execute("compare_time_periods", map[string]interface{}{
		"period1": "this_week",
		"period2": "last_week",
		"metric":  "heart_rate",
	}); err == nil {
		t.Fatal("expected error for unknown metric")
	}
}

func TestGetBaselineToolWithoutHistory(t *testing.T) {
	r, _ := newTestRegistry(t)

	out, err := r.Execute("get_baseline", map[string]interface{}{})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	var result struct {
		Established bool `json:"established"`
	}
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("result not valid JSON: %v", err)
	}
	if result.Established {
		t.Fatal("baseline reported established with no closed days")
	}
}

func TestToolRejectsBadUserID(t *testing.T) {
	r, _ := newTestRegistry(t)
	_, err := r.Execute("get_state_distribution", map[string]interface{}{
		"period":  "today",
		"user_id": "not-a-uuid",
	})
	if err == nil {
		t.Fatal("expected error for malformed user_id")
	}
}
