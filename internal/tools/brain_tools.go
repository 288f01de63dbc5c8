package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"neuroinsights/internal/models"
	"neuroinsights/internal/services"
	"neuroinsights/internal/utils"
)

// Deps carries the services the domain tools execute against. Now is
// injectable so relative periods resolve deterministically in tests.
type Deps struct {
	Brain         *services.BrainDataService
	Baseline      *services.BaselineService
	DefaultUserID uuid.UUID
	Now           func() time.Time
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now().UTC()
}

func (d Deps) userID(args map[string]interface{}) (uuid.UUID, error) {
	raw, ok := args["user_id"].(string)
	if !ok || raw == "" {
		return d.DefaultUserID, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid user_id: %s", raw)
	}
	return id, nil
}

func (d Deps) period(args map[string]interface{}) (time.Time, time.Time, error) {
	return utils.ParsePeriod(
		stringArg(args, "period"),
		stringArg(args, "start_time"),
		stringArg(args, "end_time"),
		d.now())
}

func stringArg(args map[string]interface{}, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

func toJSON(v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode result: %w", err)
	}
	return string(data), nil
}

// periodParams is the shared JSON-schema fragment for period selection.
func periodParams(extra map[string]interface{}) map[string]interface{} {
	props := map[string]interface{}{
		"user_id": map[string]interface{}{
			"type":        "string",
			"description": "User UUID. Defaults to the configured demo user.",
		},
		"period": map[string]interface{}{
			"type":        "string",
			"description": "Named period: today, yesterday, this_week, last_week, last_7_days, last_30_days. Alternative to explicit start/end.",
		},
		"start_time": map[string]interface{}{
			"type":        "string",
			"description": "Period start: RFC3339, YYYY-MM-DD, or relative ('2 days ago').",
		},
		"end_time": map[string]interface{}{
			"type":        "string",
			"description": "Period end, same formats as start_time.",
		},
	}
	for k, v := range extra {
		props[k] = v
	}
	return map[string]interface{}{
		"type":       "object",
		"properties": props,
		"required":   []string{},
	}
}

// RegisterBrainTools registers the analysis tool set.
func RegisterBrainTools(r *Registry, deps Deps) error {
	all := []*Tool{
		newGetBrainDataTool(deps),
		newGetStateDistributionTool(deps),
		newGetCognitiveScoreTool(deps),
		newCompareTimePeriodsTool(deps),
		newFindPatternsTool(deps),
		newGetActivitiesTool(deps),
		newGetBaselineTool(deps),
	}
	for _, tool := range all {
		if err := r.Register(tool); err != nil {
			return err
		}
	}
	return nil
}

func newGetBrainDataTool(deps Deps) *Tool {
	return &Tool{
		Name:        "get_brain_data",
		DisplayName: "Get Brain Data",
		Description: "Get classified brain-wave data points for a time period, at minute, 5min, 15min or hour granularity.",
		Category:    "data",
		Keywords:    []string{"brain", "waves", "eeg", "samples", "timeline"},
		Parameters: periodParams(map[string]interface{}{
			"granularity": map[string]interface{}{
				"type":        "string",
				"description": "Aggregation granularity: minute (default), 5min, 15min, hour.",
				"default":     "minute",
			},
		}),
		Execute: func(args map[string]interface{}) (string, error) {
			userID, err := deps.userID(args)
			if err != nil {
				return "", err
			}
			start, end, err := deps.period(args)
			if err != nil {
				return "", err
			}
			points, err := deps.Brain.GetBrainData(context.Background(), userID, start, end, stringArg(args, "granularity"))
			if err != nil {
				return "", err
			}
			return toJSON(map[string]interface{}{
				"start":  start,
				"end":    end,
				"count":  len(points),
				"points": points,
			})
		},
	}
}

func newGetStateDistributionTool(deps Deps) *Tool {
	return &Tool{
		Name:        "get_state_distribution",
		DisplayName: "Get State Distribution",
		Description: "Get the percentage of time spent in each cognitive state over a period.",
		Category:    "analysis",
		Keywords:    []string{"states", "distribution", "breakdown", "percentages"},
		Parameters:  periodParams(nil),
		Execute: func(args map[string]interface{}) (string, error) {
			userID, err := deps.userID(args)
			if err != nil {
				return "", err
			}
			start, end, err := deps.period(args)
			if err != nil {
				return "", err
			}
			dist, count, err := deps.Brain.GetStateDistribution(context.Background(), userID, start, end)
			if err != nil {
				return "", err
			}
			return toJSON(map[string]interface{}{
				"start":        start,
				"end":          end,
				"sample_count": count,
				"distribution": dist,
			})
		},
	}
}

func newGetCognitiveScoreTool(deps Deps) *Tool {
	return &Tool{
		Name:        "get_cognitive_score",
		DisplayName: "Get Cognitive Score",
		Description: "Get the 0-100 cognitive fitness score for a period, with its supporting distribution.",
		Category:    "analysis",
		Keywords:    []string{"score", "fitness", "performance"},
		Parameters:  periodParams(nil),
		Execute: func(args map[string]interface{}) (string, error) {
			userID, err := deps.userID(args)
			if err != nil {
				return "", err
			}
			start, end, err := deps.period(args)
			if err != nil {
				return "", err
			}
			result, err := deps.Brain.GetCognitiveScore(context.Background(), userID, start, end)
			if err != nil {
				return "", err
			}
			return toJSON(result)
		},
	}
}

func newCompareTimePeriodsTool(deps Deps) *Tool {
	return &Tool{
		Name:        "compare_time_periods",
		DisplayName: "Compare Time Periods",
		Description: "Compare cognitive metrics between two periods, e.g. this week vs last week.",
		Category:    "analysis",
		Keywords:    []string{"compare", "diff", "trend", "periods"},
		Parameters: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"user_id": map[string]interface{}{
					"type":        "string",
					"description": "User UUID. Defaults to the configured demo user.",
				},
				"period1": map[string]interface{}{
					"type":        "string",
					"description": "First named period (e.g. this_week).",
				},
				"period2": map[string]interface{}{
					"type":        "string",
					"description": "Second named period (e.g. last_week).",
				},
				"metric": map[string]interface{}{
					"type":        "string",
					"description": "Metric to compare: focus_time, stress_level, or all.",
					"enum":        []string{"focus_time", "stress_level", "all"},
					"default":     "all",
				},
			},
			"required": []string{"period1", "period2"},
		},
		Execute: func(args map[string]interface{}) (string, error) {
			userID, err := deps.userID(args)
			if err != nil {
				return "", err
			}
			metric := stringArg(args, "metric")
			if metric == "" {
				metric = "all"
			}
			if metric != "focus_time" && metric != "stress_level" && metric != "all" {
				return "", fmt.Errorf("invalid metric: %s (want focus_time, stress_level or all)", metric)
			}
			now := deps.now()
			start1, end1, err := utils.ParsePeriod(stringArg(args, "period1"), "", "", now)
			if err != nil {
				return "", fmt.Errorf("period1: %w", err)
			}
			start2, end2, err := utils.ParsePeriod(stringArg(args, "period2"), "", "", now)
			if err != nil {
				return "", fmt.Errorf("period2: %w", err)
			}
			cmp, err := deps.Brain.ComparePeriods(context.Background(), userID, start1, end1, start2, end2)
			if err != nil {
				return "", err
			}
			switch metric {
			case "focus_time":
				cmp.Period1.StressPercent, cmp.Period2.StressPercent = 0, 0
				cmp.Period1.Distribution, cmp.Period2.Distribution = nil, nil
				cmp.Changes.StressChange = 0
			case "stress_level":
				cmp.Period1.FocusMinutes, cmp.Period2.FocusMinutes = 0, 0
				cmp.Period1.Distribution, cmp.Period2.Distribution = nil, nil
				cmp.Changes.FocusChange = 0
			}
			return toJSON(map[string]interface{}{
				"metric":  metric,
				"period1": cmp.Period1,
				"period2": cmp.Period2,
				"changes": cmp.Changes,
			})
		},
	}
}

func newFindPatternsTool(deps Deps) *Tool {
	return &Tool{
		Name:        "find_patterns",
		DisplayName: "Find Patterns",
		Description: "Mine recent history for recurring patterns: activity correlations, optimal times of day, state transitions, or sustained focus windows.",
		Category:    "patterns",
		Keywords:    []string{"patterns", "correlation", "habits", "optimal"},
		Parameters: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"user_id": map[string]interface{}{
					"type":        "string",
					"description": "User UUID. Defaults to the configured demo user.",
				},
				"pattern_type": map[string]interface{}{
					"type":        "string",
					"description": "One of: activity_correlation, time_of_day, state_transitions, focus_windows.",
					"default":     "activity_correlation",
				},
				"target_state": map[string]interface{}{
					"type":        "string",
					"description": "Cognitive state to mine for (default deep_focus).",
					"default":     "deep_focus",
				},
			},
			"required": []string{},
		},
		Execute: func(args map[string]interface{}) (string, error) {
			userID, err := deps.userID(args)
			if err != nil {
				return "", err
			}
			kind := stringArg(args, "pattern_type")
			if kind == "" {
				kind = "activity_correlation"
			}
			target := models.CognitiveState(stringArg(args, "target_state"))
			patterns, err := deps.Brain.FindPatterns(context.Background(), userID, kind, deps.now(), target)
			if err != nil {
				return "", err
			}
			return toJSON(map[string]interface{}{
				"pattern_type": kind,
				"count":        len(patterns),
				"patterns":     patterns,
			})
		},
	}
}

func newGetActivitiesTool(deps Deps) *Tool {
	return &Tool{
		Name:        "get_activities",
		DisplayName: "Get Activities",
		Description: "Get the activity timeline for a period, each segment with its state breakdown and focus share.",
		Category:    "data",
		Keywords:    []string{"activities", "timeline", "segments"},
		Parameters:  periodParams(nil),
		Execute: func(args map[string]interface{}) (string, error) {
			userID, err := deps.userID(args)
			if err != nil {
				return "", err
			}
			start, end, err := deps.period(args)
			if err != nil {
				return "", err
			}
			segments, err := deps.Brain.GetActivities(context.Background(), userID, start, end)
			if err != nil {
				return "", err
			}
			return toJSON(map[string]interface{}{
				"start":    start,
				"end":      end,
				"count":    len(segments),
				"segments": segments,
			})
		},
	}
}

func newGetBaselineTool(deps Deps) *Tool {
	return &Tool{
		Name:        "get_baseline",
		DisplayName: "Get Baseline",
		Description: "Get the user's rolling baseline: average focus minutes, stress periods and state distribution over the lookback window.",
		Category:    "insights",
		Keywords:    []string{"baseline", "history", "average"},
		Parameters: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"user_id": map[string]interface{}{
					"type":        "string",
					"description": "User UUID. Defaults to the configured demo user.",
				},
			},
			"required": []string{},
		},
		Execute: func(args map[string]interface{}) (string, error) {
			userID, err := deps.userID(args)
			if err != nil {
				return "", err
			}
			baseline, err := deps.Baseline.Baseline(context.Background(), userID)
			if errors.Is(err, services.ErrNoBaseline) {
				return toJSON(map[string]interface{}{
					"established": false,
					"message":     "No baseline yet: no closed days recorded for this user.",
				})
			}
			if err != nil {
				return "", err
			}
			return toJSON(map[string]interface{}{
				"established": true,
				"baseline":    baseline,
			})
		},
	}
}
