package analysis

import (
	"fmt"
	"sort"

	"neuroinsights/internal/models"
)

// ActivityCorrelation measures how strongly an activity is associated with a
// target state. Strength is the activity's fraction of target-state samples
// minus the global fraction, so positive means over-represented.
type ActivityCorrelation struct {
	Activity     string                   `json:"activity"`
	State        models.CognitiveState    `json:"state"`
	Strength     float64                  `json:"strength"`
	ActivityRate float64                  `json:"activity_rate"`
	GlobalRate   float64                  `json:"global_rate"`
	SampleCount  int                      `json:"sample_count"`
	Occurrences  int                      `json:"occurrences"`
	Distribution models.StateDistribution `json:"state_distribution"`
}

// CorrelateActivities aggregates labeled samples against activity intervals
// and ranks activity names by association with the target state. Ties break
// by sample count descending (more evidence wins), then by name, so the
// ranking is fully deterministic.
func CorrelateActivities(points []models.BrainDataPoint, activities []models.Activity, target models.CognitiveState) []ActivityCorrelation {
	type bucket struct {
		points      []models.BrainDataPoint
		occurrences int
	}
	byName := make(map[string]*bucket)

	globalTarget, globalTotal := 0, 0
	for _, p := range points {
		if p.State == "" {
			continue
		}
		globalTotal++
		if p.State == target {
			globalTarget++
		}
	}
	if globalTotal == 0 {
		return nil
	}
	globalRate := float64(globalTarget) / float64(globalTotal)

	for _, act := range activities {
		b := byName[act.Name]
		if b == nil {
			b = &bucket{}
			byName[act.Name] = b
		}
		matched := false
		for _, p := range points {
			if p.State != "" && act.Contains(p.Time) {
				b.points = append(b.points, p)
				matched = true
			}
		}
		if matched {
			b.occurrences++
		}
	}

	correlations := make([]ActivityCorrelation, 0, len(byName))
	for name, b := range byName {
		if len(b.points) == 0 {
			continue
		}
		targetCount := 0
		for _, p := range b.points {
			if p.State == target {
				targetCount++
			}
		}
		rate := float64(targetCount) / float64(len(b.points))
		correlations = append(correlations, ActivityCorrelation{
			Activity:     name,
			State:        target,
			Strength:     round2(rate - globalRate),
			ActivityRate: round2(rate),
			GlobalRate:   round2(globalRate),
			SampleCount:  len(b.points),
			Occurrences:  b.occurrences,
			Distribution: Distribution(b.points),
		})
	}

	sort.Slice(correlations, func(i, j int) bool {
		if correlations[i].Strength != correlations[j].Strength {
			return correlations[i].Strength > correlations[j].Strength
		}
		if correlations[i].SampleCount != correlations[j].SampleCount {
			return correlations[i].SampleCount > correlations[j].SampleCount
		}
		return correlations[i].Activity < correlations[j].Activity
	})
	return correlations
}

// TimeWindow is a contiguous time-of-day window where a target state is
// empirically likely. Start and End are minutes after midnight.
type TimeWindow struct {
	Start       int     `json:"start_minute"`
	End         int     `json:"end_minute"`
	Probability float64 `json:"probability"`
	Samples     int     `json:"samples"`
}

// Label renders the window as "HH:MM-HH:MM".
func (w TimeWindow) Label() string {
	return fmt.Sprintf("%02d:%02d-%02d:%02d", w.Start/60, w.Start%60, w.End/60, w.End%60)
}

// WindowConfig tunes optimal-window discovery.
type WindowConfig struct {
	BucketMinutes  int     // time-of-day bin width (default 30)
	MinSamples     int     // minimum samples per bin; sparser bins are excluded
	MergeThreshold float64 // bins above this probability merge into windows
	TopK           int     // maximum windows returned
}

// DefaultWindowConfig returns the documented defaults.
func DefaultWindowConfig() WindowConfig {
	return WindowConfig{BucketMinutes: 30, MinSamples: 10, MergeThreshold: 0.5, TopK: 3}
}

// OptimalWindows buckets historical samples by time of day, computes each
// bucket's empirical probability of the target state, and merges adjacent
// buckets above the merge threshold into contiguous windows ranked by
// probability. Buckets below MinSamples are excluded rather than reported
// with misleadingly high probability.
func OptimalWindows(points []models.BrainDataPoint, target models.CognitiveState, cfg WindowConfig) []TimeWindow {
	if cfg.BucketMinutes < 1 {
		cfg = DefaultWindowConfig()
	}
	bins := 24 * 60 / cfg.BucketMinutes
	hits := make([]int, bins)
	totals := make([]int, bins)

	for _, p := range points {
		if p.State == "" {
			continue
		}
		minute := p.Time.Hour()*60 + p.Time.Minute()
		bin := minute / cfg.BucketMinutes
		totals[bin]++
		if p.State == target {
			hits[bin]++
		}
	}

	type binStat struct {
		index   int
		prob    float64
		samples int
	}
	eligible := make([]binStat, 0, bins)
	qualifies := make([]bool, bins)
	for i := 0; i < bins; i++ {
		if totals[i] < cfg.MinSamples {
			continue
		}
		prob := float64(hits[i]) / float64(totals[i])
		eligible = append(eligible, binStat{index: i, prob: prob, samples: totals[i]})
		qualifies[i] = prob >= cfg.MergeThreshold
	}
	if len(eligible) == 0 {
		return nil
	}

	// Merge adjacent qualifying bins into contiguous windows.
	var windows []TimeWindow
	probByBin := make(map[int]float64, len(eligible))
	samplesByBin := make(map[int]int, len(eligible))
	for _, b := range eligible {
		probByBin[b.index] = b.prob
		samplesByBin[b.index] = b.samples
	}
	for i := 0; i < bins; {
		if !qualifies[i] {
			i++
			continue
		}
		j := i
		hitSum, total := 0.0, 0
		for j < bins && qualifies[j] {
			hitSum += probByBin[j] * float64(samplesByBin[j])
			total += samplesByBin[j]
			j++
		}
		windows = append(windows, TimeWindow{
			Start:       i * cfg.BucketMinutes,
			End:         j * cfg.BucketMinutes,
			Probability: round2(hitSum / float64(total)),
			Samples:     total,
		})
		i = j
	}

	sort.Slice(windows, func(i, j int) bool {
		if windows[i].Probability != windows[j].Probability {
			return windows[i].Probability > windows[j].Probability
		}
		return windows[i].Start < windows[j].Start
	})
	if cfg.TopK > 0 && len(windows) > cfg.TopK {
		windows = windows[:cfg.TopK]
	}
	return windows
}

// HourlyScores computes the average cognitive score for each hour of day
// with at least one labeled sample.
func HourlyScores(points []models.BrainDataPoint) map[int]int {
	byHour := make(map[int][]models.BrainDataPoint)
	for _, p := range points {
		if p.State == "" {
			continue
		}
		h := p.Time.Hour()
		byHour[h] = append(byHour[h], p)
	}
	scores := make(map[int]int, len(byHour))
	for h, pts := range byHour {
		scores[h] = CognitiveScore(Distribution(pts))
	}
	return scores
}

// StateTransition counts how often one label follows another in the stream.
type StateTransition struct {
	From        models.CognitiveState `json:"from"`
	To          models.CognitiveState `json:"to"`
	Count       int                   `json:"count"`
	Probability float64               `json:"probability"` // of all transitions out of From
}

// StateTransitions extracts transitions between consecutive labeled points,
// ranked by count descending. Gaps wider than the sampling cadence break the
// sequence; self-transitions (state holding) are not reported.
func StateTransitions(points []models.BrainDataPoint) []StateTransition {
	counts := make(map[[2]models.CognitiveState]int)
	outgoing := make(map[models.CognitiveState]int)

	var prev *models.BrainDataPoint
	for i := range points {
		p := points[i]
		if p.State == "" {
			prev = nil
			continue
		}
		if prev != nil && p.Time.Sub(prev.Time) <= sampleGap && prev.State != p.State {
			counts[[2]models.CognitiveState{prev.State, p.State}]++
			outgoing[prev.State]++
		}
		prev = &points[i]
	}

	transitions := make([]StateTransition, 0, len(counts))
	for pair, n := range counts {
		transitions = append(transitions, StateTransition{
			From:        pair[0],
			To:          pair[1],
			Count:       n,
			Probability: round2(float64(n) / float64(outgoing[pair[0]])),
		})
	}
	sort.Slice(transitions, func(i, j int) bool {
		if transitions[i].Count != transitions[j].Count {
			return transitions[i].Count > transitions[j].Count
		}
		if transitions[i].From != transitions[j].From {
			return transitions[i].From < transitions[j].From
		}
		return transitions[i].To < transitions[j].To
	})
	return transitions
}
