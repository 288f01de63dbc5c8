package analysis

import (
	"math"
	"time"

	"neuroinsights/internal/models"
)

// sampleGap is the spacing above which consecutive points no longer count as
// contiguous. Points arrive at a one-minute cadence; a doubled gap means data
// was missing in between.
const sampleGap = 2 * time.Minute

// Distribution computes the per-state percentage of labeled points, rounded
// to one decimal. Unlabeled (quality-excluded) points are skipped; an
// interval with no labeled points yields the zero distribution.
func Distribution(points []models.BrainDataPoint) models.StateDistribution {
	counts := make(map[models.CognitiveState]int, len(models.AllStates))
	total := 0
	for _, p := range points {
		if p.State == "" {
			continue
		}
		counts[p.State]++
		total++
	}

	var dist models.StateDistribution
	if total == 0 {
		return dist
	}
	for _, s := range models.AllStates {
		dist.Set(s, round1(float64(counts[s])/float64(total)*100))
	}
	return dist
}

// CognitiveScore is the 0-100 fitness score: rewarded for focus share,
// penalized for stress, drowsiness and distraction.
func CognitiveScore(d models.StateDistribution) int {
	score := 50 +
		d.FocusShare()*0.5 -
		d.Stressed*0.8 -
		d.Drowsy*0.6 -
		d.Distracted*0.4
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return int(score)
}

// FocusMinutes counts minutes spent in deep_focus or creative_flow. Points
// are minute-cadence, so each labeled focus point contributes one minute.
func FocusMinutes(points []models.BrainDataPoint) float64 {
	minutes := 0
	for _, p := range points {
		if p.State.IsFocus() {
			minutes++
		}
	}
	return float64(minutes)
}

// Period is a contiguous labeled interval.
type Period struct {
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
	Minutes int       `json:"minutes"`
}

// StressPeriods finds contiguous stressed runs lasting at least minDuration.
// Runs break on any gap wider than the sampling cadence allows.
func StressPeriods(points []models.BrainDataPoint, minDuration time.Duration) []Period {
	return contiguousRuns(points, minDuration, func(s models.CognitiveState) bool {
		return s == models.StateStressed
	})
}

// FocusWindows finds sustained focus runs (deep_focus or creative_flow) of at
// least minDuration.
func FocusWindows(points []models.BrainDataPoint, minDuration time.Duration) []Period {
	return contiguousRuns(points, minDuration, func(s models.CognitiveState) bool {
		return s.IsFocus()
	})
}

func contiguousRuns(points []models.BrainDataPoint, minDuration time.Duration, match func(models.CognitiveState) bool) []Period {
	var runs []Period
	var current *Period

	flush := func() {
		if current != nil && time.Duration(current.Minutes)*time.Minute >= minDuration {
			runs = append(runs, *current)
		}
		current = nil
	}

	for _, p := range points {
		if p.State == "" || !match(p.State) {
			flush()
			continue
		}
		if current != nil && p.Time.Sub(current.End) > sampleGap {
			flush()
		}
		if current == nil {
			current = &Period{Start: p.Time, End: p.Time, Minutes: 1}
			continue
		}
		current.End = p.Time
		current.Minutes++
	}
	flush()
	return runs
}

// granularityMinutes maps a requested granularity to its bucket width.
var granularityMinutes = map[string]int{
	"minute": 1,
	"5min":   5,
	"15min":  15,
	"hour":   60,
}

// ValidGranularity reports whether g is a supported aggregation granularity.
func ValidGranularity(g string) bool {
	_, ok := granularityMinutes[g]
	return ok
}

// Aggregate buckets minute-cadence points into the requested granularity.
// Policy: mean band power per bucket, re-classified on the aggregate with a
// fresh classifier (the trailing buffer restarts at the aggregate cadence).
// Quality-excluded (unlabeled) points are skipped so they cannot dilute the
// bucket mean; a bucket with no labeled points stays unlabeled.
func Aggregate(points []models.BrainDataPoint, granularity string, cfg ClassifierConfig) ([]models.BrainDataPoint, error) {
	width, ok := granularityMinutes[granularity]
	if !ok {
		return nil, &InvalidInputError{Band: "granularity", Value: float64(len(granularity))}
	}
	if width == 1 || len(points) == 0 {
		return points, nil
	}

	classifier := NewClassifier(cfg)
	aggregated := make([]models.BrainDataPoint, 0, len(points)/width+1)

	for i := 0; i < len(points); i += width {
		end := i + width
		if end > len(points) {
			end = len(points)
		}
		bucket := points[i:end]

		agg := models.BrainDataPoint{Time: bucket[0].Time, Activity: bucket[0].Activity}
		labeled := 0
		for _, p := range bucket {
			if p.State == "" {
				continue
			}
			agg.Delta += p.Delta
			agg.Theta += p.Theta
			agg.Alpha += p.Alpha
			agg.Beta += p.Beta
			agg.Gamma += p.Gamma
			labeled++
		}
		if labeled == 0 {
			aggregated = append(aggregated, agg)
			continue
		}
		n := float64(labeled)
		agg.Delta /= n
		agg.Theta /= n
		agg.Alpha /= n
		agg.Beta /= n
		agg.Gamma /= n

		cls, err := classifier.Classify(models.NormalizedBandVector{
			Delta: clamp01(agg.Delta),
			Theta: clamp01(agg.Theta),
			Alpha: clamp01(agg.Alpha),
			Beta:  clamp01(agg.Beta),
			Gamma: clamp01(agg.Gamma),
		})
		if err != nil {
			return nil, err
		}
		agg.State = cls.State
		agg.Confidence = cls.Confidence
		aggregated = append(aggregated, agg)
	}
	return aggregated, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
