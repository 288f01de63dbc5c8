package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"neuroinsights/internal/analysis"
	"neuroinsights/internal/config"
	"neuroinsights/internal/models"
)

// BrainDataService runs the analysis pipeline: it pulls raw samples from the
// source, normalizes them against the device ceiling, classifies them in
// order, and answers period queries over the labeled points.
type BrainDataService struct {
	source     SampleSource
	activities ActivitySource
	cfg        *config.Config
	metrics    *Metrics
}

// NewBrainDataService creates the analysis service.
func NewBrainDataService(source SampleSource, activities ActivitySource, cfg *config.Config, metrics *Metrics) *BrainDataService {
	return &BrainDataService{
		source:     source,
		activities: activities,
		cfg:        cfg,
		metrics:    metrics,
	}
}

func (s *BrainDataService) classifierConfig() analysis.ClassifierConfig {
	return analysis.ClassifierConfig{
		TrailWindow:          s.cfg.TrailWindow,
		InstabilityThreshold: s.cfg.InstabilityThreshold,
	}
}

// Points runs the full pipeline for a period and returns minute-cadence
// labeled points. Samples with missing bands stay in the series unlabeled
// with confidence 0 so downstream intervals keep their time extent; they are
// skipped by every statistic.
func (s *BrainDataService) Points(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]models.BrainDataPoint, error) {
	samples, err := s.source.Samples(ctx, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to read samples: %w", err)
	}

	ref := analysis.UniformReference(s.cfg.DeviceCeiling)
	classifier := analysis.NewClassifier(s.classifierConfig())

	points := make([]models.BrainDataPoint, 0, len(samples))
	for _, sample := range samples {
		point := models.BrainDataPoint{Time: sample.Time, Activity: sample.Activity}

		vector, err := analysis.NormalizeSample(sample.BandPowerSample, ref)
		if err != nil {
			var quality *analysis.DataQualityError
			if errors.As(err, &quality) {
				if s.metrics != nil {
					s.metrics.RecordExcludedSample()
				}
				points = append(points, point)
				continue
			}
			return nil, err
		}

		cls, err := classifier.Classify(vector)
		if err != nil {
			return nil, err
		}

		point.Delta = vector.Delta
		point.Theta = vector.Theta
		point.Alpha = vector.Alpha
		point.Beta = vector.Beta
		point.Gamma = vector.Gamma
		point.State = cls.State
		point.Confidence = cls.Confidence
		if s.metrics != nil {
			s.metrics.RecordClassification(string(cls.State))
		}
		points = append(points, point)
	}
	return points, nil
}

// GetBrainData returns classified points at the requested granularity.
func (s *BrainDataService) GetBrainData(ctx context.Context, userID uuid.UUID, start, end time.Time, granularity string) ([]models.BrainDataPoint, error) {
	if granularity == "" {
		granularity = "minute"
	}
	if !analysis.ValidGranularity(granularity) {
		return nil, fmt.Errorf("unsupported granularity: %s", granularity)
	}

	points, err := s.Points(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}
	return analysis.Aggregate(points, granularity, s.classifierConfig())
}

// GetStateDistribution returns the per-state percentage breakdown for a
// period along with the labeled sample count behind it.
func (s *BrainDataService) GetStateDistribution(ctx context.Context, userID uuid.UUID, start, end time.Time) (models.StateDistribution, int, error) {
	points, err := s.Points(ctx, userID, start, end)
	if err != nil {
		return models.StateDistribution{}, 0, err
	}

	labeled := 0
	for _, p := range points {
		if p.State != "" {
			labeled++
		}
	}
	return analysis.Distribution(points), labeled, nil
}

// CognitiveScoreResult is a scored period with its supporting numbers.
type CognitiveScoreResult struct {
	Score        int                      `json:"score"`
	Distribution models.StateDistribution `json:"state_distribution"`
	FocusMinutes float64                  `json:"focus_minutes"`
	SampleCount  int                      `json:"sample_count"`
	Defaulted    bool                     `json:"defaulted,omitempty"`
}

// defaultCognitiveScore is reported when a period has no labeled data at
// all: a neutral-ish score rather than the zero the formula would produce.
const defaultCognitiveScore = 70

// GetCognitiveScore computes the 0-100 score for a period.
func (s *BrainDataService) GetCognitiveScore(ctx context.Context, userID uuid.UUID, start, end time.Time) (CognitiveScoreResult, error) {
	points, err := s.Points(ctx, userID, start, end)
	if err != nil {
		return CognitiveScoreResult{}, err
	}

	labeled := 0
	for _, p := range points {
		if p.State != "" {
			labeled++
		}
	}
	if labeled == 0 {
		return CognitiveScoreResult{Score: defaultCognitiveScore, Defaulted: true}, nil
	}

	dist := analysis.Distribution(points)
	return CognitiveScoreResult{
		Score:        analysis.CognitiveScore(dist),
		Distribution: dist,
		FocusMinutes: analysis.FocusMinutes(points),
		SampleCount:  labeled,
	}, nil
}

// GetActivities builds the activity timeline for a period: contiguous runs of
// points sharing an activity label, each with its state breakdown. Points with
// no activity label get one inferred from their dominant state. Runs shorter
// than MinActivityMinutes are merged into the preceding segment.
func (s *BrainDataService) GetActivities(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]models.ActivitySegment, error) {
	points, err := s.Points(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}

	recorded, err := s.activities.Activities(ctx, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to read activities: %w", err)
	}

	// Recorded activities take precedence over the sample's own label.
	labels := make([]string, len(points))
	sources := make([]string, len(points))
	for i, p := range points {
		labels[i] = p.Activity
		sources[i] = "inferred"
		if p.Activity != "" {
			sources[i] = "scenario"
		}
		for _, a := range recorded {
			if a.Source != "scenario" && a.Contains(p.Time) {
				labels[i] = a.Name
				sources[i] = "recorded"
				break
			}
		}
		if labels[i] == "" {
			labels[i] = inferActivity(p.State)
		}
	}

	var segments []models.ActivitySegment
	runStart := 0
	for i := 1; i <= len(points); i++ {
		boundary := i == len(points) ||
			labels[i] != labels[runStart] ||
			points[i].Time.Sub(points[i-1].Time) > 2*time.Minute
		if !boundary {
			continue
		}
		segments = append(segments, buildSegment(points[runStart:i], labels[runStart], sources[runStart]))
		runStart = i
	}

	return mergeShortSegments(segments, s.cfg.MinActivityMinutes), nil
}

// ComparePeriods diffs two periods. Changes are period1 minus period2, so a
// positive focus change means period1 had more.
func (s *BrainDataService) ComparePeriods(ctx context.Context, userID uuid.UUID, start1, end1, start2, end2 time.Time) (models.PeriodComparison, error) {
	m1, err := s.periodMetrics(ctx, userID, start1, end1)
	if err != nil {
		return models.PeriodComparison{}, err
	}
	m2, err := s.periodMetrics(ctx, userID, start2, end2)
	if err != nil {
		return models.PeriodComparison{}, err
	}

	return models.PeriodComparison{
		Period1: m1,
		Period2: m2,
		Changes: models.ComparisonChanges{
			CognitiveScoreChange: m1.CognitiveScore - m2.CognitiveScore,
			FocusChange:          m1.FocusMinutes - m2.FocusMinutes,
			StressChange:         m1.StressPercent - m2.StressPercent,
		},
	}, nil
}

func (s *BrainDataService) periodMetrics(ctx context.Context, userID uuid.UUID, start, end time.Time) (models.PeriodMetrics, error) {
	points, err := s.Points(ctx, userID, start, end)
	if err != nil {
		return models.PeriodMetrics{}, err
	}

	dist := analysis.Distribution(points)
	score := defaultCognitiveScore
	if labeledCount(points) > 0 {
		score = analysis.CognitiveScore(dist)
	}
	return models.PeriodMetrics{
		Start:          start,
		End:            end,
		CognitiveScore: score,
		FocusMinutes:   analysis.FocusMinutes(points),
		StressPercent:  dist.Stressed,
		Distribution:   &dist,
	}, nil
}

// PatternResult is one discovered pattern of any kind.
type PatternResult struct {
	Kind        string             `json:"kind"`
	Description string             `json:"description"`
	Strength    float64            `json:"strength"`
	Evidence    map[string]float64 `json:"evidence"`
}

// FindPatterns mines a lookback window for one pattern kind:
// activity_correlation, time_of_day, state_transitions or focus_windows.
func (s *BrainDataService) FindPatterns(ctx context.Context, userID uuid.UUID, kind string, end time.Time, target models.CognitiveState) ([]PatternResult, error) {
	if target == "" {
		target = models.StateDeepFocus
	}
	if !target.Valid() {
		return nil, fmt.Errorf("unknown target state: %s", target)
	}

	start := end.AddDate(0, 0, -s.cfg.PatternLookbackDays)
	points, err := s.Points(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}

	switch kind {
	case "activity_correlation":
		return s.activityCorrelations(ctx, userID, points, start, end, target)
	case "time_of_day":
		return s.timeOfDayPatterns(points, target), nil
	case "state_transitions":
		return transitionPatterns(points), nil
	case "focus_windows":
		return focusWindowPatterns(points, time.Duration(s.cfg.MinFocusWindowMinutes)*time.Minute), nil
	default:
		return nil, fmt.Errorf("unknown pattern kind: %s", kind)
	}
}

func (s *BrainDataService) activityCorrelations(ctx context.Context, userID uuid.UUID, points []models.BrainDataPoint, start, end time.Time, target models.CognitiveState) ([]PatternResult, error) {
	activities, err := s.activities.Activities(ctx, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to read activities: %w", err)
	}

	correlations := analysis.CorrelateActivities(points, activities, target)
	results := make([]PatternResult, 0, len(correlations))
	for _, c := range correlations {
		direction := "more"
		if c.Strength < 0 {
			direction = "less"
		}
		results = append(results, PatternResult{
			Kind: "activity_correlation",
			Description: fmt.Sprintf("During %s you are %s in %s %.0f%% of the time (%s overall: %.0f%%)",
				c.Activity, direction+" often", target, c.ActivityRate*100, target, c.GlobalRate*100),
			Strength: c.Strength,
			Evidence: map[string]float64{
				"activity_rate": c.ActivityRate,
				"global_rate":   c.GlobalRate,
				"samples":       float64(c.SampleCount),
			},
		})
	}
	return results, nil
}

func (s *BrainDataService) timeOfDayPatterns(points []models.BrainDataPoint, target models.CognitiveState) []PatternResult {
	windows := analysis.OptimalWindows(points, target, analysis.WindowConfig{
		BucketMinutes:  s.cfg.BucketMinutes,
		MinSamples:     s.cfg.MinBucketSamples,
		MergeThreshold: s.cfg.WindowMergeThreshold,
		TopK:           s.cfg.TopWindows,
	})

	results := make([]PatternResult, 0, len(windows))
	for _, w := range windows {
		results = append(results, PatternResult{
			Kind:        "time_of_day",
			Description: fmt.Sprintf("You reach %s most reliably between %s (%.0f%% of samples)", target, w.Label(), w.Probability*100),
			Strength:    w.Probability,
			Evidence: map[string]float64{
				"probability": w.Probability,
				"samples":     float64(w.Samples),
			},
		})
	}
	return results
}

func transitionPatterns(points []models.BrainDataPoint) []PatternResult {
	transitions := analysis.StateTransitions(points)
	results := make([]PatternResult, 0, len(transitions))
	for _, tr := range transitions {
		results = append(results, PatternResult{
			Kind:        "state_transitions",
			Description: fmt.Sprintf("From %s you most often move to %s (%.0f%% of exits)", tr.From, tr.To, tr.Probability*100),
			Strength:    tr.Probability,
			Evidence: map[string]float64{
				"count":       float64(tr.Count),
				"probability": tr.Probability,
			},
		})
	}
	return results
}

func focusWindowPatterns(points []models.BrainDataPoint, minDuration time.Duration) []PatternResult {
	windows := analysis.FocusWindows(points, minDuration)
	results := make([]PatternResult, 0, len(windows))
	for _, w := range windows {
		results = append(results, PatternResult{
			Kind:        "focus_windows",
			Description: fmt.Sprintf("Sustained focus from %s to %s (%d minutes)", w.Start.Format("Jan 2 15:04"), w.End.Format("15:04"), w.Minutes),
			Strength:    float64(w.Minutes),
			Evidence: map[string]float64{
				"minutes": float64(w.Minutes),
			},
		})
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Strength > results[j].Strength })
	return results
}

func labeledCount(points []models.BrainDataPoint) int {
	n := 0
	for _, p := range points {
		if p.State != "" {
			n++
		}
	}
	return n
}

func buildSegment(points []models.BrainDataPoint, label, source string) models.ActivitySegment {
	dist := analysis.Distribution(points)

	dominant := models.CognitiveState("")
	best := 0.0
	for _, state := range models.AllStates {
		if share := dist.Get(state); share > best {
			best = share
			dominant = state
		}
	}

	confidence, labeled := 0.0, 0
	for _, p := range points {
		if p.State != "" {
			confidence += p.Confidence
			labeled++
		}
	}
	if labeled > 0 {
		confidence /= float64(labeled)
	}

	return models.ActivitySegment{
		Activity:          label,
		StartTime:         points[0].Time,
		EndTime:           points[len(points)-1].Time.Add(time.Minute),
		DurationMinutes:   len(points),
		StateDistribution: dist,
		DominantState:     dominant,
		FocusPercentage:   dist.FocusShare(),
		AverageConfidence: confidence,
		Source:            source,
	}
}

func mergeShortSegments(segments []models.ActivitySegment, minMinutes int) []models.ActivitySegment {
	if len(segments) < 2 || minMinutes <= 1 {
		return segments
	}
	merged := segments[:1]
	for _, seg := range segments[1:] {
		last := &merged[len(merged)-1]
		if seg.DurationMinutes < minMinutes && seg.EndTime.Sub(last.EndTime) <= time.Duration(seg.DurationMinutes+1)*time.Minute {
			// Absorb the stub into its predecessor; the predecessor's label
			// and breakdown dominate.
			last.EndTime = seg.EndTime
			last.DurationMinutes += seg.DurationMinutes
			continue
		}
		merged = append(merged, seg)
	}
	return merged
}

// inferActivity guesses a coarse activity label from a point's state when
// neither the sample nor a recorded interval names one.
func inferActivity(state models.CognitiveState) string {
	switch state {
	case models.StateDeepFocus:
		return "focused_work"
	case models.StateCreativeFlow:
		return "creative_work"
	case models.StateRelaxed:
		return "rest"
	case models.StateStressed:
		return "high_pressure_work"
	case models.StateDrowsy:
		return "low_energy"
	case models.StateDistracted:
		return "context_switching"
	case models.StateNeutral:
		return "routine_tasks"
	default:
		return "unknown"
	}
}
