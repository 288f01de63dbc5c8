package analysis

import (
	"neuroinsights/internal/models"
)

// Classification is one label with its heuristic confidence, in (0,1].
type Classification struct {
	State      models.CognitiveState `json:"state"`
	Confidence float64               `json:"confidence"`
}

// Rule is one entry of the ordered classification table. Match sees the
// current vector plus the trailing context (older vectors, oldest first);
// only the fluctuation rule consults the trail.
type Rule struct {
	Name       string
	State      models.CognitiveState
	Confidence float64
	Match      func(v models.NormalizedBandVector, trail []models.NormalizedBandVector) bool
}

// ClassifierConfig tunes the fluctuation (distracted) detection.
type ClassifierConfig struct {
	// TrailWindow is the number of trailing samples kept for the fluctuation
	// test. At the one-minute cadence the default covers about three minutes.
	TrailWindow int
	// InstabilityThreshold is the relative range cutoff: a band counts as
	// unstable when (max-min) over the trail exceeds threshold times its mean.
	InstabilityThreshold float64
}

// DefaultClassifierConfig returns the documented defaults.
func DefaultClassifierConfig() ClassifierConfig {
	return ClassifierConfig{
		TrailWindow:          3,
		InstabilityThreshold: 0.5,
	}
}

// Rules builds the ordered rule table. First match wins; order matters and
// must be preserved. The final rule always matches, so classification is
// exhaustive and mutually exclusive by construction.
func Rules(cfg ClassifierConfig) []Rule {
	return []Rule{
		{
			Name: "stressed", State: models.StateStressed, Confidence: 0.80,
			Match: func(v models.NormalizedBandVector, _ []models.NormalizedBandVector) bool {
				return v.Beta > 0.85 && v.Alpha < 0.3
			},
		},
		{
			Name: "deep_focus", State: models.StateDeepFocus, Confidence: 0.85,
			Match: func(v models.NormalizedBandVector, _ []models.NormalizedBandVector) bool {
				return v.Beta > 0.70 && v.Alpha < 0.3
			},
		},
		{
			Name: "relaxed", State: models.StateRelaxed, Confidence: 0.80,
			Match: func(v models.NormalizedBandVector, _ []models.NormalizedBandVector) bool {
				return v.Alpha > 0.70 && v.Beta < 0.4
			},
		},
		{
			Name: "creative_flow", State: models.StateCreativeFlow, Confidence: 0.75,
			Match: func(v models.NormalizedBandVector, _ []models.NormalizedBandVector) bool {
				return v.Theta > 0.60 && v.Alpha > 0.5
			},
		},
		{
			Name: "drowsy", State: models.StateDrowsy, Confidence: 0.80,
			Match: func(v models.NormalizedBandVector, _ []models.NormalizedBandVector) bool {
				return v.Theta > 0.70 && v.Beta < 0.3
			},
		},
		{
			Name: "distracted", State: models.StateDistracted, Confidence: 0.70,
			Match: func(v models.NormalizedBandVector, trail []models.NormalizedBandVector) bool {
				return fluctuating(v, trail, cfg)
			},
		},
		{
			Name: "neutral", State: models.StateNeutral, Confidence: 0.60,
			Match: func(models.NormalizedBandVector, []models.NormalizedBandVector) bool {
				return true
			},
		},
	}
}

// fluctuating is the distracted test: over the trailing window plus the
// current sample, both beta and alpha must show a range exceeding the
// instability threshold relative to their mean. Requires a full trail so the
// early samples of a session cannot spuriously classify as distracted.
func fluctuating(v models.NormalizedBandVector, trail []models.NormalizedBandVector, cfg ClassifierConfig) bool {
	if len(trail) < cfg.TrailWindow {
		return false
	}
	betas := make([]float64, 0, len(trail)+1)
	alphas := make([]float64, 0, len(trail)+1)
	for _, t := range trail {
		betas = append(betas, t.Beta)
		alphas = append(alphas, t.Alpha)
	}
	betas = append(betas, v.Beta)
	alphas = append(alphas, v.Alpha)
	return unstable(betas, cfg.InstabilityThreshold) && unstable(alphas, cfg.InstabilityThreshold)
}

func unstable(values []float64, threshold float64) bool {
	min, max, sum := values[0], values[0], 0.0
	for _, x := range values {
		if x < min {
			min = x
		}
		if x > max {
			max = x
		}
		sum += x
	}
	mean := sum / float64(len(values))
	if mean <= 0 {
		return false
	}
	return (max-min) > threshold*mean
}

// Classifier maps normalized band vectors to cognitive states through the
// ordered rule table. It is a small stateful window operator: the trailing
// buffer backs the fluctuation rule, so a classifier must not be shared
// across sessions without a Reset in between.
type Classifier struct {
	rules []Rule
	trail []models.NormalizedBandVector
	cfg   ClassifierConfig
}

// NewClassifier creates a classifier with its own trailing buffer.
func NewClassifier(cfg ClassifierConfig) *Classifier {
	if cfg.TrailWindow < 1 {
		cfg = DefaultClassifierConfig()
	}
	return &Classifier{rules: Rules(cfg), cfg: cfg}
}

// Classify labels one vector. Identical vector sequences always produce
// identical label sequences. A band outside [0,1] is rejected with an
// InvalidInputError; normalization is the caller's responsibility.
func (c *Classifier) Classify(v models.NormalizedBandVector) (Classification, error) {
	for i, band := range v.Bands() {
		if band < 0 || band > 1 {
			return Classification{}, &InvalidInputError{Band: models.BandNames[i], Value: band}
		}
	}

	var result Classification
	for _, rule := range c.rules {
		if rule.Match(v, c.trail) {
			result = Classification{State: rule.State, Confidence: rule.Confidence}
			break
		}
	}

	c.trail = append(c.trail, v)
	if len(c.trail) > c.cfg.TrailWindow {
		c.trail = c.trail[1:]
	}
	return result, nil
}

// ClassifyAll labels a sequence in order, sharing the trailing buffer.
func (c *Classifier) ClassifyAll(vectors []models.NormalizedBandVector) ([]Classification, error) {
	out := make([]Classification, 0, len(vectors))
	for _, v := range vectors {
		cls, err := c.Classify(v)
		if err != nil {
			return nil, err
		}
		out = append(out, cls)
	}
	return out, nil
}

// Reset clears the trailing buffer. Call between independent sessions so
// fluctuation context cannot leak across session boundaries.
func (c *Classifier) Reset() {
	c.trail = nil
}
