package synth

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"neuroinsights/internal/models"
)

// Config tunes a Generator.
type Config struct {
	// DeviceCeiling is the raw output scale: profile values in normalized
	// space are multiplied by it, so normalizing against the same ceiling
	// recovers the profile.
	DeviceCeiling float64
	// TransitionSamples is how many samples at a segment boundary ramp
	// linearly between the old and new state profile instead of jumping.
	// One sample approximates the ~30s physiological lag at minute cadence.
	TransitionSamples int
	// BaselineJitter is the per-user profile variation span (0.1 = ±10%).
	BaselineJitter float64
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{DeviceCeiling: 100, TransitionSamples: 1, BaselineJitter: 0.1}
}

// Sample is one synthetic reading with its ground-truth label attached.
type Sample struct {
	models.BandPowerSample
	State      models.CognitiveState `json:"state"`
	Activity   string                `json:"activity,omitempty"`
	Confidence float64               `json:"confidence"`
}

// Segment is one requested (state, duration) stretch of a session.
type Segment struct {
	State    models.CognitiveState
	Minutes  int
	Activity string
}

// SeedFromUser derives a stable seed from a user id, so each user gets a
// reproducible personal data stream.
func SeedFromUser(id uuid.UUID) int64 {
	return int64(binary.BigEndian.Uint64(id[:8]))
}

// Generator produces synthetic sessions. All randomness flows from the seed
// given at construction - never ambient global randomness - so identical
// (segments, seed) inputs produce byte-identical sample sequences.
type Generator struct {
	rng       *rand.Rand
	cfg       Config
	variation [5]float64 // per-band user baseline multiplier
}

// NewGenerator creates a seeded generator. The per-user baseline variation
// is drawn once from the seed, mimicking stable individual differences.
func NewGenerator(seed int64, cfg Config) *Generator {
	if cfg.DeviceCeiling <= 0 {
		cfg = DefaultConfig()
	}
	g := &Generator{rng: rand.New(rand.NewSource(seed)), cfg: cfg}
	for i := range g.variation {
		g.variation[i] = 1 + (g.rng.Float64()*2-1)*cfg.BaselineJitter
	}
	return g
}

// Session generates one sample per minute across the given segments. At each
// segment boundary band targets ramp linearly over TransitionSamples rather
// than jumping. Ground-truth state and activity come from the segment.
func (g *Generator) Session(start time.Time, segments []Segment) ([]Sample, error) {
	var samples []Sample
	minute := 0
	for si, seg := range segments {
		profile, ok := Profiles[seg.State]
		if !ok {
			return nil, fmt.Errorf("unknown state: %s", seg.State)
		}
		for i := 0; i < seg.Minutes; i++ {
			var prev *StateProfile
			if si > 0 && i < g.cfg.TransitionSamples {
				p := Profiles[segments[si-1].State]
				prev = &p
			}
			s := g.draw(profile, prev, i, minute)
			samples = append(samples, Sample{
				BandPowerSample: models.BandPowerSample{
					Time:  start.Add(time.Duration(minute) * time.Minute),
					Delta: rawPtr(s[0], g.cfg.DeviceCeiling),
					Theta: rawPtr(s[1], g.cfg.DeviceCeiling),
					Alpha: rawPtr(s[2], g.cfg.DeviceCeiling),
					Beta:  rawPtr(s[3], g.cfg.DeviceCeiling),
					Gamma: rawPtr(s[4], g.cfg.DeviceCeiling),
				},
				State:      seg.State,
				Activity:   seg.Activity,
				Confidence: confidence(s, profile),
			})
			minute++
		}
	}
	return samples, nil
}

// Scenario generates a session from a scenario timeline and returns the
// activity intervals it implies.
func (g *Generator) Scenario(sc Scenario, start time.Time) ([]Sample, []models.Activity, error) {
	segments := make([]Segment, 0, len(sc.Timeline))
	for _, seg := range sc.Timeline {
		segments = append(segments, Segment{
			State:    models.CognitiveState(seg.State),
			Minutes:  seg.Minutes,
			Activity: seg.Activity,
		})
	}
	samples, err := g.Session(start, segments)
	if err != nil {
		return nil, nil, err
	}

	var activities []models.Activity
	for _, seg := range sc.Timeline {
		if seg.Activity == "" {
			continue
		}
		segStart := start.Add(time.Duration(seg.At) * time.Minute)
		activities = append(activities, models.Activity{
			ID:        uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("%s/%d/%s", sc.Name, seg.At, segStart))),
			Name:      seg.Activity,
			StartTime: segStart,
			EndTime:   segStart.Add(time.Duration(seg.Minutes) * time.Minute),
			Source:    "scenario",
		})
	}
	return samples, activities, nil
}

// draw produces one normalized five-band reading for a profile. prev, when
// set, is the previous segment's profile for transition blending; i is the
// index within the segment and minute the absolute session index (drives the
// fluctuation oscillation parity).
func (g *Generator) draw(p StateProfile, prev *StateProfile, i, minute int) [5]float64 {
	bands := [5]BandProfile{p.Delta, p.Theta, p.Alpha, p.Beta, p.Gamma}
	var out [5]float64
	for bi, bp := range bands {
		center := bp.Center * g.variation[bi]
		if prev != nil {
			prevBands := [5]BandProfile{prev.Delta, prev.Theta, prev.Alpha, prev.Beta, prev.Gamma}
			prevCenter := prevBands[bi].Center * g.variation[bi]
			frac := float64(i+1) / float64(g.cfg.TransitionSamples+1)
			center = prevCenter + (center-prevCenter)*frac
		}

		v := center + g.rng.NormFloat64()*bp.Spread
		if p.Fluctuation {
			osc := 0.0
			switch bi {
			case 2:
				osc = p.AlphaOsc
			case 3:
				osc = p.BetaOsc
			}
			if minute%2 == 0 {
				v += osc
			} else {
				v -= osc
			}
		}

		// Transitional samples only clamp to the valid range; settled samples
		// also clamp into the profile's rule region.
		lo, hi := 0.0, 1.0
		if prev == nil {
			lo, hi = bp.Min, bp.Max
		}
		out[bi] = clamp(v, lo, hi)
	}
	return out
}

// InjectArtifacts adds device artifacts to a copy of the session: bounded
// impulse spikes, dropped bands, and saturated bands. The injection has its
// own seed so artifact placement is reproducible independently of session
// generation.
func (g *Generator) InjectArtifacts(samples []Sample, seed int64, spikeRate, dropRate, saturateRate float64) []Sample {
	rng := rand.New(rand.NewSource(seed))
	out := make([]Sample, len(samples))
	copy(out, samples)

	for i := range out {
		if rng.Float64() < spikeRate {
			band := rng.Intn(5)
			magnitude := (0.2 + rng.Float64()*0.3) * g.cfg.DeviceCeiling
			addToBand(&out[i].BandPowerSample, band, magnitude, g.cfg.DeviceCeiling)
		}
		if rng.Float64() < dropRate {
			clearBand(&out[i].BandPowerSample, rng.Intn(5))
		}
		if rng.Float64() < saturateRate {
			setBand(&out[i].BandPowerSample, rng.Intn(5), g.cfg.DeviceCeiling)
		}
	}
	return out
}

func confidence(draw [5]float64, p StateProfile) float64 {
	centers := [5]float64{p.Delta.Center, p.Theta.Center, p.Alpha.Center, p.Beta.Center, p.Gamma.Center}
	diff := 0.0
	for i := range draw {
		diff += math.Abs(draw[i] - centers[i])
	}
	c := 1 - diff/5
	if c < 0.5 {
		c = 0.5
	}
	return math.Round(c*100) / 100
}

func rawPtr(normalized, ceiling float64) *float64 {
	v := normalized * ceiling
	return &v
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func bandPtr(s *models.BandPowerSample, band int) **float64 {
	switch band {
	case 0:
		return &s.Delta
	case 1:
		return &s.Theta
	case 2:
		return &s.Alpha
	case 3:
		return &s.Beta
	default:
		return &s.Gamma
	}
}

func addToBand(s *models.BandPowerSample, band int, magnitude, ceiling float64) {
	p := bandPtr(s, band)
	if *p == nil {
		return
	}
	v := **p + magnitude
	if v > ceiling {
		v = ceiling
	}
	*p = &v
}

func clearBand(s *models.BandPowerSample, band int) {
	*bandPtr(s, band) = nil
}

func setBand(s *models.BandPowerSample, band int, value float64) {
	v := value
	*bandPtr(s, band) = &v
}
