package models

import "time"

// CognitiveState is a categorical label for the inferred mental state of a sample.
type CognitiveState string

const (
	StateDeepFocus    CognitiveState = "deep_focus"
	StateRelaxed      CognitiveState = "relaxed"
	StateStressed     CognitiveState = "stressed"
	StateCreativeFlow CognitiveState = "creative_flow"
	StateDrowsy       CognitiveState = "drowsy"
	StateDistracted   CognitiveState = "distracted"
	StateNeutral      CognitiveState = "neutral"
)

// AllStates lists every cognitive state in a stable order.
var AllStates = []CognitiveState{
	StateDeepFocus,
	StateRelaxed,
	StateStressed,
	StateCreativeFlow,
	StateDrowsy,
	StateDistracted,
	StateNeutral,
}

// FocusStates are the states counted as productive focus time.
var FocusStates = []CognitiveState{StateDeepFocus, StateCreativeFlow}

// IsFocus reports whether the state counts toward focus time.
func (s CognitiveState) IsFocus() bool {
	return s == StateDeepFocus || s == StateCreativeFlow
}

// Valid reports whether s is one of the seven known labels.
func (s CognitiveState) Valid() bool {
	for _, known := range AllStates {
		if s == known {
			return true
		}
	}
	return false
}

// BandNames in canonical frequency order (low to high).
var BandNames = []string{"delta", "theta", "alpha", "beta", "gamma"}

// BandPowerSample is one raw multi-band power reading. A nil band means the
// device did not record that band for this sample - explicit absence, not zero.
type BandPowerSample struct {
	Time  time.Time `json:"time"`
	Delta *float64  `json:"delta,omitempty"`
	Theta *float64  `json:"theta,omitempty"`
	Alpha *float64  `json:"alpha,omitempty"`
	Beta  *float64  `json:"beta,omitempty"`
	Gamma *float64  `json:"gamma,omitempty"`
}

// Bands returns the five band values in canonical order, nil for absent bands.
func (s BandPowerSample) Bands() []*float64 {
	return []*float64{s.Delta, s.Theta, s.Alpha, s.Beta, s.Gamma}
}

// MissingBands returns the names of bands absent from the sample.
func (s BandPowerSample) MissingBands() []string {
	var missing []string
	for i, v := range s.Bands() {
		if v == nil {
			missing = append(missing, BandNames[i])
		}
	}
	return missing
}

// Complete reports whether all five bands are present.
func (s BandPowerSample) Complete() bool {
	return s.Delta != nil && s.Theta != nil && s.Alpha != nil && s.Beta != nil && s.Gamma != nil
}

// NormalizedBandVector holds the five bands rescaled to [0,1].
type NormalizedBandVector struct {
	Delta float64 `json:"delta"`
	Theta float64 `json:"theta"`
	Alpha float64 `json:"alpha"`
	Beta  float64 `json:"beta"`
	Gamma float64 `json:"gamma"`
}

// Bands returns the band values in canonical order.
func (v NormalizedBandVector) Bands() []float64 {
	return []float64{v.Delta, v.Theta, v.Alpha, v.Beta, v.Gamma}
}

// BrainDataPoint is one labeled point of the classified stream. Band values
// are normalized to [0,1]. An empty State with zero Confidence marks a point
// that was excluded from classification for quality reasons.
type BrainDataPoint struct {
	Time       time.Time      `json:"time"`
	Delta      float64        `json:"delta"`
	Theta      float64        `json:"theta"`
	Alpha      float64        `json:"alpha"`
	Beta       float64        `json:"beta"`
	Gamma      float64        `json:"gamma"`
	State      CognitiveState `json:"state,omitempty"`
	Confidence float64        `json:"confidence"`
	Activity   string         `json:"activity,omitempty"`
}

// StateDistribution maps each state to its percentage of elapsed time.
// Values over any non-empty labeled interval sum to 100 within rounding.
type StateDistribution struct {
	DeepFocus    float64 `json:"deep_focus"`
	Relaxed      float64 `json:"relaxed"`
	Stressed     float64 `json:"stressed"`
	CreativeFlow float64 `json:"creative_flow"`
	Drowsy       float64 `json:"drowsy"`
	Distracted   float64 `json:"distracted"`
	Neutral      float64 `json:"neutral"`
}

// Get returns the percentage for a state.
func (d StateDistribution) Get(s CognitiveState) float64 {
	switch s {
	case StateDeepFocus:
		return d.DeepFocus
	case StateRelaxed:
		return d.Relaxed
	case StateStressed:
		return d.Stressed
	case StateCreativeFlow:
		return d.CreativeFlow
	case StateDrowsy:
		return d.Drowsy
	case StateDistracted:
		return d.Distracted
	case StateNeutral:
		return d.Neutral
	}
	return 0
}

// Set assigns the percentage for a state.
func (d *StateDistribution) Set(s CognitiveState, v float64) {
	switch s {
	case StateDeepFocus:
		d.DeepFocus = v
	case StateRelaxed:
		d.Relaxed = v
	case StateStressed:
		d.Stressed = v
	case StateCreativeFlow:
		d.CreativeFlow = v
	case StateDrowsy:
		d.Drowsy = v
	case StateDistracted:
		d.Distracted = v
	case StateNeutral:
		d.Neutral = v
	}
}

// FocusShare is the combined deep_focus + creative_flow percentage.
func (d StateDistribution) FocusShare() float64 {
	return d.DeepFocus + d.CreativeFlow
}

// Total sums all percentages (100 within rounding for non-empty intervals).
func (d StateDistribution) Total() float64 {
	total := 0.0
	for _, s := range AllStates {
		total += d.Get(s)
	}
	return total
}
