// Package synth generates reproducible synthetic band-power sessions with
// ground-truth labels. It exists for deterministic tests, demos, and the mock
// data source - it is not a source of production telemetry.
package synth

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"neuroinsights/internal/models"
)

// BandProfile describes one band's target in normalized space: values draw
// from a normal around Center with Spread sigma, clamped to [Min, Max]. The
// clamps keep each state's draws inside its classification-rule region.
type BandProfile struct {
	Center float64
	Spread float64
	Min    float64
	Max    float64
}

// StateProfile is a full per-band target for one cognitive state. Oscillation
// is the alternating beta/alpha offset applied for fluctuating states.
type StateProfile struct {
	Delta       BandProfile
	Theta       BandProfile
	Alpha       BandProfile
	Beta        BandProfile
	Gamma       BandProfile
	Fluctuation bool
	BetaOsc     float64
	AlphaOsc    float64
}

// Profiles maps each cognitive state to its synthesis target. Centers follow
// the qualitative rule table: stressed is beta-dominant with suppressed
// alpha, relaxed is alpha-dominant, and so on.
var Profiles = map[models.CognitiveState]StateProfile{
	models.StateDeepFocus: {
		Delta: BandProfile{0.10, 0.03, 0.02, 0.20},
		Theta: BandProfile{0.20, 0.04, 0.08, 0.32},
		Alpha: BandProfile{0.15, 0.04, 0.05, 0.28},
		Beta:  BandProfile{0.78, 0.03, 0.72, 0.84},
		Gamma: BandProfile{0.55, 0.05, 0.40, 0.70},
	},
	models.StateRelaxed: {
		Delta: BandProfile{0.15, 0.04, 0.05, 0.30},
		Theta: BandProfile{0.40, 0.05, 0.25, 0.55},
		Alpha: BandProfile{0.80, 0.04, 0.72, 0.92},
		Beta:  BandProfile{0.25, 0.05, 0.10, 0.38},
		Gamma: BandProfile{0.20, 0.04, 0.08, 0.32},
	},
	models.StateStressed: {
		Delta: BandProfile{0.10, 0.03, 0.02, 0.20},
		Theta: BandProfile{0.15, 0.04, 0.05, 0.28},
		Alpha: BandProfile{0.12, 0.04, 0.02, 0.24},
		Beta:  BandProfile{0.92, 0.025, 0.87, 0.98},
		Gamma: BandProfile{0.40, 0.05, 0.25, 0.55},
	},
	models.StateCreativeFlow: {
		Delta: BandProfile{0.15, 0.03, 0.05, 0.25},
		Theta: BandProfile{0.70, 0.03, 0.63, 0.78},
		Alpha: BandProfile{0.60, 0.04, 0.52, 0.68},
		Beta:  BandProfile{0.35, 0.03, 0.25, 0.39},
		Gamma: BandProfile{0.50, 0.05, 0.35, 0.65},
	},
	models.StateDrowsy: {
		Delta: BandProfile{0.40, 0.05, 0.25, 0.55},
		Theta: BandProfile{0.78, 0.03, 0.72, 0.86},
		Alpha: BandProfile{0.42, 0.04, 0.32, 0.50},
		Beta:  BandProfile{0.20, 0.04, 0.08, 0.28},
		Gamma: BandProfile{0.15, 0.04, 0.05, 0.26},
	},
	models.StateDistracted: {
		Delta:       BandProfile{0.20, 0.03, 0.10, 0.30},
		Theta:       BandProfile{0.35, 0.04, 0.25, 0.45},
		Alpha:       BandProfile{0.36, 0.02, 0.10, 0.62},
		Beta:        BandProfile{0.50, 0.02, 0.20, 0.80},
		Gamma:       BandProfile{0.30, 0.03, 0.20, 0.40},
		Fluctuation: true,
		BetaOsc:     0.24,
		AlphaOsc:    0.21,
	},
	models.StateNeutral: {
		Delta: BandProfile{0.25, 0.03, 0.15, 0.35},
		Theta: BandProfile{0.35, 0.03, 0.25, 0.45},
		Alpha: BandProfile{0.45, 0.03, 0.35, 0.55},
		Beta:  BandProfile{0.40, 0.03, 0.32, 0.48},
		Gamma: BandProfile{0.30, 0.03, 0.20, 0.40},
	},
}

// ScenarioSegment is one timeline entry of a scenario, minute-addressed from
// session start.
type ScenarioSegment struct {
	At       int    `yaml:"at"`
	Minutes  int    `yaml:"minutes"`
	State    string `yaml:"state"`
	Activity string `yaml:"activity"`
}

// Scenario is a pre-built day shape: an ordered timeline of states and
// activities.
type Scenario struct {
	Name     string            `yaml:"name"`
	Minutes  int               `yaml:"minutes"`
	Timeline []ScenarioSegment `yaml:"timeline"`
}

// Scenarios is the built-in scenario library. A YAML file loaded through
// LoadScenarios can extend or override it.
var Scenarios = map[string]Scenario{
	"typical_workday": {
		Name:    "typical_workday",
		Minutes: 480,
		Timeline: []ScenarioSegment{
			{At: 0, Minutes: 20, State: "neutral", Activity: "morning_emails"},
			{At: 20, Minutes: 90, State: "deep_focus", Activity: "coding"},
			{At: 110, Minutes: 10, State: "distracted", Activity: "coding"},
			{At: 120, Minutes: 15, State: "relaxed", Activity: "break"},
			{At: 135, Minutes: 60, State: "neutral", Activity: "meeting"},
			{At: 195, Minutes: 45, State: "relaxed", Activity: "lunch"},
			{At: 240, Minutes: 75, State: "deep_focus", Activity: "coding"},
			{At: 315, Minutes: 15, State: "distracted", Activity: "coding"},
			{At: 330, Minutes: 30, State: "neutral", Activity: "email"},
			{At: 360, Minutes: 45, State: "creative_flow", Activity: "brainstorming"},
			{At: 405, Minutes: 30, State: "neutral", Activity: "wrap_up"},
			{At: 435, Minutes: 45, State: "drowsy", Activity: "email"},
		},
	},
	"productive_morning": {
		Name:    "productive_morning",
		Minutes: 180,
		Timeline: []ScenarioSegment{
			{At: 0, Minutes: 15, State: "neutral", Activity: "planning"},
			{At: 15, Minutes: 90, State: "deep_focus", Activity: "coding"},
			{At: 105, Minutes: 15, State: "relaxed", Activity: "break"},
			{At: 120, Minutes: 60, State: "deep_focus", Activity: "coding"},
		},
	},
	"creative_work": {
		Name:    "creative_work",
		Minutes: 120,
		Timeline: []ScenarioSegment{
			{At: 0, Minutes: 15, State: "neutral", Activity: "brainstorming"},
			{At: 15, Minutes: 45, State: "creative_flow", Activity: "writing"},
			{At: 60, Minutes: 10, State: "distracted", Activity: "writing"},
			{At: 70, Minutes: 10, State: "relaxed", Activity: "break"},
			{At: 80, Minutes: 40, State: "creative_flow", Activity: "writing"},
		},
	},
	"stressful_day": {
		Name:    "stressful_day",
		Minutes: 480,
		Timeline: []ScenarioSegment{
			{At: 0, Minutes: 30, State: "stressed", Activity: "urgent_email"},
			{At: 30, Minutes: 60, State: "stressed", Activity: "meeting"},
			{At: 90, Minutes: 90, State: "stressed", Activity: "problem_solving"},
			{At: 180, Minutes: 20, State: "neutral", Activity: "lunch"},
			{At: 200, Minutes: 120, State: "stressed", Activity: "coding"},
			{At: 320, Minutes: 30, State: "distracted", Activity: "coding"},
			{At: 350, Minutes: 60, State: "stressed", Activity: "meeting"},
			{At: 410, Minutes: 70, State: "drowsy", Activity: "email"},
		},
	},
	"meditation_session": {
		Name:    "meditation_session",
		Minutes: 20,
		Timeline: []ScenarioSegment{
			{At: 0, Minutes: 3, State: "stressed", Activity: "meditation"},
			{At: 3, Minutes: 2, State: "neutral", Activity: "meditation"},
			{At: 5, Minutes: 15, State: "relaxed", Activity: "meditation"},
		},
	},
}

// ScenarioNames returns the library's names in a stable order for
// deterministic selection.
var ScenarioNames = []string{
	"typical_workday",
	"productive_morning",
	"creative_work",
	"stressful_day",
	"meditation_session",
}

// LoadScenarios merges scenario definitions from a YAML file over the
// built-in library. The file holds a list of Scenario documents.
func LoadScenarios(path string) (map[string]Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenarios file: %w", err)
	}

	var loaded []Scenario
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("failed to parse scenarios YAML: %w", err)
	}

	merged := make(map[string]Scenario, len(Scenarios)+len(loaded))
	for name, s := range Scenarios {
		merged[name] = s
	}
	for _, s := range loaded {
		if s.Name == "" {
			return nil, fmt.Errorf("scenario without a name in %s", path)
		}
		if err := validateScenario(s); err != nil {
			return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
		}
		merged[s.Name] = s
	}
	return merged, nil
}

func validateScenario(s Scenario) error {
	if len(s.Timeline) == 0 {
		return fmt.Errorf("empty timeline")
	}
	for _, seg := range s.Timeline {
		if seg.Minutes < 1 {
			return fmt.Errorf("segment at %d has no duration", seg.At)
		}
		if !models.CognitiveState(seg.State).Valid() {
			return fmt.Errorf("segment at %d has unknown state %q", seg.At, seg.State)
		}
	}
	return nil
}
