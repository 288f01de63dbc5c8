package synth

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"neuroinsights/internal/models"
)

func mustUUID(t *testing.T, s string) uuid.UUID {
	t.Helper()
	id, err := uuid.Parse(s)
	if err != nil {
		t.Fatalf("parse uuid: %v", err)
	}
	return id
}

func TestProfilesCoverAllStates(t *testing.T) {
	for _, state := range models.AllStates {
		p, ok := Profiles[state]
		if !ok {
			t.Fatalf("no profile for %s", state)
		}
		for _, bp := range [5]BandProfile{p.Delta, p.Theta, p.Alpha, p.Beta, p.Gamma} {
			if bp.Min < 0 || bp.Max > 1 || bp.Min > bp.Max {
				t.Fatalf("%s has invalid band bounds [%v, %v]", state, bp.Min, bp.Max)
			}
			if bp.Center < bp.Min || bp.Center > bp.Max {
				t.Fatalf("%s center %v outside [%v, %v]", state, bp.Center, bp.Min, bp.Max)
			}
		}
	}
}

func TestBuiltinScenariosValid(t *testing.T) {
	if len(Scenarios) == 0 {
		t.Fatal("no builtin scenarios")
	}
	for name, sc := range Scenarios {
		if err := validateScenario(sc); err != nil {
			t.Fatalf("scenario %s invalid: %v", name, err)
		}
		total := 0
		for _, seg := range sc.Timeline {
			total += seg.Minutes
		}
		if total != sc.Minutes {
			t.Fatalf("scenario %s timeline sums to %d, declared %d", name, total, sc.Minutes)
		}
	}
	if len(ScenarioNames) != len(Scenarios) {
		t.Fatalf("ScenarioNames has %d entries, library has %d", len(ScenarioNames), len(Scenarios))
	}
	for _, name := range ScenarioNames {
		if _, ok := Scenarios[name]; !ok {
			t.Fatalf("ScenarioNames lists unknown scenario %s", name)
		}
	}
}

func TestLoadScenariosMergesOverBuiltins(t *testing.T) {
	doc := `
- name: short_break
  minutes: 10
  timeline:
    - at: 0
      minutes: 10
      state: relaxed
      activity: break
- name: typical_workday
  minutes: 30
  timeline:
    - at: 0
      minutes: 30
      state: neutral
`
	path := filepath.Join(t.TempDir(), "scenarios.yaml")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	merged, err := LoadScenarios(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if _, ok := merged["short_break"]; !ok {
		t.Fatal("custom scenario missing after merge")
	}
	if got := merged["typical_workday"]; len(got.Timeline) != 1 || got.Timeline[0].Minutes != 30 {
		t.Fatal("custom scenario did not shadow the builtin")
	}
	if _, ok := merged["stressful_day"]; !ok {
		t.Fatal("untouched builtin missing after merge")
	}
}

func TestLoadScenariosRejectsUnknownState(t *testing.T) {
	doc := `
- name: broken
  minutes: 10
  timeline:
    - at: 0
      minutes: 10
      state: euphoric
`
	path := filepath.Join(t.TempDir(), "scenarios.yaml")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	if _, err := LoadScenarios(path); err == nil {
		t.Fatal("expected error for unknown state")
	}
}
