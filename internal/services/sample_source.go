package services

import (
	"context"
	"fmt"
	"hash/fnv"
	"sort"
	"time"

	"github.com/google/uuid"
	cache "github.com/patrickmn/go-cache"

	"neuroinsights/internal/models"
	"neuroinsights/internal/synth"
)

// SampleSource provides raw band-power samples for a user and period.
// The mock implementation synthesizes them; a device-backed implementation
// would read from ingestion storage.
type SampleSource interface {
	Samples(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]synth.Sample, error)
}

// ActivitySource provides activity intervals overlapping a period.
type ActivitySource interface {
	Activities(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]models.Activity, error)
}

// daySession is one user-day of generated data, cached as a unit.
type daySession struct {
	samples    []synth.Sample
	activities []models.Activity
}

// MockSource generates deterministic synthetic sessions per user-day.
// The same user always sees the same data for the same date: the scenario
// is picked by hashing (user, date) and the generator is seeded from both.
// ArtifactRates turns on device-artifact injection for generated sessions.
type ArtifactRates struct {
	Spike    float64
	Drop     float64
	Saturate float64
}

type MockSource struct {
	scenarios map[string]synth.Scenario
	names     []string
	genCfg    synth.Config
	dayStart  int // hour of day, UTC, when sessions begin
	cache     *cache.Cache
	artifacts *ArtifactRates
}

// NewMockSource creates a mock source. scenarios may be the builtin library
// or a merged one loaded from YAML overrides.
func NewMockSource(scenarios map[string]synth.Scenario, genCfg synth.Config, cacheTTL time.Duration) *MockSource {
	// Builtin order first, then any extra scenarios sorted by name, so the
	// hash-based pick stays stable for a given library.
	names := make([]string, 0, len(scenarios))
	seen := make(map[string]bool)
	for _, n := range synth.ScenarioNames {
		if _, ok := scenarios[n]; ok {
			names = append(names, n)
			seen[n] = true
		}
	}
	var extra []string
	for n := range scenarios {
		if !seen[n] {
			extra = append(extra, n)
		}
	}
	sort.Strings(extra)
	names = append(names, extra...)
	return &MockSource{
		scenarios: scenarios,
		names:     names,
		genCfg:    genCfg,
		dayStart:  9,
		cache:     cache.New(cacheTTL, 10*time.Minute),
	}
}

// SetArtifacts enables artifact injection on subsequently generated days.
// Artifact placement is seeded per user-day, so injection stays deterministic.
func (m *MockSource) SetArtifacts(rates ArtifactRates) {
	m.artifacts = &rates
}

// Samples returns all samples for the user whose timestamps fall in
// [start, end).
func (m *MockSource) Samples(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]synth.Sample, error) {
	var out []synth.Sample
	err := m.eachDay(ctx, userID, start, end, func(day daySession) {
		for _, s := range day.samples {
			if !s.Time.Before(start) && s.Time.Before(end) {
				out = append(out, s)
			}
		}
	})
	return out, err
}

// Activities returns scenario-derived activity intervals overlapping
// [start, end).
func (m *MockSource) Activities(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]models.Activity, error) {
	var out []models.Activity
	err := m.eachDay(ctx, userID, start, end, func(day daySession) {
		for _, a := range day.activities {
			if a.StartTime.Before(end) && a.EndTime.After(start) {
				a.UserID = userID
				out = append(out, a)
			}
		}
	})
	return out, err
}

// ScenarioFor reports which scenario a user-day resolves to.
func (m *MockSource) ScenarioFor(userID uuid.UUID, date time.Time) string {
	if len(m.names) == 0 {
		return ""
	}
	h := fnv.New64a()
	h.Write(userID[:])
	h.Write([]byte(date.UTC().Format("2006-01-02")))
	return m.names[h.Sum64()%uint64(len(m.names))]
}

func (m *MockSource) eachDay(ctx context.Context, userID uuid.UUID, start, end time.Time, fn func(daySession)) error {
	for date := start.UTC().Truncate(24 * time.Hour); date.Before(end); date = date.Add(24 * time.Hour) {
		if err := ctx.Err(); err != nil {
			return err
		}
		day, err := m.day(userID, date)
		if err != nil {
			return err
		}
		fn(day)
	}
	return nil
}

func (m *MockSource) day(userID uuid.UUID, date time.Time) (daySession, error) {
	key := userID.String() + "/" + date.Format("2006-01-02")
	if cached, found := m.cache.Get(key); found {
		return cached.(daySession), nil
	}

	name := m.ScenarioFor(userID, date)
	sc, ok := m.scenarios[name]
	if !ok {
		return daySession{}, fmt.Errorf("no scenarios configured")
	}

	// Seed mixes the user identity with the date so days differ but stay
	// reproducible.
	seed := synth.SeedFromUser(userID) ^ date.Unix()
	gen := synth.NewGenerator(seed, m.genCfg)

	sessionStart := date.Add(time.Duration(m.dayStart) * time.Hour)
	samples, activities, err := gen.Scenario(sc, sessionStart)
	if err != nil {
		return daySession{}, fmt.Errorf("failed to generate day %s: %w", key, err)
	}
	for i := range activities {
		activities[i].UserID = userID
	}
	if m.artifacts != nil {
		samples = gen.InjectArtifacts(samples, seed+1, m.artifacts.Spike, m.artifacts.Drop, m.artifacts.Saturate)
	}

	day := daySession{samples: samples, activities: activities}
	m.cache.Set(key, day, cache.DefaultExpiration)
	return day, nil
}
