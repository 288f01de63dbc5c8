package analysis

import (
	"errors"
	"math"
	"testing"
	"time"

	"neuroinsights/internal/models"
)

func f(v float64) *float64 { return &v }

func sample(at time.Time, delta, theta, alpha, beta, gamma float64) models.BandPowerSample {
	return models.BandPowerSample{
		Time:  at,
		Delta: f(delta), Theta: f(theta), Alpha: f(alpha), Beta: f(beta), Gamma: f(gamma),
	}
}

func TestNormalizeWindowMax(t *testing.T) {
	now := time.Now()
	window := []models.BandPowerSample{
		sample(now, 10, 20, 30, 40, 50),
		sample(now.Add(time.Minute), 5, 10, 15, 20, 25),
	}

	vectors, err := Normalize(window)
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}
	if len(vectors) != 2 {
		t.Fatalf("Expected 2 vectors, got %d", len(vectors))
	}

	// First sample holds every per-band maximum, so it normalizes to all ones.
	for i, v := range vectors[0].Bands() {
		if v != 1.0 {
			t.Errorf("Band %s of max sample: expected 1.0, got %v", models.BandNames[i], v)
		}
	}
	for i, v := range vectors[1].Bands() {
		if math.Abs(v-0.5) > 1e-9 {
			t.Errorf("Band %s of half sample: expected 0.5, got %v", models.BandNames[i], v)
		}
	}
}

func TestNormalizeZeroBand(t *testing.T) {
	now := time.Now()
	window := []models.BandPowerSample{
		sample(now, 0, 20, 30, 40, 50),
		sample(now.Add(time.Minute), 0, 10, 15, 20, 25),
	}

	vectors, err := Normalize(window)
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}
	for i, v := range vectors {
		if v.Delta != 0 {
			t.Errorf("Vector %d: zero-max band should normalize to 0, got %v", i, v.Delta)
		}
	}
}

func TestNormalizeEmptyWindow(t *testing.T) {
	_, err := Normalize(nil)
	var insufficient *InsufficientDataError
	if !errors.As(err, &insufficient) {
		t.Errorf("Expected InsufficientDataError for empty window, got %v", err)
	}
}

func TestNormalizeWithReferenceClamps(t *testing.T) {
	now := time.Now()
	// Values above the calibration ceiling must clamp to 1, not exceed it.
	window := []models.BandPowerSample{sample(now, 150, 50, 50, 50, 50)}

	vectors, err := NormalizeWithReference(window, UniformReference(100))
	if err != nil {
		t.Fatalf("NormalizeWithReference returned error: %v", err)
	}
	if vectors[0].Delta != 1.0 {
		t.Errorf("Expected clamp to 1.0, got %v", vectors[0].Delta)
	}
	if math.Abs(vectors[0].Theta-0.5) > 1e-9 {
		t.Errorf("Expected 0.5, got %v", vectors[0].Theta)
	}
}

func TestNormalizeSampleMissingBand(t *testing.T) {
	s := models.BandPowerSample{Time: time.Now(), Delta: f(1), Theta: f(1), Alpha: f(1), Beta: f(1)}
	_, err := NormalizeSample(s, UniformReference(100))
	var quality *DataQualityError
	if !errors.As(err, &quality) {
		t.Fatalf("Expected DataQualityError, got %v", err)
	}
	if len(quality.MissingBands) != 1 || quality.MissingBands[0] != "gamma" {
		t.Errorf("Expected missing gamma, got %v", quality.MissingBands)
	}
}

func TestNormalizeSampleNegativeValue(t *testing.T) {
	s := sample(time.Now(), -1, 1, 1, 1, 1)
	_, err := NormalizeSample(s, UniformReference(100))
	var invalid *InvalidInputError
	if !errors.As(err, &invalid) {
		t.Errorf("Expected InvalidInputError for negative band, got %v", err)
	}
}

func TestNormalizeSkipsIncompleteSamples(t *testing.T) {
	now := time.Now()
	window := []models.BandPowerSample{
		sample(now, 10, 20, 30, 40, 50),
		{Time: now.Add(time.Minute), Delta: f(5)}, // dropped bands
		sample(now.Add(2*time.Minute), 5, 10, 15, 20, 25),
	}
	vectors, err := Normalize(window)
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}
	if len(vectors) != 2 {
		t.Errorf("Expected incomplete sample to be dropped, got %d vectors", len(vectors))
	}
}

// TestRollingNormalizerExcludesCurrent checks the streaming invariant: the
// reference never includes the sample being normalized.
func TestRollingNormalizerExcludesCurrent(t *testing.T) {
	r := NewRollingNormalizer(10)
	now := time.Now()

	_, err := r.Push(sample(now, 10, 10, 10, 10, 10))
	var insufficient *InsufficientDataError
	if !errors.As(err, &insufficient) {
		t.Fatalf("First push should lack a reference, got %v", err)
	}

	// Second sample doubles every band; against a reference of 10 it clamps
	// to 1.0 rather than normalizing against itself (which would give 1.0
	// for a reference of 20 too - so also check a smaller value).
	v, err := r.Push(sample(now.Add(time.Minute), 20, 20, 20, 5, 20))
	if err != nil {
		t.Fatalf("Second push returned error: %v", err)
	}
	if v.Delta != 1.0 {
		t.Errorf("Expected clamp against prior max 10, got %v", v.Delta)
	}
	if math.Abs(v.Beta-0.5) > 1e-9 {
		t.Errorf("Expected beta 5/10=0.5 against prior max, got %v", v.Beta)
	}

	r.Reset()
	if _, err := r.Push(sample(now.Add(2*time.Minute), 1, 1, 1, 1, 1)); !errors.As(err, &insufficient) {
		t.Errorf("Expected InsufficientDataError after Reset, got %v", err)
	}
}
