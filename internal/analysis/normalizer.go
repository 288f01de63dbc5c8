package analysis

import (
	"neuroinsights/internal/models"
)

// Reference holds per-band normalization ceilings, either measured from a
// window (session maximum) or supplied externally as a device calibration
// ceiling.
type Reference struct {
	Delta float64
	Theta float64
	Alpha float64
	Beta  float64
	Gamma float64
}

// UniformReference returns a reference with the same ceiling for every band,
// the shape of a device calibration ceiling.
func UniformReference(ceiling float64) Reference {
	return Reference{Delta: ceiling, Theta: ceiling, Alpha: ceiling, Beta: ceiling, Gamma: ceiling}
}

// WindowReference computes the per-band maximum over a window. Absent bands
// do not contribute; a band absent from every sample keeps a zero ceiling.
func WindowReference(window []models.BandPowerSample) Reference {
	var ref Reference
	for _, s := range window {
		ref.Delta = maxPtr(ref.Delta, s.Delta)
		ref.Theta = maxPtr(ref.Theta, s.Theta)
		ref.Alpha = maxPtr(ref.Alpha, s.Alpha)
		ref.Beta = maxPtr(ref.Beta, s.Beta)
		ref.Gamma = maxPtr(ref.Gamma, s.Gamma)
	}
	return ref
}

func maxPtr(current float64, v *float64) float64 {
	if v != nil && *v > current {
		return *v
	}
	return current
}

// NormalizeSample rescales one sample against a reference, clamping each band
// to [0,1]. A zero ceiling normalizes that band to 0 (no division by zero).
// Samples with absent bands are rejected with a DataQualityError.
func NormalizeSample(s models.BandPowerSample, ref Reference) (models.NormalizedBandVector, error) {
	if !s.Complete() {
		return models.NormalizedBandVector{}, &DataQualityError{MissingBands: s.MissingBands()}
	}
	for i, v := range s.Bands() {
		if *v < 0 {
			return models.NormalizedBandVector{}, &InvalidInputError{Band: models.BandNames[i], Value: *v}
		}
	}
	return models.NormalizedBandVector{
		Delta: scale(*s.Delta, ref.Delta),
		Theta: scale(*s.Theta, ref.Theta),
		Alpha: scale(*s.Alpha, ref.Alpha),
		Beta:  scale(*s.Beta, ref.Beta),
		Gamma: scale(*s.Gamma, ref.Gamma),
	}, nil
}

// Normalize rescales a window of samples against the window's own per-band
// maxima. Incomplete samples are dropped (excluded from classification by the
// caller); an empty window is an InsufficientDataError.
func Normalize(window []models.BandPowerSample) ([]models.NormalizedBandVector, error) {
	return NormalizeWithReference(window, WindowReference(window))
}

// NormalizeWithReference is Normalize against an external reference, e.g. a
// device calibration ceiling.
func NormalizeWithReference(window []models.BandPowerSample, ref Reference) ([]models.NormalizedBandVector, error) {
	if len(window) == 0 {
		return nil, &InsufficientDataError{Op: "normalize", Needed: 1, Got: 0}
	}
	vectors := make([]models.NormalizedBandVector, 0, len(window))
	for _, s := range window {
		v, err := NormalizeSample(s, ref)
		if err != nil {
			if _, quality := err.(*DataQualityError); quality {
				continue
			}
			return nil, err
		}
		vectors = append(vectors, v)
	}
	return vectors, nil
}

func scale(value, ceiling float64) float64 {
	if ceiling <= 0 {
		return 0
	}
	scaled := value / ceiling
	if scaled < 0 {
		return 0
	}
	if scaled > 1 {
		return 1
	}
	return scaled
}

// RollingNormalizer normalizes a live stream against the per-band maximum of
// a rolling window of previously seen samples. The sample being normalized is
// never part of its own reference.
type RollingNormalizer struct {
	window int
	buf    []models.BandPowerSample
}

// NewRollingNormalizer creates a rolling normalizer keeping up to window
// samples of history.
func NewRollingNormalizer(window int) *RollingNormalizer {
	if window < 1 {
		window = 1
	}
	return &RollingNormalizer{window: window}
}

// Push normalizes s against the current history, then admits s to it. The
// first sample has no reference yet and returns an InsufficientDataError.
func (r *RollingNormalizer) Push(s models.BandPowerSample) (models.NormalizedBandVector, error) {
	if len(r.buf) == 0 {
		r.admit(s)
		return models.NormalizedBandVector{}, &InsufficientDataError{Op: "rolling normalize", Needed: 1, Got: 0}
	}
	v, err := NormalizeSample(s, WindowReference(r.buf))
	r.admit(s)
	return v, err
}

func (r *RollingNormalizer) admit(s models.BandPowerSample) {
	if !s.Complete() {
		return
	}
	r.buf = append(r.buf, s)
	if len(r.buf) > r.window {
		r.buf = r.buf[1:]
	}
}

// Reset clears the history, e.g. at a session boundary.
func (r *RollingNormalizer) Reset() {
	r.buf = nil
}
