package integrator

import (
	"math"
	"math/rand"

	"github.com/photometric/go-mmlt/pkg/core"
)

// Sample stream layout inside the primary sample vector. Each logical
// stream owns every third coordinate, so growing one stream never
// shifts the coordinates of another.
const (
	streamTechnique = 0
	streamLight     = 1
	streamCamera    = 2
	streamCount     = 3
)

// Small step perturbation widths. Each perturbed coordinate picks one
// of the two Gaussians with equal probability, giving both fine local
// exploration and occasional coarser moves.
const (
	sigmaFine   = 1.0 / 1024.0
	sigmaCoarse = 1.0 / 64.0
)

// DefaultLargeStepProbability is the fraction of mutations that redraw
// the whole sample vector instead of perturbing it.
const DefaultLargeStepProbability = 0.3

// primarySample is one lazily generated coordinate of the sample
// vector, together with the backup needed to undo a rejected mutation.
type primarySample struct {
	value            float64
	backupValue      float64
	modifiedAt       uint64
	backupModifiedAt uint64
}

func (p *primarySample) backup() {
	p.backupValue = p.value
	p.backupModifiedAt = p.modifiedAt
}

func (p *primarySample) restore() {
	p.value = p.backupValue
	p.modifiedAt = p.backupModifiedAt
}

// MetropolisSampler holds the primary sample vector of one Markov
// chain. It hands out coordinates in [0,1) like a regular sampler, but
// remembers every coordinate so a later mutation can perturb the whole
// vector and a rejection can roll it back.
//
// Coordinates are generated on first read and cached, so replaying a
// seed only needs the same generator seed and the same read order.
type MetropolisSampler struct {
	rng     *rand.Rand
	samples []primarySample

	iteration   uint64
	largeStepAt uint64
	largeStep   bool

	largeStepProbability float64

	streamIndex int
	sampleIndex int

	// Bootstrap stratification: during the seeding iteration the first
	// technique coordinate is confined to stratum/strataCount so the
	// seed population covers every path length class.
	stratum     int
	strataCount int
}

// NewMetropolisSampler creates a chain sampler. The seed fixes the
// whole chain trajectory. A strataCount of zero disables seed
// stratification; otherwise the first technique coordinate of the
// seeding pass is drawn from the given stratum.
func NewMetropolisSampler(seed int64, largeStepProbability float64, stratum, strataCount int) *MetropolisSampler {
	if largeStepProbability <= 0 || largeStepProbability > 1 {
		largeStepProbability = DefaultLargeStepProbability
	}
	return &MetropolisSampler{
		rng:                  rand.New(rand.NewSource(seed)),
		iteration:            1,
		largeStepAt:          1,
		largeStep:            true,
		largeStepProbability: largeStepProbability,
		stratum:              stratum,
		strataCount:          strataCount,
	}
}

// StartStream positions the sampler at the beginning of one of the
// interleaved coordinate streams.
func (s *MetropolisSampler) StartStream(index int) {
	s.streamIndex = index
	s.sampleIndex = 0
}

// Mutate begins a new proposal, choosing between a large step that
// redraws every coordinate and a small step that perturbs them in
// place. It reports whether the proposal is a large step.
func (s *MetropolisSampler) Mutate() bool {
	s.iteration++
	s.largeStep = s.rng.Float64() < s.largeStepProbability
	s.streamIndex = 0
	s.sampleIndex = 0
	return s.largeStep
}

// Accept commits the current proposal as the chain state.
func (s *MetropolisSampler) Accept() {
	if s.largeStep {
		s.largeStepAt = s.iteration
	}
}

// Reject rolls the sample vector back to the state before the current
// proposal.
func (s *MetropolisSampler) Reject() {
	for i := range s.samples {
		if s.samples[i].modifiedAt == s.iteration {
			s.samples[i].restore()
		}
	}
	s.iteration--
}

// Get1D returns the next coordinate of the active stream.
func (s *MetropolisSampler) Get1D() float64 {
	index := streamCount*s.sampleIndex + s.streamIndex
	s.sampleIndex++
	return s.coordinate(index)
}

// Get2D returns the next two coordinates of the active stream.
func (s *MetropolisSampler) Get2D() core.Vec2 {
	x := s.Get1D()
	y := s.Get1D()
	return core.NewVec2(x, y)
}

// Get3D returns the next three coordinates of the active stream.
func (s *MetropolisSampler) Get3D() core.Vec3 {
	x := s.Get1D()
	y := s.Get1D()
	z := s.Get1D()
	return core.NewVec3(x, y, z)
}

// coordinate brings the sample at the given flat index up to date with
// the current iteration and returns its value.
func (s *MetropolisSampler) coordinate(index int) float64 {
	for len(s.samples) <= index {
		s.samples = append(s.samples, primarySample{})
	}
	sample := &s.samples[index]

	// A coordinate untouched since the last large step lost its history:
	// redraw it as if that large step had generated it.
	if !s.largeStep && sample.modifiedAt < s.largeStepAt {
		sample.value = s.nextValue(index)
		sample.modifiedAt = s.largeStepAt
	}

	sample.backup()
	if s.largeStep {
		sample.value = s.nextValue(index)
	} else {
		pending := s.iteration - sample.modifiedAt
		sample.value = s.smallStep(sample.value, pending)
	}
	sample.modifiedAt = s.iteration

	return sample.value
}

// nextValue draws a fresh uniform coordinate. During the seeding
// iteration the first technique coordinate is remapped into the
// sampler's stratum so that bootstrap samples cover all strata evenly.
func (s *MetropolisSampler) nextValue(index int) float64 {
	u := s.rng.Float64()
	if s.strataCount > 0 && s.iteration == 1 && index == streamTechnique {
		return (float64(s.stratum%s.strataCount) + u) / float64(s.strataCount)
	}
	return u
}

// smallStep applies the pending number of perturbations to a
// coordinate in one draw. Each pending step contributes the variance
// of either the fine or the coarse kernel, so the summed Gaussian is
// an exact shortcut for applying the steps one at a time.
func (s *MetropolisSampler) smallStep(value float64, pending uint64) float64 {
	if pending == 0 {
		return value
	}
	variance := 0.0
	for i := uint64(0); i < pending; i++ {
		if s.rng.Float64() < 0.5 {
			variance += sigmaFine * sigmaFine
		} else {
			variance += sigmaCoarse * sigmaCoarse
		}
	}
	offset := math.Sqrt(variance) * standardNormal(s.rng.Float64())
	return wrapUnit(value + offset)
}

// standardNormal maps a uniform sample to a standard normal deviate.
func standardNormal(u float64) float64 {
	return math.Sqrt2 * core.ErfInv(2*u-1)
}

// wrapUnit wraps a perturbed coordinate back into [0,1). The wrap
// keeps the perturbation symmetric: an offset and its negation always
// return to the starting value.
func wrapUnit(value float64) float64 {
	return value - math.Floor(value)
}
