package lights

import (
	"math"

	"github.com/photometric/go-mmlt/pkg/core"
	"github.com/photometric/go-mmlt/pkg/material"
)

// SampleLightEmission selects a light and samples emission from it.
// The light selection probability folds into the area PDF of the sample.
func SampleLightEmission(lightSampler LightSampler, sampler core.Sampler) (EmissionSample, Light, int, bool) {
	if lightSampler.GetLightCount() == 0 {
		return EmissionSample{}, nil, 0, false
	}
	selectedLight, lightSelectionPdf, lightIndex := lightSampler.SampleLightEmission(sampler.Get1D())

	sample := selectedLight.SampleEmission(sampler.Get2D(), sampler.Get2D())
	// Apply light selection probability to area PDF only (combined effect when multiplied)
	sample.AreaPDF *= lightSelectionPdf
	// Don't modify DirectionPDF - it's independent of light selection

	return sample, selectedLight, lightIndex, true
}

// SampleEmissionDirection samples a cosine-weighted emission direction from a surface
// and returns the emission sample with separate area and direction PDFs
func SampleEmissionDirection(point core.Vec3, normal core.Vec3, areaPDF float64, mat material.Material, sample core.Vec2) EmissionSample {
	// Sample emission direction (cosine-weighted hemisphere)
	emissionDir := core.SampleCosineHemisphere(normal, sample)

	// Calculate direction PDF separately (cosine-weighted)
	cosTheta := emissionDir.Dot(normal)
	directionPDF := cosTheta / math.Pi

	// Get emission from material
	var emission core.Vec3
	if emitter, ok := mat.(material.Emitter); ok {
		emission = emitter.Emit(core.NewRay(point, emissionDir))
	}

	return EmissionSample{
		Point:        point,
		Normal:       normal,
		Direction:    emissionDir,
		Emission:     emission,
		AreaPDF:      areaPDF,
		DirectionPDF: directionPDF,
	}
}

// UniformLightSampler selects among lights with equal probability
type UniformLightSampler struct {
	lights []Light
}

// NewUniformLightSampler creates a light sampler with equal weights for all lights
func NewUniformLightSampler(lights []Light) *UniformLightSampler {
	return &UniformLightSampler{lights: lights}
}

// SampleLightEmission selects a light uniformly
func (uls *UniformLightSampler) SampleLightEmission(u float64) (Light, float64, int) {
	if len(uls.lights) == 0 {
		return nil, 0.0, -1
	}

	index := int(u * float64(len(uls.lights)))
	if index >= len(uls.lights) {
		index = len(uls.lights) - 1
	}
	return uls.lights[index], 1.0 / float64(len(uls.lights)), index
}

// GetLightProbability returns the uniform selection probability
func (uls *UniformLightSampler) GetLightProbability(lightIndex int) float64 {
	if lightIndex < 0 || lightIndex >= len(uls.lights) {
		return 0.0
	}
	return 1.0 / float64(len(uls.lights))
}

// GetLightCount returns the number of lights in this sampler
func (uls *UniformLightSampler) GetLightCount() int {
	return len(uls.lights)
}

// PowerLightSampler selects lights proportionally to their emitted power,
// so bright lights seed more light paths than dim ones
type PowerLightSampler struct {
	lights       []Light
	distribution *core.Distribution
}

// NewPowerLightSampler creates a light sampler weighted by emitted power.
// Falls back to uniform selection when all lights report zero power.
func NewPowerLightSampler(lights []Light) *PowerLightSampler {
	weights := make([]float64, len(lights))
	for i, light := range lights {
		weights[i] = light.Power().Luminance()
	}

	return &PowerLightSampler{
		lights:       lights,
		distribution: core.NewDistribution(weights),
	}
}

// SampleLightEmission selects a light proportionally to its power
func (pls *PowerLightSampler) SampleLightEmission(u float64) (Light, float64, int) {
	if len(pls.lights) == 0 {
		return nil, 0.0, -1
	}

	index, pdf := pls.distribution.Sample(u)
	if index < 0 {
		return nil, 0.0, -1
	}
	return pls.lights[index], pdf, index
}

// GetLightProbability returns the power-weighted selection probability
func (pls *PowerLightSampler) GetLightProbability(lightIndex int) float64 {
	if lightIndex < 0 || lightIndex >= len(pls.lights) {
		return 0.0
	}
	return pls.distribution.PDF(lightIndex)
}

// GetLightCount returns the number of lights in this sampler
func (pls *PowerLightSampler) GetLightCount() int {
	return len(pls.lights)
}
