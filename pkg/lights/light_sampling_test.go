package lights

import (
	"math"
	"math/rand"
	"testing"

	"github.com/photometric/go-mmlt/pkg/core"
)

func TestUniformLightSampler(t *testing.T) {
	lights := []Light{
		testSphereLight(core.NewVec3(0, 5, 0), 0.5, core.NewVec3(1, 1, 1)),
		testSphereLight(core.NewVec3(3, 5, 0), 0.5, core.NewVec3(2, 2, 2)),
	}
	sampler := NewUniformLightSampler(lights)

	if sampler.GetLightCount() != 2 {
		t.Fatalf("light count = %d, want 2", sampler.GetLightCount())
	}

	// u < 0.5 selects the first light, u >= 0.5 the second
	light, pdf, index := sampler.SampleLightEmission(0.25)
	if light != lights[0] || index != 0 {
		t.Errorf("u=0.25 selected light %d", index)
	}
	if math.Abs(pdf-0.5) > 1e-9 {
		t.Errorf("selection pdf = %f, want 0.5", pdf)
	}

	_, _, index = sampler.SampleLightEmission(0.75)
	if index != 1 {
		t.Errorf("u=0.75 selected light %d, want 1", index)
	}

	// u at the upper edge clamps to the last light
	_, _, index = sampler.SampleLightEmission(1.0)
	if index != 1 {
		t.Errorf("u=1.0 selected light %d, want 1", index)
	}

	if sampler.GetLightProbability(0) != 0.5 || sampler.GetLightProbability(1) != 0.5 {
		t.Errorf("uniform probabilities should both be 0.5")
	}
	if sampler.GetLightProbability(5) != 0 {
		t.Errorf("out of range index should have zero probability")
	}
}

func TestUniformLightSamplerEmpty(t *testing.T) {
	sampler := NewUniformLightSampler(nil)
	light, pdf, index := sampler.SampleLightEmission(0.5)
	if light != nil || pdf != 0 || index != -1 {
		t.Errorf("empty sampler returned (%v, %f, %d)", light, pdf, index)
	}
}

func TestPowerLightSampler(t *testing.T) {
	// Second light emits three times the power of the first
	lights := []Light{
		testSphereLight(core.NewVec3(0, 5, 0), 0.5, core.NewVec3(1, 1, 1)),
		testSphereLight(core.NewVec3(3, 5, 0), 0.5, core.NewVec3(3, 3, 3)),
	}
	sampler := NewPowerLightSampler(lights)

	if math.Abs(sampler.GetLightProbability(0)-0.25) > 1e-9 {
		t.Errorf("dim light probability = %f, want 0.25", sampler.GetLightProbability(0))
	}
	if math.Abs(sampler.GetLightProbability(1)-0.75) > 1e-9 {
		t.Errorf("bright light probability = %f, want 0.75", sampler.GetLightProbability(1))
	}

	light, pdf, index := sampler.SampleLightEmission(0.1)
	if light != lights[0] || index != 0 {
		t.Errorf("u=0.1 selected light %d, want 0", index)
	}
	if math.Abs(pdf-0.25) > 1e-9 {
		t.Errorf("selection pdf = %f, want 0.25", pdf)
	}

	_, pdf, index = sampler.SampleLightEmission(0.5)
	if index != 1 {
		t.Errorf("u=0.5 selected light %d, want 1", index)
	}
	if math.Abs(pdf-0.75) > 1e-9 {
		t.Errorf("selection pdf = %f, want 0.75", pdf)
	}
}

func TestPowerLightSamplerZeroPowerFallsBackToUniform(t *testing.T) {
	lights := []Light{
		testSphereLight(core.NewVec3(0, 5, 0), 0.5, core.Vec3{}),
		testSphereLight(core.NewVec3(3, 5, 0), 0.5, core.Vec3{}),
	}
	sampler := NewPowerLightSampler(lights)

	if math.Abs(sampler.GetLightProbability(0)-0.5) > 1e-9 {
		t.Errorf("zero power probability = %f, want uniform 0.5", sampler.GetLightProbability(0))
	}
	if math.Abs(sampler.GetLightProbability(1)-0.5) > 1e-9 {
		t.Errorf("zero power probability = %f, want uniform 0.5", sampler.GetLightProbability(1))
	}
}

func TestSampleLightEmissionFoldsSelectionIntoAreaPDF(t *testing.T) {
	radius := 0.5
	lights := []Light{
		testSphereLight(core.NewVec3(0, 5, 0), radius, core.NewVec3(1, 1, 1)),
		testSphereLight(core.NewVec3(3, 5, 0), radius, core.NewVec3(1, 1, 1)),
	}
	lightSampler := NewUniformLightSampler(lights)
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(42)))

	sample, light, index, ok := SampleLightEmission(lightSampler, sampler)
	if !ok {
		t.Fatal("expected a valid emission sample")
	}
	if light == nil {
		t.Fatal("expected a selected light")
	}
	if index < 0 || index >= lightSampler.GetLightCount() {
		t.Fatalf("selected light index %d out of range", index)
	}

	// Area PDF carries the 0.5 selection probability, direction PDF does not
	surfacePDF := 1.0 / (4.0 * math.Pi * radius * radius)
	expectedAreaPDF := surfacePDF * 0.5
	if math.Abs(sample.AreaPDF-expectedAreaPDF) > 1e-9 {
		t.Errorf("area PDF = %f, want %f", sample.AreaPDF, expectedAreaPDF)
	}

	cosTheta := sample.Direction.Dot(sample.Normal)
	if math.Abs(sample.DirectionPDF-cosTheta/math.Pi) > 1e-9 {
		t.Errorf("direction PDF = %f, want %f", sample.DirectionPDF, cosTheta/math.Pi)
	}
}

func TestSampleLightEmissionNoLights(t *testing.T) {
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(42)))
	_, _, _, ok := SampleLightEmission(NewUniformLightSampler(nil), sampler)
	if ok {
		t.Error("expected no sample with zero lights")
	}
}
