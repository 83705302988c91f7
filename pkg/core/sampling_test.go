package core

import (
	"math"
	"math/rand"
	"testing"
)

func TestSampleCosineHemisphere(t *testing.T) {
	normal := NewVec3(0, 1, 0)
	sampler := NewRandomSampler(rand.New(rand.NewSource(42)))

	for i := 0; i < 1000; i++ {
		dir := SampleCosineHemisphere(normal, sampler.Get2D())

		if math.Abs(dir.Length()-1.0) > 1e-9 {
			t.Fatalf("Direction not normalized: length %f", dir.Length())
		}
		if dir.Dot(normal) < 0 {
			t.Fatalf("Direction %v below hemisphere around %v", dir, normal)
		}
	}
}

func TestSampleCosineHemisphere_MeanCosine(t *testing.T) {
	// For a cosine-weighted distribution E[cos(theta)] = 2/3
	normal := NewVec3(0, 0, 1)
	sampler := NewRandomSampler(rand.New(rand.NewSource(7)))

	const n = 50000
	sum := 0.0
	for i := 0; i < n; i++ {
		dir := SampleCosineHemisphere(normal, sampler.Get2D())
		sum += dir.Dot(normal)
	}
	mean := sum / n

	if math.Abs(mean-2.0/3.0) > 0.01 {
		t.Errorf("Expected mean cosine 2/3, got %f", mean)
	}
}

func TestSampleOnUnitSphere(t *testing.T) {
	sampler := NewRandomSampler(rand.New(rand.NewSource(42)))

	sum := NewVec3(0, 0, 0)
	for i := 0; i < 10000; i++ {
		dir := SampleOnUnitSphere(sampler.Get2D())
		if math.Abs(dir.Length()-1.0) > 1e-9 {
			t.Fatalf("Direction not on unit sphere: length %f", dir.Length())
		}
		sum = sum.Add(dir)
	}

	// Uniform sphere sampling should average out near the origin
	mean := sum.Multiply(1.0 / 10000)
	if mean.Length() > 0.05 {
		t.Errorf("Mean direction %v too far from origin for uniform sampling", mean)
	}
}

func TestSamplePointInUnitDisk(t *testing.T) {
	sampler := NewRandomSampler(rand.New(rand.NewSource(42)))

	for i := 0; i < 1000; i++ {
		p := SamplePointInUnitDisk(sampler.Get2D())
		if p.Z != 0 {
			t.Fatalf("Disk point %v should have zero Z", p)
		}
		if p.LengthSquared() > 1.0+1e-9 {
			t.Fatalf("Point %v outside unit disk", p)
		}
	}
}

func TestErfInv(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected float64
	}{
		{"Zero", 0.0, 0.0},
		{"Symmetry point positive", 0.5, 0.4769362762044699},
		{"Symmetry point negative", -0.5, -0.4769362762044699},
		{"Near one", 0.9, 1.1630871536766743},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ErfInv(tt.input)
			if math.Abs(got-tt.expected) > 1e-4 {
				t.Errorf("ErfInv(%f) = %f, expected %f", tt.input, got, tt.expected)
			}
		})
	}
}

func TestErfInv_RoundTrip(t *testing.T) {
	// math.Erf(ErfInv(x)) should recover x across the usable range
	for _, x := range []float64{-0.99, -0.75, -0.3, 0.0, 0.3, 0.75, 0.99} {
		got := math.Erf(ErfInv(x))
		if math.Abs(got-x) > 1e-4 {
			t.Errorf("Erf(ErfInv(%f)) = %f", x, got)
		}
	}
}

func TestErfInv_ClampsOutOfRange(t *testing.T) {
	// Inputs at or beyond ±1 must stay finite
	for _, x := range []float64{1.0, -1.0, 2.0, -2.0} {
		got := ErfInv(x)
		if math.IsNaN(got) || math.IsInf(got, 0) {
			t.Errorf("ErfInv(%f) = %f, expected finite value", x, got)
		}
	}
}
