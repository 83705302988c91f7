package material

import (
	"math"

	"github.com/photometric/go-mmlt/pkg/core"
)

// Lambertian represents a perfectly diffuse material
type Lambertian struct {
	Albedo ColorSource // Base color/reflectance (solid or textured)
}

// NewLambertian creates a new lambertian material with a solid color
func NewLambertian(albedo core.Vec3) *Lambertian {
	return &Lambertian{Albedo: NewSolidColor(albedo)}
}

// NewTexturedLambertian creates a new lambertian material with a texture
func NewTexturedLambertian(albedo ColorSource) *Lambertian {
	return &Lambertian{Albedo: albedo}
}

// Scatter implements the Material interface for lambertian scattering
func (l *Lambertian) Scatter(rayIn core.Ray, hit HitRecord, sampler core.Sampler) (ScatterResult, bool) {
	// Generate cosine-weighted random direction in hemisphere around normal
	scatterDirection := core.SampleCosineHemisphere(hit.Normal, sampler.Get2D())
	scattered := core.Ray{Origin: hit.Point, Direction: scatterDirection}

	// PDF: cos(θ) / π where θ is angle from normal
	cosTheta := scatterDirection.Dot(hit.Normal)
	if cosTheta < 0 {
		cosTheta = 0
	}
	pdf := cosTheta / math.Pi

	// BRDF: albedo / π
	albedo := l.Albedo.Evaluate(hit.Point)
	attenuation := albedo.Multiply(1.0 / math.Pi)

	return ScatterResult{
		Incoming:    rayIn,
		Scattered:   scattered,
		Attenuation: attenuation,
		PDF:         pdf,
	}, true
}

// EvaluateBRDF evaluates the BRDF for specific incoming/outgoing directions
func (l *Lambertian) EvaluateBRDF(incomingDir, outgoingDir core.Vec3, hit *HitRecord) core.Vec3 {
	// Lambertian BRDF is constant over the upper hemisphere: albedo / π
	if outgoingDir.Dot(hit.Normal) <= 0 {
		return core.Vec3{}
	}
	albedo := l.Albedo.Evaluate(hit.Point)
	return albedo.Multiply(1.0 / math.Pi)
}

// PDF calculates the probability density function for specific incoming/outgoing directions
func (l *Lambertian) PDF(incomingDir, outgoingDir, normal core.Vec3) (float64, bool) {
	// Cosine-weighted hemisphere sampling: cos(θ) / π
	cosTheta := outgoingDir.Dot(normal)
	if cosTheta <= 0 {
		return 0.0, false
	}
	return cosTheta / math.Pi, false
}
