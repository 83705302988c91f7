package material

import (
	"math"

	"github.com/photometric/go-mmlt/pkg/core"
)

// Dielectric represents a transparent material (glass, water, etc.)
type Dielectric struct {
	RefractionIndex float64 // Index of refraction (1.0 = air, 1.5 = glass, 1.33 = water)
}

// NewDielectric creates a new dielectric material
func NewDielectric(refractionIndex float64) *Dielectric {
	return &Dielectric{RefractionIndex: refractionIndex}
}

// Scatter implements the Material interface for dielectric materials
func (d *Dielectric) Scatter(rayIn core.Ray, hit HitRecord, sampler core.Sampler) (ScatterResult, bool) {
	// Attenuation is always (1,1,1) - glass doesn't absorb light
	attenuation := core.NewVec3(1.0, 1.0, 1.0)

	// Determine if we're entering or exiting the material
	var refractionRatio float64
	if hit.FrontFace {
		refractionRatio = 1.0 / d.RefractionIndex // Entering material
	} else {
		refractionRatio = d.RefractionIndex // Exiting material
	}

	unitDirection := rayIn.Direction.Normalize()
	cosTheta := math.Min(unitDirection.Multiply(-1).Dot(hit.Normal), 1.0)
	sinTheta := math.Sqrt(1.0 - cosTheta*cosTheta)

	// Check for total internal reflection
	cannotRefract := refractionRatio*sinTheta > 1.0

	var direction core.Vec3
	if cannotRefract || reflectance(cosTheta, refractionRatio) > sampler.Get1D() {
		// Must reflect (total internal reflection or Fresnel reflection)
		direction = reflectVector(unitDirection, hit.Normal)
	} else {
		// Can refract
		direction = refractVector(unitDirection, hit.Normal, refractionRatio)
	}

	scattered := core.Ray{Origin: hit.Point, Direction: direction}
	return ScatterResult{
		Incoming:    rayIn,
		Scattered:   scattered,
		Attenuation: attenuation,
		PDF:         0, // Specular materials have no PDF
	}, true
}

// EvaluateBRDF evaluates the BRDF for specific incoming/outgoing directions
func (d *Dielectric) EvaluateBRDF(incomingDir, outgoingDir core.Vec3, hit *HitRecord) core.Vec3 {
	// Delta function: connection strategies cannot evaluate a dielectric
	return core.Vec3{}
}

// PDF calculates the probability density function for specific incoming/outgoing directions
func (d *Dielectric) PDF(incomingDir, outgoingDir, normal core.Vec3) (float64, bool) {
	// Delta function, handled specially in the integrator
	return 0.0, true
}

// reflectance calculates the reflectance using Schlick's approximation
func reflectance(cosine, refractionRatio float64) float64 {
	// Use Schlick's approximation for reflectance
	r0 := (1 - refractionRatio) / (1 + refractionRatio)
	r0 = r0 * r0
	return r0 + (1-r0)*math.Pow(1-cosine, 5)
}

// refractVector calculates refraction using Snell's law
func refractVector(uv, n core.Vec3, etaiOverEtat float64) core.Vec3 {
	cosTheta := math.Min(uv.Multiply(-1).Dot(n), 1.0)
	rOutPerp := uv.Add(n.Multiply(cosTheta)).Multiply(etaiOverEtat)
	rOutParallel := n.Multiply(-math.Sqrt(math.Abs(1.0 - rOutPerp.LengthSquared())))
	return rOutPerp.Add(rOutParallel)
}
