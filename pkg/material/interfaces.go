package material

import (
	"github.com/photometric/go-mmlt/pkg/core"
)

// Material interface for surfaces that can scatter light.
// The material set is closed: Lambertian, Mirror and Dielectric cover the
// supported BSDFs, with Emissive marking light surfaces.
type Material interface {
	// Scatter samples an outgoing direction for the given incoming ray.
	// Returns false if the ray is absorbed.
	Scatter(rayIn core.Ray, hit HitRecord, sampler core.Sampler) (ScatterResult, bool)

	// EvaluateBRDF evaluates the BRDF for specific incoming/outgoing directions.
	// Both directions point away from the surface. Delta materials return zero.
	// The hit carries the surface point for textured albedo lookups.
	EvaluateBRDF(incomingDir, outgoingDir core.Vec3, hit *HitRecord) core.Vec3

	// PDF calculates the sampling density for specific incoming/outgoing directions.
	// Returns (pdf, isDelta) where isDelta marks delta-function (specular) materials.
	PDF(incomingDir, outgoingDir, normal core.Vec3) (pdf float64, isDelta bool)
}

// Emitter interface for materials that emit light
type Emitter interface {
	Emit(rayIn core.Ray) core.Vec3
}

// ScatterResult contains the result of material scattering
type ScatterResult struct {
	Incoming    core.Ray  // The incoming ray
	Scattered   core.Ray  // The scattered ray
	Attenuation core.Vec3 // Color attenuation
	PDF         float64   // Probability density of the sampled direction (0 for specular)
}

// IsSpecular returns true if this is specular scattering (no PDF)
func (s ScatterResult) IsSpecular() bool {
	return s.PDF <= 0
}

// HitRecord contains information about a ray-object intersection
type HitRecord struct {
	Point     core.Vec3 // Point of intersection
	Normal    core.Vec3 // Surface normal at intersection
	T         float64   // Parameter t along the ray
	FrontFace bool      // Whether ray hit the front face
	Material  Material  // Material of the hit object
	ObjectID  uint64    // Identity of the hit object
}

// SetFaceNormal sets the normal vector and determines front/back face
func (h *HitRecord) SetFaceNormal(ray core.Ray, outwardNormal core.Vec3) {
	h.FrontFace = ray.Direction.Dot(outwardNormal) < 0
	if h.FrontFace {
		h.Normal = outwardNormal
	} else {
		h.Normal = outwardNormal.Multiply(-1)
	}
}
