package lights

import (
	"math"

	"github.com/photometric/go-mmlt/pkg/core"
	"github.com/photometric/go-mmlt/pkg/geometry"
	"github.com/photometric/go-mmlt/pkg/material"
)

// SphereLight represents a spherical area light with Lambertian emission
type SphereLight struct {
	Sphere   *geometry.Sphere
	Material material.Material
}

// NewSphereLight creates a new spherical light around the given sphere
func NewSphereLight(sphere *geometry.Sphere, mat material.Material) *SphereLight {
	return &SphereLight{
		Sphere:   sphere,
		Material: mat,
	}
}

// SampleEmission implements the Light interface - samples emission from the sphere surface
func (sl *SphereLight) SampleEmission(samplePoint core.Vec2, sampleDirection core.Vec2) EmissionSample {
	// Sample point uniformly on the entire sphere surface
	localDir := core.SampleOnUnitSphere(samplePoint)
	point := sl.Sphere.Center.Add(localDir.Multiply(sl.Sphere.Radius))
	normal := localDir // Surface normal points outward

	areaPDF := 1.0 / sl.Sphere.Area()
	return SampleEmissionDirection(point, normal, areaPDF, sl.Material, sampleDirection)
}

// EmissionPDF implements the Light interface - returns position and directional PDFs
func (sl *SphereLight) EmissionPDF(point core.Vec3, direction core.Vec3) (pdfPos, pdfDir float64) {
	// Validate point is on sphere surface
	if !validatePointOnSphere(point, sl.Sphere.Center, sl.Sphere.Radius, 0.001) {
		return 0.0, 0.0
	}

	// Calculate surface normal
	normal := point.Subtract(sl.Sphere.Center).Normalize()

	// Check if direction is in correct hemisphere
	cosTheta := direction.Dot(normal)
	if cosTheta <= 0 {
		return 0.0, 0.0
	}

	// Position PDF: uniform sampling over sphere surface
	pdfPos = 1.0 / sl.Sphere.Area()

	// Directional PDF: cosine-weighted hemisphere for Lambertian emission
	pdfDir = cosTheta / math.Pi

	return pdfPos, pdfDir
}

// Emit implements the Light interface - returns material emission
func (sl *SphereLight) Emit(ray core.Ray) core.Vec3 {
	if emitter, isEmissive := sl.Material.(material.Emitter); isEmissive {
		return emitter.Emit(ray)
	}
	return core.Vec3{}
}

// Power implements the Light interface - total power of a Lambertian area
// emitter is pi * area * radiance
func (sl *SphereLight) Power() core.Vec3 {
	emission := sl.Emit(core.Ray{})
	return emission.Multiply(math.Pi * sl.Sphere.Area())
}

// validatePointOnSphere checks if a point lies on a sphere surface within tolerance
func validatePointOnSphere(point core.Vec3, center core.Vec3, radius float64, tolerance float64) bool {
	distFromCenter := point.Subtract(center).Length()
	return math.Abs(distFromCenter-radius) <= tolerance
}
