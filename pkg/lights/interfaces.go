package lights

import "github.com/photometric/go-mmlt/pkg/core"

// Light interface for emitters that can seed light transport paths
type Light interface {
	// SampleEmission samples a point on the light surface and an outgoing
	// direction for light path generation
	SampleEmission(samplePoint core.Vec2, sampleDirection core.Vec2) EmissionSample

	// EmissionPDF returns the area density of sampling the given surface
	// point and the directional density of emitting in the given direction.
	// Both are zero if the point is not on the light surface.
	EmissionPDF(point core.Vec3, direction core.Vec3) (areaPDF, directionPDF float64)

	// Emit evaluates emission toward the origin of the given ray
	Emit(ray core.Ray) core.Vec3

	// Power returns the total emitted power, used for light selection
	Power() core.Vec3
}

// EmissionSample contains information about a sampled emission for light path generation
type EmissionSample struct {
	Point        core.Vec3 // Point on the light surface
	Normal       core.Vec3 // Surface normal at the emission point (outward facing)
	Direction    core.Vec3 // Emission direction FROM the surface (cosine-weighted hemisphere)
	Emission     core.Vec3 // Emitted radiance at this point and direction
	AreaPDF      float64   // PDF for position sampling (per unit area)
	DirectionPDF float64   // PDF for direction sampling (per solid angle)
}

// LightSampler interface for light selection strategies
type LightSampler interface {
	// SampleLightEmission selects a light for emission sampling and returns
	// the light, its selection probability, and its index
	SampleLightEmission(u float64) (Light, float64, int)

	// GetLightProbability returns the selection probability for the light at the given index
	GetLightProbability(lightIndex int) float64

	// GetLightCount returns the number of lights in this sampler
	GetLightCount() int
}
