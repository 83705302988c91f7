package material

import (
	"github.com/photometric/go-mmlt/pkg/core"
)

// Emissive represents a material that emits light
type Emissive struct {
	Emission core.Vec3 // Emitted radiance
}

// NewEmissive creates a new emissive material
func NewEmissive(emission core.Vec3) *Emissive {
	return &Emissive{Emission: emission}
}

// Scatter implements the Material interface - emissive materials don't scatter light
func (e *Emissive) Scatter(rayIn core.Ray, hit HitRecord, sampler core.Sampler) (ScatterResult, bool) {
	// Emissive materials absorb incoming rays and emit their own light
	return ScatterResult{}, false
}

// EvaluateBRDF evaluates the BRDF for specific incoming/outgoing directions
func (e *Emissive) EvaluateBRDF(incomingDir, outgoingDir core.Vec3, hit *HitRecord) core.Vec3 {
	// Emissive materials don't reflect light
	return core.Vec3{}
}

// PDF calculates the probability density function for specific incoming/outgoing directions
func (e *Emissive) PDF(incomingDir, outgoingDir, normal core.Vec3) (float64, bool) {
	return 0.0, false
}

// Emit implements the Emitter interface, returning the emitted radiance
func (e *Emissive) Emit(rayIn core.Ray) core.Vec3 {
	return e.Emission
}
