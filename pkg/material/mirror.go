package material

import (
	"github.com/photometric/go-mmlt/pkg/core"
)

// Mirror represents a perfect specular reflector
type Mirror struct {
	Albedo core.Vec3 // Reflection tint
}

// NewMirror creates a new mirror material
func NewMirror(albedo core.Vec3) *Mirror {
	return &Mirror{Albedo: albedo}
}

// Scatter implements the Material interface for mirror reflection
func (m *Mirror) Scatter(rayIn core.Ray, hit HitRecord, sampler core.Sampler) (ScatterResult, bool) {
	reflected := reflectVector(rayIn.Direction.Normalize(), hit.Normal)
	scattered := core.Ray{Origin: hit.Point, Direction: reflected}

	// Grazing rays that reflect below the surface are absorbed
	if reflected.Dot(hit.Normal) <= 0 {
		return ScatterResult{}, false
	}

	return ScatterResult{
		Incoming:    rayIn,
		Scattered:   scattered,
		Attenuation: m.Albedo,
		PDF:         0, // Specular materials have no PDF
	}, true
}

// EvaluateBRDF evaluates the BRDF for specific incoming/outgoing directions
func (m *Mirror) EvaluateBRDF(incomingDir, outgoingDir core.Vec3, hit *HitRecord) core.Vec3 {
	// Delta function: connection strategies cannot evaluate a mirror
	return core.Vec3{}
}

// PDF calculates the probability density function for specific incoming/outgoing directions
func (m *Mirror) PDF(incomingDir, outgoingDir, normal core.Vec3) (float64, bool) {
	// Delta function, handled specially in the integrator
	return 0.0, true
}

// reflectVector calculates the reflection of a vector v off a surface with normal n
func reflectVector(v, n core.Vec3) core.Vec3 {
	// r = v - 2*dot(v,n)*n
	return v.Subtract(n.Multiply(2 * v.Dot(n)))
}
