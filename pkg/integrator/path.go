package integrator

import (
	"math"
	"sync/atomic"

	"github.com/photometric/go-mmlt/pkg/core"
	"github.com/photometric/go-mmlt/pkg/geometry"
	"github.com/photometric/go-mmlt/pkg/lights"
	"github.com/photometric/go-mmlt/pkg/material"
	"github.com/photometric/go-mmlt/pkg/scene"
)

// rayEpsilon rejects intersections closer than this to the ray origin,
// guarding against a path re-hitting the surface it just left.
const rayEpsilon = 0.001

// Vertex is one node of a transport subpath with the throughput and
// area density bookkeeping needed for multiple importance sampling.
type Vertex struct {
	Point  core.Vec3
	Normal core.Vec3

	// IncomingDirection points from the vertex back toward the previous
	// vertex along the subpath.
	IncomingDirection core.Vec3

	Material material.Material
	Light    lights.Light
	Camera   *geometry.Camera

	// LightIndex is the position of Light in the scene's light list,
	// used to look up its selection probability.
	LightIndex int
	ObjectID   uint64

	// Area densities for generating this vertex while walking the path
	// forward and backward.
	AreaPdfForward float64
	AreaPdfReverse float64

	IsLight    bool
	IsCamera   bool
	IsSpecular bool

	// Beta is the accumulated throughput from the subpath origin up to
	// and including this vertex.
	Beta core.Vec3

	// EmittedLight is the radiance leaving this vertex toward the
	// previous one, set only on emissive surfaces hit from the front.
	EmittedLight core.Vec3
}

// convertPDFDensity converts a solid angle density at v into an area
// density at the next vertex.
func (v Vertex) convertPDFDensity(next Vertex, pdf float64) float64 {
	direction := next.Point.Subtract(v.Point)
	distanceSquared := direction.LengthSquared()
	if distanceSquared == 0 {
		return 0
	}
	pdf /= distanceSquared
	if next.Material != nil {
		pdf *= math.Abs(direction.Normalize().Dot(next.Normal))
	}
	return pdf
}

// Path is a camera or light subpath, ordered from its origin outward.
type Path struct {
	Vertices []Vertex
}

// MMLTIntegrator evaluates one multiplexed bidirectional sampling
// technique per call, turning a primary sample vector into a weighted
// path contribution. It holds no per-chain state and can be shared by
// concurrent chains.
type MMLTIntegrator struct {
	scene         *scene.Scene
	maxPathLength int

	discardedSamples atomic.Uint64
}

// NewMMLTIntegrator creates an integrator for the given scene. Path
// lengths are capped at the scene's configured maximum, with a floor
// of one edge.
func NewMMLTIntegrator(s *scene.Scene) *MMLTIntegrator {
	maxPathLength := s.SamplingConfig.MaxPathLength
	if maxPathLength < 1 {
		maxPathLength = 1
	}
	return &MMLTIntegrator{scene: s, maxPathLength: maxPathLength}
}

// DiscardedSamples reports how many technique evaluations produced a
// non-finite contribution and were dropped.
func (m *MMLTIntegrator) DiscardedSamples() uint64 {
	return m.discardedSamples.Load()
}

// generateCameraSubpath starts a subpath at the camera and extends it
// through the scene up to maxVertices vertices.
func (m *MMLTIntegrator) generateCameraSubpath(sampler core.Sampler, ray core.Ray, maxVertices int) Path {
	path := Path{Vertices: make([]Vertex, 0, maxVertices)}
	path.Vertices = append(path.Vertices, Vertex{
		Point:    ray.Origin,
		Normal:   ray.Direction.Negate(),
		IsCamera: true,
		Camera:   m.scene.Camera,
		Beta:     core.NewVec3(1, 1, 1),
	})
	if maxVertices == 1 {
		return path
	}

	_, directionPDF := m.scene.Camera.CalculateRayPDFs(ray)
	m.extendPath(&path, sampler, ray, core.NewVec3(1, 1, 1), directionPDF, maxVertices)
	return path
}

// generateLightSubpath samples an emission point and direction on one
// of the scene's lights and extends the subpath up to maxVertices
// vertices. The light selection probability is folded into the first
// vertex's area density.
func (m *MMLTIntegrator) generateLightSubpath(sampler core.Sampler, maxVertices int) Path {
	emission, light, lightIndex, valid := lights.SampleLightEmission(m.scene.LightSampler, sampler)
	if !valid || emission.AreaPDF <= 0 {
		return Path{}
	}

	path := Path{Vertices: make([]Vertex, 0, maxVertices)}
	path.Vertices = append(path.Vertices, Vertex{
		Point:          emission.Point,
		Normal:         emission.Normal,
		IsLight:        true,
		Light:          light,
		LightIndex:     lightIndex,
		EmittedLight:   emission.Emission,
		AreaPdfForward: emission.AreaPDF,
		Beta:           emission.Emission.Multiply(1 / emission.AreaPDF),
	})
	if maxVertices == 1 || emission.DirectionPDF <= 0 {
		return path
	}

	cosTheta := emission.Direction.Dot(emission.Normal)
	throughput := emission.Emission.Multiply(math.Abs(cosTheta) / (emission.AreaPDF * emission.DirectionPDF))
	ray := core.NewRay(emission.Point, emission.Direction)
	m.extendPath(&path, sampler, ray, throughput, emission.DirectionPDF, maxVertices)
	return path
}

// extendPath walks a subpath through the scene, appending a vertex per
// surface hit until the vertex limit is reached, the path leaves the
// scene, the surface absorbs it, or roulette terminates it. The
// throughput and direction density describe the ray entering the loop.
func (m *MMLTIntegrator) extendPath(path *Path, sampler core.Sampler, ray core.Ray, throughput core.Vec3, directionPDF float64, maxVertices int) {
	currentRay := ray
	beta := throughput

	for len(path.Vertices) < maxVertices {
		hit, isHit := m.scene.Intersect(currentRay, rayEpsilon, math.Inf(1))
		if !isHit {
			break
		}

		previous := &path.Vertices[len(path.Vertices)-1]
		vertex := Vertex{
			Point:             hit.Point,
			Normal:            hit.Normal,
			IncomingDirection: currentRay.Direction.Negate(),
			Material:          hit.Material,
			ObjectID:          hit.ObjectID,
			Beta:              beta,
		}
		vertex.AreaPdfForward = previous.convertPDFDensity(vertex, directionPDF)

		if light, lightIndex, isLight := m.scene.LightForObject(hit.ObjectID); isLight {
			vertex.IsLight = true
			vertex.Light = light
			vertex.LightIndex = lightIndex
			if emitter, isEmitter := hit.Material.(material.Emitter); isEmitter && hit.FrontFace {
				vertex.EmittedLight = emitter.Emit(currentRay)
			}
		}

		path.Vertices = append(path.Vertices, vertex)
		if len(path.Vertices) >= maxVertices {
			break
		}

		scatter, didScatter := hit.Material.Scatter(currentRay, *hit, sampler)
		if !didScatter {
			break
		}

		current := &path.Vertices[len(path.Vertices)-1]
		var reversePDF float64
		if scatter.IsSpecular() {
			current.IsSpecular = true
			beta = beta.MultiplyVec(scatter.Attenuation)
			directionPDF = 0
			reversePDF = 0
		} else {
			cosTheta := math.Abs(scatter.Scattered.Direction.Dot(hit.Normal))
			beta = beta.MultiplyVec(scatter.Attenuation).Multiply(cosTheta / scatter.PDF)
			directionPDF = scatter.PDF

			var reverseIsDelta bool
			reversePDF, reverseIsDelta = hit.Material.PDF(scatter.Scattered.Direction, currentRay.Direction.Negate(), hit.Normal)
			if reverseIsDelta {
				reversePDF = 0
			}
		}
		previous = &path.Vertices[len(path.Vertices)-2]
		previous.AreaPdfReverse = current.convertPDFDensity(*previous, reversePDF)

		// Roulette termination, compensated so surviving paths stay
		// unbiased.
		survival := math.Min(0.95, math.Max(0.5, beta.Luminance()))
		if sampler.Get1D() > survival {
			break
		}
		beta = beta.Multiply(1 / survival)

		currentRay = scatter.Scattered
	}
}
