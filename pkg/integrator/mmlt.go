package integrator

import (
	"math"

	"github.com/photometric/go-mmlt/pkg/core"
	"github.com/photometric/go-mmlt/pkg/material"
)

// StreamSampler is a sampler whose coordinate sequence is split into
// independently indexed streams.
type StreamSampler interface {
	core.Sampler
	StartStream(index int)
}

// Contribution is the outcome of evaluating one sampling technique: the
// RGB contribution to splat, the scalar luminance driving acceptance
// decisions, and the image position it lands on.
type Contribution struct {
	Spectrum core.Vec3
	Scalar   float64
	PixelX   int
	PixelY   int
}

// IsEmpty reports whether the contribution carries no energy.
func (c Contribution) IsEmpty() bool {
	return c.Scalar <= 0
}

// AcceptanceProbability returns the Metropolis probability of replacing
// the current contribution with the proposed one. Proposals without
// energy are never accepted.
func AcceptanceProbability(current, proposed Contribution) float64 {
	if proposed.Scalar <= 0 {
		return 0
	}
	if current.Scalar <= 0 {
		return 1
	}
	return math.Min(1, proposed.Scalar/current.Scalar)
}

// strategyCount returns how many light/camera splits a path of the
// given length supports. A single-edge path is only reachable by the
// camera hitting a light; longer paths add one strategy per connection
// point plus the direct-to-camera splat.
func strategyCount(pathLength int) int {
	if pathLength <= 1 {
		return 1
	}
	return pathLength + 1
}

// samplePathLength maps a technique coordinate to a path length in
// edges, uniform over 1..maxPathLength.
func (m *MMLTIntegrator) samplePathLength(u float64) int {
	pathLength := 1 + int(u*float64(m.maxPathLength))
	if pathLength > m.maxPathLength {
		pathLength = m.maxPathLength
	}
	return pathLength
}

// sampleStrategy maps a technique coordinate to a split: the number of
// light subpath vertices s and camera subpath vertices t.
func sampleStrategy(u float64, pathLength int) (s, t int) {
	count := strategyCount(pathLength)
	s = int(u * float64(count))
	if s >= count {
		s = count - 1
	}
	return s, pathLength + 1 - s
}

// SampleContribution evaluates the sampling technique encoded in the
// sampler's technique stream: a path length, a split into light and
// camera vertices, and the transport path itself. The contribution is
// scaled by the inverse probability of picking that technique, so the
// expectation over uniform technique choices matches the full
// bidirectional estimator.
func (m *MMLTIntegrator) SampleContribution(sampler StreamSampler) Contribution {
	sampler.StartStream(streamTechnique)
	pathLength := m.samplePathLength(sampler.Get1D())
	s, t := sampleStrategy(sampler.Get1D(), pathLength)

	spectrum, pixelX, pixelY := m.evaluateTechnique(sampler, s, t)
	if spectrum.IsZero() {
		return Contribution{}
	}

	scale := float64(m.maxPathLength * strategyCount(pathLength))
	spectrum = spectrum.Multiply(scale)

	if !spectrum.IsFinite() {
		m.discardedSamples.Add(1)
		return Contribution{}
	}
	scalar := spectrum.Luminance()
	if scalar <= 0 {
		return Contribution{}
	}

	return Contribution{Spectrum: spectrum, Scalar: scalar, PixelX: pixelX, PixelY: pixelY}
}

// evaluateTechnique builds the subpaths for one split and joins them.
// The camera stream always consumes a film and a lens sample first, so
// every technique reads the streams in the same order.
func (m *MMLTIntegrator) evaluateTechnique(sampler StreamSampler, s, t int) (core.Vec3, int, int) {
	sampler.StartStream(streamCamera)
	filmSample := sampler.Get2D()
	lensSample := sampler.Get2D()
	pixelX, pixelY, pixelJitter := m.mapFilmSample(filmSample)

	var cameraPath Path
	if t >= 2 {
		ray := m.scene.Camera.GetRay(pixelX, pixelY, pixelJitter, lensSample)
		cameraPath = m.generateCameraSubpath(sampler, ray, t)
		if len(cameraPath.Vertices) < t {
			return core.Vec3{}, 0, 0
		}
	}

	var lightPath Path
	if s >= 1 {
		sampler.StartStream(streamLight)
		lightPath = m.generateLightSubpath(sampler, s)
		if len(lightPath.Vertices) < s {
			return core.Vec3{}, 0, 0
		}
	}

	switch {
	case s == 0:
		return m.evaluateCameraPathStrategy(cameraPath, t), pixelX, pixelY
	case t == 1:
		return m.evaluateCameraConnectionStrategy(lightPath, s, lensSample)
	default:
		return m.evaluateConnectionStrategy(cameraPath, lightPath, s, t), pixelX, pixelY
	}
}

// mapFilmSample converts a film coordinate in [0,1)² into a pixel and
// the jitter within that pixel.
func (m *MMLTIntegrator) mapFilmSample(filmSample core.Vec2) (int, int, core.Vec2) {
	width, height := m.scene.Camera.GetImageDimensions()
	x := filmSample.X * float64(width)
	y := filmSample.Y * float64(height)

	pixelX := int(x)
	if pixelX >= width {
		pixelX = width - 1
	}
	pixelY := int(y)
	if pixelY >= height {
		pixelY = height - 1
	}

	return pixelX, pixelY, core.NewVec2(x-float64(pixelX), y-float64(pixelY))
}

// evaluateCameraPathStrategy handles the split with no light vertices:
// the camera subpath must land on an emitting surface with its final
// vertex.
func (m *MMLTIntegrator) evaluateCameraPathStrategy(cameraPath Path, t int) core.Vec3 {
	last := cameraPath.Vertices[t-1]
	if !last.IsLight || last.EmittedLight.IsZero() {
		return core.Vec3{}
	}
	weight := m.calculateMISWeight(cameraPath, Path{}, 0, t)
	return last.EmittedLight.MultiplyVec(last.Beta).Multiply(weight)
}

// evaluateConnectionStrategy joins the ends of the two subpaths with a
// visibility test and the geometric coupling term between them.
func (m *MMLTIntegrator) evaluateConnectionStrategy(cameraPath, lightPath Path, s, t int) core.Vec3 {
	qs := &lightPath.Vertices[s-1]
	pt := &cameraPath.Vertices[t-1]
	if qs.IsSpecular || pt.IsSpecular {
		return core.Vec3{}
	}

	toLight := qs.Point.Subtract(pt.Point)
	distance := toLight.Length()
	if distance < rayEpsilon {
		return core.Vec3{}
	}
	toLight = toLight.Multiply(1 / distance)

	cosAtCamera := toLight.Dot(pt.Normal)
	cosAtLight := toLight.Negate().Dot(qs.Normal)
	if cosAtCamera <= 0 || cosAtLight <= 0 {
		return core.Vec3{}
	}
	if !m.scene.Visible(pt.Point, qs.Point) {
		return core.Vec3{}
	}

	geometric := cosAtCamera * cosAtLight / (distance * distance)

	cameraHit := material.HitRecord{Point: pt.Point, Normal: pt.Normal}
	cameraBRDF := pt.Material.EvaluateBRDF(pt.IncomingDirection, toLight, &cameraHit)

	lightBRDF := core.NewVec3(1, 1, 1)
	if s > 1 {
		lightHit := material.HitRecord{Point: qs.Point, Normal: qs.Normal}
		lightBRDF = qs.Material.EvaluateBRDF(qs.IncomingDirection, toLight.Negate(), &lightHit)
	}

	weight := m.calculateMISWeight(cameraPath, lightPath, s, t)

	return qs.Beta.MultiplyVec(lightBRDF).
		MultiplyVec(cameraBRDF).MultiplyVec(pt.Beta).
		Multiply(geometric * weight)
}

// evaluateCameraConnectionStrategy handles the split with a single
// camera vertex: the light subpath's end is projected through a freshly
// sampled camera point and splatted wherever it lands on the film.
func (m *MMLTIntegrator) evaluateCameraConnectionStrategy(lightPath Path, s int, lensSample core.Vec2) (core.Vec3, int, int) {
	qs := &lightPath.Vertices[s-1]
	if qs.IsSpecular {
		return core.Vec3{}, 0, 0
	}

	cameraSample := m.scene.Camera.SampleCameraFromPoint(qs.Point, lensSample)
	if cameraSample == nil {
		return core.Vec3{}, 0, 0
	}
	pixelX, pixelY, onFilm := m.scene.Camera.MapRayToPixel(cameraSample.Ray)
	if !onFilm {
		return core.Vec3{}, 0, 0
	}
	if !m.scene.Visible(cameraSample.Ray.Origin, qs.Point) {
		return core.Vec3{}, 0, 0
	}

	toCamera := cameraSample.Ray.Direction.Negate()
	surfaceHit := material.HitRecord{Point: qs.Point, Normal: qs.Normal}
	brdf := qs.Material.EvaluateBRDF(qs.IncomingDirection, toCamera, &surfaceHit)
	if brdf.IsZero() {
		return core.Vec3{}, 0, 0
	}

	cosAtSurface := math.Abs(toCamera.Dot(qs.Normal))
	importance := cameraSample.Weight.Multiply(1 / cameraSample.PDF)

	cameraPath := Path{Vertices: []Vertex{{
		Point:    cameraSample.Ray.Origin,
		Normal:   m.scene.Camera.GetCameraForward(),
		IsCamera: true,
		Camera:   m.scene.Camera,
		Beta:     importance,
	}}}

	weight := m.calculateMISWeight(cameraPath, lightPath, s, 1)
	contribution := qs.Beta.MultiplyVec(brdf).MultiplyVec(importance).Multiply(cosAtSurface * weight)
	return contribution, pixelX, pixelY
}
