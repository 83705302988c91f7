package integrator

import (
	"github.com/photometric/go-mmlt/pkg/core"
)

// remap0 substitutes 1 for zero densities so delta segments cancel out
// of the weight ratios instead of zeroing them.
func remap0(f float64) float64 {
	if f != 0 {
		return f
	}
	return 1
}

// junctionState snapshots the vertex fields calculateMISWeight rewrites
// so the caller's subpaths come back unchanged.
type junctionState struct {
	vertex     *Vertex
	pdfReverse float64
	isSpecular bool
}

func saveJunction(vertices ...*Vertex) []junctionState {
	saved := make([]junctionState, 0, len(vertices))
	for _, v := range vertices {
		if v != nil {
			saved = append(saved, junctionState{v, v.AreaPdfReverse, v.IsSpecular})
		}
	}
	return saved
}

func restoreJunction(saved []junctionState) {
	for _, state := range saved {
		state.vertex.AreaPdfReverse = state.pdfReverse
		state.vertex.IsSpecular = state.isSpecular
	}
}

// calculateMISWeight computes the balance heuristic weight of building
// this particular path with s light vertices and t camera vertices,
// against every other split that could have produced the same path.
// The weight sums to one across the splits, which keeps the multiplexed
// estimator unbiased while damping the noisiest strategies.
func (m *MMLTIntegrator) calculateMISWeight(cameraPath, lightPath Path, s, t int) float64 {
	// A two-vertex path has a single strategy.
	if s+t == 2 {
		return 1.0
	}

	var qs, pt, qsMinus, ptMinus *Vertex
	if s > 0 {
		qs = &lightPath.Vertices[s-1]
	}
	if t > 0 {
		pt = &cameraPath.Vertices[t-1]
	}
	if s > 1 {
		qsMinus = &lightPath.Vertices[s-2]
	}
	if t > 1 {
		ptMinus = &cameraPath.Vertices[t-2]
	}

	saved := saveJunction(qs, pt, qsMinus, ptMinus)
	defer restoreJunction(saved)

	// The junction endpoints were connected deterministically, so they
	// count as non-delta regardless of their material.
	if qs != nil {
		qs.IsSpecular = false
	}
	if pt != nil {
		pt.IsSpecular = false
	}

	// Rewrite the reverse densities across the junction: each vertex
	// gets the density of being generated from the opposite side.
	if pt != nil {
		if s > 0 {
			pt.AreaPdfReverse = m.calculateVertexPdf(*qs, qsMinus, *pt)
		} else {
			toPrevious := ptMinus.Point.Subtract(pt.Point).Normalize()
			pt.AreaPdfReverse = m.calculateLightOriginPdf(*pt, toPrevious)
		}
	}
	if ptMinus != nil {
		if s > 0 {
			ptMinus.AreaPdfReverse = m.calculateVertexPdf(*pt, qs, *ptMinus)
		} else {
			ptMinus.AreaPdfReverse = m.calculateLightPdf(*pt, *ptMinus)
		}
	}
	if qs != nil {
		qs.AreaPdfReverse = m.calculateVertexPdf(*pt, ptMinus, *qs)
	}
	if qsMinus != nil {
		qsMinus.AreaPdfReverse = m.calculateVertexPdf(*qs, pt, *qsMinus)
	}

	sumRi := 0.0

	// Hypothetical strategies that move the junction toward the camera.
	ri := 1.0
	for i := t - 1; i > 0; i-- {
		ri *= remap0(cameraPath.Vertices[i].AreaPdfReverse) / remap0(cameraPath.Vertices[i].AreaPdfForward)
		if !cameraPath.Vertices[i].IsSpecular && !cameraPath.Vertices[i-1].IsSpecular {
			sumRi += ri
		}
	}

	// Hypothetical strategies that move the junction toward the light.
	ri = 1.0
	for i := s - 1; i >= 0; i-- {
		ri *= remap0(lightPath.Vertices[i].AreaPdfReverse) / remap0(lightPath.Vertices[i].AreaPdfForward)
		previousIsDelta := false
		if i > 0 {
			previousIsDelta = lightPath.Vertices[i-1].IsSpecular
		}
		if !lightPath.Vertices[i].IsSpecular && !previousIsDelta {
			sumRi += ri
		}
	}

	return 1.0 / (1.0 + sumRi)
}

// calculateVertexPdf returns the area density of curr generating next,
// given that curr was itself reached from prev.
func (m *MMLTIntegrator) calculateVertexPdf(curr Vertex, prev *Vertex, next Vertex) float64 {
	if curr.IsLight {
		return m.calculateLightPdf(curr, next)
	}

	direction := next.Point.Subtract(curr.Point)
	if direction.LengthSquared() == 0 {
		return 0
	}
	direction = direction.Normalize()

	var pdf float64
	if curr.IsCamera {
		_, pdf = curr.Camera.CalculateRayPDFs(core.NewRay(curr.Point, direction))
	} else {
		if prev == nil {
			return 0
		}
		incoming := prev.Point.Subtract(curr.Point).Normalize()
		var isDelta bool
		pdf, isDelta = curr.Material.PDF(incoming, direction, curr.Normal)
		if isDelta {
			pdf = 0
		}
	}

	return curr.convertPDFDensity(next, pdf)
}

// calculateLightPdf returns the area density of the light at this
// vertex emitting toward next.
func (m *MMLTIntegrator) calculateLightPdf(lightVertex Vertex, next Vertex) float64 {
	if lightVertex.Light == nil {
		return 0
	}
	direction := next.Point.Subtract(lightVertex.Point)
	if direction.LengthSquared() == 0 {
		return 0
	}
	_, directionPDF := lightVertex.Light.EmissionPDF(lightVertex.Point, direction.Normalize())
	return lightVertex.convertPDFDensity(next, directionPDF)
}

// calculateLightOriginPdf returns the density of sampling this vertex
// as an emission origin: the light's area density times its selection
// probability.
func (m *MMLTIntegrator) calculateLightOriginPdf(lightVertex Vertex, direction core.Vec3) float64 {
	if lightVertex.Light == nil {
		return 0
	}
	areaPDF, _ := lightVertex.Light.EmissionPDF(lightVertex.Point, direction)
	return areaPDF * m.scene.LightSampler.GetLightProbability(lightVertex.LightIndex)
}
