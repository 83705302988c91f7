package material

import (
	"math"

	"github.com/photometric/go-mmlt/pkg/core"
)

// ColorSource provides spatially-varying colors for materials
type ColorSource interface {
	// Evaluate returns the color at the given 3D surface point
	Evaluate(point core.Vec3) core.Vec3
}

// SolidColor provides a uniform color everywhere
type SolidColor struct {
	Color core.Vec3
}

// NewSolidColor creates a new solid color source
func NewSolidColor(color core.Vec3) *SolidColor {
	return &SolidColor{Color: color}
}

// Evaluate returns the solid color regardless of position
func (s *SolidColor) Evaluate(point core.Vec3) core.Vec3 {
	return s.Color
}

// Checker alternates two colors in a 3D checkerboard pattern
type Checker struct {
	Scale  float64 // Edge length of one check in world units
	Color1 core.Vec3
	Color2 core.Vec3
}

// NewChecker creates a checkerboard color source
func NewChecker(scale float64, color1, color2 core.Vec3) *Checker {
	if scale <= 0 {
		scale = 1.0
	}
	return &Checker{Scale: scale, Color1: color1, Color2: color2}
}

// Evaluate returns the check color containing the given point
func (c *Checker) Evaluate(point core.Vec3) core.Vec3 {
	x := int(math.Floor(point.X / c.Scale))
	y := int(math.Floor(point.Y / c.Scale))
	z := int(math.Floor(point.Z / c.Scale))
	if (x+y+z)%2 == 0 {
		return c.Color1
	}
	return c.Color2
}
