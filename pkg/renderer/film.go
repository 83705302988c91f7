package renderer

import (
	"image"
	"image/color"

	"github.com/photometric/go-mmlt/pkg/core"
)

// Film accumulates weighted radiance splats in linear RGB. Metropolis
// sampling scatters energy across arbitrary pixels, so the film is a
// plain accumulation grid without per-pixel sample counts; normalization
// happens once at the end via Scale.
type Film struct {
	width  int
	height int
	pixels []core.Vec3 // Row-major accumulation buffer
}

// NewFilm creates a zeroed film of the given dimensions.
func NewFilm(width, height int) *Film {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	return &Film{
		width:  width,
		height: height,
		pixels: make([]core.Vec3, width*height),
	}
}

// Width returns the film width in pixels.
func (f *Film) Width() int { return f.width }

// Height returns the film height in pixels.
func (f *Film) Height() int { return f.height }

// AddSplat deposits a weighted color into the containing pixel (box
// filter). Splats outside the film are dropped.
func (f *Film) AddSplat(x, y int, color core.Vec3, weight float64) {
	if x < 0 || x >= f.width || y < 0 || y >= f.height || weight <= 0 {
		return
	}
	i := y*f.width + x
	f.pixels[i] = f.pixels[i].Add(color.Multiply(weight))
}

// Merge adds another film's accumulation into this one. Both films must
// have the same dimensions; partitioned rendering merges worker films in
// a fixed order so results stay deterministic.
func (f *Film) Merge(other *Film) {
	if other == nil || other.width != f.width || other.height != f.height {
		return
	}
	for i := range f.pixels {
		f.pixels[i] = f.pixels[i].Add(other.pixels[i])
	}
}

// Scale multiplies every pixel by the given factor. The Metropolis
// estimator calls this once with b/mutationsPerPixel to turn splat
// counts into radiance.
func (f *Film) Scale(factor float64) {
	for i := range f.pixels {
		f.pixels[i] = f.pixels[i].Multiply(factor)
	}
}

// PixelColor returns the accumulated linear RGB value at (x, y).
func (f *Film) PixelColor(x, y int) core.Vec3 {
	if x < 0 || x >= f.width || y < 0 || y >= f.height {
		return core.Vec3{}
	}
	return f.pixels[y*f.width+x]
}

// Luminance returns the mean pixel luminance, useful for convergence
// checks in tests.
func (f *Film) Luminance() float64 {
	total := 0.0
	for _, p := range f.pixels {
		total += p.Luminance()
	}
	return total / float64(len(f.pixels))
}

// ToImage converts the film to an 8-bit RGBA image with gamma 2.0.
func (f *Film) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.width, f.height))
	for y := 0; y < f.height; y++ {
		for x := 0; x < f.width; x++ {
			img.SetRGBA(x, y, vec3ToColor(f.pixels[y*f.width+x]))
		}
	}
	return img
}

// vec3ToColor converts a linear color to RGBA with gamma correction and clamping
func vec3ToColor(colorVec core.Vec3) color.RGBA {
	// Apply gamma correction (gamma = 2.0)
	colorVec = colorVec.GammaCorrect(2.0)

	// Clamp to valid color range
	colorVec = colorVec.Clamp(0.0, 1.0)

	return color.RGBA{
		R: uint8(255 * colorVec.X),
		G: uint8(255 * colorVec.Y),
		B: uint8(255 * colorVec.Z),
		A: 255,
	}
}
