package geometry

import (
	"math"

	"github.com/photometric/go-mmlt/pkg/core"
)

// CameraConfig contains camera configuration parameters
type CameraConfig struct {
	Center        core.Vec3 // Camera position
	LookAt        core.Vec3 // Point the camera looks at
	Up            core.Vec3 // Up direction
	Width         int       // Image width in pixels
	AspectRatio   float64   // Width / height
	VFov          float64   // Vertical field of view in degrees
	Aperture      float64   // Lens aperture diameter (0 = pinhole)
	FocusDistance float64   // Distance to the plane of perfect focus
}

// CameraSample is the result of sampling the camera from a scene point,
// used by light tracing strategies that splat onto the image
type CameraSample struct {
	Ray    core.Ray  // Ray from the lens toward the scene point
	Weight core.Vec3 // Importance carried by the ray
	PDF    float64   // Solid angle density of the lens sample, seen from the point
}

// Camera generates primary rays and evaluates importance for splatting.
// It models a thin lens focused on a plane at FocusDistance.
type Camera struct {
	config          CameraConfig
	imageHeight     int
	forward         core.Vec3 // Unit vector from camera toward LookAt
	right           core.Vec3
	up              core.Vec3
	horizontal      core.Vec3 // Viewport basis vectors at the focus plane
	vertical        core.Vec3
	lowerLeftCorner core.Vec3
	viewportWidth   float64
	viewportHeight  float64
	lensRadius      float64
	filmArea        float64 // Image plane area at unit distance, for importance
}

// NewCamera creates a camera from configuration
func NewCamera(config CameraConfig) *Camera {
	imageHeight := int(float64(config.Width) / config.AspectRatio)
	if imageHeight < 1 {
		imageHeight = 1
	}

	// Auto-calculate focus distance from the look-at point
	if config.FocusDistance <= 0 {
		config.FocusDistance = config.LookAt.Subtract(config.Center).Length()
	}

	theta := config.VFov * math.Pi / 180.0
	halfHeight := math.Tan(theta / 2)

	viewportHeight := 2 * halfHeight * config.FocusDistance
	viewportWidth := viewportHeight * config.AspectRatio

	forward := config.LookAt.Subtract(config.Center).Normalize()
	right := forward.Cross(config.Up).Normalize()
	up := right.Cross(forward)

	horizontal := right.Multiply(viewportWidth)
	vertical := up.Multiply(viewportHeight)
	lowerLeftCorner := config.Center.
		Add(forward.Multiply(config.FocusDistance)).
		Subtract(horizontal.Multiply(0.5)).
		Subtract(vertical.Multiply(0.5))

	return &Camera{
		config:          config,
		imageHeight:     imageHeight,
		forward:         forward,
		right:           right,
		up:              up,
		horizontal:      horizontal,
		vertical:        vertical,
		lowerLeftCorner: lowerLeftCorner,
		viewportWidth:   viewportWidth,
		viewportHeight:  viewportHeight,
		lensRadius:      config.Aperture / 2,
		filmArea:        (2 * halfHeight) * (2 * halfHeight * config.AspectRatio),
	}
}

// MergeCameraConfig overlays the non-zero fields of override onto base,
// letting scene builders accept partial camera overrides from the CLI.
func MergeCameraConfig(base, override CameraConfig) CameraConfig {
	merged := base
	if !override.Center.IsZero() {
		merged.Center = override.Center
	}
	if !override.LookAt.IsZero() {
		merged.LookAt = override.LookAt
	}
	if !override.Up.IsZero() {
		merged.Up = override.Up
	}
	if override.Width > 0 {
		merged.Width = override.Width
	}
	if override.AspectRatio > 0 {
		merged.AspectRatio = override.AspectRatio
	}
	if override.VFov > 0 {
		merged.VFov = override.VFov
	}
	if override.Aperture > 0 {
		merged.Aperture = override.Aperture
	}
	if override.FocusDistance > 0 {
		merged.FocusDistance = override.FocusDistance
	}
	return merged
}

// GetImageDimensions returns the image width and height in pixels
func (c *Camera) GetImageDimensions() (int, int) {
	return c.config.Width, c.imageHeight
}

// Config returns the camera's resolved configuration, including the
// auto-calculated focus distance. Rebuilding a camera from a modified
// copy is how callers override resolution after scene construction.
func (c *Camera) Config() CameraConfig {
	return c.config
}

// GetCameraForward returns the camera's forward direction
func (c *Camera) GetCameraForward() core.Vec3 {
	return c.forward
}

// GetRay generates a ray through pixel (pixelX, pixelY).
// samplePixel jitters the position within the pixel, sampleLens picks
// the point on the lens aperture.
func (c *Camera) GetRay(pixelX, pixelY int, samplePixel, sampleLens core.Vec2) core.Ray {
	s := (float64(pixelX) + samplePixel.X) / float64(c.config.Width)
	t := 1.0 - (float64(pixelY)+samplePixel.Y)/float64(c.imageHeight)

	origin := c.config.Center
	if c.lensRadius > 0 {
		rd := core.SamplePointInUnitDisk(sampleLens).Multiply(c.lensRadius)
		origin = origin.Add(c.right.Multiply(rd.X)).Add(c.up.Multiply(rd.Y))
	}

	imagePoint := c.lowerLeftCorner.
		Add(c.horizontal.Multiply(s)).
		Add(c.vertical.Multiply(t))

	return core.NewRay(origin, imagePoint.Subtract(origin).Normalize())
}

// MapRayToPixel maps a ray leaving the lens back to pixel coordinates.
// Returns false if the ray does not pass through the image rectangle.
// Rays through the lens that converge on the focus plane map to the
// same pixel, so the mapping intersects the ray with the focus plane.
func (c *Camera) MapRayToPixel(ray core.Ray) (int, int, bool) {
	denom := ray.Direction.Dot(c.forward)
	if denom <= 1e-9 {
		return 0, 0, false // Parallel to or away from the image plane
	}

	tPlane := (c.config.FocusDistance - ray.Origin.Subtract(c.config.Center).Dot(c.forward)) / denom
	if tPlane <= 0 {
		return 0, 0, false
	}

	point := ray.At(tPlane)
	offset := point.Subtract(c.lowerLeftCorner)
	s := offset.Dot(c.right) / c.viewportWidth
	t := offset.Dot(c.up) / c.viewportHeight

	if s < 0 || s >= 1 || t < 0 || t >= 1 {
		return 0, 0, false
	}

	x := int(s * float64(c.config.Width))
	y := int((1 - t) * float64(c.imageHeight))
	if x >= c.config.Width {
		x = c.config.Width - 1
	}
	if y >= c.imageHeight {
		y = c.imageHeight - 1
	}
	return x, y, true
}

// EvaluateRayImportance returns the importance We carried by a ray leaving
// the lens: We = 1 / (A * lensArea * cos^4(theta)), zero outside the
// field of view
func (c *Camera) EvaluateRayImportance(ray core.Ray) core.Vec3 {
	cosTheta := ray.Direction.Normalize().Dot(c.forward)
	if cosTheta <= 0 {
		return core.Vec3{}
	}
	if _, _, ok := c.MapRayToPixel(ray); !ok {
		return core.Vec3{}
	}

	cos4 := cosTheta * cosTheta * cosTheta * cosTheta
	importance := 1.0 / (c.filmArea * c.lensArea() * cos4)
	return core.NewVec3(importance, importance, importance)
}

// SampleCameraFromPoint samples a point on the lens and returns a ray from
// the lens to the given scene point, with its importance and density.
// Returns nil if the point cannot be seen by the camera.
func (c *Camera) SampleCameraFromPoint(point core.Vec3, sample core.Vec2) *CameraSample {
	lensPoint := c.config.Center
	if c.lensRadius > 0 {
		rd := core.SamplePointInUnitDisk(sample).Multiply(c.lensRadius)
		lensPoint = lensPoint.Add(c.right.Multiply(rd.X)).Add(c.up.Multiply(rd.Y))
	}

	toPoint := point.Subtract(lensPoint)
	distance := toPoint.Length()
	if distance == 0 {
		return nil
	}
	direction := toPoint.Multiply(1 / distance)

	cosTheta := direction.Dot(c.forward)
	if cosTheta <= 0 {
		return nil // Point is behind the camera
	}

	ray := core.NewRay(lensPoint, direction)
	importance := c.EvaluateRayImportance(ray)
	if importance.IsZero() {
		return nil // Point is outside the field of view
	}

	// Density of the lens point converted to solid angle at the scene point
	pdf := (distance * distance) / (cosTheta * c.lensArea())

	return &CameraSample{
		Ray:    ray,
		Weight: importance,
		PDF:    pdf,
	}
}

// CalculateRayPDFs returns the area density of the ray origin on the lens
// and the directional density of the ray, used for path density bookkeeping.
// Both are zero for rays outside the field of view.
func (c *Camera) CalculateRayPDFs(ray core.Ray) (areaPDF, directionPDF float64) {
	cosTheta := ray.Direction.Normalize().Dot(c.forward)
	if cosTheta <= 0 {
		return 0, 0
	}
	if _, _, ok := c.MapRayToPixel(ray); !ok {
		return 0, 0
	}

	areaPDF = 1.0 / c.lensArea()
	directionPDF = 1.0 / (c.filmArea * cosTheta * cosTheta * cosTheta)
	return areaPDF, directionPDF
}

// lensArea returns the lens surface area, treating a pinhole as unit area
// so that pinhole importance stays finite
func (c *Camera) lensArea() float64 {
	if c.lensRadius <= 0 {
		return 1.0
	}
	return math.Pi * c.lensRadius * c.lensRadius
}
