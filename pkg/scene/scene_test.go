package scene

import (
	"math"
	"strings"
	"testing"

	"github.com/photometric/go-mmlt/pkg/core"
	"github.com/photometric/go-mmlt/pkg/geometry"
	"github.com/photometric/go-mmlt/pkg/material"
)

func testCamera() *geometry.Camera {
	return geometry.NewCamera(geometry.CameraConfig{
		Center:        core.NewVec3(0, 0, 0),
		LookAt:        core.NewVec3(0, 0, -1),
		Up:            core.NewVec3(0, 1, 0),
		Width:         100,
		AspectRatio:   1.0,
		VFov:          60.0,
		Aperture:      0.0,
		FocusDistance: 1.0,
	})
}

func TestNewSceneDerivesLightsFromEmissiveObjects(t *testing.T) {
	objects := []Object{
		{ID: 1, Shape: geometry.NewSphere(core.NewVec3(0, 0, -5), 1.0), Material: material.NewLambertian(core.NewVec3(0.7, 0.7, 0.7))},
		{ID: 2, Shape: geometry.NewSphere(core.NewVec3(0, 3, -5), 0.5), Material: material.NewEmissive(core.NewVec3(5, 5, 5))},
	}

	s, err := NewScene(testCamera(), SamplingConfig{}, objects)
	if err != nil {
		t.Fatalf("Unexpected scene construction error: %v", err)
	}

	if len(s.Lights) != 1 {
		t.Fatalf("Expected 1 derived light, got %d", len(s.Lights))
	}
	if s.LightSampler.GetLightCount() != 1 {
		t.Errorf("Expected light sampler over 1 light, got %d", s.LightSampler.GetLightCount())
	}

	light, index, found := s.LightForObject(2)
	if !found || light == nil || index != 0 {
		t.Errorf("Expected emissive object 2 mapped to light 0, got (%v, %d, %v)", light, index, found)
	}
	if _, _, found := s.LightForObject(1); found {
		t.Error("Expected no light mapping for the matte object")
	}
}

func TestNewSceneValidation(t *testing.T) {
	sphere := geometry.NewSphere(core.NewVec3(0, 0, -5), 1.0)
	matte := material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))

	tests := []struct {
		name    string
		camera  *geometry.Camera
		objects []Object
		errPart string
	}{
		{
			name:    "MissingCamera",
			camera:  nil,
			objects: []Object{{ID: 1, Shape: sphere, Material: matte}},
			errPart: "camera",
		},
		{
			name:   "DuplicateID",
			camera: testCamera(),
			objects: []Object{
				{ID: 7, Shape: sphere, Material: matte},
				{ID: 7, Shape: geometry.NewSphere(core.NewVec3(2, 0, -5), 1.0), Material: matte},
			},
			errPart: "duplicate object id 7",
		},
		{
			name:    "MissingShape",
			camera:  testCamera(),
			objects: []Object{{ID: 1, Material: matte}},
			errPart: "no shape",
		},
		{
			name:    "MissingMaterial",
			camera:  testCamera(),
			objects: []Object{{ID: 1, Shape: sphere}},
			errPart: "no material",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewScene(tt.camera, SamplingConfig{}, tt.objects)
			if err == nil {
				t.Fatal("Expected a construction error")
			}
			if !strings.Contains(err.Error(), tt.errPart) {
				t.Errorf("Expected error mentioning %q, got %q", tt.errPart, err.Error())
			}
		})
	}
}

func TestSceneIntersectReturnsNearestHit(t *testing.T) {
	near := material.NewLambertian(core.NewVec3(0.8, 0.2, 0.2))
	far := material.NewLambertian(core.NewVec3(0.2, 0.8, 0.2))
	objects := []Object{
		{ID: 10, Shape: geometry.NewSphere(core.NewVec3(0, 0, -10), 1.0), Material: far},
		{ID: 20, Shape: geometry.NewSphere(core.NewVec3(0, 0, -5), 1.0), Material: near},
	}

	s, err := NewScene(testCamera(), SamplingConfig{}, objects)
	if err != nil {
		t.Fatalf("Unexpected scene construction error: %v", err)
	}

	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))
	hit, isHit := s.Intersect(ray, 0.001, math.Inf(1))
	if !isHit {
		t.Fatal("Expected ray to hit the nearer sphere")
	}
	if math.Abs(hit.T-4.0) > 1e-9 {
		t.Errorf("Expected nearest hit at t=4, got %v", hit.T)
	}
	if hit.ObjectID != 20 {
		t.Errorf("Expected hit on object 20, got %d", hit.ObjectID)
	}
	if hit.Material != near {
		t.Error("Expected the nearer sphere's material on the hit record")
	}
}

func TestSceneIntersectSelfIntersectionGuard(t *testing.T) {
	const radius = 2.0
	direction := core.NewVec3(0, 0, -1)

	t.Run("NearSurfaceAtRadiusDistance", func(t *testing.T) {
		// Sphere whose nearest surface point lies exactly one radius ahead.
		objects := []Object{{
			ID:       1,
			Shape:    geometry.NewSphere(direction.Multiply(2 * radius), radius),
			Material: material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5)),
		}}
		s, _ := NewScene(testCamera(), SamplingConfig{}, objects)

		hit, isHit := s.Intersect(core.NewRay(core.NewVec3(0, 0, 0), direction), 0.001, math.Inf(1))
		if !isHit {
			t.Fatal("Expected a hit")
		}
		if math.Abs(hit.T-radius) > 1e-9 {
			t.Errorf("Expected hit distance %v, got %v", radius, hit.T)
		}
	})

	t.Run("OriginOnSurface", func(t *testing.T) {
		// Ray starting on the sphere surface must skip the t=0 root and
		// report the exit point on the far side.
		objects := []Object{{
			ID:       1,
			Shape:    geometry.NewSphere(direction.Multiply(radius), radius),
			Material: material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5)),
		}}
		s, _ := NewScene(testCamera(), SamplingConfig{}, objects)

		hit, isHit := s.Intersect(core.NewRay(core.NewVec3(0, 0, 0), direction), 0.001, math.Inf(1))
		if !isHit {
			t.Fatal("Expected a hit on the far side")
		}
		if math.Abs(hit.T-2*radius) > 1e-9 {
			t.Errorf("Expected far hit at %v, got %v", 2*radius, hit.T)
		}
	})
}

func TestSceneVisible(t *testing.T) {
	matte := material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))

	t.Run("Unoccluded", func(t *testing.T) {
		s, _ := NewScene(testCamera(), SamplingConfig{}, []Object{
			{ID: 1, Shape: geometry.NewSphere(core.NewVec3(0, -10, 0), 1.0), Material: matte},
		})
		if !s.Visible(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -5)) {
			t.Error("Expected clear segment to be visible")
		}
	})

	t.Run("Blocked", func(t *testing.T) {
		s, _ := NewScene(testCamera(), SamplingConfig{}, []Object{
			{ID: 1, Shape: geometry.NewSphere(core.NewVec3(0, 0, -2.5), 1.0), Material: matte},
		})
		if s.Visible(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -5)) {
			t.Error("Expected blocked segment to be invisible")
		}
	})

	t.Run("CoincidentPoints", func(t *testing.T) {
		s, _ := NewScene(testCamera(), SamplingConfig{}, nil)
		if s.Visible(core.NewVec3(1, 2, 3), core.NewVec3(1, 2, 3)) {
			t.Error("Expected coincident endpoints to be treated as occluded")
		}
	})

	t.Run("EndpointsOnSurfaces", func(t *testing.T) {
		// Connect a point on each sphere's surface; the epsilon keeps the
		// spheres themselves from occluding the segment.
		s, _ := NewScene(testCamera(), SamplingConfig{}, []Object{
			{ID: 1, Shape: geometry.NewSphere(core.NewVec3(0, 0, -6), 1.0), Material: matte},
			{ID: 2, Shape: geometry.NewSphere(core.NewVec3(0, 0, 6), 1.0), Material: matte},
		})
		if !s.Visible(core.NewVec3(0, 0, -5), core.NewVec3(0, 0, 5)) {
			t.Error("Expected surface-to-surface segment to be visible")
		}
	})
}
