package scene

import (
	"fmt"

	"github.com/photometric/go-mmlt/pkg/core"
	"github.com/photometric/go-mmlt/pkg/geometry"
	"github.com/photometric/go-mmlt/pkg/lights"
	"github.com/photometric/go-mmlt/pkg/material"
)

// ShadowEpsilon offsets occlusion rays from their endpoints to avoid
// self-intersection at the surfaces being connected.
const ShadowEpsilon = 0.001

// Object is a shape paired with a material under a scene-unique id.
type Object struct {
	ID       uint64
	Shape    geometry.Shape
	Material material.Material
}

// SamplingConfig contains rendering configuration
type SamplingConfig struct {
	MaxPathLength        int     // Longest transport path in edges
	InitialSampleCount   int     // Independent samples for the normalization estimate
	MutationsPerPixel    int     // Average chain mutations per image pixel
	LargeStepProbability float64 // Fraction of mutations that redraw the full sample vector
	SampleClamp          float64 // Upper bound on splatted luminance, 0 disables clamping
}

// Scene contains all the elements needed for rendering. Objects with
// an emissive material double as area lights; the light list and the
// light sampler are derived at construction time.
type Scene struct {
	Camera         *geometry.Camera
	Objects        []Object
	Lights         []lights.Light
	LightSampler   lights.LightSampler
	SamplingConfig SamplingConfig

	lightIndexByObject map[uint64]int
}

// NewScene validates the object list and derives the scene's lights
// from emissive materials. Duplicate object ids are rejected rather
// than letting one object silently shadow another.
func NewScene(camera *geometry.Camera, config SamplingConfig, objects []Object) (*Scene, error) {
	if camera == nil {
		return nil, fmt.Errorf("scene requires a camera")
	}

	seen := make(map[uint64]bool, len(objects))
	lightIndexByObject := make(map[uint64]int)
	var sceneLights []lights.Light

	for _, obj := range objects {
		if obj.Shape == nil {
			return nil, fmt.Errorf("object %d has no shape", obj.ID)
		}
		if obj.Material == nil {
			return nil, fmt.Errorf("object %d has no material", obj.ID)
		}
		if seen[obj.ID] {
			return nil, fmt.Errorf("duplicate object id %d", obj.ID)
		}
		seen[obj.ID] = true

		if _, isEmitter := obj.Material.(material.Emitter); isEmitter {
			sphere, isSphere := obj.Shape.(*geometry.Sphere)
			if !isSphere {
				return nil, fmt.Errorf("emissive object %d requires a sphere shape", obj.ID)
			}
			lightIndexByObject[obj.ID] = len(sceneLights)
			sceneLights = append(sceneLights, lights.NewSphereLight(sphere, obj.Material))
		}
	}

	return &Scene{
		Camera:             camera,
		Objects:            objects,
		Lights:             sceneLights,
		LightSampler:       lights.NewPowerLightSampler(sceneLights),
		SamplingConfig:     config,
		lightIndexByObject: lightIndexByObject,
	}, nil
}

// Intersect finds the nearest object hit along the ray within [tMin, tMax].
func (s *Scene) Intersect(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool) {
	var closest *material.HitRecord
	closestSoFar := tMax

	for i := range s.Objects {
		if hit, isHit := s.Objects[i].Shape.Hit(ray, tMin, closestSoFar); isHit {
			closest = hit
			closest.Material = s.Objects[i].Material
			closest.ObjectID = s.Objects[i].ID
			closestSoFar = hit.T
		}
	}

	return closest, closest != nil
}

// Visible reports whether the straight segment between two points is
// unoccluded. Both endpoints are pulled in by the shadow epsilon so the
// surfaces being connected do not occlude themselves.
func (s *Scene) Visible(from, to core.Vec3) bool {
	direction := to.Subtract(from)
	distance := direction.Length()
	if distance < ShadowEpsilon {
		return false
	}

	shadowRay := core.NewRay(from, direction.Multiply(1/distance))
	_, occluded := s.Intersect(shadowRay, ShadowEpsilon, distance-ShadowEpsilon)
	return !occluded
}

// LightForObject returns the light backing an emissive object, along
// with its index in the scene's light list.
func (s *Scene) LightForObject(objectID uint64) (lights.Light, int, bool) {
	index, found := s.lightIndexByObject[objectID]
	if !found {
		return nil, 0, false
	}
	return s.Lights[index], index, true
}
