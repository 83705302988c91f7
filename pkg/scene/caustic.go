package scene

import (
	"github.com/photometric/go-mmlt/pkg/core"
	"github.com/photometric/go-mmlt/pkg/geometry"
	"github.com/photometric/go-mmlt/pkg/material"
)

// NewCausticScene creates the caustic showcase: a glass sphere resting
// on a checkered floor, lit by a small bright light off to the side.
// The focused light under the sphere is the kind of transport Metropolis
// sampling handles far better than independent sampling.
func NewCausticScene(cameraOverrides ...geometry.CameraConfig) (*Scene, error) {
	defaultCameraConfig := geometry.CameraConfig{
		Center:        core.NewVec3(0, 1.7, 4.5),
		LookAt:        core.NewVec3(0, 0.8, 0),
		Up:            core.NewVec3(0, 1, 0),
		Width:         512,
		AspectRatio:   16.0 / 9.0,
		VFov:          35.0,
		Aperture:      0.0,
		FocusDistance: 0.0,
	}

	cameraConfig := defaultCameraConfig
	if len(cameraOverrides) > 0 {
		cameraConfig = geometry.MergeCameraConfig(defaultCameraConfig, cameraOverrides[0])
	}
	camera := geometry.NewCamera(cameraConfig)

	// Caustic paths route light through two refractions before the
	// floor, so this scene needs more depth than the others.
	samplingConfig := SamplingConfig{
		MaxPathLength:        10,
		InitialSampleCount:   100000,
		MutationsPerPixel:    128,
		LargeStepProbability: 0.3,
	}

	// Create materials
	glass := material.NewDielectric(1.5)
	checkerFloor := material.NewTexturedLambertian(
		material.NewChecker(0.6, core.NewVec3(0.8, 0.8, 0.8), core.NewVec3(0.15, 0.15, 0.2)))
	backdrop := material.NewLambertian(core.NewVec3(0.6, 0.2, 0.15))
	brightLight := material.NewEmissive(core.NewVec3(60.0, 55.0, 48.0))

	objects := []Object{
		// Floor: huge sphere with its top surface at y=0
		{ID: 1, Shape: geometry.NewSphere(core.NewVec3(0, -1000, 0), 1000.0), Material: checkerFloor},
		{ID: 2, Shape: geometry.NewSphere(core.NewVec3(0, 1.0, 0), 1.0), Material: glass},
		{ID: 3, Shape: geometry.NewSphere(core.NewVec3(-2.2, 0.7, -2.0), 0.7), Material: backdrop},
		{ID: 4, Shape: geometry.NewSphere(core.NewVec3(-2.5, 5.0, 2.0), 0.35), Material: brightLight},
	}

	return NewScene(camera, samplingConfig, objects)
}
