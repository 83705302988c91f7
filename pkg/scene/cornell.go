package scene

import (
	"github.com/photometric/go-mmlt/pkg/core"
	"github.com/photometric/go-mmlt/pkg/geometry"
	"github.com/photometric/go-mmlt/pkg/material"
)

// NewCornellScene creates a Cornell box variant built entirely from
// spheres: the walls are huge spheres whose near surfaces approximate
// the box planes, with a mirror and a glass sphere inside under a
// pendant sphere light.
func NewCornellScene(cameraOverrides ...geometry.CameraConfig) (*Scene, error) {
	defaultCameraConfig := geometry.CameraConfig{
		Center:        core.NewVec3(278, 278, -800), // Outside the box looking in
		LookAt:        core.NewVec3(278, 278, 0),    // Center of the box
		Up:            core.NewVec3(0, 1, 0),
		Width:         512,
		AspectRatio:   1.0, // Square aspect ratio for the Cornell box
		VFov:          40.0,
		Aperture:      0.0,
		FocusDistance: 0.0,
	}

	cameraConfig := defaultCameraConfig
	if len(cameraOverrides) > 0 {
		cameraConfig = geometry.MergeCameraConfig(defaultCameraConfig, cameraOverrides[0])
	}
	camera := geometry.NewCamera(cameraConfig)

	samplingConfig := SamplingConfig{
		MaxPathLength:        5,
		InitialSampleCount:   100000,
		MutationsPerPixel:    64,
		LargeStepProbability: 0.3,
	}

	// Create materials
	white := material.NewLambertian(core.NewVec3(0.73, 0.73, 0.73))
	red := material.NewLambertian(core.NewVec3(0.65, 0.05, 0.05))
	green := material.NewLambertian(core.NewVec3(0.12, 0.45, 0.15))
	mirror := material.NewMirror(core.NewVec3(0.85, 0.85, 0.9))
	glass := material.NewDielectric(1.5)
	lamp := material.NewEmissive(core.NewVec3(15.0, 15.0, 15.0))

	// Box dimensions (standard 555 unit Cornell box). Each wall is a
	// sphere of radius wallRadius tangent to the wall plane; at this
	// radius the curvature across the box is negligible.
	const boxSize = 555.0
	const wallRadius = 50000.0
	center := boxSize / 2

	objects := []Object{
		{ID: 1, Shape: geometry.NewSphere(core.NewVec3(center, -wallRadius, center), wallRadius), Material: white},           // floor
		{ID: 2, Shape: geometry.NewSphere(core.NewVec3(center, boxSize+wallRadius, center), wallRadius), Material: white},    // ceiling
		{ID: 3, Shape: geometry.NewSphere(core.NewVec3(center, center, boxSize+wallRadius), wallRadius), Material: white},    // back wall
		{ID: 4, Shape: geometry.NewSphere(core.NewVec3(-wallRadius, center, center), wallRadius), Material: red},             // left wall
		{ID: 5, Shape: geometry.NewSphere(core.NewVec3(boxSize+wallRadius, center, center), wallRadius), Material: green},    // right wall
		{ID: 6, Shape: geometry.NewSphere(core.NewVec3(185, 82.5, 169), 82.5), Material: mirror},
		{ID: 7, Shape: geometry.NewSphere(core.NewVec3(370, 90, 351), 90.0), Material: glass},
		{ID: 8, Shape: geometry.NewSphere(core.NewVec3(center, 520, center), 32.0), Material: lamp},
	}

	return NewScene(camera, samplingConfig, objects)
}
