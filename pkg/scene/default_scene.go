package scene

import (
	"github.com/photometric/go-mmlt/pkg/core"
	"github.com/photometric/go-mmlt/pkg/geometry"
	"github.com/photometric/go-mmlt/pkg/material"
)

// NewDefaultScene creates the default three-sphere scene: matte, mirror
// and glass spheres on a checkered ground under a warm area light.
func NewDefaultScene(cameraOverrides ...geometry.CameraConfig) (*Scene, error) {
	defaultCameraConfig := geometry.CameraConfig{
		Center:        core.NewVec3(0, 1.1, 2.6),  // Slightly above the spheres, pulled back
		LookAt:        core.NewVec3(0, 0.55, -1),  // Look at the center sphere
		Up:            core.NewVec3(0, 1, 0),      // Standard up direction
		Width:         512,
		AspectRatio:   16.0 / 9.0,
		VFov:          40.0,
		Aperture:      0.0, // Pinhole
		FocusDistance: 0.0, // Auto-calculate focus distance
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
	lambertianBlue := material.NewLambertian(core.NewVec3(0.1, 0.2, 0.5))
	mirrorSilver := material.NewMirror(core.NewVec3(0.9, 0.9, 0.9))
	glass := material.NewDielectric(1.5)
	checkerGround := material.NewTexturedLambertian(
		material.NewChecker(0.8, core.NewVec3(0.75, 0.75, 0.75), core.NewVec3(0.25, 0.3, 0.35)))
	warmLight := material.NewEmissive(core.NewVec3(14.0, 13.0, 11.0))

	objects := []Object{
		// Ground: a huge sphere whose top surface is the y=0 plane
		{ID: 1, Shape: geometry.NewSphere(core.NewVec3(0, -1000, -1), 1000.0), Material: checkerGround},
		{ID: 2, Shape: geometry.NewSphere(core.NewVec3(0, 0.55, -1), 0.55), Material: lambertianBlue},
		{ID: 3, Shape: geometry.NewSphere(core.NewVec3(-1.2, 0.55, -1), 0.55), Material: mirrorSilver},
		{ID: 4, Shape: geometry.NewSphere(core.NewVec3(1.2, 0.55, -1), 0.55), Material: glass},
		{ID: 5, Shape: geometry.NewSphere(core.NewVec3(2.5, 4.5, 1.5), 1.0), Material: warmLight},
	}

	return NewScene(camera, samplingConfig, objects)
}
