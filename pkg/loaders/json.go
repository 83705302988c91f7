package loaders

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/photometric/go-mmlt/pkg/core"
	"github.com/photometric/go-mmlt/pkg/geometry"
	"github.com/photometric/go-mmlt/pkg/material"
	"github.com/photometric/go-mmlt/pkg/scene"
)

// JSON scene schema. Variant records (shapes, materials, textures) carry
// a "type" discriminator in snake_case; vectors are {x,y,z} objects and
// colors are {r,g,b} objects.

type vectorConfig struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type spectrumConfig struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
}

type cameraConfig struct {
	Center        vectorConfig `json:"center"`
	LookAt        vectorConfig `json:"look_at"`
	Up            vectorConfig `json:"up"`
	Width         int          `json:"width"`
	AspectRatio   float64      `json:"aspect_ratio"`
	VFov          float64      `json:"vfov"`
	Aperture      float64      `json:"aperture"`
	FocusDistance float64      `json:"focus_distance"`
}

type samplingConfig struct {
	MaxPathLength        int     `json:"max_path_length"`
	InitialSampleCount   int     `json:"initial_sample_count"`
	MutationsPerPixel    int     `json:"mutations_per_pixel"`
	LargeStepProbability float64 `json:"large_step_probability"`
	SampleClamp          float64 `json:"sample_clamp"`
}

type textureConfig struct {
	Type     string          `json:"type"`
	Spectrum *spectrumConfig `json:"spectrum,omitempty"` // constant
	Scale    float64         `json:"scale,omitempty"`    // checker
	Even     *spectrumConfig `json:"even,omitempty"`     // checker
	Odd      *spectrumConfig `json:"odd,omitempty"`      // checker
}

type materialConfig struct {
	Type            string          `json:"type"`
	Albedo          *spectrumConfig `json:"albedo,omitempty"`           // matte, mirror
	Texture         *textureConfig  `json:"texture,omitempty"`          // matte
	RefractionIndex float64         `json:"refraction_index,omitempty"` // dielectric
	Emission        *spectrumConfig `json:"emission,omitempty"`         // emissive
}

type shapeConfig struct {
	Type   string       `json:"type"`
	Center vectorConfig `json:"center"`
	Radius float64      `json:"radius"`
}

type objectConfig struct {
	ID       uint64         `json:"id"`
	Shape    shapeConfig    `json:"shape"`
	Material materialConfig `json:"material"`
}

type sceneConfig struct {
	Camera   cameraConfig    `json:"camera"`
	Sampling *samplingConfig `json:"sampling,omitempty"`
	Objects  []objectConfig  `json:"objects"`
}

// LoadSceneJSON reads and parses a JSON scene description file.
func LoadSceneJSON(filename string) (*scene.Scene, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene file: %w", err)
	}
	s, err := ParseSceneJSON(data)
	if err != nil {
		return nil, fmt.Errorf("scene file %s: %w", filename, err)
	}
	return s, nil
}

// ParseSceneJSON parses a JSON scene description into a validated scene.
// Unknown fields are rejected so schema typos fail loudly instead of
// silently dropping configuration.
func ParseSceneJSON(data []byte) (*scene.Scene, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()

	var config sceneConfig
	if err := decoder.Decode(&config); err != nil {
		return nil, fmt.Errorf("failed to parse scene JSON: %w", err)
	}

	camera, err := buildCamera(config.Camera)
	if err != nil {
		return nil, err
	}

	if len(config.Objects) == 0 {
		return nil, fmt.Errorf("scene has no objects")
	}
	objects := make([]scene.Object, 0, len(config.Objects))
	for _, objConfig := range config.Objects {
		obj, err := buildObject(objConfig)
		if err != nil {
			return nil, fmt.Errorf("object %d: %w", objConfig.ID, err)
		}
		objects = append(objects, obj)
	}

	return scene.NewScene(camera, buildSamplingConfig(config.Sampling), objects)
}

func buildCamera(config cameraConfig) (*geometry.Camera, error) {
	if config.Width <= 0 {
		return nil, fmt.Errorf("camera requires a positive width, got %d", config.Width)
	}
	if config.AspectRatio <= 0 {
		return nil, fmt.Errorf("camera requires a positive aspect_ratio, got %g", config.AspectRatio)
	}
	if config.VFov <= 0 || config.VFov >= 180 {
		return nil, fmt.Errorf("camera vfov must be in (0, 180) degrees, got %g", config.VFov)
	}

	up := vectorToVec3(config.Up)
	if up.IsZero() {
		up = core.NewVec3(0, 1, 0)
	}

	return geometry.NewCamera(geometry.CameraConfig{
		Center:        vectorToVec3(config.Center),
		LookAt:        vectorToVec3(config.LookAt),
		Up:            up,
		Width:         config.Width,
		AspectRatio:   config.AspectRatio,
		VFov:          config.VFov,
		Aperture:      config.Aperture,
		FocusDistance: config.FocusDistance,
	}), nil
}

// buildSamplingConfig fills unset fields with the same defaults the
// built-in scenes use. A missing sampling block gets all defaults.
func buildSamplingConfig(config *samplingConfig) scene.SamplingConfig {
	result := scene.SamplingConfig{
		MaxPathLength:        5,
		InitialSampleCount:   100000,
		MutationsPerPixel:    64,
		LargeStepProbability: 0.3,
	}
	if config == nil {
		return result
	}
	if config.MaxPathLength > 0 {
		result.MaxPathLength = config.MaxPathLength
	}
	if config.InitialSampleCount > 0 {
		result.InitialSampleCount = config.InitialSampleCount
	}
	if config.MutationsPerPixel > 0 {
		result.MutationsPerPixel = config.MutationsPerPixel
	}
	if config.LargeStepProbability > 0 {
		result.LargeStepProbability = config.LargeStepProbability
	}
	if config.SampleClamp > 0 {
		result.SampleClamp = config.SampleClamp
	}
	return result
}

func buildObject(config objectConfig) (scene.Object, error) {
	shape, err := buildShape(config.Shape)
	if err != nil {
		return scene.Object{}, err
	}
	mat, err := buildMaterial(config.Material)
	if err != nil {
		return scene.Object{}, err
	}
	return scene.Object{ID: config.ID, Shape: shape, Material: mat}, nil
}

func buildShape(config shapeConfig) (geometry.Shape, error) {
	switch config.Type {
	case "sphere":
		if config.Radius <= 0 {
			return nil, fmt.Errorf("sphere requires a positive radius, got %g", config.Radius)
		}
		return geometry.NewSphere(vectorToVec3(config.Center), config.Radius), nil
	default:
		return nil, fmt.Errorf("unknown shape type %q", config.Type)
	}
}

func buildMaterial(config materialConfig) (material.Material, error) {
	switch config.Type {
	case "matte":
		if config.Texture != nil {
			texture, err := buildTexture(*config.Texture)
			if err != nil {
				return nil, err
			}
			return material.NewTexturedLambertian(texture), nil
		}
		if config.Albedo == nil {
			return nil, fmt.Errorf("matte material requires an albedo or a texture")
		}
		return material.NewLambertian(spectrumToVec3(*config.Albedo)), nil
	case "mirror":
		if config.Albedo == nil {
			return nil, fmt.Errorf("mirror material requires an albedo")
		}
		return material.NewMirror(spectrumToVec3(*config.Albedo)), nil
	case "dielectric":
		if config.RefractionIndex <= 0 {
			return nil, fmt.Errorf("dielectric material requires a positive refraction_index")
		}
		return material.NewDielectric(config.RefractionIndex), nil
	case "emissive":
		if config.Emission == nil {
			return nil, fmt.Errorf("emissive material requires an emission")
		}
		return material.NewEmissive(spectrumToVec3(*config.Emission)), nil
	default:
		return nil, fmt.Errorf("unknown material type %q", config.Type)
	}
}

func buildTexture(config textureConfig) (material.ColorSource, error) {
	switch config.Type {
	case "constant":
		if config.Spectrum == nil {
			return nil, fmt.Errorf("constant texture requires a spectrum")
		}
		return material.NewSolidColor(spectrumToVec3(*config.Spectrum)), nil
	case "checker":
		if config.Scale <= 0 {
			return nil, fmt.Errorf("checker texture requires a positive scale")
		}
		if config.Even == nil || config.Odd == nil {
			return nil, fmt.Errorf("checker texture requires even and odd colors")
		}
		return material.NewChecker(config.Scale, spectrumToVec3(*config.Even), spectrumToVec3(*config.Odd)), nil
	default:
		return nil, fmt.Errorf("unknown texture type %q", config.Type)
	}
}

func vectorToVec3(v vectorConfig) core.Vec3 {
	return core.NewVec3(v.X, v.Y, v.Z)
}

func spectrumToVec3(s spectrumConfig) core.Vec3 {
	return core.NewVec3(s.R, s.G, s.B)
}
