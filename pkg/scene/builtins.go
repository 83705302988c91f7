package scene

import (
	"fmt"
	"strings"

	"github.com/photometric/go-mmlt/pkg/geometry"
)

// SceneInfo describes a built-in scene for CLI listings
type SceneInfo struct {
	ID          string // Identifier passed to the render command
	Name        string // Human-readable name
	Description string // One-line description
}

// SceneBuilder constructs a built-in scene, optionally overriding parts
// of its camera configuration.
type SceneBuilder func(cameraOverrides ...geometry.CameraConfig) (*Scene, error)

// builtins is the registry of built-in scenes in listing order.
var builtins = []struct {
	Info  SceneInfo
	Build SceneBuilder
}{
	{
		Info: SceneInfo{
			ID:          "default",
			Name:        "Default Scene",
			Description: "Matte, mirror and glass spheres on a checkered ground",
		},
		Build: NewDefaultScene,
	},
	{
		Info: SceneInfo{
			ID:          "cornell",
			Name:        "Cornell Box",
			Description: "Sphere-walled Cornell box with mirror and glass spheres",
		},
		Build: NewCornellScene,
	},
	{
		Info: SceneInfo{
			ID:          "caustic",
			Name:        "Caustic Glass",
			Description: "Glass sphere focusing a small bright light onto the floor",
		},
		Build: NewCausticScene,
	},
}

// ListScenes returns the built-in scenes in a stable order.
func ListScenes() []SceneInfo {
	infos := make([]SceneInfo, len(builtins))
	for i, b := range builtins {
		infos[i] = b.Info
	}
	return infos
}

// BuildScene constructs the built-in scene with the given id.
func BuildScene(id string, cameraOverrides ...geometry.CameraConfig) (*Scene, error) {
	for _, b := range builtins {
		if b.Info.ID == id {
			return b.Build(cameraOverrides...)
		}
	}
	ids := make([]string, len(builtins))
	for i, b := range builtins {
		ids[i] = b.Info.ID
	}
	return nil, fmt.Errorf("unknown scene %q (available: %s)", id, strings.Join(ids, ", "))
}
