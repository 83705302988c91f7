package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"

	"github.com/photometric/go-mmlt/pkg/geometry"
	"github.com/photometric/go-mmlt/pkg/loaders"
	"github.com/photometric/go-mmlt/pkg/renderer"
	"github.com/photometric/go-mmlt/pkg/scene"
)

// rendererLog adapts the leveled CLI logger to the renderer's Printf
// interface. Renderer messages keep their own line breaks, the logging
// backend adds one per record.
type rendererLog struct{}

func (rendererLog) Printf(format string, args ...interface{}) {
	logger.Noticef("%s", strings.TrimSuffix(fmt.Sprintf(format, args...), "\n"))
}

// RenderScene renders a built-in or JSON scene with the Metropolis
// integrator and writes the result to an image file.
func RenderScene(ctx *cli.Context) error {
	setupLogging(ctx)

	format := ctx.String("format")
	switch format {
	case "png", "tiff", "pfm":
	default:
		return fmt.Errorf("unknown image format %q (available: png, tiff, pfm)", format)
	}

	sc, name, err := loadScene(ctx)
	if err != nil {
		return err
	}
	applyOverrides(ctx, sc)

	config := renderer.DefaultConfig()
	config.Seed = ctx.Int64("seed")
	if chains := ctx.Int("chains"); chains > 0 {
		config.Chains = chains
	}
	if workers := ctx.Int("workers"); workers > 0 {
		config.Workers = workers
	}

	outFile, err := outputFilename(ctx, name, format)
	if err != nil {
		return err
	}

	// Ctrl-C aborts between mutations instead of killing the process.
	renderCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	width, height := sc.Camera.GetImageDimensions()
	logger.Noticef("rendering %s at %dx%d (%d mutations/pixel, %d chains)",
		name, width, height, sc.SamplingConfig.MutationsPerPixel, config.Chains)

	r := renderer.NewMMLTRenderer(sc, config, rendererLog{})
	film, stats, err := r.Render(renderCtx)
	if err != nil {
		return err
	}

	if err := loaders.SaveFilm(film, outFile, format); err != nil {
		return err
	}
	logger.Noticef("wrote %s", outFile)

	displayRenderStats(stats)
	return nil
}

// loadScene builds the scene named by --scene, or parses the file named
// by --scene-file when given.
func loadScene(ctx *cli.Context) (*scene.Scene, string, error) {
	if file := ctx.String("scene-file"); file != "" {
		sc, err := loaders.LoadSceneJSON(file)
		if err != nil {
			return nil, "", err
		}
		name := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
		return sc, name, nil
	}

	name := ctx.String("scene")
	sc, err := scene.BuildScene(name)
	if err != nil {
		return nil, "", err
	}
	return sc, name, nil
}

// applyOverrides folds the optional render parameter flags into the
// loaded scene.
func applyOverrides(ctx *cli.Context, sc *scene.Scene) {
	width := ctx.Int("width")
	height := ctx.Int("height")
	if width > 0 || height > 0 {
		config := sc.Camera.Config()
		if width > 0 {
			config.Width = width
		}
		if height > 0 {
			config.AspectRatio = float64(config.Width) / float64(height)
		}
		sc.Camera = geometry.NewCamera(config)
	}

	if v := ctx.Int("max-path-length"); v > 0 {
		sc.SamplingConfig.MaxPathLength = v
	}
	if v := ctx.Int("bootstrap"); v > 0 {
		sc.SamplingConfig.InitialSampleCount = v
	}
	if v := ctx.Int("mutations-per-pixel"); v > 0 {
		sc.SamplingConfig.MutationsPerPixel = v
	}
	if v := ctx.Float64("clamp"); v > 0 {
		sc.SamplingConfig.SampleClamp = v
	}
}

// outputFilename resolves --out, defaulting to a timestamped file under
// output/<scene>/, and creates the parent directory.
func outputFilename(ctx *cli.Context, sceneName, format string) (string, error) {
	out := ctx.String("out")
	if out == "" {
		timestamp := time.Now().Format("20060102_150405")
		out = filepath.Join("output", sceneName, fmt.Sprintf("render_%s.%s", timestamp, format))
	}
	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	return out, nil
}

// displayRenderStats prints the render statistics table.
func displayRenderStats(stats renderer.RenderStats) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Metric", "Value"})
	table.Append([]string{"Bootstrap samples", fmt.Sprintf("%d", stats.BootstrapSamples)})
	table.Append([]string{"Normalization (b)", fmt.Sprintf("%.6f", stats.Normalization)})
	table.Append([]string{"Chains", fmt.Sprintf("%d", stats.Chains)})
	table.Append([]string{"Workers", fmt.Sprintf("%d", stats.Workers)})
	table.Append([]string{"Mutations", fmt.Sprintf("%d", stats.TotalMutations)})
	table.Append([]string{"Acceptance rate", fmt.Sprintf("%.1f %%", stats.AcceptanceRate()*100)})
	table.Append([]string{"Large steps", fmt.Sprintf("%d", stats.LargeSteps)})
	table.Append([]string{"Small steps", fmt.Sprintf("%d", stats.SmallSteps)})
	table.Append([]string{"Non-finite samples", fmt.Sprintf("%d", stats.NonFiniteSamples)})
	table.Append([]string{"Bootstrap time", stats.BootstrapTime.Round(time.Millisecond).String()})
	table.Append([]string{"Mutation time", stats.MutationTime.Round(time.Millisecond).String()})
	table.Render()

	logger.Noticef("render statistics\n%s", buf.String())
}
