package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"

	"github.com/photometric/go-mmlt/cmd"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "go-mmlt"
	app.Usage = "render scenes with multiplexed Metropolis light transport"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "render",
			Usage: "render a scene to an image file",
			Description: `
Render a built-in scene or a JSON scene file with the multiplexed
Metropolis light transport integrator. The render runs a bootstrap
phase to estimate the image brightness, then distributes Markov chain
mutations across all CPU cores and writes the accumulated film to a
PNG, TIFF or PFM image.`,
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "scene, s",
					Value: "default",
					Usage: "built-in scene id (see list-scenes)",
				},
				cli.StringFlag{
					Name:  "scene-file, f",
					Usage: "JSON scene file, takes precedence over --scene",
				},
				cli.StringFlag{
					Name:  "out, o",
					Usage: "output image filename (default output/<scene>/render_<timestamp>.<format>)",
				},
				cli.StringFlag{
					Name:  "format",
					Value: "png",
					Usage: "output image format: png, tiff or pfm",
				},
				cli.IntFlag{
					Name:  "width",
					Usage: "override image width in pixels",
				},
				cli.IntFlag{
					Name:  "height",
					Usage: "override image height in pixels (changes the aspect ratio)",
				},
				cli.IntFlag{
					Name:  "mutations-per-pixel, mpp",
					Usage: "override average chain mutations per pixel",
				},
				cli.IntFlag{
					Name:  "bootstrap",
					Usage: "override bootstrap sample count",
				},
				cli.IntFlag{
					Name:  "max-path-length",
					Usage: "override maximum path length in edges",
				},
				cli.IntFlag{
					Name:  "chains",
					Usage: "number of independent Markov chains",
				},
				cli.IntFlag{
					Name:  "workers",
					Usage: "worker goroutines (default: all CPU cores)",
				},
				cli.Int64Flag{
					Name:  "seed",
					Value: 42,
					Usage: "random seed for reproducible renders",
				},
				cli.Float64Flag{
					Name:  "clamp",
					Usage: "override sample luminance clamp, 0 disables",
				},
			},
			Action: cmd.RenderScene,
		},
		{
			Name:   "list-scenes",
			Usage:  "list the built-in scenes",
			Action: cmd.ListScenes,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
