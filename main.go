package main

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/ktnlvr/wreckage-deprecated/cmd"
	"github.com/ktnlvr/wreckage-deprecated/renderer"
	"github.com/ktnlvr/wreckage-deprecated/scene"
	"github.com/urfave/cli"
)

func init() {
	// GLFW and the OpenGL context must stay on the main thread.
	runtime.LockOSThread()
}

// Flags shared by the render and snapshot commands.
func renderFlags() []cli.Flag {
	return []cli.Flag{
		cli.IntFlag{
			Name:  "width",
			Value: int(scene.DefaultWidth),
			Usage: "frame width",
		},
		cli.IntFlag{
			Name:  "height",
			Value: int(scene.DefaultHeight),
			Usage: "frame height",
		},
		cli.Float64Flag{
			Name:  "min-depth",
			Value: float64(scene.DefaultMinDepth),
			Usage: "ignore hits closer than this distance",
		},
		cli.Float64Flag{
			Name:  "max-depth",
			Value: float64(scene.DefaultMaxDepth),
			Usage: "ignore hits further than this distance",
		},
		cli.StringFlag{
			Name:  "variant",
			Value: string(renderer.VariantNaive),
			Usage: fmt.Sprintf("renderer variant (%s)", strings.Join(renderer.Variants(), ", ")),
		},
		cli.Float64Flag{
			Name:  "speed",
			Value: float64(scene.DefaultMoveSpeed),
			Usage: "camera movement speed in units per second",
		},
		cli.Float64Flag{
			Name:  "sensitivity",
			Value: float64(scene.DefaultLookSensitivity),
			Usage: "mouse look sensitivity",
		},
	}
}

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "wreckage"
	app.Usage = "real-time ray tracing of sphere scenes on the GPU"
	app.Version = "0.0.1"
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
			Usage: "render an interactive view of the scene",
			Description: `
Open a window and trace the scene every frame. Use WASD or the arrow keys
to move and the mouse to look around. Press ESC to exit.

The scene is read from a yaml or toml file (or an http(s) URL). If no scene
file is specified, a built-in demo scene is rendered.`,
			ArgsUsage: "[scene_file]",
			Flags: append(renderFlags(),
				cli.StringFlag{
					Name:  "device, d",
					Value: "vulkan",
					Usage: "rendering device (vulkan, software)",
				},
				cli.StringSliceFlag{
					Name:  "blacklist, b",
					Value: &cli.StringSlice{},
					Usage: "blacklist vulkan devices whose names contain this value",
				},
				cli.StringFlag{
					Name:  "force-primary",
					Value: "",
					Usage: "use the vulkan device whose name contains this value",
				},
			),
			Action: cmd.RenderInteractive,
		},
		{
			Name:  "snapshot",
			Usage: "render a single frame to an image file",
			Description: `
Render a single frame on the software device and save it to disk. The
image format (png, webp, tga or bmp) is selected by the output file extension.`,
			ArgsUsage: "[scene_file]",
			Flags: append(renderFlags(),
				cli.StringFlag{
					Name:  "out, o",
					Value: "frame.png",
					Usage: "image filename for the rendered frame",
				},
				cli.StringFlag{
					Name:  "pos",
					Usage: "camera position as x,y,z",
				},
				cli.Float64Flag{
					Name:  "yaw",
					Usage: "camera yaw in degrees",
				},
				cli.Float64Flag{
					Name:  "pitch",
					Usage: "camera pitch in degrees",
				},
			),
			Action: cmd.RenderSnapshot,
		},
		{
			Name:   "list-devices",
			Usage:  "list available rendering devices",
			Action: cmd.ListDevices,
		},
		{
			Name:  "scene",
			Usage: "inspect and convert scene files",
			Subcommands: []cli.Command{
				{
					Name:      "info",
					Usage:     "display the scene spheres and their bounds",
					ArgsUsage: "[scene_file]",
					Action:    cmd.ShowSceneInfo,
				},
				{
					Name:      "convert",
					Usage:     "convert a scene between the yaml and toml formats",
					ArgsUsage: "src_scene_file dst_scene_file",
					Action:    cmd.ConvertScene,
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
