package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/chewxy/math32"
	"github.com/ktnlvr/wreckage-deprecated/renderer"
	"github.com/ktnlvr/wreckage-deprecated/scene"
	"github.com/ktnlvr/wreckage-deprecated/scene/reader"
	"github.com/ktnlvr/wreckage-deprecated/types"
	"github.com/urfave/cli"
)

// Build renderer options from the command flags.
func rendererOptions(ctx *cli.Context) renderer.Options {
	opts := renderer.DefaultOptions()
	opts.FrameW = uint32(ctx.Int("width"))
	opts.FrameH = uint32(ctx.Int("height"))
	opts.MinDepth = float32(ctx.Float64("min-depth"))
	opts.MaxDepth = float32(ctx.Float64("max-depth"))
	opts.Variant = renderer.Variant(ctx.String("variant"))
	opts.MoveSpeed = float32(ctx.Float64("speed"))
	opts.LookSensitivity = float32(ctx.Float64("sensitivity"))
	opts.BlackListedDevices = ctx.StringSlice("blacklist")
	opts.ForcePrimaryDevice = ctx.String("force-primary")
	return opts
}

// Load the scene named by the first argument or fall back to the demo scene.
func loadScene(ctx *cli.Context) (*scene.Scene, *scene.Camera, error) {
	if ctx.NArg() == 0 {
		logger.Info("no scene file specified; using the default scene")
		return scene.Default(), scene.NewCamera(types.Vec3{}), nil
	}
	if ctx.NArg() > 1 {
		return nil, nil, fmt.Errorf("expected a single scene file argument; got %d", ctx.NArg())
	}
	return reader.ReadScene(ctx.Args().First())
}

// Parse a comma separated "x,y,z" triplet.
func parseVec3(value string) (types.Vec3, error) {
	var v types.Vec3
	tokens := strings.Split(value, ",")
	if len(tokens) != 3 {
		return v, fmt.Errorf("invalid vector %q: expected 3 comma separated components", value)
	}
	for index, token := range tokens {
		f, err := strconv.ParseFloat(strings.TrimSpace(token), 32)
		if err != nil {
			return v, fmt.Errorf("invalid vector %q: %v", value, err)
		}
		v[index] = float32(f)
	}
	return v, nil
}

func degToRad(deg float64) float32 {
	return float32(deg) * math32.Pi / 180
}
