package cmd

import (
	"errors"
	"fmt"

	"github.com/ktnlvr/wreckage-deprecated/scene"
	"github.com/ktnlvr/wreckage-deprecated/scene/reader"
	"github.com/ktnlvr/wreckage-deprecated/scene/writer"
	"github.com/ktnlvr/wreckage-deprecated/tracer"
	"github.com/urfave/cli"
)

// Display scene info.
func ShowSceneInfo(ctx *cli.Context) error {
	setupLogging(ctx)

	sc, cam, err := loadScene(ctx)
	if err != nil {
		return err
	}

	logger.Noticef("scene information (%s):\n%s", cam, sc.Stats(tracer.MaxSpheres))
	if err = checkRenderable(sc); err != nil {
		logger.Warning(err)
	}
	return nil
}

// Report whether the scene fits the kernel sphere buffer. Oversized scenes are
// rejected by the renderer rather than truncated.
func checkRenderable(sc *scene.Scene) error {
	if _, err := sc.EncodeFixed(tracer.MaxSpheres); err != nil {
		return fmt.Errorf("scene has %d spheres but at most %d are supported; it cannot be rendered: %w", sc.Len(), tracer.MaxSpheres, err)
	}
	return nil
}

// Convert a scene file to another format. The output format is selected by
// the file extension.
func ConvertScene(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() != 2 {
		return errors.New("expected a source and a destination scene file")
	}

	doc, err := reader.ReadDocument(ctx.Args().Get(0))
	if err != nil {
		return err
	}
	return writer.WriteScene(doc, ctx.Args().Get(1))
}
