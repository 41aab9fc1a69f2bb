package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
	"github.com/ktnlvr/wreckage-deprecated/gpu"
	"github.com/ktnlvr/wreckage-deprecated/gpu/software"
	"github.com/ktnlvr/wreckage-deprecated/renderer"
	"github.com/ktnlvr/wreckage-deprecated/scene"
	"github.com/urfave/cli"
	"golang.org/x/image/bmp"
)

type imageEncoder func(w io.Writer, img image.Image) error

var imageEncoders = map[string]imageEncoder{
	".png":  png.Encode,
	".webp": encodeWebP,
	".tga":  tga.Encode,
	".bmp":  bmp.Encode,
}

// Lossless WebP.
func encodeWebP(w io.Writer, img image.Image) error {
	return nativewebp.Encode(w, img, nil)
}

// Select an image encoder based on the file extension.
func encoderFor(filename string) (imageEncoder, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	enc, ok := imageEncoders[ext]
	if !ok {
		return nil, fmt.Errorf("unsupported image format %q (supported: .bmp, .png, .tga, .webp)", ext)
	}
	return enc, nil
}

// Keeps a copy of the last presented image.
type captureSink struct {
	frame *image.RGBA
}

func (s *captureSink) Present(img *image.RGBA) error {
	frame := image.NewRGBA(img.Rect)
	copy(frame.Pix, img.Pix)
	s.frame = frame
	return nil
}

// Render a single frame on the software device and save it to a file.
func RenderSnapshot(ctx *cli.Context) error {
	setupLogging(ctx)

	outFile := ctx.String("out")
	encode, err := encoderFor(outFile)
	if err != nil {
		return err
	}

	opts := rendererOptions(ctx)
	sc, cam, err := loadScene(ctx)
	if err != nil {
		return err
	}
	if ctx.IsSet("pos") {
		if cam.Position, err = parseVec3(ctx.String("pos")); err != nil {
			return err
		}
	}
	if ctx.IsSet("yaw") {
		cam.Yaw = degToRad(ctx.Float64("yaw"))
	}
	if ctx.IsSet("pitch") {
		cam.Pitch = degToRad(ctx.Float64("pitch"))
	}

	img, stats, err := snapshot(opts, sc, cam)
	if err != nil {
		return err
	}
	displayFrameStats(stats)

	f, err := os.Create(outFile)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err = encode(w, img); err != nil {
		return fmt.Errorf("could not encode %q: %w", outFile, err)
	}
	if err = w.Flush(); err != nil {
		return err
	}

	logger.Noticef("wrote %dx%d frame to %s", img.Rect.Dx(), img.Rect.Dy(), outFile)
	return nil
}

// Render one frame headless and return the presented image.
func snapshot(opts renderer.Options, sc *scene.Scene, cam *scene.Camera) (*image.RGBA, renderer.FrameStats, error) {
	dev := software.NewDevice()
	defer dev.Release()

	sink := &captureSink{}
	swapchain, err := software.NewSwapchain(dev, opts.FrameW, opts.FrameH, 1, gpu.FormatRGBA8Unorm, sink)
	if err != nil {
		return nil, renderer.FrameStats{}, err
	}
	defer swapchain.Release()

	r, err := renderer.New(dev, swapchain, sc, cam, opts)
	if err != nil {
		return nil, renderer.FrameStats{}, err
	}
	defer r.Close()

	if err = r.Draw(renderer.NewFrameState()); err != nil {
		return nil, renderer.FrameStats{}, err
	}
	if sink.frame == nil {
		return nil, r.Stats(), errors.New("the frame was dropped before it could be presented")
	}
	return sink.frame, r.Stats(), nil
}
