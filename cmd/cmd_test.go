package cmd

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/ktnlvr/wreckage-deprecated/gpu"
	"github.com/ktnlvr/wreckage-deprecated/renderer"
	"github.com/ktnlvr/wreckage-deprecated/scene"
	"github.com/ktnlvr/wreckage-deprecated/tracer"
	"github.com/ktnlvr/wreckage-deprecated/types"
)

func TestParseVec3(t *testing.T) {
	type spec struct {
		in     string
		exp    types.Vec3
		expErr bool
	}

	specs := []spec{
		{"1,2,3", types.XYZ(1, 2, 3), false},
		{" -0.5, 0 ,1.25", types.XYZ(-0.5, 0, 1.25), false},
		{"1,2", types.Vec3{}, true},
		{"1,2,z", types.Vec3{}, true},
	}

	for index, s := range specs {
		got, err := parseVec3(s.in)
		if s.expErr {
			if err == nil {
				t.Fatalf("[spec %d] expected an error", index)
			}
			continue
		}
		if err != nil {
			t.Fatalf("[spec %d] unexpected error: %v", index, err)
		}
		if got != s.exp {
			t.Fatalf("[spec %d] expected %v; got %v", index, s.exp, got)
		}
	}
}

func TestEncoderFor(t *testing.T) {
	for _, name := range []string{"frame.png", "frame.WEBP", "out/frame.tga", "frame.bmp"} {
		if _, err := encoderFor(name); err != nil {
			t.Fatalf("expected an encoder for %q; got %v", name, err)
		}
	}
	if _, err := encoderFor("frame.jpg"); err == nil {
		t.Fatal("expected an error for an unsupported extension")
	}

	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for ext := range imageEncoders {
		enc, _ := encoderFor("frame" + ext)
		var buf bytes.Buffer
		if err := enc(&buf, img); err != nil {
			t.Fatalf("could not encode %s: %v", ext, err)
		}
		if buf.Len() == 0 {
			t.Fatalf("expected %s encoder to produce output", ext)
		}
	}
}

func TestAdapterTable(t *testing.T) {
	adapters := []gpu.AdapterInfo{
		{Name: "AMD Radeon RX 6600", Type: "discrete GPU", APIVersion: "1.3.250", SuitableQueue: true},
	}
	out := adapterTable(adapters, gpu.AdapterInfo{Name: "software rasterizer", Type: "CPU", SuitableQueue: true})

	for _, exp := range []string{"AMD Radeon RX 6600", "discrete GPU", "1.3.250", "software rasterizer", "vulkan"} {
		if !strings.Contains(out, exp) {
			t.Fatalf("expected table to contain %q; got:\n%s", exp, out)
		}
	}
}

func TestSnapshot(t *testing.T) {
	opts := renderer.DefaultOptions()
	opts.FrameW, opts.FrameH = 16, 12
	opts.Variant = renderer.VariantPrimitive

	img, stats, err := snapshot(opts, scene.Default(), scene.NewCamera(types.Vec3{}))
	if err != nil {
		t.Fatal(err)
	}
	if img.Rect.Dx() != 16 || img.Rect.Dy() != 12 {
		t.Fatalf("expected a 16x12 frame; got %v", img.Rect)
	}
	if stats.Frames != 1 || stats.Dropped != 0 {
		t.Fatalf("expected a single presented frame; got %d frames (%d dropped)", stats.Frames, stats.Dropped)
	}

	exp := color.RGBA{225, 0, 152, 255}
	if got := img.RGBAAt(7, 5); got != exp {
		t.Fatalf("expected pixel color %v; got %v", exp, got)
	}

	var buf bytes.Buffer
	if err = png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	decoded, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if decoded.Bounds() != img.Rect {
		t.Fatalf("expected decoded bounds %v; got %v", img.Rect, decoded.Bounds())
	}
}

func TestCheckRenderable(t *testing.T) {
	type spec struct {
		count   int
		expFits bool
	}

	specs := []spec{
		{1, true},
		{tracer.MaxSpheres, true},
		{tracer.MaxSpheres + 1, false},
	}

	for index, s := range specs {
		spheres := make([]scene.Sphere, s.count)
		for i := range spheres {
			spheres[i] = scene.Sphere{Radius: 1}
		}
		sc, err := scene.New(spheres)
		if err != nil {
			t.Fatal(err)
		}

		err = checkRenderable(sc)
		if s.expFits {
			if err != nil {
				t.Fatalf("[spec %d] expected scene to fit; got %v", index, err)
			}
			continue
		}
		if !errors.Is(err, scene.ErrSceneTooLarge) {
			t.Fatalf("[spec %d] expected error %v; got %v", index, scene.ErrSceneTooLarge, err)
		}
		if !strings.Contains(err.Error(), "cannot be rendered") {
			t.Fatalf("[spec %d] expected the message to reject the whole scene; got %q", index, err.Error())
		}
	}
}
