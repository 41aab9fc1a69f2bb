package tracer

import (
	"fmt"
	"image/color"

	"github.com/chewxy/math32"
	"github.com/ktnlvr/wreckage-deprecated/gpu"
	"github.com/ktnlvr/wreckage-deprecated/scene"
	"github.com/ktnlvr/wreckage-deprecated/types"
)

// Go implementation of shaders/naive.wgsl.
type naiveKernel struct{}

func (naiveKernel) Prepare(res gpu.HostResources) (func(id [3]uint32), error) {
	raw, err := res.Uniform(BindingConstants)
	if err != nil {
		return nil, err
	}
	consts, err := scene.DecodeFrameConstants(raw)
	if err != nil {
		return nil, fmt.Errorf("frame constants: %w", err)
	}

	raw, err = res.Uniform(BindingScene)
	if err != nil {
		return nil, err
	}
	spheres, err := decodeSpheres(raw)
	if err != nil {
		return nil, err
	}

	cam, err := scene.ParseRawCamera(res.PushConstants())
	if err != nil {
		return nil, fmt.Errorf("push constants: %w", err)
	}

	out, err := res.StorageImage(BindingOutput)
	if err != nil {
		return nil, err
	}
	bounds := out.Bounds()

	return func(id [3]uint32) {
		if id[0] >= consts.Width || id[1] >= consts.Height {
			return
		}
		if int(id[0]) >= bounds.Dx() || int(id[1]) >= bounds.Dy() {
			return
		}

		ray := GenerateRay(consts.AspectRatio, cam, PixelUV(id[0], id[1], consts.Width, consts.Height))
		out.SetRGBA(bounds.Min.X+int(id[0]), bounds.Min.Y+int(id[1]), ToRGBA8(Trace(ray, spheres, consts.MinDepth, consts.MaxDepth)))
	}, nil
}

// Decode a scene uniform array up to the first terminator.
func decodeSpheres(buf []byte) ([]scene.Sphere, error) {
	count := len(buf) / scene.SphereStride
	if count > MaxSpheres {
		count = MaxSpheres
	}

	spheres := make([]scene.Sphere, 0, count)
	for i := 0; i < count; i++ {
		sphere, err := scene.DecodeSphere(buf[i*scene.SphereStride:])
		if err != nil {
			return nil, err
		}
		if sphere.Radius < 0 {
			break
		}
		spheres = append(spheres, sphere)
	}
	return spheres, nil
}

// Go implementation of shaders/clear.wgsl.
type clearKernel struct {
	color color.RGBA
}

func (k clearKernel) Prepare(res gpu.HostResources) (func(id [3]uint32), error) {
	out, err := res.StorageImage(BindingOutput)
	if err != nil {
		return nil, err
	}
	bounds := out.Bounds()

	return func(id [3]uint32) {
		if int(id[0]) >= bounds.Dx() || int(id[1]) >= bounds.Dy() {
			return
		}
		out.SetRGBA(bounds.Min.X+int(id[0]), bounds.Min.Y+int(id[1]), k.color)
	}, nil
}

// Convert a color to the rgba8unorm texel written by the kernels. Channels are
// clamped to [0, 1] and rounded to the nearest representable value.
func ToRGBA8(c types.Vec4) color.RGBA {
	return color.RGBA{R: unorm8(c[0]), G: unorm8(c[1]), B: unorm8(c[2]), A: unorm8(c[3])}
}

func unorm8(v float32) uint8 {
	v = math32.Max(0, math32.Min(1, v))
	return uint8(math32.Floor(v*255 + 0.5))
}
