package tracer

import (
	_ "embed"
	"strconv"
	"strings"
	"text/template"

	"github.com/ktnlvr/wreckage-deprecated/gpu"
	"github.com/ktnlvr/wreckage-deprecated/types"
)

// The color written by the primitive renderer.
var PrimitiveClearColor = types.XYZW(225.0/255.0, 0, 152.0/255.0, 1)

//go:embed shaders/clear.wgsl
var clearTemplateSource string

var clearTemplate = template.Must(template.New("clear").Parse(clearTemplateSource))

// Create a kernel that fills the output image with a constant color.
func ClearKernel(c types.Vec4) gpu.Kernel {
	return gpu.Kernel{
		Name:          "clear",
		Source:        clearSource(c),
		EntryPoint:    EntryPoint,
		WorkgroupSize: WorkgroupSize,
		Host:          clearKernel{color: ToRGBA8(c)},
	}
}

func clearSource(c types.Vec4) string {
	literal := func(v float32) string {
		s := strconv.FormatFloat(float64(v), 'f', -1, 32)
		if !strings.ContainsAny(s, ".e") {
			s += ".0"
		}
		return s
	}

	var sb strings.Builder
	_ = clearTemplate.Execute(&sb, struct{ R, G, B, A string }{
		literal(c[0]), literal(c[1]), literal(c[2]), literal(c[3]),
	})
	return sb.String()
}
