// Package tracer contains the compute kernels executed once per output
// pixel. Each kernel ships as WGSL for GPU devices and as an equivalent Go
// program for the software device.
package tracer

import (
	_ "embed"

	"github.com/ktnlvr/wreckage-deprecated/gpu"
)

// The capacity of the scene uniform array declared by the ray tracing kernel.
const MaxSpheres = 256

// Descriptor bindings shared by all kernels.
const (
	BindingOutput    uint32 = 0
	BindingConstants uint32 = 1
	BindingScene     uint32 = 2
)

// The entry point of every kernel.
const EntryPoint = "main"

// Invocations per workgroup.
var WorkgroupSize = [3]uint32{8, 8, 1}

//go:embed shaders/naive.wgsl
var naiveSource string

// Create the ray tracing kernel.
func NaiveKernel() gpu.Kernel {
	return gpu.Kernel{
		Name:          "naive",
		Source:        naiveSource,
		EntryPoint:    EntryPoint,
		WorkgroupSize: WorkgroupSize,
		Host:          naiveKernel{},
	}
}
