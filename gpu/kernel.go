package gpu

import (
	"fmt"
	"image"
)

// A compute program. Devices that compile shaders use Source (WGSL) while
// CPU devices run Host.
type Kernel struct {
	Name       string
	Source     string
	EntryPoint string

	// Invocations per workgroup; must match the @workgroup_size declared in Source.
	WorkgroupSize [3]uint32

	Host HostKernel
}

// The CPU implementation of a compute kernel.
type HostKernel interface {
	// Prepare is invoked once per dispatch with the resources bound at
	// dispatch time. It returns the function executed for every invocation
	// in the dispatch grid. The returned function may be called concurrently
	// for distinct invocation ids.
	Prepare(res HostResources) (func(id [3]uint32), error)
}

// Resources visible to a host kernel invocation.
type HostResources interface {
	// Contents of the uniform buffer bound at the given binding.
	Uniform(binding uint32) ([]byte, error)

	// Pixels of the storage image bound at the given binding.
	StorageImage(binding uint32) (*image.RGBA, error)

	// The push-constant bytes recorded before the dispatch.
	PushConstants() []byte
}

// Validate kernel parameters.
func (k Kernel) Validate() error {
	for _, dim := range k.WorkgroupSize {
		if dim == 0 {
			return fmt.Errorf("gpu: kernel %q has an empty workgroup size %v", k.Name, k.WorkgroupSize)
		}
	}
	if k.EntryPoint == "" {
		return fmt.Errorf("gpu: kernel %q does not define an entry point", k.Name)
	}
	return nil
}

// Get the number of workgroups needed to cover an area of the given size.
func (k Kernel) GroupCount(width, height uint32) (x, y, z uint32) {
	return divUp(width, k.WorkgroupSize[0]), divUp(height, k.WorkgroupSize[1]), 1
}

func divUp(n, d uint32) uint32 {
	return (n + d - 1) / d
}
