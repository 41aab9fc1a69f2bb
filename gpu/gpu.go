// Package gpu defines the device abstraction the renderer records and submits
// work through. Backends live in sub-packages: vulkan drives a real GPU while
// software executes kernels on the CPU.
package gpu

import (
	"fmt"
	"time"
)

// Wait forever.
const NoTimeout time.Duration = -1

// Texel format of an image.
type Format uint8

// Supported formats.
const (
	FormatUndefined Format = iota
	FormatRGBA8Unorm
	FormatBGRA8Unorm
	FormatRGBA8SRGB
	FormatBGRA8SRGB
)

func (f Format) String() string {
	switch f {
	case FormatRGBA8Unorm:
		return "RGBA8_UNORM"
	case FormatBGRA8Unorm:
		return "BGRA8_UNORM"
	case FormatRGBA8SRGB:
		return "RGBA8_SRGB"
	case FormatBGRA8SRGB:
		return "BGRA8_SRGB"
	}
	return "UNDEFINED"
}

// How an image is going to be used.
type ImageUsage uint32

// Image usage flags.
const (
	ImageUsageStorage ImageUsage = 1 << iota
	ImageUsageTransferSrc
	ImageUsageTransferDst
)

// How a buffer is going to be used.
type BufferUsage uint32

// Buffer usage flags.
const (
	BufferUsageUniform BufferUsage = 1 << iota
	BufferUsageStorage
)

// A set of programmable pipeline stages.
type ShaderStage uint32

// Shader stage flags.
const (
	ShaderStageCompute ShaderStage = 1 << iota
)

// The type of resource referenced by a descriptor binding.
type DescriptorType uint8

// Supported descriptor types.
const (
	DescriptorStorageImage DescriptorType = iota
	DescriptorUniformBuffer
)

func (t DescriptorType) String() string {
	switch t {
	case DescriptorStorageImage:
		return "storage-image"
	case DescriptorUniformBuffer:
		return "uniform-buffer"
	}
	return fmt.Sprintf("descriptor(%d)", uint8(t))
}

// Describes a single slot in a descriptor set layout.
type Binding struct {
	Binding uint32
	Type    DescriptorType
	Stages  ShaderStage
}

// A range of push-constant bytes visible to a set of shader stages.
type PushConstantRange struct {
	Stages ShaderStage
	Offset uint32
	Size   uint32
}

// Check whether an update of size bytes at offset, visible to stages, lies
// entirely within one of the ranges.
func CoversPushConstants(ranges []PushConstantRange, stages ShaderStage, offset, size uint32) bool {
	for _, r := range ranges {
		if r.Stages&stages == stages && offset >= r.Offset && offset+size <= r.Offset+r.Size {
			return true
		}
	}
	return false
}

// Image creation parameters.
type ImageDesc struct {
	Width  uint32
	Height uint32
	Format Format
	Usage  ImageUsage
}

// Buffer creation parameters.
type BufferDesc struct {
	Size  int
	Usage BufferUsage
}

// Associates a resource with a descriptor set binding. Exactly one of Image
// or Buffer must be set.
type DescriptorWrite struct {
	Binding uint32
	Image   Image
	Buffer  Buffer
}

// Describes a physical device.
type AdapterInfo struct {
	Name       string
	Type       string
	APIVersion string

	// True if the adapter exposes a queue family supporting
	// graphics, compute and transfer operations.
	SuitableQueue bool
}

// Work submitted to a queue.
type SubmitInfo struct {
	Commands CommandBuffer

	// Execution waits for this semaphore (if set) to be signaled.
	Wait Semaphore

	// Signaled once the commands finish executing.
	Signal Semaphore
}

// Anything owning device memory or handles.
type Resource interface {
	Release()
}

type Image interface {
	Resource
	Width() uint32
	Height() uint32
	Format() Format
}

type Buffer interface {
	Resource
	Size() int

	// Copy data into the buffer at the given byte offset.
	Write(offset int, data []byte) error
}

type DescriptorSetLayout interface {
	Resource
	Bindings() []Binding
}

type PipelineLayout interface {
	Resource
	SetLayout() DescriptorSetLayout
	PushConstantRanges() []PushConstantRange
}

type Pipeline interface {
	Resource
	Layout() PipelineLayout
	WorkgroupSize() [3]uint32
}

type DescriptorSet interface {
	Resource
	Layout() DescriptorSetLayout
}

// A command buffer records work for later submission. Recording methods
// report misuse when End is called.
type CommandBuffer interface {
	Resource

	// Reset the buffer and start recording.
	Begin() error

	BindPipeline(pipeline Pipeline)
	BindDescriptorSet(layout PipelineLayout, set DescriptorSet)
	PushConstants(layout PipelineLayout, stages ShaderStage, offset uint32, data []byte)
	Dispatch(groupsX, groupsY, groupsZ uint32)

	// Copy src into dst, scaling to the destination size with nearest filtering.
	BlitImage(src, dst Image)

	// Stop recording.
	End() error
}

type Semaphore interface {
	Resource
}

type Fence interface {
	Resource

	// Block until the fence is signaled or the timeout expires. A negative
	// timeout waits forever. A fence whose work failed reports ErrDeviceLost.
	Wait(timeout time.Duration) error

	// Return the fence to the unsignaled state.
	Reset() error
}

type Queue interface {
	// Submit recorded work; the fence (if set) is signaled on completion.
	Submit(info SubmitInfo, fence Fence) error

	// Queue an acquired swapchain image for display once wait is signaled.
	// A suboptimal swapchain is reported without an error.
	Present(swapchain Swapchain, index uint32, wait Semaphore) (suboptimal bool, err error)
}

type Swapchain interface {
	Resource
	Images() []Image
	Format() Format
	Extent() (width, height uint32)

	// Acquire the next presentable image; signal is signaled once the
	// image can be written. ErrSwapchainLost means the swapchain can no
	// longer be used.
	Acquire(timeout time.Duration, signal Semaphore) (index uint32, suboptimal bool, err error)
}

// A logical device with a single queue supporting graphics, compute and
// transfer operations.
type Device interface {
	Name() string
	Queue() Queue

	NewImage(desc ImageDesc) (Image, error)
	NewBuffer(desc BufferDesc) (Buffer, error)
	NewDescriptorSetLayout(bindings []Binding) (DescriptorSetLayout, error)
	NewPipelineLayout(setLayout DescriptorSetLayout, pushConstants []PushConstantRange) (PipelineLayout, error)
	NewComputePipeline(layout PipelineLayout, kernel Kernel) (Pipeline, error)
	NewDescriptorSet(layout DescriptorSetLayout, writes []DescriptorWrite) (DescriptorSet, error)
	NewCommandBuffer() (CommandBuffer, error)
	NewFence() (Fence, error)
	NewSemaphore() (Semaphore, error)

	// Block until all submitted work completes.
	WaitIdle() error

	Release()
}
