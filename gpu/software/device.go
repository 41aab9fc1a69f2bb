// Package software implements the gpu device interfaces on the CPU. Kernels
// run through their host implementation and swapchain images are plain RGBA
// buffers that can be handed to a window for display.
package software

import (
	"fmt"
	"image"
	"runtime"
	"sync"
	"time"

	"github.com/ktnlvr/wreckage-deprecated/gpu"
	"github.com/ktnlvr/wreckage-deprecated/log"
)

// How long queued work waits on a semaphore before failing.
const semaphoreTimeout = 5 * time.Second

var logger = log.New("software")

// Describe the software adapter.
func Info() gpu.AdapterInfo {
	return gpu.AdapterInfo{
		Name:          "software rasterizer",
		Type:          "CPU",
		APIVersion:    runtime.Version(),
		SuitableQueue: true,
	}
}

// A CPU device.
type Device struct {
	queue *Queue

	// Max number of goroutines executing a dispatch.
	parallelism int

	// In-flight submissions.
	pending sync.WaitGroup
}

// Create a new software device.
func NewDevice() *Device {
	d := &Device{
		parallelism: runtime.GOMAXPROCS(0),
	}
	d.queue = &Queue{device: d}
	return d
}

// Limit the number of goroutines used for executing dispatches.
func (d *Device) SetParallelism(n int) {
	if n < 1 {
		n = 1
	}
	d.parallelism = n
}

func (d *Device) Name() string {
	return Info().Name
}

func (d *Device) Queue() gpu.Queue {
	return d.queue
}

func (d *Device) NewImage(desc gpu.ImageDesc) (gpu.Image, error) {
	if desc.Width == 0 || desc.Height == 0 {
		return nil, fmt.Errorf("software device: could not create image with size %dx%d", desc.Width, desc.Height)
	}
	return newImage(desc), nil
}

func (d *Device) NewBuffer(desc gpu.BufferDesc) (gpu.Buffer, error) {
	if desc.Size <= 0 {
		return nil, fmt.Errorf("software device: could not create buffer with size %d", desc.Size)
	}
	return &Buffer{
		usage: desc.Usage,
		data:  make([]byte, desc.Size),
	}, nil
}

func (d *Device) NewDescriptorSetLayout(bindings []gpu.Binding) (gpu.DescriptorSetLayout, error) {
	seen := make(map[uint32]bool, len(bindings))
	for _, b := range bindings {
		if seen[b.Binding] {
			return nil, fmt.Errorf("software device: duplicate descriptor binding %d", b.Binding)
		}
		seen[b.Binding] = true
	}
	return &DescriptorSetLayout{
		bindings: append([]gpu.Binding(nil), bindings...),
	}, nil
}

func (d *Device) NewPipelineLayout(setLayout gpu.DescriptorSetLayout, pushConstants []gpu.PushConstantRange) (gpu.PipelineLayout, error) {
	sl, ok := setLayout.(*DescriptorSetLayout)
	if !ok {
		return nil, fmt.Errorf("software device: foreign descriptor set layout %T", setLayout)
	}
	return &PipelineLayout{
		setLayout: sl,
		ranges:    append([]gpu.PushConstantRange(nil), pushConstants...),
	}, nil
}

func (d *Device) NewComputePipeline(layout gpu.PipelineLayout, kernel gpu.Kernel) (gpu.Pipeline, error) {
	pl, ok := layout.(*PipelineLayout)
	if !ok {
		return nil, fmt.Errorf("software device: foreign pipeline layout %T", layout)
	}
	if err := kernel.Validate(); err != nil {
		return nil, err
	}
	if kernel.Host == nil {
		return nil, fmt.Errorf("software device: kernel %q has no host implementation", kernel.Name)
	}

	logger.Debugf("created compute pipeline for kernel %q (workgroup %v)", kernel.Name, kernel.WorkgroupSize)
	return &Pipeline{layout: pl, kernel: kernel}, nil
}

func (d *Device) NewDescriptorSet(layout gpu.DescriptorSetLayout, writes []gpu.DescriptorWrite) (gpu.DescriptorSet, error) {
	sl, ok := layout.(*DescriptorSetLayout)
	if !ok {
		return nil, fmt.Errorf("software device: foreign descriptor set layout %T", layout)
	}

	set := &DescriptorSet{
		layout:  sl,
		images:  make(map[uint32]*Image),
		buffers: make(map[uint32]*Buffer),
	}

	for _, w := range writes {
		binding, ok := sl.lookup(w.Binding)
		if !ok {
			return nil, fmt.Errorf("software device: descriptor write targets unknown binding %d", w.Binding)
		}

		switch binding.Type {
		case gpu.DescriptorStorageImage:
			img, ok := w.Image.(*Image)
			if !ok {
				return nil, fmt.Errorf("software device: binding %d expects a software image; got %T", w.Binding, w.Image)
			}
			if img.desc.Usage&gpu.ImageUsageStorage == 0 {
				return nil, fmt.Errorf("%w: image bound to binding %d lacks storage usage", gpu.ErrUnsupportedUsage, w.Binding)
			}
			set.images[w.Binding] = img
		case gpu.DescriptorUniformBuffer:
			buf, ok := w.Buffer.(*Buffer)
			if !ok {
				return nil, fmt.Errorf("software device: binding %d expects a software buffer; got %T", w.Binding, w.Buffer)
			}
			if buf.usage&gpu.BufferUsageUniform == 0 {
				return nil, fmt.Errorf("%w: buffer bound to binding %d lacks uniform usage", gpu.ErrUnsupportedUsage, w.Binding)
			}
			set.buffers[w.Binding] = buf
		}
	}

	for _, b := range sl.bindings {
		_, hasImage := set.images[b.Binding]
		_, hasBuffer := set.buffers[b.Binding]
		if !hasImage && !hasBuffer {
			return nil, fmt.Errorf("software device: descriptor binding %d (%s) was not written", b.Binding, b.Type)
		}
	}

	return set, nil
}

func (d *Device) NewCommandBuffer() (gpu.CommandBuffer, error) {
	return &CommandBuffer{device: d}, nil
}

func (d *Device) NewFence() (gpu.Fence, error) {
	return newFence(), nil
}

func (d *Device) NewSemaphore() (gpu.Semaphore, error) {
	return newSemaphore(), nil
}

func (d *Device) WaitIdle() error {
	d.pending.Wait()
	return nil
}

func (d *Device) Release() {
	d.pending.Wait()
}

// Image is a host-memory RGBA image.
type Image struct {
	desc gpu.ImageDesc
	pix  *image.RGBA
}

func newImage(desc gpu.ImageDesc) *Image {
	return &Image{
		desc: desc,
		pix:  image.NewRGBA(image.Rect(0, 0, int(desc.Width), int(desc.Height))),
	}
}

func (i *Image) Width() uint32      { return i.desc.Width }
func (i *Image) Height() uint32     { return i.desc.Height }
func (i *Image) Format() gpu.Format { return i.desc.Format }
func (i *Image) Release()           {}

// Get the image pixels. Callers must not access them while work using the
// image is in flight.
func (i *Image) Pixels() *image.RGBA {
	return i.pix
}

// Buffer is a host-memory buffer.
type Buffer struct {
	usage gpu.BufferUsage

	mu   sync.RWMutex
	data []byte
}

func (b *Buffer) Size() int { return len(b.data) }
func (b *Buffer) Release()  {}

func (b *Buffer) Write(offset int, data []byte) error {
	if offset < 0 || offset+len(data) > len(b.data) {
		return fmt.Errorf("software device: write of %d bytes at offset %d overflows buffer of size %d", len(data), offset, len(b.data))
	}

	b.mu.Lock()
	copy(b.data[offset:], data)
	b.mu.Unlock()
	return nil
}

// Get a copy of the buffer contents.
func (b *Buffer) snapshot() []byte {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]byte(nil), b.data...)
}
