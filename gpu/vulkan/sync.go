package vulkan

import (
	"time"

	vk "github.com/goki/vulkan"
	"github.com/ktnlvr/wreckage-deprecated/gpu"
)

type Semaphore struct {
	device *Device
	handle vk.Semaphore
}

func (d *Device) NewSemaphore() (gpu.Semaphore, error) {
	s := &Semaphore{device: d}
	ret := vk.CreateSemaphore(d.handle, &vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}, nil, &s.handle)
	if err := d.check("create semaphore", ret); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Semaphore) Release() {
	if s.handle == vk.NullSemaphore {
		return
	}
	vk.DestroySemaphore(s.device.handle, s.handle, nil)
	s.handle = vk.NullSemaphore
}

type Fence struct {
	device *Device
	handle vk.Fence
}

func (d *Device) NewFence() (gpu.Fence, error) {
	f := &Fence{device: d}
	ret := vk.CreateFence(d.handle, &vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
	}, nil, &f.handle)
	if err := d.check("create fence", ret); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *Fence) Wait(timeout time.Duration) error {
	ret := vk.WaitForFences(f.device.handle, 1, []vk.Fence{f.handle}, vk.True, timeoutNanos(timeout))
	return f.device.check("wait for fence", ret)
}

func (f *Fence) Reset() error {
	return f.device.check("reset fence", vk.ResetFences(f.device.handle, 1, []vk.Fence{f.handle}))
}

func (f *Fence) Release() {
	if f.handle == vk.NullFence {
		return
	}
	vk.DestroyFence(f.device.handle, f.handle, nil)
	f.handle = vk.NullFence
}

// Convert a timeout to the nanosecond count Vulkan expects; negative
// timeouts wait forever.
func timeoutNanos(timeout time.Duration) uint64 {
	if timeout < 0 {
		return vk.MaxUint64
	}
	return uint64(timeout.Nanoseconds())
}

func semaphoreHandle(s gpu.Semaphore) (vk.Semaphore, bool) {
	if s == nil {
		return vk.NullSemaphore, true
	}
	sem, ok := s.(*Semaphore)
	if !ok {
		return vk.NullSemaphore, false
	}
	return sem.handle, true
}
