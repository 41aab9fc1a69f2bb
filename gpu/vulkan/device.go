package vulkan

import (
	"fmt"

	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/goki/vulkan"
	"github.com/ktnlvr/wreckage-deprecated/gpu"
)

var deviceExtensions = []string{"VK_KHR_swapchain\x00"}

// A window surface.
type Surface struct {
	instance *Instance
	handle   vk.Surface
}

// Create a presentation surface for a GLFW window created without a client API.
func NewSurface(instance *Instance, window *glfw.Window) (*Surface, error) {
	ptr, err := window.CreateWindowSurface(instance.handle, nil)
	if err != nil {
		return nil, fmt.Errorf("vulkan: could not create window surface: %w", err)
	}
	return &Surface{instance: instance, handle: vk.SurfaceFromPointer(ptr)}, nil
}

func (s *Surface) Release() {
	if s.handle == vk.NullSurface {
		return
	}
	vk.DestroySurface(s.instance.handle, s.handle, nil)
	s.handle = vk.NullSurface
}

// A logical device with a single queue.
type Device struct {
	name        string
	physical    vk.PhysicalDevice
	handle      vk.Device
	queueFamily uint32
	queue       *Queue
	memory      vk.PhysicalDeviceMemoryProperties
	pool        vk.CommandPool
}

// Open a logical device on the adapter. When surface is not nil the chosen
// queue family must also be able to present to it and the swapchain
// extension is enabled.
func Open(adapter Adapter, surface *Surface) (*Device, error) {
	if len(adapter.queueFamilies) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoSuitableDevice, adapter.Info.Name)
	}

	d := &Device{
		name:        adapter.Info.Name,
		physical:    adapter.handle,
		queueFamily: adapter.queueFamilies[0],
	}

	var extensions []string
	if surface != nil {
		family, err := d.presentFamily(adapter.queueFamilies, surface)
		if err != nil {
			return nil, err
		}
		d.queueFamily = family
		extensions = deviceExtensions
	}

	queueInfos := []vk.DeviceQueueCreateInfo{{
		SType:            vk.StructureTypeDeviceQueueCreateInfo,
		QueueFamilyIndex: d.queueFamily,
		QueueCount:       1,
		PQueuePriorities: []float32{1.0},
	}}

	ret := vk.CreateDevice(d.physical, &vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueInfos)),
		PQueueCreateInfos:       queueInfos,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: extensions,
	}, nil, &d.handle)
	if err := d.check("create logical device", ret); err != nil {
		return nil, err
	}

	var queue vk.Queue
	vk.GetDeviceQueue(d.handle, d.queueFamily, 0, &queue)
	d.queue = &Queue{device: d, handle: queue}

	vk.GetPhysicalDeviceMemoryProperties(d.physical, &d.memory)
	d.memory.Deref()

	ret = vk.CreateCommandPool(d.handle, &vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
		QueueFamilyIndex: d.queueFamily,
	}, nil, &d.pool)
	if err := d.check("create command pool", ret); err != nil {
		d.Release()
		return nil, err
	}

	logger.Noticef("opened device %q (%s, vulkan %s) using queue family %d", d.name, adapter.Info.Type, adapter.Info.APIVersion, d.queueFamily)
	return d, nil
}

func (d *Device) presentFamily(families []uint32, surface *Surface) (uint32, error) {
	for _, family := range families {
		var supported vk.Bool32
		ret := vk.GetPhysicalDeviceSurfaceSupport(d.physical, family, surface.handle, &supported)
		if err := d.check("query surface support", ret); err != nil {
			return 0, err
		}
		if supported == vk.True {
			return family, nil
		}
	}
	return 0, ErrNoPresentSupport
}

func (d *Device) check(op string, ret vk.Result) error {
	return check(d.name, op, ret)
}

func (d *Device) Name() string {
	return d.name
}

func (d *Device) Queue() gpu.Queue {
	return d.queue
}

func (d *Device) WaitIdle() error {
	return d.check("wait for device idle", vk.DeviceWaitIdle(d.handle))
}

func (d *Device) Release() {
	if d.handle == nil {
		return
	}
	vk.DeviceWaitIdle(d.handle)
	if d.pool != vk.NullCommandPool {
		vk.DestroyCommandPool(d.handle, d.pool, nil)
		d.pool = vk.NullCommandPool
	}
	vk.DestroyDevice(d.handle, nil)
	d.handle = nil
	logger.Debugf("released device %q", d.name)
}

// Allocate and return memory satisfying the requirements.
func (d *Device) allocate(reqs vk.MemoryRequirements, flags vk.MemoryPropertyFlags) (vk.DeviceMemory, error) {
	reqs.Deref()
	typeIndex, ok := findMemoryType(d.memory, reqs.MemoryTypeBits, flags)
	if !ok {
		return vk.NullDeviceMemory, fmt.Errorf("%w (flags %#x)", ErrNoMemoryType, uint32(flags))
	}

	var memory vk.DeviceMemory
	ret := vk.AllocateMemory(d.handle, &vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  reqs.Size,
		MemoryTypeIndex: typeIndex,
	}, nil, &memory)
	if err := d.check("allocate memory", ret); err != nil {
		return vk.NullDeviceMemory, err
	}
	return memory, nil
}

func findMemoryType(props vk.PhysicalDeviceMemoryProperties, typeBits uint32, required vk.MemoryPropertyFlags) (uint32, bool) {
	for i := uint32(0); i < props.MemoryTypeCount && i < vk.MaxMemoryTypes; i++ {
		if typeBits&(1<<i) == 0 {
			continue
		}
		props.MemoryTypes[i].Deref()
		if props.MemoryTypes[i].PropertyFlags&required == required {
			return i, true
		}
	}
	return 0, false
}
