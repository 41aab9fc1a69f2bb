// Package vulkan implements the gpu device abstraction on top of the Vulkan
// API. Surfaces are created through GLFW.
package vulkan

import (
	"fmt"
	"strings"

	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/goki/vulkan"
	"github.com/ktnlvr/wreckage-deprecated/gpu"
	"github.com/ktnlvr/wreckage-deprecated/log"
)

var logger = log.New("vulkan")

// Queue capabilities every rendering queue family must expose. Transfer
// support is implied by graphics and compute support.
const requiredQueueFlags = vk.QueueFlags(vk.QueueGraphicsBit | vk.QueueComputeBit)

// Load the Vulkan entry points through GLFW. Must be called from the main
// thread; GLFW is initialized if needed.
func Init() error {
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("vulkan: failed to initialize glfw: %w", err)
	}
	if !glfw.VulkanSupported() {
		return ErrUnsupported
	}
	vk.SetGetInstanceProcAddr(glfw.GetVulkanGetInstanceProcAddress())
	if err := vk.Init(); err != nil {
		return fmt.Errorf("vulkan: could not load entry points: %w", err)
	}
	return nil
}

type Instance struct {
	handle vk.Instance
}

// Create a Vulkan instance enabling the given extensions (typically the
// ones a window surface requires).
func NewInstance(appName string, extensions []string) (*Instance, error) {
	appInfo := vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		PApplicationName:   cstr(appName),
		ApplicationVersion: uint32(vk.MakeVersion(1, 0, 0)),
		PEngineName:        cstr(appName),
		EngineVersion:      uint32(vk.MakeVersion(1, 0, 0)),
		ApiVersion:         uint32(vk.MakeVersion(1, 1, 0)),
	}

	names := make([]string, len(extensions))
	for i, ext := range extensions {
		names[i] = cstr(ext)
	}

	var handle vk.Instance
	ret := vk.CreateInstance(&vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo:        &appInfo,
		EnabledExtensionCount:   uint32(len(names)),
		PpEnabledExtensionNames: names,
	}, nil, &handle)
	if err := check("instance", "create instance", ret); err != nil {
		return nil, err
	}

	if err := vk.InitInstance(handle); err != nil {
		vk.DestroyInstance(handle, nil)
		return nil, fmt.Errorf("vulkan: could not load instance entry points: %w", err)
	}

	logger.Debugf("created instance with extensions %v", extensions)
	return &Instance{handle: handle}, nil
}

// Enumerate the physical devices visible to the instance.
func (i *Instance) Adapters() ([]Adapter, error) {
	var count uint32
	if err := check("instance", "enumerate physical devices", vk.EnumeratePhysicalDevices(i.handle, &count, nil)); err != nil {
		return nil, err
	}

	handles := make([]vk.PhysicalDevice, count)
	if err := check("instance", "enumerate physical devices", vk.EnumeratePhysicalDevices(i.handle, &count, handles)); err != nil {
		return nil, err
	}

	adapters := make([]Adapter, 0, count)
	for _, handle := range handles[:count] {
		adapters = append(adapters, describeAdapter(handle))
	}
	return adapters, nil
}

func (i *Instance) Release() {
	if i.handle == nil {
		return
	}
	vk.DestroyInstance(i.handle, nil)
	i.handle = nil
}

// A physical device.
type Adapter struct {
	Info gpu.AdapterInfo

	handle vk.PhysicalDevice

	// Queue families exposing requiredQueueFlags.
	queueFamilies []uint32
}

func describeAdapter(handle vk.PhysicalDevice) Adapter {
	var props vk.PhysicalDeviceProperties
	vk.GetPhysicalDeviceProperties(handle, &props)
	props.Deref()

	var count uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(handle, &count, nil)
	families := make([]vk.QueueFamilyProperties, count)
	vk.GetPhysicalDeviceQueueFamilyProperties(handle, &count, families)

	var suitable []uint32
	for index := range families {
		families[index].Deref()
		if queueFamilySuitable(families[index].QueueFlags) {
			suitable = append(suitable, uint32(index))
		}
	}

	return Adapter{
		Info: gpu.AdapterInfo{
			Name:          vk.ToString(props.DeviceName[:]),
			Type:          deviceTypeName(props.DeviceType),
			APIVersion:    formatVersion(props.ApiVersion),
			SuitableQueue: len(suitable) != 0,
		},
		handle:        handle,
		queueFamilies: suitable,
	}
}

func queueFamilySuitable(flags vk.QueueFlags) bool {
	return flags&requiredQueueFlags == requiredQueueFlags
}

func deviceTypeName(t vk.PhysicalDeviceType) string {
	switch t {
	case vk.PhysicalDeviceTypeDiscreteGpu:
		return "discrete GPU"
	case vk.PhysicalDeviceTypeIntegratedGpu:
		return "integrated GPU"
	case vk.PhysicalDeviceTypeVirtualGpu:
		return "virtual GPU"
	case vk.PhysicalDeviceTypeCpu:
		return "CPU"
	}
	return "other"
}

// Preference order when no device is forced.
var typeScore = map[string]int{
	"discrete GPU":   3,
	"integrated GPU": 2,
	"virtual GPU":    1,
}

// Decode a packed Vulkan version number.
func formatVersion(v uint32) string {
	return fmt.Sprintf("%d.%d.%d", v>>22, (v>>12)&0x3ff, v&0xfff)
}

// Pick the adapter to render on. Adapters without a suitable queue family or
// whose names contain a blacklisted substring are skipped. If primary is set
// the first remaining adapter whose name contains it is chosen; otherwise
// discrete GPUs are preferred over integrated and virtual ones.
func SelectAdapter(adapters []Adapter, blacklist []string, primary string) (Adapter, error) {
	var (
		best      Adapter
		bestScore = -1
	)

	for _, adapter := range adapters {
		if !adapter.Info.SuitableQueue {
			logger.Infof("skipping device %q: no graphics+compute queue family", adapter.Info.Name)
			continue
		}
		if blacklisted(adapter.Info.Name, blacklist) {
			logger.Infof("skipping blacklisted device %q", adapter.Info.Name)
			continue
		}

		if primary != "" {
			if strings.Contains(adapter.Info.Name, primary) {
				return adapter, nil
			}
			continue
		}

		if score := typeScore[adapter.Info.Type]; score > bestScore {
			best, bestScore = adapter, score
		}
	}

	if bestScore < 0 {
		if primary != "" {
			return Adapter{}, fmt.Errorf("%w matching %q", ErrNoSuitableDevice, primary)
		}
		return Adapter{}, ErrNoSuitableDevice
	}
	return best, nil
}

func blacklisted(name string, blacklist []string) bool {
	for _, text := range blacklist {
		if text != "" && strings.Contains(name, text) {
			return true
		}
	}
	return false
}

// Vulkan expects null-terminated strings.
func cstr(s string) string {
	if strings.HasSuffix(s, "\x00") {
		return s
	}
	return s + "\x00"
}
