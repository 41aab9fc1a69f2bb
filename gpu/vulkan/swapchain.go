package vulkan

import (
	"fmt"
	"math"
	"time"

	vk "github.com/goki/vulkan"
	"github.com/ktnlvr/wreckage-deprecated/gpu"
)

// A FIFO swapchain whose images are written by transfer operations.
type Swapchain struct {
	device  *Device
	surface *Surface
	handle  vk.Swapchain
	images  []gpu.Image
	format  gpu.Format
	width   uint32
	height  uint32
}

// Create a swapchain for the surface. The requested size is used only if
// the surface does not dictate its own extent.
func NewSwapchain(d *Device, surface *Surface, width, height uint32) (*Swapchain, error) {
	var caps vk.SurfaceCapabilities
	ret := vk.GetPhysicalDeviceSurfaceCapabilities(d.physical, surface.handle, &caps)
	if err := d.check("query surface capabilities", ret); err != nil {
		return nil, err
	}
	caps.Deref()
	caps.CurrentExtent.Deref()
	caps.MinImageExtent.Deref()
	caps.MaxImageExtent.Deref()

	if caps.SupportedUsageFlags&vk.ImageUsageFlags(vk.ImageUsageTransferDstBit) == 0 {
		return nil, fmt.Errorf("%w: surface images cannot be transfer destinations", gpu.ErrUnsupportedUsage)
	}

	var formatCount uint32
	vk.GetPhysicalDeviceSurfaceFormats(d.physical, surface.handle, &formatCount, nil)
	formats := make([]vk.SurfaceFormat, formatCount)
	vk.GetPhysicalDeviceSurfaceFormats(d.physical, surface.handle, &formatCount, formats)
	surfaceFormat, err := chooseSurfaceFormat(formats)
	if err != nil {
		return nil, err
	}

	extent := chooseExtent(caps.CurrentExtent, caps.MinImageExtent, caps.MaxImageExtent, width, height)
	sc := &Swapchain{
		device:  d,
		surface: surface,
		format:  fromVkFormat(surfaceFormat.Format),
		width:   extent.Width,
		height:  extent.Height,
	}

	ret = vk.CreateSwapchain(d.handle, &vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          surface.handle,
		MinImageCount:    chooseImageCount(caps.MinImageCount, caps.MaxImageCount),
		ImageFormat:      surfaceFormat.Format,
		ImageColorSpace:  surfaceFormat.ColorSpace,
		ImageExtent:      extent,
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageTransferDstBit),
		ImageSharingMode: vk.SharingModeExclusive,
		PreTransform:     caps.CurrentTransform,
		CompositeAlpha:   vk.CompositeAlphaOpaqueBit,
		PresentMode:      vk.PresentModeFifo,
		Clipped:          vk.True,
		OldSwapchain:     vk.NullSwapchain,
	}, nil, &sc.handle)
	if err = d.check("create swapchain", ret); err != nil {
		return nil, err
	}

	var imageCount uint32
	vk.GetSwapchainImages(d.handle, sc.handle, &imageCount, nil)
	handles := make([]vk.Image, imageCount)
	if err = d.check("get swapchain images", vk.GetSwapchainImages(d.handle, sc.handle, &imageCount, handles)); err != nil {
		sc.Release()
		return nil, err
	}

	desc := gpu.ImageDesc{Width: sc.width, Height: sc.height, Format: sc.format, Usage: gpu.ImageUsageTransferDst}
	for _, handle := range handles[:imageCount] {
		sc.images = append(sc.images, &Image{
			device:      d,
			desc:        desc,
			handle:      handle,
			layout:      vk.ImageLayoutUndefined,
			presentable: true,
		})
	}

	logger.Noticef("created %dx%d swapchain with %d %s images", sc.width, sc.height, len(sc.images), sc.format)
	return sc, nil
}

func (sc *Swapchain) Images() []gpu.Image {
	return sc.images
}

func (sc *Swapchain) Format() gpu.Format {
	return sc.format
}

func (sc *Swapchain) Extent() (uint32, uint32) {
	return sc.width, sc.height
}

func (sc *Swapchain) Acquire(timeout time.Duration, signal gpu.Semaphore) (uint32, bool, error) {
	sem, ok := semaphoreHandle(signal)
	if !ok {
		return 0, false, ErrForeignResource
	}

	var index uint32
	ret := vk.AcquireNextImage(sc.device.handle, sc.handle, timeoutNanos(timeout), sem, vk.NullFence, &index)
	if ret == vk.Suboptimal {
		return index, true, nil
	}
	if err := sc.device.check("acquire swapchain image", ret); err != nil {
		return 0, false, err
	}
	return index, false, nil
}

func (sc *Swapchain) Release() {
	if sc.handle == vk.NullSwapchain {
		return
	}
	vk.DestroySwapchain(sc.device.handle, sc.handle, nil)
	sc.handle = vk.NullSwapchain
	sc.images = nil
}

// Prefer formats the rest of the pipeline can name, falling back to the
// first one reported.
func chooseSurfaceFormat(formats []vk.SurfaceFormat) (vk.SurfaceFormat, error) {
	if len(formats) == 0 {
		return vk.SurfaceFormat{}, ErrNoSurfaceFormat
	}
	for i := range formats {
		formats[i].Deref()
	}
	for _, f := range formats {
		if fromVkFormat(f.Format) != gpu.FormatUndefined {
			return f, nil
		}
	}
	return formats[0], nil
}

// A current extent of 0xFFFFFFFF means the surface size follows the swapchain.
func chooseExtent(current, lo, hi vk.Extent2D, width, height uint32) vk.Extent2D {
	if current.Width != math.MaxUint32 {
		return current
	}
	return vk.Extent2D{
		Width:  clamp(width, lo.Width, hi.Width),
		Height: clamp(height, lo.Height, hi.Height),
	}
}

// Request one image more than the minimum; a maximum of 0 means unbounded.
func chooseImageCount(minCount, maxCount uint32) uint32 {
	count := minCount + 1
	if maxCount > 0 && count > maxCount {
		count = maxCount
	}
	return count
}

func clamp(v, lo, hi uint32) uint32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
