package vulkan

import (
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"
	"github.com/ktnlvr/wreckage-deprecated/gpu"
)

var colorSubresource = vk.ImageSubresourceRange{
	AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
	LevelCount: 1,
	LayerCount: 1,
}

type Image struct {
	device *Device
	desc   gpu.ImageDesc
	handle vk.Image

	// Unset for swapchain images.
	memory vk.DeviceMemory
	view   vk.ImageView

	// The layout the image is left in by the most recently recorded work.
	layout vk.ImageLayout

	// Swapchain images are handed to the presentation engine after a blit.
	// Their handle belongs to the swapchain.
	presentable bool
}

func (d *Device) NewImage(desc gpu.ImageDesc) (gpu.Image, error) {
	if desc.Width == 0 || desc.Height == 0 {
		return nil, fmt.Errorf("vulkan device (%s): invalid image size %dx%d", d.name, desc.Width, desc.Height)
	}
	format, ok := toVkFormat(desc.Format)
	if !ok {
		return nil, fmt.Errorf("%w: image format %s", gpu.ErrUnsupportedUsage, desc.Format)
	}

	img := &Image{device: d, desc: desc, layout: vk.ImageLayoutUndefined}
	ret := vk.CreateImage(d.handle, &vk.ImageCreateInfo{
		SType:         vk.StructureTypeImageCreateInfo,
		ImageType:     vk.ImageType2d,
		Format:        format,
		Extent:        vk.Extent3D{Width: desc.Width, Height: desc.Height, Depth: 1},
		MipLevels:     1,
		ArrayLayers:   1,
		Samples:       vk.SampleCount1Bit,
		Tiling:        vk.ImageTilingOptimal,
		Usage:         toVkImageUsage(desc.Usage),
		SharingMode:   vk.SharingModeExclusive,
		InitialLayout: vk.ImageLayoutUndefined,
	}, nil, &img.handle)
	if err := d.check("create image", ret); err != nil {
		return nil, err
	}

	var reqs vk.MemoryRequirements
	vk.GetImageMemoryRequirements(d.handle, img.handle, &reqs)
	memory, err := d.allocate(reqs, vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit))
	if err != nil {
		img.Release()
		return nil, err
	}
	img.memory = memory

	if err = d.check("bind image memory", vk.BindImageMemory(d.handle, img.handle, img.memory, 0)); err != nil {
		img.Release()
		return nil, err
	}

	if desc.Usage&gpu.ImageUsageStorage != 0 {
		ret = vk.CreateImageView(d.handle, &vk.ImageViewCreateInfo{
			SType:    vk.StructureTypeImageViewCreateInfo,
			Image:    img.handle,
			ViewType: vk.ImageViewType2d,
			Format:   format,
			Components: vk.ComponentMapping{
				R: vk.ComponentSwizzleIdentity,
				G: vk.ComponentSwizzleIdentity,
				B: vk.ComponentSwizzleIdentity,
				A: vk.ComponentSwizzleIdentity,
			},
			SubresourceRange: colorSubresource,
		}, nil, &img.view)
		if err = d.check("create image view", ret); err != nil {
			img.Release()
			return nil, err
		}
	}

	return img, nil
}

func (img *Image) Width() uint32      { return img.desc.Width }
func (img *Image) Height() uint32     { return img.desc.Height }
func (img *Image) Format() gpu.Format { return img.desc.Format }

func (img *Image) Release() {
	dev := img.device.handle
	img.release(
		func(view vk.ImageView) { vk.DestroyImageView(dev, view, nil) },
		func(handle vk.Image) { vk.DestroyImage(dev, handle, nil) },
		func(memory vk.DeviceMemory) { vk.FreeMemory(dev, memory, nil) },
	)
}

// Destroy every handle the image owns. Swapchain images belong to their
// swapchain, so only their view (if any) is destroyed.
func (img *Image) release(destroyView func(vk.ImageView), destroyImage func(vk.Image), freeMemory func(vk.DeviceMemory)) {
	if img.view != vk.NullImageView {
		destroyView(img.view)
		img.view = vk.NullImageView
	}
	if img.presentable {
		return
	}
	if img.handle != vk.NullImage {
		destroyImage(img.handle)
		img.handle = vk.NullImage
	}
	if img.memory != vk.NullDeviceMemory {
		freeMemory(img.memory)
		img.memory = vk.NullDeviceMemory
	}
}

// A host-visible buffer.
type Buffer struct {
	device *Device
	usage  gpu.BufferUsage
	size   int
	handle vk.Buffer
	memory vk.DeviceMemory
}

func (d *Device) NewBuffer(desc gpu.BufferDesc) (gpu.Buffer, error) {
	if desc.Size <= 0 {
		return nil, fmt.Errorf("vulkan device (%s): invalid buffer size %d", d.name, desc.Size)
	}

	buf := &Buffer{device: d, usage: desc.Usage, size: desc.Size}
	ret := vk.CreateBuffer(d.handle, &vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        vk.DeviceSize(desc.Size),
		Usage:       toVkBufferUsage(desc.Usage),
		SharingMode: vk.SharingModeExclusive,
	}, nil, &buf.handle)
	if err := d.check("create buffer", ret); err != nil {
		return nil, err
	}

	var reqs vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(d.handle, buf.handle, &reqs)
	memory, err := d.allocate(reqs, vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit))
	if err != nil {
		buf.Release()
		return nil, err
	}
	buf.memory = memory

	if err = d.check("bind buffer memory", vk.BindBufferMemory(d.handle, buf.handle, buf.memory, 0)); err != nil {
		buf.Release()
		return nil, err
	}
	return buf, nil
}

func (b *Buffer) Size() int {
	return b.size
}

// Write maps the written range, copies data and unmaps it again. The memory
// is host coherent so no flush is required.
func (b *Buffer) Write(offset int, data []byte) error {
	if offset < 0 || offset+len(data) > b.size {
		return fmt.Errorf("vulkan device (%s): write of %d bytes at offset %d exceeds buffer size %d", b.device.name, len(data), offset, b.size)
	}
	if len(data) == 0 {
		return nil
	}

	var ptr unsafe.Pointer
	ret := vk.MapMemory(b.device.handle, b.memory, vk.DeviceSize(offset), vk.DeviceSize(len(data)), 0, &ptr)
	if err := b.device.check("map buffer memory", ret); err != nil {
		return err
	}
	vk.Memcopy(ptr, data)
	vk.UnmapMemory(b.device.handle, b.memory)
	return nil
}

func (b *Buffer) Release() {
	dev := b.device.handle
	if b.handle != vk.NullBuffer {
		vk.DestroyBuffer(dev, b.handle, nil)
		b.handle = vk.NullBuffer
	}
	if b.memory != vk.NullDeviceMemory {
		vk.FreeMemory(dev, b.memory, nil)
		b.memory = vk.NullDeviceMemory
	}
}

func toVkFormat(f gpu.Format) (vk.Format, bool) {
	switch f {
	case gpu.FormatRGBA8Unorm:
		return vk.FormatR8g8b8a8Unorm, true
	case gpu.FormatBGRA8Unorm:
		return vk.FormatB8g8r8a8Unorm, true
	case gpu.FormatRGBA8SRGB:
		return vk.FormatR8g8b8a8Srgb, true
	case gpu.FormatBGRA8SRGB:
		return vk.FormatB8g8r8a8Srgb, true
	}
	return vk.FormatUndefined, false
}

func fromVkFormat(f vk.Format) gpu.Format {
	switch f {
	case vk.FormatR8g8b8a8Unorm:
		return gpu.FormatRGBA8Unorm
	case vk.FormatB8g8r8a8Unorm:
		return gpu.FormatBGRA8Unorm
	case vk.FormatR8g8b8a8Srgb:
		return gpu.FormatRGBA8SRGB
	case vk.FormatB8g8r8a8Srgb:
		return gpu.FormatBGRA8SRGB
	}
	return gpu.FormatUndefined
}

func toVkImageUsage(usage gpu.ImageUsage) vk.ImageUsageFlags {
	var flags vk.ImageUsageFlagBits
	if usage&gpu.ImageUsageStorage != 0 {
		flags |= vk.ImageUsageStorageBit
	}
	if usage&gpu.ImageUsageTransferSrc != 0 {
		flags |= vk.ImageUsageTransferSrcBit
	}
	if usage&gpu.ImageUsageTransferDst != 0 {
		flags |= vk.ImageUsageTransferDstBit
	}
	return vk.ImageUsageFlags(flags)
}

func toVkBufferUsage(usage gpu.BufferUsage) vk.BufferUsageFlags {
	var flags vk.BufferUsageFlagBits
	if usage&gpu.BufferUsageUniform != 0 {
		flags |= vk.BufferUsageUniformBufferBit
	}
	if usage&gpu.BufferUsageStorage != 0 {
		flags |= vk.BufferUsageStorageBufferBit
	}
	return vk.BufferUsageFlags(flags)
}

func toVkStages(stages gpu.ShaderStage) vk.ShaderStageFlags {
	var flags vk.ShaderStageFlagBits
	if stages&gpu.ShaderStageCompute != 0 {
		flags |= vk.ShaderStageComputeBit
	}
	return vk.ShaderStageFlags(flags)
}

func toVkDescriptorType(t gpu.DescriptorType) (vk.DescriptorType, bool) {
	switch t {
	case gpu.DescriptorStorageImage:
		return vk.DescriptorTypeStorageImage, true
	case gpu.DescriptorUniformBuffer:
		return vk.DescriptorTypeUniformBuffer, true
	}
	return 0, false
}
