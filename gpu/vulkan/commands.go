package vulkan

import (
	"errors"
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"
	"github.com/ktnlvr/wreckage-deprecated/gpu"
)

type CommandBuffer struct {
	device *Device
	handle vk.CommandBuffer

	recording bool
	err       error

	// State bound since Begin.
	layout *PipelineLayout
	set    *DescriptorSet
}

func (d *Device) NewCommandBuffer() (gpu.CommandBuffer, error) {
	handles := make([]vk.CommandBuffer, 1)
	ret := vk.AllocateCommandBuffers(d.handle, &vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        d.pool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: 1,
	}, handles)
	if err := d.check("allocate command buffer", ret); err != nil {
		return nil, err
	}
	return &CommandBuffer{device: d, handle: handles[0]}, nil
}

func (cb *CommandBuffer) Release() {
	if cb.handle == nil {
		return
	}
	vk.FreeCommandBuffers(cb.device.handle, cb.device.pool, 1, []vk.CommandBuffer{cb.handle})
	cb.handle = nil
}

func (cb *CommandBuffer) Begin() error {
	if err := cb.device.check("reset command buffer", vk.ResetCommandBuffer(cb.handle, 0)); err != nil {
		return err
	}
	ret := vk.BeginCommandBuffer(cb.handle, &vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
	})
	if err := cb.device.check("begin command buffer", ret); err != nil {
		return err
	}

	cb.recording = true
	cb.err = nil
	cb.layout = nil
	cb.set = nil
	return nil
}

// Record a misuse error; only the first error is kept.
func (cb *CommandBuffer) fail(err error) {
	if cb.err == nil {
		cb.err = err
	}
}

// Report whether commands may be recorded, failing the buffer if not.
func (cb *CommandBuffer) ready() bool {
	if !cb.recording {
		cb.fail(gpu.ErrNotRecording)
		return false
	}
	return cb.err == nil
}

func (cb *CommandBuffer) BindPipeline(pipeline gpu.Pipeline) {
	if !cb.ready() {
		return
	}
	p, ok := pipeline.(*Pipeline)
	if !ok {
		cb.fail(ErrForeignResource)
		return
	}
	cb.layout = p.layout
	vk.CmdBindPipeline(cb.handle, vk.PipelineBindPointCompute, p.handle)
}

func (cb *CommandBuffer) BindDescriptorSet(layout gpu.PipelineLayout, set gpu.DescriptorSet) {
	if !cb.ready() {
		return
	}
	pl, lok := layout.(*PipelineLayout)
	s, sok := set.(*DescriptorSet)
	if !lok || !sok {
		cb.fail(ErrForeignResource)
		return
	}
	if pl.setLayout != s.layout {
		cb.fail(errors.New("vulkan: descriptor set is not compatible with the pipeline layout"))
		return
	}
	cb.set = s
	vk.CmdBindDescriptorSets(cb.handle, vk.PipelineBindPointCompute, pl.handle, 0, 1, []vk.DescriptorSet{s.handle}, 0, nil)
}

func (cb *CommandBuffer) PushConstants(layout gpu.PipelineLayout, stages gpu.ShaderStage, offset uint32, data []byte) {
	if !cb.ready() || len(data) == 0 {
		return
	}
	pl, ok := layout.(*PipelineLayout)
	if !ok {
		cb.fail(ErrForeignResource)
		return
	}
	if !gpu.CoversPushConstants(pl.pushConstants, stages, offset, uint32(len(data))) {
		cb.fail(fmt.Errorf("vulkan: push constant update [%d, %d) is outside the declared ranges", offset, offset+uint32(len(data))))
		return
	}

	// The payload is copied into the command buffer when recorded.
	payload := append([]byte(nil), data...)
	vk.CmdPushConstants(cb.handle, pl.handle, toVkStages(stages), offset, uint32(len(payload)), unsafe.Pointer(&payload[0]))
}

func (cb *CommandBuffer) Dispatch(groupsX, groupsY, groupsZ uint32) {
	if !cb.ready() {
		return
	}
	if cb.layout == nil || cb.set == nil {
		cb.fail(errors.New("vulkan: dispatch requires a bound pipeline and descriptor set"))
		return
	}

	// Kernels overwrite every texel, so previous contents can be discarded.
	for _, img := range cb.set.storage {
		cb.transition(img, vk.ImageLayoutGeneral)
	}
	vk.CmdDispatch(cb.handle, groupsX, groupsY, groupsZ)
}

func (cb *CommandBuffer) BlitImage(src, dst gpu.Image) {
	if !cb.ready() {
		return
	}
	s, sok := src.(*Image)
	d, dok := dst.(*Image)
	if !sok || !dok {
		cb.fail(ErrForeignResource)
		return
	}
	if s.desc.Usage&gpu.ImageUsageTransferSrc == 0 || d.desc.Usage&gpu.ImageUsageTransferDst == 0 {
		cb.fail(fmt.Errorf("%w: blit requires transfer-src and transfer-dst images", gpu.ErrUnsupportedUsage))
		return
	}

	cb.transition(s, vk.ImageLayoutTransferSrcOptimal)
	// The destination is overwritten entirely.
	d.layout = vk.ImageLayoutUndefined
	cb.transition(d, vk.ImageLayoutTransferDstOptimal)

	layers := vk.ImageSubresourceLayers{
		AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
		LayerCount: 1,
	}
	vk.CmdBlitImage(cb.handle,
		s.handle, vk.ImageLayoutTransferSrcOptimal,
		d.handle, vk.ImageLayoutTransferDstOptimal,
		1, []vk.ImageBlit{{
			SrcSubresource: layers,
			SrcOffsets:     [2]vk.Offset3D{{}, {X: int32(s.desc.Width), Y: int32(s.desc.Height), Z: 1}},
			DstSubresource: layers,
			DstOffsets:     [2]vk.Offset3D{{}, {X: int32(d.desc.Width), Y: int32(d.desc.Height), Z: 1}},
		}},
		vk.FilterNearest,
	)

	if d.presentable {
		cb.transition(d, vk.ImageLayoutPresentSrc)
	}
}

func (cb *CommandBuffer) End() error {
	if !cb.recording {
		return gpu.ErrNotRecording
	}
	cb.recording = false
	if err := cb.device.check("end command buffer", vk.EndCommandBuffer(cb.handle)); err != nil {
		return err
	}
	return cb.err
}

// Record a layout transition for img unless it is already in the target layout.
func (cb *CommandBuffer) transition(img *Image, to vk.ImageLayout) {
	if img.layout == to {
		return
	}
	b := layoutBarrier(img.layout, to)
	vk.CmdPipelineBarrier(cb.handle, b.srcStage, b.dstStage, 0, 0, nil, 0, nil, 1, []vk.ImageMemoryBarrier{{
		SType:               vk.StructureTypeImageMemoryBarrier,
		SrcAccessMask:       b.srcAccess,
		DstAccessMask:       b.dstAccess,
		OldLayout:           img.layout,
		NewLayout:           to,
		SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
		DstQueueFamilyIndex: vk.QueueFamilyIgnored,
		Image:               img.handle,
		SubresourceRange:    colorSubresource,
	}})
	img.layout = to
}

type barrier struct {
	srcStage, dstStage   vk.PipelineStageFlags
	srcAccess, dstAccess vk.AccessFlags
}

// Get the stages and accesses a transition between two layouts must order.
func layoutBarrier(from, to vk.ImageLayout) barrier {
	var b barrier
	b.srcStage, b.srcAccess = layoutUsage(from, true)
	b.dstStage, b.dstAccess = layoutUsage(to, false)
	return b
}

func layoutUsage(layout vk.ImageLayout, source bool) (vk.PipelineStageFlags, vk.AccessFlags) {
	switch layout {
	case vk.ImageLayoutGeneral:
		if source {
			return vk.PipelineStageFlags(vk.PipelineStageComputeShaderBit), vk.AccessFlags(vk.AccessShaderWriteBit)
		}
		return vk.PipelineStageFlags(vk.PipelineStageComputeShaderBit), vk.AccessFlags(vk.AccessShaderReadBit | vk.AccessShaderWriteBit)
	case vk.ImageLayoutTransferSrcOptimal:
		return vk.PipelineStageFlags(vk.PipelineStageTransferBit), vk.AccessFlags(vk.AccessTransferReadBit)
	case vk.ImageLayoutTransferDstOptimal:
		return vk.PipelineStageFlags(vk.PipelineStageTransferBit), vk.AccessFlags(vk.AccessTransferWriteBit)
	case vk.ImageLayoutPresentSrc:
		return vk.PipelineStageFlags(vk.PipelineStageBottomOfPipeBit), 0
	}
	// Undefined. Transitions out of it are chained to the transfer stage
	// queue submissions wait on for swapchain images.
	return vk.PipelineStageFlags(vk.PipelineStageTransferBit), 0
}
