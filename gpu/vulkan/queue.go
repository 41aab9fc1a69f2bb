package vulkan

import (
	vk "github.com/goki/vulkan"
	"github.com/ktnlvr/wreckage-deprecated/gpu"
)

// Submissions wait on semaphores at the stage that writes swapchain images.
var waitStages = []vk.PipelineStageFlags{vk.PipelineStageFlags(vk.PipelineStageTransferBit)}

type Queue struct {
	device *Device
	handle vk.Queue
}

func (q *Queue) Submit(info gpu.SubmitInfo, fence gpu.Fence) error {
	cb, ok := info.Commands.(*CommandBuffer)
	if !ok {
		return ErrForeignResource
	}
	if cb.recording {
		return gpu.ErrNotRecording
	}

	submit := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    []vk.CommandBuffer{cb.handle},
	}

	wait, ok := semaphoreHandle(info.Wait)
	if !ok {
		return ErrForeignResource
	}
	if wait != vk.NullSemaphore {
		submit.WaitSemaphoreCount = 1
		submit.PWaitSemaphores = []vk.Semaphore{wait}
		submit.PWaitDstStageMask = waitStages
	}

	signal, ok := semaphoreHandle(info.Signal)
	if !ok {
		return ErrForeignResource
	}
	if signal != vk.NullSemaphore {
		submit.SignalSemaphoreCount = 1
		submit.PSignalSemaphores = []vk.Semaphore{signal}
	}

	fenceHandle := vk.NullFence
	if fence != nil {
		f, ok := fence.(*Fence)
		if !ok {
			return ErrForeignResource
		}
		fenceHandle = f.handle
	}

	return q.device.check("submit command buffer", vk.QueueSubmit(q.handle, 1, []vk.SubmitInfo{submit}, fenceHandle))
}

func (q *Queue) Present(swapchain gpu.Swapchain, index uint32, wait gpu.Semaphore) (bool, error) {
	sc, ok := swapchain.(*Swapchain)
	if !ok {
		return false, ErrForeignResource
	}
	if int(index) >= len(sc.images) {
		return false, gpu.ErrIndexOutOfRange
	}

	info := vk.PresentInfo{
		SType:          vk.StructureTypePresentInfo,
		SwapchainCount: 1,
		PSwapchains:    []vk.Swapchain{sc.handle},
		PImageIndices:  []uint32{index},
	}

	sem, ok := semaphoreHandle(wait)
	if !ok {
		return false, ErrForeignResource
	}
	if sem != vk.NullSemaphore {
		info.WaitSemaphoreCount = 1
		info.PWaitSemaphores = []vk.Semaphore{sem}
	}

	ret := vk.QueuePresent(q.handle, &info)
	if ret == vk.Suboptimal {
		return true, nil
	}
	return false, q.device.check("present swapchain image", ret)
}
