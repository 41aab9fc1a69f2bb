package software

import (
	"fmt"
	"image"

	"github.com/ktnlvr/wreckage-deprecated/gpu"
)

// The single queue of a software device. Submissions execute asynchronously
// on their own goroutine.
type Queue struct {
	device *Device
}

func (q *Queue) Submit(info gpu.SubmitInfo, fence gpu.Fence) error {
	cb, ok := info.Commands.(*CommandBuffer)
	if !ok {
		return fmt.Errorf("software device: foreign command buffer %T", info.Commands)
	}

	var wait, signal *Semaphore
	if info.Wait != nil {
		if wait, ok = info.Wait.(*Semaphore); !ok {
			return fmt.Errorf("software device: foreign semaphore %T", info.Wait)
		}
	}
	if info.Signal != nil {
		if signal, ok = info.Signal.(*Semaphore); !ok {
			return fmt.Errorf("software device: foreign semaphore %T", info.Signal)
		}
	}

	var f *Fence
	if fence != nil {
		if f, ok = fence.(*Fence); !ok {
			return fmt.Errorf("software device: foreign fence %T", fence)
		}
		if err := f.arm(); err != nil {
			return err
		}
	}

	q.device.pending.Add(1)
	go func() {
		defer q.device.pending.Done()

		var err error
		if wait != nil {
			err = wait.wait(semaphoreTimeout)
		}
		if err == nil {
			err = cb.execute()
		}
		if err != nil {
			logger.Warningf("submitted work failed: %v", err)
		}

		// Downstream waiters must not deadlock when execution fails.
		if signal != nil {
			_ = signal.signal()
		}
		if f != nil {
			f.signal(err)
		}
	}()

	return nil
}

func (q *Queue) Present(swapchain gpu.Swapchain, index uint32, wait gpu.Semaphore) (bool, error) {
	sc, ok := swapchain.(*Swapchain)
	if !ok {
		return false, fmt.Errorf("software device: foreign swapchain %T", swapchain)
	}
	if sc.lost {
		return false, gpu.ErrSwapchainLost
	}
	if int(index) >= len(sc.images) {
		return false, fmt.Errorf("%w: %d (swapchain has %d images)", gpu.ErrIndexOutOfRange, index, len(sc.images))
	}

	if wait != nil {
		sem, ok := wait.(*Semaphore)
		if !ok {
			return false, fmt.Errorf("software device: foreign semaphore %T", wait)
		}
		if err := sem.wait(semaphoreTimeout); err != nil {
			return false, err
		}
	}

	if sc.sink != nil {
		if err := sc.sink.Present(sc.images[index].pix); err != nil {
			return false, fmt.Errorf("software device: could not present image %d: %w", index, err)
		}
	}
	sc.presented++

	return sc.suboptimal, nil
}

// Receives presented swapchain images, e.g. a window.
type Sink interface {
	Present(img *image.RGBA) error
}
