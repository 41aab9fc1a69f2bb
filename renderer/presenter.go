package renderer

import (
	"errors"
	"fmt"

	"github.com/ktnlvr/wreckage-deprecated/gpu"
)

// The presenter owns the synchronization chain of a frame:
//
//	acquire --imageAvailable--> submit --renderFinished--> present
//	                              \--inFlight (fence)--> wait
type Presenter struct {
	device    gpu.Device
	swapchain gpu.Swapchain
	images    []gpu.Image

	imageAvailable gpu.Semaphore
	renderFinished gpu.Semaphore
	inFlight       gpu.Fence

	reportedSuboptimal bool
}

// Create a presenter for swapchain.
func NewPresenter(dev gpu.Device, swapchain gpu.Swapchain) (*Presenter, error) {
	p := &Presenter{
		device:    dev,
		swapchain: swapchain,
		images:    swapchain.Images(),
	}

	var err error
	if p.imageAvailable, err = dev.NewSemaphore(); err != nil {
		return nil, fmt.Errorf("presenter: could not create semaphore: %w", err)
	}
	if p.renderFinished, err = dev.NewSemaphore(); err != nil {
		p.Release()
		return nil, fmt.Errorf("presenter: could not create semaphore: %w", err)
	}
	if p.inFlight, err = dev.NewFence(); err != nil {
		p.Release()
		return nil, fmt.Errorf("presenter: could not create fence: %w", err)
	}

	return p, nil
}

// Get the swapchain image with the given index.
func (p *Presenter) Image(index uint32) gpu.Image {
	return p.images[index]
}

// Block until a swapchain image is available and return its index. The
// image-available semaphore is signaled once the image can be written.
func (p *Presenter) Acquire() (uint32, error) {
	index, suboptimal, err := p.swapchain.Acquire(gpu.NoTimeout, p.imageAvailable)
	if err != nil {
		return 0, p.mapSwapchainError("acquire", err)
	}
	p.checkSuboptimal(suboptimal)

	if int(index) >= len(p.images) {
		return 0, fmt.Errorf("%w: %d (swapchain has %d images)", ErrImageIndex, index, len(p.images))
	}
	return index, nil
}

// Submit recorded commands. Execution starts once the acquired image is
// available; completion signals the render-finished semaphore and the
// in-flight fence.
func (p *Presenter) Submit(cb gpu.CommandBuffer) error {
	err := p.device.Queue().Submit(gpu.SubmitInfo{
		Commands: cb,
		Wait:     p.imageAvailable,
		Signal:   p.renderFinished,
	}, p.inFlight)
	if err != nil {
		return fmt.Errorf("presenter: could not submit commands: %w", err)
	}
	return nil
}

// Queue the image for display once rendering has finished.
func (p *Presenter) Present(index uint32) error {
	suboptimal, err := p.device.Queue().Present(p.swapchain, index, p.renderFinished)
	if err != nil {
		return p.mapSwapchainError("present", err)
	}
	p.checkSuboptimal(suboptimal)
	return nil
}

// Block until the submitted work completes and re-arm the fence. Failed work
// is reported as a dropped frame.
func (p *Presenter) Wait() error {
	waitErr := p.inFlight.Wait(gpu.NoTimeout)
	if err := p.inFlight.Reset(); err != nil {
		return fmt.Errorf("presenter: could not reset fence: %w", err)
	}

	if waitErr != nil {
		if errors.Is(waitErr, gpu.ErrDeviceLost) {
			return fmt.Errorf("%w: %v", ErrFrameDropped, waitErr)
		}
		return fmt.Errorf("presenter: could not wait for frame: %w", waitErr)
	}
	return nil
}

func (p *Presenter) Release() {
	for _, res := range []gpu.Resource{p.inFlight, p.renderFinished, p.imageAvailable} {
		if res != nil {
			res.Release()
		}
	}
}

func (p *Presenter) mapSwapchainError(op string, err error) error {
	if errors.Is(err, gpu.ErrSwapchainLost) {
		return fmt.Errorf("%w: %s: %v", ErrSwapchainLost, op, err)
	}
	return fmt.Errorf("presenter: could not %s image: %w", op, err)
}

// A suboptimal swapchain still works; rendering continues as-is.
func (p *Presenter) checkSuboptimal(suboptimal bool) {
	if suboptimal && !p.reportedSuboptimal {
		p.reportedSuboptimal = true
		logger.Warning("swapchain is suboptimal; continuing without recreation")
	}
}
