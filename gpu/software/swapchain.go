package software

import (
	"fmt"
	"time"

	"github.com/ktnlvr/wreckage-deprecated/gpu"
)

// A swapchain backed by host images. Images are handed out round-robin.
type Swapchain struct {
	images []*Image
	format gpu.Format
	width  uint32
	height uint32
	sink   Sink

	next       uint32
	suboptimal bool
	lost       bool
	presented  int
}

// Create a swapchain with imageCount images of the given size. Presented
// images are forwarded to sink (which may be nil).
func NewSwapchain(dev *Device, width, height uint32, imageCount int, format gpu.Format, sink Sink) (*Swapchain, error) {
	if imageCount < 1 {
		return nil, fmt.Errorf("software device: swapchain needs at least one image; got %d", imageCount)
	}

	sc := &Swapchain{
		format: format,
		width:  width,
		height: height,
		sink:   sink,
	}
	for i := 0; i < imageCount; i++ {
		img, err := dev.NewImage(gpu.ImageDesc{
			Width:  width,
			Height: height,
			Format: format,
			Usage:  gpu.ImageUsageTransferDst,
		})
		if err != nil {
			return nil, err
		}
		sc.images = append(sc.images, img.(*Image))
	}

	logger.Debugf("created swapchain with %d %dx%d images (%s)", imageCount, width, height, format)
	return sc, nil
}

func (sc *Swapchain) Images() []gpu.Image {
	out := make([]gpu.Image, len(sc.images))
	for i, img := range sc.images {
		out[i] = img
	}
	return out
}

func (sc *Swapchain) Format() gpu.Format { return sc.format }

func (sc *Swapchain) Extent() (uint32, uint32) { return sc.width, sc.height }

func (sc *Swapchain) Release() {}

func (sc *Swapchain) Acquire(_ time.Duration, signal gpu.Semaphore) (uint32, bool, error) {
	if sc.lost {
		return 0, false, gpu.ErrSwapchainLost
	}

	index := sc.next
	sc.next = (sc.next + 1) % uint32(len(sc.images))

	if signal != nil {
		sem, ok := signal.(*Semaphore)
		if !ok {
			return 0, false, fmt.Errorf("software device: foreign semaphore %T", signal)
		}
		if err := sem.signal(); err != nil {
			return 0, false, err
		}
	}
	return index, sc.suboptimal, nil
}

// Get the pixels of a swapchain image.
func (sc *Swapchain) Image(index uint32) *Image {
	return sc.images[index]
}

// Get the number of successful presentations.
func (sc *Swapchain) Presented() int {
	return sc.presented
}

// Make subsequent acquire and present calls report a suboptimal swapchain.
func (sc *Swapchain) SetSuboptimal(suboptimal bool) {
	sc.suboptimal = suboptimal
}

// Make subsequent acquire and present calls fail with gpu.ErrSwapchainLost.
func (sc *Swapchain) Invalidate() {
	sc.lost = true
}
