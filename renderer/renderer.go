package renderer

import (
	"fmt"
	"sort"

	"github.com/ktnlvr/wreckage-deprecated/gpu"
	"github.com/ktnlvr/wreckage-deprecated/log"
	"github.com/ktnlvr/wreckage-deprecated/scene"
	"github.com/ktnlvr/wreckage-deprecated/tracer"
)

var logger = log.New("renderer")

type Renderer interface {
	// Render a single frame.
	Draw(state *FrameState) error

	// Render frames until a close request is received from events.
	RenderAll(events EventSource) error

	// Get render statistics.
	Stats() FrameStats

	// Wait for the device to become idle and release all resources.
	Close()
}

// A source of input events, typically a window.
type EventSource interface {
	// Return the events received since the last call.
	PollEvents() []scene.Event
}

// Implemented by event sources that want to be notified after each frame.
type FrameObserver interface {
	ObserveFrame(stats FrameStats)
}

// Selects the kernel executed by a renderer.
type Variant string

const (
	// Trace one ray per pixel against every scene sphere.
	VariantNaive Variant = "naive"

	// Fill the frame with a constant color.
	VariantPrimitive Variant = "primitive"
)

var variantKernels = map[Variant]func() gpu.Kernel{
	VariantNaive: tracer.NaiveKernel,
	VariantPrimitive: func() gpu.Kernel {
		return tracer.ClearKernel(tracer.PrimitiveClearColor)
	},
}

// Get the kernel implementing the variant.
func (v Variant) Kernel() (gpu.Kernel, error) {
	factory, ok := variantKernels[v]
	if !ok {
		return gpu.Kernel{}, fmt.Errorf("%w %q (supported: %v)", ErrUnknownVariant, string(v), Variants())
	}
	return factory(), nil
}

// Get the supported variant names.
func Variants() []string {
	names := make([]string, 0, len(variantKernels))
	for v := range variantKernels {
		names = append(names, string(v))
	}
	sort.Strings(names)
	return names
}

type defaultRenderer struct {
	variant Variant
	device  gpu.Device
	options Options

	resources *ResourceSet
	presenter *Presenter
	driver    *FrameDriver
	state     *FrameState

	closed bool
}

// Create a renderer presenting to swapchain. The renderer takes ownership of
// camera; the device and swapchain remain owned by the caller.
func New(dev gpu.Device, swapchain gpu.Swapchain, sc *scene.Scene, camera *scene.Camera, opts Options) (Renderer, error) {
	kernel, err := opts.Variant.Kernel()
	if err != nil {
		return nil, err
	}

	width, height := swapchain.Extent()
	if opts.FrameW == 0 || opts.FrameH == 0 {
		opts.FrameW, opts.FrameH = width, height
	}
	consts, err := scene.NewFrameConstants(opts.FrameW, opts.FrameH, opts.MinDepth, opts.MaxDepth)
	if err != nil {
		return nil, err
	}

	if opts.MoveSpeed > 0 {
		camera.MoveSpeed = opts.MoveSpeed
	}
	if opts.LookSensitivity > 0 {
		camera.LookSensitivity = opts.LookSensitivity
	}

	r := &defaultRenderer{
		variant: opts.Variant,
		device:  dev,
		options: opts,
		state:   NewFrameState(),
	}

	if r.resources, err = NewResourceSet(dev, kernel, sc, consts); err != nil {
		return nil, err
	}
	if r.presenter, err = NewPresenter(dev, swapchain); err != nil {
		r.Close()
		return nil, err
	}
	if r.driver, err = NewFrameDriver(dev, r.resources, r.presenter, camera); err != nil {
		r.Close()
		return nil, err
	}

	logger.Noticef("%s renderer ready on %q (%dx%d, swapchain %dx%d with %d images)",
		r.variant, dev.Name(), opts.FrameW, opts.FrameH, width, height, len(swapchain.Images()))
	return r, nil
}

func (r *defaultRenderer) Draw(state *FrameState) error {
	if r.closed {
		return ErrClosed
	}
	return r.driver.Draw(state)
}

func (r *defaultRenderer) RenderAll(events EventSource) error {
	if r.closed {
		return ErrClosed
	}
	observer, _ := events.(FrameObserver)

	var err error
	for err == nil {
		for _, ev := range events.PollEvents() {
			r.state.Input.Apply(ev)
		}
		if r.state.Input.Close {
			logger.Notice("close requested")
			break
		}

		err = r.driver.Draw(r.state)
		if err == nil && observer != nil {
			observer.ObserveFrame(r.Stats())
		}
	}

	if idleErr := r.device.WaitIdle(); idleErr != nil && err == nil {
		err = idleErr
	}
	return err
}

func (r *defaultRenderer) Stats() FrameStats {
	stats := r.driver.Stats()
	stats.Variant = r.variant
	stats.Device = r.device.Name()
	return stats
}

func (r *defaultRenderer) Close() {
	if r.closed {
		return
	}
	r.closed = true

	if err := r.device.WaitIdle(); err != nil {
		logger.Warningf("could not wait for device: %v", err)
	}
	if r.driver != nil {
		r.driver.Release()
	}
	if r.presenter != nil {
		r.presenter.Release()
	}
	if r.resources != nil {
		r.resources.Release()
	}
}
