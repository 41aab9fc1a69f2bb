package renderer

import (
	"errors"
	"fmt"
	"time"

	"github.com/ktnlvr/wreckage-deprecated/gpu"
	"github.com/ktnlvr/wreckage-deprecated/scene"
)

// The mutable state threaded through consecutive frames.
type FrameState struct {
	// Input accumulated since the previous frame.
	Input scene.InputState

	// Number of drawn frames, including dropped ones.
	Frame uint64

	// Number of frames dropped because of transient errors.
	Dropped uint64

	// The time source; defaults to time.Now.
	Clock func() time.Time

	last time.Time
	dt   float32
}

// Create a new frame state.
func NewFrameState() *FrameState {
	return &FrameState{Clock: time.Now}
}

// Get the seconds elapsed between the last two frames.
func (s *FrameState) Delta() float32 {
	return s.dt
}

// Advance the frame clock. The first frame has a zero delta.
func (s *FrameState) tick() {
	if s.Clock == nil {
		s.Clock = time.Now
	}

	now := s.Clock()
	if !s.last.IsZero() {
		s.dt = float32(now.Sub(s.last).Seconds())
	}
	s.last = now
}

// The frame driver records and submits the commands of a frame and blocks
// until the GPU is done with it.
type FrameDriver struct {
	resources *ResourceSet
	presenter *Presenter
	camera    *scene.Camera
	commands  gpu.CommandBuffer

	timer      stageTimer
	frames     uint64
	dropped    uint64
	renderTime time.Duration
	lastFrame  time.Duration
}

// Create a frame driver. The driver takes ownership of camera.
func NewFrameDriver(dev gpu.Device, resources *ResourceSet, presenter *Presenter, camera *scene.Camera) (*FrameDriver, error) {
	cb, err := dev.NewCommandBuffer()
	if err != nil {
		return nil, fmt.Errorf("frame driver: could not create command buffer: %w", err)
	}

	return &FrameDriver{
		resources: resources,
		presenter: presenter,
		camera:    camera,
		commands:  cb,
		timer:     stageTimer{now: time.Now},
	}, nil
}

// Get the driven camera.
func (d *FrameDriver) Camera() *scene.Camera {
	return d.camera
}

// Draw a frame. Dropped frames are logged and counted in state; any other
// error is fatal.
func (d *FrameDriver) Draw(state *FrameState) error {
	state.tick()
	d.camera.Integrate(&state.Input, state.Delta())

	err := d.drawFrame()
	state.Frame++
	if errors.Is(err, ErrFrameDropped) {
		state.Dropped++
		d.dropped++
		logger.Warningf("frame %d: %v", state.Frame, err)
		return nil
	}
	return err
}

func (d *FrameDriver) drawFrame() error {
	d.timer.begin()

	index, err := d.presenter.Acquire()
	if err != nil {
		return err
	}
	d.timer.mark(StageAcquire)

	if err = d.record(index); err != nil {
		return err
	}
	d.timer.mark(StageRecord)

	if err = d.presenter.Submit(d.commands); err != nil {
		return err
	}
	d.timer.mark(StageSubmit)

	presentErr := d.presenter.Present(index)
	d.timer.mark(StagePresent)

	// Always wait so the output image is not overwritten while in use.
	waitErr := d.presenter.Wait()
	d.timer.mark(StageWait)

	d.frames++
	d.lastFrame = d.timer.frame
	d.renderTime += d.timer.frame

	if presentErr != nil {
		return presentErr
	}
	return waitErr
}

func (d *FrameDriver) record(index uint32) error {
	cb := d.commands
	if err := cb.Begin(); err != nil {
		return fmt.Errorf("frame driver: could not begin command buffer: %w", err)
	}

	rs := d.resources
	cb.BindPipeline(rs.Pipeline())
	cb.BindDescriptorSet(rs.PipelineLayout(), rs.DescriptorSet())
	cb.PushConstants(rs.PipelineLayout(), gpu.ShaderStageCompute, 0, d.camera.Encode().Bytes())
	cb.Dispatch(rs.GroupCount())
	cb.BlitImage(rs.Output(), d.presenter.Image(index))

	if err := cb.End(); err != nil {
		return fmt.Errorf("frame driver: could not record commands: %w", err)
	}
	return nil
}

// Get frame statistics.
func (d *FrameDriver) Stats() FrameStats {
	return FrameStats{
		Frames:        d.frames,
		Dropped:       d.dropped,
		Stages:        d.timer.stats(),
		RenderTime:    d.renderTime,
		LastFrameTime: d.lastFrame,
	}
}

func (d *FrameDriver) Release() {
	if d.commands != nil {
		d.commands.Release()
		d.commands = nil
	}
}
