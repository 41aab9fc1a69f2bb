package software

import (
	"errors"
	"fmt"

	"github.com/ktnlvr/wreckage-deprecated/gpu"
	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"
)

// Mutable state threaded through the recorded commands while they execute.
type execState struct {
	pipeline *Pipeline
	set      *DescriptorSet
	push     []byte
}

type command func(state *execState) error

// A command buffer recording closures that are replayed on submission.
type CommandBuffer struct {
	device *Device

	recording bool
	err       error
	commands  []command
	names     []string

	// Pipeline layout of the last bound pipeline; used to validate recorded
	// descriptor sets and push constants.
	layout *PipelineLayout
}

// Get the names of the commands recorded since the last Begin.
func (cb *CommandBuffer) Recorded() []string {
	return append([]string(nil), cb.names...)
}

func (cb *CommandBuffer) Release() {
	cb.commands = nil
}

func (cb *CommandBuffer) Begin() error {
	cb.recording = true
	cb.err = nil
	cb.commands = cb.commands[:0]
	cb.names = cb.names[:0]
	cb.layout = nil
	return nil
}

// Record a misuse error; only the first error is kept.
func (cb *CommandBuffer) fail(err error) {
	if cb.err == nil {
		cb.err = err
	}
}

func (cb *CommandBuffer) record(name string, cmd command) {
	if !cb.recording {
		cb.fail(gpu.ErrNotRecording)
		return
	}
	cb.commands = append(cb.commands, cmd)
	cb.names = append(cb.names, name)
}

func (cb *CommandBuffer) BindPipeline(pipeline gpu.Pipeline) {
	p, ok := pipeline.(*Pipeline)
	if !ok {
		cb.fail(fmt.Errorf("software device: foreign pipeline %T", pipeline))
		return
	}
	cb.layout = p.layout
	cb.record("bind-pipeline", func(state *execState) error {
		state.pipeline = p
		if size := p.layout.pushConstantSize(); len(state.push) < int(size) {
			state.push = append(state.push, make([]byte, int(size)-len(state.push))...)
		}
		return nil
	})
}

func (cb *CommandBuffer) BindDescriptorSet(layout gpu.PipelineLayout, set gpu.DescriptorSet) {
	s, ok := set.(*DescriptorSet)
	if !ok {
		cb.fail(fmt.Errorf("software device: foreign descriptor set %T", set))
		return
	}
	if pl, ok := layout.(*PipelineLayout); !ok || pl.setLayout != s.layout {
		cb.fail(errors.New("software device: descriptor set is not compatible with the pipeline layout"))
		return
	}
	cb.record("bind-descriptor-set", func(state *execState) error {
		state.set = s
		return nil
	})
}

func (cb *CommandBuffer) PushConstants(layout gpu.PipelineLayout, stages gpu.ShaderStage, offset uint32, data []byte) {
	pl, ok := layout.(*PipelineLayout)
	if !ok {
		cb.fail(fmt.Errorf("software device: foreign pipeline layout %T", layout))
		return
	}
	if !pl.covers(stages, offset, uint32(len(data))) {
		cb.fail(fmt.Errorf("software device: push constant update [%d, %d) is outside the declared ranges", offset, offset+uint32(len(data))))
		return
	}

	// Push constants are captured at record time.
	payload := append([]byte(nil), data...)
	cb.record("push-constants", func(state *execState) error {
		if end := int(offset) + len(payload); len(state.push) < end {
			state.push = append(state.push, make([]byte, end-len(state.push))...)
		}
		copy(state.push[offset:], payload)
		return nil
	})
}

func (cb *CommandBuffer) Dispatch(groupsX, groupsY, groupsZ uint32) {
	parallelism := cb.device.parallelism
	cb.record("dispatch", func(state *execState) error {
		if state.pipeline == nil {
			return errors.New("software device: dispatch without a bound pipeline")
		}
		if state.set == nil {
			return errors.New("software device: dispatch without a bound descriptor set")
		}
		return dispatch(state, parallelism, [3]uint32{groupsX, groupsY, groupsZ})
	})
}

func (cb *CommandBuffer) BlitImage(src, dst gpu.Image) {
	s, sok := src.(*Image)
	d, dok := dst.(*Image)
	if !sok || !dok {
		cb.fail(fmt.Errorf("software device: foreign images in blit (%T -> %T)", src, dst))
		return
	}
	if s.desc.Usage&gpu.ImageUsageTransferSrc == 0 || d.desc.Usage&gpu.ImageUsageTransferDst == 0 {
		cb.fail(fmt.Errorf("%w: blit requires transfer-src and transfer-dst images", gpu.ErrUnsupportedUsage))
		return
	}
	cb.record("blit", func(_ *execState) error {
		draw.NearestNeighbor.Scale(d.pix, d.pix.Bounds(), s.pix, s.pix.Bounds(), draw.Src, nil)
		return nil
	})
}

func (cb *CommandBuffer) End() error {
	if !cb.recording {
		return gpu.ErrNotRecording
	}
	cb.recording = false
	return cb.err
}

// Replay the recorded commands.
func (cb *CommandBuffer) execute() error {
	if cb.recording {
		return errors.New("software device: submitted a command buffer that is still recording")
	}
	if cb.err != nil {
		return cb.err
	}

	var state execState
	for _, cmd := range cb.commands {
		if err := cmd(&state); err != nil {
			return err
		}
	}
	return nil
}

// Run a kernel over the dispatch grid. Workgroup rows are distributed among
// a bounded number of goroutines.
func dispatch(state *execState, parallelism int, groups [3]uint32) error {
	kernel := state.pipeline.kernel
	invoke, err := kernel.Host.Prepare(hostResources{set: state.set, push: state.push})
	if err != nil {
		return fmt.Errorf("software device: kernel %q: %w", kernel.Name, err)
	}

	wg := kernel.WorkgroupSize
	var eg errgroup.Group
	eg.SetLimit(parallelism)

	for gz := uint32(0); gz < groups[2]; gz++ {
		for gy := uint32(0); gy < groups[1]; gy++ {
			gy, gz := gy, gz
			eg.Go(func() (err error) {
				defer func() {
					if r := recover(); r != nil {
						err = fmt.Errorf("software device: kernel %q panicked: %v", kernel.Name, r)
					}
				}()

				for gx := uint32(0); gx < groups[0]; gx++ {
					for lz := uint32(0); lz < wg[2]; lz++ {
						for ly := uint32(0); ly < wg[1]; ly++ {
							for lx := uint32(0); lx < wg[0]; lx++ {
								invoke([3]uint32{gx*wg[0] + lx, gy*wg[1] + ly, gz*wg[2] + lz})
							}
						}
					}
				}
				return nil
			})
		}
	}

	return eg.Wait()
}
