package software

import (
	"fmt"
	"image"

	"github.com/ktnlvr/wreckage-deprecated/gpu"
)

type DescriptorSetLayout struct {
	bindings []gpu.Binding
}

func (l *DescriptorSetLayout) Bindings() []gpu.Binding {
	return append([]gpu.Binding(nil), l.bindings...)
}

func (l *DescriptorSetLayout) Release() {}

func (l *DescriptorSetLayout) lookup(binding uint32) (gpu.Binding, bool) {
	for _, b := range l.bindings {
		if b.Binding == binding {
			return b, true
		}
	}
	return gpu.Binding{}, false
}

type PipelineLayout struct {
	setLayout *DescriptorSetLayout
	ranges    []gpu.PushConstantRange
}

func (l *PipelineLayout) SetLayout() gpu.DescriptorSetLayout { return l.setLayout }
func (l *PipelineLayout) Release()                           {}

func (l *PipelineLayout) PushConstantRanges() []gpu.PushConstantRange {
	return append([]gpu.PushConstantRange(nil), l.ranges...)
}

// Check that a push-constant update lies inside a declared range visible to stages.
func (l *PipelineLayout) covers(stages gpu.ShaderStage, offset, size uint32) bool {
	return gpu.CoversPushConstants(l.ranges, stages, offset, size)
}

// The total push-constant storage required by the layout.
func (l *PipelineLayout) pushConstantSize() uint32 {
	var size uint32
	for _, r := range l.ranges {
		if end := r.Offset + r.Size; end > size {
			size = end
		}
	}
	return size
}

type Pipeline struct {
	layout *PipelineLayout
	kernel gpu.Kernel
}

func (p *Pipeline) Layout() gpu.PipelineLayout { return p.layout }
func (p *Pipeline) WorkgroupSize() [3]uint32   { return p.kernel.WorkgroupSize }
func (p *Pipeline) Release()                   {}

type DescriptorSet struct {
	layout  *DescriptorSetLayout
	images  map[uint32]*Image
	buffers map[uint32]*Buffer
}

func (s *DescriptorSet) Layout() gpu.DescriptorSetLayout { return s.layout }
func (s *DescriptorSet) Release()                        {}

// The resources a host kernel sees during a dispatch.
type hostResources struct {
	set  *DescriptorSet
	push []byte
}

func (r hostResources) Uniform(binding uint32) ([]byte, error) {
	buf, ok := r.set.buffers[binding]
	if !ok {
		return nil, fmt.Errorf("software device: no uniform buffer bound at binding %d", binding)
	}
	return buf.snapshot(), nil
}

func (r hostResources) StorageImage(binding uint32) (*image.RGBA, error) {
	img, ok := r.set.images[binding]
	if !ok {
		return nil, fmt.Errorf("software device: no storage image bound at binding %d", binding)
	}
	return img.pix, nil
}

func (r hostResources) PushConstants() []byte {
	return r.push
}
