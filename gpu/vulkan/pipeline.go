package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/ktnlvr/wreckage-deprecated/gpu"
	"github.com/ktnlvr/wreckage-deprecated/tracer"
)

type DescriptorSetLayout struct {
	device   *Device
	bindings []gpu.Binding
	handle   vk.DescriptorSetLayout
}

func (d *Device) NewDescriptorSetLayout(bindings []gpu.Binding) (gpu.DescriptorSetLayout, error) {
	vkBindings := make([]vk.DescriptorSetLayoutBinding, len(bindings))
	seen := make(map[uint32]bool, len(bindings))
	for i, b := range bindings {
		if seen[b.Binding] {
			return nil, fmt.Errorf("vulkan device (%s): duplicate descriptor binding %d", d.name, b.Binding)
		}
		seen[b.Binding] = true

		descType, ok := toVkDescriptorType(b.Type)
		if !ok {
			return nil, fmt.Errorf("%w: descriptor type %s", gpu.ErrUnsupportedUsage, b.Type)
		}
		vkBindings[i] = vk.DescriptorSetLayoutBinding{
			Binding:         b.Binding,
			DescriptorType:  descType,
			DescriptorCount: 1,
			StageFlags:      toVkStages(b.Stages),
		}
	}

	layout := &DescriptorSetLayout{device: d, bindings: append([]gpu.Binding(nil), bindings...)}
	ret := vk.CreateDescriptorSetLayout(d.handle, &vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: uint32(len(vkBindings)),
		PBindings:    vkBindings,
	}, nil, &layout.handle)
	if err := d.check("create descriptor set layout", ret); err != nil {
		return nil, err
	}
	return layout, nil
}

func (l *DescriptorSetLayout) Bindings() []gpu.Binding {
	return l.bindings
}

func (l *DescriptorSetLayout) lookup(binding uint32) (gpu.Binding, bool) {
	for _, b := range l.bindings {
		if b.Binding == binding {
			return b, true
		}
	}
	return gpu.Binding{}, false
}

func (l *DescriptorSetLayout) Release() {
	if l.handle == vk.DescriptorSetLayout(vk.NullHandle) {
		return
	}
	vk.DestroyDescriptorSetLayout(l.device.handle, l.handle, nil)
	l.handle = vk.DescriptorSetLayout(vk.NullHandle)
}

type PipelineLayout struct {
	device        *Device
	setLayout     *DescriptorSetLayout
	pushConstants []gpu.PushConstantRange
	handle        vk.PipelineLayout
}

func (d *Device) NewPipelineLayout(setLayout gpu.DescriptorSetLayout, pushConstants []gpu.PushConstantRange) (gpu.PipelineLayout, error) {
	sl, ok := setLayout.(*DescriptorSetLayout)
	if !ok {
		return nil, ErrForeignResource
	}

	ranges := make([]vk.PushConstantRange, len(pushConstants))
	for i, r := range pushConstants {
		ranges[i] = vk.PushConstantRange{
			StageFlags: toVkStages(r.Stages),
			Offset:     r.Offset,
			Size:       r.Size,
		}
	}

	layout := &PipelineLayout{
		device:        d,
		setLayout:     sl,
		pushConstants: append([]gpu.PushConstantRange(nil), pushConstants...),
	}
	ret := vk.CreatePipelineLayout(d.handle, &vk.PipelineLayoutCreateInfo{
		SType:                  vk.StructureTypePipelineLayoutCreateInfo,
		SetLayoutCount:         1,
		PSetLayouts:            []vk.DescriptorSetLayout{sl.handle},
		PushConstantRangeCount: uint32(len(ranges)),
		PPushConstantRanges:    ranges,
	}, nil, &layout.handle)
	if err := d.check("create pipeline layout", ret); err != nil {
		return nil, err
	}
	return layout, nil
}

func (l *PipelineLayout) SetLayout() gpu.DescriptorSetLayout {
	return l.setLayout
}

func (l *PipelineLayout) PushConstantRanges() []gpu.PushConstantRange {
	return l.pushConstants
}

func (l *PipelineLayout) Release() {
	if l.handle == vk.NullPipelineLayout {
		return
	}
	vk.DestroyPipelineLayout(l.device.handle, l.handle, nil)
	l.handle = vk.NullPipelineLayout
}

type Pipeline struct {
	device        *Device
	layout        *PipelineLayout
	workgroupSize [3]uint32
	handle        vk.Pipeline
}

// Compile the kernel source to SPIR-V and build a compute pipeline from it.
func (d *Device) NewComputePipeline(layout gpu.PipelineLayout, kernel gpu.Kernel) (gpu.Pipeline, error) {
	pl, ok := layout.(*PipelineLayout)
	if !ok {
		return nil, ErrForeignResource
	}
	if err := kernel.Validate(); err != nil {
		return nil, err
	}
	if kernel.Source == "" {
		return nil, fmt.Errorf("vulkan device (%s): kernel %q has no shader source", d.name, kernel.Name)
	}

	code, err := tracer.CompileSPIRV(kernel.Source)
	if err != nil {
		return nil, fmt.Errorf("vulkan device (%s): kernel %q: %w", d.name, kernel.Name, err)
	}

	var module vk.ShaderModule
	ret := vk.CreateShaderModule(d.handle, &vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(code) * 4),
		PCode:    code,
	}, nil, &module)
	if err = d.check("create shader module", ret); err != nil {
		return nil, err
	}
	// The module is not needed once the pipeline is built.
	defer vk.DestroyShaderModule(d.handle, module, nil)

	pipelines := make([]vk.Pipeline, 1)
	ret = vk.CreateComputePipelines(d.handle, vk.PipelineCache(vk.NullHandle), 1, []vk.ComputePipelineCreateInfo{{
		SType: vk.StructureTypeComputePipelineCreateInfo,
		Stage: vk.PipelineShaderStageCreateInfo{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vk.ShaderStageComputeBit,
			Module: module,
			PName:  cstr(kernel.EntryPoint),
		},
		Layout: pl.handle,
	}}, nil, pipelines)
	if err = d.check("create compute pipeline", ret); err != nil {
		return nil, err
	}

	logger.Debugf("built compute pipeline for kernel %q (%d SPIR-V words)", kernel.Name, len(code))
	return &Pipeline{device: d, layout: pl, workgroupSize: kernel.WorkgroupSize, handle: pipelines[0]}, nil
}

func (p *Pipeline) Layout() gpu.PipelineLayout {
	return p.layout
}

func (p *Pipeline) WorkgroupSize() [3]uint32 {
	return p.workgroupSize
}

func (p *Pipeline) Release() {
	if p.handle == vk.NullPipeline {
		return
	}
	vk.DestroyPipeline(p.device.handle, p.handle, nil)
	p.handle = vk.NullPipeline
}

// A descriptor set allocated from its own pool.
type DescriptorSet struct {
	device *Device
	layout *DescriptorSetLayout
	pool   vk.DescriptorPool
	handle vk.DescriptorSet

	// Storage images written by dispatches using this set.
	storage []*Image
}

func (d *Device) NewDescriptorSet(layout gpu.DescriptorSetLayout, writes []gpu.DescriptorWrite) (gpu.DescriptorSet, error) {
	sl, ok := layout.(*DescriptorSetLayout)
	if !ok {
		return nil, ErrForeignResource
	}

	vkWrites, storage, err := d.descriptorWrites(sl, writes)
	if err != nil {
		return nil, err
	}

	counts := make(map[vk.DescriptorType]uint32)
	for _, w := range vkWrites {
		counts[w.DescriptorType]++
	}
	poolSizes := make([]vk.DescriptorPoolSize, 0, len(counts))
	for descType, count := range counts {
		poolSizes = append(poolSizes, vk.DescriptorPoolSize{Type: descType, DescriptorCount: count})
	}

	set := &DescriptorSet{device: d, layout: sl, storage: storage}
	ret := vk.CreateDescriptorPool(d.handle, &vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		MaxSets:       1,
		PoolSizeCount: uint32(len(poolSizes)),
		PPoolSizes:    poolSizes,
	}, nil, &set.pool)
	if err = d.check("create descriptor pool", ret); err != nil {
		return nil, err
	}

	ret = vk.AllocateDescriptorSets(d.handle, &vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		DescriptorPool:     set.pool,
		DescriptorSetCount: 1,
		PSetLayouts:        []vk.DescriptorSetLayout{sl.handle},
	}, &set.handle)
	if err = d.check("allocate descriptor set", ret); err != nil {
		set.Release()
		return nil, err
	}

	for i := range vkWrites {
		vkWrites[i].DstSet = set.handle
	}
	vk.UpdateDescriptorSets(d.handle, uint32(len(vkWrites)), vkWrites, 0, nil)
	return set, nil
}

// Convert writes to their Vulkan form. Every layout binding must be written
// with a resource matching its descriptor type.
func (d *Device) descriptorWrites(layout *DescriptorSetLayout, writes []gpu.DescriptorWrite) ([]vk.WriteDescriptorSet, []*Image, error) {
	var (
		written = make(map[uint32]bool, len(writes))
		out     = make([]vk.WriteDescriptorSet, 0, len(writes))
		storage []*Image
	)

	for _, w := range writes {
		b, ok := layout.lookup(w.Binding)
		if !ok {
			return nil, nil, fmt.Errorf("vulkan device (%s): binding %d is not part of the layout", d.name, w.Binding)
		}
		descType, _ := toVkDescriptorType(b.Type)
		vkWrite := vk.WriteDescriptorSet{
			SType:           vk.StructureTypeWriteDescriptorSet,
			DstBinding:      w.Binding,
			DescriptorCount: 1,
			DescriptorType:  descType,
		}

		switch b.Type {
		case gpu.DescriptorStorageImage:
			img, ok := w.Image.(*Image)
			if !ok || img.view == vk.NullImageView {
				return nil, nil, fmt.Errorf("%w: binding %d expects a storage image", gpu.ErrUnsupportedUsage, w.Binding)
			}
			storage = append(storage, img)
			vkWrite.PImageInfo = []vk.DescriptorImageInfo{{
				ImageView:   img.view,
				ImageLayout: vk.ImageLayoutGeneral,
			}}
		case gpu.DescriptorUniformBuffer:
			buf, ok := w.Buffer.(*Buffer)
			if !ok || buf.usage&gpu.BufferUsageUniform == 0 {
				return nil, nil, fmt.Errorf("%w: binding %d expects a uniform buffer", gpu.ErrUnsupportedUsage, w.Binding)
			}
			vkWrite.PBufferInfo = []vk.DescriptorBufferInfo{{
				Buffer: buf.handle,
				Offset: 0,
				Range:  vk.DeviceSize(buf.size),
			}}
		}

		written[w.Binding] = true
		out = append(out, vkWrite)
	}

	for _, b := range layout.bindings {
		if !written[b.Binding] {
			return nil, nil, fmt.Errorf("%w: binding %d", ErrMissingDescriptor, b.Binding)
		}
	}
	return out, storage, nil
}

func (s *DescriptorSet) Layout() gpu.DescriptorSetLayout {
	return s.layout
}

// Destroying the pool frees the set.
func (s *DescriptorSet) Release() {
	if s.pool == vk.DescriptorPool(vk.NullHandle) {
		return
	}
	vk.DestroyDescriptorPool(s.device.handle, s.pool, nil)
	s.pool = vk.DescriptorPool(vk.NullHandle)
}
