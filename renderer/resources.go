package renderer

import (
	"fmt"

	"github.com/ktnlvr/wreckage-deprecated/gpu"
	"github.com/ktnlvr/wreckage-deprecated/scene"
	"github.com/ktnlvr/wreckage-deprecated/tracer"
)

// The GPU resources shared by every frame: the output image, the uniform
// buffers feeding the kernel and the compute pipeline with its bindings.
// Everything is immutable once created.
type ResourceSet struct {
	device gpu.Device
	kernel gpu.Kernel
	consts scene.FrameConstants

	output      gpu.Image
	constantBuf gpu.Buffer
	sceneBuf    gpu.Buffer
	setLayout   gpu.DescriptorSetLayout
	layout      gpu.PipelineLayout
	pipeline    gpu.Pipeline
	set         gpu.DescriptorSet

	// Created resources in creation order.
	owned []gpu.Resource
}

// The bindings expected by the kernels.
func descriptorBindings() []gpu.Binding {
	return []gpu.Binding{
		{Binding: tracer.BindingOutput, Type: gpu.DescriptorStorageImage, Stages: gpu.ShaderStageCompute},
		{Binding: tracer.BindingConstants, Type: gpu.DescriptorUniformBuffer, Stages: gpu.ShaderStageCompute},
		{Binding: tracer.BindingScene, Type: gpu.DescriptorUniformBuffer, Stages: gpu.ShaderStageCompute},
	}
}

// The push-constant range holding the encoded camera.
func pushConstantRanges() []gpu.PushConstantRange {
	return []gpu.PushConstantRange{
		{Stages: gpu.ShaderStageCompute, Offset: 0, Size: scene.RawCameraSize},
	}
}

// Create the resources for running kernel over a viewport described by consts.
func NewResourceSet(dev gpu.Device, kernel gpu.Kernel, sc *scene.Scene, consts scene.FrameConstants) (*ResourceSet, error) {
	rs := &ResourceSet{
		device: dev,
		kernel: kernel,
		consts: consts,
	}

	if err := rs.init(sc); err != nil {
		rs.Release()
		return nil, err
	}

	logger.Debugf("created resource set for kernel %q (%dx%d, %d spheres)", kernel.Name, consts.Width, consts.Height, sc.Len())
	return rs, nil
}

func (rs *ResourceSet) init(sc *scene.Scene) error {
	sceneData, err := sc.EncodeFixed(tracer.MaxSpheres)
	if err != nil {
		return fmt.Errorf("resource set: could not encode scene: %w", err)
	}

	rs.output, err = rs.device.NewImage(gpu.ImageDesc{
		Width:  rs.consts.Width,
		Height: rs.consts.Height,
		Format: gpu.FormatRGBA8Unorm,
		Usage:  gpu.ImageUsageStorage | gpu.ImageUsageTransferSrc,
	})
	if err != nil {
		return fmt.Errorf("resource set: could not create output image: %w", err)
	}
	rs.owned = append(rs.owned, rs.output)

	if rs.constantBuf, err = rs.newUniform("frame constant buffer", rs.consts.Bytes()); err != nil {
		return err
	}
	if rs.sceneBuf, err = rs.newUniform("scene buffer", sceneData); err != nil {
		return err
	}

	rs.setLayout, err = rs.device.NewDescriptorSetLayout(descriptorBindings())
	if err != nil {
		return fmt.Errorf("resource set: could not create descriptor set layout: %w", err)
	}
	rs.owned = append(rs.owned, rs.setLayout)

	rs.layout, err = rs.device.NewPipelineLayout(rs.setLayout, pushConstantRanges())
	if err != nil {
		return fmt.Errorf("resource set: could not create pipeline layout: %w", err)
	}
	rs.owned = append(rs.owned, rs.layout)

	rs.pipeline, err = rs.device.NewComputePipeline(rs.layout, rs.kernel)
	if err != nil {
		return fmt.Errorf("resource set: could not create compute pipeline: %w", err)
	}
	rs.owned = append(rs.owned, rs.pipeline)

	rs.set, err = rs.device.NewDescriptorSet(rs.setLayout, []gpu.DescriptorWrite{
		{Binding: tracer.BindingOutput, Image: rs.output},
		{Binding: tracer.BindingConstants, Buffer: rs.constantBuf},
		{Binding: tracer.BindingScene, Buffer: rs.sceneBuf},
	})
	if err != nil {
		return fmt.Errorf("resource set: could not create descriptor set: %w", err)
	}
	rs.owned = append(rs.owned, rs.set)

	return nil
}

func (rs *ResourceSet) newUniform(name string, data []byte) (gpu.Buffer, error) {
	buf, err := rs.device.NewBuffer(gpu.BufferDesc{Size: len(data), Usage: gpu.BufferUsageUniform})
	if err != nil {
		return nil, fmt.Errorf("resource set: could not create %s: %w", name, err)
	}
	rs.owned = append(rs.owned, buf)

	if err = buf.Write(0, data); err != nil {
		return nil, fmt.Errorf("resource set: could not upload %s: %w", name, err)
	}
	return buf, nil
}

// Release all resources in reverse creation order.
func (rs *ResourceSet) Release() {
	for i := len(rs.owned) - 1; i >= 0; i-- {
		rs.owned[i].Release()
	}
	rs.owned = nil
}

func (rs *ResourceSet) Output() gpu.Image                  { return rs.output }
func (rs *ResourceSet) Pipeline() gpu.Pipeline             { return rs.pipeline }
func (rs *ResourceSet) PipelineLayout() gpu.PipelineLayout { return rs.layout }
func (rs *ResourceSet) DescriptorSet() gpu.DescriptorSet   { return rs.set }
func (rs *ResourceSet) Constants() scene.FrameConstants    { return rs.consts }

// Get the dispatch size covering the whole viewport.
func (rs *ResourceSet) GroupCount() (x, y, z uint32) {
	return rs.kernel.GroupCount(rs.consts.Width, rs.consts.Height)
}
