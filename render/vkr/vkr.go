// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package vkr implements render.Device on top of Vulkan.
package vkr

import (
	"errors"
	"fmt"
	"image"

	vk "github.com/devblok/vulkan"
	"github.com/koru3d/korures/core"
	"github.com/koru3d/korures/model"
	"github.com/koru3d/korures/render"
)

// ErrHandle is returned when a handle made by another Device is passed in.
var ErrHandle = errors.New("handle does not belong to a vulkan device")

var _ render.Device = (*Device)(nil)

// New creates a Device on an opened logical device. Programs are built
// as graphics pipelines against a render pass drawing into colorFormat.
func New(dev vk.Device, phy vk.PhysicalDevice, colorFormat vk.Format) (*Device, error) {
	d := &Device{
		device:    dev,
		allocator: NewAllocator(dev, phy),
	}
	for _, create := range []func() error{
		d.createPipelineLayout,
		d.createPipelineCache,
		func() error { return d.createRenderPass(colorFormat) },
	} {
		if err := create(); err != nil {
			d.Destroy()
			return nil, err
		}
		d.created++
	}
	return d, nil
}

// Device builds resources for package render.
type Device struct {
	device    vk.Device
	allocator *Allocator

	pipelineLayout vk.PipelineLayout
	pipelineCache  vk.PipelineCache
	renderPass     vk.RenderPass

	// created counts the shared objects above made so far, in order.
	created int
}

// Destroy releases the objects shared by every program. Resources
// made by the Device have to be destroyed before.
func (d *Device) Destroy() {
	if d.created > 2 {
		vk.DestroyRenderPass(d.device, d.renderPass, nil)
	}
	if d.created > 1 {
		vk.DestroyPipelineCache(d.device, d.pipelineCache, nil)
	}
	if d.created > 0 {
		vk.DestroyPipelineLayout(d.device, d.pipelineLayout, nil)
	}
	d.created = 0
}

type shaderModule struct {
	module vk.ShaderModule
	stage  vk.ShaderStageFlagBits
}

// Memory returns the number of device allocations buffers and images
// still hold, and their total size in bytes.
func (d *Device) Memory() (int, uint64) {
	return d.allocator.Live()
}

// CreateShaderModule implements render.Device
func (d *Device) CreateShaderModule(stage render.ShaderType, code []byte) (interface{}, error) {
	var flag vk.ShaderStageFlagBits
	switch stage {
	case render.VertexShaderType:
		flag = vk.ShaderStageVertexBit
	case render.FragmentShaderType:
		flag = vk.ShaderStageFragmentBit
	default:
		return nil, render.ErrUnknownShaderType
	}

	smci := vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(code)),
		PCode:    core.SliceUint32(code),
	}

	var shader vk.ShaderModule
	if err := vk.Error(vk.CreateShaderModule(d.device, &smci, nil, &shader)); err != nil {
		return nil, fmt.Errorf("vk.CreateShaderModule(type %s): %s", stage, err.Error())
	}
	return &shaderModule{module: shader, stage: flag}, nil
}

// DestroyShaderModule implements render.Device
func (d *Device) DestroyShaderModule(module interface{}) {
	if sm, ok := module.(*shaderModule); ok {
		vk.DestroyShaderModule(d.device, sm.module, nil)
	}
}

// CreateProgram implements render.Device
func (d *Device) CreateProgram(vs, fs interface{}) (interface{}, error) {
	vertex, ok := vs.(*shaderModule)
	if !ok {
		return nil, ErrHandle
	}
	fragment, ok := fs.(*shaderModule)
	if !ok {
		return nil, ErrHandle
	}

	stages := []vk.PipelineShaderStageCreateInfo{}
	for _, sm := range []*shaderModule{vertex, fragment} {
		stages = append(stages, vk.PipelineShaderStageCreateInfo{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  sm.stage,
			Module: sm.module,
			PName:  core.SafeString("main"),
		})
	}

	gpci := []vk.GraphicsPipelineCreateInfo{{
		SType:             vk.StructureTypeGraphicsPipelineCreateInfo,
		StageCount:        uint32(len(stages)),
		PStages:           stages,
		PVertexInputState: vertexInputState(),
		PInputAssemblyState: &vk.PipelineInputAssemblyStateCreateInfo{
			SType:    vk.StructureTypePipelineInputAssemblyStateCreateInfo,
			Topology: vk.PrimitiveTopologyTriangleList,
		},
		PViewportState: &vk.PipelineViewportStateCreateInfo{
			SType:         vk.StructureTypePipelineViewportStateCreateInfo,
			ViewportCount: 1,
			ScissorCount:  1,
		},
		PRasterizationState: &vk.PipelineRasterizationStateCreateInfo{
			SType:       vk.StructureTypePipelineRasterizationStateCreateInfo,
			PolygonMode: vk.PolygonModeFill,
			CullMode:    vk.CullModeFlags(vk.CullModeBackBit),
			FrontFace:   vk.FrontFaceClockwise,
			LineWidth:   1.0,
		},
		PMultisampleState: &vk.PipelineMultisampleStateCreateInfo{
			SType:                vk.StructureTypePipelineMultisampleStateCreateInfo,
			RasterizationSamples: vk.SampleCount1Bit,
		},
		PColorBlendState: &vk.PipelineColorBlendStateCreateInfo{
			SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
			AttachmentCount: 1,
			PAttachments: []vk.PipelineColorBlendAttachmentState{{
				ColorWriteMask: 0xF,
				BlendEnable:    vk.False,
			}},
		},
		PDynamicState: &vk.PipelineDynamicStateCreateInfo{
			SType:             vk.StructureTypePipelineDynamicStateCreateInfo,
			DynamicStateCount: 2,
			PDynamicStates: []vk.DynamicState{
				vk.DynamicStateScissor,
				vk.DynamicStateViewport,
			},
		},
		Layout:     d.pipelineLayout,
		RenderPass: d.renderPass,
	}}

	pipelines := make([]vk.Pipeline, len(gpci))
	if err := vk.Error(vk.CreateGraphicsPipelines(d.device, d.pipelineCache, uint32(len(gpci)), gpci, nil, pipelines)); err != nil {
		return nil, fmt.Errorf("vk.CreateGraphicsPipelines(): %s", err.Error())
	}
	return pipelines[0], nil
}

// DestroyProgram implements render.Device
func (d *Device) DestroyProgram(program interface{}) {
	if pipeline, ok := program.(vk.Pipeline); ok {
		vk.DestroyPipeline(d.device, pipeline, nil)
	}
}

// CreateBuffer implements render.Device
func (d *Device) CreateBuffer(usage render.BufferUsage, data []byte) (interface{}, error) {
	var flag vk.BufferUsageFlagBits
	switch usage {
	case render.VertexBuffer:
		flag = vk.BufferUsageVertexBufferBit
	case render.IndexBuffer:
		flag = vk.BufferUsageIndexBufferBit
	default:
		return nil, fmt.Errorf("buffer usage %s not supported", usage)
	}

	return NewBuffer(d.device, flag, data, d.allocator)
}

// DestroyBuffer implements render.Device
func (d *Device) DestroyBuffer(buffer interface{}) {
	if b, ok := buffer.(*Buffer); ok {
		b.Release()
	}
}

// CreateImage implements render.Device
func (d *Device) CreateImage(img image.Image) (interface{}, error) {
	return NewImage(d.device, img, d.allocator)
}

// DestroyImage implements render.Device
func (d *Device) DestroyImage(img interface{}) {
	if i, ok := img.(*Image); ok {
		i.Release()
	}
}

// vertexInputState describes model.Vertex: position, normal and color.
func vertexInputState() *vk.PipelineVertexInputStateCreateInfo {
	bindings := []vk.VertexInputBindingDescription{{
		Binding:   0,
		Stride:    model.VertexSize,
		InputRate: vk.VertexInputRateVertex,
	}}
	attributes := []vk.VertexInputAttributeDescription{
		{Location: 0, Binding: 0, Format: vk.FormatR32g32b32Sfloat, Offset: 0},
		{Location: 1, Binding: 0, Format: vk.FormatR32g32b32Sfloat, Offset: 12},
		{Location: 2, Binding: 0, Format: vk.FormatR32g32b32a32Sfloat, Offset: 24},
	}
	return &vk.PipelineVertexInputStateCreateInfo{
		SType:                           vk.StructureTypePipelineVertexInputStateCreateInfo,
		VertexBindingDescriptionCount:   uint32(len(bindings)),
		PVertexBindingDescriptions:      bindings,
		VertexAttributeDescriptionCount: uint32(len(attributes)),
		PVertexAttributeDescriptions:    attributes,
	}
}

func (d *Device) createPipelineLayout() error {
	plci := vk.PipelineLayoutCreateInfo{
		SType: vk.StructureTypePipelineLayoutCreateInfo,
	}

	var pipelineLayout vk.PipelineLayout
	if err := vk.Error(vk.CreatePipelineLayout(d.device, &plci, nil, &pipelineLayout)); err != nil {
		return fmt.Errorf("vk.CreatePipelineLayout(): %s", err.Error())
	}
	d.pipelineLayout = pipelineLayout
	return nil
}

func (d *Device) createPipelineCache() error {
	pcci := vk.PipelineCacheCreateInfo{
		SType: vk.StructureTypePipelineCacheCreateInfo,
	}

	var pipelineCache vk.PipelineCache
	if err := vk.Error(vk.CreatePipelineCache(d.device, &pcci, nil, &pipelineCache)); err != nil {
		return fmt.Errorf("vk.CreatePipelineCache(): %s", err.Error())
	}
	d.pipelineCache = pipelineCache
	return nil
}

func (d *Device) createRenderPass(colorFormat vk.Format) error {
	attachments := []vk.AttachmentDescription{{
		Format:         colorFormat,
		Samples:        vk.SampleCount1Bit,
		LoadOp:         vk.AttachmentLoadOpClear,
		StoreOp:        vk.AttachmentStoreOpStore,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		StencilLoadOp:  vk.AttachmentLoadOpDontCare,
		InitialLayout:  vk.ImageLayoutUndefined,
		FinalLayout:    vk.ImageLayoutPresentSrc,
	}}

	colorAttachmentRef := []vk.AttachmentReference{{
		Attachment: 0,
		Layout:     vk.ImageLayoutColorAttachmentOptimal,
	}}

	subpass := vk.SubpassDescription{
		PipelineBindPoint:    vk.PipelineBindPointGraphics,
		ColorAttachmentCount: uint32(len(colorAttachmentRef)),
		PColorAttachments:    colorAttachmentRef,
	}

	rpci := vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: uint32(len(attachments)),
		PAttachments:    attachments,
		SubpassCount:    1,
		PSubpasses:      []vk.SubpassDescription{subpass},
	}

	var renderPass vk.RenderPass
	if err := vk.Error(vk.CreateRenderPass(d.device, &rpci, nil, &renderPass)); err != nil {
		return fmt.Errorf("vk.CreateRenderPass(): %s", err.Error())
	}
	d.renderPass = renderPass
	return nil
}
