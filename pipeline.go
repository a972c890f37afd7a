package vkrs

import (
	vk "github.com/vulkan-go/vulkan"
)

type CorePipeline struct {
	layout   vk.PipelineLayout
	pipeline vk.Pipeline
}

func (c *CorePipeline) Layout() vk.PipelineLayout {
	return c.layout
}

func (c *CorePipeline) Handle() vk.Pipeline {
	return c.pipeline
}

//PipelineBuilder keeps the fixed function state that does not depend on the swapchain. Build fills in
//viewport and scissor from the extent of each generation.
type PipelineBuilder struct {
	_shaderStages         []vk.PipelineShaderStageCreateInfo
	_vertexBindings       []vk.VertexInputBindingDescription
	_vertexAttributes     []vk.VertexInputAttributeDescription
	_inputAssembly        vk.PipelineInputAssemblyStateCreateInfo
	_rasterizer           vk.PipelineRasterizationStateCreateInfo
	_colorBlendAttachment vk.PipelineColorBlendAttachmentState
	_multisampling        vk.PipelineMultisampleStateCreateInfo
	_depthStencil         vk.PipelineDepthStencilStateCreateInfo
}

//Triangle list of Vertex, back face culling, depth test less, no blending
func NewPipelineBuilder(shader *CoreShader, front_face vk.FrontFace) *PipelineBuilder {
	pb := PipelineBuilder{}

	pb._shaderStages = shader.stages()
	pb._vertexBindings = vertexBindingDescriptions()
	pb._vertexAttributes = vertexAttributeDescriptions()

	pb._inputAssembly = vk.PipelineInputAssemblyStateCreateInfo{
		SType:                  vk.StructureTypePipelineInputAssemblyStateCreateInfo,
		Topology:               vk.PrimitiveTopologyTriangleList,
		PrimitiveRestartEnable: vk.False,
	}

	pb._rasterizer = vk.PipelineRasterizationStateCreateInfo{
		SType:                   vk.StructureTypePipelineRasterizationStateCreateInfo,
		DepthClampEnable:        vk.False,
		RasterizerDiscardEnable: vk.False,
		PolygonMode:             vk.PolygonModeFill,
		CullMode:                vk.CullModeFlags(vk.CullModeBackBit),
		FrontFace:               front_face,
		DepthBiasEnable:         vk.False,
		LineWidth:               1.0,
	}

	pb._multisampling = vk.PipelineMultisampleStateCreateInfo{
		SType:                vk.StructureTypePipelineMultisampleStateCreateInfo,
		SampleShadingEnable:  vk.False,
		RasterizationSamples: vk.SampleCount1Bit,
		MinSampleShading:     1.0,
	}

	//Opaque geometry only, so blend factors are left unset
	pb._colorBlendAttachment = vk.PipelineColorBlendAttachmentState{
		ColorWriteMask: vk.ColorComponentFlags(vk.ColorComponentRBit | vk.ColorComponentGBit | vk.ColorComponentBBit | vk.ColorComponentABit),
		BlendEnable:    vk.False,
	}

	pb._depthStencil = vk.PipelineDepthStencilStateCreateInfo{
		SType:                 vk.StructureTypePipelineDepthStencilStateCreateInfo,
		DepthTestEnable:       vk.True,
		DepthWriteEnable:      vk.True,
		DepthCompareOp:        vk.CompareOpLess,
		DepthBoundsTestEnable: vk.False,
		StencilTestEnable:     vk.False,
		MinDepthBounds:        0.0,
		MaxDepthBounds:        1.0,
	}

	return &pb
}

func viewportFor(extent vk.Extent2D) vk.Viewport {
	return vk.Viewport{
		X:        0,
		Y:        0,
		Width:    float32(extent.Width),
		Height:   float32(extent.Height),
		MinDepth: 0.0,
		MaxDepth: 1.0,
	}
}

//Build creates a pipeline layout over layouts (set 0 global, set 1 model) and the graphics pipeline
func (p *PipelineBuilder) Build(device vk.Device, extent vk.Extent2D, render_pass vk.RenderPass, layouts []vk.DescriptorSetLayout) (*CorePipeline, error) {
	var core CorePipeline

	ret := vk.CreatePipelineLayout(device, &vk.PipelineLayoutCreateInfo{
		SType:          vk.StructureTypePipelineLayoutCreateInfo,
		SetLayoutCount: uint32(len(layouts)),
		PSetLayouts:    layouts,
	}, nil, &core.layout)
	if err := checkResult(ret, "create pipeline layout"); err != nil {
		return nil, err
	}

	vertex_input := vk.PipelineVertexInputStateCreateInfo{
		SType:                           vk.StructureTypePipelineVertexInputStateCreateInfo,
		VertexBindingDescriptionCount:   uint32(len(p._vertexBindings)),
		PVertexBindingDescriptions:      p._vertexBindings,
		VertexAttributeDescriptionCount: uint32(len(p._vertexAttributes)),
		PVertexAttributeDescriptions:    p._vertexAttributes,
	}

	view_state := vk.PipelineViewportStateCreateInfo{
		SType:         vk.StructureTypePipelineViewportStateCreateInfo,
		ViewportCount: 1,
		PViewports:    []vk.Viewport{viewportFor(extent)},
		ScissorCount:  1,
		PScissors:     []vk.Rect2D{{Offset: vk.Offset2D{}, Extent: extent}},
	}

	blend_state := vk.PipelineColorBlendStateCreateInfo{
		SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
		LogicOpEnable:   vk.False,
		LogicOp:         vk.LogicOpCopy,
		AttachmentCount: 1,
		PAttachments:    []vk.PipelineColorBlendAttachmentState{p._colorBlendAttachment},
	}

	pipeline_info := vk.GraphicsPipelineCreateInfo{
		SType:               vk.StructureTypeGraphicsPipelineCreateInfo,
		StageCount:          uint32(len(p._shaderStages)),
		PStages:             p._shaderStages,
		PVertexInputState:   &vertex_input,
		PInputAssemblyState: &p._inputAssembly,
		PViewportState:      &view_state,
		PRasterizationState: &p._rasterizer,
		PMultisampleState:   &p._multisampling,
		PDepthStencilState:  &p._depthStencil,
		PColorBlendState:    &blend_state,
		Layout:              core.layout,
		RenderPass:          render_pass,
		Subpass:             0,
		BasePipelineIndex:   -1,
	}

	pipelines := make([]vk.Pipeline, 1)
	ret = vk.CreateGraphicsPipelines(device, nil, 1, []vk.GraphicsPipelineCreateInfo{pipeline_info}, nil, pipelines)
	if err := checkResult(ret, "create graphics pipeline"); err != nil {
		vk.DestroyPipelineLayout(device, core.layout, nil)
		return nil, err
	}
	core.pipeline = pipelines[0]
	return &core, nil
}

//Destroy releases the pipeline and then its layout
func (c *CorePipeline) Destroy(device vk.Device) {
	vk.DestroyPipeline(device, c.pipeline, nil)
	vk.DestroyPipelineLayout(device, c.layout, nil)
}
