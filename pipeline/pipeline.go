package pipeline

import (
	"github.com/cockroachdb/errors"
	"github.com/loov/hrtime"
	"github.com/vkngwrapper/bringup/internal/gpulog"
	"github.com/vkngwrapper/core/core1_0"
)

// Context holds the objects a draw needs that outlive pipeline creation.
type Context struct {
	RenderPass core1_0.RenderPass
	Layout     core1_0.PipelineLayout
	Pipeline   core1_0.Pipeline
}

// Destroy releases the pipeline, then its layout, then the render pass. Calling it twice
// is a no-op.
func (c *Context) Destroy(device Device) {
	if c.Pipeline != nil {
		device.DestroyPipeline(c.Pipeline)
		c.Pipeline = nil
	}
	if c.Layout != nil {
		device.DestroyPipelineLayout(c.Layout)
		c.Layout = nil
	}
	if c.RenderPass != nil {
		device.DestroyRenderPass(c.RenderPass)
		c.RenderPass = nil
	}
}

// Assembler builds the fixed triangle pipeline on a logical device. Cache is optional.
type Assembler struct {
	Device Device
	Cache  *Cache
}

// CreateShaderStage wraps a SPIR-V binary in a shader module. The module is only needed
// until the pipeline exists, so the caller destroys it.
func (a *Assembler) CreateShaderStage(binary []byte, stage core1_0.ShaderStageFlags) (core1_0.PipelineShaderStageCreateInfo, error) {
	code, err := Bytecode(binary)
	if err != nil {
		return core1_0.PipelineShaderStageCreateInfo{}, errors.Wrapf(err, "%v shader", stage)
	}

	module, err := a.Device.CreateShaderModule(core1_0.ShaderModuleCreateInfo{Code: code})
	if err != nil {
		return core1_0.PipelineShaderStageCreateInfo{}, errors.Wrapf(err, "%v shader", stage)
	}

	return core1_0.PipelineShaderStageCreateInfo{
		Stage:  stage,
		Module: module,
		Name:   "main",
	}, nil
}

func (a *Assembler) BuildRenderPass(format core1_0.Format) (core1_0.RenderPass, error) {
	renderPass, err := a.Device.CreateRenderPass(RenderPassInfo(format))
	if err != nil {
		return nil, err
	}

	gpulog.Pipeline.Debug("render pass created for format %v", format)
	return renderPass, nil
}

// BuildPipeline creates the pipeline layout and graphics pipeline for renderPass. The
// returned Context takes ownership of renderPass.
func (a *Assembler) BuildPipeline(shaders ShaderBinaries, extent core1_0.Extent2D, renderPass core1_0.RenderPass) (*Context, error) {
	vertStage, err := a.CreateShaderStage(shaders.Vertex, core1_0.StageVertex)
	if err != nil {
		return nil, err
	}
	defer a.Device.DestroyShaderModule(vertStage.Module)

	fragStage, err := a.CreateShaderStage(shaders.Fragment, core1_0.StageFragment)
	if err != nil {
		return nil, err
	}
	defer a.Device.DestroyShaderModule(fragStage.Module)

	layout, err := a.Device.CreatePipelineLayout(core1_0.PipelineLayoutCreateInfo{})
	if err != nil {
		return nil, err
	}

	var cache core1_0.PipelineCache
	if a.Cache != nil {
		cache = a.Cache.Handle()
	}

	start := hrtime.Now()
	pipeline, err := a.Device.CreateGraphicsPipeline(cache, GraphicsPipelineInfo(
		[]core1_0.PipelineShaderStageCreateInfo{vertStage, fragStage},
		extent, layout, renderPass,
	))
	if err != nil {
		a.Device.DestroyPipelineLayout(layout)
		return nil, err
	}
	gpulog.Pipeline.Info("graphics pipeline created in %s (cached: %t)", hrtime.Since(start), cache != nil)

	return &Context{
		RenderPass: renderPass,
		Layout:     layout,
		Pipeline:   pipeline,
	}, nil
}

// Assemble builds the render pass and the pipeline on top of it. Nothing is left behind
// on failure.
func (a *Assembler) Assemble(shaders ShaderBinaries, format core1_0.Format, extent core1_0.Extent2D) (*Context, error) {
	renderPass, err := a.BuildRenderPass(format)
	if err != nil {
		return nil, err
	}

	ctx, err := a.BuildPipeline(shaders, extent, renderPass)
	if err != nil {
		a.Device.DestroyRenderPass(renderPass)
		return nil, err
	}

	return ctx, nil
}

// GraphicsPipelineInfo is the fixed-function state for an unblended triangle list with no
// vertex input, a static viewport covering extent, and clockwise back-face culling.
func GraphicsPipelineInfo(stages []core1_0.PipelineShaderStageCreateInfo, extent core1_0.Extent2D, layout core1_0.PipelineLayout, renderPass core1_0.RenderPass) core1_0.GraphicsPipelineCreateInfo {
	vertexInput := &core1_0.PipelineVertexInputStateCreateInfo{}

	inputAssembly := &core1_0.PipelineInputAssemblyStateCreateInfo{
		Topology:               core1_0.PrimitiveTopologyTriangleList,
		PrimitiveRestartEnable: false,
	}

	viewport := &core1_0.PipelineViewportStateCreateInfo{
		Viewports: []core1_0.Viewport{
			{
				X:        0,
				Y:        0,
				Width:    float32(extent.Width),
				Height:   float32(extent.Height),
				MinDepth: 0,
				MaxDepth: 1,
			},
		},
		Scissors: []core1_0.Rect2D{
			{
				Offset: core1_0.Offset2D{X: 0, Y: 0},
				Extent: extent,
			},
		},
	}

	rasterization := &core1_0.PipelineRasterizationStateCreateInfo{
		DepthClampEnable:        false,
		RasterizerDiscardEnable: false,

		PolygonMode: core1_0.PolygonModeFill,
		CullMode:    core1_0.CullModeBack,
		FrontFace:   core1_0.FrontFaceClockwise,

		DepthBiasEnable: false,

		LineWidth: 1.0,
	}

	multisample := &core1_0.PipelineMultisampleStateCreateInfo{
		SampleShadingEnable:  false,
		RasterizationSamples: core1_0.Samples1,
		MinSampleShading:     1.0,
	}

	colorBlend := &core1_0.PipelineColorBlendStateCreateInfo{
		LogicOpEnabled: false,
		LogicOp:        core1_0.LogicOpCopy,

		BlendConstants: [4]float32{0, 0, 0, 0},
		Attachments: []core1_0.PipelineColorBlendAttachmentState{
			{
				BlendEnabled:   false,
				ColorWriteMask: core1_0.ColorComponentRed | core1_0.ColorComponentGreen | core1_0.ColorComponentBlue | core1_0.ColorComponentAlpha,
			},
		},
	}

	return core1_0.GraphicsPipelineCreateInfo{
		Stages:             stages,
		VertexInputState:   vertexInput,
		InputAssemblyState: inputAssembly,
		ViewportState:      viewport,
		RasterizationState: rasterization,
		MultisampleState:   multisample,
		ColorBlendState:    colorBlend,
		Layout:             layout,
		RenderPass:         renderPass,
		Subpass:            0,
		BasePipelineIndex:  -1,
	}
}
