package gpuctx

import (
	"github.com/loov/hrtime"
	"github.com/vkngwrapper/bringup/internal/gpulog"
	"github.com/vkngwrapper/bringup/pipeline"
)

// BuildPipeline assembles the render pass and graphics pipeline for the swapchain format
// and extent, seeding and saving the pipeline cache when the profile names one.
func (b *Builder) BuildPipeline(shaders pipeline.ShaderBinaries) error {
	if err := b.expect(ImageViewsReady, "BuildPipeline"); err != nil {
		return err
	}
	start := hrtime.Now()

	device := b.backend.PipelineDevice(b.ctx.Device.Device)
	assembler := &pipeline.Assembler{Device: device}

	props := b.ctx.PhysicalDevice.Properties
	switch {
	case b.profile.PipelineCachePath == "":
	case props == nil:
		gpulog.Pipeline.Warn("pipeline cache %s disabled: device properties unavailable", b.profile.PipelineCachePath)
	default:
		cache, err := pipeline.OpenCache(device, b.profile.PipelineCachePath, pipeline.IdentityFromProperties(props))
		if err != nil {
			return err
		}
		assembler.Cache = cache
	}

	swapchain := b.ctx.Swapchain
	ctx, err := assembler.Assemble(shaders, swapchain.Format.Format, swapchain.Extent)
	if err != nil {
		assembler.Cache.Destroy(device)
		return err
	}

	if assembler.Cache != nil {
		if err := assembler.Cache.Save(device); err != nil {
			gpulog.Pipeline.Warn("pipeline cache not saved: %v", err)
		}
	}

	b.ctx.PipelineCache = assembler.Cache
	b.ctx.Pipeline = ctx
	b.advance(PipelineReady, start)
	return nil
}
