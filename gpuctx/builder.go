// Package gpuctx brings up a Vulkan context one stage at a time: instance, surface,
// physical device, logical device, queues, swapchain, image views and pipeline. Stages
// must run in that order, and the resulting Context tears them down in reverse.
package gpuctx

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/loov/hrtime"
	"github.com/vkngwrapper/bringup/gpuerr"
	"github.com/vkngwrapper/bringup/internal/gpulog"
	"github.com/vkngwrapper/bringup/pipeline"
)

type Stage int

const (
	Uninitialized Stage = iota
	InstanceReady
	SurfaceReady
	DeviceSelected
	DeviceReady
	QueuesReady
	SwapchainReady
	ImageViewsReady
	PipelineReady
)

var stageNames = map[Stage]string{
	Uninitialized:   "Uninitialized",
	InstanceReady:   "InstanceReady",
	SurfaceReady:    "SurfaceReady",
	DeviceSelected:  "DeviceSelected",
	DeviceReady:     "DeviceReady",
	QueuesReady:     "QueuesReady",
	SwapchainReady:  "SwapchainReady",
	ImageViewsReady: "ImageViewsReady",
	PipelineReady:   "PipelineReady",
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return "Stage(unknown)"
}

// Builder creates the handles of a Context in order. It is not safe for concurrent use.
type Builder struct {
	backend Backend
	profile Profile
	stage   Stage
	ctx     *Context
}

func NewBuilder(backend Backend, profile Profile) *Builder {
	return &Builder{
		backend: backend,
		profile: profile,
		ctx:     &Context{backend: backend},
	}
}

func (b *Builder) Stage() Stage {
	return b.stage
}

// expect fails with gpuerr.ErrStageOrder unless the builder is in stage.
func (b *Builder) expect(stage Stage, operation string) error {
	if b.stage != stage {
		return errors.Mark(errors.Newf("%s requires stage %s, builder is in %s", operation, stage, b.stage), gpuerr.ErrStageOrder)
	}
	return nil
}

func (b *Builder) advance(next Stage, start time.Duration) {
	gpulog.Root.Debug("%s -> %s in %s", b.stage, next, hrtime.Since(start))
	b.stage = next
}

// Context hands over the finished aggregate. It is only available once the pipeline is
// built.
func (b *Builder) Context() (*Context, error) {
	if err := b.expect(PipelineReady, "Context"); err != nil {
		return nil, err
	}
	return b.ctx, nil
}

// Abort destroys whatever has been created so far and returns the builder to
// Uninitialized.
func (b *Builder) Abort() {
	b.ctx.Destroy()
	b.ctx = &Context{backend: b.backend}
	b.stage = Uninitialized
}

// Build runs every stage against window. On the first failure everything created so
// far is destroyed and the error returned.
func Build(backend Backend, profile Profile, window Window, shaders pipeline.ShaderBinaries) (*Context, error) {
	b := NewBuilder(backend, profile)
	start := hrtime.Now()

	steps := []func() error{
		func() error { return b.CreateInstance(window.VulkanInstanceExtensions()) },
		func() error { return b.BindSurface(window) },
		b.SelectPhysicalDevice,
		b.CreateLogicalDevice,
		b.RetrieveQueues,
		func() error {
			width, height := window.DrawableSize()
			return b.CreateSwapchain(width, height)
		},
		b.CreateImageViews,
		func() error { return b.BuildPipeline(shaders) },
	}

	for _, step := range steps {
		if err := step(); err != nil {
			failed := b.stage
			b.Abort()
			return nil, errors.Wrapf(err, "bring-up failed after %s", failed)
		}
	}

	gpulog.Root.Info("gpu context ready in %s", hrtime.Since(start))
	return b.Context()
}
