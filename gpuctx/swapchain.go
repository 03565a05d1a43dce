package gpuctx

import (
	"github.com/loov/hrtime"
	"github.com/vkngwrapper/bringup/internal/gpulog"
	"github.com/vkngwrapper/bringup/selection"
	"github.com/vkngwrapper/core/core1_0"
	"github.com/vkngwrapper/extensions/khr_surface"
	"github.com/vkngwrapper/extensions/khr_swapchain"
)

// CreateSwapchain builds the swapchain for a drawable of the given size and retrieves
// its images. The driver may hand back more images than requested.
func (b *Builder) CreateSwapchain(drawableWidth, drawableHeight int) error {
	if err := b.expect(QueuesReady, "CreateSwapchain"); err != nil {
		return err
	}
	start := hrtime.Now()

	support := b.ctx.PhysicalDevice.Support
	plan, err := selection.PlanSwapchain(support, drawableWidth, drawableHeight)
	if err != nil {
		return err
	}

	indices := b.ctx.Device.Indices
	sharingMode := core1_0.SharingModeExclusive
	var queueFamilyIndices []int

	if !indices.Shared() {
		sharingMode = core1_0.SharingModeConcurrent
		queueFamilyIndices = append(queueFamilyIndices, *indices.Graphics, *indices.Presentation)
	}

	swapchain, err := b.backend.CreateSwapchain(b.ctx.Device.Device, khr_swapchain.SwapchainCreateInfo{
		Surface: b.ctx.Surface,

		MinImageCount:    plan.ImageCount,
		ImageFormat:      plan.Format.Format,
		ImageColorSpace:  plan.Format.ColorSpace,
		ImageExtent:      plan.Extent,
		ImageArrayLayers: 1,
		ImageUsage:       core1_0.ImageUsageColorAttachment,

		ImageSharingMode:   sharingMode,
		QueueFamilyIndices: queueFamilyIndices,

		PreTransform:   support.Capabilities.CurrentTransform,
		CompositeAlpha: khr_surface.CompositeAlphaOpaque,
		PresentMode:    plan.PresentMode,
		Clipped:        true,
	})
	if err != nil {
		return err
	}

	images, err := b.backend.SwapchainImages(swapchain)
	if err != nil {
		b.backend.DestroySwapchain(swapchain)
		return err
	}

	if len(images) != plan.ImageCount {
		gpulog.Swapchain.Debug("requested %d images, driver created %d", plan.ImageCount, len(images))
	}
	gpulog.Swapchain.Info("swapchain %dx%d, %d images, present mode %v",
		plan.Extent.Width, plan.Extent.Height, len(images), plan.PresentMode)

	b.ctx.Swapchain = &SwapchainContext{
		Handle:      swapchain,
		Format:      plan.Format,
		Extent:      plan.Extent,
		PresentMode: plan.PresentMode,
		Images:      images,
	}
	b.advance(SwapchainReady, start)
	return nil
}

// CreateImageViews creates one 2D color view for each retrieved swapchain image.
func (b *Builder) CreateImageViews() error {
	if err := b.expect(SwapchainReady, "CreateImageViews"); err != nil {
		return err
	}
	start := hrtime.Now()

	swapchain := b.ctx.Swapchain
	imageViews := make([]core1_0.ImageView, 0, len(swapchain.Images))
	for _, image := range swapchain.Images {
		view, err := b.backend.CreateImageView(b.ctx.Device.Device, imageViewOptions(image, swapchain.Format.Format))
		if err != nil {
			for i := len(imageViews) - 1; i >= 0; i-- {
				b.backend.DestroyImageView(imageViews[i])
			}
			return err
		}

		imageViews = append(imageViews, view)
	}

	swapchain.ImageViews = imageViews
	b.advance(ImageViewsReady, start)
	return nil
}

func imageViewOptions(image core1_0.Image, format core1_0.Format) core1_0.ImageViewCreateInfo {
	return core1_0.ImageViewCreateInfo{
		Image:    image,
		ViewType: core1_0.ImageViewType2D,
		Format:   format,
		Components: core1_0.ComponentMapping{
			R: core1_0.ComponentSwizzleIdentity,
			G: core1_0.ComponentSwizzleIdentity,
			B: core1_0.ComponentSwizzleIdentity,
			A: core1_0.ComponentSwizzleIdentity,
		},
		SubresourceRange: core1_0.ImageSubresourceRange{
			AspectMask:     core1_0.ImageAspectColor,
			BaseMipLevel:   0,
			LevelCount:     1,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
	}
}
