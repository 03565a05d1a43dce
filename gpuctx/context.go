package gpuctx

import (
	"github.com/vkngwrapper/bringup/capability"
	"github.com/vkngwrapper/bringup/internal/gpulog"
	"github.com/vkngwrapper/bringup/pipeline"
	"github.com/vkngwrapper/bringup/selection"
	"github.com/vkngwrapper/core/core1_0"
	"github.com/vkngwrapper/extensions/ext_debug_utils"
	"github.com/vkngwrapper/extensions/khr_surface"
	"github.com/vkngwrapper/extensions/khr_swapchain"
)

// PhysicalDeviceChoice is the device selection settled on, with everything learned about
// it during selection.
type PhysicalDeviceChoice struct {
	Device     core1_0.PhysicalDevice
	Name       string
	Index      int
	Indices    selection.QueueFamilyIndices
	Support    *capability.SwapchainSupport
	Properties *core1_0.PhysicalDeviceProperties
}

// LogicalDeviceContext holds the logical device and its queues. When both roles share a
// family, GraphicsQueue and PresentationQueue are the same handle.
type LogicalDeviceContext struct {
	Device            core1_0.Device
	Indices           selection.QueueFamilyIndices
	GraphicsQueue     core1_0.Queue
	PresentationQueue core1_0.Queue
}

type SwapchainContext struct {
	Handle      khr_swapchain.Swapchain
	Format      khr_surface.SurfaceFormat
	Extent      core1_0.Extent2D
	PresentMode khr_surface.PresentMode
	Images      []core1_0.Image
	ImageViews  []core1_0.ImageView
}

// Context owns every object created during bring-up.
type Context struct {
	Instance       core1_0.Instance
	DebugMessenger ext_debug_utils.DebugUtilsMessenger
	Surface        khr_surface.Surface
	PhysicalDevice *PhysicalDeviceChoice
	Device         *LogicalDeviceContext
	Swapchain      *SwapchainContext
	PipelineCache  *pipeline.Cache
	Pipeline       *pipeline.Context

	backend Backend
}

// Destroy releases everything in reverse creation order. It is safe to call more than
// once and on a partially built Context.
func (c *Context) Destroy() {
	if c.Device != nil && c.Device.Device != nil {
		pipelineDevice := c.backend.PipelineDevice(c.Device.Device)

		if c.Pipeline != nil {
			c.Pipeline.Destroy(pipelineDevice)
			c.Pipeline = nil
		}

		if c.PipelineCache != nil {
			c.PipelineCache.Destroy(pipelineDevice)
			c.PipelineCache = nil
		}
	}

	if c.Swapchain != nil {
		for i := len(c.Swapchain.ImageViews) - 1; i >= 0; i-- {
			c.backend.DestroyImageView(c.Swapchain.ImageViews[i])
		}
		c.Swapchain.ImageViews = nil

		if c.Swapchain.Handle != nil {
			c.backend.DestroySwapchain(c.Swapchain.Handle)
		}
		c.Swapchain = nil
	}

	if c.Device != nil {
		if c.Device.Device != nil {
			c.backend.DestroyDevice(c.Device.Device)
		}
		c.Device = nil
	}

	c.PhysicalDevice = nil

	if c.Surface != nil {
		c.backend.DestroySurface(c.Surface)
		c.Surface = nil
	}

	if c.DebugMessenger != nil {
		c.backend.DestroyDebugMessenger(c.DebugMessenger)
		c.DebugMessenger = nil
	}

	if c.Instance != nil {
		c.backend.DestroyInstance(c.Instance)
		c.Instance = nil
		gpulog.Root.Debug("gpu context destroyed")
	}
}
