package gpuctx

import (
	"github.com/vkngwrapper/bringup/capability"
	"github.com/vkngwrapper/bringup/pipeline"
	"github.com/vkngwrapper/core/core1_0"
	"github.com/vkngwrapper/extensions/ext_debug_utils"
	"github.com/vkngwrapper/extensions/khr_surface"
	"github.com/vkngwrapper/extensions/khr_swapchain"
)

// Window is the windowing system's side of bring-up.
type Window interface {
	VulkanInstanceExtensions() []string
	CreateSurface(instance core1_0.Instance) (khr_surface.Surface, error)
	DrawableSize() (width, height int)
}

// Backend creates and destroys every object the builder owns, on top of the read-only
// capability queries.
type Backend interface {
	capability.Querier

	CreateInstance(info core1_0.InstanceCreateInfo) (core1_0.Instance, error)
	DestroyInstance(instance core1_0.Instance)

	CreateDebugMessenger(instance core1_0.Instance, info ext_debug_utils.DebugUtilsMessengerCreateInfo) (ext_debug_utils.DebugUtilsMessenger, error)
	DestroyDebugMessenger(messenger ext_debug_utils.DebugUtilsMessenger)

	DestroySurface(surface khr_surface.Surface)

	PhysicalDevices(instance core1_0.Instance) ([]core1_0.PhysicalDevice, error)

	CreateDevice(physicalDevice core1_0.PhysicalDevice, info core1_0.DeviceCreateInfo) (core1_0.Device, error)
	DestroyDevice(device core1_0.Device)
	Queue(device core1_0.Device, familyIndex int) core1_0.Queue

	CreateSwapchain(device core1_0.Device, info khr_swapchain.SwapchainCreateInfo) (khr_swapchain.Swapchain, error)
	SwapchainImages(swapchain khr_swapchain.Swapchain) ([]core1_0.Image, error)
	DestroySwapchain(swapchain khr_swapchain.Swapchain)

	CreateImageView(device core1_0.Device, info core1_0.ImageViewCreateInfo) (core1_0.ImageView, error)
	DestroyImageView(view core1_0.ImageView)

	PipelineDevice(device core1_0.Device) pipeline.Device
}
