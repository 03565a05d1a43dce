package gpuctx

import (
	"github.com/vkngwrapper/bringup/capability"
	"github.com/vkngwrapper/bringup/gpuerr"
	"github.com/vkngwrapper/bringup/pipeline"
	"github.com/vkngwrapper/core"
	"github.com/vkngwrapper/core/core1_0"
	"github.com/vkngwrapper/extensions/ext_debug_utils"
	"github.com/vkngwrapper/extensions/khr_surface"
	"github.com/vkngwrapper/extensions/khr_swapchain"
)

// Vulkan is the Backend backed by a real driver.
type Vulkan struct {
	*capability.Vulkan
}

func NewVulkan(loader core.Loader) *Vulkan {
	return &Vulkan{Vulkan: capability.NewVulkan(loader)}
}

func (v *Vulkan) CreateInstance(info core1_0.InstanceCreateInfo) (core1_0.Instance, error) {
	instance, res, err := v.Loader.CreateInstance(nil, info)
	return instance, gpuerr.APICall("vkCreateInstance", res, err)
}

func (v *Vulkan) DestroyInstance(instance core1_0.Instance) {
	instance.Destroy(nil)
}

func (v *Vulkan) CreateDebugMessenger(instance core1_0.Instance, info ext_debug_utils.DebugUtilsMessengerCreateInfo) (ext_debug_utils.DebugUtilsMessenger, error) {
	debugLoader := ext_debug_utils.CreateExtensionFromInstance(instance)
	messenger, res, err := debugLoader.CreateDebugUtilsMessenger(instance, nil, info)
	return messenger, gpuerr.APICall("vkCreateDebugUtilsMessengerEXT", res, err)
}

func (v *Vulkan) DestroyDebugMessenger(messenger ext_debug_utils.DebugUtilsMessenger) {
	messenger.Destroy(nil)
}

func (v *Vulkan) DestroySurface(surface khr_surface.Surface) {
	surface.Destroy(nil)
}

func (v *Vulkan) PhysicalDevices(instance core1_0.Instance) ([]core1_0.PhysicalDevice, error) {
	devices, res, err := instance.EnumeratePhysicalDevices()
	return devices, gpuerr.APICall("vkEnumeratePhysicalDevices", res, err)
}

func (v *Vulkan) CreateDevice(physicalDevice core1_0.PhysicalDevice, info core1_0.DeviceCreateInfo) (core1_0.Device, error) {
	device, res, err := physicalDevice.CreateDevice(nil, info)
	return device, gpuerr.APICall("vkCreateDevice", res, err)
}

func (v *Vulkan) DestroyDevice(device core1_0.Device) {
	device.Destroy(nil)
}

func (v *Vulkan) Queue(device core1_0.Device, familyIndex int) core1_0.Queue {
	return device.GetQueue(familyIndex, 0)
}

func (v *Vulkan) CreateSwapchain(device core1_0.Device, info khr_swapchain.SwapchainCreateInfo) (khr_swapchain.Swapchain, error) {
	swapchainExtension := khr_swapchain.CreateExtensionFromDevice(device)
	swapchain, res, err := swapchainExtension.CreateSwapchain(device, nil, info)
	return swapchain, gpuerr.APICall("vkCreateSwapchainKHR", res, err)
}

func (v *Vulkan) SwapchainImages(swapchain khr_swapchain.Swapchain) ([]core1_0.Image, error) {
	images, res, err := swapchain.SwapchainImages()
	return images, gpuerr.APICall("vkGetSwapchainImagesKHR", res, err)
}

func (v *Vulkan) DestroySwapchain(swapchain khr_swapchain.Swapchain) {
	swapchain.Destroy(nil)
}

func (v *Vulkan) CreateImageView(device core1_0.Device, info core1_0.ImageViewCreateInfo) (core1_0.ImageView, error) {
	view, res, err := device.CreateImageView(nil, info)
	return view, gpuerr.APICall("vkCreateImageView", res, err)
}

func (v *Vulkan) DestroyImageView(view core1_0.ImageView) {
	view.Destroy(nil)
}

func (v *Vulkan) PipelineDevice(device core1_0.Device) pipeline.Device {
	return pipeline.VulkanDevice{Device: device}
}
