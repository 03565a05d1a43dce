package capability

import (
	"sort"

	"github.com/vkngwrapper/bringup/gpuerr"
	"github.com/vkngwrapper/bringup/internal/gpulog"
	"github.com/vkngwrapper/core"
	"github.com/vkngwrapper/core/core1_0"
	"github.com/vkngwrapper/extensions/khr_surface"
)

// Vulkan answers capability queries through a vkngwrapper loader.
type Vulkan struct {
	Loader core.Loader
}

func NewVulkan(loader core.Loader) *Vulkan {
	return &Vulkan{Loader: loader}
}

func (v *Vulkan) InstanceLayers() ([]string, error) {
	layers, res, err := v.Loader.AvailableLayers()
	if err != nil {
		return nil, gpuerr.APICall("vkEnumerateInstanceLayerProperties", res, err)
	}

	return sortedKeys(layers), nil
}

func (v *Vulkan) InstanceExtensions() ([]string, error) {
	extensions, res, err := v.Loader.AvailableExtensions()
	if err != nil {
		return nil, gpuerr.APICall("vkEnumerateInstanceExtensionProperties", res, err)
	}

	return sortedKeys(extensions), nil
}

func (v *Vulkan) DeviceProperties(device core1_0.PhysicalDevice) (*core1_0.PhysicalDeviceProperties, error) {
	props, err := device.Properties()
	if err != nil {
		return nil, gpuerr.Queryf(err, "physical device properties")
	}
	return props, nil
}

func (v *Vulkan) DeviceExtensions(device core1_0.PhysicalDevice) (map[string]struct{}, error) {
	extensions, res, err := device.EnumerateDeviceExtensionProperties()
	if err != nil {
		return nil, gpuerr.APICall("vkEnumerateDeviceExtensionProperties", res, err)
	}

	names := make(map[string]struct{}, len(extensions))
	for name := range extensions {
		names[name] = struct{}{}
	}
	return names, nil
}

func (v *Vulkan) QueueFamilies(device core1_0.PhysicalDevice) []QueueFamily {
	properties := device.QueueFamilyProperties()

	families := make([]QueueFamily, 0, len(properties))
	for index, family := range properties {
		families = append(families, QueueFamily{
			Index:            index,
			SupportsGraphics: family.QueueFlags&core1_0.QueueGraphics != 0,
			QueueCount:       family.QueueCount,
		})
	}
	return families
}

func (v *Vulkan) PresentationSupported(device core1_0.PhysicalDevice, familyIndex int, surface khr_surface.Surface) (bool, error) {
	supported, res, err := surface.PhysicalDeviceSurfaceSupport(device, familyIndex)
	if err != nil {
		return false, gpuerr.APICall("vkGetPhysicalDeviceSurfaceSupportKHR", res, err)
	}
	return supported, nil
}

func (v *Vulkan) SwapchainSupport(device core1_0.PhysicalDevice, surface khr_surface.Surface) (*SwapchainSupport, error) {
	capabilities, res, err := surface.PhysicalDeviceSurfaceCapabilities(device)
	if err != nil {
		return nil, gpuerr.Queryf(gpuerr.APICall("vkGetPhysicalDeviceSurfaceCapabilitiesKHR", res, err), "surface capabilities")
	}

	formats, res, err := surface.PhysicalDeviceSurfaceFormats(device)
	if err != nil {
		return nil, gpuerr.Queryf(gpuerr.APICall("vkGetPhysicalDeviceSurfaceFormatsKHR", res, err), "surface formats")
	}

	presentModes, res, err := surface.PhysicalDeviceSurfacePresentModes(device)
	if err != nil {
		return nil, gpuerr.Queryf(gpuerr.APICall("vkGetPhysicalDeviceSurfacePresentModesKHR", res, err), "surface present modes")
	}

	gpulog.Caps.Debug("surface support: %d formats, %d present modes, images %d..%d",
		len(formats), len(presentModes), capabilities.MinImageCount, capabilities.MaxImageCount)

	return &SwapchainSupport{
		Capabilities: capabilities,
		Formats:      formats,
		PresentModes: presentModes,
	}, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
