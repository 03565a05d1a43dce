package gpuctx

import (
	"github.com/vkngwrapper/bringup/pipeline"
	"github.com/vkngwrapper/extensions/ext_debug_utils"
	"github.com/vkngwrapper/extensions/khr_portability_enumeration"
	"github.com/vkngwrapper/extensions/khr_portability_subset"
	"github.com/vkngwrapper/extensions/khr_swapchain"
)

const ValidationLayer = "VK_LAYER_KHRONOS_validation"

// Profile is everything the builder requires from the platform and driver.
type Profile struct {
	ApplicationName string

	InstanceLayers     []string
	InstanceExtensions []string
	DeviceExtensions   []string

	// DebugMessenger routes validation output to the VALIDATION logger. It requires
	// the debug utils instance extension.
	DebugMessenger bool

	// PipelineCachePath enables the on-disk pipeline cache when non-empty.
	PipelineCachePath string
	ShaderGrowth      pipeline.GrowthPolicy
}

// DesktopProfile enables validation and the swapchain device extension.
func DesktopProfile() Profile {
	return Profile{
		ApplicationName:    "Hello Triangle",
		InstanceLayers:     []string{ValidationLayer},
		InstanceExtensions: []string{ext_debug_utils.ExtensionName},
		DeviceExtensions:   []string{khr_swapchain.ExtensionName},
		DebugMessenger:     true,
		ShaderGrowth:       pipeline.DefaultGrowth,
	}
}

// PortableProfile is DesktopProfile for portability implementations such as MoltenVK,
// which are only enumerated when the instance asks for them.
func PortableProfile() Profile {
	p := DesktopProfile()
	p.InstanceExtensions = append(p.InstanceExtensions, khr_portability_enumeration.ExtensionName)
	p.DeviceExtensions = append(p.DeviceExtensions, khr_portability_subset.ExtensionName)
	return p
}

// WithoutValidation drops the validation layer and the debug messenger.
func (p Profile) WithoutValidation() Profile {
	p.InstanceLayers = without(p.InstanceLayers, ValidationLayer)
	p.InstanceExtensions = without(p.InstanceExtensions, ext_debug_utils.ExtensionName)
	p.DebugMessenger = false
	return p
}

func without(names []string, drop string) []string {
	var kept []string
	for _, name := range names {
		if name != drop {
			kept = append(kept, name)
		}
	}
	return kept
}

// mergeNames concatenates lists, keeping the first occurrence of each name.
func mergeNames(lists ...[]string) []string {
	seen := make(map[string]struct{})
	var merged []string
	for _, list := range lists {
		for _, name := range list {
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			merged = append(merged, name)
		}
	}
	return merged
}
