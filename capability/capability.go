// Package capability inspects what the loader, a physical device and a surface offer.
// Nothing here makes a decision or mutates state; see package selection for that.
package capability

import (
	"github.com/vkngwrapper/core/core1_0"
	"github.com/vkngwrapper/extensions/khr_surface"
)

type QueueFamily struct {
	Index            int
	SupportsGraphics bool
	QueueCount       int
}

type SwapchainSupport struct {
	Capabilities *khr_surface.SurfaceCapabilities
	Formats      []khr_surface.SurfaceFormat
	PresentModes []khr_surface.PresentMode
}

// Adequate reports whether a swapchain can be built at all: at least one format and one
// present mode.
func (s *SwapchainSupport) Adequate() bool {
	return s != nil && len(s.Formats) > 0 && len(s.PresentModes) > 0
}

// Querier is the read-only view of the driver used during negotiation.
type Querier interface {
	InstanceLayers() ([]string, error)
	InstanceExtensions() ([]string, error)

	DeviceProperties(device core1_0.PhysicalDevice) (*core1_0.PhysicalDeviceProperties, error)
	DeviceExtensions(device core1_0.PhysicalDevice) (map[string]struct{}, error)
	QueueFamilies(device core1_0.PhysicalDevice) []QueueFamily

	PresentationSupported(device core1_0.PhysicalDevice, familyIndex int, surface khr_surface.Surface) (bool, error)
	// SwapchainSupport returns either fully populated support data or an error marked
	// gpuerr.ErrQuery, never a partial result.
	SwapchainSupport(device core1_0.PhysicalDevice, surface khr_surface.Surface) (*SwapchainSupport, error)
}

// DeviceName returns the driver-reported name, or "unknown device" when properties can't
// be read.
func DeviceName(q Querier, device core1_0.PhysicalDevice) string {
	props, err := q.DeviceProperties(device)
	if err != nil || props == nil {
		return "unknown device"
	}
	return props.DriverName
}
