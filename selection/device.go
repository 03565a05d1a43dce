package selection

import (
	"strings"

	"github.com/vkngwrapper/bringup/capability"
)

// Candidate is everything known about one physical device during selection. It is built
// fresh for every device so nothing carries over between candidates.
type Candidate struct {
	Indices    QueueFamilyIndices
	Extensions map[string]struct{}
	Support    *capability.SwapchainSupport
}

func DeviceAcceptable(c Candidate, requiredExtensions []string) bool {
	return c.Indices.IsComplete() &&
		len(MissingExtensions(c.Extensions, requiredExtensions)) == 0 &&
		c.Support.Adequate()
}

// MissingExtensions returns the entries of required absent from available, in order.
func MissingExtensions(available map[string]struct{}, required []string) []string {
	var missing []string
	for _, name := range required {
		if _, ok := available[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// RejectionReason explains why c is not acceptable, or returns "" when it is.
func RejectionReason(c Candidate, requiredExtensions []string) string {
	switch {
	case !c.Indices.IsComplete():
		if c.Indices.Graphics == nil {
			return "no graphics queue family"
		}
		return "no queue family can present to the surface"
	case len(MissingExtensions(c.Extensions, requiredExtensions)) > 0:
		return "missing device extensions " + strings.Join(MissingExtensions(c.Extensions, requiredExtensions), ", ")
	case c.Support == nil:
		return "surface support not queried"
	case len(c.Support.Formats) == 0:
		return "surface reports no formats"
	case len(c.Support.PresentModes) == 0:
		return "surface reports no present modes"
	}
	return ""
}
