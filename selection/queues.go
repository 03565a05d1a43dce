// Package selection decides which device, queue families and swapchain parameters to use.
// Every function is pure: inputs come from package capability, nothing is queried here.
package selection

import (
	"github.com/vkngwrapper/bringup/capability"
)

// QueueFamilyIndices holds the graphics and presentation family. A nil field is unset.
type QueueFamilyIndices struct {
	Graphics     *int
	Presentation *int
}

func (i QueueFamilyIndices) IsComplete() bool {
	return i.Graphics != nil && i.Presentation != nil
}

// Shared reports whether both roles are served by a single family.
func (i QueueFamilyIndices) Shared() bool {
	return i.IsComplete() && *i.Graphics == *i.Presentation
}

// Unique lists the distinct families, graphics first. Incomplete indices yield nil.
func (i QueueFamilyIndices) Unique() []int {
	if !i.IsComplete() {
		return nil
	}
	if i.Shared() {
		return []int{*i.Graphics}
	}
	return []int{*i.Graphics, *i.Presentation}
}

// SelectQueueFamilies walks every family once. The last graphics-capable family and the
// last presentable family win; the walk never stops early.
func SelectQueueFamilies(families []capability.QueueFamily, presentable func(familyIndex int) (bool, error)) (QueueFamilyIndices, error) {
	var indices QueueFamilyIndices

	for _, family := range families {
		if family.SupportsGraphics {
			index := family.Index
			indices.Graphics = &index
		}

		supported, err := presentable(family.Index)
		if err != nil {
			return QueueFamilyIndices{}, err
		}

		if supported {
			index := family.Index
			indices.Presentation = &index
		}
	}

	return indices, nil
}
