package selection

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/bringup/capability"
	"github.com/vkngwrapper/bringup/gpuerr"
	"github.com/vkngwrapper/core/core1_0"
	"github.com/vkngwrapper/extensions/khr_surface"
)

// undefinedExtent is the currentExtent width a surface reports when the swapchain decides
// its own size.
const undefinedExtent = 0xFFFFFFFF

// Plan is the full set of swapchain parameters chosen for a surface.
type Plan struct {
	Format      khr_surface.SurfaceFormat
	PresentMode khr_surface.PresentMode
	Extent      core1_0.Extent2D
	ImageCount  int
}

func PlanSwapchain(support *capability.SwapchainSupport, drawableWidth, drawableHeight int) (Plan, error) {
	if !support.Adequate() || support.Capabilities == nil {
		return Plan{}, errors.Mark(errors.New("swapchain support is incomplete"), gpuerr.ErrQuery)
	}

	format, err := ChooseSurfaceFormat(support.Formats)
	if err != nil {
		return Plan{}, err
	}

	extent, err := ChooseExtent(support.Capabilities, drawableWidth, drawableHeight)
	if err != nil {
		return Plan{}, err
	}

	imageCount, err := ImageCount(support.Capabilities)
	if err != nil {
		return Plan{}, err
	}

	return Plan{
		Format:      format,
		PresentMode: ChoosePresentMode(support.PresentModes),
		Extent:      extent,
		ImageCount:  imageCount,
	}, nil
}

// ChooseSurfaceFormat prefers 8-bit BGRA with a non-linear sRGB color space anywhere in
// formats and falls back to the first entry.
func ChooseSurfaceFormat(formats []khr_surface.SurfaceFormat) (khr_surface.SurfaceFormat, error) {
	if len(formats) == 0 {
		return khr_surface.SurfaceFormat{}, errors.Mark(errors.New("surface reports no formats"), gpuerr.ErrQuery)
	}

	for _, format := range formats {
		if format.Format == core1_0.FormatB8G8R8A8SRGB && format.ColorSpace == khr_surface.ColorSpaceSRGBNonlinear {
			return format, nil
		}
	}

	return formats[0], nil
}

// ChoosePresentMode prefers mailbox. FIFO is always available, so it is the fallback.
func ChoosePresentMode(modes []khr_surface.PresentMode) khr_surface.PresentMode {
	for _, mode := range modes {
		if mode == khr_surface.PresentModeMailbox {
			return mode
		}
	}

	return khr_surface.PresentModeFIFO
}

// ChooseExtent uses the surface's current extent when it is defined. Otherwise the
// drawable size is clamped per axis into the surface's image extent bounds.
func ChooseExtent(capabilities *khr_surface.SurfaceCapabilities, drawableWidth, drawableHeight int) (core1_0.Extent2D, error) {
	if !extentUndefined(capabilities.CurrentExtent) {
		return capabilities.CurrentExtent, nil
	}

	width, err := Clamp(drawableWidth, capabilities.MinImageExtent.Width, capabilities.MaxImageExtent.Width)
	if err != nil {
		return core1_0.Extent2D{}, errors.Wrap(err, "image extent width")
	}

	height, err := Clamp(drawableHeight, capabilities.MinImageExtent.Height, capabilities.MaxImageExtent.Height)
	if err != nil {
		return core1_0.Extent2D{}, errors.Wrap(err, "image extent height")
	}

	return core1_0.Extent2D{Width: width, Height: height}, nil
}

// ImageCount asks for one image more than the minimum, capped by the maximum when the
// surface has one (a maximum of 0 means unbounded).
func ImageCount(capabilities *khr_surface.SurfaceCapabilities) (int, error) {
	count := capabilities.MinImageCount + 1
	if capabilities.MaxImageCount <= 0 {
		return count, nil
	}

	count, err := Clamp(count, capabilities.MinImageCount, capabilities.MaxImageCount)
	if err != nil {
		return 0, errors.Wrap(err, "swapchain image count")
	}
	return count, nil
}

// The sentinel is 0xFFFFFFFF; bindings that carry extents as int may surface it as -1.
func extentUndefined(extent core1_0.Extent2D) bool {
	return int64(extent.Width) == undefinedExtent || extent.Width == -1
}
