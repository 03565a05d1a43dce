package gpuctx

import (
	"github.com/cockroachdb/errors"
	"github.com/loov/hrtime"
	"github.com/vkngwrapper/bringup/capability"
	"github.com/vkngwrapper/bringup/gpuerr"
	"github.com/vkngwrapper/bringup/internal/gpulog"
	"github.com/vkngwrapper/bringup/selection"
	"github.com/vkngwrapper/core/core1_0"
)

// SelectPhysicalDevice takes the first device, in enumeration order, that can render and
// present to the bound surface with the profile's device extensions.
func (b *Builder) SelectPhysicalDevice() error {
	if err := b.expect(SurfaceReady, "SelectPhysicalDevice"); err != nil {
		return err
	}
	start := hrtime.Now()

	devices, err := b.backend.PhysicalDevices(b.ctx.Instance)
	if err != nil {
		return err
	}
	if len(devices) == 0 {
		return errors.Mark(errors.New("failed to find GPUs with Vulkan support"), gpuerr.ErrNoSuitableDevice)
	}

	for index, device := range devices {
		choice, reason := b.evaluateDevice(index, device)
		if choice == nil {
			gpulog.Device.Info("skipping device %d (%s): %s", index, capability.DeviceName(b.backend, device), reason)
			continue
		}

		gpulog.Device.Info("selected device %d (%s)", index, choice.Name)
		b.ctx.PhysicalDevice = choice
		b.advance(DeviceSelected, start)
		return nil
	}

	return errors.Mark(errors.Newf("none of %d devices is suitable", len(devices)), gpuerr.ErrNoSuitableDevice)
}

// evaluateDevice builds a fresh candidate for device. A failed query rejects the device
// rather than the whole selection.
func (b *Builder) evaluateDevice(index int, device core1_0.PhysicalDevice) (*PhysicalDeviceChoice, string) {
	surface := b.ctx.Surface

	indices, err := selection.SelectQueueFamilies(b.backend.QueueFamilies(device), func(familyIndex int) (bool, error) {
		return b.backend.PresentationSupported(device, familyIndex, surface)
	})
	if err != nil {
		return nil, "presentation support query failed: " + err.Error()
	}

	extensions, err := b.backend.DeviceExtensions(device)
	if err != nil {
		return nil, "extension query failed: " + err.Error()
	}

	candidate := selection.Candidate{
		Indices:    indices,
		Extensions: extensions,
	}

	if indices.IsComplete() && len(selection.MissingExtensions(extensions, b.profile.DeviceExtensions)) == 0 {
		candidate.Support, err = b.backend.SwapchainSupport(device, surface)
		if err != nil {
			return nil, "surface query failed: " + err.Error()
		}
	}

	if !selection.DeviceAcceptable(candidate, b.profile.DeviceExtensions) {
		return nil, selection.RejectionReason(candidate, b.profile.DeviceExtensions)
	}

	props, err := b.backend.DeviceProperties(device)
	if err != nil {
		gpulog.Device.Warn("device %d properties unavailable: %v", index, err)
	}

	name := "unknown device"
	if props != nil {
		name = props.DriverName
	}

	return &PhysicalDeviceChoice{
		Device:     device,
		Name:       name,
		Index:      index,
		Indices:    candidate.Indices,
		Support:    candidate.Support,
		Properties: props,
	}, ""
}
