package gpuctx

import (
	"github.com/loov/hrtime"
	"github.com/vkngwrapper/bringup/internal/gpulog"
	"github.com/vkngwrapper/core/core1_0"
)

// CreateLogicalDevice requests one queue from each distinct family the selected device
// uses.
func (b *Builder) CreateLogicalDevice() error {
	if err := b.expect(DeviceSelected, "CreateLogicalDevice"); err != nil {
		return err
	}
	start := hrtime.Now()

	choice := b.ctx.PhysicalDevice

	var queueFamilyOptions []core1_0.DeviceQueueCreateInfo
	queuePriority := float32(1.0)
	for _, queueFamily := range choice.Indices.Unique() {
		queueFamilyOptions = append(queueFamilyOptions, core1_0.DeviceQueueCreateInfo{
			QueueFamilyIndex: queueFamily,
			QueuePriorities:  []float32{queuePriority},
		})
	}

	device, err := b.backend.CreateDevice(choice.Device, core1_0.DeviceCreateInfo{
		QueueCreateInfos:      queueFamilyOptions,
		EnabledFeatures:       &core1_0.PhysicalDeviceFeatures{},
		EnabledExtensionNames: b.profile.DeviceExtensions,
	})
	if err != nil {
		return err
	}

	b.ctx.Device = &LogicalDeviceContext{
		Device:  device,
		Indices: choice.Indices,
	}
	gpulog.Device.Debug("logical device created with %d queue families", len(queueFamilyOptions))
	b.advance(DeviceReady, start)
	return nil
}

// RetrieveQueues fetches queue 0 of the graphics and presentation families. A shared
// family yields a single handle used for both.
func (b *Builder) RetrieveQueues() error {
	if err := b.expect(DeviceReady, "RetrieveQueues"); err != nil {
		return err
	}
	start := hrtime.Now()

	logical := b.ctx.Device
	logical.GraphicsQueue = b.backend.Queue(logical.Device, *logical.Indices.Graphics)

	if logical.Indices.Shared() {
		logical.PresentationQueue = logical.GraphicsQueue
	} else {
		logical.PresentationQueue = b.backend.Queue(logical.Device, *logical.Indices.Presentation)
	}

	b.advance(QueuesReady, start)
	return nil
}
