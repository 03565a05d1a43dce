package gpuctx

import (
	"github.com/cockroachdb/errors"
	"github.com/loov/hrtime"
	"github.com/vkngwrapper/bringup/gpuerr"
	"github.com/vkngwrapper/bringup/internal/gpulog"
	"github.com/vkngwrapper/core/common"
	"github.com/vkngwrapper/core/core1_0"
	"github.com/vkngwrapper/extensions/ext_debug_utils"
	"github.com/vkngwrapper/extensions/khr_portability_enumeration"
)

// CreateInstance enables the platform's extensions plus the profile's, after checking
// that the loader offers every requested layer and extension.
func (b *Builder) CreateInstance(platformExtensions []string) error {
	if err := b.expect(Uninitialized, "CreateInstance"); err != nil {
		return err
	}
	start := hrtime.Now()

	extensions := mergeNames(platformExtensions, b.profile.InstanceExtensions)
	layers := mergeNames(b.profile.InstanceLayers)

	if err := b.checkInstanceSupport(layers, extensions); err != nil {
		return err
	}

	instanceOptions := core1_0.InstanceCreateInfo{
		ApplicationName:       b.profile.ApplicationName,
		ApplicationVersion:    common.CreateVersion(1, 0, 0),
		EngineName:            "No Engine",
		EngineVersion:         common.CreateVersion(1, 0, 0),
		APIVersion:            common.Vulkan1_2,
		EnabledExtensionNames: extensions,
		EnabledLayerNames:     layers,
	}

	if contains(extensions, khr_portability_enumeration.ExtensionName) {
		instanceOptions.Flags |= khr_portability_enumeration.InstanceCreateEnumeratePortability
	}

	if b.profile.DebugMessenger {
		instanceOptions.Next = debugMessengerOptions()
	}

	instance, err := b.backend.CreateInstance(instanceOptions)
	if err != nil {
		return err
	}

	if b.profile.DebugMessenger {
		messenger, err := b.backend.CreateDebugMessenger(instance, debugMessengerOptions())
		if err != nil {
			b.backend.DestroyInstance(instance)
			return err
		}
		b.ctx.DebugMessenger = messenger
	}

	b.ctx.Instance = instance
	gpulog.Root.Info("instance created with %d layers and %d extensions", len(layers), len(extensions))
	b.advance(InstanceReady, start)
	return nil
}

func (b *Builder) checkInstanceSupport(layers, extensions []string) error {
	if len(layers) > 0 {
		available, err := b.backend.InstanceLayers()
		if err != nil {
			return err
		}
		for _, layer := range layers {
			if !contains(available, layer) {
				return gpuerr.Missingf("instance layer %s not available", layer)
			}
		}
	}

	available, err := b.backend.InstanceExtensions()
	if err != nil {
		return err
	}
	for _, extension := range extensions {
		if !contains(available, extension) {
			return gpuerr.Missingf("instance extension %s not available", extension)
		}
	}

	return nil
}

// BindSurface has window create its presentation surface on the instance.
func (b *Builder) BindSurface(window Window) error {
	if err := b.expect(InstanceReady, "BindSurface"); err != nil {
		return err
	}
	start := hrtime.Now()

	surface, err := window.CreateSurface(b.ctx.Instance)
	if err != nil {
		return errors.Wrap(err, "create window surface")
	}

	b.ctx.Surface = surface
	b.advance(SurfaceReady, start)
	return nil
}

func debugMessengerOptions() ext_debug_utils.DebugUtilsMessengerCreateInfo {
	return ext_debug_utils.DebugUtilsMessengerCreateInfo{
		MessageSeverity: ext_debug_utils.SeverityError | ext_debug_utils.SeverityWarning | ext_debug_utils.SeverityInfo,
		MessageType:     ext_debug_utils.TypeGeneral | ext_debug_utils.TypeValidation | ext_debug_utils.TypePerformance,
		UserCallback:    logValidation,
	}
}

func logValidation(msgType ext_debug_utils.DebugUtilsMessageTypeFlags, severity ext_debug_utils.DebugUtilsMessageSeverityFlags, data *ext_debug_utils.DebugUtilsMessengerCallbackData) bool {
	switch {
	case severity&ext_debug_utils.SeverityError != 0:
		gpulog.Debug.Error("[%s] %s", msgType, data.Message)
	case severity&ext_debug_utils.SeverityWarning != 0:
		gpulog.Debug.Warn("[%s] %s", msgType, data.Message)
	case severity&ext_debug_utils.SeverityInfo != 0:
		gpulog.Debug.Info("[%s] %s", msgType, data.Message)
	default:
		gpulog.Debug.Debug("[%s] %s", msgType, data.Message)
	}
	return false
}

func contains(names []string, name string) bool {
	for _, candidate := range names {
		if candidate == name {
			return true
		}
	}
	return false
}
