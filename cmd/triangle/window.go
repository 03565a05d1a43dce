package main

import (
	"github.com/cockroachdb/errors"
	"github.com/veandco/go-sdl2/sdl"
	"github.com/vkngwrapper/core/core1_0"
	"github.com/vkngwrapper/extensions/khr_surface"
	vkng_sdl2 "github.com/vkngwrapper/integrations/sdl2"
)

// sdlWindow adapts an SDL window to gpuctx.Window.
type sdlWindow struct {
	window *sdl.Window
}

func openWindow(title string, width, height int) (*sdlWindow, error) {
	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return nil, errors.Wrap(err, "init SDL video")
	}

	window, err := sdl.CreateWindow(title, sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED, int32(width), int32(height), sdl.WINDOW_SHOWN|sdl.WINDOW_VULKAN)
	if err != nil {
		sdl.Quit()
		return nil, errors.Wrap(err, "create window")
	}

	return &sdlWindow{window: window}, nil
}

func (w *sdlWindow) VulkanInstanceExtensions() []string {
	return w.window.VulkanGetInstanceExtensions()
}

func (w *sdlWindow) CreateSurface(instance core1_0.Instance) (khr_surface.Surface, error) {
	surfaceLoader := khr_surface.CreateExtensionFromInstance(instance)
	return vkng_sdl2.CreateSurface(instance, surfaceLoader, w.window)
}

func (w *sdlWindow) DrawableSize() (int, int) {
	width, height := w.window.VulkanGetDrawableSize()
	return int(width), int(height)
}

// waitForQuit polls events until the window is closed.
func (w *sdlWindow) waitForQuit() {
	for {
		for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
			if _, ok := event.(*sdl.QuitEvent); ok {
				return
			}
		}
		sdl.Delay(16)
	}
}

func (w *sdlWindow) Close() {
	_ = w.window.Destroy()
	sdl.Quit()
}
