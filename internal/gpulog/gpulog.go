// Package gpulog is the logger hierarchy shared by the bring-up packages.
package gpulog

import (
	"github.com/g3n/engine/util/logger"
)

var (
	Root      = newRoot()
	Caps      = logger.New("CAPS", Root)
	Device    = logger.New("DEVICE", Root)
	Swapchain = logger.New("SWAPCHAIN", Root)
	Pipeline  = logger.New("PIPELINE", Root)
	Debug     = logger.New("VALIDATION", Root)
)

func newRoot() *logger.Logger {
	l := logger.New("BRINGUP", nil)
	l.AddWriter(logger.NewConsole(false))
	l.SetLevel(logger.INFO)
	return l
}

// SetLevel applies level (logger.DEBUG .. logger.FATAL) to the root and every component logger.
func SetLevel(level int) {
	for _, l := range []*logger.Logger{Root, Caps, Device, Swapchain, Pipeline, Debug} {
		l.SetLevel(level)
	}
}
