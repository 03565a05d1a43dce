// Command triangle opens a window and brings up a Vulkan context with a graphics pipeline
// for a single triangle, then waits for the window to close.
package main

import (
	"flag"
	"os"
	"runtime"

	"github.com/cockroachdb/errors"
	"github.com/g3n/engine/util/logger"
	"github.com/veandco/go-sdl2/sdl"
	"github.com/vkngwrapper/bringup/gpuctx"
	"github.com/vkngwrapper/bringup/internal/gpulog"
	"github.com/vkngwrapper/bringup/pipeline"
	"github.com/vkngwrapper/core"
)

type options struct {
	vertPath      string
	fragPath      string
	portable      bool
	noValidation  bool
	pipelineCache string
	verbose       bool
	width         int
	height        int
}

func parseOptions(args []string) (options, error) {
	var opts options

	flags := flag.NewFlagSet("triangle", flag.ContinueOnError)
	flags.StringVar(&opts.vertPath, "vert", "shaders/vert.spv", "vertex shader SPIR-V `file`")
	flags.StringVar(&opts.fragPath, "frag", "shaders/frag.spv", "fragment shader SPIR-V `file`")
	flags.BoolVar(&opts.portable, "portable", runtime.GOOS == "darwin", "enable portability enumeration (MoltenVK)")
	flags.BoolVar(&opts.noValidation, "no-validation", false, "disable the validation layer and debug messenger")
	flags.StringVar(&opts.pipelineCache, "pipeline-cache", "", "persist the pipeline cache to `file`")
	flags.BoolVar(&opts.verbose, "v", false, "debug logging")
	flags.IntVar(&opts.width, "width", 800, "window width")
	flags.IntVar(&opts.height, "height", 600, "window height")

	if err := flags.Parse(args); err != nil {
		return options{}, err
	}
	if opts.width <= 0 || opts.height <= 0 {
		return options{}, errors.Newf("window size %dx%d must be positive", opts.width, opts.height)
	}
	return opts, nil
}

func (o options) profile() gpuctx.Profile {
	profile := gpuctx.DesktopProfile()
	if o.portable {
		profile = gpuctx.PortableProfile()
	}
	if o.noValidation {
		profile = profile.WithoutValidation()
	}
	profile.PipelineCachePath = o.pipelineCache
	return profile
}

// fail prefixes err with the part of the program that failed.
func fail(component string, err error) error {
	return errors.Wrap(err, component)
}

func run(opts options) error {
	if opts.verbose {
		gpulog.SetLevel(logger.DEBUG)
	}

	profile := opts.profile()

	shaders, err := pipeline.LoadShaderBinaries(opts.vertPath, opts.fragPath, profile.ShaderGrowth)
	if err != nil {
		return fail("shaders", err)
	}

	window, err := openWindow(profile.ApplicationName, opts.width, opts.height)
	if err != nil {
		return fail("window", err)
	}
	defer window.Close()

	loader, err := core.CreateLoaderFromProcAddr(sdl.VulkanGetVkGetInstanceProcAddr())
	if err != nil {
		return fail("loader", err)
	}

	ctx, err := gpuctx.Build(gpuctx.NewVulkan(loader), profile, window, shaders)
	if err != nil {
		return fail("gpu", err)
	}
	defer ctx.Destroy()

	window.waitForQuit()
	return nil
}

func main() {
	runtime.LockOSThread()

	opts, err := parseOptions(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		gpulog.Root.Error("flags: %v", err)
		os.Exit(2)
	}

	if err := run(opts); err != nil {
		gpulog.Root.Error("%+v", err)
		os.Exit(1)
	}
}
