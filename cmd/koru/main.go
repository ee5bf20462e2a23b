// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"flag"
	"runtime"

	vk "github.com/devblok/vulkan"
	"github.com/gobuffalo/envy"
	"github.com/joho/godotenv"
	"github.com/koru3d/korures/core"
	"github.com/koru3d/korures/device"
	"github.com/koru3d/korures/render"
	"github.com/koru3d/korures/render/loaders"
	"github.com/koru3d/korures/render/vkr"
	log "github.com/sirupsen/logrus"
	"github.com/veandco/go-sdl2/sdl"
)

func init() {
	runtime.LockOSThread()
}

var (
	envFile = flag.String("env", "", "Load environment variables from this file first")
	verbose = flag.Bool("v", false, "Log resource lifecycle")
)

func newWindow(cfg core.DeviceConfiguration) (*sdl.Window, error) {
	return sdl.CreateWindow("Koru3D",
		sdl.WINDOWPOS_UNDEFINED,
		sdl.WINDOWPOS_UNDEFINED,
		int32(cfg.ScreenWidth),
		int32(cfg.ScreenHeight),
		sdl.WINDOW_VULKAN)
}

func main() {
	flag.Parse()
	if *verbose {
		log.SetLevel(log.DebugLevel)
	}

	if *envFile != "" {
		if err := godotenv.Load(*envFile); err != nil {
			log.WithError(err).Fatal("loading environment file")
		}
		envy.Reload()
	}
	configuration, err := core.ConfigurationFromEnv(core.DefaultConfiguration())
	if err != nil {
		log.WithError(err).Fatal("reading configuration")
	}

	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		log.WithError(err).Fatal("sdl.Init()")
	}
	defer sdl.Quit()

	if err := sdl.VulkanLoadLibrary(""); err != nil {
		log.WithError(err).Fatal("sdl.VulkanLoadLibrary()")
	}
	defer sdl.VulkanUnloadLibrary()

	window, err := newWindow(configuration.Device)
	if err != nil {
		log.WithError(err).Fatal("sdl.CreateWindow()")
	}
	defer window.Destroy()

	vulkan, err := device.NewVulkanDevice(device.DefaultVulkanApplicationInfo,
		sdl.VulkanGetVkGetInstanceProcAddr(), window.VulkanGetInstanceExtensions())
	if err != nil {
		log.WithError(err).Fatal("creating vulkan instance")
	}
	defer vulkan.Destroy()

	if err := vulkan.Open(configuration.Device.DeviceIndex, configuration.Device.DeviceExtensions); err != nil {
		log.WithError(err).Fatal("opening device")
	}
	logical, _ := vulkan.LogicalDevice()
	physical, _ := vulkan.PhysicalDevice()

	backend, err := vkr.New(logical, physical, vk.FormatB8g8r8a8Unorm)
	if err != nil {
		log.WithError(err).Fatal("creating renderer backend")
	}
	defer backend.Destroy()

	resources, err := render.NewResources(configuration.Resources, backend)
	if err != nil {
		log.WithError(err).Fatal("setting up resources")
	}
	defer resources.Close()
	resources.AttachLoader(loaders.Collada{})
	resources.AttachLoader(loaders.Vertex{})

	bundle, err := createPrograms(resources, configuration.Device.ShaderDirectory)
	if err != nil {
		log.WithError(err).Error("shaders unavailable")
	}

	scene, err := streamArchive(resources, configuration.Device.Archive)
	if err != nil {
		log.WithError(err).Fatal("opening archive")
	}

	run(configuration.Time, resources, scene)

	if bundle.IsValid() {
		resources.Discard(bundle)
	}
	// loads may still be reading from the archive
	resources.Close()
	scene.Close()

	if count, size := backend.Memory(); count > 0 {
		log.WithFields(log.Fields{
			"allocations": count,
			"bytes":       size,
		}).Warn("device memory still allocated")
	}
}

// run is the main loop, events are polled on their own ticker and
// resources are updated once per frame.
func run(cfg core.TimeConfiguration, resources *render.Resources, scene *scene) {
	time := core.NewTime(cfg)
	defer time.Stop()

	for {
		select {
		case <-time.EventTicker().C:
			for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
				switch et := event.(type) {
				case *sdl.KeyboardEvent:
					if et.Keysym.Sym == sdl.K_ESCAPE {
						log.Info("Event loop exited")
						return
					}
				case *sdl.QuitEvent:
					log.Info("Event loop exited")
					return
				}
			}
		case <-time.FpsTicker().C:
			resources.Update()
			scene.Report(resources, time.Frame())
		}
	}
}
