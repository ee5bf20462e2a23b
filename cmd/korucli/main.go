// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// korucli lists the rendering devices, or with -shaders checks that
// the shaders in a directory build on one of them.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	vk "github.com/devblok/vulkan"
	"github.com/koru3d/korures/core"
	"github.com/koru3d/korures/device"
	"github.com/koru3d/korures/render"
	"github.com/koru3d/korures/render/vkr"
	"github.com/koru3d/korures/resource"
	log "github.com/sirupsen/logrus"
)

var (
	deviceIndex = flag.Int("d", 0, "Device to build shaders on")
	shaderDir   = flag.String("shaders", "", "Build every shader found in this directory")
)

func main() {
	flag.Parse()

	vulkan, err := device.NewVulkanDevice(device.DefaultVulkanApplicationInfo, nil, nil)
	if err != nil {
		log.WithError(err).Fatal("creating vulkan instance")
	}
	defer vulkan.Destroy()

	if *shaderDir == "" {
		bytes, err := json.Marshal(vulkan.PhysicalDevices())
		if err != nil {
			log.WithError(err).Fatal("encoding device info")
		}
		fmt.Printf("%s\n", bytes)
		return
	}

	if err := checkShaders(vulkan); err != nil {
		log.WithError(err).Error("shader check failed")
		vulkan.Destroy()
		os.Exit(1)
	}
}

func checkShaders(vulkan *device.Vulkan) error {
	if err := vulkan.Open(*deviceIndex, nil); err != nil {
		return err
	}
	logical, _ := vulkan.LogicalDevice()
	physical, _ := vulkan.PhysicalDevice()

	backend, err := vkr.New(logical, physical, vk.FormatB8g8r8a8Unorm)
	if err != nil {
		return err
	}
	defer backend.Destroy()

	cfg := core.DefaultConfiguration().Resources
	resources, err := render.NewResources(cfg, backend)
	if err != nil {
		return err
	}
	defer resources.Close()

	setups, err := render.ShaderSetupsFromDirectory(*shaderDir)
	if err != nil {
		return err
	}

	var failed int
	for _, setup := range setups {
		id, err := resources.CreateShader(setup)
		if err != nil {
			return err
		}
		state, _ := resources.QueryState(id)
		if state != resource.Valid {
			failed++
		}
		fmt.Printf("%-6s %s\n", state, setup.Loc)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d shaders failed", failed, len(setups))
	}
	return nil
}
