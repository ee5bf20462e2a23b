// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gobuffalo/envy"
	"github.com/koru3d/korures/resource"
)

// Configuration is used to configure the engine
type Configuration struct {
	Time      TimeConfiguration
	Device    DeviceConfiguration
	Resources resource.Configuration
}

// TimeConfiguration is used to configure time services
type TimeConfiguration struct {
	// FramesPerSecond caps frames per second that is put out
	// To unlimit, set to 0
	FramesPerSecond int

	// EventPollDelay is the time between event polls in milliseconds
	EventPollDelay int
}

// DeviceConfiguration is used to configure the rendering device
type DeviceConfiguration struct {
	DeviceIndex      int
	DeviceExtensions []string

	ScreenWidth  uint32
	ScreenHeight uint32

	// ShaderDirectory is scanned for compiled shaders on start.
	ShaderDirectory string

	// Archive is a kar archive meshes are streamed from.
	Archive string
}

// DefaultConfiguration returns the configuration the engine starts with.
func DefaultConfiguration() Configuration {
	return Configuration{
		Time: TimeConfiguration{
			FramesPerSecond: 60,
			EventPollDelay:  10,
		},
		Device: DeviceConfiguration{
			ScreenWidth:     800,
			ScreenHeight:    600,
			ShaderDirectory: "./shaders",
		},
		Resources: resource.DefaultConfiguration(),
	}
}

// ConfigurationFromEnv overlays base with values from the environment.
// KORU_FPS, KORU_EVENT_POLL_DELAY, KORU_DEVICE, KORU_DEVICE_EXTENSIONS,
// KORU_SCREEN_WIDTH, KORU_SCREEN_HEIGHT, KORU_SHADERS and KORU_ARCHIVE
// are read here, resource pools are configured as resource.ConfigurationFromEnv does.
func ConfigurationFromEnv(base Configuration) (Configuration, error) {
	cfg := base
	var err error

	ints := []struct {
		key string
		dst *int
	}{
		{"KORU_FPS", &cfg.Time.FramesPerSecond},
		{"KORU_EVENT_POLL_DELAY", &cfg.Time.EventPollDelay},
		{"KORU_DEVICE", &cfg.Device.DeviceIndex},
	}
	for _, v := range ints {
		if err = envInt(v.key, v.dst); err != nil {
			return Configuration{}, err
		}
	}

	for key, dst := range map[string]*uint32{
		"KORU_SCREEN_WIDTH":  &cfg.Device.ScreenWidth,
		"KORU_SCREEN_HEIGHT": &cfg.Device.ScreenHeight,
	} {
		var num int
		if err = envInt(key, &num); err != nil {
			return Configuration{}, err
		}
		if num > 0 {
			*dst = uint32(num)
		}
	}

	if ext := envy.Get("KORU_DEVICE_EXTENSIONS", ""); ext != "" {
		cfg.Device.DeviceExtensions = strings.Split(ext, ",")
	}
	cfg.Device.ShaderDirectory = envy.Get("KORU_SHADERS", cfg.Device.ShaderDirectory)
	cfg.Device.Archive = envy.Get("KORU_ARCHIVE", cfg.Device.Archive)

	if cfg.Resources, err = resource.ConfigurationFromEnv(base.Resources); err != nil {
		return Configuration{}, err
	}
	return cfg, nil
}

func envInt(key string, dst *int) error {
	raw := envy.Get(key, "")
	if raw == "" {
		return nil
	}
	num, err := strconv.Atoi(raw)
	if err != nil || num < 0 {
		return fmt.Errorf("%s=%q: %w", key, raw, resource.ErrBadConfiguration)
	}
	*dst = num
	return nil
}
