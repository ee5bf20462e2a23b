// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package resource

import (
	"fmt"
	"strconv"

	"github.com/gobuffalo/envy"
)

// PoolConfiguration sizes the pool of one resource type.
type PoolConfiguration struct {
	// PoolSize is the fixed number of slots.
	PoolSize uint32

	// AsyncThrottle caps the asynchronous loads started per Update.
	// Zero makes the pool synchronous only.
	AsyncThrottle uint32
}

// Configuration is supplied once when the resource subsystem is set up.
type Configuration struct {
	Pools map[Type]PoolConfiguration

	// RegistryCapacity is the expected number of registered resources.
	RegistryCapacity int
}

// Defaults used by DefaultConfiguration.
const (
	DefaultPoolSize         = 128
	DefaultMeshThrottle     = 4
	DefaultRegistryCapacity = 1024
)

// DefaultConfiguration returns a configuration with every handled type
// given DefaultPoolSize slots and meshes loading asynchronously.
func DefaultConfiguration() Configuration {
	return Configuration{
		Pools: map[Type]PoolConfiguration{
			Texture:       {PoolSize: DefaultPoolSize},
			Mesh:          {PoolSize: DefaultPoolSize, AsyncThrottle: DefaultMeshThrottle},
			Shader:        {PoolSize: DefaultPoolSize},
			ProgramBundle: {PoolSize: DefaultPoolSize},
		},
		RegistryCapacity: DefaultRegistryCapacity,
	}
}

// Pool returns the configuration for typ, zero if none is set.
func (c Configuration) Pool(typ Type) PoolConfiguration {
	return c.Pools[typ]
}

// Validate checks the configuration for values no pool could be set up with.
func (c Configuration) Validate() error {
	if c.RegistryCapacity < 0 {
		return fmt.Errorf("registry capacity %d: %w", c.RegistryCapacity, ErrBadConfiguration)
	}
	for typ := range c.Pools {
		if typ == Invalid || typ > ConstantBlock {
			return fmt.Errorf("pool for %s: %w", typ, ErrBadConfiguration)
		}
	}
	return nil
}

var envNames = map[Type]string{
	Texture:       "TEXTURE",
	Mesh:          "MESH",
	Shader:        "SHADER",
	ProgramBundle: "PROGRAM_BUNDLE",
	StateBlock:    "STATE_BLOCK",
	ConstantBlock: "CONSTANT_BLOCK",
}

// ConfigurationFromEnv overlays base with KORU_<TYPE>_POOL_SIZE,
// KORU_<TYPE>_THROTTLE and KORU_REGISTRY_CAPACITY where they are set.
// Values in a .env file in the working directory are picked up as well.
func ConfigurationFromEnv(base Configuration) (Configuration, error) {
	cfg := Configuration{
		Pools:            make(map[Type]PoolConfiguration, len(base.Pools)),
		RegistryCapacity: base.RegistryCapacity,
	}
	for typ, pc := range base.Pools {
		cfg.Pools[typ] = pc
	}

	for _, typ := range Types() {
		pc, set := cfg.Pools[typ]
		name := envNames[typ]

		size, ok, err := envUint("KORU_" + name + "_POOL_SIZE")
		if err != nil {
			return Configuration{}, err
		}
		if ok {
			pc.PoolSize, set = size, true
		}

		throttle, ok, err := envUint("KORU_" + name + "_THROTTLE")
		if err != nil {
			return Configuration{}, err
		}
		if ok {
			pc.AsyncThrottle, set = throttle, true
		}

		if set {
			cfg.Pools[typ] = pc
		}
	}

	if raw := envy.Get("KORU_REGISTRY_CAPACITY", ""); raw != "" {
		capacity, err := strconv.Atoi(raw)
		if err != nil {
			return Configuration{}, fmt.Errorf("KORU_REGISTRY_CAPACITY=%q: %w", raw, ErrBadConfiguration)
		}
		cfg.RegistryCapacity = capacity
	}
	return cfg, cfg.Validate()
}

func envUint(key string) (uint32, bool, error) {
	raw := envy.Get(key, "")
	if raw == "" {
		return 0, false, nil
	}
	num, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, false, fmt.Errorf("%s=%q: %w", key, raw, ErrBadConfiguration)
	}
	return uint32(num), true, nil
}
