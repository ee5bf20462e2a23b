// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package resource

import (
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/gobuffalo/envy"
)

func TestDefaultConfiguration(t *testing.T) {
	c := qt.New(t)
	cfg := DefaultConfiguration()

	c.Assert(cfg.Validate(), qt.IsNil)
	c.Assert(cfg.Pool(Mesh).AsyncThrottle, qt.Equals, uint32(DefaultMeshThrottle))
	c.Assert(cfg.Pool(Shader).AsyncThrottle, qt.Equals, uint32(0))
	c.Assert(cfg.Pool(StateBlock), qt.Equals, PoolConfiguration{})
}

func TestConfigurationValidate(t *testing.T) {
	c := qt.New(t)

	c.Assert(Configuration{RegistryCapacity: -1}.Validate(), qt.ErrorIs, ErrBadConfiguration)
	bad := Configuration{Pools: map[Type]PoolConfiguration{Invalid: {PoolSize: 1}}}
	c.Assert(bad.Validate(), qt.ErrorIs, ErrBadConfiguration)
	_, err := NewManager(bad)
	c.Assert(err, qt.ErrorIs, ErrBadConfiguration)
}

func TestConfigurationFromEnv(t *testing.T) {
	c := qt.New(t)

	envy.Temp(func() {
		envy.Set("KORU_SHADER_POOL_SIZE", "16")
		envy.Set("KORU_MESH_THROTTLE", "9")
		envy.Set("KORU_STATE_BLOCK_POOL_SIZE", "2")
		envy.Set("KORU_REGISTRY_CAPACITY", "64")

		base := DefaultConfiguration()
		cfg, err := ConfigurationFromEnv(base)
		c.Assert(err, qt.IsNil)
		c.Assert(cfg.Pool(Shader), qt.Equals, PoolConfiguration{PoolSize: 16})
		c.Assert(cfg.Pool(Mesh), qt.Equals, PoolConfiguration{PoolSize: DefaultPoolSize, AsyncThrottle: 9})
		c.Assert(cfg.Pool(StateBlock), qt.Equals, PoolConfiguration{PoolSize: 2})
		c.Assert(cfg.RegistryCapacity, qt.Equals, 64)

		// the base is left alone
		c.Assert(base.Pool(Shader).PoolSize, qt.Equals, uint32(DefaultPoolSize))
	})

	envy.Temp(func() {
		envy.Set("KORU_TEXTURE_POOL_SIZE", "lots")
		_, err := ConfigurationFromEnv(DefaultConfiguration())
		c.Assert(err, qt.ErrorIs, ErrBadConfiguration)
	})
}
