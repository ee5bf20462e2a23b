// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package render

import (
	"fmt"
	"io"
	"runtime"

	"github.com/koru3d/korures/resource"
	log "github.com/sirupsen/logrus"
)

// Resources owns a pool for each rendering resource type and
// routes creation and discards through a single Manager.
type Resources struct {
	manager *resource.Manager
	device  Device

	meshFactory *MeshFactory

	meshes   *resource.Pool[MeshSetup, *Mesh]
	shaders  *resource.Pool[ShaderSetup, *Shader]
	bundles  *resource.Pool[ProgramBundleSetup, *ProgramBundle]
	textures *resource.Pool[TextureSetup, *Texture]
}

// NewResources sets up pools for meshes, shaders, program bundles and
// textures as configured. A type configured with a zero pool size
// gets no pool, creating resources of it fails with ErrUnhandledType.
func NewResources(cfg resource.Configuration, dev Device) (*Resources, error) {
	if dev == nil {
		return nil, ErrNoDevice
	}
	manager, err := resource.NewManager(cfg)
	if err != nil {
		return nil, err
	}

	r := &Resources{
		manager:     manager,
		device:      dev,
		meshFactory: NewMeshFactory(dev, int64(runtime.GOMAXPROCS(0))),
	}

	if c := cfg.Pool(resource.Mesh); c.PoolSize > 0 {
		r.meshes = &resource.Pool[MeshSetup, *Mesh]{}
		if err := r.register(r.meshes.Setup(r.meshFactory, c.PoolSize, c.AsyncThrottle, resource.Mesh), r.meshes); err != nil {
			return nil, err
		}
	}
	if c := cfg.Pool(resource.Shader); c.PoolSize > 0 {
		r.shaders = &resource.Pool[ShaderSetup, *Shader]{}
		if err := r.register(r.shaders.Setup(NewShaderFactory(dev), c.PoolSize, c.AsyncThrottle, resource.Shader), r.shaders); err != nil {
			return nil, err
		}
	}
	if c := cfg.Pool(resource.ProgramBundle); c.PoolSize > 0 {
		if r.shaders == nil {
			r.Close()
			return nil, fmt.Errorf("program bundles without a shader pool: %w", resource.ErrBadConfiguration)
		}
		r.bundles = &resource.Pool[ProgramBundleSetup, *ProgramBundle]{}
		if err := r.register(r.bundles.Setup(NewProgramBundleFactory(dev, r.shaders), c.PoolSize, c.AsyncThrottle, resource.ProgramBundle), r.bundles); err != nil {
			return nil, err
		}
	}
	if c := cfg.Pool(resource.Texture); c.PoolSize > 0 {
		r.textures = &resource.Pool[TextureSetup, *Texture]{}
		if err := r.register(r.textures.Setup(NewTextureFactory(dev), c.PoolSize, c.AsyncThrottle, resource.Texture), r.textures); err != nil {
			return nil, err
		}
	}

	log.WithFields(log.Fields{
		"meshes":   cfg.Pool(resource.Mesh).PoolSize,
		"shaders":  cfg.Pool(resource.Shader).PoolSize,
		"bundles":  cfg.Pool(resource.ProgramBundle).PoolSize,
		"textures": cfg.Pool(resource.Texture).PoolSize,
	}).Debug("resources set up")
	return r, nil
}

// register hands a freshly set up pool to the manager. On failure
// everything set up so far is torn down.
func (r *Resources) register(setupErr error, pool resource.Pooler) error {
	err := setupErr
	if err == nil {
		if err = r.manager.Register(pool); err != nil {
			pool.Discard()
		}
	}
	if err != nil {
		r.Close()
	}
	return err
}

// Manager gives access to the underlying Manager.
func (r *Resources) Manager() *resource.Manager {
	return r.manager
}

// AttachLoader adds a mesh loader used by CreateMeshAsync.
func (r *Resources) AttachLoader(loader MeshLoader) {
	r.meshFactory.AttachLoader(loader)
}

// CreateMesh creates a mesh from the geometry in setup.
func (r *Resources) CreateMesh(setup MeshSetup) (resource.ID, error) {
	return resource.Create[MeshSetup, *Mesh](r.manager, setup)
}

// CreateMeshAsync creates a mesh that is loaded from data by an attached
// loader. data must stay readable until the mesh leaves Pending.
func (r *Resources) CreateMeshAsync(setup MeshSetup, data io.Reader) (resource.ID, error) {
	return resource.CreateAsync[MeshSetup, *Mesh](r.manager, setup, data)
}

// CreateShader creates a shader module.
func (r *Resources) CreateShader(setup ShaderSetup) (resource.ID, error) {
	return resource.Create[ShaderSetup, *Shader](r.manager, setup)
}

// CreateProgramBundle links the programs in setup. The bundle holds
// a reference to every shader it uses.
func (r *Resources) CreateProgramBundle(setup ProgramBundleSetup) (resource.ID, error) {
	return resource.Create[ProgramBundleSetup, *ProgramBundle](r.manager, setup)
}

// CreateTexture decodes and uploads a texture.
func (r *Resources) CreateTexture(setup TextureSetup) (resource.ID, error) {
	return resource.Create[TextureSetup, *Texture](r.manager, setup)
}

// Lookup returns the ID registered under loc, or resource.InvalidID.
func (r *Resources) Lookup(loc resource.Locator) resource.ID {
	return r.manager.Lookup(loc)
}

// Discard drops a reference to id, destroying it and whatever
// it depends on once nothing references them.
func (r *Resources) Discard(id resource.ID) error {
	return r.manager.Discard(id)
}

// QueryState returns the state of the resource behind id.
func (r *Resources) QueryState(id resource.ID) (resource.State, error) {
	return r.manager.QueryState(id)
}

// Update progresses asynchronous loads. Call once per tick.
func (r *Resources) Update() {
	r.manager.Update()
}

// Mesh returns the mesh behind id if it is Valid.
func (r *Resources) Mesh(id resource.ID) (*Mesh, bool) {
	if r.meshes == nil || id.Type != resource.Mesh {
		return nil, false
	}
	return r.meshes.Resource(id)
}

// Shader returns the shader behind id if it is Valid.
func (r *Resources) Shader(id resource.ID) (*Shader, bool) {
	if r.shaders == nil || id.Type != resource.Shader {
		return nil, false
	}
	return r.shaders.Resource(id)
}

// ProgramBundle returns the bundle behind id if it is Valid.
func (r *Resources) ProgramBundle(id resource.ID) (*ProgramBundle, bool) {
	if r.bundles == nil || id.Type != resource.ProgramBundle {
		return nil, false
	}
	return r.bundles.Resource(id)
}

// Texture returns the texture behind id if it is Valid.
func (r *Resources) Texture(id resource.ID) (*Texture, bool) {
	if r.textures == nil || id.Type != resource.Texture {
		return nil, false
	}
	return r.textures.Resource(id)
}

// Close destroys every resource. Resources is unusable afterwards.
func (r *Resources) Close() {
	r.manager.Close()
}
