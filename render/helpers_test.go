// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package render

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	qt "github.com/frankban/quicktest"
	glm "github.com/go-gl/mathgl/mgl32"
	"github.com/koru3d/korures/model"
	"github.com/koru3d/korures/resource"
)

var errDevice = errors.New("device refused")

func testConfiguration() resource.Configuration {
	return resource.Configuration{
		Pools: map[resource.Type]resource.PoolConfiguration{
			resource.Mesh:          {PoolSize: 4, AsyncThrottle: 2},
			resource.Shader:        {PoolSize: 4},
			resource.ProgramBundle: {PoolSize: 2},
			resource.Texture:       {PoolSize: 2},
		},
		RegistryCapacity: 16,
	}
}

func newTestResources(c *qt.C, dev Device) *Resources {
	r, err := NewResources(testConfiguration(), dev)
	c.Assert(err, qt.IsNil)
	c.Cleanup(r.Close)
	return r
}

func triangle() *model.Geometry {
	return &model.Geometry{
		Vertices: []model.Vertex{
			{Pos: glm.Vec3{0, 0, 0}, Color: model.DefaultColor},
			{Pos: glm.Vec3{1, 0, 0}, Color: model.DefaultColor},
			{Pos: glm.Vec3{0, 2, 0}, Color: model.DefaultColor},
		},
		Indices: []uint32{0, 1, 2},
	}
}

// settle updates r until id leaves Pending.
func settle(c *qt.C, r *Resources, id resource.ID) resource.State {
	for i := 0; i < 2000; i++ {
		r.Update()
		state, err := r.QueryState(id)
		c.Assert(err, qt.IsNil)
		if state != resource.Pending {
			return state
		}
		time.Sleep(time.Millisecond)
	}
	c.Fatalf("%s still pending", id)
	return resource.Pending
}

// drain updates r until no mesh load is queued or running.
func drain(c *qt.C, r *Resources) {
	for i := 0; i < 2000; i++ {
		r.Update()
		if r.meshes.Pending() == 0 {
			return
		}
		time.Sleep(time.Millisecond)
	}
	c.Fatal("mesh loads never finished")
}

type funcLoader struct {
	suffix string
	load   func(ctx context.Context, setup MeshSetup, data io.Reader) (*model.Geometry, error)
}

func (l *funcLoader) Accepts(setup MeshSetup) bool {
	return strings.HasSuffix(setup.Loc.Name, l.suffix)
}

func (l *funcLoader) Load(ctx context.Context, setup MeshSetup, data io.Reader) (*model.Geometry, error) {
	return l.load(ctx, setup, data)
}

type failingDevice struct {
	*NullDevice
	failUsage BufferUsage
}

func (d failingDevice) CreateBuffer(usage BufferUsage, data []byte) (interface{}, error) {
	if usage == d.failUsage {
		return nil, errDevice
	}
	return d.NullDevice.CreateBuffer(usage, data)
}
