// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package render

import (
	"context"
	"fmt"
	"io"

	"github.com/koru3d/korures/model"
	"github.com/koru3d/korures/resource"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"
)

// MeshLoader decodes mesh data streams into geometry. Load runs away from
// the owner goroutine and must not touch the Device. It should give up
// when ctx is done.
type MeshLoader interface {
	Accepts(setup MeshSetup) bool
	Load(ctx context.Context, setup MeshSetup, data io.Reader) (*model.Geometry, error)
}

// NewMeshFactory creates a MeshFactory that runs at most workers
// decodes at the same time.
func NewMeshFactory(dev Device, workers int64) *MeshFactory {
	if workers < 1 {
		workers = 1
	}
	return &MeshFactory{
		device:  dev,
		workers: semaphore.NewWeighted(workers),
	}
}

// MeshFactory builds meshes from geometry, or from data streams through
// the attached loaders.
type MeshFactory struct {
	device  Device
	loaders []MeshLoader
	workers *semaphore.Weighted
}

// AttachLoader adds a loader. Loaders are asked in the order they were
// attached, the first to accept a setup loads it.
func (f *MeshFactory) AttachLoader(loader MeshLoader) {
	f.loaders = append(f.loaders, loader)
}

func (f *MeshFactory) loader(setup MeshSetup) MeshLoader {
	for _, l := range f.loaders {
		if l.Accepts(setup) {
			return l
		}
	}
	return nil
}

// Create implements resource.Factory
func (f *MeshFactory) Create(setup MeshSetup) (*Mesh, error) {
	if setup.Geometry == nil || setup.Geometry.Empty() {
		return nil, ErrEmptyGeometry
	}
	return f.upload(setup.Geometry)
}

func (f *MeshFactory) upload(g *model.Geometry) (*Mesh, error) {
	vb, err := f.device.CreateBuffer(VertexBuffer, g.VertexBytes())
	if err != nil {
		return nil, err
	}

	var ib interface{}
	if len(g.Indices) > 0 {
		if ib, err = f.device.CreateBuffer(IndexBuffer, g.IndexBytes()); err != nil {
			f.device.DestroyBuffer(vb)
			return nil, err
		}
	}

	min, max := g.Bounds()
	return &Mesh{
		NumVertices:  len(g.Vertices),
		NumIndices:   len(g.Indices),
		Min:          min,
		Max:          max,
		VertexBuffer: vb,
		IndexBuffer:  ib,
	}, nil
}

// Destroy implements resource.Factory
func (f *MeshFactory) Destroy(mesh *Mesh) {
	if mesh.IndexBuffer != nil {
		f.device.DestroyBuffer(mesh.IndexBuffer)
	}
	f.device.DestroyBuffer(mesh.VertexBuffer)
}

// Load implements resource.AsyncFactory
func (f *MeshFactory) Load(setup MeshSetup, data io.Reader) resource.Loading[*Mesh] {
	ctx, cancel := context.WithCancel(context.Background())
	l := &meshLoading{
		factory: f,
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	loader := f.loader(setup)
	if loader == nil {
		l.err = fmt.Errorf("%s: %w", setup.Loc, ErrNoLoader)
		close(l.done)
		return l
	}

	go l.run(ctx, loader, setup, data)
	return l
}

type meshLoading struct {
	factory *MeshFactory
	cancel  context.CancelFunc

	// geometry and err are written by the worker before done is closed.
	done     chan struct{}
	geometry *model.Geometry
	err      error

	cancelled bool
	finished  bool
	mesh      *Mesh
}

func (l *meshLoading) run(ctx context.Context, loader MeshLoader, setup MeshSetup, data io.Reader) {
	defer close(l.done)

	if err := l.factory.workers.Acquire(ctx, 1); err != nil {
		l.err = ErrLoadCancelled
		return
	}
	defer l.factory.workers.Release(1)

	g, err := loader.Load(ctx, setup, data)
	switch {
	case ctx.Err() != nil:
		err = ErrLoadCancelled
	case err == nil && (g == nil || g.Empty()):
		err = ErrEmptyGeometry
	}
	if err != nil {
		log.WithField("locator", setup.Loc).WithError(err).Debug("mesh decode stopped")
	}
	l.geometry, l.err = g, err
}

// Poll uploads the geometry once the worker is done.
func (l *meshLoading) Poll() (*Mesh, bool, error) {
	if l.finished {
		return l.mesh, true, l.err
	}
	select {
	case <-l.done:
	default:
		return nil, false, nil
	}

	l.finished = true
	l.cancel()
	switch {
	case l.err != nil:
	case l.cancelled:
		l.err = ErrLoadCancelled
	default:
		l.mesh, l.err = l.factory.upload(l.geometry)
	}
	l.geometry = nil
	return l.mesh, true, l.err
}

func (l *meshLoading) Cancel() {
	l.cancelled = true
	l.cancel()
}

func (l *meshLoading) Wait() {
	<-l.done
}
