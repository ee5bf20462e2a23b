// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package loaders

import (
	"context"
	"fmt"
	"io"

	"github.com/koru3d/korures/model"
	"github.com/koru3d/korures/render"
)

// Collada loads ".dae" documents.
type Collada struct{}

// Accepts implements render.MeshLoader
func (Collada) Accepts(setup render.MeshSetup) bool {
	return Format(setup.Loc.Name) == ".dae"
}

// Load implements render.MeshLoader
func (l Collada) Load(ctx context.Context, setup render.MeshSetup, data io.Reader) (*model.Geometry, error) {
	if !l.Accepts(setup) {
		return nil, fmt.Errorf("%s: %w", setup.Loc, ErrUnsupported)
	}
	r, closer, err := open(ctx, setup.Loc.Name, data)
	if err != nil {
		return nil, err
	}
	defer closer.Close()
	return model.ImportCollada(r)
}

// Vertex loads ".kvtx" binary vertex files.
type Vertex struct{}

// Accepts implements render.MeshLoader
func (Vertex) Accepts(setup render.MeshSetup) bool {
	return Format(setup.Loc.Name) == ".kvtx"
}

// Load implements render.MeshLoader
func (l Vertex) Load(ctx context.Context, setup render.MeshSetup, data io.Reader) (*model.Geometry, error) {
	if !l.Accepts(setup) {
		return nil, fmt.Errorf("%s: %w", setup.Loc, ErrUnsupported)
	}
	r, closer, err := open(ctx, setup.Loc.Name, data)
	if err != nil {
		return nil, err
	}
	defer closer.Close()
	return model.ReadBinary(r)
}
