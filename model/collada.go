// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package model

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"

	glm "github.com/go-gl/mathgl/mgl32"
	"github.com/koru3d/korures/util/collada"
)

// Collada import errors
var (
	ErrNoGeometry  = errors.New("collada document has no geometry")
	ErrNoPositions = errors.New("collada mesh has no vertex positions")
	ErrBadIndex    = errors.New("collada index out of range")
)

// ImportCollada reads a Collada document from r and converts the
// triangles of its first geometry into engine Geometry.
func ImportCollada(r io.Reader) (*Geometry, error) {
	var doc collada.Collada
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, err
	}

	geom, ok := doc.Geometry("")
	if !ok {
		return nil, ErrNoGeometry
	}
	mesh := &geom.Mesh

	var out Geometry
	for _, tris := range mesh.Triangles {
		if err := appendTriangles(&out, mesh, &tris); err != nil {
			return nil, fmt.Errorf("geometry %s: %w", geom.ID, err)
		}
	}
	if out.Empty() {
		return nil, ErrNoPositions
	}
	return &out, nil
}

func appendTriangles(out *Geometry, mesh *collada.Mesh, tris *collada.Triangles) error {
	posIn, ok := tris.Input("VERTEX")
	if !ok {
		return ErrNoPositions
	}
	positions, ok := mesh.Resolve(posIn)
	if !ok {
		return ErrNoPositions
	}

	var normals *collada.Source
	normIn, hasNormals := tris.Input("NORMAL")
	if hasNormals {
		normals, hasNormals = mesh.Resolve(normIn)
	}

	stride := tris.Stride()
	for idx := 0; idx+stride <= len(tris.Index); idx += stride {
		indices := tris.Index[idx : idx+stride]

		pos := positions.Element(indices[posIn.Offset])
		if len(pos) < 3 {
			return ErrBadIndex
		}
		vert := Vertex{
			Pos:   glm.Vec3{pos[0], pos[1], pos[2]},
			Color: DefaultColor,
		}
		if hasNormals {
			if n := normals.Element(indices[normIn.Offset]); len(n) >= 3 {
				vert.Normal = glm.Vec3{n[0], n[1], n[2]}
			}
		}

		out.Indices = append(out.Indices, uint32(len(out.Vertices)))
		out.Vertices = append(out.Vertices, vert)
	}
	return nil
}
