// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package model holds mesh geometry as the engine uploads it,
// along with importers that produce it.
package model

import (
	"encoding/binary"
	"math"

	glm "github.com/go-gl/mathgl/mgl32"
)

// VertexSize is the size in bytes of an encoded Vertex.
const VertexSize = 4 * (3 + 3 + 4)

// DefaultColor is given to vertices whose source has no colors.
var DefaultColor = glm.Vec4{1.0, 1.0, 1.0, 1.0}

// Vertex is a model vertex
type Vertex struct {
	Pos    glm.Vec3
	Normal glm.Vec3
	Color  glm.Vec4
}

// Geometry is an indexed triangle list.
type Geometry struct {
	Vertices []Vertex
	Indices  []uint32
}

// Empty reports whether the geometry has nothing to draw.
func (g *Geometry) Empty() bool {
	return g == nil || len(g.Vertices) == 0
}

// Bounds returns the axis aligned box around all vertices.
func (g *Geometry) Bounds() (min, max glm.Vec3) {
	if g.Empty() {
		return
	}
	min, max = g.Vertices[0].Pos, g.Vertices[0].Pos
	for _, v := range g.Vertices[1:] {
		for i := 0; i < 3; i++ {
			min[i] = float32(math.Min(float64(min[i]), float64(v.Pos[i])))
			max[i] = float32(math.Max(float64(max[i]), float64(v.Pos[i])))
		}
	}
	return min, max
}

// VertexBytes lays the vertices out the way vertex buffers expect them,
// little endian position, normal and color.
func (g *Geometry) VertexBytes() []byte {
	buf := make([]byte, 0, len(g.Vertices)*VertexSize)
	for _, v := range g.Vertices {
		buf = appendFloats(buf, v.Pos[:])
		buf = appendFloats(buf, v.Normal[:])
		buf = appendFloats(buf, v.Color[:])
	}
	return buf
}

// IndexBytes lays the indices out as little endian uint32.
func (g *Geometry) IndexBytes() []byte {
	buf := make([]byte, 4*len(g.Indices))
	for i, idx := range g.Indices {
		binary.LittleEndian.PutUint32(buf[4*i:], idx)
	}
	return buf
}

func appendFloats(buf []byte, fs []float32) []byte {
	var scratch [4]byte
	for _, f := range fs {
		binary.LittleEndian.PutUint32(scratch[:], math.Float32bits(f))
		buf = append(buf, scratch[:]...)
	}
	return buf
}
