// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package model_test

import (
	"bytes"
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"
	glm "github.com/go-gl/mathgl/mgl32"
	"github.com/koru3d/korures/model"
)

const quadDocument = `<?xml version="1.0" encoding="utf-8"?>
<COLLADA xmlns="http://www.collada.org/2005/11/COLLADASchema" version="1.4.1">
  <asset><up_axis>Z_UP</up_axis></asset>
  <library_geometries>
    <geometry id="Quad-mesh" name="Quad">
      <mesh>
        <source id="Quad-mesh-positions">
          <float_array id="Quad-mesh-positions-array" count="12">-1 -1 0 1 -1 0 1 1 0 -1 1 0</float_array>
          <technique_common><accessor source="#Quad-mesh-positions-array" count="4" stride="3"/></technique_common>
        </source>
        <source id="Quad-mesh-normals">
          <float_array id="Quad-mesh-normals-array" count="3">0 0 1</float_array>
          <technique_common><accessor source="#Quad-mesh-normals-array" count="1" stride="3"/></technique_common>
        </source>
        <vertices id="Quad-mesh-vertices">
          <input semantic="POSITION" source="#Quad-mesh-positions"/>
        </vertices>
        <triangles count="2">
          <input semantic="VERTEX" source="#Quad-mesh-vertices" offset="0"/>
          <input semantic="NORMAL" source="#Quad-mesh-normals" offset="1"/>
          <p>0 0 1 0 2 0 0 0 2 0 3 0</p>
        </triangles>
      </mesh>
    </geometry>
  </library_geometries>
</COLLADA>`

func TestImportCollada(t *testing.T) {
	c := qt.New(t)

	geom, err := model.ImportCollada(strings.NewReader(quadDocument))
	c.Assert(err, qt.IsNil)
	c.Assert(geom.Vertices, qt.HasLen, 6)
	c.Assert(geom.Indices, qt.DeepEquals, []uint32{0, 1, 2, 3, 4, 5})
	c.Assert(geom.Vertices[2].Pos, qt.Equals, glm.Vec3{1, 1, 0})
	c.Assert(geom.Vertices[5].Normal, qt.Equals, glm.Vec3{0, 0, 1})
	c.Assert(geom.Vertices[0].Color, qt.Equals, model.DefaultColor)

	min, max := geom.Bounds()
	c.Assert(min, qt.Equals, glm.Vec3{-1, -1, 0})
	c.Assert(max, qt.Equals, glm.Vec3{1, 1, 0})
}

func TestImportColladaFailures(t *testing.T) {
	c := qt.New(t)

	_, err := model.ImportCollada(strings.NewReader("<COLLADA></COLLADA>"))
	c.Assert(err, qt.ErrorIs, model.ErrNoGeometry)

	_, err = model.ImportCollada(strings.NewReader("not xml at all <"))
	c.Assert(err, qt.Not(qt.IsNil))

	broken := strings.Replace(quadDocument, "<p>0 0 1 0 2 0 0 0 2 0 3 0</p>", "<p>0 0 9 0 2 0</p>", 1)
	_, err = model.ImportCollada(strings.NewReader(broken))
	c.Assert(err, qt.ErrorIs, model.ErrBadIndex)
}

func TestBinaryGeometry(t *testing.T) {
	c := qt.New(t)

	geom, err := model.ImportCollada(strings.NewReader(quadDocument))
	c.Assert(err, qt.IsNil)

	var buf bytes.Buffer
	c.Assert(model.WriteBinary(&buf, geom), qt.IsNil)
	c.Assert(buf.Len(), qt.Equals, 16+len(geom.Vertices)*model.VertexSize+4*len(geom.Indices))

	decoded, err := model.ReadBinary(&buf)
	c.Assert(err, qt.IsNil)
	c.Assert(decoded, qt.DeepEquals, geom)
}

func TestBinaryGeometryRejectsGarbage(t *testing.T) {
	c := qt.New(t)

	_, err := model.ReadBinary(strings.NewReader("KVT"))
	c.Assert(err, qt.ErrorIs, model.ErrBinaryFormat)
	_, err = model.ReadBinary(strings.NewReader("XXXX\x01\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00"))
	c.Assert(err, qt.ErrorIs, model.ErrBinaryFormat)

	// an index pointing past the vertices
	var buf bytes.Buffer
	geom := &model.Geometry{Vertices: []model.Vertex{{}}, Indices: []uint32{1}}
	c.Assert(model.WriteBinary(&buf, geom), qt.IsNil)
	_, err = model.ReadBinary(&buf)
	c.Assert(err, qt.ErrorIs, model.ErrBinaryFormat)
}

func TestEmptyGeometry(t *testing.T) {
	c := qt.New(t)

	var geom *model.Geometry
	c.Assert(geom.Empty(), qt.IsTrue)
	c.Assert((&model.Geometry{}).Empty(), qt.IsTrue)
	c.Assert((&model.Geometry{Vertices: make([]model.Vertex, 1)}).Empty(), qt.IsFalse)
	c.Assert((&model.Geometry{Vertices: make([]model.Vertex, 3)}).VertexBytes(), qt.HasLen, 3*model.VertexSize)
}
