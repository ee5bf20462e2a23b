// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package collada_test

import (
	"encoding/xml"
	"testing"

	"github.com/koru3d/korures/util/collada"
)

func TestTrianglesDecode(t *testing.T) {
	data := `
		<triangles material="Material-material" count="12">
		<input semantic="VERTEX" source="#Cube-mesh-vertices" offset="0"/>
		<input semantic="NORMAL" source="#Cube-mesh-normals" offset="1"/>
		<p>0 0 2 0 3 0 7 1 5 1 4 1 4 2 1 2 0 2 5 3 2 3 1 3 2 4 7 4 3 4 0 5 7 5 4 5 0 6 1 6 2 6 7 7 6 7 5 7 4 8 5 8 1 8 5 9 6 9 2 9 2 10 6 10 7 10 0 11 3 11 7 11</p>
		</triangles>
	`
	var triangles collada.Triangles
	err := xml.Unmarshal([]byte(data), &triangles)
	if err != nil {
		t.Fatal(err)
	}

	if triangles.Material != "Material-material" {
		t.Fatalf("incorrect material: %s", triangles.Material)
	}

	if triangles.Count != 12 {
		t.Fatalf("incorrect count: %d", triangles.Count)
	}

	if len(triangles.Inputs) != 2 {
		t.Fatalf("number of inputs incorrect: %d", len(triangles.Inputs))
	}

	if len(triangles.Index) != 12*6 {
		t.Fatalf("number of index elements incorrect: %d", len(triangles.Index))
	}

	if triangles.Stride() != 2 {
		t.Fatalf("incorrect stride: %d", triangles.Stride())
	}
}

func TestInputDecode(t *testing.T) {
	data := `
	<object>
		<input semantic="VERTEX" source="#Cube-mesh-vertices" offset="0" />
		<input semantic="NORMAL" source="#Cube-mesh-normals" offset="1" />
		<input semantic="TEXCOORD" source="#Cube-mesh-map" offset="2" set="1" />
	</object>
	`

	type Object struct {
		XMLName xml.Name        `xml:"object"`
		Inputs  []collada.Input `xml:"input"`
	}

	var obj Object
	if err := xml.Unmarshal([]byte(data), &obj); err != nil {
		t.Fatal(err)
	}

	expected := []collada.Input{
		{Semantic: "VERTEX", Source: "#Cube-mesh-vertices", Offset: 0},
		{Semantic: "NORMAL", Source: "#Cube-mesh-normals", Offset: 1},
		{Semantic: "TEXCOORD", Source: "#Cube-mesh-map", Offset: 2, Set: 1},
	}
	if len(obj.Inputs) != len(expected) {
		t.Fatalf("number of inputs incorrect: %d", len(obj.Inputs))
	}
	for i, in := range expected {
		if obj.Inputs[i] != in {
			t.Errorf("input %d: expected %+v, got %+v", i, in, obj.Inputs[i])
		}
	}
}

func TestFloatsDecode(t *testing.T) {
	data := `<float_array id="Cube-mesh-normals-array" count="12">0 0 -1
		0 0 1   1 0 -2.38419e-7
		0 -1 -4.76837e-7</float_array>`

	var floats collada.Floats
	if err := xml.Unmarshal([]byte(data), &floats); err != nil {
		t.Fatal(err)
	}

	if len(floats.Data) != 12 || floats.Count != 12 {
		t.Fatalf("bad number of floats, got: %d (count %d)", len(floats.Data), floats.Count)
	}

	if floats.ID != "Cube-mesh-normals-array" {
		t.Fatalf("bad id, got: %s", floats.ID)
	}
}

func TestMeshResolve(t *testing.T) {
	data := `
	<COLLADA>
		<library_geometries>
			<geometry id="Tri-mesh" name="Tri">
				<mesh>
					<source id="Tri-mesh-positions">
						<float_array id="Tri-mesh-positions-array" count="9">0 0 0 1 0 0 0 1 0</float_array>
						<technique_common>
							<accessor source="#Tri-mesh-positions-array" count="3" stride="3"/>
						</technique_common>
					</source>
					<vertices id="Tri-mesh-vertices">
						<input semantic="POSITION" source="#Tri-mesh-positions"/>
					</vertices>
					<triangles count="1">
						<input semantic="VERTEX" source="#Tri-mesh-vertices" offset="0"/>
						<p>0 1 2</p>
					</triangles>
				</mesh>
			</geometry>
		</library_geometries>
	</COLLADA>`

	var doc collada.Collada
	if err := xml.Unmarshal([]byte(data), &doc); err != nil {
		t.Fatal(err)
	}

	geom, ok := doc.Geometry("")
	if !ok || geom.Name != "Tri" {
		t.Fatalf("geometry not found: %+v", doc.Geometries)
	}
	if _, ok := doc.Geometry("missing"); ok {
		t.Fatal("found a geometry that does not exist")
	}

	in, ok := geom.Mesh.Triangles[0].Input("VERTEX")
	if !ok {
		t.Fatal("vertex input missing")
	}
	src, ok := geom.Mesh.Resolve(in)
	if !ok {
		t.Fatal("vertex input did not resolve to positions")
	}
	if src.Stride() != 3 {
		t.Fatalf("bad stride: %d", src.Stride())
	}
	if el := src.Element(1); len(el) != 3 || el[0] != 1 {
		t.Fatalf("bad element: %v", el)
	}
	if el := src.Element(3); el != nil {
		t.Fatalf("out of range element returned: %v", el)
	}
}
