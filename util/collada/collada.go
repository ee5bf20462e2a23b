// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package collada decodes the geometry part of Collada (.dae) documents.
package collada

import (
	"encoding/xml"
	"strconv"
	"strings"
)

// Collada is the top-level Collada object
type Collada struct {
	Asset      Asset      `xml:"asset"`
	Geometries []Geometry `xml:"library_geometries>geometry"`
}

// Asset carries document wide metadata.
type Asset struct {
	UpAxis string `xml:"up_axis"`
}

// Geometry represents Collada's geometry
type Geometry struct {
	Mesh Mesh   `xml:"mesh"`
	ID   string `xml:"id,attr"`
	Name string `xml:"name,attr"`
}

// Geometry returns the geometry with the given id, or the
// first one when id is empty.
func (c *Collada) Geometry(id string) (*Geometry, bool) {
	for i := range c.Geometries {
		if id == "" || c.Geometries[i].ID == id {
			return &c.Geometries[i], true
		}
	}
	return nil, false
}

// Mesh contains all the primitive data
type Mesh struct {
	Sources   []Source    `xml:"source"`
	Vertices  Vertices    `xml:"vertices"`
	Triangles []Triangles `xml:"triangles"`
}

// Source returns the source a "#id" reference points at.
func (m *Mesh) Source(ref string) (*Source, bool) {
	id := strings.TrimPrefix(ref, "#")
	for i := range m.Sources {
		if m.Sources[i].ID == id {
			return &m.Sources[i], true
		}
	}
	return nil, false
}

// Resolve follows a triangle input to the source that holds its data.
// VERTEX inputs go through the vertices element to its POSITION input.
func (m *Mesh) Resolve(in Input) (*Source, bool) {
	if in.Semantic == "VERTEX" && strings.TrimPrefix(in.Source, "#") == m.Vertices.ID {
		pos, ok := m.Vertices.Input("POSITION")
		if !ok {
			return nil, false
		}
		return m.Source(pos.Source)
	}
	return m.Source(in.Source)
}

// Source holds a float array and how to step through it.
type Source struct {
	ID       string   `xml:"id,attr"`
	Floats   Floats   `xml:"float_array"`
	Accessor Accessor `xml:"technique_common>accessor"`
}

// Stride is the number of floats per element, three when the
// document does not say.
func (s *Source) Stride() int {
	if s.Accessor.Stride > 0 {
		return s.Accessor.Stride
	}
	return 3
}

// Element returns the floats of the element at idx, or nil
// when idx is out of range.
func (s *Source) Element(idx int) []float32 {
	stride := s.Stride()
	start := idx * stride
	if idx < 0 || start+stride > len(s.Floats.Data) {
		return nil
	}
	return s.Floats.Data[start : start+stride]
}

// Accessor describes the layout of a source array.
type Accessor struct {
	Source string `xml:"source,attr"`
	Count  int    `xml:"count,attr"`
	Stride int    `xml:"stride,attr"`
}

// Floats is the array of floats
type Floats struct {
	ID    string
	Count int
	Data  []float32
}

// UnmarshalXML unmarshals the array of floats
func (f *Floats) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for _, attr := range start.Attr {
		switch attr.Name.Local {
		case "id":
			f.ID = attr.Value
		case "count":
			num, err := strconv.Atoi(attr.Value)
			if err != nil {
				return err
			}
			f.Count = num
		}
	}
	var raw string
	if err := d.DecodeElement(&raw, &start); err != nil {
		return err
	}
	fields := strings.Fields(raw)
	f.Data = make([]float32, 0, len(fields))
	for _, r := range fields {
		num, err := strconv.ParseFloat(r, 32)
		if err != nil {
			return err
		}
		f.Data = append(f.Data, float32(num))
	}
	return nil
}

// Vertices contains the list of vertices
type Vertices struct {
	ID     string  `xml:"id,attr"`
	Inputs []Input `xml:"input"`
}

// Input returns the input with the given semantic.
func (v *Vertices) Input(semantic string) (Input, bool) {
	for _, in := range v.Inputs {
		if in.Semantic == semantic {
			return in, true
		}
	}
	return Input{}, false
}

// Triangles contain the list of triangles
type Triangles struct {
	Count    int
	Material string
	Inputs   []Input
	Index    []int
}

// Stride is the number of indices that make up one vertex.
func (t *Triangles) Stride() int {
	stride := 0
	for _, in := range t.Inputs {
		if int(in.Offset)+1 > stride {
			stride = int(in.Offset) + 1
		}
	}
	return stride
}

// Input returns the input with the given semantic.
func (t *Triangles) Input(semantic string) (Input, bool) {
	for _, in := range t.Inputs {
		if in.Semantic == semantic {
			return in, true
		}
	}
	return Input{}, false
}

// UnmarshalXML parses the index list
func (t *Triangles) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for _, attr := range start.Attr {
		switch attr.Name.Local {
		case "count":
			num, err := strconv.Atoi(attr.Value)
			if err != nil {
				return err
			}
			t.Count = num
		case "material":
			t.Material = attr.Value
		}
	}

	for {
		token, err := d.Token()
		if err != nil {
			return err
		}

		switch el := token.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "input":
				var input Input
				if err := d.DecodeElement(&input, &el); err != nil {
					return err
				}
				t.Inputs = append(t.Inputs, input)
			case "p":
				var raw string
				if err := d.DecodeElement(&raw, &el); err != nil {
					return err
				}
				fields := strings.Fields(raw)
				ints := make([]int, 0, len(fields))
				for _, r := range fields {
					num, err := strconv.Atoi(r)
					if err != nil {
						return err
					}
					ints = append(ints, num)
				}
				t.Index = ints
			default:
				if err := d.Skip(); err != nil {
					return err
				}
			}
		case xml.EndElement:
			if el == start.End() {
				return nil
			}
		}
	}
}

// Input is Collada'a input type
type Input struct {
	Semantic string `xml:"semantic,attr"`
	Source   string `xml:"source,attr"`
	Offset   uint   `xml:"offset,attr"`
	Set      int    `xml:"set,attr"`
}
