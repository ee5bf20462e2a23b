// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package model

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"
	"math"

	glm "github.com/go-gl/mathgl/mgl32"
)

// Binary vertex files (.kvtx) are a fixed header followed by the vertex
// and index data exactly as VertexBytes and IndexBytes produce it.
const (
	binaryMagic   = "KVTX"
	binaryVersion = 1

	// MaxBinaryElements bounds vertex and index counts read from a file.
	MaxBinaryElements = 1 << 24
)

// ErrBinaryFormat is returned for data that is not a binary vertex file.
var ErrBinaryFormat = errors.New("corrupted or not a binary vertex file")

type binaryHeader struct {
	Magic    [4]byte
	Version  uint32
	Vertices uint32
	Indices  uint32
}

// WriteBinary writes g in the binary vertex format.
func WriteBinary(w io.Writer, g *Geometry) error {
	header := binaryHeader{
		Version:  binaryVersion,
		Vertices: uint32(len(g.Vertices)),
		Indices:  uint32(len(g.Indices)),
	}
	copy(header.Magic[:], binaryMagic)
	if err := binary.Write(w, binary.LittleEndian, &header); err != nil {
		return err
	}
	if _, err := w.Write(g.VertexBytes()); err != nil {
		return err
	}
	_, err := w.Write(g.IndexBytes())
	return err
}

// ReadBinary reads geometry in the binary vertex format.
func ReadBinary(r io.Reader) (*Geometry, error) {
	br := bufio.NewReader(r)

	var header binaryHeader
	if err := binary.Read(br, binary.LittleEndian, &header); err != nil {
		return nil, ErrBinaryFormat
	}
	if string(header.Magic[:]) != binaryMagic || header.Version != binaryVersion {
		return nil, ErrBinaryFormat
	}
	if header.Vertices > MaxBinaryElements || header.Indices > MaxBinaryElements {
		return nil, ErrBinaryFormat
	}

	g := &Geometry{
		Vertices: make([]Vertex, header.Vertices),
		Indices:  make([]uint32, header.Indices),
	}
	var raw [VertexSize / 4]uint32
	for i := range g.Vertices {
		if err := binary.Read(br, binary.LittleEndian, &raw); err != nil {
			return nil, err
		}
		v := &g.Vertices[i]
		v.Pos = glm.Vec3{f32(raw[0]), f32(raw[1]), f32(raw[2])}
		v.Normal = glm.Vec3{f32(raw[3]), f32(raw[4]), f32(raw[5])}
		v.Color = glm.Vec4{f32(raw[6]), f32(raw[7]), f32(raw[8]), f32(raw[9])}
	}
	if err := binary.Read(br, binary.LittleEndian, g.Indices); err != nil {
		return nil, err
	}
	for _, idx := range g.Indices {
		if idx >= header.Vertices {
			return nil, ErrBinaryFormat
		}
	}
	return g, nil
}

func f32(bits uint32) float32 {
	return math.Float32frombits(bits)
}
