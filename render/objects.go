// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package render

import (
	glm "github.com/go-gl/mathgl/mgl32"
	"github.com/koru3d/korures/resource"
)

// Shader is a shader module living on the Device.
type Shader struct {
	Name   string
	Type   ShaderType
	Module interface{}
}

// Program is one linked program of a bundle.
type Program struct {
	VertexShader   resource.ID
	FragmentShader resource.ID
	Handle         interface{}
}

// ProgramBundle is a set of programs that are used together.
type ProgramBundle struct {
	Programs []Program
}

// Mesh is geometry uploaded to the Device.
type Mesh struct {
	NumVertices int
	NumIndices  int

	// Min and Max span the bounding box of the vertices.
	Min, Max glm.Vec3

	VertexBuffer interface{}
	IndexBuffer  interface{}
}

// Texture is an image uploaded to the Device.
type Texture struct {
	Width, Height int
	Image         interface{}
}
