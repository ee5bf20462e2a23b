// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package render

import (
	"hash/fnv"

	"github.com/koru3d/korures/model"
	"github.com/koru3d/korures/resource"
)

// ShaderSetup describes a single compiled shader stage.
type ShaderSetup struct {
	Loc  resource.Locator
	Type ShaderType
	Code []byte
}

// Locator implements resource.Setup
func (s ShaderSetup) Locator() resource.Locator { return s.Loc }

// Dependencies implements resource.Setup
func (s ShaderSetup) Dependencies() []resource.ID { return nil }

// ProgramSetup pairs the shaders of one program in a bundle.
type ProgramSetup struct {
	VertexShader   resource.ID
	FragmentShader resource.ID
}

// ProgramBundleSetup describes a set of linked programs. The shaders
// it names are kept alive for as long as the bundle is.
type ProgramBundleSetup struct {
	Loc      resource.Locator
	Programs []ProgramSetup
}

// NewProgramBundleSetup creates an empty bundle setup.
func NewProgramBundleSetup(loc resource.Locator) ProgramBundleSetup {
	return ProgramBundleSetup{Loc: loc}
}

// AddProgram appends a program built from a vertex and a fragment shader.
func (s *ProgramBundleSetup) AddProgram(vs, fs resource.ID) {
	s.Programs = append(s.Programs, ProgramSetup{VertexShader: vs, FragmentShader: fs})
}

// NumPrograms returns the number of programs in the bundle.
func (s ProgramBundleSetup) NumPrograms() int {
	return len(s.Programs)
}

// VertexShader returns the vertex shader of program i.
func (s ProgramBundleSetup) VertexShader(i int) resource.ID {
	return s.Programs[i].VertexShader
}

// FragmentShader returns the fragment shader of program i.
func (s ProgramBundleSetup) FragmentShader(i int) resource.ID {
	return s.Programs[i].FragmentShader
}

// Locator implements resource.Setup
func (s ProgramBundleSetup) Locator() resource.Locator { return s.Loc }

// Dependencies implements resource.Setup
func (s ProgramBundleSetup) Dependencies() []resource.ID {
	deps := make([]resource.ID, 0, 2*len(s.Programs))
	for _, p := range s.Programs {
		deps = append(deps, p.VertexShader, p.FragmentShader)
	}
	return deps
}

// MeshSetup describes a mesh. Geometry is used when the mesh is created
// synchronously, asynchronous creation reads the mesh from a data stream.
type MeshSetup struct {
	Loc      resource.Locator
	Geometry *model.Geometry
}

// ProceduralMesh creates a setup for generated geometry. The locator is
// signed with a hash of the vertex data, so meshes generated under the
// same name with different contents do not collide.
func ProceduralMesh(name string, g *model.Geometry) MeshSetup {
	h := fnv.New32a()
	h.Write(g.VertexBytes())
	h.Write(g.IndexBytes())
	sig := h.Sum32()
	if sig == 0 {
		sig = 1
	}
	return MeshSetup{
		Loc:      resource.NewLocatorSig(name, sig),
		Geometry: g,
	}
}

// Locator implements resource.Setup
func (s MeshSetup) Locator() resource.Locator { return s.Loc }

// Dependencies implements resource.Setup
func (s MeshSetup) Dependencies() []resource.ID { return nil }

// TextureSetup describes a texture from encoded image data.
type TextureSetup struct {
	Loc  resource.Locator
	Data []byte
}

// Locator implements resource.Setup
func (s TextureSetup) Locator() resource.Locator { return s.Loc }

// Dependencies implements resource.Setup
func (s TextureSetup) Dependencies() []resource.ID { return nil }
