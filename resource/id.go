// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package resource

import "fmt"

// Type tags the kind of resource an ID refers to.
type Type uint8

// Resource types known to the engine. The zero value is Invalid.
const (
	Invalid Type = iota
	Texture
	Mesh
	Shader
	ProgramBundle
	StateBlock
	ConstantBlock
)

var typeLabels = [...]string{
	Invalid:       "NONE",
	Texture:       "TXTR",
	Mesh:          "MESH",
	Shader:        "SHDR",
	ProgramBundle: "PRGB",
	StateBlock:    "STBL",
	ConstantBlock: "CNBL",
}

// String returns the four character label of the type.
func (t Type) String() string {
	if int(t) < len(typeLabels) {
		return typeLabels[t]
	}
	return fmt.Sprintf("TYPE(%d)", uint8(t))
}

// Types lists every valid resource type in declaration order.
func Types() []Type {
	return []Type{Texture, Mesh, Shader, ProgramBundle, StateBlock, ConstantBlock}
}

// ID is a handle to a pooled resource. The stamp changes every time
// the slot is handed out again, so an old ID never matches a new occupant.
type ID struct {
	Type  Type
	Slot  uint32
	Stamp uint32
}

// InvalidID refers to no resource.
var InvalidID = ID{}

// IsValid reports whether the ID carries a resource type.
func (id ID) IsValid() bool {
	return id.Type != Invalid
}

func (id ID) String() string {
	if !id.IsValid() {
		return "invalid"
	}
	return fmt.Sprintf("%s:%d:%d", id.Type, id.Slot, id.Stamp)
}
