// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package render

import (
	"os"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/koru3d/korures/resource"
)

func TestParseShaderName(t *testing.T) {
	c := qt.New(t)
	for _, test := range []struct {
		filename string
		name     string
		typ      ShaderType
	}{
		{"basic.vert.spv", "basic", VertexShaderType},
		{"shaders/basic.frag.spv", "basic", FragmentShaderType},
		{"basic.geom.spv", "", UnknownShaderType},
		{"basic.vert", "", UnknownShaderType},
		{"basic.lit.vert.spv", "", UnknownShaderType},
		{".vert.spv", "", UnknownShaderType},
	} {
		name, typ := ParseShaderName(test.filename)
		c.Check(name, qt.Equals, test.name, qt.Commentf(test.filename))
		c.Check(typ, qt.Equals, test.typ, qt.Commentf(test.filename))
	}
}

func TestShaderSetupsFromDirectory(t *testing.T) {
	c := qt.New(t)
	dir := t.TempDir()
	c.Assert(os.MkdirAll(filepath.Join(dir, "nested"), 0755), qt.IsNil)
	files := map[string]string{
		"basic.vert.spv":        "vertex code",
		"nested/basic.frag.spv": "fragment code",
		"readme.txt":            "not a shader",
		"basic.vert.glsl":       "not compiled",
	}
	for name, contents := range files {
		c.Assert(os.WriteFile(filepath.Join(dir, name), []byte(contents), 0644), qt.IsNil)
	}

	setups, err := ShaderSetupsFromDirectory(dir)
	c.Assert(err, qt.IsNil)
	c.Assert(setups, qt.HasLen, 2)
	c.Assert(setups[0].Loc, qt.Equals, resource.NewLocator("basic.frag"))
	c.Assert(setups[0].Type, qt.Equals, FragmentShaderType)
	c.Assert(string(setups[0].Code), qt.Equals, "fragment code")
	c.Assert(setups[1].Loc, qt.Equals, resource.NewLocator("basic.vert"))
	c.Assert(setups[1].Type, qt.Equals, VertexShaderType)

	_, err = ShaderSetupsFromDirectory(filepath.Join(dir, "missing"))
	c.Assert(err, qt.IsNotNil)
}
