// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package render

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/koru3d/korures/resource"
	log "github.com/sirupsen/logrus"
)

// ShaderType represents the type of shader thats loaded
type ShaderType int

// Identifies shader objects with their types
const (
	VertexShaderType ShaderType = iota
	FragmentShaderType
	UnknownShaderType
)

func (t ShaderType) String() string {
	switch t {
	case VertexShaderType:
		return "vert"
	case FragmentShaderType:
		return "frag"
	default:
		return "unknown"
	}
}

const shaderSuffix = ".spv"

// ParseShaderName splits a compiled shader file name such as
// "basic.vert.spv" into the shader name and its type.
// It is important that the file name does not contain more than two dots,
// the first is always the name of the shader, second is type, and the third one
// ensures that the shader is compiled.
func ParseShaderName(filename string) (string, ShaderType) {
	base := filepath.Base(filename)
	if !strings.HasSuffix(base, shaderSuffix) {
		return "", UnknownShaderType
	}
	nodes := strings.Split(strings.TrimSuffix(base, shaderSuffix), ".")
	if len(nodes) != 2 || nodes[0] == "" {
		return "", UnknownShaderType
	}
	switch nodes[1] {
	case "vert":
		return nodes[0], VertexShaderType
	case "frag":
		return nodes[0], FragmentShaderType
	default:
		return "", UnknownShaderType
	}
}

// ShaderSetupsFromDirectory reads every compiled shader found under dir.
// Files that don't look like shaders are skipped. Shaders are located by
// their file name, so "basic.vert.spv" becomes "basic.vert".
func ShaderSetupsFromDirectory(dir string) ([]ShaderSetup, error) {
	var setups []ShaderSetup
	if err := filepath.Walk(dir, func(path string, f os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if f.IsDir() {
			return nil
		}

		name, typ := ParseShaderName(f.Name())
		if typ == UnknownShaderType {
			return nil
		}
		code, err := ioutil.ReadFile(path)
		if err != nil {
			return err
		}
		setups = append(setups, ShaderSetup{
			Loc:  resource.NewLocator(name + "." + typ.String()),
			Type: typ,
			Code: code,
		})
		log.WithField("path", path).Debug("shader file found")
		return nil
	}); err != nil {
		return nil, fmt.Errorf("reading shaders from %s: %w", dir, err)
	}

	sort.Slice(setups, func(i, j int) bool {
		return setups[i].Loc.Name < setups[j].Loc.Name
	})
	return setups, nil
}
