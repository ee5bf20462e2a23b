// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"strings"

	"github.com/gobuffalo/packr"
	"github.com/koru3d/korures/render"
	"github.com/koru3d/korures/render/loaders"
	"github.com/koru3d/korures/resource"
	"github.com/koru3d/korures/utility/kar"
	log "github.com/sirupsen/logrus"
	"golang.org/x/exp/mmap"
)

// builtinShaders are used when the shader directory has none.
var builtinShaders = packr.NewBox("./shaders")

func shaderSetups(dir string) ([]render.ShaderSetup, error) {
	setups, err := render.ShaderSetupsFromDirectory(dir)
	if err == nil && len(setups) > 0 {
		return setups, nil
	}
	log.WithField("dir", dir).Warn("no shaders found, using built in ones")

	setups = setups[:0]
	for _, name := range builtinShaders.List() {
		base, typ := render.ParseShaderName(name)
		if typ == render.UnknownShaderType {
			continue
		}
		code, err := builtinShaders.Find(name)
		if err != nil {
			return nil, err
		}
		setups = append(setups, render.ShaderSetup{
			Loc:  resource.NewLocator(base + "." + typ.String()),
			Type: typ,
			Code: code,
		})
	}
	return setups, nil
}

// createPrograms creates every shader found and links each vertex
// shader with the fragment shader of the same name into one bundle.
// The bundle is left holding the only reference to the shaders.
func createPrograms(resources *render.Resources, dir string) (resource.ID, error) {
	setups, err := shaderSetups(dir)
	if err != nil {
		return resource.InvalidID, err
	}

	shaders := make(map[string]resource.ID)
	for _, setup := range setups {
		id, err := resources.CreateShader(setup)
		if err != nil {
			return resource.InvalidID, err
		}
		shaders[setup.Loc.Name] = id
	}
	defer func() {
		for _, id := range shaders {
			resources.Discard(id)
		}
	}()

	bundle := render.NewProgramBundleSetup(resource.NewLocator("programs"))
	for name, vs := range shaders {
		if !strings.HasSuffix(name, "."+render.VertexShaderType.String()) {
			continue
		}
		base := strings.TrimSuffix(name, render.VertexShaderType.String())
		if fs, ok := shaders[base+render.FragmentShaderType.String()]; ok {
			bundle.AddProgram(vs, fs)
		}
	}
	if bundle.NumPrograms() == 0 {
		return resource.InvalidID, nil
	}

	id, err := resources.CreateProgramBundle(bundle)
	if err != nil {
		return resource.InvalidID, err
	}
	state, _ := resources.QueryState(id)
	log.WithFields(log.Fields{
		"programs": bundle.NumPrograms(),
		"state":    state,
	}).Info("programs linked")
	return id, nil
}

// scene is the set of meshes streamed from an archive.
type scene struct {
	archive *mmap.ReaderAt
	pending map[resource.ID]string
}

// streamArchive requests every mesh in the archive at path. An empty
// path gives an empty scene.
func streamArchive(resources *render.Resources, path string) (*scene, error) {
	s := &scene{pending: make(map[resource.ID]string)}
	if path == "" {
		return s, nil
	}

	r, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}
	s.archive = r

	ar, err := kar.Open(r)
	if err != nil {
		s.Close()
		return nil, err
	}
	for _, name := range ar.Names() {
		setup := render.MeshSetup{Loc: resource.NewLocator(name)}
		if !(loaders.Collada{}).Accepts(setup) && !(loaders.Vertex{}).Accepts(setup) {
			continue
		}
		f, err := ar.Open(name)
		if err != nil {
			s.Close()
			return nil, err
		}
		id, err := resources.CreateMeshAsync(setup, f)
		if err != nil {
			log.WithError(err).WithField("mesh", name).Error("mesh not requested")
			continue
		}
		s.pending[id] = name
	}
	log.WithFields(log.Fields{
		"archive": path,
		"meshes":  len(s.pending),
	}).Info("streaming meshes")
	return s, nil
}

// Report logs meshes that finished loading since the last frame.
func (s *scene) Report(resources *render.Resources, frame uint64) {
	for id, name := range s.pending {
		state, err := resources.QueryState(id)
		if err != nil || state == resource.Pending {
			continue
		}
		entry := log.WithFields(log.Fields{
			"mesh":  name,
			"frame": frame,
		})
		if mesh, ok := resources.Mesh(id); ok {
			entry.WithField("vertices", mesh.NumVertices).Info("mesh ready")
		} else {
			entry.Warn("mesh failed to load")
		}
		delete(s.pending, id)
	}
}

// Close unmaps the archive. Resources have to be closed first.
func (s *scene) Close() {
	if s.archive != nil {
		s.archive.Close()
		s.archive = nil
	}
}
