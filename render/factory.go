// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package render

import (
	"bytes"
	"fmt"
	"image"

	// image formats a texture may be encoded in
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/koru3d/korures/resource"
	log "github.com/sirupsen/logrus"
)

var (
	_ resource.Factory[ShaderSetup, *Shader]               = (*ShaderFactory)(nil)
	_ resource.Factory[ProgramBundleSetup, *ProgramBundle] = (*ProgramBundleFactory)(nil)
	_ resource.Factory[TextureSetup, *Texture]             = (*TextureFactory)(nil)
	_ resource.AsyncFactory[MeshSetup, *Mesh]              = (*MeshFactory)(nil)
	_ Device                                               = (*NullDevice)(nil)
)

// ShaderFactory creates shader modules.
type ShaderFactory struct {
	device Device
}

// NewShaderFactory creates a ShaderFactory building on dev.
func NewShaderFactory(dev Device) *ShaderFactory {
	return &ShaderFactory{device: dev}
}

// Create implements resource.Factory
func (f *ShaderFactory) Create(setup ShaderSetup) (*Shader, error) {
	if len(setup.Code) == 0 {
		return nil, ErrEmptyShader
	}
	if setup.Type != VertexShaderType && setup.Type != FragmentShaderType {
		return nil, ErrUnknownShaderType
	}
	module, err := f.device.CreateShaderModule(setup.Type, setup.Code)
	if err != nil {
		return nil, err
	}
	return &Shader{
		Name:   setup.Loc.Name,
		Type:   setup.Type,
		Module: module,
	}, nil
}

// Destroy implements resource.Factory
func (f *ShaderFactory) Destroy(shader *Shader) {
	f.device.DestroyShaderModule(shader.Module)
}

// ProgramBundleFactory links programs from shaders held in a shader pool.
type ProgramBundleFactory struct {
	device  Device
	shaders *resource.Pool[ShaderSetup, *Shader]
}

// NewProgramBundleFactory creates a ProgramBundleFactory that looks
// shaders up in shaders.
func NewProgramBundleFactory(dev Device, shaders *resource.Pool[ShaderSetup, *Shader]) *ProgramBundleFactory {
	return &ProgramBundleFactory{
		device:  dev,
		shaders: shaders,
	}
}

func (f *ProgramBundleFactory) shader(id resource.ID, stage ShaderType) (*Shader, error) {
	shader, ok := f.shaders.Resource(id)
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, ErrShaderNotReady)
	}
	if shader.Type != stage {
		return nil, fmt.Errorf("%s is a %s shader, bound as %s: %w", id, shader.Type, stage, ErrShaderStage)
	}
	return shader, nil
}

func (f *ProgramBundleFactory) link(setup ProgramBundleSetup, i int) (Program, error) {
	vs, err := f.shader(setup.VertexShader(i), VertexShaderType)
	if err != nil {
		return Program{}, err
	}
	fs, err := f.shader(setup.FragmentShader(i), FragmentShaderType)
	if err != nil {
		return Program{}, err
	}
	handle, err := f.device.CreateProgram(vs.Module, fs.Module)
	if err != nil {
		return Program{}, err
	}
	return Program{
		VertexShader:   setup.VertexShader(i),
		FragmentShader: setup.FragmentShader(i),
		Handle:         handle,
	}, nil
}

// Create implements resource.Factory. Every shader has to be Valid by
// the time the bundle is created.
func (f *ProgramBundleFactory) Create(setup ProgramBundleSetup) (*ProgramBundle, error) {
	if setup.NumPrograms() == 0 {
		return nil, ErrEmptyBundle
	}

	bundle := &ProgramBundle{}
	for i := 0; i < setup.NumPrograms(); i++ {
		program, err := f.link(setup, i)
		if err != nil {
			f.Destroy(bundle)
			return nil, fmt.Errorf("program %d: %w", i, err)
		}
		bundle.Programs = append(bundle.Programs, program)
	}
	return bundle, nil
}

// Destroy implements resource.Factory
func (f *ProgramBundleFactory) Destroy(bundle *ProgramBundle) {
	for _, p := range bundle.Programs {
		f.device.DestroyProgram(p.Handle)
	}
	bundle.Programs = nil
}

// TextureFactory decodes images and uploads them.
type TextureFactory struct {
	device Device
}

// NewTextureFactory creates a TextureFactory building on dev.
func NewTextureFactory(dev Device) *TextureFactory {
	return &TextureFactory{device: dev}
}

// Create implements resource.Factory
func (f *TextureFactory) Create(setup TextureSetup) (*Texture, error) {
	img, format, err := image.Decode(bytes.NewReader(setup.Data))
	if err != nil {
		return nil, err
	}
	handle, err := f.device.CreateImage(img)
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{
		"locator": setup.Loc,
		"format":  format,
	}).Debug("texture decoded")

	b := img.Bounds()
	return &Texture{
		Width:  b.Dx(),
		Height: b.Dy(),
		Image:  handle,
	}, nil
}

// Destroy implements resource.Factory
func (f *TextureFactory) Destroy(texture *Texture) {
	f.device.DestroyImage(texture.Image)
}
