// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package render

import (
	"image"
	"sync"
)

// BufferUsage tells the device what a buffer is bound as.
type BufferUsage int

// Buffer usages
const (
	VertexBuffer BufferUsage = iota
	IndexBuffer
)

func (u BufferUsage) String() string {
	switch u {
	case VertexBuffer:
		return "vertex"
	case IndexBuffer:
		return "index"
	default:
		return "unknown"
	}
}

// Device is the graphics backend the factories build objects with.
// Handles are opaque to everything but the Device that made them.
// Methods are only called from the goroutine that owns Resources.
type Device interface {
	CreateShaderModule(stage ShaderType, code []byte) (interface{}, error)
	DestroyShaderModule(module interface{})

	// CreateProgram links a vertex and a fragment shader module.
	CreateProgram(vs, fs interface{}) (interface{}, error)
	DestroyProgram(program interface{})

	CreateBuffer(usage BufferUsage, data []byte) (interface{}, error)
	DestroyBuffer(buffer interface{})

	CreateImage(img image.Image) (interface{}, error)
	DestroyImage(img interface{})
}

// NullHandle is what NullDevice hands out.
type NullHandle struct {
	Kind   string
	Serial uint64
	Size   int
}

// NewNullDevice creates a headless Device. Nothing is drawn, it only
// keeps track of which objects are alive.
func NewNullDevice() *NullDevice {
	return &NullDevice{
		live: make(map[NullHandle]struct{}),
	}
}

// NullDevice is a Device without a GPU, used for tools and tests.
type NullDevice struct {
	mutex  sync.Mutex
	serial uint64
	live   map[NullHandle]struct{}
}

func (n *NullDevice) create(kind string, size int) NullHandle {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	n.serial++
	h := NullHandle{Kind: kind, Serial: n.serial, Size: size}
	n.live[h] = struct{}{}
	return h
}

func (n *NullDevice) destroy(h interface{}) {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	if handle, ok := h.(NullHandle); ok {
		delete(n.live, handle)
	}
}

// Live returns how many objects of kind are alive, or all of them
// when kind is empty.
func (n *NullDevice) Live(kind string) int {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	if kind == "" {
		return len(n.live)
	}
	var count int
	for h := range n.live {
		if h.Kind == kind {
			count++
		}
	}
	return count
}

// CreateShaderModule implements Device
func (n *NullDevice) CreateShaderModule(stage ShaderType, code []byte) (interface{}, error) {
	return n.create("shader", len(code)), nil
}

// DestroyShaderModule implements Device
func (n *NullDevice) DestroyShaderModule(module interface{}) { n.destroy(module) }

// CreateProgram implements Device
func (n *NullDevice) CreateProgram(vs, fs interface{}) (interface{}, error) {
	return n.create("program", 0), nil
}

// DestroyProgram implements Device
func (n *NullDevice) DestroyProgram(program interface{}) { n.destroy(program) }

// CreateBuffer implements Device
func (n *NullDevice) CreateBuffer(usage BufferUsage, data []byte) (interface{}, error) {
	return n.create(usage.String()+" buffer", len(data)), nil
}

// DestroyBuffer implements Device
func (n *NullDevice) DestroyBuffer(buffer interface{}) { n.destroy(buffer) }

// CreateImage implements Device
func (n *NullDevice) CreateImage(img image.Image) (interface{}, error) {
	b := img.Bounds()
	return n.create("image", b.Dx()*b.Dy()*4), nil
}

// DestroyImage implements Device
func (n *NullDevice) DestroyImage(img interface{}) { n.destroy(img) }
