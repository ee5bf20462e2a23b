// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vkr

import (
	"fmt"

	vk "github.com/devblok/vulkan"
)

// Buffer is a host visible vulkan buffer filled once on creation.
type Buffer struct {
	device vk.Device
	buffer vk.Buffer
	size   int
	memory *Allocation
}

// NewBuffer creates a buffer for usage sized for data, binds memory
// to it and uploads data.
func NewBuffer(dev vk.Device, usage vk.BufferUsageFlagBits, data []byte, a *Allocator) (*Buffer, error) {
	info := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        vk.DeviceSize(len(data)),
		Usage:       vk.BufferUsageFlags(usage),
		SharingMode: vk.SharingModeExclusive,
	}
	b := &Buffer{device: dev, size: len(data)}
	if err := vk.Error(vk.CreateBuffer(dev, &info, nil, &b.buffer)); err != nil {
		return nil, fmt.Errorf("creating %d byte buffer: %w", len(data), err)
	}

	var req vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(dev, b.buffer, &req)
	req.Deref()

	memory, err := a.Allocate(req, hostMemory)
	if err != nil {
		b.Release()
		return nil, err
	}
	b.memory = memory

	if err := vk.Error(vk.BindBufferMemory(dev, b.buffer, memory.Handle(), 0)); err != nil {
		b.Release()
		return nil, fmt.Errorf("binding buffer memory: %w", err)
	}
	if err := memory.Upload(data); err != nil {
		b.Release()
		return nil, err
	}
	return b, nil
}

// Handle returns the vulkan buffer handle.
func (b *Buffer) Handle() vk.Buffer {
	return b.buffer
}

// Size returns the number of bytes uploaded.
func (b *Buffer) Size() int {
	return b.size
}

// Release destroys the buffer and frees its memory.
func (b *Buffer) Release() {
	vk.DestroyBuffer(b.device, b.buffer, nil)
	if b.memory != nil {
		b.memory.Free()
		b.memory = nil
	}
}
