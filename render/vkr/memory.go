// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vkr

import (
	"errors"
	"fmt"
	"unsafe"

	vk "github.com/devblok/vulkan"
)

// memory errors
var (
	ErrNoMemoryType = errors.New("suitable memory type not found")
	ErrUploadSize   = errors.New("upload does not fit the allocation")
)

const hostMemory = vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit

// Allocator hands out device memory for buffers and images and keeps
// count of what is still allocated.
type Allocator struct {
	device vk.Device
	types  []vk.MemoryType

	live  int
	bytes uint64
}

// NewAllocator reads the memory types of phy. Memory is allocated
// on the logical device dev.
func NewAllocator(dev vk.Device, phy vk.PhysicalDevice) *Allocator {
	var props vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(phy, &props)
	props.Deref()

	types := make([]vk.MemoryType, props.MemoryTypeCount)
	for i := range types {
		props.MemoryTypes[i].Deref()
		types[i] = props.MemoryTypes[i]
	}
	return &Allocator{device: dev, types: types}
}

// Allocate returns memory that satisfies req and has every flag in props.
func (a *Allocator) Allocate(req vk.MemoryRequirements, props vk.MemoryPropertyFlagBits) (*Allocation, error) {
	index, err := a.memoryType(req.MemoryTypeBits, vk.MemoryPropertyFlags(props))
	if err != nil {
		return nil, err
	}

	info := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  req.Size,
		MemoryTypeIndex: index,
	}
	var memory vk.DeviceMemory
	if err := vk.Error(vk.AllocateMemory(a.device, &info, nil, &memory)); err != nil {
		return nil, fmt.Errorf("allocating %d bytes: %w", req.Size, err)
	}

	a.live++
	a.bytes += uint64(req.Size)
	return &Allocation{
		allocator: a,
		memory:    memory,
		size:      uint64(req.Size),
	}, nil
}

// Live returns the number of allocations not yet freed and their total size.
func (a *Allocator) Live() (int, uint64) {
	return a.live, a.bytes
}

func (a *Allocator) memoryType(filter uint32, props vk.MemoryPropertyFlags) (uint32, error) {
	for i, t := range a.types {
		if filter&(1<<uint(i)) != 0 && t.PropertyFlags&props == props {
			return uint32(i), nil
		}
	}
	return 0, fmt.Errorf("type filter %#x with properties %#x: %w", filter, props, ErrNoMemoryType)
}

// Allocation is one block of device memory.
type Allocation struct {
	allocator *Allocator
	memory    vk.DeviceMemory
	size      uint64
}

// Handle returns the vulkan memory handle.
func (m *Allocation) Handle() vk.DeviceMemory {
	return m.memory
}

// Size returns the allocated size in bytes.
func (m *Allocation) Size() uint64 {
	return m.size
}

// Upload copies data to the start of host visible memory.
func (m *Allocation) Upload(data []byte) error {
	if uint64(len(data)) > m.size {
		return fmt.Errorf("%d bytes into %d: %w", len(data), m.size, ErrUploadSize)
	}
	if len(data) == 0 {
		return nil
	}

	var ptr unsafe.Pointer
	if err := vk.Error(vk.MapMemory(m.allocator.device, m.memory, 0, vk.DeviceSize(m.size), 0, &ptr)); err != nil {
		return fmt.Errorf("mapping memory: %w", err)
	}
	vk.Memcopy(ptr, data)
	vk.UnmapMemory(m.allocator.device, m.memory)
	return nil
}

// Free returns the memory to the device. Calling Free twice does nothing.
func (m *Allocation) Free() {
	if m.allocator == nil {
		return
	}
	vk.FreeMemory(m.allocator.device, m.memory, nil)
	m.allocator.live--
	m.allocator.bytes -= m.size
	m.allocator = nil
}
