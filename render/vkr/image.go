// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vkr

import (
	"fmt"
	"image"

	vk "github.com/devblok/vulkan"
	"github.com/koru3d/korures/core"
)

// Image is a linear RGBA texture image in host visible memory.
type Image struct {
	device vk.Device
	image  vk.Image
	width  int
	height int
	memory *Allocation
}

// NewImage creates an image the size of img and copies its pixels in,
// row by row as the driver lays them out.
func NewImage(dev vk.Device, img image.Image, a *Allocator) (*Image, error) {
	bounds := img.Bounds()
	info := vk.ImageCreateInfo{
		SType:     vk.StructureTypeImageCreateInfo,
		ImageType: vk.ImageType2d,
		Extent: vk.Extent3D{
			Width:  uint32(bounds.Dx()),
			Height: uint32(bounds.Dy()),
			Depth:  1,
		},
		MipLevels:     1,
		ArrayLayers:   1,
		Format:        vk.FormatR8g8b8a8Unorm,
		Tiling:        vk.ImageTilingLinear,
		InitialLayout: vk.ImageLayoutPreinitialized,
		Usage:         vk.ImageUsageFlags(vk.ImageUsageSampledBit),
		SharingMode:   vk.SharingModeExclusive,
		Samples:       vk.SampleCount1Bit,
	}

	i := &Image{device: dev, width: bounds.Dx(), height: bounds.Dy()}
	if err := vk.Error(vk.CreateImage(dev, &info, nil, &i.image)); err != nil {
		return nil, fmt.Errorf("creating %dx%d image: %w", i.width, i.height, err)
	}

	var req vk.MemoryRequirements
	vk.GetImageMemoryRequirements(dev, i.image, &req)
	req.Deref()

	memory, err := a.Allocate(req, hostMemory)
	if err != nil {
		i.Release()
		return nil, err
	}
	i.memory = memory

	if err := vk.Error(vk.BindImageMemory(dev, i.image, memory.Handle(), 0)); err != nil {
		i.Release()
		return nil, fmt.Errorf("binding image memory: %w", err)
	}

	subresource := vk.ImageSubresource{
		AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
	}
	var layout vk.SubresourceLayout
	vk.GetImageSubresourceLayout(dev, i.image, &subresource, &layout)
	layout.Deref()

	pixels, err := core.GetPixels(img, int(layout.RowPitch))
	if err != nil {
		i.Release()
		return nil, err
	}
	if err := memory.Upload(pixels); err != nil {
		i.Release()
		return nil, err
	}
	return i, nil
}

// Handle returns the vulkan image handle.
func (i *Image) Handle() vk.Image {
	return i.image
}

// Size returns the width and height in pixels.
func (i *Image) Size() (int, int) {
	return i.width, i.height
}

// Release destroys the image and frees its memory.
func (i *Image) Release() {
	vk.DestroyImage(i.device, i.image, nil)
	if i.memory != nil {
		i.memory.Free()
		i.memory = nil
	}
}
