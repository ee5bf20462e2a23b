// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"fmt"
	"image"
	"image/draw"
	"unsafe"
)

// SliceUint32 reslices bytes into a uint32, that is used
// to sumbit vulkan shaders for processing. Trailing bytes
// that don't fill a whole uint32 are left out.
func SliceUint32(data []byte) []uint32 {
	if len(data) < 4 {
		return nil
	}
	return unsafe.Slice((*uint32)(unsafe.Pointer(&data[0])), len(data)/4)
}

// SafeString null terminates s for the graphics API.
func SafeString(s string) string {
	return fmt.Sprintf("%s\x00", s)
}

// SafeStrings null terminates every string in sgs.
func SafeStrings(sgs []string) []string {
	safe := []string{}
	for _, s := range sgs {
		safe = append(safe, SafeString(s))
	}
	return safe
}

// GetPixels transforms a given image into right arrangement of pixels
// by drawing the decoded image onto a controlled RGBA canvas. Rows are
// rowPitch bytes apart when it can hold a row, tightly packed otherwise.
func GetPixels(img image.Image, rowPitch int) ([]uint8, error) {
	bounds := img.Bounds()
	if bounds.Empty() {
		return nil, fmt.Errorf("image of size %dx%d has no pixels", bounds.Dx(), bounds.Dy())
	}

	stride := 4 * bounds.Dx()
	if rowPitch > stride {
		stride = rowPitch
	}
	newImg := &image.RGBA{
		Pix:    make([]uint8, stride*bounds.Dy()),
		Stride: stride,
		Rect:   bounds,
	}
	draw.Draw(newImg, newImg.Bounds(), img, bounds.Min, draw.Src)
	return newImg.Pix, nil
}
