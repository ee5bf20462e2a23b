// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core_test

import (
	"image"
	"image/color"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/koru3d/korures/core"
)

var testImage = func() image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, 64, 64))
	for x := 0; x < 64; x++ {
		for y := 0; y < 64; y++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 4), G: uint8(y * 4), B: 128, A: 255})
		}
	}
	return img
}()

func TestSliceUint32(t *testing.T) {
	c := qt.New(t)
	data := []byte{1, 0, 0, 0, 2, 0, 0, 0, 9}
	words := core.SliceUint32(data)
	c.Assert(words, qt.HasLen, 2)
	c.Assert(core.SliceUint32(data[:3]), qt.HasLen, 0)
}

func TestSafeStrings(t *testing.T) {
	c := qt.New(t)
	c.Assert(core.SafeString("VK_KHR_swapchain"), qt.Equals, "VK_KHR_swapchain\x00")
	c.Assert(core.SafeStrings([]string{"a", "b"}), qt.DeepEquals, []string{"a\x00", "b\x00"})
}

func TestGetPixels(t *testing.T) {
	c := qt.New(t)
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(1, 1, color.RGBA{R: 10, G: 20, B: 30, A: 255})

	pix, err := core.GetPixels(img, 0)
	c.Assert(err, qt.IsNil)
	c.Assert(pix, qt.HasLen, 16)
	c.Assert(pix[12:16], qt.DeepEquals, []uint8{10, 20, 30, 255})

	pix, err = core.GetPixels(img, 16)
	c.Assert(err, qt.IsNil)
	c.Assert(pix, qt.HasLen, 32)
	c.Assert(pix[20:24], qt.DeepEquals, []uint8{10, 20, 30, 255})

	_, err = core.GetPixels(image.NewRGBA(image.Rect(0, 0, 0, 0)), 0)
	c.Assert(err, qt.Not(qt.IsNil))
}

func BenchmarkSliceUint32Small(b *testing.B) {
	data := make([]byte, 100)
	for idx := 0; idx < b.N; idx++ {
		core.SliceUint32(data)
	}
}

func BenchmarkSliceUint32Big(b *testing.B) {
	data := make([]byte, 100000)
	for idx := 0; idx < b.N; idx++ {
		core.SliceUint32(data)
	}
}

func BenchmarkGetPixelsNoRowPitch(b *testing.B) {
	for idx := 0; idx < b.N; idx++ {
		core.GetPixels(testImage, 0)
	}
}

func BenchmarkGetPixelsBigRowPitch(b *testing.B) {
	for idx := 0; idx < b.N; idx++ {
		core.GetPixels(testImage, 1000)
	}
}
