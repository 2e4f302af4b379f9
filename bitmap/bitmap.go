// Copyright 2026 The ggoled Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package bitmap implements a 1-bit-per-pixel raster with blit and crop
// primitives, the foundation the rest of the display compositor is built on.
package bitmap

import (
	"fmt"
	"image"
	"image/color"
)

// Bitmap is a row-major packed bit raster of width W and height H. Pixel
// (x,y) lives at Data[y*W+x]. A Bitmap is logically immutable once placed in
// a layer: callers that need to mutate one should Crop or otherwise
// construct a new value.
type Bitmap struct {
	W, H int
	Data []bool
}

// New allocates a W by H bitmap with every pixel set to on.
func New(w, h int, on bool) Bitmap {
	if w < 0 || h < 0 {
		panic(fmt.Sprintf("bitmap: invalid size %dx%d", w, h))
	}
	data := make([]bool, w*h)
	if on {
		for i := range data {
			data[i] = true
		}
	}
	return Bitmap{W: w, H: h, Data: data}
}

// Pixel returns the value of the pixel at (x,y). x and y must be in bounds.
func (b Bitmap) Pixel(x, y int) bool {
	return b.Data[y*b.W+x]
}

func (b Bitmap) inBounds(x, y int) bool {
	return x >= 0 && x < b.W && y >= 0 && y < b.H
}

// SetPixel sets the value of the pixel at (x,y). x and y must be in bounds.
func (b Bitmap) SetPixel(x, y int, v bool) {
	b.Data[y*b.W+x] = v
}

// Crop returns a new bitmap whose pixel (i,j) equals the source's pixel
// (x+i, y+j), for i in [0,w) and j in [0,h). It panics if the requested
// rectangle is not fully contained in the source, matching the "fatal
// contract violation" policy for out-of-bounds crops.
func (b Bitmap) Crop(x, y, w, h int) Bitmap {
	if x < 0 || y < 0 || w < 0 || h < 0 || x+w > b.W || y+h > b.H {
		panic(fmt.Sprintf("bitmap: crop (%d,%d,%d,%d) out of bounds for %dx%d", x, y, w, h, b.W, b.H))
	}
	out := New(w, h, false)
	for j := 0; j < h; j++ {
		srcRow := (y + j) * b.W
		dstRow := j * w
		for i := 0; i < w; i++ {
			out.Data[dstRow+i] = b.Data[srcRow+x+i]
		}
	}
	return out
}

// Blit copies the intersection of src (placed at (x,y) in self's coordinate
// space) onto self. Negative offsets clip the source; any part of src that
// would land outside self is silently dropped. When opaque is true, every
// destination pixel in the intersection is overwritten with the
// corresponding source pixel; otherwise the destination is OR-ed with the
// source (unset source bits are transparent). Blit never panics and is a
// no-op when the intersection is empty.
func (dst Bitmap) Blit(src Bitmap, x, y int, opaque bool) {
	// Clip the source rectangle against dst's bounds in dst space, then map
	// back into src space.
	dstX0, dstY0 := x, y
	dstX1, dstY1 := x+src.W, y+src.H

	if dstX0 < 0 {
		dstX0 = 0
	}
	if dstY0 < 0 {
		dstY0 = 0
	}
	if dstX1 > dst.W {
		dstX1 = dst.W
	}
	if dstY1 > dst.H {
		dstY1 = dst.H
	}
	if dstX0 >= dstX1 || dstY0 >= dstY1 {
		return
	}

	for dy := dstY0; dy < dstY1; dy++ {
		sy := dy - y
		srcRow := sy * src.W
		dstRow := dy * dst.W
		for dx := dstX0; dx < dstX1; dx++ {
			sx := dx - x
			sv := src.Data[srcRow+sx]
			if opaque {
				dst.Data[dstRow+dx] = sv
			} else if sv {
				dst.Data[dstRow+dx] = true
			}
		}
	}
}

// Invert flips every bit in place.
func (b Bitmap) Invert() {
	for i, v := range b.Data {
		b.Data[i] = !v
	}
}

// Equals reports whether dimensions and every bit match.
func (b Bitmap) Equals(other Bitmap) bool {
	if b.W != other.W || b.H != other.H {
		return false
	}
	for i, v := range b.Data {
		if other.Data[i] != v {
			return false
		}
	}
	return true
}

// Clone returns an independent copy of b.
func (b Bitmap) Clone() Bitmap {
	out := Bitmap{W: b.W, H: b.H, Data: make([]bool, len(b.Data))}
	copy(out.Data, b.Data)
	return out
}

// ToImage exposes the bitmap as a standard library image.Image, for the
// benefit of collaborators that want to preview or export a frame (the
// terminal preview sink, the demo-layer generator) — it is never used on the
// hot composition path.
func (b Bitmap) ToImage() image.Image {
	img := image.NewGray(image.Rect(0, 0, b.W, b.H))
	for y := 0; y < b.H; y++ {
		for x := 0; x < b.W; x++ {
			if b.Pixel(x, y) {
				img.SetGray(x, y, color.Gray{Y: 0xff})
			}
		}
	}
	return img
}

// FromImage quantizes an arbitrary image.Image into a Bitmap, thresholding
// perceived luminance at 0.5 coverage — the same quantization rule the text
// renderer applies to anti-aliased glyph coverage. It exists for collaborators
// (the demo-layer generator) that produce vector graphics via an
// image.Image-based renderer and need a layer-ready Bitmap.
func FromImage(img image.Image) Bitmap {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	out := New(w, h, false)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, bl, a := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			lum := (299*r + 587*g + 114*bl) / 1000
			out.SetPixel(x, y, a > 0x7fff && lum > 0x7fff)
		}
	}
	return out
}
