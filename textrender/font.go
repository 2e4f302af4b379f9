// Copyright 2026 The ggoled Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package textrender rasterizes UTF-8 text into per-line bitmaps for use as
// draw layers. It is a thin consumer of two external font-rasterization
// collaborators — a vector TrueType engine (github.com/golang/freetype's
// truetype package) and the standard library's bitmap-font abstraction
// (golang.org/x/image/font, typically fed basicfont.Face7x13) — neither of
// which this package re-implements.
package textrender

import (
	"image"
	"image/color"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/ggoled/ggoled/bitmap"
)

// coverageThreshold is the alpha value (out of 255) at or above which a
// rasterized glyph pixel is considered "on": 128 corresponds to the 0.5
// coverage threshold vector glyphs quantize with. Bitmap fonts render
// fully opaque or fully transparent pixels already, so the same threshold
// is a no-op for them.
const coverageThreshold = 128

// Font rasterizes single lines of text to Bitmaps. Both the vector
// (TrueType) and bitmap font backends implement it uniformly by wrapping a
// golang.org/x/image/font.Face, since truetype.NewFace already produces one.
type Font struct {
	face       font.Face
	lineHeight int
}

// NewVectorFont builds a Font that rasterizes ttf at the given point size
// using freetype's TrueType rasterizer.
func NewVectorFont(ttf *truetype.Font, sizePoints float64) *Font {
	face := truetype.NewFace(ttf, &truetype.Options{
		Size:    sizePoints,
		Hinting: font.HintingFull,
	})
	return fromFace(face)
}

// NewBitmapFont builds a Font around a pre-rasterized bitmap font face,
// such as golang.org/x/image/font/basicfont.Face7x13.
func NewBitmapFont(face font.Face) *Font {
	return fromFace(face)
}

// ParseTTF parses raw TrueType font file bytes. Acquiring those bytes (from
// disk, an embedded asset, etc.) is the caller's concern; this package only
// ever consumes an already-loaded font.
func ParseTTF(data []byte) (*truetype.Font, error) {
	return truetype.Parse(data)
}

func fromFace(face font.Face) *Font {
	m := face.Metrics()
	return &Font{face: face, lineHeight: m.Height.Ceil()}
}

// LineHeight returns the font's vertical advance, in pixels.
func (f *Font) LineHeight() int {
	return f.lineHeight
}

// measureWidth returns the pixel width text would occupy if rasterized.
func (f *Font) measureWidth(text string) int {
	if text == "" {
		return 0
	}
	return font.MeasureString(f.face, text).Ceil()
}

// render rasterizes a single, non-empty line and crops it to the tight
// pixel bounding box of its lit glyph coverage, thresholded at 0.5. It
// returns the cropped Bitmap along with the (x, y) offset of that box's
// top-left corner within the line's full advance-width/line-height cell,
// so a caller stacking lines can still place each crop at its correct
// origin. A line with no coverage above threshold (e.g. all spaces)
// yields a zero-width Bitmap and a zero offset.
func (f *Font) render(text string) (b bitmap.Bitmap, offsetX, offsetY int) {
	w := f.measureWidth(text)
	h := f.lineHeight
	if w <= 0 {
		return bitmap.New(0, h, false), 0, 0
	}

	img := image.NewAlpha(image.Rect(0, 0, w, h))
	ascent := f.face.Metrics().Ascent.Ceil()
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.Alpha{A: 0xff}),
		Face: f.face,
		Dot:  fixed.P(0, ascent),
	}
	d.DrawString(text)

	minX, minY, maxX, maxY := w, h, -1, -1
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if img.AlphaAt(x, y).A >= coverageThreshold {
				if x < minX {
					minX = x
				}
				if x > maxX {
					maxX = x
				}
				if y < minY {
					minY = y
				}
				if y > maxY {
					maxY = y
				}
			}
		}
	}
	if maxX < 0 {
		return bitmap.New(0, h, false), 0, 0
	}

	out := bitmap.New(maxX-minX+1, maxY-minY+1, false)
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			if img.AlphaAt(x, y).A >= coverageThreshold {
				out.SetPixel(x-minX, y-minY, true)
			}
		}
	}
	return out, minX, minY
}
