// Copyright 2026 The ggoled Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package textrender

import (
	"strings"

	"github.com/ggoled/ggoled/bitmap"
)

// Line is one rasterized line of text: a Bitmap cropped to the tight pixel
// bounding box of its glyphs, the full advance width the line occupies
// (including any side bearings the crop trimmed away), and the (OffsetX,
// OffsetY) of the crop's top-left corner within that advance-width x
// line-height cell. Placing Bitmap at an origin shifted by (OffsetX,
// OffsetY) from the cell's nominal top-left reproduces the same layout a
// caller would get by drawing the full, uncropped cell.
type Line struct {
	Bitmap       bitmap.Bitmap
	AdvanceWidth int
	OffsetX      int
	OffsetY      int
}

// RenderLines splits text on "\n" (after stripping any "\r") and rasterizes
// each line with f, one Line per line in order. An empty line yields a
// zero-width Bitmap of f.LineHeight() rows rather than a panic or a skipped
// entry, so callers can always zip the result against splitLines(text).
func RenderLines(f *Font, text string) []Line {
	lines := splitLines(text)
	out := make([]Line, len(lines))
	for i, line := range lines {
		if line == "" {
			out[i] = Line{Bitmap: bitmap.New(0, f.LineHeight(), false)}
			continue
		}
		b, ox, oy := f.render(line)
		out[i] = Line{Bitmap: b, AdvanceWidth: f.measureWidth(line), OffsetX: ox, OffsetY: oy}
	}
	return out
}

// MeasureLineWidths returns the pixel width each line of text would occupy
// if rasterized with f, without actually rasterizing it.
func MeasureLineWidths(f *Font, text string) []int {
	lines := splitLines(text)
	widths := make([]int, len(lines))
	for i, line := range lines {
		widths[i] = f.measureWidth(line)
	}
	return widths
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r", "")
	return strings.Split(text, "\n")
}
