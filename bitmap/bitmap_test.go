// Copyright 2026 The ggoled Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package bitmap

import "testing"

func TestNewFillsEveryPixel(t *testing.T) {
	on := New(4, 3, true)
	for i, v := range on.Data {
		if !v {
			t.Fatalf("pixel %d not set", i)
		}
	}
	off := New(4, 3, false)
	for i, v := range off.Data {
		if v {
			t.Fatalf("pixel %d unexpectedly set", i)
		}
	}
}

func TestCropIdentity(t *testing.T) {
	b := New(5, 4, false)
	b.SetPixel(2, 1, true)
	b.SetPixel(4, 3, true)
	got := b.Crop(0, 0, b.W, b.H)
	if !got.Equals(b) {
		t.Fatalf("crop(0,0,w,h) != self")
	}
}

func TestCropSubRegion(t *testing.T) {
	b := New(5, 5, false)
	b.SetPixel(2, 2, true)
	got := b.Crop(1, 1, 3, 3)
	if got.W != 3 || got.H != 3 {
		t.Fatalf("unexpected size %dx%d", got.W, got.H)
	}
	if !got.Pixel(1, 1) {
		t.Fatalf("expected (1,1) set after crop offset")
	}
}

func TestCropOutOfBoundsPanics(t *testing.T) {
	b := New(4, 4, false)
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	b.Crop(2, 2, 4, 4)
}

func TestBlitOpaqueOverwrites(t *testing.T) {
	dst := New(4, 4, true)
	src := New(2, 2, false)
	dst.Blit(src, 1, 1, true)
	for y := 1; y < 3; y++ {
		for x := 1; x < 3; x++ {
			if dst.Pixel(x, y) {
				t.Fatalf("pixel (%d,%d) should have been overwritten to off", x, y)
			}
		}
	}
	if !dst.Pixel(0, 0) {
		t.Fatalf("pixel outside blit region should be untouched")
	}
}

func TestBlitOrIsIdempotent(t *testing.T) {
	dst1 := New(4, 4, false)
	src := New(2, 2, true)
	dst1.Blit(src, 1, 1, false)
	once := dst1.Clone()
	dst1.Blit(src, 1, 1, false)
	if !dst1.Equals(once) {
		t.Fatalf("applying the same OR-blit twice changed the result")
	}
}

func TestBlitNeverPanicsOutOfBounds(t *testing.T) {
	dst := New(8, 8, false)
	src := New(3, 3, true)
	offsets := []int{-1000, -100, -9, -1, 0, 1, 9, 100, 1000}
	for _, x := range offsets {
		for _, y := range offsets {
			dst.Blit(src, x, y, false)
			dst.Blit(src, x, y, true)
		}
	}
}

func TestBlitEmptyIntersectionNoop(t *testing.T) {
	dst := New(4, 4, false)
	src := New(2, 2, true)
	before := dst.Clone()
	dst.Blit(src, 100, 100, true)
	if !dst.Equals(before) {
		t.Fatalf("blit with empty intersection mutated destination")
	}
}

func TestInvert(t *testing.T) {
	b := New(2, 2, false)
	b.SetPixel(0, 0, true)
	b.Invert()
	if b.Pixel(0, 0) {
		t.Fatalf("expected (0,0) inverted to off")
	}
	if !b.Pixel(1, 0) {
		t.Fatalf("expected (1,0) inverted to on")
	}
}

func TestEquals(t *testing.T) {
	a := New(3, 3, false)
	a.SetPixel(1, 1, true)
	b := a.Clone()
	if !a.Equals(b) {
		t.Fatalf("clone should be equal")
	}
	b.SetPixel(0, 0, true)
	if a.Equals(b) {
		t.Fatalf("mutated clone should not be equal")
	}
	c := New(4, 3, false)
	if a.Equals(c) {
		t.Fatalf("different dimensions should not be equal")
	}
}

func TestSingleDotBlit(t *testing.T) {
	screen := New(128, 64, false)
	dot := New(1, 1, true)
	screen.Blit(dot, 10, 5, true)
	count := 0
	for i, v := range screen.Data {
		if v {
			count++
			x, y := i%screen.W, i/screen.W
			if x != 10 || y != 5 {
				t.Fatalf("unexpected set pixel at (%d,%d)", x, y)
			}
		}
	}
	if count != 1 {
		t.Fatalf("expected exactly one set pixel, got %d", count)
	}
}

func TestFromImageRoundTripsViaToImage(t *testing.T) {
	b := New(3, 2, false)
	b.SetPixel(0, 0, true)
	b.SetPixel(2, 1, true)
	img := b.ToImage()
	got := FromImage(img)
	if !got.Equals(b) {
		t.Fatalf("FromImage(ToImage(b)) != b")
	}
}
