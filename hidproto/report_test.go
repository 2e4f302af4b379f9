// Copyright 2026 The ggoled Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hidproto

import (
	"testing"

	"github.com/ggoled/ggoled/bitmap"
)

const (
	screenW = 128
	screenH = 64
)

func TestSplitForReportInvariants(t *testing.T) {
	widths := []int{0, 1, 63, 64, 65, 127, 200, 256}
	heights := []int{0, 1, 7, 8, 63, 64, 100, 128}
	offsets := []int{-256, -128, -1, 0, 1, 64, 127, 200, 256}

	for _, bw := range widths {
		for _, bh := range heights {
			b := bitmap.New(bw, bh, true)
			for _, x := range offsets {
				for _, y := range offsets {
					specs := SplitForReport(b, x, y, screenW, screenH)
					for _, s := range specs {
						if s.W > maxColumnsPerCmd {
							t.Fatalf("w=%d exceeds max columns", s.W)
						}
						if s.SrcX+s.W > bw {
							t.Fatalf("srcX+w=%d exceeds bitmap width %d", s.SrcX+s.W, bw)
						}
						if s.SrcY+s.H > bh {
							t.Fatalf("srcY+h=%d exceeds bitmap height %d", s.SrcY+s.H, bh)
						}
						if s.DstX+s.W > screenW {
							t.Fatalf("dstX+w=%d exceeds screen width", s.DstX+s.W)
						}
						if s.DstY+s.H > screenH {
							t.Fatalf("dstY+h=%d exceeds screen height", s.DstY+s.H)
						}
					}
				}
			}
		}
	}
}

func TestSplitForReportEmptyWhenFullyClipped(t *testing.T) {
	b := bitmap.New(10, 10, true)
	if got := SplitForReport(b, 1000, 1000, screenW, screenH); got != nil {
		t.Fatalf("expected nil specs, got %v", got)
	}
	if got := SplitForReport(b, -1000, -1000, screenW, screenH); got != nil {
		t.Fatalf("expected nil specs, got %v", got)
	}
}

func TestSingleDotRoundTrip(t *testing.T) {
	screen := bitmap.New(screenW, screenH, false)
	dot := bitmap.New(1, 1, true)
	screen.Blit(dot, 10, 5, true)

	specs := SplitForReport(screen, 0, 0, screenW, screenH)
	if len(specs) != 2 {
		// 128 wide screen splits into two 64-column chunks.
		t.Fatalf("expected 2 specs for a full 128-wide screen, got %d", len(specs))
	}

	foundBit := false
	for _, spec := range specs {
		report := EncodeReport(screen, spec)
		strideH := strideHeight(spec.DstY, spec.H)
		for x := 0; x < spec.W; x++ {
			for y := 0; y < spec.H; y++ {
				bitIdx := x*strideH + y
				byteIdx := 6 + bitIdx/8
				set := report[byteIdx]&(1<<uint(bitIdx%8)) != 0
				absX, absY := spec.DstX+x, spec.DstY+y
				if absX == 10 && absY == 5 {
					if !set {
						t.Fatalf("expected bit for (10,5) to be set")
					}
					foundBit = true
				} else if set {
					t.Fatalf("unexpected set bit at (%d,%d)", absX, absY)
				}
			}
		}
	}
	if !foundBit {
		t.Fatalf("never found the expected set bit")
	}
}

func TestEncodeReportRoundTripsFullBitmap(t *testing.T) {
	src := bitmap.New(20, 10, false)
	src.SetPixel(0, 0, true)
	src.SetPixel(19, 9, true)
	src.SetPixel(5, 3, true)

	specs := SplitForReport(src, 3, 2, screenW, screenH)
	recovered := bitmap.New(screenW, screenH, false)
	for _, spec := range specs {
		report := EncodeReport(src, spec)
		strideH := strideHeight(spec.DstY, spec.H)
		for x := 0; x < spec.W; x++ {
			for y := 0; y < spec.H; y++ {
				bitIdx := x*strideH + y
				byteIdx := 6 + bitIdx/8
				if report[byteIdx]&(1<<uint(bitIdx%8)) != 0 {
					recovered.SetPixel(spec.DstX+x, spec.DstY+y, true)
				}
			}
		}
	}

	expected := bitmap.New(screenW, screenH, false)
	expected.Blit(src, 3, 2, true)
	if !recovered.Equals(expected) {
		t.Fatalf("round-tripped bitmap does not match source placement")
	}
}

func TestEncodeSetBrightness(t *testing.T) {
	r := EncodeSetBrightness(7)
	if r[0] != 0x06 || r[1] != 0x85 || r[2] != 7 {
		t.Fatalf("unexpected brightness report: % x", r)
	}
}

func TestEncodeSetVolume(t *testing.T) {
	loudest := EncodeSetVolume(0)
	if loudest[0] != 0x06 || loudest[1] != 0x25 || loudest[2] != 0x38 {
		t.Fatalf("unexpected volume(0) report: % x", loudest)
	}
	quietest := EncodeSetVolume(56)
	if quietest[2] != 0x00 {
		t.Fatalf("unexpected volume(56) report: % x", quietest)
	}
}

func TestEncodeReturnToUI(t *testing.T) {
	r := EncodeReturnToUI()
	if r[0] != 0x06 || r[1] != 0x95 {
		t.Fatalf("unexpected return-to-ui report: % x", r)
	}
	for i := 2; i < len(r); i++ {
		if r[i] != 0 {
			t.Fatalf("expected trailing bytes to be zero, byte %d = %d", i, r[i])
		}
	}
}
