// Copyright 2026 The ggoled Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package hidproto implements the base station's vendor USB HID wire format:
// splitting an on-screen rectangle into column-major 1024-byte feature
// reports, encoding the fixed 64-byte control reports, and parsing the
// asynchronous 64-byte input event reports.
package hidproto

import "github.com/ggoled/ggoled/bitmap"

// Fixed report sizes and header bytes for the vendor protocol.
const (
	DrawReportSize    = 1024
	ControlReportSize = 64

	drawReportID     = 0x06
	drawCmd          = 0x93
	brightnessCmd    = 0x85
	volumeCmd        = 0x25
	returnToUICmd    = 0x95
	maxColumnsPerCmd = 64

	// MaxBrightness and MinBrightness bound SetBrightness's argument.
	MinBrightness = 1
	MaxBrightness = 10
	// MaxVolume bounds SetVolume's argument; 0 is the loudest.
	MaxVolume = 56
)

// ReportSpec describes one feature report's worth of a larger blit: a w by h
// rectangle sourced from (srcX,srcY) in the bitmap being sent, placed at
// (dstX,dstY) on the 128x64 screen.
type ReportSpec struct {
	W, H       int
	DstX, DstY int
	SrcX, SrcY int
}

// SplitForReport clips the rectangle (x,y,x+src.W,y+src.H) to the screen
// bounds and partitions the clipped width into chunks of at most 64 columns,
// each becoming one ReportSpec. It returns nil if the clipped rectangle is
// empty.
func SplitForReport(src bitmap.Bitmap, x, y, screenW, screenH int) []ReportSpec {
	x0, y0 := x, y
	x1, y1 := x+src.W, y+src.H

	if x0 < 0 {
		x0 = 0
	}
	if y0 < 0 {
		y0 = 0
	}
	if x1 > screenW {
		x1 = screenW
	}
	if y1 > screenH {
		y1 = screenH
	}
	if x0 >= x1 || y0 >= y1 {
		return nil
	}

	h := y1 - y0
	var specs []ReportSpec
	for chunkX := x0; chunkX < x1; chunkX += maxColumnsPerCmd {
		w := x1 - chunkX
		if w > maxColumnsPerCmd {
			w = maxColumnsPerCmd
		}
		specs = append(specs, ReportSpec{
			W:    w,
			H:    h,
			DstX: chunkX,
			DstY: y0,
			SrcX: chunkX - x,
			SrcY: y0 - y,
		})
	}
	return specs
}

// strideHeight returns the number of rows each column occupies in the
// report, padded up to a multiple of 8 to account for dstY's offset within
// its containing 8-row strip.
func strideHeight(dstY, h int) int {
	bits := dstY%8 + h
	return ((bits + 7) / 8) * 8
}

// EncodeReport renders one ReportSpec of src into a 1024-byte feature
// report, column-major, LSB-first within each byte.
func EncodeReport(src bitmap.Bitmap, spec ReportSpec) [DrawReportSize]byte {
	var report [DrawReportSize]byte
	report[0] = drawReportID
	report[1] = drawCmd
	report[2] = byte(spec.DstX)
	report[3] = byte(spec.DstY)
	report[4] = byte(spec.W)
	report[5] = byte(spec.H)

	strideH := strideHeight(spec.DstY, spec.H)
	for x := 0; x < spec.W; x++ {
		for y := 0; y < spec.H; y++ {
			if !src.Pixel(spec.SrcX+x, spec.SrcY+y) {
				continue
			}
			bitIdx := x*strideH + y
			byteIdx := 6 + bitIdx/8
			report[byteIdx] |= 1 << uint(bitIdx%8)
		}
	}
	return report
}

// EncodeSetBrightness returns the fixed 64-byte set-brightness control
// report. v must be in [MinBrightness, MaxBrightness].
func EncodeSetBrightness(v int) [ControlReportSize]byte {
	var report [ControlReportSize]byte
	report[0] = drawReportID
	report[1] = brightnessCmd
	report[2] = byte(v)
	return report
}

// EncodeSetVolume returns the fixed 64-byte set-base-station-volume control
// report. The wire encodes the inverse of v (0 is loudest), so byte 2 is
// 56-v. v must be in [0, MaxVolume].
func EncodeSetVolume(v int) [ControlReportSize]byte {
	var report [ControlReportSize]byte
	report[0] = drawReportID
	report[1] = volumeCmd
	report[2] = byte(MaxVolume - v)
	return report
}

// EncodeReturnToUI returns the fixed 64-byte return-to-host-UI control
// report.
func EncodeReturnToUI() [ControlReportSize]byte {
	var report [ControlReportSize]byte
	report[0] = drawReportID
	report[1] = returnToUICmd
	return report
}
