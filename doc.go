// Copyright 2026 The ggoled Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package ggoled is a container for the packages that make up a userspace
// companion for the small monochrome OLED display built into SteelSeries
// Arctis-style USB headset base stations.
//
// bitmap implements the 1-bit framebuffer, hidproto frames it into the
// vendor's USB HID feature reports, device talks to the physical base
// station, layer and render compose and pace the animated screen, and draw
// is the client-facing facade that ties them together.
package ggoled
