// Copyright 2026 The ggoled Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package device

import "errors"

// Sentinel errors returned by this package. Argument-range errors are
// returned before any I/O is attempted; ErrNoDeviceFound is returned by
// Connect/Reconnect when enumeration finds nothing matching the base
// station's vendor/product/interface signature.
var (
	ErrNoDeviceFound    = errors.New("device: no matching base station found")
	ErrRangeBrightness  = errors.New("device: brightness out of range [1,10]")
	ErrRangeVolume      = errors.New("device: volume out of range [0,56]")
	ErrWriteUnavailable = errors.New("device: no write-capable endpoint open")
	ErrReadUnavailable  = errors.New("device: no read-capable endpoint open")
)
