// Copyright 2026 The ggoled Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package device talks to the physical headset base station over USB HID:
// enumeration, the column-major feature-report draw protocol, the fixed
// control reports, asynchronous input events, and reconnection after a
// transient failure.
package device

import (
	"fmt"
	"time"

	"github.com/karalabe/hid"
	"periph.io/x/conn/v3"

	"github.com/ggoled/ggoled/bitmap"
	"github.com/ggoled/ggoled/hidproto"
)

const (
	vendorID = 0x1038
	// oledInterfaceNumber is the fixed USB interface the base station
	// exposes its HID report descriptors on.
	oledInterfaceNumber = 4

	// writeUsage and readUsage are the Usage values (as derived by the HID
	// parser backing github.com/karalabe/hid's enumeration, from the report
	// descriptor's Usage key) that identify the OLED draw endpoint and the
	// device's preferred info/read endpoint, respectively. They stand in
	// for the raw "second descriptor byte" heuristic described in the
	// protocol notes: karalabe/hid's DeviceInfo surfaces the parsed
	// Usage/UsagePage pair rather than the raw descriptor bytes, so the
	// byte-level check is expressed against the equivalent parsed field.
	writeUsage = 0xc0
	readUsage  = 0x00

	// ScreenW and ScreenH are the base station OLED's fixed dimensions.
	ScreenW = 128
	ScreenH = 64

	maxSendAttempts = 11
)

var allowedProductIDs = map[uint16]bool{
	0x12cb: true,
	0x12cd: true,
	0x12e0: true,
	0x12e5: true,
	0x225d: true,
}

// Transport is the minimal surface this package needs from a HID device
// handle. *hid.Device satisfies it directly; NewWithTransport lets tests and
// alternative transports (a loopback pair, a recorded fixture) drive a
// Device without real hardware.
type Transport interface {
	Write([]byte) (int, error)
	Read([]byte) (int, error)
	Close()
}

// Device is an open handle to a base station. It is intended to be owned
// exclusively by a single goroutine (the render worker) for the duration of
// playback.
type Device struct {
	write Transport
	read  Transport

	events   chan hidproto.DeviceEvent
	readErr  chan error
	readDone chan struct{}
}

// NewWithTransport builds a Device around already-open transports, bypassing
// enumeration. write may be nil (draws/control reports fail with
// ErrWriteUnavailable) and so may read (events are unavailable). This is the
// seam tests use in place of Connect.
func NewWithTransport(write, read Transport) *Device {
	d := &Device{write: write, read: read}
	if read != nil {
		d.startReader()
	}
	return d
}

// Connect enumerates HID devices for a matching base station, opens the
// OLED write endpoint and (best-effort) the info read endpoint, and returns
// a ready-to-use Device. It fails with ErrNoDeviceFound if no device on this
// host matches the vendor id, product id allow-list and fixed interface
// number.
func Connect() (*Device, error) {
	infos := hid.Enumerate(vendorID, 0)

	var writeInfo, readInfo *hid.DeviceInfo
	var anyInfo *hid.DeviceInfo
	for i := range infos {
		info := infos[i]
		if !allowedProductIDs[info.ProductID] || info.Interface != oledInterfaceNumber {
			continue
		}
		anyInfo = &info
		switch {
		case info.Usage == writeUsage && writeInfo == nil:
			writeInfo = &info
		case info.Usage == readUsage && readInfo == nil:
			readInfo = &info
		}
	}
	if writeInfo == nil {
		if anyInfo == nil {
			return nil, ErrNoDeviceFound
		}
		// Fall back to any matching endpoint for writes if none was
		// unambiguously tagged as the OLED endpoint.
		writeInfo = anyInfo
	}
	if readInfo == nil {
		for i := range infos {
			info := infos[i]
			if !allowedProductIDs[info.ProductID] || info.Interface != oledInterfaceNumber {
				continue
			}
			if writeInfo != nil && info.Path == writeInfo.Path && info.Usage == writeInfo.Usage {
				continue
			}
			readInfo = &info
			break
		}
	}

	writeDev, err := writeInfo.Open()
	if err != nil {
		return nil, fmt.Errorf("device: opening write endpoint: %w", err)
	}

	var readDev *hid.Device
	if readInfo != nil {
		// The platform quirk where both logical endpoints collapse to the
		// same path is handled transparently: opening the same path twice
		// is a legal, if redundant, hidapi operation.
		readDev, err = readInfo.Open()
		if err != nil {
			readDev = nil
		}
	} else {
		// Best effort: some platforms only ever expose one path for both
		// directions.
		readDev, err = writeInfo.Open()
		if err != nil {
			readDev = nil
		}
	}

	d := &Device{write: writeDev}
	if readDev != nil {
		d.read = readDev
		d.startReader()
	}
	return d, nil
}

// startReader spawns the background goroutine that turns the transport's
// blocking Read into the non-blocking GetEvents()/blocking PollEvent()
// surface the render worker needs, without requiring the underlying HID
// library to expose an explicit blocking-mode toggle.
func (d *Device) startReader() {
	d.events = make(chan hidproto.DeviceEvent, 32)
	d.readErr = make(chan error, 1)
	d.readDone = make(chan struct{})
	go func() {
		defer close(d.readDone)
		var buf [hidproto.ControlReportSize]byte
		for {
			n, err := d.read.Read(buf[:])
			if err != nil {
				select {
				case d.readErr <- err:
				default:
				}
				return
			}
			if n == 0 {
				continue
			}
			if ev, ok := hidproto.ParseEvent(buf); ok {
				select {
				case d.events <- ev:
				default:
					// Drop the oldest-pending event rather than block the
					// reader goroutine forever.
					select {
					case <-d.events:
					default:
					}
					d.events <- ev
				}
			}
		}
	}()
}

// Draw blits bitmap at (x,y) on the device screen, splitting it into
// feature reports and sending each with quadratic backoff retry.
func (d *Device) Draw(b bitmap.Bitmap, x, y int) error {
	specs := hidproto.SplitForReport(b, x, y, ScreenW, ScreenH)
	for _, spec := range specs {
		report := hidproto.EncodeReport(b, spec)
		if err := d.sendWithRetry(report[:]); err != nil {
			return err
		}
	}
	return nil
}

// SetBrightness sends the fixed brightness control report. v must be in
// [hidproto.MinBrightness, hidproto.MaxBrightness].
func (d *Device) SetBrightness(v int) error {
	if v < hidproto.MinBrightness || v > hidproto.MaxBrightness {
		return ErrRangeBrightness
	}
	report := hidproto.EncodeSetBrightness(v)
	return d.sendWithRetry(report[:])
}

// SetVolume sends the fixed base-station-volume control report. v must be
// in [0, hidproto.MaxVolume].
func (d *Device) SetVolume(v int) error {
	if v < 0 || v > hidproto.MaxVolume {
		return ErrRangeVolume
	}
	report := hidproto.EncodeSetVolume(v)
	return d.sendWithRetry(report[:])
}

// ReturnToUI sends the fixed return-to-host-UI control report.
func (d *Device) ReturnToUI() error {
	report := hidproto.EncodeReturnToUI()
	return d.sendWithRetry(report[:])
}

func (d *Device) sendWithRetry(report []byte) error {
	if d.write == nil {
		return ErrWriteUnavailable
	}
	var lastErr error
	for attempt := 1; attempt <= maxSendAttempts; attempt++ {
		if _, err := d.write.Write(report); err == nil {
			return nil
		} else {
			lastErr = err
		}
		if attempt < maxSendAttempts {
			time.Sleep(time.Duration(attempt*attempt) * time.Millisecond)
		}
	}
	return fmt.Errorf("device: send failed after %d attempts: %w", maxSendAttempts, lastErr)
}

// GetEvents drains all input events that have arrived since the last call,
// without blocking. It returns a non-nil error if the background reader has
// observed the read endpoint fail.
func (d *Device) GetEvents() ([]hidproto.DeviceEvent, error) {
	if d.read == nil {
		return nil, nil
	}
	select {
	case err := <-d.readErr:
		return nil, err
	default:
	}
	var out []hidproto.DeviceEvent
	for {
		select {
		case ev := <-d.events:
			out = append(out, ev)
		default:
			return out, nil
		}
	}
}

// PollEvent blocks until exactly one input event arrives, or the read
// endpoint fails.
func (d *Device) PollEvent() (hidproto.DeviceEvent, error) {
	if d.read == nil {
		return hidproto.DeviceEvent{}, ErrReadUnavailable
	}
	select {
	case ev := <-d.events:
		return ev, nil
	case err := <-d.readErr:
		return hidproto.DeviceEvent{}, err
	}
}

// Reconnect closes the current handles and replaces them with a freshly
// connected device. On success the prior endpoints are closed only once the
// new ones are confirmed open, so a failed reconnect leaves the old (dead)
// handles in place rather than leaking file descriptors silently.
func (d *Device) Reconnect() error {
	fresh, err := Connect()
	if err != nil {
		return err
	}
	d.Close()
	*d = *fresh
	return nil
}

// Close releases the underlying HID handles.
func (d *Device) Close() error {
	if d.write != nil {
		d.write.Close()
	}
	if d.read != nil {
		d.read.Close()
	}
	return nil
}

// String implements fmt.Stringer.
func (d *Device) String() string {
	return fmt.Sprintf("device.Device{write=%v, read=%v}", d.write != nil, d.read != nil)
}

// Halt implements conn.Resource.
func (d *Device) Halt() error {
	return d.Close()
}

var _ conn.Resource = &Device{}
