// Copyright 2026 The ggoled Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package render owns a Transport (a real base station or a substitute, such
// as a terminal preview sink) on a dedicated goroutine and composites a
// layer.Store onto it every tick: burn-in shift, animation advance, scroll
// marquees, and present-if-changed, while forwarding device events and
// connection-state transitions to the client.
package render

import (
	"log"
	"time"

	"github.com/ggoled/ggoled/bitmap"
	"github.com/ggoled/ggoled/hidproto"
)

// Transport is the surface Worker needs from a device. *device.Device and
// *preview.Sink both satisfy it, so production code and tests/preview mode
// share one worker implementation.
type Transport interface {
	Draw(b bitmap.Bitmap, x, y int) error
	SetBrightness(v int) error
	SetVolume(v int) error
	ReturnToUI() error
	GetEvents() ([]hidproto.DeviceEvent, error)
	PollEvent() (hidproto.DeviceEvent, error)
	Reconnect() error
	Close() error
}

// ShiftMode selects the burn-in shift cycle applied to shiftable layers.
type ShiftMode int

const (
	// ShiftOff disables burn-in shifting entirely.
	ShiftOff ShiftMode = iota
	// ShiftSimple cycles through a fixed 9-position offset pattern.
	ShiftSimple
)

// shiftCycle is the fixed sequence of (dx,dy) burn-in shift offsets applied
// under ShiftSimple, advancing every shiftPeriod.
var shiftCycle = [9][2]int{
	{0, 0}, {0, -1}, {1, -1}, {1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1},
}

const (
	reconnectPeriod   = time.Second
	shiftPeriod       = 90 * time.Second
	scrollMargin      = 30
	scrollPause       = 900 * time.Millisecond
	forceRefreshEvery = time.Second
	animationCatchUp  = 8
)

// EventKind tags a RenderEvent.
type EventKind int

const (
	// EventDeviceDisconnected fires when a draw, set-volume or event-poll
	// call first observes the transport failing. A failed reconnect attempt
	// emits nothing.
	EventDeviceDisconnected EventKind = iota
	// EventDeviceReconnected fires when Reconnect succeeds after a
	// disconnection.
	EventDeviceReconnected
	// EventDevice wraps a hidproto.DeviceEvent the device itself reported
	// (volume knob, battery, headset connection state).
	EventDevice
)

// Event is a status update the worker surfaces to the client, distinct from
// the raw hidproto.DeviceEvent stream the device reports about itself.
type Event struct {
	Kind   EventKind
	Device hidproto.DeviceEvent
}

// CommandKind tags a Command sent to the worker.
type CommandKind int

const (
	CommandPlay CommandKind = iota
	CommandPause
	CommandSetVolume
	CommandSetShiftMode
	CommandStop
)

// Command is one instruction enqueued for the worker to process at the
// start of its next tick.
type Command struct {
	Kind      CommandKind
	Volume    int
	ShiftMode ShiftMode
}

// Config bundles the worker's tunables.
type Config struct {
	// ScreenW and ScreenH size the composed frame.
	ScreenW, ScreenH int
	// FPS paces the tick loop; it must be positive.
	FPS int
	// Verbose enables informational (non-warning) logging.
	Verbose bool
}

func (c Config) frameDelay() time.Duration {
	return time.Second / time.Duration(c.FPS)
}

// logf logs unconditionally; connection-state transitions and retry
// exhaustion are worth a line even in quiet mode.
func logf(format string, args ...any) {
	log.Printf(format, args...)
}

// tracef logs only when cfg.Verbose.
func (w *Worker) tracef(format string, args ...any) {
	if w.cfg.Verbose {
		log.Printf(format, args...)
	}
}
