// Copyright 2026 The ggoled Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package preview implements a render.Transport that renders frames to the
// controlling terminal instead of a USB base station. It lets the
// layer/render/draw stack run end to end on a machine with no headset base
// station attached.
package preview

import (
	"bytes"
	"errors"
	"image/color"
	"io"
	"os"
	"sync"

	"github.com/maruel/ansi256"
	colorable "github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"periph.io/x/conn/v3"

	"github.com/ggoled/ggoled/bitmap"
	"github.com/ggoled/ggoled/hidproto"
)

// ErrClosed is returned by Draw and PollEvent after Close.
var ErrClosed = errors.New("preview: sink closed")

var (
	onColor  = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	offColor = color.NRGBA{R: 0, G: 0, B: 0, A: 0xff}
)

// Sink renders composed frames to stdout. When stdout is a real terminal it
// redraws in place using ANSI cursor and color escapes; otherwise (piped to
// a file, captured by a test harness) it falls back to a plain ASCII grid.
type Sink struct {
	w       io.Writer
	palette ansi256.Palette
	ansi    bool

	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

// New returns a Sink that writes to stdout.
func New() *Sink {
	return &Sink{
		w:       colorable.NewColorableStdout(),
		palette: *ansi256.Default,
		ansi:    isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()),
		done:    make(chan struct{}),
	}
}

// Draw renders b to the terminal. The (x,y) placement is ignored: the
// render worker always presents the full, already-composed screen.
func (s *Sink) Draw(b bitmap.Bitmap, _, _ int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	var buf bytes.Buffer
	if s.ansi {
		buf.WriteString("\033[H\033[2J")
		for y := 0; y < b.H; y++ {
			for x := 0; x < b.W; x++ {
				c := offColor
				if b.Pixel(x, y) {
					c = onColor
				}
				buf.WriteString(s.palette.Block(c))
			}
			buf.WriteString("\033[0m\n")
		}
	} else {
		for y := 0; y < b.H; y++ {
			for x := 0; x < b.W; x++ {
				if b.Pixel(x, y) {
					buf.WriteByte('#')
				} else {
					buf.WriteByte('.')
				}
			}
			buf.WriteByte('\n')
		}
	}
	_, err := buf.WriteTo(s.w)
	return err
}

// SetBrightness is a no-op: a terminal has no backlight to dim.
func (s *Sink) SetBrightness(int) error { return nil }

// SetVolume is a no-op: a terminal has no base station speaker.
func (s *Sink) SetVolume(int) error { return nil }

// ReturnToUI is a no-op.
func (s *Sink) ReturnToUI() error { return nil }

// GetEvents always returns no events: the terminal has no input endpoint.
func (s *Sink) GetEvents() ([]hidproto.DeviceEvent, error) { return nil, nil }

// PollEvent blocks until the sink is closed, since no input ever arrives.
func (s *Sink) PollEvent() (hidproto.DeviceEvent, error) {
	<-s.done
	return hidproto.DeviceEvent{}, ErrClosed
}

// Reconnect is a no-op: a terminal sink is always "connected".
func (s *Sink) Reconnect() error { return nil }

// Close resets the terminal's color state and unblocks any pending
// PollEvent.
func (s *Sink) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.done)
	s.mu.Unlock()

	_, err := s.w.Write([]byte("\n\033[0m"))
	return err
}

// String implements fmt.Stringer.
func (s *Sink) String() string {
	return "preview.Sink"
}

// Halt implements conn.Resource.
func (s *Sink) Halt() error {
	return s.Close()
}

var _ conn.Resource = &Sink{}
