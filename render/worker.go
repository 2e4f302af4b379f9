// Copyright 2026 The ggoled Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package render

import (
	"time"

	"github.com/ggoled/ggoled/bitmap"
	"github.com/ggoled/ggoled/layer"
)

// Worker owns a Transport and a layer.Store and composites them together on
// a dedicated goroutine, one tick per frame period. It is constructed by the
// draw package and never used directly by an application.
type Worker struct {
	transport Transport
	store     *layer.Store
	cfg       Config

	commands chan Command
	events   chan Event
	done     chan struct{}

	playing            bool
	shiftMode          ShiftMode
	shiftIndex         int
	lastShiftAt        time.Time
	connected          bool
	lastConnectAttempt time.Time
	prevScreen         bitmap.Bitmap
	lastFrameTime      time.Time
}

// renderOp is a planned blit: src placed at (x,y) in screen space. Built
// while holding the layer store's lock, consumed after releasing it.
type renderOp struct {
	bitmap bitmap.Bitmap
	x, y   int
}

// New builds a Worker. The transport is assumed already connected; playback
// starts paused, so nothing is presented until a CommandPlay arrives.
func New(transport Transport, store *layer.Store, cfg Config) *Worker {
	now := time.Now()
	return &Worker{
		transport:   transport,
		store:       store,
		cfg:         cfg,
		commands:    make(chan Command, 16),
		events:      make(chan Event, 32),
		done:        make(chan struct{}),
		connected:   true,
		lastShiftAt: now,
	}
}

// Commands returns the channel used to send this worker instructions.
func (w *Worker) Commands() chan<- Command {
	return w.commands
}

// Events returns the channel the worker publishes status updates on.
func (w *Worker) Events() <-chan Event {
	return w.events
}

// Done is closed once Run returns, after processing a Stop command.
func (w *Worker) Done() <-chan struct{} {
	return w.done
}

// Run executes the per-tick loop until it receives CommandStop. It is meant
// to be called as `go worker.Run()` by the draw package.
func (w *Worker) Run() {
	defer close(w.done)
	for {
		if w.tick() {
			return
		}
	}
}

func (w *Worker) tick() (stop bool) {
	tickStart := time.Now()

	// A Stop still finishes this iteration: the last frame is composed and
	// presented, and pending device events are forwarded, before Run returns.
	stop = w.drainCommands()

	w.maybeReconnect()

	if w.connected && w.playing {
		w.renderFrame()
	}

	w.drainDeviceEvents()

	if stop {
		return true
	}
	w.pace(tickStart)
	return false
}

func (w *Worker) drainCommands() (stop bool) {
	for {
		select {
		case cmd := <-w.commands:
			switch cmd.Kind {
			case CommandPlay:
				w.playing = true
			case CommandPause:
				w.playing = false
			case CommandSetVolume:
				if w.connected {
					if err := w.transport.SetVolume(cmd.Volume); err != nil {
						w.markDisconnected("set volume", err)
					}
				}
			case CommandSetShiftMode:
				w.shiftMode = cmd.ShiftMode
			case CommandStop:
				stop = true
			}
		default:
			return stop
		}
	}
}

func (w *Worker) maybeReconnect() {
	if w.connected {
		return
	}
	now := time.Now()
	if now.Sub(w.lastConnectAttempt) < reconnectPeriod {
		return
	}
	w.lastConnectAttempt = now
	if err := w.transport.Reconnect(); err != nil {
		w.tracef("render: reconnect attempt failed: %v", err)
		return
	}
	w.connected = true
	logf("render: device reconnected")
	w.emit(Event{Kind: EventDeviceReconnected})
}

func (w *Worker) markDisconnected(action string, err error) {
	if w.connected {
		logf("render: %s failed, marking device disconnected: %v", action, err)
		w.emit(Event{Kind: EventDeviceDisconnected})
	}
	w.connected = false
}

// emit delivers ev without blocking the worker, dropping the oldest queued
// event if the client has fallen behind rather than stalling a tick.
func (w *Worker) emit(ev Event) {
	select {
	case w.events <- ev:
	default:
		select {
		case <-w.events:
		default:
		}
		select {
		case w.events <- ev:
		default:
		}
	}
}

func (w *Worker) currentShift(now time.Time) (int, int) {
	if w.shiftMode == ShiftOff {
		return 0, 0
	}
	if now.Sub(w.lastShiftAt) >= shiftPeriod {
		w.shiftIndex = (w.shiftIndex + 1) % len(shiftCycle)
		w.lastShiftAt = now
	}
	off := shiftCycle[w.shiftIndex]
	return off[0], off[1]
}

func (w *Worker) renderFrame() {
	now := time.Now()
	sx, sy := w.currentShift(now)
	ops := w.planOps(now, sx, sy)

	screen := bitmap.New(w.cfg.ScreenW, w.cfg.ScreenH, false)
	for _, op := range ops {
		screen.Blit(op.bitmap, op.x, op.y, false)
	}
	w.present(now, screen)
}

// planOps locks the store for exactly as long as it takes to walk every
// layer and plan this tick's blits, mutating each layer's animation/scroll
// bookkeeping along the way. The composite itself happens after the lock is
// released.
func (w *Worker) planOps(now time.Time, sx, sy int) []renderOp {
	var ops []renderOp
	w.store.Visit(func(_ layer.Id, l *layer.DrawLayer, st *layer.State) {
		dx, dy := 0, 0
		if l.ApplyShift {
			dx, dy = sx, sy
		}
		switch l.Kind {
		case layer.KindImage:
			ops = append(ops, renderOp{bitmap: l.Bitmap, x: l.X + dx, y: l.Y + dy})
		case layer.KindAnimation:
			if frame, ok := w.advanceAnimation(l, st, now); ok {
				ops = append(ops, renderOp{bitmap: frame, x: l.X + dx, y: l.Y + dy})
			}
		case layer.KindScroll:
			ops = append(ops, w.planScroll(l, st, now, dx, dy)...)
		}
	})
	return ops
}

func (w *Worker) advanceAnimation(l *layer.DrawLayer, st *layer.State, now time.Time) (bitmap.Bitmap, bool) {
	n := len(l.Frames)
	if n == 0 {
		return bitmap.Bitmap{}, false
	}
	if l.FollowFPS {
		idx := st.Ticks % n
		st.Ticks++
		return l.Frames[idx].Bitmap, true
	}

	if st.NextUpdate.IsZero() {
		st.NextUpdate = now
	}
	renderIdx := st.RenderIdx
	for steps := 0; !now.Before(st.NextUpdate); steps++ {
		if steps >= animationCatchUp {
			st.NextUpdate = now.Add(w.cfg.frameDelay())
			break
		}
		delay := l.Frames[st.RenderIdx].Delay
		if delay <= 0 {
			delay = w.cfg.frameDelay()
		}
		st.NextUpdate = st.NextUpdate.Add(delay)
		st.RenderIdx = (st.RenderIdx + 1) % n
	}
	return l.Frames[renderIdx].Bitmap, true
}

func (w *Worker) planScroll(l *layer.DrawLayer, st *layer.State, now time.Time, dx, dy int) []renderOp {
	scrollW := l.Bitmap.W + scrollMargin
	if scrollW <= 0 {
		return nil
	}
	dupes := 1 + w.cfg.ScreenW/scrollW

	var ops []renderOp
	for i := 0; i <= dupes; i++ {
		ops = append(ops, renderOp{bitmap: l.Bitmap, x: st.ScrollX + dx + i*scrollW, y: l.Y + dy})
	}

	switch {
	case st.PauseUntil.IsZero():
		st.ScrollX--
		if st.ScrollX <= -scrollW {
			st.ScrollX += scrollW
			st.PauseUntil = now.Add(scrollPause)
		}
	case !now.Before(st.PauseUntil):
		st.PauseUntil = time.Time{}
	}
	return ops
}

func (w *Worker) present(now time.Time, screen bitmap.Bitmap) {
	changed := !screen.Equals(w.prevScreen)
	forceRefresh := now.Sub(w.lastFrameTime) >= forceRefreshEvery
	if !changed && !forceRefresh {
		return
	}
	if err := w.transport.Draw(screen, 0, 0); err != nil {
		w.markDisconnected("draw", err)
		return
	}
	w.prevScreen = screen
	w.lastFrameTime = now
}

func (w *Worker) drainDeviceEvents() {
	if !w.connected {
		return
	}
	evs, err := w.transport.GetEvents()
	if err != nil {
		w.markDisconnected("poll events", err)
		return
	}
	for _, ev := range evs {
		w.emit(Event{Kind: EventDevice, Device: ev})
	}
}

func (w *Worker) pace(tickStart time.Time) {
	remaining := w.cfg.frameDelay() - time.Since(tickStart)
	if remaining > 0 {
		time.Sleep(remaining)
	}
}
