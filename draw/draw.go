// Copyright 2026 The ggoled Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package draw is the client-facing facade over the layer store and render
// worker: construct a Handle around a connected device (or a substitute
// transport such as a terminal preview sink), add layers to it, and the
// background worker keeps the screen composed and presented.
package draw

import (
	"golang.org/x/image/font/basicfont"

	"github.com/ggoled/ggoled/bitmap"
	"github.com/ggoled/ggoled/device"
	"github.com/ggoled/ggoled/layer"
	"github.com/ggoled/ggoled/render"
	"github.com/ggoled/ggoled/textrender"
)

// TextMode selects how an overflowing line of text is handled by
// AddTextWithMode.
type TextMode int

const (
	// ImageMode leaves a long line as a static, clipped image layer.
	ImageMode TextMode = iota
	// ScrollMode promotes a line at least as wide as the screen to a
	// scrolling marquee layer.
	ScrollMode
)

// Handle is the entry point applications use: it owns the layer store and
// the render worker started in New, and exposes them through the narrower
// surface callers actually need.
type Handle struct {
	store  *layer.Store
	worker *render.Worker
	font   *textrender.Font
	cfg    render.Config
	device render.Transport
}

// New spawns a render worker over device at the given frame rate and
// returns a ready-to-use Handle. Playback starts paused; call Play to begin
// presenting frames. The default text renderer is a bitmap font
// (basicfont.Face7x13); swap it with SetFont before adding text layers if a
// vector font is wanted instead.
func New(dev render.Transport, fps int) *Handle {
	store := layer.NewStore()
	cfg := render.Config{ScreenW: device.ScreenW, ScreenH: device.ScreenH, FPS: fps}
	worker := render.New(dev, store, cfg)
	go worker.Run()
	return &Handle{
		store:  store,
		worker: worker,
		font:   textrender.NewBitmapFont(basicfont.Face7x13),
		cfg:    cfg,
		device: dev,
	}
}

// SetFont replaces the text renderer used by AddText and friends.
func (h *Handle) SetFont(f *textrender.Font) {
	h.font = f
}

// Play resumes composition and presentation.
func (h *Handle) Play() {
	h.worker.Commands() <- render.Command{Kind: render.CommandPlay}
}

// Pause freezes the worker on its last presented frame.
func (h *Handle) Pause() {
	h.worker.Commands() <- render.Command{Kind: render.CommandPause}
}

// SetShiftMode changes the burn-in shift cycle applied to shiftable layers.
func (h *Handle) SetShiftMode(m render.ShiftMode) {
	h.worker.Commands() <- render.Command{Kind: render.CommandSetShiftMode, ShiftMode: m}
}

// SetVolume forwards a base-station volume change to the device.
func (h *Handle) SetVolume(v int) {
	h.worker.Commands() <- render.Command{Kind: render.CommandSetVolume, Volume: v}
}

// AddLayer appends layer directly, bypassing the text/image convenience
// constructors.
func (h *Handle) AddLayer(l layer.DrawLayer) layer.Id {
	return h.store.Add(l)
}

// RemoveLayer deletes a single layer.
func (h *Handle) RemoveLayer(id layer.Id) {
	h.store.Remove(id)
}

// RemoveLayers deletes several layers at once.
func (h *Handle) RemoveLayers(ids []layer.Id) {
	h.store.RemoveMany(ids)
}

// ClearLayers removes every layer.
func (h *Handle) ClearLayers() {
	h.store.Clear()
}

// Transaction batches layer edits under a single store lock acquisition: the
// render worker observes either none or all of a transaction's edits in any
// given frame. It wraps the store-level transaction with the text helpers
// that need the handle's font and screen geometry.
type Transaction struct {
	h  *Handle
	tx *layer.Transaction
}

// Add appends a layer within the transaction.
func (t *Transaction) Add(l layer.DrawLayer) layer.Id {
	return t.tx.Add(l)
}

// Remove deletes a layer within the transaction.
func (t *Transaction) Remove(id layer.Id) {
	t.tx.Remove(id)
}

// RemoveMany deletes several layers within the transaction.
func (t *Transaction) RemoveMany(ids []layer.Id) {
	t.tx.RemoveMany(ids)
}

// Clear removes every layer within the transaction.
func (t *Transaction) Clear() {
	t.tx.Clear()
}

// AddTextWithMode rasterizes and adds text layers within the transaction,
// with the same semantics as Handle.AddTextWithMode.
func (t *Transaction) AddTextWithMode(text string, x, y *int, shift bool, mode TextMode) []layer.Id {
	return t.h.addTextLayers(t.tx, text, x, y, shift, mode)
}

// TransactLayers acquires the layer store's lock once, runs f against a
// transaction handle, and returns f's result.
func (h *Handle) TransactLayers(f func(*Transaction) any) any {
	var result any
	h.store.Transact(func(tx *layer.Transaction) {
		result = f(&Transaction{h: h, tx: tx})
	})
	return result
}

// AddImage adds a static, shiftable image layer.
func (h *Handle) AddImage(b bitmap.Bitmap, x, y int) layer.Id {
	return h.store.Add(layer.DrawLayer{Kind: layer.KindImage, ApplyShift: true, Bitmap: b, X: x, Y: y})
}

// AddImageNoShift adds a static image layer exempt from burn-in shift.
func (h *Handle) AddImageNoShift(b bitmap.Bitmap, x, y int) layer.Id {
	return h.store.Add(layer.DrawLayer{Kind: layer.KindImage, ApplyShift: false, Bitmap: b, X: x, Y: y})
}

// AddAnimation adds a shiftable frame-sequence layer.
func (h *Handle) AddAnimation(frames []layer.Frame, x, y int, followFPS bool) layer.Id {
	return h.store.Add(layer.DrawLayer{
		Kind: layer.KindAnimation, ApplyShift: true,
		Frames: frames, X: x, Y: y, FollowFPS: followFPS,
	})
}

// AddScroll adds a shiftable horizontal marquee layer.
func (h *Handle) AddScroll(b bitmap.Bitmap, y int) layer.Id {
	return h.store.Add(layer.DrawLayer{Kind: layer.KindScroll, ApplyShift: true, Bitmap: b, Y: y})
}

// AddScrollNoShift adds a marquee layer exempt from burn-in shift.
func (h *Handle) AddScrollNoShift(b bitmap.Bitmap, y int) layer.Id {
	return h.store.Add(layer.DrawLayer{Kind: layer.KindScroll, ApplyShift: false, Bitmap: b, Y: y})
}

// AddText rasterizes text and adds one shiftable layer per line, centered
// on an unset axis; a line at least as wide as the screen becomes a
// scrolling marquee.
func (h *Handle) AddText(text string, x, y *int) []layer.Id {
	return h.AddTextWithMode(text, x, y, true, ScrollMode)
}

// AddTextNoShift is AddText without burn-in shift applied to the resulting
// layers.
func (h *Handle) AddTextNoShift(text string, x, y *int) []layer.Id {
	return h.AddTextWithMode(text, x, y, false, ScrollMode)
}

// AddTextWithMode is the full form behind AddText/AddTextNoShift: mode
// controls whether a line at least as wide as the screen becomes a
// scrolling marquee (ScrollMode) or stays a static, clipped image
// (ImageMode). All of a call's layers are added within a single
// transaction, so the renderer never observes half the block.
func (h *Handle) AddTextWithMode(text string, x, y *int, shift bool, mode TextMode) []layer.Id {
	var ids []layer.Id
	h.store.Transact(func(tx *layer.Transaction) {
		ids = h.addTextLayers(tx, text, x, y, shift, mode)
	})
	return ids
}

func (h *Handle) addTextLayers(tx *layer.Transaction, text string, x, y *int, shift bool, mode TextMode) []layer.Id {
	lines := textrender.RenderLines(h.font, text)
	lineH := h.font.LineHeight()

	blockY := 0
	if y != nil {
		blockY = *y
	} else {
		blockY = (h.cfg.ScreenH - len(lines)*lineH) / 2
	}

	var ids []layer.Id
	for i, line := range lines {
		ly := blockY + i*lineH + line.OffsetY
		if mode == ScrollMode && line.AdvanceWidth >= h.cfg.ScreenW {
			ids = append(ids, tx.Add(layer.DrawLayer{
				Kind: layer.KindScroll, ApplyShift: shift, Bitmap: line.Bitmap, Y: ly,
			}))
			continue
		}
		lx := 0
		if x != nil {
			lx = *x + line.OffsetX
		} else {
			lx = (h.cfg.ScreenW-line.AdvanceWidth)/2 + line.OffsetX
		}
		ids = append(ids, tx.Add(layer.DrawLayer{
			Kind: layer.KindImage, ApplyShift: shift, Bitmap: line.Bitmap, X: lx, Y: ly,
		}))
	}
	return ids
}

// TryEvent returns the next available render.Event without blocking.
func (h *Handle) TryEvent() (render.Event, bool) {
	select {
	case ev := <-h.worker.Events():
		return ev, true
	default:
		return render.Event{}, false
	}
}

// PollEvent blocks until the worker publishes a render.Event.
func (h *Handle) PollEvent() render.Event {
	return <-h.worker.Events()
}

// FontLineHeight returns the active text renderer's line height in pixels.
func (h *Handle) FontLineHeight() int {
	return h.font.LineHeight()
}

// MeasureLineWidths returns the pixel width each line of text would occupy
// without rasterizing it.
func (h *Handle) MeasureLineWidths(text string) []int {
	return textrender.MeasureLineWidths(h.font, text)
}

// CenterBitmap returns the (x,y) offset that centers b on the screen.
func (h *Handle) CenterBitmap(b bitmap.Bitmap) (int, int) {
	return (h.cfg.ScreenW - b.W) / 2, (h.cfg.ScreenH - b.H) / 2
}

// Stop tells the worker to finish its current tick and exit, waits for it,
// and returns the underlying transport for the caller to close or reuse.
func (h *Handle) Stop() render.Transport {
	h.worker.Commands() <- render.Command{Kind: render.CommandStop}
	<-h.worker.Done()
	return h.device
}
