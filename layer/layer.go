// Copyright 2026 The ggoled Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package layer holds the ordered set of things a render worker composites
// onto the screen each tick: static images, animations, and scrolling
// marquees, plus the worker-owned state each needs to advance over time.
package layer

import (
	"time"

	"github.com/ggoled/ggoled/bitmap"
)

// Id is an opaque, monotonically increasing, never-reused identifier.
// The zero value means "none".
type Id uint64

// Kind tags which shape a DrawLayer holds.
type Kind int

const (
	// KindImage is a static blit of Bitmap at (X,Y).
	KindImage Kind = iota
	// KindAnimation advances through Frames, either one per tick
	// (FollowFPS) or paced by each frame's own Delay.
	KindAnimation
	// KindScroll is an infinite horizontal marquee of Bitmap at height Y.
	KindScroll
)

// Frame pairs an animation bitmap with how long it should be shown before
// advancing. A zero Delay is treated as "one tick" by the renderer.
type Frame struct {
	Bitmap bitmap.Bitmap
	Delay  time.Duration
}

// DrawLayer describes one visual element in the compositor. Image and
// Scroll each have a "NoShift" counterpart in the public draw package API;
// both collapse to the same Kind here with ApplyShift distinguishing them,
// since the only behavioral difference is whether the burn-in shift offset
// applies to this layer.
type DrawLayer struct {
	Kind       Kind
	ApplyShift bool

	// Image: the bitmap to blit, and its placement.
	Bitmap bitmap.Bitmap
	X, Y   int

	// Animation: the frame sequence and advance mode. X, Y above give its
	// placement.
	Frames    []Frame
	FollowFPS bool

	// Scroll: Bitmap is the marquee content, Y its row. X is unused.
}

// State is the worker-owned bookkeeping that advances a layer between
// ticks. It is reset to its zero value (plus NextUpdate=now) when a layer
// is added.
type State struct {
	// Animation
	Ticks      int
	RenderIdx  int
	NextUpdate time.Time

	// Scroll
	ScrollX    int
	PauseUntil time.Time // zero value means "not paused"
}

// newState builds the initial bookkeeping for a freshly added layer.
func newState(now time.Time) State {
	return State{NextUpdate: now}
}
