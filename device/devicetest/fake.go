// Copyright 2026 The ggoled Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package devicetest provides a fake device.Transport for exercising the
// device package without real USB hardware: a hand-rolled
// queue-backed Write/Read double standing in for a real HID device.
package devicetest

import (
	"errors"
	"sync"
)

// ErrClosed is returned by Write/Read after Close.
var ErrClosed = errors.New("devicetest: transport closed")

// Transport is a fake device.Transport. Read blocks until a report is
// queued via QueueRead or the transport is closed, the same way a real HID
// read blocks until the device has something to say.
type Transport struct {
	mu   sync.Mutex
	cond *sync.Cond

	closed bool

	// Writes records every report passed to Write, verbatim.
	Writes [][]byte
	// FailWrites, if non-nil, is consulted before each Write call
	// (1-indexed by call count); a true entry makes that call fail.
	FailWrites map[int]bool
	writeCalls int

	reads []readResult
}

type readResult struct {
	data []byte
	err  error
}

// NewTransport returns an empty fake transport.
func NewTransport() *Transport {
	t := &Transport{}
	t.cond = sync.NewCond(&t.mu)
	return t
}

// QueueRead appends a canned report to be returned by a future Read call.
func (t *Transport) QueueRead(report []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()
	cp := make([]byte, len(report))
	copy(cp, report)
	t.reads = append(t.reads, readResult{data: cp})
	t.cond.Broadcast()
}

// QueueReadError makes a future Read call fail with err instead of
// returning a report, simulating a read-endpoint failure.
func (t *Transport) QueueReadError(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.reads = append(t.reads, readResult{err: err})
	t.cond.Broadcast()
}

// Write records the report and, if instructed, fails.
func (t *Transport) Write(b []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return 0, ErrClosed
	}
	t.writeCalls++
	if t.FailWrites != nil && t.FailWrites[t.writeCalls] {
		return 0, errors.New("devicetest: simulated write failure")
	}
	cp := make([]byte, len(b))
	copy(cp, b)
	t.Writes = append(t.Writes, cp)
	return len(b), nil
}

// Read blocks until a canned report (or error) has been queued, or the
// transport is closed.
func (t *Transport) Read(b []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for len(t.reads) == 0 && !t.closed {
		t.cond.Wait()
	}
	if t.closed && len(t.reads) == 0 {
		return 0, ErrClosed
	}
	next := t.reads[0]
	t.reads = t.reads[1:]
	if next.err != nil {
		return 0, next.err
	}
	n := copy(b, next.data)
	return n, nil
}

// WriteCount returns how many times Write has been called.
func (t *Transport) WriteCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.writeCalls
}

// Close marks the transport closed; a pending or future Read returns
// ErrClosed once its queue is drained, and Write fails immediately.
func (t *Transport) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	t.cond.Broadcast()
}
