// Copyright 2026 The ggoled Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package render_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ggoled/ggoled/bitmap"
	"github.com/ggoled/ggoled/hidproto"
	"github.com/ggoled/ggoled/layer"
	"github.com/ggoled/ggoled/render"
)

// fakeTransport is a render.Transport test double recording every Draw call
// and letting tests script failures, grounded on the same queue-based fake
// pattern used for device.Transport.
type fakeTransport struct {
	mu sync.Mutex

	draws         []bitmap.Bitmap
	failDraws     bool
	failReconnect bool
	reconnects    int
	events        []hidproto.DeviceEvent
	eventsErr     error
}

func (f *fakeTransport) Draw(b bitmap.Bitmap, x, y int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDraws {
		return errors.New("fake: draw failed")
	}
	f.draws = append(f.draws, b.Clone())
	return nil
}

func (f *fakeTransport) SetBrightness(int) error { return nil }

func (f *fakeTransport) SetVolume(int) error { return nil }

func (f *fakeTransport) ReturnToUI() error { return nil }

func (f *fakeTransport) GetEvents() ([]hidproto.DeviceEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.eventsErr != nil {
		err := f.eventsErr
		f.eventsErr = nil
		return nil, err
	}
	evs := f.events
	f.events = nil
	return evs, nil
}

func (f *fakeTransport) PollEvent() (hidproto.DeviceEvent, error) {
	return hidproto.DeviceEvent{}, nil
}

func (f *fakeTransport) Reconnect() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reconnects++
	if f.failReconnect {
		return errors.New("fake: reconnect failed")
	}
	f.failDraws = false
	return nil
}

func (f *fakeTransport) Close() error { return nil }

func (f *fakeTransport) drawCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.draws)
}

func testConfig() render.Config {
	return render.Config{ScreenW: 16, ScreenH: 8, FPS: 200}
}

func TestWorkerDrawsAddedLayer(t *testing.T) {
	store := layer.NewStore()
	store.Add(layer.DrawLayer{Kind: layer.KindImage, Bitmap: bitmap.New(4, 4, true), X: 1, Y: 1})

	tr := &fakeTransport{}
	w := render.New(tr, store, testConfig())
	go w.Run()
	defer func() {
		w.Commands() <- render.Command{Kind: render.CommandStop}
		<-w.Done()
	}()
	w.Commands() <- render.Command{Kind: render.CommandPlay}

	deadline := time.Now().Add(time.Second)
	for tr.drawCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if tr.drawCount() == 0 {
		t.Fatalf("expected at least one Draw call")
	}
}

func TestWorkerStopsCleanly(t *testing.T) {
	store := layer.NewStore()
	tr := &fakeTransport{}
	w := render.New(tr, store, testConfig())
	go w.Run()

	w.Commands() <- render.Command{Kind: render.CommandStop}
	select {
	case <-w.Done():
	case <-time.After(time.Second):
		t.Fatalf("worker did not stop after CommandStop")
	}
}

func TestWorkerPauseStopsRendering(t *testing.T) {
	store := layer.NewStore()
	store.Add(layer.DrawLayer{Kind: layer.KindImage, Bitmap: bitmap.New(2, 2, true)})

	tr := &fakeTransport{}
	w := render.New(tr, store, testConfig())
	go w.Run()
	defer func() {
		w.Commands() <- render.Command{Kind: render.CommandStop}
		<-w.Done()
	}()

	w.Commands() <- render.Command{Kind: render.CommandPlay}
	deadline := time.Now().Add(time.Second)
	for tr.drawCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if tr.drawCount() == 0 {
		t.Fatalf("expected at least one Draw call while playing")
	}

	w.Commands() <- render.Command{Kind: render.CommandPause}
	time.Sleep(30 * time.Millisecond)
	after := tr.drawCount()
	time.Sleep(30 * time.Millisecond)
	if tr.drawCount() != after {
		t.Fatalf("expected no further draws while paused: before=%d after=%d", after, tr.drawCount())
	}
}

func TestWorkerEmitsDisconnectedThenReconnected(t *testing.T) {
	store := layer.NewStore()
	store.Add(layer.DrawLayer{Kind: layer.KindImage, Bitmap: bitmap.New(2, 2, true)})

	tr := &fakeTransport{failDraws: true}
	w := render.New(tr, store, testConfig())
	go w.Run()
	defer func() {
		w.Commands() <- render.Command{Kind: render.CommandStop}
		<-w.Done()
	}()
	w.Commands() <- render.Command{Kind: render.CommandPlay}

	var sawDisconnected, sawReconnected bool
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-w.Events():
			if ev.Kind == render.EventDeviceDisconnected {
				sawDisconnected = true
				tr.mu.Lock()
				tr.failDraws = false
				tr.mu.Unlock()
			}
			if ev.Kind == render.EventDeviceReconnected {
				sawReconnected = true
			}
		case <-time.After(10 * time.Millisecond):
		}
		if sawDisconnected && sawReconnected {
			break
		}
	}
	if !sawDisconnected {
		t.Fatalf("expected a DeviceDisconnected event")
	}
	if !sawReconnected {
		t.Fatalf("expected a DeviceReconnected event after the transport recovered")
	}
}

func TestWorkerForwardsDeviceEvents(t *testing.T) {
	store := layer.NewStore()
	tr := &fakeTransport{events: []hidproto.DeviceEvent{{Kind: hidproto.EventVolume, Volume: 12}}}
	w := render.New(tr, store, testConfig())
	go w.Run()
	defer func() {
		w.Commands() <- render.Command{Kind: render.CommandStop}
		<-w.Done()
	}()

	select {
	case ev := <-w.Events():
		if ev.Kind != render.EventDevice || ev.Device.Kind != hidproto.EventVolume || ev.Device.Volume != 12 {
			t.Fatalf("unexpected forwarded event: %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatalf("expected the queued device event to be forwarded")
	}
}

func TestWorkerForcesRefreshEvenWithoutChanges(t *testing.T) {
	store := layer.NewStore()
	store.Add(layer.DrawLayer{Kind: layer.KindImage, Bitmap: bitmap.New(2, 2, true)})

	tr := &fakeTransport{}
	w := render.New(tr, store, testConfig())
	go w.Run()
	defer func() {
		w.Commands() <- render.Command{Kind: render.CommandStop}
		<-w.Done()
	}()
	w.Commands() <- render.Command{Kind: render.CommandPlay}

	time.Sleep(1200 * time.Millisecond)
	if tr.drawCount() < 2 {
		t.Fatalf("expected a forced refresh within a second of an unchanged frame, got %d draws", tr.drawCount())
	}
}
