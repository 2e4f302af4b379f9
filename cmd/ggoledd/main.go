// Copyright 2026 The ggoled Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// ggoledd wires the bitmap/hidproto/device/layer/render/draw stack together
// behind a small set of flags: connect to a real base station or fall back
// to a terminal preview, optionally draw a demo layout, and hold the process
// open until interrupted.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"os/signal"

	"github.com/fogleman/gg"

	"github.com/ggoled/ggoled/bitmap"
	"github.com/ggoled/ggoled/device"
	"github.com/ggoled/ggoled/draw"
	"github.com/ggoled/ggoled/layer"
	"github.com/ggoled/ggoled/preview"
	"github.com/ggoled/ggoled/render"
)

func mainImpl() error {
	fps := flag.Int("fps", 30, "render frame rate")
	shift := flag.String("shift", "simple", "burn-in shift mode: off or simple")
	brightness := flag.Int("brightness", 0, "set screen brightness (1-10) on startup; 0 leaves it unchanged")
	volume := flag.Int("volume", -1, "set base-station volume (0-56) on startup; negative leaves it unchanged")
	usePreview := flag.Bool("preview", false, "render to the terminal instead of a real base station")
	demo := flag.Bool("demo", false, "draw a demo layout (centered text, a scrolling marquee, a bouncing dot)")
	verbose := flag.Bool("v", false, "enable verbose logs")
	flag.Parse()

	if !*verbose {
		log.SetOutput(io.Discard)
	}
	log.SetFlags(log.Lmicroseconds)

	var shiftMode render.ShiftMode
	switch *shift {
	case "off":
		shiftMode = render.ShiftOff
	case "simple":
		shiftMode = render.ShiftSimple
	default:
		return fmt.Errorf("invalid -shift %q: want off or simple", *shift)
	}

	transport, closeTransport, err := openTransport(*usePreview)
	if err != nil {
		return err
	}
	defer closeTransport()

	if *brightness != 0 {
		if err := transport.SetBrightness(*brightness); err != nil {
			return fmt.Errorf("ggoledd: set brightness: %w", err)
		}
	}

	h := draw.New(transport, *fps)
	h.Play()
	h.SetShiftMode(shiftMode)
	if *volume >= 0 {
		h.SetVolume(*volume)
	}

	if *demo {
		drawDemo(h)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	go logEvents(h)

	<-stop
	log.Printf("ggoledd: shutting down")
	h.Stop()
	return nil
}

// openTransport opens a real base station, or a terminal preview sink when
// usePreview is set (or no device is found), returning a render.Transport
// and a func to release it.
func openTransport(usePreview bool) (render.Transport, func(), error) {
	if usePreview {
		sink := preview.New()
		return sink, func() { sink.Close() }, nil
	}
	dev, err := device.Connect()
	if err != nil {
		if errors.Is(err, device.ErrNoDeviceFound) {
			log.Printf("ggoledd: no base station found, falling back to -preview")
			sink := preview.New()
			return sink, func() { sink.Close() }, nil
		}
		return nil, nil, fmt.Errorf("ggoledd: connect: %w", err)
	}
	return dev, func() { dev.Close() }, nil
}

func logEvents(h *draw.Handle) {
	for {
		ev := h.PollEvent()
		switch ev.Kind {
		case render.EventDeviceDisconnected:
			log.Printf("ggoledd: device disconnected")
		case render.EventDeviceReconnected:
			log.Printf("ggoledd: device reconnected")
		case render.EventDevice:
			log.Printf("ggoledd: device event: %+v", ev.Device)
		}
	}
}

// drawDemo lays out two lines of centered text, a scrolling marquee below
// it, and a small bouncing-dot animation rendered through fogleman/gg and
// quantized into layer-ready bitmap.Bitmap frames.
func drawDemo(h *draw.Handle) {
	h.AddText("ggoled\nheadset display", nil, nil)
	h.AddTextWithMode(
		"this line is deliberately wide enough to need to scroll across the screen",
		nil, intPtr(50), true, draw.ScrollMode,
	)
	h.AddAnimation(bounceFrames(12), 58, 2, true)
}

func intPtr(v int) *int { return &v }

// bounceFrames renders n frames of a small filled circle sweeping across a
// 12x12 canvas via fogleman/gg, quantizing each into a bitmap.Bitmap with
// bitmap.FromImage. It demonstrates the vector-graphics-to-layer path a
// richer demo or notification icon would also use.
func bounceFrames(n int) []layer.Frame {
	const size = 12
	frames := make([]layer.Frame, n)
	for i := 0; i < n; i++ {
		dc := gg.NewContext(size, size)
		dc.SetRGB(0, 0, 0)
		dc.Clear()
		dc.SetRGB(1, 1, 1)
		phase := 2 * math.Pi * float64(i) / float64(n)
		cx := size/2 + (size/2-2)*math.Sin(phase)
		dc.DrawCircle(cx, float64(size)/2, 2)
		dc.Fill()
		frames[i] = layer.Frame{Bitmap: bitmap.FromImage(dc.Image())}
	}
	return frames
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "ggoledd: %s.\n", err)
		os.Exit(1)
	}
}
