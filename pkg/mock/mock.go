// Package mock provides in-memory Adapter and Locator implementations for
// testing the discovery engine without a device or an OCR binary.
package mock

import (
	"context"
	"image"
	"image/color"

	"github.com/devicelab-dev/camera-mapper/pkg/core"
	"github.com/devicelab-dev/camera-mapper/pkg/ocr"
)

// Adapter is a scripted implementation of core.Adapter. Screenshots are
// served from Frames in order (the last frame repeats once the script runs
// out); taps and back presses are recorded for assertions.
type Adapter struct {
	// Profile returned by DeviceInfo.
	Profile core.DeviceProfile

	// Frames is the screenshot script. When empty, a solid white
	// 720x1450 frame is served.
	Frames []*core.Frame

	// Fault injection. A non-nil error makes the corresponding call fail.
	TapErr        error
	BackErr       error
	ScreenshotErr error
	InfoErr       error

	// FailScreenshotAt makes screenshot call N fail (1-indexed, 0 = never).
	FailScreenshotAt int

	// Recorded interactions.
	Taps        []core.Coordinate
	BackPresses int
	Screenshots int

	frameIdx int
}

// Tap records the tap or fails when TapErr is set.
func (a *Adapter) Tap(_ context.Context, x, y int) error {
	if a.TapErr != nil {
		return a.TapErr
	}
	a.Taps = append(a.Taps, core.Coordinate{X: x, Y: y})
	return nil
}

// Back records the back press or fails when BackErr is set.
func (a *Adapter) Back(context.Context) error {
	if a.BackErr != nil {
		return a.BackErr
	}
	a.BackPresses++
	return nil
}

// Screenshot serves the next scripted frame.
func (a *Adapter) Screenshot(context.Context) (*core.Frame, error) {
	a.Screenshots++
	if a.ScreenshotErr != nil {
		return nil, a.ScreenshotErr
	}
	if a.FailScreenshotAt > 0 && a.Screenshots == a.FailScreenshotAt {
		return nil, core.ErrDeviceUnreachable.WithMessage("scripted screenshot fault")
	}
	if len(a.Frames) == 0 {
		return SolidFrame(720, 1450, color.White), nil
	}
	frame := a.Frames[a.frameIdx]
	if a.frameIdx < len(a.Frames)-1 {
		a.frameIdx++
	}
	return frame, nil
}

// DeviceInfo returns the configured profile.
func (a *Adapter) DeviceInfo(context.Context) (core.DeviceProfile, error) {
	if a.InfoErr != nil {
		return core.DeviceProfile{}, a.InfoErr
	}
	return a.Profile, nil
}

// SolidFrame builds a uniform frame, handy for scripting distinct UI states.
func SolidFrame(w, h int, c color.Color) *core.Frame {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return &core.Frame{Image: img}
}

// Locator is a scripted ocr.Locator. Func receives every call; when nil,
// Locate returns no matches.
type Locator struct {
	Func func(frame *core.Frame, region *core.Region) ([]ocr.Match, error)

	// Calls counts Locate invocations.
	Calls int
}

// Locate delegates to Func.
func (l *Locator) Locate(_ context.Context, frame *core.Frame, region *core.Region) ([]ocr.Match, error) {
	l.Calls++
	if l.Func == nil {
		return nil, nil
	}
	return l.Func(frame, region)
}
