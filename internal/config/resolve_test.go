package config

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/char5742/clickpad-gestures/internal/gesture"
	"github.com/char5742/clickpad-gestures/internal/output"
)

func TestResolveDefaults(t *testing.T) {
	axes := gesture.Axes{MaxX: 1000, MaxY: 1000, MaxPressure: 255}
	got := DefaultConfig().Resolve(axes)

	wantParams := gesture.Params{
		FingerLow:   25,
		FingerHigh:  30,
		TapTime:     DefaultConfig().Tap.MaxTime,
		TapMove:     62,
		TapPressure: 50,
		TapHold:     DefaultConfig().Tap.HoldTime,
		HystX:       7,
		HystY:       7,
		Regions: gesture.Regions{
			TopBottomY:       150,
			TopMiddleLeftX:   420,
			TopMiddleRightX:  580,
			BottomTopY:       750,
			BottomLeftRightX: 490,
			BottomRightLeftX: 510,
		},
		FingerRadius:     180,
		ScrollVertical:   true,
		ScrollHorizontal: true,
	}
	if diff := cmp.Diff(wantParams, got.Gesture); diff != "" {
		t.Errorf("params mismatch (-want +got):\n%s", diff)
	}

	wantPointer := output.Settings{ScrollDistVert: 28, ScrollDistHoriz: 28, Speed: 0.4}
	if diff := cmp.Diff(wantPointer, got.Pointer); diff != "" {
		t.Errorf("pointer settings mismatch (-want +got):\n%s", diff)
	}
	if got.Axes != axes {
		t.Errorf("axes = %+v, want %+v", got.Axes, axes)
	}
}

func TestResolveOffsetAxesTruncates(t *testing.T) {
	c := DefaultConfig()
	c.TouchPad = TouchPadConfig{MinX: 100, MaxX: 3100, MinY: 50, MaxY: 2050}
	c.Tap.MaxMove = 40
	c.Noise.HorizHysteresis = 0
	c.Scroll.VertDelta = 90
	c.TouchpadOff = 2

	got := c.Resolve(gesture.Axes{MaxX: 5000, MaxY: 5000})

	want := gesture.Regions{
		TopBottomY:       350,
		TopMiddleLeftX:   1360,
		TopMiddleRightX:  1839,
		BottomTopY:       1550,
		BottomLeftRightX: 1570,
		BottomRightLeftX: 1630,
	}
	if diff := cmp.Diff(want, got.Gesture.Regions); diff != "" {
		t.Errorf("regions mismatch (-want +got):\n%s", diff)
	}
	if got.Gesture.FingerRadius != 540 {
		t.Errorf("FingerRadius = %d, want 540", got.Gesture.FingerRadius)
	}
	if got.Gesture.TapMove != 40 || got.Gesture.HystX != 0 || got.Gesture.HystY != 18 {
		t.Errorf("TapMove/HystX/HystY = %d/%d/%d, want 40/0/18",
			got.Gesture.TapMove, got.Gesture.HystX, got.Gesture.HystY)
	}
	if got.Pointer.ScrollDistVert != 90 || got.Pointer.ScrollDistHoriz != 72 {
		t.Errorf("scroll distances = %d/%d, want 90/72", got.Pointer.ScrollDistVert, got.Pointer.ScrollDistHoriz)
	}
	if got.Gesture.Off != gesture.TouchpadTapOff {
		t.Errorf("Off = %v, want tap-off", got.Gesture.Off)
	}
	if got.Axes.MinX != 100 || got.Axes.MaxY != 2050 {
		t.Errorf("axes override not applied: %+v", got.Axes)
	}
}

func TestResolveWithoutAxes(t *testing.T) {
	got := DefaultConfig().Resolve(gesture.Axes{})
	if got.Pointer.ScrollDistVert != 1 || got.Pointer.ScrollDistHoriz != 1 {
		t.Errorf("scroll distances = %d/%d, want clamped to 1", got.Pointer.ScrollDistVert, got.Pointer.ScrollDistHoriz)
	}
}
