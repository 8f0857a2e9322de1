package output

import (
	"bytes"
	"fmt"
	"log"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/char5742/clickpad-gestures/internal/gesture"
)

type fakeDevice struct {
	calls  []string
	closed bool
}

func (d *fakeDevice) record(format string, args ...any) error {
	d.calls = append(d.calls, fmt.Sprintf(format, args...))
	return nil
}

func (d *fakeDevice) Move(x, y int32) error { return d.record("move %d %d", x, y) }
func (d *fakeDevice) LeftPress() error      { return d.record("left press") }
func (d *fakeDevice) LeftRelease() error    { return d.record("left release") }
func (d *fakeDevice) RightPress() error     { return d.record("right press") }
func (d *fakeDevice) RightRelease() error   { return d.record("right release") }
func (d *fakeDevice) MiddlePress() error    { return d.record("middle press") }
func (d *fakeDevice) MiddleRelease() error  { return d.record("middle release") }
func (d *fakeDevice) Wheel(horizontal bool, delta int32) error {
	if horizontal {
		return d.record("hwheel %d", delta)
	}
	return d.record("wheel %d", delta)
}
func (d *fakeDevice) Close() error {
	d.closed = true
	return nil
}

func TestPointerMotionKeepsRemainder(t *testing.T) {
	dev := &fakeDevice{}
	p := newPointer(dev, Settings{ScrollDistVert: 10, ScrollDistHoriz: 10, Speed: 0.5})

	p.Motion(3, -3) // 1.5, -1.5
	p.Motion(1, -1) // 0.5+0.5, -0.5-0.5
	p.Motion(1, 0)  // 0.5

	want := []string{"move 1 -1", "move 1 -1"}
	if diff := cmp.Diff(want, dev.calls); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
}

func TestPointerButtons(t *testing.T) {
	dev := &fakeDevice{}
	p := newPointer(dev, Settings{Speed: 1})

	p.Button(gesture.ButtonLeft, true)
	p.Button(gesture.ButtonLeft, false)
	p.Button(gesture.ButtonMiddle, true)
	p.Button(gesture.ButtonMiddle, false)
	p.Button(gesture.ButtonRight, true)
	p.Button(gesture.ButtonRight, false)
	p.Button(gesture.ButtonNone, true)

	want := []string{
		"left press", "left release",
		"middle press", "middle release",
		"right press", "right release",
	}
	if diff := cmp.Diff(want, dev.calls); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
}

func TestPointerScrollTicks(t *testing.T) {
	dev := &fakeDevice{}
	p := newPointer(dev, Settings{ScrollDistVert: 20, ScrollDistHoriz: 30, Speed: 1})

	p.Scroll(0, 15)  // 端数 15
	p.Scroll(0, 30)  // 45 -> 2ステップ、端数 5
	p.Scroll(0, -25) // -20 -> -1ステップ
	p.Scroll(70, 0)  // 2ステップ、端数 10
	p.Scroll(-40, 0) // -30 -> -1ステップ

	want := []string{"wheel -2", "wheel 1", "hwheel 2", "hwheel -1"}
	if diff := cmp.Diff(want, dev.calls); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
}

func TestPointerSetSettingsDropsRemainder(t *testing.T) {
	dev := &fakeDevice{}
	p := newPointer(dev, Settings{ScrollDistVert: 20, ScrollDistHoriz: 20, Speed: 0.5})

	p.Motion(1, 0)
	p.Scroll(0, 15)
	p.SetSettings(Settings{ScrollDistVert: 20, ScrollDistHoriz: 20, Speed: 0.5})
	p.Motion(1, 0)
	p.Scroll(0, 15)

	if len(dev.calls) != 0 {
		t.Errorf("calls = %v, want none", dev.calls)
	}
	if err := p.Close(); err != nil || !dev.closed {
		t.Errorf("Close = %v, closed = %v", err, dev.closed)
	}
}

func TestLogEmitter(t *testing.T) {
	var buf bytes.Buffer
	e := LogEmitter{Logger: log.New(&buf, "", 0)}

	e.Motion(3, -2)
	e.Button(gesture.ButtonRight, true)
	e.Scroll(0, 12)

	want := "motion dx=3 dy=-2\nbutton right press\nscroll dx=0 dy=12\n"
	if got := buf.String(); got != want {
		t.Errorf("log = %q, want %q", got, want)
	}
}
