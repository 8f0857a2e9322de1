package ingest

import (
	"syscall"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	evdev "github.com/gvalkov/golang-evdev"

	"github.com/char5742/clickpad-gestures/internal/gesture"
)

func at(ms int64, typ, code uint16, value int32) evdev.InputEvent {
	return evdev.InputEvent{
		Time:  syscall.NsecToTimeval(ms * int64(time.Millisecond)),
		Type:  typ,
		Code:  code,
		Value: value,
	}
}

func abs(ms int64, code uint16, value int32) evdev.InputEvent {
	return at(ms, evdev.EV_ABS, code, value)
}

func syn(ms int64) evdev.InputEvent {
	return at(ms, evdev.EV_SYN, evdev.SYN_REPORT, 0)
}

// feed はイベント列を流し、完成した Snapshot をすべて返す
func feed(a *Assembler, events ...evdev.InputEvent) []gesture.Snapshot {
	var out []gesture.Snapshot
	for _, ev := range events {
		out = append(out, a.Feed(ev)...)
	}
	return out
}

func TestAssemblerTouchLifecycle(t *testing.T) {
	a := NewAssembler()
	got := feed(a,
		abs(1000, evdev.ABS_MT_SLOT, 0),
		abs(1000, evdev.ABS_MT_TRACKING_ID, 17),
		abs(1000, evdev.ABS_MT_POSITION_X, 500),
		abs(1000, evdev.ABS_MT_POSITION_Y, 400),
		abs(1000, evdev.ABS_MT_PRESSURE, 60),
		syn(1000),

		syn(1012),

		abs(1024, evdev.ABS_MT_POSITION_X, 510),
		syn(1024),

		abs(1036, evdev.ABS_MT_TRACKING_ID, -1),
		syn(1036),

		syn(1048),
	)

	want := []gesture.Snapshot{
		{EventTime: 1000, Touches: [gesture.MaxFingers]gesture.TouchSample{
			{State: gesture.SlotOpen, X: 500, Y: 400, Pressure: 60, Start: 1000},
		}},
		{EventTime: 1012, Touches: [gesture.MaxFingers]gesture.TouchSample{
			{State: gesture.SlotOpenEmpty, X: 500, Y: 400, Pressure: 60, Start: 1000},
		}},
		{EventTime: 1024, Touches: [gesture.MaxFingers]gesture.TouchSample{
			{State: gesture.SlotUpdate, X: 510, Y: 400, Pressure: 60, Start: 1000},
		}},
		{EventTime: 1036, Touches: [gesture.MaxFingers]gesture.TouchSample{
			{State: gesture.SlotClose, X: 510, Y: 400, Pressure: 60, Start: 1000},
		}},
		{EventTime: 1048},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("snapshots mismatch (-want +got):\n%s", diff)
	}
}

func TestAssemblerTwoSlotsAndButton(t *testing.T) {
	a := NewAssembler()
	got := feed(a,
		abs(2000, evdev.ABS_MT_SLOT, 0),
		abs(2000, evdev.ABS_MT_TRACKING_ID, 1),
		abs(2000, evdev.ABS_MT_POSITION_X, 100),
		abs(2000, evdev.ABS_MT_POSITION_Y, 200),
		abs(2000, evdev.ABS_MT_SLOT, 1),
		abs(2000, evdev.ABS_MT_TRACKING_ID, 2),
		abs(2000, evdev.ABS_MT_POSITION_X, 300),
		abs(2000, evdev.ABS_MT_POSITION_Y, 400),
		at(2000, evdev.EV_KEY, evdev.BTN_LEFT, 1),
		syn(2000),

		// スロット2以降は無視される
		abs(2010, evdev.ABS_MT_SLOT, 2),
		abs(2010, evdev.ABS_MT_TRACKING_ID, 3),
		abs(2010, evdev.ABS_MT_POSITION_X, 999),
		at(2010, evdev.EV_KEY, evdev.BTN_LEFT, 0),
		syn(2010),
	)

	if len(got) != 2 {
		t.Fatalf("got %d snapshots, want 2", len(got))
	}
	first := got[0]
	if !first.PrimaryDown {
		t.Errorf("PrimaryDown = false, want true")
	}
	if first.Touches[0].State != gesture.SlotOpen || first.Touches[1].State != gesture.SlotOpen {
		t.Errorf("states = %v/%v, want open/open", first.Touches[0].State, first.Touches[1].State)
	}
	if first.Touches[1].X != 300 || first.Touches[1].Y != 400 {
		t.Errorf("slot 1 = (%d,%d), want (300,400)", first.Touches[1].X, first.Touches[1].Y)
	}

	second := got[1]
	if second.PrimaryDown {
		t.Errorf("PrimaryDown = true, want false")
	}
	for i, s := range second.Touches {
		if s.State != gesture.SlotOpenEmpty || s.X == 999 {
			t.Errorf("slot %d = %+v, want untouched open-empty", i, s)
		}
	}
}

func TestAssemblerOpenAndCloseInSameReport(t *testing.T) {
	a := NewAssembler()
	got := feed(a,
		abs(0, evdev.ABS_MT_TRACKING_ID, 5),
		abs(0, evdev.ABS_MT_POSITION_X, 10),
		abs(0, evdev.ABS_MT_TRACKING_ID, -1),
		syn(0),
	)
	if got[0].Touches[0].State != gesture.SlotEmpty {
		t.Errorf("state = %v, want empty", got[0].Touches[0].State)
	}
}

func TestAssemblerTrackingIDReassignedStartsNewTouch(t *testing.T) {
	a := NewAssembler()
	got := feed(a,
		abs(0, evdev.ABS_MT_TRACKING_ID, 5),
		abs(0, evdev.ABS_MT_POSITION_X, 10),
		abs(0, evdev.ABS_MT_POSITION_Y, 10),
		syn(0),
		abs(10, evdev.ABS_MT_TRACKING_ID, 6),
		abs(10, evdev.ABS_MT_POSITION_X, 600),
		syn(10),
		syn(20),
	)

	want := []gesture.TouchSample{
		{State: gesture.SlotOpen, X: 10, Y: 10, Start: 0},
		{State: gesture.SlotClose, X: 10, Y: 10, Start: 0},
		{State: gesture.SlotOpen, X: 600, Y: 10, Start: 10},
		{State: gesture.SlotOpenEmpty, X: 600, Y: 10, Start: 10},
	}
	var slot0 []gesture.TouchSample
	for _, s := range got {
		slot0 = append(slot0, s.Touches[0])
	}
	if diff := cmp.Diff(want, slot0); diff != "" {
		t.Errorf("slot 0 mismatch (-want +got):\n%s", diff)
	}
	if got[1].EventTime != 10 || got[2].EventTime != 10 {
		t.Errorf("times = %d/%d, want both 10", got[1].EventTime, got[2].EventTime)
	}
}

func TestAssemblerReleaseAndNewTouchInSameReport(t *testing.T) {
	a := NewAssembler()
	got := feed(a,
		abs(0, evdev.ABS_MT_SLOT, 1),
		abs(0, evdev.ABS_MT_TRACKING_ID, 5),
		abs(0, evdev.ABS_MT_POSITION_X, 10),
		abs(0, evdev.ABS_MT_POSITION_Y, 20),
		syn(0),
		abs(8, evdev.ABS_MT_TRACKING_ID, -1),
		abs(8, evdev.ABS_MT_TRACKING_ID, 6),
		abs(8, evdev.ABS_MT_POSITION_Y, 700),
		syn(8),
	)

	if len(got) != 3 {
		t.Fatalf("got %d snapshots, want 3", len(got))
	}
	if s := got[1].Touches[1]; s.State != gesture.SlotClose || s.Y != 20 {
		t.Errorf("closing slot = %+v, want close at y=20", s)
	}
	if s := got[2].Touches[1]; s.State != gesture.SlotOpen || s.X != 10 || s.Y != 700 || s.Start != 8 {
		t.Errorf("new slot = %+v, want open at (10,700) starting at 8", s)
	}
}

func TestAssemblerDropsPartialReport(t *testing.T) {
	a := NewAssembler()
	a.Sync = func() (DeviceState, error) {
		var st DeviceState
		st.Slots[0] = DeviceSlot{TrackingID: 1, X: 900, Y: 100, Pressure: 70}
		st.Slots[1].TrackingID = -1
		return st, nil
	}
	got := feed(a,
		abs(0, evdev.ABS_MT_TRACKING_ID, 1),
		abs(0, evdev.ABS_MT_POSITION_X, 100),
		abs(0, evdev.ABS_MT_POSITION_Y, 100),
		syn(0),
		at(5, evdev.EV_SYN, evdev.SYN_DROPPED, 0),
		abs(5, evdev.ABS_MT_POSITION_X, 900),
		syn(5),
		abs(10, evdev.ABS_MT_POSITION_X, 120),
		syn(10),
	)

	if len(got) != 3 {
		t.Fatalf("got %d snapshots, want 3", len(got))
	}
	want := gesture.TouchSample{State: gesture.SlotUpdate, X: 900, Y: 100, Pressure: 70, Start: 0}
	if diff := cmp.Diff(want, got[1].Touches[0]); diff != "" {
		t.Errorf("slot after resync mismatch (-want +got):\n%s", diff)
	}
	if s := got[2].Touches[0]; s.X != 120 || s.State != gesture.SlotUpdate {
		t.Errorf("slot after drop = %+v, want update at x=120", s)
	}
}

func TestAssemblerDroppedReleaseClosesTouch(t *testing.T) {
	tests := []struct {
		name string
		sync func() (DeviceState, error)
	}{
		{"without device state", nil},
		{"device reports no touch", func() (DeviceState, error) {
			var st DeviceState
			for i := range st.Slots {
				st.Slots[i].TrackingID = -1
			}
			return st, nil
		}},
		{"device read fails", func() (DeviceState, error) {
			return DeviceState{}, syscall.ENODEV
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAssembler()
			a.Sync = tt.sync
			got := feed(a,
				abs(1000, evdev.ABS_MT_SLOT, 0),
				abs(1000, evdev.ABS_MT_TRACKING_ID, 17),
				abs(1000, evdev.ABS_MT_POSITION_X, 500),
				abs(1000, evdev.ABS_MT_POSITION_Y, 400),
				syn(1000),
				at(1200, evdev.EV_SYN, evdev.SYN_DROPPED, 0),
				abs(1200, evdev.ABS_MT_TRACKING_ID, -1),
				syn(1200),
				abs(1500, evdev.ABS_MT_TRACKING_ID, 18),
				abs(1500, evdev.ABS_MT_POSITION_X, 100),
				abs(1500, evdev.ABS_MT_POSITION_Y, 900),
				syn(1500),
			)

			want := []gesture.TouchSample{
				{State: gesture.SlotOpen, X: 500, Y: 400, Start: 1000},
				{State: gesture.SlotClose, X: 500, Y: 400, Start: 1000},
				{State: gesture.SlotOpen, X: 100, Y: 900, Start: 1500},
			}
			var slot0 []gesture.TouchSample
			for _, s := range got {
				slot0 = append(slot0, s.Touches[0])
			}
			if diff := cmp.Diff(want, slot0); diff != "" {
				t.Errorf("slot 0 mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestAssemblerDroppedTouchReplacedByAnother(t *testing.T) {
	a := NewAssembler()
	a.Sync = func() (DeviceState, error) {
		var st DeviceState
		st.Slots[0] = DeviceSlot{TrackingID: 18, X: 100, Y: 900}
		st.Slots[1].TrackingID = -1
		st.Button = true
		return st, nil
	}
	got := feed(a,
		abs(1000, evdev.ABS_MT_TRACKING_ID, 17),
		abs(1000, evdev.ABS_MT_POSITION_X, 500),
		abs(1000, evdev.ABS_MT_POSITION_Y, 400),
		syn(1000),
		at(1200, evdev.EV_SYN, evdev.SYN_DROPPED, 0),
		syn(1200),
	)

	if len(got) != 3 {
		t.Fatalf("got %d snapshots, want 3", len(got))
	}
	if s := got[1].Touches[0]; s.State != gesture.SlotClose || s.X != 500 {
		t.Errorf("old touch = %+v, want close at x=500", s)
	}
	want := gesture.TouchSample{State: gesture.SlotOpen, X: 100, Y: 900, Start: 1200}
	if diff := cmp.Diff(want, got[2].Touches[0]); diff != "" {
		t.Errorf("new touch mismatch (-want +got):\n%s", diff)
	}
	if !got[1].PrimaryDown || !got[2].PrimaryDown {
		t.Error("button state was not resynced")
	}
}

func TestAssemblerDefaultPressure(t *testing.T) {
	a := NewAssembler()
	a.DefaultPressure = fallbackPressure
	got := feed(a,
		abs(0, evdev.ABS_MT_TRACKING_ID, 1),
		abs(0, evdev.ABS_MT_POSITION_X, 100),
		abs(0, evdev.ABS_MT_POSITION_Y, 100),
		syn(0),
	)
	if p := got[0].Touches[0].Pressure; p != fallbackPressure {
		t.Errorf("pressure = %d, want %d", p, fallbackPressure)
	}
}
