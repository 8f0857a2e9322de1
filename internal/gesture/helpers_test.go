package gesture

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

type event struct {
	Kind    string
	DX, DY  float64
	Button  Button
	Pressed bool
}

func motion(dx, dy int32) event   { return event{Kind: "motion", DX: float64(dx), DY: float64(dy)} }
func scroll(dx, dy float64) event { return event{Kind: "scroll", DX: dx, DY: dy} }
func press(b Button) event        { return event{Kind: "button", Button: b, Pressed: true} }
func release(b Button) event      { return event{Kind: "button", Button: b, Pressed: false} }

type recorder struct {
	events []event
}

func (r *recorder) Motion(dx, dy int32) { r.events = append(r.events, motion(dx, dy)) }
func (r *recorder) Button(b Button, pressed bool) {
	r.events = append(r.events, event{Kind: "button", Button: b, Pressed: pressed})
}
func (r *recorder) Scroll(dx, dy float64) { r.events = append(r.events, scroll(dx, dy)) }

// fakeTimer はスケジュール要求を記録するだけのタイマー
type fakeTimer struct {
	armed     bool
	delay     time.Duration
	scheduled []time.Duration
	cancels   int
}

func (t *fakeTimer) Schedule(d time.Duration) {
	t.armed = true
	t.delay = d
	t.scheduled = append(t.scheduled, d)
}

func (t *fakeTimer) Cancel() {
	t.armed = false
	t.cancels++
}

func testParams() Params {
	return Params{
		FingerLow:   25,
		FingerHigh:  30,
		TapTime:     180 * time.Millisecond,
		TapMove:     10,
		TapPressure: 50,
		Regions: Regions{
			TopBottomY:       50,
			TopMiddleLeftX:   420,
			TopMiddleRightX:  580,
			BottomTopY:       900,
			BottomLeftRightX: 490,
			BottomRightLeftX: 510,
		},
		FingerRadius:     180,
		ScrollVertical:   true,
		ScrollHorizontal: true,
	}
}

// pad はレポート列を組み立てて状態機械へ流すテスト用の入力源
type pad struct {
	t     *testing.T
	m     *Machine
	rec   *recorder
	timer *fakeTimer
	now   Timestamp
	snap  Snapshot
}

func newPad(t *testing.T, p Params) *pad {
	t.Helper()
	rec := &recorder{}
	timer := &fakeTimer{}
	return &pad{
		t:     t,
		m:     New(p, rec, timer),
		rec:   rec,
		timer: timer,
		now:   1000,
	}
}

// touch はスロットに指を置くか、置いている指を動かす
func (p *pad) touch(slot int, x, y, pressure int32) *pad {
	s := &p.snap.Touches[slot]
	if s.State == SlotEmpty || s.State == SlotClose {
		s.State = SlotOpen
		s.Start = p.now
	} else {
		s.State = SlotUpdate
	}
	s.X, s.Y, s.Pressure = x, y, pressure
	return p
}

func (p *pad) lift(slot int) *pad {
	p.snap.Touches[slot].State = SlotClose
	return p
}

func (p *pad) button(down bool) *pad {
	p.snap.PrimaryDown = down
	return p
}

// sync は経過時間を進めてレポートを処理する
func (p *pad) sync(elapsed time.Duration) *pad {
	p.now += millis(elapsed)
	for i := range p.snap.Touches {
		if p.snap.Touches[i].State == SlotOpen {
			p.snap.Touches[i].Start = p.now
		}
	}
	p.snap.EventTime = p.now
	p.m.HandleSnapshot(&p.snap)

	for i := range p.snap.Touches {
		s := &p.snap.Touches[i]
		switch s.State {
		case SlotOpen, SlotOpenEmpty, SlotUpdate:
			s.State = SlotOpenEmpty
		default:
			s.State = SlotEmpty
		}
	}
	return p
}

// fire はタイマーが設定されていれば発火させる
func (p *pad) fire() *pad {
	p.t.Helper()
	if !p.timer.armed {
		p.t.Fatalf("timer fired while not armed")
	}
	p.timer.armed = false
	p.now += millis(p.timer.delay)
	p.m.OnTimer()
	return p
}

func (p *pad) expect(want ...event) {
	p.t.Helper()
	if want == nil {
		want = []event{}
	}
	got := p.rec.events
	if got == nil {
		got = []event{}
	}
	if diff := cmp.Diff(want, got); diff != "" {
		p.t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func (e event) String() string {
	switch e.Kind {
	case "button":
		return fmt.Sprintf("button(%v,%v)", e.Button, e.Pressed)
	default:
		return fmt.Sprintf("%s(%v,%v)", e.Kind, e.DX, e.DY)
	}
}
