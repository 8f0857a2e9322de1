package ingest

import (
	"log"

	evdev "github.com/gvalkov/golang-evdev"

	"github.com/char5742/clickpad-gestures/internal/gesture"
)

// DeviceSlot はデバイスが保持している1スロットの現在値
type DeviceSlot struct {
	TrackingID int32 // -1 で接触なし
	X, Y       int32
	Pressure   int32
}

// DeviceState は SYN_DROPPED 後の再同期で読み出すデバイスの状態
type DeviceState struct {
	Slot   int32
	Button bool
	Slots  [gesture.MaxFingers]DeviceSlot
}

// Assembler は evdev のイベント列を SYN_REPORT 単位の Snapshot にまとめる
type Assembler struct {
	// DefaultPressure は圧力軸を持たないデバイスで新しいタッチに与える圧力
	DefaultPressure int32

	// Sync は SYN_DROPPED の後にデバイスの状態を読み出す。nil なら開いているタッチをすべて閉じる
	Sync func() (DeviceState, error)

	slot    int32
	button  bool
	dropped bool
	touches [gesture.MaxFingers]gesture.TouchSample
	ids     [gesture.MaxFingers]int32

	// 同じレポート内で別のトラッキングIDに切り替わったスロットの新しいタッチ
	fresh    [gesture.MaxFingers]gesture.TouchSample
	reopened [gesture.MaxFingers]bool
}

// NewAssembler は空の状態の Assembler を返す
func NewAssembler() *Assembler {
	a := &Assembler{}
	for i := range a.ids {
		a.ids[i] = -1
	}
	return a
}

// Feed はイベントを1つ処理し、レポートが完成した時に Snapshot を返す
// スロットのタッチが入れ替わったレポートでは、閉じる Snapshot と開く Snapshot の2つを返す
func (a *Assembler) Feed(ev evdev.InputEvent) []gesture.Snapshot {
	if a.dropped {
		// SYN_DROPPED 以降は次の SYN_REPORT まで捨て、デバイスの状態から作り直す
		if ev.Type == evdev.EV_SYN && ev.Code == evdev.SYN_REPORT {
			a.dropped = false
			a.resync(timestamp(ev))
			return a.flush(timestamp(ev))
		}
		return nil
	}

	switch ev.Type {
	case evdev.EV_SYN:
		switch ev.Code {
		case evdev.SYN_REPORT:
			return a.flush(timestamp(ev))
		case evdev.SYN_DROPPED:
			a.dropped = true
		}

	case evdev.EV_KEY:
		if ev.Code == evdev.BTN_LEFT {
			a.button = ev.Value != 0
		}

	case evdev.EV_ABS:
		a.handleAbs(ev.Code, ev.Value, timestamp(ev))
	}
	return nil
}

func (a *Assembler) handleAbs(code uint16, value int32, now gesture.Timestamp) {
	if code == evdev.ABS_MT_SLOT {
		a.slot = value
		return
	}
	if a.slot < 0 || a.slot >= gesture.MaxFingers {
		return
	}

	if code == evdev.ABS_MT_TRACKING_ID {
		if value >= 0 {
			a.open(a.slot, value, now)
		} else {
			a.close(a.slot)
		}
		return
	}

	t := &a.touches[a.slot]
	if a.reopened[a.slot] {
		t = &a.fresh[a.slot]
	}
	switch code {
	case evdev.ABS_MT_POSITION_X:
		t.X = value
	case evdev.ABS_MT_POSITION_Y:
		t.Y = value
	case evdev.ABS_MT_PRESSURE:
		t.Pressure = value
	default:
		return
	}
	if t.State == gesture.SlotOpenEmpty {
		t.State = gesture.SlotUpdate
	}
}

func (a *Assembler) open(slot, id int32, now gesture.Timestamp) {
	t := &a.touches[slot]
	prev := a.ids[slot]
	a.ids[slot] = id

	switch t.State {
	case gesture.SlotEmpty:
		*t = gesture.TouchSample{
			State:    gesture.SlotOpen,
			Pressure: a.DefaultPressure,
			Start:    now,
		}
	case gesture.SlotOpen:
		// まだ報告していないタッチはそのまま新しいタッチに置き換える
		t.Start = now
	case gesture.SlotOpenEmpty, gesture.SlotUpdate, gesture.SlotClose:
		if id == prev && t.State != gesture.SlotClose && !a.reopened[slot] {
			return
		}
		// 別のタッチに切り替わった。古いタッチを閉じ、次の Snapshot で開き直す
		t.State = gesture.SlotClose
		// 変化しない座標は再送されないので、スロットの最後の値を引き継ぐ
		src := *t
		if a.reopened[slot] {
			src = a.fresh[slot]
		}
		a.fresh[slot] = gesture.TouchSample{
			State:    gesture.SlotOpen,
			X:        src.X,
			Y:        src.Y,
			Pressure: src.Pressure,
			Start:    now,
		}
		a.reopened[slot] = true
	}
}

func (a *Assembler) close(slot int32) {
	a.ids[slot] = -1
	if a.reopened[slot] {
		// 切り替え後のタッチが同じレポート内で離れた
		a.reopened[slot] = false
		return
	}

	t := &a.touches[slot]
	switch t.State {
	case gesture.SlotOpen:
		// 同じレポート内で開いて閉じたタッチは無かったことにする
		t.State = gesture.SlotEmpty
	case gesture.SlotOpenEmpty, gesture.SlotUpdate:
		t.State = gesture.SlotClose
	}
}

// resync はデバイスの現在の状態を合成イベントとして流し込み、取りこぼした変化を反映する
func (a *Assembler) resync(now gesture.Timestamp) {
	var state DeviceState
	var err error
	if a.Sync != nil {
		state, err = a.Sync()
	}
	if a.Sync == nil || err != nil {
		if err != nil {
			log.Printf("SYN_DROPPED 後の再同期に失敗しました。タッチを閉じます: %v", err)
		}
		state = DeviceState{Slot: a.slot, Button: a.button}
		for i := range state.Slots {
			state.Slots[i].TrackingID = -1
		}
	}

	for i, s := range state.Slots {
		a.slot = int32(i)
		a.handleAbs(evdev.ABS_MT_TRACKING_ID, s.TrackingID, now)
		if s.TrackingID < 0 {
			continue
		}
		a.handleAbs(evdev.ABS_MT_POSITION_X, s.X, now)
		a.handleAbs(evdev.ABS_MT_POSITION_Y, s.Y, now)
		if a.DefaultPressure == 0 {
			a.handleAbs(evdev.ABS_MT_PRESSURE, s.Pressure, now)
		}
	}
	a.slot = state.Slot
	a.button = state.Button
}

// flush はレポートを確定し、切り替わったスロットがあれば開き直した Snapshot も続けて返す
func (a *Assembler) flush(now gesture.Timestamp) []gesture.Snapshot {
	out := []gesture.Snapshot{a.report(now)}

	reopened := false
	for i := range a.reopened {
		if a.reopened[i] {
			a.touches[i] = a.fresh[i]
			a.fresh[i] = gesture.TouchSample{}
			a.reopened[i] = false
			reopened = true
		}
	}
	if reopened {
		out = append(out, a.report(now))
	}
	return out
}

func (a *Assembler) report(now gesture.Timestamp) gesture.Snapshot {
	s := gesture.Snapshot{
		EventTime:   now,
		PrimaryDown: a.button,
		Touches:     a.touches,
	}
	for i := range a.touches {
		t := &a.touches[i]
		switch t.State {
		case gesture.SlotOpen, gesture.SlotUpdate:
			t.State = gesture.SlotOpenEmpty
		case gesture.SlotClose:
			*t = gesture.TouchSample{}
		}
	}
	return s
}

// timestamp はイベント時刻をミリ秒に変換する
func timestamp(ev evdev.InputEvent) gesture.Timestamp {
	return gesture.Timestamp(int64(ev.Time.Sec)*1000 + int64(ev.Time.Usec)/1000)
}
