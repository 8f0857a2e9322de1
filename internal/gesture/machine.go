package gesture

import (
	"fmt"
	"time"
)

type timerRequest int

const (
	timerKeep timerRequest = iota
	timerCancel
	timerSchedule
)

type stabilizerPhase int

const (
	stabilizerIdle      stabilizerPhase = iota
	stabilizerArmed                     // 期限まで小さな移動を抑止する
	stabilizerCollapsed                 // このタッチ列では無効
)

// machineState はデバイスごとのジェスチャー状態
type machineState struct {
	lastButtons uint32

	// このレポートで全指から集計したスクロール量
	scrollDX, scrollDY int32
	scrolling          bool

	primaryDown      bool
	buttonUpDeadline Timestamp

	stabilizer         stabilizerPhase
	stabilizerDeadline Timestamp

	// タイマーで完了させるクリック
	pendingClick Button
	heldButton   Button // 実際に押下中のボタン
	clickFinish  bool   // 次の発火でボタンを離す

	timerReq   timerRequest
	timerDelay time.Duration

	// タップ確定待ちの間に動いた量
	waitDX, waitDY int32

	inertialVY int32

	activeTouches int
}

// Machine はタッチパッド1台分のジェスチャー状態機械
// HandleSnapshot と OnTimer は同じゴルーチンから呼び出すこと
type Machine struct {
	params  Params
	emit    Emitter
	timer   Timer
	state   machineState
	fingers [MaxFingers]Finger
}

// New は新しい状態機械を作成する
func New(params Params, emit Emitter, timer Timer) *Machine {
	m := &Machine{
		params: params,
		emit:   emit,
		timer:  timer,
	}
	m.reset()
	return m
}

// SetParams は設定を差し替える。進行中のタッチ状態は保持される
func (m *Machine) SetParams(params Params) {
	m.params = params
}

// Params は現在の設定を返す
func (m *Machine) Params() Params {
	return m.params
}

// Off はタイマーを止め、全状態を初期値に戻す（デバイスオフ）
func (m *Machine) Off() {
	m.timer.Cancel()
	m.reset()
}

func (m *Machine) reset() {
	m.state = machineState{}
	for i := range m.fingers {
		m.fingers[i] = Finger{Origin: OriginClosed}
	}
}

// ActiveTouches は現在接触している指の数
func (m *Machine) ActiveTouches() int {
	return m.state.activeTouches
}

// HandleSnapshot は1レポート分のハードウェア状態を処理し、イベントを出力する
// 出力順は 移動 → ボタン
func (m *Machine) HandleSnapshot(s *Snapshot) {
	m.trackSlots(s)
	m.trackPrimaryButton(s)

	p := &m.params
	st := &m.state
	st.scrollDX, st.scrollDY = 0, 0

	if p.Off == TouchpadOff {
		return
	}

	var (
		dx, dy     int32
		potential  uint32
		newTwoDown int
	)

	for i := range s.Touches {
		t := &s.Touches[i]
		f := &m.fingers[i]

		switch t.State {
		case SlotEmpty:
			continue
		case SlotClose:
			m.closeTouch(s, t, f)
			continue
		}

		// 座標がまだ分からない場合は左クリックの可能性として扱う
		if t.X == 0 || t.Y == 0 {
			potential |= ButtonLeft.Mask()
			continue
		}
		if t.Pressure < p.FingerLow {
			continue
		}

		if f.newTouch() {
			f.hyst.Anchor(t.X, t.Y)
		}
		x, y := f.hyst.Filter(t.X, t.Y, p.HystX, p.HystY)
		region, zone := Classify(x, y, p.Regions)

		if f.newTouch() {
			f.latch(region, zone, x, y)
			newTwoDown = st.activeTouches
		}

		if !f.tapGo && !st.scrolling && t.Pressure > p.TapPressure {
			m.tapPressureReached(s, f, x, y)
		}

		st.scrollDX += x - f.HistX
		st.scrollDY += y - f.HistY

		if f.Origin == OriginNoClick || (region == OriginNoClick && st.activeTouches < 2) {
			dx += x - f.HistX
			dy += y - f.HistY
		} else if region.IsClickRegion() {
			potential |= ButtonFor(region).Mask()
		}

		f.HistX, f.HistY = x, y
	}

	var buttons uint32
	suppress := false

	switch {
	case s.PrimaryDown:
		// 押下中は押した瞬間の領域で固定する
		buttons = st.lastButtons
		if st.lastButtons == 0 {
			buttons |= potential
		}
	case st.scrolling || (newTwoDown == 2 && m.scrollCandidates()):
		if p.Off != TouchpadTapOff {
			m.scroll()
		}
		st.scrolling = true
		suppress = true
	}

	adx, ady := abs32(dx), abs32(dy)
	if adx > runawayMotionClamp || ady > runawayMotionClamp {
		suppress = true
	}
	if s.EventTime < st.buttonUpDeadline {
		suppress = true
	}

	if p.TapAnywhere && st.stabilizer == stabilizerArmed {
		switch {
		case adx > p.HystX || ady > p.HystY:
			st.stabilizer = stabilizerCollapsed
		case s.EventTime < st.stabilizerDeadline:
			suppress = true
		default:
			st.stabilizer = stabilizerCollapsed
		}
	}

	if (dx != 0 || dy != 0) && !suppress {
		if m.tapWaiting() {
			st.waitDX += dx
			st.waitDY += dy
		}
		m.emit.Motion(dx, dy)
	}

	m.emitButtons(buttons)
	m.flushTimer()
}

// trackSlots はスロットの開閉に合わせて接触数を更新する
func (m *Machine) trackSlots(s *Snapshot) {
	for i := range s.Touches {
		switch s.Touches[i].State {
		case SlotOpen:
			m.state.activeTouches++
		case SlotClose:
			m.state.activeTouches--
		}
	}
	if m.state.activeTouches < 0 || m.state.activeTouches > MaxFingers {
		panic(fmt.Sprintf("gesture: active touch count out of range: %d", m.state.activeTouches))
	}
}

func (m *Machine) trackPrimaryButton(s *Snapshot) {
	if m.state.primaryDown && !s.PrimaryDown {
		m.state.buttonUpDeadline = s.EventTime + millis(buttonDebounce)
	}
	m.state.primaryDown = s.PrimaryDown
}

// scrollCandidates は2本指が同じ帯にあるか、互いに近いかを判定する
func (m *Machine) scrollCandidates() bool {
	a, b := &m.fingers[0], &m.fingers[1]
	if a.Zone == b.Zone {
		return true
	}
	r := m.params.FingerRadius
	return abs32(a.HistX-b.HistX) < r && abs32(a.HistY-b.HistY) < r
}

// scroll は縦横のうち大きい方の軸だけをスクロールとして出力する
// 同値の場合は縦を優先する
func (m *Machine) scroll() {
	p := &m.params
	st := &m.state

	sdx, sdy := st.scrollDX, st.scrollDY
	absY := abs32(sdy)
	if absY < abs32(sdx) {
		sdy = 0
	} else {
		sdx = 0
	}
	if !p.ScrollVertical {
		sdy = 0
	}
	if !p.ScrollHorizontal {
		sdx = 0
	}
	st.scrollDX, st.scrollDY = sdx, sdy

	if sdx != 0 || sdy != 0 {
		m.emit.Scroll(float64(sdx), float64(sdy))
	}

	// 速いスクロールは指を離した後も慣性で続ける
	if absY > inertialArmSpeed {
		st.inertialVY = sdy
	} else {
		st.inertialVY = 0
	}
}

// tapWaiting はタップ確定待ちの指があり、ホールド中の指がないか
func (m *Machine) tapWaiting() bool {
	waiting := false
	for i := range m.fingers {
		switch m.fingers[i].Tap {
		case TapWaitTimeout:
			waiting = true
		case TapWaitHold, TapHold:
			return false
		}
	}
	return waiting
}

func (m *Machine) requestTimer(d time.Duration) {
	m.state.timerReq = timerSchedule
	m.state.timerDelay = d
}

func (m *Machine) requestCancel() {
	m.state.timerReq = timerCancel
	m.state.timerDelay = 0
}

// scheduleNow はレポート処理の途中でタイマーを直接設定する
// 保留中の要求は破棄される
func (m *Machine) scheduleNow(d time.Duration) {
	m.timer.Schedule(d)
	m.state.timerReq = timerKeep
	m.state.timerDelay = 0
}

func (m *Machine) flushTimer() {
	switch m.state.timerReq {
	case timerSchedule:
		m.timer.Schedule(m.state.timerDelay)
	case timerCancel:
		m.timer.Cancel()
	}
	m.state.timerReq = timerKeep
	m.state.timerDelay = 0
}
