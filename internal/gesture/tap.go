package gesture

// closeTouch は指が離れたスロットを処理する
func (m *Machine) closeTouch(s *Snapshot, t *TouchSample, f *Finger) {
	p := &m.params
	st := &m.state

	if f.Origin == OriginNoClick && p.TapAnywhere {
		f.Origin = OriginLeftClick
	}

	switch {
	case m.isTap(s, t, f):
		m.completeTap(s, f)
	case f.Tap == TapWaitHold:
		// ホールド待ちのまま大きく動いた場合はドラッグとして終える
		m.releasePending()
		st.pendingClick = ButtonNone
		f.Tap = TapNone
		m.requestCancel()
	}

	f.release()
	st.scrolling = false

	if st.activeTouches == 0 {
		if p.TapAnywhere {
			st.stabilizer = stabilizerIdle
		}
		if st.inertialVY != 0 {
			m.requestTimer(inertialStartDelay)
		}
	}
}

// isTap はタッチの解放がタップとして成立するか
func (m *Machine) isTap(s *Snapshot, t *TouchSample, f *Finger) bool {
	p := &m.params
	if p.Off == TouchpadTapOff || !f.tapGo {
		return false
	}
	if f.Tap == TapHold {
		return true
	}
	return f.Origin.IsClickRegion() &&
		s.EventTime-t.Start < millis(p.TapTime) &&
		s.EventTime > m.state.buttonUpDeadline &&
		f.movedWithin(p.TapMove)
}

// completeTap はタップ状態に応じたボタンイベントを出力する
func (m *Machine) completeTap(s *Snapshot, f *Finger) {
	p := &m.params
	st := &m.state

	switch f.Tap {
	case TapNone:
		if m.otherTapActive(f) {
			// 別の指のタップやドラッグが進行中の間は新しいタップを受け付けない
			return
		}
		b := ButtonFor(f.Origin)
		if p.TapHold == 0 {
			m.emit.Button(b, true)
			m.emit.Button(b, false)
			return
		}
		if f.tripleDeadline > s.EventTime {
			// 直前のダブルタップに続く3回目
			m.deliverPendingClick(f)
		} else {
			if st.clickFinish {
				m.finishClick()
			}
			st.pendingClick = b
			st.waitDX, st.waitDY = 0, 0
			f.Tap = TapWaitTimeout
			m.requestTimer(p.TapHold)
		}
		f.tripleDeadline = 0

	case TapWaitTimeout, TapWaitHold:
		// ホールドに移る前に離れたのでダブルタップにする
		f.tripleDeadline = s.EventTime + millis(p.TapTime)
		m.pressPending()
		m.releasePending()
		m.pressPending()
		fallthrough

	case TapHold:
		m.releasePending()
		if f.tripleDeadline == 0 {
			st.pendingClick = ButtonNone
		}
		f.Tap = TapNone
		m.requestCancel()
	}
}

// tapPressureReached はタップ圧力を初めて超えた時の処理
func (m *Machine) tapPressureReached(s *Snapshot, f *Finger, x, y int32) {
	p := &m.params
	st := &m.state

	f.tapGo = true

	if p.TapAnywhere && st.stabilizer == stabilizerIdle {
		st.stabilizer = stabilizerArmed
		st.stabilizerDeadline = s.EventTime + millis(stabilizerDelay)
	}

	// 慣性スクロールを止める
	if st.inertialVY != 0 {
		st.inertialVY = 0
		m.requestCancel()
	}

	f.OrigX, f.OrigY = x, y

	if f.Tap != TapWaitTimeout {
		return
	}

	origin := f.Origin
	if p.TapAnywhere && origin == OriginNoClick &&
		abs32(st.waitDX) < p.TapMove && abs32(st.waitDY) < p.TapMove {
		origin = OriginLeftClick
	}

	if ButtonFor(origin) == st.pendingClick {
		// 同じ領域で再タッチ: ボタンを押してホールド待ちへ
		m.pressPending()
		f.Tap = TapWaitHold
		m.requestTimer(p.TapTime)
	} else {
		m.deliverPendingClick(f)
	}
}

// deliverPendingClick は保留中のクリックを押し、短い遅延で離すようにタイマーを設定する
func (m *Machine) deliverPendingClick(f *Finger) {
	p := &m.params
	st := &m.state

	if st.clickFinish {
		m.finishClick()
		return
	}

	if f != nil {
		f.Tap = TapNone
	}
	if abs32(st.waitDX) >= p.TapMove || abs32(st.waitDY) >= p.TapMove {
		// 待機中に動いたのでタップは破棄
		st.pendingClick = ButtonNone
		return
	}

	m.pressPending()
	st.clickFinish = true
	m.scheduleNow(clickReleaseDelay)
}

// finishClick は保留中のクリックを離して完了させる
func (m *Machine) finishClick() {
	m.releasePending()
	m.state.clickFinish = false
	m.state.pendingClick = ButtonNone
}

// otherTapActive は f 以外の指がタップ待ちかホールド中か
func (m *Machine) otherTapActive(f *Finger) bool {
	for i := range m.fingers {
		if o := &m.fingers[i]; o != f && o.Tap != TapNone {
			return true
		}
	}
	return false
}

func (m *Machine) pressPending() {
	st := &m.state
	if st.pendingClick == ButtonNone || st.heldButton != ButtonNone {
		return
	}
	m.emit.Button(st.pendingClick, true)
	st.heldButton = st.pendingClick
}

// releasePending は押下中のボタンを離す。保留中のボタンが変わっていても押したものを離す
func (m *Machine) releasePending() {
	st := &m.state
	if st.heldButton == ButtonNone {
		return
	}
	m.emit.Button(st.heldButton, false)
	st.heldButton = ButtonNone
}
