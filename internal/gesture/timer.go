package gesture

// OnTimer はタイマー発火時の継続処理
// 優先順位: クリックの解放 > 慣性スクロール > タップ/ホールドのタイムアウト
func (m *Machine) OnTimer() {
	st := &m.state

	switch {
	case st.clickFinish:
		m.finishClick()
		if st.inertialVY != 0 {
			m.timer.Schedule(inertialTickDelay)
		}

	case st.inertialVY != 0:
		if st.inertialVY > 0 {
			st.inertialVY -= inertialStep
		} else {
			st.inertialVY += inertialStep
		}
		if abs32(st.inertialVY) > inertialCutoff {
			m.emit.Scroll(0, float64(st.inertialVY))
			m.timer.Schedule(inertialTickDelay)
		} else {
			st.inertialVY = 0
		}

	default:
		for i := range m.fingers {
			f := &m.fingers[i]
			switch f.Tap {
			case TapWaitTimeout:
				m.deliverPendingClick(f)
			case TapWaitHold:
				f.Tap = TapHold
			}
		}
	}

	st.timerReq = timerKeep
	st.timerDelay = 0
}
