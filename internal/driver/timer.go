package driver

import "time"

// loopTimer は発火を実行ループへ届ける単発タイマー
// Schedule と Cancel は実行ループのゴルーチンからのみ呼び出す
type loopTimer struct {
	t     *time.Timer
	gen   uint64
	armed bool
	fires chan uint64
	done  chan struct{}
}

func newLoopTimer() *loopTimer {
	return &loopTimer{
		fires: make(chan uint64),
		done:  make(chan struct{}),
	}
}

// Schedule は既存の予定を置き換えてタイマーを設定する
func (lt *loopTimer) Schedule(delay time.Duration) {
	if lt.t != nil {
		lt.t.Stop()
	}
	lt.gen++
	lt.armed = true
	gen := lt.gen
	lt.t = time.AfterFunc(delay, func() {
		select {
		case lt.fires <- gen:
		case <-lt.done:
		}
	})
}

// Cancel は予定を取り消す。すでに送信待ちの発火は世代の不一致で捨てられる
func (lt *loopTimer) Cancel() {
	if lt.t != nil {
		lt.t.Stop()
	}
	lt.gen++
	lt.armed = false
}

// accept は受け取った発火が現在の予定のものか判定する
func (lt *loopTimer) accept(gen uint64) bool {
	if !lt.armed || gen != lt.gen {
		return false
	}
	lt.armed = false
	return true
}

// close は送信待ちの発火ゴルーチンを解放する
func (lt *loopTimer) close() {
	lt.Cancel()
	close(lt.done)
}
