package gesture

// TapState は指ごとのタップ/ホールド状態
type TapState int

const (
	TapNone        TapState = iota
	TapWaitTimeout          // タップ確定待ち（タイマー動作中）
	TapWaitHold             // ボタン押下済み、ホールドへの移行待ち（タイマー動作中）
	TapHold                 // ホールド中（ドラッグ）
)

func (s TapState) String() string {
	switch s {
	case TapNone:
		return "none"
	case TapWaitTimeout:
		return "wait-timeout"
	case TapWaitHold:
		return "wait-hold"
	case TapHold:
		return "hold"
	}
	return "unknown"
}

// Finger は1スロット分の追跡状態
type Finger struct {
	HistX, HistY int32 // 前回のフィルター後座標
	OrigX, OrigY int32 // タップ圧力に達した時の座標

	hyst HysteresisBox

	Origin TouchOrigin
	Zone   VerticalZone
	Tap    TapState

	tapGo          bool
	tripleDeadline Timestamp
}

// newTouch はまだ起点が確定していないか
func (f *Finger) newTouch() bool {
	return f.Origin == OriginClosed
}

// latch は新しいタッチの起点と履歴を設定する
func (f *Finger) latch(origin TouchOrigin, zone VerticalZone, x, y int32) {
	f.Origin = origin
	f.Zone = zone
	f.HistX = x
	f.HistY = y
}

// release はタッチ終了時の後片付け
// タップ状態とトリプルタップの期限は次のタッチへ持ち越す
func (f *Finger) release() {
	f.Origin = OriginClosed
	f.Zone = ZoneUndefined
	f.HistX = 0
	f.HistY = 0
	f.hyst.Reset()
	f.tapGo = false
}

// movedWithin はタップ起点からの移動量が limit 未満か
func (f *Finger) movedWithin(limit int32) bool {
	return abs32(f.OrigX-f.HistX) < limit && abs32(f.OrigY-f.HistY) < limit
}
