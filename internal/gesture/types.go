package gesture

import "time"

// MaxFingers は同時に追跡するスロット数
const MaxFingers = 2

// Timestamp はイベント時刻（ミリ秒）
type Timestamp int64

// millis は時間をTimestamp単位に変換する
func millis(d time.Duration) Timestamp {
	return Timestamp(d / time.Millisecond)
}

// SlotState はハードウェアスロットの状態を表す列挙型
type SlotState int

const (
	SlotEmpty     SlotState = iota // 未使用
	SlotOpenEmpty                  // 追跡中だがこのレポートで更新なし
	SlotOpen                       // このレポートで追跡開始
	SlotUpdate                     // 追跡中で値が更新された
	SlotClose                      // このレポートで追跡終了
)

func (s SlotState) String() string {
	switch s {
	case SlotEmpty:
		return "empty"
	case SlotOpenEmpty:
		return "open-empty"
	case SlotOpen:
		return "open"
	case SlotUpdate:
		return "update"
	case SlotClose:
		return "close"
	}
	return "unknown"
}

// TouchSample は1スロット分の読み取り値
type TouchSample struct {
	State    SlotState
	X, Y     int32
	Pressure int32
	Start    Timestamp // タッチ開始時刻
}

// Snapshot はSYN_REPORTで区切られた1レポート分のハードウェア状態
type Snapshot struct {
	EventTime   Timestamp
	PrimaryDown bool // 物理ボタン（クリックパッド）の押下状態
	Touches     [MaxFingers]TouchSample
}

// Axes はデバイスが報告する座標と圧力の範囲
type Axes struct {
	MinX, MaxX int32
	MinY, MaxY int32

	MinPressure, MaxPressure int32
}

// Emitter はポインタイベントの出力先
type Emitter interface {
	Motion(dx, dy int32)
	Button(b Button, pressed bool)
	Scroll(dx, dy float64)
}

// Timer は単発タイマー。発火時には Machine.OnTimer を呼び出す側が用意する
type Timer interface {
	Schedule(delay time.Duration)
	Cancel()
}
