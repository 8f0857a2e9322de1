package gesture

import "time"

// OffMode はタッチパッドの無効化モード
type OffMode int

const (
	TouchpadOn     OffMode = 0
	TouchpadOff    OffMode = 1 // すべて無効
	TouchpadTapOff OffMode = 2 // タップとスクロールのみ無効
)

// Params はジェスチャー処理が参照する解決済みの設定値
// 座標系の値はすべてデバイス座標の絶対値
type Params struct {
	FingerLow  int32 // これ未満の圧力はタッチとみなさない
	FingerHigh int32

	TapTime     time.Duration
	TapMove     int32
	TapPressure int32
	TapAnywhere bool
	TapHold     time.Duration // 0でタップ&ホールドを無効化

	HystX int32
	HystY int32

	Regions      Regions
	FingerRadius int32

	ScrollVertical   bool
	ScrollHorizontal bool

	Off OffMode
}

// 固定の時間・閾値
const (
	buttonDebounce     = 200 * time.Millisecond // 物理ボタン解放後に移動とタップを抑止する時間
	stabilizerDelay    = 120 * time.Millisecond
	clickReleaseDelay  = 5 * time.Millisecond
	inertialStartDelay = 20 * time.Millisecond
	inertialTickDelay  = 64 * time.Millisecond
	inertialArmSpeed   = 150
	inertialStep       = 50
	inertialCutoff     = 50
	runawayMotionClamp = 400
)
