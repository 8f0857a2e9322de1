package gesture

// TouchOrigin はタッチが始まったクリック領域
type TouchOrigin int

const (
	OriginClosed    TouchOrigin = iota // タッチなし
	OriginButtonGap                    // 下部ボタンの区切り
	OriginNoClick                      // 移動専用の領域
	OriginLeftClick
	OriginMiddleClick
	OriginRightClick
)

func (o TouchOrigin) String() string {
	switch o {
	case OriginClosed:
		return "closed"
	case OriginButtonGap:
		return "button-gap"
	case OriginNoClick:
		return "no-click"
	case OriginLeftClick:
		return "left-click"
	case OriginMiddleClick:
		return "middle-click"
	case OriginRightClick:
		return "right-click"
	}
	return "unknown"
}

// IsClickRegion はボタンに対応する領域かどうか
func (o TouchOrigin) IsClickRegion() bool {
	return o >= OriginLeftClick
}

// VerticalZone は縦方向の帯
type VerticalZone int

const (
	ZoneUndefined VerticalZone = iota
	ZoneTop
	ZoneMiddle
	ZoneBottom
)

// Regions はクリック領域の境界（デバイス座標の絶対値）
type Regions struct {
	TopBottomY      int32 // 上部ボタン帯の下端
	TopMiddleLeftX  int32 // 上部中央ボタンの左端
	TopMiddleRightX int32 // 上部中央ボタンの右端

	BottomTopY       int32 // 下部ボタン帯の上端
	BottomLeftRightX int32 // 下部左ボタンの右端
	BottomRightLeftX int32 // 下部右ボタンの左端
}

// Classify は座標をクリック領域と縦の帯に分類する
func Classify(x, y int32, r Regions) (TouchOrigin, VerticalZone) {
	switch {
	case y < r.TopBottomY:
		switch {
		case x < r.TopMiddleLeftX:
			return OriginLeftClick, ZoneTop
		case x > r.TopMiddleRightX:
			return OriginRightClick, ZoneTop
		default:
			return OriginMiddleClick, ZoneTop
		}
	case y > r.BottomTopY:
		switch {
		case x < r.BottomLeftRightX:
			return OriginLeftClick, ZoneBottom
		case x > r.BottomRightLeftX:
			return OriginRightClick, ZoneBottom
		default:
			return OriginButtonGap, ZoneBottom
		}
	default:
		return OriginNoClick, ZoneMiddle
	}
}
