package gesture

// HysteresisBox は指ごとのジッター除去フィルター
// マージン以内の揺れは無視し、それを超えた分だけ中心を追従させる
type HysteresisBox struct {
	CenterX int32
	CenterY int32
}

// Filter は生の座標にヒステリシスを適用し、フィルター後の座標を返します
func (h *HysteresisBox) Filter(x, y, marginX, marginY int32) (int32, int32) {
	h.CenterX = hysteresis(x, h.CenterX, marginX)
	h.CenterY = hysteresis(y, h.CenterY, marginY)
	return h.CenterX, h.CenterY
}

// Anchor は新しいタッチの最初の座標を中心にする
func (h *HysteresisBox) Anchor(x, y int32) {
	h.CenterX = x
	h.CenterY = y
}

// フィルターの状態をリセットします
func (h *HysteresisBox) Reset() {
	h.CenterX = 0
	h.CenterY = 0
}

// hysteresis は in がマージン内に収まるように移動させた新しい中心を返す
func hysteresis(in, center, margin int32) int32 {
	diff := in - center
	switch {
	case diff > margin:
		return center + diff - margin
	case diff < -margin:
		return center + diff + margin
	default:
		return center
	}
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
