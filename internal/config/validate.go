package config

import "fmt"

// Validate は設定値の整合性を検証する
func (c *Config) Validate() error {
	if c.Finger.Low > c.Finger.High {
		return invalid("finger.low (%d) は finger.high (%d) 以下である必要があります", c.Finger.Low, c.Finger.High)
	}
	if c.Tap.MaxTime < 0 || c.Tap.HoldTime < 0 {
		return invalid("タップ時間は0以上である必要があります")
	}
	if c.Tap.MaxMove < Auto {
		return invalid("tap.max_move (%d) は0以上である必要があります", c.Tap.MaxMove)
	}

	percents := []struct {
		name  string
		value int32
	}{
		{"buttons.bottom_height", c.Buttons.BottomHeight},
		{"buttons.bottom_sep_pos", c.Buttons.BottomSepPos},
		{"buttons.bottom_sep_width", c.Buttons.BottomSepWidth},
		{"buttons.top_height", c.Buttons.TopHeight},
		{"buttons.top_middle_width", c.Buttons.TopMiddleWidth},
		{"buttons.finger_size", c.Buttons.FingerSize},
	}
	for _, p := range percents {
		if p.value < 0 || p.value > 100 {
			return invalid("%s (%d) は0から100の範囲である必要があります", p.name, p.value)
		}
	}
	if c.Buttons.TopHeight+c.Buttons.BottomHeight > 100 {
		return invalid("上下のボタン領域の合計が100%%を超えています")
	}

	for _, d := range []int32{c.Scroll.VertDelta, c.Scroll.HorizDelta} {
		if d == 0 || d < Auto {
			return invalid("スクロール量 (%d) は正の値である必要があります", d)
		}
	}

	if c.Motion.PressureMinZ > c.Motion.PressureMaxZ {
		return invalid("motion.pressure_min_z (%d) は pressure_max_z (%d) 以下である必要があります",
			c.Motion.PressureMinZ, c.Motion.PressureMaxZ)
	}
	if c.Motion.PressureMinFactor > c.Motion.PressureMaxFactor {
		return invalid("motion.pressure_min_factor (%g) は pressure_max_factor (%g) 以下である必要があります",
			c.Motion.PressureMinFactor, c.Motion.PressureMaxFactor)
	}
	if c.Motion.MinSpeed < 0 || c.Motion.MaxSpeed < 0 {
		return invalid("速度は0以上である必要があります")
	}

	if c.Noise.HorizHysteresis < Auto || c.Noise.VertHysteresis < Auto {
		return invalid("ヒステリシスは0以上である必要があります")
	}

	if c.TouchpadOff < 0 || c.TouchpadOff > 2 {
		return invalid("touchpad_off (%d) は0から2の範囲である必要があります", c.TouchpadOff)
	}

	tp := c.TouchPad
	if (tp.MaxX != 0 && tp.MinX >= tp.MaxX) || (tp.MaxY != 0 && tp.MinY >= tp.MaxY) {
		return invalid("タッチパッドの座標範囲が不正です")
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidValue, fmt.Sprintf(format, args...))
}
