package config

import (
	"math"

	"github.com/char5742/clickpad-gestures/internal/gesture"
	"github.com/char5742/clickpad-gestures/internal/output"
)

// Resolved はデバイスの座標範囲を適用した実行時の設定
type Resolved struct {
	Axes    gesture.Axes
	Gesture gesture.Params
	Pointer output.Settings
}

// Resolve は百分率や自動値をデバイス座標の絶対値に変換する
// probed はデバイスから取得した範囲で、touchpad セクションの値があればそちらを優先する
func (c *Config) Resolve(probed gesture.Axes) Resolved {
	axes := probed
	if tp := c.TouchPad; tp.MaxX != 0 {
		axes.MinX, axes.MaxX = tp.MinX, tp.MaxX
	}
	if tp := c.TouchPad; tp.MaxY != 0 {
		axes.MinY, axes.MaxY = tp.MinY, tp.MaxY
	}

	width := float64(abs(axes.MaxX - axes.MinX))
	height := float64(abs(axes.MaxY - axes.MinY))
	diag := math.Trunc(math.Sqrt(width*width + height*height))

	auto := func(v int32, ratio float64) int32 {
		if v == Auto {
			return int32(diag * ratio)
		}
		return v
	}

	b := c.Buttons
	minX, minY := float64(axes.MinX), float64(axes.MinY)
	regions := gesture.Regions{
		TopBottomY:       int32(float64(b.TopHeight)/100.0*height + minY),
		TopMiddleLeftX:   int32(float64(50-b.TopMiddleWidth/2)/100.0*width + minX),
		TopMiddleRightX:  int32(float64(50+b.TopMiddleWidth/2)/100.0*width + minX),
		BottomTopY:       int32(float64(100-b.BottomHeight)/100.0*height + minY),
		BottomLeftRightX: int32(float64(b.BottomSepPos-b.BottomSepWidth/2)/100.0*width + minX),
		BottomRightLeftX: int32(float64(b.BottomSepPos+b.BottomSepWidth/2)/100.0*width + minX),
	}

	params := gesture.Params{
		FingerLow:        c.Finger.Low,
		FingerHigh:       c.Finger.High,
		TapTime:          c.Tap.MaxTime,
		TapMove:          auto(c.Tap.MaxMove, 0.044),
		TapPressure:      c.Tap.MinPressure,
		TapAnywhere:      c.Tap.Anywhere,
		TapHold:          c.Tap.HoldTime,
		HystX:            auto(c.Noise.HorizHysteresis, 0.005),
		HystY:            auto(c.Noise.VertHysteresis, 0.005),
		Regions:          regions,
		FingerRadius:     int32(float64(b.FingerSize) / 100.0 * width),
		ScrollVertical:   c.Scroll.Vertical,
		ScrollHorizontal: c.Scroll.Horizontal,
		Off:              gesture.OffMode(c.TouchpadOff),
	}

	pointer := output.Settings{
		ScrollDistVert:  max(auto(c.Scroll.VertDelta, 0.02), 1),
		ScrollDistHoriz: max(auto(c.Scroll.HorizDelta, 0.02), 1),
		Speed:           c.Motion.MinSpeed,
	}

	return Resolved{Axes: axes, Gesture: params, Pointer: pointer}
}

func abs(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
