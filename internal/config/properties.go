package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Property はプロパティ名と現在値の組
type Property struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type property struct {
	name string
	get  func(c *Config) string
	set  func(c *Config, v string) error
}

func intProperty(name string, field func(c *Config) *int32) property {
	return property{
		name: name,
		get:  func(c *Config) string { return strconv.FormatInt(int64(*field(c)), 10) },
		set: func(c *Config, v string) error {
			n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 32)
			if err != nil {
				return fmt.Errorf("%w: %s=%q は整数ではありません", ErrInvalidValue, name, v)
			}
			*field(c) = int32(n)
			return nil
		},
	}
}

func boolProperty(name string, field func(c *Config) *bool) property {
	return property{
		name: name,
		get: func(c *Config) string {
			if *field(c) {
				return "1"
			}
			return "0"
		},
		set: func(c *Config, v string) error {
			switch strings.ToLower(strings.TrimSpace(v)) {
			case "1", "true", "on":
				*field(c) = true
			case "0", "false", "off":
				*field(c) = false
			default:
				return fmt.Errorf("%w: %s=%q は真偽値ではありません", ErrInvalidValue, name, v)
			}
			return nil
		},
	}
}

func floatProperty(name string, field func(c *Config) *float64) property {
	return property{
		name: name,
		get:  func(c *Config) string { return strconv.FormatFloat(*field(c), 'g', -1, 64) },
		set: func(c *Config, v string) error {
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return fmt.Errorf("%w: %s=%q は数値ではありません", ErrInvalidValue, name, v)
			}
			*field(c) = f
			return nil
		},
	}
}

// millisProperty はミリ秒の整数で読み書きする時間のプロパティ
func millisProperty(name string, field func(c *Config) *time.Duration) property {
	return property{
		name: name,
		get:  func(c *Config) string { return strconv.FormatInt(field(c).Milliseconds(), 10) },
		set: func(c *Config, v string) error {
			n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 32)
			if err != nil {
				return fmt.Errorf("%w: %s=%q はミリ秒の整数ではありません", ErrInvalidValue, name, v)
			}
			*field(c) = time.Duration(n) * time.Millisecond
			return nil
		},
	}
}

var properties = []property{
	intProperty("FingerLow", func(c *Config) *int32 { return &c.Finger.Low }),
	intProperty("FingerHigh", func(c *Config) *int32 { return &c.Finger.High }),
	millisProperty("MaxTapTime", func(c *Config) *time.Duration { return &c.Tap.MaxTime }),
	intProperty("MaxTapMove", func(c *Config) *int32 { return &c.Tap.MaxMove }),
	intProperty("MinTapPressure", func(c *Config) *int32 { return &c.Tap.MinPressure }),
	boolProperty("TapAnywhere", func(c *Config) *bool { return &c.Tap.Anywhere }),
	millisProperty("TapHoldGesture", func(c *Config) *time.Duration { return &c.Tap.HoldTime }),
	intProperty("BottomButtonsHeight", func(c *Config) *int32 { return &c.Buttons.BottomHeight }),
	intProperty("BottomButtonsSepPos", func(c *Config) *int32 { return &c.Buttons.BottomSepPos }),
	intProperty("BottomButtonsSepWidth", func(c *Config) *int32 { return &c.Buttons.BottomSepWidth }),
	intProperty("TopButtonsHeight", func(c *Config) *int32 { return &c.Buttons.TopHeight }),
	intProperty("TopButtonsMiddleWidth", func(c *Config) *int32 { return &c.Buttons.TopMiddleWidth }),
	intProperty("TwoFingerScrollFingerSize", func(c *Config) *int32 { return &c.Buttons.FingerSize }),
	boolProperty("VertTwoFingerScroll", func(c *Config) *bool { return &c.Scroll.Vertical }),
	boolProperty("HorizTwoFingerScroll", func(c *Config) *bool { return &c.Scroll.Horizontal }),
	intProperty("VertScrollDelta", func(c *Config) *int32 { return &c.Scroll.VertDelta }),
	intProperty("HorizScrollDelta", func(c *Config) *int32 { return &c.Scroll.HorizDelta }),
	floatProperty("MinSpeed", func(c *Config) *float64 { return &c.Motion.MinSpeed }),
	floatProperty("MaxSpeed", func(c *Config) *float64 { return &c.Motion.MaxSpeed }),
	floatProperty("AccelFactor", func(c *Config) *float64 { return &c.Motion.AccelFactor }),
	intProperty("PressureMotionMinZ", func(c *Config) *int32 { return &c.Motion.PressureMinZ }),
	intProperty("PressureMotionMaxZ", func(c *Config) *int32 { return &c.Motion.PressureMaxZ }),
	floatProperty("PressureMotionMinFactor", func(c *Config) *float64 { return &c.Motion.PressureMinFactor }),
	floatProperty("PressureMotionMaxFactor", func(c *Config) *float64 { return &c.Motion.PressureMaxFactor }),
	intProperty("HorizHysteresis", func(c *Config) *int32 { return &c.Noise.HorizHysteresis }),
	intProperty("VertHysteresis", func(c *Config) *int32 { return &c.Noise.VertHysteresis }),
	boolProperty("GrabEventDevice", func(c *Config) *bool { return &c.Device.Grab }),
	{
		name: "TouchpadOff",
		get:  func(c *Config) string { return strconv.Itoa(c.TouchpadOff) },
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("%w: TouchpadOff=%q は整数ではありません", ErrInvalidValue, v)
			}
			c.TouchpadOff = n
			return nil
		},
	},
}

func lookupProperty(name string) (property, bool) {
	for _, p := range properties {
		if strings.EqualFold(p.name, name) {
			return p, true
		}
	}
	return property{}, false
}

// Properties はすべてのプロパティの現在値を定義順に返す
func (c *Config) Properties() []Property {
	out := make([]Property, 0, len(properties))
	for _, p := range properties {
		out = append(out, Property{Name: p.name, Value: p.get(c)})
	}
	return out
}

// Property は1つのプロパティの現在値を返す
func (c *Config) Property(name string) (string, error) {
	p, ok := lookupProperty(name)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownProperty, name)
	}
	return p.get(c), nil
}

// SetProperty はプロパティを書き換えた設定のコピーを返す
// 検証に失敗した場合はエラーを返し、元の設定は変更しない
func (c *Config) SetProperty(name, value string) (*Config, error) {
	p, ok := lookupProperty(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProperty, name)
	}

	next := c.Clone()
	if err := p.set(next, value); err != nil {
		return nil, err
	}
	if err := next.Validate(); err != nil {
		return nil, err
	}
	return next, nil
}

// ParseAssignment は "Name=Value" 形式の引数を分解する
func ParseAssignment(arg string) (name, value string, err error) {
	name, value, ok := strings.Cut(arg, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return "", "", fmt.Errorf("%w: %q は Name=Value 形式ではありません", ErrInvalidValue, arg)
	}
	return name, value, nil
}
