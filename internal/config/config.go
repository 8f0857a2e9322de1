package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Auto は座標範囲から自動で決める値を表す
const Auto = -1

var (
	// ErrUnknownProperty は存在しないプロパティ名が指定された
	ErrUnknownProperty = errors.New("不明なプロパティ")
	// ErrInvalidValue は検証に失敗した値が指定された
	ErrInvalidValue = errors.New("不正な値")
)

// Config はアプリケーション全体の設定を表す構造体
type Config struct {
	Device   DeviceConfig   `toml:"device" json:"device"`
	TouchPad TouchPadConfig `toml:"touchpad" json:"touchpad"`
	Finger   FingerConfig   `toml:"finger" json:"finger"`
	Tap      TapConfig      `toml:"tap" json:"tap"`
	Buttons  ButtonsConfig  `toml:"buttons" json:"buttons"`
	Scroll   ScrollConfig   `toml:"scroll" json:"scroll"`
	Motion   MotionConfig   `toml:"motion" json:"motion"`
	Noise    NoiseConfig    `toml:"noise" json:"noise"`

	// 0: 有効, 1: すべて無効, 2: タップとスクロールのみ無効
	TouchpadOff int `toml:"touchpad_off" json:"touchpad_off"`
}

// DeviceConfig は入出力デバイスの設定
type DeviceConfig struct {
	Path       string `toml:"path" json:"path"`               // 入力デバイス（/dev/input/eventN）
	Grab       bool   `toml:"grab" json:"grab"`               // 排他的に取得する
	OutputName string `toml:"output_name" json:"output_name"` // 仮想ポインタの名前
	UinputPath string `toml:"uinput_path" json:"uinput_path"`
}

// TouchPadConfig はタッチパッドの座標範囲。0のままならデバイスから取得する
type TouchPadConfig struct {
	MinX int32 `toml:"min_x" json:"min_x"`
	MaxX int32 `toml:"max_x" json:"max_x"`
	MinY int32 `toml:"min_y" json:"min_y"`
	MaxY int32 `toml:"max_y" json:"max_y"`
}

// FingerConfig は指の接触判定の圧力
type FingerConfig struct {
	Low  int32 `toml:"low" json:"low"`
	High int32 `toml:"high" json:"high"`
}

// TapConfig はタップ判定の設定
type TapConfig struct {
	MaxTime     time.Duration `toml:"max_time" json:"max_time"`
	MaxMove     int32         `toml:"max_move" json:"max_move"` // Auto で対角線の4.4%
	MinPressure int32         `toml:"min_pressure" json:"min_pressure"`
	Anywhere    bool          `toml:"anywhere" json:"anywhere"`
	HoldTime    time.Duration `toml:"hold_time" json:"hold_time"` // 0でタップ&ホールドを無効化
}

// ButtonsConfig はクリック領域の設定（幅・高さの百分率）
type ButtonsConfig struct {
	BottomHeight   int32 `toml:"bottom_height" json:"bottom_height"`
	BottomSepPos   int32 `toml:"bottom_sep_pos" json:"bottom_sep_pos"`
	BottomSepWidth int32 `toml:"bottom_sep_width" json:"bottom_sep_width"`
	TopHeight      int32 `toml:"top_height" json:"top_height"`
	TopMiddleWidth int32 `toml:"top_middle_width" json:"top_middle_width"`
	FingerSize     int32 `toml:"finger_size" json:"finger_size"` // 2本指スクロールの指の大きさ
}

// ScrollConfig は2本指スクロールの設定
type ScrollConfig struct {
	Vertical   bool  `toml:"vertical" json:"vertical"`
	Horizontal bool  `toml:"horizontal" json:"horizontal"`
	VertDelta  int32 `toml:"vert_delta" json:"vert_delta"`   // 1ステップあたりの移動量。Auto で対角線の2%
	HorizDelta int32 `toml:"horiz_delta" json:"horiz_delta"` // 同上
}

// MotionConfig はポインタ速度の設定
type MotionConfig struct {
	MinSpeed          float64 `toml:"min_speed" json:"min_speed"`
	MaxSpeed          float64 `toml:"max_speed" json:"max_speed"`
	AccelFactor       float64 `toml:"accel_factor" json:"accel_factor"`
	PressureMinZ      int32   `toml:"pressure_min_z" json:"pressure_min_z"`
	PressureMaxZ      int32   `toml:"pressure_max_z" json:"pressure_max_z"`
	PressureMinFactor float64 `toml:"pressure_min_factor" json:"pressure_min_factor"`
	PressureMaxFactor float64 `toml:"pressure_max_factor" json:"pressure_max_factor"`
}

// NoiseConfig はジッター除去の設定
type NoiseConfig struct {
	HorizHysteresis int32 `toml:"horiz_hysteresis" json:"horiz_hysteresis"` // Auto で対角線の0.5%
	VertHysteresis  int32 `toml:"vert_hysteresis" json:"vert_hysteresis"`
}

// DefaultConfig はデフォルト設定を返す
func DefaultConfig() *Config {
	return &Config{
		Device: DeviceConfig{
			Path:       "",
			Grab:       true,
			OutputName: "clickpad-gestures",
			UinputPath: "/dev/uinput",
		},
		Finger: FingerConfig{
			Low:  25,
			High: 30,
		},
		Tap: TapConfig{
			MaxTime:     180 * time.Millisecond,
			MaxMove:     Auto,
			MinPressure: 50,
			Anywhere:    false,
			HoldTime:    160 * time.Millisecond,
		},
		Buttons: ButtonsConfig{
			BottomHeight:   25,
			BottomSepPos:   50,
			BottomSepWidth: 2,
			TopHeight:      15,
			TopMiddleWidth: 16,
			FingerSize:     18,
		},
		Scroll: ScrollConfig{
			Vertical:   true,
			Horizontal: true,
			VertDelta:  Auto,
			HorizDelta: Auto,
		},
		Motion: MotionConfig{
			MinSpeed:          0.4,
			MaxSpeed:          0.7,
			AccelFactor:       0,
			PressureMinZ:      30,
			PressureMaxZ:      90,
			PressureMinFactor: 1.0,
			PressureMaxFactor: 10.0,
		},
		Noise: NoiseConfig{
			HorizHysteresis: Auto,
			VertHysteresis:  Auto,
		},
	}
}

// GetDefaultConfigDir は設定ファイルを置くディレクトリを返す
func GetDefaultConfigDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "clickpad-gestures")
	}
	return filepath.Join(".", ".clickpad-gestures")
}

// DefaultConfigPath は既定の設定ファイルのパス
func DefaultConfigPath() string {
	return filepath.Join(GetDefaultConfigDir(), "config.toml")
}

// LoadConfig は設定ファイルから設定を読み込む
func LoadConfig(configPath string) (*Config, error) {
	// ファイルが存在しない場合はデフォルト設定を保存して返す
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		config := DefaultConfig()
		if err := SaveConfig(configPath, config); err != nil {
			return config, err
		}
		return config, nil
	}

	return readConfig(configPath)
}

// readConfig は既存の設定ファイルを読み込んで検証する
func readConfig(configPath string) (*Config, error) {
	config := DefaultConfig()
	if _, err := toml.DecodeFile(configPath, config); err != nil {
		return nil, fmt.Errorf("設定ファイルの読み込みに失敗しました: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// SaveConfig は設定をTOMLファイルに保存する
func SaveConfig(configPath string, config *Config) error {
	// 設定ディレクトリの作成
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return err
	}

	// 一時ファイルに書いてから置き換える
	tmp, err := os.CreateTemp(configDir, ".config-*.toml")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := toml.NewEncoder(tmp).Encode(config); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), configPath)
}

// Clone は設定のコピーを返す
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}
