package config

import (
	"encoding/json"
	"fmt"
	"time"
)

// MarshalJSON は時間を設定ファイルと同じ "180ms" 形式で書き出す
func (t TapConfig) MarshalJSON() ([]byte, error) {
	type alias TapConfig
	return json.Marshal(struct {
		alias
		MaxTime  string `json:"max_time"`
		HoldTime string `json:"hold_time"`
	}{
		alias:    alias(t),
		MaxTime:  t.MaxTime.String(),
		HoldTime: t.HoldTime.String(),
	})
}

// UnmarshalJSON は "180ms" 形式の時間を読み込む。省略された項目は現在の値を残す
func (t *TapConfig) UnmarshalJSON(data []byte) error {
	type alias TapConfig
	aux := struct {
		*alias
		MaxTime  *string `json:"max_time"`
		HoldTime *string `json:"hold_time"`
	}{alias: (*alias)(t)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	fields := []struct {
		name string
		src  *string
		dst  *time.Duration
	}{
		{"max_time", aux.MaxTime, &t.MaxTime},
		{"hold_time", aux.HoldTime, &t.HoldTime},
	}
	for _, f := range fields {
		if f.src == nil {
			continue
		}
		d, err := time.ParseDuration(*f.src)
		if err != nil {
			return fmt.Errorf("%w: tap.%s=%q は時間ではありません", ErrInvalidValue, f.name, *f.src)
		}
		*f.dst = d
	}
	return nil
}
