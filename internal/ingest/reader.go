package ingest

import (
	"fmt"
	"log"

	evdev "github.com/gvalkov/golang-evdev"

	"github.com/char5742/clickpad-gestures/internal/gesture"
)

// fallbackPressure は圧力軸を持たないデバイスで使う固定の圧力
const fallbackPressure = 100

// Reader は evdev デバイスからレポートを読み出す
type Reader struct {
	dev     *evdev.InputDevice
	asm     *Assembler
	axes    gesture.Axes
	grabbed bool
	pending []evdev.InputEvent
	ready   []gesture.Snapshot
}

// Open は入力デバイスを開き、座標範囲を取得する
// grab が真なら他のクライアントにイベントが届かないよう排他的に取得する
func Open(path string, grab bool) (*Reader, error) {
	dev, err := evdev.Open(path)
	if err != nil {
		return nil, fmt.Errorf("デバイスを開けませんでした: %w", err)
	}

	axes, err := ProbeAxes(dev.File)
	if err != nil {
		dev.File.Close()
		return nil, err
	}

	r := &Reader{dev: dev, asm: NewAssembler(), axes: axes}
	if axes.MaxPressure == 0 {
		log.Printf("圧力軸がないため固定値 %d を使用します: %s", fallbackPressure, dev.Name)
		r.asm.DefaultPressure = fallbackPressure
	}
	hasPressure := axes.MaxPressure != 0
	r.asm.Sync = func() (DeviceState, error) {
		log.Printf("イベントが欠落したためデバイスの状態を読み直します: %s", dev.Name)
		return ReadDeviceState(dev.File, hasPressure)
	}

	if grab {
		if err := dev.Grab(); err != nil {
			dev.File.Close()
			return nil, fmt.Errorf("デバイスの専有に失敗しました: %w", err)
		}
		r.grabbed = true
	}

	log.Printf("入力デバイス: %s (%s) X=%d..%d Y=%d..%d",
		dev.Name, dev.Fn, axes.MinX, axes.MaxX, axes.MinY, axes.MaxY)
	return r, nil
}

// Axes はデバイスの座標範囲を返す
func (r *Reader) Axes() gesture.Axes {
	return r.axes
}

// Name はデバイス名を返す
func (r *Reader) Name() string {
	return r.dev.Name
}

// Next は次のレポートが揃うまでブロックする
func (r *Reader) Next() (gesture.Snapshot, error) {
	for {
		if len(r.ready) > 0 {
			s := r.ready[0]
			r.ready = r.ready[1:]
			return s, nil
		}
		for len(r.pending) > 0 && len(r.ready) == 0 {
			ev := r.pending[0]
			r.pending = r.pending[1:]
			r.ready = r.asm.Feed(ev)
		}
		if len(r.ready) > 0 {
			continue
		}

		events, err := r.dev.Read()
		if err != nil {
			return gesture.Snapshot{}, err
		}
		r.pending = events
	}
}

// Close は専有を解除してデバイスを閉じる
// 別のゴルーチンで待機中の Next はエラーで戻る
func (r *Reader) Close() error {
	if r.grabbed {
		if err := r.dev.Release(); err != nil {
			log.Printf("デバイスの専有解除に失敗しました: %v", err)
		}
		r.grabbed = false
	}
	return r.dev.File.Close()
}
