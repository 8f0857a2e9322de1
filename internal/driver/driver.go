package driver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/char5742/clickpad-gestures/internal/config"
	"github.com/char5742/clickpad-gestures/internal/gesture"
	"github.com/char5742/clickpad-gestures/internal/output"
)

// Source はタッチパッドのレポートを供給する
// Next はブロックしてよく、Close で待機中の Next はエラーで戻る
type Source interface {
	Next() (gesture.Snapshot, error)
	Close() error
}

// settingsReceiver は変換設定を受け付ける出力先
type settingsReceiver interface {
	SetSettings(s output.Settings)
}

// Driver はタッチパッド1台分の実行ループ
// 状態機械はループのゴルーチンだけが操作する
type Driver struct {
	source  Source
	axes    gesture.Axes
	emit    gesture.Emitter
	timer   *loopTimer
	machine *gesture.Machine
	updates chan *config.Config
}

// New はドライバーを作成する。axes は設定の百分率を解決するための座標範囲
func New(source Source, axes gesture.Axes, emit gesture.Emitter, cfg *config.Config) *Driver {
	d := &Driver{
		source:  source,
		axes:    axes,
		emit:    emit,
		timer:   newLoopTimer(),
		updates: make(chan *config.Config, 1),
	}
	resolved := cfg.Resolve(axes)
	d.machine = gesture.New(resolved.Gesture, emit, d.timer)
	d.applyPointer(resolved.Pointer)
	return d
}

// UpdateConfig は設定を更新する。未処理の更新があれば新しいもので置き換える
func (d *Driver) UpdateConfig(cfg *config.Config) {
	select {
	case d.updates <- cfg:
		// 設定更新チャネルに送信成功
	default:
		// チャネルがブロックされている場合は古い設定を破棄して新しい設定を送信
		select {
		case <-d.updates:
		default:
		}
		select {
		case d.updates <- cfg:
		default:
		}
	}
}

// Run はコンテキストが終了するか入力が途切れるまでレポートを処理する
// 終了時はデバイスオフとしてタイマーを止め、状態を初期化し、入力を閉じる
func (d *Driver) Run(ctx context.Context) error {
	snapshots := make(chan gesture.Snapshot)
	readErr := make(chan error, 1)
	readerDone := make(chan struct{})

	go func() {
		defer close(readerDone)
		for {
			s, err := d.source.Next()
			if err != nil {
				readErr <- err
				return
			}
			select {
			case snapshots <- s:
			case <-ctx.Done():
				return
			}
		}
	}()

	defer func() {
		d.machine.Off()
		d.timer.close()
		if err := d.source.Close(); err != nil {
			log.Printf("入力デバイスのクローズに失敗しました: %v", err)
		}
		<-readerDone
	}()

	log.Println("ジェスチャー認識を開始しました...")
	for {
		select {
		case <-ctx.Done():
			log.Println("ジェスチャー認識を停止します")
			return nil

		case s := <-snapshots:
			d.machine.HandleSnapshot(&s)

		case gen := <-d.timer.fires:
			if d.timer.accept(gen) {
				d.machine.OnTimer()
			}

		case cfg := <-d.updates:
			d.apply(cfg)

		case err := <-readErr:
			if errors.Is(err, io.EOF) || errors.Is(err, os.ErrClosed) {
				log.Println("入力が終了しました")
				return nil
			}
			return fmt.Errorf("入力デバイスの読み込みに失敗しました: %w", err)
		}
	}
}

func (d *Driver) apply(cfg *config.Config) {
	resolved := cfg.Resolve(d.axes)
	d.machine.SetParams(resolved.Gesture)
	d.applyPointer(resolved.Pointer)
	log.Println("設定を更新しました")
}

func (d *Driver) applyPointer(s output.Settings) {
	if r, ok := d.emit.(settingsReceiver); ok {
		r.SetSettings(s)
	}
}
