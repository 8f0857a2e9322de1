package output

import (
	"fmt"
	"log"
	"math"

	"github.com/bendahl/uinput"

	"github.com/char5742/clickpad-gestures/internal/gesture"
)

// Settings は仮想ポインタへの変換設定
type Settings struct {
	ScrollDistVert  int32   // ホイール1ステップ分の縦スクロール量（デバイス座標）
	ScrollDistHoriz int32   // 同じく横
	Speed           float64 // デバイス座標からポインタ移動量への倍率
}

// pointerDevice は uinput.Mouse のうち使用する操作
type pointerDevice interface {
	Move(x, y int32) error
	LeftPress() error
	LeftRelease() error
	RightPress() error
	RightRelease() error
	MiddlePress() error
	MiddleRelease() error
	Wheel(horizontal bool, delta int32) error
	Close() error
}

// Pointer はジェスチャーの出力を uinput の仮想マウスへ送る
type Pointer struct {
	dev      pointerDevice
	settings Settings

	// 整数に丸めきれなかった端数
	restX, restY   float64
	wheelX, wheelY float64
}

// NewPointer は仮想マウスを作成する
func NewPointer(uinputPath, name string, settings Settings) (*Pointer, error) {
	mouse, err := uinput.CreateMouse(uinputPath, []byte(name))
	if err != nil {
		return nil, fmt.Errorf("仮想マウスの作成に失敗しました: %w", err)
	}
	return newPointer(mouse, settings), nil
}

func newPointer(dev pointerDevice, settings Settings) *Pointer {
	return &Pointer{dev: dev, settings: settings}
}

// SetSettings は変換設定を差し替え、端数を捨てる
func (p *Pointer) SetSettings(settings Settings) {
	p.settings = settings
	p.restX, p.restY = 0, 0
	p.wheelX, p.wheelY = 0, 0
}

// Motion はポインタを相対移動させる
func (p *Pointer) Motion(dx, dy int32) {
	fx := float64(dx)*p.settings.Speed + p.restX
	fy := float64(dy)*p.settings.Speed + p.restY
	ix, iy := math.Trunc(fx), math.Trunc(fy)
	p.restX, p.restY = fx-ix, fy-iy

	if ix == 0 && iy == 0 {
		return
	}
	if err := p.dev.Move(int32(ix), int32(iy)); err != nil {
		log.Printf("ポインタ移動の送信に失敗しました: %v", err)
	}
}

// Button はボタンの押下/解放を送る
func (p *Pointer) Button(b gesture.Button, pressed bool) {
	var err error
	switch b {
	case gesture.ButtonLeft:
		err = pick(pressed, p.dev.LeftPress, p.dev.LeftRelease)
	case gesture.ButtonMiddle:
		err = pick(pressed, p.dev.MiddlePress, p.dev.MiddleRelease)
	case gesture.ButtonRight:
		err = pick(pressed, p.dev.RightPress, p.dev.RightRelease)
	default:
		log.Printf("未対応のボタン: %v", b)
		return
	}
	if err != nil {
		log.Printf("ボタンイベントの送信に失敗しました: %v", err)
	}
}

func pick(pressed bool, press, release func() error) error {
	if pressed {
		return press()
	}
	return release()
}

// Scroll はスクロール量をホイールのステップに変換して送る
// 1ステップに満たない分は次回に持ち越す
func (p *Pointer) Scroll(dx, dy float64) {
	if ticks := wheelTicks(&p.wheelY, dy, p.settings.ScrollDistVert); ticks != 0 {
		// 指を下へ動かすとホイールは下方向（負）
		if err := p.dev.Wheel(false, -ticks); err != nil {
			log.Printf("縦スクロールの送信に失敗しました: %v", err)
		}
	}
	if ticks := wheelTicks(&p.wheelX, dx, p.settings.ScrollDistHoriz); ticks != 0 {
		if err := p.dev.Wheel(true, ticks); err != nil {
			log.Printf("横スクロールの送信に失敗しました: %v", err)
		}
	}
}

func wheelTicks(acc *float64, delta float64, dist int32) int32 {
	if dist <= 0 {
		dist = 1
	}
	*acc += delta
	ticks := math.Trunc(*acc / float64(dist))
	*acc -= ticks * float64(dist)
	return int32(ticks)
}

// Close は仮想マウスを破棄する
func (p *Pointer) Close() error {
	return p.dev.Close()
}
