package gesture

import "math/bits"

// Button はポインタのボタン番号（1始まり）
type Button uint32

const (
	ButtonNone   Button = 0
	ButtonLeft   Button = 1
	ButtonMiddle Button = 2
	ButtonRight  Button = 3
)

func (b Button) String() string {
	switch b {
	case ButtonNone:
		return "none"
	case ButtonLeft:
		return "left"
	case ButtonMiddle:
		return "middle"
	case ButtonRight:
		return "right"
	}
	return "unknown"
}

// Mask はボタン状態マスク上のビットを返す
func (b Button) Mask() uint32 {
	if b == ButtonNone {
		return 0
	}
	return 1 << (b - 1)
}

// ButtonFor はタッチ起点領域に対応するボタンを返す
//
//	LeftClick   -> 1 (left)
//	MiddleClick -> 2 (middle)
//	RightClick  -> 3 (right)
//	それ以外     -> none
func ButtonFor(o TouchOrigin) Button {
	switch o {
	case OriginLeftClick:
		return ButtonLeft
	case OriginMiddleClick:
		return ButtonMiddle
	case OriginRightClick:
		return ButtonRight
	}
	return ButtonNone
}

// emitButtons は前回のボタンマスクとの差分だけ押下/解放イベントを出力する
func (m *Machine) emitButtons(buttons uint32) {
	change := buttons ^ m.state.lastButtons
	for change != 0 {
		bit := uint32(bits.TrailingZeros32(change))
		change &^= 1 << bit
		m.emit.Button(Button(bit+1), buttons&(1<<bit) != 0)
	}
	m.state.lastButtons = buttons
}
