package ingest

import (
	"fmt"
	"os"
	"unsafe"

	evdev "github.com/gvalkov/golang-evdev"
	"golang.org/x/sys/unix"

	"github.com/char5742/clickpad-gestures/internal/gesture"
)

// eviocgabs は EVIOCGABS(0) 。軸番号を足して使う
const eviocgabs = 0x80184540

// absInfo は struct input_absinfo
type absInfo struct {
	Value      int32
	Minimum    int32
	Maximum    int32
	Fuzz       int32
	Flat       int32
	Resolution int32
}

func readAbsInfo(file *os.File, axis uint16) (absInfo, error) {
	var info absInfo
	if err := ioctl(file, uintptr(eviocgabs+uint32(axis)), unsafe.Pointer(&info)); err != nil {
		return absInfo{}, err
	}
	return info, nil
}

// ProbeAxes はデバイスからマルチタッチの座標範囲と圧力範囲を取得する
// 圧力軸がない場合は圧力の範囲を0のまま返す
func ProbeAxes(file *os.File) (gesture.Axes, error) {
	x, err := readAbsInfo(file, evdev.ABS_MT_POSITION_X)
	if err != nil {
		return gesture.Axes{}, fmt.Errorf("X軸の範囲を取得できませんでした: %w", err)
	}
	y, err := readAbsInfo(file, evdev.ABS_MT_POSITION_Y)
	if err != nil {
		return gesture.Axes{}, fmt.Errorf("Y軸の範囲を取得できませんでした: %w", err)
	}

	axes := gesture.Axes{
		MinX: x.Minimum,
		MaxX: x.Maximum,
		MinY: y.Minimum,
		MaxY: y.Maximum,
	}
	if p, err := readAbsInfo(file, evdev.ABS_MT_PRESSURE); err == nil {
		axes.MinPressure, axes.MaxPressure = p.Minimum, p.Maximum
	}
	return axes, nil
}

const (
	// eviocgmtslots は EVIOCGMTSLOTS(0) 。バッファ長を16ビット左シフトして足す
	eviocgmtslots = 0x8000450a

	// eviocgkey は EVIOCGKEY(0)
	eviocgkey = 0x80004518

	keyMax = 0x2ff
)

func ioctl(file *os.File, req uintptr, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, file.Fd(), req, uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}

// readMTSlots は1つの軸について先頭 MaxFingers 個のスロットの値を読む
func readMTSlots(file *os.File, code uint16) ([gesture.MaxFingers]int32, error) {
	var req struct {
		Code   uint32
		Values [gesture.MaxFingers]int32
	}
	req.Code = uint32(code)
	size := unsafe.Sizeof(req)
	if err := ioctl(file, eviocgmtslots|size<<16, unsafe.Pointer(&req)); err != nil {
		return req.Values, err
	}
	return req.Values, nil
}

// readButton は BTN_LEFT が押されているか読む
func readButton(file *os.File) (bool, error) {
	var keys [(keyMax + 7) / 8]byte
	if err := ioctl(file, eviocgkey|uintptr(len(keys))<<16, unsafe.Pointer(&keys)); err != nil {
		return false, err
	}
	return keys[evdev.BTN_LEFT/8]&(1<<(evdev.BTN_LEFT%8)) != 0, nil
}

// ReadDeviceState はスロットとボタンの現在値をデバイスから読み出す
// hasPressure が偽なら圧力は読まない
func ReadDeviceState(file *os.File, hasPressure bool) (DeviceState, error) {
	var state DeviceState

	slot, err := readAbsInfo(file, evdev.ABS_MT_SLOT)
	if err != nil {
		return state, fmt.Errorf("現在のスロットを取得できませんでした: %w", err)
	}
	state.Slot = slot.Value

	codes := []uint16{evdev.ABS_MT_TRACKING_ID, evdev.ABS_MT_POSITION_X, evdev.ABS_MT_POSITION_Y}
	if hasPressure {
		codes = append(codes, evdev.ABS_MT_PRESSURE)
	}
	for _, code := range codes {
		values, err := readMTSlots(file, code)
		if err != nil {
			return state, fmt.Errorf("スロットの値 (0x%02x) を取得できませんでした: %w", code, err)
		}
		for i, v := range values {
			s := &state.Slots[i]
			switch code {
			case evdev.ABS_MT_TRACKING_ID:
				s.TrackingID = v
			case evdev.ABS_MT_POSITION_X:
				s.X = v
			case evdev.ABS_MT_POSITION_Y:
				s.Y = v
			case evdev.ABS_MT_PRESSURE:
				s.Pressure = v
			}
		}
	}

	if state.Button, err = readButton(file); err != nil {
		return state, fmt.Errorf("ボタンの状態を取得できませんでした: %w", err)
	}
	return state, nil
}
