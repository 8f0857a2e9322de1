package ingest

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	evdev "github.com/gvalkov/golang-evdev"

	"github.com/char5742/clickpad-gestures/internal/gesture"
)

// ErrNoTouchpad はマルチタッチのデバイスが見つからなかったことを表す
var ErrNoTouchpad = errors.New("タッチパッドが見つかりませんでした")

// Device は検出した入力デバイス
type Device struct {
	Name string       `json:"name"`
	Path string       `json:"path"`
	Axes gesture.Axes `json:"axes"`
}

// probeFunc はデバイスノードを調べ、名前と座標範囲を返す
type probeFunc func(path string) (string, gesture.Axes, error)

// ScanTouchpads は /dev/input/event* からマルチタッチの座標軸を持つデバイスを列挙する
func ScanTouchpads() ([]Device, error) {
	nodes, err := filepath.Glob("/dev/input/event*")
	if err != nil {
		return nil, err
	}
	return scanTouchpads(nodes, probeNode), nil
}

func scanTouchpads(nodes []string, probe probeFunc) []Device {
	var devices []Device
	for _, node := range nodes {
		name, axes, err := probe(node)
		if err != nil {
			continue
		}
		// 座標範囲を持たないものはタッチパッドではない
		if axes.MaxX <= axes.MinX || axes.MaxY <= axes.MinY {
			continue
		}
		devices = append(devices, Device{Name: name, Path: node, Axes: axes})
	}
	sort.Slice(devices, func(i, j int) bool { return devices[i].Path < devices[j].Path })
	return devices
}

// FindTouchpad は path が空なら最初に見つかったタッチパッドのパスを返す
func FindTouchpad(path string) (string, error) {
	if path != "" {
		return path, nil
	}
	devices, err := ScanTouchpads()
	if err != nil {
		return "", fmt.Errorf("デバイス一覧の取得に失敗しました: %w", err)
	}
	if len(devices) == 0 {
		return "", ErrNoTouchpad
	}
	return devices[0].Path, nil
}

func probeNode(path string) (string, gesture.Axes, error) {
	dev, err := evdev.Open(path)
	if err != nil {
		return "", gesture.Axes{}, err
	}
	defer dev.File.Close()

	axes, err := ProbeAxes(dev.File)
	if err != nil {
		return "", gesture.Axes{}, err
	}
	return dev.Name, axes, nil
}
