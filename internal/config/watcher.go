package config

import (
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDebounce は連続したファイルイベントをまとめる時間
const reloadDebounce = 500 * time.Millisecond

// ReloadCallback は設定ファイルの再読み込みに成功した時に呼び出される
type ReloadCallback func(cfg *Config)

// Watcher は設定ファイルの変更を監視して再読み込みする
type Watcher struct {
	path     string
	watcher  *fsnotify.Watcher
	onReload ReloadCallback
	stopChan chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewWatcher は設定ファイルの監視を作成する
// エディタの置き換え保存にも追従するためディレクトリごと監視する
func NewWatcher(path string, onReload ReloadCallback) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, err
	}
	return &Watcher{
		path:     abs,
		watcher:  w,
		onReload: onReload,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}, nil
}

// Start は監視ゴルーチンを起動する
func (cw *Watcher) Start() {
	log.Printf("設定ファイルの監視を開始: %s", cw.path)
	go cw.watchEvents()
}

// Stop は監視を停止する
func (cw *Watcher) Stop() {
	cw.stopOnce.Do(func() {
		close(cw.stopChan)
		cw.watcher.Close()
		<-cw.done
		log.Println("設定ファイルの監視を停止しました")
	})
}

func (cw *Watcher) watchEvents() {
	defer close(cw.done)

	timer := time.NewTimer(reloadDebounce)
	timer.Stop() // 初期状態では停止
	pending := false

	for {
		select {
		case <-cw.stopChan:
			timer.Stop()
			return

		case <-timer.C:
			if pending {
				pending = false
				cw.reload()
			}

		case event, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != cw.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			// タイマーをリセットして複数のイベントをまとめる
			if !pending {
				pending = true
				timer.Reset(reloadDebounce)
			}

		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("設定ファイル監視エラー: %v", err)
		}
	}
}

func (cw *Watcher) reload() {
	cfg, err := readConfig(cw.path)
	if err != nil {
		// 不正な設定は無視して現在の設定を維持する
		log.Printf("設定ファイルの再読み込みに失敗しました: %v", err)
		return
	}
	log.Printf("設定ファイルを再読み込みしました: %s", cw.path)
	if cw.onReload != nil {
		cw.onReload(cfg)
	}
}
