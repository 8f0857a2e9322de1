package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/char5742/clickpad-gestures/internal/config"
	"github.com/char5742/clickpad-gestures/internal/driver"
	"github.com/char5742/clickpad-gestures/internal/gesture"
	"github.com/char5742/clickpad-gestures/internal/ingest"
	"github.com/char5742/clickpad-gestures/internal/output"
)

// ErrAlreadyRunning はサービスが既に起動していることを表す
var ErrAlreadyRunning = errors.New("サービスは既に実行中です")

// ErrNotRunning はサービスが起動していないことを表す
var ErrNotRunning = errors.New("サービスは実行されていません")

// Service はAPIから操作するジェスチャー認識サービス
type Service interface {
	Start() error
	Stop() error
	IsRunning() bool
	UpdateConfig(cfg *config.Config)
}

// ServiceFactory は設定からサービスを作成する
type ServiceFactory func(cfg *config.Config) Service

// GestureService はタッチパッド1台のドライバーを管理する構造体
type GestureService struct {
	cfg         *config.Config
	dryRun      bool
	statusMutex sync.RWMutex
	running     bool
	driver      *driver.Driver
	cancel      context.CancelFunc
	done        chan struct{}
	err         error
}

// NewGestureService は新しいジェスチャー認識サービスを作成する
// dryRun が真なら仮想ポインタを作らず出力をログに書く
func NewGestureService(cfg *config.Config, dryRun bool) *GestureService {
	return &GestureService{cfg: cfg, dryRun: dryRun}
}

// Start は入力デバイスと出力先を開き、ドライバーを起動する
func (s *GestureService) Start() error {
	s.statusMutex.Lock()
	defer s.statusMutex.Unlock()

	if s.running {
		return ErrAlreadyRunning
	}

	path, err := ingest.FindTouchpad(s.cfg.Device.Path)
	if err != nil {
		return err
	}
	reader, err := ingest.Open(path, s.cfg.Device.Grab)
	if err != nil {
		return err
	}

	emit, err := s.openEmitter()
	if err != nil {
		reader.Close()
		return err
	}

	s.driver = driver.New(reader, reader.Axes(), emit, s.cfg)
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	s.err = nil
	s.running = true

	go s.run(ctx, s.driver, emit, s.done)

	log.Printf("ジェスチャー認識サービスを開始しました: %s", reader.Name())
	return nil
}

func (s *GestureService) openEmitter() (gesture.Emitter, error) {
	if s.dryRun {
		return output.LogEmitter{}, nil
	}
	pointer, err := output.NewPointer(s.cfg.Device.UinputPath, s.cfg.Device.OutputName, output.Settings{})
	if err != nil {
		return nil, fmt.Errorf("仮想ポインタの作成に失敗しました: %w", err)
	}
	return pointer, nil
}

func (s *GestureService) run(ctx context.Context, d *driver.Driver, emit gesture.Emitter, done chan struct{}) {
	err := d.Run(ctx)
	if err != nil {
		log.Printf("ジェスチャー認識が異常終了しました: %v", err)
	}
	if c, ok := emit.(io.Closer); ok {
		if cerr := c.Close(); cerr != nil {
			log.Printf("仮想ポインタのクローズに失敗しました: %v", cerr)
		}
	}

	s.statusMutex.Lock()
	s.running = false
	s.driver = nil
	s.err = err
	s.statusMutex.Unlock()

	close(done)
	log.Println("ジェスチャー認識サービスを停止しました")
}

// Stop はドライバーを止め、終了するまで待つ
func (s *GestureService) Stop() error {
	s.statusMutex.RLock()
	running, cancel, done := s.running, s.cancel, s.done
	s.statusMutex.RUnlock()

	if !running {
		return ErrNotRunning
	}
	cancel()
	<-done
	return nil
}

// Done はドライバーの終了時に閉じられるチャネルを返す。未起動なら nil
func (s *GestureService) Done() <-chan struct{} {
	s.statusMutex.RLock()
	defer s.statusMutex.RUnlock()
	return s.done
}

// Err は直近の実行の終了理由を返す
func (s *GestureService) Err() error {
	s.statusMutex.RLock()
	defer s.statusMutex.RUnlock()
	return s.err
}

// UpdateConfig は設定を更新する。実行中ならドライバーへ転送する
func (s *GestureService) UpdateConfig(cfg *config.Config) {
	s.statusMutex.Lock()
	defer s.statusMutex.Unlock()

	s.cfg = cfg
	if s.driver != nil {
		s.driver.UpdateConfig(cfg)
	}
}

// IsRunning はサービスが実行中かどうかを返す
func (s *GestureService) IsRunning() bool {
	s.statusMutex.RLock()
	defer s.statusMutex.RUnlock()
	return s.running
}
