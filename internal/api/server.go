package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/char5742/clickpad-gestures/internal/config"
)

// Server はAPIサーバーを表す構造体
type Server struct {
	server     *http.Server
	cfg        *config.Config
	configPath string
	newService ServiceFactory
	service    Service
	mutex      sync.RWMutex
	port       int
}

// NewServer は新しいAPIサーバーを作成する
// configPath は保存先の既定値。newService はサービス起動時に呼ばれる
func NewServer(cfg *config.Config, configPath string, port int, newService ServiceFactory) *Server {
	return &Server{
		cfg:        cfg,
		configPath: configPath,
		newService: newService,
		port:       port,
	}
}

// Handler はAPIのルーティングを返す
func (s *Server) Handler() http.Handler {
	router := http.NewServeMux()
	s.setupRoutes(router)
	return router
}

// Start はAPIサーバーを開始する
func (s *Server) Start() error {
	server := &http.Server{
		Addr:    fmt.Sprintf("localhost:%d", s.port),
		Handler: s.Handler(),
	}
	s.mutex.Lock()
	s.server = server
	s.mutex.Unlock()

	log.Printf("APIサーバーを開始します: http://localhost:%d", s.port)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop はAPIサーバーと実行中のサービスを停止する
func (s *Server) Stop(ctx context.Context) error {
	if svc := s.currentService(); svc != nil && svc.IsRunning() {
		if err := svc.Stop(); err != nil {
			log.Printf("サービスの停止に失敗しました: %v", err)
		}
	}
	s.mutex.RLock()
	server := s.server
	s.mutex.RUnlock()
	if server != nil {
		log.Println("APIサーバーを停止します...")
		return server.Shutdown(ctx)
	}
	return nil
}

// GetConfig は現在の設定を返す。返した値は変更しないこと
func (s *Server) GetConfig() *config.Config {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.cfg
}

// UpdateConfig は設定を更新し、サービスへ伝える
func (s *Server) UpdateConfig(cfg *config.Config) {
	s.modifyConfig(func(*config.Config) (*config.Config, error) { return cfg, nil })
}

// modifyConfig は現在の設定から次の設定を作り、ロックを保持したまま置き換える。
// modify がエラーを返したときは何も変えない
func (s *Server) modifyConfig(modify func(cur *config.Config) (*config.Config, error)) (*config.Config, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	next, err := modify(s.cfg)
	if err != nil {
		return nil, err
	}
	s.cfg = next
	if s.service != nil {
		s.service.UpdateConfig(next)
	}
	return next, nil
}

func (s *Server) currentService() Service {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.service
}

// ensureService はサービスがなければ現在の設定で作成する
func (s *Server) ensureService() Service {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.service == nil {
		s.service = s.newService(s.cfg)
	}
	return s.service
}

// writeJSON はJSONレスポンスを書き込む
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Printf("JSONエンコードエラー: %v", err)
		}
	}
}

// writeError はエラーレスポンスを書き込む
func writeError(w http.ResponseWriter, status int, message string) {
	response := map[string]string{"error": message}
	writeJSON(w, status, response)
}
