package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/char5742/clickpad-gestures/internal/config"
	"github.com/char5742/clickpad-gestures/internal/ingest"
)

// ルートの設定
func (s *Server) setupRoutes(router *http.ServeMux) {
	// 設定関連のエンドポイント
	router.HandleFunc("GET /api/config", s.handleGetConfig)
	router.HandleFunc("PUT /api/config", s.handleUpdateConfig)
	router.HandleFunc("POST /api/config/save", s.handleSaveConfig)

	// プロパティ関連のエンドポイント
	router.HandleFunc("GET /api/properties", s.handleGetProperties)
	router.HandleFunc("GET /api/properties/{name}", s.handleGetProperty)
	router.HandleFunc("PUT /api/properties/{name}", s.handleSetProperty)

	// デバイス関連のエンドポイント
	router.HandleFunc("GET /api/devices", s.handleGetDevices)

	// サービス関連のエンドポイント
	router.HandleFunc("POST /api/service/start", s.handleStartService)
	router.HandleFunc("POST /api/service/stop", s.handleStopService)
	router.HandleFunc("GET /api/service/status", s.handleServiceStatus)

	// ヘルスチェック用エンドポイント
	router.HandleFunc("GET /api/health", s.handleHealthCheck)
}

// 設定取得ハンドラ
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.GetConfig())
}

// 設定更新ハンドラ。省略した項目は現在の値を引き継ぐ
func (s *Server) handleUpdateConfig(w http.ResponseWriter, r *http.Request) {
	var body json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "設定の解析に失敗しました")
		return
	}

	_, err := s.modifyConfig(func(cur *config.Config) (*config.Config, error) {
		next := cur.Clone()
		if err := json.Unmarshal(body, next); err != nil {
			return nil, fmt.Errorf("設定の解析に失敗しました: %w", err)
		}
		if err := next.Validate(); err != nil {
			return nil, err
		}
		return next, nil
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// 設定保存ハンドラ
func (s *Server) handleSaveConfig(w http.ResponseWriter, r *http.Request) {
	var saveRequest struct {
		Path string `json:"path"`
	}

	// 本文は省略できる
	if err := json.NewDecoder(r.Body).Decode(&saveRequest); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "リクエストの解析に失敗しました")
		return
	}

	configPath := saveRequest.Path
	if configPath == "" {
		configPath = s.configPath
	}
	if configPath == "" {
		configPath = config.DefaultConfigPath()
	}

	if err := config.SaveConfig(configPath, s.GetConfig()); err != nil {
		writeError(w, http.StatusInternalServerError, "設定の保存に失敗しました: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status": "success",
		"path":   configPath,
	})
}

// プロパティ一覧取得ハンドラ
func (s *Server) handleGetProperties(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.GetConfig().Properties())
}

// プロパティ取得ハンドラ
func (s *Server) handleGetProperty(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	value, err := s.GetConfig().Property(name)
	if err != nil {
		writePropertyError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, config.Property{Name: name, Value: value})
}

// プロパティ変更ハンドラ
func (s *Server) handleSetProperty(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Value string `json:"value"`
	}

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeError(w, http.StatusBadRequest, "リクエストの解析に失敗しました")
		return
	}

	name := r.PathValue("name")
	next, err := s.modifyConfig(func(cur *config.Config) (*config.Config, error) {
		return cur.SetProperty(name, request.Value)
	})
	if err != nil {
		writePropertyError(w, err)
		return
	}

	value, _ := next.Property(name)
	writeJSON(w, http.StatusOK, config.Property{Name: name, Value: value})
}

func writePropertyError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, config.ErrUnknownProperty):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, config.ErrInvalidValue):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// デバイス一覧取得ハンドラ
func (s *Server) handleGetDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := ingest.ScanTouchpads()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "デバイス一覧の取得に失敗しました: "+err.Error())
		return
	}
	if devices == nil {
		devices = []ingest.Device{}
	}

	writeJSON(w, http.StatusOK, devices)
}

// サービス起動ハンドラ
func (s *Server) handleStartService(w http.ResponseWriter, r *http.Request) {
	svc := s.ensureService()

	if svc.IsRunning() {
		writeJSON(w, http.StatusOK, map[string]string{"status": "already_running"})
		return
	}

	if err := svc.Start(); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("サービスの起動に失敗しました: %v", err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "started"})
}

// サービス停止ハンドラ
func (s *Server) handleStopService(w http.ResponseWriter, r *http.Request) {
	svc := s.currentService()
	if svc == nil || !svc.IsRunning() {
		writeJSON(w, http.StatusOK, map[string]string{"status": "not_running"})
		return
	}

	if err := svc.Stop(); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("サービスの停止に失敗しました: %v", err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "stopped"})
}

// サービス状態取得ハンドラ
func (s *Server) handleServiceStatus(w http.ResponseWriter, r *http.Request) {
	status := "stopped"
	if svc := s.currentService(); svc != nil && svc.IsRunning() {
		status = "running"
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": status})
}

// ヘルスチェックハンドラ
func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
