package server

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/shouni/image-studio-kit/pkg/settings"
)

const msgDialogClosed = "设置窗口未打开。"

type settingsFieldsRequest struct {
	APIKey  *string `json:"apiKey"`
	BaseURL *string `json:"baseUrl"`
	Model   *string `json:"model"`
}

func (s *Server) handleSettingsView(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.dialog.Snapshot())
}

func (s *Server) handleSettingsOpen(w http.ResponseWriter, r *http.Request) {
	stored, err := s.store.Load()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	_, cur := settings.Resolve(stored, s.defaults)
	s.dialog.Open(cur)
	writeJSON(w, http.StatusOK, s.dialog.Snapshot())
}

func (s *Server) handleSettingsFields(w http.ResponseWriter, r *http.Request) {
	var req settingsFieldsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	applied := true
	if req.APIKey != nil {
		applied = s.dialog.SetAPIKey(*req.APIKey) && applied
	}
	if req.BaseURL != nil {
		applied = s.dialog.SetBaseURL(*req.BaseURL) && applied
	}
	if req.Model != nil {
		applied = s.dialog.SelectModel(*req.Model) && applied
	}
	if !applied {
		writeJSON(w, http.StatusConflict, errorBody{Error: errorDetail{Kind: "conflict", Message: msgDialogClosed}})
		return
	}
	writeJSON(w, http.StatusOK, s.dialog.Snapshot())
}

// handleSettingsRefresh は取得失敗もダイアログ内の表示として返します。
func (s *Server) handleSettingsRefresh(w http.ResponseWriter, r *http.Request) {
	if err := s.dialog.RefreshModels(r.Context()); err != nil {
		s.logger.Debug("モデル一覧の更新に失敗しました", zap.Error(err))
	}
	writeJSON(w, http.StatusOK, s.dialog.Snapshot())
}

func (s *Server) handleSettingsSave(w http.ResponseWriter, r *http.Request) {
	if err := s.dialog.Save(); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.dialog.Snapshot())
}

func (s *Server) handleSettingsCancel(w http.ResponseWriter, r *http.Request) {
	s.dialog.Cancel()
	writeJSON(w, http.StatusOK, s.dialog.Snapshot())
}

func (s *Server) handleSettingsClear(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Clear(); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
