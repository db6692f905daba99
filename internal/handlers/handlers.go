package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/lucahenggart/sportbox-backend/internal/services"
	"github.com/lucahenggart/sportbox-backend/internal/storage"
)

// Handler bundles the stores and services the HTTP layer works against.
type Handler struct {
	Auth     *services.AuthService
	Sessions *services.SessionManager
	Users    *storage.UserStore
	Box      *storage.ConfigStore
	Reports  *storage.ReportLog
	Log      zerolog.Logger
}

func New(auth *services.AuthService, sessions *services.SessionManager, users *storage.UserStore, box *storage.ConfigStore, reports *storage.ReportLog, log zerolog.Logger) *Handler {
	return &Handler{
		Auth:     auth,
		Sessions: sessions,
		Users:    users,
		Box:      box,
		Reports:  reports,
		Log:      log.With().Str("component", "handlers").Logger(),
	}
}

// MessageResponse is the generic success/failure envelope.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, success bool, message string) {
	writeJSON(w, status, MessageResponse{Success: success, Message: message})
}
