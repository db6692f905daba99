package handlers

import (
	"encoding/json"
	"net/http"
)

// CodeResponse carries the current box code.
type CodeResponse struct {
	Success     bool   `json:"success"`
	CurrentCode string `json:"current_code"`
}

// SetCodeRequest is the admin body for changing the code.
type SetCodeRequest struct {
	CurrentCode string `json:"current_code"`
}

// GetCurrentCode returns the rotating box code. Routing guards this with
// RequireApproved, so only approved or admin sessions reach it.
func (h *Handler) GetCurrentCode(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.Box.Load()
	if err != nil {
		h.Log.Error().Err(err).Msg("failed to load box config")
		writeMessage(w, http.StatusInternalServerError, false, "Failed to load the current code")
		return
	}
	writeJSON(w, http.StatusOK, CodeResponse{Success: true, CurrentCode: cfg.CurrentCode})
}

// SetCode stores a new box code. Whitespace is trimmed; beyond that any
// string is accepted as given. Admin only.
func (h *Handler) SetCode(w http.ResponseWriter, r *http.Request) {
	var req SetCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, false, "Invalid request body")
		return
	}

	if err := h.Box.SetCode(req.CurrentCode); err != nil {
		h.Log.Error().Err(err).Msg("failed to save box code")
		writeMessage(w, http.StatusInternalServerError, false, "Failed to save the code")
		return
	}
	writeMessage(w, http.StatusOK, true, "Code updated")
}
