package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/lucahenggart/sportbox-backend/internal/middleware"
	"github.com/lucahenggart/sportbox-backend/internal/models"
	"github.com/lucahenggart/sportbox-backend/internal/storage"
)

// DefectRequest is the defect/loss report form body.
type DefectRequest struct {
	Name         string `json:"name"`
	Kontakt      string `json:"kontakt"`
	Datum        string `json:"datum"`
	Art          string `json:"art"`
	Material     string `json:"material"`
	Anzahl       int    `json:"anzahl"`
	Beschreibung string `json:"beschreibung"`
}

// WishRequest is the material wish form body.
type WishRequest struct {
	Name        string `json:"name"`
	Klasse      string `json:"klasse"`
	Wunsch      string `json:"wunsch"`
	Begruendung string `json:"begruendung"`
}

// DefectListResponse is the admin listing of defect/loss reports.
type DefectListResponse struct {
	Success bool                  `json:"success"`
	Message string                `json:"message,omitempty"`
	Defects []models.DefectReport `json:"defects"`
	Count   int                   `json:"count"`
}

// WishListResponse is the admin listing of material wishes.
type WishListResponse struct {
	Success bool                `json:"success"`
	Message string              `json:"message,omitempty"`
	Wishes  []models.WishReport `json:"wishes"`
	Count   int                 `json:"count"`
}

// SubmitDefect appends a defect/loss report. No login is required; the
// acting username column stays empty for anonymous submitters.
func (h *Handler) SubmitDefect(w http.ResponseWriter, r *http.Request) {
	var req DefectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, false, "Invalid request body")
		return
	}

	record := models.DefectReport{
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		Name:         req.Name,
		Kontakt:      req.Kontakt,
		Datum:        req.Datum,
		Art:          req.Art,
		Material:     req.Material,
		Anzahl:       req.Anzahl,
		Beschreibung: req.Beschreibung,
		User:         middleware.SessionFromContext(r.Context()).Username,
	}
	if err := record.Validate(); err != nil {
		writeMessage(w, http.StatusBadRequest, false, err.Error())
		return
	}

	if err := h.Reports.AppendDefect(record); err != nil {
		h.Log.Error().Err(err).Msg("failed to append defect report")
		writeMessage(w, http.StatusInternalServerError, false, "Failed to save the report")
		return
	}
	writeMessage(w, http.StatusCreated, true, "Thanks! Your report has been saved.")
}

// SubmitWish appends a material wish. Open to anonymous submitters as well.
func (h *Handler) SubmitWish(w http.ResponseWriter, r *http.Request) {
	var req WishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, false, "Invalid request body")
		return
	}

	record := models.WishReport{
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		Name:        req.Name,
		Klasse:      req.Klasse,
		Wunsch:      req.Wunsch,
		Begruendung: req.Begruendung,
		User:        middleware.SessionFromContext(r.Context()).Username,
	}

	if err := h.Reports.AppendWish(record); err != nil {
		h.Log.Error().Err(err).Msg("failed to append wish")
		writeMessage(w, http.StatusInternalServerError, false, "Failed to save the wish")
		return
	}
	writeMessage(w, http.StatusCreated, true, "Thanks for your suggestion! It has been saved.")
}

// ListDefects returns all defect/loss reports in insertion order. Admin
// only. A corrupt log degrades to an explicit error payload instead of
// failing the admin view.
func (h *Handler) ListDefects(w http.ResponseWriter, r *http.Request) {
	defects, err := h.Reports.ListDefects()
	if err != nil {
		if errors.Is(err, storage.ErrMalformedLog) {
			writeJSON(w, http.StatusOK, DefectListResponse{
				Success: false,
				Message: "The defect log could not be read",
				Defects: []models.DefectReport{},
			})
			return
		}
		h.Log.Error().Err(err).Msg("failed to read defect log")
		writeMessage(w, http.StatusInternalServerError, false, "Failed to read the defect log")
		return
	}
	writeJSON(w, http.StatusOK, DefectListResponse{Success: true, Defects: defects, Count: len(defects)})
}

// ListWishes returns all material wishes in insertion order. Admin only.
func (h *Handler) ListWishes(w http.ResponseWriter, r *http.Request) {
	wishes, err := h.Reports.ListWishes()
	if err != nil {
		if errors.Is(err, storage.ErrMalformedLog) {
			writeJSON(w, http.StatusOK, WishListResponse{
				Success: false,
				Message: "The wish log could not be read",
				Wishes:  []models.WishReport{},
			})
			return
		}
		h.Log.Error().Err(err).Msg("failed to read wish log")
		writeMessage(w, http.StatusInternalServerError, false, "Failed to read the wish log")
		return
	}
	writeJSON(w, http.StatusOK, WishListResponse{Success: true, Wishes: wishes, Count: len(wishes)})
}

// ListMaterials returns the fixed material-category catalog the defect
// form offers.
func (h *Handler) ListMaterials(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"materials": models.MaterialCatalog,
	})
}
