package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/AndrewDAP/PolyDessin-sub000/internal/typeid"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type tokenRequest struct {
	DisplayName string `json:"displayName"`
}

// Create handles POST /drawings: it starts a new drawing and returns a token
// for it.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	h.issue(w, r, typeid.NewDrawingID(), http.StatusCreated)
}

// Join handles POST /drawings/{drawingId}/tokens.
func (h *Handler) Join(w http.ResponseWriter, r *http.Request) {
	h.issue(w, r, mux.Vars(r)["drawingId"], http.StatusOK)
}

func (h *Handler) issue(w http.ResponseWriter, r *http.Request, drawingID string, status int) {
	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	grant, err := h.service.IssueToken(drawingID, req.DisplayName)
	if err != nil {
		if errors.Is(err, ErrInvalidName) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "displayName is required"})
			return
		}
		slog.Debug("token refused", "drawing", drawingID, "error", err)
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown drawing"})
		return
	}

	writeJSON(w, status, grant)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
