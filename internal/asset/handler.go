// Package asset serves a drawing's image: upload to import it, download to
// export the composite view.
package asset

import (
	"encoding/json"
	"errors"
	"image"
	"log/slog"
	"net/http"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gorilla/mux"

	"github.com/AndrewDAP/PolyDessin-sub000/internal/editor"
	"github.com/AndrewDAP/PolyDessin-sub000/internal/session"
)

const maxUploadSize = 10 << 20 // 10MB

// UploadResponse is returned from the upload endpoint.
type UploadResponse struct {
	DrawingID string `json:"drawingId"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Name      string `json:"name"`
}

// Handler serves image import and export for the hub's drawings.
type Handler struct {
	hub *session.Hub
}

func NewHandler(hub *session.Hub) *Handler {
	return &Handler{hub: hub}
}

// Upload handles POST /drawings/{drawingId}/image (multipart form with "file"
// field). The image replaces the drawing as an undoable edit.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	drawingID := mux.Vars(r)["drawingId"]

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, "file too large (max 10MB)", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/png") && !strings.HasPrefix(contentType, "image/jpeg") {
		http.Error(w, "only PNG and JPEG images are supported", http.StatusBadRequest)
		return
	}

	img, err := imaging.Decode(file, imaging.AutoOrientation(true))
	if err != nil {
		http.Error(w, "invalid image: "+err.Error(), http.StatusBadRequest)
		return
	}

	room := h.hub.Open(drawingID)
	err = room.Do(r.Context(), func(e *editor.Engine) error {
		return e.LoadImage(img)
	})
	switch {
	case errors.Is(err, editor.ErrLocked):
		http.Error(w, "the drawing is busy, try again", http.StatusConflict)
		return
	case err != nil:
		slog.Error("load image", "error", err, "drawing", drawingID)
		http.Error(w, "failed to load image", http.StatusInternalServerError)
		return
	}

	bounds := img.Bounds()
	resp := UploadResponse{
		DrawingID: drawingID,
		Width:     bounds.Dx(),
		Height:    bounds.Dy(),
		Name:      header.Filename,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}

// Download handles GET /drawings/{drawingId}/image with a PNG of the drawing
// as currently shown, lifted selection included.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	drawingID := mux.Vars(r)["drawingId"]
	room, ok := h.hub.Lookup(drawingID)
	if !ok {
		http.Error(w, "drawing not found", http.StatusNotFound)
		return
	}

	var img image.Image
	err := room.Do(r.Context(), func(e *editor.Engine) error {
		img = e.Composite()
		return nil
	})
	if err != nil {
		http.Error(w, "drawing not available", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	if err := imaging.Encode(w, img, imaging.PNG); err != nil {
		slog.Error("encode png", "error", err, "drawing", drawingID)
	}
}
