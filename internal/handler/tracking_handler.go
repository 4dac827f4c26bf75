package handler

import (
	"context"
	"encoding/base64"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Tracker interface {
	RecordOpen(ctx context.Context, trackingID string) (bool, error)
	RecordClick(ctx context.Context, trackingID, target string) (string, error)
}

// transparent 1x1 GIF
var pixel, _ = base64.StdEncoding.DecodeString("R0lGODlhAQABAIAAAAAAAP///yH5BAEAAAAALAAAAAABAAEAAAIBRAA7")

// TrackingHandler serves the open pixel and click redirects embedded in retention emails.
// Tracking failures are logged; the reader always gets the pixel or a redirect.
type TrackingHandler struct {
	Tracker Tracker
	Logger  *zap.Logger
}

func (h *TrackingHandler) Register(r chi.Router) {
	r.Get("/t/o/{token}", h.Open)
	r.Get("/t/c/{token}", h.Click)
}

func (h *TrackingHandler) Open(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if _, err := h.Tracker.RecordOpen(r.Context(), token); err != nil {
		h.Logger.Warn("failed to record open", zap.String("tracking_id", token), zap.Error(err))
	}

	w.Header().Set("Content-Type", "image/gif")
	w.Header().Set("Cache-Control", "no-store, max-age=0")
	w.Write(pixel)
}

func (h *TrackingHandler) Click(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	target, err := h.Tracker.RecordClick(r.Context(), token, r.URL.Query().Get("u"))
	if err != nil {
		h.Logger.Warn("failed to record click", zap.String("tracking_id", token), zap.Error(err))
	}
	http.Redirect(w, r, target, http.StatusFound)
}
