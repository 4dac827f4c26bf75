package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/unclebandit/lifecycle-messaging/internal/model"
)

type EventRecorder interface {
	Record(ctx context.Context, tenantID int, eventType model.EventType, payload any)
}

// EventHandler accepts activity events from product handlers.
type EventHandler struct {
	Activity EventRecorder
}

func (h *EventHandler) Register(r chi.Router) {
	r.Post("/events", h.RecordEvent)
}

// RecordEvent validates the event and hands it to the activity log. Acceptance does not
// mean the event was stored: recording is fire-and-forget.
func (h *EventHandler) RecordEvent(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		TenantID  int             `json:"tenant_id"`
		EventType model.EventType `json:"event_type"`
		Payload   json.RawMessage `json:"payload,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if payload.TenantID <= 0 {
		http.Error(w, "tenant_id is required", http.StatusBadRequest)
		return
	}
	if !payload.EventType.Valid() {
		http.Error(w, "unknown event_type "+string(payload.EventType), http.StatusBadRequest)
		return
	}

	var data any
	if len(payload.Payload) > 0 && string(payload.Payload) != "null" {
		data = payload.Payload
	}
	h.Activity.Record(r.Context(), payload.TenantID, payload.EventType, data)

	w.WriteHeader(http.StatusAccepted)
}
