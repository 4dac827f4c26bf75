package controller

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/unclebandit/lifecycle-messaging/internal/model"
	"github.com/unclebandit/lifecycle-messaging/internal/service"
)

type RetentionRunner interface {
	Run(ctx context.Context) (service.RunResult, error)
	Stats(ctx context.Context) (*model.RetentionStats, error)
}

type Triggerer interface {
	Trigger() bool
}

type RetentionController struct {
	Service RetentionRunner
	Worker  Triggerer
}

func (c *RetentionController) Register(r chi.Router) {
	r.Post("/admin/retention/run", c.RunNow)
	r.Get("/admin/retention/stats", c.Stats)
}

// RunNow hands the run to the retention worker, or runs it inline with ?wait=true.
func (c *RetentionController) RunNow(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("wait") == "true" {
		result, err := c.Service.Run(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
		return
	}

	status := "queued"
	if !c.Worker.Trigger() {
		status = "already_queued"
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": status})
}

func (c *RetentionController) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := c.Service.Stats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
