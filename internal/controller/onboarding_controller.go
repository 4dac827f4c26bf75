package controller

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/unclebandit/lifecycle-messaging/internal/model"
)

type OnboardingSender interface {
	SendDay(ctx context.Context, tenantID, day int, force bool) (*model.OnboardingSendRecord, error)
	History(ctx context.Context, tenantID int) ([]model.OnboardingSendRecord, error)
}

type OnboardingController struct {
	Service OnboardingSender
}

func (c *OnboardingController) Register(r chi.Router) {
	r.Get("/admin/tenants/{id}/onboarding", c.History)
	r.Post("/admin/tenants/{id}/onboarding/{day}/send", c.SendDay)
}

// SendDay resends one onboarding day. The ledger check is bypassed only with ?force=true.
func (c *OnboardingController) SendDay(w http.ResponseWriter, r *http.Request) {
	tenantID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid tenant id", http.StatusBadRequest)
		return
	}
	day, err := strconv.Atoi(chi.URLParam(r, "day"))
	if err != nil {
		http.Error(w, "invalid day", http.StatusBadRequest)
		return
	}
	force, _ := strconv.ParseBool(r.URL.Query().Get("force"))

	rec, err := c.Service.SendDay(r.Context(), tenantID, day, force)
	if err != nil {
		writeError(w, err)
		return
	}
	status := http.StatusOK
	if rec.Status == model.SendStatusFailed {
		status = http.StatusBadGateway
	}
	writeJSON(w, status, rec)
}

func (c *OnboardingController) History(w http.ResponseWriter, r *http.Request) {
	tenantID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid tenant id", http.StatusBadRequest)
		return
	}
	records, err := c.Service.History(r.Context(), tenantID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": records})
}
