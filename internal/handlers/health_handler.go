package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/imanmolsaini/Campus-Connect-sub000/pkg/apperrors"
	"github.com/imanmolsaini/Campus-Connect-sub000/pkg/response"
	"github.com/sirupsen/logrus"
)

type HealthHandler struct {
	Store HealthChecker
}

func NewHealthHandler(store HealthChecker) *HealthHandler {
	return &HealthHandler{Store: store}
}

// HealthHandler pings the database.
func (h *HealthHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.Store.HealthCheck(ctx); err != nil {
		logrus.WithError(err).Error("Health check failed")
		response.JSON(w, http.StatusServiceUnavailable, response.Envelope{
			Success: false,
			Message: "database unreachable",
			Error:   string(apperrors.CodeInternal),
		})
		return
	}
	response.OK(w, "ok", map[string]string{"database": "up"})
}
