// internal/app/features/notifications/handler.go
package notifications

import (
	"net/http"

	"github.com/dalemusser/projectflow/internal/app/service"
	"github.com/dalemusser/projectflow/internal/app/system/httpjson"
	"github.com/dalemusser/projectflow/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Handler struct {
	Svc *service.Service
	Log *zap.Logger
}

func NewHandler(svc *service.Service, logger *zap.Logger) *Handler {
	return &Handler{Svc: svc, Log: logger}
}

// List handles GET /api/notifications/{userId}, newest first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list notifications")
	defer cancel()

	ns, err := h.Svc.ListNotifications(ctx, chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, r, h.Log, err)
		return
	}
	httpjson.OK(w, ns)
}

// MarkRead handles PUT /api/notifications/{id}/read. Repeating it is
// harmless.
func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "mark notification read")
	defer cancel()

	n, err := h.Svc.MarkNotificationRead(ctx, chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, r, h.Log, err)
		return
	}
	httpjson.OK(w, n)
}
