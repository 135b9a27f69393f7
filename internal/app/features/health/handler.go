package health

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/projectflow/internal/app/store"
	"github.com/dalemusser/projectflow/internal/app/system/httpjson"
	"github.com/dalemusser/projectflow/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Handler holds dependencies needed for health checks.
type Handler struct {
	Pinger  store.Pinger
	Backend string
	Log     *zap.Logger
	now     func() time.Time
}

// NewHandler constructs a health Handler for st.
func NewHandler(st store.Store, logger *zap.Logger) *Handler {
	return &Handler{
		Pinger:  st.Pinger,
		Backend: st.Backend,
		Log:     logger,
		now:     time.Now,
	}
}

// healthResponse is the JSON structure for the health check response.
type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Store     string    `json:"store"`
	Database  string    `json:"database"`
	Error     string    `json:"error,omitempty"`
}

// Serve handles GET /api/health.
//
// The process is up whenever this answers, so it is always 200:
//
//	{ "status":"OK", "timestamp":"…", "store":"mongo", "database":"connected" }
//
// A failed store ping only changes "database" to "disconnected" and adds
// "error".
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	resp := healthResponse{
		Status:    "OK",
		Timestamp: h.now().UTC(),
		Store:     h.Backend,
		Database:  "connected",
	}

	if h.Pinger != nil {
		if err := h.Pinger.Ping(ctx); err != nil {
			h.Log.Warn("health-check: store ping failed", zap.String("store", h.Backend), zap.Error(err))
			resp.Database = "disconnected"
			resp.Error = err.Error()
		}
	}

	httpjson.OK(w, resp)
}
