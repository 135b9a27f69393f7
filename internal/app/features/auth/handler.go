// internal/app/features/auth/handler.go
package auth

import (
	"errors"
	"net/http"

	"github.com/dalemusser/projectflow/internal/app/service"
	"github.com/dalemusser/projectflow/internal/app/system/auditlog"
	"github.com/dalemusser/projectflow/internal/app/system/httpjson"
	"github.com/dalemusser/projectflow/internal/app/system/ratelimit"
	"github.com/dalemusser/projectflow/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// MsgRateLimited is the 429 body for throttled logins.
const MsgRateLimited = "too many login attempts, try again later"

// Handler serves registration and login.
type Handler struct {
	Svc      *service.Service
	Limiter  *ratelimit.LoginLimiter
	AuditLog *auditlog.Logger
	Log      *zap.Logger
}

// NewHandler constructs an auth Handler. A nil limiter disables throttling.
func NewHandler(svc *service.Service, limiter *ratelimit.LoginLimiter, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Svc:      svc,
		Limiter:  limiter,
		AuditLog: audit,
		Log:      logger,
	}
}

// Register handles POST /api/auth/register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var in service.RegisterInput
	if err := httpjson.Read(w, r, &in); err != nil {
		httpjson.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "register")
	defer cancel()

	res, err := h.Svc.Register(ctx, in)
	if err != nil {
		h.AuditLog.RegisterFailed(ctx, r, in.Email, failureReason(err))
		httpjson.Error(w, r, h.Log, err)
		return
	}

	h.AuditLog.RegisterSuccess(ctx, r, res.User.ID, res.User.Email)
	httpjson.OK(w, res)
}

// Login handles POST /api/auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var in service.LoginInput
	if err := httpjson.Read(w, r, &in); err != nil {
		httpjson.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "login")
	defer cancel()

	if h.Limiter != nil {
		if ok, reason := h.Limiter.Check(r, in.Email); !ok {
			h.Log.Debug("login throttled", zap.String("reason", reason))
			h.AuditLog.LoginRateLimited(ctx, r, in.Email)
			httpjson.WriteMessage(w, http.StatusTooManyRequests, MsgRateLimited)
			return
		}
	}

	res, err := h.Svc.Authenticate(ctx, in)
	if err != nil {
		h.AuditLog.LoginFailed(ctx, r, in.Email, failureReason(err))
		httpjson.Error(w, r, h.Log, err)
		return
	}

	if h.Limiter != nil {
		h.Limiter.ResetEmail(in.Email)
	}
	h.AuditLog.LoginSuccess(ctx, r, res.User.ID, res.User.Email)
	httpjson.OK(w, res)
}

// failureReason is the short audit label for err.
func failureReason(err error) string {
	var (
		ae *service.AuthError
		ve *service.ValidationError
	)
	switch {
	case errors.As(err, &ae):
		return ae.Msg
	case errors.As(err, &ve):
		return "validation: " + ve.Msg
	default:
		return "internal error"
	}
}
