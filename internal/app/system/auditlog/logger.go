// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"

	"github.com/dalemusser/projectflow/internal/app/system/ratelimit"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Event types.
const (
	EventRegisterSuccess  = "register_success"
	EventRegisterFailed   = "register_failed"
	EventLoginSuccess     = "login_success"
	EventLoginFailed      = "login_failed"
	EventLoginRateLimited = "login_rate_limited"
)

// Event is one audit record. Only auth events exist today.
type Event struct {
	EventType     string
	UserID        *primitive.ObjectID
	Email         string
	IP            string
	Success       bool
	FailureReason string
}

// Config controls audit output. Auth is "log" (zap) or "off".
type Config struct {
	Auth string
}

// Logger writes audit events as structured zap entries tagged audit=true.
type Logger struct {
	zapLog *zap.Logger
	config Config
}

// New creates an audit Logger.
func New(zapLog *zap.Logger, config Config) *Logger {
	if zapLog == nil {
		zapLog = zap.NewNop()
	}
	return &Logger{zapLog: zapLog, config: config}
}

// Log records event unless auditing is off. A nil Logger is a no-op.
func (l *Logger) Log(ctx context.Context, event Event) {
	if l == nil || l.config.Auth == "off" {
		return
	}

	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", "auth"),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}
	if event.UserID != nil {
		fields = append(fields, zap.String("user_id", event.UserID.Hex()))
	}
	if event.Email != "" {
		fields = append(fields, zap.String("email", event.Email))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// --- Authentication Events ---

// RegisterSuccess logs a new account.
func (l *Logger) RegisterSuccess(ctx context.Context, r *http.Request, userID primitive.ObjectID, email string) {
	l.Log(ctx, Event{EventType: EventRegisterSuccess, UserID: &userID, Email: email, IP: clientIP(r), Success: true})
}

// RegisterFailed logs a rejected registration.
func (l *Logger) RegisterFailed(ctx context.Context, r *http.Request, email, reason string) {
	l.Log(ctx, Event{EventType: EventRegisterFailed, Email: email, IP: clientIP(r), FailureReason: reason})
}

// LoginSuccess logs a successful login.
func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, userID primitive.ObjectID, email string) {
	l.Log(ctx, Event{EventType: EventLoginSuccess, UserID: &userID, Email: email, IP: clientIP(r), Success: true})
}

// LoginFailed logs a failed login. reason stays server-side; clients only
// ever see "invalid credentials".
func (l *Logger) LoginFailed(ctx context.Context, r *http.Request, email, reason string) {
	l.Log(ctx, Event{EventType: EventLoginFailed, Email: email, IP: clientIP(r), FailureReason: reason})
}

// LoginRateLimited logs a throttled login attempt.
func (l *Logger) LoginRateLimited(ctx context.Context, r *http.Request, email string) {
	l.Log(ctx, Event{EventType: EventLoginRateLimited, Email: email, IP: clientIP(r), FailureReason: "rate limited"})
}

func clientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	return ratelimit.ClientIP(r)
}
