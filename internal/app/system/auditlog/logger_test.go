package auditlog_test

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/projectflow/internal/app/system/auditlog"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObserved(cfg auditlog.Config) (*auditlog.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return auditlog.New(zap.New(core), cfg), logs
}

func TestLogger_NilLogger(t *testing.T) {
	var logger *auditlog.Logger
	req := httptest.NewRequest("POST", "/api/auth/login", nil)

	// must not panic
	logger.LoginSuccess(context.Background(), req, primitive.NewObjectID(), "a@b.c")
	logger.LoginFailed(context.Background(), req, "a@b.c", "bad password")
}

func TestLogger_ConfigOff(t *testing.T) {
	logger, logs := newObserved(auditlog.Config{Auth: "off"})
	logger.LoginSuccess(context.Background(), nil, primitive.NewObjectID(), "a@b.c")
	if logs.Len() != 0 {
		t.Errorf("expected no entries, got %d", logs.Len())
	}
}

func TestLogger_LoginSuccess(t *testing.T) {
	logger, logs := newObserved(auditlog.Config{Auth: "log"})
	req := httptest.NewRequest("POST", "/api/auth/login", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7")
	uid := primitive.NewObjectID()

	logger.LoginSuccess(context.Background(), req, uid, "ada@example.com")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	e := entries[0]
	if e.Level != zapcore.InfoLevel {
		t.Errorf("level: got %v", e.Level)
	}
	ctx := e.ContextMap()
	if ctx["audit"] != true {
		t.Error("expected audit=true")
	}
	if ctx["event_type"] != auditlog.EventLoginSuccess {
		t.Errorf("event_type: got %v", ctx["event_type"])
	}
	if ctx["user_id"] != uid.Hex() {
		t.Errorf("user_id: got %v", ctx["user_id"])
	}
	if ctx["ip"] != "203.0.113.7" {
		t.Errorf("ip: got %v", ctx["ip"])
	}
}

func TestLogger_FailuresAreWarnings(t *testing.T) {
	logger, logs := newObserved(auditlog.Config{Auth: "log"})
	req := httptest.NewRequest("POST", "/api/auth/register", nil)

	logger.RegisterFailed(context.Background(), req, "ada@example.com", "user exists")
	logger.LoginRateLimited(context.Background(), req, "ada@example.com")

	for _, e := range logs.All() {
		if e.Level != zapcore.WarnLevel {
			t.Errorf("%v: expected warn level, got %v", e.ContextMap()["event_type"], e.Level)
		}
		if e.ContextMap()["failure_reason"] == "" {
			t.Error("expected failure_reason")
		}
	}
	if logs.Len() != 2 {
		t.Errorf("expected 2 entries, got %d", logs.Len())
	}
}
