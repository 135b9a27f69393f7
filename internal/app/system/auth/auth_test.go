package auth_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/projectflow/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const testSecret = "test-jwt-secret-must-be-32-chars-long!"

func newTestTokenManager(t *testing.T, expiry time.Duration) *auth.TokenManager {
	t.Helper()
	tm, err := auth.NewTokenManager(testSecret, expiry, zap.NewNop())
	if err != nil {
		t.Fatalf("failed to create token manager: %v", err)
	}
	return tm
}

func TestNewTokenManager_EmptySecret(t *testing.T) {
	if _, err := auth.NewTokenManager("", time.Hour, zap.NewNop()); err == nil {
		t.Fatal("expected error for empty secret")
	}
}

func TestNewTokenManager_DefaultExpiry(t *testing.T) {
	tm := newTestTokenManager(t, 0)
	if tm.Expiry() != 360000*time.Second {
		t.Errorf("expiry: got %v", tm.Expiry())
	}
}

func TestIssueAndParse(t *testing.T) {
	tm := newTestTokenManager(t, time.Hour)
	id := primitive.NewObjectID()

	raw, err := tm.Issue(id, "ada@example.com")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	claims, err := tm.Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.Subject != id.Hex() {
		t.Errorf("subject: got %q, want %q", claims.Subject, id.Hex())
	}
	if claims.Email != "ada@example.com" {
		t.Errorf("email: got %q", claims.Email)
	}
}

func TestParse_WrongSecret(t *testing.T) {
	tm := newTestTokenManager(t, time.Hour)
	other, _ := auth.NewTokenManager("another-secret-that-is-long-enough-xx", time.Hour, zap.NewNop())

	raw, _ := other.Issue(primitive.NewObjectID(), "")
	if _, err := tm.Parse(raw); !errors.Is(err, auth.ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestParse_Expired(t *testing.T) {
	tm := newTestTokenManager(t, time.Nanosecond)
	raw, _ := tm.Issue(primitive.NewObjectID(), "")
	time.Sleep(1100 * time.Millisecond)
	if _, err := tm.Parse(raw); !errors.Is(err, auth.ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestLoadTokenUser_ValidBearer(t *testing.T) {
	tm := newTestTokenManager(t, time.Hour)
	id := primitive.NewObjectID()
	raw, _ := tm.Issue(id, "ada@example.com")

	var got *auth.TokenUser
	handler := tm.LoadTokenUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = auth.CurrentUser(r)
	}))

	req := httptest.NewRequest("GET", "/api/projects", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if got == nil {
		t.Fatal("expected user in context")
	}
	if got.ID != id {
		t.Errorf("user id: got %s, want %s", got.ID.Hex(), id.Hex())
	}
}

func TestLoadTokenUser_GarbageToken(t *testing.T) {
	tm := newTestTokenManager(t, time.Hour)

	found := true
	handler := tm.LoadTokenUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, found = auth.CurrentUser(r)
	}))

	req := httptest.NewRequest("GET", "/api/projects", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if found {
		t.Error("expected no user for an invalid token")
	}
}

func TestRequireSignedIn_NoUser_Returns401JSON(t *testing.T) {
	handler := auth.RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/tasks", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse body: %v", err)
	}
	if body["message"] != "unauthorized" {
		t.Errorf("message: got %q", body["message"])
	}
}

func TestRequireSignedIn_WithUser(t *testing.T) {
	handler := auth.RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := auth.WithTestUser(httptest.NewRequest("GET", "/api/tasks", nil), &auth.TokenUser{ID: primitive.NewObjectID()})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
}
