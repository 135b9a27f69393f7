package httpjson_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/projectflow/internal/app/service"
	"github.com/dalemusser/projectflow/internal/app/system/httpjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", &service.ValidationError{Msg: "title is required"}, http.StatusBadRequest},
		{"auth", &service.AuthError{Msg: service.MsgInvalidCredentials}, http.StatusBadRequest},
		{"not found", &service.NotFoundError{Entity: "task"}, http.StatusNotFound},
		{"store", &service.StoreError{Op: "create task", Err: errors.New("boom")}, http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, httpjson.StatusFor(tt.err))
		})
	}
}

func decodeMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var m httpjson.Message
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	return m.Message
}

func TestError_ClientErrorsCarryMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/tasks/x", nil)

	httpjson.Error(rec, req, zap.NewNop(), &service.NotFoundError{Entity: "task"})

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "task not found", decodeMessage(t, rec))
}

func TestError_StoreErrorIsHiddenAndLogged(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/tasks", nil)

	httpjson.Error(rec, req, zap.New(core), &service.StoreError{Op: "create task", Err: errors.New("connection reset")})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, httpjson.MsgInternal, decodeMessage(t, rec))
	assert.NotContains(t, rec.Body.String(), "connection reset")
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "/api/tasks", logs.All()[0].ContextMap()["path"])
}

func TestRead(t *testing.T) {
	type body struct {
		Title string `json:"title"`
		N     int    `json:"n"`
	}
	tests := []struct {
		name    string
		in      string
		wantErr string
	}{
		{"ok with unknown field", `{"title":"a","extra":true}`, ""},
		{"empty", ``, "request body is empty"},
		{"malformed", `{"title":`, "malformed JSON body"},
		{"wrong type", `{"n":"x"}`, "n has the wrong type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.in))
			var b body
			err := httpjson.Read(rec, req, &b)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, "a", b.Title)
				return
			}
			var ve *service.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.wantErr, ve.Msg)
		})
	}
}

func TestReadLimit_TooLarge(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":"`+strings.Repeat("x", 100)+`"}`))
	var b struct {
		Title string `json:"title"`
	}
	err := httpjson.ReadLimit(rec, req, &b, 16)
	var ve *service.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "request body too large", ve.Msg)
}
