package tasks

import (
	"net/http"

	"github.com/dalemusser/projectflow/internal/app/service"
	"github.com/dalemusser/projectflow/internal/app/system/httpjson"
	"github.com/dalemusser/projectflow/internal/app/system/limits"
	"github.com/dalemusser/projectflow/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
)

// ListComments handles GET /api/tasks/{taskId}/comments, oldest first.
func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list comments")
	defer cancel()

	cs, err := h.Svc.ListComments(ctx, chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, r, h.Log, err)
		return
	}
	httpjson.OK(w, cs)
}

// CreateComment handles POST /api/tasks/{taskId}/comments and answers 201.
func (h *Handler) CreateComment(w http.ResponseWriter, r *http.Request) {
	var in service.CommentInput
	if err := httpjson.ReadLimit(w, r, &in, limits.MaxCommentBody); err != nil {
		httpjson.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "create comment")
	defer cancel()

	c, err := h.Svc.CreateComment(ctx, chi.URLParam(r, "id"), in)
	if err != nil {
		httpjson.Error(w, r, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusCreated, c)
}
