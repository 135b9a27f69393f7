// internal/app/features/projects/handler.go
package projects

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

// List handles GET /api/projects. Members come back expanded to users.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list projects")
	defer cancel()

	views, err := h.Svc.ListProjects(ctx)
	if err != nil {
		httpjson.Error(w, r, h.Log, err)
		return
	}
	httpjson.OK(w, views)
}

// Create handles POST /api/projects.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in service.ProjectInput
	if err := httpjson.Read(w, r, &in); err != nil {
		httpjson.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "create project")
	defer cancel()

	p, err := h.Svc.CreateProject(ctx, in)
	if err != nil {
		httpjson.Error(w, r, h.Log, err)
		return
	}
	httpjson.OK(w, p)
}

// Update handles PUT /api/projects/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	in, err := service.DecodeProjectUpdate(httpjson.Limit(w, r))
	if err != nil {
		httpjson.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "update project")
	defer cancel()

	p, err := h.Svc.UpdateProject(ctx, chi.URLParam(r, "id"), in)
	if err != nil {
		httpjson.Error(w, r, h.Log, err)
		return
	}
	httpjson.OK(w, p)
}

// Delete handles DELETE /api/projects/{id}. The project's tasks go with it.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "delete project")
	defer cancel()

	if err := h.Svc.DeleteProject(ctx, chi.URLParam(r, "id")); err != nil {
		httpjson.Error(w, r, h.Log, err)
		return
	}
	httpjson.OK(w, httpjson.Message{Message: "project deleted"})
}
