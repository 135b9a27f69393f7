package notifications

import "github.com/go-chi/chi/v5"

// Routes mounts under /api/notifications. The first segment is a user id on
// GET and a notification id on PUT .../read.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/{id}", h.List)
	r.Put("/{id}/read", h.MarkRead)
	return r
}
