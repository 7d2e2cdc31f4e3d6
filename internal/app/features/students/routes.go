// internal/app/features/students/routes.go
package students

import (
	"github.com/dalemusser/tutorhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the student routes under the path where this router is
// mounted (typically "/students" from bootstrap). Every route requires the
// admin session.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Get("/", h.ServeList)
		pr.Post("/", h.HandleCreate)
		pr.Get("/{id}", h.ServeView)
		pr.Put("/{id}", h.HandleEdit)
		pr.Delete("/{id}", h.HandleDelete)
		pr.Post("/{id}/paid-flag", h.HandlePaidFlag)
		pr.Get("/{id}/payments", h.ServePayments)
		pr.Post("/{id}/reconcile", h.HandleReconcile)
	})

	return r
}
