// internal/app/features/attendance/routes.go
package attendance

import (
	"github.com/dalemusser/tutorhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the attendance sheet and the two ledger toggles.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Get("/", h.ServeSheet)
		pr.Post("/presence", h.HandlePresence)
		pr.Post("/paid", h.HandlePaid)
	})

	return r
}
