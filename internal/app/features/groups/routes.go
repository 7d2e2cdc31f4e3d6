// internal/app/features/groups/routes.go
package groups

import (
	"github.com/dalemusser/tutorhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	// Everything under /groups requires authentication
	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		// LIST / CREATE
		pr.Get("/", h.ServeGroupsList)
		pr.Post("/", h.HandleCreateGroup)

		// ARCHIVE (the static segment wins over /{id})
		pr.Get("/archived", h.ServeArchivedList)
		pr.Post("/archived/{id}/restore", h.HandleRestoreGroup)

		// VIEW / EDIT / DELETE
		pr.Get("/{id}", h.ServeGroupView)
		pr.Put("/{id}", h.HandleEditGroup)
		pr.Delete("/{id}", h.HandleDeleteGroup)

		// FEE ON A DATE
		pr.Get("/{id}/fee", h.ServeFeeForDate)
	})

	return r
}
