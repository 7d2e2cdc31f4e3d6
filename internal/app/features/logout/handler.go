// internal/app/features/logout/handler.go
package logout

import (
	"net/http"

	"github.com/dalemusser/tutorhub/internal/app/system/auditlog"
	"github.com/dalemusser/tutorhub/internal/app/system/auth"
	"go.uber.org/zap"
)

type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	Audit      *auditlog.Logger
}

func NewHandler(sessionMgr *auth.SessionManager, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:        logger,
		SessionMgr: sessionMgr,
		Audit:      audit,
	}
}

// HandleLogout handles POST /logout. Signing out an anonymous session is
// not an error.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	_, wasSignedIn := auth.CurrentAdmin(r)
	if err := h.SessionMgr.SignOut(w, r); err != nil {
		// Still answer 204; the client drops its state either way.
		h.Log.Error("logout: save session", zap.Error(err))
	}
	if wasSignedIn {
		h.Audit.Logout(r.Context(), r)
	}
	w.WriteHeader(http.StatusNoContent)
}
