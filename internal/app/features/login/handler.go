// internal/app/features/login/handler.go
package login

import (
	"errors"
	"net/http"
	"time"

	uierrors "github.com/dalemusser/tutorhub/internal/app/features/errors"
	"github.com/dalemusser/tutorhub/internal/app/system/auditlog"
	"github.com/dalemusser/tutorhub/internal/app/system/auth"
	"github.com/dalemusser/tutorhub/internal/app/system/formutil"
	"github.com/dalemusser/tutorhub/internal/app/system/ratelimit"
	"go.uber.org/zap"
)

type Handler struct {
	SessionMgr *auth.SessionManager
	Limiter    *ratelimit.LoginLimiter
	Audit      *auditlog.Logger
	ErrLog     *uierrors.ErrorLogger
	Log        *zap.Logger
}

func NewHandler(sessionMgr *auth.SessionManager, audit *auditlog.Logger, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		SessionMgr: sessionMgr,
		Limiter:    ratelimit.NewLoginLimiter(),
		Audit:      audit,
		ErrLog:     errLog,
		Log:        logger,
	}
}

type loginInput struct {
	Password string `json:"password"`
}

type statusResponse struct {
	SignedIn   bool       `json:"signedIn"`
	SignedInAt *time.Time `json:"signedInAt,omitempty"`
}

// ServeStatus handles GET /login and reports whether the session is signed in.
func (h *Handler) ServeStatus(w http.ResponseWriter, r *http.Request) {
	a, ok := auth.CurrentAdmin(r)
	if !ok {
		uierrors.WriteJSON(w, http.StatusOK, statusResponse{})
		return
	}
	at := a.SignedInAt
	uierrors.WriteJSON(w, http.StatusOK, statusResponse{SignedIn: true, SignedInAt: &at})
}

// HandleLogin handles POST /login with {"password": "..."}.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var in loginInput
	if err := formutil.Decode(r, &in); err != nil {
		h.ErrLog.LogServiceError(w, r, "login: read input", err)
		return
	}

	if ok, msg := h.Limiter.Check(r); !ok {
		h.Audit.LoginFailed(r.Context(), r, "rate limited")
		uierrors.Write(w, http.StatusTooManyRequests, uierrors.CodeRateLimited, msg, nil)
		return
	}

	if err := h.SessionMgr.CheckPassword(in.Password); err != nil {
		reason := "wrong password"
		if errors.Is(err, auth.ErrNoPasswordConfigured) {
			reason = "sign-in disabled"
		}
		h.Limiter.Failed(r)
		h.Audit.LoginFailed(r.Context(), r, reason)
		h.Log.Info("login failed", zap.String("reason", reason))
		uierrors.Write(w, http.StatusUnauthorized, uierrors.CodeUnauthorized, "Incorrect password.", nil)
		return
	}

	now := time.Now().UTC()
	if err := h.SessionMgr.SignIn(w, r, now); err != nil {
		h.ErrLog.LogServerError(w, r, "login: save session", err)
		return
	}
	h.Limiter.Succeeded(r)
	h.Audit.LoginSuccess(r.Context(), r)
	uierrors.WriteJSON(w, http.StatusOK, statusResponse{SignedIn: true, SignedInAt: &now})
}
