// internal/app/bootstrap/routes.go
package bootstrap

import (
	"errors"
	"net/http"

	attendancefeature "github.com/dalemusser/tutorhub/internal/app/features/attendance"
	auditlogfeature "github.com/dalemusser/tutorhub/internal/app/features/auditlog"
	errorsfeature "github.com/dalemusser/tutorhub/internal/app/features/errors"
	groupsfeature "github.com/dalemusser/tutorhub/internal/app/features/groups"
	healthfeature "github.com/dalemusser/tutorhub/internal/app/features/health"
	loginfeature "github.com/dalemusser/tutorhub/internal/app/features/login"
	logoutfeature "github.com/dalemusser/tutorhub/internal/app/features/logout"
	studentsfeature "github.com/dalemusser/tutorhub/internal/app/features/students"
	"github.com/dalemusser/tutorhub/internal/app/system/auth"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// the Startup hook have completed. It creates the admin session manager,
// applies session middleware, and mounts the feature routers. Every route
// except /health, /metrics and /login requires a signed-in admin.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	svcs := deps.Services
	if svcs == nil || svcs.Ledger == nil {
		return nil, errors.New("build handler: Startup did not run")
	}

	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}
	if err := sessionMgr.SetPasswordHash(appCfg.AdminPasswordHash); err != nil {
		logger.Error("admin password hash rejected", zap.Error(err))
		return nil, err
	}

	// Create error logger for handlers.
	errLog := errorsfeature.NewErrorLogger(logger)
	db := deps.MongoDatabase

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	// Global auth middleware: marks the request signed in when the
	// session cookie says so. Protected routers check the mark.
	r.Use(sessionMgr.LoadSession)

	r.NotFound(errorsfeature.NotFound)
	r.MethodNotAllowed(errorsfeature.MethodNotAllowed)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	r.Handle("/metrics", svcs.Metrics.Handler())

	// Authentication
	loginHandler := loginfeature.NewHandler(sessionMgr, svcs.Audit, errLog, logger)
	r.Mount("/login", loginfeature.Routes(loginHandler))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, svcs.Audit, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler))

	// Admin API
	studentsHandler := studentsfeature.NewHandler(db, svcs.Ledger, svcs.Audit, errLog, logger)
	r.Mount("/students", studentsfeature.Routes(studentsHandler, sessionMgr))

	groupsHandler := groupsfeature.NewHandler(db, svcs.Ledger, svcs.Audit, errLog, logger)
	r.Mount("/groups", groupsfeature.Routes(groupsHandler, sessionMgr))

	attendanceHandler := attendancefeature.NewHandler(db, svcs.Ledger, svcs.Audit, errLog, logger)
	r.Mount("/attendance", attendancefeature.Routes(attendanceHandler, sessionMgr))

	auditHandler := auditlogfeature.NewHandler(db, errLog, logger)
	r.Mount("/audit", auditlogfeature.Routes(auditHandler, sessionMgr))

	return r, nil
}
