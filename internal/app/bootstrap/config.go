// internal/app/bootstrap/config.go
package bootstrap

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/tutorhub/internal/app/system/auditlog"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// Archive backends.
const (
	ArchiveFile  = "file"
	ArchiveMongo = "mongo"
)

// appConfigKeys defines the configuration keys for TutorHub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: TUTORHUB_MONGO_URI, TUTORHUB_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "tutorhub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 5, Desc: "MongoDB min connection pool size (default: 5)"},
	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "tutorhub-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "12h", Desc: "Session lifetime (e.g., 12h, 30m)"},

	{Name: "admin_password_hash", Default: "", Desc: "bcrypt hash of the admin password (blank disables sign-in)"},

	// Fee archive
	{Name: "archive_backend", Default: ArchiveFile, Desc: "Fee archive backend: 'file' or 'mongo'"},
	{Name: "archive_file", Default: "./data/archived_groups.json", Desc: "Path of the JSON fee archive (file backend)"},

	// Ledger
	{Name: "ledger_record_reversals", Default: false, Desc: "Append a reversal entry when a paid session is marked unpaid"},
	{Name: "drift_check_interval", Default: "1h", Desc: "How often to compare stored balances with attendance (0 disables)"},

	// Audit logging settings
	{Name: "audit_log_auth", Default: "all", Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_admin", Default: "all", Desc: "Admin event logging: 'all' (db+log), 'db', 'log', or 'off'"},

	// Timeouts
	{Name: "timeout_short", Default: "5s", Desc: "Timeout for single-document reads"},
	{Name: "timeout_medium", Default: "10s", Desc: "Timeout for lists and simple writes"},
	{Name: "timeout_long", Default: "30s", Desc: "Timeout for ledger operations and reconciliation"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, TUTORHUB_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "TUTORHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
		SessionMaxAge: appValues.Duration("session_max_age", 12*time.Hour),

		AdminPasswordHash: appValues.String("admin_password_hash"),

		ArchiveBackend: strings.ToLower(strings.TrimSpace(appValues.String("archive_backend"))),
		ArchiveFile:    appValues.String("archive_file"),

		LedgerRecordReversals: appValues.Bool("ledger_record_reversals"),
		DriftCheckInterval:    appValues.Duration("drift_check_interval", time.Hour),

		AuditLogAuth:  appValues.String("audit_log_auth"),
		AuditLogAdmin: appValues.String("audit_log_admin"),

		TimeoutShort:  appValues.Duration("timeout_short", 0),
		TimeoutMedium: appValues.Duration("timeout_medium", 0),
		TimeoutLong:   appValues.Duration("timeout_long", 0),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// The Mongo URI is checked here to catch configuration errors before
// attempting to connect.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if strings.TrimSpace(appCfg.MongoDatabase) == "" {
		return errors.New("mongo_database must not be empty")
	}

	switch appCfg.ArchiveBackend {
	case ArchiveMongo:
	case ArchiveFile:
		if strings.TrimSpace(appCfg.ArchiveFile) == "" {
			return errors.New("archive_backend 'file' requires archive_file")
		}
	default:
		return fmt.Errorf("archive_backend must be 'file' or 'mongo', got %q", appCfg.ArchiveBackend)
	}

	if !auditlog.ValidSetting(appCfg.AuditLogAuth) {
		return fmt.Errorf("audit_log_auth must be all, db, log or off, got %q", appCfg.AuditLogAuth)
	}
	if !auditlog.ValidSetting(appCfg.AuditLogAdmin) {
		return fmt.Errorf("audit_log_admin must be all, db, log or off, got %q", appCfg.AuditLogAdmin)
	}
	if appCfg.DriftCheckInterval < 0 {
		return errors.New("drift_check_interval must not be negative")
	}

	if coreCfg != nil && coreCfg.Env == "prod" {
		if strings.TrimSpace(appCfg.AdminPasswordHash) == "" {
			return errors.New("admin_password_hash is required in prod")
		}
		if strings.HasPrefix(appCfg.SessionKey, "dev-only") || len(appCfg.SessionKey) < 32 {
			return errors.New("session_key must be a private value of 32+ characters in prod")
		}
	}

	return nil
}
