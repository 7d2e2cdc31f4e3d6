// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig carries
// the framework settings (ports, TLS, logging level, env); everything
// specific to the tutoring ledger lives here.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session management configuration
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionName   string // Cookie name for sessions (default: tutorhub-session)
	SessionDomain string // Cookie domain (blank means current host)
	SessionMaxAge time.Duration

	// AdminPasswordHash is the bcrypt hash of the single admin password.
	AdminPasswordHash string

	// Fee archive
	ArchiveBackend string // "file" or "mongo"
	ArchiveFile    string // path of the JSON archive when ArchiveBackend is "file"

	// Ledger behavior
	LedgerRecordReversals bool
	DriftCheckInterval    time.Duration // 0 disables the drift worker

	// Audit logging: all, db, log or off
	AuditLogAuth  string
	AuditLogAdmin string

	// Store call timeouts (0 keeps the package defaults)
	TimeoutShort  time.Duration
	TimeoutMedium time.Duration
	TimeoutLong   time.Duration
}
