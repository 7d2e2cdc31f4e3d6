// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/tutorhub/internal/app/store/audit"
	archivestore "github.com/dalemusser/tutorhub/internal/app/store/archive"
	attendancestore "github.com/dalemusser/tutorhub/internal/app/store/attendance"
	groupstore "github.com/dalemusser/tutorhub/internal/app/store/groups"
	paymentstore "github.com/dalemusser/tutorhub/internal/app/store/payments"
	studentstore "github.com/dalemusser/tutorhub/internal/app/store/students"
	"github.com/dalemusser/tutorhub/internal/app/system/auditlog"
	"github.com/dalemusser/tutorhub/internal/app/system/bookkeeping"
	"github.com/dalemusser/tutorhub/internal/app/system/metrics"
	"github.com/dalemusser/tutorhub/internal/app/system/timeouts"
	"github.com/dalemusser/tutorhub/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built: timeouts,
// metrics, the fee archive, the ledger service, the audit logger and the
// drift worker.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if deps.Services == nil {
		return fmt.Errorf("startup: services not allocated")
	}

	timeouts.Configure(timeouts.Config{
		Short:  appCfg.TimeoutShort,
		Medium: appCfg.TimeoutMedium,
		Long:   appCfg.TimeoutLong,
	})

	m := metrics.New()
	svc := newLedger(deps.MongoDatabase, appCfg, m, logger)

	deps.Services.Metrics = m
	deps.Services.Ledger = svc
	deps.Services.Audit = auditlog.New(audit.New(deps.MongoDatabase), logger, auditlog.Config{
		Auth:  appCfg.AuditLogAuth,
		Admin: appCfg.AuditLogAdmin,
	})
	deps.Services.Drift = workers.NewDriftCheck(svc, m, logger, appCfg.DriftCheckInterval, timeouts.Long())
	deps.Services.Drift.Start()

	logger.Info("ledger ready",
		zap.String("archive_backend", appCfg.ArchiveBackend),
		zap.Bool("record_reversals", appCfg.LedgerRecordReversals),
		zap.Duration("drift_check_interval", appCfg.DriftCheckInterval))
	return nil
}

// newArchive picks the fee archive backend. ValidateConfig has already
// rejected unknown values.
func newArchive(db *mongo.Database, appCfg AppConfig) archivestore.Cache {
	if appCfg.ArchiveBackend == ArchiveMongo {
		return archivestore.New(db)
	}
	return archivestore.NewFileCache(appCfg.ArchiveFile)
}

func newLedger(db *mongo.Database, appCfg AppConfig, m *metrics.Metrics, logger *zap.Logger) *bookkeeping.Service {
	return bookkeeping.New(bookkeeping.Deps{
		Students:   studentstore.New(db),
		Groups:     groupstore.New(db),
		Attendance: attendancestore.New(db),
		Payments:   paymentstore.New(db),
		Archive:    newArchive(db, appCfg),
	}, bookkeeping.Options{
		RecordReversals: appCfg.LedgerRecordReversals,
		Metrics:         m,
	}, logger.Named("ledger"))
}
