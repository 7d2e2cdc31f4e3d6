// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/tutorhub/internal/app/system/auditlog"
	"github.com/dalemusser/tutorhub/internal/app/system/bookkeeping"
	"github.com/dalemusser/tutorhub/internal/app/system/metrics"
	"github.com/dalemusser/tutorhub/internal/app/system/workers"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
//
// WAFFLE passes DBDeps by value to each hook, so the services Startup
// builds are kept behind the Services pointer allocated in ConnectDB.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database
	Services      *Services
}

// Services are the long-lived components shared by the handlers.
type Services struct {
	Metrics *metrics.Metrics
	Ledger  *bookkeeping.Service
	Audit   *auditlog.Logger
	Drift   *workers.DriftCheck
}
