// internal/app/features/attendance/handler.go
package attendance

import (
	"context"

	uierrors "github.com/dalemusser/tutorhub/internal/app/features/errors"
	attendancestore "github.com/dalemusser/tutorhub/internal/app/store/attendance"
	groupstore "github.com/dalemusser/tutorhub/internal/app/store/groups"
	studentstore "github.com/dalemusser/tutorhub/internal/app/store/students"
	"github.com/dalemusser/tutorhub/internal/app/system/auditlog"
	"github.com/dalemusser/tutorhub/internal/app/system/bookkeeping"
	"github.com/dalemusser/tutorhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type GroupLookup interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Group, error)
}

type StudentLister interface {
	List(ctx context.Context, groupID *primitive.ObjectID) ([]models.Student, error)
}

type RecordLister interface {
	ListByGroupRange(ctx context.Context, groupID primitive.ObjectID, from, to string) ([]models.AttendanceRecord, error)
}

// Ledger toggles slots.
type Ledger interface {
	SetPresence(ctx context.Context, k bookkeeping.SlotKey) (bookkeeping.Result, error)
	SetPaid(ctx context.Context, k bookkeeping.SlotKey) (bookkeeping.Result, error)
}

type Handler struct {
	Groups   GroupLookup
	Students StudentLister
	Records  RecordLister
	Ledger   Ledger
	Audit    *auditlog.Logger
	ErrLog   *uierrors.ErrorLogger
	Log      *zap.Logger
}

func NewHandler(db *mongo.Database, svc *bookkeeping.Service, audit *auditlog.Logger, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Groups:   groupstore.New(db),
		Students: studentstore.New(db),
		Records:  attendancestore.New(db),
		Ledger:   svc,
		Audit:    audit,
		ErrLog:   errLog,
		Log:      logger,
	}
}
