// internal/app/features/students/handler.go
package students

import (
	"context"

	uierrors "github.com/dalemusser/tutorhub/internal/app/features/errors"
	groupstore "github.com/dalemusser/tutorhub/internal/app/store/groups"
	paymentstore "github.com/dalemusser/tutorhub/internal/app/store/payments"
	studentstore "github.com/dalemusser/tutorhub/internal/app/store/students"
	"github.com/dalemusser/tutorhub/internal/app/system/auditlog"
	"github.com/dalemusser/tutorhub/internal/app/system/bookkeeping"
	"github.com/dalemusser/tutorhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// StudentStore is what the student handlers read and write.
type StudentStore interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Student, error)
	List(ctx context.Context, groupID *primitive.ObjectID) ([]models.Student, error)
	Create(ctx context.Context, in studentstore.Info) (models.Student, error)
	UpdateInfo(ctx context.Context, id primitive.ObjectID, in studentstore.Info) error
	SetPaidFlag(ctx context.Context, id primitive.ObjectID, paid bool) error
	SetBalance(ctx context.Context, id primitive.ObjectID, lessonsAttended int, montant float64) error
	Delete(ctx context.Context, id primitive.ObjectID) (int64, error)
}

// GroupLookup checks that a referenced group exists.
type GroupLookup interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Group, error)
}

// PaymentLister reads a student's payment history.
type PaymentLister interface {
	ListByStudent(ctx context.Context, studentID primitive.ObjectID) ([]models.PaymentHistoryEntry, error)
}

// Reconciler recomputes a student's balance.
type Reconciler interface {
	Reconcile(ctx context.Context, studentID primitive.ObjectID, apply bool) (bookkeeping.ReconcileResult, error)
}

type Handler struct {
	Students StudentStore
	Groups   GroupLookup
	Payments PaymentLister
	Ledger   Reconciler
	Audit    *auditlog.Logger
	ErrLog   *uierrors.ErrorLogger
	Log      *zap.Logger
}

// NewHandler constructs a Students feature handler bound to the given
// Mongo database, ledger service and loggers.
func NewHandler(db *mongo.Database, svc *bookkeeping.Service, audit *auditlog.Logger, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Students: studentstore.New(db),
		Groups:   groupstore.New(db),
		Payments: paymentstore.New(db),
		Ledger:   svc,
		Audit:    audit,
		ErrLog:   errLog,
		Log:      logger,
	}
}
