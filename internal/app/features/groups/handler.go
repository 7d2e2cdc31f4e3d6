// internal/app/features/groups/handler.go
package groups

import (
	"context"

	uierrors "github.com/dalemusser/tutorhub/internal/app/features/errors"
	groupstore "github.com/dalemusser/tutorhub/internal/app/store/groups"
	"github.com/dalemusser/tutorhub/internal/app/system/auditlog"
	"github.com/dalemusser/tutorhub/internal/app/system/bookkeeping"
	"github.com/dalemusser/tutorhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// GroupStore is what the group handlers read and create directly.
// Edits and deletes go through the ledger so fee history is kept.
type GroupStore interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Group, error)
	List(ctx context.Context) ([]models.Group, error)
	Create(ctx context.Context, g models.Group) (models.Group, error)
}

// Ledger is the subset of the bookkeeping service these handlers use.
type Ledger interface {
	UpdateGroup(ctx context.Context, g models.Group) (bool, error)
	ArchiveAndDeleteGroup(ctx context.Context, id primitive.ObjectID) (models.ArchivedGroup, error)
	FeeForDate(ctx context.Context, groupID primitive.ObjectID, date string) (bookkeeping.FeeQuote, error)
	ArchivedGroups(ctx context.Context) ([]models.ArchivedGroup, error)
	RestoreGroup(ctx context.Context, id primitive.ObjectID) (models.Group, error)
}

type Handler struct {
	Groups GroupStore
	Ledger Ledger
	Audit  *auditlog.Logger
	ErrLog *uierrors.ErrorLogger
	Log    *zap.Logger
}

func NewHandler(db *mongo.Database, svc *bookkeeping.Service, audit *auditlog.Logger, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Groups: groupstore.New(db),
		Ledger: svc,
		Audit:  audit,
		ErrLog: errLog,
		Log:    logger,
	}
}
