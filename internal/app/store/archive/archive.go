// Package archive persists archived-group records: the last snapshot of a
// group and the fee timeline used to price its past sessions.
//
// Two backends implement Cache. FileCache keeps every record in one JSON
// file on local disk and is private to a process. Store keeps them in the
// archived_groups collection and is shared by every process on the database.
package archive

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/tutorhub/internal/app/system/inputval"
	"github.com/dalemusser/tutorhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound  = errors.New("archived group not found")
	ErrMalformed = errors.New("malformed archived group")
)

// Backend names accepted by the archive_backend setting.
const (
	BackendFile  = "file"
	BackendMongo = "mongo"
)

// Cache stores one ArchivedGroup per group id. Put overwrites.
type Cache interface {
	Get(ctx context.Context, id primitive.ObjectID) (models.ArchivedGroup, error)
	Put(ctx context.Context, a models.ArchivedGroup) error
	List(ctx context.Context) ([]models.ArchivedGroup, error)
}

func check(a models.ArchivedGroup) error {
	if a.ID.IsZero() {
		return fmt.Errorf("%w: missing id", ErrMalformed)
	}
	if err := inputval.Validate(a).Err(); err != nil {
		return fmt.Errorf("%w %s: %v", ErrMalformed, a.ID.Hex(), err)
	}
	for i, iv := range a.FeeHistory {
		if iv.ValidTo.Before(iv.ValidFrom) {
			return fmt.Errorf("%w %s: interval %d ends before it starts", ErrMalformed, a.ID.Hex(), i)
		}
	}
	return nil
}
