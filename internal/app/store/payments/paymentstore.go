// internal/app/store/payments/paymentstore.go
package paymentstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/tutorhub/internal/app/system/inputval"
	"github.com/dalemusser/tutorhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrMalformed = errors.New("malformed payment history entry")

// Store is append-only: there is no update or delete.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("payment_history")}
}

// Append inserts one entry. PaidAt defaults to now and Kind to payment.
func (s *Store) Append(ctx context.Context, e models.PaymentHistoryEntry) (models.PaymentHistoryEntry, error) {
	e.ID = primitive.NewObjectID()
	if e.PaidAt.IsZero() {
		e.PaidAt = time.Now().UTC()
	}
	if e.Kind == "" {
		e.Kind = models.PaymentKindPayment
	}
	if err := inputval.Validate(e).Err(); err != nil {
		return models.PaymentHistoryEntry{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if _, err := s.c.InsertOne(ctx, e); err != nil {
		return models.PaymentHistoryEntry{}, err
	}
	return e, nil
}

// ListByStudent returns a student's entries, most recent paid_at first.
func (s *Store) ListByStudent(ctx context.Context, studentID primitive.ObjectID) ([]models.PaymentHistoryEntry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "paid_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"student_id": studentID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.PaymentHistoryEntry
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	for i := range out {
		// entries written before kind existed are payments
		if out[i].Kind == "" {
			out[i].Kind = models.PaymentKindPayment
		}
		if err := inputval.Validate(out[i]).Err(); err != nil {
			return nil, fmt.Errorf("%w %s: %v", ErrMalformed, out[i].ID.Hex(), err)
		}
	}
	return out, nil
}
