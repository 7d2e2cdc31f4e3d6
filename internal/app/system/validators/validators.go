// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/tutorhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const (
	datePattern = `^[0-9]{4}-[0-9]{2}-[0-9]{2}$`
	timePattern = `^([01][0-9]|2[0-3]):[0-5][0-9]$`
	nonBlank    = `.*\S.*`
)

// Collections lists every collection the app creates at startup.
var Collections = []string{
	"students", "groups", "attendance", "payment_history", "archived_groups", "audit_events",
}

// EnsureAll creates collections (if missing) and tries to attach JSON-Schema
// validators. On servers that don't support collMod/validators (e.g. some
// DocumentDB versions), we log and skip gracefully.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	schemas := map[string]bson.M{
		"students":        studentsSchema(),
		"groups":          groupsSchema(),
		"attendance":      attendanceSchema(),
		"payment_history": paymentHistorySchema(),
		"archived_groups": archivedGroupsSchema(),
		"audit_events":    nil,
	}

	for _, coll := range Collections {
		if _, err := ensureCollection(ctx, db, coll); err != nil {
			problems = append(problems, coll+": "+err.Error())
			continue
		}
		schema := schemas[coll]
		if schema == nil {
			continue
		}
		if err := setValidator(ctx, db, coll, schema); err != nil {
			if isUnsupported(err) {
				zap.L().Info("validator skipped (unsupported)", zap.String("collection", coll))
				continue
			}
			problems = append(problems, coll+": "+err.Error())
		}
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* ---------------------- collection helpers & logging ---------------------- */

func collectionExists(ctx context.Context, db *mongo.Database, name string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.M{"name": name})
	if err != nil {
		return false, err
	}
	return len(names) > 0, nil
}

// ensureCollection idempotently makes sure <name> exists.
// Returns created==true only if we actually created it.
func ensureCollection(ctx context.Context, db *mongo.Database, name string) (created bool, err error) {
	if exists, listErr := collectionExists(ctx, db, name); listErr == nil && exists {
		zap.L().Info("collection exists", zap.String("collection", name))
		return false, nil
	}
	if err := db.CreateCollection(ctx, name); err != nil {
		// lost a race with another instance, or listing failed above
		if hasCode(err, 48) || containsAny(err, "already exists", "namespace exists") {
			zap.L().Info("collection exists", zap.String("collection", name))
			return false, nil
		}
		zap.L().Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return false, err
	}
	zap.L().Info("created collection", zap.String("collection", name))
	return true, nil
}

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	var out bson.M
	if err := db.RunCommand(ctx, cmd).Decode(&out); err != nil {
		return err
	}
	zap.L().Info("validator ensured", zap.String("collection", name))
	return nil
}

/* ------------------------- error helpers ------------------------- */

func hasCode(err error, codes ...int32) bool {
	var ce mongo.CommandError
	if !errors.As(err, &ce) {
		return false
	}
	for _, c := range codes {
		if ce.Code == c {
			return true
		}
	}
	return false
}

func containsAny(err error, subs ...string) bool {
	s := strings.ToLower(err.Error())
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// isUnsupported matches "no such command" (59) and "not implemented" (115).
func isUnsupported(err error) bool {
	if err == nil {
		return false
	}
	return hasCode(err, 59, 115) || containsAny(err, "no such command", "not implemented", "not supported")
}

/* ------------------------- JSON-Schema docs ---------------------- */

func str() bson.M { return bson.M{"bsonType": "string", "minLength": 1, "pattern": nonBlank} }
func date() bson.M { return bson.M{"bsonType": "string", "pattern": datePattern} }
func clock() bson.M { return bson.M{"bsonType": "string", "pattern": timePattern} }
func objectID() bson.M { return bson.M{"bsonType": "objectId"} }
func timestamp() bson.M { return bson.M{"bsonType": "date"} }
func nonNegative() bson.M { return bson.M{"bsonType": "number", "minimum": 0} }
func positive() bson.M {
	return bson.M{"bsonType": "number", "minimum": 0, "exclusiveMinimum": true}
}

func scheduleSchema() bson.M {
	days := bson.A{}
	for _, d := range []string{models.Monday, models.Tuesday, models.Wednesday, models.Thursday, models.Friday, models.Saturday, models.Sunday} {
		days = append(days, d)
	}
	return bson.M{
		"bsonType": "array",
		"items": bson.M{
			"bsonType": "object",
			"required": bson.A{"day", "time"},
			"properties": bson.M{
				"day":  bson.M{"enum": days},
				"time": clock(),
			},
		},
	}
}

func studentsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"first_name", "last_name", "date_of_registration", "group_id", "lessons_attended", "montant"},
			"properties": bson.M{
				"first_name":           str(),
				"last_name":            str(),
				"date_of_registration": date(),
				"group_id":             objectID(),
				"paid":                 bson.M{"bsonType": "bool"},
				"lessons_attended":     bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 0},
				"montant":              nonNegative(),
			},
		},
	}
}

func groupsSchema() bson.M {
	sched := scheduleSchema()
	sched["minItems"] = 1
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"name", "name_ci", "fee_per_session", "schedule"},
			"properties": bson.M{
				"name":            str(),
				"name_ci":         str(),
				"fee_per_session": positive(),
				"description":     bson.M{"bsonType": "string"},
				"schedule":        sched,
			},
		},
	}
}

func attendanceSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"student_id", "group_id", "date", "time", "present", "paid"},
			"properties": bson.M{
				"student_id": objectID(),
				"group_id":   objectID(),
				"date":       date(),
				"time":       clock(),
				"present":    bson.M{"bsonType": "bool"},
				"paid":       bson.M{"bsonType": "bool"},
				"created_at": timestamp(),
			},
		},
	}
}

func paymentHistorySchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"student_id", "group_id", "session_date", "session_time", "amount", "paid_at"},
			"properties": bson.M{
				"student_id":   objectID(),
				"group_id":     objectID(),
				"session_date": date(),
				"session_time": clock(),
				"amount":       nonNegative(),
				"kind":         bson.M{"enum": bson.A{models.PaymentKindPayment, models.PaymentKindReversal}},
				"paid_at":      timestamp(),
			},
		},
	}
}

func archivedGroupsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"name", "fee_per_session", "fee_history"},
			"properties": bson.M{
				"name":            str(),
				"fee_per_session": positive(),
				"schedule":        scheduleSchema(),
				"deleted_at":      timestamp(),
				"fee_history": bson.M{
					"bsonType": "array",
					"items": bson.M{
						"bsonType": "object",
						"required": bson.A{"fee_per_session", "valid_from", "valid_to"},
						"properties": bson.M{
							"fee_per_session": positive(),
							"valid_from":      timestamp(),
							"valid_to":        timestamp(),
						},
					},
				},
			},
		},
	}
}
