// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Collection-specific index sets, keyed by collection name.
var sets = []struct {
	coll   string
	models []mongo.IndexModel
}{
	{"attendance", []mongo.IndexModel{
		// one record per slot; a second concurrent first-toggle fails here
		{
			Keys: bson.D{
				{Key: "student_id", Value: 1},
				{Key: "date", Value: 1},
				{Key: "time", Value: 1},
			},
			Options: options.Index().SetUnique(true).SetName("uniq_attendance_student_date_time"),
		},
		// month sheet
		{
			Keys:    bson.D{{Key: "group_id", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetName("idx_attendance_group_date"),
		},
	}},
	{"students", []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "group_id", Value: 1}},
			Options: options.Index().SetName("idx_students_group"),
		},
		{
			Keys: bson.D{
				{Key: "last_name_ci", Value: 1},
				{Key: "first_name_ci", Value: 1},
				{Key: "_id", Value: 1},
			},
			Options: options.Index().SetName("idx_students_lastci_firstci__id"),
		},
	}},
	{"groups", []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("idx_groups_nameci__id"),
		},
	}},
	{"payment_history", []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "student_id", Value: 1}, {Key: "paid_at", Value: -1}},
			Options: options.Index().SetName("idx_payments_student_paidat"),
		},
		{
			Keys:    bson.D{{Key: "op_id", Value: 1}},
			Options: options.Index().SetName("idx_payments_opid"),
		},
	}},
	{"archived_groups", []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "deleted_at", Value: -1}},
			Options: options.Index().SetName("idx_archived_deletedat"),
		},
	}},
	{"audit_events", []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_ts"),
		},
		{
			Keys: bson.D{
				{Key: "category", Value: 1},
				{Key: "event_type", Value: 1},
				{Key: "timestamp", Value: -1},
			},
			Options: options.Index().SetName("idx_audit_cat_type_ts"),
		},
		{
			Keys:    bson.D{{Key: "student_id", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_student_ts"),
		},
		{
			Keys:    bson.D{{Key: "group_id", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_group_ts"),
		},
	}},
}

/*
EnsureAll is called at startup. Reconciling each set is idempotent.
Errors are aggregated so every problem is visible and startup can fail fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string
	for _, s := range sets {
		if err := ensureIndexSet(ctx, db.Collection(s.coll), s.models); err != nil {
			problems = append(problems, s.coll+": "+err.Error())
		}
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Reconcile a set of desired indexes for one collection                      */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func boolOf(p *bool) bool { return p != nil && *p }

// Mongo/DocDB sometimes returns IndexOptionsConflict when an index with the
// same keys already exists under a different name.
func isOptionsConflictErr(err error) bool {
	return err != nil && strings.Contains(err.Error(), "IndexOptionsConflict")
}

func listExisting(ctx context.Context, coll *mongo.Collection) map[string]existingIndex {
	existing := map[string]existingIndex{} // sig -> index
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return existing
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			zap.L().Warn("failed to decode existing index",
				zap.String("collection", coll.Name()),
				zap.Error(err))
			continue
		}
		existing[keySig(idx.Key)] = idx
	}
	return existing
}

type desired struct {
	model  mongo.IndexModel
	name   string
	unique bool
	sig    string
}

func describe(m mongo.IndexModel) desired {
	d := desired{model: m, sig: keySig(m.Keys.(bson.D))}
	if m.Options != nil {
		if m.Options.Name != nil {
			d.name = *m.Options.Name
		}
		d.unique = boolOf(m.Options.Unique)
	}
	return d
}

// replace drops an existing index and creates the desired one in its place.
func replace(ctx context.Context, coll *mongo.Collection, old string, d desired) error {
	if _, err := coll.Indexes().DropOne(ctx, old); err != nil {
		return fmt.Errorf("%s(%s): drop %s failed: %w", coll.Name(), d.name, old, err)
	}
	return create(ctx, coll, d)
}

func create(ctx context.Context, coll *mongo.Collection, d desired) error {
	if _, err := coll.Indexes().CreateOne(ctx, d.model); err != nil {
		if d.unique && wafflemongo.IsDup(err) {
			return fmt.Errorf("%s(%s): cannot create unique index (duplicates present on %s)", coll.Name(), d.name, d.sig)
		}
		return fmt.Errorf("%s(%s): %w", coll.Name(), d.name, err)
	}
	return nil
}

func ensureOne(ctx context.Context, coll *mongo.Collection, d desired) (string, error) {
	ex, ok := listExisting(ctx, coll)[d.sig]
	switch {
	case ok && d.unique == boolOf(ex.Unique) && (d.name == "" || ex.Name == d.name):
		return "reused", nil
	case ok && d.unique == boolOf(ex.Unique):
		return "renamed", replace(ctx, coll, ex.Name, d)
	case ok:
		// options mismatch, e.g. upgrading to unique
		return "recreated", replace(ctx, coll, ex.Name, d)
	}

	err := create(ctx, coll, d)
	if err == nil || !isOptionsConflictErr(err) {
		return "created", err
	}
	// Created concurrently or under another name; look again.
	if ex, ok := listExisting(ctx, coll)[d.sig]; ok {
		if d.unique == boolOf(ex.Unique) {
			return "reused", nil
		}
		return "recreated", replace(ctx, coll, ex.Name, d)
	}
	return "", err
}

func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	var errs []string
	for _, m := range models {
		d := describe(m)
		start := time.Now()
		action, err := ensureOne(ctx, coll, d)
		fields := []zap.Field{
			zap.String("collection", coll.Name()),
			zap.String("name", d.name),
			zap.String("keys", d.sig),
			zap.Bool("unique", d.unique),
			zap.String("took", time.Since(start).String()),
		}
		if err != nil {
			zap.L().Warn("index ensure failed", append(fields, zap.Error(err))...)
			errs = append(errs, err.Error())
			continue
		}
		zap.L().Info("index ensured", append(fields, zap.String("action", action))...)
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}
