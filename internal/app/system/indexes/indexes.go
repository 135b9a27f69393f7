// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	comments "github.com/dalemusser/projectflow/internal/app/store/comments"
	notifications "github.com/dalemusser/projectflow/internal/app/store/notifications"
	projects "github.com/dalemusser/projectflow/internal/app/store/projects"
	tasks "github.com/dalemusser/projectflow/internal/app/store/tasks"
	users "github.com/dalemusser/projectflow/internal/app/store/users"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup when the Mongo backend is selected. Each
collection's set is reconciled idempotently and problems are aggregated so
all of them show up in one startup error.
*/
func EnsureAll(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	var problems []string
	for _, spec := range Specs() {
		if err := ensureIndexSet(ctx, db.Collection(spec.Collection), spec.Models, logger); err != nil {
			problems = append(problems, spec.Collection+": "+err.Error())
		}
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// Spec is the desired index set of one collection.
type Spec struct {
	Collection string
	Models     []mongo.IndexModel
}

// Specs lists every index the stores rely on.
func Specs() []Spec {
	return []Spec{
		{users.Collection, []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetName("uniq_users_email").SetUnique(true),
			},
			{
				Keys:    bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}},
				Options: options.Index().SetName("idx_users_name_id"),
			},
		}},
		{projects.Collection, []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}},
				Options: options.Index().SetName("idx_projects_created_id"),
			},
		}},
		{tasks.Collection, []mongo.IndexModel{
			{
				// list-by-project in creation order; also serves project cascade deletes
				Keys:    bson.D{{Key: "project_id", Value: 1}, {Key: "created_at", Value: 1}, {Key: "_id", Value: 1}},
				Options: options.Index().SetName("idx_tasks_project_created_id"),
			},
			{
				Keys:    bson.D{{Key: "assignee_id", Value: 1}},
				Options: options.Index().SetName("idx_tasks_assignee").SetSparse(true),
			},
		}},
		{comments.Collection, []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "task_id", Value: 1}, {Key: "created_at", Value: 1}, {Key: "_id", Value: 1}},
				Options: options.Index().SetName("idx_comments_task_created_id"),
			},
		}},
		{notifications.Collection, []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}, {Key: "_id", Value: -1}},
				Options: options.Index().SetName("idx_notifications_user_created_id"),
			},
		}},
	}
}

/* -------------------------------------------------------------------------- */
/* reconcile one collection                                                   */
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

func boolVal(b *bool) bool { return b != nil && *b }

// isDuplicateKeyErr works across Mongo and DocumentDB.
func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	if mongo.IsDuplicateKeyError(err) {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "E11000") || strings.Contains(strings.ToLower(s), "duplicate key")
}

// Mongo reports IndexOptionsConflict when the same keys exist under another
// name or with other options.
func isOptionsConflictErr(err error) bool {
	return err != nil && strings.Contains(err.Error(), "IndexOptionsConflict")
}

func listExisting(ctx context.Context, coll *mongo.Collection, logger *zap.Logger) map[string]existingIndex {
	out := map[string]existingIndex{}
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		// a missing collection has no indexes yet
		return out
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			logger.Warn("failed to decode existing index", zap.String("collection", coll.Name()), zap.Error(err))
			continue
		}
		out[keySig(idx.Key)] = idx
	}
	return out
}

func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel, logger *zap.Logger) error {
	var errs []string
	existing := listExisting(ctx, coll, logger)

	for _, m := range models {
		name := *m.Options.Name
		unique := m.Options.Unique
		sig := keySig(m.Keys.(bson.D))
		start := time.Now()
		log := logger.With(zap.String("collection", coll.Name()), zap.String("name", name), zap.String("keys", sig))

		if ex, ok := existing[sig]; ok {
			if boolVal(unique) == boolVal(ex.Unique) && ex.Name == name {
				log.Debug("reusing existing index")
				continue
			}
			// options or name drifted: drop and recreate
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				errs = append(errs, fmt.Sprintf("%s: drop %s failed: %v", name, ex.Name, err))
				continue
			}
			log.Info("dropped drifted index", zap.String("was", ex.Name))
		}

		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			switch {
			case isDuplicateKeyErr(err) && boolVal(unique):
				errs = append(errs, fmt.Sprintf("%s: cannot create unique index (duplicates present)", name))
			case isOptionsConflictErr(err):
				errs = append(errs, fmt.Sprintf("%s: conflicts with an existing index on the same keys", name))
			default:
				errs = append(errs, fmt.Sprintf("%s: %v", name, err))
			}
			continue
		}
		log.Info("index ensured", zap.Bool("unique", boolVal(unique)), zap.Duration("took", time.Since(start)))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}
