// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	comments "github.com/dalemusser/projectflow/internal/app/store/comments"
	notifications "github.com/dalemusser/projectflow/internal/app/store/notifications"
	projects "github.com/dalemusser/projectflow/internal/app/store/projects"
	tasks "github.com/dalemusser/projectflow/internal/app/store/tasks"
	users "github.com/dalemusser/projectflow/internal/app/store/users"
	"github.com/dalemusser/projectflow/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates the collections (if missing) and tries to attach
// JSON-Schema validators. On servers without collMod validators (some
// DocumentDB versions) the validator is skipped with a log line.
func EnsureAll(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	var problems []string

	ensure := func(coll string, schema bson.M) {
		if _, err := ensureCollection(ctx, db, coll, logger); err != nil {
			problems = append(problems, coll+": "+err.Error())
			return
		}
		if err := setValidator(ctx, db, coll, schema); err != nil {
			if isNoSuchCommand(err) || isNotImplemented(err) {
				logger.Info("validator skipped (unsupported)", zap.String("collection", coll))
				return
			}
			problems = append(problems, coll+": "+err.Error())
			return
		}
		logger.Debug("validator ensured", zap.String("collection", coll))
	}

	for _, c := range Schemas() {
		ensure(c.Collection, c.Schema)
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// CollectionSchema pairs a collection with its validator document.
type CollectionSchema struct {
	Collection string
	Schema     bson.M
}

// Schemas lists every validated collection.
func Schemas() []CollectionSchema {
	return []CollectionSchema{
		{users.Collection, usersSchema()},
		{projects.Collection, projectsSchema()},
		{tasks.Collection, tasksSchema()},
		{comments.Collection, commentsSchema()},
		{notifications.Collection, notificationsSchema()},
	}
}

/* ---------------------- collection helpers ---------------------- */

func collectionExists(ctx context.Context, db *mongo.Database, name string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.M{"name": name})
	if err != nil {
		return false, err
	}
	return len(names) > 0, nil
}

// ensureCollection reports created==true only when it actually created name.
func ensureCollection(ctx context.Context, db *mongo.Database, name string, logger *zap.Logger) (created bool, err error) {
	if exists, err := collectionExists(ctx, db, name); err == nil && exists {
		return false, nil
	}
	if err := db.CreateCollection(ctx, name); err != nil {
		if isNamespaceExistsErr(err) {
			return false, nil
		}
		logger.Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return false, err
	}
	logger.Info("created collection", zap.String("collection", name))
	return true, nil
}

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	return db.RunCommand(ctx, cmd).Err()
}

/* ------------------------- error helpers ------------------------- */

func commandErr(err error, code int32, fragments ...string) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == code {
		return true
	}
	s := strings.ToLower(err.Error())
	for _, f := range fragments {
		if strings.Contains(s, f) {
			return true
		}
	}
	return false
}

func isNamespaceExistsErr(err error) bool {
	return commandErr(err, 48, "already exists", "namespace exists")
}

func isNoSuchCommand(err error) bool {
	return commandErr(err, 59, "no such command")
}

func isNotImplemented(err error) bool {
	return commandErr(err, 115, "not implemented", "not supported")
}

/* ------------------------- JSON-Schema docs ---------------------- */

var nonBlank = bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"}

func usersSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"name", "email", "password_hash", "role"},
			"properties": bson.M{
				"name":          nonBlank,
				"email":         nonBlank,
				"password_hash": nonBlank,
				"role":          enumOf(models.Roles),
				"avatar":        bson.M{"bsonType": "string"},
			},
		},
	}
}

func projectsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"name", "status", "created_by"},
			"properties": bson.M{
				"name":         nonBlank,
				"status":       enumOf(models.ProjectStatuses),
				"progress":     bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 0, "maximum": 100},
				"members":      bson.M{"bsonType": bson.A{"array", "null"}, "items": bson.M{"bsonType": "objectId"}},
				"created_by":   bson.M{"bsonType": "objectId"},
				"start_date":   bson.M{"bsonType": "date"},
				"end_date":     bson.M{"bsonType": "date"},
				"budget":       bson.M{"bsonType": "number", "minimum": 0},
				"spent_budget": bson.M{"bsonType": "number", "minimum": 0},
			},
		},
	}
}

func tasksSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"title", "status", "priority", "project_id"},
			"properties": bson.M{
				"title":    nonBlank,
				"status":   enumOf(models.TaskStatuses),
				"priority": enumOf(models.TaskPriorities),
				"project_id":    bson.M{"bsonType": "objectId"},
				"assignee_id":   bson.M{"bsonType": "objectId"},
				"reporter_id":   bson.M{"bsonType": "objectId"},
				"due_date":      bson.M{"bsonType": "date"},
				"tags":          bson.M{"bsonType": bson.A{"array", "null"}, "items": bson.M{"bsonType": "string"}},
				"time_estimate": bson.M{"bsonType": "number", "minimum": 0},
				"time_spent":    bson.M{"bsonType": "number", "minimum": 0},
			},
		},
	}
}

func commentsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"content", "author_id", "task_id", "created_at"},
			"properties": bson.M{
				"content":    nonBlank,
				"author_id":  bson.M{"bsonType": "objectId"},
				"task_id":    bson.M{"bsonType": "objectId"},
				"created_at": bson.M{"bsonType": "date"},
			},
		},
	}
}

func notificationsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"type", "title", "user_id", "read", "created_at"},
			"properties": bson.M{
				"type":       enumOf(models.NotificationTypes),
				"title":      nonBlank,
				"user_id":    bson.M{"bsonType": "objectId"},
				"read":       bson.M{"bsonType": "bool"},
				"data":       bson.M{"bsonType": "object"},
				"created_at": bson.M{"bsonType": "date"},
			},
		},
	}
}

func enumOf(values []string) bson.M {
	a := make(bson.A, 0, len(values))
	for _, v := range values {
		a = append(a, v)
	}
	return bson.M{"enum": a}
}
