// internal/app/store/store.go

// Package store defines the storage capability the service layer depends on.
//
// Two implementations exist: the Mongo-backed stores in the sibling packages
// (userstore, projectstore, taskstore, commentstore, notificationstore) and the
// in-memory arena in memstore. Which one is used is decided once, at startup,
// from configuration.
package store

import (
	"context"
	"errors"

	"github.com/dalemusser/projectflow/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrNotFound is returned when an id (or email) does not resolve to a document.
	ErrNotFound = errors.New("document not found")
	// ErrDuplicate is returned when a unique constraint (user email) is violated.
	ErrDuplicate = errors.New("duplicate key")
)

// Users persists user accounts.
type Users interface {
	Create(ctx context.Context, u models.User) (models.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	GetMany(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
	List(ctx context.Context) ([]models.User, error)
}

// Projects persists projects.
type Projects interface {
	Create(ctx context.Context, p models.Project) (models.Project, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Project, error)
	List(ctx context.Context) ([]models.Project, error)
	Update(ctx context.Context, id primitive.ObjectID, patch models.ProjectPatch) (models.Project, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// TaskFilter narrows a task listing. A nil field matches everything.
type TaskFilter struct {
	ProjectID *primitive.ObjectID
}

// Tasks persists tasks.
type Tasks interface {
	Create(ctx context.Context, t models.Task) (models.Task, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Task, error)
	List(ctx context.Context, f TaskFilter) ([]models.Task, error)
	Update(ctx context.Context, id primitive.ObjectID, patch models.TaskPatch) (models.Task, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByProject(ctx context.Context, projectID primitive.ObjectID) (int64, error)
}

// Comments persists task comments, oldest first on listing.
type Comments interface {
	Create(ctx context.Context, c models.Comment) (models.Comment, error)
	ListByTask(ctx context.Context, taskID primitive.ObjectID) ([]models.Comment, error)
}

// Notifications persists notifications, newest first on listing.
type Notifications interface {
	Create(ctx context.Context, n models.Notification) (models.Notification, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error)
	MarkRead(ctx context.Context, id primitive.ObjectID) (models.Notification, error)
}

// Transactor runs fn so that every write made with the context it receives
// commits or aborts together. Implementations that cannot provide that
// guarantee return ErrTxnUnsupported without calling fn.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ErrTxnUnsupported signals that the backend cannot run multi-document transactions.
var ErrTxnUnsupported = errors.New("transactions not supported by this store")

// Pinger reports backend reachability for health checks and the reconnect worker.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Store bundles every collection the application uses.
type Store struct {
	Backend       string // "mongo" or "memory"
	Users         Users
	Projects      Projects
	Tasks         Tasks
	Comments      Comments
	Notifications Notifications
	Tx            Transactor
	Pinger        Pinger
}
