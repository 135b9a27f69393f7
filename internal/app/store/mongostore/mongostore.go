// internal/app/store/mongostore/mongostore.go

// Package mongostore assembles the Mongo-backed collection stores into a
// store.Store.
package mongostore

import (
	"context"

	"github.com/dalemusser/projectflow/internal/app/store"
	commentstore "github.com/dalemusser/projectflow/internal/app/store/comments"
	notificationstore "github.com/dalemusser/projectflow/internal/app/store/notifications"
	projectstore "github.com/dalemusser/projectflow/internal/app/store/projects"
	taskstore "github.com/dalemusser/projectflow/internal/app/store/tasks"
	userstore "github.com/dalemusser/projectflow/internal/app/store/users"
	"github.com/dalemusser/projectflow/internal/app/system/txn"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// New builds a store.Store over db.
func New(db *mongo.Database) store.Store {
	b := backend{client: db.Client()}
	return store.Store{
		Backend:       "mongo",
		Users:         userstore.New(db),
		Projects:      projectstore.New(db),
		Tasks:         taskstore.New(db),
		Comments:      commentstore.New(db),
		Notifications: notificationstore.New(db),
		Tx:            b,
		Pinger:        b,
	}
}

type backend struct {
	client *mongo.Client
}

// WithTransaction runs fn in a transaction. Standalone servers cannot, in
// which case store.ErrTxnUnsupported is returned; no write inside fn has
// taken effect at that point.
func (b backend) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	err := txn.Run(ctx, b.client, fn)
	if txn.IsNotSupported(err) {
		return store.ErrTxnUnsupported
	}
	return err
}

func (b backend) Ping(ctx context.Context) error {
	return b.client.Ping(ctx, readpref.Primary())
}
