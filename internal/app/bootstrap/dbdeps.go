// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/projectflow/internal/app/realtime"
	"github.com/dalemusser/projectflow/internal/app/store"
	"github.com/dalemusser/projectflow/internal/app/system/workers"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds the backends shared by every hook after ConnectDB. The Mongo
// fields are nil with the memory backend.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	Store      store.Store
	Hub        *realtime.Hub
	StorePing  *workers.StorePinger
	schemaOnce *schemaSetup
}
