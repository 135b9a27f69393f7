// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables (PROJECTFLOW_*), configuration
// files, or command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig
// covers ports, TLS, log level and the environment name; everything the
// project tracker itself needs lives here.
type AppConfig struct {
	// Storage
	StoreBackend     string // "mongo" or "memory"
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64

	// Bearer tokens
	JWTSecret   string        // HMAC key for signing tokens (must be strong in production)
	TokenExpiry time.Duration // Token lifetime

	// Behaviour
	RequireAuth       bool   // Reject unauthenticated /api calls (auth, health and socket excepted)
	StrictReferences  bool   // Reject tasks/comments whose parent does not exist
	NotifyWritePolicy string // "saga" or "txn"

	// HTTP and realtime
	CORSAllowedOrigins []string // Also used as the websocket Origin allow-list
	WSSendBuffer       int      // Outbound frames queued per socket before drops

	// Background work and limits
	StorePingInterval  time.Duration
	LoginRatePerMinute int

	// Timeouts for store calls made by handlers
	TimeoutShort  time.Duration
	TimeoutMedium time.Duration

	// Audit logging of auth events: "log" or "off"
	AuditLogAuth string
}
