// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/projectflow/internal/app/realtime"
	"github.com/dalemusser/projectflow/internal/app/service"
	"github.com/dalemusser/projectflow/internal/app/system/auth"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// Store backends.
const (
	BackendMongo  = "mongo"
	BackendMemory = "memory"
)

// devJWTSecret is only acceptable when env is "dev".
const devJWTSecret = "dev-only-change-me-please-0123456789ABCDEF"

// appConfigKeys defines the configuration keys for ProjectFlow.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, jwt_secret, etc.
//   - Environment variables: PROJECTFLOW_MONGO_URI, PROJECTFLOW_JWT_SECRET, etc.
//   - Command-line flags: --mongo_uri, --jwt_secret, etc.
var appConfigKeys = []config.AppKey{
	{Name: "store_backend", Default: BackendMongo, Desc: "Storage backend: 'mongo' or 'memory'"},
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "projectflow", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size"},

	{Name: "jwt_secret", Default: devJWTSecret, Desc: "HMAC secret for bearer tokens (must be strong in production)"},
	{Name: "token_expiry", Default: "100h", Desc: "Bearer token lifetime (e.g., 100h, 30m)"},

	{Name: "require_auth", Default: true, Desc: "Require a bearer token on /api routes other than auth, health and socket"},
	{Name: "strict_references", Default: false, Desc: "Reject tasks and comments whose project or task does not exist"},
	{Name: "notify_write_policy", Default: service.PolicySaga, Desc: "Task + notification writes: 'saga' or 'txn'"},

	{Name: "cors_allowed_origins", Default: "*", Desc: "Comma-separated allowed origins for REST and websocket"},
	{Name: "ws_send_buffer", Default: realtime.DefaultSendBuffer, Desc: "Outbound frames buffered per websocket"},

	{Name: "store_ping_interval", Default: "15s", Desc: "How often the store connection is checked"},
	{Name: "login_rate_per_minute", Default: 10, Desc: "Login attempts allowed per client IP per minute"},

	{Name: "timeout_short", Default: "5s", Desc: "Timeout for single-document store calls"},
	{Name: "timeout_medium", Default: "10s", Desc: "Timeout for listings and multi-collection writes"},

	{Name: "audit_log_auth", Default: "log", Desc: "Auth event logging: 'log' or 'off'"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles .env files, config files,
// environment variables (WAFFLE_* for core, PROJECTFLOW_* for app) and
// flags, merged with precedence flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "PROJECTFLOW", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		StoreBackend:     strings.ToLower(strings.TrimSpace(appValues.String("store_backend"))),
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),

		JWTSecret:   appValues.String("jwt_secret"),
		TokenExpiry: appValues.Duration("token_expiry", auth.DefaultExpiry),

		RequireAuth:       appValues.Bool("require_auth"),
		StrictReferences:  appValues.Bool("strict_references"),
		NotifyWritePolicy: strings.ToLower(strings.TrimSpace(appValues.String("notify_write_policy"))),

		CORSAllowedOrigins: splitList(appValues.String("cors_allowed_origins")),
		WSSendBuffer:       appValues.Int("ws_send_buffer"),

		StorePingInterval:  appValues.Duration("store_ping_interval", 15*time.Second),
		LoginRatePerMinute: appValues.Int("login_rate_per_minute"),

		TimeoutShort:  appValues.Duration("timeout_short", 5*time.Second),
		TimeoutMedium: appValues.Duration("timeout_medium", 10*time.Second),

		AuditLogAuth: strings.ToLower(strings.TrimSpace(appValues.String("audit_log_auth"))),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation. Returning an error
// aborts startup.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	switch appCfg.StoreBackend {
	case BackendMongo:
		if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
			logger.Error("invalid MongoDB URI", zap.Error(err))
			return fmt.Errorf("invalid MongoDB URI: %w", err)
		}
		if strings.TrimSpace(appCfg.MongoDatabase) == "" {
			return fmt.Errorf("mongo_database is required when store_backend is %q", BackendMongo)
		}
	case BackendMemory:
		logger.Warn("using the in-memory store; data is lost on restart")
	default:
		return fmt.Errorf("store_backend must be %q or %q, got %q", BackendMongo, BackendMemory, appCfg.StoreBackend)
	}

	switch appCfg.NotifyWritePolicy {
	case service.PolicySaga, service.PolicyTxn:
	default:
		return fmt.Errorf("notify_write_policy must be %q or %q, got %q", service.PolicySaga, service.PolicyTxn, appCfg.NotifyWritePolicy)
	}

	switch appCfg.AuditLogAuth {
	case "log", "off":
	default:
		return fmt.Errorf("audit_log_auth must be 'log' or 'off', got %q", appCfg.AuditLogAuth)
	}

	if strings.TrimSpace(appCfg.JWTSecret) == "" {
		return fmt.Errorf("jwt_secret is required")
	}
	if coreCfg != nil && coreCfg.Env != "dev" {
		if appCfg.JWTSecret == devJWTSecret {
			return fmt.Errorf("jwt_secret must be changed from the development default outside dev")
		}
		if len(appCfg.JWTSecret) < auth.MinSecretLength {
			return fmt.Errorf("jwt_secret must be at least %d characters outside dev", auth.MinSecretLength)
		}
	}

	if appCfg.TokenExpiry <= 0 {
		return fmt.Errorf("token_expiry must be positive")
	}
	if appCfg.StorePingInterval <= 0 {
		return fmt.Errorf("store_ping_interval must be positive")
	}
	if appCfg.LoginRatePerMinute < 1 {
		return fmt.Errorf("login_rate_per_minute must be at least 1")
	}
	return nil
}

// splitList parses a comma-separated setting, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
