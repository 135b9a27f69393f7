package bootstrap

import (
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

func testAppConfig() AppConfig {
	return AppConfig{
		StoreBackend:       BackendMemory,
		MongoURI:           "mongodb://localhost:27017",
		MongoDatabase:      "projectflow_test",
		JWTSecret:          devJWTSecret,
		TokenExpiry:        time.Hour,
		RequireAuth:        true,
		NotifyWritePolicy:  "saga",
		WSSendBuffer:       16,
		StorePingInterval:  time.Hour,
		LoginRatePerMinute: 100,
		TimeoutShort:       5 * time.Second,
		TimeoutMedium:      10 * time.Second,
		AuditLogAuth:       "log",
	}
}

func TestValidateConfig(t *testing.T) {
	dev := &config.CoreConfig{Env: "dev"}
	prod := &config.CoreConfig{Env: "prod"}

	tests := []struct {
		name    string
		core    *config.CoreConfig
		mutate  func(*AppConfig)
		wantErr string
	}{
		{"memory ok", dev, func(*AppConfig) {}, ""},
		{"mongo ok", dev, func(c *AppConfig) { c.StoreBackend = BackendMongo }, ""},
		{"bad backend", dev, func(c *AppConfig) { c.StoreBackend = "redis" }, "store_backend"},
		{"bad policy", dev, func(c *AppConfig) { c.NotifyWritePolicy = "2pc" }, "notify_write_policy"},
		{"bad audit", dev, func(c *AppConfig) { c.AuditLogAuth = "db" }, "audit_log_auth"},
		{"empty secret", dev, func(c *AppConfig) { c.JWTSecret = " " }, "jwt_secret is required"},
		{"dev secret in prod", prod, func(*AppConfig) {}, "development default"},
		{"short secret in prod", prod, func(c *AppConfig) { c.JWTSecret = "short" }, "at least"},
		{"strong secret in prod", prod, func(c *AppConfig) { c.JWTSecret = strings.Repeat("k", 48) }, ""},
		{"short secret in dev", dev, func(c *AppConfig) { c.JWTSecret = "short" }, ""},
		{"zero rate", dev, func(c *AppConfig) { c.LoginRatePerMinute = 0 }, "login_rate_per_minute"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testAppConfig()
			tt.mutate(&cfg)
			err := ValidateConfig(tt.core, cfg, zap.NewNop())
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" https://a.example.com, ,https://b.example.com ,")
	if len(got) != 2 || got[0] != "https://a.example.com" || got[1] != "https://b.example.com" {
		t.Errorf("splitList: got %q", got)
	}
	if splitList("") != nil {
		t.Error("splitList of empty string should be nil")
	}
}
