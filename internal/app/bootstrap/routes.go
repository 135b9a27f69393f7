// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	authfeature "github.com/dalemusser/projectflow/internal/app/features/auth"
	healthfeature "github.com/dalemusser/projectflow/internal/app/features/health"
	notificationsfeature "github.com/dalemusser/projectflow/internal/app/features/notifications"
	projectsfeature "github.com/dalemusser/projectflow/internal/app/features/projects"
	tasksfeature "github.com/dalemusser/projectflow/internal/app/features/tasks"
	usersfeature "github.com/dalemusser/projectflow/internal/app/features/users"
	"github.com/dalemusser/projectflow/internal/app/realtime"
	"github.com/dalemusser/projectflow/internal/app/service"
	"github.com/dalemusser/projectflow/internal/app/system/auditlog"
	"github.com/dalemusser/projectflow/internal/app/system/auth"
	"github.com/dalemusser/projectflow/internal/app/system/httpjson"
	"github.com/dalemusser/projectflow/internal/app/system/ratelimit"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// Startup have completed. ProjectFlow wires the token manager, the domain
// service (publishing through the realtime hub) and mounts every feature
// under /api. /metrics serves Prometheus.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	tokens, err := auth.NewTokenManager(appCfg.JWTSecret, appCfg.TokenExpiry, logger)
	if err != nil {
		logger.Error("token manager init failed", zap.Error(err))
		return nil, err
	}

	var pub service.Publisher
	if deps.Hub != nil {
		pub = deps.Hub
	}
	svc := service.New(deps.Store, pub, tokens, service.Options{
		StrictReferences:  appCfg.StrictReferences,
		NotifyWritePolicy: appCfg.NotifyWritePolicy,
	}, logger.Named("service"))

	audit := auditlog.New(logger, auditlog.Config{Auth: appCfg.AuditLogAuth})
	loginLimiter := ratelimit.NewLoginLimiter(appCfg.LoginRatePerMinute)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(accessLog(logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: corsOrigins(appCfg.CORSAllowedOrigins),
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(api chi.Router) {
		// Loads the caller from "Authorization: Bearer"; never rejects by itself.
		api.Use(tokens.LoadTokenUser)

		api.NotFound(func(w http.ResponseWriter, r *http.Request) {
			httpjson.WriteMessage(w, http.StatusNotFound, "not found")
		})
		api.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
			httpjson.WriteMessage(w, http.StatusMethodNotAllowed, "method not allowed")
		})

		// Public endpoints
		healthHandler := healthfeature.NewHandler(deps.Store, logger)
		api.Mount("/health", healthfeature.Routes(healthHandler))

		authHandler := authfeature.NewHandler(svc, loginLimiter, audit, logger)
		api.Mount("/auth", authfeature.Routes(authHandler))

		if deps.Hub != nil {
			api.Handle("/socket", realtime.NewServer(deps.Hub, appCfg.CORSAllowedOrigins, logger.Named("realtime")))
		}

		// Everything else needs a signed-in caller unless require_auth is off.
		api.Group(func(p chi.Router) {
			if appCfg.RequireAuth {
				p.Use(auth.RequireSignedIn)
			}

			projectsHandler := projectsfeature.NewHandler(svc, logger)
			p.Mount("/projects", projectsfeature.Routes(projectsHandler))

			tasksHandler := tasksfeature.NewHandler(svc, logger)
			p.Mount("/tasks", tasksfeature.Routes(tasksHandler))

			notificationsHandler := notificationsfeature.NewHandler(svc, logger)
			p.Mount("/notifications", notificationsfeature.Routes(notificationsHandler))

			usersHandler := usersfeature.NewHandler(svc, logger)
			p.Mount("/users", usersfeature.Routes(usersHandler))
		})
	})

	logger.Info("routes ready",
		zap.String("store", deps.Store.Backend),
		zap.Bool("require_auth", appCfg.RequireAuth),
		zap.Bool("strict_references", appCfg.StrictReferences),
		zap.String("notify_write_policy", svc.Options().NotifyWritePolicy))
	return r, nil
}

func corsOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
