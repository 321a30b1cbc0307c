package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"workstack/backend/internal/audit"
	audithandler "workstack/backend/internal/audit/handler"
	auditrepo "workstack/backend/internal/audit/repository"
	auditservice "workstack/backend/internal/audit/service"
	"workstack/backend/internal/config"
	"workstack/backend/internal/db"
	"workstack/backend/internal/db/migrate"
	healthhandler "workstack/backend/internal/health/handler"
	identityhandler "workstack/backend/internal/identity/handler"
	identityservice "workstack/backend/internal/identity/service"
	membershiprepo "workstack/backend/internal/membership/repository"
	"workstack/backend/internal/metrics"
	orghandler "workstack/backend/internal/organization/handler"
	orgrepo "workstack/backend/internal/organization/repository"
	orgservice "workstack/backend/internal/organization/service"
	"workstack/backend/internal/security"
	"workstack/backend/internal/server"
	"workstack/backend/internal/server/middleware"
	sessionrepo "workstack/backend/internal/session/repository"
	taskhandler "workstack/backend/internal/task/handler"
	taskrepo "workstack/backend/internal/task/repository"
	taskservice "workstack/backend/internal/task/service"
	teamhandler "workstack/backend/internal/team/handler"
	teamrepo "workstack/backend/internal/team/repository"
	teamservice "workstack/backend/internal/team/service"
	"workstack/backend/internal/telemetry/otel"
	userhandler "workstack/backend/internal/user/handler"
	userrepo "workstack/backend/internal/user/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	if cfg.AutoMigrate {
		if err := migrate.Run(cfg.DatabaseURL, "up"); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatalf("migrate: %v", err)
		}
		log.Println("migrations applied")
	}

	ctx := context.Background()
	tracing, err := otel.NewProvider(ctx, cfg.OTLPEndpoint, "workstack-backend")
	if err != nil {
		log.Fatalf("telemetry: %v", err)
	}
	tracing.SetGlobal()

	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)

	tokens := security.NewTokenProvider(
		[]byte(cfg.JWTSecret), cfg.JWTIssuer, cfg.JWTAudience,
		cfg.AccessTTL(), cfg.RefreshTTL(),
	)
	hasher := security.NewHasher(cfg.BcryptCost)

	users := userrepo.NewPostgresRepository(conn)
	sessions := sessionrepo.NewPostgresRepository(conn)
	memberships := membershiprepo.NewPostgresRepository(conn)
	orgs := orgrepo.NewPostgresRepository(conn)
	teams := teamrepo.NewPostgresRepository(conn)
	tasks := taskrepo.NewPostgresRepository(conn)
	auditLogs := auditrepo.NewPostgresRepository(conn)

	authService := identityservice.NewAuthService(users, sessions, hasher, tokens, cfg.RefreshTTL())
	orgService := orgservice.NewOrgService(orgs, memberships, users)
	teamService := teamservice.NewTeamService(teams, memberships)
	taskService := taskservice.NewTaskService(tasks, memberships)
	auditService := auditservice.NewAuditService(auditLogs, memberships)

	authHandler := identityhandler.NewAuthHandler(authService, collector)
	userHandler := userhandler.NewUserHandler(users)
	orgHandler := orghandler.NewOrgHandler(orgService)
	teamHandler := teamhandler.NewTeamHandler(teamService)
	taskHandler := taskhandler.NewTaskHandler(taskService)
	auditHandler := audithandler.NewAuditHandler(auditService)

	limiter := middleware.NewRateLimiter(cfg.AuthRateLimitRPS, cfg.AuthRateLimitBurst)
	defer limiter.Stop()

	deps := server.Deps{
		AuthRoutes: authHandler.Routes,
		UserRoutes: userHandler.Routes,
		OrgRoutes: func(r chi.Router) {
			orgHandler.Routes(r, func(r chi.Router) {
				r.Route("/teams", teamHandler.Routes)
				r.Route("/lists", taskHandler.Routes)
				r.Route("/audit-logs", auditHandler.Routes)
			})
		},
		Auth:           middleware.Auth(tokens, users),
		Audit:          middleware.Audit(audit.NewLogger(auditLogs)),
		Metrics:        middleware.Metrics(collector),
		RateLimit:      limiter.Middleware,
		HealthHandler:  healthhandler.NewHealthHandler(conn),
		MetricsHandler: metrics.Handler(reg),
		CORSOrigins:    cfg.CORSOriginsList(),
	}
	if cfg.OTLPEndpoint != "" {
		deps.Tracing = otel.Middleware(tracing.TracerProvider.Tracer("workstack/backend"))
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.NewRouter(deps),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("HTTP server listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	if err := tracing.Shutdown(shutdownCtx); err != nil {
		log.Printf("telemetry shutdown: %v", err)
	}
	log.Println("HTTP server stopped")
}
