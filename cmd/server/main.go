package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "hackathon/docs" // swagger docs

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"hackathon/internal/auth"
	"hackathon/internal/cache"
	"hackathon/internal/config"
	"hackathon/internal/db"
	"hackathon/internal/handler"
	"hackathon/internal/logger"
	"hackathon/internal/metrics"
	"hackathon/internal/repository"
	"hackathon/internal/router"
	"hackathon/internal/service"
)

const shutdownTimeout = 10 * time.Second

// @title Hackathon Registration API
// @version 1.0
// @description Team registration, participant accounts and admin management for the hackathon.
// @host localhost:5000
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()
	log := logger.New("hackathon-api", cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	gormDB, err := db.Open(cfg)
	if err != nil {
		log.Error("database init", "error", err)
		os.Exit(1)
	}
	if cfg.ResetDB {
		log.Warn("RESET_DB=true detected, dropping all tables")
		db.Reset(gormDB, log)
	}
	if err := db.Migrate(gormDB); err != nil {
		log.Error("migrate", "error", err)
		os.Exit(1)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()
	pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	if err := cacheClient.Ping(pingCtx); err != nil {
		log.Warn("redis unreachable, continuing without cache", "addr", cfg.RedisAddr, "error", err)
	}
	cancel()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	adminHash, err := adminPasswordHash(cfg)
	if err != nil {
		log.Error("hash admin password", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	teamRepo := repository.NewTeamRepository(gormDB)

	// Initialize services
	jwtService := auth.NewJWTService(cfg.JWTSecretUser, cfg.JWTSecretAdmin, cfg.JWTExpire)
	validator := service.NewValidator()
	authService := service.NewAuthService(userRepo, cacheClient, jwtService, service.AdminIdentity{
		Email:        cfg.AdminEmail,
		Name:         cfg.AdminName,
		PasswordHash: adminHash,
	})
	userService := service.NewUserService(userRepo, cacheClient)
	teamService := service.NewTeamService(teamRepo, service.NewTeamValidator(validator, teamRepo), cacheClient, m, cfg.MaxTeams, log)

	e := echo.New()
	router.Register(e, router.Dependencies{
		Config:    cfg,
		Logger:    log,
		JWT:       jwtService,
		Users:     userService,
		Validator: validator,
		Cache:     cacheClient,
		Metrics:   m,
		Gatherer:  registry,
	}, router.Handlers{
		Auth:   handler.NewAuthHandler(authService),
		Team:   handler.NewTeamHandler(teamService),
		User:   handler.NewUserHandler(userService, teamService),
		Status: handler.NewStatusHandler(teamService, cfg.Env),
	})

	log.Info("swagger documentation available", "url", swaggerURL(cfg.SwaggerHost, cfg.ServerPort))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		addr := ":" + cfg.ServerPort
		log.Info("server starting", "addr", addr, "environment", cfg.Env, "max_teams", cfg.MaxTeams)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server start", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", "error", err)
	}
	if sqlDB, err := gormDB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// adminPasswordHash prefers a precomputed bcrypt hash and otherwise hashes the
// plaintext password once at startup.
func adminPasswordHash(cfg *config.Config) (string, error) {
	if cfg.AdminPasswordHash != "" {
		return cfg.AdminPasswordHash, nil
	}
	return auth.HashPassword(cfg.AdminPassword)
}

func swaggerURL(host, port string) string {
	if host == "" {
		return "http://localhost:" + port + "/swagger/index.html"
	}
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}
	return strings.TrimSuffix(host, "/") + "/swagger/index.html"
}
