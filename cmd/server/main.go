// Package main is the entry point of the back office API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"

	"backoffice/internal/app"
	"backoffice/internal/config"
	"backoffice/internal/domain/reports"
	"backoffice/internal/infrastructure/cache"
	v1 "backoffice/internal/infrastructure/http/v1"
	"backoffice/internal/infrastructure/http/v1/handlers"
	"backoffice/internal/infrastructure/http/v1/middleware"
	"backoffice/internal/infrastructure/storage/postgres"
	"backoffice/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{Level: cfg.LogLevel, Development: cfg.Development()})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger.SetDefault(log)
	defer logger.Sync()

	ctx := context.Background()
	log.Info("starting backoffice server")

	// --- Database ---
	poolCfg := postgres.DefaultPoolConfig(cfg.DatabaseURL)
	poolCfg.MaxConns = int32(cfg.DBMaxConns)
	poolCfg.MinConns = int32(cfg.DBMinConns)
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	if err := postgres.ApplySchema(ctx, pool); err != nil {
		log.Fatalw("failed to apply schema", "error", err)
	}
	txm := postgres.NewTxManager(pool)

	// --- Dashboard cache ---
	var dashboardCache reports.Cache = cache.NewMemory(cfg.DashboardCacheTTL)
	var cachePing handlers.Pinger
	if cfg.RedisAddr != "" {
		rdb, err := cache.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Warnw("redis unavailable, caching dashboard in process", "addr", cfg.RedisAddr, "error", err)
		} else {
			defer rdb.Close()
			dashboardCache = cache.NewRedis(rdb, cfg.DashboardCacheTTL)
			cachePing = redisPinger{rdb.Ping}
			log.Infow("redis connected", "addr", cfg.RedisAddr)
		}
	}

	svc := app.NewServices(txm, app.InventoryConfig(cfg), dashboardCache)

	// --- Router ---
	if !cfg.Development() {
		gin.SetMode(gin.ReleaseMode)
	}
	routerCfg := v1.RouterConfig{
		Logger:    log,
		DB:        pool,
		Cache:     cachePing,
		Products:  svc.Inventory,
		Stock:     svc.Inventory,
		Sellers:   svc.Sellers,
		Sales:     svc.Sales,
		Invoices:  svc.Invoices,
		Returns:   svc.Returns,
		Payments:  svc.Payments,
		Dashboard: svc.Reports,
	}
	if cfg.IdempotencyEnabled {
		routerCfg.Idempotency = postgres.NewIdempotencyStore(txm, cfg.IdempotencyTTL)
	}
	router := v1.NewRouter(routerCfg)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", middleware.HeaderRequestID, middleware.HeaderIdempotencyKey},
		ExposedHeaders: []string{middleware.HeaderRequestID, middleware.HeaderTraceID, "Content-Disposition"},
	}).Handler(router)

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      gzhttp.GzipHandler(corsHandler),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "addr", cfg.HTTPAddr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}
	pool.LogStats(shutdownCtx)
	log.Info("server stopped")
}

// redisPinger adapts the redis client's Ping to handlers.Pinger.
type redisPinger struct {
	ping func(ctx context.Context) *redis.StatusCmd
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.ping(ctx).Err()
}
