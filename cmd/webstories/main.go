// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is the entry point for the web stories CMS. It loads
// configuration, connects to services, and runs one of the subcommands:
// serve (default), migrate, seed, or import-legacy.
package main

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/otel/trace"

	"webstories/internal/cache"
	"webstories/internal/config"
	"webstories/internal/database"
	"webstories/internal/handlers"
	"webstories/internal/legacy"
	"webstories/internal/media"
	"webstories/internal/middleware"
	"webstories/internal/render"
	"webstories/internal/router"
	"webstories/internal/session"
	"webstories/internal/storage"
	"webstories/internal/store"
	"webstories/internal/stories"
	"webstories/internal/telemetry"
	"webstories/web"
)

const serviceName = "webstories"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	setupLogger(cfg)

	cmd := "serve"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	if err := run(cmd, cfg); err != nil {
		slog.Error("command failed", "command", cmd, "error", err)
		os.Exit(1)
	}
}

// setupLogger installs the default logger: JSON in production, text in
// development.
func setupLogger(cfg *config.Config) {
	var h slog.Handler
	if cfg.IsDev() {
		h = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	} else {
		h = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	slog.SetDefault(slog.New(h))
}

func run(cmd string, cfg *config.Config) error {
	switch cmd {
	case "serve", "migrate", "seed", "import-legacy":
	default:
		return fmt.Errorf("unknown command %q (want serve, migrate, seed, or import-legacy)", cmd)
	}

	slog.Info("configuration loaded", "env", cfg.Env, "driver", cfg.DBDriver, "command", cmd)

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	switch cmd {
	case "migrate":
		return nil
	case "seed":
		return database.Seed(ctx, db, database.SeedOptions{
			AdminEmail:    cfg.AdminEmail,
			AdminPassword: cfg.AdminPassword,
			AdminName:     cfg.AdminName,
			Demo:          cfg.IsDev(),
		})
	case "import-legacy":
		res, err := legacy.Import(ctx, db)
		if err != nil {
			return err
		}
		slog.Info("legacy import finished",
			"imported", res.Imported,
			"slides", res.Slides,
			"skipped", res.Skipped,
			"failed", res.Failed,
		)
		return nil
	}
	return serve(cfg, db)
}

// openDatabase connects and applies pending migrations.
func openDatabase(cfg *config.Config) (*database.DB, error) {
	dialect, err := database.ParseDialect(cfg.DBDriver)
	if err != nil {
		return nil, err
	}
	db, err := database.Connect(dialect, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := database.Migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return db, nil
}

// openDisk returns the S3 disk when configured and the local media
// directory otherwise. The second value is the directory to serve at
// /media/, empty for S3.
func openDisk(cfg *config.Config) (storage.Disk, string, error) {
	s3Disk, err := storage.NewS3(storage.S3Config{
		Endpoint:  cfg.S3Endpoint,
		Region:    cfg.S3Region,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		Bucket:    cfg.S3Bucket,
		PublicURL: cfg.S3PublicURL,
	})
	if err != nil {
		return nil, "", fmt.Errorf("s3 storage: %w", err)
	}
	if s3Disk != nil {
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
		return s3Disk, "", nil
	}

	local, err := storage.NewLocal(cfg.MediaDir, "/media")
	if err != nil {
		return nil, "", fmt.Errorf("local storage: %w", err)
	}
	slog.Warn("s3 storage not configured, using local media directory", "dir", local.Root())
	return local, local.Root(), nil
}

func serve(cfg *config.Config, db *database.DB) error {
	shutdownTracing, err := telemetry.Setup(context.Background(), serviceName, cfg.OTLPEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			slog.Error("tracing shutdown failed", "error", err)
		}
	}()

	// Valkey backs sessions and the API response cache.
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyAddr(), cfg.ValkeyPassword, cfg.ValkeyDB)
	if err != nil {
		return fmt.Errorf("connect valkey: %w", err)
	}
	defer valkeyClient.Close()

	// In non-development environments, mark cookies as Secure (HTTPS-only).
	secureCookies := !cfg.IsDev()
	sessionStore := session.NewStore(valkeyClient, secureCookies)
	responseCache := cache.NewResponseCache(valkeyClient, cache.DefaultResponseTTL)

	renderer, err := render.New(cfg.IsDev())
	if err != nil {
		return fmt.Errorf("template renderer: %w", err)
	}

	disk, mediaDir, err := openDisk(cfg)
	if err != nil {
		return err
	}
	library := media.NewLibrary(disk, store.NewMediaStore(db))
	svc := stories.New(db, library, responseCache)

	static, err := fs.Sub(web.StaticFS, "static")
	if err != nil {
		return fmt.Errorf("static assets: %w", err)
	}

	loginLimiter := middleware.NewRateLimiter(5, time.Minute)
	defer loginLimiter.Stop()

	var tracer trace.Tracer
	if cfg.OTLPEndpoint != "" {
		tracer = telemetry.Tracer("http")
	}

	r := router.New(router.Deps{
		Sessions:      sessionStore,
		Tracer:        tracer,
		Admin:         handlers.NewAdmin(renderer, svc),
		Auth:          handlers.NewAuth(renderer, sessionStore, store.NewUserStore(db)),
		API:           handlers.NewAPI(svc, responseCache, cfg.APIPerPage, cfg.PublicURL),
		Public:        handlers.NewPublic(renderer),
		LoginLimiter:  loginLimiter,
		Static:        static,
		MediaDir:      mediaDir,
		SecureCookies: secureCookies,
	})

	// WriteTimeout covers multipart uploads with several slide images.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-quit:
		slog.Info("shutdown signal received", "signal", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}
