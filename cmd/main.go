package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"northwind/internal"
	"northwind/internal/auth"
	"northwind/internal/config"
	"northwind/internal/db"
	"northwind/internal/handler"
	"northwind/internal/logger"
	"northwind/internal/report"
	"northwind/internal/repository"
	"northwind/internal/schema"
)

func main() {
	debugFlag := flag.Bool("d", false, "enable debug logging")
	migrateFlag := flag.Bool("migrate", false, "apply pending migrations before serving")
	flag.Parse()

	cfg := config.LoadConfig()
	if err := logger.Init(cfg.LogDir); err != nil {
		os.Exit(1)
	}
	logger.SetLevel(cfg.LogLevel)
	if *debugFlag {
		logger.SetDebug(true)
	}

	root, err := internal.FindRepoRoot()
	if err != nil {
		log.Error().Err(err).Msg("repo_root_not_found")
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := db.NewPostgres(ctx, cfg.PostgresDSN, cfg.Pool)
	if err != nil {
		log.Error().Err(err).Msg("postgres_init_failed")
		os.Exit(1)
	}
	defer pool.Close()
	log.Info().Msg("postgres_connected")

	if *migrateFlag {
		if err := runMigrations(root, cfg.PostgresDSN); err != nil {
			log.Error().Err(err).Msg("migrations_failed")
			os.Exit(1)
		}
		log.Info().Msg("✅ migrations applied")
	}

	schemasDir := cfg.SchemasDir
	if !filepath.IsAbs(schemasDir) {
		schemasDir = filepath.Join(root, schemasDir)
	}
	reg, err := schema.Load(schemasDir)
	if err != nil {
		log.Error().Err(err).Msg("registry_init_failed")
		os.Exit(1)
	}

	// Redis is optional: без него отчёты просто считаются каждый раз.
	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = db.NewRedis(cfg.Redis.Addr)
		if err := db.PingRedis(ctx, rdb); err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("⚠️ redis unreachable, report cache disabled")
			rdb = nil
		} else {
			log.Info().Str("addr", cfg.Redis.Addr).Msg("redis_connected")
		}
	}

	store := repository.NewStore(pool, reg)
	reports := report.NewService(store.Reports, rdb, time.Duration(cfg.Redis.ReportCacheTTL)*time.Second)

	var jwtv *auth.JWTValidator
	if cfg.Auth.Enabled {
		jwtv, err = auth.NewJWTValidator(cfg.Auth.JWT)
		if err != nil {
			log.Error().Err(err).Msg("auth_init_failed")
			os.Exit(1)
		}
		log.Info().Str("type", cfg.Auth.JWT.ValidationType).Msg("jwt_auth_enabled")
	}

	r := handler.NewRouter(cfg, reg, store, reports, rdb, jwtv)
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msgf("🚀 Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server_error")
			os.Exit(1)
		}
	}()

	stop, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	<-stop.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown_failed")
	}
	log.Info().Msg("server_stopped")
}

// runMigrations applies all pending up migrations from migrations/.
func runMigrations(root, dsn string) error {
	src := "file://" + filepath.Join(root, "migrations")
	m, err := migrate.New(src, dsn)
	if err != nil {
		return err
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
