package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"

	"linkup-api/internal/cache"
	"linkup-api/internal/config"
	"linkup-api/internal/database"
	"linkup-api/internal/middleware"
	"linkup-api/internal/modules/category"
	"linkup-api/internal/modules/user"
	"linkup-api/internal/notification"
	"linkup-api/internal/server"
	"linkup-api/internal/storage"
	"linkup-api/internal/token"
)

// Options for the CLI.
type Options struct {
	Port int `help:"Port to listen on" short:"p" default:"8000"`
}

func main() {
	cli := humacli.New(func(hooks humacli.Hooks, options *Options) {
		logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
		cfg := config.Load()
		if cfg == nil {
			logger.Error("failed to load configuration")
			os.Exit(1)
		}
		logger.Info("configuration loaded", "env", cfg.Server.Env)

		// --- Database & Cache ---
		dbPool := database.NewPostgresPool(cfg.Database.URL)
		if dbPool == nil {
			logger.Error("failed to connect to postgres")
			os.Exit(1)
		}
		hooks.OnStop(dbPool.Close)
		logger.Info("connected to postgres")

		redisClient := cache.NewRedisClient(cfg.Redis.URL)
		if redisClient == nil {
			logger.Error("failed to connect to redis")
			os.Exit(1)
		}
		hooks.OnStop(func() { redisClient.Close() })
		logger.Info("connected to redis")

		// --- Shared Infrastructure ---
		tokens := token.NewManager(
			cfg.JWT.Secret,
			time.Duration(cfg.JWT.AccessTTLMinutes)*time.Minute,
			time.Duration(cfg.JWT.RefreshTTLMinutes)*time.Minute,
		)

		emailSender := notification.NewSMTPEmailSender(
			cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From, logger,
		)
		notifier := notification.NewService(logger, emailSender, cfg.SMTP.From)

		blobs, err := storage.NewLocalStore(cfg.Storage.Dir)
		if err != nil {
			logger.Error("failed to initialize blob storage", "error", err)
			os.Exit(1)
		}

		// --- Module Initialization (Bottom-Up) ---
		userRepo := user.NewRepository(dbPool)
		userService := user.NewService(&user.Config{
			Repo:     userRepo,
			Logger:   logger,
			Config:   cfg,
			Tokens:   tokens,
			Notifier: notifier,
			Blobs:    blobs,
			Redis:    redisClient,
		})

		categoryRepo := category.NewRepository(dbPool)
		categoryService := category.NewService(&category.Config{
			Repo:     categoryRepo,
			Logger:   logger,
			Cache:    redisClient,
			CacheTTL: time.Duration(cfg.Cache.CategoryTTLSeconds) * time.Second,
		})

		guard := middleware.NewGuard(tokens, userService, logger)
		router := server.New(logger, guard, userService, categoryService)

		hooks.OnStart(func() {
			logger.Info(fmt.Sprintf("starting server on port %d", options.Port))
			if err := http.ListenAndServe(fmt.Sprintf(":%d", options.Port), router); err != nil {
				logger.Error("server failed", "error", err)
				os.Exit(1)
			}
		})
	})
	cli.Run()
}
