package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"PostItBot/internal/app"
	"PostItBot/internal/auth"
	"PostItBot/internal/bot"
	"PostItBot/internal/config"
	"PostItBot/internal/database"
	"PostItBot/internal/scheduler"
	"PostItBot/internal/server"
	"PostItBot/internal/storage"

	"github.com/gin-gonic/gin"
)

func monitorStorage(ctx context.Context, cache *storage.NoteCache) {
	ticker := time.NewTicker(30 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			slog.Info("Note cache stats", slog.Any("stats", cache.GetStats()))
		}
	}
}

func fatal(msg string, err error) {
	slog.Error(msg, slog.Any("err", err))
	os.Exit(1)
}

func main() {
	envPath, envErr := config.LoadEnv()

	cfg, err := config.Load()
	if err != nil {
		fatal("Invalid configuration", err)
	}

	slog.SetDefault(config.NewLogger(os.Stderr, cfg.Log))
	if envErr != nil {
		slog.Warn("Continuing with system environment variables", slog.Any("err", envErr))
	} else {
		slog.Info("Loaded .env", slog.String("path", envPath))
	}

	if cfg.Secret == config.DefaultSecret {
		slog.Warn("SECRET_PASSWORD is not set, using the default password")
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		fatal("Database init failed", err)
	}
	defer database.Close(db)

	cache, err := storage.NewNoteCache(database.NewNoteStore(db), cfg.CacheSize, cfg.CacheTTL)
	if err != nil {
		fatal("Failed to create note cache", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go monitorStorage(ctx, cache)

	lifecycle := app.NewLifecycle()

	if cfg.HTTP.GinMode != "" {
		gin.SetMode(cfg.HTTP.GinMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	api := server.NewServer(cache, auth.NewGuard(cfg.Secret), lifecycle)

	botDone := make(chan struct{})
	if cfg.Bot.Enabled() {
		runner, err := bot.NewRunner(cfg.Bot, cache, cfg.HTTP.WebURL, lifecycle)
		if err != nil {
			fatal("Telegram bot init failed", err)
		}

		if webhook := runner.Webhook(); webhook != nil {
			api.MountWebhook(cfg.Bot.WebhookPath, webhook)
		}

		if err := runner.Start(ctx); err != nil {
			fatal("Telegram bot start failed", err)
		}

		go func() {
			defer close(botDone)
			if err := runner.Run(ctx); err != nil {
				slog.Error("Telegram bot failed", slog.Any("err", err))
			}
		}()

		if cfg.Digest.Enabled() {
			scheduler.NewScheduler(runner.MessageHandler(), cfg.Digest).StartDailyDigest(ctx)
		}
	} else {
		slog.Warn("TELEGRAM_BOT_TOKEN is not set, running without the Telegram bot")
		close(botDone)
	}

	srv := api.HTTPServer(cfg.HTTP.Addr())
	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Listening", slog.String("addr", srv.Addr), slog.String("web_url", cfg.HTTP.WebURL))
		serverErr <- server.ListenAndServe(srv)
	}()

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		if err != nil {
			slog.Error("Server error", slog.Any("err", err))
		}
		stop()
	}

	slog.Info("Shutting down server ...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server Shutdown", slog.Any("err", err))
	}

	select {
	case <-botDone:
	case <-shutdownCtx.Done():
		slog.Warn("Telegram bot did not stop in time")
	}

	slog.Info("Server gracefully stopped")
}
