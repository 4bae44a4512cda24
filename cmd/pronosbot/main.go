package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/omarshaarawi/pronos/internal/api/export"
	"github.com/omarshaarawi/pronos/internal/archive"
	"github.com/omarshaarawi/pronos/internal/bot"
	"github.com/omarshaarawi/pronos/internal/config"
	"github.com/omarshaarawi/pronos/internal/repository/memory"
	"github.com/omarshaarawi/pronos/internal/scheduler"
	"github.com/omarshaarawi/pronos/internal/service"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Error running application", "error", err)
		os.Exit(1)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil {
		slog.Error("Error loading .env file", "error", err)
	}

	cfg, err := config.NewBot()
	if err != nil {
		return err
	}

	store := archive.NewStore(cfg.Pipeline.DataDir)
	exportAPI := export.NewAPI(export.NewClient(cfg.Pipeline.SourceDir))
	pipeline := service.NewPipelineService(exportAPI, store, cfg.Pipeline)

	repo := memory.NewRepository(cfg.Pipeline.CacheTTL)
	archiveService := service.NewArchiveService(store, repo)

	telegramBot, err := bot.NewTelegramBot(cfg.TelegramBot.Token, cfg.TelegramBot.ChatID, archiveService)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var announce func(string) error
	if cfg.TelegramBot.ChatID != 0 {
		announce = telegramBot.SendMessage
	}
	sched, err := scheduler.NewScheduler(ctx, pipeline, cfg.Pipeline.Cron, cfg.Pipeline.Location(), archiveService.Invalidate, announce)
	if err != nil {
		return err
	}

	if err := sched.Start(); err != nil {
		return err
	}
	defer func() {
		err := sched.Stop()
		if err != nil {
			slog.Error("Error stopping scheduler", "error", err)
		}
	}()

	http.HandleFunc("/", healthCheckHandler)

	go func() {
		slog.Info("Health endpoint listening", "addr", cfg.TelegramBot.HealthAddr)
		if err := http.ListenAndServe(cfg.TelegramBot.HealthAddr, nil); err != nil {
			slog.Error("Error starting HTTP server", "error", err)
		}
	}()

	go func() {
		if err := telegramBot.Start(ctx); err != nil {
			slog.Error("Error running telegram bot", "error", err)
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down gracefully...")

	return nil
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
