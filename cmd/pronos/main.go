package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/omarshaarawi/pronos/internal/api/export"
	"github.com/omarshaarawi/pronos/internal/archive"
	"github.com/omarshaarawi/pronos/internal/config"
	"github.com/omarshaarawi/pronos/internal/scheduler"
	"github.com/omarshaarawi/pronos/internal/service"
)

var errRunFailed = errors.New("pipeline run had failing units")

func main() {
	if err := run(); err != nil {
		slog.Error("Error running pipeline", "error", err)
		os.Exit(1)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil {
		slog.Error("Error loading .env file", "error", err)
	}

	cfg, err := config.New()
	if err != nil {
		return err
	}

	store := archive.NewStore(cfg.Pipeline.DataDir)
	exportAPI := export.NewAPI(export.NewClient(cfg.Pipeline.SourceDir))
	pipeline := service.NewPipelineService(exportAPI, store, cfg.Pipeline)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := pipeline.Run(ctx)
	if err != nil {
		return err
	}
	fmt.Print(report.Summary())
	for _, e := range report.Errors {
		fmt.Printf("  %s/%s: %s\n", e.Stage, e.Unit, e.Error)
	}

	if !cfg.Pipeline.Watch {
		if report.Failed() {
			return errRunFailed
		}
		return nil
	}

	sched, err := scheduler.NewScheduler(ctx, pipeline, cfg.Pipeline.Cron, cfg.Pipeline.Location(), nil, nil)
	if err != nil {
		return err
	}
	if err := sched.Start(); err != nil {
		return err
	}
	defer func() {
		if err := sched.Stop(); err != nil {
			slog.Error("Error stopping scheduler", "error", err)
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down gracefully...")
	return nil
}
