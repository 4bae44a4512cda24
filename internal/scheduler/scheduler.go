package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/omarshaarawi/pronos/internal/models"
)

// Runner runs the pipeline once.
type Runner interface {
	Run(ctx context.Context) (*models.RunReport, error)
}

type Scheduler struct {
	s           gocron.Scheduler
	runner      Runner
	cron        string
	onRun       func()
	sendMessage func(string) error
	ctx         context.Context
}

// NewScheduler reruns the pipeline on the cron expression, in loc. onRun is
// called after every completed run and sendMessage, when set, receives the run
// summary.
func NewScheduler(ctx context.Context, runner Runner, cron string, loc *time.Location, onRun func(), sendMessage func(string) error) (*Scheduler, error) {
	if loc == nil {
		loc = time.UTC
	}
	s, err := gocron.NewScheduler(
		gocron.WithLocation(loc),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	return &Scheduler{
		s:           s,
		runner:      runner,
		cron:        cron,
		onRun:       onRun,
		sendMessage: sendMessage,
		ctx:         ctx,
	}, nil
}

func (s *Scheduler) Start() error {
	_, err := s.s.NewJob(
		gocron.CronJob(s.cron, false),
		gocron.NewTask(s.runPipeline),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to create pipeline job: %w", err)
	}

	s.s.Start()
	slog.Info("Pipeline scheduled", "cron", s.cron)
	return nil
}

func (s *Scheduler) Stop() error {
	return s.s.Shutdown()
}

func (s *Scheduler) runPipeline() {
	report, err := s.runner.Run(s.ctx)
	if err != nil {
		slog.Error("Pipeline run aborted", "error", err)
		return
	}
	if s.onRun != nil {
		s.onRun()
	}
	if s.sendMessage == nil {
		return
	}
	if err := s.sendMessage(report.Summary()); err != nil {
		slog.Error("Failed to send run summary", "error", err)
	}
}
