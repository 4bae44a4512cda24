package scheduler

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/omarshaarawi/pronos/internal/models"
)

type fakeRunner struct {
	calls int
	err   error
}

func (f *fakeRunner) Run(ctx context.Context) (*models.RunReport, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	r := models.NewRunReport(time.Now())
	r.Processed(models.StageMatchdays)
	return r, nil
}

func TestRunPipeline(t *testing.T) {
	runner := &fakeRunner{}
	invalidated := 0
	var sent []string
	s, err := NewScheduler(context.Background(), runner, "0 6 * * *", time.UTC,
		func() { invalidated++ },
		func(msg string) error { sent = append(sent, msg); return nil })
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}

	s.runPipeline()
	if runner.calls != 1 || invalidated != 1 || len(sent) != 1 {
		t.Fatalf("calls = %d, invalidated = %d, sent = %d", runner.calls, invalidated, len(sent))
	}
	if !strings.Contains(sent[0], "matchdays: 1 processed") {
		t.Errorf("summary = %q", sent[0])
	}

	runner.err = context.Canceled
	s.runPipeline()
	if invalidated != 1 || len(sent) != 1 {
		t.Errorf("aborted run still invalidated (%d) or announced (%d)", invalidated, len(sent))
	}
}

func TestRunPipelineWithoutChat(t *testing.T) {
	runner := &fakeRunner{}
	s, err := NewScheduler(context.Background(), runner, "0 6 * * *", nil, nil, nil)
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}
	s.runPipeline()
	if runner.calls != 1 {
		t.Errorf("calls = %d, want 1", runner.calls)
	}
}

func TestStartRejectsBadCron(t *testing.T) {
	s, err := NewScheduler(context.Background(), &fakeRunner{}, "not a cron", time.UTC, nil, nil)
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}
	if err := s.Start(); err == nil {
		t.Error("Start with an invalid cron expression succeeded")
	}
}

func TestSendFailureIsLogged(t *testing.T) {
	s, err := NewScheduler(context.Background(), &fakeRunner{}, "0 6 * * *", time.UTC, nil,
		func(string) error { return errors.New("chat ID not set") })
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}
	s.runPipeline()
}
