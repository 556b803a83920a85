package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tahanancrafts/marketplace-backend/pkg/logger"
)

type fakeEscalator struct {
	cutoff time.Time
	count  int
	err    error
}

func (f *fakeEscalator) EscalateDeliveredBefore(_ context.Context, cutoff time.Time) (int, error) {
	f.cutoff = cutoff
	return f.count, f.err
}

func TestAutoEscalateJobUsesConfiguredWindow(t *testing.T) {
	now := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	escalator := &fakeEscalator{count: 3}
	job, err := NewAutoEscalateJob(AutoEscalateJobParams{
		Logger:         logger.New(logger.Options{ServiceName: "cron-test"}),
		Orders:         escalator,
		EscalationDays: 7,
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	job.(*autoEscalateJob).now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := now.Add(-7 * 24 * time.Hour)
	if !escalator.cutoff.Equal(want) {
		t.Fatalf("unexpected cutoff: got %s want %s", escalator.cutoff, want)
	}
}

func TestAutoEscalateJobDefaultsWindow(t *testing.T) {
	escalator := &fakeEscalator{}
	job, err := NewAutoEscalateJob(AutoEscalateJobParams{
		Logger: logger.New(logger.Options{ServiceName: "cron-test"}),
		Orders: escalator,
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	if job.(*autoEscalateJob).days != defaultEscalationDays {
		t.Fatalf("expected default escalation window")
	}
}

func TestAutoEscalateJobPropagatesError(t *testing.T) {
	escalator := &fakeEscalator{err: errors.New("db down")}
	job, err := NewAutoEscalateJob(AutoEscalateJobParams{
		Logger: logger.New(logger.Options{ServiceName: "cron-test"}),
		Orders: escalator,
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
