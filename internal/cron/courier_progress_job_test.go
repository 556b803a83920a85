package cron

import (
	"context"
	"errors"
	"testing"

	"github.com/tahanancrafts/marketplace-backend/pkg/logger"
)

type fakeAdvancer struct {
	count int
	err   error
	calls int
}

func (f *fakeAdvancer) AdvanceSimulated(context.Context) (int, error) {
	f.calls++
	return f.count, f.err
}

func TestCourierProgressJobRunsAdvancer(t *testing.T) {
	advancer := &fakeAdvancer{count: 2}
	job, err := NewCourierProgressJob(CourierProgressJobParams{
		Logger:   logger.New(logger.Options{ServiceName: "cron-test"}),
		Delivery: advancer,
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if advancer.calls != 1 {
		t.Fatalf("expected one advance call, got %d", advancer.calls)
	}
}

func TestCourierProgressJobPropagatesError(t *testing.T) {
	advancer := &fakeAdvancer{err: errors.New("boom")}
	job, err := NewCourierProgressJob(CourierProgressJobParams{
		Logger:   logger.New(logger.Options{ServiceName: "cron-test"}),
		Delivery: advancer,
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
