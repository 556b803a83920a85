package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/tahanancrafts/marketplace-backend/pkg/logger"
)

const defaultEscalationDays = 7

// deliveredEscalator is the slice of the orders service the job drives.
type deliveredEscalator interface {
	EscalateDeliveredBefore(ctx context.Context, cutoff time.Time) (int, error)
}

// AutoEscalateJobParams configure the delivered-order escalation job.
type AutoEscalateJobParams struct {
	Logger         *logger.Logger
	Orders         deliveredEscalator
	EscalationDays int
}

// NewAutoEscalateJob builds the cron job that moves delivered orders to the
// review stage once the buyer confirmation window lapses.
func NewAutoEscalateJob(params AutoEscalateJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("orders service required")
	}
	days := params.EscalationDays
	if days <= 0 {
		days = defaultEscalationDays
	}
	return &autoEscalateJob{
		logg:   params.Logger,
		orders: params.Orders,
		days:   days,
		now:    time.Now,
	}, nil
}

type autoEscalateJob struct {
	logg   *logger.Logger
	orders deliveredEscalator
	days   int
	now    func() time.Time
}

func (j *autoEscalateJob) Name() string { return "order-auto-escalate" }

func (j *autoEscalateJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-time.Duration(j.days) * 24 * time.Hour)
	escalated, err := j.orders.EscalateDeliveredBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("escalate delivered orders: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{"count": escalated})
	j.logg.Info(logCtx, "delivered order escalation complete")
	return nil
}
