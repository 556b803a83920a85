package cron

import (
	"context"
	"fmt"

	"github.com/tahanancrafts/marketplace-backend/pkg/logger"
)

// simulatedAdvancer is the slice of the delivery service the job drives.
type simulatedAdvancer interface {
	AdvanceSimulated(ctx context.Context) (int, error)
}

// CourierProgressJobParams configure the simulated courier job.
type CourierProgressJobParams struct {
	Logger   *logger.Logger
	Delivery simulatedAdvancer
}

// NewCourierProgressJob builds the dev-only cron job that walks simulated
// bookings through the courier lifecycle in place of real webhooks.
func NewCourierProgressJob(params CourierProgressJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Delivery == nil {
		return nil, fmt.Errorf("delivery service required")
	}
	return &courierProgressJob{
		logg:     params.Logger,
		delivery: params.Delivery,
	}, nil
}

type courierProgressJob struct {
	logg     *logger.Logger
	delivery simulatedAdvancer
}

func (j *courierProgressJob) Name() string { return "courier-progress" }

func (j *courierProgressJob) Run(ctx context.Context) error {
	advanced, err := j.delivery.AdvanceSimulated(ctx)
	if err != nil {
		return fmt.Errorf("advance simulated deliveries: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{"count": advanced})
	j.logg.Info(logCtx, "simulated courier progress complete")
	return nil
}
