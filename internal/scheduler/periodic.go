package scheduler

import (
	"context"
	"time"

	"imovel_portal_backend/platform/logger"
)

const (
	defaultSweepInterval    = 5 * time.Minute
	defaultDispatchInterval = 15 * time.Second
	defaultDispatchBatch    = 50
)

// PeriodicEnqueuer feeds recurring maintenance tasks to the worker queue:
// the stale-lead expiry sweep and the notification outbox drain.
type PeriodicEnqueuer struct {
	client           *Client
	log              *logger.Logger
	sweepInterval    time.Duration
	dispatchInterval time.Duration
}

func NewPeriodicEnqueuer(client *Client, log *logger.Logger, sweepInterval, dispatchInterval time.Duration) *PeriodicEnqueuer {
	if sweepInterval <= 0 {
		sweepInterval = defaultSweepInterval
	}
	if dispatchInterval <= 0 {
		dispatchInterval = defaultDispatchInterval
	}

	return &PeriodicEnqueuer{
		client:           client,
		log:              log,
		sweepInterval:    sweepInterval,
		dispatchInterval: dispatchInterval,
	}
}

func (e *PeriodicEnqueuer) Run(ctx context.Context) {
	if e == nil || e.client == nil {
		return
	}

	sweepTicker := time.NewTicker(e.sweepInterval)
	defer sweepTicker.Stop()

	dispatchTicker := time.NewTicker(e.dispatchInterval)
	defer dispatchTicker.Stop()

	if err := e.client.EnqueueLeadExpirySweep(ctx); err != nil {
		e.log.Warn("failed to enqueue lead expiry sweep", "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-sweepTicker.C:
			if err := e.client.EnqueueLeadExpirySweep(ctx); err != nil {
				e.log.Warn("failed to enqueue lead expiry sweep", "error", err)
			}
		case <-dispatchTicker.C:
			if err := e.client.EnqueueNotificationOutboxDue(ctx, defaultDispatchBatch); err != nil {
				e.log.Warn("failed to enqueue outbox dispatch", "error", err)
			}
		}
	}
}
