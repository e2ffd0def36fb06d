package scheduler

import (
	"context"
	"fmt"

	"imovel_portal_backend/platform/config"
	"imovel_portal_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// LeadSweeper marks stale pending leads as expired.
type LeadSweeper interface {
	ExpireStale(ctx context.Context) (int64, error)
}

// OutboxDispatcher delivers pending notification outbox records.
type OutboxDispatcher interface {
	DispatchDue(ctx context.Context, limit int) (int, error)
}

type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	leads  LeadSweeper
	outbox OutboxDispatcher
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, leads LeadSweeper, outbox OutboxDispatcher, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server: server,
		mux:    mux,
		leads:  leads,
		outbox: outbox,
		log:    log,
	}

	mux.HandleFunc(TaskLeadExpirySweep, w.handleLeadExpirySweep)
	mux.HandleFunc(TaskNotificationOutboxDue, w.handleNotificationOutboxDue)

	return w, nil
}

func (w *Worker) handleLeadExpirySweep(ctx context.Context, task *asynq.Task) error {
	if w.leads == nil {
		return nil
	}

	if _, err := ParseLeadExpirySweepPayload(task); err != nil {
		return err
	}

	expired, err := w.leads.ExpireStale(ctx)
	if err != nil {
		return err
	}

	if expired > 0 {
		w.log.Info("lead expiry sweep completed", "expired", expired)
	}
	return nil
}

func (w *Worker) handleNotificationOutboxDue(ctx context.Context, task *asynq.Task) error {
	if w.outbox == nil {
		return nil
	}

	payload, err := ParseNotificationOutboxDuePayload(task)
	if err != nil {
		return err
	}

	limit := payload.Limit
	if limit < 1 {
		limit = 50
	}

	dispatched, err := w.outbox.DispatchDue(ctx, limit)
	if err != nil {
		return err
	}

	if dispatched > 0 {
		w.log.Info("notification outbox dispatched", "count", dispatched)
	}
	return nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
