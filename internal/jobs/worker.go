package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

// WorkerConfig collects what the worker needs to run.
type WorkerConfig struct {
	RedisOpts   asynq.RedisClientOpt
	Concurrency int

	// SubscriptionScan and ReminderInterval are the periods of the two
	// recurring scans.
	SubscriptionScan time.Duration
	ReminderInterval time.Duration
}

// Worker wraps the asynq server and the periodic scheduler.
type Worker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	scheduler *asynq.Scheduler
}

// NewWorker constructs the worker with both periodic tasks registered.
func NewWorker(cfg WorkerConfig, handlers *Handlers) (*Worker, error) {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 5
	}
	server := asynq.NewServer(cfg.RedisOpts, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			QueueDefault: 1,
		},
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskMaterializeSubscriptions, handlers.HandleMaterializeSubscriptions)
	mux.HandleFunc(TaskDebtReminders, handlers.HandleDebtReminders)

	scheduler := asynq.NewScheduler(cfg.RedisOpts, &asynq.SchedulerOpts{Location: time.UTC})
	crons := []struct {
		every time.Duration
		task  *asynq.Task
	}{
		{cfg.SubscriptionScan, NewMaterializeSubscriptionsTask()},
		{cfg.ReminderInterval, NewDebtRemindersTask()},
	}
	for _, c := range crons {
		if c.every <= 0 {
			continue
		}
		spec := fmt.Sprintf("@every %s", c.every)
		if _, err := scheduler.Register(spec, c.task, asynq.Queue(QueueDefault)); err != nil {
			return nil, fmt.Errorf("failed to register %s: %w", c.task.Type(), err)
		}
	}

	return &Worker{server: server, mux: mux, scheduler: scheduler}, nil
}

// Run processes jobs until the context is canceled.
func (w *Worker) Run(ctx context.Context) error {
	if err := w.scheduler.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- w.server.Run(w.mux)
	}()

	select {
	case <-ctx.Done():
		w.scheduler.Shutdown()
		w.server.Shutdown()
		return ctx.Err()
	case err := <-errCh:
		w.scheduler.Shutdown()
		return err
	}
}

// Client enqueues one-off runs of the periodic tasks, used to trigger
// a scan out of schedule.
type Client struct {
	client *asynq.Client
}

// NewClient constructs an enqueue-only client.
func NewClient(redisOpts asynq.RedisClientOpt) *Client {
	return &Client{client: asynq.NewClient(redisOpts)}
}

// EnqueueMaterializeSubscriptions queues an immediate subscription scan.
func (c *Client) EnqueueMaterializeSubscriptions(ctx context.Context) (*asynq.TaskInfo, error) {
	return c.client.EnqueueContext(ctx, NewMaterializeSubscriptionsTask(), asynq.Queue(QueueDefault))
}

// EnqueueDebtReminders queues an immediate debt reminder scan.
func (c *Client) EnqueueDebtReminders(ctx context.Context) (*asynq.TaskInfo, error) {
	return c.client.EnqueueContext(ctx, NewDebtRemindersTask(), asynq.Queue(QueueDefault))
}

// Close releases client resources.
func (c *Client) Close() error {
	return c.client.Close()
}
