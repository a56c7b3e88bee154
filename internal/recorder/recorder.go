package recorder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/splitnest/splitnest/internal/events"
	"github.com/splitnest/splitnest/internal/model"
	"github.com/splitnest/splitnest/pkg/logger"
	"github.com/splitnest/splitnest/pkg/prom"
	"github.com/splitnest/splitnest/pkg/worker"
)

// ActivityStore persists activity rows. Create reports whether a row
// was actually inserted, so replays of the same event can be counted
// separately from first deliveries.
type ActivityStore interface {
	Create(ctx context.Context, activity *model.Activity) (bool, error)
}

type Config struct {
	WorkerCount    int
	QueueSize      int
	ProcessTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		WorkerCount:    4,
		QueueSize:      10_000,
		ProcessTimeout: 30 * time.Second,
	}
}

// job carries one delivered event through the worker pool. The result
// channel hands the outcome back to the stream consumer, which owns
// the ack decision.
type job struct {
	event      *events.Event
	resultChan chan error
	ctx        context.Context
}

// Recorder turns published domain events into activity feed rows.
// Deliveries are at-least-once, so every event passes through the
// Redis guard and a unique event_id insert before it counts.
type Recorder struct {
	store    ActivityStore
	guard    *Guard
	consumer *events.Consumer
	workers  *worker.WorkerManager
	config   Config
}

func New(store ActivityStore, guard *Guard, consumer *events.Consumer, config Config) *Recorder {
	if config.WorkerCount <= 0 {
		config.WorkerCount = 4
	}
	if config.QueueSize <= 0 {
		config.QueueSize = 10_000
	}
	if config.ProcessTimeout <= 0 {
		config.ProcessTimeout = 30 * time.Second
	}

	r := &Recorder{
		store:    store,
		guard:    guard,
		consumer: consumer,
		config:   config,
		workers:  worker.NewWorkerManager(config.QueueSize, config.WorkerCount, nil),
	}
	r.workers.SetWorker(r.work)
	return r
}

// Start begins consuming and blocks until the worker pool terminates.
func (r *Recorder) Start() error {
	if err := r.consumer.Consume(r.handle); err != nil {
		return err
	}
	logger.Info("activity recorder started", "workers", r.config.WorkerCount)
	return r.workers.Start()
}

// Stop drains the consumer first so no new jobs arrive, then stops
// the pool.
func (r *Recorder) Stop(timeout time.Duration) error {
	err := r.consumer.Stop(timeout)
	r.workers.Exit()
	return err
}

// handle bridges a stream delivery onto the worker pool and waits for
// the outcome, so the consumer's ack semantics stay intact.
func (r *Recorder) handle(ctx context.Context, e *events.Event) error {
	j := &job{
		event:      e,
		resultChan: make(chan error, 1),
		ctx:        ctx,
	}
	r.workers.Enqueue(j)

	select {
	case err := <-j.resultChan:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Recorder) work(workerIndex int, raw interface{}) {
	j, ok := raw.(*job)
	if !ok {
		logger.Error("unexpected job type on recorder pool", "worker", workerIndex)
		return
	}

	ctx, cancel := context.WithTimeout(j.ctx, r.config.ProcessTimeout)
	defer cancel()

	j.resultChan <- r.process(ctx, j.event)
}

func (r *Recorder) process(ctx context.Context, e *events.Event) error {
	if err := r.guard.Acquire(ctx, e.ID); err != nil {
		if errors.Is(err, ErrAlreadyRecorded) {
			prom.IncCounter(prom.SystemActivities, prom.MetricActivitiesDuplicate)
			return nil
		}
		// another consumer is on it, leave the entry pending
		return err
	}

	created, err := r.store.Create(ctx, toActivity(e))
	if err != nil {
		r.guard.Release(ctx, e.ID)
		return fmt.Errorf("failed to record activity: %w", err)
	}

	if created {
		prom.IncCounter(prom.SystemActivities, prom.MetricActivitiesRecorded)
	} else {
		// the row already existed, the unique event_id caught a replay
		prom.IncCounter(prom.SystemActivities, prom.MetricActivitiesDuplicate)
	}
	r.guard.MarkRecorded(ctx, e.ID)

	logger.Debug("activity recorded",
		"event_id", e.ID,
		"type", e.Type,
		"group_id", e.GroupID,
		"created", created,
	)
	return nil
}

func toActivity(e *events.Event) *model.Activity {
	var metadata string
	if len(e.Metadata) > 0 {
		raw, err := json.Marshal(e.Metadata)
		if err != nil {
			logger.Warn("failed to serialize event metadata", "event_id", e.ID, "error", err)
		} else {
			metadata = string(raw)
		}
	}

	return &model.Activity{
		EventID:     e.ID,
		GroupID:     e.GroupID,
		UserID:      e.UserID,
		Type:        e.Type,
		Description: e.Description,
		Metadata:    metadata,
		CreatedAt:   e.OccurredAt,
	}
}
