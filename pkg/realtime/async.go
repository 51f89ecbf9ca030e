package realtime

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/pkg/jobs"
)

const jobTypeEvent = "realtime_event"

// AsyncSink moves delivery off the request path using the worker queue.
// Failed deliveries are retried by the queue and finally logged.
type AsyncSink struct {
	queue  *jobs.Queue
	logger *zap.Logger
}

// NewAsyncSink wires a queue whose handler forwards events to next.
func NewAsyncSink(next Sink, cfg jobs.QueueConfig) *AsyncSink {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	handler := func(ctx context.Context, job jobs.Job) error {
		event, ok := job.Payload.(Event)
		if !ok {
			return fmt.Errorf("unexpected payload %T", job.Payload)
		}
		return next.Publish(ctx, event)
	}
	return &AsyncSink{queue: jobs.NewQueue("realtime", handler, cfg), logger: cfg.Logger}
}

// Start launches the delivery workers.
func (s *AsyncSink) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains workers.
func (s *AsyncSink) Stop() {
	s.queue.Stop()
}

// Publish implements Sink. It never blocks on the downstream transport; when
// the queue is full the event is dropped and the error returned.
func (s *AsyncSink) Publish(ctx context.Context, event Event) error {
	if err := s.queue.Enqueue(jobs.Job{ID: uuid.NewString(), Type: jobTypeEvent, Payload: event}); err != nil {
		s.logger.Warn("failed to enqueue event", zap.String("event", event.Name), zap.Error(err))
		return err
	}
	return nil
}
