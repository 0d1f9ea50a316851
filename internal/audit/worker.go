package audit

import (
	"context"
	"log/slog"
)

// Sink receives events fanned out from the publisher's outbox.
type Sink interface {
	Publish(ctx context.Context, event Event) error
}

// Worker drains the publisher outbox into a sink. Persistence has already
// happened by the time an event reaches the outbox, so sink failures are
// logged and skipped rather than retried.
type Worker struct {
	inbox  <-chan Event
	sink   Sink
	logger *slog.Logger
}

func NewWorker(inbox <-chan Event, sink Sink, logger *slog.Logger) *Worker {
	return &Worker{inbox: inbox, sink: sink, logger: logger}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.sink.Publish(ctx, event); err != nil {
				w.logger.Error("event fan-out failed",
					"action", event.Action,
					"error", err.Error(),
				)
			}
		}
	}
}
