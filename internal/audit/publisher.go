package audit

import (
	"context"
	"log/slog"

	id "vaxledger/pkg/domain"
	"vaxledger/pkg/requestcontext"
)

// Publisher records structured ledger events. Persistence through the store
// is fail-closed: if the event cannot be appended, the calling operation
// must fail, keeping the trail complete. Fan-out to external subscribers is
// asynchronous through the outbox channel and never blocks a ledger
// operation.
type Publisher struct {
	store  Store
	outbox chan Event
	logger *slog.Logger
}

// Option configures the Publisher.
type Option func(*Publisher)

// WithLogger sets a logger for reporting dropped fan-out events.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// WithOutboxSize overrides the fan-out buffer size.
func WithOutboxSize(n int) Option {
	return func(p *Publisher) {
		p.outbox = make(chan Event, n)
	}
}

// NewPublisher creates a publisher writing to store.
func NewPublisher(store Store, opts ...Option) *Publisher {
	p := &Publisher{
		store:  store,
		outbox: make(chan Event, 256),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Emit appends the event to the trail and queues it for fan-out. The
// timestamp defaults to the request-scoped time so an operation's effects
// share one clock reading.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if err := p.store.Append(ctx, event); err != nil {
		return err
	}

	select {
	case p.outbox <- event:
	default:
		// The trail is already persisted; dropping fan-out is preferable to
		// blocking a ledger operation on a slow subscriber.
		if p.logger != nil {
			p.logger.Warn("audit outbox full, dropping fan-out event", "action", event.Action)
		}
	}
	return nil
}

// Outbox exposes the fan-out channel for the broadcast worker.
func (p *Publisher) Outbox() <-chan Event {
	return p.outbox
}

// ListByChild returns the persisted trail for one child record.
func (p *Publisher) ListByChild(ctx context.Context, childID id.ChildID) ([]Event, error) {
	return p.store.ListByChild(ctx, childID)
}
