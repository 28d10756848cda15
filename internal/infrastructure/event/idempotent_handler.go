package event

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/saleledger/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// IdempotencyStats counts what an IdempotentHandler did with the events it saw.
type IdempotencyStats struct {
	EventsProcessed int64 `json:"events_processed"`
	EventsDuplicate int64 `json:"events_duplicate"`
	EventsFailed    int64 `json:"events_failed"`
}

// IdempotentHandler forwards an event to the wrapped handler only the first
// time its ID is seen within the configured TTL. Redelivery of a sale event
// would otherwise count it twice in the ledger metrics.
type IdempotentHandler struct {
	next    shared.EventHandler
	store   shared.IdempotencyStore
	enabled bool
	ttl     time.Duration
	log     *zap.Logger

	processed, duplicate, failed atomic.Int64
}

type IdempotentHandlerOption func(*IdempotentHandler)

func WithIdempotencyConfig(cfg shared.IdempotencyConfig) IdempotentHandlerOption {
	return func(h *IdempotentHandler) {
		h.enabled = cfg.Enabled
		h.ttl = cfg.TTL
	}
}

func NewIdempotentHandler(next shared.EventHandler, store shared.IdempotencyStore, log *zap.Logger, opts ...IdempotentHandlerOption) *IdempotentHandler {
	if log == nil {
		log = zap.NewNop()
	}
	defaults := shared.DefaultIdempotencyConfig()
	h := &IdempotentHandler{next: next, store: store, enabled: defaults.Enabled, ttl: defaults.TTL, log: log}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *IdempotentHandler) EventTypes() []string { return h.next.EventTypes() }

func (h *IdempotentHandler) Handle(ctx context.Context, evt shared.DomainEvent) error {
	if h.enabled && !h.firstDelivery(ctx, evt) {
		h.duplicate.Add(1)
		return nil
	}
	// a failed event keeps its mark until the TTL runs out
	if err := h.next.Handle(ctx, evt); err != nil {
		h.failed.Add(1)
		return err
	}
	h.processed.Add(1)
	return nil
}

// firstDelivery reports true when the store cannot answer; a double count
// is recoverable, a lost sale event is not.
func (h *IdempotentHandler) firstDelivery(ctx context.Context, evt shared.DomainEvent) bool {
	id := evt.EventID().String()
	fresh, err := h.store.MarkProcessed(ctx, "event:"+id, h.ttl)
	switch {
	case err != nil:
		h.log.Warn("Event dedup store unavailable",
			zap.String("event_id", id), zap.String("event_type", evt.EventType()), zap.Error(err))
		return true
	case !fresh:
		h.log.Debug("Skipping redelivered event",
			zap.String("event_id", id), zap.String("event_type", evt.EventType()))
	}
	return fresh
}

func (h *IdempotentHandler) Stats() IdempotencyStats {
	return IdempotencyStats{
		EventsProcessed: h.processed.Load(),
		EventsDuplicate: h.duplicate.Load(),
		EventsFailed:    h.failed.Load(),
	}
}

var _ shared.EventHandler = (*IdempotentHandler)(nil)
