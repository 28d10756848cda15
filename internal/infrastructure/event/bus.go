package event

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/saleledger/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// subscription binds a handler to the event types it asked for. A nil
// types set means every event.
type subscription struct {
	handler shared.EventHandler
	types   map[string]struct{}
}

func (s subscription) matches(eventType string) bool {
	_, ok := s.types[eventType]
	return ok
}

// InMemoryEventBus delivers events synchronously to in-process handlers.
// Services publish only after their transaction has committed, so a
// handler never sees an event for a rolled back mutation.
type InMemoryEventBus struct {
	mu      sync.RWMutex
	subs    []subscription
	logger  *zap.Logger
	running atomic.Bool
}

func NewInMemoryEventBus(logger *zap.Logger) *InMemoryEventBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InMemoryEventBus{logger: logger}
}

// Subscribe registers handler for eventTypes, falling back to the types the
// handler declares. With neither the handler receives every event.
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	sub := subscription{handler: handler}
	if len(eventTypes) > 0 {
		sub.types = make(map[string]struct{}, len(eventTypes))
		for _, t := range eventTypes {
			sub.types[t] = struct{}{}
		}
	}

	b.mu.Lock()
	b.subs = append(b.subs, sub)
	b.mu.Unlock()
	b.logger.Debug("handler subscribed", zap.Strings("event_types", eventTypes))
}

// Unsubscribe drops every subscription held by handler.
func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.mu.Lock()
	b.subs = slices.DeleteFunc(b.subs, func(s subscription) bool { return s.handler == handler })
	b.mu.Unlock()
}

// handlersFor returns the typed subscribers of eventType first, then the
// catch-all ones, each in subscription order.
func (b *InMemoryEventBus) handlersFor(eventType string) []shared.EventHandler {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var typed, all []shared.EventHandler
	for _, s := range b.subs {
		switch {
		case s.types == nil:
			all = append(all, s.handler)
		case s.matches(eventType):
			typed = append(typed, s.handler)
		}
	}
	return append(typed, all...)
}

// Publish hands each event to its handlers. Handler errors and panics are
// logged and never reach the publisher: the sale is already committed.
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	for _, ev := range events {
		for _, h := range b.handlersFor(ev.EventType()) {
			b.deliver(ctx, h, ev)
		}
	}
	return nil
}

func (b *InMemoryEventBus) deliver(ctx context.Context, h shared.EventHandler, ev shared.DomainEvent) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked",
				zap.String("event_type", ev.EventType()),
				zap.Any("panic", r))
		}
	}()
	if err := h.Handle(ctx, ev); err != nil {
		b.logger.Error("event handler failed",
			zap.String("event_type", ev.EventType()),
			zap.String("event_id", ev.EventID().String()),
			zap.Error(err))
	}
}

func (b *InMemoryEventBus) Start(context.Context) error {
	b.running.Store(true)
	b.logger.Info("event bus started")
	return nil
}

func (b *InMemoryEventBus) Stop(context.Context) error {
	b.running.Store(false)
	b.logger.Info("event bus stopped")
	return nil
}

func (b *InMemoryEventBus) IsRunning() bool {
	return b.running.Load()
}

var _ shared.EventBus = (*InMemoryEventBus)(nil)
