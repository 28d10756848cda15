package shared

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent is a fact recorded by an aggregate and published after the
// unit of work that produced it commits.
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	OccurredAt() time.Time
	AggregateID() uuid.UUID
	AggregateType() string
}

// BaseDomainEvent is embedded by every concrete event. Actor is the session
// user behind the change, uuid.Nil for system writes.
type BaseDomainEvent struct {
	ID        uuid.UUID `json:"id"`
	Type      string    `json:"type"`
	At        time.Time `json:"occurred_at"`
	Aggregate struct {
		ID   uuid.UUID `json:"id"`
		Kind string    `json:"type"`
	} `json:"aggregate"`
	Actor uuid.UUID `json:"actor_id,omitempty"`
}

func NewBaseDomainEvent(eventType, aggregateKind string, aggregateID, actor uuid.UUID) BaseDomainEvent {
	e := BaseDomainEvent{ID: uuid.New(), Type: eventType, At: time.Now(), Actor: actor}
	e.Aggregate.ID = aggregateID
	e.Aggregate.Kind = aggregateKind
	return e
}

func (e *BaseDomainEvent) EventID() uuid.UUID     { return e.ID }
func (e *BaseDomainEvent) EventType() string      { return e.Type }
func (e *BaseDomainEvent) OccurredAt() time.Time  { return e.At }
func (e *BaseDomainEvent) AggregateID() uuid.UUID { return e.Aggregate.ID }
func (e *BaseDomainEvent) AggregateType() string  { return e.Aggregate.Kind }
