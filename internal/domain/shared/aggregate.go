package shared

// BaseAggregateRoot is embedded by the ledger aggregates (sale, product,
// client, user). Version drives optimistic locking in the repositories;
// pending events are collected here and published by the application layer
// once the unit of work commits.
type BaseAggregateRoot struct {
	BaseEntity
	Version int

	pending []DomainEvent
}

func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{BaseEntity: NewBaseEntity(), Version: 1}
}

func (a *BaseAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.pending = append(a.pending, event)
}

func (a *BaseAggregateRoot) GetDomainEvents() []DomainEvent {
	return a.pending
}

func (a *BaseAggregateRoot) ClearDomainEvents() {
	a.pending = nil
}
