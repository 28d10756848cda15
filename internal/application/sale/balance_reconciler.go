package sale

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/saleledger/backend/internal/domain/partner"
	"github.com/saleledger/backend/internal/domain/sale"
	"github.com/saleledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// BalanceChange is the effect of one apply or reverse on a client balance
type BalanceChange struct {
	ClientID uuid.UUID              `json:"client_id"`
	Before   decimal.Decimal        `json:"before"`
	After    decimal.Decimal        `json:"after"`
	Entries  []partner.BalanceEntry `json:"-"`
}

// Delta is After − Before
func (c BalanceChange) Delta() decimal.Decimal {
	return c.After.Sub(c.Before)
}

// BalanceReconciler moves a sale's unpaid shortfall onto the client balance and
// takes it off again. Positive balance is debt, so applying adds the shortfall.
//
// The effect of a sale is fully determined by the stored sale: its shortfall and
// the credit it consumed. Reverse therefore undoes Apply exactly.
type BalanceReconciler struct {
	logger *zap.Logger
}

// NewBalanceReconciler creates a new BalanceReconciler
func NewBalanceReconciler(log *zap.Logger) *BalanceReconciler {
	if log == nil {
		log = zap.NewNop()
	}
	return &BalanceReconciler{logger: log}
}

// Shortfall is the sale value not covered by payments; negative when overpaid
func (r *BalanceReconciler) Shortfall(s *sale.Sale) decimal.Decimal {
	return s.Shortfall()
}

// LoadClient locks the client referenced by a sale. A missing client is fatal.
func (r *BalanceReconciler) LoadClient(ctx context.Context, repos TransactionalRepositories, clientID uuid.UUID) (*partner.Client, error) {
	client, err := repos.ClientRepo().FindByIDForUpdate(ctx, clientID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError("client", clientID.String())
		}
		return nil, err
	}
	return client, nil
}

// DecideCredit asks the policy how much of the client's credit the sale consumes
// and records it on the sale. Nothing is asked when the sale is fully paid or
// the client holds no credit.
func (r *BalanceReconciler) DecideCredit(ctx context.Context, policy CreditPolicy, client *partner.Client, s *sale.Sale) error {
	if err := s.ApplyCredit(decimal.Zero); err != nil {
		return err
	}
	quote, ok := r.Quote(client, s)
	if !ok || policy == nil {
		return nil
	}
	amount, err := policy.Decide(ctx, quote)
	if err != nil {
		return err
	}
	return s.ApplyCredit(clampCredit(amount, quote.Consumable))
}

// Quote builds the credit question for a sale. ok is false when there is nothing to decide.
func (r *BalanceReconciler) Quote(client *partner.Client, s *sale.Sale) (CreditQuote, bool) {
	shortfall := s.OutstandingShortfall()
	available := client.AvailableCredit()
	if shortfall.IsZero() || available.IsZero() {
		return CreditQuote{}, false
	}
	return CreditQuote{
		ClientID:   client.ID,
		SaleID:     s.ID,
		Available:  available,
		Shortfall:  shortfall,
		Consumable: decimal.Min(available, shortfall),
	}, true
}

// ApplyForSale adds the sale's shortfall to the client balance. The credit
// consumed and the new debt are recorded as separate entries.
func (r *BalanceReconciler) ApplyForSale(ctx context.Context, repos TransactionalRepositories, client *partner.Client, s *sale.Sale, operator uuid.UUID) (BalanceChange, error) {
	shortfall := s.OutstandingShortfall()
	credit := decimal.Min(s.CreditApplied, shortfall)
	parts := []entryPart{
		{kind: partner.BalanceEntryCreditConsumed, amount: credit},
		{kind: partner.BalanceEntrySaleCharge, amount: shortfall.Sub(credit)},
	}
	return r.post(ctx, repos, client, s.ID, operator, parts)
}

// ReverseForSale removes what ApplyForSale added for the stored sale
func (r *BalanceReconciler) ReverseForSale(ctx context.Context, repos TransactionalRepositories, client *partner.Client, stored *sale.Sale, operator uuid.UUID) (BalanceChange, error) {
	shortfall := stored.OutstandingShortfall()
	credit := decimal.Min(stored.CreditApplied, shortfall)
	parts := []entryPart{
		{kind: partner.BalanceEntrySaleReversal, amount: shortfall.Sub(credit).Neg()},
		{kind: partner.BalanceEntryCreditRestored, amount: credit.Neg()},
	}
	return r.post(ctx, repos, client, stored.ID, operator, parts)
}

type entryPart struct {
	kind   partner.BalanceEntryKind
	amount decimal.Decimal
}

func (r *BalanceReconciler) post(ctx context.Context, repos TransactionalRepositories, client *partner.Client, saleID, operator uuid.UUID, parts []entryPart) (BalanceChange, error) {
	change := BalanceChange{ClientID: client.ID, Before: client.Balance, After: client.Balance}

	running := client.Balance
	total := decimal.Zero
	for _, part := range parts {
		if part.amount.IsZero() {
			continue
		}
		entry, err := partner.NewBalanceEntry(client.ID, part.kind, part.amount, running, running.Add(part.amount))
		if err != nil {
			return change, err
		}
		entry.WithSaleID(saleID).WithOperatorID(operator)
		change.Entries = append(change.Entries, *entry)
		running = entry.BalanceAfter
		total = total.Add(part.amount)
	}
	if total.IsZero() {
		return change, nil
	}

	client.ApplyBalanceDelta(total)
	if err := repos.ClientRepo().Update(ctx, client); err != nil {
		return change, fmt.Errorf("update client balance: %w", err)
	}
	for i := range change.Entries {
		if err := repos.BalanceEntryRepo().Create(ctx, &change.Entries[i]); err != nil {
			return change, fmt.Errorf("record balance entry: %w", err)
		}
		client.AddDomainEvent(partner.NewClientBalanceChangedEvent(&change.Entries[i]))
	}
	change.After = client.Balance

	r.logger.Debug("Client balance changed",
		zap.String("client_id", client.ID.String()),
		zap.String("sale_id", saleID.String()),
		zap.String("before", change.Before.String()),
		zap.String("after", change.After.String()),
	)
	return change, nil
}
