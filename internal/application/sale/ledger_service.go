package sale

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/saleledger/backend/internal/domain/catalog"
	"github.com/saleledger/backend/internal/domain/partner"
	"github.com/saleledger/backend/internal/domain/sale"
	"github.com/saleledger/backend/internal/domain/shared"
	"github.com/saleledger/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// LedgerService records sales and keeps product stock and client balances in
// step with them. Create, Update and Delete each run in a single transaction:
// either the sale and all of its stock and balance effects are committed, or
// nothing is.
type LedgerService struct {
	saleRepo       sale.Repository
	txScope        TransactionScope
	inventory      *InventoryAdjuster
	balances       *BalanceReconciler
	creditPolicy   CreditPolicy
	saleCap        decimal.Decimal
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// LedgerOption configures a LedgerService
type LedgerOption func(*LedgerService)

// WithSaleCap sets the maximum total of a single sale. A non-positive value disables the cap.
func WithSaleCap(limit decimal.Decimal) LedgerOption {
	return func(s *LedgerService) {
		s.saleCap = limit
	}
}

// WithCreditPolicy sets the policy used when a request does not choose one
func WithCreditPolicy(policy CreditPolicy) LedgerOption {
	return func(s *LedgerService) {
		if policy != nil {
			s.creditPolicy = policy
		}
	}
}

// WithEventPublisher publishes domain events after each commit
func WithEventPublisher(publisher shared.EventPublisher) LedgerOption {
	return func(s *LedgerService) {
		s.eventPublisher = publisher
	}
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(saleRepo sale.Repository, txScope TransactionScope, log *zap.Logger, opts ...LedgerOption) *LedgerService {
	if log == nil {
		log = zap.NewNop()
	}
	s := &LedgerService{
		saleRepo:     saleRepo,
		txScope:      txScope,
		inventory:    NewInventoryAdjuster(log),
		balances:     NewBalanceReconciler(log),
		creditPolicy: DeclineCredit,
		saleCap:      sale.DefaultSaleCap,
		logger:       log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SaleCap returns the configured sale cap
func (s *LedgerService) SaleCap() decimal.Decimal {
	return s.saleCap
}

// Create validates and records a new sale, then debits stock and charges the
// unpaid shortfall to the client
func (s *LedgerService) Create(ctx context.Context, req CreateSaleRequest) (*LedgerResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", "create",
		telemetry.SpanAttrClientID, req.ClientID.String(),
		telemetry.SpanAttrItemCount, len(req.Items),
	)
	defer span.End()

	session, err := shared.RequireSession(ctx)
	if err == nil {
		err = req.CreditChoice.validate()
	}
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	var (
		result LedgerResult
		events []shared.DomainEvent
	)
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		client, err := s.balances.LoadClient(ctx, repos, req.ClientID)
		if err != nil {
			return err
		}
		items, err := s.composeItems(ctx, repos.ProductRepo(), req.Items, nil)
		if err != nil {
			return err
		}
		newSale, err := sale.NewSale(sale.Draft{
			Client:   sale.ClientRef{ID: client.ID, Name: client.Name},
			Kind:     sale.Kind(req.Kind),
			Items:    items,
			Payments: toPayments(req.Payments),
			Notes:    req.Notes,
		}, s.saleCap, session.UserID)
		if err != nil {
			return err
		}
		if err := s.balances.DecideCredit(ctx, s.policyFor(req.CreditChoice), client, newSale); err != nil {
			return err
		}

		if err := repos.SaleRepo().Create(ctx, newSale); err != nil {
			return err
		}
		report, err := s.inventory.ApplyForSale(ctx, repos.ProductRepo(), newSale)
		if err != nil {
			return err
		}
		if _, err := s.balances.ApplyForSale(ctx, repos, client, newSale, session.UserID); err != nil {
			return err
		}

		resp := ToSaleResponse(newSale)
		result = LedgerResult{Sale: &resp, ClientBalance: client.Balance, SkippedProducts: report.Skipped}
		events = collectEvents(newSale, client)
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span,
		telemetry.SpanAttrSaleID, result.Sale.ID.String(),
		telemetry.SpanAttrTotal, result.Sale.TotalValue.String(),
		telemetry.SpanAttrStatus, result.Sale.Status,
	)

	s.logger.Info("Sale created",
		zap.String("sale_id", result.Sale.ID.String()),
		zap.String("client_id", result.Sale.ClientID.String()),
		zap.String("total_value", result.Sale.TotalValue.String()),
		zap.String("status", result.Sale.Status),
		zap.String("user_id", session.UserID.String()),
	)
	s.publish(ctx, events)
	return &result, nil
}

// Update replaces a stored sale. The stored sale's stock and balance effects
// are reversed before the new state is applied, so the outcome equals having
// created the new state directly.
func (s *LedgerService) Update(ctx context.Context, saleID uuid.UUID, req UpdateSaleRequest) (*LedgerResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", "update",
		telemetry.SpanAttrSaleID, saleID.String(),
		telemetry.SpanAttrClientID, req.ClientID.String(),
		telemetry.SpanAttrItemCount, len(req.Items),
	)
	defer span.End()

	session, err := shared.RequireSession(ctx)
	if err == nil {
		err = req.CreditChoice.validate()
	}
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	var (
		result LedgerResult
		events []shared.DomainEvent
	)
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		current, err := s.loadSaleForUpdate(ctx, repos, saleID)
		if err != nil {
			return err
		}
		prior := *current

		oldClient, err := s.balances.LoadClient(ctx, repos, prior.ClientID)
		if err != nil {
			return err
		}
		newClient := oldClient
		if req.ClientID != prior.ClientID {
			newClient, err = s.balances.LoadClient(ctx, repos, req.ClientID)
			if err != nil {
				return err
			}
		}

		items, err := s.composeItems(ctx, repos.ProductRepo(), req.Items, prior.Items)
		if err != nil {
			return err
		}
		// Validate the new state before anything is written
		if err := current.Revise(sale.Draft{
			Client:   sale.ClientRef{ID: newClient.ID, Name: newClient.Name},
			Kind:     sale.Kind(req.Kind),
			Items:    items,
			Payments: toPayments(req.Payments),
			Notes:    req.Notes,
		}, s.saleCap, session.UserID); err != nil {
			return err
		}

		reversal, err := s.inventory.ReverseForSale(ctx, repos.ProductRepo(), &prior)
		if err != nil {
			return err
		}
		if _, err := s.balances.ReverseForSale(ctx, repos, oldClient, &prior, session.UserID); err != nil {
			return err
		}

		if err := s.balances.DecideCredit(ctx, s.policyFor(req.CreditChoice), newClient, current); err != nil {
			return err
		}
		if err := repos.SaleRepo().Update(ctx, current); err != nil {
			return err
		}
		report, err := s.inventory.ApplyForSale(ctx, repos.ProductRepo(), current)
		if err != nil {
			return err
		}
		if _, err := s.balances.ApplyForSale(ctx, repos, newClient, current, session.UserID); err != nil {
			return err
		}

		report.merge(reversal)
		resp := ToSaleResponse(current)
		result = LedgerResult{Sale: &resp, ClientBalance: newClient.Balance, SkippedProducts: uniqueIDs(report.Skipped)}
		events = collectEvents(current, oldClient)
		if newClient != oldClient {
			events = append(events, collectEvents(nil, newClient)...)
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTotal, result.Sale.TotalValue.String(),
		telemetry.SpanAttrStatus, result.Sale.Status,
	)

	s.logger.Info("Sale updated",
		zap.String("sale_id", saleID.String()),
		zap.String("total_value", result.Sale.TotalValue.String()),
		zap.String("status", result.Sale.Status),
		zap.String("user_id", session.UserID.String()),
	)
	s.publish(ctx, events)
	return &result, nil
}

// Delete removes a sale after returning its stock and taking its shortfall off
// the client balance
func (s *LedgerService) Delete(ctx context.Context, saleID uuid.UUID) (*LedgerResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", "delete", telemetry.SpanAttrSaleID, saleID.String())
	defer span.End()

	session, err := shared.RequireSession(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	var (
		result LedgerResult
		events []shared.DomainEvent
	)
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		stored, err := s.loadSaleForUpdate(ctx, repos, saleID)
		if err != nil {
			return err
		}
		client, err := s.balances.LoadClient(ctx, repos, stored.ClientID)
		if err != nil {
			return err
		}

		report, err := s.inventory.ReverseForSale(ctx, repos.ProductRepo(), stored)
		if err != nil {
			return err
		}
		if _, err := s.balances.ReverseForSale(ctx, repos, client, stored, session.UserID); err != nil {
			return err
		}
		if err := repos.SaleRepo().Delete(ctx, stored.ID); err != nil {
			return err
		}

		stored.MarkDeleted(session.UserID)
		result = LedgerResult{ClientBalance: client.Balance, SkippedProducts: report.Skipped}
		events = collectEvents(stored, client)
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("Sale deleted",
		zap.String("sale_id", saleID.String()),
		zap.String("user_id", session.UserID.String()),
	)
	s.publish(ctx, events)
	return &result, nil
}

// GetByID returns a stored sale
func (s *LedgerService) GetByID(ctx context.Context, saleID uuid.UUID) (*SaleResponse, error) {
	stored, err := s.saleRepo.FindByID(ctx, saleID)
	if err != nil {
		return nil, notFoundAs(err, "sale", saleID)
	}
	resp := ToSaleResponse(stored)
	return &resp, nil
}

// List returns sales matching the filter together with the total count
func (s *LedgerService) List(ctx context.Context, filter SaleListFilter) ([]SaleResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.PageSize > 100 {
		filter.PageSize = 100
	}

	f := sale.Filter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
		},
		ClientID: filter.ClientID,
		From:     filter.From,
		To:       filter.To,
	}
	if filter.Status != "" {
		st := sale.Status(filter.Status)
		if !st.IsValid() {
			return nil, 0, shared.NewValidationError(shared.CodeValidation, "Unknown sale status: "+filter.Status)
		}
		f.Status = &st
	}

	sales, err := s.saleRepo.FindAll(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.saleRepo.Count(ctx, f)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]SaleResponse, len(sales))
	for i := range sales {
		responses[i] = ToSaleResponse(&sales[i])
	}
	return responses, total, nil
}

// Quote previews totals, status and the resulting client balance for a cart
// without writing anything
func (s *LedgerService) Quote(ctx context.Context, req QuoteRequest) (*QuoteResponse, error) {
	var resp QuoteResponse
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		client, err := repos.ClientRepo().FindByID(ctx, req.ClientID)
		if err != nil {
			return notFoundAs(err, "client", req.ClientID)
		}

		var snapshot []sale.LineItem
		base := client.Balance
		if req.SaleID != nil {
			stored, err := repos.SaleRepo().FindByID(ctx, *req.SaleID)
			if err != nil {
				return notFoundAs(err, "sale", *req.SaleID)
			}
			snapshot = stored.Items
			if stored.ClientID == client.ID {
				base = base.Sub(stored.OutstandingShortfall())
			}
		}

		priced, err := s.composeItems(ctx, repos.ProductRepo(), req.Items, snapshot)
		if err != nil {
			return err
		}
		items, err := buildCart(priced)
		if err != nil {
			return err
		}
		var payments []sale.Payment
		for _, p := range toPayments(req.Payments) {
			if payments, _, err = sale.AddPayment(payments, p.Method, p.Amount); err != nil {
				return err
			}
		}

		total := sale.Total(items)
		paid := sale.TotalPaid(payments)
		shortfall := total.Sub(paid)
		outstanding := decimal.Max(shortfall, decimal.Zero)

		available := decimal.Zero
		if base.IsNegative() {
			available = base.Neg()
		}

		resp = QuoteResponse{
			TotalValue:       total,
			TotalPaid:        paid,
			Shortfall:        shortfall,
			Status:           string(sale.DeriveStatus(total, paid)),
			WithinCap:        sale.ValidateLineItems(items, s.saleCap) == nil,
			SaleCap:          s.saleCap,
			ClientBalance:    base,
			AvailableCredit:  available,
			ConsumableCredit: decimal.Min(available, outstanding),
			ProjectedBalance: base.Add(outstanding),
			Items:            make([]LineItemResponse, len(items)),
		}
		for i, li := range items {
			resp.Items[i] = toLineItemResponse(li)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// composeItems prices the requested items. Products present in snapshot keep
// their recorded name and price; other products are read from the catalog.
func (s *LedgerService) composeItems(ctx context.Context, products catalog.ProductRepository, inputs []LineItemInput, snapshot []sale.LineItem) ([]sale.LineItem, error) {
	known := make(map[uuid.UUID]sale.LineItem, len(snapshot))
	for _, li := range snapshot {
		known[li.ProductID] = li
	}

	items := make([]sale.LineItem, 0, len(inputs))
	for _, in := range inputs {
		if prev, ok := known[in.ProductID]; ok {
			prev.Quantity = in.Quantity
			items = append(items, prev)
			continue
		}
		p, err := products.FindByID(ctx, in.ProductID)
		if err != nil {
			return nil, notFoundAs(err, "product", in.ProductID)
		}
		items = append(items, sale.LineItem{
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    in.Quantity,
			UnitPrice:   p.SalePrice,
		})
	}
	return items, nil
}

// buildCart replays priced items through the cart operations the till uses,
// so a repeated product accumulates into one line. The cap is not enforced
// here; Quote reports it instead.
func buildCart(priced []sale.LineItem) ([]sale.LineItem, error) {
	var cart []sale.LineItem
	for _, li := range priced {
		product := sale.PricedProduct{ID: li.ProductID, Name: li.ProductName, Price: li.UnitPrice}
		next, err := sale.AddLineItem(cart, product, decimal.Zero)
		if err != nil {
			return nil, err
		}
		// AddLineItem counted one unit; bring the line up to the requested quantity
		quantity := sale.QuantityOf(next, li.ProductID) - 1 + li.Quantity
		if cart, err = sale.SetQuantity(next, li.ProductID, quantity, decimal.Zero); err != nil {
			return nil, err
		}
	}
	return cart, nil
}

func (s *LedgerService) loadSaleForUpdate(ctx context.Context, repos TransactionalRepositories, id uuid.UUID) (*sale.Sale, error) {
	stored, err := repos.SaleRepo().FindByIDForUpdate(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, "sale", id)
	}
	stored.Recalculate()
	return stored, nil
}

func (s *LedgerService) policyFor(choice CreditChoice) CreditPolicy {
	if choice.UseClientCredit == nil {
		return s.creditPolicy
	}
	if !*choice.UseClientCredit {
		return DeclineCredit
	}
	if choice.CreditAmount != nil {
		return CreditUpTo(*choice.CreditAmount)
	}
	return AcceptCredit
}

func (s *LedgerService) publish(ctx context.Context, events []shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	// errors are logged by the event bus
	_ = s.eventPublisher.Publish(ctx, events...)
}

func collectEvents(s *sale.Sale, client *partner.Client) []shared.DomainEvent {
	var events []shared.DomainEvent
	if s != nil {
		events = append(events, s.GetDomainEvents()...)
		s.ClearDomainEvents()
	}
	if client != nil {
		events = append(events, client.GetDomainEvents()...)
		client.ClearDomainEvents()
	}
	return events
}

func toPayments(inputs []PaymentInput) []sale.Payment {
	payments := make([]sale.Payment, len(inputs))
	for i, in := range inputs {
		method, ok := sale.ParsePaymentMethod(in.Method)
		if !ok {
			method = sale.PaymentMethod(in.Method)
		}
		payments[i] = sale.Payment{Method: method, Amount: in.Amount}
		if in.ID != nil {
			payments[i].ID = *in.ID
		}
	}
	return payments
}

func notFoundAs(err error, resource string, id uuid.UUID) error {
	if errors.Is(err, shared.ErrNotFound) {
		return shared.NewNotFoundError(resource, id.String())
	}
	return err
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
