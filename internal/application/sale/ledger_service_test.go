package sale_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	saleapp "github.com/saleledger/backend/internal/application/sale"
	"github.com/saleledger/backend/internal/domain/partner"
	"github.com/saleledger/backend/internal/domain/sale"
	"github.com/saleledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, code, de.Code)
}

func TestLedgerService_Create(t *testing.T) {
	t.Run("charges the unpaid shortfall and debits stock", func(t *testing.T) {
		f := newLedgerFixture(t)
		arroz := f.product("Arroz 5kg", "10.00", 5)
		maria := f.client("Maria", "0")

		res, err := f.service.Create(f.ctx, saleapp.CreateSaleRequest{
			ClientID: maria.ID,
			Items:    []saleapp.LineItemInput{item(arroz, 3)},
			Payments: []saleapp.PaymentInput{cash("10.00")},
		})
		require.NoError(t, err)

		assert.True(t, dec("30").Equal(res.Sale.TotalValue))
		assert.True(t, dec("10").Equal(res.Sale.TotalPaid))
		assert.Equal(t, string(sale.StatusPending), res.Sale.Status)
		assert.Equal(t, "Maria", res.Sale.ClientName)
		assert.Equal(t, string(sale.KindCashSale), res.Sale.Kind)
		assert.Equal(t, f.operator, *res.Sale.CreatedBy)
		assert.True(t, dec("20").Equal(res.ClientBalance))

		assert.Equal(t, 2, f.stock(arroz.ID))
		assert.True(t, dec("20").Equal(f.balance(maria.ID)))

		kinds := f.entryKinds(res.Sale.ID)
		assert.Len(t, kinds, 1)
		assert.True(t, dec("20").Equal(kinds[partner.BalanceEntrySaleCharge]))

		assert.Contains(t, f.publisher.types(), sale.EventTypeSaleCreated)
		assert.Contains(t, f.publisher.types(), partner.EventTypeClientBalanceChanged)
	})

	t.Run("fully paid sale leaves the balance alone", func(t *testing.T) {
		f := newLedgerFixture(t)
		feijao := f.product("Feijão", "8.50", 10)
		joao := f.client("João", "0")

		res, err := f.service.Create(f.ctx, saleapp.CreateSaleRequest{
			ClientID: joao.ID,
			Items:    []saleapp.LineItemInput{item(feijao, 2)},
			Payments: []saleapp.PaymentInput{cash("10.00"), {Method: "PIX", Amount: dec("7.00")}},
		})
		require.NoError(t, err)

		assert.Equal(t, string(sale.StatusCompleted), res.Sale.Status)
		assert.True(t, res.Sale.Shortfall.IsZero())
		assert.True(t, f.balance(joao.ID).IsZero())
		assert.Empty(t, f.entryKinds(res.Sale.ID))
		assert.Equal(t, 8, f.stock(feijao.ID))
	})

	t.Run("overpayment completes the sale without creating credit", func(t *testing.T) {
		f := newLedgerFixture(t)
		cafe := f.product("Café", "15.00", 3)
		ana := f.client("Ana", "0")

		res, err := f.service.Create(f.ctx, saleapp.CreateSaleRequest{
			ClientID: ana.ID,
			Items:    []saleapp.LineItemInput{item(cafe, 1)},
			Payments: []saleapp.PaymentInput{cash("20.00")},
		})
		require.NoError(t, err)

		assert.Equal(t, string(sale.StatusCompleted), res.Sale.Status)
		assert.True(t, dec("-5").Equal(res.Sale.Shortfall))
		assert.True(t, f.balance(ana.ID).IsZero())
	})

	t.Run("debit clamps stock at zero", func(t *testing.T) {
		f := newLedgerFixture(t)
		leite := f.product("Leite", "4.00", 2)
		c := f.client("Pedro", "0")

		_, err := f.service.Create(f.ctx, saleapp.CreateSaleRequest{
			ClientID: c.ID,
			Items:    []saleapp.LineItemInput{item(leite, 5)},
			Payments: []saleapp.PaymentInput{cash("20.00")},
		})
		require.NoError(t, err)
		assert.Equal(t, 0, f.stock(leite.ID))
	})

	t.Run("rejects a sale above the cap and writes nothing", func(t *testing.T) {
		f := newLedgerFixture(t)
		tv := f.product("Televisor", "700.00", 4)
		c := f.client("Carla", "0")

		_, err := f.service.Create(f.ctx, saleapp.CreateSaleRequest{
			ClientID: c.ID,
			Items:    []saleapp.LineItemInput{item(tv, 2)},
		})
		requireCode(t, err, sale.CodeSaleCapExceeded)

		assert.Equal(t, 4, f.stock(tv.ID))
		assert.True(t, f.balance(c.ID).IsZero())
		n, err := f.store.Sales().Count(context.Background(), sale.Filter{})
		require.NoError(t, err)
		assert.Zero(t, n)
		assert.Empty(t, f.publisher.types())
	})

	t.Run("non-positive cap disables the check", func(t *testing.T) {
		f := newLedgerFixture(t, saleapp.WithSaleCap(decimal.Zero))
		tv := f.product("Televisor", "700.00", 4)
		c := f.client("Carla", "0")

		_, err := f.service.Create(f.ctx, saleapp.CreateSaleRequest{
			ClientID: c.ID,
			Items:    []saleapp.LineItemInput{item(tv, 2)},
			Payments: []saleapp.PaymentInput{cash("1400")},
		})
		require.NoError(t, err)
	})

	t.Run("missing client is fatal", func(t *testing.T) {
		f := newLedgerFixture(t)
		p := f.product("Sal", "2.00", 10)

		_, err := f.service.Create(f.ctx, saleapp.CreateSaleRequest{
			ClientID: uuid.New(),
			Items:    []saleapp.LineItemInput{item(p, 1)},
		})
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.Equal(t, 10, f.stock(p.ID))
	})

	t.Run("unknown product is rejected", func(t *testing.T) {
		f := newLedgerFixture(t)
		c := f.client("Rita", "0")

		_, err := f.service.Create(f.ctx, saleapp.CreateSaleRequest{
			ClientID: c.ID,
			Items:    []saleapp.LineItemInput{{ProductID: uuid.New(), Quantity: 1}},
		})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("invalid input", func(t *testing.T) {
		f := newLedgerFixture(t)
		p := f.product("Sal", "2.00", 10)
		c := f.client("Rita", "0")

		_, err := f.service.Create(f.ctx, saleapp.CreateSaleRequest{ClientID: c.ID})
		requireCode(t, err, sale.CodeEmptySale)

		_, err = f.service.Create(f.ctx, saleapp.CreateSaleRequest{
			ClientID: c.ID,
			Items:    []saleapp.LineItemInput{item(p, 0)},
		})
		requireCode(t, err, sale.CodeInvalidQuantity)

		_, err = f.service.Create(f.ctx, saleapp.CreateSaleRequest{
			ClientID: c.ID,
			Items:    []saleapp.LineItemInput{item(p, 1)},
			Payments: []saleapp.PaymentInput{{Method: "cheque", Amount: dec("1")}},
		})
		requireCode(t, err, sale.CodeInvalidPaymentMethod)

		_, err = f.service.Create(f.ctx, saleapp.CreateSaleRequest{
			ClientID: c.ID,
			Kind:     "BARTER",
			Items:    []saleapp.LineItemInput{item(p, 1)},
		})
		requireCode(t, err, "INVALID_SALE_KIND")
	})

	t.Run("requires a session", func(t *testing.T) {
		f := newLedgerFixture(t)
		p := f.product("Sal", "2.00", 10)
		c := f.client("Rita", "0")

		_, err := f.service.Create(context.Background(), saleapp.CreateSaleRequest{
			ClientID: c.ID,
			Items:    []saleapp.LineItemInput{item(p, 1)},
		})
		assert.ErrorIs(t, err, shared.ErrUnauthorized)
		assert.Equal(t, 10, f.stock(p.ID))
	})
}

func TestLedgerService_ClientCredit(t *testing.T) {
	setup := func(t *testing.T, opts ...saleapp.LedgerOption) (*ledgerFixture, saleapp.CreateSaleRequest, uuid.UUID) {
		f := newLedgerFixture(t, opts...)
		p := f.product("Óleo", "10.00", 10)
		c := f.client("Lúcia", "-50")
		return f, saleapp.CreateSaleRequest{
			ClientID: c.ID,
			Items:    []saleapp.LineItemInput{item(p, 3)},
		}, c.ID
	}

	t.Run("default policy declines credit", func(t *testing.T) {
		f, req, clientID := setup(t)

		res, err := f.service.Create(f.ctx, req)
		require.NoError(t, err)

		assert.True(t, res.Sale.CreditApplied.IsZero())
		assert.True(t, dec("-20").Equal(f.balance(clientID)))
		kinds := f.entryKinds(res.Sale.ID)
		assert.True(t, dec("30").Equal(kinds[partner.BalanceEntrySaleCharge]))
		assert.NotContains(t, kinds, partner.BalanceEntryCreditConsumed)
	})

	t.Run("accept policy consumes credit", func(t *testing.T) {
		f, req, clientID := setup(t, saleapp.WithCreditPolicy(saleapp.AcceptCredit))

		res, err := f.service.Create(f.ctx, req)
		require.NoError(t, err)

		assert.True(t, dec("30").Equal(res.Sale.CreditApplied))
		assert.True(t, dec("-20").Equal(f.balance(clientID)))
		kinds := f.entryKinds(res.Sale.ID)
		assert.True(t, dec("30").Equal(kinds[partner.BalanceEntryCreditConsumed]))
		assert.NotContains(t, kinds, partner.BalanceEntrySaleCharge)
	})

	t.Run("request choice caps the amount", func(t *testing.T) {
		f, req, _ := setup(t)
		amount := dec("10")
		req.CreditChoice = saleapp.CreditChoice{UseClientCredit: boolPtr(true), CreditAmount: &amount}

		res, err := f.service.Create(f.ctx, req)
		require.NoError(t, err)

		assert.True(t, dec("10").Equal(res.Sale.CreditApplied))
		kinds := f.entryKinds(res.Sale.ID)
		assert.True(t, dec("10").Equal(kinds[partner.BalanceEntryCreditConsumed]))
		assert.True(t, dec("20").Equal(kinds[partner.BalanceEntrySaleCharge]))
	})

	t.Run("request refusal overrides the default policy", func(t *testing.T) {
		f, req, _ := setup(t, saleapp.WithCreditPolicy(saleapp.AcceptCredit))
		req.CreditChoice = saleapp.CreditChoice{UseClientCredit: boolPtr(false)}

		res, err := f.service.Create(f.ctx, req)
		require.NoError(t, err)
		assert.True(t, res.Sale.CreditApplied.IsZero())
	})

	t.Run("policy answer is clamped to what the sale can consume", func(t *testing.T) {
		f, req, _ := setup(t, saleapp.WithCreditPolicy(saleapp.CreditUpTo(dec("100"))))

		res, err := f.service.Create(f.ctx, req)
		require.NoError(t, err)
		assert.True(t, dec("30").Equal(res.Sale.CreditApplied))
	})

	t.Run("policy error aborts the sale", func(t *testing.T) {
		refuse := saleapp.CreditPolicyFunc(func(context.Context, saleapp.CreditQuote) (decimal.Decimal, error) {
			return decimal.Zero, errors.New("operator cancelled")
		})
		f, req, clientID := setup(t, saleapp.WithCreditPolicy(refuse))

		_, err := f.service.Create(f.ctx, req)
		require.Error(t, err)
		assert.True(t, dec("-50").Equal(f.balance(clientID)))
		assert.Equal(t, 10, f.stock(req.Items[0].ProductID))
	})

	t.Run("policy is not asked when there is nothing to decide", func(t *testing.T) {
		asked := false
		spy := saleapp.CreditPolicyFunc(func(context.Context, saleapp.CreditQuote) (decimal.Decimal, error) {
			asked = true
			return decimal.Zero, nil
		})
		f, req, _ := setup(t, saleapp.WithCreditPolicy(spy))
		req.Payments = []saleapp.PaymentInput{cash("30")}

		_, err := f.service.Create(f.ctx, req)
		require.NoError(t, err)
		assert.False(t, asked)
	})

	t.Run("delete restores consumed credit", func(t *testing.T) {
		f, req, clientID := setup(t, saleapp.WithCreditPolicy(saleapp.AcceptCredit))

		res, err := f.service.Create(f.ctx, req)
		require.NoError(t, err)
		_, err = f.service.Delete(f.ctx, res.Sale.ID)
		require.NoError(t, err)

		assert.True(t, dec("-50").Equal(f.balance(clientID)))
		kinds := f.entryKinds(res.Sale.ID)
		assert.True(t, dec("-30").Equal(kinds[partner.BalanceEntryCreditRestored]))
	})
}

func TestLedgerService_Update(t *testing.T) {
	t.Run("reverses the stored sale before applying the new one", func(t *testing.T) {
		f := newLedgerFixture(t)
		arroz := f.product("Arroz 5kg", "10.00", 5)
		maria := f.client("Maria", "0")

		created, err := f.service.Create(f.ctx, saleapp.CreateSaleRequest{
			ClientID: maria.ID,
			Items:    []saleapp.LineItemInput{item(arroz, 3)},
			Payments: []saleapp.PaymentInput{cash("10.00")},
		})
		require.NoError(t, err)

		updated, err := f.service.Update(f.ctx, created.Sale.ID, saleapp.UpdateSaleRequest{
			ClientID: maria.ID,
			Items:    []saleapp.LineItemInput{item(arroz, 1)},
			Payments: []saleapp.PaymentInput{cash("10.00")},
		})
		require.NoError(t, err)

		assert.Equal(t, created.Sale.ID, updated.Sale.ID)
		assert.Equal(t, created.Sale.CreatedAt, updated.Sale.CreatedAt)
		assert.Equal(t, string(sale.StatusCompleted), updated.Sale.Status)
		assert.Equal(t, 4, f.stock(arroz.ID))
		assert.True(t, f.balance(maria.ID).IsZero())

		kinds := f.entryKinds(created.Sale.ID)
		assert.True(t, dec("20").Equal(kinds[partner.BalanceEntrySaleCharge]))
		assert.True(t, dec("-20").Equal(kinds[partner.BalanceEntrySaleReversal]))
		assert.Contains(t, f.publisher.types(), sale.EventTypeSaleUpdated)
	})

	t.Run("ends in the same state as creating the new version directly", func(t *testing.T) {
		edited := newLedgerFixture(t)
		a1 := edited.product("A", "12.00", 20)
		b1 := edited.product("B", "7.50", 20)
		c1 := edited.client("Cliente", "5")

		created, err := edited.service.Create(edited.ctx, saleapp.CreateSaleRequest{
			ClientID: c1.ID,
			Items:    []saleapp.LineItemInput{item(a1, 3), item(b1, 1)},
			Payments: []saleapp.PaymentInput{cash("5")},
		})
		require.NoError(t, err)
		_, err = edited.service.Update(edited.ctx, created.Sale.ID, saleapp.UpdateSaleRequest{
			ClientID: c1.ID,
			Items:    []saleapp.LineItemInput{item(a1, 1), item(b1, 2)},
			Payments: []saleapp.PaymentInput{cash("12")},
		})
		require.NoError(t, err)

		direct := newLedgerFixture(t)
		a2 := direct.product("A", "12.00", 20)
		b2 := direct.product("B", "7.50", 20)
		c2 := direct.client("Cliente", "5")
		_, err = direct.service.Create(direct.ctx, saleapp.CreateSaleRequest{
			ClientID: c2.ID,
			Items:    []saleapp.LineItemInput{item(a2, 1), item(b2, 2)},
			Payments: []saleapp.PaymentInput{cash("12")},
		})
		require.NoError(t, err)

		assert.Equal(t, direct.stock(a2.ID), edited.stock(a1.ID))
		assert.Equal(t, direct.stock(b2.ID), edited.stock(b1.ID))
		assert.True(t, direct.balance(c2.ID).Equal(edited.balance(c1.ID)))
	})

	t.Run("moves the charge when the client changes", func(t *testing.T) {
		f := newLedgerFixture(t)
		p := f.product("Açúcar", "5.00", 10)
		first := f.client("Primeiro", "0")
		second := f.client("Segundo", "0")

		created, err := f.service.Create(f.ctx, saleapp.CreateSaleRequest{
			ClientID: first.ID,
			Items:    []saleapp.LineItemInput{item(p, 4)},
		})
		require.NoError(t, err)

		updated, err := f.service.Update(f.ctx, created.Sale.ID, saleapp.UpdateSaleRequest{
			ClientID: second.ID,
			Items:    []saleapp.LineItemInput{item(p, 4)},
		})
		require.NoError(t, err)

		assert.Equal(t, "Segundo", updated.Sale.ClientName)
		assert.True(t, f.balance(first.ID).IsZero())
		assert.True(t, dec("20").Equal(f.balance(second.ID)))
		assert.Equal(t, 6, f.stock(p.ID))
	})

	t.Run("keeps the recorded price of items already on the sale", func(t *testing.T) {
		f := newLedgerFixture(t)
		p := f.product("Farinha", "6.00", 10)
		c := f.client("Bia", "0")

		created, err := f.service.Create(f.ctx, saleapp.CreateSaleRequest{
			ClientID: c.ID,
			Items:    []saleapp.LineItemInput{item(p, 1)},
		})
		require.NoError(t, err)

		stored, err := f.store.Products().FindByID(context.Background(), p.ID)
		require.NoError(t, err)
		require.NoError(t, stored.Update(stored.Name, "", dec("9.00")))
		require.NoError(t, f.store.Products().Update(context.Background(), stored))

		updated, err := f.service.Update(f.ctx, created.Sale.ID, saleapp.UpdateSaleRequest{
			ClientID: c.ID,
			Items:    []saleapp.LineItemInput{item(p, 2)},
		})
		require.NoError(t, err)
		assert.True(t, dec("6.00").Equal(updated.Sale.Items[0].UnitPrice))
		assert.True(t, dec("12").Equal(updated.Sale.TotalValue))
	})

	t.Run("rejection leaves the stored state untouched", func(t *testing.T) {
		f := newLedgerFixture(t)
		p := f.product("Geladeira", "500.00", 5)
		c := f.client("Davi", "0")

		created, err := f.service.Create(f.ctx, saleapp.CreateSaleRequest{
			ClientID: c.ID,
			Items:    []saleapp.LineItemInput{item(p, 2)},
			Payments: []saleapp.PaymentInput{cash("100")},
		})
		require.NoError(t, err)

		_, err = f.service.Update(f.ctx, created.Sale.ID, saleapp.UpdateSaleRequest{
			ClientID: c.ID,
			Items:    []saleapp.LineItemInput{item(p, 3)},
		})
		requireCode(t, err, sale.CodeSaleCapExceeded)

		assert.Equal(t, 3, f.stock(p.ID))
		assert.True(t, dec("900").Equal(f.balance(c.ID)))
		stored, err := f.service.GetByID(context.Background(), created.Sale.ID)
		require.NoError(t, err)
		assert.Equal(t, created.Sale.Version, stored.Version)
		assert.Equal(t, 2, stored.Items[0].Quantity)
	})

	t.Run("skips products that no longer exist", func(t *testing.T) {
		f := newLedgerFixture(t)
		gone := f.product("Descontinuado", "10.00", 5)
		kept := f.product("Mantido", "5.00", 5)
		c := f.client("Eva", "0")

		created, err := f.service.Create(f.ctx, saleapp.CreateSaleRequest{
			ClientID: c.ID,
			Items:    []saleapp.LineItemInput{item(gone, 1), item(kept, 1)},
		})
		require.NoError(t, err)
		require.NoError(t, f.store.Products().Delete(context.Background(), gone.ID))

		updated, err := f.service.Update(f.ctx, created.Sale.ID, saleapp.UpdateSaleRequest{
			ClientID: c.ID,
			Items:    []saleapp.LineItemInput{item(gone, 2), item(kept, 1)},
		})
		require.NoError(t, err)

		assert.Equal(t, []uuid.UUID{gone.ID}, updated.SkippedProducts)
		assert.Equal(t, 4, f.stock(kept.ID))
		assert.True(t, dec("25").Equal(f.balance(c.ID)))
	})

	t.Run("unknown sale", func(t *testing.T) {
		f := newLedgerFixture(t)
		c := f.client("Eva", "0")
		p := f.product("Sal", "1.00", 1)

		_, err := f.service.Update(f.ctx, uuid.New(), saleapp.UpdateSaleRequest{
			ClientID: c.ID,
			Items:    []saleapp.LineItemInput{item(p, 1)},
		})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestLedgerService_Delete(t *testing.T) {
	t.Run("returns stock and removes the charge", func(t *testing.T) {
		f := newLedgerFixture(t)
		p := f.product("Leite", "4.00", 2)
		c := f.client("Pedro", "3")

		created, err := f.service.Create(f.ctx, saleapp.CreateSaleRequest{
			ClientID: c.ID,
			Items:    []saleapp.LineItemInput{item(p, 5)},
		})
		require.NoError(t, err)
		assert.Equal(t, 0, f.stock(p.ID))
		assert.True(t, dec("23").Equal(f.balance(c.ID)))

		res, err := f.service.Delete(f.ctx, created.Sale.ID)
		require.NoError(t, err)

		assert.Nil(t, res.Sale)
		assert.True(t, dec("3").Equal(res.ClientBalance))
		// the full quantity comes back even though the debit was clamped
		assert.Equal(t, 5, f.stock(p.ID))
		assert.True(t, dec("3").Equal(f.balance(c.ID)))

		_, err = f.service.GetByID(context.Background(), created.Sale.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.Contains(t, f.publisher.types(), sale.EventTypeSaleDeleted)
	})

	t.Run("unknown sale", func(t *testing.T) {
		f := newLedgerFixture(t)
		_, err := f.service.Delete(f.ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("requires a session", func(t *testing.T) {
		f := newLedgerFixture(t)
		_, err := f.service.Delete(context.Background(), uuid.New())
		assert.ErrorIs(t, err, shared.ErrUnauthorized)
	})
}

func TestLedgerService_Quote(t *testing.T) {
	t.Run("previews without writing", func(t *testing.T) {
		f := newLedgerFixture(t)
		p := f.product("Biscoito", "10.00", 4)
		c := f.client("Léo", "20")

		q, err := f.service.Quote(f.ctx, saleapp.QuoteRequest{
			ClientID: c.ID,
			Items:    []saleapp.LineItemInput{item(p, 2)},
			Payments: []saleapp.PaymentInput{cash("5")},
		})
		require.NoError(t, err)

		assert.True(t, dec("20").Equal(q.TotalValue))
		assert.True(t, dec("15").Equal(q.Shortfall))
		assert.Equal(t, string(sale.StatusPending), q.Status)
		assert.True(t, q.WithinCap)
		assert.True(t, dec("35").Equal(q.ProjectedBalance))
		assert.True(t, q.AvailableCredit.IsZero())
		assert.Equal(t, 4, f.stock(p.ID))
		assert.True(t, dec("20").Equal(f.balance(c.ID)))
	})

	t.Run("reports consumable credit", func(t *testing.T) {
		f := newLedgerFixture(t)
		p := f.product("Biscoito", "10.00", 4)
		c := f.client("Léo", "-8")

		q, err := f.service.Quote(f.ctx, saleapp.QuoteRequest{
			ClientID: c.ID,
			Items:    []saleapp.LineItemInput{item(p, 1)},
		})
		require.NoError(t, err)
		assert.True(t, dec("8").Equal(q.AvailableCredit))
		assert.True(t, dec("8").Equal(q.ConsumableCredit))
		assert.True(t, dec("2").Equal(q.ProjectedBalance))
	})

	t.Run("excludes the edited sale's own charge", func(t *testing.T) {
		f := newLedgerFixture(t)
		p := f.product("Biscoito", "10.00", 4)
		c := f.client("Léo", "0")

		created, err := f.service.Create(f.ctx, saleapp.CreateSaleRequest{
			ClientID: c.ID,
			Items:    []saleapp.LineItemInput{item(p, 2)},
		})
		require.NoError(t, err)

		q, err := f.service.Quote(f.ctx, saleapp.QuoteRequest{
			SaleID:   &created.Sale.ID,
			ClientID: c.ID,
			Items:    []saleapp.LineItemInput{item(p, 3)},
		})
		require.NoError(t, err)
		assert.True(t, q.ClientBalance.IsZero())
		assert.True(t, dec("30").Equal(q.ProjectedBalance))
	})

	t.Run("merges a repeated product into one line", func(t *testing.T) {
		f := newLedgerFixture(t)
		p := f.product("Biscoito", "10.00", 9)
		c := f.client("Léo", "0")

		q, err := f.service.Quote(f.ctx, saleapp.QuoteRequest{
			ClientID: c.ID,
			Items:    []saleapp.LineItemInput{item(p, 2), item(p, 3)},
		})
		require.NoError(t, err)
		require.Len(t, q.Items, 1)
		assert.Equal(t, 5, q.Items[0].Quantity)
		assert.True(t, dec("50").Equal(q.TotalValue))
	})

	t.Run("rejects a non-positive quantity", func(t *testing.T) {
		f := newLedgerFixture(t)
		p := f.product("Biscoito", "10.00", 9)
		c := f.client("Léo", "0")

		_, err := f.service.Quote(f.ctx, saleapp.QuoteRequest{
			ClientID: c.ID,
			Items:    []saleapp.LineItemInput{item(p, 0)},
		})
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, sale.CodeInvalidQuantity, de.Code)
	})

	t.Run("flags a cart over the cap", func(t *testing.T) {
		f := newLedgerFixture(t)
		p := f.product("Sofá", "1300.00", 1)
		c := f.client("Léo", "0")

		q, err := f.service.Quote(f.ctx, saleapp.QuoteRequest{
			ClientID: c.ID,
			Items:    []saleapp.LineItemInput{item(p, 1)},
		})
		require.NoError(t, err)
		assert.False(t, q.WithinCap)
	})
}

func TestLedgerService_RejectsSubCentAmounts(t *testing.T) {
	f := newLedgerFixture(t)
	p := f.product("Feijão", "10.00", 5)
	c := f.client("Rita", "0")

	t.Run("payment", func(t *testing.T) {
		_, err := f.service.Create(f.ctx, saleapp.CreateSaleRequest{
			ClientID: c.ID,
			Items:    []saleapp.LineItemInput{item(p, 1)},
			Payments: []saleapp.PaymentInput{cash("0.005")},
		})
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, sale.CodeInvalidPaymentAmount, de.Code)
	})

	t.Run("credit amount", func(t *testing.T) {
		amount := dec("1.125")
		_, err := f.service.Create(f.ctx, saleapp.CreateSaleRequest{
			ClientID:     c.ID,
			Items:        []saleapp.LineItemInput{item(p, 1)},
			CreditChoice: saleapp.CreditChoice{UseClientCredit: boolPtr(true), CreditAmount: &amount},
		})
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, saleapp.CodeInvalidCreditAmount, de.Code)
	})

	assert.Equal(t, 5, f.stock(p.ID))
	assert.True(t, f.balance(c.ID).IsZero())
}

func TestLedgerService_List(t *testing.T) {
	f := newLedgerFixture(t)
	p := f.product("Pão", "1.00", 100)
	c := f.client("Ivo", "0")

	for i := 1; i <= 3; i++ {
		_, err := f.service.Create(f.ctx, saleapp.CreateSaleRequest{
			ClientID: c.ID,
			Items:    []saleapp.LineItemInput{item(p, i)},
			Payments: []saleapp.PaymentInput{cash("2")},
		})
		require.NoError(t, err)
	}

	all, total, err := f.service.List(context.Background(), saleapp.SaleListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.EqualValues(t, 3, total)

	pending, total, err := f.service.List(context.Background(), saleapp.SaleListFilter{Status: string(sale.StatusPending)})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, pending, 1)
	assert.True(t, dec("3").Equal(pending[0].TotalValue))

	_, _, err = f.service.List(context.Background(), saleapp.SaleListFilter{Status: "LOST"})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}
