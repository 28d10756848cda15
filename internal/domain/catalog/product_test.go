package catalog

import (
	"testing"

	"github.com/saleledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProduct(t *testing.T) {
	t.Run("valid product", func(t *testing.T) {
		p, err := NewProduct("  Coffee 500g ", decimal.NewFromInt(50), 10)
		require.NoError(t, err)
		assert.Equal(t, "Coffee 500g", p.Name)
		assert.True(t, p.SalePrice.Equal(decimal.NewFromInt(50)))
		assert.Equal(t, 10, p.StockQuantity)
		assert.Equal(t, 1, p.Version)
		require.Len(t, p.GetDomainEvents(), 1)
		assert.Equal(t, EventTypeProductCreated, p.GetDomainEvents()[0].EventType())
	})

	t.Run("empty name", func(t *testing.T) {
		_, err := NewProduct(" ", decimal.NewFromInt(1), 0)
		assert.True(t, shared.IsValidation(err))
	})

	t.Run("negative price", func(t *testing.T) {
		_, err := NewProduct("Tea", decimal.NewFromInt(-1), 0)
		assert.True(t, shared.IsValidation(err))
	})

	t.Run("price finer than a cent", func(t *testing.T) {
		_, err := NewProduct("Tea", decimal.RequireFromString("3.335"), 0)
		assert.True(t, shared.IsValidation(err))
	})

	t.Run("negative stock", func(t *testing.T) {
		_, err := NewProduct("Tea", decimal.NewFromInt(1), -3)
		assert.True(t, shared.IsValidation(err))
	})
}

func TestProduct_DebitClampsAtZero(t *testing.T) {
	p, err := NewProduct("Tea", decimal.NewFromInt(5), 3)
	require.NoError(t, err)

	assert.Equal(t, 2, p.Debit(2))
	assert.Equal(t, 1, p.StockQuantity)

	assert.Equal(t, 1, p.Debit(5))
	assert.Equal(t, 0, p.StockQuantity)

	assert.Equal(t, 0, p.Debit(1))
	assert.Equal(t, 0, p.StockQuantity)
}

func TestProduct_CreditHasNoUpperBound(t *testing.T) {
	p, err := NewProduct("Tea", decimal.NewFromInt(5), 0)
	require.NoError(t, err)

	p.Credit(1000)
	assert.Equal(t, 1000, p.StockQuantity)

	p.Credit(0)
	p.Credit(-4)
	assert.Equal(t, 1000, p.StockQuantity)
}

func TestProduct_UpdateEmitsPriceChange(t *testing.T) {
	p, err := NewProduct("Tea", decimal.NewFromInt(5), 0)
	require.NoError(t, err)
	p.ClearDomainEvents()

	require.NoError(t, p.Update("Tea", "green", decimal.NewFromInt(5)))
	assert.Empty(t, p.GetDomainEvents())

	require.NoError(t, p.Update("Tea", "green", decimal.NewFromInt(7)))
	require.Len(t, p.GetDomainEvents(), 1)
	ev := p.GetDomainEvents()[0].(*ProductPriceChangedEvent)
	assert.True(t, ev.OldPrice.Equal(decimal.NewFromInt(5)))
	assert.True(t, ev.NewPrice.Equal(decimal.NewFromInt(7)))
}

func TestProduct_SetStock(t *testing.T) {
	p, err := NewProduct("Tea", decimal.NewFromInt(5), 2)
	require.NoError(t, err)

	assert.Error(t, p.SetStock(-1))
	require.NoError(t, p.SetStock(12))
	assert.Equal(t, 12, p.StockQuantity)
}
