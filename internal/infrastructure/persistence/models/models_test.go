package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/saleledger/backend/internal/domain/partner"
	"github.com/saleledger/backend/internal/domain/sale"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFoldName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"José", "jose"},
		{"  ÁGUA Mineral ", "agua mineral"},
		{"Conceição", "conceicao"},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, FoldName(tt.in))
		})
	}
}

func TestSaleModel_RoundTripKeepsOrderAndRecomputesTotals(t *testing.T) {
	clientID := uuid.New()
	p1, p2 := uuid.New(), uuid.New()
	s, err := sale.NewSale(sale.Draft{
		Client: sale.ClientRef{ID: clientID, Name: "Ana"},
		Items: []sale.LineItem{
			{ProductID: p1, ProductName: "Bolo", Quantity: 2, UnitPrice: decimal.NewFromInt(50)},
			{ProductID: p2, ProductName: "Torta", Quantity: 1, UnitPrice: decimal.NewFromInt(30)},
		},
		Payments: []sale.Payment{{Method: sale.PaymentMethodPix, Amount: decimal.NewFromInt(100)}},
	}, sale.DefaultSaleCap, uuid.New())
	require.NoError(t, err)

	m := SaleModelFromDomain(s)
	assert.True(t, decimal.NewFromInt(130).Equal(m.TotalValue))
	assert.Equal(t, sale.StatusPending, m.Status)

	// rows may come back in any order
	m.Items[0], m.Items[1] = m.Items[1], m.Items[0]
	m.TotalValue = decimal.Zero

	back := m.ToDomain()
	assert.Equal(t, s.ID, back.ID)
	require.Len(t, back.Items, 2)
	assert.Equal(t, p1, back.Items[0].ProductID)
	assert.Equal(t, p2, back.Items[1].ProductID)
	assert.True(t, decimal.NewFromInt(130).Equal(back.TotalValue))
	assert.Equal(t, s.Payments[0].ID, back.Payments[0].ID)
	assert.Empty(t, back.GetDomainEvents())
}

func TestClientModel_FromDomain(t *testing.T) {
	c, err := partner.NewClient("Márcia", []partner.Contact{{Kind: partner.ContactKindPhone, Value: "5551"}}, nil)
	require.NoError(t, err)

	m := ClientModelFromDomain(c)
	assert.Equal(t, "marcia", m.SearchName)
	assert.Len(t, m.Contacts, 1)

	back := m.ToDomain()
	assert.Equal(t, c.Name, back.Name)
	assert.Equal(t, c.Version, back.Version)
	assert.True(t, back.Balance.IsZero())
}
