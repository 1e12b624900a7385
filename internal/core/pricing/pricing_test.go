package pricing

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ibrahimkeyboad/gostore/internal/core/domain"
)

type staticCatalog struct {
	products []domain.Product
	err      error
}

func (c staticCatalog) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return c.products, c.err
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func testRates() domain.RateTable {
	return domain.RateTable{
		Base: domain.AUD,
		Rates: map[domain.Currency]decimal.Decimal{
			domain.AUD: d("1"),
			domain.USD: d("0.67"),
			domain.NZD: d("1.09"),
			domain.EUR: d("0.61"),
			"XXX":      d("0"),
		},
	}
}

func testShipping() domain.ShippingRules {
	return domain.ShippingRules{Base: d("9.95"), PerItem: d("1.5"), FreeOver: d("150")}
}

func newEngine(products ...domain.Product) *Engine {
	return NewEngine(testRates(), testShipping(), staticCatalog{products: products})
}

func TestConvert(t *testing.T) {
	e := newEngine()
	tests := []struct {
		name     string
		amount   string
		from, to domain.Currency
		want     string
	}{
		{"base to quote", "100", domain.AUD, domain.USD, "67"},
		{"quote to base", "10", domain.USD, domain.AUD, "14.93"},
		{"cross rate", "10", domain.USD, domain.EUR, "9.1"},
		{"same currency rounds", "10.005", domain.AUD, domain.AUD, "10.01"},
		{"unknown target fails open", "10.123", domain.AUD, "JPY", "10.123"},
		{"unknown source fails open", "10.123", "JPY", domain.AUD, "10.123"},
		{"non-positive source rate fails open", "5.555", "XXX", domain.AUD, "5.555"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Convert(d(tt.amount), tt.from, tt.to)
			assert.True(t, got.Equal(d(tt.want)), "got %s want %s", got, tt.want)
		})
	}
}

func TestConvertRoundTripWithinRoundingTolerance(t *testing.T) {
	e := newEngine()
	rates := testRates().Rates
	currencies := []domain.Currency{domain.AUD, domain.USD, domain.NZD, domain.EUR}
	half := d("0.005")
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 500; i++ {
		amount := decimal.New(rng.Int63n(1_000_000), -2)
		a := currencies[rng.Intn(len(currencies))]
		b := currencies[rng.Intn(len(currencies))]

		back := e.Convert(e.Convert(amount, a, b), b, a)
		// first rounding error is scaled by rate[a]/rate[b] on the way back
		tolerance := half.Mul(rates[a]).Div(rates[b]).Add(half)
		assert.True(t, back.Sub(amount).Abs().LessThanOrEqual(tolerance),
			"%s %s->%s->%s = %s (tolerance %s)", amount, a, b, a, back, tolerance)
	}
}

func TestShippingCost(t *testing.T) {
	e := newEngine()
	assert.True(t, e.ShippingCost(d("150.00"), 3).IsZero())
	assert.True(t, e.ShippingCost(d("400"), 1).IsZero())
	assert.Equal(t, "12.95", e.ShippingCost(d("149.99"), 2).String())
	assert.Equal(t, "11.45", e.ShippingCost(d("0"), 0).String(), "at least one item is charged")
}

func TestCartTotals(t *testing.T) {
	e := newEngine(
		domain.Product{ID: 1, Name: "Kit", Price: d("100"), Currency: domain.AUD},
		domain.Product{ID: 2, Name: "Tank", Price: d("20.10"), Currency: domain.USD},
		domain.Product{ID: 3, Name: "Coil", Price: d("4.99")},
	)
	ctx := context.Background()

	t.Run("free shipping over threshold", func(t *testing.T) {
		totals, err := e.CartTotals(ctx, []domain.CartLine{{ProductID: 1, Quantity: 1}, {ProductID: 2, Quantity: 2}}, domain.AUD)
		require.NoError(t, err)
		require.Len(t, totals.Items, 2)
		assert.Equal(t, "30", totals.Items[1].Price.String())
		assert.Equal(t, "60", totals.Items[1].LineTotal.String())
		assert.Equal(t, "160", totals.Subtotal.String())
		assert.True(t, totals.Shipping.IsZero())
		assert.Equal(t, "160", totals.Total.String())
	})

	t.Run("converted with shipping", func(t *testing.T) {
		totals, err := e.CartTotals(ctx, []domain.CartLine{{ProductID: 1, Quantity: 1}}, domain.USD)
		require.NoError(t, err)
		assert.Equal(t, domain.USD, totals.Currency)
		assert.Equal(t, "67", totals.Subtotal.String())
		assert.Equal(t, "11.45", totals.Shipping.String())
		assert.Equal(t, "78.45", totals.Total.String())
	})

	t.Run("missing products are dropped", func(t *testing.T) {
		totals, err := e.CartTotals(ctx, []domain.CartLine{{ProductID: 1, Quantity: 1}, {ProductID: 99, Quantity: 3}}, domain.USD)
		require.NoError(t, err)
		require.Len(t, totals.Items, 1)
		assert.Equal(t, "67", totals.Subtotal.String())
		assert.Equal(t, "15.95", totals.Shipping.String())
		assert.Equal(t, "82.95", totals.Total.String())
	})

	t.Run("product without currency is priced in base", func(t *testing.T) {
		totals, err := e.CartTotals(ctx, []domain.CartLine{{ProductID: 3, Quantity: 2}}, domain.AUD)
		require.NoError(t, err)
		assert.Equal(t, "9.98", totals.Subtotal.String())
	})

	t.Run("empty cart", func(t *testing.T) {
		totals, err := e.CartTotals(ctx, nil, domain.AUD)
		require.NoError(t, err)
		assert.Empty(t, totals.Items)
		assert.NotNil(t, totals.Items)
		assert.True(t, totals.Subtotal.IsZero())
	})
}

func TestCartTotalsInvariant(t *testing.T) {
	var products []domain.Product
	currencies := []domain.Currency{domain.AUD, domain.USD, domain.NZD, domain.EUR}
	rng := rand.New(rand.NewSource(7))
	for i := int64(1); i <= 20; i++ {
		products = append(products, domain.Product{
			ID:       i,
			Price:    decimal.New(rng.Int63n(20_000), -2),
			Currency: currencies[rng.Intn(len(currencies))],
		})
	}
	e := newEngine(products...)

	for i := 0; i < 200; i++ {
		var lines []domain.CartLine
		for j := 0; j < rng.Intn(6); j++ {
			lines = append(lines, domain.CartLine{ProductID: rng.Int63n(25) + 1, Quantity: rng.Intn(4) + 1})
		}
		currency := currencies[rng.Intn(len(currencies))]
		totals, err := e.CartTotals(context.Background(), lines, currency)
		require.NoError(t, err)
		want := domain.Round2(totals.Subtotal).Add(domain.Round2(totals.Shipping))
		assert.True(t, totals.Total.Equal(want), "total %s != %s + %s", totals.Total, totals.Subtotal, totals.Shipping)
	}
}

func TestResolveList(t *testing.T) {
	e := newEngine(
		domain.Product{ID: 1, Price: d("100"), Currency: domain.AUD},
		domain.Product{ID: 2, Price: d("10"), Currency: domain.USD},
	)
	list, err := e.ResolveList(context.Background(), []int64{2, 42, 1}, domain.NZD)
	require.NoError(t, err)
	assert.Equal(t, domain.NZD, list.Currency)
	require.Len(t, list.Items, 2)
	assert.Equal(t, int64(2), list.Items[0].Product.ID)
	assert.Equal(t, "16.27", list.Items[0].Price.String())
	assert.Equal(t, "109", list.Items[1].Price.String())
}

func TestCatalogErrorsPropagate(t *testing.T) {
	boom := errors.New("catalog down")
	e := NewEngine(testRates(), testShipping(), staticCatalog{err: boom})
	_, err := e.CartTotals(context.Background(), []domain.CartLine{{ProductID: 1, Quantity: 1}}, domain.AUD)
	assert.ErrorIs(t, err, boom)
}
