// Package pricing converts catalog prices into a requested currency and
// computes cart subtotal, shipping and total.
//
// Rounding happens at conversion and at each aggregate: subtotal and shipping
// are rounded independently and the total is their rounded sum.
package pricing

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/ibrahimkeyboad/gostore/internal/core/domain"
)

type ProductSource interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
}

type Engine struct {
	rates    domain.RateTable
	shipping domain.ShippingRules
	catalog  ProductSource
}

func NewEngine(rates domain.RateTable, shipping domain.ShippingRules, catalog ProductSource) *Engine {
	return &Engine{rates: rates, shipping: shipping, catalog: catalog}
}

func (e *Engine) BaseCurrency() domain.Currency { return e.rates.Base }

// Currency normalizes a requested currency code, defaulting to the base.
func (e *Engine) Currency(code string) domain.Currency {
	return domain.ParseCurrency(code, e.rates.Base)
}

// Convert moves amount from one currency to another through the base rate
// table. A currency missing from the table, or a non-positive source rate,
// returns amount unchanged: an incomplete rate table must never block a sale.
func (e *Engine) Convert(amount decimal.Decimal, from, to domain.Currency) decimal.Decimal {
	fromRate, okFrom := e.rates.Rates[from]
	toRate, okTo := e.rates.Rates[to]
	if !okFrom || !okTo || !fromRate.IsPositive() {
		return amount
	}
	return domain.Round2(amount.Div(fromRate).Mul(toRate))
}

// ShippingCost is free at or above the free-over threshold, otherwise a base
// fee plus a per-item fee for at least one item.
func (e *Engine) ShippingCost(subtotal decimal.Decimal, itemCount int) decimal.Decimal {
	if subtotal.GreaterThanOrEqual(e.shipping.FreeOver) {
		return decimal.Zero
	}
	if itemCount < 1 {
		itemCount = 1
	}
	return e.shipping.Base.Add(e.shipping.PerItem.Mul(decimal.NewFromInt(int64(itemCount))))
}

// CartTotals prices lines in currency. Lines whose product has left the
// catalog are dropped; their quantities still count toward shipping.
func (e *Engine) CartTotals(ctx context.Context, lines []domain.CartLine, currency domain.Currency) (domain.CartTotals, error) {
	lookup, err := e.lookup(ctx)
	if err != nil {
		return domain.CartTotals{}, err
	}

	subtotal := domain.Zero(currency)
	items := make([]domain.LineItem, 0, len(lines))
	itemCount := 0
	for _, line := range lines {
		itemCount += line.Quantity
		product, ok := lookup[line.ProductID]
		if !ok {
			continue
		}
		price := e.unitPrice(product, currency)
		lineTotal := price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		if subtotal, err = subtotal.Add(domain.NewMoney(lineTotal, currency)); err != nil {
			return domain.CartTotals{}, err
		}
		items = append(items, domain.LineItem{
			Product:   product,
			Quantity:  line.Quantity,
			Price:     price,
			LineTotal: lineTotal,
		})
	}

	shipping := domain.NewMoney(e.ShippingCost(subtotal.Amount, itemCount), currency).Round()
	subtotal = subtotal.Round()
	total, err := subtotal.Add(shipping)
	if err != nil {
		return domain.CartTotals{}, err
	}

	return domain.CartTotals{
		Currency: currency,
		Items:    items,
		Subtotal: subtotal.Amount,
		Shipping: shipping.Amount,
		Total:    total.Round().Amount,
	}, nil
}

// ResolveList prices wishlist or compare ids, skipping products that no
// longer exist.
func (e *Engine) ResolveList(ctx context.Context, ids []int64, currency domain.Currency) (domain.ResolvedList, error) {
	lookup, err := e.lookup(ctx)
	if err != nil {
		return domain.ResolvedList{}, err
	}
	items := make([]domain.PricedProduct, 0, len(ids))
	for _, id := range ids {
		product, ok := lookup[id]
		if !ok {
			continue
		}
		items = append(items, domain.PricedProduct{Product: product, Price: e.unitPrice(product, currency)})
	}
	return domain.ResolvedList{Currency: currency, Items: items}, nil
}

func (e *Engine) unitPrice(p domain.Product, currency domain.Currency) decimal.Decimal {
	from := p.Currency
	if from == "" {
		from = e.rates.Base
	}
	return e.Convert(p.Price, from, currency)
}

func (e *Engine) lookup(ctx context.Context) (map[int64]domain.Product, error) {
	products, err := e.catalog.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	lookup := make(map[int64]domain.Product, len(products))
	for _, p := range products {
		lookup[p.ID] = p
	}
	return lookup, nil
}
