package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type Currency string

const (
	AUD Currency = "AUD"
	USD Currency = "USD"
	NZD Currency = "NZD"
	EUR Currency = "EUR"
)

// ParseCurrency normalizes a currency code. An empty code yields fallback.
func ParseCurrency(code string, fallback Currency) Currency {
	c := strings.ToUpper(strings.TrimSpace(code))
	if c == "" {
		return fallback
	}
	return Currency(c)
}

// Money is an amount tagged with the currency it is expressed in.
type Money struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency Currency        `json:"currency"`
}

// NewMoney creates a new Money instance
func NewMoney(amount decimal.Decimal, currency Currency) Money {
	return Money{
		Amount:   amount,
		Currency: currency,
	}
}

// Zero returns a zero amount in the given currency.
func Zero(currency Currency) Money {
	return Money{Amount: decimal.Zero, Currency: currency}
}

// Add adds two Money instances safely
func (m Money) Add(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, fmt.Errorf("currency mismatch: cannot add %s to %s", other.Currency, m.Currency)
	}
	return Money{
		Amount:   m.Amount.Add(other.Amount),
		Currency: m.Currency,
	}, nil
}

// Round returns m rounded half away from zero to two decimal places.
func (m Money) Round() Money {
	return Money{Amount: Round2(m.Amount), Currency: m.Currency}
}

// Round2 rounds half away from zero to two decimal places.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
