package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog record. The core never mutates it.
type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Brand       string          `json:"brand"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Currency    Currency        `json:"currency"`
	Stock       int             `json:"stock"`
	Image       string          `json:"image"`
	Featured    bool            `json:"featured"`
	Tags        []string        `json:"tags"`
}

// CartLine is one product in a session cart.
type CartLine struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// LineItem is a cart line resolved against the catalog in a target currency.
// Orders keep these as a frozen snapshot.
type LineItem struct {
	Product   Product         `json:"product"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type CartTotals struct {
	Currency Currency        `json:"currency"`
	Items    []LineItem      `json:"items"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Total    decimal.Decimal `json:"total"`
}

// PricedProduct is a wishlist or compare entry resolved to a price.
type PricedProduct struct {
	Product Product         `json:"product"`
	Price   decimal.Decimal `json:"price"`
}

type ResolvedList struct {
	Currency Currency        `json:"currency"`
	Items    []PricedProduct `json:"items"`
}

// Order represents a completed checkout
type Order struct {
	ID           int64           `json:"id"`
	CustomerName string          `json:"customer_name"`
	Email        string          `json:"email"`
	Phone        string          `json:"phone"`
	Currency     Currency        `json:"currency"`
	Items        []LineItem      `json:"items"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	Shipping     decimal.Decimal `json:"shipping"`
	Total        decimal.Decimal `json:"total"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Account represents a registered customer
type Account struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// RateTable holds spot rates relative to Base.
type RateTable struct {
	Base  Currency
	Rates map[Currency]decimal.Decimal
}

type ShippingRules struct {
	Base     decimal.Decimal
	PerItem  decimal.Decimal
	FreeOver decimal.Decimal
}
