package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ibrahimkeyboad/gostore/internal/core/domain"
)

// LedgerRepository is the relational order ledger. Line items are stored
// as a JSON snapshot next to the order header.
type LedgerRepository struct {
	db *DB
}

func NewLedgerRepository(db *DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

const orderColumns = `id, customer_name, email, phone, subtotal, shipping, total, currency, items_json, created_at`

// Save inserts the order and returns it with its generated id.
func (r *LedgerRepository) Save(ctx context.Context, order domain.Order) (domain.Order, error) {
	items, err := json.Marshal(order.Items)
	if err != nil {
		return domain.Order{}, fmt.Errorf("encode order items: %w", err)
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now().UTC()
	}

	id, err := r.db.insertReturningID(ctx, `
		INSERT INTO orders (customer_name, email, phone, subtotal, shipping, total, currency, items_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		order.CustomerName, order.Email, order.Phone,
		order.Subtotal, order.Shipping, order.Total,
		string(order.Currency), string(items), order.CreatedAt,
	)
	if err != nil {
		return domain.Order{}, domain.Persistence("failed to save order", err)
	}
	order.ID = id
	return order, nil
}

// List returns orders newest first, optionally filtered by email.
func (r *LedgerRepository) List(ctx context.Context, email string) ([]domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders`
	var args []any
	if email = strings.TrimSpace(email); email != "" {
		query += ` WHERE LOWER(email) = ?`
		args = append(args, strings.ToLower(email))
	}
	query += ` ORDER BY id DESC`

	rows, err := r.db.QueryContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return nil, domain.Persistence("failed to list orders", err)
	}
	defer rows.Close()

	orders := []domain.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Persistence("failed to list orders", err)
	}
	return orders, nil
}

func (r *LedgerRepository) FindByID(ctx context.Context, id int64) (domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = ?`
	return scanOrder(r.db.QueryRowContext(ctx, r.db.Rebind(query), id))
}

func scanOrder(row rowScanner) (domain.Order, error) {
	var (
		o        domain.Order
		currency string
		items    string
	)
	err := row.Scan(&o.ID, &o.CustomerName, &o.Email, &o.Phone,
		&o.Subtotal, &o.Shipping, &o.Total, &currency, &items, &o.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Order{}, domain.NotFound("order_not_found", "Order not found")
	}
	if err != nil {
		return domain.Order{}, domain.Persistence("failed to read order", err)
	}
	o.Currency = domain.Currency(currency)
	if err := json.Unmarshal([]byte(items), &o.Items); err != nil {
		return domain.Order{}, domain.Persistence("corrupt order items", err)
	}
	if o.Items == nil {
		o.Items = []domain.LineItem{}
	}
	return o, nil
}
