package domain

import "context"

// ProductRepository is the read side of the catalog.
type ProductRepository interface {
	List(ctx context.Context) ([]Product, error)
	FindByID(ctx context.Context, id int64) (Product, error)
}

// OrderRepository is the order ledger. List returns newest id first; a
// non-empty email filters by case-insensitive exact match.
type OrderRepository interface {
	Save(ctx context.Context, order Order) (Order, error)
	List(ctx context.Context, email string) ([]Order, error)
	FindByID(ctx context.Context, id int64) (Order, error)
}

type UserRepository interface {
	Create(ctx context.Context, account Account) (Account, error)
	FindByEmail(ctx context.Context, email string) (Account, error)
	FindByID(ctx context.Context, id int64) (Account, error)
	List(ctx context.Context) ([]Account, error)
}
