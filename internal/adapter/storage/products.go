package storage

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/ibrahimkeyboad/gostore/internal/core/domain"
)

// ProductRepository reads the catalog from the relational backend.
type ProductRepository struct {
	db *DB
}

func NewProductRepository(db *DB) *ProductRepository {
	return &ProductRepository{db: db}
}

const productColumns = `id, name, description, brand, category, price, currency, stock, image, featured, tags`

func (r *ProductRepository) List(ctx context.Context) ([]domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+productColumns+` FROM products ORDER BY id`)
	if err != nil {
		return nil, domain.Persistence("failed to list products", err)
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Persistence("failed to list products", err)
	}
	return products, nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id int64) (domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = ?`
	return scanProduct(r.db.QueryRowContext(ctx, r.db.Rebind(query), id))
}

func scanProduct(row rowScanner) (domain.Product, error) {
	var (
		p                       domain.Product
		description, image, tag sql.NullString
		currency                string
	)
	err := row.Scan(&p.ID, &p.Name, &description, &p.Brand, &p.Category,
		&p.Price, &currency, &p.Stock, &image, &p.Featured, &tag)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, domain.NotFound("product_not_found", "Product not found")
	}
	if err != nil {
		return domain.Product{}, domain.Persistence("failed to read product", err)
	}
	p.Description = description.String
	p.Image = image.String
	p.Currency = domain.Currency(strings.ToUpper(strings.TrimSpace(currency)))
	p.Tags = splitTags(tag.String)
	return p, nil
}

// tags are stored comma separated
func splitTags(raw string) []string {
	tags := []string{}
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
