// Package shopping mutates the cart, wishlist and compare list held in a
// visitor session.
package shopping

import (
	"context"

	"github.com/ibrahimkeyboad/gostore/internal/core/domain"
	"github.com/ibrahimkeyboad/gostore/internal/metrics"
)

type ProductFinder interface {
	FindProduct(ctx context.Context, id int64) (domain.Product, error)
}

type Service struct {
	products ProductFinder
	metrics  *metrics.Registry
}

func NewService(products ProductFinder, m *metrics.Registry) *Service {
	return &Service{products: products, metrics: m}
}

// AddToCart checks the product exists before touching the cart. Quantities
// below one are treated as one.
func (s *Service) AddToCart(ctx context.Context, sess *domain.Session, productID int64, quantity int) error {
	if _, err := s.products.FindProduct(ctx, productID); err != nil {
		return err
	}
	sess.AddCartLine(productID, max(1, quantity))
	s.metrics.SessionMutation("cart", "add")
	return nil
}

func (s *Service) RemoveFromCart(sess *domain.Session, productID int64) {
	sess.RemoveCartLine(productID)
	s.metrics.SessionMutation("cart", "remove")
}

// AddToWishlist only validates the id; existence is checked when the list
// is rendered.
func (s *Service) AddToWishlist(sess *domain.Session, productID int64) error {
	if productID <= 0 {
		return invalidProductID()
	}
	sess.AddWishlist(productID)
	s.metrics.SessionMutation("wishlist", "add")
	return nil
}

func (s *Service) RemoveFromWishlist(sess *domain.Session, productID int64) {
	sess.RemoveWishlist(productID)
	s.metrics.SessionMutation("wishlist", "remove")
}

func (s *Service) AddToCompare(sess *domain.Session, productID int64) error {
	if productID <= 0 {
		return invalidProductID()
	}
	sess.AddCompare(productID)
	s.metrics.SessionMutation("compare", "add")
	return nil
}

func (s *Service) RemoveFromCompare(sess *domain.Session, productID int64) {
	sess.RemoveCompare(productID)
	s.metrics.SessionMutation("compare", "remove")
}

func invalidProductID() error {
	return domain.InvalidInput("invalid_product_id", "A valid product_id is required")
}
