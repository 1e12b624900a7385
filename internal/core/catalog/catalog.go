// Package catalog is the read-only product source the rest of the core
// prices and validates against.
package catalog

import (
	"context"
	"sort"
	"strings"

	"github.com/ibrahimkeyboad/gostore/internal/core/domain"
)

// ImageResolver turns a stored image reference into a URL clients can load.
type ImageResolver interface {
	Resolve(ref string) string
}

type Service struct {
	repo   domain.ProductRepository
	images ImageResolver
}

// NewService creates a catalog over repo. images may be nil.
func NewService(repo domain.ProductRepository, images ImageResolver) *Service {
	return &Service{repo: repo, images: images}
}

// Facet is a category or brand with the number of products carrying it.
type Facet struct {
	Name     string `json:"name"`
	Products int    `json:"products"`
}

func (s *Service) ListProducts(ctx context.Context) ([]domain.Product, error) {
	products, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range products {
		products[i] = s.decorate(products[i])
	}
	return products, nil
}

// FindProduct returns a NotFound error for unknown ids.
func (s *Service) FindProduct(ctx context.Context, id int64) (domain.Product, error) {
	if id <= 0 {
		return domain.Product{}, domain.NotFound("product_not_found", "Product not found")
	}
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}
	return s.decorate(p), nil
}

func (s *Service) Categories(ctx context.Context) ([]Facet, error) {
	return s.facets(ctx, func(p domain.Product) string { return p.Category })
}

func (s *Service) Brands(ctx context.Context) ([]Facet, error) {
	return s.facets(ctx, func(p domain.Product) string { return p.Brand })
}

func (s *Service) facets(ctx context.Context, key func(domain.Product) string) ([]Facet, error) {
	products, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	for _, p := range products {
		name := strings.TrimSpace(key(p))
		if name == "" {
			continue
		}
		counts[name]++
	}
	out := make([]Facet, 0, len(counts))
	for name, n := range counts {
		out = append(out, Facet{Name: name, Products: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Service) decorate(p domain.Product) domain.Product {
	if s.images != nil && p.Image != "" {
		p.Image = s.images.Resolve(p.Image)
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	return p
}
