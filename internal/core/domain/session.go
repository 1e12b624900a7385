package domain

import (
	"slices"
	"time"
)

// Session is the per-visitor state every session-scoped operation works on.
// It is loaded at the start of a request and saved at the end; concurrent
// requests for the same id overwrite each other.
type Session struct {
	ID         string     `json:"id"`
	Cart       []CartLine `json:"cart"`
	Wishlist   []int64    `json:"wishlist"`
	Compare    []int64    `json:"compare"`
	CustomerID int64      `json:"customer_id,omitempty"`
	Admin      bool       `json:"admin,omitempty"`
	ExpiresAt  time.Time  `json:"expires_at"`
}

func NewSession(id string) *Session {
	return &Session{
		ID:       id,
		Cart:     []CartLine{},
		Wishlist: []int64{},
		Compare:  []int64{},
	}
}

// AddCartLine increments the quantity of an existing line or appends a new one.
func (s *Session) AddCartLine(productID int64, quantity int) {
	for i := range s.Cart {
		if s.Cart[i].ProductID == productID {
			s.Cart[i].Quantity += quantity
			return
		}
	}
	s.Cart = append(s.Cart, CartLine{ProductID: productID, Quantity: quantity})
}

func (s *Session) RemoveCartLine(productID int64) {
	s.Cart = slices.DeleteFunc(s.Cart, func(l CartLine) bool { return l.ProductID == productID })
}

// CartItemCount sums quantities across every line.
func (s *Session) CartItemCount() int {
	n := 0
	for _, l := range s.Cart {
		n += l.Quantity
	}
	return n
}

func (s *Session) ClearCart() {
	s.Cart = []CartLine{}
}

func (s *Session) CartSnapshot() []CartLine {
	return slices.Clone(s.Cart)
}

func addID(ids []int64, id int64) []int64 {
	if slices.Contains(ids, id) {
		return ids
	}
	return append(ids, id)
}

func removeID(ids []int64, id int64) []int64 {
	return slices.DeleteFunc(ids, func(v int64) bool { return v == id })
}

func (s *Session) AddWishlist(id int64)    { s.Wishlist = addID(s.Wishlist, id) }
func (s *Session) RemoveWishlist(id int64) { s.Wishlist = removeID(s.Wishlist, id) }
func (s *Session) AddCompare(id int64)     { s.Compare = addID(s.Compare, id) }
func (s *Session) RemoveCompare(id int64)  { s.Compare = removeID(s.Compare, id) }

// Normalize replaces nil collections with empty ones after decoding.
func (s *Session) Normalize() {
	if s.Cart == nil {
		s.Cart = []CartLine{}
	}
	if s.Wishlist == nil {
		s.Wishlist = []int64{}
	}
	if s.Compare == nil {
		s.Compare = []int64{}
	}
}
