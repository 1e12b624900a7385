package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ibrahimkeyboad/gostore/internal/adapter/middleware"
	"github.com/ibrahimkeyboad/gostore/internal/core/domain"
	"github.com/ibrahimkeyboad/gostore/internal/core/pricing"
	"github.com/ibrahimkeyboad/gostore/internal/core/shopping"
)

// ListHandler serves the wishlist and compare list, which behave the same
// apart from which session field they touch.
type ListHandler struct {
	Shopping *shopping.Service
	Pricing  *pricing.Engine
	Compare  bool
}

type ListItemRequest struct {
	ProductID int64  `json:"product_id"`
	Currency  string `json:"currency"`
}

func (h *ListHandler) ids(sess *domain.Session) []int64 {
	if h.Compare {
		return sess.Compare
	}
	return sess.Wishlist
}

func (h *ListHandler) View(c *fiber.Ctx) error {
	return h.respond(c, c.Query("currency"))
}

func (h *ListHandler) Add(c *fiber.Ctx) error {
	var req ListItemRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}

	sess := middleware.CurrentSession(c)
	var err error
	if h.Compare {
		err = h.Shopping.AddToCompare(sess, req.ProductID)
	} else {
		err = h.Shopping.AddToWishlist(sess, req.ProductID)
	}
	if err != nil {
		return respondError(c, err)
	}

	currency := req.Currency
	if currency == "" {
		currency = c.Query("currency")
	}
	return h.respond(c, currency)
}

func (h *ListHandler) Remove(c *fiber.Ctx) error {
	sess := middleware.CurrentSession(c)
	if h.Compare {
		h.Shopping.RemoveFromCompare(sess, paramID(c))
	} else {
		h.Shopping.RemoveFromWishlist(sess, paramID(c))
	}
	return h.respond(c, c.Query("currency"))
}

func (h *ListHandler) respond(c *fiber.Ctx, currency string) error {
	sess := middleware.CurrentSession(c)
	list, err := h.Pricing.ResolveList(c.UserContext(), h.ids(sess), h.Pricing.Currency(currency))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}
