package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/ibrahimkeyboad/gostore/internal/adapter/middleware"
	"github.com/ibrahimkeyboad/gostore/internal/core/domain"
	"github.com/ibrahimkeyboad/gostore/internal/core/pricing"
	"github.com/ibrahimkeyboad/gostore/internal/core/shopping"
)

type CartHandler struct {
	Shopping *shopping.Service
	Pricing  *pricing.Engine
}

type AddItemRequest struct {
	ProductID int64  `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Currency  string `json:"currency"`
}

type cartResponse struct {
	domain.CartTotals
	ItemCount int `json:"item_count"`
}

func (h *CartHandler) View(c *fiber.Ctx) error {
	return h.respond(c, c.Query("currency"))
}

func (h *CartHandler) Add(c *fiber.Ctx) error {
	req := AddItemRequest{Quantity: 1}
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}

	sess := middleware.CurrentSession(c)
	if err := h.Shopping.AddToCart(c.UserContext(), sess, req.ProductID, req.Quantity); err != nil {
		// an unknown product is a bad request here, not a missing resource
		if errors.Is(err, domain.ErrNotFound) {
			err = domain.InvalidInput("product_not_found", "Product not found")
		}
		return respondError(c, err)
	}

	currency := req.Currency
	if currency == "" {
		currency = c.Query("currency")
	}
	return h.respond(c, currency)
}

func (h *CartHandler) Remove(c *fiber.Ctx) error {
	h.Shopping.RemoveFromCart(middleware.CurrentSession(c), paramID(c))
	return h.respond(c, c.Query("currency"))
}

func (h *CartHandler) respond(c *fiber.Ctx, currency string) error {
	sess := middleware.CurrentSession(c)
	totals, err := h.Pricing.CartTotals(c.UserContext(), sess.CartSnapshot(), h.Pricing.Currency(currency))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(cartResponse{CartTotals: totals, ItemCount: sess.CartItemCount()})
}
