package handler

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/ibrahimkeyboad/gostore/internal/adapter/middleware"
	"github.com/ibrahimkeyboad/gostore/internal/core/checkout"
)

type CheckoutHandler struct {
	Checkout *checkout.Service
}

func (h *CheckoutHandler) PlaceOrder(c *fiber.Ctx) error {
	var req checkout.Request
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return invalidBody(c, err)
		}
	}
	if req.Currency == "" {
		req.Currency = c.Query("currency")
	}

	order, err := h.Checkout.Checkout(c.UserContext(), middleware.CurrentSession(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"order": order})
}
