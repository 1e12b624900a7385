package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ibrahimkeyboad/gostore/internal/core/identity"
)

type OrderHandler struct {
	Gate *identity.Gate
}

// Lookup returns any order by id, whoever asks.
func (h *OrderHandler) Lookup(c *fiber.Ctx) error {
	order, err := h.Gate.LookupOrder(c.UserContext(), paramID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"order": order})
}
