package handler

import (
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/ibrahimkeyboad/gostore/internal/adapter/middleware"
	"github.com/ibrahimkeyboad/gostore/internal/core/domain"
	"github.com/ibrahimkeyboad/gostore/internal/core/identity"
)

type AccountHandler struct {
	Gate *identity.Gate
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func userView(acc domain.Account) fiber.Map {
	return fiber.Map{"id": acc.ID, "email": acc.Email, "name": acc.Name}
}

func (h *AccountHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest

	// 1. Parse JSON
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}

	// 2. Create the account and sign in
	acc, err := h.Gate.Register(c.UserContext(), middleware.CurrentSession(c), req.Email, req.Name, req.Password)
	if err != nil {
		return respondError(c, err)
	}

	// 3. Return Success
	return c.Status(http.StatusCreated).JSON(fiber.Map{"user": userView(acc)})
}

func (h *AccountHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}

	acc, err := h.Gate.Login(c.UserContext(), middleware.CurrentSession(c), req.Email, req.Password)
	if err != nil {
		slog.Warn("Customer login rejected", "error", err)
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"user": userView(acc)})
}

func (h *AccountHandler) Logout(c *fiber.Ctx) error {
	h.Gate.Logout(middleware.CurrentSession(c))
	return c.JSON(fiber.Map{"ok": true})
}

func (h *AccountHandler) Orders(c *fiber.Ctx) error {
	orders, err := h.Gate.CustomerOrders(c.UserContext(), middleware.CurrentSession(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"orders": orders})
}
