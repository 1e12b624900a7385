package handler

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/ibrahimkeyboad/gostore/internal/adapter/middleware"
	"github.com/ibrahimkeyboad/gostore/internal/core/identity"
)

type AdminHandler struct {
	Gate *identity.Gate
}

func (h *AdminHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}
	if err := h.Gate.AdminLogin(middleware.CurrentSession(c), req.Email, req.Password); err != nil {
		slog.Warn("🚫 Admin login rejected", "ip", c.IP())
		return respondError(c, err)
	}
	slog.Info("🔑 Admin signed in", "ip", c.IP())
	return c.JSON(fiber.Map{"ok": true, "admin": fiber.Map{"email": h.Gate.AdminEmail()}})
}

func (h *AdminHandler) Logout(c *fiber.Ctx) error {
	h.Gate.AdminLogout(middleware.CurrentSession(c))
	return c.JSON(fiber.Map{"ok": true})
}

func (h *AdminHandler) Orders(c *fiber.Ctx) error {
	orders, err := h.Gate.AdminOrders(c.UserContext(), middleware.CurrentSession(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"orders": orders})
}

func (h *AdminHandler) Customers(c *fiber.Ctx) error {
	customers, err := h.Gate.AdminCustomers(c.UserContext(), middleware.CurrentSession(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"customers": customers})
}
