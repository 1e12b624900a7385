package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/ibrahimkeyboad/gostore/internal/adapter/middleware"
	"github.com/ibrahimkeyboad/gostore/internal/adapter/storage"
	"github.com/ibrahimkeyboad/gostore/internal/core/catalog"
	"github.com/ibrahimkeyboad/gostore/internal/core/checkout"
	"github.com/ibrahimkeyboad/gostore/internal/core/identity"
	"github.com/ibrahimkeyboad/gostore/internal/core/pricing"
	"github.com/ibrahimkeyboad/gostore/internal/core/shopping"
	"github.com/ibrahimkeyboad/gostore/internal/metrics"
)

// HealthChecker reports which storage backend is serving orders.
type HealthChecker interface {
	Mode() string
	Ping(ctx context.Context) error
}

type Deps struct {
	Catalog     *catalog.Service
	Pricing     *pricing.Engine
	Shopping    *shopping.Service
	Checkout    *checkout.Service
	Identity    *identity.Gate
	Sessions    storage.SessionStore
	Idempotency storage.IdempotencyStore
	Metrics     *metrics.Registry
	Health      HealthChecker

	SecureCookies bool
}

func NewApp(d Deps) *fiber.App {
	// Immutable: request strings end up in orders, events and metric
	// labels that outlive the handler.
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		Immutable:             true,
		ErrorHandler:          ErrorHandler,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{AllowCredentials: false, ExposeHeaders: middleware.SessionHeader}))

	app.Get("/healthz", healthz(d.Health))
	if d.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(d.Metrics.Handler()))
	}

	catalogHandler := &CatalogHandler{Catalog: d.Catalog}
	cartHandler := &CartHandler{Shopping: d.Shopping, Pricing: d.Pricing}
	wishlistHandler := &ListHandler{Shopping: d.Shopping, Pricing: d.Pricing}
	compareHandler := &ListHandler{Shopping: d.Shopping, Pricing: d.Pricing, Compare: true}
	checkoutHandler := &CheckoutHandler{Checkout: d.Checkout}
	accountHandler := &AccountHandler{Gate: d.Identity}
	orderHandler := &OrderHandler{Gate: d.Identity}
	adminHandler := &AdminHandler{Gate: d.Identity}

	api := app.Group("/v1")

	// Catalog
	api.Get("/products", catalogHandler.Products)
	api.Get("/categories", catalogHandler.Categories)
	api.Get("/brands", catalogHandler.Brands)
	api.Get("/orders/:id", orderHandler.Lookup)

	// Session scoped
	s := api.Group("", middleware.Session(d.Sessions, d.SecureCookies))
	s.Get("/cart", cartHandler.View)
	s.Post("/cart/items", cartHandler.Add)
	s.Delete("/cart/items/:id", cartHandler.Remove)

	s.Get("/wishlist", wishlistHandler.View)
	s.Post("/wishlist", wishlistHandler.Add)
	s.Delete("/wishlist/:id", wishlistHandler.Remove)

	s.Get("/compare", compareHandler.View)
	s.Post("/compare", compareHandler.Add)
	s.Delete("/compare/:id", compareHandler.Remove)

	s.Post("/checkout", middleware.Idempotency(d.Idempotency), checkoutHandler.PlaceOrder)

	s.Post("/customers/register", accountHandler.Register)
	s.Post("/customers/login", accountHandler.Login)
	s.Post("/customers/logout", accountHandler.Logout)
	s.Get("/customers/me/orders", middleware.RequireCustomer(), accountHandler.Orders)

	s.Post("/admin/login", adminHandler.Login)
	s.Post("/admin/logout", adminHandler.Logout)
	s.Get("/admin/orders", middleware.RequireAdmin(), adminHandler.Orders)
	s.Get("/admin/customers", middleware.RequireAdmin(), adminHandler.Customers)

	return app
}

func healthz(h HealthChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if h == nil {
			return c.JSON(fiber.Map{"status": "ok"})
		}
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := h.Ping(ctx); err != nil {
			return c.Status(http.StatusServiceUnavailable).JSON(fiber.Map{
				"status":  "degraded",
				"storage": h.Mode(),
				"error":   err.Error(),
			})
		}
		return c.JSON(fiber.Map{"status": "ok", "storage": h.Mode()})
	}
}
