package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ibrahimkeyboad/gostore/internal/adapter/middleware"
	"github.com/ibrahimkeyboad/gostore/internal/adapter/storage"
	"github.com/ibrahimkeyboad/gostore/internal/core/catalog"
	"github.com/ibrahimkeyboad/gostore/internal/core/checkout"
	"github.com/ibrahimkeyboad/gostore/internal/core/domain"
	"github.com/ibrahimkeyboad/gostore/internal/core/identity"
	"github.com/ibrahimkeyboad/gostore/internal/core/pricing"
	"github.com/ibrahimkeyboad/gostore/internal/core/shopping"
	"github.com/ibrahimkeyboad/gostore/internal/metrics"
)

const testProducts = `[
	{"id": 1, "name": "Mug", "brand": "Acme", "category": "Kitchen", "price": 20, "currency": "AUD"},
	{"id": 2, "name": "Tee", "brand": "Bolt", "category": "Apparel", "price": 45.5, "currency": "AUD"}
]`

func TestMain(m *testing.M) {
	decimal.MarshalJSONWithoutQuotes = true
	os.Exit(m.Run())
}

func newTestApp(t *testing.T) (*fiber.App, *storage.Backends) {
	t.Helper()
	app, backends, _ := newTestAppWith(t, nil)
	return app, backends
}

func newTestAppWith(t *testing.T, notifier checkout.Notifier) (*fiber.App, *storage.Backends, *metrics.Registry) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "products.json"), []byte(testProducts), 0o644))

	m := metrics.NewRegistry()
	backends, err := storage.Open(context.Background(), storage.Options{DataDir: dir, Metrics: m})
	require.NoError(t, err)

	rates := domain.RateTable{Base: domain.AUD, Rates: map[domain.Currency]decimal.Decimal{
		domain.AUD: decimal.NewFromInt(1),
		domain.USD: decimal.RequireFromString("0.67"),
	}}
	shippingRules := domain.ShippingRules{
		Base:     decimal.RequireFromString("9.95"),
		PerItem:  decimal.RequireFromString("1.5"),
		FreeOver: decimal.NewFromInt(150),
	}

	cat := catalog.NewService(backends.Products, nil)
	engine := pricing.NewEngine(rates, shippingRules, cat)
	gate := identity.NewGate(identity.AdminCredentials{Email: "admin@example.com", Password: "secret"}, backends.Users, backends.Orders)

	app := NewApp(Deps{
		Catalog:     cat,
		Pricing:     engine,
		Shopping:    shopping.NewService(cat, m),
		Checkout:    checkout.NewService(engine, backends.Orders, notifier, m),
		Identity:    gate,
		Sessions:    storage.NewMemorySessionStore(time.Hour),
		Idempotency: backends.Idempotency,
		Metrics:     m,
		Health:      backends,
	})
	return app, backends, m
}

type capturingNotifier struct {
	mu     sync.Mutex
	orders []domain.Order
}

func (n *capturingNotifier) Notify(_ context.Context, order domain.Order) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.orders = append(n.orders, order)
}

type client struct {
	t       *testing.T
	app     *fiber.App
	session string
}

func (c *client) do(method, path string, body any, headers ...string) (int, map[string]any, http.Header) {
	c.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.session != "" {
		req.Header.Set(middleware.SessionHeader, c.session)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := c.app.Test(req, -1)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	if id := resp.Header.Get(middleware.SessionHeader); id != "" {
		c.session = id
	}
	out := map[string]any{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	if len(raw) > 0 {
		require.NoError(c.t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out, resp.Header
}

func TestCatalogRoutes(t *testing.T) {
	app, _ := newTestApp(t)
	c := &client{t: t, app: app}

	status, body, _ := c.do("GET", "/v1/products", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Len(t, body["products"], 2)

	status, body, _ = c.do("GET", "/v1/categories", nil)
	assert.Equal(t, http.StatusOK, status)
	cats := body["categories"].([]any)
	require.Len(t, cats, 2)
	assert.Equal(t, "Apparel", cats[0].(map[string]any)["name"])

	status, body, _ = c.do("GET", "/v1/brands", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Len(t, body["brands"], 2)
}

func TestCartAndCheckoutFlow(t *testing.T) {
	app, backends := newTestApp(t)
	c := &client{t: t, app: app}

	status, body, _ := c.do("POST", "/v1/checkout", map[string]any{"customer_name": "Ada"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "cart_empty", body["code"])

	status, body, _ = c.do("POST", "/v1/cart/items", map[string]any{"product_id": 999, "quantity": 1})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "product_not_found", body["code"])

	status, body, _ = c.do("POST", "/v1/cart/items", map[string]any{"product_id": 1, "quantity": 2})
	require.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, c.session)
	assert.Equal(t, 40.0, body["subtotal"])
	assert.Equal(t, 12.95, body["shipping"])
	assert.Equal(t, 2.0, body["item_count"])

	status, body, _ = c.do("GET", "/v1/cart?currency=usd", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "USD", body["currency"])
	assert.Equal(t, 26.8, body["subtotal"])

	status, body, _ = c.do("POST", "/v1/checkout", map[string]any{"customer_name": "Ada", "email": "ada@example.com"})
	require.Equal(t, http.StatusCreated, status)
	order := body["order"].(map[string]any)
	assert.Equal(t, 1.0, order["id"])
	assert.Equal(t, 52.95, order["total"])

	_, body, _ = c.do("GET", "/v1/cart", nil)
	assert.Empty(t, body["items"])

	status, body, _ = c.do("GET", "/v1/orders/1", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Ada", body["order"].(map[string]any)["customer_name"])

	for _, path := range []string{"/v1/orders/0", "/v1/orders/abc", "/v1/orders/42"} {
		status, _, _ = c.do("GET", path, nil)
		assert.Equal(t, http.StatusNotFound, status, path)
	}

	assert.Equal(t, "json", backends.Mode())
}

func TestCheckoutIdempotencyKeyReplays(t *testing.T) {
	app, backends := newTestApp(t)
	c := &client{t: t, app: app}

	_, _, _ = c.do("POST", "/v1/cart/items", map[string]any{"product_id": 2})
	status, first, _ := c.do("POST", "/v1/checkout", map[string]any{}, "Idempotency-Key", "k-1")
	require.Equal(t, http.StatusCreated, status)

	status, second, hdr := c.do("POST", "/v1/checkout", map[string]any{}, "Idempotency-Key", "k-1")
	assert.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "true", hdr.Get("X-Idempotency-Hit"))
	assert.Equal(t, first, second)

	orders, err := backends.Orders.List(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}

func TestRemoveIsIdempotent(t *testing.T) {
	app, _ := newTestApp(t)
	c := &client{t: t, app: app}

	_, _, _ = c.do("POST", "/v1/cart/items", map[string]any{"product_id": 1, "quantity": 3})
	for i := 0; i < 2; i++ {
		status, body, _ := c.do("DELETE", "/v1/cart/items/1", nil)
		assert.Equal(t, http.StatusOK, status)
		assert.Empty(t, body["items"])
	}
	status, _, _ := c.do("DELETE", "/v1/cart/items/not-a-number", nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestWishlistAndCompare(t *testing.T) {
	app, _ := newTestApp(t)
	c := &client{t: t, app: app}

	status, body, _ := c.do("POST", "/v1/wishlist", map[string]any{"product_id": 0})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "invalid_product_id", body["code"])

	status, body, _ = c.do("POST", "/v1/wishlist", map[string]any{"product_id": 2})
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["items"], 1)

	// unknown ids are accepted and skipped when rendered
	status, body, _ = c.do("POST", "/v1/compare", map[string]any{"product_id": 77})
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, body["items"])

	status, body, _ = c.do("DELETE", "/v1/wishlist/2", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, body["items"])
}

func TestCustomerAccountFlow(t *testing.T) {
	app, _ := newTestApp(t)
	c := &client{t: t, app: app}

	status, _, _ := c.do("GET", "/v1/customers/me/orders", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body, _ := c.do("POST", "/v1/customers/register", map[string]any{"email": "ada@example.com"})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "missing_fields", body["code"])

	status, body, _ = c.do("POST", "/v1/customers/register", map[string]any{"email": "ada@example.com", "password": "pw"})
	require.Equal(t, http.StatusCreated, status)
	user := body["user"].(map[string]any)
	assert.Equal(t, "Customer", user["name"])
	assert.NotContains(t, user, "password")

	other := &client{t: t, app: app}
	status, _, _ = other.do("POST", "/v1/customers/register", map[string]any{"email": "ADA@example.com", "password": "x"})
	assert.Equal(t, http.StatusConflict, status)

	status, _, _ = other.do("POST", "/v1/customers/login", map[string]any{"email": "ada@example.com", "password": "bad"})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body, _ = other.do("POST", "/v1/customers/login", map[string]any{"email": "ada@example.com", "password": "pw"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, user["id"], body["user"].(map[string]any)["id"])

	_, _, _ = other.do("POST", "/v1/cart/items", map[string]any{"product_id": 1})
	status, _, _ = other.do("POST", "/v1/checkout", map[string]any{"email": "Ada@Example.com"})
	require.Equal(t, http.StatusCreated, status)

	status, body, _ = c.do("GET", "/v1/customers/me/orders", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["orders"], 1)

	_, _, _ = c.do("POST", "/v1/customers/logout", nil)
	status, _, _ = c.do("GET", "/v1/customers/me/orders", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestAdminRoutes(t *testing.T) {
	app, _ := newTestApp(t)
	c := &client{t: t, app: app}

	status, body, _ := c.do("GET", "/v1/admin/orders", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "admin_required", body["code"])

	status, _, _ = c.do("POST", "/v1/admin/login", map[string]any{"email": "admin@example.com", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body, _ = c.do("POST", "/v1/admin/login", map[string]any{"email": "ADMIN@example.com", "password": "secret"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["ok"])

	status, body, _ = c.do("GET", "/v1/admin/orders", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Empty(t, body["orders"])

	status, body, _ = c.do("GET", "/v1/admin/customers", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Empty(t, body["customers"])

	_, _, _ = c.do("POST", "/v1/admin/logout", nil)
	status, _, _ = c.do("GET", "/v1/admin/customers", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestHealthAndMetrics(t *testing.T) {
	app, _ := newTestApp(t)
	c := &client{t: t, app: app}

	status, body, _ := c.do("GET", "/healthz", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "json", body["storage"])

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), "storefront_")

	status, body, _ = c.do("GET", "/v1/nowhere", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "http_404", body["code"])
}

func TestCommittedOrderKeepsCurrencyAfterLaterRequests(t *testing.T) {
	notifier := &capturingNotifier{}
	app, _, m := newTestAppWith(t, notifier)
	c := &client{t: t, app: app}

	_, _, _ = c.do("POST", "/v1/cart/items", map[string]any{"product_id": 1})
	status, body, _ := c.do("POST", "/v1/checkout?currency=USD", nil)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "USD", body["order"].(map[string]any)["currency"])

	// reuse the request buffers with a different currency
	pad := strings.Repeat("x", 64)
	for i := 0; i < 20; i++ {
		_, _, _ = c.do("GET", "/v1/cart?currency=XYZ&pad="+pad, nil)
	}

	notifier.mu.Lock()
	require.Len(t, notifier.orders, 1)
	assert.Equal(t, domain.USD, notifier.orders[0].Currency)
	notifier.mu.Unlock()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.OrdersPlaced.WithLabelValues("USD")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.OrdersPlaced.WithLabelValues("XYZ")))

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(raw), `storefront_orders_placed_total{currency="USD"} 1`)
}

func TestSignInIssuesFreshSessionID(t *testing.T) {
	app, _ := newTestApp(t)

	// the id a third party could have planted
	planted := "6f1c1b8e-3d5a-4c55-9e7b-0d1f2a3b4c5d"
	c := &client{t: t, app: app, session: planted}
	_, _, _ = c.do("POST", "/v1/cart/items", map[string]any{"product_id": 1})
	assert.Equal(t, planted, c.session, "anonymous requests keep their id")

	status, _, _ := c.do("POST", "/v1/customers/register", map[string]any{"email": "ada@example.com", "password": "pw"})
	require.Equal(t, http.StatusCreated, status)
	assert.NotEqual(t, planted, c.session)

	status, body, _ := c.do("GET", "/v1/cart", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["items"], 1, "the cart follows the new id")

	status, _, _ = c.do("GET", "/v1/customers/me/orders", nil)
	assert.Equal(t, http.StatusOK, status)

	attacker := &client{t: t, app: app, session: planted}
	status, _, _ = attacker.do("GET", "/v1/customers/me/orders", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	admin := &client{t: t, app: app, session: planted}
	status, _, _ = admin.do("POST", "/v1/admin/login", map[string]any{"email": "admin@example.com", "password": "secret"})
	require.Equal(t, http.StatusOK, status)
	assert.NotEqual(t, planted, admin.session)

	attacker = &client{t: t, app: app, session: planted}
	status, _, _ = attacker.do("GET", "/v1/admin/orders", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}
