// Package identity authenticates customers and the admin and gates the
// reads that depend on who is asking.
package identity

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/ibrahimkeyboad/gostore/internal/core/domain"
	"github.com/ibrahimkeyboad/gostore/internal/core/security"
)

type AdminCredentials struct {
	Email    string
	Password string
}

type Gate struct {
	admin  AdminCredentials
	users  domain.UserRepository
	orders domain.OrderRepository
}

func NewGate(admin AdminCredentials, users domain.UserRepository, orders domain.OrderRepository) *Gate {
	return &Gate{admin: admin, users: users, orders: orders}
}

var errInvalidCredentials = domain.Unauthorized("invalid_credentials", "Invalid credentials")

// VerifyAdmin matches the configured credential pair. Email comparison
// ignores case.
func (g *Gate) VerifyAdmin(email, password string) bool {
	emailOK := strings.EqualFold(strings.TrimSpace(email), g.admin.Email)
	passOK := security.SecretsEqual(password, g.admin.Password)
	return emailOK && passOK && g.admin.Password != ""
}

// AdminLogin flags the session as admin.
func (g *Gate) AdminLogin(sess *domain.Session, email, password string) error {
	if !g.VerifyAdmin(email, password) {
		return errInvalidCredentials
	}
	sess.Admin = true
	return nil
}

func (g *Gate) AdminEmail() string { return g.admin.Email }

func (g *Gate) AdminLogout(sess *domain.Session) { sess.Admin = false }

// Register creates a customer and signs the session in as them.
func (g *Gate) Register(ctx context.Context, sess *domain.Session, email, name, password string) (domain.Account, error) {
	email = strings.TrimSpace(email)
	name = strings.TrimSpace(name)
	if email == "" || password == "" {
		return domain.Account{}, domain.InvalidInput("missing_fields", "Email and password required")
	}
	if name == "" {
		name = "Customer"
	}

	// 1. Reject duplicates before paying for a hash
	_, err := g.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return domain.Account{}, domain.Conflict("email_taken", "User already exists")
	case !errors.Is(err, domain.ErrNotFound):
		return domain.Account{}, asPersistence(err, "failed to look up account")
	}

	// 2. Hash
	hash, err := security.HashPassword(password)
	if err != nil {
		return domain.Account{}, domain.InvalidInput("invalid_password", "Password cannot be used")
	}

	// 3. Store
	acc, err := g.users.Create(ctx, domain.Account{Email: email, Name: name, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return domain.Account{}, err
		}
		return domain.Account{}, asPersistence(err, "failed to create account")
	}

	slog.Info("👤 Customer registered", "account_id", acc.ID)
	sess.CustomerID = acc.ID
	return acc, nil
}

// Login fails with the same error for an unknown email and a wrong password.
func (g *Gate) Login(ctx context.Context, sess *domain.Session, email, password string) (domain.Account, error) {
	acc, err := g.users.FindByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Account{}, errInvalidCredentials
	}
	if err != nil {
		return domain.Account{}, asPersistence(err, "failed to look up account")
	}
	if !security.CheckPassword(acc.PasswordHash, password) {
		return domain.Account{}, errInvalidCredentials
	}
	sess.CustomerID = acc.ID
	return acc, nil
}

func (g *Gate) Logout(sess *domain.Session) { sess.CustomerID = 0 }

// CurrentCustomer resolves the signed-in account, if any.
func (g *Gate) CurrentCustomer(ctx context.Context, sess *domain.Session) (domain.Account, error) {
	if sess.CustomerID == 0 {
		return domain.Account{}, domain.Unauthorized("login_required", "Login required")
	}
	acc, err := g.users.FindByID(ctx, sess.CustomerID)
	if errors.Is(err, domain.ErrNotFound) {
		// account vanished from under the session
		sess.CustomerID = 0
		return domain.Account{}, domain.Unauthorized("login_required", "Login required")
	}
	if err != nil {
		return domain.Account{}, asPersistence(err, "failed to load account")
	}
	return acc, nil
}

// CustomerOrders lists the signed-in customer's orders by account email.
func (g *Gate) CustomerOrders(ctx context.Context, sess *domain.Session) ([]domain.Order, error) {
	acc, err := g.CurrentCustomer(ctx, sess)
	if err != nil {
		return nil, err
	}
	return g.orders.List(ctx, acc.Email)
}

func (g *Gate) AdminOrders(ctx context.Context, sess *domain.Session) ([]domain.Order, error) {
	if !sess.Admin {
		return nil, domain.Unauthorized("admin_required", "Admin login required")
	}
	return g.orders.List(ctx, "")
}

func (g *Gate) AdminCustomers(ctx context.Context, sess *domain.Session) ([]domain.Account, error) {
	if !sess.Admin {
		return nil, domain.Unauthorized("admin_required", "Admin login required")
	}
	accounts, err := g.users.List(ctx)
	if err != nil {
		return nil, asPersistence(err, "failed to list accounts")
	}
	return accounts, nil
}

// LookupOrder fetches any order by id. It is not scoped to the caller.
func (g *Gate) LookupOrder(ctx context.Context, id int64) (domain.Order, error) {
	if id <= 0 {
		return domain.Order{}, domain.NotFound("order_not_found", "Order not found")
	}
	return g.orders.FindByID(ctx, id)
}

func asPersistence(err error, msg string) error {
	var de *domain.Error
	if errors.As(err, &de) {
		return err
	}
	return domain.Persistence(msg, err)
}
