package middleware

import (
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/google/uuid"

	"github.com/ibrahimkeyboad/gostore/internal/adapter/storage"
	"github.com/ibrahimkeyboad/gostore/internal/core/domain"
)

const (
	SessionCookie = "storefront_session"
	SessionHeader = "X-Session-Id"
	sessionLocal  = "session"
)

// Session loads the visitor session before the handler runs and saves it
// afterwards. API clients without cookies can send X-Session-Id instead.
// A session that signs in gets a fresh id, so an id chosen by the client
// never carries an authenticated identity.
func Session(store storage.SessionStore, secureCookie bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// 1. Find the session id
		id := c.Cookies(SessionCookie)
		if id == "" {
			id = c.Get(SessionHeader)
		}
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		id = utils.CopyString(id)

		// 2. Load
		sess, err := store.Load(c.UserContext(), id)
		if err != nil {
			slog.Error("❌ Failed to load session", "error", err)
			return c.Status(http.StatusServiceUnavailable).JSON(fiber.Map{
				"error": "Session storage unavailable",
				"code":  "session_unavailable",
			})
		}
		c.Locals(sessionLocal, sess)
		customer, admin := sess.CustomerID, sess.Admin

		// 3. Run the Handler
		if err := c.Next(); err != nil {
			return err
		}

		// 4. Rotate on sign-in
		if signedIn(customer, admin, sess) {
			if err := store.Delete(c.UserContext(), sess.ID); err != nil {
				slog.Error("❌ Failed to drop rotated session", "error", err, "session_id", sess.ID)
			}
			sess.ID = uuid.NewString()
		}

		// 5. Save
		if err := store.Save(c.UserContext(), sess); err != nil {
			slog.Error("❌ Failed to save session", "error", err, "session_id", sess.ID)
		}
		c.Set(SessionHeader, sess.ID)
		c.Cookie(&fiber.Cookie{
			Name:     SessionCookie,
			Value:    sess.ID,
			Path:     "/",
			Expires:  sess.ExpiresAt,
			HTTPOnly: true,
			Secure:   secureCookie,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
		return nil
	}
}

func signedIn(customer int64, admin bool, sess *domain.Session) bool {
	if sess.CustomerID != 0 && sess.CustomerID != customer {
		return true
	}
	return sess.Admin && !admin
}

// CurrentSession returns the session loaded by the Session middleware.
func CurrentSession(c *fiber.Ctx) *domain.Session {
	sess, ok := c.Locals(sessionLocal).(*domain.Session)
	if !ok {
		return domain.NewSession("")
	}
	return sess
}
