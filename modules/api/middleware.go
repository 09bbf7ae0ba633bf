package api

import (
	"strings"
	"time"

	"github.com/example/schedule-sync/domain/errs"
	domain "github.com/example/schedule-sync/domain/user"
	"github.com/example/schedule-sync/modules/auth"
	"github.com/gofiber/fiber/v2"
)

const (
	// SessionCookie is the cookie carrying the session token.
	SessionCookie = "auth"
	// SessionHeader echoes the renewed token for clients without a cookie jar.
	SessionHeader = "X-Session-Token"
	// SessionContextKey is the key used to store the session in the Fiber context.
	SessionContextKey = "session"
)

var errNoToken = errs.New(errs.KindUnauthenticated, "authentication required")

// CookieConfig controls the session cookie attributes.
type CookieConfig struct {
	Secure bool
	MaxAge time.Duration
}

// SessionMiddleware authenticates the request and slides the session forward.
// Every pass re-issues the token with a full validity window.
func SessionMiddleware(authPort auth.AuthPort, cookie CookieConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := sessionToken(c)
		if token == "" {
			return errNoToken
		}

		session, err := authPort.RenewSession(c.UserContext(), token)
		if err != nil {
			return err
		}

		setSessionCookie(c, session.Token, cookie)
		c.Locals(SessionContextKey, session)

		return c.Next()
	}
}

// sessionToken reads the token from the auth cookie, then from a Bearer header.
func sessionToken(c *fiber.Ctx) string {
	if token := c.Cookies(SessionCookie); token != "" {
		return token
	}

	header := c.Get(fiber.HeaderAuthorization)
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

func setSessionCookie(c *fiber.Ctx, token string, cookie CookieConfig) {
	maxAge := cookie.MaxAge
	if maxAge <= 0 {
		maxAge = auth.DefaultSessionTTL
	}
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HTTPOnly: true,
		Secure:   cookie.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	c.Set(SessionHeader, token)
}

// CurrentSession returns the session stored by SessionMiddleware.
func CurrentSession(c *fiber.Ctx) (*domain.Session, error) {
	session, ok := c.Locals(SessionContextKey).(*domain.Session)
	if !ok || session.UserID == "" {
		return nil, errNoToken
	}
	return session, nil
}
