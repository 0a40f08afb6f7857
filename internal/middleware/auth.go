package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"context"
	"database/sql"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/property-auth/internal/auth"
	"github.com/iliyamo/property-auth/internal/model"
)

// Context keys under which the authentication middleware stores request
// identity.  Handlers read them through Principal() and BearerToken().
const (
	principalKey = "principal"
	rawTokenKey  = "raw_token"
)

// UserLiveness is the slice of the user store the gate needs: a way to
// re-check that the token's subject still exists and is still active.
type UserLiveness interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// Authenticate returns an Echo middleware implementing the authentication
// gate.  For each request it extracts the bearer token, rejects revoked and
// invalid tokens, re-validates the subject against live user state and
// finally attaches the Principal to the request context.  Revocation runs
// before signature verification: both checks are cheap, and a revoked-token
// hit is the clearer audit signal.  The store round trip for liveness comes
// last so the cheap checks fail fast.
func Authenticate(tokens *auth.TokenService, users UserLiveness) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				return reject(c, http.StatusUnauthorized, "Access denied. No token provided.")
			}
			raw := strings.TrimPrefix(header, "Bearer ")

			revoked, err := tokens.IsRevoked(c.Request().Context(), raw)
			if err != nil {
				c.Logger().Errorf("auth gate: revocation check failed: %v", err)
				return reject(c, http.StatusInternalServerError, "Authentication error")
			}
			if revoked {
				return reject(c, http.StatusUnauthorized, "Token has been invalidated.")
			}

			claims, err := tokens.Verify(raw)
			if err != nil {
				return reject(c, http.StatusUnauthorized, "Invalid or expired token.")
			}

			u, err := users.GetByID(c.Request().Context(), claims.UserID)
			if err != nil && err != sql.ErrNoRows {
				c.Logger().Errorf("auth gate: liveness check failed: %v", err)
				return reject(c, http.StatusInternalServerError, "Authentication error")
			}
			if err == sql.ErrNoRows || !u.IsActive {
				return reject(c, http.StatusUnauthorized, "User account is deactivated or does not exist.")
			}

			c.Set(principalKey, claims.Principal())
			c.Set(rawTokenKey, raw)
			return next(c)
		}
	}
}

// Principal returns the authenticated identity attached by Authenticate.
// The second return value is false on unauthenticated routes.
func Principal(c echo.Context) (model.Principal, bool) {
	p, ok := c.Get(principalKey).(model.Principal)
	return p, ok
}

// BearerToken returns the raw token string the request authenticated with.
func BearerToken(c echo.Context) string {
	s, _ := c.Get(rawTokenKey).(string)
	return s
}

// reject writes a failure envelope.  All middleware responses share the
// {success,message} shape the handlers use.
func reject(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{"success": false, "message": msg})
}
