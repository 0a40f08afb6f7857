package middleware // middleware provides shared request processing for handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/property-auth/internal/auth"
	"github.com/iliyamo/property-auth/internal/model"
)

// RequireRole returns a middleware that enforces that the authenticated
// principal holds one of the given roles.  It assumes Authenticate has
// already run on the route; a missing principal is treated as
// unauthenticated rather than forbidden.
func RequireRole(roles ...model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := Principal(c)
			if !ok {
				return reject(c, http.StatusUnauthorized, "Unauthorized")
			}
			if !auth.RoleAllowed(p, roles...) {
				return reject(c, http.StatusForbidden, "Forbidden: Insufficient permissions")
			}
			return next(c)
		}
	}
}

// RequireLandlordOwnership enforces that the principal may act on a resource
// owned by the landlord whose id the ownerID function extracts from the
// request (typically a path parameter the handler chain resolved earlier).
// The decision itself is the pure ownership gate; this wrapper only adapts
// it to Echo.
func RequireLandlordOwnership(ownerID func(echo.Context) (uint64, error)) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := Principal(c)
			if !ok {
				return reject(c, http.StatusUnauthorized, "Unauthorized")
			}
			owner, err := ownerID(c)
			if err != nil {
				return reject(c, http.StatusBadRequest, "Invalid resource identifier")
			}
			if !auth.OwnsLandlordResource(p, owner) {
				return reject(c, http.StatusForbidden, "Forbidden: You can only access your own resources")
			}
			return next(c)
		}
	}
}
