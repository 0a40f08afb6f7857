package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/property-auth/internal/auth"
	"github.com/iliyamo/property-auth/internal/handler"
	"github.com/iliyamo/property-auth/internal/middleware"
	"github.com/iliyamo/property-auth/internal/model"
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check used by
// load balancers and monitoring.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth wires the auth endpoints.  Public operations (register,
// login) live directly under /auth; the rest run behind the authentication
// gate, and the user listing additionally requires the LANDLORD role.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, tokens *auth.TokenService, users middleware.UserLiveness) {
	g := e.Group("/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)

	authed := g.Group("")
	authed.Use(middleware.Authenticate(tokens, users))
	authed.POST("/logout", a.Logout)
	authed.GET("/me", a.Me)
	authed.GET("/users", a.Users, middleware.RequireRole(model.RoleLandlord))
}
