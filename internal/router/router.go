package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/contact-book/internal/handler" // import the handlers that implement business logic
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check, used
// by load balancers and monitoring systems to verify the service is up.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterUsers registers the user lifecycle routes.  Signup, login and the
// two verification endpoints are open; everything else sits behind the auth
// gate passed in as middleware.
func RegisterUsers(e *echo.Echo, a *handler.AuthHandler, u *handler.UserHandler, gate echo.MiddlewareFunc) {
	// Unauthenticated operations: account creation, credential exchange
	// and email verification (a verifying user has no session yet).
	g := e.Group("/api/users")
	g.POST("/signup", a.Signup)
	g.POST("/login", a.Login)
	g.GET("/verify/:verificationToken", u.Verify)
	g.POST("/verify", u.ResendVerification)

	// Protected operations run through the auth gate, which resolves the
	// bearer token into a full user before the handler executes.
	p := e.Group("/api/users", gate)
	p.GET("/current", a.Current)
	p.GET("/logout", a.Logout)
	p.PATCH("", u.UpdateSubscription)
	p.PATCH("/avatars", u.UpdateAvatar)
}

// RegisterContacts registers the contact CRUD routes.  Every route is
// protected; the handlers scope all repository calls to the resolved
// identity so one user's contacts are invisible to another.
func RegisterContacts(e *echo.Echo, h *handler.ContactHandler, gate echo.MiddlewareFunc) {
	g := e.Group("/api/contacts", gate)
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:contactId", h.Get)
	g.PUT("/:contactId", h.Update)
	g.PATCH("/:contactId/favorite", h.UpdateFavorite)
	g.DELETE("/:contactId", h.Delete)
}
