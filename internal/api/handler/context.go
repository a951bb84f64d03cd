package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tunelar/backend/internal/api/middleware"
	"github.com/tunelar/backend/internal/core/domain"
	"github.com/tunelar/backend/internal/core/service"
)

// callerIdentity extracts the identity bound by the auth middleware. Handlers
// behind RequireRoles can assume it is present; the check guards direct use.
func callerIdentity(c echo.Context) (*domain.Identity, error) {
	ident, ok := middleware.IdentityFrom(c)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication")
	}
	return ident, nil
}

// actorContext attributes the acting username to the request context so the
// service layer can audit privileged mutations.
func actorContext(c echo.Context, ident *domain.Identity) context.Context {
	return service.ContextWithActor(c.Request().Context(), ident.Username)
}
