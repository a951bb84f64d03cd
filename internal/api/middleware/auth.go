package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/tunelar/backend/internal/api/metrics"
	"github.com/tunelar/backend/internal/core/domain"
	"github.com/tunelar/backend/internal/core/ports"
	"github.com/tunelar/backend/internal/pkg/token"
)

// identityKey is the echo context key the resolved caller is bound under.
// Request-scoped by construction: echo allocates a fresh context per request.
const identityKey = "auth.identity"

// IdentityFrom returns the identity bound by Authenticate, if any.
func IdentityFrom(c echo.Context) (*domain.Identity, bool) {
	ident, ok := c.Get(identityKey).(*domain.Identity)
	return ident, ok && ident != nil
}

// BindIdentity attaches an identity to the request context. Authenticate uses
// it; handler tests use it to simulate an authenticated caller.
func BindIdentity(c echo.Context, ident *domain.Identity) {
	c.Set(identityKey, ident)
}

// Authenticate extracts and verifies a bearer token and binds the resolved
// identity to the request context. Fail-open by design: a missing, malformed
// or invalid token leaves the request unauthenticated and processing
// continues — rejection is the authorization check's job, not this filter's.
func Authenticate(codec *token.Codec, resolver ports.IdentityResolver, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := bearerToken(c)
			if raw == "" {
				return next(c)
			}

			subject, ok := codec.Verify(raw)
			if !ok {
				// Cause stays internal; callers only ever see "no identity".
				metrics.TokenVerificationsTotal.WithLabelValues("invalid").Inc()
				log.Debug().Msg("bearer token rejected")
				return next(c)
			}
			metrics.TokenVerificationsTotal.WithLabelValues("valid").Inc()

			ident, err := resolver.ResolveSubject(c.Request().Context(), subject)
			if err != nil {
				log.Debug().Str("subject", subject).Err(err).Msg("token subject did not resolve")
				return next(c)
			}

			BindIdentity(c, ident)
			return next(c)
		}
	}
}

// bearerToken pulls the token out of the Authorization header. An absent or
// malformed header is equivalent to no token presented.
func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
