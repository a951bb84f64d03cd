package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/tunelar/backend/internal/core/domain"
	"github.com/tunelar/backend/internal/pkg/token"
)

type stubResolver struct {
	identities map[string]*domain.Identity
}

func (r *stubResolver) ResolveSubject(_ context.Context, username string) (*domain.Identity, error) {
	if ident, ok := r.identities[username]; ok {
		return ident, nil
	}
	return nil, domain.ErrUserNotFound
}

func newAuthTestContext(t *testing.T, authorization string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authorization != "" {
		req.Header.Set(echo.HeaderAuthorization, authorization)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAuthenticate_ValidTokenBindsIdentity(t *testing.T) {
	codec := token.NewCodec("secret", time.Hour)
	signed, err := codec.Issue("alice")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	resolver := &stubResolver{identities: map[string]*domain.Identity{
		"alice": {UserID: "u1", Username: "alice", Roles: []string{domain.RoleProducer}},
	}}

	c, rec := newAuthTestContext(t, "Bearer "+signed)

	called := false
	mw := Authenticate(codec, resolver, zerolog.Nop())
	handler := mw(func(c echo.Context) error {
		called = true
		ident, ok := IdentityFrom(c)
		if !ok {
			t.Fatalf("identity not bound")
		}
		if ident.Username != "alice" || !ident.HasRole(domain.RoleProducer) {
			t.Fatalf("unexpected identity: %+v", ident)
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthenticate_MissingHeaderProceedsUnauthenticated(t *testing.T) {
	codec := token.NewCodec("secret", time.Hour)
	resolver := &stubResolver{identities: map[string]*domain.Identity{}}

	c, _ := newAuthTestContext(t, "")

	called := false
	mw := Authenticate(codec, resolver, zerolog.Nop())
	handler := mw(func(c echo.Context) error {
		called = true
		if _, ok := IdentityFrom(c); ok {
			t.Fatalf("no identity must be bound")
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("filter must not reject: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
}

func TestAuthenticate_MalformedHeaderProceedsUnauthenticated(t *testing.T) {
	codec := token.NewCodec("secret", time.Hour)
	resolver := &stubResolver{identities: map[string]*domain.Identity{}}

	for _, header := range []string{"Token abc", "Bearer", "bearer-xyz"} {
		c, _ := newAuthTestContext(t, header)

		called := false
		handler := Authenticate(codec, resolver, zerolog.Nop())(func(c echo.Context) error {
			called = true
			if _, ok := IdentityFrom(c); ok {
				t.Fatalf("no identity must be bound for header %q", header)
			}
			return c.NoContent(http.StatusOK)
		})

		if err := handler(c); err != nil {
			t.Fatalf("filter must not reject header %q: %v", header, err)
		}
		if !called {
			t.Fatalf("next not called for header %q", header)
		}
	}
}

func TestAuthenticate_InvalidTokenProceedsUnauthenticated(t *testing.T) {
	codec := token.NewCodec("secret", time.Hour)
	resolver := &stubResolver{identities: map[string]*domain.Identity{}}

	c, _ := newAuthTestContext(t, "Bearer not-a-token")

	called := false
	handler := Authenticate(codec, resolver, zerolog.Nop())(func(c echo.Context) error {
		called = true
		if _, ok := IdentityFrom(c); ok {
			t.Fatalf("no identity must be bound")
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("filter must not reject: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
}

func TestAuthenticate_ExpiredTokenProceedsUnauthenticated(t *testing.T) {
	expired := token.NewCodec("secret", -time.Minute)
	signed, err := expired.Issue("alice")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	codec := token.NewCodec("secret", time.Hour)
	resolver := &stubResolver{identities: map[string]*domain.Identity{
		"alice": {UserID: "u1", Username: "alice", Roles: []string{domain.RoleProducer}},
	}}

	c, _ := newAuthTestContext(t, "Bearer "+signed)

	handler := Authenticate(codec, resolver, zerolog.Nop())(func(c echo.Context) error {
		if _, ok := IdentityFrom(c); ok {
			t.Fatalf("expired token must not bind an identity")
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("filter must not reject: %v", err)
	}
}

func TestAuthenticate_UnresolvableSubjectProceedsUnauthenticated(t *testing.T) {
	codec := token.NewCodec("secret", time.Hour)
	signed, err := codec.Issue("deleted-user")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	resolver := &stubResolver{identities: map[string]*domain.Identity{}}
	c, _ := newAuthTestContext(t, "Bearer "+signed)

	handler := Authenticate(codec, resolver, zerolog.Nop())(func(c echo.Context) error {
		if _, ok := IdentityFrom(c); ok {
			t.Fatalf("unresolvable subject must not bind an identity")
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("filter must not reject: %v", err)
	}
}
