package ports

import (
	"context"

	"github.com/tunelar/backend/internal/core/domain"
)

// AuthService orchestrates registration, login, lookups and the privileged
// user mutations. Operations return sentinel errors from the domain package.
type AuthService interface {
	Register(ctx context.Context, name, username, email, password string) (string, error)
	Login(ctx context.Context, usernameOrEmail, password string) (*domain.AuthToken, error)
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	GetAllUsers(ctx context.Context) ([]domain.User, error)
	UpdateUserRole(ctx context.Context, id, roleName string) (string, error)
	UpdateUserUsername(ctx context.Context, id, username string) (string, error)
	DeleteUserByID(ctx context.Context, id string) error
}

// IdentityResolver maps a verified token subject to a full identity with its
// granted roles. Used by the request authentication middleware.
type IdentityResolver interface {
	ResolveSubject(ctx context.Context, username string) (*domain.Identity, error)
}
