package ports

import (
	"context"

	"github.com/tunelar/backend/internal/core/domain"
)

// UserRepository defines the persistence contract for user accounts.
// Implementations must enforce username and email uniqueness at the storage
// level so that concurrent duplicate inserts resolve to exactly one success.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	// FindByUsernameOrEmail resolves a credential alias: username first,
	// then email.
	FindByUsernameOrEmail(ctx context.Context, alias string) (*domain.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// FindAll returns every user ordered by creation time.
	FindAll(ctx context.Context) ([]domain.User, error)
	Update(ctx context.Context, user *domain.User) (*domain.User, error)
	Delete(ctx context.Context, id string) error
}

// RoleRepository defines the persistence contract for role definitions.
type RoleRepository interface {
	FindByName(ctx context.Context, name string) (*domain.Role, error)
	// Upsert creates the role if absent. Idempotent by name.
	Upsert(ctx context.Context, role *domain.Role) error
}
