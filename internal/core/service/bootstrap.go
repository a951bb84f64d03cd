package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tunelar/backend/internal/core/domain"
	"github.com/tunelar/backend/internal/core/ports"
	"github.com/tunelar/backend/internal/pkg/password"
)

const (
	rootUsername = "admin"
	rootEmail    = "admin@tunelar.app"
)

// Bootstrap seeds the role vocabulary and the root admin account, returning
// the root user's identifier. Idempotent: re-runs and concurrent instances
// leave exactly one role record per name and one root admin. A duplicate-key
// failure from a racing instance is treated as success and resolved by a
// follow-up read.
func Bootstrap(ctx context.Context, users ports.UserRepository, roles ports.RoleRepository, adminPassword string, log zerolog.Logger) (string, error) {
	for i := range domain.SeedRoles {
		if err := roles.Upsert(ctx, &domain.SeedRoles[i]); err != nil {
			return "", fmt.Errorf("seed role %s: %w", domain.SeedRoles[i].Name, err)
		}
	}

	root, err := users.FindByUsername(ctx, rootUsername)
	if err == nil {
		return root.ID, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return "", fmt.Errorf("lookup root admin: %w", err)
	}

	adminRole, err := roles.FindByName(ctx, domain.RoleAdmin)
	if err != nil {
		return "", fmt.Errorf("lookup admin role: %w", err)
	}

	hash, err := password.Hash(adminPassword)
	if err != nil {
		return "", fmt.Errorf("hash admin password: %w", err)
	}

	now := time.Now().UTC()
	created, err := users.Create(ctx, &domain.User{
		Name:         "Administrator",
		Username:     rootUsername,
		Email:        rootEmail,
		PasswordHash: hash,
		Roles:        []domain.Role{*adminRole},
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			// Another instance won the race; its account is ours too.
			root, err = users.FindByUsername(ctx, rootUsername)
			if err != nil {
				return "", fmt.Errorf("lookup root admin after race: %w", err)
			}
			return root.ID, nil
		}
		return "", fmt.Errorf("create root admin: %w", err)
	}

	log.Info().Str("username", rootUsername).Msg("root admin account created")
	return created.ID, nil
}
