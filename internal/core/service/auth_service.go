package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/tunelar/backend/internal/core/domain"
	"github.com/tunelar/backend/internal/core/ports"
	"github.com/tunelar/backend/internal/pkg/password"
	"github.com/tunelar/backend/internal/pkg/token"
)

const bearerTokenType = "Bearer"

// AuthService implements registration, login, user lookups and the privileged
// mutations. rootID is the bootstrap admin's identifier; it is immune to role
// change, username change and deletion by id-equality only, so a later user
// granted ROLE_ADMIN stays mutable.
type AuthService struct {
	users    ports.UserRepository
	roles    ports.RoleRepository
	codec    *token.Codec
	rootID   string
	audit    ports.AuditRecorder
	throttle ports.LoginThrottle
	log      zerolog.Logger
}

// Option configures optional collaborators on the AuthService.
type Option func(*AuthService)

// WithAudit attaches an asynchronous audit recorder.
func WithAudit(recorder ports.AuditRecorder) Option {
	return func(s *AuthService) { s.audit = recorder }
}

// WithLoginThrottle attaches a failed-login throttle.
func WithLoginThrottle(throttle ports.LoginThrottle) Option {
	return func(s *AuthService) { s.throttle = throttle }
}

func NewAuthService(users ports.UserRepository, roles ports.RoleRepository, codec *token.Codec, rootID string, log zerolog.Logger, opts ...Option) *AuthService {
	s := &AuthService{
		users:  users,
		roles:  roles,
		codec:  codec,
		rootID: rootID,
		log:    log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates a new account with the default producer role.
func (s *AuthService) Register(ctx context.Context, name, username, email, plaintext string) (string, error) {
	if taken, err := s.users.ExistsByUsername(ctx, username); err != nil {
		return "", err
	} else if taken {
		return "", domain.ErrUserExists
	}
	if taken, err := s.users.ExistsByEmail(ctx, email); err != nil {
		return "", err
	} else if taken {
		return "", domain.ErrUserExists
	}

	hash, err := password.Hash(plaintext)
	if err != nil {
		return "", err
	}

	role, err := s.roles.FindByName(ctx, domain.RoleProducer)
	if err != nil {
		return "", err
	}

	now := time.Now().UTC()
	user := &domain.User{
		Name:         name,
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Roles:        []domain.Role{*role},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// The unique indexes settle the race between concurrent registrations:
	// the losing insert surfaces as ErrUserExists.
	if _, err := s.users.Create(ctx, user); err != nil {
		return "", err
	}

	s.record(domain.AuditEvent{Actor: username, Action: domain.AuditUserRegistered, Target: username})
	return "User registered successfully.", nil
}

// Login authenticates a credential alias (username or email) and issues a
// bearer token for the resolved username. The reported role is the first of
// the user's stored role collection.
func (s *AuthService) Login(ctx context.Context, usernameOrEmail, plaintext string) (*domain.AuthToken, error) {
	if s.throttle != nil {
		blocked, err := s.throttle.Blocked(ctx, usernameOrEmail)
		if err != nil {
			// Throttle is advisory: a broken redis must not lock everyone out.
			s.log.Warn().Err(err).Msg("login throttle unavailable")
		} else if blocked {
			return nil, domain.ErrTooManyAttempts
		}
	}

	user, err := s.users.FindByUsernameOrEmail(ctx, usernameOrEmail)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.loginFailed(ctx, usernameOrEmail)
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !password.Verify(plaintext, user.PasswordHash) {
		s.loginFailed(ctx, usernameOrEmail)
		return nil, domain.ErrInvalidCredentials
	}

	accessToken, err := s.codec.Issue(user.Username)
	if err != nil {
		return nil, err
	}

	if s.throttle != nil {
		if err := s.throttle.Reset(ctx, usernameOrEmail); err != nil {
			s.log.Warn().Err(err).Msg("login throttle reset failed")
		}
	}

	var roleName string
	if len(user.Roles) > 0 {
		roleName = user.Roles[0].Name
	}

	s.record(domain.AuditEvent{Actor: user.Username, Action: domain.AuditLoginSucceeded})
	return &domain.AuthToken{
		AccessToken: accessToken,
		TokenType:   bearerTokenType,
		Role:        roleName,
	}, nil
}

func (s *AuthService) loginFailed(ctx context.Context, alias string) {
	if s.throttle != nil {
		if err := s.throttle.RecordFailure(ctx, alias); err != nil {
			s.log.Warn().Err(err).Msg("login throttle record failed")
		}
	}
	s.record(domain.AuditEvent{Actor: alias, Action: domain.AuditLoginFailed})
}

func (s *AuthService) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	return s.users.FindByID(ctx, id)
}

func (s *AuthService) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.users.FindByUsername(ctx, username)
}

func (s *AuthService) GetAllUsers(ctx context.Context) ([]domain.User, error) {
	return s.users.FindAll(ctx)
}

// UpdateUserRole replaces the user's entire role set with the single named
// role. The root identity and the admin role are off limits.
func (s *AuthService) UpdateUserRole(ctx context.Context, id, roleName string) (string, error) {
	if id == s.rootID {
		return "", domain.ErrProtectedUser
	}
	if roleName == domain.RoleAdmin {
		return "", domain.ErrRoleNotAssignable
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return "", err
	}

	role, err := s.roles.FindByName(ctx, roleName)
	if err != nil {
		return "", err
	}

	user.Roles = []domain.Role{*role}
	user.UpdatedAt = time.Now().UTC()
	if _, err := s.users.Update(ctx, user); err != nil {
		return "", err
	}

	s.record(domain.AuditEvent{Actor: actorFrom(ctx), Action: domain.AuditRoleChanged, Target: user.Username, Detail: roleName})
	return "User role updated successfully.", nil
}

// UpdateUserUsername changes a user's username. The root identity is immune
// and the new name must be free.
func (s *AuthService) UpdateUserUsername(ctx context.Context, id, username string) (string, error) {
	if id == s.rootID {
		return "", domain.ErrProtectedUser
	}

	if taken, err := s.users.ExistsByUsername(ctx, username); err != nil {
		return "", err
	} else if taken {
		return "", domain.ErrUsernameTaken
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return "", err
	}

	previous := user.Username
	user.Username = username
	user.UpdatedAt = time.Now().UTC()
	if _, err := s.users.Update(ctx, user); err != nil {
		return "", err
	}

	s.record(domain.AuditEvent{Actor: actorFrom(ctx), Action: domain.AuditUsernameChanged, Target: previous, Detail: username})
	return "User username updated successfully.", nil
}

// DeleteUserByID removes a user, detaching role associations first so no
// dangling references survive the delete.
func (s *AuthService) DeleteUserByID(ctx context.Context, id string) error {
	if id == s.rootID {
		return domain.ErrProtectedUser
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return err
	}

	user.Roles = nil
	user.UpdatedAt = time.Now().UTC()
	if _, err := s.users.Update(ctx, user); err != nil {
		return err
	}

	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}

	s.record(domain.AuditEvent{Actor: actorFrom(ctx), Action: domain.AuditUserDeleted, Target: user.Username})
	return nil
}

// ResolveSubject maps a verified token subject to a full identity with its
// granted roles. Satisfies ports.IdentityResolver.
func (s *AuthService) ResolveSubject(ctx context.Context, username string) (*domain.Identity, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return &domain.Identity{
		UserID:   user.ID,
		Username: user.Username,
		Roles:    user.RoleNames(),
	}, nil
}

func (s *AuthService) record(event domain.AuditEvent) {
	if s.audit == nil {
		return
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	s.audit.Record(event)
}
