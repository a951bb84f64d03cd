package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tunelar/backend/internal/core/domain"
	"github.com/tunelar/backend/internal/pkg/password"
	"github.com/tunelar/backend/internal/pkg/token"
)

type stubUserRepo struct {
	users  map[string]*domain.User // keyed by id
	nextID int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	clone.Roles = append([]domain.Role(nil), u.Roles...)
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	for _, u := range r.users {
		if u.Username == user.Username || u.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}
	r.nextID++
	copy := cloneUser(user)
	copy.ID = fmt.Sprintf("u%d", r.nextID)
	r.users[copy.ID] = cloneUser(copy)
	return copy, nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	if u, ok := r.users[id]; ok {
		return cloneUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByUsernameOrEmail(ctx context.Context, alias string) (*domain.User, error) {
	if u, err := r.FindByUsername(ctx, alias); err == nil {
		return u, nil
	}
	for _, u := range r.users {
		if u.Email == alias {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := r.FindByUsername(ctx, username)
	return err == nil, nil
}

func (r *stubUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	for _, u := range r.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubUserRepo) FindAll(_ context.Context) ([]domain.User, error) {
	out := make([]domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *cloneUser(u))
	}
	return out, nil
}

func (r *stubUserRepo) Update(_ context.Context, user *domain.User) (*domain.User, error) {
	if _, ok := r.users[user.ID]; !ok {
		return nil, domain.ErrUserNotFound
	}
	r.users[user.ID] = cloneUser(user)
	return cloneUser(user), nil
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

type stubRoleRepo struct {
	roles map[string]*domain.Role
}

func newStubRoleRepo() *stubRoleRepo {
	r := &stubRoleRepo{roles: make(map[string]*domain.Role)}
	for i, role := range domain.SeedRoles {
		copy := role
		copy.ID = fmt.Sprintf("r%d", i+1)
		r.roles[copy.Name] = &copy
	}
	return r
}

func (r *stubRoleRepo) FindByName(_ context.Context, name string) (*domain.Role, error) {
	if role, ok := r.roles[name]; ok {
		copy := *role
		return &copy, nil
	}
	return nil, domain.ErrUnknownRole
}

func (r *stubRoleRepo) Upsert(_ context.Context, role *domain.Role) error {
	if existing, ok := r.roles[role.Name]; ok {
		role.ID = existing.ID
		return nil
	}
	copy := *role
	copy.ID = fmt.Sprintf("r%d", len(r.roles)+1)
	r.roles[copy.Name] = &copy
	return nil
}

func newTestService(t *testing.T) (*AuthService, *stubUserRepo, string) {
	t.Helper()
	users := newStubUserRepo()
	roles := newStubRoleRepo()
	rootID, err := Bootstrap(context.Background(), users, roles, "RootSecret1", zerolog.Nop())
	if err != nil {
		t.Fatalf("bootstrap failed: %v", err)
	}
	codec := token.NewCodec("secret", time.Hour)
	return NewAuthService(users, roles, codec, rootID, zerolog.Nop()), users, rootID
}

func TestRegister_Success(t *testing.T) {
	svc, users, _ := newTestService(t)

	msg, err := svc.Register(context.Background(), "Jordan Estes", "jestes", "j@x.com", "Secret123")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if msg != "User registered successfully." {
		t.Fatalf("unexpected message: %q", msg)
	}

	user, err := users.FindByUsername(context.Background(), "jestes")
	if err != nil {
		t.Fatalf("registered user not found: %v", err)
	}
	if user.PasswordHash == "Secret123" {
		t.Fatalf("password must be stored hashed")
	}
	if !password.Verify("Secret123", user.PasswordHash) {
		t.Fatalf("stored hash does not match password")
	}
	if len(user.Roles) != 1 || user.Roles[0].Name != domain.RoleProducer {
		t.Fatalf("expected single producer role, got %+v", user.Roles)
	}

	if taken, _ := users.ExistsByUsername(context.Background(), "jestes"); !taken {
		t.Fatalf("ExistsByUsername must reflect a completed registration")
	}
	if taken, _ := users.ExistsByEmail(context.Background(), "j@x.com"); !taken {
		t.Fatalf("ExistsByEmail must reflect a completed registration")
	}
}

func TestRegister_DuplicateUsername(t *testing.T) {
	svc, _, _ := newTestService(t)

	if _, err := svc.Register(context.Background(), "A", "dup", "a@x.com", "pass"); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	if _, err := svc.Register(context.Background(), "B", "dup", "b@x.com", "pass"); err != domain.ErrUserExists {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, _ = svc.Register(context.Background(), "A", "first", "same@x.com", "pass")
	if _, err := svc.Register(context.Background(), "B", "second", "same@x.com", "pass"); err != domain.ErrUserExists {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestLogin_Success(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, _ = svc.Register(context.Background(), "Jordan Estes", "jestes", "j@x.com", "Secret123")

	auth, err := svc.Login(context.Background(), "jestes", "Secret123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if auth.AccessToken == "" {
		t.Fatalf("expected access token")
	}
	if auth.TokenType != "Bearer" {
		t.Fatalf("expected token type Bearer, got %q", auth.TokenType)
	}
	if auth.Role != domain.RoleProducer {
		t.Fatalf("expected role %s, got %q", domain.RoleProducer, auth.Role)
	}

	codec := token.NewCodec("secret", time.Hour)
	subject, ok := codec.Verify(auth.AccessToken)
	if !ok || subject != "jestes" {
		t.Fatalf("token must carry the username as subject, got %q ok=%v", subject, ok)
	}
}

func TestLogin_ByEmail(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, _ = svc.Register(context.Background(), "Jordan Estes", "jestes", "j@x.com", "Secret123")

	auth, err := svc.Login(context.Background(), "j@x.com", "Secret123")
	if err != nil {
		t.Fatalf("login by email failed: %v", err)
	}
	if subject, ok := token.NewCodec("secret", time.Hour).Verify(auth.AccessToken); !ok || subject != "jestes" {
		t.Fatalf("token subject must be the username, got %q", subject)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, _ = svc.Register(context.Background(), "Jordan Estes", "jestes", "j@x.com", "Secret123")

	if _, err := svc.Login(context.Background(), "jestes", "wrong"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLogin_UnknownUser(t *testing.T) {
	svc, _, _ := newTestService(t)

	if _, err := svc.Login(context.Background(), "ghost", "pass"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestGetUserByID(t *testing.T) {
	svc, users, _ := newTestService(t)

	_, _ = svc.Register(context.Background(), "A", "alice", "a@x.com", "pass")
	stored, _ := users.FindByUsername(context.Background(), "alice")

	user, err := svc.GetUserByID(context.Background(), stored.ID)
	if err != nil {
		t.Fatalf("get by id failed: %v", err)
	}
	if user.Username != "alice" {
		t.Fatalf("unexpected user: %+v", user)
	}

	if _, err := svc.GetUserByID(context.Background(), "missing"); err != domain.ErrUserNotFound {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestGetUserByUsername_NotFound(t *testing.T) {
	svc, _, _ := newTestService(t)

	if _, err := svc.GetUserByUsername(context.Background(), "ghost"); err != domain.ErrUserNotFound {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUpdateUserRole_Success(t *testing.T) {
	svc, users, _ := newTestService(t)

	_, _ = svc.Register(context.Background(), "A", "alice", "a@x.com", "pass")
	stored, _ := users.FindByUsername(context.Background(), "alice")

	msg, err := svc.UpdateUserRole(context.Background(), stored.ID, domain.RoleModerator)
	if err != nil {
		t.Fatalf("update role failed: %v", err)
	}
	if msg != "User role updated successfully." {
		t.Fatalf("unexpected message: %q", msg)
	}

	updated, _ := users.FindByID(context.Background(), stored.ID)
	if len(updated.Roles) != 1 || updated.Roles[0].Name != domain.RoleModerator {
		t.Fatalf("role set must be replaced with the single named role, got %+v", updated.Roles)
	}
}

func TestUpdateUserRole_ProtectedRoot(t *testing.T) {
	svc, _, rootID := newTestService(t)

	if _, err := svc.UpdateUserRole(context.Background(), rootID, domain.RoleModerator); err != domain.ErrProtectedUser {
		t.Fatalf("expected ErrProtectedUser, got %v", err)
	}
}

func TestUpdateUserRole_AdminNotAssignable(t *testing.T) {
	svc, users, _ := newTestService(t)

	_, _ = svc.Register(context.Background(), "A", "alice", "a@x.com", "pass")
	stored, _ := users.FindByUsername(context.Background(), "alice")

	if _, err := svc.UpdateUserRole(context.Background(), stored.ID, domain.RoleAdmin); err != domain.ErrRoleNotAssignable {
		t.Fatalf("expected ErrRoleNotAssignable, got %v", err)
	}
}

func TestUpdateUserRole_UnknownRole(t *testing.T) {
	svc, users, _ := newTestService(t)

	_, _ = svc.Register(context.Background(), "A", "alice", "a@x.com", "pass")
	stored, _ := users.FindByUsername(context.Background(), "alice")

	if _, err := svc.UpdateUserRole(context.Background(), stored.ID, "ROLE_NOPE"); err != domain.ErrUnknownRole {
		t.Fatalf("expected ErrUnknownRole, got %v", err)
	}
}

func TestUpdateUserUsername_Success(t *testing.T) {
	svc, users, _ := newTestService(t)

	_, _ = svc.Register(context.Background(), "A", "alice", "a@x.com", "pass")
	stored, _ := users.FindByUsername(context.Background(), "alice")

	if _, err := svc.UpdateUserUsername(context.Background(), stored.ID, "alicia"); err != nil {
		t.Fatalf("update username failed: %v", err)
	}
	if _, err := users.FindByUsername(context.Background(), "alicia"); err != nil {
		t.Fatalf("renamed user not found: %v", err)
	}
}

func TestUpdateUserUsername_ProtectedRoot(t *testing.T) {
	svc, _, rootID := newTestService(t)

	if _, err := svc.UpdateUserUsername(context.Background(), rootID, "newadmin"); err != domain.ErrProtectedUser {
		t.Fatalf("expected ErrProtectedUser, got %v", err)
	}
}

func TestUpdateUserUsername_Taken(t *testing.T) {
	svc, users, _ := newTestService(t)

	_, _ = svc.Register(context.Background(), "A", "alice", "a@x.com", "pass")
	_, _ = svc.Register(context.Background(), "B", "bob", "b@x.com", "pass")
	stored, _ := users.FindByUsername(context.Background(), "bob")

	if _, err := svc.UpdateUserUsername(context.Background(), stored.ID, "alice"); err != domain.ErrUsernameTaken {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestDeleteUser_Success(t *testing.T) {
	svc, users, _ := newTestService(t)

	_, _ = svc.Register(context.Background(), "A", "alice", "a@x.com", "pass")
	stored, _ := users.FindByUsername(context.Background(), "alice")

	if err := svc.DeleteUserByID(context.Background(), stored.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := users.FindByID(context.Background(), stored.ID); err != domain.ErrUserNotFound {
		t.Fatalf("user must be gone, got %v", err)
	}
}

func TestDeleteUser_ProtectedRoot(t *testing.T) {
	svc, _, rootID := newTestService(t)

	if err := svc.DeleteUserByID(context.Background(), rootID); err != domain.ErrProtectedUser {
		t.Fatalf("expected ErrProtectedUser, got %v", err)
	}
}

func TestDeleteUser_NotFound(t *testing.T) {
	svc, _, _ := newTestService(t)

	if err := svc.DeleteUserByID(context.Background(), "missing"); err != domain.ErrUserNotFound {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestAdminRoleNameDoesNotProtect(t *testing.T) {
	// Protection is id-equality with the bootstrap account only: a second
	// user who somehow holds ROLE_ADMIN stays deletable.
	svc, users, rootID := newTestService(t)

	_, _ = svc.Register(context.Background(), "A", "alice", "a@x.com", "pass")
	stored, _ := users.FindByUsername(context.Background(), "alice")
	stored.Roles = []domain.Role{{ID: "r1", Name: domain.RoleAdmin}}
	_, _ = users.Update(context.Background(), stored)

	if stored.ID == rootID {
		t.Fatalf("test setup: ids must differ")
	}
	if err := svc.DeleteUserByID(context.Background(), stored.ID); err != nil {
		t.Fatalf("admin-named non-root user must be deletable, got %v", err)
	}
}

func TestResolveSubject(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, _ = svc.Register(context.Background(), "A", "alice", "a@x.com", "pass")

	ident, err := svc.ResolveSubject(context.Background(), "alice")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if ident.Username != "alice" || ident.UserID == "" {
		t.Fatalf("unexpected identity: %+v", ident)
	}
	if !ident.HasRole(domain.RoleProducer) || ident.HasRole(domain.RoleAdmin) {
		t.Fatalf("unexpected roles: %v", ident.Roles)
	}

	if _, err := svc.ResolveSubject(context.Background(), "ghost"); err != domain.ErrUserNotFound {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
