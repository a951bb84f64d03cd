package domain

import "errors"

// Sentinel errors for the auth domain. The API error handler maps each one to
// a single HTTP status; services never deal in status codes directly.
var (
	// ErrUserExists: registration attempted with a username or email that is
	// already taken. Conflict.
	ErrUserExists = errors.New("username or email already exists")

	// ErrUsernameTaken: a privileged username change targets a name that is
	// already in use. BadRequest, matching the original update contract.
	ErrUsernameTaken = errors.New("username already exists")

	// ErrInvalidCredentials: unknown credential alias or wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUserNotFound: lookup by id or username resolved nothing.
	ErrUserNotFound = errors.New("user not found")

	// ErrUnknownRole: a role name that does not exist in the role store.
	ErrUnknownRole = errors.New("invalid role name")

	// ErrProtectedUser: mutation or deletion aimed at the bootstrap root
	// identity. Always rejected regardless of the caller.
	ErrProtectedUser = errors.New("cannot modify the root admin account")

	// ErrRoleNotAssignable: attempt to grant ROLE_ADMIN through the role
	// update path.
	ErrRoleNotAssignable = errors.New("cannot change role to admin")

	// ErrForbidden: a valid identity lacks the required role.
	ErrForbidden = errors.New("access forbidden")

	// ErrTooManyAttempts: the login throttle tripped for this alias.
	ErrTooManyAttempts = errors.New("too many failed login attempts")
)
