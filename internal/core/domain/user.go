package domain

import "time"

// Role names form the authorization vocabulary. ROLE_ADMIN is reserved for the
// bootstrap root account and is never assignable through the update path.
const (
	RoleAdmin     = "ROLE_ADMIN"
	RoleModerator = "ROLE_MOD"
	RoleProducer  = "ROLE_PROD"
)

// SeedRoles is the closed set of roles created at startup.
var SeedRoles = []Role{
	{Name: RoleAdmin, Description: "Root administrator"},
	{Name: RoleModerator, Description: "Content moderator"},
	{Name: RoleProducer, Description: "Producer (default on registration)"},
}

// Role is a named grant referenced by users. Names are globally unique.
type Role struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// User models an account. Roles is kept as an ordered slice so that the
// "first role" reported at login is stable for a given stored collection.
type User struct {
	ID             string    `json:"id"`
	Name           string    `json:"name,omitempty"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"-"`
	Bio            string    `json:"bio,omitempty"`
	ProfilePicture string    `json:"profile_picture,omitempty"`
	Roles          []Role    `json:"roles"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// RoleNames returns the user's role names in stored order.
func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}
	return names
}

// Identity is the resolved caller bound to a request by the auth middleware.
type Identity struct {
	UserID   string
	Username string
	Roles    []string
}

// HasRole reports whether the identity holds the named role.
func (i *Identity) HasRole(name string) bool {
	for _, r := range i.Roles {
		if r == name {
			return true
		}
	}
	return false
}

// AuthToken is the login result returned to clients.
type AuthToken struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
	Role        string `json:"role"`
}
