package handler

import (
	"time"

	"github.com/tunelar/backend/internal/core/domain"
)

type registerRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type loginRequest struct {
	UsernameOrEmail string `json:"usernameOrEmail" validate:"required"`
	Password        string `json:"password" validate:"required"`
}

type roleUpdateRequest struct {
	Role string `json:"role" validate:"required"`
}

type usernameUpdateRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
}

// loginResponse mirrors the original JwtAuthResponse shape.
type loginResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
	Role        string `json:"role"`
}

func toLoginResponse(t *domain.AuthToken) loginResponse {
	return loginResponse{
		AccessToken: t.AccessToken,
		TokenType:   t.TokenType,
		Role:        t.Role,
	}
}

// userResponse is the outward user shape; the password hash never leaves the
// domain struct thanks to its json:"-" tag, this narrows the rest.
type userResponse struct {
	ID             string   `json:"id"`
	Name           string   `json:"name,omitempty"`
	Username       string   `json:"username"`
	Email          string   `json:"email"`
	Bio            string   `json:"bio,omitempty"`
	ProfilePicture string   `json:"profilePicture,omitempty"`
	Roles          []string `json:"roles"`
	CreatedAt      string   `json:"createdAt"`
	UpdatedAt      string   `json:"updatedAt"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:             u.ID,
		Name:           u.Name,
		Username:       u.Username,
		Email:          u.Email,
		Bio:            u.Bio,
		ProfilePicture: u.ProfilePicture,
		Roles:          u.RoleNames(),
		CreatedAt:      u.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:      u.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func toUserResponses(users []domain.User) []userResponse {
	out := make([]userResponse, 0, len(users))
	for i := range users {
		out = append(out, toUserResponse(&users[i]))
	}
	return out
}
