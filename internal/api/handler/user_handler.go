package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tunelar/backend/internal/core/ports"
)

// UserHandler serves the role-gated user administration endpoints.
type UserHandler struct {
	authService ports.AuthService
}

func NewUserHandler(authService ports.AuthService) *UserHandler {
	return &UserHandler{authService: authService}
}

// List returns every user, ordered by creation time.
//
// @Summary      List all users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   userResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /api/users [get]
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.authService.GetAllUsers(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponses(users))
}

// GetByID returns a single user.
//
// @Summary      Get a user by id
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  userResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/users/{id} [get]
func (h *UserHandler) GetByID(c echo.Context) error {
	user, err := h.authService.GetUserByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// GetByUsername returns a single user looked up by username.
//
// @Summary      Get a user by username
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        username  path      string  true  "Username"
// @Success      200       {object}  userResponse
// @Failure      404       {object}  errorResponse
// @Router       /api/users/username/{username} [get]
func (h *UserHandler) GetByUsername(c echo.Context) error {
	user, err := h.authService.GetUserByUsername(c.Request().Context(), c.Param("username"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// UpdateRole replaces a user's role set with the single named role.
//
// @Summary      Update a user's role
// @Tags         auth
// @Accept       json
// @Produce      plain
// @Security     BearerAuth
// @Param        id    path      string             true  "User id"
// @Param        body  body      roleUpdateRequest  true  "New role name"
// @Success      200   {string}  string
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/auth/user/role/{id} [put]
func (h *UserHandler) UpdateRole(c echo.Context) error {
	ident, err := callerIdentity(c)
	if err != nil {
		return err
	}

	var req roleUpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	msg, err := h.authService.UpdateUserRole(actorContext(c, ident), c.Param("id"), req.Role)
	if err != nil {
		return err
	}
	return c.String(http.StatusOK, msg)
}

// UpdateUsername changes a user's username.
//
// @Summary      Update a user's username
// @Tags         auth
// @Accept       json
// @Produce      plain
// @Security     BearerAuth
// @Param        id    path      string                 true  "User id"
// @Param        body  body      usernameUpdateRequest  true  "New username"
// @Success      200   {string}  string
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/auth/user/username/{id} [put]
func (h *UserHandler) UpdateUsername(c echo.Context) error {
	ident, err := callerIdentity(c)
	if err != nil {
		return err
	}

	var req usernameUpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	msg, err := h.authService.UpdateUserUsername(actorContext(c, ident), c.Param("id"), req.Username)
	if err != nil {
		return err
	}
	return c.String(http.StatusOK, msg)
}

// Delete removes a user account.
//
// @Summary      Delete a user
// @Tags         auth
// @Produce      plain
// @Security     BearerAuth
// @Param        id   path      string  true  "User id"
// @Success      200  {string}  string
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/auth/user/{id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	ident, err := callerIdentity(c)
	if err != nil {
		return err
	}

	if err := h.authService.DeleteUserByID(actorContext(c, ident), c.Param("id")); err != nil {
		return err
	}
	return c.String(http.StatusOK, "User deleted successfully.")
}
