package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/platformlab/accounts-api/internal/core/domain"
	"github.com/platformlab/accounts-api/internal/core/ports"
)

type UserHandler struct {
	accounts ports.AccountService
}

func NewUserHandler(accounts ports.AccountService) *UserHandler {
	return &UserHandler{accounts: accounts}
}

type updateProfileRequest struct {
	Username string `json:"username"`
	Email    string `json:"email" validate:"omitempty,email"`
	Password string `json:"password"`
}

type updateProfileResponse struct {
	Message string       `json:"message"`
	User    *domain.User `json:"user"`
}

type listUsersResponse struct {
	Count int            `json:"count"`
	Users []*domain.User `json:"users"`
}

// Profile returns the authenticated caller's own account.
//
// @Summary      Get own profile
// @Tags         users
// @Produce      json
// @Success      200  {object}  domain.User
// @Failure      401  {object}  map[string]string
// @Router       /users/profile [get]
func (h *UserHandler) Profile(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateProfile selectively replaces username, email, and/or password.
//
// @Summary      Update own profile
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      updateProfileRequest  true  "Fields to change"
// @Success      200   {object}  updateProfileResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /users/profile [put]
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	updated, err := h.accounts.UpdateProfile(c.Request().Context(), user.ID, ports.ProfileUpdate{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, updateProfileResponse{Message: "profile updated successfully", User: updated})
}

// DeleteProfile removes the caller's own account. Tokens issued for it stop
// working on their next use.
//
// @Summary      Delete own profile
// @Tags         users
// @Produce      json
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /users/profile [delete]
func (h *UserHandler) DeleteProfile(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	if err := h.accounts.DeleteProfile(c.Request().Context(), user.ID); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, messageResponse{Message: "profile deleted successfully"})
}

// ListUsers returns every account, password hashes excluded. Admin only;
// the RBAC middleware enforces that before this handler runs.
//
// @Summary      List all users
// @Tags         users
// @Produce      json
// @Success      200  {object}  listUsersResponse
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /users [get]
func (h *UserHandler) ListUsers(c echo.Context) error {
	users, err := h.accounts.ListUsers(c.Request().Context())
	if err != nil {
		return err
	}
	if users == nil {
		users = []*domain.User{}
	}
	return c.JSON(http.StatusOK, listUsersResponse{Count: len(users), Users: users})
}
