package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/platformlab/accounts-api/internal/api/middleware"
	"github.com/platformlab/accounts-api/internal/core/domain"
)

// currentUser extracts the account resolved by the Auth middleware. All
// profile routes sit behind that middleware, so a missing user means the
// route was miswired; fail closed with 401.
func currentUser(c echo.Context) (*domain.User, error) {
	user := middleware.UserFromContext(c)
	if user == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "user information not available")
	}
	return user, nil
}
