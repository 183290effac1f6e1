// Package handler contains the HTTP handlers of the storefront API.
package handler

import (
	"strconv"

	"storefront/internal/delivery/api/middleware"
	"storefront/internal/delivery/api/response"
	"storefront/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// bindAndValidate binds the request body into req and runs its rules. It
// writes the 400 response itself and reports whether the handler may go on.
func bindAndValidate(c echo.Context, req any) (bool, error) {
	if err := c.Bind(req); err != nil {
		return false, response.BindingError(c, "INVALID_INPUT", "Request body could not be parsed")
	}
	if err := c.Validate(req); err != nil {
		return false, response.BadRequestWithDetails(c, "VALIDATION_FAILED", "Input validation failed", err)
	}

	return true, nil
}

func uuidParam(c echo.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))

	return id, err == nil
}

func intQuery(c echo.Context, name string) int {
	n, err := strconv.Atoi(c.QueryParam(name))
	if err != nil {
		return 0
	}

	return n
}

func requester(c echo.Context) (usecase.Requester, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return usecase.Requester{}, false
	}

	return usecase.Requester{UserID: userID, IsAdmin: middleware.IsAdmin(c)}, true
}
