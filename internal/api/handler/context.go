package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/rapidaid/livetracker/internal/api/middleware"
)

// ctxClaims extracts the auth claims injected by the Auth middleware.
// A missing role means the middleware never ran for this route.
func ctxClaims(c echo.Context) (role, username string, err error) {
	role, _ = c.Get(middleware.ClaimRole).(string)
	if role == "" {
		return "", "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}

	username, _ = c.Get(middleware.ClaimUsername).(string)
	if username == "" {
		return "", "", echo.NewHTTPError(http.StatusUnauthorized, "token missing username")
	}

	return role, username, nil
}

// emergencyID parses the :id path parameter.
func emergencyID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid emergency id")
	}
	return id, nil
}
