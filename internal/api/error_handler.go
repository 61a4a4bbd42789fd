package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/rapidaid/livetracker/internal/core/domain"
)

type errorResponse struct {
	Error string `json:"error"`
}

// domainStatus lists the sentinel errors clients may see. An empty message
// means err.Error() is safe to show as is.
var domainStatus = []struct {
	target error
	code   int
	msg    string
}{
	{domain.ErrEmergencyNotFound, http.StatusNotFound, "emergency not found"},
	{domain.ErrAlreadyAccepted, http.StatusConflict, "emergency already accepted"},
	{domain.ErrEmergencyClosed, http.StatusConflict, "emergency is no longer active"},
	{domain.ErrInvalidTransition, http.StatusUnprocessableEntity, ""},
	{domain.ErrForbidden, http.StatusForbidden, "access forbidden"},
	{domain.ErrInvalidParty, http.StatusForbidden, "role cannot report locations"},
	{domain.ErrInvalidCredentials, http.StatusUnauthorized, "invalid credentials"},
	{domain.ErrUserNotFound, http.StatusNotFound, "user not found"},
	{domain.ErrUserExists, http.StatusConflict, "user already exists"},
}

// NewHTTPErrorHandler renders every error as {"error": "..."}. Errors that
// are neither echo.HTTPError nor a known domain error become a logged 500.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg, known := statusFor(err)
		if !known {
			log.Error().Err(err).
				Str("method", c.Request().Method).
				Str("route", c.Path()).
				Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
				Msg("request failed")
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func statusFor(err error) (code int, msg string, known bool) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprint(he.Message), true
	}
	for _, m := range domainStatus {
		if errors.Is(err, m.target) {
			if m.msg == "" {
				return m.code, err.Error(), true
			}
			return m.code, m.msg, true
		}
	}
	return http.StatusInternalServerError, "internal server error", false
}
