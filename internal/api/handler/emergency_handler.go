package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/rapidaid/livetracker/internal/core/ports"
)

// EmergencyHandler handles reporting and closing emergencies.
type EmergencyHandler struct {
	service ports.EmergencyService
}

func NewEmergencyHandler(service ports.EmergencyService) *EmergencyHandler {
	return &EmergencyHandler{service: service}
}

// Report handles POST /emergency.
//
// @Summary      Report an emergency
// @Tags         emergency
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      reportEmergencyRequest  true  "Emergency details"
// @Success      201   {object}  domain.Emergency
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /emergency [post]
func (h *EmergencyHandler) Report(c echo.Context) error {
	_, username, err := ctxClaims(c)
	if err != nil {
		return err
	}

	var req reportEmergencyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	e, err := h.service.Report(c.Request().Context(), ports.ReportEmergencyInput{
		Type:       strings.TrimSpace(req.Type),
		VictimName: strings.TrimSpace(req.VictimName),
		VictimID:   username,
		Location:   req.Location.toDomain(),
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, e)
}

// Resolve handles POST /emergency/:id/resolve.
//
// @Summary      Resolve or cancel an emergency
// @Tags         emergency
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                      true   "Emergency ID"
// @Param        body  body      resolveEmergencyRequest  false  "Set cancelled=true to cancel instead of resolve"
// @Success      204
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /emergency/{id}/resolve [post]
func (h *EmergencyHandler) Resolve(c echo.Context) error {
	role, username, err := ctxClaims(c)
	if err != nil {
		return err
	}
	id, err := emergencyID(c)
	if err != nil {
		return err
	}

	var req resolveEmergencyRequest
	if c.Request().ContentLength > 0 {
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
		}
	}

	err = h.service.Resolve(c.Request().Context(), ports.ResolveEmergencyInput{
		EmergencyID: id,
		Role:        role,
		Username:    username,
		Cancelled:   req.Cancelled,
	})
	if err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}
