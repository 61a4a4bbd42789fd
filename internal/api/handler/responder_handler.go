package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rapidaid/livetracker/internal/core/ports"
)

// ResponderHandler handles responder actions on emergencies.
type ResponderHandler struct {
	service ports.EmergencyService
}

func NewResponderHandler(service ports.EmergencyService) *ResponderHandler {
	return &ResponderHandler{service: service}
}

// Accept handles POST /responder/accept/:id.
//
// @Summary      Accept an emergency
// @Description  Assigns the calling responder. The client should navigate to the returned redirect.
// @Tags         responder
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Emergency ID"
// @Success      200  {object}  acceptEmergencyResponse
// @Failure      400  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /responder/accept/{id} [post]
func (h *ResponderHandler) Accept(c echo.Context) error {
	_, username, err := ctxClaims(c)
	if err != nil {
		return err
	}
	id, err := emergencyID(c)
	if err != nil {
		return err
	}

	e, err := h.service.Accept(c.Request().Context(), id, username)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, acceptEmergencyResponse{
		Message:   "emergency accepted",
		Redirect:  fmt.Sprintf("/map/%d", e.ID),
		Emergency: e,
	})
}
