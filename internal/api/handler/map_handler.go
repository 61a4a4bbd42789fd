package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rapidaid/livetracker/internal/core/domain"
	"github.com/rapidaid/livetracker/internal/core/ports"
)

// LocationDispatcher is the interface the handler uses to enqueue location updates.
type LocationDispatcher interface {
	Enqueue(update ports.LocationUpdateInput)
}

// MapHandler serves the data the live map polls for.
type MapHandler struct {
	service    ports.EmergencyService
	dispatcher LocationDispatcher
}

func NewMapHandler(service ports.EmergencyService, dispatcher LocationDispatcher) *MapHandler {
	return &MapHandler{service: service, dispatcher: dispatcher}
}

// Active handles GET /map/active.
//
// @Summary      List active emergencies
// @Tags         map
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.Emergency
// @Failure      401  {object}  errorResponse
// @Router       /map/active [get]
func (h *MapHandler) Active(c echo.Context) error {
	list, err := h.service.ListActive(c.Request().Context())
	if err != nil {
		return err
	}
	if list == nil {
		list = []*domain.Emergency{}
	}
	return c.JSON(http.StatusOK, list)
}

// Locations handles GET /map/:id/location.
//
// @Summary      Latest victim and responder location
// @Tags         map
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Emergency ID"
// @Success      200  {object}  domain.LocationPair
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /map/{id}/location [get]
func (h *MapHandler) Locations(c echo.Context) error {
	id, err := emergencyID(c)
	if err != nil {
		return err
	}

	pair, err := h.service.Locations(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pair)
}

// ReportLocation handles POST /map/:id/location. The update is processed
// asynchronously; 202 means queued, not stored.
//
// @Summary      Report the caller's current location
// @Tags         map
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                    true  "Emergency ID"
// @Param        body  body      locationUpdateRequest  true  "Current position"
// @Success      202   {object}  acceptedResponse
// @Failure      400   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /map/{id}/location [post]
func (h *MapHandler) ReportLocation(c echo.Context) error {
	role, username, err := ctxClaims(c)
	if err != nil {
		return err
	}
	id, err := emergencyID(c)
	if err != nil {
		return err
	}

	var req locationUpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	in := ports.LocationUpdateInput{
		EmergencyID: id,
		Role:        role,
		Username:    username,
		Lat:         *req.Lat,
		Lng:         *req.Lng,
		Timestamp:   time.Now().UTC(),
		Source:      req.Source,
	}
	if req.Timestamp != nil {
		in.Timestamp = req.Timestamp.UTC()
	}

	h.dispatcher.Enqueue(in)
	return c.JSON(http.StatusAccepted, acceptedResponse{Message: "location accepted"})
}
