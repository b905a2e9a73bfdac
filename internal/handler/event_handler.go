package handler

import (
	"net/http"

	"github.com/Eursukkul/event-booking/internal/dto"
	"github.com/Eursukkul/event-booking/internal/middleware"
	"github.com/Eursukkul/event-booking/internal/models"
	"github.com/Eursukkul/event-booking/internal/repository"
	"github.com/Eursukkul/event-booking/internal/service"
	"github.com/labstack/echo/v4"
)

type EventHandler struct {
	svc service.EventService
}

func NewEventHandler(svc service.EventService) *EventHandler {
	return &EventHandler{svc: svc}
}

// RegisterRoutes mounts public reads and organizer-only writes; authn guards the writes.
func (h *EventHandler) RegisterRoutes(g *echo.Group, authn echo.MiddlewareFunc) {
	g.GET("", h.ListEvents)
	g.GET("/:id", h.GetEvent)

	organizer := middleware.RequireRole(models.RoleOrganizer)
	g.POST("", h.CreateEvent, authn, organizer)
	g.PUT("/:id", h.UpdateEvent, authn, organizer)
	g.DELETE("/:id", h.DeleteEvent, authn, organizer)
}

func (h *EventHandler) CreateEvent(c echo.Context) error {
	var req dto.CreateEventRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	event, err := req.ToModel()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "date must match 2006-01-02")
	}

	if err := h.svc.CreateEvent(c.Request().Context(), middleware.CurrentUserID(c), event); err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusCreated, dto.ToEventResponse(event))
}

func (h *EventHandler) GetEvent(c echo.Context) error {
	id, err := parseID(c, "id", "event")
	if err != nil {
		return err
	}

	event, err := h.svc.GetEvent(c.Request().Context(), id)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, dto.ToEventResponse(event))
}

func (h *EventHandler) ListEvents(c echo.Context) error {
	events, err := h.svc.ListEvents(c.Request().Context(), repository.EventFilter{
		Category: c.QueryParam("category"),
		Search:   c.QueryParam("search"),
	})
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, dto.ToEventResponses(events))
}

func (h *EventHandler) UpdateEvent(c echo.Context) error {
	id, err := parseID(c, "id", "event")
	if err != nil {
		return err
	}

	var req dto.UpdateEventRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	patch, err := req.ToPatch()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "date must match 2006-01-02")
	}

	event, err := h.svc.UpdateEvent(c.Request().Context(), middleware.CurrentUserID(c), id, patch)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, dto.ToEventResponse(event))
}

func (h *EventHandler) DeleteEvent(c echo.Context) error {
	id, err := parseID(c, "id", "event")
	if err != nil {
		return err
	}

	if err := h.svc.DeleteEvent(c.Request().Context(), middleware.CurrentUserID(c), id); err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "Event deleted"})
}
