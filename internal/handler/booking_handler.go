package handler

import (
	"net/http"

	"github.com/Eursukkul/event-booking/internal/dto"
	"github.com/Eursukkul/event-booking/internal/middleware"
	"github.com/Eursukkul/event-booking/internal/models"
	"github.com/Eursukkul/event-booking/internal/service"
	"github.com/labstack/echo/v4"
)

type BookingHandler struct {
	svc service.BookingService
}

func NewBookingHandler(svc service.BookingService) *BookingHandler {
	return &BookingHandler{svc: svc}
}

// RegisterRoutes expects g to already run the Auth middleware.
func (h *BookingHandler) RegisterRoutes(g *echo.Group) {
	g.POST("", h.CreateBooking)
	g.GET("/user", h.ListUserBookings)
	g.GET("/event/:eventId", h.ListEventBookings, middleware.RequireRole(models.RoleOrganizer))
	g.GET("/:id", h.GetBooking)
	g.DELETE("/:id", h.CancelBooking)
}

func (h *BookingHandler) CreateBooking(c echo.Context) error {
	var req dto.CreateBookingRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	booking, err := h.svc.CreateBooking(c.Request().Context(), middleware.CurrentUserID(c), req.EventID, req.Seats())
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusCreated, dto.ToBookingResponse(booking))
}

func (h *BookingHandler) CancelBooking(c echo.Context) error {
	bookingID, err := parseID(c, "id", "booking")
	if err != nil {
		return err
	}

	booking, err := h.svc.CancelBooking(c.Request().Context(), middleware.CurrentUserID(c), bookingID)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, dto.CancelBookingResponse{
		Message: "Booking cancelled",
		Booking: dto.ToBookingResponse(booking),
	})
}

func (h *BookingHandler) GetBooking(c echo.Context) error {
	id, err := parseID(c, "id", "booking")
	if err != nil {
		return err
	}

	booking, err := h.svc.GetBooking(c.Request().Context(), middleware.CurrentUserID(c), middleware.CurrentRole(c), id)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
}

func (h *BookingHandler) ListUserBookings(c echo.Context) error {
	status, err := parseStatus(c)
	if err != nil {
		return err
	}

	bookings, err := h.svc.ListUserBookings(c.Request().Context(), middleware.CurrentUserID(c), status)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, dto.ToBookingResponses(bookings))
}

func (h *BookingHandler) ListEventBookings(c echo.Context) error {
	eventID, err := parseID(c, "eventId", "event")
	if err != nil {
		return err
	}
	status, err := parseStatus(c)
	if err != nil {
		return err
	}

	bookings, err := h.svc.ListEventBookings(c.Request().Context(), eventID, status)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, dto.ToBookingResponses(bookings))
}
