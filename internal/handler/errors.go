package handler

import (
	"errors"
	"net/http"

	"github.com/Eursukkul/event-booking/internal/service"
	"github.com/labstack/echo/v4"
)

var statusByError = []struct {
	err  error
	code int
}{
	{service.ErrEventNotFound, http.StatusNotFound},
	{service.ErrBookingNotFound, http.StatusNotFound},
	{service.ErrInsufficientSeats, http.StatusBadRequest},
	{service.ErrInvalidSeats, http.StatusBadRequest},
	{service.ErrInvalidPrice, http.StatusBadRequest},
	{service.ErrSeatsBelowBooked, http.StatusBadRequest},
	{service.ErrForbidden, http.StatusForbidden},
	{service.ErrBookingAlreadyCancelled, http.StatusConflict},
	{service.ErrConflict, http.StatusConflict},
	{service.ErrEmailTaken, http.StatusConflict},
	{service.ErrInvalidCredentials, http.StatusUnauthorized},
}

// toHTTPError maps service errors to responses; anything unknown is a 500 with the cause kept internal.
func toHTTPError(err error) error {
	for _, m := range statusByError {
		if errors.Is(err, m.err) {
			return echo.NewHTTPError(m.code, m.err.Error())
		}
	}
	return echo.NewHTTPError(http.StatusInternalServerError).SetInternal(err)
}
