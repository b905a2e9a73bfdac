package handler

import (
	"net/http"
	"strconv"

	"github.com/Eursukkul/event-booking/internal/models"
	"github.com/labstack/echo/v4"
)

func parseID(c echo.Context, name, label string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+label+" id")
	}
	return uint(id), nil
}

func parseStatus(c echo.Context) (*models.BookingStatus, error) {
	s := c.QueryParam("status")
	if s == "" {
		return nil, nil
	}
	status := models.BookingStatus(s)
	if !status.Valid() {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid status filter")
	}
	return &status, nil
}

// bindAndValidate decodes the body and runs the struct's validate tags.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	return c.Validate(req)
}
