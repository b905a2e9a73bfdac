package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Eursukkul/event-booking/internal/dto"
	"github.com/Eursukkul/event-booking/internal/middleware"
	"github.com/Eursukkul/event-booking/internal/models"
	"github.com/Eursukkul/event-booking/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mock BookingService ---

type mockBookingService struct {
	createFn      func(ctx context.Context, userID, eventID uint, seats int) (*models.Booking, error)
	cancelFn      func(ctx context.Context, userID, bookingID uint) (*models.Booking, error)
	getFn         func(ctx context.Context, userID uint, role models.Role, id uint) (*models.Booking, error)
	listUserFn    func(ctx context.Context, userID uint, status *models.BookingStatus) ([]models.Booking, error)
	listEventFn   func(ctx context.Context, eventID uint, status *models.BookingStatus) ([]models.Booking, error)
	cancelEventFn func(ctx context.Context, eventID uint) (int, error)
}

func (m *mockBookingService) CreateBooking(ctx context.Context, userID, eventID uint, seats int) (*models.Booking, error) {
	return m.createFn(ctx, userID, eventID, seats)
}
func (m *mockBookingService) CancelBooking(ctx context.Context, userID, bookingID uint) (*models.Booking, error) {
	return m.cancelFn(ctx, userID, bookingID)
}
func (m *mockBookingService) GetBooking(ctx context.Context, userID uint, role models.Role, id uint) (*models.Booking, error) {
	return m.getFn(ctx, userID, role, id)
}
func (m *mockBookingService) ListUserBookings(ctx context.Context, userID uint, status *models.BookingStatus) ([]models.Booking, error) {
	return m.listUserFn(ctx, userID, status)
}
func (m *mockBookingService) ListEventBookings(ctx context.Context, eventID uint, status *models.BookingStatus) ([]models.Booking, error) {
	return m.listEventFn(ctx, eventID, status)
}
func (m *mockBookingService) CancelEventBookings(ctx context.Context, eventID uint) (int, error) {
	return m.cancelEventFn(ctx, eventID)
}

// --- Helpers ---

func newContext(method, target, body string, userID uint, role models.Role) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = middleware.NewRequestValidator()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(middleware.ContextUserID, userID)
	c.Set(middleware.ContextUserRole, role)
	return c, rec
}

func assertHTTPError(t *testing.T, err error, code int) {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected *echo.HTTPError, got %T", err)
	assert.Equal(t, code, he.Code)
}

// --- Tests ---

func TestCreateBooking_Handler_Success(t *testing.T) {
	var gotUser, gotEvent uint
	var gotSeats int
	svc := &mockBookingService{
		createFn: func(ctx context.Context, userID, eventID uint, seats int) (*models.Booking, error) {
			gotUser, gotEvent, gotSeats = userID, eventID, seats
			return &models.Booking{
				ID:          1,
				UserID:      userID,
				EventID:     eventID,
				SeatsBooked: seats,
				TotalAmount: 60,
				Status:      models.StatusConfirmed,
				CreatedAt:   time.Now(),
			}, nil
		},
	}

	c, rec := newContext(http.MethodPost, "/api/bookings", `{"eventId":4,"seatsBooked":3}`, 7, models.RoleUser)
	err := NewBookingHandler(svc).CreateBooking(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, uint(7), gotUser)
	assert.Equal(t, uint(4), gotEvent)
	assert.Equal(t, 3, gotSeats)

	var resp dto.BookingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, models.StatusConfirmed, resp.Status)
	assert.Equal(t, 60.0, resp.TotalAmount)
}

func TestCreateBooking_Handler_DefaultSeats(t *testing.T) {
	var gotSeats int
	svc := &mockBookingService{
		createFn: func(ctx context.Context, userID, eventID uint, seats int) (*models.Booking, error) {
			gotSeats = seats
			return &models.Booking{ID: 1, SeatsBooked: seats}, nil
		},
	}

	c, _ := newContext(http.MethodPost, "/api/bookings", `{"eventId":4}`, 7, models.RoleUser)
	require.NoError(t, NewBookingHandler(svc).CreateBooking(c))

	assert.Equal(t, 1, gotSeats)
}

func TestCreateBooking_Handler_ValidationErrors(t *testing.T) {
	cases := map[string]string{
		"missing event":  `{"seatsBooked":2}`,
		"zero seats":     `{"eventId":1,"seatsBooked":0}`,
		"negative seats": `{"eventId":1,"seatsBooked":-1}`,
		"string seats":   `{"eventId":1,"seatsBooked":"two"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			c, _ := newContext(http.MethodPost, "/api/bookings", body, 7, models.RoleUser)
			err := NewBookingHandler(nil).CreateBooking(c)
			assertHTTPError(t, err, http.StatusBadRequest)
		})
	}
}

func TestCreateBooking_Handler_ServiceErrors(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{service.ErrEventNotFound, http.StatusNotFound},
		{service.ErrInsufficientSeats, http.StatusBadRequest},
		{service.ErrConflict, http.StatusConflict},
		{errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			svc := &mockBookingService{
				createFn: func(ctx context.Context, userID, eventID uint, seats int) (*models.Booking, error) {
					return nil, tc.err
				},
			}
			c, _ := newContext(http.MethodPost, "/api/bookings", `{"eventId":1}`, 7, models.RoleUser)
			err := NewBookingHandler(svc).CreateBooking(c)
			assertHTTPError(t, err, tc.code)
		})
	}
}

func TestCancelBooking_Handler_Success(t *testing.T) {
	svc := &mockBookingService{
		cancelFn: func(ctx context.Context, userID, bookingID uint) (*models.Booking, error) {
			return &models.Booking{ID: bookingID, UserID: userID, Status: models.StatusCancelled}, nil
		},
	}

	c, rec := newContext(http.MethodDelete, "/api/bookings/5", "", 7, models.RoleUser)
	c.SetParamNames("id")
	c.SetParamValues("5")

	require.NoError(t, NewBookingHandler(svc).CancelBooking(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp dto.CancelBookingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Booking cancelled", resp.Message)
	assert.Equal(t, models.StatusCancelled, resp.Booking.Status)
}

func TestCancelBooking_Handler_Errors(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{service.ErrBookingNotFound, http.StatusNotFound},
		{service.ErrForbidden, http.StatusForbidden},
		{service.ErrBookingAlreadyCancelled, http.StatusConflict},
	}
	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			svc := &mockBookingService{
				cancelFn: func(ctx context.Context, userID, bookingID uint) (*models.Booking, error) {
					return nil, tc.err
				},
			}
			c, _ := newContext(http.MethodDelete, "/api/bookings/5", "", 7, models.RoleUser)
			c.SetParamNames("id")
			c.SetParamValues("5")
			assertHTTPError(t, NewBookingHandler(svc).CancelBooking(c), tc.code)
		})
	}
}

func TestCancelBooking_Handler_InvalidID(t *testing.T) {
	c, _ := newContext(http.MethodDelete, "/api/bookings/abc", "", 7, models.RoleUser)
	c.SetParamNames("id")
	c.SetParamValues("abc")

	assertHTTPError(t, NewBookingHandler(nil).CancelBooking(c), http.StatusBadRequest)
}

func TestGetBooking_Handler_PassesCaller(t *testing.T) {
	var gotRole models.Role
	svc := &mockBookingService{
		getFn: func(ctx context.Context, userID uint, role models.Role, id uint) (*models.Booking, error) {
			gotRole = role
			return &models.Booking{ID: id}, nil
		},
	}

	c, rec := newContext(http.MethodGet, "/api/bookings/1", "", 7, models.RoleOrganizer)
	c.SetParamNames("id")
	c.SetParamValues("1")

	require.NoError(t, NewBookingHandler(svc).GetBooking(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.RoleOrganizer, gotRole)
}

func TestListUserBookings_Handler(t *testing.T) {
	var gotUser uint
	svc := &mockBookingService{
		listUserFn: func(ctx context.Context, userID uint, status *models.BookingStatus) ([]models.Booking, error) {
			gotUser = userID
			return []models.Booking{
				{ID: 2, UserID: userID, Event: &models.Event{ID: 1, Title: "Go Meetup"}},
				{ID: 1, UserID: userID, Event: &models.Event{ID: 1, Title: "Go Meetup"}},
			}, nil
		},
	}

	c, rec := newContext(http.MethodGet, "/api/bookings/user", "", 7, models.RoleUser)
	require.NoError(t, NewBookingHandler(svc).ListUserBookings(c))

	assert.Equal(t, uint(7), gotUser)
	var resp []dto.BookingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 2)
	assert.Equal(t, "Go Meetup", resp[0].Event.Title)
}

func TestListUserBookings_Handler_InvalidStatus(t *testing.T) {
	c, _ := newContext(http.MethodGet, "/api/bookings/user?status=pending", "", 7, models.RoleUser)

	assertHTTPError(t, NewBookingHandler(nil).ListUserBookings(c), http.StatusBadRequest)
}

func TestListEventBookings_Handler_WithStatusFilter(t *testing.T) {
	var captured *models.BookingStatus
	svc := &mockBookingService{
		listEventFn: func(ctx context.Context, eventID uint, status *models.BookingStatus) ([]models.Booking, error) {
			captured = status
			return []models.Booking{
				{ID: 1, EventID: eventID, User: &models.User{ID: 3, Name: "Ann", Email: "ann@example.com"}},
			}, nil
		},
	}

	c, rec := newContext(http.MethodGet, "/api/bookings/event/1?status=confirmed", "", 7, models.RoleOrganizer)
	c.SetParamNames("eventId")
	c.SetParamValues("1")

	require.NoError(t, NewBookingHandler(svc).ListEventBookings(c))
	require.NotNil(t, captured)
	assert.Equal(t, models.StatusConfirmed, *captured)

	var resp []dto.BookingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ann@example.com", resp[0].User.Email)
}

func TestBookingRoutes_EventListingRequiresOrganizer(t *testing.T) {
	e := echo.New()
	g := e.Group("/api/bookings", func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(middleware.ContextUserID, uint(7))
			c.Set(middleware.ContextUserRole, models.RoleUser)
			return next(c)
		}
	})
	NewBookingHandler(&mockBookingService{}).RegisterRoutes(g)

	req := httptest.NewRequest(http.MethodGet, "/api/bookings/event/1", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}
