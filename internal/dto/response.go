package dto

import (
	"time"

	"github.com/Eursukkul/event-booking/internal/models"
)

type UserSummary struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

type EventResponse struct {
	ID             uint         `json:"id"`
	Title          string       `json:"title"`
	Description    string       `json:"description"`
	Venue          string       `json:"venue"`
	Category       string       `json:"category"`
	Date           string       `json:"date"`
	Time           string       `json:"time"`
	Price          float64      `json:"price"`
	TotalSeats     int          `json:"totalSeats"`
	SeatsAvailable int          `json:"seatsAvailable"`
	OrganizerID    uint         `json:"organizerId"`
	Organizer      *UserSummary `json:"organizer,omitempty"`
	CreatedAt      time.Time    `json:"createdAt"`
}

type BookingResponse struct {
	ID          uint                 `json:"id"`
	UserID      uint                 `json:"userId"`
	EventID     uint                 `json:"eventId"`
	SeatsBooked int                  `json:"seatsBooked"`
	TotalAmount float64              `json:"totalAmount"`
	Status      models.BookingStatus `json:"status"`
	CreatedAt   time.Time            `json:"createdAt"`
	CancelledAt *time.Time           `json:"cancelledAt,omitempty"`
	User        *UserSummary         `json:"user,omitempty"`
	Event       *EventResponse       `json:"event,omitempty"`
}

type CancelBookingResponse struct {
	Message string          `json:"message"`
	Booking BookingResponse `json:"booking"`
}

type AuthResponse struct {
	Token string      `json:"token"`
	User  UserSummary `json:"user"`
	Role  models.Role `json:"role"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Message string `json:"message"`
}

func ToUserSummary(u *models.User) *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{ID: u.ID, Name: u.Name, Email: u.Email}
}

func ToEventResponse(e *models.Event) EventResponse {
	resp := EventResponse{
		ID:             e.ID,
		Title:          e.Title,
		Description:    e.Description,
		Venue:          e.Venue,
		Category:       e.Category,
		Date:           e.Date.Format(DateLayout),
		Time:           e.Time,
		Price:          e.Price,
		TotalSeats:     e.TotalSeats,
		SeatsAvailable: e.SeatsAvailable,
		OrganizerID:    e.OrganizerID,
		CreatedAt:      e.CreatedAt,
	}
	if e.Organizer != nil {
		// only the organizer's name is public
		resp.Organizer = &UserSummary{ID: e.Organizer.ID, Name: e.Organizer.Name}
	}
	return resp
}

func ToEventResponses(events []models.Event) []EventResponse {
	resp := make([]EventResponse, len(events))
	for i := range events {
		resp[i] = ToEventResponse(&events[i])
	}
	return resp
}

func ToBookingResponse(b *models.Booking) BookingResponse {
	resp := BookingResponse{
		ID:          b.ID,
		UserID:      b.UserID,
		EventID:     b.EventID,
		SeatsBooked: b.SeatsBooked,
		TotalAmount: b.TotalAmount,
		Status:      b.Status,
		CreatedAt:   b.CreatedAt,
		CancelledAt: b.CancelledAt,
		User:        ToUserSummary(b.User),
	}
	if b.Event != nil {
		ev := ToEventResponse(b.Event)
		resp.Event = &ev
	}
	return resp
}

func ToBookingResponses(bookings []models.Booking) []BookingResponse {
	resp := make([]BookingResponse, len(bookings))
	for i := range bookings {
		resp[i] = ToBookingResponse(&bookings[i])
	}
	return resp
}
