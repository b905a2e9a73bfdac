package service

import (
	"context"

	"github.com/Eursukkul/event-booking/internal/models"
)

// Publisher emits domain notifications. A nil Publisher disables messaging.
type Publisher interface {
	Publish(routingKey string, payload any) error
}

// EventCache is a read-through cache for single events. A nil EventCache disables caching.
// Get also returns the entry's generation; Set only stores when the generation is unchanged,
// so a fill that raced a Delete is dropped.
type EventCache interface {
	Get(ctx context.Context, id uint) (*models.Event, int64, error)
	Set(ctx context.Context, event *models.Event, generation int64) error
	Delete(ctx context.Context, id uint) error
}

type TokenIssuer interface {
	Issue(userID uint, role string) (string, error)
}

const (
	RoutingEventCreated     = "event.created"
	RoutingEventUpdated     = "event.updated"
	RoutingEventDeleted     = "event.deleted"
	RoutingBookingCreated   = "booking.created"
	RoutingBookingCancelled = "booking.cancelled"
)

type BookingMessage struct {
	BookingID   uint                 `json:"booking_id"`
	EventID     uint                 `json:"event_id"`
	UserID      uint                 `json:"user_id"`
	SeatsBooked int                  `json:"seats_booked"`
	TotalAmount float64              `json:"total_amount"`
	Status      models.BookingStatus `json:"status"`
}

type EventMessage struct {
	EventID        uint   `json:"event_id"`
	Title          string `json:"title,omitempty"`
	TotalSeats     int    `json:"total_seats"`
	SeatsAvailable int    `json:"seats_available"`
}

func bookingMessage(b *models.Booking) BookingMessage {
	return BookingMessage{
		BookingID:   b.ID,
		EventID:     b.EventID,
		UserID:      b.UserID,
		SeatsBooked: b.SeatsBooked,
		TotalAmount: b.TotalAmount,
		Status:      b.Status,
	}
}

func eventMessage(e *models.Event) EventMessage {
	return EventMessage{
		EventID:        e.ID,
		Title:          e.Title,
		TotalSeats:     e.TotalSeats,
		SeatsAvailable: e.SeatsAvailable,
	}
}
