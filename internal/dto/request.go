package dto

import (
	"time"

	"github.com/Eursukkul/event-booking/internal/models"
	"github.com/Eursukkul/event-booking/internal/service"
)

// DateLayout is the wire format of Event.Date.
const DateLayout = "2006-01-02"

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role" validate:"omitempty,oneof=user organizer"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// CreateBookingRequest: seatsBooked may be omitted and then defaults to one seat.
type CreateBookingRequest struct {
	EventID     uint `json:"eventId" validate:"required,gt=0"`
	SeatsBooked *int `json:"seatsBooked" validate:"omitempty,gt=0"`
}

func (r CreateBookingRequest) Seats() int {
	if r.SeatsBooked == nil {
		return service.DefaultSeats
	}
	return *r.SeatsBooked
}

type CreateEventRequest struct {
	Title       string  `json:"title" validate:"required,max=200"`
	Description string  `json:"description" validate:"required"`
	Venue       string  `json:"venue" validate:"required"`
	Category    string  `json:"category" validate:"required,max=50"`
	Date        string  `json:"date" validate:"required,datetime=2006-01-02"`
	Time        string  `json:"time" validate:"required,datetime=15:04"`
	Price       float64 `json:"price" validate:"gte=0"`
	TotalSeats  int     `json:"totalSeats" validate:"gte=0"`
}

func (r CreateEventRequest) ToModel() (*models.Event, error) {
	date, err := time.Parse(DateLayout, r.Date)
	if err != nil {
		return nil, err
	}
	return &models.Event{
		Title:       r.Title,
		Description: r.Description,
		Venue:       r.Venue,
		Category:    r.Category,
		Date:        date,
		Time:        r.Time,
		Price:       r.Price,
		TotalSeats:  r.TotalSeats,
	}, nil
}

// UpdateEventRequest has no seatsAvailable field: availability only moves through bookings.
type UpdateEventRequest struct {
	Title       *string  `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string  `json:"description" validate:"omitempty,min=1"`
	Venue       *string  `json:"venue" validate:"omitempty,min=1"`
	Category    *string  `json:"category" validate:"omitempty,min=1,max=50"`
	Date        *string  `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Time        *string  `json:"time" validate:"omitempty,datetime=15:04"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
	TotalSeats  *int     `json:"totalSeats" validate:"omitempty,gte=0"`
}

func (r UpdateEventRequest) ToPatch() (service.EventPatch, error) {
	patch := service.EventPatch{
		Title:       r.Title,
		Description: r.Description,
		Venue:       r.Venue,
		Category:    r.Category,
		Time:        r.Time,
		Price:       r.Price,
		TotalSeats:  r.TotalSeats,
	}
	if r.Date != nil {
		date, err := time.Parse(DateLayout, *r.Date)
		if err != nil {
			return service.EventPatch{}, err
		}
		patch.Date = &date
	}
	return patch, nil
}
