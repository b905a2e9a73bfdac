package models

import (
	"time"

	"gorm.io/gorm"
)

type Event struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Title          string    `gorm:"not null" json:"title"`
	Description    string    `gorm:"not null" json:"description"`
	Venue          string    `gorm:"not null" json:"venue"`
	Category       string    `gorm:"not null;index" json:"category"`
	Date           time.Time `gorm:"type:date;not null" json:"date"`
	Time           string    `gorm:"type:varchar(5);not null" json:"time"`
	Price          float64   `gorm:"not null;default:0;check:price >= 0" json:"price"`
	TotalSeats     int       `gorm:"not null;check:total_seats >= 0" json:"total_seats"`
	SeatsAvailable int       `gorm:"not null" json:"seats_available"`
	OrganizerID    uint      `gorm:"not null;index" json:"organizer_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Organizer *User `gorm:"foreignKey:OrganizerID" json:"organizer,omitempty"`
}

// BookedSeats is the number of seats currently held by confirmed bookings.
func (e *Event) BookedSeats() int {
	return e.TotalSeats - e.SeatsAvailable
}
