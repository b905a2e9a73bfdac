package models

import "time"

type BookingStatus string

const (
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
)

func (s BookingStatus) Valid() bool {
	return s == StatusConfirmed || s == StatusCancelled
}

type Booking struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	UserID      uint          `gorm:"not null;index" json:"user_id"`
	EventID     uint          `gorm:"not null;index" json:"event_id"`
	SeatsBooked int           `gorm:"not null;default:1;check:seats_booked > 0" json:"seats_booked"`
	TotalAmount float64       `gorm:"not null" json:"total_amount"`
	Status      BookingStatus `gorm:"type:varchar(20);not null;default:'confirmed'" json:"status"`
	CancelledAt *time.Time    `json:"cancelled_at,omitempty"`
	CreatedAt   time.Time     `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`

	User  *User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Event *Event `gorm:"foreignKey:EventID" json:"event,omitempty"`
}
