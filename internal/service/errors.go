package service

import "errors"

var (
	ErrEventNotFound           = errors.New("event not found")
	ErrBookingNotFound         = errors.New("booking not found")
	ErrInsufficientSeats       = errors.New("not enough seats available")
	ErrInvalidSeats            = errors.New("seat count must be a positive number")
	ErrInvalidPrice            = errors.New("price must not be negative")
	ErrSeatsBelowBooked        = errors.New("total seats cannot be lower than seats already booked")
	ErrBookingAlreadyCancelled = errors.New("booking is already cancelled")
	ErrForbidden               = errors.New("not authorized")
	ErrConflict                = errors.New("concurrent update conflict, please retry")
	ErrEmailTaken              = errors.New("email is already registered")
	ErrInvalidCredentials      = errors.New("invalid email or password")
)
