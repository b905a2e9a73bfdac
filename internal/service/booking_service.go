package service

import (
	"context"
	"fmt"
	"math"

	"github.com/Eursukkul/event-booking/internal/models"
	"github.com/Eursukkul/event-booking/internal/repository"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// DefaultSeats is used when a booking request does not say how many seats it wants.
const DefaultSeats = 1

type BookingService interface {
	CreateBooking(ctx context.Context, userID, eventID uint, seats int) (*models.Booking, error)
	CancelBooking(ctx context.Context, userID, bookingID uint) (*models.Booking, error)
	GetBooking(ctx context.Context, userID uint, role models.Role, id uint) (*models.Booking, error)
	ListUserBookings(ctx context.Context, userID uint, status *models.BookingStatus) ([]models.Booking, error)
	ListEventBookings(ctx context.Context, eventID uint, status *models.BookingStatus) ([]models.Booking, error)
	CancelEventBookings(ctx context.Context, eventID uint) (int, error)
}

type bookingService struct {
	bookingRepo repository.BookingRepository
	eventRepo   repository.EventRepository
	publisher   Publisher
	cache       EventCache
	log         logrus.FieldLogger
	maxRetries  int
}

func NewBookingService(
	bookingRepo repository.BookingRepository,
	eventRepo repository.EventRepository,
	publisher Publisher,
	cache EventCache,
	log logrus.FieldLogger,
	maxRetries int,
) BookingService {
	return &bookingService{
		bookingRepo: bookingRepo,
		eventRepo:   eventRepo,
		publisher:   publisher,
		cache:       cache,
		log:         log.WithField("component", "booking_service"),
		maxRetries:  maxRetries,
	}
}

func (s *bookingService) CreateBooking(ctx context.Context, userID, eventID uint, seats int) (*models.Booking, error) {
	if seats == 0 {
		seats = DefaultSeats
	}
	if seats < 0 {
		return nil, ErrInvalidSeats
	}

	var created *models.Booking
	err := runTx(ctx, s.bookingRepo, s.maxRetries, s.log, func(tx *gorm.DB) error {
		// Lock the event row: concurrent bookings for the same event queue up here.
		event, err := s.eventRepo.FindByIDForUpdate(ctx, tx, eventID)
		if err != nil {
			if repository.IsNotFound(err) {
				return ErrEventNotFound
			}
			return fmt.Errorf("lock event: %w", err)
		}

		if event.SeatsAvailable < seats {
			return ErrInsufficientSeats
		}

		booking := &models.Booking{
			UserID:      userID,
			EventID:     eventID,
			SeatsBooked: seats,
			TotalAmount: amount(event.Price, seats),
			Status:      models.StatusConfirmed,
		}
		if err := s.bookingRepo.Create(ctx, tx, booking); err != nil {
			return fmt.Errorf("create booking: %w", err)
		}

		ok, err := s.eventRepo.ReserveSeats(ctx, tx, eventID, seats)
		if err != nil {
			return fmt.Errorf("reserve seats: %w", err)
		}
		if !ok {
			return ErrInsufficientSeats
		}

		created = booking
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"booking_id": created.ID,
		"event_id":   eventID,
		"user_id":    userID,
		"seats":      seats,
	}).Info("booking confirmed")

	s.invalidateEvent(ctx, eventID)
	s.publish(RoutingBookingCreated, bookingMessage(created))

	return s.resolve(ctx, created), nil
}

func (s *bookingService) CancelBooking(ctx context.Context, userID, bookingID uint) (*models.Booking, error) {
	var cancelled *models.Booking
	err := runTx(ctx, s.bookingRepo, s.maxRetries, s.log, func(tx *gorm.DB) error {
		// The booking row lock keeps two cancellations from both releasing seats.
		booking, err := s.bookingRepo.FindByIDForUpdate(ctx, tx, bookingID)
		if err != nil {
			if repository.IsNotFound(err) {
				return ErrBookingNotFound
			}
			return fmt.Errorf("lock booking: %w", err)
		}

		if booking.UserID != userID {
			return ErrForbidden
		}
		if booking.Status == models.StatusCancelled {
			return ErrBookingAlreadyCancelled
		}

		if err := s.eventRepo.ReleaseSeats(ctx, tx, booking.EventID, booking.SeatsBooked); err != nil {
			return fmt.Errorf("release seats: %w", err)
		}
		if err := s.bookingRepo.UpdateStatus(ctx, tx, booking.ID, models.StatusCancelled); err != nil {
			return fmt.Errorf("cancel booking: %w", err)
		}

		booking.Status = models.StatusCancelled
		cancelled = booking
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"booking_id": cancelled.ID,
		"event_id":   cancelled.EventID,
		"seats":      cancelled.SeatsBooked,
	}).Info("booking cancelled")

	s.invalidateEvent(ctx, cancelled.EventID)
	s.publish(RoutingBookingCancelled, bookingMessage(cancelled))

	return s.resolve(ctx, cancelled), nil
}

// GetBooking lets the owner or an organizer read a booking.
func (s *bookingService) GetBooking(ctx context.Context, userID uint, role models.Role, id uint) (*models.Booking, error) {
	booking, err := s.bookingRepo.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("find booking: %w", err)
	}
	if booking.UserID != userID && role != models.RoleOrganizer {
		return nil, ErrForbidden
	}
	return booking, nil
}

func (s *bookingService) ListUserBookings(ctx context.Context, userID uint, status *models.BookingStatus) ([]models.Booking, error) {
	bookings, err := s.bookingRepo.FindByUser(ctx, userID, status)
	if err != nil {
		return nil, fmt.Errorf("list user bookings: %w", err)
	}
	return bookings, nil
}

func (s *bookingService) ListEventBookings(ctx context.Context, eventID uint, status *models.BookingStatus) ([]models.Booking, error) {
	if _, err := s.eventRepo.FindByID(ctx, eventID); err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("find event: %w", err)
	}

	bookings, err := s.bookingRepo.FindByEvent(ctx, eventID, status)
	if err != nil {
		return nil, fmt.Errorf("list event bookings: %w", err)
	}
	return bookings, nil
}

// CancelEventBookings cancels every confirmed booking of a (deleted) event and gives the seats back.
// Running it twice is harmless: the second run finds nothing to cancel.
func (s *bookingService) CancelEventBookings(ctx context.Context, eventID uint) (int, error) {
	var cancelled []models.Booking
	err := runTx(ctx, s.bookingRepo, s.maxRetries, s.log, func(tx *gorm.DB) error {
		rows, err := s.bookingRepo.CancelByEvent(ctx, tx, eventID)
		if err != nil {
			return fmt.Errorf("cancel event bookings: %w", err)
		}

		seats := 0
		for _, b := range rows {
			seats += b.SeatsBooked
		}
		if seats > 0 {
			if err := s.eventRepo.ReleaseSeats(ctx, tx, eventID, seats); err != nil {
				return fmt.Errorf("release seats: %w", err)
			}
		}

		cancelled = rows
		return nil
	})
	if err != nil {
		return 0, err
	}

	for i := range cancelled {
		s.publish(RoutingBookingCancelled, bookingMessage(&cancelled[i]))
	}
	s.invalidateEvent(ctx, eventID)

	s.log.WithFields(logrus.Fields{
		"event_id":  eventID,
		"cancelled": len(cancelled),
	}).Info("event bookings cancelled")

	return len(cancelled), nil
}

// resolve reloads the booking with its user and event. The write already committed,
// so a failed reload falls back to the bare record.
func (s *bookingService) resolve(ctx context.Context, booking *models.Booking) *models.Booking {
	full, err := s.bookingRepo.FindByID(ctx, booking.ID)
	if err != nil {
		s.log.WithError(err).WithField("booking_id", booking.ID).Warn("reload booking")
		return booking
	}
	return full
}

func (s *bookingService) invalidateEvent(ctx context.Context, eventID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, eventID); err != nil {
		s.log.WithError(err).WithField("event_id", eventID).Warn("invalidate event cache")
	}
}

func (s *bookingService) publish(routingKey string, payload any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(routingKey, payload); err != nil {
		s.log.WithError(err).WithField("routing_key", routingKey).Warn("publish notification")
	}
}

// amount is price × seats rounded to cents.
func amount(price float64, seats int) float64 {
	return math.Round(price*float64(seats)*100) / 100
}
