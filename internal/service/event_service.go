package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Eursukkul/event-booking/internal/models"
	"github.com/Eursukkul/event-booking/internal/repository"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// EventPatch carries a partial update. Nil fields are left untouched.
// Seat availability is not patchable; it follows TotalSeats.
type EventPatch struct {
	Title       *string
	Description *string
	Venue       *string
	Category    *string
	Date        *time.Time
	Time        *string
	Price       *float64
	TotalSeats  *int
}

// BookingCanceller is the part of the booking service the event side needs on deletion.
type BookingCanceller interface {
	CancelEventBookings(ctx context.Context, eventID uint) (int, error)
}

type EventService interface {
	CreateEvent(ctx context.Context, organizerID uint, event *models.Event) error
	GetEvent(ctx context.Context, id uint) (*models.Event, error)
	ListEvents(ctx context.Context, filter repository.EventFilter) ([]models.Event, error)
	UpdateEvent(ctx context.Context, organizerID, id uint, patch EventPatch) (*models.Event, error)
	DeleteEvent(ctx context.Context, organizerID, id uint) error
}

type eventService struct {
	repo       repository.EventRepository
	bookings   BookingCanceller
	publisher  Publisher
	cache      EventCache
	log        logrus.FieldLogger
	maxRetries int
}

func NewEventService(
	repo repository.EventRepository,
	bookings BookingCanceller,
	publisher Publisher,
	cache EventCache,
	log logrus.FieldLogger,
	maxRetries int,
) EventService {
	return &eventService{
		repo:       repo,
		bookings:   bookings,
		publisher:  publisher,
		cache:      cache,
		log:        log.WithField("component", "event_service"),
		maxRetries: maxRetries,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, organizerID uint, event *models.Event) error {
	if event.TotalSeats < 0 {
		return ErrInvalidSeats
	}
	if event.Price < 0 {
		return ErrInvalidPrice
	}

	event.ID = 0
	event.OrganizerID = organizerID
	event.SeatsAvailable = event.TotalSeats

	if err := s.repo.Create(ctx, event); err != nil {
		return fmt.Errorf("create event: %w", err)
	}

	s.publish(RoutingEventCreated, eventMessage(event))
	return nil
}

func (s *eventService) GetEvent(ctx context.Context, id uint) (*models.Event, error) {
	var generation int64
	if s.cache != nil {
		cached, gen, err := s.cache.Get(ctx, id)
		if err != nil {
			s.log.WithError(err).WithField("event_id", id).Warn("read event cache")
		}
		if cached != nil {
			return cached, nil
		}
		generation = gen
	}

	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("find event: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, event, generation); err != nil {
			s.log.WithError(err).WithField("event_id", id).Warn("write event cache")
		}
	}
	return event, nil
}

func (s *eventService) ListEvents(ctx context.Context, filter repository.EventFilter) ([]models.Event, error) {
	events, err := s.repo.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

func (s *eventService) UpdateEvent(ctx context.Context, organizerID, id uint, patch EventPatch) (*models.Event, error) {
	if patch.Price != nil && *patch.Price < 0 {
		return nil, ErrInvalidPrice
	}
	if patch.TotalSeats != nil && *patch.TotalSeats < 0 {
		return nil, ErrInvalidSeats
	}

	var updated *models.Event
	err := runTx(ctx, s.repo, s.maxRetries, s.log, func(tx *gorm.DB) error {
		event, err := s.repo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			if repository.IsNotFound(err) {
				return ErrEventNotFound
			}
			return fmt.Errorf("lock event: %w", err)
		}
		if event.OrganizerID != organizerID {
			return ErrForbidden
		}

		if err := applyPatch(event, patch); err != nil {
			return err
		}
		if err := s.repo.Update(ctx, tx, event); err != nil {
			return fmt.Errorf("update event: %w", err)
		}

		updated = event
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, id)
	s.publish(RoutingEventUpdated, eventMessage(updated))

	if full, err := s.repo.FindByID(ctx, id); err == nil {
		return full, nil
	}
	return updated, nil
}

// applyPatch copies the set fields onto event. A new seat total keeps the booked seats booked.
func applyPatch(event *models.Event, patch EventPatch) error {
	if patch.Title != nil {
		event.Title = *patch.Title
	}
	if patch.Description != nil {
		event.Description = *patch.Description
	}
	if patch.Venue != nil {
		event.Venue = *patch.Venue
	}
	if patch.Category != nil {
		event.Category = *patch.Category
	}
	if patch.Date != nil {
		event.Date = *patch.Date
	}
	if patch.Time != nil {
		event.Time = *patch.Time
	}
	if patch.Price != nil {
		event.Price = *patch.Price
	}
	if patch.TotalSeats != nil {
		booked := event.BookedSeats()
		if *patch.TotalSeats < booked {
			return ErrSeatsBelowBooked
		}
		event.TotalSeats = *patch.TotalSeats
		event.SeatsAvailable = *patch.TotalSeats - booked
	}
	return nil
}

// DeleteEvent soft-deletes the event and cancels its bookings, through the broker when one is
// configured and inline otherwise.
func (s *eventService) DeleteEvent(ctx context.Context, organizerID, id uint) error {
	err := runTx(ctx, s.repo, s.maxRetries, s.log, func(tx *gorm.DB) error {
		event, err := s.repo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			if repository.IsNotFound(err) {
				return ErrEventNotFound
			}
			return fmt.Errorf("lock event: %w", err)
		}
		if event.OrganizerID != organizerID {
			return ErrForbidden
		}
		if err := s.repo.Delete(ctx, tx, id); err != nil {
			return fmt.Errorf("delete event: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx, id)

	if s.publisher != nil {
		err := s.publisher.Publish(RoutingEventDeleted, EventMessage{EventID: id})
		if err == nil {
			return nil
		}
		s.log.WithError(err).WithField("event_id", id).Warn("publish event.deleted, cancelling inline")
	}

	if _, err := s.bookings.CancelEventBookings(ctx, id); err != nil {
		return fmt.Errorf("cascade cancel: %w", err)
	}
	return nil
}

func (s *eventService) invalidate(ctx context.Context, id uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, id); err != nil {
		s.log.WithError(err).WithField("event_id", id).Warn("invalidate event cache")
	}
}

func (s *eventService) publish(routingKey string, payload any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(routingKey, payload); err != nil {
		s.log.WithError(err).WithField("routing_key", routingKey).Warn("publish notification")
	}
}
