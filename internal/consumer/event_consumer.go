package consumer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Eursukkul/event-booking/internal/service"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

const (
	handleTimeout = 30 * time.Second
	retryDelay    = 2 * time.Second
)

// EventConsumer cancels the bookings of events that were deleted.
type EventConsumer struct {
	bookings   service.BookingCanceller
	log        logrus.FieldLogger
	retryDelay time.Duration
}

func NewEventConsumer(bookings service.BookingCanceller, log logrus.FieldLogger) *EventConsumer {
	return &EventConsumer{
		bookings:   bookings,
		log:        log.WithField("component", "event_consumer"),
		retryDelay: retryDelay,
	}
}

// Run handles deliveries until msgs is closed or ctx is done.
func (ec *EventConsumer) Run(ctx context.Context, msgs <-chan amqp.Delivery) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				ec.log.Info("channel closed, stopping consumer")
				return nil
			}
			ec.handleMessage(ctx, msg)
		}
	}
}

func (ec *EventConsumer) handleMessage(ctx context.Context, msg amqp.Delivery) {
	var payload service.EventMessage
	if err := json.Unmarshal(msg.Body, &payload); err != nil || payload.EventID == 0 {
		ec.log.WithError(err).WithField("body", string(msg.Body)).Error("malformed event.deleted message")
		msg.Nack(false, false)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, handleTimeout)
	defer cancel()

	n, err := ec.bookings.CancelEventBookings(ctx, payload.EventID)
	if err != nil {
		ec.fail(ctx, msg, payload.EventID, err)
		return
	}

	ec.log.WithFields(logrus.Fields{"event_id": payload.EventID, "cancelled": n}).Info("processed event.deleted")
	msg.Ack(false)
}

// fail requeues a first failure after a pause. A redelivered message that fails again is
// dead-lettered into the parking queue, where it waits for a replay.
func (ec *EventConsumer) fail(ctx context.Context, msg amqp.Delivery, eventID uint, err error) {
	log := ec.log.WithError(err).WithFields(logrus.Fields{
		"event_id":    eventID,
		"redelivered": msg.Redelivered,
	})

	if msg.Redelivered {
		log.Error("cancel event bookings failed again, dead-lettering")
		msg.Nack(false, false)
		return
	}

	log.Warn("cancel event bookings failed, requeueing")
	select {
	case <-ctx.Done():
	case <-time.After(ec.retryDelay):
	}
	msg.Nack(false, true)
}
