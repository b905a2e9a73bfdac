package rabbitmq

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

const (
	QueueName = "event-booking.event-deleted"

	// Parking queue for messages the consumer gives up on.
	DeadLetterExchange = "event-booking.dlx"
	DeadLetterQueue    = "event-booking.event-deleted.dlq"
)

// RoutingEventDeleted is the only key the booking side reacts to.
const RoutingEventDeleted = "event.deleted"

type Consumer struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	log     logrus.FieldLogger
}

func NewConsumer(url string, log logrus.FieldLogger) (*Consumer, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}

	if err := ch.ExchangeDeclare(ExchangeName, ExchangeKind, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("rabbitmq exchange declare: %w", err)
	}

	if err := declareDeadLetter(ch); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	q, err := ch.QueueDeclare(QueueName, true, false, false, false, amqp.Table{
		"x-dead-letter-exchange": DeadLetterExchange,
	})
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("rabbitmq queue declare: %w", err)
	}

	if err := ch.QueueBind(q.Name, RoutingEventDeleted, ExchangeName, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("rabbitmq queue bind: %w", err)
	}

	if err := ch.Qos(10, 0, false); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("rabbitmq qos: %w", err)
	}

	return &Consumer{conn: conn, channel: ch, log: log.WithField("component", "rabbitmq")}, nil
}

func declareDeadLetter(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(DeadLetterExchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("rabbitmq dead-letter exchange declare: %w", err)
	}
	if _, err := ch.QueueDeclare(DeadLetterQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("rabbitmq dead-letter queue declare: %w", err)
	}
	if err := ch.QueueBind(DeadLetterQueue, RoutingEventDeleted, DeadLetterExchange, false, nil); err != nil {
		return fmt.Errorf("rabbitmq dead-letter queue bind: %w", err)
	}
	return nil
}

func (c *Consumer) Consume() (<-chan amqp.Delivery, error) {
	msgs, err := c.channel.Consume(
		QueueName,
		"event-booking-"+uuid.NewString(),
		false, // manual ack after processing
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq consume: %w", err)
	}

	c.log.WithField("queue", QueueName).Info("consuming")
	return msgs, nil
}

// ReplayDeadLetters moves parked messages back onto the exchange and returns how many moved.
func (c *Consumer) ReplayDeadLetters(ctx context.Context) (int, error) {
	moved := 0
	for {
		d, ok, err := c.channel.Get(DeadLetterQueue, false)
		if err != nil {
			return moved, fmt.Errorf("rabbitmq get dead letter: %w", err)
		}
		if !ok {
			return moved, nil
		}

		err = c.channel.PublishWithContext(ctx, ExchangeName, d.RoutingKey, false, false, amqp.Publishing{
			ContentType:  d.ContentType,
			DeliveryMode: amqp.Persistent,
			Body:         d.Body,
		})
		if err != nil {
			d.Nack(false, true)
			return moved, fmt.Errorf("rabbitmq replay dead letter: %w", err)
		}
		d.Ack(false)
		moved++
	}
}

func (c *Consumer) Close() {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		c.conn.Close()
	}
}
