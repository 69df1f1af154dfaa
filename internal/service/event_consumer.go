package service

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// EventConsumer reads appointment events from a queue bound to the event
// exchange and dispatches them into an EventBus.
type EventConsumer struct {
	ch    *amqp.Channel
	log   *logrus.Logger
	bus   *EventBus
	queue string
}

// NewEventConsumer declares a durable queue bound to every event type on exchange
func NewEventConsumer(conn *amqp.Connection, log *logrus.Logger, bus *EventBus, exchange, queue string) (*EventConsumer, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open rabbitmq channel: %w", err)
	}

	if err := declareEventExchange(ch, exchange); err != nil {
		ch.Close()
		return nil, err
	}

	_, err = ch.QueueDeclare(
		queue, // name
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,   // args
	)
	if err != nil {
		ch.Close()
		return nil, fmt.Errorf("declare queue %s: %w", queue, err)
	}

	if err := ch.QueueBind(queue, "#", exchange, false, nil); err != nil {
		ch.Close()
		return nil, fmt.Errorf("bind queue %s: %w", queue, err)
	}

	if err := ch.Qos(1, 0, false); err != nil {
		ch.Close()
		return nil, fmt.Errorf("set qos: %w", err)
	}

	return &EventConsumer{ch: ch, log: log, bus: bus, queue: queue}, nil
}

// Run consumes until ctx is done or the channel closes
func (c *EventConsumer) Run(ctx context.Context) error {
	deliveries, err := c.ch.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", c.queue, err)
	}

	c.log.Infof("Listening for appointment events on queue %s", c.queue)

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("delivery channel for %s closed", c.queue)
			}
			c.handle(ctx, d)
		}
	}
}

func (c *EventConsumer) handle(ctx context.Context, d amqp.Delivery) {
	event, err := decodeEvent(d.Body)
	if err != nil {
		// Poison message: drop it instead of redelivering forever
		c.log.Warnf("Failed to decode event %s: %+v", d.MessageId, err)
		_ = d.Nack(false, false)
		return
	}

	if err := c.bus.Publish(ctx, event); err != nil {
		// One retry: a message that already came back once is dropped
		if d.Redelivered {
			c.log.Warnf("Dropping %s for appointment %s after redelivery: %+v", event.Type, event.AppointmentID, err)
			_ = d.Nack(false, false)
			return
		}
		c.log.Warnf("Failed to handle %s for appointment %s, requeueing: %+v", event.Type, event.AppointmentID, err)
		_ = d.Nack(false, true)
		return
	}
	_ = d.Ack(false)
}

// Close releases the channel
func (c *EventConsumer) Close() error {
	return c.ch.Close()
}

func decodeEvent(body []byte) (Event, error) {
	var event Event
	if err := json.Unmarshal(body, &event); err != nil {
		return Event{}, err
	}
	if event.Type == "" {
		return Event{}, fmt.Errorf("event without type")
	}
	return event, nil
}
