package service

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

const mimeApplicationJSON = "application/json"

// amqpPublisher is the part of *amqp.Channel the publisher needs
type amqpPublisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// RabbitMQEventPublisher publishes events to a topic exchange.
// The routing key is the event type, so consumers can bind per transition.
type RabbitMQEventPublisher struct {
	ch       amqpPublisher
	log      *logrus.Logger
	exchange string
}

// NewRabbitMQEventPublisher opens a channel and declares the durable topic exchange
func NewRabbitMQEventPublisher(conn *amqp.Connection, log *logrus.Logger, exchange string) (*RabbitMQEventPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open rabbitmq channel: %w", err)
	}

	if err := declareEventExchange(ch, exchange); err != nil {
		ch.Close()
		return nil, err
	}

	return newRabbitMQEventPublisher(ch, log, exchange), nil
}

func newRabbitMQEventPublisher(ch amqpPublisher, log *logrus.Logger, exchange string) *RabbitMQEventPublisher {
	return &RabbitMQEventPublisher{ch: ch, log: log, exchange: exchange}
}

func (p *RabbitMQEventPublisher) Publish(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", event.Type, err)
	}

	message := amqp.Publishing{
		ContentType:  mimeApplicationJSON,
		Body:         body,
		DeliveryMode: amqp.Persistent,
		MessageId:    event.AppointmentID.String(),
		Timestamp:    event.OccurredAt,
		Type:         string(event.Type),
	}

	if err := p.ch.PublishWithContext(ctx, p.exchange, string(event.Type), false, false, message); err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	p.log.Debugf("Published %s for appointment %s to exchange %s", event.Type, event.AppointmentID, p.exchange)
	return nil
}

func declareEventExchange(ch *amqp.Channel, exchange string) error {
	err := ch.ExchangeDeclare(
		exchange, // name
		"topic",  // kind
		true,     // durable
		false,    // autoDelete
		false,    // internal
		false,    // noWait
		nil,      // args
	)
	if err != nil {
		return fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	return nil
}
