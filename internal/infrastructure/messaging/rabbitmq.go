package messaging

import (
	"fmt"

	"go-medical-booking/config"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

func NewRabbitMQConnection(cfg config.RabbitMQConfig, log *logrus.Logger) (*amqp.Connection, error) {
	conn, err := amqp.Dial(cfg.URL())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	log.Infof("Successfully connected to RabbitMQ at %s:%s", cfg.Host, cfg.Port)

	return conn, nil
}
