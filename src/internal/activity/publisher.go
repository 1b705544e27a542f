package activity

import (
	"encoding/json"
	"fmt"
	"time"

	"account-admin-svc/src/internal/config"
	"account-admin-svc/src/internal/models"

	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"
)

const serviceName = "account.activity.recorder"

// Publisher receives activity entries after their unit of work commits.
type Publisher interface {
	Publish(entry *models.ActivityLog) error
	Name() string
}

type NoopPublisher struct{}

func (NoopPublisher) Publish(*models.ActivityLog) error { return nil }

func (NoopPublisher) Name() string { return "disabled" }

// Channel is the subset of *amqp.Channel used for publishing.
type Channel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// AMQPPublisher publishes entries as JSON ActivityMessages to a RabbitMQ exchange.
type AMQPPublisher struct {
	channel Channel
	cfg     *config.RabbitMQConfig
}

func NewAMQPPublisher(channel Channel, cfg *config.RabbitMQConfig) *AMQPPublisher {
	return &AMQPPublisher{channel: channel, cfg: cfg}
}

func (p *AMQPPublisher) Name() string { return "rabbitmq" }

func (p *AMQPPublisher) Publish(entry *models.ActivityLog) error {
	message := ToMessage(entry)

	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal activity message: %w", err)
	}

	err = p.channel.Publish(
		p.cfg.Exchange,
		p.cfg.RoutingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType: "application/json",
			MessageId:   entry.ID,
			Body:        body,
			Timestamp:   time.Now(),
		},
	)
	if err != nil {
		logrus.WithError(err).Error("Failed to publish activity message")
		return fmt.Errorf("failed to publish activity message: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"activity_id": entry.ID,
		"action":      entry.Type,
		"exchange":    p.cfg.Exchange,
		"routing_key": p.cfg.RoutingKey,
	}).Debug("Activity message published")

	return nil
}

func ToMessage(entry *models.ActivityLog) models.ActivityMessage {
	return models.ActivityMessage{
		ID:          entry.ID,
		UserID:      deref(entry.UserID),
		UserName:    deref(entry.UserName),
		ServiceName: serviceName,
		Action:      entry.Type,
		Description: entry.Description,
		IPAddress:   deref(entry.IPAddress),
		UserAgent:   deref(entry.UserAgent),
		Metadata:    entry.DetailMap(),
		Timestamp:   entry.Timestamp,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
