// Package rabbitmq publishes operator alerts to a topic exchange.
package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"dispatch/internal/core/domain/model/audit"
)

// Channel is the part of *amqp.Channel the publisher uses.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// AlertPublisher routes each alert by "alert.<kind>.<severity>" so operators can bind
// queues to the classes they watch.
type AlertPublisher struct {
	ch       Channel
	exchange string
}

// NewAlertPublisher declares the exchange once at startup.
func NewAlertPublisher(ch Channel, exchange string) (*AlertPublisher, error) {
	if err := ch.ExchangeDeclare(
		exchange,
		amqp.ExchangeTopic,
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return &AlertPublisher{ch: ch, exchange: exchange}, nil
}

func RoutingKey(alert audit.SecurityAlert) string {
	return "alert." + string(alert.Kind) + "." + string(alert.Severity)
}

func (p *AlertPublisher) Publish(ctx context.Context, alert audit.SecurityAlert) error {
	body, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("marshal alert: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    alert.ID.String(),
		Timestamp:    alert.CreatedAt,
		Type:         string(alert.Kind),
		Body:         body,
	}
	if err = p.ch.PublishWithContext(ctx, p.exchange, RoutingKey(alert), false, false, msg); err != nil {
		return fmt.Errorf("publish alert: %w", err)
	}
	return nil
}

// Connect dials the broker and opens the publishing channel.
func Connect(url string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("open channel: %w", err)
	}
	return conn, ch, nil
}
