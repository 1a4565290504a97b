// Package events publishes catalog change notifications to RabbitMQ.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Routing keys on the catalog topic exchange.
const (
	BookCreated = "catalog.book.created"
	BookUpdated = "catalog.book.updated"
	BookDeleted = "catalog.book.deleted"
)

// BookChanged is the message body for every book routing key.
type BookChanged struct {
	BookID     int64     `json:"bookId"`
	CategoryID int64     `json:"categoryId,omitempty"`
	At         time.Time `json:"at"`
}

// Publisher sends JSON messages to a durable topic exchange. A nil
// *Publisher is valid and drops every message, which is how the service
// runs when no broker is configured.
type Publisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

// Dial connects and declares the exchange. An empty url returns a nil
// Publisher and no error.
func Dial(url, exchange string) (*Publisher, error) {
	if url == "" {
		return nil, nil
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	return &Publisher{conn: conn, ch: ch, exchange: exchange}, nil
}

// Publish sends body under routingKey.
func (p *Publisher) Publish(ctx context.Context, routingKey string, body []byte) error {
	if p == nil || p.ch == nil {
		return nil
	}
	return p.ch.PublishWithContext(ctx, p.exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
		Timestamp:    time.Now(),
	})
}

// PublishJSON marshals v and publishes it.
func (p *Publisher) PublishJSON(ctx context.Context, routingKey string, v any) error {
	if p == nil {
		return nil
	}
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", routingKey, err)
	}
	return p.Publish(ctx, routingKey, body)
}

// Close shuts the channel and connection.
func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	if p.ch != nil {
		p.ch.Close()
	}
	return p.conn.Close()
}
