// pkg/rabbitmq/producer.go

// Package rabbitmq publishes JSON events to a topic exchange.
package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher is the interface implemented by types that can publish events.
type Publisher interface {
	Publish(ctx context.Context, exchange, routingKey string, body interface{}) error
	Close()
}

// Channel is the subset of *amqp.Channel the producer uses.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// EventProducer holds the RabbitMQ connection and channel for publishing messages.
type EventProducer struct {
	mu          sync.Mutex
	conn        *amqp.Connection
	channel     Channel
	openChannel func() (Channel, error)
	logger      *slog.Logger
}

// NewEventProducerWithChannel builds a producer over an already open channel.
// openChannel is called to replace the channel after a failed publish.
func NewEventProducerWithChannel(ch Channel, openChannel func() (Channel, error), logger *slog.Logger) *EventProducer {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventProducer{
		channel:     ch,
		openChannel: openChannel,
		logger:      logger.With("component", "rabbitmq_producer"),
	}
}

// NoopPublisher drops every event. Used when no broker is configured or reachable at startup.
type NoopPublisher struct {
	Logger *slog.Logger
}

// Publish logs and discards the event.
func (p *NoopPublisher) Publish(ctx context.Context, exchange, routingKey string, body interface{}) error {
	if p.Logger != nil {
		p.Logger.Debug("Event publish skipped", "exchange", exchange, "routing_key", routingKey)
	}
	return nil
}

// Close is a no-op.
func (p *NoopPublisher) Close() {}

// SanitizeURL trims quotes and whitespace and checks the AMQP scheme.
func SanitizeURL(raw string) (string, error) {
	clean := strings.TrimSpace(raw)
	clean = strings.Trim(clean, "\"'")
	u, err := url.Parse(clean)
	if err != nil {
		return "", err
	}
	if u.Scheme != "amqp" && u.Scheme != "amqps" {
		return "", errors.New("AMQP scheme must be either 'amqp://' or 'amqps://'")
	}
	return clean, nil
}

// NewEventProducer dials the broker and opens a channel.
func NewEventProducer(amqpURL string, logger *slog.Logger) (*EventProducer, error) {
	cleanURL, err := SanitizeURL(amqpURL)
	if err != nil {
		return nil, err
	}

	// Bounded dial timeout so startup does not hang indefinitely
	conn, err := amqp.DialConfig(cleanURL, amqp.Config{Dial: amqp.DefaultDial(10 * time.Second)})
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	producer := NewEventProducerWithChannel(ch, func() (Channel, error) {
		next, err := conn.Channel()
		if err != nil {
			return nil, err
		}
		return next, nil
	}, logger)
	producer.conn = conn
	return producer, nil
}

// Publish sends body as JSON to exchange with routingKey, declaring the exchange as a durable topic.
// A broken channel is reopened once before giving up.
func (p *EventProducer) Publish(ctx context.Context, exchange, routingKey string, body interface{}) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.publish(ctx, exchange, routingKey, jsonBody)
	if err == nil {
		return nil
	}

	p.logger.Warn("Publish failed; reopening channel", "exchange", exchange, "routing_key", routingKey, "error", err)
	if p.openChannel == nil {
		return err
	}
	ch, chErr := p.openChannel()
	if chErr != nil {
		return fmt.Errorf("reopen channel after publish error %v: %w", err, chErr)
	}
	_ = p.channel.Close()
	p.channel = ch
	return p.publish(ctx, exchange, routingKey, jsonBody)
}

func (p *EventProducer) publish(ctx context.Context, exchange, routingKey string, body []byte) error {
	if err := p.channel.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // autoDelete
		false,    // internal
		false,    // noWait
		nil,      // args
	); err != nil {
		return err
	}

	return p.channel.PublishWithContext(ctx,
		exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
}

// Close gracefully closes the channel and connection to RabbitMQ.
func (p *EventProducer) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}
