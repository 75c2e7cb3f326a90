// Package messaging wraps the RabbitMQ connection shared by the API (which
// publishes transfer events) and the notifier worker (which consumes them).
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

const (
	TransferExchange      = "transfer_events"
	TransferReceivedKey   = "transfer.received"
	NotificationQueue     = "transfer_notifications"
	notificationQueueBind = "transfer.#"
)

// Broker owns one AMQP connection and channel.
type Broker struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	mu      sync.Mutex
}

// Dial connects to RabbitMQ and declares the transfer exchange.
func Dial(url, connectionName string) (*Broker, error) {
	conn, err := amqp.DialConfig(url, amqp.Config{
		Properties: amqp.Table{
			"connection_name": connectionName,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		TransferExchange, // name
		"topic",          // type
		true,             // durable
		false,            // auto-deleted
		false,            // internal
		false,            // no-wait
		nil,              // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	return &Broker{conn: conn, channel: ch}, nil
}

// Publish sends body as a persistent JSON message.
func (b *Broker) Publish(ctx context.Context, exchange, routingKey string, body interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	err = b.channel.PublishWithContext(ctx,
		exchange,   // exchange
		routingKey, // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         data,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	log.Debug().Str("exchange", exchange).Str("routing_key", routingKey).Msg("event published")
	return nil
}

// Deliveries declares the notification queue and starts a manual-ack consumer
// with a prefetch of one.
func (b *Broker) Deliveries(consumerTag string) (<-chan amqp.Delivery, error) {
	if err := b.channel.Qos(1, 0, false); err != nil {
		return nil, fmt.Errorf("failed to set qos: %w", err)
	}

	q, err := b.channel.QueueDeclare(
		NotificationQueue, // name
		true,              // durable
		false,             // delete when unused
		false,             // exclusive
		false,             // no-wait
		nil,               // arguments
	)
	if err != nil {
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	if err := b.channel.QueueBind(q.Name, notificationQueueBind, TransferExchange, false, nil); err != nil {
		return nil, fmt.Errorf("failed to bind queue: %w", err)
	}

	msgs, err := b.channel.Consume(
		q.Name,      // queue
		consumerTag, // consumer
		false,       // auto-ack
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register consumer: %w", err)
	}
	return msgs, nil
}

// NotifyClose reports channel closure.
func (b *Broker) NotifyClose() <-chan *amqp.Error {
	return b.channel.NotifyClose(make(chan *amqp.Error, 1))
}

func (b *Broker) HealthCheck() error {
	if b.conn.IsClosed() {
		return fmt.Errorf("rabbitmq connection closed")
	}
	return nil
}

func (b *Broker) Close() error {
	if err := b.channel.Close(); err != nil {
		log.Warn().Err(err).Msg("failed to close rabbitmq channel")
	}
	return b.conn.Close()
}
