package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

// ErrPoison marks a message that can never be processed. It is dropped
// instead of requeued.
var ErrPoison = errors.New("unprocessable message")

// Acknowledger is the part of amqp.Delivery the consumer loop needs.
type Acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

// Handler processes one decoded message.
type Handler[T any] func(ctx context.Context, msg T) error

// HandleDelivery decodes body and runs handler, then acks on success, drops
// poison messages and requeues everything else.
func HandleDelivery[T any](ctx context.Context, ack Acknowledger, body []byte, timeout time.Duration, handler Handler[T]) {
	var msg T
	if err := json.Unmarshal(body, &msg); err != nil {
		log.Error().Err(err).Bytes("body", body).Msg("failed to decode message, dropping")
		if err := ack.Nack(false, false); err != nil {
			log.Error().Err(err).Msg("failed to nack message")
		}
		return
	}

	hctx, cancel := context.WithTimeout(ctx, timeout)
	err := handler(hctx, msg)
	cancel()

	switch {
	case err == nil:
		if err := ack.Ack(false); err != nil {
			log.Error().Err(err).Msg("failed to ack message")
		}
	case errors.Is(err, ErrPoison):
		log.Error().Err(err).Msg("dropping message")
		if err := ack.Nack(false, false); err != nil {
			log.Error().Err(err).Msg("failed to nack message")
		}
	default:
		log.Warn().Err(err).Msg("message handling failed, requeueing")
		if err := ack.Nack(false, true); err != nil {
			log.Error().Err(err).Msg("failed to nack message")
		}
	}
}

// Consume runs handler for each delivery until ctx is done or the delivery
// channel closes.
func Consume[T any](ctx context.Context, deliveries <-chan amqp.Delivery, timeout time.Duration, handler Handler[T]) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("delivery channel closed")
			}
			HandleDelivery(ctx, &d, d.Body, timeout, handler)
		}
	}
}
