package notification

import (
	"context"

	"simplepay/internal/messaging"
	"simplepay/internal/models"
)

// Publisher is implemented by messaging.Broker.
type Publisher interface {
	Publish(ctx context.Context, exchange, routingKey string, body interface{}) error
}

// BrokerSink forwards events to the transfer exchange, where the notifier
// worker picks them up.
type BrokerSink struct {
	publisher Publisher
}

func NewBrokerSink(publisher Publisher) *BrokerSink {
	return &BrokerSink{publisher: publisher}
}

func (s *BrokerSink) Deliver(ctx context.Context, event models.TransferReceivedEvent) error {
	return s.publisher.Publish(ctx, messaging.TransferExchange, messaging.TransferReceivedKey, event)
}
