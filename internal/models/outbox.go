package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// OutboxEvent is a TransferReceived event waiting for the broker. It is
// written in the same database transaction that completes the transfer and is
// kept until a relay has handed it over.
type OutboxEvent struct {
	ID            string     `gorm:"primaryKey;type:varchar(36)" json:"id"`
	TransferID    string     `gorm:"type:varchar(36);uniqueIndex;not null" json:"transfer_id"`
	EventType     string     `gorm:"type:varchar(64);not null" json:"event_type"`
	Payload       string     `gorm:"type:text;not null" json:"payload"`
	Attempts      int        `gorm:"not null;default:0" json:"attempts"`
	LastError     string     `gorm:"type:text" json:"last_error,omitempty"`
	NextAttemptAt time.Time  `gorm:"index;not null" json:"next_attempt_at"`
	PublishedAt   *time.Time `gorm:"index" json:"published_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

func NewOutboxEvent(event TransferReceivedEvent) (*OutboxEvent, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("encoding event %s: %w", event.EventID, err)
	}
	return &OutboxEvent{
		ID:            event.EventID,
		TransferID:    event.TransferID,
		EventType:     event.EventType,
		Payload:       string(payload),
		NextAttemptAt: event.OccurredAt,
		CreatedAt:     event.OccurredAt,
	}, nil
}

func (o *OutboxEvent) Event() (TransferReceivedEvent, error) {
	var event TransferReceivedEvent
	if err := json.Unmarshal([]byte(o.Payload), &event); err != nil {
		return event, fmt.Errorf("decoding outbox event %s: %w", o.ID, err)
	}
	return event, nil
}
