package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const EventTypeTransferReceived = "transfer.received"

// TransferReceivedEvent is emitted once a transfer completes. Delivery is
// at-least-once and unordered across transfers, so consumers key on EventID.
type TransferReceivedEvent struct {
	EventID     string          `json:"event_id"`
	EventType   string          `json:"event_type"`
	TransferID  string          `json:"transfer_id"`
	PayerID     uint            `json:"payer_id"`
	PayeeID     uint            `json:"payee_id"`
	Amount      decimal.Decimal `json:"amount"`
	CompletedAt time.Time       `json:"completed_at"`
	OccurredAt  time.Time       `json:"occurred_at"`
}
