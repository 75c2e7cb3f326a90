package notification

import (
	"context"
	"fmt"
	"time"

	"simplepay/internal/messaging"
	"simplepay/internal/models"

	"github.com/rs/zerolog/log"
)

// AuditRecord is what the worker keeps for every notified event.
type AuditRecord struct {
	EventID    string
	TransferID string
	PayerID    uint
	PayeeID    uint
	Amount     string
	NotifiedAt time.Time
}

// AuditStore remembers processed events so redeliveries are not notified twice.
type AuditStore interface {
	Seen(ctx context.Context, eventID string) (bool, error)
	Save(ctx context.Context, record AuditRecord) error
}

// Worker handles events consumed from the broker.
type Worker struct {
	sink  Sink
	audit AuditStore
}

// NewWorker creates a worker. audit may be nil, in which case duplicates are
// notified again.
func NewWorker(sink Sink, audit AuditStore) *Worker {
	if sink == nil {
		panic("notification sink is required")
	}
	return &Worker{sink: sink, audit: audit}
}

func (w *Worker) Handle(ctx context.Context, event models.TransferReceivedEvent) error {
	if event.EventID == "" || event.TransferID == "" || !event.Amount.IsPositive() {
		return fmt.Errorf("%w: incomplete transfer event %q", messaging.ErrPoison, event.EventID)
	}

	if w.audit != nil {
		seen, err := w.audit.Seen(ctx, event.EventID)
		if err != nil {
			return fmt.Errorf("failed to check audit log: %w", err)
		}
		if seen {
			log.Info().Str("event_id", event.EventID).Msg("event already notified, skipping")
			return nil
		}
	}

	if err := w.sink.Deliver(ctx, event); err != nil {
		return err
	}

	if w.audit != nil {
		record := AuditRecord{
			EventID:    event.EventID,
			TransferID: event.TransferID,
			PayerID:    event.PayerID,
			PayeeID:    event.PayeeID,
			Amount:     event.Amount.StringFixed(2),
			NotifiedAt: time.Now().UTC(),
		}
		// The payee was notified; a lost audit row only risks a duplicate.
		if err := w.audit.Save(ctx, record); err != nil {
			log.Error().Err(err).Str("event_id", event.EventID).Msg("failed to save audit record")
		}
	}

	log.Info().
		Str("event_id", event.EventID).
		Str("transfer_id", event.TransferID).
		Uint("payee_id", event.PayeeID).
		Msg("payee notified")
	return nil
}
