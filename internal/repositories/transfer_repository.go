package repositories

import (
	"context"
	"time"

	"simplepay/internal/models"
)

// TransferRepository is the append-mostly transfer record store. Rows are never
// deleted; the only mutation is the single pending -> terminal transition.
type TransferRepository interface {
	Create(ctx context.Context, transfer *models.Transfer) error
	GetByID(ctx context.Context, id string) (*models.Transfer, error)

	// Finalize moves a pending transfer to a terminal status. It fails with
	// ErrInvalidTransition if the row is no longer pending.
	Finalize(ctx context.Context, transfer *models.Transfer, status models.TransferStatus, reason string, authorizedAt *time.Time) error

	// Complete finalizes a pending transfer as completed and stores its
	// TransferReceived event in the outbox, atomically.
	Complete(ctx context.Context, transfer *models.Transfer, authorizedAt time.Time, event models.TransferReceivedEvent) error

	ListByAccount(ctx context.Context, accountID uint, limit, offset int) ([]models.Transfer, int64, error)

	// ListStalePending returns transfers still pending that were created before
	// the cutoff, oldest first, for operator reconciliation.
	ListStalePending(ctx context.Context, createdBefore time.Time) ([]models.Transfer, error)
}
