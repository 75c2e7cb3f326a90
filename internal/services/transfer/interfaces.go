package transfer

import (
	"context"

	"simplepay/internal/models"
	"simplepay/internal/services/authorizer"
	"simplepay/internal/validation"

	"github.com/shopspring/decimal"
)

// Validator applies the business rules of a transfer before any mutation.
type Validator interface {
	Validate(ctx context.Context, payerID, payeeID uint, amount decimal.Decimal) (*validation.ValidatedTransfer, error)
}

// Authorizer asks the external decision service about a transfer.
type Authorizer interface {
	Evaluate(ctx context.Context, req authorizer.Request) models.AuthorizationOutcome
}

// EventRelay publishes outbox events. Notify asks it to look for new ones now
// and must not block.
type EventRelay interface {
	Notify()
}

// Service handles P2P money transfers between accounts.
type Service interface {
	// InitiateTransfer runs a transfer to a terminal status. Denial is returned
	// as an Unauthorized transfer, not as an error. When the money moved but the
	// completion could not be stored, the pending transfer is returned together
	// with ErrFinalizationPending.
	InitiateTransfer(ctx context.Context, payerID, payeeID uint, amount decimal.Decimal) (*models.Transfer, error)

	GetTransfer(ctx context.Context, id string) (*models.Transfer, error)
	ListAccountTransfers(ctx context.Context, accountID uint, limit, offset int) ([]models.Transfer, int64, error)
}
