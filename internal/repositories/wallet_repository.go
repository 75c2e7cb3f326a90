package repositories

import (
	"context"

	"simplepay/internal/models"

	"github.com/shopspring/decimal"
)

// WalletRepository is the storage side of the ledger. Both mutations are a
// single conditional UPDATE, so concurrent callers on one wallet serialize on
// the row and never observe a negative balance.
type WalletRepository interface {
	// Increment adds amount and returns the new balance.
	Increment(ctx context.Context, accountID uint, amount decimal.Decimal) (decimal.Decimal, error)

	// Decrement subtracts amount only if the balance covers it.
	Decrement(ctx context.Context, accountID uint, amount decimal.Decimal) (decimal.Decimal, error)

	GetByAccountID(ctx context.Context, accountID uint) (*models.Wallet, error)
}
