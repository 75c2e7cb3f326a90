package ledger

import (
	"context"

	"github.com/shopspring/decimal"
)

// Service is the wallet ledger used by the transfer engine.
type Service interface {
	// Debit subtracts amount if the balance covers it and returns the new balance.
	Debit(ctx context.Context, accountID uint, amount decimal.Decimal) (decimal.Decimal, error)

	// Credit adds amount and returns the new balance.
	Credit(ctx context.Context, accountID uint, amount decimal.Decimal) (decimal.Decimal, error)

	// CompensateCredit gives back an amount previously debited from accountID.
	CompensateCredit(ctx context.Context, accountID uint, amount decimal.Decimal) error

	// CompensateDebit takes back an amount previously credited to accountID.
	// It fails with ErrInsufficientFunds if the funds were already spent.
	CompensateDebit(ctx context.Context, accountID uint, amount decimal.Decimal) error
}
