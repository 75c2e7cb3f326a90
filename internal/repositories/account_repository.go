package repositories

import (
	"context"

	"simplepay/internal/models"
)

// AccountRepository is the account directory consumed by the transfer engine.
type AccountRepository interface {
	// Create stores an account together with its wallet.
	Create(ctx context.Context, account *models.Account, openingBalance string) error

	// GetByID retrieves an account without its wallet.
	GetByID(ctx context.Context, id uint) (*models.Account, error)

	// GetWallet reads the account's wallet straight from the database.
	GetWallet(ctx context.Context, accountID uint) (*models.Wallet, error)

	// GetByEmail is used by the seeder to stay idempotent.
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
}
