package repositories

import (
	"context"
	"errors"
	"fmt"

	apperrors "simplepay/internal/errors"
	"simplepay/internal/models"
	"simplepay/internal/repositories/cache"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type accountRepository struct {
	db    *gorm.DB
	cache *cache.CacheService
}

// NewAccountRepository creates a new AccountRepository. cache may be nil.
func NewAccountRepository(db *gorm.DB, cache *cache.CacheService) AccountRepository {
	return &accountRepository{
		db:    db,
		cache: cache,
	}
}

func (r *accountRepository) Create(ctx context.Context, account *models.Account, openingBalance string) error {
	balance := decimal.Zero
	if openingBalance != "" {
		parsed, err := decimal.NewFromString(openingBalance)
		if err != nil || parsed.IsNegative() || !parsed.Equal(parsed.Truncate(models.MoneyScale)) {
			return apperrors.ErrInvalidAmount.WithMessage("opening balance must be a non-negative amount in whole cents")
		}
		balance = parsed
	}
	if !account.Type.Valid() {
		return fmt.Errorf("unknown account type %q", account.Type)
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		account.Wallet = nil
		if err := tx.Create(account).Error; err != nil {
			return fmt.Errorf("failed to create account: %w", err)
		}
		wallet := &models.Wallet{AccountID: account.ID, Balance: balance}
		if err := tx.Create(wallet).Error; err != nil {
			return fmt.Errorf("failed to create wallet: %w", err)
		}
		account.Wallet = wallet
		return nil
	})
}

func (r *accountRepository) GetByID(ctx context.Context, id uint) (*models.Account, error) {
	if r.cache != nil {
		account, err := r.cache.GetAccount(ctx, id)
		if err != nil {
			log.Warn().Err(err).Uint("account_id", id).Msg("account cache read failed")
		} else if account != nil {
			return account, nil
		}
	}

	var account models.Account
	if err := r.db.WithContext(ctx).First(&account, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	if r.cache != nil {
		if err := r.cache.CacheAccount(ctx, &account); err != nil {
			log.Warn().Err(err).Uint("account_id", id).Msg("failed to cache account")
		}
	}
	return &account, nil
}

func (r *accountRepository) GetWallet(ctx context.Context, accountID uint) (*models.Wallet, error) {
	var wallet models.Wallet
	if err := r.db.WithContext(ctx).Where("account_id = ?", accountID).First(&wallet).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	return &wallet, nil
}

func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &account, nil
}
