package repositories

import (
	"context"
	"errors"
	"fmt"

	apperrors "simplepay/internal/errors"
	"simplepay/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type walletRepository struct {
	db *gorm.DB
}

func NewWalletRepository(db *gorm.DB) WalletRepository {
	return &walletRepository{
		db: db,
	}
}

func (r *walletRepository) Increment(ctx context.Context, accountID uint, amount decimal.Decimal) (decimal.Decimal, error) {
	cents, err := minorUnits(amount)
	if err != nil {
		return decimal.Zero, err
	}

	var balance decimal.Decimal
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Wallet{}).
			Where("account_id = ?", accountID).
			Update("balance", gorm.Expr("balance + ?", cents))
		if result.Error != nil {
			return fmt.Errorf("failed to credit wallet: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return apperrors.ErrWalletNotFound
		}
		var err error
		balance, err = currentBalance(tx, accountID)
		return err
	})
	return balance, err
}

func (r *walletRepository) Decrement(ctx context.Context, accountID uint, amount decimal.Decimal) (decimal.Decimal, error) {
	cents, err := minorUnits(amount)
	if err != nil {
		return decimal.Zero, err
	}

	var balance decimal.Decimal
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Wallet{}).
			Where("account_id = ? AND balance >= ?", accountID, cents).
			Update("balance", gorm.Expr("balance - ?", cents))
		if result.Error != nil {
			return fmt.Errorf("failed to debit wallet: %w", result.Error)
		}

		// Zero rows means the guard failed or the wallet does not exist.
		if result.RowsAffected == 0 {
			current, err := currentBalance(tx, accountID)
			if err != nil {
				return err
			}
			return apperrors.ErrInsufficientFunds.WithMessage(
				fmt.Sprintf("insufficient funds: available %s, requested %s", current.StringFixed(2), amount.String()))
		}

		var err error
		balance, err = currentBalance(tx, accountID)
		return err
	})
	return balance, err
}

func (r *walletRepository) GetByAccountID(ctx context.Context, accountID uint) (*models.Wallet, error) {
	var wallet models.Wallet
	if err := r.db.WithContext(ctx).Where("account_id = ?", accountID).First(&wallet).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	return &wallet, nil
}

// minorUnits converts amount for the BIGINT balance column. Expressions bypass
// the field serializer, so the conversion happens here.
func minorUnits(amount decimal.Decimal) (int64, error) {
	cents, err := models.ToMinorUnits(amount)
	if err != nil {
		return 0, apperrors.ErrInvalidAmount.WithMessage(err.Error())
	}
	return cents, nil
}

func currentBalance(tx *gorm.DB, accountID uint) (decimal.Decimal, error) {
	var wallet models.Wallet
	if err := tx.Select("balance").Where("account_id = ?", accountID).First(&wallet).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, apperrors.ErrWalletNotFound
		}
		return decimal.Zero, fmt.Errorf("failed to read wallet balance: %w", err)
	}
	return wallet.Balance, nil
}
