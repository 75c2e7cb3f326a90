package validation

import (
	"context"
	"errors"
	"fmt"

	apperrors "simplepay/internal/errors"
	"simplepay/internal/models"
	"simplepay/internal/repositories"

	"github.com/shopspring/decimal"
)

// MaxAmountScale is the number of decimal places a transfer amount may carry.
const MaxAmountScale = models.MoneyScale

// ValidatedTransfer is a read-time snapshot of a transfer that passed every
// business rule. Later steps must not reload the accounts.
type ValidatedTransfer struct {
	Payer        models.Account
	Payee        models.Account
	Amount       decimal.Decimal
	PayerBalance decimal.Decimal
}

// TransferValidator applies the business rules of a transfer without
// mutating anything.
type TransferValidator struct {
	accounts repositories.AccountRepository
}

func NewTransferValidator(accounts repositories.AccountRepository) *TransferValidator {
	if accounts == nil {
		panic("account repository is required")
	}
	return &TransferValidator{accounts: accounts}
}

// Validate checks, in order: amount and distinct parties, payer and payee
// existence, payer class, payer balance. The first failure is returned.
func (v *TransferValidator) Validate(ctx context.Context, payerID, payeeID uint, amount decimal.Decimal) (*ValidatedTransfer, error) {
	if !amount.IsPositive() {
		return nil, apperrors.ErrInvalidAmount.WithMessage("amount must be greater than zero")
	}
	if !amount.Equal(amount.Truncate(MaxAmountScale)) {
		return nil, apperrors.ErrInvalidAmount.WithMessage(
			fmt.Sprintf("amount %s has more than %d decimal places", amount, MaxAmountScale))
	}
	if payerID == payeeID {
		return nil, apperrors.ErrInvalidAmount.WithMessage("payer and payee must be different accounts")
	}

	payer, err := v.accounts.GetByID(ctx, payerID)
	if err != nil {
		return nil, lookupError(err, "payer", payerID)
	}
	payee, err := v.accounts.GetByID(ctx, payeeID)
	if err != nil {
		return nil, lookupError(err, "payee", payeeID)
	}

	if !payer.Type.CanSend() {
		return nil, apperrors.ErrInvalidPayer
	}

	wallet, err := v.accounts.GetWallet(ctx, payerID)
	if err != nil {
		return nil, lookupError(err, "payer", payerID)
	}
	if wallet.Balance.LessThan(amount) {
		return nil, apperrors.ErrInsufficientFunds.WithMessage(
			fmt.Sprintf("insufficient funds: available %s, requested %s", wallet.Balance.StringFixed(2), amount.String()))
	}

	return &ValidatedTransfer{
		Payer:        *payer,
		Payee:        *payee,
		Amount:       amount,
		PayerBalance: wallet.Balance,
	}, nil
}

func lookupError(err error, role string, id uint) error {
	if errors.Is(err, apperrors.ErrAccountNotFound) || errors.Is(err, apperrors.ErrWalletNotFound) {
		return apperrors.ErrAccountNotFound.WithMessage(fmt.Sprintf("%s account %d not found", role, id))
	}
	return fmt.Errorf("%w: %w", apperrors.ErrStorageUnavailable, err)
}
