package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "simplepay/internal/errors"
	"simplepay/internal/models"
	"simplepay/internal/repositories"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

type service struct {
	wallets repositories.WalletRepository
	metrics MetricsCollector
}

// NewService creates a new ledger service. metrics may be nil.
func NewService(wallets repositories.WalletRepository, metrics MetricsCollector) Service {
	if wallets == nil {
		panic("wallet repository is required")
	}
	if metrics == nil {
		metrics = &NoopMetricsCollector{}
	}
	return &service{
		wallets: wallets,
		metrics: metrics,
	}
}

func (s *service) Debit(ctx context.Context, accountID uint, amount decimal.Decimal) (decimal.Decimal, error) {
	return s.decrement(ctx, OpDebit, accountID, amount)
}

func (s *service) Credit(ctx context.Context, accountID uint, amount decimal.Decimal) (decimal.Decimal, error) {
	return s.increment(ctx, OpCredit, accountID, amount)
}

func (s *service) CompensateCredit(ctx context.Context, accountID uint, amount decimal.Decimal) error {
	_, err := s.increment(ctx, OpCompensateCredit, accountID, amount)
	return err
}

func (s *service) CompensateDebit(ctx context.Context, accountID uint, amount decimal.Decimal) error {
	_, err := s.decrement(ctx, OpCompensateDebit, accountID, amount)
	return err
}

func (s *service) increment(ctx context.Context, op string, accountID uint, amount decimal.Decimal) (decimal.Decimal, error) {
	if err := checkAmount(amount); err != nil {
		return decimal.Zero, err
	}

	start := time.Now()
	balance, err := s.wallets.Increment(ctx, accountID, amount)
	s.finish(op, accountID, amount, balance, start, err)
	if err != nil {
		return decimal.Zero, classify(err)
	}
	return balance, nil
}

func (s *service) decrement(ctx context.Context, op string, accountID uint, amount decimal.Decimal) (decimal.Decimal, error) {
	if err := checkAmount(amount); err != nil {
		return decimal.Zero, err
	}

	start := time.Now()
	balance, err := s.wallets.Decrement(ctx, accountID, amount)
	s.finish(op, accountID, amount, balance, start, err)
	if err != nil {
		return decimal.Zero, classify(err)
	}
	return balance, nil
}

func checkAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return apperrors.ErrInvalidAmount.WithMessage("amount must be positive")
	}
	if !amount.Equal(amount.Truncate(models.MoneyScale)) {
		return apperrors.ErrInvalidAmount.WithMessage(
			fmt.Sprintf("amount %s has more than %d decimal places", amount, models.MoneyScale))
	}
	return nil
}

func (s *service) finish(op string, accountID uint, amount, balance decimal.Decimal, start time.Time, err error) {
	s.metrics.RecordOperationDuration(op, time.Since(start))

	result := resultOf(err)
	s.metrics.RecordOperationResult(op, result)

	event := log.Debug()
	switch {
	case err != nil && result == ResultError:
		event = log.Error().Err(err)
	case err != nil:
		event = log.Info().Err(err)
	case op == OpCompensateCredit || op == OpCompensateDebit:
		event = log.Warn()
	}
	event.
		Str("operation", op).
		Uint("account_id", accountID).
		Str("amount", amount.StringFixed(2)).
		Str("balance", balance.StringFixed(2)).
		Str("result", result).
		Msg("ledger mutation")
}

func resultOf(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, apperrors.ErrInsufficientFunds):
		return ResultInsufficientFunds
	case errors.Is(err, apperrors.ErrWalletNotFound):
		return ResultNotFound
	}
	return ResultError
}

// classify keeps domain errors as they are and marks everything else as a
// storage failure.
func classify(err error) error {
	var de *apperrors.DomainError
	if errors.As(err, &de) {
		return err
	}
	return fmt.Errorf("%w: %w", apperrors.ErrStorageUnavailable, err)
}
