package transfer

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "simplepay/internal/errors"
	"simplepay/internal/models"
	"simplepay/internal/repositories"
	"simplepay/internal/services/authorizer"
	"simplepay/internal/services/ledger"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

type Config struct {
	Validator  Validator
	Ledger     ledger.Service
	Authorizer Authorizer
	Transfers  repositories.TransferRepository
	Accounts   repositories.AccountRepository

	// Events is optional. Completed transfers always land in the outbox; the
	// relay only speeds up their delivery.
	Events EventRelay
}

// service implements the transfer Service interface.
type service struct {
	validator  Validator
	ledger     ledger.Service
	authorizer Authorizer
	transfers  repositories.TransferRepository
	accounts   repositories.AccountRepository
	events     EventRelay
	now        func() time.Time
}

// NewService creates a new transfer service instance.
func NewService(cfg Config) Service {
	if cfg.Validator == nil {
		panic("validator is required")
	}
	if cfg.Ledger == nil {
		panic("ledger is required")
	}
	if cfg.Authorizer == nil {
		panic("authorizer is required")
	}
	if cfg.Transfers == nil {
		panic("transfer repository is required")
	}
	if cfg.Accounts == nil {
		panic("account repository is required")
	}

	return &service{
		validator:  cfg.Validator,
		ledger:     cfg.Ledger,
		authorizer: cfg.Authorizer,
		transfers:  cfg.Transfers,
		accounts:   cfg.Accounts,
		events:     cfg.Events,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *service) InitiateTransfer(ctx context.Context, payerID, payeeID uint, amount decimal.Decimal) (*models.Transfer, error) {
	validated, err := s.validator.Validate(ctx, payerID, payeeID, amount)
	if err != nil {
		return nil, err
	}

	transfer := &models.Transfer{
		ID:      uuid.NewString(),
		PayerID: validated.Payer.ID,
		PayeeID: validated.Payee.ID,
		Amount:  validated.Amount,
		Status:  models.TransferStatusPending,
	}
	if err := s.transfers.Create(ctx, transfer); err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrStorageUnavailable, err)
	}

	logger := log.With().
		Str("transfer_id", transfer.ID).
		Uint("payer_id", transfer.PayerID).
		Uint("payee_id", transfer.PayeeID).
		Str("amount", transfer.Amount.StringFixed(2)).
		Logger()

	if _, err := s.ledger.Debit(ctx, transfer.PayerID, transfer.Amount); err != nil {
		logger.Warn().Err(err).Msg("debit failed")
		s.finalize(context.WithoutCancel(ctx), logger, transfer, models.TransferStatusError, models.ReasonDebitFailed, nil)
		if errors.Is(err, apperrors.ErrInsufficientFunds) {
			return nil, err
		}
		return nil, storageError(err)
	}

	// Money has moved. From here on the transfer must reach a terminal status
	// regardless of what happens to the caller.
	ctx = context.WithoutCancel(ctx)

	if _, err := s.ledger.Credit(ctx, transfer.PayeeID, transfer.Amount); err != nil {
		logger.Error().Err(err).Msg("credit failed, refunding payer")
		if cerr := s.ledger.CompensateCredit(ctx, transfer.PayerID, transfer.Amount); cerr != nil {
			logger.Error().Err(cerr).Msg("payer refund failed")
			s.finalize(ctx, logger, transfer, models.TransferStatusError, models.ReasonCompensationFailed, nil)
			return nil, apperrors.ErrCompensationFailed
		}
		s.finalize(ctx, logger, transfer, models.TransferStatusError, models.ReasonCreditFailed, nil)
		return nil, storageError(err)
	}

	outcome := s.authorizer.Evaluate(ctx, authorizer.Request{
		TransferID: transfer.ID,
		PayerID:    transfer.PayerID,
		PayeeID:    transfer.PayeeID,
		Amount:     transfer.Amount,
	})

	if !outcome.Allowed {
		return s.reverse(ctx, logger, transfer, outcome.Reason)
	}

	authorizedAt := s.now()
	if err := s.transfers.Complete(ctx, transfer, authorizedAt, s.receivedEvent(transfer, authorizedAt)); err != nil {
		logger.Error().Err(err).Msg("failed to complete transfer, left pending")
		return transfer, fmt.Errorf("%w: %w", apperrors.ErrFinalizationPending, err)
	}
	logger.Info().Msg("transfer completed")

	if s.events != nil {
		s.events.Notify()
	}
	return transfer, nil
}

// reverse undoes an applied transfer after a denial. The payee is debited
// back first so that a payer is never refunded with money the payee already
// spent.
func (s *service) reverse(ctx context.Context, logger zerolog.Logger, transfer *models.Transfer, reason string) (*models.Transfer, error) {
	logger.Info().Str("reason", reason).Msg("transfer not authorized, reversing")

	if err := s.ledger.CompensateDebit(ctx, transfer.PayeeID, transfer.Amount); err != nil {
		logger.Error().Err(err).Msg("payee reversal failed, manual reconciliation required")
		s.finalize(ctx, logger, transfer, models.TransferStatusError, models.ReasonCompensationFailed, nil)
		return nil, apperrors.ErrCompensationFailed
	}
	if err := s.ledger.CompensateCredit(ctx, transfer.PayerID, transfer.Amount); err != nil {
		logger.Error().Err(err).Msg("payer refund failed, manual reconciliation required")
		s.finalize(ctx, logger, transfer, models.TransferStatusError, models.ReasonCompensationFailed, nil)
		return nil, apperrors.ErrCompensationFailed
	}

	if err := s.finalize(ctx, logger, transfer, models.TransferStatusUnauthorized, reason, nil); err != nil {
		return nil, storageError(err)
	}
	return transfer, nil
}

// finalize records the terminal status. A failure leaves the row pending for
// reconciliation.
func (s *service) finalize(ctx context.Context, logger zerolog.Logger, transfer *models.Transfer, status models.TransferStatus, reason string, authorizedAt *time.Time) error {
	if err := s.transfers.Finalize(ctx, transfer, status, reason, authorizedAt); err != nil {
		logger.Error().Err(err).
			Str("status", string(status)).
			Str("reason", reason).
			Msg("failed to finalize transfer, left pending")
		return err
	}
	return nil
}

func (s *service) receivedEvent(transfer *models.Transfer, completedAt time.Time) models.TransferReceivedEvent {
	return models.TransferReceivedEvent{
		EventID:     uuid.NewString(),
		EventType:   models.EventTypeTransferReceived,
		TransferID:  transfer.ID,
		PayerID:     transfer.PayerID,
		PayeeID:     transfer.PayeeID,
		Amount:      transfer.Amount,
		CompletedAt: completedAt,
		OccurredAt:  s.now(),
	}
}

func (s *service) GetTransfer(ctx context.Context, id string) (*models.Transfer, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.ErrTransferNotFound
	}
	return s.transfers.GetByID(ctx, id)
}

func (s *service) ListAccountTransfers(ctx context.Context, accountID uint, limit, offset int) ([]models.Transfer, int64, error) {
	if _, err := s.accounts.GetByID(ctx, accountID); err != nil {
		return nil, 0, err
	}
	return s.transfers.ListByAccount(ctx, accountID, limit, offset)
}

func storageError(err error) error {
	if errors.Is(err, apperrors.ErrStorageUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", apperrors.ErrStorageUnavailable, err)
}
