package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "simplepay/internal/errors"
	"simplepay/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type transferRepository struct {
	db *gorm.DB
}

func NewTransferRepository(db *gorm.DB) TransferRepository {
	return &transferRepository{
		db: db,
	}
}

func (r *transferRepository) Create(ctx context.Context, transfer *models.Transfer) error {
	if transfer.ID == "" {
		transfer.ID = uuid.NewString()
	}
	if transfer.Status == "" {
		transfer.Status = models.TransferStatusPending
	}
	if transfer.Status != models.TransferStatusPending {
		return apperrors.ErrInvalidTransition.WithMessage("transfers must be created pending")
	}
	if err := r.db.WithContext(ctx).Create(transfer).Error; err != nil {
		return fmt.Errorf("failed to create transfer: %w", err)
	}
	return nil
}

func (r *transferRepository) GetByID(ctx context.Context, id string) (*models.Transfer, error) {
	var transfer models.Transfer
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&transfer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransferNotFound
		}
		return nil, fmt.Errorf("failed to get transfer: %w", err)
	}
	return &transfer, nil
}

func (r *transferRepository) Finalize(ctx context.Context, transfer *models.Transfer, status models.TransferStatus, reason string, authorizedAt *time.Time) error {
	if !models.TransferStatusPending.CanTransitionTo(status) {
		return apperrors.ErrInvalidTransition.WithMessage(
			fmt.Sprintf("cannot move transfer to %q", status))
	}

	now := time.Now().UTC()
	if err := finalizeRow(r.db.WithContext(ctx), transfer.ID, status, reason, authorizedAt, now); err != nil {
		return err
	}

	transfer.Status = status
	transfer.AuthorizationReason = reason
	transfer.AuthorizedAt = authorizedAt
	transfer.UpdatedAt = now
	return nil
}

func (r *transferRepository) Complete(ctx context.Context, transfer *models.Transfer, authorizedAt time.Time, event models.TransferReceivedEvent) error {
	outbox, err := models.NewOutboxEvent(event)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := finalizeRow(tx, transfer.ID, models.TransferStatusCompleted, models.ReasonAuthorized, &authorizedAt, now); err != nil {
			return err
		}
		if err := tx.Create(outbox).Error; err != nil {
			return fmt.Errorf("failed to store transfer event: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	transfer.Status = models.TransferStatusCompleted
	transfer.AuthorizationReason = models.ReasonAuthorized
	transfer.AuthorizedAt = &authorizedAt
	transfer.UpdatedAt = now
	return nil
}

// finalizeRow is a compare-and-set on the status column: only a pending row
// moves.
func finalizeRow(db *gorm.DB, id string, status models.TransferStatus, reason string, authorizedAt *time.Time, now time.Time) error {
	result := db.Model(&models.Transfer{}).
		Where("id = ? AND status = ?", id, models.TransferStatusPending).
		Updates(map[string]interface{}{
			"status":               status,
			"authorization_reason": reason,
			"authorized_at":        authorizedAt,
			"updated_at":           now,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to finalize transfer: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrInvalidTransition.WithMessage(
			fmt.Sprintf("transfer %s is not pending", id))
	}
	return nil
}

func (r *transferRepository) ListByAccount(ctx context.Context, accountID uint, limit, offset int) ([]models.Transfer, int64, error) {
	var transfers []models.Transfer
	var total int64

	query := r.db.WithContext(ctx).
		Model(&models.Transfer{}).
		Where("payer_id = ? OR payee_id = ?", accountID, accountID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count transfers: %w", err)
	}
	err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&transfers).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list transfers: %w", err)
	}
	return transfers, total, nil
}

func (r *transferRepository) ListStalePending(ctx context.Context, createdBefore time.Time) ([]models.Transfer, error) {
	var transfers []models.Transfer
	err := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", models.TransferStatusPending, createdBefore).
		Order("created_at ASC").
		Find(&transfers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list stale transfers: %w", err)
	}
	return transfers, nil
}
