package repositories

import (
	"context"
	"fmt"

	"simplepay/internal/models"

	"gorm.io/gorm"
)

// AuthorizationRepository keeps the log of external authorizer calls.
type AuthorizationRepository struct {
	db *gorm.DB
}

func NewAuthorizationRepository(db *gorm.DB) *AuthorizationRepository {
	return &AuthorizationRepository{db: db}
}

// Record stores one authorizer outcome for a transfer.
func (r *AuthorizationRepository) Record(ctx context.Context, transferID string, outcome models.AuthorizationOutcome) error {
	row := &models.AuthorizationResponse{
		TransferID:   transferID,
		Allowed:      outcome.Allowed,
		Reason:       outcome.Reason,
		StatusCode:   outcome.StatusCode,
		ResponseBody: outcome.ResponseBody,
		ErrorDetail:  outcome.ErrorDetail,
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("failed to record authorization response: %w", err)
	}
	return nil
}

// ListByTransfer returns the recorded calls for a transfer, oldest first.
func (r *AuthorizationRepository) ListByTransfer(ctx context.Context, transferID string) ([]models.AuthorizationResponse, error) {
	var rows []models.AuthorizationResponse
	err := r.db.WithContext(ctx).
		Where("transfer_id = ?", transferID).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list authorization responses: %w", err)
	}
	return rows, nil
}
