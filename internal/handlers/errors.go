package handlers

import (
	"errors"

	apperrors "simplepay/internal/errors"
	"simplepay/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// statusOf maps a domain error to its HTTP status.
func statusOf(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrAccountNotFound),
		errors.Is(err, apperrors.ErrTransferNotFound),
		errors.Is(err, apperrors.ErrWalletNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, apperrors.ErrInvalidPayer):
		return fiber.StatusForbidden
	case errors.Is(err, apperrors.ErrInsufficientFunds):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, apperrors.ErrInvalidAmount):
		return fiber.StatusBadRequest
	case errors.Is(err, apperrors.ErrFinalizationPending):
		return fiber.StatusAccepted
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError writes err as a JSON error body. Messages of unclassified
// failures stay in the log.
func respondError(c *fiber.Ctx, err error) error {
	status := statusOf(err)
	if status == fiber.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Path()).Msg("request failed")
		code := apperrors.CodeOf(err)
		if code == "" {
			return utils.InternalError(c, "internal server error")
		}
		var de *apperrors.DomainError
		errors.As(err, &de)
		return utils.Error(c, status, code, de.Message)
	}

	var de *apperrors.DomainError
	if errors.As(err, &de) {
		return utils.Error(c, status, de.Code, de.Message)
	}
	return utils.Error(c, status, "ERROR", err.Error())
}
