package handlers

import (
	"simplepay/internal/repositories"
	"simplepay/internal/utils"
	"simplepay/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type AccountHandler struct {
	accounts repositories.AccountRepository
}

func NewAccountHandler(accounts repositories.AccountRepository) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

// GetAccount handles GET /api/accounts/:id.
func (h *AccountHandler) GetAccount(c *fiber.Ctx) error {
	id, err := accountIDParam(c)
	if err != nil {
		return utils.BadRequest(c, "invalid account id")
	}
	account, err := h.accounts.GetByID(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, account)
}

// GetWallet handles GET /api/accounts/:id/wallet. The balance is read from
// the database, never from the account cache.
func (h *AccountHandler) GetWallet(c *fiber.Ctx) error {
	id, err := accountIDParam(c)
	if err != nil {
		return utils.BadRequest(c, "invalid account id")
	}
	wallet, err := h.accounts.GetWallet(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.Map{
		"account_id": wallet.AccountID,
		"balance":    wallet.Balance.StringFixed(validation.MaxAmountScale),
		"updated_at": wallet.UpdatedAt,
	})
}
