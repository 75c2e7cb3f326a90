package handlers

import (
	"errors"
	"strconv"
	"time"

	apperrors "simplepay/internal/errors"
	"simplepay/internal/models"
	"simplepay/internal/services/transfer"
	"simplepay/internal/utils"
	"simplepay/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// TransferHandler exposes P2P transfer endpoints.
type TransferHandler struct {
	service transfer.Service
}

// NewTransferHandler creates a new TransferHandler.
func NewTransferHandler(s transfer.Service) *TransferHandler { return &TransferHandler{service: s} }

// CreateTransferRequest accepts both the short field names and the
// *_id/amount spelling.
type CreateTransferRequest struct {
	Payer   *uint            `json:"payer"`
	Payee   *uint            `json:"payee"`
	Value   *decimal.Decimal `json:"value"`
	PayerID *uint            `json:"payer_id"`
	PayeeID *uint            `json:"payee_id"`
	Amount  *decimal.Decimal `json:"amount"`
}

func (r CreateTransferRequest) payer() uint           { return firstID(r.Payer, r.PayerID) }
func (r CreateTransferRequest) payee() uint           { return firstID(r.Payee, r.PayeeID) }
func (r CreateTransferRequest) value() decimal.Decimal { return firstAmount(r.Value, r.Amount) }

func firstID(ids ...*uint) uint {
	for _, id := range ids {
		if id != nil {
			return *id
		}
	}
	return 0
}

func firstAmount(amounts ...*decimal.Decimal) decimal.Decimal {
	for _, a := range amounts {
		if a != nil {
			return *a
		}
	}
	return decimal.Zero
}

type TransferResponse struct {
	ID           string                `json:"id"`
	Payer        uint                  `json:"payer"`
	Payee        uint                  `json:"payee"`
	Value        string                `json:"value"`
	Status       models.TransferStatus `json:"status"`
	Reason       string                `json:"reason,omitempty"`
	AuthorizedAt *time.Time            `json:"authorized_at,omitempty"`
	CreatedAt    time.Time             `json:"created_at"`
}

func newTransferResponse(t *models.Transfer) TransferResponse {
	return TransferResponse{
		ID:           t.ID,
		Payer:        t.PayerID,
		Payee:        t.PayeeID,
		Value:        t.Amount.StringFixed(validation.MaxAmountScale),
		Status:       t.Status,
		Reason:       t.AuthorizationReason,
		AuthorizedAt: t.AuthorizedAt,
		CreatedAt:    t.CreatedAt,
	}
}

// Create handles POST /api/transfers. A completed transfer answers 201, a
// denied one 200 with the transfer body. A transfer whose money moved but
// whose status could not be recorded answers 202, so an idempotent replay
// returns it instead of running the transfer again.
func (h *TransferHandler) Create(c *fiber.Ctx) error {
	var req CreateTransferRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}

	v := validation.New()
	v.Required("payer", req.payer())
	v.Required("payee", req.payee())
	v.Amount("value", req.value())
	if !v.Valid() {
		return utils.ValidationFailed(c, v.Errors)
	}

	t, err := h.service.InitiateTransfer(c.UserContext(), req.payer(), req.payee(), req.value())
	if errors.Is(err, apperrors.ErrFinalizationPending) && t != nil {
		log.Warn().Err(err).Str("transfer_id", t.ID).Msg("transfer accepted with pending status")
		return utils.Respond(c, fiber.StatusAccepted, newTransferResponse(t))
	}
	if err != nil {
		return respondError(c, err)
	}

	if t.Status == models.TransferStatusCompleted {
		return utils.Created(c, newTransferResponse(t))
	}
	return utils.Success(c, newTransferResponse(t))
}

// Get handles GET /api/transfers/:id.
func (h *TransferHandler) Get(c *fiber.Ctx) error {
	t, err := h.service.GetTransfer(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, newTransferResponse(t))
}

// ListByAccount handles GET /api/accounts/:id/transfers.
func (h *TransferHandler) ListByAccount(c *fiber.Ctx) error {
	accountID, err := accountIDParam(c)
	if err != nil {
		return utils.BadRequest(c, "invalid account id")
	}

	p := utils.GetPagination(c, 1, 20)
	transfers, total, err := h.service.ListAccountTransfers(c.UserContext(), accountID, p.Limit, p.Offset)
	if err != nil {
		return respondError(c, err)
	}
	p.SetTotal(total)

	out := make([]TransferResponse, 0, len(transfers))
	for i := range transfers {
		out = append(out, newTransferResponse(&transfers[i]))
	}
	return utils.Success(c, utils.NewPaginatedResponse(out, p))
}

func accountIDParam(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, fiber.ErrBadRequest
	}
	return uint(id), nil
}
