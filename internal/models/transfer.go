package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferStatus is the state of a transfer. Pending is the only non-terminal
// state and every transition leaves it.
type TransferStatus string

const (
	TransferStatusPending      TransferStatus = "pending"
	TransferStatusCompleted    TransferStatus = "completed"
	TransferStatusUnauthorized TransferStatus = "unauthorized"
	TransferStatusError        TransferStatus = "error"
)

// IsTerminal reports whether no further transition may occur from s.
func (s TransferStatus) IsTerminal() bool {
	switch s {
	case TransferStatusCompleted, TransferStatusUnauthorized, TransferStatusError:
		return true
	}
	return false
}

// CanTransitionTo reports whether s -> next is allowed.
func (s TransferStatus) CanTransitionTo(next TransferStatus) bool {
	return s == TransferStatusPending && next.IsTerminal()
}

// Reasons recorded on a transfer next to its terminal status.
const (
	ReasonDebitFailed        = "debit_failed"
	ReasonCreditFailed       = "credit_failed"
	ReasonCompensationFailed = "compensation_failed"
)

type Transfer struct {
	ID                  string          `gorm:"primaryKey;type:varchar(36)" json:"id"`
	PayerID             uint            `gorm:"index;not null" json:"payer_id"`
	PayeeID             uint            `gorm:"index;not null" json:"payee_id"`
	Amount              decimal.Decimal `gorm:"type:bigint;serializer:cents;not null" json:"amount"`
	Status              TransferStatus  `gorm:"type:varchar(16);index;not null;default:'pending'" json:"status"`
	AuthorizationReason string          `gorm:"type:varchar(32)" json:"authorization_reason,omitempty"`
	AuthorizedAt        *time.Time      `json:"authorized_at"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}
