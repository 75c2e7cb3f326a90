package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet is the single balance record owned by an account. Balance is only
// ever changed through the ledger's conditional increment/decrement and is
// stored in cents.
type Wallet struct {
	ID        uint            `gorm:"primarykey" json:"id"`
	AccountID uint            `gorm:"uniqueIndex;not null" json:"account_id"`
	Balance   decimal.Decimal `gorm:"type:bigint;serializer:cents;not null;default:0" json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
