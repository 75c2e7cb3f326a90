package models

import (
	"time"
)

// AccountType is the account class. It is fixed at creation.
type AccountType string

const (
	AccountTypeCommon   AccountType = "common"
	AccountTypeMerchant AccountType = "merchant"
)

// Valid reports whether t is a known account class.
func (t AccountType) Valid() bool {
	return t == AccountTypeCommon || t == AccountTypeMerchant
}

// CanSend reports whether accounts of this class may initiate transfers.
// Merchants only receive.
func (t AccountType) CanSend() bool {
	return t == AccountTypeCommon
}

type Account struct {
	ID        uint        `gorm:"primarykey" json:"id"`
	Name      string      `gorm:"not null" json:"name"`
	Document  string      `gorm:"uniqueIndex;not null" json:"document"` // CPF or CNPJ
	Email     string      `gorm:"uniqueIndex;not null" json:"email"`
	Type      AccountType `gorm:"type:varchar(16);not null;default:'common'" json:"type"`
	Wallet    *Wallet     `gorm:"foreignKey:AccountID" json:"wallet,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}
