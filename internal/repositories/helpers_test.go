package repositories_test

import (
	"context"
	"fmt"
	"testing"

	"simplepay/internal/models"
	"simplepay/internal/repositories"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedAccount(t *testing.T, db *gorm.DB, accountType models.AccountType, balance string) *models.Account {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&models.Account{}).Count(&count).Error)

	account := &models.Account{
		Name:     fmt.Sprintf("Account %d", count+1),
		Document: fmt.Sprintf("doc-%d", count+1),
		Email:    fmt.Sprintf("account%d@example.com", count+1),
		Type:     accountType,
	}
	require.NoError(t, repositories.NewAccountRepository(db, nil).Create(context.Background(), account, balance))
	return account
}

func requireBalance(t *testing.T, db *gorm.DB, accountID uint, want string) {
	t.Helper()
	wallet, err := repositories.NewWalletRepository(db).GetByAccountID(context.Background(), accountID)
	require.NoError(t, err)
	require.True(t, decimal.RequireFromString(want).Equal(wallet.Balance),
		"balance of account %d: want %s, got %s", accountID, want, wallet.Balance)
}
