// Package main seeds demo accounts with funded wallets. Running it twice
// leaves existing accounts untouched.
package main

import (
	"context"
	"errors"

	"simplepay/internal/config"
	apperrors "simplepay/internal/errors"
	"simplepay/internal/logger"
	"simplepay/internal/models"
	"simplepay/internal/repositories"

	"github.com/rs/zerolog/log"
)

type seedAccount struct {
	account models.Account
	balance string
}

var demoAccounts = []seedAccount{
	{models.Account{Name: "Ana Souza", Document: "123.456.789-09", Email: "ana@simplepay.dev", Type: models.AccountTypeCommon}, "1000.00"},
	{models.Account{Name: "Bruno Lima", Document: "987.654.321-00", Email: "bruno@simplepay.dev", Type: models.AccountTypeCommon}, "250.00"},
	{models.Account{Name: "Loja Central", Document: "12.345.678/0001-95", Email: "loja@simplepay.dev", Type: models.AccountTypeMerchant}, "0.00"},
}

func main() {
	cfg := config.Load()
	logger.Setup(cfg.LogLevel, cfg.IsProduction())

	db, err := repositories.Open(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer repositories.Close(db)

	ctx := context.Background()
	accounts := repositories.NewAccountRepository(db, nil)

	for _, seed := range demoAccounts {
		existing, err := accounts.GetByEmail(ctx, seed.account.Email)
		if err == nil {
			log.Info().Uint("account_id", existing.ID).Str("email", existing.Email).Msg("account already exists")
			continue
		}
		if !errors.Is(err, apperrors.ErrAccountNotFound) {
			log.Fatal().Err(err).Str("email", seed.account.Email).Msg("failed to look up account")
		}

		account := seed.account
		if err := accounts.Create(ctx, &account, seed.balance); err != nil {
			log.Fatal().Err(err).Str("email", account.Email).Msg("failed to create account")
		}
		log.Info().
			Uint("account_id", account.ID).
			Str("type", string(account.Type)).
			Str("balance", seed.balance).
			Msg("account created")
	}
}
