// Package routes defines the API routing configuration.
// It sets up all HTTP routes and their corresponding handlers,
// including the middleware guarding the transfer endpoint.
package routes

import (
	"time"

	"simplepay/internal/handlers"
	"simplepay/internal/middleware"
	"simplepay/internal/repositories"
	"simplepay/internal/services/transfer"

	"github.com/gofiber/fiber/v2"
)

// Dependencies are the services the HTTP surface is built on. Idempotency
// is optional.
type Dependencies struct {
	Transfers   transfer.Service
	Accounts    repositories.AccountRepository
	Health      *handlers.HealthHandler
	Idempotency middleware.IdempotencyStore

	IdempotencyTTL  time.Duration
	RateLimitMax    int
	RateLimitWindow time.Duration
}

// SetupRoutes configures all application routes.
func SetupRoutes(app *fiber.App, deps Dependencies) {
	transferHandler := handlers.NewTransferHandler(deps.Transfers)
	accountHandler := handlers.NewAccountHandler(deps.Accounts)

	app.Get("/health", deps.Health.Check)

	api := app.Group("/api")

	create := []fiber.Handler{middleware.RateLimit(deps.RateLimitMax, deps.RateLimitWindow)}
	if deps.Idempotency != nil {
		create = append(create, middleware.Idempotency(deps.Idempotency, deps.IdempotencyTTL))
	}
	create = append(create, transferHandler.Create)

	transfers := api.Group("/transfers")
	transfers.Post("/", create...)
	transfers.Get("/:id", transferHandler.Get)

	accounts := api.Group("/accounts")
	accounts.Get("/:id", accountHandler.GetAccount)
	accounts.Get("/:id/wallet", accountHandler.GetWallet)
	accounts.Get("/:id/transfers", transferHandler.ListByAccount)
}
