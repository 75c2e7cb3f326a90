package handlers

import (
	"context"
	"time"

	"simplepay/internal/repositories"
	"simplepay/internal/services/ledger"
	"simplepay/internal/services/notification"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const healthCheckTimeout = 2 * time.Second

// HealthChecker is satisfied by the redis cache service and the broker.
type HealthChecker func(ctx context.Context) error

// HealthHandler reports dependency state along with ledger and notification
// counters. Optional dependencies left nil are reported as "disabled".
type HealthHandler struct {
	DB     *gorm.DB
	Redis  HealthChecker
	Broker HealthChecker
	Ledger *ledger.Counters
	Relay  *notification.Relay
	Outbox *repositories.OutboxRepository
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), healthCheckTimeout)
	defer cancel()

	healthy := true
	services := fiber.Map{}

	services["database"] = "connected"
	if err := h.pingDB(ctx); err != nil {
		services["database"] = err.Error()
		healthy = false
	}
	for name, check := range map[string]HealthChecker{"redis": h.Redis, "broker": h.Broker} {
		switch {
		case check == nil:
			services[name] = "disabled"
		case check(ctx) != nil:
			services[name] = "unreachable"
			healthy = false
		default:
			services[name] = "connected"
		}
	}

	body := fiber.Map{"status": "ok", "services": services}
	if h.Ledger != nil {
		body["ledger"] = h.Ledger.Snapshot()
	}
	if h.Relay != nil {
		notifications := fiber.Map{"relay": h.Relay.Stats()}
		if h.Outbox != nil {
			if pending, err := h.Outbox.CountPending(ctx); err == nil {
				notifications["pending"] = pending
			}
		}
		body["notifications"] = notifications
	}

	if !healthy {
		body["status"] = "degraded"
		return c.Status(fiber.StatusServiceUnavailable).JSON(body)
	}
	return c.JSON(body)
}

func (h *HealthHandler) pingDB(ctx context.Context) error {
	sqlDB, err := h.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
