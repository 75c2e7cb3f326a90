// Package notification delivers TransferReceived events to payees. Completed
// transfers leave their event in the database outbox; a Relay in the API
// process hands outbox rows to a Sink (the broker, or the notify endpoint
// directly) until the sink accepts them. Delivery is at-least-once and
// unordered across transfers.
package notification

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"simplepay/internal/models"

	"github.com/rs/zerolog/log"
)

// Sink is the next hop of an event.
type Sink interface {
	Deliver(ctx context.Context, event models.TransferReceivedEvent) error
}

// OutboxStore is the relay's view of the outbox table.
type OutboxStore interface {
	Pending(ctx context.Context, now time.Time, limit int) ([]models.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, at time.Time) error
	MarkFailed(ctx context.Context, id string, cause error, next time.Time) error
}

type RelayConfig struct {
	BatchSize      int
	PollInterval   time.Duration
	RetryDelay     time.Duration
	MaxRetryDelay  time.Duration
	AttemptTimeout time.Duration
}

// RelayStats is exposed on the health endpoint.
type RelayStats struct {
	Delivered int64 `json:"delivered"`
	Failed    int64 `json:"failed"`
}

type Relay struct {
	store OutboxStore
	sink  Sink
	cfg   RelayConfig
	wake  chan struct{}
	now   func() time.Time

	delivered atomic.Int64
	failed    atomic.Int64
}

func NewRelay(store OutboxStore, sink Sink, cfg RelayConfig) *Relay {
	if store == nil {
		panic("outbox store is required")
	}
	if sink == nil {
		panic("notification sink is required")
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 2 * time.Second
	}
	if cfg.MaxRetryDelay <= 0 {
		cfg.MaxRetryDelay = 5 * time.Minute
	}
	if cfg.MaxRetryDelay < cfg.RetryDelay {
		cfg.MaxRetryDelay = cfg.RetryDelay
	}
	if cfg.AttemptTimeout <= 0 {
		cfg.AttemptTimeout = 10 * time.Second
	}

	return &Relay{
		store: store,
		sink:  sink,
		cfg:   cfg,
		wake:  make(chan struct{}, 1),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Notify wakes Run without waiting for the next poll.
func (r *Relay) Notify() {
	select {
	case r.wake <- struct{}{}:
	default:
	}
}

// Run drains the outbox until ctx is cancelled. A full batch is followed by
// another one straight away.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.cfg.PollInterval)
	defer ticker.Stop()

	for {
		n, err := r.Drain(ctx)
		if err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("outbox relay pass failed")
		}
		if err == nil && n == r.cfg.BatchSize {
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		case <-r.wake:
		}
	}
}

// Drain makes one delivery attempt for each due event, up to one batch, and
// returns how many events it attempted.
func (r *Relay) Drain(ctx context.Context) (int, error) {
	events, err := r.store.Pending(ctx, r.now(), r.cfg.BatchSize)
	if err != nil {
		return 0, err
	}

	for i := range events {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		if err := r.publish(ctx, &events[i]); err != nil {
			return i + 1, err
		}
	}
	return len(events), nil
}

// publish returns an error only when the outbox row could not be updated.
func (r *Relay) publish(ctx context.Context, row *models.OutboxEvent) error {
	logger := log.With().
		Str("event_id", row.ID).
		Str("transfer_id", row.TransferID).
		Int("attempt", row.Attempts+1).
		Logger()

	event, err := row.Event()
	if err == nil {
		attemptCtx, cancel := context.WithTimeout(ctx, r.cfg.AttemptTimeout)
		err = r.sink.Deliver(attemptCtx, event)
		cancel()
	}

	if err == nil {
		if merr := r.store.MarkPublished(ctx, row.ID, r.now()); merr != nil {
			// The sink has it; the next pass will publish it again.
			logger.Error().Err(merr).Msg("event delivered but not marked")
			return merr
		}
		r.delivered.Add(1)
		logger.Debug().Msg("notification delivered")
		return nil
	}

	r.failed.Add(1)
	delay := r.backoff(row.Attempts + 1)
	logger.Warn().Err(err).Dur("retry_in", delay).Msg("notification delivery failed")
	if merr := r.store.MarkFailed(ctx, row.ID, err, r.now().Add(delay)); merr != nil {
		return errors.Join(err, merr)
	}
	return nil
}

func (r *Relay) backoff(attempts int) time.Duration {
	delay := r.cfg.RetryDelay * time.Duration(attempts)
	if delay > r.cfg.MaxRetryDelay || delay <= 0 {
		return r.cfg.MaxRetryDelay
	}
	return delay
}

func (r *Relay) Stats() RelayStats {
	return RelayStats{
		Delivered: r.delivered.Load(),
		Failed:    r.failed.Load(),
	}
}
