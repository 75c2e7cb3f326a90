// Package main lists transfers stuck in pending, left behind by a crash
// between debit and finalization. Each one needs an operator to check both
// wallets before it is settled by hand.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"simplepay/internal/config"
	"simplepay/internal/logger"
	"simplepay/internal/repositories"

	"github.com/rs/zerolog/log"
)

func main() {
	cfg := config.Load()
	logger.Setup(cfg.LogLevel, cfg.IsProduction())

	olderThan := flag.Duration("older-than", cfg.ReconcileAfter, "only list transfers pending for longer than this")
	flag.Parse()

	db, err := repositories.Open(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer repositories.Close(db)

	cutoff := time.Now().Add(-*olderThan)
	stale, err := repositories.NewTransferRepository(db).ListStalePending(context.Background(), cutoff)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to list pending transfers")
	}
	if len(stale) == 0 {
		log.Info().Dur("older_than", *olderThan).Msg("no stale pending transfers")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPAYER\tPAYEE\tAMOUNT\tCREATED")
	for _, t := range stale {
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%s\n", t.ID, t.PayerID, t.PayeeID, t.Amount.StringFixed(2), t.CreatedAt.Format(time.RFC3339))
	}
	w.Flush()
	log.Warn().Int("count", len(stale)).Msg("stale pending transfers need manual reconciliation")
}
