/*
Package ledger moves money in and out of wallets.

Every mutation is one conditional statement against the wallet row, so two
callers touching the same wallet are serialized by the database and a debit
can never take a balance below zero:

	svc := ledger.NewService(walletRepo, ledger.NewCounters())

	balance, err := svc.Debit(ctx, payerID, amount)
	if errors.Is(err, apperrors.ErrInsufficientFunds) {
		// nothing was changed
	}

Compensations reuse the same statements and are only distinguished in logs
and metrics. A compensation is exactly one reversing mutation; callers must
not issue it twice for the same transfer.
*/
package ledger
