package errors

// Validation errors. Surfaced before any state mutation.
var (
	ErrAccountNotFound = &DomainError{
		Code:    "ACCOUNT_NOT_FOUND",
		Message: "account not found",
	}
	ErrInvalidPayer = &DomainError{
		Code:    "INVALID_PAYER",
		Message: "merchant accounts cannot send transfers",
	}
	ErrInsufficientFunds = &DomainError{
		Code:    "INSUFFICIENT_FUNDS",
		Message: "insufficient wallet balance",
	}
	ErrInvalidAmount = &DomainError{
		Code:    "INVALID_AMOUNT",
		Message: "invalid amount",
	}
)

// Store and state machine errors.
var (
	ErrWalletNotFound = &DomainError{
		Code:    "WALLET_NOT_FOUND",
		Message: "wallet not found",
	}
	ErrTransferNotFound = &DomainError{
		Code:    "TRANSFER_NOT_FOUND",
		Message: "transfer not found",
	}
	ErrInvalidTransition = &DomainError{
		Code:    "INVALID_TRANSITION",
		Message: "invalid transfer status transition",
	}
)

// Infrastructure failures. The caller may retry the whole operation.
var (
	ErrStorageUnavailable = &DomainError{
		Code:    "STORAGE_UNAVAILABLE",
		Message: "storage unavailable",
	}
	// ErrFinalizationPending means the money moved but the completed status
	// could not be recorded. The transfer stays pending for reconciliation and
	// must not be retried.
	ErrFinalizationPending = &DomainError{
		Code:    "FINALIZATION_PENDING",
		Message: "transfer applied, final status pending",
	}
	ErrCompensationFailed = &DomainError{
		Code:    "COMPENSATION_FAILED",
		Message: "transfer could not be compensated, manual reconciliation required",
	}
)
