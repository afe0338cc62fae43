package usecase

import "time"

const (
	// DefaultTransactionTimeout bounds a transfer transaction when the caller's
	// context carries no deadline of its own.
	DefaultTransactionTimeout = 10 * time.Second
)

// Transfer outcomes reported to MetricsRecorder.
const (
	OutcomeCommitted         = "committed"
	OutcomeInsufficientFunds = "insufficient_funds"
	OutcomeAccountNotFound   = "account_not_found"
	OutcomeInvalid           = "invalid"
	OutcomeStoreFailure      = "store_failure"
)

// Balance lookup sources reported to MetricsRecorder.
const (
	SourceCache = "cache"
	SourceStore = "store"
)
