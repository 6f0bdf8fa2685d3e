package domain

import "errors"

// Shared error taxonomy. Services wrap these with context via %w so
// handlers can dispatch on errors.Is.
var (
	// ErrValidation covers malformed or out-of-range input. No state change.
	ErrValidation = errors.New("validation error")
	// ErrInvalidAccount means the account (user) is unknown.
	ErrInvalidAccount = errors.New("invalid account")
	// ErrInsufficientFunds means a debit would drive a bucket negative.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrInvalidStateTransition means the requested transition is not
	// Pending -> Completed|Failed.
	ErrInvalidStateTransition = errors.New("invalid state transition")
	// ErrAlreadyResolved means another caller won the transition first.
	// Callers must treat it as "nothing happened here", not success.
	ErrAlreadyResolved = errors.New("transaction already resolved")
	// ErrUnauthorized means the caller lacks the admin capability.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrTransactionNotFound means no live transaction has the given id.
	ErrTransactionNotFound = errors.New("transaction not found")
	// ErrInconsistency is fatal: a status transition may have committed
	// without its paired balance mutation. Requires operator repair; the
	// credit is never retried automatically.
	ErrInconsistency = errors.New("settlement inconsistency")
)
