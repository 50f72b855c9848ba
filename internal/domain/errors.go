package domain

import "errors"

var ErrRecordNotFound = errors.New("Record not found")
var ErrAccountNotFound = errors.New("Account not found")
var ErrCustomerNotFound = errors.New("Customer not found")
var ErrAccountInactive = errors.New("Account is not active")
var ErrInvalidAmount = errors.New("Amount must be greater than zero")
var ErrSelfTransfer = errors.New("Source and destination accounts cannot be the same")
var ErrInsufficientFunds = errors.New("Insufficient funds in source account")
var ErrInvalidCursor = errors.New("Invalid history cursor")
var ErrInvalidTransferType = errors.New("Unsupported transfer type")
var ErrIdempotencyKeyMissing = errors.New("Idempotency key is required")

// ErrSystemAccountMismatch reports a deposit or withdrawal whose explicit
// counterparty is not the system funding account.
var ErrSystemAccountMismatch = errors.New("Deposits and withdrawals settle against the system funding account")

// ErrConcurrentModification reports a conditional balance update that found a
// newer account version. Recoverable: the caller re-reads and retries.
var ErrConcurrentModification = errors.New("Account was modified concurrently")

// ErrConcurrencyExhausted is surfaced once the retry budget for conditional
// updates is spent without a successful commit.
var ErrConcurrencyExhausted = errors.New("Concurrent update retries exhausted")

// ErrIdempotencyKeyClaimed reports a transfer insert that lost the race for
// its idempotency key to a concurrent request.
var ErrIdempotencyKeyClaimed = errors.New("Idempotency key already claimed")

// ErrIdempotencyKeyConflict reports idempotency-key reuse with different
// request parameters. Never resolved silently.
var ErrIdempotencyKeyConflict = errors.New("Idempotency key reused with different parameters")

// ErrTransferInProgress reports a retried request whose original attempt is
// still pending; the caller should poll rather than resubmit.
var ErrTransferInProgress = errors.New("Transfer for this idempotency key is still in progress")
