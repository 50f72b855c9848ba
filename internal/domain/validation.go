package domain

import "github.com/shopspring/decimal"

// ValidateTransfer checks every balance invariant a transfer must satisfy
// before (and after each concurrency retry of) a balance update. Pure; the
// caller supplies freshly read accounts.
//
// Deposits inject funds from the system account, so the source balance is not
// checked for them; withdrawals and transfers debit the source and require
// sufficient funds.
func ValidateTransfer(source, destination Account, amount decimal.Decimal, transferType TransferType) error {
	if amount.LessThanOrEqual(decimal.Zero) || !ValidAmountScale(amount) {
		return ErrInvalidAmount
	}
	if transferType == TransferTypeTransfer && source.ID == destination.ID {
		return ErrSelfTransfer
	}
	if !source.IsActive() || !destination.IsActive() {
		return ErrAccountInactive
	}
	if transferType != TransferTypeDeposit && source.Balance.LessThan(amount) {
		return ErrInsufficientFunds
	}
	return nil
}

// ValidAmountScale reports whether the amount fits the ledger's fixed-point
// representation of four decimal places. Finer precision would be rounded by
// the store, so the applied balance deltas would no longer sum to the
// recorded transfer amount.
func ValidAmountScale(amount decimal.Decimal) bool {
	return amount.Equal(amount.Truncate(4))
}
