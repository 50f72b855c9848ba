package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransferStatus string

const (
	TransferStatusPending   TransferStatus = "PENDING"
	TransferStatusCompleted TransferStatus = "COMPLETED"
	TransferStatusFailed    TransferStatus = "FAILED"
)

type TransferType string

const (
	TransferTypeDeposit    TransferType = "DEPOSIT"
	TransferTypeWithdrawal TransferType = "WITHDRAWAL"
	TransferTypeTransfer   TransferType = "TRANSFER"
)

// Transfer records one attempt to move money. The idempotency key is unique
// across all transfers ever created; a retried request with the same key
// returns this record instead of moving money again. Once the status reaches
// COMPLETED or FAILED the record is immutable.
type Transfer struct {
	ID                   string
	SourceAccountID      string
	DestinationAccountID string
	TransferType         TransferType
	Amount               decimal.Decimal
	Status               TransferStatus
	IdempotencyKey       string
	IsInitialDeposit     bool
	Description          string
	CreatedAt            time.Time
	UpdatedAt            time.Time
	ProcessedAt          *time.Time
}

func (s TransferStatus) IsTerminal() bool {
	return s == TransferStatusCompleted || s == TransferStatusFailed
}

// Matches reports whether the stored transfer was created for the same
// logical request. Used on idempotency-key reuse: identical parameters mean
// replay, anything else is a key conflict.
func (t Transfer) Matches(sourceID, destinationID string, amount decimal.Decimal, transferType TransferType) bool {
	return t.SourceAccountID == sourceID &&
		t.DestinationAccountID == destinationID &&
		t.Amount.Equal(amount) &&
		t.TransferType == transferType
}
