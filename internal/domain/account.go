package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type AccountStatus string

const (
	AccountStatusActive AccountStatus = "ACTIVE"
	AccountStatusFrozen AccountStatus = "FROZEN"
	AccountStatusClosed AccountStatus = "CLOSED"
)

// Account is a customer balance in the ledger. Balance carries four decimal
// places and never goes negative. Version is the optimistic-concurrency token:
// it increments by exactly one on every balance-affecting update, and a write
// is only applied against the version it was read at.
type Account struct {
	ID            string
	CustomerID    string
	AccountNumber string
	Balance       decimal.Decimal
	Version       int64
	Status        AccountStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (a Account) IsActive() bool {
	return a.Status == AccountStatusActive
}
