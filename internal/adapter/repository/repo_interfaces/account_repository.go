package repo_interfaces

import (
	"context"

	"github.com/api-sage/banking-ledger/internal/domain"
	"github.com/shopspring/decimal"
)

type AccountRepository interface {
	Create(ctx context.Context, account domain.Account) (domain.Account, error)
	GetByID(ctx context.Context, id string) (domain.Account, error)
	GetByAccountNumber(ctx context.Context, accountNumber string) (domain.Account, error)
	ListByCustomerID(ctx context.Context, customerID string) ([]domain.Account, error)
	List(ctx context.Context) ([]domain.Account, error)
	// ConditionalUpdateBalance sets the balance and bumps the version by one,
	// but only if the stored version still equals expectedVersion. A lost
	// race returns domain.ErrConcurrentModification with no row modified.
	ConditionalUpdateBalance(ctx context.Context, accountID string, expectedVersion int64, newBalance decimal.Decimal) error
}
