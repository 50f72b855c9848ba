package service_interfaces

import (
	"context"

	"github.com/api-sage/banking-ledger/internal/domain"
	"github.com/shopspring/decimal"
)

type AccountService interface {
	OpenAccount(ctx context.Context, customerID string, initialDeposit decimal.Decimal) (domain.Account, error)
	GetAccount(ctx context.Context, id string) (domain.Account, error)
	ListCustomerAccounts(ctx context.Context, customerID string) ([]domain.Account, error)
	ListAccounts(ctx context.Context) ([]domain.Account, error)
}
