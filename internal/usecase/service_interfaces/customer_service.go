package service_interfaces

import (
	"context"

	"github.com/api-sage/banking-ledger/internal/domain"
)

type CustomerService interface {
	CreateCustomer(ctx context.Context, name string) (domain.Customer, error)
	GetCustomer(ctx context.Context, id string) (domain.Customer, error)
	ListCustomers(ctx context.Context) ([]domain.Customer, error)
}
