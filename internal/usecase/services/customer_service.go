package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/api-sage/banking-ledger/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/banking-ledger/internal/domain"
	"github.com/google/uuid"
)

type CustomerService struct {
	customerRepo repo_interfaces.CustomerRepository
}

func NewCustomerService(customerRepo repo_interfaces.CustomerRepository) *CustomerService {
	return &CustomerService{customerRepo: customerRepo}
}

func (s *CustomerService) CreateCustomer(ctx context.Context, name string) (domain.Customer, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Customer{}, fmt.Errorf("customer name is required")
	}

	return s.customerRepo.Create(ctx, domain.Customer{
		ID:   uuid.NewString(),
		Name: name,
	})
}

func (s *CustomerService) GetCustomer(ctx context.Context, id string) (domain.Customer, error) {
	return s.customerRepo.GetByID(ctx, id)
}

func (s *CustomerService) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	return s.customerRepo.List(ctx)
}
