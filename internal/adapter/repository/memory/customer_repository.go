package memory

import (
	"context"
	"sort"
	"time"

	"github.com/api-sage/banking-ledger/internal/domain"
)

type CustomerRepository struct {
	store *Store
}

func NewCustomerRepository(store *Store) *CustomerRepository {
	return &CustomerRepository{store: store}
}

func (r *CustomerRepository) Create(ctx context.Context, customer domain.Customer) (domain.Customer, error) {
	err := r.store.locked(ctx, func() error {
		now := time.Now().UTC()
		customer.CreatedAt = now
		customer.UpdatedAt = now
		r.store.customers[customer.ID] = customer
		return nil
	})
	if err != nil {
		return domain.Customer{}, err
	}
	return customer, nil
}

func (r *CustomerRepository) List(ctx context.Context) ([]domain.Customer, error) {
	var customers []domain.Customer
	err := r.store.locked(ctx, func() error {
		for _, customer := range r.store.customers {
			customers = append(customers, customer)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(customers, func(i, j int) bool {
		if !customers[i].CreatedAt.Equal(customers[j].CreatedAt) {
			return customers[i].CreatedAt.Before(customers[j].CreatedAt)
		}
		return customers[i].ID < customers[j].ID
	})
	return customers, nil
}

func (r *CustomerRepository) GetByID(ctx context.Context, id string) (domain.Customer, error) {
	var customer domain.Customer
	err := r.store.locked(ctx, func() error {
		stored, ok := r.store.customers[id]
		if !ok {
			return domain.ErrCustomerNotFound
		}
		customer = stored
		return nil
	})
	if err != nil {
		return domain.Customer{}, err
	}
	return customer, nil
}
