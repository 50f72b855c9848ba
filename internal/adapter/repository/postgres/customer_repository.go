package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/api-sage/banking-ledger/internal/domain"
	"github.com/api-sage/banking-ledger/internal/logger"
)

type CustomerRepository struct {
	db *sql.DB
}

func NewCustomerRepository(db *sql.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

func (r *CustomerRepository) Create(ctx context.Context, customer domain.Customer) (domain.Customer, error) {
	logger.Info("customer repository create", logger.Fields{
		"customerId": customer.ID,
	})

	const query = `
INSERT INTO customers (id, name)
VALUES ($1, $2)
RETURNING created_at, updated_at`

	var createdAt time.Time
	var updatedAt time.Time

	if err := conn(ctx, r.db).QueryRowContext(ctx, query, customer.ID, customer.Name).Scan(&createdAt, &updatedAt); err != nil {
		logger.Error("customer repository create failed", err, logger.Fields{
			"customerId": customer.ID,
		})
		return domain.Customer{}, fmt.Errorf("create customer: %w", err)
	}

	customer.CreatedAt = createdAt
	customer.UpdatedAt = updatedAt

	return customer, nil
}

func (r *CustomerRepository) GetByID(ctx context.Context, id string) (domain.Customer, error) {
	const query = `
SELECT id, name, created_at, updated_at
FROM customers
WHERE id = $1`

	var customer domain.Customer
	err := conn(ctx, r.db).QueryRowContext(ctx, query, id).Scan(
		&customer.ID,
		&customer.Name,
		&customer.CreatedAt,
		&customer.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Customer{}, domain.ErrCustomerNotFound
		}
		return domain.Customer{}, fmt.Errorf("get customer: %w", err)
	}

	return customer, nil
}

func (r *CustomerRepository) List(ctx context.Context) ([]domain.Customer, error) {
	const query = `
SELECT id, name, created_at, updated_at
FROM customers
ORDER BY created_at, id`

	rows, err := conn(ctx, r.db).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	var customers []domain.Customer
	for rows.Next() {
		var customer domain.Customer
		if err := rows.Scan(&customer.ID, &customer.Name, &customer.CreatedAt, &customer.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		customers = append(customers, customer)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}

	return customers, nil
}
