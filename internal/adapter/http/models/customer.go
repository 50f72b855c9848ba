package models

import (
	"errors"
	"strings"
	"time"

	"github.com/api-sage/banking-ledger/internal/domain"
)

type CreateCustomerRequest struct {
	Name string `json:"name"`
}

func (r CreateCustomerRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return errors.New("name is required")
	}
	return nil
}

type CustomerResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewCustomerResponse(customer domain.Customer) CustomerResponse {
	return CustomerResponse{
		ID:        customer.ID,
		Name:      customer.Name,
		CreatedAt: customer.CreatedAt,
	}
}

func NewCustomerResponses(customers []domain.Customer) []CustomerResponse {
	out := make([]CustomerResponse, 0, len(customers))
	for _, customer := range customers {
		out = append(out, NewCustomerResponse(customer))
	}
	return out
}
