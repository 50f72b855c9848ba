package models

import (
	"errors"
	"strings"
	"time"

	"github.com/api-sage/banking-ledger/internal/domain"
	"github.com/shopspring/decimal"
)

type CreateAccountRequest struct {
	CustomerID     string          `json:"customerId"`
	InitialDeposit decimal.Decimal `json:"initialDeposit"`
}

func (r CreateAccountRequest) Validate() error {
	var errs []string

	if strings.TrimSpace(r.CustomerID) == "" {
		errs = append(errs, "customerId is required")
	}
	if r.InitialDeposit.IsNegative() {
		errs = append(errs, "initialDeposit cannot be negative")
	} else if !domain.ValidAmountScale(r.InitialDeposit) {
		errs = append(errs, "initialDeposit must have at most four decimal places")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

type AccountResponse struct {
	ID            string    `json:"id"`
	CustomerID    string    `json:"customerId"`
	AccountNumber string    `json:"accountNumber"`
	Balance       string    `json:"balance"`
	Version       int64     `json:"version"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
}

func NewAccountResponse(account domain.Account) AccountResponse {
	return AccountResponse{
		ID:            account.ID,
		CustomerID:    account.CustomerID,
		AccountNumber: account.AccountNumber,
		Balance:       account.Balance.StringFixed(4),
		Version:       account.Version,
		Status:        string(account.Status),
		CreatedAt:     account.CreatedAt,
	}
}

func NewAccountResponses(accounts []domain.Account) []AccountResponse {
	out := make([]AccountResponse, 0, len(accounts))
	for _, account := range accounts {
		out = append(out, NewAccountResponse(account))
	}
	return out
}
