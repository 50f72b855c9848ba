package service_interfaces

import (
	"context"

	"github.com/api-sage/banking-ledger/internal/domain"
	"github.com/shopspring/decimal"
)

// CreateTransferInput carries one logical transfer request. For deposits the
// source may be left empty and for withdrawals the destination may be left
// empty; the orchestrator fills in the system funding account.
type CreateTransferInput struct {
	SourceAccountID      string
	DestinationAccountID string
	Amount               decimal.Decimal
	TransferType         domain.TransferType
	IdempotencyKey       string
	Description          string
	IsInitialDeposit     bool
}

type TransferService interface {
	CreateTransfer(ctx context.Context, input CreateTransferInput) (domain.Transfer, error)
	GetTransfer(ctx context.Context, id string) (domain.Transfer, error)
	ListAccountHistory(ctx context.Context, accountID string, cursor string, limit int) ([]domain.Transfer, string, error)
}
