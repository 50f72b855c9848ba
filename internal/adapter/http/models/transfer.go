package models

import (
	"errors"
	"strings"
	"time"

	"github.com/api-sage/banking-ledger/internal/domain"
	"github.com/api-sage/banking-ledger/internal/usecase/service_interfaces"
	"github.com/shopspring/decimal"
)

type CreateTransferRequest struct {
	SourceAccountID      string          `json:"sourceAccountId"`
	DestinationAccountID string          `json:"destinationAccountId"`
	Amount               decimal.Decimal `json:"amount"`
	TransferType         string          `json:"transferType"`
	IdempotencyKey       string          `json:"idempotencyKey"`
	Description          string          `json:"description"`
}

func (r CreateTransferRequest) Validate() error {
	var errs []string

	transferType := domain.TransferType(strings.ToUpper(strings.TrimSpace(r.TransferType)))
	switch transferType {
	case domain.TransferTypeTransfer:
		if strings.TrimSpace(r.SourceAccountID) == "" {
			errs = append(errs, "sourceAccountId is required")
		}
		if strings.TrimSpace(r.DestinationAccountID) == "" {
			errs = append(errs, "destinationAccountId is required")
		}
	case domain.TransferTypeDeposit:
		if strings.TrimSpace(r.DestinationAccountID) == "" {
			errs = append(errs, "destinationAccountId is required")
		}
	case domain.TransferTypeWithdrawal:
		if strings.TrimSpace(r.SourceAccountID) == "" {
			errs = append(errs, "sourceAccountId is required")
		}
	default:
		errs = append(errs, "transferType must be one of DEPOSIT, WITHDRAWAL, TRANSFER")
	}

	if r.Amount.LessThanOrEqual(decimal.Zero) {
		errs = append(errs, "amount must be greater than zero")
	} else if !domain.ValidAmountScale(r.Amount) {
		errs = append(errs, "amount must have at most four decimal places")
	}
	if strings.TrimSpace(r.IdempotencyKey) == "" {
		errs = append(errs, "idempotencyKey is required")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func (r CreateTransferRequest) ToInput() service_interfaces.CreateTransferInput {
	return service_interfaces.CreateTransferInput{
		SourceAccountID:      strings.TrimSpace(r.SourceAccountID),
		DestinationAccountID: strings.TrimSpace(r.DestinationAccountID),
		Amount:               r.Amount,
		TransferType:         domain.TransferType(strings.ToUpper(strings.TrimSpace(r.TransferType))),
		IdempotencyKey:       strings.TrimSpace(r.IdempotencyKey),
		Description:          strings.TrimSpace(r.Description),
	}
}

type TransferResponse struct {
	ID                   string     `json:"id"`
	SourceAccountID      string     `json:"sourceAccountId"`
	DestinationAccountID string     `json:"destinationAccountId"`
	TransferType         string     `json:"transferType"`
	Amount               string     `json:"amount"`
	Status               string     `json:"status"`
	IdempotencyKey       string     `json:"idempotencyKey"`
	IsInitialDeposit     bool       `json:"isInitialDeposit"`
	Description          string     `json:"description"`
	CreatedAt            time.Time  `json:"createdAt"`
	ProcessedAt          *time.Time `json:"processedAt,omitempty"`
}

func NewTransferResponse(transfer domain.Transfer) TransferResponse {
	return TransferResponse{
		ID:                   transfer.ID,
		SourceAccountID:      transfer.SourceAccountID,
		DestinationAccountID: transfer.DestinationAccountID,
		TransferType:         string(transfer.TransferType),
		Amount:               transfer.Amount.StringFixed(4),
		Status:               string(transfer.Status),
		IdempotencyKey:       transfer.IdempotencyKey,
		IsInitialDeposit:     transfer.IsInitialDeposit,
		Description:          transfer.Description,
		CreatedAt:            transfer.CreatedAt,
		ProcessedAt:          transfer.ProcessedAt,
	}
}

func NewTransferResponses(transfers []domain.Transfer) []TransferResponse {
	out := make([]TransferResponse, 0, len(transfers))
	for _, transfer := range transfers {
		out = append(out, NewTransferResponse(transfer))
	}
	return out
}
