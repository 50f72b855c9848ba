package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/api-sage/banking-ledger/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/banking-ledger/internal/domain"
	"github.com/api-sage/banking-ledger/internal/logger"
	"github.com/api-sage/banking-ledger/internal/usecase/service_interfaces"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AccountService struct {
	accountRepo     repo_interfaces.AccountRepository
	customerRepo    repo_interfaces.CustomerRepository
	transferService service_interfaces.TransferService
}

func NewAccountService(
	accountRepo repo_interfaces.AccountRepository,
	customerRepo repo_interfaces.CustomerRepository,
	transferService service_interfaces.TransferService,
) *AccountService {
	return &AccountService{
		accountRepo:     accountRepo,
		customerRepo:    customerRepo,
		transferService: transferService,
	}
}

// OpenAccount creates an account for an existing customer. The account
// starts at zero; a positive initial deposit is booked as a DEPOSIT transfer
// marked is_initial_deposit, so account opening leaves the same audit trail
// as any other money movement.
func (s *AccountService) OpenAccount(ctx context.Context, customerID string, initialDeposit decimal.Decimal) (domain.Account, error) {
	logger.Info("account service open account", logger.Fields{
		"customerId":     customerID,
		"initialDeposit": initialDeposit,
	})

	if initialDeposit.IsNegative() || !domain.ValidAmountScale(initialDeposit) {
		return domain.Account{}, domain.ErrInvalidAmount
	}

	if _, err := s.customerRepo.GetByID(ctx, customerID); err != nil {
		return domain.Account{}, err
	}

	accountNumber, err := generateAccountNumber()
	if err != nil {
		return domain.Account{}, err
	}

	account, err := s.accountRepo.Create(ctx, domain.Account{
		ID:            uuid.NewString(),
		CustomerID:    customerID,
		AccountNumber: accountNumber,
		Balance:       decimal.Zero,
		Version:       1,
		Status:        domain.AccountStatusActive,
	})
	if err != nil {
		return domain.Account{}, err
	}

	if initialDeposit.IsPositive() {
		if _, err := s.transferService.CreateTransfer(ctx, service_interfaces.CreateTransferInput{
			DestinationAccountID: account.ID,
			Amount:               initialDeposit,
			TransferType:         domain.TransferTypeDeposit,
			IdempotencyKey:       uuid.NewString(),
			Description:          "Initial deposit",
			IsInitialDeposit:     true,
		}); err != nil {
			return domain.Account{}, fmt.Errorf("book initial deposit: %w", err)
		}

		// Re-read for the post-deposit balance and version.
		account, err = s.accountRepo.GetByID(ctx, account.ID)
		if err != nil {
			return domain.Account{}, err
		}
	}

	return account, nil
}

func (s *AccountService) GetAccount(ctx context.Context, id string) (domain.Account, error) {
	return s.accountRepo.GetByID(ctx, id)
}

func (s *AccountService) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	return s.accountRepo.List(ctx)
}

func (s *AccountService) ListCustomerAccounts(ctx context.Context, customerID string) ([]domain.Account, error) {
	if _, err := s.customerRepo.GetByID(ctx, customerID); err != nil {
		return nil, err
	}
	return s.accountRepo.ListByCustomerID(ctx, customerID)
}

func generateAccountNumber() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(10_000_000_000))
	if err != nil {
		return "", fmt.Errorf("generate account number: %w", err)
	}
	return fmt.Sprintf("%010d", n.Int64()), nil
}
