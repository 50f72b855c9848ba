package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/api-sage/banking-ledger/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/banking-ledger/internal/domain"
	"github.com/api-sage/banking-ledger/internal/logger"
	"github.com/api-sage/banking-ledger/internal/usecase/service_interfaces"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransferService orchestrates money movement: idempotency-key lookup and
// claim, invariant validation, optimistic balance updates with a bounded
// retry budget, and the PENDING -> COMPLETED/FAILED transition. All mutation
// goes through the injected repositories; both balance writes and the final
// status flip commit inside one atomic unit of the store.
type TransferService struct {
	transferRepo        repo_interfaces.TransferRepository
	accountRepo         repo_interfaces.AccountRepository
	txManager           repo_interfaces.TransactionManager
	systemAccountNumber string
	maxAttempts         int
	retryBackoff        time.Duration
}

func NewTransferService(
	transferRepo repo_interfaces.TransferRepository,
	accountRepo repo_interfaces.AccountRepository,
	txManager repo_interfaces.TransactionManager,
	systemAccountNumber string,
	maxAttempts int,
	retryBackoff time.Duration,
) *TransferService {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	if retryBackoff <= 0 {
		retryBackoff = 20 * time.Millisecond
	}
	return &TransferService{
		transferRepo:        transferRepo,
		accountRepo:         accountRepo,
		txManager:           txManager,
		systemAccountNumber: systemAccountNumber,
		maxAttempts:         maxAttempts,
		retryBackoff:        retryBackoff,
	}
}

func (s *TransferService) CreateTransfer(ctx context.Context, input service_interfaces.CreateTransferInput) (domain.Transfer, error) {
	logger.Info("transfer service create", logger.Fields{
		"sourceAccountId":      input.SourceAccountID,
		"destinationAccountId": input.DestinationAccountID,
		"transferType":         input.TransferType,
		"idempotencyKey":       input.IdempotencyKey,
	})

	input, err := s.resolveEndpoints(ctx, input)
	if err != nil {
		return domain.Transfer{}, err
	}

	if existing, err := s.transferRepo.GetByIdempotencyKey(ctx, input.IdempotencyKey); err == nil {
		return s.resolveReplay(existing, input)
	} else if !errors.Is(err, domain.ErrRecordNotFound) {
		return domain.Transfer{}, fmt.Errorf("idempotency lookup: %w", err)
	}

	source, err := s.accountRepo.GetByID(ctx, input.SourceAccountID)
	if err != nil {
		return domain.Transfer{}, err
	}
	destination, err := s.accountRepo.GetByID(ctx, input.DestinationAccountID)
	if err != nil {
		return domain.Transfer{}, err
	}

	// Rejected before anything is persisted; no FAILED row for bad requests.
	if err := domain.ValidateTransfer(source, destination, input.Amount, input.TransferType); err != nil {
		return domain.Transfer{}, err
	}

	transfer := domain.Transfer{
		ID:                   uuid.NewString(),
		SourceAccountID:      input.SourceAccountID,
		DestinationAccountID: input.DestinationAccountID,
		TransferType:         input.TransferType,
		Amount:               input.Amount,
		Status:               domain.TransferStatusPending,
		IdempotencyKey:       input.IdempotencyKey,
		IsInitialDeposit:     input.IsInitialDeposit,
		Description:          input.Description,
	}

	created, err := s.transferRepo.Create(ctx, transfer)
	if errors.Is(err, domain.ErrIdempotencyKeyClaimed) {
		// Lost the claim race; the winner's row is durable, so surface it.
		existing, lookupErr := s.transferRepo.GetByIdempotencyKey(ctx, input.IdempotencyKey)
		if lookupErr != nil {
			return domain.Transfer{}, fmt.Errorf("idempotency lookup after lost claim: %w", lookupErr)
		}
		return s.resolveReplay(existing, input)
	}
	if err != nil {
		return domain.Transfer{}, err
	}

	if err := s.settle(ctx, created, source, destination); err != nil {
		s.markFailed(ctx, created.ID)
		created.Status = domain.TransferStatusFailed
		transfersTotal.WithLabelValues(string(created.TransferType), string(created.Status)).Inc()
		return created, err
	}

	created.Status = domain.TransferStatusCompleted
	transfersTotal.WithLabelValues(string(created.TransferType), string(created.Status)).Inc()

	return created, nil
}

func (s *TransferService) GetTransfer(ctx context.Context, id string) (domain.Transfer, error) {
	return s.transferRepo.GetByID(ctx, id)
}

func (s *TransferService) ListAccountHistory(ctx context.Context, accountID string, cursor string, limit int) ([]domain.Transfer, string, error) {
	if _, err := s.accountRepo.GetByID(ctx, accountID); err != nil {
		return nil, "", err
	}

	afterCreatedAt, afterID, err := decodeCursor(cursor)
	if err != nil {
		return nil, "", err
	}

	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	page, err := s.transferRepo.ListByAccount(ctx, accountID, afterCreatedAt, afterID, limit)
	if err != nil {
		return nil, "", err
	}

	return page.Transfers, encodeCursor(page.NextCreatedAt, page.NextID), nil
}

// resolveEndpoints fills in the system funding account for deposits and
// withdrawals and rejects malformed requests before any lookup work.
func (s *TransferService) resolveEndpoints(ctx context.Context, input service_interfaces.CreateTransferInput) (service_interfaces.CreateTransferInput, error) {
	if input.IdempotencyKey == "" {
		return input, domain.ErrIdempotencyKeyMissing
	}

	switch input.TransferType {
	case domain.TransferTypeTransfer:
		return input, nil
	case domain.TransferTypeDeposit:
		system, err := s.systemAccount(ctx)
		if err != nil {
			return input, err
		}
		if input.SourceAccountID != "" && input.SourceAccountID != system.ID {
			return input, fmt.Errorf("%w: deposit source must be the funding account", domain.ErrSystemAccountMismatch)
		}
		input.SourceAccountID = system.ID
		return input, nil
	case domain.TransferTypeWithdrawal:
		system, err := s.systemAccount(ctx)
		if err != nil {
			return input, err
		}
		if input.DestinationAccountID != "" && input.DestinationAccountID != system.ID {
			return input, fmt.Errorf("%w: withdrawal destination must be the funding account", domain.ErrSystemAccountMismatch)
		}
		input.DestinationAccountID = system.ID
		return input, nil
	default:
		return input, fmt.Errorf("%w %q", domain.ErrInvalidTransferType, input.TransferType)
	}
}

func (s *TransferService) systemAccount(ctx context.Context) (domain.Account, error) {
	system, err := s.accountRepo.GetByAccountNumber(ctx, s.systemAccountNumber)
	if err != nil {
		return domain.Account{}, fmt.Errorf("resolve system funding account: %w", err)
	}
	return system, nil
}

// resolveReplay decides what key reuse means: identical parameters replay the
// stored result verbatim, a still-pending original reports in progress, and
// different parameters are a conflict.
func (s *TransferService) resolveReplay(existing domain.Transfer, input service_interfaces.CreateTransferInput) (domain.Transfer, error) {
	if !existing.Matches(input.SourceAccountID, input.DestinationAccountID, input.Amount, input.TransferType) {
		return domain.Transfer{}, domain.ErrIdempotencyKeyConflict
	}
	if !existing.Status.IsTerminal() {
		return existing, domain.ErrTransferInProgress
	}

	logger.Info("transfer service idempotent replay", logger.Fields{
		"transferId":     existing.ID,
		"idempotencyKey": existing.IdempotencyKey,
		"status":         existing.Status,
	})

	return existing, nil
}

type balanceUpdate struct {
	accountID       string
	expectedVersion int64
	newBalance      decimal.Decimal
}

// settle drives the optimistic-concurrency loop. Every attempt applies the
// balance updates and the COMPLETED flip in one atomic unit; a version
// conflict rolls the unit back, re-reads both accounts, re-validates against
// the fresh balances and retries after a doubling backoff. The caller's
// deadline and the attempt budget both bound the loop.
func (s *TransferService) settle(ctx context.Context, transfer domain.Transfer, source, destination domain.Account) error {
	backoff := s.retryBackoff

	for attempt := 1; ; attempt++ {
		err := s.applyCompleted(ctx, transfer, source, destination)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrConcurrentModification) {
			return err
		}

		occConflictsTotal.Inc()
		logger.Info("transfer service version conflict", logger.Fields{
			"transferId": transfer.ID,
			"attempt":    attempt,
		})

		if attempt >= s.maxAttempts {
			return domain.ErrConcurrencyExhausted
		}

		source, err = s.accountRepo.GetByID(ctx, transfer.SourceAccountID)
		if err != nil {
			return err
		}
		destination, err = s.accountRepo.GetByID(ctx, transfer.DestinationAccountID)
		if err != nil {
			return err
		}

		// Invariants may no longer hold against the fresh balances.
		if err := domain.ValidateTransfer(source, destination, transfer.Amount, transfer.TransferType); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return domain.ErrConcurrencyExhausted
		case <-time.After(backoff):
		}
		backoff *= 2
	}
}

// applyCompleted commits the balance changes and the COMPLETED transition
// together. The system funding account is never written: deposits skip the
// debit and withdrawals skip the credit, so funds enter and leave the closed
// system only through those two types. When both accounts change, updates are
// applied in ascending account-id order.
func (s *TransferService) applyCompleted(ctx context.Context, transfer domain.Transfer, source, destination domain.Account) error {
	updates := make([]balanceUpdate, 0, 2)
	if transfer.TransferType != domain.TransferTypeDeposit {
		updates = append(updates, balanceUpdate{
			accountID:       source.ID,
			expectedVersion: source.Version,
			newBalance:      source.Balance.Sub(transfer.Amount),
		})
	}
	if transfer.TransferType != domain.TransferTypeWithdrawal {
		updates = append(updates, balanceUpdate{
			accountID:       destination.ID,
			expectedVersion: destination.Version,
			newBalance:      destination.Balance.Add(transfer.Amount),
		})
	}
	sort.Slice(updates, func(i, j int) bool {
		return updates[i].accountID < updates[j].accountID
	})

	return s.txManager.WithinTransaction(ctx, func(txCtx context.Context) error {
		for _, update := range updates {
			if err := s.accountRepo.ConditionalUpdateBalance(txCtx, update.accountID, update.expectedVersion, update.newBalance); err != nil {
				return err
			}
		}
		return s.transferRepo.UpdateStatus(txCtx, transfer.ID, domain.TransferStatusCompleted)
	})
}

// markFailed records the terminal FAILED state on a detached context: a
// caller whose deadline expired mid-settlement must not be able to strand the
// claimed row in PENDING.
func (s *TransferService) markFailed(ctx context.Context, transferID string) {
	detached, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := s.transferRepo.UpdateStatus(detached, transferID, domain.TransferStatusFailed); err != nil {
		logger.Error("transfer service mark failed", err, logger.Fields{
			"transferId": transferID,
		})
	}
}
