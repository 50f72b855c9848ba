package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/api-sage/banking-ledger/internal/domain"
	"github.com/shopspring/decimal"
)

type AccountRepository struct {
	store *Store
}

func NewAccountRepository(store *Store) *AccountRepository {
	return &AccountRepository{store: store}
}

func (r *AccountRepository) Create(ctx context.Context, account domain.Account) (domain.Account, error) {
	err := r.store.locked(ctx, func() error {
		if _, exists := r.store.byAccountNum[account.AccountNumber]; exists {
			return fmt.Errorf("create account: account number %s already exists", account.AccountNumber)
		}
		now := time.Now().UTC()
		account.CreatedAt = now
		account.UpdatedAt = now
		r.store.accounts[account.ID] = account
		r.store.byAccountNum[account.AccountNumber] = account.ID
		return nil
	})
	if err != nil {
		return domain.Account{}, err
	}
	return account, nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id string) (domain.Account, error) {
	var account domain.Account
	err := r.store.locked(ctx, func() error {
		stored, ok := r.store.accounts[id]
		if !ok {
			return domain.ErrAccountNotFound
		}
		account = stored
		return nil
	})
	if err != nil {
		return domain.Account{}, err
	}
	return account, nil
}

func (r *AccountRepository) GetByAccountNumber(ctx context.Context, accountNumber string) (domain.Account, error) {
	var account domain.Account
	err := r.store.locked(ctx, func() error {
		id, ok := r.store.byAccountNum[accountNumber]
		if !ok {
			return domain.ErrAccountNotFound
		}
		account = r.store.accounts[id]
		return nil
	})
	if err != nil {
		return domain.Account{}, err
	}
	return account, nil
}

func (r *AccountRepository) ListByCustomerID(ctx context.Context, customerID string) ([]domain.Account, error) {
	var accounts []domain.Account
	err := r.store.locked(ctx, func() error {
		for _, account := range r.store.accounts {
			if account.CustomerID == customerID {
				accounts = append(accounts, account)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].CreatedAt.Before(accounts[j].CreatedAt)
	})
	return accounts, nil
}

func (r *AccountRepository) List(ctx context.Context) ([]domain.Account, error) {
	var accounts []domain.Account
	err := r.store.locked(ctx, func() error {
		for _, account := range r.store.accounts {
			accounts = append(accounts, account)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(accounts, func(i, j int) bool {
		if !accounts[i].CreatedAt.Equal(accounts[j].CreatedAt) {
			return accounts[i].CreatedAt.Before(accounts[j].CreatedAt)
		}
		return accounts[i].ID < accounts[j].ID
	})
	return accounts, nil
}

func (r *AccountRepository) ConditionalUpdateBalance(ctx context.Context, accountID string, expectedVersion int64, newBalance decimal.Decimal) error {
	return r.store.locked(ctx, func() error {
		account, ok := r.store.accounts[accountID]
		if !ok {
			return domain.ErrAccountNotFound
		}
		if account.Version != expectedVersion {
			return domain.ErrConcurrentModification
		}
		account.Balance = newBalance
		account.Version++
		account.UpdatedAt = time.Now().UTC()
		r.store.accounts[accountID] = account
		return nil
	})
}
