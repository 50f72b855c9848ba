package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/api-sage/banking-ledger/internal/domain"
	"github.com/api-sage/banking-ledger/internal/logger"
	"github.com/shopspring/decimal"
)

type AccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) Create(ctx context.Context, account domain.Account) (domain.Account, error) {
	logger.Info("account repository create", logger.Fields{
		"customerId":    account.CustomerID,
		"accountNumber": account.AccountNumber,
	})

	const query = `
INSERT INTO accounts (
	id,
	customer_id,
	account_number,
	balance,
	version,
	status
) VALUES ($1, $2, $3, $4, $5, $6)
RETURNING created_at, updated_at`

	var createdAt time.Time
	var updatedAt time.Time

	if err := conn(ctx, r.db).QueryRowContext(
		ctx,
		query,
		account.ID,
		account.CustomerID,
		account.AccountNumber,
		account.Balance.StringFixed(4),
		account.Version,
		account.Status,
	).Scan(&createdAt, &updatedAt); err != nil {
		logger.Error("account repository create failed", err, logger.Fields{
			"customerId":    account.CustomerID,
			"accountNumber": account.AccountNumber,
		})
		return domain.Account{}, fmt.Errorf("create account: %w", err)
	}

	account.CreatedAt = createdAt
	account.UpdatedAt = updatedAt

	return account, nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id string) (domain.Account, error) {
	const query = `
SELECT id, customer_id, account_number, balance, version, status, created_at, updated_at
FROM accounts
WHERE id = $1`

	return r.scanAccount(conn(ctx, r.db).QueryRowContext(ctx, query, id))
}

func (r *AccountRepository) GetByAccountNumber(ctx context.Context, accountNumber string) (domain.Account, error) {
	const query = `
SELECT id, customer_id, account_number, balance, version, status, created_at, updated_at
FROM accounts
WHERE account_number = $1`

	return r.scanAccount(conn(ctx, r.db).QueryRowContext(ctx, query, accountNumber))
}

func (r *AccountRepository) ListByCustomerID(ctx context.Context, customerID string) ([]domain.Account, error) {
	const query = `
SELECT id, customer_id, account_number, balance, version, status, created_at, updated_at
FROM accounts
WHERE customer_id = $1
ORDER BY created_at`

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, customerID)
	if err != nil {
		return nil, fmt.Errorf("list accounts by customer: %w", err)
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		account, err := scanAccountRow(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list accounts by customer: %w", err)
	}

	return accounts, nil
}

func (r *AccountRepository) List(ctx context.Context) ([]domain.Account, error) {
	const query = `
SELECT id, customer_id, account_number, balance, version, status, created_at, updated_at
FROM accounts
ORDER BY created_at, id`

	rows, err := conn(ctx, r.db).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		account, err := scanAccountRow(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	return accounts, nil
}

// ConditionalUpdateBalance is the compare-and-swap behind optimistic
// concurrency: the write lands only against the version it was read at, and
// the version moves forward by exactly one with the balance in the same
// statement.
func (r *AccountRepository) ConditionalUpdateBalance(ctx context.Context, accountID string, expectedVersion int64, newBalance decimal.Decimal) error {
	const query = `
UPDATE accounts
SET balance = $3,
    version = version + 1,
    updated_at = NOW()
WHERE id = $1 AND version = $2`

	result, err := conn(ctx, r.db).ExecContext(ctx, query, accountID, expectedVersion, newBalance.StringFixed(4))
	if err != nil {
		logger.Error("account repository conditional update failed", err, logger.Fields{
			"accountId":       accountID,
			"expectedVersion": expectedVersion,
		})
		return fmt.Errorf("conditional balance update: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("conditional balance update: %w", err)
	}
	if affected == 1 {
		return nil
	}

	// No row matched: either the account is gone or someone moved the version.
	if _, err := r.GetByID(ctx, accountID); err != nil {
		return err
	}

	return domain.ErrConcurrentModification
}

func (r *AccountRepository) scanAccount(row *sql.Row) (domain.Account, error) {
	var (
		account domain.Account
		balance string
		status  string
	)

	err := row.Scan(
		&account.ID,
		&account.CustomerID,
		&account.AccountNumber,
		&balance,
		&account.Version,
		&status,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Account{}, domain.ErrAccountNotFound
		}
		return domain.Account{}, fmt.Errorf("get account: %w", err)
	}

	account.Balance, err = decimal.NewFromString(balance)
	if err != nil {
		return domain.Account{}, fmt.Errorf("parse account balance: %w", err)
	}
	account.Status = domain.AccountStatus(status)

	return account, nil
}

func scanAccountRow(rows *sql.Rows) (domain.Account, error) {
	var (
		account domain.Account
		balance string
		status  string
	)

	err := rows.Scan(
		&account.ID,
		&account.CustomerID,
		&account.AccountNumber,
		&balance,
		&account.Version,
		&status,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return domain.Account{}, fmt.Errorf("scan account: %w", err)
	}

	account.Balance, err = decimal.NewFromString(balance)
	if err != nil {
		return domain.Account{}, fmt.Errorf("parse account balance: %w", err)
	}
	account.Status = domain.AccountStatus(status)

	return account, nil
}
