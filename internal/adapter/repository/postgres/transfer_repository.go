package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/api-sage/banking-ledger/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/banking-ledger/internal/domain"
	"github.com/api-sage/banking-ledger/internal/logger"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

const transferColumns = `id, source_account_id, destination_account_id, transfer_type, amount,
status, idempotency_key, is_initial_deposit, description, created_at, updated_at, processed_at`

type TransferRepository struct {
	db *sql.DB
}

func NewTransferRepository(db *sql.DB) *TransferRepository {
	return &TransferRepository{db: db}
}

func (r *TransferRepository) Create(ctx context.Context, transfer domain.Transfer) (domain.Transfer, error) {
	logger.Info("transfer repository create", logger.Fields{
		"transferId":     transfer.ID,
		"idempotencyKey": transfer.IdempotencyKey,
		"transferType":   transfer.TransferType,
		"status":         transfer.Status,
	})

	const query = `
INSERT INTO transfers (
	id,
	source_account_id,
	destination_account_id,
	transfer_type,
	amount,
	status,
	idempotency_key,
	is_initial_deposit,
	description
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING created_at, updated_at`

	var createdAt time.Time
	var updatedAt time.Time

	if err := conn(ctx, r.db).QueryRowContext(
		ctx,
		query,
		transfer.ID,
		transfer.SourceAccountID,
		transfer.DestinationAccountID,
		transfer.TransferType,
		transfer.Amount.StringFixed(4),
		transfer.Status,
		transfer.IdempotencyKey,
		transfer.IsInitialDeposit,
		transfer.Description,
	).Scan(&createdAt, &updatedAt); err != nil {
		if isUniqueViolation(err) {
			return domain.Transfer{}, domain.ErrIdempotencyKeyClaimed
		}
		logger.Error("transfer repository create failed", err, logger.Fields{
			"transferId":     transfer.ID,
			"idempotencyKey": transfer.IdempotencyKey,
		})
		return domain.Transfer{}, fmt.Errorf("create transfer: %w", err)
	}

	transfer.CreatedAt = createdAt
	transfer.UpdatedAt = updatedAt

	return transfer, nil
}

func (r *TransferRepository) GetByID(ctx context.Context, id string) (domain.Transfer, error) {
	query := fmt.Sprintf(`SELECT %s FROM transfers WHERE id = $1`, transferColumns)
	return scanTransferRow(conn(ctx, r.db).QueryRowContext(ctx, query, id))
}

func (r *TransferRepository) GetByIdempotencyKey(ctx context.Context, key string) (domain.Transfer, error) {
	query := fmt.Sprintf(`SELECT %s FROM transfers WHERE idempotency_key = $1`, transferColumns)
	return scanTransferRow(conn(ctx, r.db).QueryRowContext(ctx, query, key))
}

func (r *TransferRepository) UpdateStatus(ctx context.Context, transferID string, status domain.TransferStatus) error {
	logger.Info("transfer repository update status", logger.Fields{
		"transferId": transferID,
		"status":     status,
	})

	const query = `
UPDATE transfers
SET status = $2,
    updated_at = NOW(),
    processed_at = CASE
        WHEN $2 IN ('COMPLETED', 'FAILED') THEN NOW()
        ELSE processed_at
    END
WHERE id = $1`

	result, err := conn(ctx, r.db).ExecContext(ctx, query, transferID, status)
	if err != nil {
		logger.Error("transfer repository update status failed", err, logger.Fields{
			"transferId": transferID,
			"status":     status,
		})
		return fmt.Errorf("update transfer status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update transfer status: %w", err)
	}
	if affected == 0 {
		return domain.ErrRecordNotFound
	}

	return nil
}

func (r *TransferRepository) ListByAccount(ctx context.Context, accountID string, afterCreatedAt time.Time, afterID string, limit int) (repo_interfaces.HistoryPage, error) {
	query := fmt.Sprintf(`
SELECT %s
FROM transfers
WHERE (source_account_id = $1 OR destination_account_id = $1)
ORDER BY created_at DESC, id DESC
LIMIT $2`, transferColumns)
	args := []any{accountID, limit}

	if !afterCreatedAt.IsZero() {
		query = fmt.Sprintf(`
SELECT %s
FROM transfers
WHERE (source_account_id = $1 OR destination_account_id = $1)
  AND (created_at, id) < ($2, $3)
ORDER BY created_at DESC, id DESC
LIMIT $4`, transferColumns)
		args = []any{accountID, afterCreatedAt, afterID, limit}
	}

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return repo_interfaces.HistoryPage{}, fmt.Errorf("list transfers by account: %w", err)
	}
	defer rows.Close()

	var page repo_interfaces.HistoryPage
	for rows.Next() {
		transfer, err := scanTransferRows(rows)
		if err != nil {
			return repo_interfaces.HistoryPage{}, err
		}
		page.Transfers = append(page.Transfers, transfer)
	}
	if err := rows.Err(); err != nil {
		return repo_interfaces.HistoryPage{}, fmt.Errorf("list transfers by account: %w", err)
	}

	if len(page.Transfers) == limit {
		last := page.Transfers[len(page.Transfers)-1]
		page.NextCreatedAt = last.CreatedAt
		page.NextID = last.ID
	}

	return page, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == "23505"
	}
	return false
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransfer(row rowScanner) (domain.Transfer, error) {
	var (
		transfer    domain.Transfer
		kind        string
		amount      string
		status      string
		processedAt sql.NullTime
	)

	err := row.Scan(
		&transfer.ID,
		&transfer.SourceAccountID,
		&transfer.DestinationAccountID,
		&kind,
		&amount,
		&status,
		&transfer.IdempotencyKey,
		&transfer.IsInitialDeposit,
		&transfer.Description,
		&transfer.CreatedAt,
		&transfer.UpdatedAt,
		&processedAt,
	)
	if err != nil {
		return domain.Transfer{}, err
	}

	transfer.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return domain.Transfer{}, fmt.Errorf("parse transfer amount: %w", err)
	}
	transfer.TransferType = domain.TransferType(kind)
	transfer.Status = domain.TransferStatus(status)
	if processedAt.Valid {
		value := processedAt.Time
		transfer.ProcessedAt = &value
	}

	return transfer, nil
}

func scanTransferRow(row *sql.Row) (domain.Transfer, error) {
	transfer, err := scanTransfer(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Transfer{}, domain.ErrRecordNotFound
		}
		return domain.Transfer{}, fmt.Errorf("get transfer: %w", err)
	}
	return transfer, nil
}

func scanTransferRows(rows *sql.Rows) (domain.Transfer, error) {
	transfer, err := scanTransfer(rows)
	if err != nil {
		return domain.Transfer{}, fmt.Errorf("scan transfer: %w", err)
	}
	return transfer, nil
}
