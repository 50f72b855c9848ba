package memory

import (
	"context"
	"sort"
	"time"

	"github.com/api-sage/banking-ledger/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/banking-ledger/internal/domain"
)

type TransferRepository struct {
	store *Store
}

func NewTransferRepository(store *Store) *TransferRepository {
	return &TransferRepository{store: store}
}

func (r *TransferRepository) Create(ctx context.Context, transfer domain.Transfer) (domain.Transfer, error) {
	err := r.store.locked(ctx, func() error {
		if _, exists := r.store.byIdempotency[transfer.IdempotencyKey]; exists {
			return domain.ErrIdempotencyKeyClaimed
		}
		now := time.Now().UTC()
		transfer.CreatedAt = now
		transfer.UpdatedAt = now
		r.store.transfers[transfer.ID] = transfer
		r.store.byIdempotency[transfer.IdempotencyKey] = transfer.ID
		return nil
	})
	if err != nil {
		return domain.Transfer{}, err
	}
	return transfer, nil
}

func (r *TransferRepository) GetByID(ctx context.Context, id string) (domain.Transfer, error) {
	var transfer domain.Transfer
	err := r.store.locked(ctx, func() error {
		stored, ok := r.store.transfers[id]
		if !ok {
			return domain.ErrRecordNotFound
		}
		transfer = stored
		return nil
	})
	if err != nil {
		return domain.Transfer{}, err
	}
	return transfer, nil
}

func (r *TransferRepository) GetByIdempotencyKey(ctx context.Context, key string) (domain.Transfer, error) {
	var transfer domain.Transfer
	err := r.store.locked(ctx, func() error {
		id, ok := r.store.byIdempotency[key]
		if !ok {
			return domain.ErrRecordNotFound
		}
		transfer = r.store.transfers[id]
		return nil
	})
	if err != nil {
		return domain.Transfer{}, err
	}
	return transfer, nil
}

func (r *TransferRepository) UpdateStatus(ctx context.Context, transferID string, status domain.TransferStatus) error {
	return r.store.locked(ctx, func() error {
		transfer, ok := r.store.transfers[transferID]
		if !ok {
			return domain.ErrRecordNotFound
		}
		now := time.Now().UTC()
		transfer.Status = status
		transfer.UpdatedAt = now
		if status.IsTerminal() {
			transfer.ProcessedAt = &now
		}
		r.store.transfers[transferID] = transfer
		return nil
	})
}

func (r *TransferRepository) ListByAccount(ctx context.Context, accountID string, afterCreatedAt time.Time, afterID string, limit int) (repo_interfaces.HistoryPage, error) {
	var matches []domain.Transfer
	err := r.store.locked(ctx, func() error {
		for _, transfer := range r.store.transfers {
			if transfer.SourceAccountID != accountID && transfer.DestinationAccountID != accountID {
				continue
			}
			matches = append(matches, transfer)
		}
		return nil
	})
	if err != nil {
		return repo_interfaces.HistoryPage{}, err
	}

	sort.Slice(matches, func(i, j int) bool {
		if !matches[i].CreatedAt.Equal(matches[j].CreatedAt) {
			return matches[i].CreatedAt.After(matches[j].CreatedAt)
		}
		return matches[i].ID > matches[j].ID
	})

	var page repo_interfaces.HistoryPage
	for _, transfer := range matches {
		if !afterCreatedAt.IsZero() && !before(transfer, afterCreatedAt, afterID) {
			continue
		}
		page.Transfers = append(page.Transfers, transfer)
		if len(page.Transfers) == limit {
			break
		}
	}

	if len(page.Transfers) == limit {
		last := page.Transfers[len(page.Transfers)-1]
		page.NextCreatedAt = last.CreatedAt
		page.NextID = last.ID
	}

	return page, nil
}

// before reports whether the transfer sorts strictly after the cursor
// position in (created_at, id) descending order.
func before(t domain.Transfer, afterCreatedAt time.Time, afterID string) bool {
	if t.CreatedAt.Before(afterCreatedAt) {
		return true
	}
	return t.CreatedAt.Equal(afterCreatedAt) && t.ID < afterID
}
