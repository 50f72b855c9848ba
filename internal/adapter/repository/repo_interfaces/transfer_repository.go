package repo_interfaces

import (
	"context"
	"time"

	"github.com/api-sage/banking-ledger/internal/domain"
)

// HistoryPage is one keyset-paginated slice of an account's transfer history,
// newest first. NextCreatedAt/NextID point at the last row returned and seed
// the next page; both are zero on the final page.
type HistoryPage struct {
	Transfers     []domain.Transfer
	NextCreatedAt time.Time
	NextID        string
}

type TransferRepository interface {
	// Create inserts the transfer and atomically claims its idempotency key.
	// Losing the claim to a concurrent insert returns
	// domain.ErrIdempotencyKeyClaimed.
	Create(ctx context.Context, transfer domain.Transfer) (domain.Transfer, error)
	GetByID(ctx context.Context, id string) (domain.Transfer, error)
	GetByIdempotencyKey(ctx context.Context, key string) (domain.Transfer, error)
	UpdateStatus(ctx context.Context, transferID string, status domain.TransferStatus) error
	// ListByAccount returns transfers where the account is source or
	// destination, ordered by (created_at, id) descending, starting strictly
	// after the given position when one is supplied.
	ListByAccount(ctx context.Context, accountID string, afterCreatedAt time.Time, afterID string, limit int) (HistoryPage, error)
}
