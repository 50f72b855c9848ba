package repo_interfaces

import "context"

// TransactionManager runs fn inside one atomic unit of the ledger store. All
// repository calls made with the context passed to fn join that unit; an
// error from fn rolls every one of them back. The transfer orchestrator uses
// this to commit both balance updates and the status flip together.
type TransactionManager interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
