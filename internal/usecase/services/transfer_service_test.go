package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/api-sage/banking-ledger/internal/adapter/repository/memory"
	"github.com/api-sage/banking-ledger/internal/domain"
	"github.com/api-sage/banking-ledger/internal/usecase/service_interfaces"
	"github.com/api-sage/banking-ledger/internal/usecase/services"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

const systemAccountNumber = "0000000001"

type fixture struct {
	store     *memory.Store
	accounts  *memory.AccountRepository
	transfers *memory.TransferRepository
	service   *services.TransferService
	system    domain.Account
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.NewStore()
	accounts := memory.NewAccountRepository(store)
	transfers := memory.NewTransferRepository(store)

	system, err := accounts.Create(context.Background(), domain.Account{
		ID:            "00000000-0000-0000-0000-000000000001",
		CustomerID:    "00000000-0000-0000-0000-000000000000",
		AccountNumber: systemAccountNumber,
		Balance:       decimal.Zero,
		Version:       1,
		Status:        domain.AccountStatusActive,
	})
	require.NoError(t, err)

	return &fixture{
		store:     store,
		accounts:  accounts,
		transfers: transfers,
		service:   services.NewTransferService(transfers, accounts, store, systemAccountNumber, 10, time.Millisecond),
		system:    system,
	}
}

func (f *fixture) newAccount(t *testing.T, balance string) domain.Account {
	t.Helper()
	account, err := f.accounts.Create(context.Background(), domain.Account{
		ID:            uuid.NewString(),
		CustomerID:    uuid.NewString(),
		AccountNumber: uuid.NewString()[:10],
		Balance:       decimal.RequireFromString(balance),
		Version:       1,
		Status:        domain.AccountStatusActive,
	})
	require.NoError(t, err)
	return account
}

func (f *fixture) balance(t *testing.T, accountID string) (decimal.Decimal, int64) {
	t.Helper()
	account, err := f.accounts.GetByID(context.Background(), accountID)
	require.NoError(t, err)
	return account.Balance, account.Version
}

func transferInput(source, destination domain.Account, amount string) service_interfaces.CreateTransferInput {
	return service_interfaces.CreateTransferInput{
		SourceAccountID:      source.ID,
		DestinationAccountID: destination.ID,
		Amount:               decimal.RequireFromString(amount),
		TransferType:         domain.TransferTypeTransfer,
		IdempotencyKey:       uuid.NewString(),
	}
}

func TestCreateTransferHappyPath(t *testing.T) {
	f := newFixture(t)
	source := f.newAccount(t, "100.00")
	destination := f.newAccount(t, "50.00")

	transfer, err := f.service.CreateTransfer(context.Background(), transferInput(source, destination, "30.00"))
	require.NoError(t, err)
	assert.Equal(t, domain.TransferStatusCompleted, transfer.Status)

	sourceBalance, sourceVersion := f.balance(t, source.ID)
	assert.True(t, sourceBalance.Equal(decimal.RequireFromString("70.00")))
	assert.Equal(t, int64(2), sourceVersion)

	destinationBalance, destinationVersion := f.balance(t, destination.ID)
	assert.True(t, destinationBalance.Equal(decimal.RequireFromString("80.00")))
	assert.Equal(t, int64(2), destinationVersion)

	stored, err := f.service.GetTransfer(context.Background(), transfer.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TransferStatusCompleted, stored.Status)
	require.NotNil(t, stored.ProcessedAt)
}

func TestCreateTransferInsufficientFundsLeavesNoRecord(t *testing.T) {
	f := newFixture(t)
	source := f.newAccount(t, "10.00")
	destination := f.newAccount(t, "0.00")

	input := transferInput(source, destination, "10.01")
	_, err := f.service.CreateTransfer(context.Background(), input)
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)

	// Rejected before the claim: the key stays free and no row is written.
	_, err = f.transfers.GetByIdempotencyKey(context.Background(), input.IdempotencyKey)
	require.ErrorIs(t, err, domain.ErrRecordNotFound)

	sourceBalance, sourceVersion := f.balance(t, source.ID)
	assert.True(t, sourceBalance.Equal(decimal.RequireFromString("10.00")))
	assert.Equal(t, int64(1), sourceVersion)
}

func TestCreateTransferSelfTransferRejected(t *testing.T) {
	f := newFixture(t)
	account := f.newAccount(t, "100.00")

	_, err := f.service.CreateTransfer(context.Background(), transferInput(account, account, "10.00"))
	require.ErrorIs(t, err, domain.ErrSelfTransfer)
}

func TestCreateTransferInactiveAccountRejected(t *testing.T) {
	f := newFixture(t)
	source := f.newAccount(t, "100.00")

	frozen, err := f.accounts.Create(context.Background(), domain.Account{
		ID:            uuid.NewString(),
		CustomerID:    uuid.NewString(),
		AccountNumber: uuid.NewString()[:10],
		Balance:       decimal.Zero,
		Version:       1,
		Status:        domain.AccountStatusFrozen,
	})
	require.NoError(t, err)

	_, err = f.service.CreateTransfer(context.Background(), transferInput(source, frozen, "10.00"))
	require.ErrorIs(t, err, domain.ErrAccountInactive)
}

func TestCreateTransferRequiresIdempotencyKey(t *testing.T) {
	f := newFixture(t)
	source := f.newAccount(t, "100.00")
	destination := f.newAccount(t, "0.00")

	input := transferInput(source, destination, "10.00")
	input.IdempotencyKey = ""
	_, err := f.service.CreateTransfer(context.Background(), input)
	require.ErrorIs(t, err, domain.ErrIdempotencyKeyMissing)
}

func TestCreateTransferRejectsUnsupportedType(t *testing.T) {
	f := newFixture(t)
	source := f.newAccount(t, "100.00")
	destination := f.newAccount(t, "0.00")

	input := transferInput(source, destination, "10.00")
	input.TransferType = "TELEPORT"
	_, err := f.service.CreateTransfer(context.Background(), input)
	require.ErrorIs(t, err, domain.ErrInvalidTransferType)
}

func TestCreateTransferRejectsSubScaleAmount(t *testing.T) {
	f := newFixture(t)
	source := f.newAccount(t, "100.00")
	destination := f.newAccount(t, "50.00")

	input := transferInput(source, destination, "10.00005")
	_, err := f.service.CreateTransfer(context.Background(), input)
	require.ErrorIs(t, err, domain.ErrInvalidAmount)

	// Nothing persisted and nothing moved.
	_, err = f.transfers.GetByIdempotencyKey(context.Background(), input.IdempotencyKey)
	require.ErrorIs(t, err, domain.ErrRecordNotFound)

	sourceBalance, sourceVersion := f.balance(t, source.ID)
	assert.True(t, sourceBalance.Equal(decimal.RequireFromString("100.00")))
	assert.Equal(t, int64(1), sourceVersion)
}

func TestCreateTransferSequentialReplayReturnsStoredResult(t *testing.T) {
	f := newFixture(t)
	source := f.newAccount(t, "100.00")
	destination := f.newAccount(t, "0.00")

	input := transferInput(source, destination, "25.00")
	first, err := f.service.CreateTransfer(context.Background(), input)
	require.NoError(t, err)

	second, err := f.service.CreateTransfer(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, domain.TransferStatusCompleted, second.Status)

	// Money moved exactly once.
	sourceBalance, sourceVersion := f.balance(t, source.ID)
	assert.True(t, sourceBalance.Equal(decimal.RequireFromString("75.00")))
	assert.Equal(t, int64(2), sourceVersion)
}

func TestCreateTransferKeyReuseWithDifferentParametersConflicts(t *testing.T) {
	f := newFixture(t)
	source := f.newAccount(t, "100.00")
	destination := f.newAccount(t, "0.00")

	input := transferInput(source, destination, "25.00")
	_, err := f.service.CreateTransfer(context.Background(), input)
	require.NoError(t, err)

	altered := input
	altered.Amount = decimal.RequireFromString("26.00")
	_, err = f.service.CreateTransfer(context.Background(), altered)
	require.ErrorIs(t, err, domain.ErrIdempotencyKeyConflict)

	sourceBalance, _ := f.balance(t, source.ID)
	assert.True(t, sourceBalance.Equal(decimal.RequireFromString("75.00")))
}

func TestCreateTransferReplayWhilePendingReportsInProgress(t *testing.T) {
	f := newFixture(t)
	source := f.newAccount(t, "100.00")
	destination := f.newAccount(t, "0.00")

	input := transferInput(source, destination, "25.00")
	_, err := f.transfers.Create(context.Background(), domain.Transfer{
		ID:                   uuid.NewString(),
		SourceAccountID:      input.SourceAccountID,
		DestinationAccountID: input.DestinationAccountID,
		TransferType:         input.TransferType,
		Amount:               input.Amount,
		Status:               domain.TransferStatusPending,
		IdempotencyKey:       input.IdempotencyKey,
	})
	require.NoError(t, err)

	_, err = f.service.CreateTransfer(context.Background(), input)
	require.ErrorIs(t, err, domain.ErrTransferInProgress)
}

func TestCreateTransferDepositCreditsDestinationOnly(t *testing.T) {
	f := newFixture(t)
	destination := f.newAccount(t, "0.00")

	transfer, err := f.service.CreateTransfer(context.Background(), service_interfaces.CreateTransferInput{
		DestinationAccountID: destination.ID,
		Amount:               decimal.RequireFromString("500.00"),
		TransferType:         domain.TransferTypeDeposit,
		IdempotencyKey:       uuid.NewString(),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TransferStatusCompleted, transfer.Status)
	assert.Equal(t, f.system.ID, transfer.SourceAccountID)

	destinationBalance, destinationVersion := f.balance(t, destination.ID)
	assert.True(t, destinationBalance.Equal(decimal.RequireFromString("500.00")))
	assert.Equal(t, int64(2), destinationVersion)

	// The funding account is externally balanced and never written.
	systemBalance, systemVersion := f.balance(t, f.system.ID)
	assert.True(t, systemBalance.Equal(decimal.Zero))
	assert.Equal(t, int64(1), systemVersion)
}

func TestCreateTransferDepositRejectsForeignSource(t *testing.T) {
	f := newFixture(t)
	destination := f.newAccount(t, "0.00")
	other := f.newAccount(t, "100.00")

	_, err := f.service.CreateTransfer(context.Background(), service_interfaces.CreateTransferInput{
		SourceAccountID:      other.ID,
		DestinationAccountID: destination.ID,
		Amount:               decimal.RequireFromString("10.00"),
		TransferType:         domain.TransferTypeDeposit,
		IdempotencyKey:       uuid.NewString(),
	})
	require.ErrorIs(t, err, domain.ErrSystemAccountMismatch)
}

func TestCreateTransferWithdrawalDebitsSourceOnly(t *testing.T) {
	f := newFixture(t)
	source := f.newAccount(t, "80.00")

	transfer, err := f.service.CreateTransfer(context.Background(), service_interfaces.CreateTransferInput{
		SourceAccountID: source.ID,
		Amount:          decimal.RequireFromString("30.00"),
		TransferType:    domain.TransferTypeWithdrawal,
		IdempotencyKey:  uuid.NewString(),
	})
	require.NoError(t, err)
	assert.Equal(t, f.system.ID, transfer.DestinationAccountID)

	sourceBalance, sourceVersion := f.balance(t, source.ID)
	assert.True(t, sourceBalance.Equal(decimal.RequireFromString("50.00")))
	assert.Equal(t, int64(2), sourceVersion)

	systemBalance, systemVersion := f.balance(t, f.system.ID)
	assert.True(t, systemBalance.Equal(decimal.Zero))
	assert.Equal(t, int64(1), systemVersion)
}

func TestCreateTransferWithdrawalInsufficientFunds(t *testing.T) {
	f := newFixture(t)
	source := f.newAccount(t, "20.00")

	_, err := f.service.CreateTransfer(context.Background(), service_interfaces.CreateTransferInput{
		SourceAccountID: source.ID,
		Amount:          decimal.RequireFromString("20.01"),
		TransferType:    domain.TransferTypeWithdrawal,
		IdempotencyKey:  uuid.NewString(),
	})
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)
}

func TestCreateTransferConcurrentDebitsConvergeUnderRetry(t *testing.T) {
	f := newFixture(t)
	destination := f.newAccount(t, "0.00")

	const workers = 4
	sources := make([]domain.Account, workers)
	for i := range sources {
		sources[i] = f.newAccount(t, "100.00")
	}

	var group errgroup.Group
	for i := 0; i < workers; i++ {
		source := sources[i]
		group.Go(func() error {
			_, err := f.service.CreateTransfer(context.Background(), transferInput(source, destination, "10.00"))
			return err
		})
	}
	require.NoError(t, group.Wait())

	destinationBalance, destinationVersion := f.balance(t, destination.ID)
	assert.True(t, destinationBalance.Equal(decimal.RequireFromString("40.00")),
		"expected 40.00, got %s", destinationBalance)
	assert.Equal(t, int64(workers+1), destinationVersion, "exactly one version bump per credit")

	for _, source := range sources {
		balance, version := f.balance(t, source.ID)
		assert.True(t, balance.Equal(decimal.RequireFromString("90.00")))
		assert.Equal(t, int64(2), version)
	}
}

func TestCreateTransferConcurrentSameKeyMovesMoneyOnce(t *testing.T) {
	f := newFixture(t)
	source := f.newAccount(t, "100.00")
	destination := f.newAccount(t, "0.00")

	input := transferInput(source, destination, "40.00")

	var group errgroup.Group
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		i := i
		group.Go(func() error {
			_, err := f.service.CreateTransfer(context.Background(), input)
			results[i] = err
			return nil
		})
	}
	require.NoError(t, group.Wait())

	for _, err := range results {
		if err != nil {
			require.ErrorIs(t, err, domain.ErrTransferInProgress)
		}
	}

	sourceBalance, sourceVersion := f.balance(t, source.ID)
	assert.True(t, sourceBalance.Equal(decimal.RequireFromString("60.00")))
	assert.Equal(t, int64(2), sourceVersion)
}

func TestCreateTransferConservesTotalFunds(t *testing.T) {
	f := newFixture(t)
	a := f.newAccount(t, "100.00")
	b := f.newAccount(t, "50.00")
	c := f.newAccount(t, "25.00")

	for _, pair := range [][2]domain.Account{{a, b}, {b, c}, {c, a}} {
		_, err := f.service.CreateTransfer(context.Background(), transferInput(pair[0], pair[1], "15.00"))
		require.NoError(t, err)
	}

	total := decimal.Zero
	for _, account := range []domain.Account{a, b, c} {
		balance, _ := f.balance(t, account.ID)
		total = total.Add(balance)
	}
	assert.True(t, total.Equal(decimal.RequireFromString("175.00")), "transfers must conserve total funds, got %s", total)
}

// conflictingAccounts wedges every conditional update so the retry budget is
// guaranteed to run out.
type conflictingAccounts struct {
	*memory.AccountRepository
}

func (r conflictingAccounts) ConditionalUpdateBalance(ctx context.Context, accountID string, expectedVersion int64, newBalance decimal.Decimal) error {
	return domain.ErrConcurrentModification
}

func TestCreateTransferExhaustedRetriesMarksFailed(t *testing.T) {
	f := newFixture(t)
	source := f.newAccount(t, "100.00")
	destination := f.newAccount(t, "0.00")

	svc := services.NewTransferService(
		f.transfers,
		conflictingAccounts{f.accounts},
		f.store,
		systemAccountNumber,
		2,
		time.Millisecond,
	)

	input := transferInput(source, destination, "10.00")
	transfer, err := svc.CreateTransfer(context.Background(), input)
	require.ErrorIs(t, err, domain.ErrConcurrencyExhausted)
	assert.Equal(t, domain.TransferStatusFailed, transfer.Status)

	stored, lookupErr := f.transfers.GetByIdempotencyKey(context.Background(), input.IdempotencyKey)
	require.NoError(t, lookupErr)
	assert.Equal(t, domain.TransferStatusFailed, stored.Status)
	require.NotNil(t, stored.ProcessedAt)

	sourceBalance, sourceVersion := f.balance(t, source.ID)
	assert.True(t, sourceBalance.Equal(decimal.RequireFromString("100.00")))
	assert.Equal(t, int64(1), sourceVersion)
}

func TestListAccountHistoryPages(t *testing.T) {
	f := newFixture(t)
	source := f.newAccount(t, "100.00")
	destination := f.newAccount(t, "0.00")

	for i := 0; i < 3; i++ {
		_, err := f.service.CreateTransfer(context.Background(), transferInput(source, destination, "5.00"))
		require.NoError(t, err)
	}

	seen := make(map[string]bool)
	page, cursor, err := f.service.ListAccountHistory(context.Background(), source.ID, "", 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.NotEmpty(t, cursor)
	for _, transfer := range page {
		seen[transfer.ID] = true
	}

	page, cursor, err = f.service.ListAccountHistory(context.Background(), source.ID, cursor, 2)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Empty(t, cursor)
	for _, transfer := range page {
		require.False(t, seen[transfer.ID], "transfer %s returned on both pages", transfer.ID)
		seen[transfer.ID] = true
	}

	assert.Len(t, seen, 3)
}

func TestListAccountHistoryUnknownAccount(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.service.ListAccountHistory(context.Background(), uuid.NewString(), "", 0)
	require.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestListAccountHistoryInvalidCursor(t *testing.T) {
	f := newFixture(t)
	account := f.newAccount(t, "0.00")

	_, _, err := f.service.ListAccountHistory(context.Background(), account.ID, "not a cursor!!", 0)
	require.ErrorIs(t, err, domain.ErrInvalidCursor)
}
