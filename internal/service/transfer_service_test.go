package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/asta-dev/fintech-sandbox/internal/auth"
	"github.com/asta-dev/fintech-sandbox/internal/domain"
	"github.com/asta-dev/fintech-sandbox/internal/events"
	apperrors "github.com/asta-dev/fintech-sandbox/pkg/util"
)

type transferFixture struct {
	ledger   *fakeLedger
	users    *fakeUserRepo
	service  *TransferService
	captured *capturedEvents
}

type capturedEvents struct {
	mu     sync.Mutex
	events []events.Event
}

func (c *capturedEvents) record(_ context.Context, event events.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
	return nil
}

func (c *capturedEvents) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

func newTransferFixture(t *testing.T) *transferFixture {
	t.Helper()

	ledger := newFakeLedger()
	users := newFakeUserRepo()
	dispatcher := events.NewInMemoryDispatcher()
	captured := &capturedEvents{}
	dispatcher.Subscribe(events.EventTransferCompleted, captured.record)

	svc := NewTransferService(TransferDependencies{
		AccountRepo:     ledger,
		UserRepo:        users,
		TransferStore:   ledger,
		TransactionRepo: ledger,
		Dispatcher:      dispatcher,
	}, zap.NewNop())

	return &transferFixture{ledger: ledger, users: users, service: svc, captured: captured}
}

func (f *transferFixture) seedPair(senderBalance, receiverBalance int64) (auth.Claim, *domain.Account, *domain.Account) {
	alice := f.users.addUser("alice", "alice@example.com", "unused", domain.RoleUser)
	bob := f.users.addUser("bob", "bob@example.com", "unused", domain.RoleUser)
	senderAcc := f.ledger.addAccount(alice.ID, "USD", senderBalance, domain.AccountStatusActive)
	receiverAcc := f.ledger.addAccount(bob.ID, "USD", receiverBalance, domain.AccountStatusActive)
	claim := auth.Claim{Username: alice.Username, UserID: alice.ID, Role: domain.RoleUser}
	return claim, senderAcc, receiverAcc
}

func TestTransferMovesFundsAndRecordsTransaction(t *testing.T) {
	f := newTransferFixture(t)
	claim, sender, receiver := f.seedPair(100, 0)

	txn, err := f.service.Transfer(context.Background(), claim, receiver.ID, 40)
	require.NoError(t, err)

	assert.Equal(t, int64(60), f.ledger.balanceOf(sender.ID))
	assert.Equal(t, int64(40), f.ledger.balanceOf(receiver.ID))

	require.NotNil(t, txn)
	assert.NotEqual(t, uuid.Nil, txn.ID)
	assert.Equal(t, domain.TransactionStatusCompleted, txn.Status)
	assert.Equal(t, "alice", txn.SenderUsername)
	assert.Equal(t, "bob", txn.ReceiverUsername)
	assert.Equal(t, int64(40), txn.Amount)

	assert.Equal(t, 1, f.captured.count())
}

func TestTransferInsufficientFundsLeavesStateUntouched(t *testing.T) {
	f := newTransferFixture(t)
	claim, sender, receiver := f.seedPair(10, 0)

	_, err := f.service.Transfer(context.Background(), claim, receiver.ID, 50)
	require.Error(t, err)
	assert.Equal(t, "INSUFFICIENT_FUNDS", apperrors.ToDomainError(err).Code)

	assert.Equal(t, int64(10), f.ledger.balanceOf(sender.ID))
	assert.Equal(t, int64(0), f.ledger.balanceOf(receiver.ID))
	assert.Zero(t, f.ledger.transactionCount())
	assert.Zero(t, f.captured.count())
}

func TestTransferRejectsNonPositiveAmount(t *testing.T) {
	f := newTransferFixture(t)
	claim, _, receiver := f.seedPair(100, 0)

	for _, amount := range []int64{0, -5} {
		_, err := f.service.Transfer(context.Background(), claim, receiver.ID, amount)
		require.Error(t, err)
		assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
	}
	assert.Zero(t, f.ledger.transactionCount())
}

func TestTransferUnknownReceiverLeavesSenderUntouched(t *testing.T) {
	f := newTransferFixture(t)
	claim, sender, _ := f.seedPair(100, 0)

	_, err := f.service.Transfer(context.Background(), claim, uuid.New(), 40)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)

	assert.Equal(t, int64(100), f.ledger.balanceOf(sender.ID))
	assert.Zero(t, f.ledger.transactionCount())
}

func TestTransferRejectsOwnAccount(t *testing.T) {
	f := newTransferFixture(t)
	claim, sender, _ := f.seedPair(100, 0)

	_, err := f.service.Transfer(context.Background(), claim, sender.ID, 40)
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
	assert.Equal(t, int64(100), f.ledger.balanceOf(sender.ID))
}

func TestTransferRejectsCurrencyMismatch(t *testing.T) {
	f := newTransferFixture(t)
	alice := f.users.addUser("alice", "alice@example.com", "unused", domain.RoleUser)
	bob := f.users.addUser("bob", "bob@example.com", "unused", domain.RoleUser)
	sender := f.ledger.addAccount(alice.ID, "USD", 100, domain.AccountStatusActive)
	receiver := f.ledger.addAccount(bob.ID, "EUR", 0, domain.AccountStatusActive)
	claim := auth.Claim{Username: alice.Username, UserID: alice.ID, Role: domain.RoleUser}

	_, err := f.service.Transfer(context.Background(), claim, receiver.ID, 40)
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)

	assert.Equal(t, int64(100), f.ledger.balanceOf(sender.ID))
	assert.Equal(t, int64(0), f.ledger.balanceOf(receiver.ID))
}

func TestTransferRejectsInactiveSender(t *testing.T) {
	f := newTransferFixture(t)
	alice := f.users.addUser("alice", "alice@example.com", "unused", domain.RoleUser)
	bob := f.users.addUser("bob", "bob@example.com", "unused", domain.RoleUser)
	f.ledger.addAccount(alice.ID, "USD", 100, domain.AccountStatusSuspended)
	receiver := f.ledger.addAccount(bob.ID, "USD", 0, domain.AccountStatusActive)
	claim := auth.Claim{Username: alice.Username, UserID: alice.ID, Role: domain.RoleUser}

	_, err := f.service.Transfer(context.Background(), claim, receiver.ID, 40)
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperrors.ToDomainError(err).Code)
	assert.Equal(t, int64(0), f.ledger.balanceOf(receiver.ID))
}

// Two concurrent transfers race for a balance that covers only one of them.
// Exactly one must win and the final balances must conserve the total.
func TestConcurrentTransfersNeverOverdraw(t *testing.T) {
	f := newTransferFixture(t)
	claim, sender, receiver := f.seedPair(100, 0)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.service.Transfer(context.Background(), claim, receiver.ID, 60)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, int64(40), f.ledger.balanceOf(sender.ID))
	assert.Equal(t, int64(60), f.ledger.balanceOf(receiver.ID))
	assert.GreaterOrEqual(t, f.ledger.balanceOf(sender.ID), int64(0))
	assert.Equal(t, 1, f.ledger.transactionCount())
}

func TestListTransactionsOrderingAndPagination(t *testing.T) {
	f := newTransferFixture(t)
	claim, sender, receiver := f.seedPair(100, 0)

	amounts := []int64{10, 20, 30}
	for _, amount := range amounts {
		_, err := f.service.Transfer(context.Background(), claim, receiver.ID, amount)
		require.NoError(t, err)
		time.Sleep(time.Millisecond)
	}

	page, err := f.service.ListTransactions(context.Background(), claim, domain.TransactionFilter{
		AccountID: sender.ID,
		Limit:     2,
	})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, int64(30), page[0].Amount)
	assert.Equal(t, int64(20), page[1].Amount)

	rest, err := f.service.ListTransactions(context.Background(), claim, domain.TransactionFilter{
		AccountID: sender.ID,
		Limit:     2,
		Offset:    2,
	})
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, int64(10), rest[0].Amount)
}

func TestListTransactionsDateBoundsAreInclusive(t *testing.T) {
	f := newTransferFixture(t)
	claim, sender, receiver := f.seedPair(100, 0)

	_, err := f.service.Transfer(context.Background(), claim, receiver.ID, 10)
	require.NoError(t, err)

	all, err := f.service.ListTransactions(context.Background(), claim, domain.TransactionFilter{AccountID: sender.ID})
	require.NoError(t, err)
	require.Len(t, all, 1)
	madeAt := all[0].MadeAt

	within, err := f.service.ListTransactions(context.Background(), claim, domain.TransactionFilter{
		AccountID: sender.ID,
		DateFrom:  &madeAt,
		DateTill:  &madeAt,
	})
	require.NoError(t, err)
	assert.Len(t, within, 1)

	after := madeAt.Add(time.Second)
	none, err := f.service.ListTransactions(context.Background(), claim, domain.TransactionFilter{
		AccountID: sender.ID,
		DateFrom:  &after,
	})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestListTransactionsHidesForeignAccounts(t *testing.T) {
	f := newTransferFixture(t)
	_, _, receiver := f.seedPair(100, 0)

	mallory := f.users.addUser("mallory", "mallory@example.com", "unused", domain.RoleUser)
	claim := auth.Claim{Username: mallory.Username, UserID: mallory.ID, Role: domain.RoleUser}

	_, err := f.service.ListTransactions(context.Background(), claim, domain.TransactionFilter{AccountID: receiver.ID})
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)
}
