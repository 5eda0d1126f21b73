package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/asta-dev/fintech-sandbox/internal/domain"
	"github.com/asta-dev/fintech-sandbox/internal/events"
	apperrors "github.com/asta-dev/fintech-sandbox/pkg/util"
)

func newLedgerFixture(t *testing.T) (*LedgerService, *fakeLedger, *fakeSubscriptionRepo, *capturedEvents) {
	t.Helper()

	ledger := newFakeLedger()
	subs := newFakeSubscriptionRepo()
	dispatcher := events.NewInMemoryDispatcher()
	captured := &capturedEvents{}
	dispatcher.Subscribe(events.EventAccountStatusChanged, captured.record)

	svc := NewLedgerService(ledger, subs, dispatcher, zap.NewNop())
	return svc, ledger, subs, captured
}

func TestGetBalanceReadIsStable(t *testing.T) {
	svc, ledger, _, _ := newLedgerFixture(t)
	ownerID := uuid.New()
	ledger.addAccount(ownerID, "USD", 250, domain.AccountStatusActive)

	first, err := svc.GetBalance(context.Background(), ownerID)
	require.NoError(t, err)
	second, err := svc.GetBalance(context.Background(), ownerID)
	require.NoError(t, err)

	assert.Equal(t, int64(250), first.Balance)
	assert.Equal(t, first.Balance, second.Balance)
}

func TestGetBalanceUnknownOwner(t *testing.T) {
	svc, _, _, _ := newLedgerFixture(t)

	_, err := svc.GetBalance(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)
}

func TestGetAccountHidesForeignAccounts(t *testing.T) {
	svc, ledger, _, _ := newLedgerFixture(t)
	account := ledger.addAccount(uuid.New(), "USD", 100, domain.AccountStatusActive)

	_, err := svc.GetAccount(context.Background(), account.ID, uuid.New())
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)

	got, err := svc.GetAccount(context.Background(), account.ID, account.UserID)
	require.NoError(t, err)
	assert.Equal(t, account.ID, got.ID)
}

func TestUpdateAccountEmptyPatchChangesNothing(t *testing.T) {
	svc, ledger, _, captured := newLedgerFixture(t)
	account := ledger.addAccount(uuid.New(), "USD", 100, domain.AccountStatusActive)

	got, err := svc.UpdateAccount(context.Background(), account.ID, account.UserID, domain.AccountPatch{})
	require.NoError(t, err)

	assert.Equal(t, account.Currency, got.Currency)
	assert.Equal(t, account.Status, got.Status)
	assert.Zero(t, captured.count())
}

func TestUpdateAccountNormalizesCurrency(t *testing.T) {
	svc, ledger, _, _ := newLedgerFixture(t)
	account := ledger.addAccount(uuid.New(), "USD", 100, domain.AccountStatusActive)

	currency := " eur "
	got, err := svc.UpdateAccount(context.Background(), account.ID, account.UserID, domain.AccountPatch{Currency: &currency})
	require.NoError(t, err)
	assert.Equal(t, "EUR", got.Currency)

	bad := "x"
	_, err = svc.UpdateAccount(context.Background(), account.ID, account.UserID, domain.AccountPatch{Currency: &bad})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
}

func TestUpdateAccountRejectsUnknownStatus(t *testing.T) {
	svc, ledger, _, _ := newLedgerFixture(t)
	account := ledger.addAccount(uuid.New(), "USD", 100, domain.AccountStatusActive)

	status := domain.AccountStatus("Frozen")
	_, err := svc.UpdateAccount(context.Background(), account.ID, account.UserID, domain.AccountPatch{Status: &status})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
}

func TestClosingAccountCancelsActiveSubscriptions(t *testing.T) {
	svc, ledger, subs, captured := newLedgerFixture(t)
	ownerID := uuid.New()
	account := ledger.addAccount(ownerID, "USD", 0, domain.AccountStatusActive)

	active := subs.addSubscription(ownerID, domain.SubscriptionStatusActive)
	ended := subs.addSubscription(ownerID, domain.SubscriptionStatusEnded)

	status := domain.AccountStatusClosed
	got, err := svc.UpdateAccount(context.Background(), account.ID, ownerID, domain.AccountPatch{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, domain.AccountStatusClosed, got.Status)

	cancelled, err := subs.GetByID(context.Background(), active.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SubscriptionStatusCancelled, cancelled.Status)

	untouched, err := subs.GetByID(context.Background(), ended.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SubscriptionStatusEnded, untouched.Status)

	assert.Equal(t, 1, captured.count())
}

func TestEnsureAccountIsIdempotent(t *testing.T) {
	svc, _, _, _ := newLedgerFixture(t)
	userID := uuid.New()

	first, err := svc.EnsureAccount(context.Background(), userID, "usd")
	require.NoError(t, err)
	assert.Equal(t, "USD", first.Currency)
	assert.Equal(t, int64(0), first.Balance)
	assert.Equal(t, domain.AccountStatusActive, first.Status)

	second, err := svc.EnsureAccount(context.Background(), userID, "EUR")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "USD", second.Currency)
}

func TestEnsureAccountDefaultsCurrency(t *testing.T) {
	svc, _, _, _ := newLedgerFixture(t)

	account, err := svc.EnsureAccount(context.Background(), uuid.New(), "  ")
	require.NoError(t, err)
	assert.Equal(t, "USD", account.Currency)
}
