package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/asta-dev/fintech-sandbox/internal/domain"
	"github.com/asta-dev/fintech-sandbox/internal/events"
	"github.com/asta-dev/fintech-sandbox/internal/repository"
	apperrors "github.com/asta-dev/fintech-sandbox/pkg/util"
)

// LedgerService owns account reads, status changes and account provisioning.
// Balance mutations flow exclusively through the account repository and the
// transfer store.
type LedgerService struct {
	accounts   repository.AccountRepository
	subs       repository.SubscriptionRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewLedgerService builds the service.
func NewLedgerService(accounts repository.AccountRepository, subs repository.SubscriptionRepository, dispatcher events.Dispatcher, logger *zap.Logger) *LedgerService {
	return &LedgerService{accounts: accounts, subs: subs, dispatcher: dispatcher, logger: logger}
}

// GetBalance returns the balance projection for the owner's account.
func (s *LedgerService) GetBalance(ctx context.Context, ownerID uuid.UUID) (*domain.Account, error) {
	account, err := s.accounts.GetByOwner(ctx, ownerID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("account", nil)
		}
		return nil, apperrors.MapError(err)
	}
	return account, nil
}

// GetAccount returns the account only when it belongs to the requesting
// owner; a foreign account is indistinguishable from a missing one.
func (s *LedgerService) GetAccount(ctx context.Context, accountID, ownerID uuid.UUID) (*domain.Account, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("account", nil)
		}
		return nil, apperrors.MapError(err)
	}
	if account.UserID != ownerID {
		return nil, apperrors.NewNotFound("account", nil)
	}
	return account, nil
}

// UpdateAccount applies a partial update to the owner's account. Closing an
// account triggers the explicit cleanup routine.
func (s *LedgerService) UpdateAccount(ctx context.Context, accountID, ownerID uuid.UUID, patch domain.AccountPatch) (*domain.Account, error) {
	account, err := s.GetAccount(ctx, accountID, ownerID)
	if err != nil {
		return nil, err
	}
	if patch.Empty() {
		return account, nil
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, apperrors.NewValidationError("invalid account status", map[string]any{"status": string(*patch.Status)})
	}
	if patch.Currency != nil {
		normalized := strings.ToUpper(strings.TrimSpace(*patch.Currency))
		if len(normalized) < 3 || len(normalized) > 5 {
			return nil, apperrors.NewValidationError("invalid currency code", nil)
		}
		patch.Currency = &normalized
	}

	oldStatus := account.Status
	updated, err := s.accounts.ApplyPatch(ctx, accountID, patch)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("account", nil)
		}
		return nil, apperrors.MapError(err)
	}

	if patch.Status != nil && *patch.Status != oldStatus {
		if *patch.Status == domain.AccountStatusClosed {
			s.cleanupClosedAccount(ctx, updated)
		}
		_ = s.dispatcher.Publish(ctx, events.New(events.EventAccountStatusChanged, updated.ID.String(),
			events.AccountStatusChangedPayload{OldStatus: oldStatus, NewStatus: *patch.Status}))
	}
	return updated, nil
}

// EnsureAccount provisions a zero-balance account for the user if none
// exists. Called when a billing event first qualifies the user for one.
func (s *LedgerService) EnsureAccount(ctx context.Context, userID uuid.UUID, currency string) (*domain.Account, error) {
	account, err := s.accounts.GetByOwner(ctx, userID)
	if err == nil {
		return account, nil
	}
	if err != pgx.ErrNoRows {
		return nil, apperrors.MapError(err)
	}

	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		currency = "USD"
	}
	account = &domain.Account{
		UserID:   userID,
		Currency: currency,
		Balance:  0,
		Status:   domain.AccountStatusActive,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.logger.Info("account provisioned",
		zap.String("account_id", account.ID.String()),
		zap.String("user_id", userID.String()))
	return account, nil
}

// cleanupClosedAccount replaces the old cascade semantics: transactions stay
// in the append-only log, active subscriptions are cancelled.
func (s *LedgerService) cleanupClosedAccount(ctx context.Context, account *domain.Account) {
	cancelled, err := s.subs.CancelActiveByUser(ctx, account.UserID)
	if err != nil {
		s.logger.Error("account closure cleanup failed", zap.Error(err),
			zap.String("account_id", account.ID.String()))
		return
	}
	if cancelled > 0 {
		s.logger.Info("cancelled subscriptions on account closure",
			zap.Int64("count", cancelled),
			zap.String("account_id", account.ID.String()))
	}
}
