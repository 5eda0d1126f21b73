package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/asta-dev/fintech-sandbox/internal/domain"
	"github.com/asta-dev/fintech-sandbox/internal/repository"
)

// fakeLedger backs the account, transfer and transaction interfaces with one
// mutex so a transfer is observed all-or-nothing, like the database version.
type fakeLedger struct {
	mu           sync.Mutex
	accounts     map[uuid.UUID]*domain.Account
	transactions []domain.Transaction
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{accounts: make(map[uuid.UUID]*domain.Account)}
}

func (l *fakeLedger) addAccount(userID uuid.UUID, currency string, balance int64, status domain.AccountStatus) *domain.Account {
	l.mu.Lock()
	defer l.mu.Unlock()
	account := &domain.Account{
		ID:          uuid.New(),
		UserID:      userID,
		Currency:    currency,
		Balance:     balance,
		Status:      status,
		LastUpdated: time.Now(),
	}
	l.accounts[account.ID] = account
	copied := *account
	return &copied
}

func (l *fakeLedger) Create(_ context.Context, account *domain.Account) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	account.ID = uuid.New()
	account.LastUpdated = time.Now()
	copied := *account
	l.accounts[account.ID] = &copied
	return nil
}

func (l *fakeLedger) GetByID(_ context.Context, id uuid.UUID) (*domain.Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	account, ok := l.accounts[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *account
	return &copied, nil
}

func (l *fakeLedger) GetByOwner(_ context.Context, ownerID uuid.UUID) (*domain.Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, account := range l.accounts {
		if account.UserID == ownerID {
			copied := *account
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (l *fakeLedger) ApplyPatch(_ context.Context, id uuid.UUID, patch domain.AccountPatch) (*domain.Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	account, ok := l.accounts[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	if patch.Currency != nil {
		account.Currency = *patch.Currency
	}
	if patch.Status != nil {
		account.Status = *patch.Status
	}
	account.LastUpdated = time.Now()
	copied := *account
	return &copied, nil
}

// Execute mirrors the transactional store: validate against current balances
// and apply debit, credit and the log append under one lock.
func (l *fakeLedger) Execute(_ context.Context, transfer *domain.Transaction) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	sender, ok := l.accounts[transfer.SenderAccountID]
	if !ok {
		return pgx.ErrNoRows
	}
	receiver, ok := l.accounts[transfer.ReceiverAccountID]
	if !ok {
		return pgx.ErrNoRows
	}
	if sender.Status != domain.AccountStatusActive || receiver.Status == domain.AccountStatusClosed {
		return repository.ErrAccountNotActive
	}
	if sender.Currency != receiver.Currency {
		return repository.ErrCurrencyMismatch
	}
	if sender.Balance < transfer.Amount {
		return repository.ErrInsufficientFunds
	}

	sender.Balance -= transfer.Amount
	receiver.Balance += transfer.Amount
	transfer.ID = uuid.New()
	transfer.MadeAt = time.Now()
	l.transactions = append(l.transactions, *transfer)
	return nil
}

func (l *fakeLedger) List(_ context.Context, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var matched []domain.Transaction
	for _, txn := range l.transactions {
		if txn.SenderAccountID != filter.AccountID && txn.ReceiverAccountID != filter.AccountID {
			continue
		}
		if filter.DateFrom != nil && txn.MadeAt.Before(*filter.DateFrom) {
			continue
		}
		if filter.DateTill != nil && txn.MadeAt.After(*filter.DateTill) {
			continue
		}
		matched = append(matched, txn)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].MadeAt.After(matched[j].MadeAt)
	})

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= len(matched) {
		return nil, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], nil
}

func (l *fakeLedger) balanceOf(id uuid.UUID) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.accounts[id].Balance
}

func (l *fakeLedger) transactionCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.transactions)
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*domain.User)}
}

func (r *fakeUserRepo) addUser(username, email, passwordHash string, role domain.Role) *domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	user := &domain.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	r.users[user.ID] = user
	copied := *user
	return &copied
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user.ID = uuid.New()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	user.UpdatedAt = time.Now()
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	return r.findBy(func(u *domain.User) bool { return u.Username == username })
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	return r.findBy(func(u *domain.User) bool { return strings.EqualFold(u.Email, email) })
}

func (r *fakeUserRepo) findBy(match func(*domain.User) bool) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if match(user) {
			copied := *user
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) List(_ context.Context, limit, offset int) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.User
	for _, user := range r.users {
		result = append(result, *user)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Username < result[j].Username })
	if offset >= len(result) {
		return nil, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(result) {
		end = len(result)
	}
	return result[offset:end], nil
}

type fakeRoleRepo struct {
	mu    sync.Mutex
	roles []domain.RoleRecord
}

func newFakeRoleRepo() *fakeRoleRepo {
	return &fakeRoleRepo{roles: []domain.RoleRecord{
		{ID: 1, Level: domain.LevelUser, Position: domain.RoleUser},
		{ID: 2, Level: domain.LevelDeveloper, Position: domain.RoleDeveloper},
		{ID: 3, Level: domain.LevelAdmin, Position: domain.RoleAdmin},
	}}
}

func (r *fakeRoleRepo) Create(_ context.Context, role *domain.RoleRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	role.ID = len(r.roles) + 1
	r.roles = append(r.roles, *role)
	return nil
}

func (r *fakeRoleRepo) ApplyPatch(_ context.Context, patch domain.RolePatch) (*domain.RoleRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.roles {
		if r.roles[i].ID != patch.ID {
			continue
		}
		if patch.Level != nil {
			r.roles[i].Level = *patch.Level
		}
		if patch.Position != nil {
			r.roles[i].Position = *patch.Position
		}
		copied := r.roles[i]
		return &copied, nil
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeRoleRepo) Delete(_ context.Context, ids []int) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var kept []domain.RoleRecord
	var deleted int64
	for _, role := range r.roles {
		matched := false
		for _, id := range ids {
			if role.ID == id {
				matched = true
				break
			}
		}
		if matched {
			deleted++
		} else {
			kept = append(kept, role)
		}
	}
	r.roles = kept
	return deleted, nil
}

func (r *fakeRoleRepo) List(_ context.Context) ([]domain.RoleRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.RoleRecord{}, r.roles...), nil
}

func (r *fakeRoleRepo) GetByPosition(_ context.Context, position domain.Role) (*domain.RoleRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, role := range r.roles {
		if role.Position == position {
			copied := role
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type fakeSubscriptionRepo struct {
	mu   sync.Mutex
	subs map[uuid.UUID]*domain.Subscription
}

func newFakeSubscriptionRepo() *fakeSubscriptionRepo {
	return &fakeSubscriptionRepo{subs: make(map[uuid.UUID]*domain.Subscription)}
}

func (r *fakeSubscriptionRepo) addSubscription(userID uuid.UUID, status domain.SubscriptionStatus) *domain.Subscription {
	return r.addSubscriptionAt(userID, status, time.Now().Add(-time.Hour))
}

func (r *fakeSubscriptionRepo) addSubscriptionAt(userID uuid.UUID, status domain.SubscriptionStatus, startedAt time.Time) *domain.Subscription {
	r.mu.Lock()
	defer r.mu.Unlock()
	sub := &domain.Subscription{
		ID:        uuid.New(),
		UserID:    userID,
		Currency:  "USD",
		StartedAt: startedAt,
		EndedAt:   startedAt.Add(30 * 24 * time.Hour),
		Status:    status,
		CreatedAt: time.Now(),
	}
	r.subs[sub.ID] = sub
	copied := *sub
	return &copied
}

func (r *fakeSubscriptionRepo) Create(_ context.Context, sub *domain.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	sub.ID = uuid.New()
	sub.CreatedAt = time.Now()
	copied := *sub
	r.subs[sub.ID] = &copied
	return nil
}

func (r *fakeSubscriptionRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sub, ok := r.subs[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *sub
	return &copied, nil
}

func (r *fakeSubscriptionRepo) GetBySourceID(_ context.Context, sourceID string) (*domain.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, sub := range r.subs {
		if sub.SourceID == sourceID {
			copied := *sub
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeSubscriptionRepo) GetActiveByUser(_ context.Context, userID uuid.UUID) (*domain.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, sub := range r.subs {
		if sub.UserID == userID && sub.Status == domain.SubscriptionStatusActive {
			copied := *sub
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeSubscriptionRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]domain.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Subscription
	for _, sub := range r.subs {
		if sub.UserID == userID {
			result = append(result, *sub)
		}
	}
	return result, nil
}

func (r *fakeSubscriptionRepo) CancelActiveByUser(_ context.Context, userID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var cancelled int64
	for _, sub := range r.subs {
		if sub.UserID == userID && sub.Status == domain.SubscriptionStatusActive {
			sub.Status = domain.SubscriptionStatusCancelled
			sub.EndedAt = time.Now()
			cancelled++
		}
	}
	return cancelled, nil
}

func (r *fakeSubscriptionRepo) ListWithFilter(_ context.Context, filter domain.SubscriptionFilter) ([]domain.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []domain.Subscription
	for _, sub := range r.subs {
		if filter.Status != nil && sub.Status != *filter.Status {
			continue
		}
		if filter.StartDate != nil && sub.StartedAt.Before(*filter.StartDate) {
			continue
		}
		if filter.EndDate != nil && sub.EndedAt.After(*filter.EndDate) {
			continue
		}
		matched = append(matched, *sub)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].StartedAt.After(matched[j].StartedAt)
	})

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= len(matched) {
		return nil, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], nil
}

func (r *fakeSubscriptionRepo) ApplyPatch(_ context.Context, id uuid.UUID, patch domain.SubscriptionPatch) (*domain.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sub, ok := r.subs[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	if patch.Status != nil {
		sub.Status = *patch.Status
	}
	if patch.EndedAt != nil {
		sub.EndedAt = *patch.EndedAt
	}
	copied := *sub
	return &copied, nil
}
