package domain

import (
	"time"

	"github.com/google/uuid"
)

// AccountStatus represents lifecycle states for a ledger account.
type AccountStatus string

const (
	AccountStatusActive    AccountStatus = "Active"
	AccountStatusSuspended AccountStatus = "Suspended"
	AccountStatusClosed    AccountStatus = "Closed"
)

// Valid reports whether the status is one of the known lifecycle states.
func (s AccountStatus) Valid() bool {
	switch s {
	case AccountStatusActive, AccountStatusSuspended, AccountStatusClosed:
		return true
	default:
		return false
	}
}

// Account is a single ledger balance owned by exactly one user. Balances are
// held in minor units (cents) and never go negative.
type Account struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Currency    string
	Balance     int64
	Status      AccountStatus
	LastUpdated time.Time
}

// AccountPatch names exactly the fields present in an account update.
// Nil means unchanged.
type AccountPatch struct {
	Currency *string
	Status   *AccountStatus
}

// Empty reports whether the patch carries no changes.
func (p AccountPatch) Empty() bool {
	return p.Currency == nil && p.Status == nil
}
