package domain

import "time"

// Default balances granted to a freshly registered user.
const (
	DefaultRestoreBalance = 10
	DefaultAnimateBalance = 10
)

// User represents a bot account and its purchase/referral state.
type User struct {
	ID       int64 // telegram user id
	Username string
	Name     string

	Restores int // restoration units left
	Animates int // animation units left

	ReferrerID     *int64 // upstream referrer, nil if the user came organically
	Referrals      int    // users invited by this one
	AnimatesEarned int    // animation units earned through referrals

	DeeplinkTag string // marketing deep link recorded at first contact, empty if none

	RestoresDone int // lifetime restorations performed
	AnimatesDone int // lifetime animations performed

	Active   bool
	Entry    time.Time
	Activity time.Time
}

// BalanceField names a user counter the storage gateway may increment.
type BalanceField string

const (
	FieldRestores       BalanceField = "restores"
	FieldAnimates       BalanceField = "animates"
	FieldAnimatesEarned BalanceField = "animates_earned"
	FieldReferrals      BalanceField = "referrals"
	FieldRestoresDone   BalanceField = "restores_done"
	FieldAnimatesDone   BalanceField = "animates_done"
)
