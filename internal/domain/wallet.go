package domain

import "time"

// EntryKind classifies a ledger entry
type EntryKind string

// Ledger entry kinds
const (
	EntryDeposit            EntryKind = "deposit"
	EntryWithdrawal         EntryKind = "withdrawal"
	EntryTournamentEntry    EntryKind = "tournament_entry"
	EntryTournamentWinnings EntryKind = "tournament_winnings"
	EntryKillReward         EntryKind = "kill_reward"
	EntryBalanceAdjustment  EntryKind = "balance_adjustment"
	EntryDepositRejected    EntryKind = "deposit_rejected"
	EntryWithdrawalRejected EntryKind = "withdrawal_rejected"
)

// EntryKinds lists every valid EntryKind, in declaration order
var EntryKinds = []EntryKind{
	EntryDeposit,
	EntryWithdrawal,
	EntryTournamentEntry,
	EntryTournamentWinnings,
	EntryKillReward,
	EntryBalanceAdjustment,
	EntryDepositRejected,
	EntryWithdrawalRejected,
}

// Valid reports whether k is a known entry kind
func (k EntryKind) Valid() bool {
	for _, known := range EntryKinds {
		if k == known {
			return true
		}
	}
	return false
}

// BalanceEffect records which way an entry moved the balance
type BalanceEffect string

// Balance effects
const (
	EffectIncrease BalanceEffect = "increase"
	EffectDecrease BalanceEffect = "decrease"
	EffectNone     BalanceEffect = "none"
)

// Ledger entry statuses
const (
	EntryStatusCompleted = "completed"
)

// LedgerEntry is one append-only line of an account's wallet history.
// The only in-place change ever made is the kill_reward -> tournament_winnings
// reclassification performed when a tournament is settled.
type LedgerEntry struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	UserID        uint          `gorm:"not null;index" json:"user_id"`
	Kind          EntryKind     `gorm:"size:32;not null;index" json:"kind"`
	Amount        int64         `gorm:"not null" json:"amount"`
	BalanceEffect BalanceEffect `gorm:"size:16;not null;default:none" json:"balance_effect"`
	Status        string        `gorm:"size:32;not null" json:"status"`
	Message       string        `gorm:"size:255;not null" json:"message"`
	ReferenceID   uint          `gorm:"index" json:"reference_id"` // Tournament or transfer id
	CreatedAt     time.Time     `gorm:"index" json:"created_at"`
}

// TableName keeps the historical table name
func (LedgerEntry) TableName() string {
	return "history"
}
