package domain

import "time"

// EventType names an account notification
type EventType string

// Account notification types
const (
	EventTournamentJoined   EventType = "tournament_joined"
	EventKillReward         EventType = "kill_reward"
	EventTournamentWon      EventType = "tournament_won"
	EventDepositApproved    EventType = "deposit_approved"
	EventDepositRejected    EventType = "deposit_rejected"
	EventWithdrawalApproved EventType = "withdrawal_approved"
	EventWithdrawalRejected EventType = "withdrawal_rejected"
)

// Event is a notification about a committed change to an account
type Event struct {
	Type        EventType `json:"type"`
	AccountID   uint      `json:"account_id"`
	ReferenceID uint      `json:"reference_id"` // Tournament or transfer id
	Amount      int64     `json:"amount"`
	Message     string    `json:"message"`
	OccurredAt  time.Time `json:"occurred_at"`
}
