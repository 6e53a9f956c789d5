package domain

import "time"

// RewardKind classifies a Reward row
type RewardKind string

// Reward kinds
const (
	RewardKill     RewardKind = "kill"
	RewardWinnings RewardKind = "winnings"
)

// Reward Model. A kill reward is reclassified in place to winnings when
// its holder is declared the winner; it is never duplicated.
type Reward struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	UserID       uint       `gorm:"not null;uniqueIndex:idx_reward_tournament_user_kind;index" json:"user_id"`
	TournamentID uint       `gorm:"not null;uniqueIndex:idx_reward_tournament_user_kind" json:"tournament_id"`
	Amount       int64      `gorm:"not null" json:"amount"`
	Kind         RewardKind `gorm:"size:16;not null;default:winnings;uniqueIndex:idx_reward_tournament_user_kind" json:"kind"`
	CreatedAt    time.Time  `json:"created_at"`
}

// TableName keeps the historical table name
func (Reward) TableName() string {
	return "winnings"
}
