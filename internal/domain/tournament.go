package domain

import "time"

// MinPlayerLevel is the lowest in-game level allowed to join a tournament
const MinPlayerLevel = 30

// Tournament Model
type Tournament struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	OwnerAdminID        uint      `gorm:"column:admin_id;not null;index" json:"admin_id"`
	Game                string    `gorm:"size:100;index" json:"game"`
	Name                string    `gorm:"size:255;not null" json:"name"`
	Description         string    `gorm:"size:255" json:"description"`
	RoomID              string    `gorm:"size:255;default:'0'" json:"room_id,omitempty"`
	RoomPassword        string    `gorm:"size:255" json:"room_password,omitempty"`
	EntryFee            int64     `gorm:"not null;check:entry_fee >= 0" json:"entry_fee"`
	Prize               int64     `gorm:"not null;check:prize >= 0" json:"prize"`
	PerKillPrize        int64     `gorm:"not null;check:per_kill_prize >= 0" json:"per_kill_prize"`
	MaxParticipants     int       `gorm:"not null;check:max_participants > 0" json:"max_participants"`
	CurrentParticipants int       `gorm:"not null;default:0;check:current_participants >= 0" json:"current_participants"`
	ScheduledAt         time.Time `gorm:"not null;index" json:"scheduled_at"`
	IsEnded             bool      `gorm:"not null;default:false;index" json:"is_ended"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// Full reports whether the roster has reached capacity
func (t *Tournament) Full() bool {
	return t.CurrentParticipants >= t.MaxParticipants
}

// Open reports whether the tournament still accepts participants at now
func (t *Tournament) Open(now time.Time) bool {
	return !t.IsEnded && t.ScheduledAt.After(now)
}

// WithoutRoom returns a copy with the room credentials blanked
func (t Tournament) WithoutRoom() Tournament {
	t.RoomID = ""
	t.RoomPassword = ""
	return t
}

// Participant Model. The composite unique index is the store-level
// backstop for one row per (tournament, user).
type Participant struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	TournamentID   uint      `gorm:"not null;uniqueIndex:idx_participant_tournament_user" json:"tournament_id"`
	UserID         uint      `gorm:"not null;uniqueIndex:idx_participant_tournament_user;index" json:"user_id"`
	PlayerUsername string    `gorm:"size:255;not null" json:"player_username"`
	PlayerUserID   string    `gorm:"size:255;not null" json:"player_user_id"`
	PlayerLevel    int       `gorm:"not null" json:"player_level"`
	JoinedAt       time.Time `gorm:"not null" json:"joined_at"`
}

// TableName keeps the historical table name
func (Participant) TableName() string {
	return "tournament_participants"
}
