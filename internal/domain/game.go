package domain

import (
	"strings"
	"time"
)

// Default catalog entries, created by migration and on memory store startup
const (
	GameBGMI     = "BGMI"
	GameFreeFire = "FREEFIRE"
)

// DefaultGames is the catalog a fresh database starts with
var DefaultGames = []Game{
	{Name: GameBGMI, Description: "Battlegrounds Mobile India"},
	{Name: GameFreeFire, Description: "Garena Free Fire"},
}

// Game Model: an entry of the game catalog. Tournaments refer to a game by name.
type Game struct {
	ID          uint      `gorm:"primaryKey" json:"id"`                      // Primary key
	Name        string    `gorm:"size:100;uniqueIndex;not null" json:"name"` // Upper-case game name
	Description string    `gorm:"size:500" json:"description"`               // Short description
	Icon        string    `gorm:"size:255" json:"icon"`                      // Icon URL
	Thumbnail   string    `gorm:"size:255" json:"thumbnail"`                 // Thumbnail URL
	CreatedAt   time.Time `json:"created_at"`                                // Creation timestamp
	UpdatedAt   time.Time `json:"updated_at"`                                // Last update timestamp
}

// GameName normalises a game name the way the catalog stores it
func GameName(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
