package domain

import "time"

// Role values stored on User.Role
const (
	RoleUser  = "user"  // Regular player account
	RoleAdmin = "admin" // Tournament organiser
)

// User Model
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`                                 // Primary key
	Name      string    `gorm:"size:255;not null;default:''" json:"name"`             // Display name
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`           // Unique email
	Role      string    `gorm:"size:16;not null;default:user" json:"role"`            // Role: user or admin
	Balance   int64     `gorm:"not null;default:0;check:balance >= 0" json:"balance"` // Platform balance, never negative
	CreatedAt time.Time `json:"created_at"`                                           // Creation timestamp
	UpdatedAt time.Time `json:"updated_at"`                                           // Last update timestamp
}

// IsAdmin reports whether the account may use administrative endpoints
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
