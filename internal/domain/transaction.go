package domain

import "time"

// Direction distinguishes deposit requests from withdrawal requests
type Direction string

// Transfer directions
const (
	DirectionDeposit    Direction = "deposit"
	DirectionWithdrawal Direction = "withdrawal"
)

// TransferStatus is the review state of a Transfer
type TransferStatus string

// Transfer statuses; pending moves to exactly one of the terminal states
const (
	TransferPending  TransferStatus = "pending"
	TransferApproved TransferStatus = "approved"
	TransferRejected TransferStatus = "rejected"
)

// Terminal reports whether s is approved or rejected
func (s TransferStatus) Terminal() bool {
	return s == TransferApproved || s == TransferRejected
}

// Transfer Model: a deposit or withdrawal request awaiting admin review
type Transfer struct {
	ID          uint           `gorm:"primaryKey" json:"id"`                    // Primary key
	UserID      uint           `gorm:"not null;index" json:"user_id"`           // Requesting account
	Direction   Direction      `gorm:"size:16;not null;index" json:"direction"` // deposit or withdrawal
	Amount      int64          `gorm:"not null" json:"amount"`                  // Requested amount
	UpiID       string         `gorm:"size:255;not null" json:"upi_id"`         // Payer / payee UPI handle
	ExternalRef int64          `gorm:"not null;default:0" json:"external_ref"`  // Payment reference supplied with deposits
	Status      TransferStatus `gorm:"size:16;not null;index" json:"status"`    // pending, approved, rejected
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`                 // Creation timestamp
	UpdatedAt   time.Time      `json:"updated_at"`                              // Last update timestamp
}

// RejectedTransfer Model: the audit record written when a Transfer is rejected
type RejectedTransfer struct {
	ID         uint      `gorm:"primaryKey" json:"id"`                    // Primary key
	TransferID uint      `gorm:"not null;uniqueIndex" json:"transfer_id"` // Rejected request
	UserID     uint      `gorm:"not null;index" json:"user_id"`           // Requesting account
	Direction  Direction `gorm:"size:16;not null;index" json:"direction"` // deposit or withdrawal
	Amount     int64     `gorm:"not null" json:"amount"`                  // Requested amount
	UpiID      string    `gorm:"size:255;not null" json:"upi_id"`         // UPI handle from the request
	Reason     string    `gorm:"size:255;not null" json:"reason"`         // Admin supplied reason
	CreatedAt  time.Time `json:"created_at"`                              // Creation timestamp
}
