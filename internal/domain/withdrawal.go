package domain

import "time"

// WithdrawalStatus represents withdrawal processing status
type WithdrawalStatus string

const (
	WithdrawalStatusPending   WithdrawalStatus = "pending"
	WithdrawalStatusApproved  WithdrawalStatus = "approved"
	WithdrawalStatusRejected  WithdrawalStatus = "rejected"
	WithdrawalStatusCancelled WithdrawalStatus = "cancelled"
)

// Withdrawal is a request to cash out coins. Coins are debited when the
// request is created and returned when it is rejected or cancelled.
type Withdrawal struct {
	ID          string           `json:"id"`
	UserID      string           `json:"user_id"`
	Coins       int64            `json:"coins"`
	Destination string           `json:"destination"`
	Status      WithdrawalStatus `json:"status"`
	AdminNotes  string           `json:"admin_notes,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	ProcessedAt *time.Time       `json:"processed_at,omitempty"`
}

// WithdrawRequest is the payload of a withdrawal request
type WithdrawRequest struct {
	Coins       int64  `json:"coins" binding:"required,min=1"`
	Destination string `json:"destination" binding:"required"`
}
