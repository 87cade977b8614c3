package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferStatus is the lifecycle state of a transfer.
type TransferStatus string

const (
	TransferStatusDraft     TransferStatus = "draft"
	TransferStatusPending   TransferStatus = "pending"
	TransferStatusCompleted TransferStatus = "completed"
	TransferStatusFailed    TransferStatus = "failed"
)

// Valid reports whether s is one of the known transfer statuses.
func (s TransferStatus) Valid() bool {
	switch s {
	case TransferStatusDraft, TransferStatusPending, TransferStatusCompleted, TransferStatusFailed:
		return true
	}
	return false
}

// Transfer represents one ledger transfer between two accounts. Amounts are
// decimal, never float, because the feed compares them across observations.
type Transfer struct {
	ID              string          `json:"id" gorm:"primaryKey;type:uuid" validate:"required,uuid"`
	FromAccountID   string          `json:"fromAccountId" gorm:"type:uuid;index" validate:"required,uuid"`
	FromAccountName string          `json:"fromAccountName" validate:"omitempty,max=100"`
	ToAccountID     string          `json:"toAccountId" gorm:"type:uuid;index" validate:"required,uuid"`
	ToAccountName   string          `json:"toAccountName" validate:"omitempty,max=100"`
	Amount          decimal.Decimal `json:"amount" gorm:"type:numeric(20,8)" validate:"required"`
	Type            string          `json:"type" validate:"required,oneof=internal external"`
	Status          TransferStatus  `json:"status" gorm:"index" validate:"required,oneof=draft pending completed failed"`
	Label           string          `json:"label,omitempty" validate:"omitempty,max=100"`
	Description     string          `json:"description,omitempty" validate:"omitempty,max=500"`
	Reference       string          `json:"reference,omitempty" gorm:"index" validate:"omitempty,max=255"`
	CreatedAt       time.Time       `json:"createdAt"`
	// autoUpdateTime is off: updated_at is a domain field the feed compares
	// across polls, stamped only on real status transitions.
	UpdatedAt *time.Time `json:"updatedAt,omitempty" gorm:"autoUpdateTime:false"`
}

// Account represents a dashboard account that transfers move between.
type Account struct {
	ID        string    `json:"id" gorm:"primaryKey;type:uuid" validate:"required,uuid"`
	UserID    string    `json:"userId" gorm:"type:uuid;index" validate:"required,uuid"`
	Name      string    `json:"name" validate:"required,min=1,max=100"`
	Currency  string    `json:"currency" validate:"required,len=3"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// User represents an authenticated dashboard user.
type User struct {
	ID           string    `json:"id" gorm:"primaryKey;type:uuid" validate:"required,uuid"`
	Email        string    `json:"email" gorm:"uniqueIndex" validate:"required,email,max=254"`
	PasswordHash string    `json:"-" gorm:"column:password_hash"`
	DisplayName  string    `json:"displayName" validate:"omitempty,max=100"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
