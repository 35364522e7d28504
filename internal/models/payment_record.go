package models

import (
	"time"
)

// Payment kinds
const (
	PaymentKindDeposit    = "deposit"
	PaymentKindWithdrawal = "withdrawal"
)

// Payment statuses, mirroring the processor's capture/webhook states
const (
	PaymentStatusProcessing = "processing"
	PaymentStatusSucceeded  = "succeeded"
	PaymentStatusFailed     = "failed"
	PaymentStatusReversed   = "reversed"
)

// PaymentRecord tracks one capture against the external bank-transfer
// processor and is the reconciliation point for its asynchronous webhook.
// ProviderRef is the processor's reference id the webhook is keyed by.
type PaymentRecord struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	AccountID   uint      `gorm:"not null;index" json:"account_id"`
	Kind        string    `gorm:"size:16;not null" json:"kind"`
	Amount      float64   `gorm:"not null" json:"amount"`
	Currency    string    `gorm:"size:8;not null;default:'USD'" json:"currency"`
	ProviderRef string    `gorm:"size:128;not null;uniqueIndex" json:"provider_ref"`
	Status      string    `gorm:"size:16;not null;default:'processing';index" json:"status"`
	EntryID     uint      `gorm:"default:0" json:"entry_id"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (PaymentRecord) TableName() string {
	return "payment_records"
}
