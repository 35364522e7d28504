package models

import (
	"time"
)

// Entry types
const (
	EntryTypeDeposit    = "DEPOSIT"
	EntryTypeWithdrawal = "WITHDRAWAL"
	EntryTypePurchase   = "PURCHASE"
	EntryTypeCommission = "COMMISSION"
	EntryTypeTransfer   = "TRANSFER"
	EntryTypeInvestment = "INVESTMENT"
	EntryTypeDividend   = "DIVIDEND"
	EntryTypeRefund     = "REFUND"
	EntryTypeFee        = "FEE"
)

// Entry statuses
const (
	EntryStatusCompleted = "COMPLETED"
	EntryStatusSettled   = "SETTLED"
)

// LedgerEntry is one atomic double-entry transfer record. By the time a row
// exists both account balances have already been mutated; the only later
// write is the settlement stamp (SettlementBatchID + status SETTLED).
type LedgerEntry struct {
	ID                 uint      `gorm:"primarykey" json:"id"`
	DebitAccountID     uint      `gorm:"not null;index" json:"debit_account_id"`
	CreditAccountID    uint      `gorm:"not null;index" json:"credit_account_id"`
	Amount             float64   `gorm:"not null" json:"amount"`
	Currency           string    `gorm:"size:8;not null;default:'USD'" json:"currency"`
	EntryType          string    `gorm:"size:20;not null;index" json:"entry_type"`
	Status             string    `gorm:"size:16;not null;default:'COMPLETED';index" json:"status"`
	ReferenceType      string    `gorm:"size:32;default:''" json:"reference_type"`
	ReferenceID        uint      `gorm:"default:0" json:"reference_id"`
	IdempotencyKey     *string   `gorm:"size:128;uniqueIndex" json:"idempotency_key,omitempty"`
	DebitBalanceAfter  float64   `gorm:"not null" json:"debit_balance_after"`
	CreditBalanceAfter float64   `gorm:"not null" json:"credit_balance_after"`
	SettlementBatchID  *uint     `gorm:"index" json:"settlement_batch_id,omitempty"`
	CreatedAt          time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (LedgerEntry) TableName() string {
	return "ledger_entries"
}
