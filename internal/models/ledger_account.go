package models

import (
	"time"
)

// Account types
const (
	AccountTypeUserWallet     = "user_wallet"
	AccountTypeSellerEarnings = "seller_earnings"
	AccountTypePlatformFee    = "platform_fee"
	AccountTypeReserve        = "reserve"
	AccountTypeEscrow         = "escrow"
	AccountTypeProducerPool   = "producer_pool"
	AccountTypeSettlement     = "settlement"
)

// Account statuses
const (
	AccountStatusActive    = "active"
	AccountStatusSuspended = "suspended"
	AccountStatusErrored   = "errored"
)

// LedgerAccount represents a balance holder in the ledger.
// OwnerType/OwnerID are empty for system accounts (reserve, escrow, ...).
// Accounts are never deleted, only status-transitioned.
type LedgerAccount struct {
	ID               uint      `gorm:"primarykey" json:"id"`
	AccountNumber    string    `gorm:"size:64;not null;uniqueIndex" json:"account_number"`
	AccountType      string    `gorm:"size:32;not null;index" json:"account_type"`
	OwnerType        string    `gorm:"size:32;default:''" json:"owner_type"`
	OwnerID          uint      `gorm:"default:0" json:"owner_id"`
	Currency         string    `gorm:"size:8;not null;default:'USD'" json:"currency"`
	Balance          float64   `gorm:"not null;default:0" json:"balance"`
	PendingBalance   float64   `gorm:"not null;default:0" json:"pending_balance"`
	AvailableBalance float64   `gorm:"not null;default:0" json:"available_balance"`
	Status           string    `gorm:"size:16;not null;default:'active'" json:"status"`
	CreatedAt        time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt        time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (LedgerAccount) TableName() string {
	return "ledger_accounts"
}

// IsSystem reports whether the account is an unowned system singleton
func (a *LedgerAccount) IsSystem() bool {
	return a.OwnerType == "" && a.OwnerID == 0
}
