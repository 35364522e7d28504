package models

import (
	"time"
)

// Pool and investment statuses
const (
	PoolStatusOpen   = "open"
	PoolStatusClosed = "closed"

	InvestmentStatusConfirmed = "CONFIRMED"
	InvestmentStatusCancelled = "CANCELLED"
)

// InvestmentPool is backed by one producer_pool ledger account. TotalRaised
// must equal the sum of CONFIRMED investment amounts at all times.
type InvestmentPool struct {
	ID                uint      `gorm:"primarykey" json:"id"`
	Name              string    `gorm:"size:128;not null" json:"name"`
	AccountID         uint      `gorm:"not null;uniqueIndex" json:"account_id"`
	Currency          string    `gorm:"size:8;not null;default:'USD'" json:"currency"`
	TotalRaised       float64   `gorm:"not null;default:0" json:"total_raised"`
	TotalInvestors    int       `gorm:"not null;default:0" json:"total_investors"`
	DistributedReturn float64   `gorm:"not null;default:0" json:"distributed_return"`
	AutoInvestPct     float64   `gorm:"not null;default:0" json:"auto_invest_pct"`
	Status            string    `gorm:"size:16;not null;default:'open'" json:"status"`
	CreatedAt         time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt         time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (InvestmentPool) TableName() string {
	return "investment_pools"
}

// Investment records one directed transfer from an investor account into a
// pool, plus the return bookkeeping for dividend distribution.
type Investment struct {
	ID                uint      `gorm:"primarykey" json:"id"`
	PoolID            uint      `gorm:"not null;index" json:"pool_id"`
	InvestorAccountID uint      `gorm:"not null;index" json:"investor_account_id"`
	Amount            float64   `gorm:"not null" json:"amount"`
	ActualReturn      float64   `gorm:"not null;default:0" json:"actual_return"`
	ReturnDistributed bool      `gorm:"not null;default:false" json:"return_distributed"`
	Status            string    `gorm:"size:16;not null;default:'CONFIRMED'" json:"status"`
	SourceType        string    `gorm:"size:32;default:''" json:"source_type"`
	SourceID          uint      `gorm:"default:0" json:"source_id"`
	EntryID           uint      `gorm:"not null" json:"entry_id"`
	CreatedAt         time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt         time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Investment) TableName() string {
	return "investments"
}
