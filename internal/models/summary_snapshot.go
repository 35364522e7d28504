package models

import (
	"time"
)

// LedgerSummarySnapshot is a periodic aggregate of the ledger, written by
// the scheduler so operators can chart balance totals over time.
type LedgerSummarySnapshot struct {
	ID             uint      `gorm:"primarykey" json:"id"`
	TotalAccounts  int       `gorm:"not null;default:0" json:"total_accounts"`
	TotalBalance   float64   `gorm:"not null;default:0" json:"total_balance"`
	TotalAvailable float64   `gorm:"not null;default:0" json:"total_available"`
	TotalEntries   int64     `gorm:"not null;default:0" json:"total_entries"`
	ByType         JSONMap   `gorm:"type:jsonb" json:"by_type"`
	CreatedAt      time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (LedgerSummarySnapshot) TableName() string {
	return "ledger_summary_snapshots"
}
