package ledger

import (
	"gorm.io/gorm"

	"ledgercontrol/internal/models"
)

// Transaction directions from the queried account's point of view
const (
	DirectionDebit  = "DEBIT"
	DirectionCredit = "CREDIT"
)

// TransactionRecord is one history row tagged with the account's direction
type TransactionRecord struct {
	models.LedgerEntry
	Direction    string  `json:"direction"`
	SignedAmount float64 `json:"signed_amount"`
	BalanceAfter float64 `json:"balance_after"`
}

// GetTransactionHistory returns entries where the account appears on either
// side, newest first, with per-row direction and signed amount.
func GetTransactionHistory(db *gorm.DB, accountID uint, limit, offset int, entryType string) ([]TransactionRecord, error) {
	if _, err := GetAccount(db, accountID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	query := db.Where("debit_account_id = ? OR credit_account_id = ?", accountID, accountID)
	if entryType != "" {
		query = query.Where("entry_type = ?", entryType)
	}

	var entries []models.LedgerEntry
	if err := query.Order("created_at desc, id desc").
		Limit(limit).Offset(offset).Find(&entries).Error; err != nil {
		return nil, err
	}

	records := make([]TransactionRecord, 0, len(entries))
	for _, entry := range entries {
		record := TransactionRecord{LedgerEntry: entry}
		if entry.DebitAccountID == accountID {
			record.Direction = DirectionDebit
			record.SignedAmount = -entry.Amount
			record.BalanceAfter = entry.DebitBalanceAfter
		} else {
			record.Direction = DirectionCredit
			record.SignedAmount = entry.Amount
			record.BalanceAfter = entry.CreditBalanceAfter
		}
		records = append(records, record)
	}
	return records, nil
}

// TypeSummary aggregates the accounts of one type
type TypeSummary struct {
	AccountType    string  `json:"account_type"`
	Accounts       int     `json:"accounts"`
	TotalBalance   float64 `json:"total_balance"`
	TotalAvailable float64 `json:"total_available"`
}

// Summary is the ledger-wide aggregate view
type Summary struct {
	TotalAccounts  int           `json:"total_accounts"`
	TotalBalance   float64       `json:"total_balance"`
	TotalAvailable float64       `json:"total_available"`
	TotalEntries   int64         `json:"total_entries"`
	ByType         []TypeSummary `json:"by_type"`
}

// GetLedgerSummary groups all accounts by type with counts and balance sums
func GetLedgerSummary(db *gorm.DB) (*Summary, error) {
	var byType []TypeSummary
	err := db.Model(&models.LedgerAccount{}).
		Select("account_type, COUNT(*) as accounts, COALESCE(SUM(balance),0) as total_balance, COALESCE(SUM(available_balance),0) as total_available").
		Group("account_type").
		Order("account_type asc").
		Scan(&byType).Error
	if err != nil {
		return nil, err
	}

	summary := &Summary{ByType: byType}
	for _, t := range byType {
		summary.TotalAccounts += t.Accounts
		summary.TotalBalance += t.TotalBalance
		summary.TotalAvailable += t.TotalAvailable
	}

	if err := db.Model(&models.LedgerEntry{}).Count(&summary.TotalEntries).Error; err != nil {
		return nil, err
	}
	return summary, nil
}

// RecordSummarySnapshot persists the current ledger summary so the scheduler
// can build a time series of balance totals
func RecordSummarySnapshot(db *gorm.DB) (*models.LedgerSummarySnapshot, error) {
	summary, err := GetLedgerSummary(db)
	if err != nil {
		return nil, err
	}

	byType := models.JSONMap{}
	for _, t := range summary.ByType {
		byType[t.AccountType] = map[string]interface{}{
			"accounts":        t.Accounts,
			"total_balance":   t.TotalBalance,
			"total_available": t.TotalAvailable,
		}
	}

	snapshot := models.LedgerSummarySnapshot{
		TotalAccounts:  summary.TotalAccounts,
		TotalBalance:   summary.TotalBalance,
		TotalAvailable: summary.TotalAvailable,
		TotalEntries:   summary.TotalEntries,
		ByType:         byType,
	}
	if err := db.Create(&snapshot).Error; err != nil {
		return nil, err
	}
	return &snapshot, nil
}
