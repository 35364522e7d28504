package ledger

import (
	"crypto/rand"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ledgercontrol/internal/models"
)

// accountPrefixes maps account types to the short prefix used in account numbers
var accountPrefixes = map[string]string{
	models.AccountTypeUserWallet:     "UWA",
	models.AccountTypeSellerEarnings: "SEL",
	models.AccountTypePlatformFee:    "FEE",
	models.AccountTypeReserve:        "RSV",
	models.AccountTypeEscrow:         "ESC",
	models.AccountTypeProducerPool:   "POL",
	models.AccountTypeSettlement:     "SET",
}

const base36Chars = "0123456789abcdefghijklmnopqrstuvwxyz"

// GenerateAccountNumber builds an account number as
// prefix(type)-base36(timestamp)-random4. Global uniqueness is enforced by
// the unique index on ledger_accounts.account_number, not by this function.
func GenerateAccountNumber(accountType string) string {
	prefix, ok := accountPrefixes[accountType]
	if !ok {
		prefix = "ACC"
	}

	ts := strconv.FormatInt(time.Now().UnixMilli(), 36)

	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms; fall back to a
		// nanosecond-derived suffix so account creation still proceeds.
		return fmt.Sprintf("%s-%s-%04d", prefix, ts, time.Now().Nanosecond()%10000)
	}
	var suffix strings.Builder
	for _, b := range buf {
		suffix.WriteByte(base36Chars[int(b)%len(base36Chars)])
	}

	return fmt.Sprintf("%s-%s-%s", prefix, ts, suffix.String())
}

// CreateAccount creates a ledger account with all balances at zero.
// ownerType/ownerID are empty for system accounts.
func CreateAccount(db *gorm.DB, accountType, currency, ownerType string, ownerID uint) (*models.LedgerAccount, error) {
	if currency == "" {
		currency = "USD"
	}

	account := models.LedgerAccount{
		AccountNumber: GenerateAccountNumber(accountType),
		AccountType:   accountType,
		OwnerType:     ownerType,
		OwnerID:       ownerID,
		Currency:      currency,
		Status:        models.AccountStatusActive,
	}

	if err := db.Create(&account).Error; err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	return &account, nil
}

// GetOrCreateSystemAccount returns the singleton system account of the given
// type, creating it when missing. Creation uses ON CONFLICT DO NOTHING plus a
// re-read so that two concurrent callers converge on the same row (the
// partial unique index on system accounts decides the winner).
func GetOrCreateSystemAccount(db *gorm.DB, accountType string) (*models.LedgerAccount, error) {
	var account models.LedgerAccount
	err := db.Where("account_type = ? AND owner_type = '' AND owner_id = 0", accountType).
		First(&account).Error
	if err == nil {
		return &account, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	candidate := models.LedgerAccount{
		AccountNumber: GenerateAccountNumber(accountType),
		AccountType:   accountType,
		Currency:      "USD",
		Status:        models.AccountStatusActive,
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&candidate).Error; err != nil {
		return nil, fmt.Errorf("failed to create system account: %w", err)
	}

	// Re-read regardless of whether our insert won the race
	if err := db.Where("account_type = ? AND owner_type = '' AND owner_id = 0", accountType).
		First(&account).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

// GetAccount looks up an account by id
func GetAccount(db *gorm.DB, accountID uint) (*models.LedgerAccount, error) {
	var account models.LedgerAccount
	if err := db.First(&account, accountID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

// Balance is a point-in-time read of an account's monetary fields
type Balance struct {
	AccountID        uint    `json:"account_id"`
	Balance          float64 `json:"balance"`
	PendingBalance   float64 `json:"pending_balance"`
	AvailableBalance float64 `json:"available_balance"`
	Currency         string  `json:"currency"`
}

// GetBalance returns the three balances of an account
func GetBalance(db *gorm.DB, accountID uint) (*Balance, error) {
	account, err := GetAccount(db, accountID)
	if err != nil {
		return nil, err
	}
	return &Balance{
		AccountID:        account.ID,
		Balance:          account.Balance,
		PendingBalance:   account.PendingBalance,
		AvailableBalance: account.AvailableBalance,
		Currency:         account.Currency,
	}, nil
}
