package ledger

import (
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ledgercontrol/internal/models"
)

// TransferParams describes one double-entry transfer
type TransferParams struct {
	DebitAccountID  uint
	CreditAccountID uint
	Amount          float64
	EntryType       string
	IdempotencyKey  string
	ReferenceType   string
	ReferenceID     uint
}

// CreateTransfer is the atomic double-entry primitive every balance mutation
// flows through. The read-check-write on both accounts happens inside one
// database transaction with both rows locked FOR UPDATE, so concurrent
// transfers against the same account serialize instead of losing updates.
//
// When an idempotency key is supplied and an entry with that key already
// exists, the existing entry is returned unchanged and no balances move.
func CreateTransfer(db *gorm.DB, p TransferParams) (*models.LedgerEntry, error) {
	if p.DebitAccountID == p.CreditAccountID {
		return nil, fmt.Errorf("%w: debit and credit accounts must differ", ErrInvalidAccount)
	}
	if p.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidAccount)
	}

	if p.IdempotencyKey != "" {
		if existing, err := findEntryByKey(db, p.IdempotencyKey); err == nil {
			return existing, nil
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	var entry models.LedgerEntry
	err := db.Transaction(func(tx *gorm.DB) error {
		// Lock the two rows in ascending id order to avoid lock-order
		// deadlocks between opposing transfers.
		firstID, secondID := p.DebitAccountID, p.CreditAccountID
		if secondID < firstID {
			firstID, secondID = secondID, firstID
		}

		var first, second models.LedgerAccount
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&first, firstID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: account %d does not exist", ErrInvalidAccount, firstID)
			}
			return err
		}
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&second, secondID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: account %d does not exist", ErrInvalidAccount, secondID)
			}
			return err
		}

		debit, credit := &first, &second
		if debit.ID != p.DebitAccountID {
			debit, credit = &second, &first
		}

		// Reserve accounts may overdraft: deposits mint from the reserve,
		// withdrawals return to it.
		if debit.AccountType != models.AccountTypeReserve && debit.AvailableBalance < p.Amount {
			return fmt.Errorf("%w: account %d has %.2f available, needs %.2f",
				ErrInsufficientBalance, debit.ID, debit.AvailableBalance, p.Amount)
		}

		debitBalance := debit.Balance - p.Amount
		debitAvailable := debit.AvailableBalance - p.Amount
		creditBalance := credit.Balance + p.Amount
		creditAvailable := credit.AvailableBalance + p.Amount

		if err := tx.Model(&models.LedgerAccount{}).Where("id = ?", debit.ID).
			Updates(map[string]interface{}{
				"balance":           debitBalance,
				"available_balance": debitAvailable,
			}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.LedgerAccount{}).Where("id = ?", credit.ID).
			Updates(map[string]interface{}{
				"balance":           creditBalance,
				"available_balance": creditAvailable,
			}).Error; err != nil {
			return err
		}

		entry = models.LedgerEntry{
			DebitAccountID:     p.DebitAccountID,
			CreditAccountID:    p.CreditAccountID,
			Amount:             p.Amount,
			Currency:           debit.Currency,
			EntryType:          p.EntryType,
			Status:             models.EntryStatusCompleted,
			ReferenceType:      p.ReferenceType,
			ReferenceID:        p.ReferenceID,
			DebitBalanceAfter:  debitBalance,
			CreditBalanceAfter: creditBalance,
		}
		if p.IdempotencyKey != "" {
			key := p.IdempotencyKey
			entry.IdempotencyKey = &key
		}
		return tx.Create(&entry).Error
	})
	if err != nil {
		// A concurrent retry with the same key may have won the unique-index
		// race on idempotency_key; in that case return the winner's entry.
		if p.IdempotencyKey != "" {
			if existing, readErr := findEntryByKey(db, p.IdempotencyKey); readErr == nil {
				log.WithField("idempotency_key", p.IdempotencyKey).
					Info("Duplicate transfer resolved to existing entry")
				return existing, nil
			}
		}
		return nil, err
	}

	log.WithFields(log.Fields{
		"entry_id":   entry.ID,
		"entry_type": entry.EntryType,
		"debit":      entry.DebitAccountID,
		"credit":     entry.CreditAccountID,
		"amount":     entry.Amount,
	}).Info("Transfer applied")

	return &entry, nil
}

// GetEntry looks up a ledger entry by id
func GetEntry(db *gorm.DB, entryID uint) (*models.LedgerEntry, error) {
	var entry models.LedgerEntry
	if err := db.First(&entry, entryID).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func findEntryByKey(db *gorm.DB, key string) (*models.LedgerEntry, error) {
	var entry models.LedgerEntry
	if err := db.Where("idempotency_key = ?", key).First(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}
